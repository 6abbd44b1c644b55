/*
Package page is the content script of one surface.

A Session is built over the surface's HTML document and listens at the
surface address. It answers the page-bound messages forwarded by the
coordinator (panel toggling, theme, content extraction, form solving and
hints) and drives the screen-snip gesture, delivering the cropped image to
the panel embedded in the same surface.

The document is annotated in place: answer markers, hint dots, the bubble
and the panel container can be inspected through HTML.
*/
package page
