/*
Package panel is the chat UI embedded in a surface.

A Panel keeps a transcript of entries and at most one pending snip
attachment. Everything else is fetched from the coordinator on demand:
page text, model replies, and the stored theme. While shown, a liveness
keeper holds the coordinator awake.
*/
package panel
