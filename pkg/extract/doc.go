/*
Package extract holds the page heuristics of the content script.

Every function works on a parsed HTML document (goquery). Results are best
effort: selectors follow what common pages and Google Forms use, and nothing
here promises accuracy on arbitrary markup.
*/
package extract
