package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// collapse replaces every whitespace run with one space and trims the ends.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// clip cuts s to at most n runes.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// LabelOf returns the element that visually carries an input's option text.
func LabelOf(input *goquery.Selection) *goquery.Selection {
	if label := input.Closest("label"); label.Length() > 0 {
		return label
	}
	return input.Parent()
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// firstTextNode returns the first text node under root accepted by keep.
func firstTextNode(root *html.Node, keep func(*html.Node, string) bool) (string, bool) {
	var found string
	var ok bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if ok {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); keep(n, t) {
				found, ok = t, true
				return
			}
		}
		for c := n.FirstChild; c != nil && !ok; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found, ok
}
