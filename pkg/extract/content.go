package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/aretw0/skury/pkg/domain"
)

const (
	// MaxContentChars bounds the extracted page text.
	MaxContentChars = 10000
	// MinContentChars is the shortest text worth sending to the model.
	MinContentChars = 50

	truncatedSuffix = "... [content truncated]"
)

var mainSelectors = []string{"main", "article", `[role="main"]`, ".main-content", "#main-content", "#content"}

// PageContent returns the main readable text of doc.
// It fails with domain.ErrExtractionFailed when the text is too short.
func PageContent(doc *goquery.Document) (string, error) {
	var source *goquery.Selection
	for _, sel := range mainSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			source = found
			break
		}
	}
	if source == nil {
		source = doc.Find("body").First()
	}

	clone := source.Clone()
	clone.Find("script, style, noscript, iframe, svg").Remove()
	content := collapse(clone.Text())

	if len([]rune(content)) > MaxContentChars {
		content = clip(content, MaxContentChars) + truncatedSuffix
	}
	if len([]rune(content)) < MinContentChars {
		return "", domain.Userf(domain.ErrExtractionFailed, "Page content is too short or empty")
	}
	return content, nil
}
