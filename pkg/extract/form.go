package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aretw0/skury/pkg/domain"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	maxFormQuestionChars = 500
	maxFormOptionChars   = 300

	choiceInputs = `input[type="radio"], input[type="checkbox"]`
)

var (
	leadingNumber = regexp.MustCompile(`^\d+\.\s*`)
	optionLike    = regexp.MustCompile(`^[A-D]\)`)
)

// FormQuestion is a structured-form question together with the inputs of its options,
// so hint markers can be placed later.
type FormQuestion struct {
	domain.Question
	inputs map[string]*goquery.Selection
}

// Input returns the input element of optionID, if any.
func (q FormQuestion) Input(optionID string) (*goquery.Selection, bool) {
	sel, ok := q.inputs[optionID]
	return sel, ok
}

// StructuredForm extracts Google Form questions from doc.
// Containers are [role="listitem"] elements; without any, the nearest div
// holding two or more choice inputs is used instead.
// Questions without text or options are dropped.
func StructuredForm(doc *goquery.Document) []FormQuestion {
	containers := doc.Find(`[role="listitem"]`)
	if containers.Length() == 0 {
		containers = fallbackContainers(doc)
	}

	var out []FormQuestion
	containers.Each(func(i int, c *goquery.Selection) {
		q := FormQuestion{
			Question: domain.Question{
				ID:   fmt.Sprintf("q%d", i),
				Meta: domain.QuestionMeta{Type: domain.InputUnknown},
			},
			inputs: map[string]*goquery.Selection{},
		}
		q.QuestionText = formQuestionText(c)

		if n := c.Find("img").Length(); n > 0 {
			q.QuestionText += fmt.Sprintf(" [%d image(s)]", n)
		}

		radios := c.Find(`input[type="radio"]`)
		checkboxes := c.Find(`input[type="checkbox"]`)
		switch {
		case radios.Length() > 0:
			q.Meta.Type = domain.InputRadio
			q.collectOptions(radios)
		case checkboxes.Length() > 0:
			q.Meta.Type = domain.InputCheckbox
			q.collectOptions(checkboxes)
		}

		if c.Find(`[aria-required="true"]`).Length() > 0 || strings.Contains(c.Text(), "*") {
			q.Meta.Required = true
		}

		if len(q.Options) > 0 && q.QuestionText != "" {
			out = append(out, q)
		}
	})
	return out
}

func fallbackContainers(doc *goquery.Document) *goquery.Selection {
	var nodes []*html.Node
	seen := map[*html.Node]bool{}

	doc.Find(choiceInputs).Each(func(_ int, inp *goquery.Selection) {
		parent := inp.Parent()
		for i := 0; i < 5 && parent.Length() > 0; i++ {
			if parent.Nodes[0].DataAtom == atom.Div && parent.Find(choiceInputs).Length() >= 2 {
				if n := parent.Nodes[0]; !seen[n] {
					seen[n] = true
					nodes = append(nodes, n)
				}
				break
			}
			parent = parent.Parent()
		}
	})
	return doc.FindNodes(nodes...)
}

func formQuestionText(c *goquery.Selection) string {
	heading := c.Find(`[role="heading"]`).First()
	if heading.Length() == 0 {
		heading = c.Find(`[jsname], div[class*="question"], div[class*="Question"]`).First()
	}
	if heading.Length() > 0 {
		text := strings.TrimSpace(heading.Text())
		return clip(leadingNumber.ReplaceAllString(text, ""), maxFormQuestionChars)
	}

	text, _ := firstTextNode(c.Nodes[0], func(n *html.Node, t string) bool {
		return len([]rune(t)) > 10 && !optionLike.MatchString(t) &&
			(n.Parent == nil || n.Parent.DataAtom != atom.Label)
	})
	return clip(text, maxFormQuestionChars)
}

func (q *FormQuestion) collectOptions(inputs *goquery.Selection) {
	inputs.Each(func(_ int, inp *goquery.Selection) {
		id := inp.AttrOr("id", "")
		if id == "" {
			id = fmt.Sprintf("opt%d", len(q.Options))
		}

		text := clip(formOptionText(inp), maxFormOptionChars)
		if text == "" {
			text = fmt.Sprintf("Option %d", len(q.Options)+1)
		}

		q.Options = append(q.Options, domain.Option{ID: id, Text: text})
		q.inputs[id] = inp
	})
}

func formOptionText(inp *goquery.Selection) string {
	if label := inp.Closest("label"); label.Length() > 0 {
		return strings.TrimSpace(label.Text())
	}

	for n := inp.Nodes[0].NextSibling; n != nil; n = n.NextSibling {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				return t
			}
		case html.ElementNode:
			if t := strings.TrimSpace(nodeText(n)); t != "" {
				return t
			}
		}
	}
	return strings.TrimSpace(inp.Parent().Text())
}
