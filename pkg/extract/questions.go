package extract

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/aretw0/skury/pkg/domain"
)

const (
	maxQuestionChars = 300
	maxLabelChars    = 200
)

// VisibleOption is one choice of a VisibleQuestion.
type VisibleOption struct {
	Label string
	Input *goquery.Selection
}

// VisibleQuestion is a radio or checkbox group found on an arbitrary page.
type VisibleQuestion struct {
	Text    string
	Options []VisibleOption
}

// Labels returns the option labels in order.
func (q VisibleQuestion) Labels() []string {
	out := make([]string, len(q.Options))
	for i, o := range q.Options {
		out[i] = o.Label
	}
	return out
}

// VisibleQuestions groups radio and checkbox inputs by name.
// Groups with fewer than two inputs are skipped; unnamed inputs never group.
// At most domain.MaxOptions options are kept per question.
func VisibleQuestions(doc *goquery.Document) []VisibleQuestion {
	var order []string
	groups := map[string][]*goquery.Selection{}

	doc.Find(`input[type="radio"], input[type="checkbox"]`).Each(func(i int, inp *goquery.Selection) {
		name, ok := inp.Attr("name")
		if !ok || name == "" {
			name = fmt.Sprintf("\x00unnamed-%d", i)
		}
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], inp)
	})

	var out []VisibleQuestion
	for _, name := range order {
		inputs := groups[name]
		if len(inputs) < 2 {
			continue
		}
		text := questionText(inputs[0])

		opts := make([]VisibleOption, 0, len(inputs))
		for _, inp := range inputs {
			opts = append(opts, VisibleOption{Label: optionLabel(inp, text), Input: inp})
		}
		if len(opts) > domain.MaxOptions {
			opts = opts[:domain.MaxOptions]
		}
		out = append(out, VisibleQuestion{Text: clip(text, maxQuestionChars), Options: opts})
	}
	return out
}

func questionText(first *goquery.Selection) string {
	container := first.Closest(".freebirdFormviewerViewItemsItemItem")
	if container.Length() == 0 {
		container = first.ParentsFiltered("div").First()
	}

	text := ""
	if container.Length() > 0 {
		clone := container.Clone()
		clone.Find("input, label, button").Remove()
		text = collapse(clone.Text())
	}
	if text == "" {
		if prev := first.Parent().Prev(); prev.Length() > 0 {
			text = collapse(prev.Text())
		}
	}
	if text == "" {
		text = "Question"
	}
	return text
}

func optionLabel(inp *goquery.Selection, question string) string {
	label := ""
	if node := LabelOf(inp); node.Length() > 0 {
		label = collapse(node.Text())
		if label == question {
			label = ""
		}
		if label == "" && node.Find("img").Length() > 0 {
			label = "[image option]"
		}
	}
	if label == "" {
		label = "Option"
	}
	return clip(label, maxLabelChars)
}
