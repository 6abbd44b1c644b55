package page

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/extract"
	"github.com/aretw0/skury/pkg/mcq"
)

const formsHost = "docs.google.com"

// Solve asks the model, one question at a time, for every radio or checkbox
// group on the page and marks the chosen options.
func (s *Session) Solve(ctx context.Context) domain.Response {
	s.mu.Lock()
	questions := extract.VisibleQuestions(s.doc)
	s.mu.Unlock()

	if len(questions) == 0 {
		return domain.Failf(domain.ErrExtractionFailed, "No form questions detected on this page.")
	}

	for _, q := range questions {
		prompt := mcq.BuildFormPrompt(q.Text, q.Labels())
		resp, err := s.rt.SendMessage(ctx, domain.RemoteCall{Prompt: prompt})
		if err != nil {
			s.logger.Warn("remote call failed", "err", err)
			continue
		}
		if resp.Reply == "" {
			continue
		}
		letter, ok := mcq.ExtractOptionLetter(strings.TrimSpace(resp.Reply))
		if !ok {
			continue
		}
		if idx := mcq.LetterIndex(letter); idx >= 0 && idx < len(q.Options) {
			s.mu.Lock()
			addMarker(q.Options[idx].Input, answerMarker, "")
			s.mu.Unlock()
		}
	}
	return domain.Response{Solved: true, Count: len(questions)}
}

// Analyze extracts the structured form of a Google Forms page and keeps it for hints.
func (s *Session) Analyze() domain.Response {
	if !strings.Contains(s.host, formsHost) {
		return domain.Failf(domain.ErrExtractionFailed, "Not on a Google Form page.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	form := extract.StructuredForm(s.doc)
	s.logger.Debug("form analyzed", "questions", len(form))
	if len(form) == 0 {
		return domain.Failf(domain.ErrExtractionFailed, "No form questions detected. Make sure the form is fully loaded.")
	}

	s.form = form
	out := make([]domain.Question, len(form))
	for i, q := range form {
		out[i] = q.Question
	}
	return domain.Response{Success: true, Questions: out}
}

// RevealHint marks an option of the analyzed form. Unknown ids are ignored.
func (s *Session) RevealHint(questionID, optionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range s.form {
		if q.ID != questionID {
			continue
		}
		if input, ok := q.Input(optionID); ok {
			addMarker(input, hintDot, ` aria-hidden="true"`)
		}
		return
	}
}

// CleanupHints removes every hint dot.
func (s *Session) CleanupHints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Find("span." + hintDot).Remove()
}

// Select checks the first input matching selector and clears its markers.
// It reports false when nothing matches.
func (s *Session) Select(selector string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	input := s.doc.Find(selector).First()
	if input.Length() == 0 {
		return false
	}
	if input.AttrOr("type", "") == "radio" {
		if name, ok := input.Attr("name"); ok && name != "" {
			s.doc.Find(`input[type="radio"]`).FilterFunction(func(_ int, other *goquery.Selection) bool {
				return other.AttrOr("name", "") == name
			}).RemoveAttr("checked")
		}
	}
	input.SetAttr("checked", "")
	extract.LabelOf(input).Find("span." + answerMarker + ", span." + hintDot).Remove()
	return true
}

// addMarker appends a span of class to the label of input, once.
func addMarker(input *goquery.Selection, class, attrs string) {
	label := extract.LabelOf(input)
	if label.Length() == 0 {
		return
	}
	if label.Find("span."+class).Length() > 0 {
		return
	}
	label.AppendHtml(`<span class="` + class + `"` + attrs + `></span>`)
}
