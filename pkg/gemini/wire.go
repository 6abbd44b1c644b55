package gemini

import (
	"strings"

	"github.com/aretw0/skury/pkg/domain"
)

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type request struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

func newRequest(p domain.Prompt) request {
	parts := make([]part, 0, len(p.Parts)+1)
	for _, t := range p.Parts {
		parts = append(parts, part{Text: t})
	}
	if p.Image != nil {
		parts = append(parts, part{InlineData: &inlineData{MimeType: p.Image.MimeType, Data: p.Image.Data}})
	}

	maxTokens := DefaultMaxOutputTokens
	if p.MaxOutputTokens > 0 {
		maxTokens = p.MaxOutputTokens
	}
	return request{
		Contents: []content{{Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			MaxOutputTokens: maxTokens,
			TopP:            0.95,
			TopK:            40,
		},
	}
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (r response) text() (string, error) {
	if len(r.Candidates) == 0 {
		if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
			return "", domain.Userf(domain.ErrRemoteCallFailed, "Request blocked due to: %s", r.PromptFeedback.BlockReason)
		}
		return "", domain.Userf(domain.ErrRemoteCallFailed, "No content returned from API.")
	}
	texts := make([]string, 0, len(r.Candidates[0].Content.Parts))
	for _, p := range r.Candidates[0].Content.Parts {
		texts = append(texts, p.Text)
	}
	return strings.TrimSpace(strings.Join(texts, "\n")), nil
}
