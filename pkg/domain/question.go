package domain

// Question is a multiple-choice question extracted from a page.
type Question struct {
	ID           string       `json:"id" mapstructure:"id"`
	QuestionText string       `json:"questionText" mapstructure:"questionText"`
	Options      []Option     `json:"options" mapstructure:"options"`
	Meta         QuestionMeta `json:"meta" mapstructure:"meta"`
}

// Option is one choice of a Question.
type Option struct {
	ID        string `json:"id,omitempty" mapstructure:"id"`
	Text      string `json:"text" mapstructure:"text"`
	ImageText string `json:"imageText,omitempty" mapstructure:"imageText"`
}

// QuestionMeta describes how a question is answered on the page.
type QuestionMeta struct {
	Type     string `json:"type" mapstructure:"type"`
	Required bool   `json:"required" mapstructure:"required"`
}

// Question input types.
const (
	InputRadio    = "radio"
	InputCheckbox = "checkbox"
	InputUnknown  = "unknown"
)
