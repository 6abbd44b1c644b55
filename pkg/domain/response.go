package domain

import "fmt"

// Response is the single reply envelope of every request.
// A reply is either a success payload or an error payload (Error set), never both.
type Response struct {
	Success      bool       `json:"success,omitempty" mapstructure:"success"`
	Error        string     `json:"error,omitempty" mapstructure:"error"`
	Code         string     `json:"code,omitempty" mapstructure:"code"`
	Reply        string     `json:"reply,omitempty" mapstructure:"reply"`
	Content      string     `json:"content,omitempty" mapstructure:"content"`
	IsDark       *bool      `json:"isDark,omitempty" mapstructure:"isDark"`
	Solved       bool       `json:"solved,omitempty" mapstructure:"solved"`
	Count        int        `json:"count,omitempty" mapstructure:"count"`
	Questions    []Question `json:"questions,omitempty" mapstructure:"questions"`
	DataURL      string     `json:"dataUrl,omitempty" mapstructure:"dataUrl"`
	InPage       bool       `json:"inPage,omitempty" mapstructure:"inPage"`
	Injected     bool       `json:"injected,omitempty" mapstructure:"injected"`
	OptionIndex  *int       `json:"optionIndex,omitempty" mapstructure:"optionIndex"`
	OptionLetter string     `json:"optionLetter,omitempty" mapstructure:"optionLetter"`
	Explanation  string     `json:"explanation,omitempty" mapstructure:"explanation"`
	Confidence   float64    `json:"confidence,omitempty" mapstructure:"confidence"`
}

// Ok returns a bare success reply.
func Ok() Response {
	return Response{Success: true}
}

// Fail returns an error reply for err, tagged with its taxonomy code.
func Fail(err error) Response {
	return Response{Error: err.Error(), Code: CodeOf(err)}
}

// Failf returns an error reply with a user-facing text and a taxonomy kind.
func Failf(kind error, format string, args ...any) Response {
	return Fail(Userf(kind, format, args...))
}

// DarkReply returns a theme query reply.
func DarkReply(isDark bool) Response {
	return Response{IsDark: &isDark}
}

// IsError reports whether r is an error payload.
func (r Response) IsError() bool {
	return r.Error != ""
}

// Err converts an error payload back into an error matching the taxonomy.
func (r Response) Err() error {
	if !r.IsError() {
		return nil
	}
	for _, c := range codes {
		if c.code == r.Code {
			return &UserError{Kind: c.err, Text: r.Error}
		}
	}
	return fmt.Errorf("%s", r.Error)
}

// Empty reports whether r carries nothing at all (the "no response" case).
func (r Response) Empty() bool {
	return !r.Success && r.Error == "" && r.Reply == "" && r.Content == "" && r.IsDark == nil &&
		!r.Solved && r.Count == 0 && len(r.Questions) == 0 && r.DataURL == "" && r.OptionIndex == nil
}
