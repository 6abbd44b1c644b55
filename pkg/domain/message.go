package domain

// Message is a sealed union over every Kind.
// Only types declared in this package implement it.
type Message interface {
	Kind() Kind
	message()
}

// TogglePanel opens or closes the in-page panel.
type TogglePanel struct{}

// InitiateCapture starts a screen-region selection on the page.
type InitiateCapture struct{}

// SolveVisibleForm asks the page to answer every visible multiple-choice group.
type SolveVisibleForm struct{}

// AnalyzeStructuredForm asks the page to extract Google Form questions.
type AnalyzeStructuredForm struct{}

// ReadPageContent asks the page for its main text.
type ReadPageContent struct{}

// GetSurfaceTheme asks the page whether its background is dark.
type GetSurfaceTheme struct{}

// ThemeChanged announces a new panel theme.
type ThemeChanged struct {
	Theme Theme `json:"theme" mapstructure:"theme"`
}

// RemoteCall proxies a prompt, and optionally an image, to the model.
type RemoteCall struct {
	Prompt    string `json:"prompt,omitempty" mapstructure:"prompt"`
	ImageData string `json:"imageData,omitempty" mapstructure:"imageData"`
}

// CaptureVisibleSurface asks the coordinator for a screenshot of the active surface.
type CaptureVisibleSurface struct{}

// SuggestAnswer asks the model for the best option of a single question.
type SuggestAnswer struct {
	QuestionText string   `json:"questionText" mapstructure:"questionText"`
	Options      []Option `json:"options" mapstructure:"options"`
}

// RevealHint marks a suggested option of a previously analyzed form.
type RevealHint struct {
	QuestionID string `json:"questionId" mapstructure:"questionId"`
	OptionID   string `json:"optionId" mapstructure:"optionId"`
}

// CleanupHints removes every hint marker from the page.
type CleanupHints struct{}

// SnipResult delivers a captured region to the panel.
type SnipResult struct {
	Image string `json:"image" mapstructure:"image"`
}

// SnipError reports a failed capture to the panel.
type SnipError struct {
	Error string `json:"error" mapstructure:"error"`
}

func (TogglePanel) Kind() Kind           { return KindTogglePanel }
func (InitiateCapture) Kind() Kind       { return KindInitiateCapture }
func (SolveVisibleForm) Kind() Kind      { return KindSolveVisibleForm }
func (AnalyzeStructuredForm) Kind() Kind { return KindAnalyzeStructuredForm }
func (ReadPageContent) Kind() Kind       { return KindReadPageContent }
func (GetSurfaceTheme) Kind() Kind       { return KindGetSurfaceTheme }
func (ThemeChanged) Kind() Kind          { return KindThemeChanged }
func (RemoteCall) Kind() Kind            { return KindRemoteCall }
func (CaptureVisibleSurface) Kind() Kind { return KindCaptureVisibleSurface }
func (SuggestAnswer) Kind() Kind         { return KindSuggestAnswer }
func (RevealHint) Kind() Kind            { return KindRevealHint }
func (CleanupHints) Kind() Kind          { return KindCleanupHints }
func (SnipResult) Kind() Kind            { return KindSnipResult }
func (SnipError) Kind() Kind             { return KindSnipError }

func (TogglePanel) message()           {}
func (InitiateCapture) message()       {}
func (SolveVisibleForm) message()      {}
func (AnalyzeStructuredForm) message() {}
func (ReadPageContent) message()       {}
func (GetSurfaceTheme) message()       {}
func (ThemeChanged) message()          {}
func (RemoteCall) message()            {}
func (CaptureVisibleSurface) message() {}
func (SuggestAnswer) message()         {}
func (RevealHint) message()            {}
func (CleanupHints) message()          {}
func (SnipResult) message()            {}
func (SnipError) message()             {}

// New returns the zero message of the given kind.
func New(k Kind) (Message, error) {
	switch k {
	case KindTogglePanel:
		return TogglePanel{}, nil
	case KindInitiateCapture:
		return InitiateCapture{}, nil
	case KindSolveVisibleForm:
		return SolveVisibleForm{}, nil
	case KindAnalyzeStructuredForm:
		return AnalyzeStructuredForm{}, nil
	case KindReadPageContent:
		return ReadPageContent{}, nil
	case KindGetSurfaceTheme:
		return GetSurfaceTheme{}, nil
	case KindThemeChanged:
		return ThemeChanged{}, nil
	case KindRemoteCall:
		return RemoteCall{}, nil
	case KindCaptureVisibleSurface:
		return CaptureVisibleSurface{}, nil
	case KindSuggestAnswer:
		return SuggestAnswer{}, nil
	case KindRevealHint:
		return RevealHint{}, nil
	case KindCleanupHints:
		return CleanupHints{}, nil
	case KindSnipResult:
		return SnipResult{}, nil
	case KindSnipError:
		return SnipError{}, nil
	}
	return nil, ErrUnknownKind
}
