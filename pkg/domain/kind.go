package domain

import "fmt"

// Kind is the discriminator of a message.
type Kind string

const (
	KindTogglePanel           Kind = "toggle-panel"
	KindInitiateCapture       Kind = "initiate-capture"
	KindSolveVisibleForm      Kind = "solve-visible-form"
	KindAnalyzeStructuredForm Kind = "analyze-structured-form"
	KindReadPageContent       Kind = "read-page-content"
	KindGetSurfaceTheme       Kind = "get-surface-theme"
	KindThemeChanged          Kind = "theme-changed"
	KindRemoteCall            Kind = "remote-call"
	KindCaptureVisibleSurface Kind = "capture-visible-surface"
	KindSuggestAnswer         Kind = "suggest-answer"
	KindRevealHint            Kind = "reveal-hint"
	KindCleanupHints          Kind = "cleanup-hints"
	KindSnipResult            Kind = "snip-result"
	KindSnipError             Kind = "snip-error"
)

var allKinds = []Kind{
	KindTogglePanel,
	KindInitiateCapture,
	KindSolveVisibleForm,
	KindAnalyzeStructuredForm,
	KindReadPageContent,
	KindGetSurfaceTheme,
	KindThemeChanged,
	KindRemoteCall,
	KindCaptureVisibleSurface,
	KindSuggestAnswer,
	KindRevealHint,
	KindCleanupHints,
	KindSnipResult,
	KindSnipError,
}

// Kinds returns every known kind, in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind validates a wire discriminator.
func ParseKind(s string) (Kind, error) {
	for _, k := range allKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string { return string(k) }

// PageBound reports whether messages of this kind are served by a page session.
func (k Kind) PageBound() bool {
	switch k {
	case KindTogglePanel, KindInitiateCapture, KindSolveVisibleForm, KindAnalyzeStructuredForm,
		KindReadPageContent, KindGetSurfaceTheme, KindThemeChanged, KindRevealHint, KindCleanupHints:
		return true
	}
	return false
}
