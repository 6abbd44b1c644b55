package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoReceiver is returned when nothing is listening at the target context.
	ErrNoReceiver = errors.New("no receiver at target")

	// ErrContextTornDown is returned when the caller's link to the coordinator is gone.
	ErrContextTornDown = errors.New("extension context invalidated")

	// ErrMissingCredential is returned when a remote call is attempted without a stored API key.
	ErrMissingCredential = errors.New("missing api credential")

	// ErrRemoteCallFailed is returned on a non-success status or an empty/blocked model response.
	ErrRemoteCallFailed = errors.New("remote call failed")

	// ErrExtractionFailed is returned when page heuristics found nothing usable.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrNoTarget is returned when no addressable surface exists for a forward.
	ErrNoTarget = errors.New("no target surface")

	// ErrUnknownKind is returned for a discriminator outside the closed set.
	ErrUnknownKind = errors.New("unknown message kind")

	// ErrInjectionRefused is returned when the content script cannot be injected into a surface.
	ErrInjectionRefused = errors.New("cannot inject into restricted pages")

	// ErrInvalidRequest is returned when a payload fails validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// Error codes carried in Response.Code.
const (
	CodeNoReceiver        = "no-receiver"
	CodeContextTornDown   = "context-torn-down"
	CodeMissingCredential = "missing-credential"
	CodeRemoteCallFailed  = "remote-call-failed"
	CodeExtractionFailed  = "extraction-failed"
	CodeNoTarget          = "no-target"
	CodeUnknownKind       = "unknown-kind"
	CodeInjectionRefused  = "injection-refused"
	CodeInvalidRequest    = "invalid-request"
	CodeInternal          = "internal"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrNoReceiver, CodeNoReceiver},
	{ErrContextTornDown, CodeContextTornDown},
	{ErrMissingCredential, CodeMissingCredential},
	{ErrRemoteCallFailed, CodeRemoteCallFailed},
	{ErrExtractionFailed, CodeExtractionFailed},
	{ErrNoTarget, CodeNoTarget},
	{ErrUnknownKind, CodeUnknownKind},
	{ErrInjectionRefused, CodeInjectionRefused},
	{ErrInvalidRequest, CodeInvalidRequest},
}

// CodeOf returns the stable taxonomy code for err.
// Errors outside the taxonomy map to CodeInternal.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// UserError pairs a taxonomy error with the text shown to the user.
// Error() returns the user text; errors.Is matches the taxonomy error.
type UserError struct {
	Kind error
	Text string
}

func (e *UserError) Error() string { return e.Text }

func (e *UserError) Unwrap() error { return e.Kind }

// Userf builds a UserError of the given kind.
func Userf(kind error, format string, args ...any) error {
	return &UserError{Kind: kind, Text: fmt.Sprintf(format, args...)}
}
