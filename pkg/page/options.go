package page

import (
	"log/slog"

	"github.com/aretw0/skury/pkg/capture"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithViewport sets the visible size of the surface in CSS pixels.
// Snips are scaled from the captured frame to this size.
func WithViewport(vp capture.Viewport) Option {
	return func(s *Session) {
		s.viewport = vp
	}
}
