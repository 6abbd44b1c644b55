package bridge

import (
	"log/slog"
	"time"
)

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a Proxy or a Listener.
type Option func(*config)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTimeout bounds how long a Proxy waits for a response.
// Zero, the default, waits until the caller's context ends.
// The Listener ignores it.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}
