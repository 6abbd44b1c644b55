package skury

import (
	"log/slog"
	"time"

	"github.com/aretw0/skury/pkg/gemini"
	"github.com/aretw0/skury/pkg/liveness"
	"github.com/aretw0/skury/pkg/observability"
	"github.com/aretw0/skury/pkg/ports"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the structured logger shared by every context.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithStore sets the preference store.
func WithStore(s ports.PreferenceStore) Option {
	return func(c *Coordinator) {
		c.store = s
	}
}

// WithModel replaces the Gemini client.
func WithModel(m ports.Model) Option {
	return func(c *Coordinator) {
		c.model = m
	}
}

// WithGeminiOptions configures the default Gemini client.
func WithGeminiOptions(opts ...gemini.Option) Option {
	return func(c *Coordinator) {
		c.geminiOpts = append(c.geminiOpts, opts...)
	}
}

// WithKeeperOptions configures the keepalive of every panel.
func WithKeeperOptions(opts ...liveness.Option) Option {
	return func(c *Coordinator) {
		c.keeperOpts = append(c.keeperOpts, opts...)
	}
}

// WithReplyTimeout sets how long panels wait before showing a timeout.
func WithReplyTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.replyTimeout = d
	}
}

// WithMetrics shares an existing set of collectors.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}
