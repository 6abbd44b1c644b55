package panel

import (
	"log/slog"
	"time"

	"github.com/aretw0/skury/pkg/liveness"
)

// DefaultReplyTimeout is how long a call may run before the transcript reports a timeout.
const DefaultReplyTimeout = 30 * time.Second

// Option configures a Panel.
type Option func(*Panel)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Panel) {
		p.logger = logger
	}
}

// WithKeeper attaches the liveness keeper driven by Show and Hide.
func WithKeeper(k *liveness.Keeper) Option {
	return func(p *Panel) {
		p.keeper = k
	}
}

// WithReplyTimeout sets the advisory timeout of model calls.
func WithReplyTimeout(d time.Duration) Option {
	return func(p *Panel) {
		p.replyTimeout = d
	}
}
