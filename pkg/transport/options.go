package transport

import "log/slog"

// Option configures a Bus.
type Option func(*Bus)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}
