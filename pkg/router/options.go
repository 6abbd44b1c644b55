package router

import (
	"log/slog"

	"github.com/aretw0/skury/pkg/ports"
)

// Option configures a Router.
type Option func(*Router)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithLocator sets how the active surface is found for non-page senders.
func WithLocator(l ports.SurfaceLocator) Option {
	return func(r *Router) {
		r.locator = l
	}
}

// WithInjector enables the one-shot remediation of missing receivers.
func WithInjector(i ports.Injector) Option {
	return func(r *Router) {
		r.injector = i
	}
}

// WithCapturer sets the source of visible-surface screenshots.
func WithCapturer(c ports.ScreenCapturer) Option {
	return func(r *Router) {
		r.capturer = c
	}
}

// WithLifecycleHooks registers dispatch, model and remediation callbacks.
func WithLifecycleHooks(h Hooks) Option {
	return func(r *Router) {
		r.hooks = h
	}
}
