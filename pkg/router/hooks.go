package router

import (
	"context"
	"time"

	"github.com/aretw0/skury/pkg/domain"
)

// DispatchEvent describes one answered request.
type DispatchEvent struct {
	Kind     domain.Kind
	Surface  string
	Duration time.Duration
	// Code is the taxonomy code of an error reply, empty on success.
	Code string
}

// RemoteEvent describes one call to the model.
type RemoteEvent struct {
	Kind     domain.Kind
	Duration time.Duration
	Err      error
}

// RemediationEvent describes one injection attempt.
type RemediationEvent struct {
	Kind    domain.Kind
	Surface string
	Err     error
}

// Hooks are optional callbacks run synchronously by the router.
type Hooks struct {
	OnDispatch    func(ctx context.Context, e DispatchEvent)
	OnRemoteCall  func(ctx context.Context, e RemoteEvent)
	OnRemediation func(ctx context.Context, e RemediationEvent)
}

func (h Hooks) dispatch(ctx context.Context, e DispatchEvent) {
	if h.OnDispatch != nil {
		h.OnDispatch(ctx, e)
	}
}

func (h Hooks) remote(ctx context.Context, e RemoteEvent) {
	if h.OnRemoteCall != nil {
		h.OnRemoteCall(ctx, e)
	}
}

func (h Hooks) remediation(ctx context.Context, e RemediationEvent) {
	if h.OnRemediation != nil {
		h.OnRemediation(ctx, e)
	}
}
