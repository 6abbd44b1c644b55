package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/transport"
)

// route describes how a page-bound kind is relayed and answered.
type route struct {
	// noTarget is the error text when no surface can be resolved.
	noTarget string
	// unavailable is the error text when the page still cannot be reached.
	// Empty means the underlying error text.
	unavailable string
	// refused is the error text when injection fails. Empty means unavailable.
	refused string
	// empty is the error text when the page answered nothing. Empty means reply as is.
	empty string
	// answer shapes the page's reply. Nil means the reply is passed through.
	answer func(resp domain.Response, injected bool) domain.Response
	// fallback, when set, replaces every failure.
	fallback *domain.Response
}

func succeed(domain.Response, bool) domain.Response { return domain.Ok() }

var (
	togglePanel = route{
		noTarget:    "No active tab to toggle panel.",
		unavailable: "Content script not available on this page.",
		answer: func(_ domain.Response, injected bool) domain.Response {
			return domain.Response{Success: true, InPage: true, Injected: injected}
		},
	}
	initiateCapture = route{
		noTarget: "No active tab to initiate snip.",
		answer:   succeed,
	}
	solveForm = route{
		noTarget:    "No active tab to solve form.",
		unavailable: "Content script unavailable for form solving.",
		refused:     "Cannot inject content script to solve form.",
		empty:       "No response from form solver.",
	}
	analyzeForm = route{
		noTarget:    "No active tab to analyze form.",
		unavailable: "Failed to analyze form. Make sure you are on a Google Form.",
		empty:       "No data received from content script.",
	}
	readPage = route{
		noTarget:    "No active tab to read.",
		unavailable: "Could not read page content. Make sure the page is loaded.",
		empty:       "No content received",
	}
	surfaceTheme = route{
		answer: func(resp domain.Response, _ bool) domain.Response {
			if resp.IsDark == nil {
				return domain.DarkReply(true)
			}
			return domain.DarkReply(*resp.IsDark)
		},
		fallback: ptr(domain.DarkReply(true)),
	}
	themeChanged = route{
		noTarget: "No active tab to apply theme.",
		answer:   succeed,
	}
	revealHint = route{
		noTarget: "No active tab to reveal hint.",
		answer:   succeed,
	}
	cleanupHints = route{
		noTarget: "No active tab to clean up hints.",
		answer:   succeed,
	}
)

func ptr[T any](v T) *T { return &v }

// injectError marks a failed remediation.
type injectError struct{ err error }

func (e *injectError) Error() string { return e.err.Error() }

func (e *injectError) Unwrap() error { return e.err }

// relay forwards req to its target surface and answers per rt.
func (r *Router) relay(ctx context.Context, req transport.Request, rt route) domain.Response {
	kind := req.Message.Kind()

	target, err := r.target(ctx, req)
	if err != nil {
		if rt.fallback != nil {
			return *rt.fallback
		}
		return domain.Failf(domain.ErrNoTarget, "%s", rt.noTarget)
	}

	resp, injected, err := r.forward(ctx, kind, target, req.Message)
	if err != nil {
		r.logger.Warn("forward failed", "kind", kind, "surface_id", target, "err", err)
		if rt.fallback != nil {
			return *rt.fallback
		}
		return rt.failure(err)
	}

	if resp.IsError() {
		if rt.fallback != nil {
			return *rt.fallback
		}
		return resp
	}
	if resp.Empty() && rt.empty != "" {
		return domain.Failf(domain.ErrNoReceiver, "%s", rt.empty)
	}
	if rt.answer != nil {
		return rt.answer(resp, injected)
	}
	return resp
}

func (rt route) failure(err error) domain.Response {
	var ie *injectError
	if errors.As(err, &ie) {
		text := rt.refused
		if text == "" {
			text = rt.unavailable
		}
		if text == "" {
			return domain.Fail(ie.err)
		}
		return domain.Fail(&domain.UserError{Kind: kindOf(ie.err, domain.ErrInjectionRefused), Text: text})
	}
	if rt.unavailable == "" {
		return domain.Fail(err)
	}
	return domain.Fail(&domain.UserError{Kind: kindOf(err, domain.ErrNoReceiver), Text: rt.unavailable})
}

// kindOf returns the taxonomy error matching err, or def.
func kindOf(err, def error) error {
	for _, k := range []error{
		domain.ErrNoReceiver, domain.ErrContextTornDown, domain.ErrInjectionRefused, domain.ErrNoTarget,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return def
}

// target is the sender's surface, or the active one for non-page senders.
func (r *Router) target(ctx context.Context, req transport.Request) (string, error) {
	if req.Surface != "" {
		return req.Surface, nil
	}
	if r.locator == nil {
		return "", domain.ErrNoTarget
	}
	return r.locator.ActiveSurface(ctx)
}

// forward sends msg to the page of surfaceID. A missing receiver is remediated
// by one injection followed by one retry.
func (r *Router) forward(ctx context.Context, kind domain.Kind, surfaceID string, msg domain.Message) (domain.Response, bool, error) {
	addr := transport.SurfaceAddress(surfaceID)

	resp, err := r.ep.Send(ctx, addr, msg)
	if err == nil || !errors.Is(err, domain.ErrNoReceiver) || r.injector == nil {
		return resp, false, err
	}

	r.logger.Info("no receiver on surface, injecting content script", "kind", kind, "surface_id", surfaceID)
	ierr := r.injector.Inject(ctx, surfaceID)
	r.hooks.remediation(ctx, RemediationEvent{Kind: kind, Surface: surfaceID, Err: ierr})
	if ierr != nil {
		return domain.Response{}, false, &injectError{err: ierr}
	}

	resp, err = r.ep.Send(ctx, addr, msg)
	if err != nil {
		return domain.Response{}, true, fmt.Errorf("retry after injection: %w", err)
	}
	return resp, true, nil
}
