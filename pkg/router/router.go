package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/ports"
	"github.com/aretw0/skury/pkg/transport"
)

// Router serves the coordinator address.
type Router struct {
	ep       *transport.Endpoint
	model    ports.Model
	locator  ports.SurfaceLocator
	injector ports.Injector
	capturer ports.ScreenCapturer
	hooks    Hooks
	logger   *slog.Logger
}

// New creates a router sending through ep. It does not listen until Start.
func New(ep *transport.Endpoint, model ports.Model, opts ...Option) *Router {
	r := &Router{
		ep:     ep,
		model:  model,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start registers the router at its endpoint.
func (r *Router) Start() error {
	return r.ep.Listen(r.Dispatch)
}

// Dispatch answers one request. It is the transport.Handler of the coordinator.
func (r *Router) Dispatch(ctx context.Context, req transport.Request, reply *transport.Reply) {
	start := time.Now()
	kind := req.Message.Kind()
	r.logger.Debug("message received", "kind", kind, "surface_id", req.Surface, "from", req.From)

	resp := r.serve(ctx, req)
	reply.Send(resp)

	r.hooks.dispatch(ctx, DispatchEvent{
		Kind:     kind,
		Surface:  req.Surface,
		Duration: time.Since(start),
		Code:     resp.Code,
	})
	if resp.IsError() {
		r.logger.Info("request failed", "kind", kind, "surface_id", req.Surface, "err", resp.Error)
	}
}

func (r *Router) serve(ctx context.Context, req transport.Request) domain.Response {
	switch msg := req.Message.(type) {
	case domain.TogglePanel:
		return r.relay(ctx, req, togglePanel)
	case domain.InitiateCapture:
		return r.relay(ctx, req, initiateCapture)
	case domain.SolveVisibleForm:
		return r.relay(ctx, req, solveForm)
	case domain.AnalyzeStructuredForm:
		return r.relay(ctx, req, analyzeForm)
	case domain.ReadPageContent:
		return r.relay(ctx, req, readPage)
	case domain.GetSurfaceTheme:
		return r.relay(ctx, req, surfaceTheme)
	case domain.ThemeChanged:
		msg.Theme = domain.NormalizeTheme(string(msg.Theme))
		req.Message = msg
		return r.relay(ctx, req, themeChanged)
	case domain.RevealHint:
		return r.relay(ctx, req, revealHint)
	case domain.CleanupHints:
		return r.relay(ctx, req, cleanupHints)
	case domain.RemoteCall:
		return r.remoteCall(ctx, msg)
	case domain.SuggestAnswer:
		return r.suggestAnswer(ctx, msg)
	case domain.CaptureVisibleSurface:
		return r.captureVisible(ctx)
	case domain.SnipResult, domain.SnipError:
		return domain.Failf(domain.ErrUnknownKind, "%s is delivered to the panel, not the coordinator", msg.Kind())
	}
	return domain.Failf(domain.ErrUnknownKind, "unsupported message: %s", req.Message.Kind())
}

func (r *Router) captureVisible(ctx context.Context) domain.Response {
	if r.capturer == nil {
		return domain.Failf(domain.ErrNoTarget, "Screen capture is not available.")
	}
	url, err := r.capturer.CaptureVisible(ctx)
	if err != nil {
		return domain.Fail(err)
	}
	return domain.Response{DataURL: url}
}
