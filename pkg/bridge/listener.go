package bridge

import (
	"context"
	"fmt"

	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/ports"
)

// Listener serves bridge requests with a real Runtime.
type Listener struct {
	ch     Channel
	rt     ports.Runtime
	cfg    config
	cancel func()
	done   chan struct{}
}

// NewListener subscribes to ch and serves every bridge request with rt.
func NewListener(ch Channel, rt ports.Runtime, opts ...Option) *Listener {
	cfg := config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	in, cancel := ch.Subscribe()
	l := &Listener{ch: ch, rt: rt, cfg: cfg, cancel: cancel, done: make(chan struct{})}
	go l.loop(in)
	return l
}

// Close stops serving. Requests already being served still post their response.
func (l *Listener) Close() {
	l.cancel()
	<-l.done
}

func (l *Listener) loop(in <-chan map[string]any) {
	defer close(l.done)
	for raw := range in {
		if !isBridge(raw, DirectionRequest) {
			continue
		}
		var req request
		if err := decodeEnvelope(raw, &req); err != nil || req.ID == "" {
			l.cfg.logger.Debug("dropping malformed bridge request", "err", err)
			continue
		}
		go l.serve(req)
	}
}

func (l *Listener) serve(req request) {
	ctx := context.Background()
	value, err := l.dispatch(ctx, req)

	resp := response{ID: req.ID, Result: value}
	if err != nil {
		l.cfg.logger.Debug("bridge call failed", "api", req.API, "err", err)
		resp.Result = nil
		resp.Error = err.Error()
		resp.Code = domain.CodeOf(err)
	}
	l.ch.Post(resp.wire())
}

func (l *Listener) dispatch(ctx context.Context, req request) (any, error) {
	switch req.API {
	case APISendMessage:
		msg, err := domain.Decode(req.Payload)
		if err != nil {
			return nil, err
		}
		resp, err := l.rt.SendMessage(ctx, msg)
		if err != nil {
			return nil, err
		}
		return domain.EncodeResponse(resp)

	case APIStorageGet:
		var p storageGetPayload
		if err := domain.DecodeInto(req.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		return l.rt.StorageGet(ctx, p.Keys...)

	case APIStorageSet:
		var p storageSetPayload
		if err := domain.DecodeInto(req.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		return nil, l.rt.StorageSet(ctx, p.Items)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAPI, req.API)
	}
}
