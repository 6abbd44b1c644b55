package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/ports"
	"github.com/google/uuid"
)

type result struct {
	value any
	err   error
}

// Proxy implements ports.Runtime for a context without privileged APIs.
type Proxy struct {
	ch     Channel
	cfg    config
	cancel func()

	mu      sync.Mutex
	pending map[string]chan result
	closed  bool
}

var _ ports.Runtime = (*Proxy)(nil)

// NewProxy subscribes to ch and starts matching responses to pending calls.
func NewProxy(ch Channel, opts ...Option) *Proxy {
	cfg := config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	in, cancel := ch.Subscribe()
	p := &Proxy{
		ch:      ch,
		cfg:     cfg,
		cancel:  cancel,
		pending: make(map[string]chan result),
	}
	go p.loop(in)
	return p
}

// SendMessage relays msg to the coordinator through the privileged listener.
func (p *Proxy) SendMessage(ctx context.Context, msg domain.Message) (domain.Response, error) {
	payload, err := domain.Encode(msg)
	if err != nil {
		return domain.Response{}, err
	}
	v, err := p.call(ctx, APISendMessage, payload)
	if err != nil {
		return domain.Response{}, err
	}
	return domain.DecodeResponse(v)
}

// StorageGet reads preferences through the privileged listener.
func (p *Proxy) StorageGet(ctx context.Context, keys ...string) (map[string]string, error) {
	v, err := p.call(ctx, APIStorageGet, map[string]any{"keys": keys})
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	if v == nil {
		return out, nil
	}
	if err := domain.DecodeInto(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StorageSet writes preferences through the privileged listener.
func (p *Proxy) StorageSet(ctx context.Context, items map[string]string) error {
	_, err := p.call(ctx, APIStorageSet, map[string]any{"items": items})
	return err
}

// Pending returns the number of calls waiting for a response.
func (p *Proxy) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Close stops listening. Calls still pending fail with ErrContextTornDown.
func (p *Proxy) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	pending := p.pending
	p.pending = make(map[string]chan result)
	p.mu.Unlock()

	p.cancel()
	for _, ch := range pending {
		ch <- result{err: domain.ErrContextTornDown}
	}
}

func (p *Proxy) call(ctx context.Context, api string, payload map[string]any) (any, error) {
	id := uuid.NewString()
	done := make(chan result, 1)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, domain.ErrContextTornDown
	}
	p.pending[id] = done
	p.mu.Unlock()

	p.ch.Post(request{ID: id, API: api, Payload: payload}.wire())

	var timeout <-chan time.Time
	if p.cfg.timeout > 0 {
		timer := time.NewTimer(p.cfg.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case r := <-done:
		return r.value, r.err
	case <-timeout:
		p.forget(id)
		return nil, ErrBridgeTimeout
	case <-ctx.Done():
		p.forget(id)
		return nil, ctx.Err()
	}
}

func (p *Proxy) forget(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pending, id)
}

func (p *Proxy) loop(in <-chan map[string]any) {
	for raw := range in {
		if !isBridge(raw, DirectionResponse) {
			continue
		}
		var resp response
		if err := decodeEnvelope(raw, &resp); err != nil {
			p.cfg.logger.Debug("dropping malformed bridge response", "err", err)
			continue
		}

		p.mu.Lock()
		done, ok := p.pending[resp.ID]
		delete(p.pending, resp.ID)
		p.mu.Unlock()

		if !ok {
			p.cfg.logger.Debug("dropping bridge response with unknown id", "id", resp.ID)
			continue
		}

		r := result{value: resp.Result}
		if resp.Error != "" {
			r.err = domain.Response{Error: resp.Error, Code: resp.Code}.Err()
		}
		done <- r
	}
}
