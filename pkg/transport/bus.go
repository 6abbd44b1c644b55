package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/domain"
)

// Request is a message as seen by the receiving handler.
type Request struct {
	From Address
	// Surface is the sender's surface id when the sender is a page or panel.
	Surface string
	Message domain.Message
}

// Handler serves the requests addressed to an Endpoint.
// It runs on its own goroutine and must resolve reply at most once.
type Handler func(ctx context.Context, req Request, reply *Reply)

// Bus routes requests between endpoints and hands new ports to the acceptor.
type Bus struct {
	mu        sync.RWMutex
	listeners map[Address]*Endpoint
	acceptor  func(Port)
	closed    bool
	logger    *slog.Logger
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		listeners: make(map[Address]*Endpoint),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Endpoint creates the link of one context to the bus.
// It does not receive anything until Listen is called.
func (b *Bus) Endpoint(addr Address) *Endpoint {
	surface, _ := addr.SurfaceID()
	return &Endpoint{
		bus:     b,
		addr:    addr,
		surface: surface,
		done:    make(chan struct{}),
	}
}

// Listening reports whether a handler is registered at addr.
func (b *Bus) Listening(addr Address) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.listeners[addr]
	return ok
}

// OnConnect registers the acceptor that receives the coordinator end of every new port.
func (b *Bus) OnConnect(acceptor func(Port)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.acceptor = acceptor
}

// Connect opens a named port towards the coordinator and returns the caller's end.
func (b *Bus) Connect(name string) (Port, error) {
	b.mu.RLock()
	closed, acceptor := b.closed, b.acceptor
	b.mu.RUnlock()

	if closed {
		return nil, domain.ErrContextTornDown
	}
	if acceptor == nil {
		return nil, fmt.Errorf("%w: no port acceptor", domain.ErrNoReceiver)
	}

	local, remote := NewPipe(name)
	go acceptor(remote)
	return local, nil
}

// Close tears the bus down: every endpoint becomes invalid.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	eps := make([]*Endpoint, 0, len(b.listeners))
	for _, ep := range b.listeners {
		eps = append(eps, ep)
	}
	b.listeners = map[Address]*Endpoint{}
	b.mu.Unlock()

	for _, ep := range eps {
		ep.shutdown()
	}
}

func (b *Bus) register(ep *Endpoint) (*Endpoint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, domain.ErrContextTornDown
	}
	prev := b.listeners[ep.addr]
	b.listeners[ep.addr] = ep
	return prev, nil
}

func (b *Bus) unregister(ep *Endpoint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners[ep.addr] == ep {
		delete(b.listeners, ep.addr)
	}
}

func (b *Bus) lookup(addr Address) (*Endpoint, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, false, domain.ErrContextTornDown
	}
	ep, ok := b.listeners[addr]
	return ep, ok, nil
}

// Endpoint is one context's link to the bus.
type Endpoint struct {
	bus     *Bus
	addr    Address
	surface string

	mu      sync.RWMutex
	handler Handler
	closed  bool
	done    chan struct{}
	once    sync.Once
}

// Address returns where this endpoint listens.
func (e *Endpoint) Address() Address { return e.addr }

// Listen registers h for requests addressed to this endpoint.
// A previous listener at the same address is replaced and torn down.
func (e *Endpoint) Listen(h Handler) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrContextTornDown
	}
	e.handler = h
	e.mu.Unlock()

	prev, err := e.bus.register(e)
	if err != nil {
		return err
	}
	if prev != nil && prev != e {
		e.bus.logger.Debug("listener replaced", "address", e.addr)
		prev.shutdown()
	}
	return nil
}

// Send delivers msg to the context listening at to and waits for its reply.
// Cancelling ctx stops the wait only; the receiver runs to completion.
func (e *Endpoint) Send(ctx context.Context, to Address, msg domain.Message) (domain.Response, error) {
	if !e.valid() {
		return domain.Response{}, domain.ErrContextTornDown
	}

	target, ok, err := e.bus.lookup(to)
	if err != nil {
		return domain.Response{}, err
	}
	if !ok {
		return domain.Response{}, fmt.Errorf("%w: %s", domain.ErrNoReceiver, to)
	}

	h := target.currentHandler()
	if h == nil {
		return domain.Response{}, fmt.Errorf("%w: %s", domain.ErrNoReceiver, to)
	}

	req := Request{From: e.addr, Surface: e.surface, Message: msg}
	reply := newReply()
	hctx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.bus.logger.Error("handler panicked", "address", to, "kind", msg.Kind(), "panic", r)
				reply.Send(domain.Fail(fmt.Errorf("handler failed: %v", r)))
			}
		}()
		h(hctx, req, reply)
		reply.settle()
	}()

	select {
	case resp := <-reply.ch:
		return resp, nil
	case <-target.done:
		select {
		case resp := <-reply.ch:
			return resp, nil
		default:
		}
		return domain.Response{}, fmt.Errorf("%w: %s closed before responding", domain.ErrNoReceiver, to)
	case <-ctx.Done():
		return domain.Response{}, ctx.Err()
	}
}

// Close stops listening and invalidates the endpoint for sending.
func (e *Endpoint) Close() {
	e.bus.unregister(e)
	e.shutdown()
}

// Done is closed once the endpoint is torn down.
func (e *Endpoint) Done() <-chan struct{} { return e.done }

func (e *Endpoint) shutdown() {
	e.once.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.handler = nil
		e.mu.Unlock()
		close(e.done)
	})
}

func (e *Endpoint) valid() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.closed
}

func (e *Endpoint) currentHandler() Handler {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.handler
}
