package liveness

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/transport"
)

// Acceptor is the coordinator side of the liveness port.
type Acceptor struct {
	logger *slog.Logger

	mu    sync.Mutex
	ports map[transport.Port]struct{}

	accepted atomic.Int64
}

// NewAcceptor creates an acceptor. A nil logger discards output.
func NewAcceptor(logger *slog.Logger) *Acceptor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Acceptor{logger: logger, ports: make(map[transport.Port]struct{})}
}

// Accept serves one port until it disconnects. Ports with another name are closed.
// It blocks, so callers run it on its own goroutine.
func (a *Acceptor) Accept(p transport.Port) {
	if p.Name() != transport.KeepaliveName {
		a.logger.Debug("closing unknown port", "name", p.Name())
		_ = p.Close()
		return
	}

	a.mu.Lock()
	a.ports[p] = struct{}{}
	a.mu.Unlock()
	a.accepted.Add(1)
	a.logger.Info("keepalive port connected")

	defer func() {
		a.mu.Lock()
		delete(a.ports, p)
		a.mu.Unlock()
		a.logger.Info("keepalive port disconnected")
	}()

	for {
		select {
		case msg := <-p.Receive():
			if msg.Type == transport.PortPing {
				if err := p.Post(transport.PortMessage{Type: transport.PortPong}); err != nil {
					a.logger.Debug("pong failed", "err", err)
				}
			}
		case <-p.Done():
			return
		}
	}
}

// Connected returns the number of open keepalive ports.
func (a *Acceptor) Connected() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ports)
}

// Accepted returns the total number of keepalive ports accepted so far.
func (a *Acceptor) Accepted() int64 { return a.accepted.Load() }

// CloseAll asks every connected UI to close itself.
func (a *Acceptor) CloseAll() {
	a.mu.Lock()
	ports := make([]transport.Port, 0, len(a.ports))
	for p := range a.ports {
		ports = append(ports, p)
	}
	a.mu.Unlock()

	for _, p := range ports {
		_ = p.Post(transport.PortMessage{Type: transport.PortCloseSelf})
	}
}
