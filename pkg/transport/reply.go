package transport

import (
	"sync"
	"sync/atomic"

	"github.com/aretw0/skury/pkg/domain"
)

// Reply is the single-resolution response sink of one request.
// The first Send resolves it; later calls are no-ops.
type Reply struct {
	once     sync.Once
	ch       chan domain.Response
	deferred atomic.Bool
}

func newReply() *Reply {
	return &Reply{ch: make(chan domain.Response, 1)}
}

// Send resolves the request. It reports false if the reply was already sent.
func (r *Reply) Send(resp domain.Response) bool {
	sent := false
	r.once.Do(func() {
		r.ch <- resp
		sent = true
	})
	return sent
}

// Defer marks the reply as answered later, after the handler returns.
// Without it, a handler that returns without sending resolves the caller
// with an empty Response.
func (r *Reply) Defer() {
	r.deferred.Store(true)
}

func (r *Reply) settle() {
	if !r.deferred.Load() {
		r.Send(domain.Response{})
	}
}
