package transport

import (
	"context"

	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/ports"
)

// Runtime is the ports.Runtime of a context that holds privileged APIs:
// messages go to the coordinator through its endpoint, storage goes to the shared store.
type Runtime struct {
	ep    *Endpoint
	store ports.PreferenceStore
}

var _ ports.Runtime = (*Runtime)(nil)

// NewRuntime binds an endpoint and the preference store.
func NewRuntime(ep *Endpoint, store ports.PreferenceStore) *Runtime {
	return &Runtime{ep: ep, store: store}
}

// Endpoint returns the underlying endpoint.
func (r *Runtime) Endpoint() *Endpoint { return r.ep }

func (r *Runtime) SendMessage(ctx context.Context, msg domain.Message) (domain.Response, error) {
	return r.ep.Send(ctx, Coordinator, msg)
}

func (r *Runtime) StorageGet(ctx context.Context, keys ...string) (map[string]string, error) {
	if !r.ep.valid() {
		return nil, domain.ErrContextTornDown
	}
	return r.store.Get(ctx, keys...)
}

func (r *Runtime) StorageSet(ctx context.Context, items map[string]string) error {
	if !r.ep.valid() {
		return domain.ErrContextTornDown
	}
	return r.store.Set(ctx, items)
}
