package ports

import (
	"context"

	"github.com/aretw0/skury/pkg/domain"
)

// Runtime is the privileged API a UI context uses to reach the coordinator.
// The panel talks to it directly; a sandboxed page script reaches it through the bridge.
type Runtime interface {
	// SendMessage delivers msg to the coordinator and returns its single reply.
	SendMessage(ctx context.Context, msg domain.Message) (domain.Response, error)

	// StorageGet reads preferences. Missing keys are absent from the result.
	StorageGet(ctx context.Context, keys ...string) (map[string]string, error)

	// StorageSet writes preferences.
	StorageSet(ctx context.Context, items map[string]string) error
}
