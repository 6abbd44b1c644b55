package ports

import (
	"context"
)

// PreferenceStore persists scalar preferences keyed by string.
// Writes are last-write-wins; there is no versioning.
type PreferenceStore interface {
	// Get returns the values of the requested keys.
	// Keys that are not set are absent from the result, never an error.
	// With no keys, Get returns every stored preference.
	Get(ctx context.Context, keys ...string) (map[string]string, error)

	// Set writes every item, overwriting previous values.
	Set(ctx context.Context, items map[string]string) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
