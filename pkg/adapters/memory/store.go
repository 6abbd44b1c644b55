package memory

import (
	"context"
	"maps"
	"sync"
)

// Store implements ports.PreferenceStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store, optionally seeded with items.
func NewStore(seed ...map[string]string) *Store {
	s := &Store{
		data: make(map[string]string),
	}
	for _, items := range seed {
		maps.Copy(s.data, items)
	}
	return s
}

// Get returns the requested preferences, or all of them when no keys are given.
func (s *Store) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(keys) == 0 {
		return maps.Clone(s.data), nil
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Set stores the items, last write wins.
func (s *Store) Set(ctx context.Context, items map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.data, items)
	return nil
}

// Delete removes the keys.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}
