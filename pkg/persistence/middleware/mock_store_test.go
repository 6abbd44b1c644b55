package middleware_test

import (
	"context"

	"github.com/aretw0/skury/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]string),
	}
}

func (s *MockStore) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string)
	if len(keys) == 0 {
		for k, v := range s.data {
			out[k] = v
		}
		return out, nil
	}
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *MockStore) Set(ctx context.Context, items map[string]string) error {
	for k, v := range items {
		s.data[k] = v
	}
	return nil
}

func (s *MockStore) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

var _ ports.PreferenceStore = (*MockStore)(nil)
