// Package keyring stores preferences in the operating system keyring.
// It is meant for the API credential; every value is one keyring secret.
package keyring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	backend "github.com/zalando/go-keyring"
)

// DefaultService is the keyring service name.
const DefaultService = "skury"

// indexUser holds the JSON list of stored keys, since keyrings cannot be enumerated.
const indexUser = "__index__"

// Store implements ports.PreferenceStore over the OS keyring.
type Store struct {
	service string
	mu      sync.Mutex
}

// New creates a keyring store for service. Empty service means DefaultService.
func New(service string) *Store {
	if service == "" {
		service = DefaultService
	}
	return &Store{service: service}
}

// Get reads the requested secrets. Missing entries are absent from the result.
func (s *Store) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(keys) == 0 {
		idx, err := s.index()
		if err != nil {
			return nil, err
		}
		keys = idx
	}

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, err := backend.Get(s.service, k)
		if errors.Is(err, backend.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %q from keyring: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// Set writes every item as its own secret.
func (s *Store) Set(ctx context.Context, items map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.index()
	if err != nil {
		return err
	}
	for k, v := range items {
		if err := backend.Set(s.service, k, v); err != nil {
			return fmt.Errorf("failed to write %q to keyring: %w", k, err)
		}
		if !slices.Contains(idx, k) {
			idx = append(idx, k)
		}
	}
	return s.saveIndex(idx)
}

// Delete removes secrets. Missing entries are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.index()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := backend.Delete(s.service, k); err != nil && !errors.Is(err, backend.ErrNotFound) {
			return fmt.Errorf("failed to delete %q from keyring: %w", k, err)
		}
		idx = slices.DeleteFunc(idx, func(e string) bool { return e == k })
	}
	return s.saveIndex(idx)
}

func (s *Store) index() ([]string, error) {
	raw, err := backend.Get(s.service, indexUser)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keyring index: %w", err)
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("corrupt keyring index: %w", err)
	}
	return keys, nil
}

func (s *Store) saveIndex(keys []string) error {
	raw, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	if err := backend.Set(s.service, indexUser, string(raw)); err != nil {
		return fmt.Errorf("failed to write keyring index: %w", err)
	}
	return nil
}
