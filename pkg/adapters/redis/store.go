package redis

import (
	"context"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.PreferenceStore as a single Redis hash.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix; the hash lives at prefix+"preferences".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "skury:",
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key() string {
	return s.prefix + "preferences"
}

// Get reads the requested fields of the preferences hash.
func (s *Store) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	if len(keys) == 0 {
		all, err := s.client.HGetAll(ctx, s.key()).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get from redis: %w", err)
		}
		return all, nil
	}

	vals, err := s.client.HMGet(ctx, s.key(), keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	out := make(map[string]string, len(keys))
	for i, v := range vals {
		// Missing fields come back as nil.
		if str, ok := v.(string); ok {
			out[keys[i]] = str
		}
	}
	return out, nil
}

// Set writes every item in one HSET.
func (s *Store) Set(ctx context.Context, items map[string]string) error {
	if len(items) == 0 {
		return nil
	}
	args := make([]any, 0, 2*len(items))
	for k, v := range items {
		args = append(args, k, v)
	}
	if err := s.client.HSet(ctx, s.key(), args...).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Delete removes fields from the hash.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.HDel(ctx, s.key(), keys...).Err()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
