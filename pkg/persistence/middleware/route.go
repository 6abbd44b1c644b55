package middleware

import (
	"context"
	"maps"
	"slices"

	"github.com/aretw0/skury/pkg/ports"
)

type routeMiddleware struct {
	next   ports.PreferenceStore
	secure ports.PreferenceStore
	keys   []string
}

// NewRouteMiddleware sends the given keys to secure and everything else to the wrapped store.
// It is how the credential ends up in the OS keyring while the theme stays in the regular backend.
func NewRouteMiddleware(secure ports.PreferenceStore, keys ...string) Middleware {
	return func(next ports.PreferenceStore) ports.PreferenceStore {
		return &routeMiddleware{next: next, secure: secure, keys: keys}
	}
}

func (m *routeMiddleware) split(keys []string) (secure, plain []string) {
	for _, k := range keys {
		if slices.Contains(m.keys, k) {
			secure = append(secure, k)
		} else {
			plain = append(plain, k)
		}
	}
	return secure, plain
}

func (m *routeMiddleware) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	secureKeys, plainKeys := m.split(keys)
	if len(keys) == 0 {
		secureKeys = m.keys
	}

	out := make(map[string]string)
	if len(keys) == 0 || len(plainKeys) > 0 {
		plain, err := m.next.Get(ctx, plainKeys...)
		if err != nil {
			return nil, err
		}
		for k, v := range plain {
			if !slices.Contains(m.keys, k) {
				out[k] = v
			}
		}
	}
	if len(secureKeys) > 0 {
		secret, err := m.secure.Get(ctx, secureKeys...)
		if err != nil {
			return nil, err
		}
		maps.Copy(out, secret)
	}
	return out, nil
}

func (m *routeMiddleware) Set(ctx context.Context, items map[string]string) error {
	secret := make(map[string]string)
	plain := make(map[string]string)
	for k, v := range items {
		if slices.Contains(m.keys, k) {
			secret[k] = v
		} else {
			plain[k] = v
		}
	}
	if len(secret) > 0 {
		if err := m.secure.Set(ctx, secret); err != nil {
			return err
		}
	}
	if len(plain) > 0 {
		return m.next.Set(ctx, plain)
	}
	return nil
}

func (m *routeMiddleware) Delete(ctx context.Context, keys ...string) error {
	secureKeys, plainKeys := m.split(keys)
	if len(secureKeys) > 0 {
		if err := m.secure.Delete(ctx, secureKeys...); err != nil {
			return err
		}
	}
	if len(plainKeys) > 0 {
		return m.next.Delete(ctx, plainKeys...)
	}
	return nil
}
