package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/skury/pkg/ports"
)

// Masked is the value shown in place of a redacted preference.
const Masked = "***"

type redactMiddleware struct {
	next     ports.PreferenceStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a read-side view that masks the values of keys matching the patterns.
// Writes pass through untouched; it is meant for listing preferences to a terminal or log.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.PreferenceStore) ports.PreferenceStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	stored, err := m.next.Get(ctx, keys...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(stored))
	for k, v := range stored {
		out[k] = v
		for _, p := range m.patterns {
			if p.MatchString(k) {
				out[k] = Masked
				break
			}
		}
	}
	return out, nil
}

func (m *redactMiddleware) Set(ctx context.Context, items map[string]string) error {
	return m.next.Set(ctx, items)
}

func (m *redactMiddleware) Delete(ctx context.Context, keys ...string) error {
	return m.next.Delete(ctx, keys...)
}
