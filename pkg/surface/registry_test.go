package surface_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestricted(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"", true},
		{"chrome://extensions", true},
		{"CHROME://settings", true},
		{"edge://flags", true},
		{"opera://about", true},
		{"about:blank", true},
		{"chrome-extension://abc/popup.html", true},
		{"https://example.com", false},
		{"https://docs.google.com/forms/d/1", false},
		{"file:///tmp/index.html", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, surface.Restricted(tt.url))
		})
	}
}

func TestRegistry_ActiveSurface(t *testing.T) {
	ctx := context.Background()
	r := surface.NewRegistry()

	_, err := r.ActiveSurface(ctx)
	assert.ErrorIs(t, err, domain.ErrNoTarget)

	a := r.Open(surface.Surface{URL: "https://a.example"})
	b := r.Open(surface.Surface{ID: "b", URL: "https://b.example"})
	assert.NotEmpty(t, a)
	assert.Equal(t, "b", b)

	id, err := r.ActiveSurface(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", id)

	require.NoError(t, r.Activate(a))
	id, _ = r.ActiveSurface(ctx)
	assert.Equal(t, a, id)

	assert.ErrorIs(t, r.Activate("missing"), domain.ErrNoTarget)

	r.Close(a)
	_, err = r.ActiveSurface(ctx)
	assert.ErrorIs(t, err, domain.ErrNoTarget)
	assert.Len(t, r.List(), 1)
}

func TestRegistry_Inject(t *testing.T) {
	ctx := context.Background()

	var injected []string
	r := surface.NewRegistry(surface.WithContentScript(func(_ context.Context, s surface.Surface) error {
		injected = append(injected, s.ID)
		return nil
	}))

	ok := r.Open(surface.Surface{ID: "ok", URL: "https://example.com"})
	settings := r.Open(surface.Surface{ID: "settings", URL: "chrome://settings"})

	require.NoError(t, r.Inject(ctx, ok))
	assert.Equal(t, []string{"ok"}, injected)

	err := r.Inject(ctx, settings)
	assert.ErrorIs(t, err, domain.ErrInjectionRefused)
	assert.Equal(t, "Cannot inject into restricted pages.", err.Error())
	assert.Len(t, injected, 1)

	assert.ErrorIs(t, r.Inject(ctx, "nope"), domain.ErrNoTarget)
}

func TestRegistry_InjectFailures(t *testing.T) {
	ctx := context.Background()
	r := surface.NewRegistry()
	id := r.Open(surface.Surface{URL: "https://example.com"})

	assert.ErrorIs(t, r.Inject(ctx, id), domain.ErrInjectionRefused)

	r.SetContentScript(func(context.Context, surface.Surface) error {
		return errors.New("boom")
	})
	assert.ErrorIs(t, r.Inject(ctx, id), domain.ErrInjectionRefused)
}

func TestRegistry_CaptureVisible(t *testing.T) {
	ctx := context.Background()
	r := surface.NewRegistry()

	_, err := r.CaptureVisible(ctx)
	assert.ErrorIs(t, err, domain.ErrNoTarget)

	id := r.Open(surface.Surface{URL: "https://example.com"})
	_, err = r.CaptureVisible(ctx)
	assert.ErrorIs(t, err, surface.ErrNoFrame)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	require.NoError(t, r.SetFrame(id, img))

	url, err := r.CaptureVisible(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	assert.ErrorIs(t, r.SetFrame("missing", img), domain.ErrNoTarget)
}
