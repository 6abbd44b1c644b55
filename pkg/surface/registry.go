// Package surface tracks the browsing surfaces (tabs) known to the coordinator.
package surface

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"sync"

	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/capture"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/ports"
	"github.com/google/uuid"
)

var restricted = regexp.MustCompile(`(?i)^(chrome|edge|opera|about|chrome-extension):`)

// Restricted reports whether the content script may never run on url.
// An empty url is restricted too.
func Restricted(url string) bool {
	return url == "" || restricted.MatchString(url)
}

// Surface is one open page.
type Surface struct {
	ID       string
	URL      string
	HTML     string
	Viewport capture.Viewport
	// Frame is the last rendered picture of the visible area, if any.
	Frame image.Image
}

// ContentScript installs the page session of s. It is invoked by Inject.
type ContentScript func(ctx context.Context, s Surface) error

// Option configures a Registry.
type Option func(*Registry)

// WithContentScript sets the function run on injection.
func WithContentScript(fn ContentScript) Option {
	return func(r *Registry) {
		r.script = fn
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry manages the open surfaces and which one is active.
type Registry struct {
	mu       sync.RWMutex
	surfaces map[string]*Surface
	active   string
	script   ContentScript
	logger   *slog.Logger
}

var (
	_ ports.SurfaceLocator = (*Registry)(nil)
	_ ports.Injector       = (*Registry)(nil)
	_ ports.ScreenCapturer = (*Registry)(nil)
)

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		surfaces: make(map[string]*Surface),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetContentScript replaces the function run on injection.
func (r *Registry) SetContentScript(fn ContentScript) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.script = fn
}

// Open adds s and makes it the active surface. An empty ID gets a fresh one.
// Opening an existing ID replaces it.
func (r *Registry) Open(s Surface) string {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surfaces[s.ID] = &s
	r.active = s.ID
	r.logger.Debug("surface opened", "surface_id", s.ID, "url", s.URL)
	return s.ID
}

// Close forgets a surface. Closing the active one leaves no active surface.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.surfaces, id)
	if r.active == id {
		r.active = ""
	}
}

// Activate focuses an open surface.
func (r *Registry) Activate(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.surfaces[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNoTarget, id)
	}
	r.active = id
	return nil
}

// Get returns a copy of the surface with the given id.
func (r *Registry) Get(id string) (Surface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surfaces[id]
	if !ok {
		return Surface{}, false
	}
	return *s, true
}

// List returns every open surface.
func (r *Registry) List() []Surface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Surface, 0, len(r.surfaces))
	for _, s := range r.surfaces {
		out = append(out, *s)
	}
	return out
}

// SetFrame records what the surface currently shows.
func (r *Registry) SetFrame(id string, frame image.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surfaces[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNoTarget, id)
	}
	s.Frame = frame
	return nil
}

func (r *Registry) ActiveSurface(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == "" {
		return "", domain.ErrNoTarget
	}
	return r.active, nil
}

func (r *Registry) Inject(ctx context.Context, surfaceID string) error {
	r.mu.RLock()
	s, ok := r.surfaces[surfaceID]
	var snapshot Surface
	if ok {
		snapshot = *s
	}
	script := r.script
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNoTarget, surfaceID)
	}
	if Restricted(snapshot.URL) {
		r.logger.Info("injection refused", "surface_id", surfaceID, "url", snapshot.URL)
		return domain.Userf(domain.ErrInjectionRefused, "Cannot inject into restricted pages.")
	}
	if script == nil {
		return fmt.Errorf("%w: no content script registered", domain.ErrInjectionRefused)
	}
	if err := script(ctx, snapshot); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInjectionRefused, err)
	}
	r.logger.Debug("content script injected", "surface_id", surfaceID)
	return nil
}

// ErrNoFrame is returned when the active surface has not rendered anything yet.
var ErrNoFrame = errors.New("surface has no rendered frame")

func (r *Registry) CaptureVisible(_ context.Context) (string, error) {
	r.mu.RLock()
	s, ok := r.surfaces[r.active]
	var frame image.Image
	if ok {
		frame = s.Frame
	}
	r.mu.RUnlock()

	if !ok {
		return "", domain.ErrNoTarget
	}
	if frame == nil {
		return "", ErrNoFrame
	}
	return capture.PNGDataURL(frame)
}
