package ports

import "context"

// SurfaceLocator resolves the surface a request should be forwarded to
// when the sender is not itself a page.
type SurfaceLocator interface {
	// ActiveSurface returns the id of the active surface in the current window.
	// It returns domain.ErrNoTarget when there is none.
	ActiveSurface(ctx context.Context) (string, error)
}

// Injector installs the content script into a surface that has no receiver yet.
type Injector interface {
	// Inject returns domain.ErrInjectionRefused for restricted surfaces.
	Inject(ctx context.Context, surfaceID string) error
}

// ScreenCapturer grabs the visible frame of the active surface.
type ScreenCapturer interface {
	// CaptureVisible returns the frame as a PNG data URL.
	CaptureVisible(ctx context.Context) (string, error)
}
