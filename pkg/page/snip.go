package page

import (
	"context"

	"github.com/aretw0/skury/pkg/capture"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/transport"
)

// SnipFailed is reported to the panel when no image could be produced.
const SnipFailed = "Capture failed or blocked."

type snip struct {
	pressed        bool
	x0, y0, x1, y1 float64
}

// StartSnip shows the selection overlay. It is a no-op while one is active.
func (s *Session) StartSnip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snip != nil {
		return
	}
	s.logger.Debug("starting snip overlay")
	s.snip = &snip{}
}

// Snipping reports whether the overlay is active.
func (s *Session) Snipping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snip != nil
}

// SnipPress anchors the selection at (x, y).
func (s *Session) SnipPress(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snip == nil {
		return
	}
	*s.snip = snip{pressed: true, x0: x, y0: y, x1: x, y1: y}
}

// SnipMove drags the free corner of the selection.
func (s *Session) SnipMove(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snip == nil || !s.snip.pressed {
		return
	}
	s.snip.x1, s.snip.y1 = x, y
}

// CancelSnip removes the overlay without capturing.
func (s *Session) CancelSnip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snip = nil
}

// SnipRelease ends the selection at (x, y), captures it and delivers the
// result to the panel of this surface. A release without a press cancels.
func (s *Session) SnipRelease(ctx context.Context, x, y float64) error {
	s.mu.Lock()
	sn := s.snip
	s.snip = nil
	s.mu.Unlock()

	if sn == nil || !sn.pressed {
		return nil
	}
	rect := capture.Normalize(sn.x0, sn.y0, x, y)

	var msg domain.Message = domain.SnipError{Error: SnipFailed}
	if img := s.captureArea(ctx, rect); img != "" {
		s.logger.Debug("snip captured", "bytes", len(img))
		msg = domain.SnipResult{Image: img}
	} else {
		s.logger.Warn("snip produced no image")
	}

	_, err := s.ep.Send(ctx, transport.PanelAddress(s.surfaceID), msg)
	if err != nil {
		s.logger.Warn("failed to deliver snip", "err", err)
	}
	return err
}

func (s *Session) captureArea(ctx context.Context, rect capture.Rect) string {
	if rect.W < capture.MinSide || rect.H < capture.MinSide {
		return ""
	}

	resp, err := s.rt.SendMessage(ctx, domain.CaptureVisibleSurface{})
	if err != nil {
		s.logger.Warn("capture request failed", "err", err)
		return ""
	}
	if resp.DataURL == "" {
		s.logger.Warn("capture returned no frame", "err", resp.Error)
		return ""
	}

	img, err := capture.Crop(resp.DataURL, rect, s.viewport)
	if err != nil {
		s.logger.Warn("failed to crop snip", "err", err)
		return ""
	}
	return img
}
