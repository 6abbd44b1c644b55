package page

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/aretw0/skury/pkg/domain"
)

func (s *Session) installBubble() {
	body := s.doc.Find("body").First()
	if s.doc.Find("#" + bubbleID).Length() > 0 {
		s.logger.Debug("bubble already present")
		return
	}
	body.AppendHtml(`<div id="` + bubbleID + `" class="theme-` + string(s.theme) + `"></div>`)
}

// ensurePanel must be called with mu held.
func (s *Session) ensurePanel() *goquery.Selection {
	panel := s.doc.Find("#" + panelID)
	if panel.Length() == 0 {
		s.doc.Find("body").First().AppendHtml(`<div id="` + panelID + `" class="theme-` + string(s.theme) + `" hidden></div>`)
		panel = s.doc.Find("#" + panelID)
	}
	return panel
}

// ClickBubble asks the coordinator to toggle the panel of this surface.
func (s *Session) ClickBubble(ctx context.Context) (domain.Response, error) {
	return s.rt.SendMessage(ctx, domain.TogglePanel{})
}

// TogglePanel opens a closed panel and closes an open one.
func (s *Session) TogglePanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPanel(!s.panelOpen)
}

// ClickOutside closes the panel, unless a snip is in progress.
func (s *Session) ClickOutside() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.panelOpen || s.snip != nil {
		return
	}
	s.setPanel(false)
}

// PressEscape cancels an active snip, or else closes the panel.
func (s *Session) PressEscape() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snip != nil {
		s.snip = nil
		return
	}
	if s.panelOpen {
		s.setPanel(false)
	}
}

// PanelOpen reports whether the in-page panel is shown.
func (s *Session) PanelOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panelOpen
}

func (s *Session) setPanel(open bool) {
	panel := s.ensurePanel()
	s.panelOpen = open
	if open {
		panel.RemoveAttr("hidden")
	} else {
		panel.SetAttr("hidden", "")
	}
	s.logger.Debug("panel toggled", "open", open)
}

// ApplyTheme sets the bubble and panel theme. Unknown values fall back to dark.
func (s *Session) ApplyTheme(t domain.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = domain.NormalizeTheme(string(t))
	s.doc.Find("#"+bubbleID+", #"+panelID).
		RemoveClass("theme-dark", "theme-light").
		AddClass("theme-" + string(s.theme))
}

// Theme returns the applied theme.
func (s *Session) Theme() domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// LoadTheme applies the stored theme, or dark when storage is unavailable.
func (s *Session) LoadTheme(ctx context.Context) {
	stored, err := s.rt.StorageGet(ctx, domain.KeyTheme)
	if err != nil {
		s.logger.Warn("failed to load theme", "err", err)
		s.ApplyTheme(domain.DefaultTheme)
		return
	}
	s.ApplyTheme(domain.Theme(stored[domain.KeyTheme]))
}
