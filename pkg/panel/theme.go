package panel

import (
	"context"

	"github.com/aretw0/skury/pkg/domain"
)

// SetTheme applies theme, tells the page and persists the choice.
func (p *Panel) SetTheme(ctx context.Context, theme domain.Theme) error {
	normalized := domain.NormalizeTheme(string(theme))

	p.mu.Lock()
	p.theme = normalized
	p.mu.Unlock()

	if _, err := p.rt.SendMessage(ctx, domain.ThemeChanged{Theme: normalized}); err != nil {
		p.logger.Warn("failed to announce theme", "err", err)
	}
	return p.rt.StorageSet(ctx, map[string]string{domain.KeyTheme: string(normalized)})
}

// LoadTheme applies the stored theme, dark when none is stored.
func (p *Panel) LoadTheme(ctx context.Context) error {
	stored, err := p.rt.StorageGet(ctx, domain.KeyTheme)
	if err != nil {
		return err
	}
	return p.SetTheme(ctx, domain.Theme(stored[domain.KeyTheme]))
}

// Theme returns the applied theme.
func (p *Panel) Theme() domain.Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.theme
}
