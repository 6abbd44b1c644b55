package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/skury/internal/presentation/tui"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/ports"
)

// PrintReply writes a model reply to out. On a terminal it is rendered as
// markdown in the stored panel theme; otherwise it is written as is.
func PrintReply(ctx context.Context, out *os.File, store ports.PreferenceStore, reply string) error {
	ok, width := tui.IsTerminal(out)
	if !ok {
		_, err := fmt.Fprintln(out, reply)
		return err
	}

	theme := domain.DefaultTheme
	if vals, err := store.Get(ctx, domain.KeyTheme); err == nil {
		theme = domain.NormalizeTheme(vals[domain.KeyTheme])
	}
	render, err := tui.NewRenderer(theme, width)
	if err != nil {
		return err
	}
	text, err := render(reply)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, text)
	return err
}
