package tui_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/aretw0/skury/internal/presentation/tui"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer(t *testing.T) {
	for _, theme := range []domain.Theme{domain.ThemeDark, domain.ThemeLight, "sepia"} {
		render, err := tui.NewRenderer(theme, 60)
		require.NoError(t, err)
		out, err := render("**B** is the answer")
		require.NoError(t, err)
		assert.Contains(t, out, "answer")
	}
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}

func TestIsTerminal_File(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	ok, width := tui.IsTerminal(f)
	assert.False(t, ok)
	assert.Zero(t, width)
}
