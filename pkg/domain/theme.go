package domain

// Theme is the panel colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// DefaultTheme applies when nothing valid is stored.
const DefaultTheme = ThemeDark

// NormalizeTheme maps anything other than "dark" or "light" to the default.
func NormalizeTheme(s string) Theme {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s)
	}
	return DefaultTheme
}
