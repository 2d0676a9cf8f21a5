// Package theme holds the light/dark display preference and where it is kept.
package theme

import "strings"

const (
	Dark  Theme = "dark"
	Light Theme = "light"

	// Default applies when no preference has been stored yet.
	Default = Dark

	// Key is the single preference key; its value is one of the two themes.
	Key = "theme"
)

type Theme string

// Parse maps any string to a theme. Unknown values fall back to Default.
func Parse(s string) Theme {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light
	case Dark:
		return Dark
	default:
		return Default
	}
}

// IsValid reports whether s names one of the two themes exactly.
func IsValid(s string) bool {
	return Theme(s) == Light || Theme(s) == Dark
}

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) IsLight() bool {
	return t == Light
}

func (t Theme) String() string {
	return string(t)
}

// Icon is the glyph shown on the toggle button: a sun while dark, a moon while light.
func (t Theme) Icon() string {
	if t == Dark {
		return "☀️"
	}
	return "🌙"
}
