package chart

import (
	"image/color"

	"growth/internal/theme"
)

// Palette is the set of colors one render uses.
type Palette struct {
	Text       color.RGBA
	Muted      color.RGBA
	Grid       color.RGBA
	Accent     color.RGBA
	Background color.RGBA // only used by surfaces that need an opaque fill
}

// Accent is shared by both themes for the data line and points.
var Accent = hex(0xF3, 0x7A, 0x2B)

var (
	lightPalette = Palette{
		Text:       hex(0x1a, 0x1a, 0x1a),
		Muted:      hex(0x66, 0x66, 0x66),
		Grid:       hex(0xe0, 0xe0, 0xe0),
		Accent:     Accent,
		Background: hex(0xff, 0xff, 0xff),
	}
	darkPalette = Palette{
		Text:       hex(0xe0, 0xe0, 0xe0),
		Muted:      hex(0xa0, 0xa0, 0xa0),
		Grid:       hex(0x2a, 0x2a, 0x2a),
		Accent:     Accent,
		Background: hex(0x12, 0x12, 0x12),
	}
)

// PaletteFor picks the palette for a theme.
func PaletteFor(t theme.Theme) Palette {
	if t.IsLight() {
		return lightPalette
	}
	return darkPalette
}

func hex(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
