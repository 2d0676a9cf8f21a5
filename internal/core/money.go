package core

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usPrinter = message.NewPrinter(language.English)

// FormatCurrency renders v as whole US dollars with thousands separators,
// rounding half away from zero: 1234.5 -> "$1,235", -12 -> "-$12".
// Overflowed figures print as "$∞", "-$∞" and "$NaN".
func FormatCurrency(v float64) string {
	switch {
	case math.IsNaN(v):
		return "$NaN"
	case math.IsInf(v, 1):
		return "$∞"
	case math.IsInf(v, -1):
		return "-$∞"
	}
	rounded := math.Round(v)
	neg := rounded < 0
	abs := math.Abs(rounded)

	var s string
	if abs < 1<<62 {
		s = usPrinter.Sprintf("%d", int64(abs))
	} else {
		s = usPrinter.Sprintf("%.0f", abs)
	}
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// formatPlain prints a number in its shortest form, the way it was typed: 500, 7.5.
func formatPlain(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
