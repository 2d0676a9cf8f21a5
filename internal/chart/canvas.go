package chart

import "image/color"

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type Point struct {
	X, Y float64
}

// Canvas is the drawing surface a host hands to Render. Coordinates are in
// logical units; Scale maps them onto the pixel buffer.
type Canvas interface {
	// LogicalWidth is the width the chart should fill, before pixel scaling.
	LogicalWidth() float64
	// SetPixelSize resizes the backing buffer in device pixels.
	SetPixelSize(w, h int)
	// Scale applies a uniform transform to everything drawn afterwards.
	Scale(factor float64)
	Clear(w, h float64)
	// StrokeLine draws straight segments through pts in order.
	StrokeLine(pts []Point, c color.RGBA, width float64)
	FillCircle(center Point, r float64, c color.RGBA)
	// FillText draws text with its baseline at p.Y, anchored at p.X by align.
	FillText(text string, p Point, size float64, align Align, c color.RGBA)
}
