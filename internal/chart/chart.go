// Package chart draws the balance-over-time line chart onto a Canvas.
//
// Render is a full redraw every call: it keeps no state, sizes the pixel
// buffer for the device pixel ratio, scales uniformly and then lays out
// gridlines, axes, the data line, point markers and labels in logical units.
package chart

import (
	"math"
	"strconv"

	"growth/internal/core"
	"growth/internal/theme"
)

const (
	DefaultHeight  = 300.0
	DefaultPadding = 40.0

	Title       = "Balance Over Time"
	Placeholder = "Enter values to see chart"

	gridDivisions = 5
	pointRadius   = 4.0
	lineWidth     = 3.0
	axisWidth     = 2.0
	gridWidth     = 1.0
	titleSize     = 14.0
	labelSize     = 12.0
)

// Options tunes a render. Zero fields take the defaults.
type Options struct {
	Height     float64
	Padding    float64
	PixelRatio float64
	Theme      theme.Theme
}

func (o Options) withDefaults() Options {
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	if o.PixelRatio <= 0 || math.IsNaN(o.PixelRatio) {
		o.PixelRatio = 1
	}
	if o.Theme == "" {
		o.Theme = theme.Default
	}
	return o
}

// Layout holds the geometry derived from the canvas width and options.
type Layout struct {
	Width, Height float64
	Padding       float64
	InnerWidth    float64
	InnerHeight   float64
	Min, Max      float64
	Range         float64
}

// NewLayout computes the plot geometry for a series of at least two points.
// Balances that overflowed to ±Inf or NaN are left out of the value range.
func NewLayout(width float64, series []core.ProjectionPoint, opts Options) Layout {
	opts = opts.withDefaults()
	l := Layout{
		Width:       width,
		Height:      opts.Height,
		Padding:     opts.Padding,
		InnerWidth:  width - opts.Padding*2,
		InnerHeight: opts.Height - opts.Padding*2,
	}
	if len(series) == 0 {
		l.Range = 1
		return l
	}
	seen := false
	for _, p := range series {
		if !finite(p.Balance) {
			continue
		}
		if !seen {
			l.Min, l.Max, seen = p.Balance, p.Balance, true
			continue
		}
		l.Min = math.Min(l.Min, p.Balance)
		l.Max = math.Max(l.Max, p.Balance)
	}
	l.Range = l.Max - l.Min
	if l.Range == 0 {
		l.Range = 1
	}
	return l
}

// PointAt maps series index i of n onto the plot area.
func (l Layout) PointAt(i, n int, value float64) Point {
	step := 0.0
	if n > 1 {
		step = l.InnerWidth / float64(n-1)
	}
	return Point{
		X: l.Padding + step*float64(i),
		Y: l.Height - l.Padding - ((value-l.Min)/l.Range)*l.InnerHeight,
	}
}

// GridY is the vertical position of gridline i, counted from the top.
func (l Layout) GridY(i int) float64 {
	return l.Padding + (l.InnerHeight/gridDivisions)*float64(i)
}

// GridValue is the value labelled at gridline i: the max at the top, the min at the bottom.
func (l Layout) GridValue(i int) float64 {
	return l.Min + (l.Range/gridDivisions)*float64(gridDivisions-i)
}

// LabelStride is the spacing of year labels along the x axis.
func LabelStride(n int) int {
	return max(1, n/5)
}

// Render draws series onto c. An empty series leaves c untouched; a single
// point only shows a placeholder message.
func Render(c Canvas, series []core.ProjectionPoint, opts Options) {
	if c == nil || len(series) == 0 {
		return
	}
	opts = opts.withDefaults()
	pal := PaletteFor(opts.Theme)

	width := c.LogicalWidth()
	height := opts.Height
	c.SetPixelSize(int(math.Round(width*opts.PixelRatio)), int(math.Round(height*opts.PixelRatio)))
	c.Scale(opts.PixelRatio)
	c.Clear(width, height)

	if len(series) < 2 {
		c.FillText(Placeholder, Point{X: width / 2, Y: height / 2}, titleSize, AlignCenter, pal.Muted)
		return
	}

	l := NewLayout(width, series, opts)
	n := len(series)

	for i := 0; i <= gridDivisions; i++ {
		y := l.GridY(i)
		c.StrokeLine([]Point{{X: l.Padding, Y: y}, {X: width - l.Padding, Y: y}}, pal.Grid, gridWidth)
	}

	c.StrokeLine([]Point{
		{X: l.Padding, Y: l.Padding},
		{X: l.Padding, Y: height - l.Padding},
		{X: width - l.Padding, Y: height - l.Padding},
	}, pal.Text, axisWidth)

	pts := make([]Point, n)
	for i, p := range series {
		pts[i] = l.PointAt(i, n, p.Balance)
	}
	// overflowed balances break the line and get no marker
	for _, run := range finiteRuns(series, pts) {
		if len(run) > 1 {
			c.StrokeLine(run, pal.Accent, lineWidth)
		}
		for _, p := range run {
			c.FillCircle(p, pointRadius, pal.Accent)
		}
	}

	stride := LabelStride(n)
	for i, p := range series {
		if i%stride == 0 || i == n-1 {
			c.FillText(strconv.Itoa(p.Year), Point{X: pts[i].X, Y: height - l.Padding + 20}, labelSize, AlignCenter, pal.Muted)
		}
	}

	for i := 0; i <= gridDivisions; i++ {
		c.FillText(core.FormatCurrency(l.GridValue(i)), Point{X: l.Padding - 10, Y: l.GridY(i) + 4}, labelSize, AlignRight, pal.Muted)
	}

	c.FillText(Title, Point{X: width / 2, Y: 20}, titleSize, AlignCenter, pal.Text)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finiteRuns splits pts into the stretches whose balances are finite.
func finiteRuns(series []core.ProjectionPoint, pts []Point) [][]Point {
	var runs [][]Point
	start := -1
	for i, p := range series {
		switch {
		case finite(p.Balance) && start < 0:
			start = i
		case !finite(p.Balance) && start >= 0:
			runs = append(runs, pts[start:i])
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, pts[start:])
	}
	return runs
}
