package chart

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"
)

// SVGCanvas records drawing calls as SVG elements. Scale becomes a group
// transform so the document keeps logical coordinates.
type SVGCanvas struct {
	width      float64
	pixelW     int
	pixelH     int
	scale      float64
	background *color.RGBA
	body       strings.Builder
}

func NewSVGCanvas(width float64) *SVGCanvas {
	return &SVGCanvas{width: width, scale: 1}
}

// WithBackground paints an opaque rectangle on Clear instead of leaving the
// document transparent.
func (s *SVGCanvas) WithBackground(c color.RGBA) *SVGCanvas {
	s.background = &c
	return s
}

func (s *SVGCanvas) LogicalWidth() float64 { return s.width }

func (s *SVGCanvas) SetPixelSize(w, h int) {
	s.pixelW, s.pixelH = w, h
	s.body.Reset()
}

func (s *SVGCanvas) Scale(factor float64) {
	if factor > 0 {
		s.scale = factor
	}
}

func (s *SVGCanvas) Clear(w, h float64) {
	s.body.Reset()
	if s.background != nil {
		fmt.Fprintf(&s.body, `<rect x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n",
			num(w), num(h), rgb(*s.background))
	}
}

func (s *SVGCanvas) StrokeLine(pts []Point, c color.RGBA, width float64) {
	switch {
	case len(pts) < 2:
		return
	case len(pts) == 2:
		fmt.Fprintf(&s.body, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>`+"\n",
			num(pts[0].X), num(pts[0].Y), num(pts[1].X), num(pts[1].Y), rgb(c), num(width))
	default:
		coords := make([]string, len(pts))
		for i, p := range pts {
			coords[i] = num(p.X) + "," + num(p.Y)
		}
		fmt.Fprintf(&s.body, `<polyline points="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linejoin="round"/>`+"\n",
			strings.Join(coords, " "), rgb(c), num(width))
	}
}

func (s *SVGCanvas) FillCircle(center Point, r float64, c color.RGBA) {
	fmt.Fprintf(&s.body, `<circle cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n",
		num(center.X), num(center.Y), num(r), rgb(c))
}

func (s *SVGCanvas) FillText(text string, p Point, size float64, align Align, c color.RGBA) {
	var esc bytes.Buffer
	_ = xml.EscapeText(&esc, []byte(text))
	fmt.Fprintf(&s.body, `<text x="%s" y="%s" font-family="sans-serif" font-size="%spx" text-anchor="%s" fill="%s">%s</text>`+"\n",
		num(p.X), num(p.Y), num(size), anchor(align), rgb(c), esc.String())
}

// Empty reports whether nothing has been drawn yet.
func (s *SVGCanvas) Empty() bool {
	return s.pixelW == 0 && s.body.Len() == 0
}

// Bytes returns the complete SVG document.
func (s *SVGCanvas) Bytes() []byte {
	var b bytes.Buffer
	_, _ = s.WriteTo(&b)
	return b.Bytes()
}

func (s *SVGCanvas) WriteTo(w io.Writer) (int64, error) {
	pw, ph := s.pixelW, s.pixelH
	if pw == 0 {
		pw = int(s.width)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img" aria-label="%s">`+"\n",
		pw, ph, pw, ph, Title)
	fmt.Fprintf(&b, `<g transform="scale(%s)">`+"\n", num(s.scale))
	b.WriteString(s.body.String())
	b.WriteString("</g>\n</svg>\n")

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func anchor(a Align) string {
	switch a {
	case AlignCenter:
		return "middle"
	case AlignRight:
		return "end"
	default:
		return "start"
	}
}

func rgb(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// num keeps two decimals at most so documents stay compact and stable.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
