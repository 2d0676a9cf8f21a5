package chart

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// glyphPx is the nominal pixel height of the bitmap font at scale 1.
const glyphPx = 12.0

// RasterCanvas draws onto an in-memory RGBA image for PNG export.
type RasterCanvas struct {
	width      float64
	scale      float64
	img        *image.RGBA
	font       tinyfont.Fonter
	Background color.RGBA
}

func NewRasterCanvas(width float64, background color.RGBA) *RasterCanvas {
	return &RasterCanvas{
		width:      width,
		scale:      1,
		font:       &proggy.TinySZ8pt7b,
		Background: background,
	}
}

func (r *RasterCanvas) LogicalWidth() float64 { return r.width }

func (r *RasterCanvas) SetPixelSize(w, h int) {
	r.img = image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
}

func (r *RasterCanvas) Scale(factor float64) {
	if factor > 0 {
		r.scale = factor
	}
}

func (r *RasterCanvas) Clear(w, h float64) {
	if r.img == nil {
		return
	}
	rect := image.Rect(0, 0, int(math.Ceil(w*r.scale)), int(math.Ceil(h*r.scale))).Intersect(r.img.Bounds())
	draw.Draw(r.img, rect, image.NewUniform(r.Background), image.Point{}, draw.Src)
}

func (r *RasterCanvas) StrokeLine(pts []Point, c color.RGBA, width float64) {
	if r.img == nil || len(pts) < 2 {
		return
	}
	radius := math.Max(width*r.scale/2, 0.5)
	for i := 1; i < len(pts); i++ {
		a, b := r.device(pts[i-1]), r.device(pts[i])
		dist := math.Hypot(b.X-a.X, b.Y-a.Y)
		steps := int(math.Ceil(dist*2)) + 1
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			r.disc(Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}, radius, c)
		}
	}
}

func (r *RasterCanvas) FillCircle(center Point, radius float64, c color.RGBA) {
	if r.img == nil {
		return
	}
	r.disc(r.device(center), radius*r.scale, c)
}

func (r *RasterCanvas) FillText(text string, p Point, size float64, align Align, c color.RGBA) {
	if r.img == nil || text == "" {
		return
	}
	k := int16(max(1, math.Round(size*r.scale/glyphPx)))
	w, _ := tinyfont.LineWidth(r.font, text)
	textW := int16(w) * k

	at := r.device(p)
	x := int16(math.Round(at.X))
	switch align {
	case AlignCenter:
		x -= textW / 2
	case AlignRight:
		x -= textW
	}
	y := int16(math.Round(at.Y))
	d := &glyphDisplay{img: r.img, ox: x, oy: y, k: k}
	tinyfont.WriteLine(d, r.font, x, y, text, c)
}

// Image exposes the drawn pixels; nil until Render has sized the canvas.
func (r *RasterCanvas) Image() *image.RGBA {
	return r.img
}

func (r *RasterCanvas) EncodePNG(w io.Writer) error {
	img := r.img
	if img == nil {
		img = image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	return png.Encode(w, img)
}

func (r *RasterCanvas) device(p Point) Point {
	return Point{X: p.X * r.scale, Y: p.Y * r.scale}
}

func (r *RasterCanvas) disc(center Point, radius float64, c color.RGBA) {
	b := r.img.Bounds()
	x0 := max(int(math.Floor(center.X-radius)), b.Min.X)
	x1 := min(int(math.Ceil(center.X+radius)), b.Max.X-1)
	y0 := max(int(math.Floor(center.Y-radius)), b.Min.Y)
	y1 := min(int(math.Ceil(center.Y+radius)), b.Max.Y-1)
	r2 := radius * radius
	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - center.Y
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - center.X
			if dx*dx+dy*dy <= r2 {
				r.img.SetRGBA(x, y, c)
			}
		}
	}
}

// glyphDisplay lets tinyfont draw into the image, enlarging every font
// pixel to a k×k block anchored at the text origin.
type glyphDisplay struct {
	img    *image.RGBA
	ox, oy int16
	k      int16
}

var _ drivers.Displayer = (*glyphDisplay)(nil)

func (d *glyphDisplay) Size() (x, y int16) {
	b := d.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (d *glyphDisplay) SetPixel(x, y int16, c color.RGBA) {
	px := int(d.ox) + int(x-d.ox)*int(d.k)
	py := int(d.oy) + int(y-d.oy)*int(d.k)
	rect := image.Rect(px, py, px+int(d.k), py+int(d.k)).Intersect(d.img.Bounds())
	draw.Draw(d.img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func (d *glyphDisplay) Display() error {
	return nil
}
