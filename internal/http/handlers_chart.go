package http

import (
	"bytes"
	"net/http"

	"growth/internal/chart"
	"growth/internal/core"
	applog "growth/internal/log"
)

// chartRequest gathers what both chart exports need from the query.
func (s *Server) chartRequest(r *http.Request) (ChartParams, []core.ProjectionPoint) {
	q := r.URL.Query()
	p := ParseChartParams(q, s.chartWidth)
	if !p.ThemeSet {
		p.Theme = s.resolveTheme(r)
	}
	res := s.project(r, core.ParseInputs(ParseInputQuery(q)))
	return p, res.Series
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	p, series := s.chartRequest(r)

	canvas := chart.NewSVGCanvas(float64(p.Width)).WithBackground(chart.PaletteFor(p.Theme).Background)
	chart.Render(canvas, series, chart.Options{PixelRatio: p.PixelRatio, Theme: p.Theme})

	body := canvas.Bytes()
	events(r).LogChartRendered(r.Context(), "svg", p.Width, p.PixelRatio, p.Theme.String(), len(body))

	NewHTMXResponse().
		Header("Content-Type", "image/svg+xml").
		Header("Cache-Control", "no-store").
		Body(body).
		Write(w)
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	p, series := s.chartRequest(r)

	canvas := chart.NewRasterCanvas(float64(p.Width), chart.PaletteFor(p.Theme).Background)
	chart.Render(canvas, series, chart.Options{PixelRatio: p.PixelRatio, Theme: p.Theme})

	var buf bytes.Buffer
	if err := canvas.EncodePNG(&buf); err != nil {
		events(r).LogError(r.Context(), "PNG encoding failed", err, applog.ComponentChart, applog.OpExport,
			applog.NewFields().WithErrorType(applog.ErrorTypeEncoding))
		InternalServerError("could not encode chart").Write(w)
		return
	}
	events(r).LogChartRendered(r.Context(), "png", p.Width, p.PixelRatio, p.Theme.String(), buf.Len())

	NewHTMXResponse().
		Header("Content-Type", "image/png").
		Header("Cache-Control", "no-store").
		Body(buf.Bytes()).
		Write(w)
}
