package http

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"growth/internal/backend"
	"growth/internal/chart"
	"growth/internal/core"
	applog "growth/internal/log"
	"growth/internal/theme"
)

// Initial form values shown on a fresh page.
var defaultForm = core.RawInput{
	MonthlyDeposit: "500",
	Years:          "30",
	ReturnRate:     "7",
	StartingAmount: "1000",
}

type pageView struct {
	Theme     theme.Theme
	ThemeIcon string
	Form      core.RawInput
	Results   resultsView
}

// resultsView is everything the results partial renders.
type resultsView struct {
	Valid            bool
	Errors           map[string]string
	FutureValue      string
	TotalContributed string
	TotalGrowth      string
	Summary          string
	Chart            template.HTML
	// Query reproduces the inputs for the chart download links.
	Query            template.URL
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSONResponse(http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if p, ok := s.store.(backend.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			checks["preferences"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["preferences"] = "ok"
		}
	} else {
		checks["preferences"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"rejected":       s.rateLimiter.Rejected(),
	}
	m := s.traceMiddleware.GetMetrics()
	checks["requests"] = map[string]any{
		"total":           m.TotalRequests,
		"avg_response_ms": m.AverageResponseTime.Milliseconds(),
	}

	JSONResponse(httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	form := ParseInputQuery(r.URL.Query())
	if form == (core.RawInput{}) {
		form = defaultForm
	}
	t := s.resolveTheme(r)

	data := pageView{
		Theme:     t,
		ThemeIcon: t.Icon(),
		Form:      form,
		Results:   s.buildResults(r, form, t, s.chartWidth),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		events(r).LogError(r.Context(), "Index template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.LogFields{"template": "index.html"})
	}
}

// handleResults renders the results partial the form requests on every edit.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}

	q := r.URL.Query()
	form := ParseInputQuery(q)
	// the page sends the measured chart width so the SVG is drawn at its display size
	width := ParseChartParams(q, s.chartWidth).Width
	view := s.buildResults(r, form, s.resolveTheme(r), width)

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "results.html", view); err != nil {
		events(r).LogError(r.Context(), "Results template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.LogFields{"template": "results.html"})
		InternalServerError("could not render results").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerResultsUpdated(view.Valid, view.Summary).
		BodyHTML(buf.String()).
		Write(w)
}

// buildResults validates the form, projects it and draws the inline chart
// width units wide. Invalid input shows zero figures and no chart.
func (s *Server) buildResults(r *http.Request, form core.RawInput, t theme.Theme, width int) resultsView {
	v := core.ParseInputs(form)
	res := s.project(r, v)

	view := resultsView{
		Valid:            v.Valid && len(res.Series) > 0,
		Errors:           v.Errors.Strings(),
		FutureValue:      core.FormatCurrency(res.FutureValue),
		TotalContributed: core.FormatCurrency(res.TotalContributed),
		TotalGrowth:      core.FormatCurrency(res.TotalGrowth),
		Query:            template.URL(inputQuery(form).Encode()),
	}
	if summary, ok := core.Summary(v.Input); ok && v.Valid {
		view.Summary = summary
	}

	svg := chart.NewSVGCanvas(float64(width))
	chart.Render(svg, res.Series, chart.Options{Theme: t})
	if !svg.Empty() {
		// The SVG writer escapes every text node it emits.
		view.Chart = template.HTML(svg.Bytes())
	}
	return view
}

// project runs the projection for a validation result and logs the outcome.
func (s *Server) project(r *http.Request, v core.Validation) core.ProjectionResult {
	var res core.ProjectionResult
	var invalid []string
	if v.Valid {
		res = core.ProjectAll(v.Input)
	} else {
		for _, f := range core.Fields {
			if _, bad := v.Errors[f]; bad {
				invalid = append(invalid, string(f))
			}
		}
	}
	in := v.Input
	events(r).LogProjection(r.Context(), in.MonthlyDeposit, in.Years, in.AnnualReturnRatePercent,
		in.StartingAmount, res.FutureValue, invalid)
	return res
}

func inputQuery(raw core.RawInput) url.Values {
	q := url.Values{}
	q.Set(inputKeys[core.FieldDeposit][0], raw.MonthlyDeposit)
	q.Set(inputKeys[core.FieldYears][0], raw.Years)
	q.Set(inputKeys[core.FieldRate][0], raw.ReturnRate)
	q.Set(inputKeys[core.FieldStarting][0], raw.StartingAmount)
	return q
}
