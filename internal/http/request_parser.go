// Package http serves the calculator page, its HTMX partials, chart exports
// and the JSON API.
//
// This file turns query strings, forms and JSON bodies into calculator input.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"growth/internal/core"
	"growth/internal/theme"
)

const (
	minChartWidth = 200
	maxChartWidth = 2000
	maxPixelRatio = 4

	maxBodyBytes = 16 << 10
)

// inputKeys maps each field to the names it may arrive under: the short form
// name first, then the JSON name.
var inputKeys = map[core.Field][2]string{
	core.FieldDeposit:  {"deposit", "monthly_deposit"},
	core.FieldYears:    {"years", "years"},
	core.FieldRate:     {"rate", "annual_return_rate_percent"},
	core.FieldStarting: {"starting", "starting_amount"},
}

type valueGetter interface {
	Get(key string) string
}

// rawInputFrom reads the four fields from any source of string values.
func rawInputFrom(src valueGetter) core.RawInput {
	get := func(f core.Field) string {
		keys := inputKeys[f]
		if v := src.Get(keys[0]); v != "" {
			return sanitizeInput(v)
		}
		return sanitizeInput(src.Get(keys[1]))
	}
	return core.RawInput{
		MonthlyDeposit: get(core.FieldDeposit),
		Years:          get(core.FieldYears),
		ReturnRate:     get(core.FieldRate),
		StartingAmount: get(core.FieldStarting),
	}
}

// ParseInputQuery reads calculator input from URL query values.
func ParseInputQuery(q url.Values) core.RawInput {
	return rawInputFrom(q)
}

// ChartParams are the output options of a chart export.
type ChartParams struct {
	Width      int
	PixelRatio float64
	Theme      theme.Theme
	// ThemeSet is true when the request named a theme explicitly.
	ThemeSet bool
}

// ParseChartParams reads width, dpr and theme, clamping width and dpr into
// their allowed ranges. Unparseable values take the defaults.
func ParseChartParams(q url.Values, defaultWidth int) ChartParams {
	p := ChartParams{Width: defaultWidth, PixelRatio: 1, Theme: theme.Default}

	if v := strings.TrimSpace(q.Get("width")); v != "" {
		if w, err := strconv.Atoi(v); err == nil {
			p.Width = w
		}
	}
	p.Width = min(max(p.Width, minChartWidth), maxChartWidth)

	if v := strings.TrimSpace(q.Get("dpr")); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(d) {
			p.PixelRatio = d
		}
	}
	p.PixelRatio = math.Min(math.Max(p.PixelRatio, 1), maxPixelRatio)

	if v := q.Get("theme"); theme.IsValid(v) {
		p.Theme = theme.Theme(v)
		p.ThemeSet = true
	}
	return p
}

// RequestBodyParser reads a JSON object or a urlencoded form from a request
// body, whichever the content looks like.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

var errBodyTooLarge = errors.New("request body too large")

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = errBodyTooLarge
	}
	return p
}

func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a value from the parsed body as a trimmed string.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return strings.TrimSpace(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// RawInput reads the calculator fields from the parsed body.
func (p *RequestBodyParser) RawInput() core.RawInput {
	return rawInputFrom(p)
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s)
}
