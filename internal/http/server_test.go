package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"growth/internal/cache"
	applog "growth/internal/log"
	"growth/internal/theme"
)

const sampleQuery = "deposit=500&years=30&rate=7&starting=1000"

type brokenStore struct{ err error }

func (b brokenStore) Get(context.Context, string, string) (string, bool, error) {
	return "", false, b.err
}
func (b brokenStore) Put(context.Context, string, string, string) error { return b.err }
func (b brokenStore) Ping(context.Context) error { return b.err }

func newTestServer(t *testing.T, store theme.Store, ratePerMinute int) *Server {
	t.Helper()
	if store == nil {
		store = theme.NewMemoryStore()
	}
	logger := applog.NewText(io.Discard, slog.LevelDebug, applog.ComponentApp)
	srv := NewServer(":0", Options{
		Themes:             theme.NewService(store, cache.NewLRUCache[theme.Theme](16, time.Minute), logger.Logger),
		Store:              store,
		Caches:             cache.NewManager(logger.Logger),
		Logger:             logger,
		ChartWidth:         600,
		RateLimitPerMinute: ratePerMinute,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(srv *Server, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, r)
	return w
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t, nil, 1000)
	w := do(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`data-theme="dark"`,
		`value="500"`,
		`value="30"`,
		"Balance Over Time",
		"<svg",
		"$618,102",
		`hx-get="/ui/results"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers not applied")
	}
	if !strings.HasPrefix(w.Header().Get("X-Request-ID"), "req_") {
		t.Errorf("X-Request-ID = %q", w.Header().Get("X-Request-ID"))
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	srv := newTestServer(t, nil, 1000)
	w := do(srv, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestResultsPartial(t *testing.T) {
	srv := newTestServer(t, nil, 1000)

	t.Run("valid", func(t *testing.T) {
		w := do(srv, httptest.NewRequest(http.MethodGet, "/ui/results?"+sampleQuery, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		body := w.Body.String()
		for _, want := range []string{"$618,102", "$181,000", "$437,102", "<polyline", `data-valid="true"`} {
			if !strings.Contains(body, want) {
				t.Errorf("partial missing %q", want)
			}
		}
		if strings.Contains(body, "<html") {
			t.Error("partial should not contain the page shell")
		}
		trigger := w.Header().Get("HX-Trigger")
		if !strings.Contains(trigger, `"results:updated"`) || !strings.Contains(trigger, `"valid":true`) {
			t.Errorf("HX-Trigger = %s", trigger)
		}
	})

	t.Run("invalid shows zeros and every error", func(t *testing.T) {
		w := do(srv, httptest.NewRequest(http.MethodGet, "/ui/results?deposit=-1&years=0&rate=25&starting=10", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		body := w.Body.String()
		for _, want := range []string{"must be 0 or more", "must be at least 1 year", "maximum is 20%", `id="future-value">$0<`} {
			if !strings.Contains(body, want) {
				t.Errorf("partial missing %q", want)
			}
		}
		if strings.Contains(body, "<svg") {
			t.Error("invalid input should not draw a chart")
		}
		if !strings.Contains(w.Header().Get("HX-Trigger"), `"valid":false`) {
			t.Errorf("HX-Trigger = %s", w.Header().Get("HX-Trigger"))
		}
	})

	t.Run("overflow stays valid and shows infinity", func(t *testing.T) {
		w := do(srv, httptest.NewRequest(http.MethodGet, "/ui/results?deposit=1e308&years=60&rate=0&starting=0", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		body := w.Body.String()
		for _, want := range []string{`data-valid="true"`, `id="future-value">$∞<`, "$NaN"} {
			if !strings.Contains(body, want) {
				t.Errorf("partial missing %q", want)
			}
		}
		if strings.Contains(body, "NaN,") || strings.Contains(body, `="NaN"`) {
			t.Error("chart coordinates must stay finite")
		}
	})

	t.Run("chart follows the measured width", func(t *testing.T) {
		cases := map[string]string{
			"&width=320":  `width="320"`,
			"&width=50":   `width="200"`,
			"&width=wide": `width="600"`,
			"":            `width="600"`,
		}
		for extra, want := range cases {
			w := do(srv, httptest.NewRequest(http.MethodGet, "/ui/results?"+sampleQuery+extra, nil))
			if !strings.Contains(w.Body.String(), want) {
				t.Errorf("width param %q: chart missing %s", extra, want)
			}
		}
	})

	t.Run("one year draws the full chart", func(t *testing.T) {
		w := do(srv, httptest.NewRequest(http.MethodGet, "/ui/results?deposit=100&years=1&rate=5&starting=0", nil))
		if !strings.Contains(w.Body.String(), "<circle") {
			t.Error("two-point series should draw point markers")
		}
	})
}

func TestProjectionAPI(t *testing.T) {
	srv := newTestServer(t, nil, 1000)

	t.Run("query", func(t *testing.T) {
		w := do(srv, httptest.NewRequest(http.MethodGet, "/api/projection?"+sampleQuery, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		var got projectionResponse
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got.Result.Series) != 31 {
			t.Errorf("series length = %d, want 31", len(got.Result.Series))
		}
		if math.Abs(got.Result.FutureValue-618101.995) > 0.01 {
			t.Errorf("future value = %v", got.Result.FutureValue)
		}
		if got.Result.TotalContributed != 181000 {
			t.Errorf("total contributed = %v", got.Result.TotalContributed)
		}
		if !strings.HasPrefix(got.Summary, "Monthly: $500") {
			t.Errorf("summary = %q", got.Summary)
		}
	})

	t.Run("json body", func(t *testing.T) {
		body := `{"monthly_deposit":200,"years":10,"annual_return_rate_percent":0,"starting_amount":50}`
		r := httptest.NewRequest(http.MethodPost, "/api/projection", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := do(srv, r)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		var got projectionResponse
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Result.FutureValue != 50+200*120 {
			t.Errorf("future value = %v, want %v", got.Result.FutureValue, 50+200*120)
		}
	})

	t.Run("invalid body gives field errors", func(t *testing.T) {
		body := `{"monthly_deposit":-5,"years":61,"annual_return_rate_percent":7,"starting_amount":0}`
		r := httptest.NewRequest(http.MethodPost, "/api/projection", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := do(srv, r)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", w.Code)
		}
		var got errorsResponse
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Errors["years"] != "maximum is 60 years" || got.Errors["monthly_deposit"] != "must be 0 or more" {
			t.Errorf("errors = %v", got.Errors)
		}
		if _, ok := got.Errors["annual_return_rate_percent"]; ok {
			t.Error("rate is valid and should not be reported")
		}
	})

	t.Run("invalid form body uses form names", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/projection", strings.NewReader("deposit=10&years=5&rate=30&starting=0"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := do(srv, r)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", w.Code)
		}
		var got errorsResponse
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got.Errors) != 1 || got.Errors["rate"] != "maximum is 20%" {
			t.Errorf("errors = %v", got.Errors)
		}
	})

	t.Run("overflowing input is encoded, not a server error", func(t *testing.T) {
		for _, q := range []string{
			"deposit=1e308&years=60&rate=0&starting=0",
			"deposit=0&years=60&rate=20&starting=1e305",
			"deposit=Infinity&years=2&rate=5&starting=0",
		} {
			w := do(srv, httptest.NewRequest(http.MethodGet, "/api/projection?"+q, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("%s: status = %d: %s", q, w.Code, w.Body.String())
			}
			var got map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("%s: decode: %v", q, err)
			}
			result := got["result"].(map[string]any)
			if result["future_value"] != nil || result["overflow"] != true {
				t.Errorf("%s: result = %v", q, result)
			}
			if !strings.HasSuffix(got["summary"].(string), "Future: $∞") {
				t.Errorf("%s: summary = %q", q, got["summary"])
			}
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/projection", strings.NewReader(`{"years":`))
		r.Header.Set("Content-Type", "application/json")
		if w := do(srv, r); w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/projection", strings.NewReader(strings.Repeat("a", maxBodyBytes+10)))
		if w := do(srv, r); w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", w.Code)
		}
	})
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, 1000)

	w := do(srv, httptest.NewRequest(http.MethodGet, "/api/summary?"+sampleQuery, nil))
	want := "Monthly: $500, Years: 30, Return: 7% → Future: $618,102"
	if w.Code != http.StatusOK || w.Body.String() != want {
		t.Errorf("got %d %q, want %q", w.Code, w.Body.String(), want)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}

	w = do(srv, httptest.NewRequest(http.MethodGet, "/api/summary?years=0", nil))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid summary status = %d, want 422", w.Code)
	}
}

func TestChartExports(t *testing.T) {
	srv := newTestServer(t, nil, 1000)

	t.Run("svg clamps width and scales by dpr", func(t *testing.T) {
		w := do(srv, httptest.NewRequest(http.MethodGet, "/chart.svg?"+sampleQuery+"&width=5000&dpr=2&theme=light", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if w.Header().Get("Content-Type") != "image/svg+xml" {
			t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
		}
		body := w.Body.String()
		for _, want := range []string{`width="4000"`, `height="600"`, `scale(2)`, `fill="#ffffff"`} {
			if !strings.Contains(body, want) {
				t.Errorf("svg missing %q", want)
			}
		}
	})

	t.Run("png pixel size", func(t *testing.T) {
		w := do(srv, httptest.NewRequest(http.MethodGet, "/chart.png?"+sampleQuery+"&width=300&dpr=2", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
		if err != nil {
			t.Fatalf("decode png: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 600 || b.Dy() != 600 {
			t.Errorf("png size = %dx%d, want 600x600", b.Dx(), b.Dy())
		}
	})

	t.Run("invalid input draws nothing", func(t *testing.T) {
		w := do(srv, httptest.NewRequest(http.MethodGet, "/chart.svg?years=0", nil))
		if strings.Contains(w.Body.String(), "<polyline") {
			t.Error("no data line expected for invalid input")
		}
	})
}

func TestThemeToggle(t *testing.T) {
	srv := newTestServer(t, nil, 1000)

	w := do(srv, httptest.NewRequest(http.MethodPost, "/theme", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("HX-Trigger"), `"theme":"light"`) {
		t.Errorf("first toggle trigger = %s", w.Header().Get("HX-Trigger"))
	}

	cookies := w.Result().Cookies()
	var client, themeC *http.Cookie
	for _, c := range cookies {
		switch c.Name {
		case clientCookie:
			client = c
		case themeCookie:
			themeC = c
		}
	}
	if client == nil || !validClientID.MatchString(client.Value) || !client.HttpOnly {
		t.Fatalf("client cookie = %+v", client)
	}
	if themeC == nil || themeC.Value != "light" {
		t.Fatalf("theme cookie = %+v", themeC)
	}

	page := httptest.NewRequest(http.MethodGet, "/", nil)
	page.AddCookie(client)
	if body := do(srv, page).Body.String(); !strings.Contains(body, `data-theme="light"`) {
		t.Error("stored preference not applied to the page")
	}

	again := httptest.NewRequest(http.MethodPost, "/theme", nil)
	again.AddCookie(client)
	w = do(srv, again)
	if !strings.Contains(w.Header().Get("HX-Trigger"), `"theme":"dark"`) {
		t.Errorf("second toggle trigger = %s", w.Header().Get("HX-Trigger"))
	}

	set := httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader("theme=light"))
	set.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	set.AddCookie(client)
	w = do(srv, set)
	if !strings.Contains(w.Header().Get("HX-Trigger"), `"theme":"light"`) {
		t.Errorf("explicit set trigger = %s", w.Header().Get("HX-Trigger"))
	}

	bad := httptest.NewRequest(http.MethodPost, "/theme?theme=solarized", nil)
	if w := do(srv, bad); w.Code != http.StatusBadRequest {
		t.Errorf("unknown theme status = %d, want 400", w.Code)
	}
}

func TestThemeToggle_StoreFailure(t *testing.T) {
	srv := newTestServer(t, brokenStore{err: errors.New("disk full")}, 1000)

	r := httptest.NewRequest(http.MethodPost, "/theme", nil)
	r.AddCookie(&http.Cookie{Name: themeCookie, Value: "light"})
	w := do(srv, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	trigger := w.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, `"theme":"dark"`) || !strings.Contains(trigger, `"type":"warning"`) {
		t.Errorf("HX-Trigger = %s", trigger)
	}

	// Pages still render with the default theme.
	page := do(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if page.Code != http.StatusOK || !strings.Contains(page.Body.String(), `data-theme="dark"`) {
		t.Errorf("page with broken store: %d", page.Code)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(t, nil, 1000)
	if w := do(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil)); w.Code != http.StatusOK {
		t.Errorf("healthz = %d", w.Code)
	}
	if w := do(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil)); w.Code != http.StatusOK {
		t.Errorf("readyz = %d: %s", w.Code, w.Body.String())
	}

	broken := newTestServer(t, brokenStore{err: errors.New("db closed")}, 1000)
	w := do(broken, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz with failing store = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), "db closed") {
		t.Errorf("readyz body = %s", w.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, nil, 2)

	for i := range 2 {
		if w := do(srv, httptest.NewRequest(http.MethodGet, "/api/summary?"+sampleQuery, nil)); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
	w := do(srv, httptest.NewRequest(http.MethodGet, "/api/summary?"+sampleQuery, nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}

	if w := do(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil)); w.Code != http.StatusOK {
		t.Errorf("healthz should not be rate limited, got %d", w.Code)
	}
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, nil, 1000)
	w := do(srv, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "theme:changed") {
		t.Error("unexpected app.js content")
	}
}
