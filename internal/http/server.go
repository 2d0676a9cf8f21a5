package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"growth/internal/backend"
	"growth/internal/cache"
	applog "growth/internal/log"
	"growth/internal/middleware/ratelimit"
	"growth/internal/middleware/security"
	"growth/internal/middleware/trace"
	"growth/internal/theme"
	appweb "growth/web"
)

// Options wires a Server to its collaborators.
type Options struct {
	Themes *theme.Service
	// Store is checked by /readyz when it implements backend.Pinger.
	Store  backend.Backend
	Caches *cache.Manager
	Logger *applog.Logger

	ChartWidth         int
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	templates *template.Template
	themes    *theme.Service
	store     backend.Backend
	caches    *cache.Manager
	logger    *applog.Logger

	chartWidth int

	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware
	clientIP        *security.ClientIP

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	themes := opts.Themes
	if themes == nil {
		themes = theme.NewService(theme.NewMemoryStore(), nil, logger.Logger)
	}
	width := opts.ChartWidth
	if width <= 0 {
		width = 600
	}
	width = min(max(width, minChartWidth), maxChartWidth)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
		},
		themes:     themes,
		store:      opts.Store,
		caches:     opts.Caches,
		logger:     logger,
		chartWidth: width,
		clientIP:   security.NewClientIP(),
		startedAt:  time.Now(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}
	s.traceMiddleware = trace.NewMiddleware(s.clientIP.Extract, logger)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.WithComponent(applog.ComponentTemplate).Warn("Failed parsing templates",
			applog.FieldError, err, applog.FieldOperation, applog.OpStartup)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	limited := s.rateLimiter.Middleware(s.clientIP.Extract, s.handleRateLimited)
	app := func(h http.HandlerFunc) http.Handler { return limited(h) }

	mux.Handle("GET /{$}", app(s.handleIndex))
	mux.Handle("GET /ui/results", app(s.handleResults))
	mux.Handle("GET /chart.svg", app(s.handleChartSVG))
	mux.Handle("GET /chart.png", app(s.handleChartPNG))
	mux.Handle("GET /api/projection", app(s.handleProjectionQuery))
	mux.Handle("POST /api/projection", app(s.handleProjectionBody))
	mux.Handle("GET /api/summary", app(s.handleSummary))
	mux.Handle("POST /theme", app(s.handleTheme))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var h http.Handler = mux
	h = headers.Middleware(h)
	h = applog.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = applog.Middleware(logger)(h)
	h = s.traceMiddleware.Middleware(h)
	s.Handler = h

	return s
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.clientIP.Extract(r),
		applog.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		TriggerWarningNotification("Too many requests, slow down a little.").
		BodyString("Rate limit exceeded. Please try again later.").
		Write(w)
}

// Shutdown stops background sweeps and then the HTTP server. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		if s.caches != nil {
			s.caches.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
