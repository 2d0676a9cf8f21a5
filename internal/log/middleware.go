package log

import (
	"context"
	"log/slog"
	"math"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// Middleware creates HTTP middleware that adds a logger to the request context
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Add logger to request context
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	// Return default logger if not found
	return &Logger{
		Logger:    slog.Default(),
		base:      slog.Default(),
		component: "unknown",
	}
}

// ComponentMiddleware creates middleware that adds component context to the logger
func ComponentMiddleware(component string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := FromContext(r.Context()).WithComponent(component)
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware adds request ID to logger context
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := FromContext(r.Context()).With(FieldRequestID, extractRequestID(r))
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogHTTPStart logs the start of an HTTP request
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP)

	sl.in(ComponentHTTP).InfoContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs the completion of an HTTP request
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP)

	sl.in(ComponentHTTP).Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogProjection records one calculation and whether it produced a result.
func (sl *StructuredLogger) LogProjection(ctx context.Context, deposit float64, years int, ratePct, starting, futureValue float64, invalid []string) {
	fields := NewFields().
		WithProjection(deposit, years, ratePct, starting).
		WithOperation(OpProject)
	logger := sl.in(ComponentProject)

	if len(invalid) > 0 {
		fields[FieldInvalidFields] = invalid
		fields.WithErrorType(ErrorTypeValidation)
		fields[FieldOperation] = OpValidate
		logger.DebugContext(ctx, "Projection skipped, inputs out of range", fields.ToSlice()...)
		return
	}
	fields[FieldFutureValue] = futureValue
	if math.IsNaN(futureValue) || math.IsInf(futureValue, 0) {
		logger.WarnContext(ctx, "Projection overflowed float64 range", fields.ToSlice()...)
		return
	}
	logger.DebugContext(ctx, "Projection computed", fields.ToSlice()...)
}

// LogChartRendered records a chart export.
func (sl *StructuredLogger) LogChartRendered(ctx context.Context, format string, width int, dpr float64, theme string, size int) {
	fields := NewFields().
		WithChart(format, width, dpr, theme).
		WithOperation(OpRender)
	fields[FieldBytes] = size

	sl.in(ComponentChart).DebugContext(ctx, "Chart rendered", fields.ToSlice()...)
}

// LogThemeChanged records a stored theme preference change.
func (sl *StructuredLogger) LogThemeChanged(ctx context.Context, clientID, theme string) {
	fields := NewFields().
		WithOperation(OpToggle)
	fields[FieldClientID] = clientID
	fields[FieldTheme] = theme

	sl.in(ComponentTheme).InfoContext(ctx, "Theme preference changed", fields.ToSlice()...)
}

// LogError logs an error with structured context. The error_type defaults
// to internal; validation errors are the caller's fault and log at warn.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	if _, ok := fields[FieldErrorType]; !ok {
		fields.WithErrorType(ErrorTypeInternal)
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	level := slog.LevelError
	if allFields[FieldErrorType] == ErrorTypeValidation {
		level = slog.LevelWarn
	}
	sl.in(component).Log(ctx, level, msg, allFields.ToSlice()...)
}

func (sl *StructuredLogger) in(component string) *Logger {
	if component == "" || component == sl.logger.Component() {
		return sl.logger
	}
	return sl.logger.WithComponent(component)
}
