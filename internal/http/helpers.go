package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"time"

	applog "growth/internal/log"
	"growth/internal/theme"
)

const (
	clientCookie = "growth_client"
	themeCookie  = theme.Key

	cookieMaxAge = 365 * 24 * time.Hour
)

var validClientID = regexp.MustCompile(`^[a-f0-9]{32}$`)

// clientID returns the id in the client cookie, or "" when absent or malformed.
func clientID(r *http.Request) string {
	c, err := r.Cookie(clientCookie)
	if err != nil || !validClientID.MatchString(c.Value) {
		return ""
	}
	return c.Value
}

// ensureClientID returns the request's client id, issuing a new cookie when
// the request has none.
func ensureClientID(w http.ResponseWriter, r *http.Request) (string, error) {
	if id := clientID(r); id != "" {
		return id, nil
	}
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate client id: %w", err)
	}
	id := hex.EncodeToString(b)
	http.SetCookie(w, newCookie(clientCookie, id, true))
	return id, nil
}

func setThemeCookie(w http.ResponseWriter, t theme.Theme) {
	// Readable by app.js so the page can restyle before the next render.
	http.SetCookie(w, newCookie(themeCookie, t.String(), false))
}

func newCookie(name, value string, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	}
}

// resolveTheme picks the theme for a page: the stored preference, then the
// theme cookie, then the default.
func (s *Server) resolveTheme(r *http.Request) theme.Theme {
	if id := clientID(r); id != "" {
		return s.themes.Get(r.Context(), id)
	}
	return cookieTheme(r)
}

func cookieTheme(r *http.Request) theme.Theme {
	if c, err := r.Cookie(themeCookie); err == nil && theme.IsValid(c.Value) {
		return theme.Theme(c.Value)
	}
	return theme.Default
}

// events returns a structured logger carrying the request's context fields.
func events(r *http.Request) *applog.StructuredLogger {
	return applog.NewStructuredLogger(applog.FromContext(r.Context()))
}
