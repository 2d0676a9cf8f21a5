package http

import (
	"net/http"

	applog "growth/internal/log"
	"growth/internal/theme"
)

// handleTheme toggles the client's theme, or sets it when the request names
// one. The page learns the result through the theme:changed trigger.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request").Write(w)
		return
	}
	requested := p.Get("theme")
	if requested == "" {
		requested = r.URL.Query().Get("theme")
	}
	if requested != "" && !theme.IsValid(requested) {
		BadRequestError("Unknown theme").Write(w)
		return
	}

	known := clientID(r) != ""
	id, err := ensureClientID(w, r)
	if err != nil {
		events(r).LogError(r.Context(), "Client id generation failed", err, applog.ComponentTheme, applog.OpToggle, nil)
		InternalServerError("Could not save theme").
			TriggerErrorNotification("Theme could not be changed").
			Write(w)
		return
	}

	var next theme.Theme
	switch {
	case requested != "":
		next = theme.Theme(requested)
		err = s.themes.Set(r.Context(), id, next)
	case known:
		next, err = s.themes.Toggle(r.Context(), id)
	default:
		// A new client has nothing stored yet; start from what the page shows.
		next = cookieTheme(r).Toggle()
		err = s.themes.Set(r.Context(), id, next)
	}

	resp := NewHTMXResponse()
	if err != nil {
		events(r).LogError(r.Context(), "Theme preference not saved", err, applog.ComponentStorage, applog.OpUpdate,
			applog.NewFields().WithClientIP(s.clientIP.Extract(r)).WithErrorType(applog.ErrorTypeDatabase))
		if requested == "" {
			next = cookieTheme(r).Toggle()
		}
		// the cookie still carries the choice for this browser
		resp.TriggerWarningNotification("Theme preference could not be saved")
	} else {
		events(r).LogThemeChanged(r.Context(), id, next.String())
	}

	setThemeCookie(w, next)
	resp.TriggerThemeChanged(next.String()).
		BodyString(next.Icon()).
		Write(w)
}
