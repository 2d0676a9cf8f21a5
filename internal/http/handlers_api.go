package http

import (
	"errors"
	"net/http"

	"growth/internal/core"
	applog "growth/internal/log"
)

type projectionResponse struct {
	Input  core.InputSet         `json:"input"`
	Result core.ProjectionResult `json:"result"`
	// Summary is empty when the inputs cannot be projected.
	Summary string `json:"summary,omitempty"`
}

type errorsResponse struct {
	Errors map[string]string `json:"errors"`
}

// handleProjectionQuery projects the inputs in the query string, parsed the
// same lenient way the form is.
func (s *Server) handleProjectionQuery(w http.ResponseWriter, r *http.Request) {
	s.writeProjection(w, r, core.ParseInputs(ParseInputQuery(r.URL.Query())), false)
}

// handleProjectionBody accepts a JSON InputSet or a urlencoded form.
func (s *Server) handleProjectionBody(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		events(r).LogError(r.Context(), "Projection request body rejected", err, applog.ComponentHTTP, applog.OpValidate,
			applog.NewFields().WithErrorType(applog.ErrorTypeValidation))
		if errors.Is(err, errBodyTooLarge) {
			JSONResponse(http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()}).Write(w)
			return
		}
		JSONResponse(http.StatusBadRequest, map[string]string{"error": "malformed request body"}).Write(w)
		return
	}
	s.writeProjection(w, r, core.ParseInputs(p.RawInput()), p.IsJSON())
}

// writeProjection answers with the projection or, for out-of-range input,
// 422 and the field errors keyed by the names the client sent. Overflowed
// figures are encoded as null and flagged with "overflow".
func (s *Server) writeProjection(w http.ResponseWriter, r *http.Request, v core.Validation, jsonNames bool) {
	if !v.Valid {
		s.project(r, v)
		JSONResponse(http.StatusUnprocessableEntity, errorsResponse{Errors: fieldErrors(v.Errors, jsonNames)}).Write(w)
		return
	}

	res := s.project(r, v)
	if res.Series == nil {
		res.Series = []core.ProjectionPoint{}
	}
	summary, _ := core.Summary(v.Input)
	JSONResponse(http.StatusOK, projectionResponse{Input: v.Input, Result: res, Summary: summary}).Write(w)
}

// fieldErrors flattens fe for JSON, using the JSON field names when the
// request body was JSON and the short form names otherwise.
func fieldErrors(fe core.FieldErrors, jsonNames bool) map[string]string {
	out := make(map[string]string, len(fe))
	for f, e := range fe {
		name := string(f)
		if jsonNames {
			name = inputKeys[f][1]
		}
		out[name] = e.Message
	}
	return out
}

// handleSummary returns the copy-summary line as plain text.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	v := core.ParseInputs(ParseInputQuery(r.URL.Query()))
	summary, ok := core.Summary(v.Input)
	if !v.Valid || !ok {
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			BodyString("inputs are out of range").
			Write(w)
		return
	}
	NewHTMXResponse().BodyString(summary).Write(w)
}
