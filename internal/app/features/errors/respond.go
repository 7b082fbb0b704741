// internal/app/features/errors/respond.go
package errors

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
)

type jsonError struct {
	Error   string `json:"error"`
	ErrorID string `json:"errorId,omitempty"`
}

// WriteJSONError writes {"error": msg, "errorId": id} with status.
func WriteJSONError(w http.ResponseWriter, status int, msg, errorID string) {
	if msg == "" {
		msg = strings.ToLower(http.StatusText(status))
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: msg, ErrorID: errorID})
}

// WantsJSON reports whether the caller is an API client.
func WantsJSON(r *http.Request) bool {
	if isHTMX(r) {
		return false
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// HTMXError answers an HTMX request with an inline alert and the given
// status. The swap is suppressed so the current content stays in place and
// the page picks the message up from the ltiusage:error event. Non-HTMX
// callers get fallback, when provided.
func HTMXError(w http.ResponseWriter, r *http.Request, status int, msg string, fallback func()) {
	if !isHTMX(r) && fallback != nil {
		fallback()
		return
	}
	w.Header().Set("HX-Reswap", "none")
	w.Header().Set("HX-Trigger", `{"ltiusage:error":`+quote(msg)+`}`)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `<div class="alert alert-error" role="alert">%s</div>`, html.EscapeString(msg))
}

// HTMXBadRequest is HTMXError with 400 and a bad-request page fallback.
func HTMXBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusBadRequest, msg, func() {
		RenderBadRequest(w, r, msg, backURL)
	})
}

// RenderBadRequest shows a bad-request page.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	signed, role, name := viewer(r)
	w.WriteHeader(http.StatusBadRequest)
	templates.Render(w, r, "error_bad_request", pageData{
		Title:      "Bad request",
		IsLoggedIn: signed,
		Role:       role,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	})
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
