// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorLogger logs request failures with a generated error id and answers
// the caller in the form it expects (JSON, HTMX or an HTML page).
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) log(level string, r *http.Request, msg string, err error) string {
	id := uuid.NewString()
	fields := []zap.Field{
		zap.String("error_id", id),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if level == "warn" {
		e.Log.Warn(msg, fields...)
	} else {
		e.Log.Error(msg, fields...)
	}
	return id
}

// LogServerError logs err and responds with a 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	id := e.log("error", r, msg, err)
	switch {
	case WantsJSON(r):
		WriteJSONError(w, http.StatusInternalServerError, userMsg, id)
	case isHTMX(r):
		HTMXError(w, r, http.StatusInternalServerError, userMsg+" (error "+id+")", nil)
	default:
		RenderServerError(w, r, userMsg, id, backURL)
	}
}

// LogJSONServerError logs err and always answers with a JSON 500, for
// API endpoints whose callers may not send an Accept header.
func (e *ErrorLogger) LogJSONServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	id := e.log("error", r, msg, err)
	WriteJSONError(w, http.StatusInternalServerError, userMsg, id)
}

// HTMXLogServerError is LogServerError for handlers that only serve
// fragments. Non-HTMX callers still get the full error page.
func (e *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.LogServerError(w, r, msg, err, userMsg, backURL)
}

// LogBadRequest logs a client error at warn level and responds with a 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	id := e.log("warn", r, msg, err)
	switch {
	case WantsJSON(r):
		WriteJSONError(w, http.StatusBadRequest, userMsg, id)
	case isHTMX(r):
		HTMXError(w, r, http.StatusBadRequest, userMsg, nil)
	default:
		RenderBadRequest(w, r, userMsg, backURL)
	}
}

// LogForbidden logs a denied request and responds with a 403.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, msg string, userMsg, backURL string) {
	id := e.log("warn", r, msg, nil)
	switch {
	case WantsJSON(r):
		WriteJSONError(w, http.StatusForbidden, userMsg, id)
	case isHTMX(r):
		HTMXError(w, r, http.StatusForbidden, userMsg, nil)
	default:
		RenderForbidden(w, r, userMsg, backURL)
	}
}
