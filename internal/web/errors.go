package web

// errors.go turns errors into responses. The technical error is logged with
// the request ID; the client gets the mapped message and support code, as
// JSON for API callers or as an alert fragment for HTMX.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/sheetguard/internal/core"
	"github.com/JonMunkholm/sheetguard/internal/gridsource"
	"github.com/JonMunkholm/sheetguard/internal/logging"
	"github.com/JonMunkholm/sheetguard/internal/web/views"
)

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrProfileNotFound), errors.Is(err, core.ErrRuleNotFound):
		return http.StatusNotFound
	case errors.Is(err, gridsource.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNameRequired),
		errors.Is(err, core.ErrInvalidRule),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrNoHeaders),
		errors.Is(err, core.ErrInvalidRequest),
		errors.Is(err, gridsource.ErrUnsupportedFormat),
		errors.Is(err, gridsource.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyAnalyses):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing message.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	level := logging.FromContext(r.Context()).Warn
	if status >= http.StatusInternalServerError {
		level = logging.FromContext(r.Context()).Error
	}
	level("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if err := views.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render error alert", "error", err)
		}
	case wantsJSON(r):
		writeJSON(w, status, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
	default:
		http.Error(w, msg.Message+" ("+msg.Code+")", status)
	}
}

// fail responds with the status derived from err.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client asked for JSON or called the API.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
