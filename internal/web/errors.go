package web

// errors.go turns errors into responses. The technical error is logged
// with the request id; the client gets the core.MapError message in the
// shape it asked for: an SSE alert patch for datastar requests, JSON for
// /api and JSON clients, plain text otherwise.

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/logging"
	"github.com/JonMunkholm/csvpreview/internal/preview"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code"`
}

var errNoFile = errors.New("no file provided")

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	switch {
	case isDatastar(r):
		sse := datastar.NewSSE(w, r)
		if perr := sse.PatchElementTempl(ErrorAlert(&userMsg)); perr != nil {
			_ = sse.ConsoleError(perr)
		}
	case wantsJSON(r):
		writeJSONStatus(w, statusCode, ErrorResponse{
			Error:  userMsg.Message,
			Action: userMsg.Action,
			Code:   userMsg.Code,
		})
	default:
		http.Error(w, userMsg.Message+" ("+userMsg.Code+")", statusCode)
	}
}

// statusFor picks the HTTP status for a pipeline or service error.
func statusFor(err error) int {
	var readErr *preview.ReadError
	var parseErr *preview.ParseError

	switch {
	case errors.Is(err, preview.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, preview.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrTooManyPreviews):
		return http.StatusServiceUnavailable
	case errors.Is(err, errNoFile),
		errors.Is(err, core.ErrUnknownColumn),
		errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, core.ErrNoTable):
		return http.StatusBadRequest
	case errors.As(err, &parseErr), errors.As(err, &readErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func isDatastar(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true"
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
