package web

// errors.go maps domain errors onto HTTP responses. Handlers call
// respondError with whatever the service layer returned; the technical
// error is logged with the request ID and the client gets a JSON body
// with a stable message and status.

import (
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/swipswaps/marketplace-bulk-editor/internal/auth"
	"github.com/swipswaps/marketplace-bulk-editor/internal/editor"
	"github.com/swipswaps/marketplace-bulk-editor/internal/export"
	"github.com/swipswaps/marketplace-bulk-editor/internal/logging"
	"github.com/swipswaps/marketplace-bulk-editor/internal/sheet"
	"github.com/swipswaps/marketplace-bulk-editor/internal/store"
)

// respondError logs err with request context and writes the mapped JSON
// error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"request_id", chimw.GetReqID(r.Context()),
	)

	writeError(w, status, err.Error())
}

// statusFor maps a domain error to an HTTP status code. Unknown errors
// are treated as internal.
func statusFor(err error) int {
	var parseErr *sheet.ParseError

	switch {
	case errors.Is(err, editor.ErrSessionNotFound),
		errors.Is(err, editor.ErrRowNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrUnknownField),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
