// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/scenecue/internal/definitions"
	"github.com/ManuGH/scenecue/internal/domain/session/model"
	"github.com/ManuGH/scenecue/internal/log"
	"github.com/ManuGH/scenecue/internal/proxy"
	"github.com/ManuGH/scenecue/internal/uploads"
)

// errorBody is the only error envelope the API uses.
type errorBody struct {
	Detail string `json:"detail"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail writes {"detail": msg} with the given status code.
func writeDetail(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Detail: msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var upstream *proxy.StatusError
	switch {
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, definitions.ErrInvalidName),
		errors.Is(err, uploads.ErrInvalidFilename),
		errors.Is(err, proxy.ErrBadURL):
		return http.StatusBadRequest
	case errors.Is(err, proxy.ErrHostNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, model.ErrSceneNotFound),
		errors.Is(err, definitions.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, uploads.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, proxy.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, proxy.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstream):
		return upstream.Status
	case errors.Is(err, proxy.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and writes detail. An empty detail falls
// back to the error text for client errors and a generic message otherwise.
// Server-side failures are logged with the full error.
func writeError(w http.ResponseWriter, r *http.Request, err error, detail string) {
	code := statusFor(err)
	if detail == "" {
		if code < http.StatusInternalServerError {
			detail = err.Error()
		} else {
			detail = http.StatusText(code)
		}
	}
	if code >= http.StatusInternalServerError {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "request.failed").
			Str(log.FieldPath, r.URL.Path).
			Int(log.FieldStatus, code).
			Msg(detail)
	}
	writeDetail(w, code, detail)
}
