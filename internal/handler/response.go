package handler

// RESPONSE HELPERS:
// writeJSON standardises JSON responses (only /healthz speaks JSON here), and
// statusFor maps domain errors to HTTP status codes in one place, so the
// service layer never has to know about HTTP.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/gitbot-link/internal/apperror"
)

// writeJSON sends a JSON response with the given status code.
// Headers and status must be set BEFORE the body is written.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent, so we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps a domain error to an HTTP status code.
//
// errors.Is walks the whole chain, so this works for errors the service
// wrapped with fmt.Errorf("service/link: %w", ...).
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrConfiguration):
		// The operator has to fix something; the service itself is up.
		return http.StatusServiceUnavailable // 503
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest // 400
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden // 403
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound // 404
	default:
		return http.StatusInternalServerError // 500
	}
}
