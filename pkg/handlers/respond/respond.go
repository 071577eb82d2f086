// Package respond centralizes JSON response writing and the mapping from
// domain errors to HTTP status codes, so every handler reports the same error
// the same way.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spinshop/record-store-core/pkg/api"
	"github.com/spinshop/record-store-core/pkg/storage"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Error maps a domain error to the uniform error body and status code.
func Error(w http.ResponseWriter, err error) {
	body := api.Error{Message: err.Error()}

	var transition *storage.TransitionError
	if errors.As(err, &transition) {
		body.Code = "invalid_transition"
		body.From = string(transition.From)
		body.To = string(transition.To)
		JSON(w, http.StatusConflict, body)
		return
	}

	var status int
	switch {
	case errors.Is(err, storage.ErrInvalidQuantity):
		status, body.Code = http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, storage.ErrValidation):
		status, body.Code = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, storage.ErrInsufficientStock):
		status, body.Code = http.StatusConflict, "insufficient_stock"
	case errors.Is(err, storage.ErrStatusConflict):
		status, body.Code = http.StatusConflict, "status_conflict"
	case errors.Is(err, storage.ErrAlreadyUndone):
		status, body.Code = http.StatusConflict, "already_undone"
	case errors.Is(err, storage.ErrTokenExpired):
		status, body.Code = http.StatusGone, "token_expired"
	case errors.Is(err, storage.ErrVariantNotFound),
		errors.Is(err, storage.ErrOrderNotFound),
		errors.Is(err, storage.ErrReservationNotFound),
		errors.Is(err, storage.ErrTokenNotFound):
		status, body.Code = http.StatusNotFound, "not_found"
	default:
		status, body.Code = http.StatusInternalServerError, "internal"
		body.Message = "internal error"
		slog.Error("request failed", "error", err)
	}

	JSON(w, status, body)
}

// BadRequest reports a malformed request body.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, api.Error{Code: "bad_request", Message: message})
}
