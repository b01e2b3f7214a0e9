package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError so the API has one
// content type and one error shape:
//
//	{"error": "not_found", "message": "post not found with id abc123"}
//
// Success bodies carry a human-readable "message" next to the payload fields
// wherever existing clients expect one.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/dongne/internal/apperror"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable kind, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// MessageResponse is the body of mutations that return nothing but a
// confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sets the content type, then the status, then encodes data.
// Headers cannot change once the body has started.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to a status code.
//
//	ErrValidation → 400
//	ErrNotFound   → 404
//	ErrForbidden  → 403
//	ErrConflict   → 409
//	body too big  → 413
//	anything else → 500, with a generic message
//
// errors.Is walks the chain through AppError.Unwrap, so services may wrap
// apperrors with fmt.Errorf("...: %w", err) freely.
func writeError(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "payload_too_large",
			Message: "request body is too large",
		})
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Never expose raw storage errors: they can contain SQL and file paths.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
