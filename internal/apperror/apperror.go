// Package apperror defines the domain error taxonomy shared by the service and
// handler layers.
//
// Services return these; handlers translate them to HTTP status codes. Nothing
// in here knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors. Compare with errors.Is, never with ==, because they are
// always wrapped inside an *AppError.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

// AppError pairs a sentinel with a message that is safe to show to clients.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // human-readable, returned to the caller as-is
	Field   string // optional: the request field that caused the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that no resource of the given kind exists with id.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation, e.g. a nickname that is already
// taken.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden reports that the caller does not own the resource it tried to
// change. HTTP handlers map this to 403.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}
