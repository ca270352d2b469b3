package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("Validation Error")
	ErrForbidden     = errors.New("forbidden")
	ErrConfiguration = errors.New("configuration error")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field (or config key) causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

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

// Forbidden returns an AppError indicating the caller presented a credential
// that does not match the resource it claims.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Configuration reports a missing or unusable operator setting.
//
// These errors are for operators only. HTTP handlers log them and show the
// end user a neutral "unavailable" page; the message never reaches the browser.
func Configuration(key, message string) *AppError {
	return &AppError{
		Err:     ErrConfiguration,
		Message: fmt.Sprintf("%s: %s", key, message),
		Field:   key,
	}
}
