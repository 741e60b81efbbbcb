// Package apperror defines the typed errors the services raise and the
// HTTP boundary maps onto error envelopes. Anonymous-facing responses are
// built from these values only, never from wrapped internal errors.
package apperror

import (
	"errors"
	"net/http"
)

type AppError struct {
	Message string
	Status  int
	Code    string
	Details interface{}
}

func (e *AppError) Error() string {
	return e.Message
}

func New(status int, code, message string) *AppError {
	return &AppError{Message: message, Status: status, Code: code}
}

func BadRequest(code, message string) *AppError {
	return New(http.StatusBadRequest, code, message)
}

func NotFound(code, message string) *AppError {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string) *AppError {
	return New(http.StatusConflict, code, message)
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// From extracts an *AppError from err, or wraps err as an opaque 500 so no
// internal detail reaches the response body.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}
