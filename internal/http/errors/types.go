package errors

import (
	"fmt"
	"net/http"
)

// AppError is the standard error envelope of the HTTP layer.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // original cause, never exposed to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// FromError converts any error into an AppError, defaulting to a generic
// internal error that keeps the original cause for logs.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail returns a copy with extra detail; base errors stay immutable.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause returns a copy carrying the original cause.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// Predefined errors

var (
	ErrBadRequest = &AppError{
		HTTPStatus: http.StatusBadRequest,
		Code:       "bad_request",
		Message:    "The request is invalid.",
	}
	ErrUnauthorized = &AppError{
		HTTPStatus: http.StatusUnauthorized,
		Code:       "unauthorized",
		Message:    "Authentication failed.",
	}
	ErrNotFound = &AppError{
		HTTPStatus: http.StatusNotFound,
		Code:       "not_found",
		Message:    "The requested resource was not found.",
	}
	ErrConflict = &AppError{
		HTTPStatus: http.StatusConflict,
		Code:       "conflict",
		Message:    "The request conflicts with existing data.",
	}
	ErrMethodNotAllowed = &AppError{
		HTTPStatus: http.StatusMethodNotAllowed,
		Code:       "method_not_allowed",
		Message:    "Method not allowed.",
	}
	ErrInternalServerError = &AppError{
		HTTPStatus: http.StatusInternalServerError,
		Code:       "internal_error",
		Message:    "An unexpected error occurred.",
	}
)
