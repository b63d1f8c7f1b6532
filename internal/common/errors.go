package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies domain failures so transports can map them consistently.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION_ERROR"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindConflict   ErrorKind = "CONFLICT"
	KindGateway    ErrorKind = "GATEWAY_ERROR"
	KindTimeout    ErrorKind = "TIMEOUT"
	KindInternal   ErrorKind = "INTERNAL_ERROR"
)

// AppError is the error type returned by services for expected failure modes.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// StatusCode maps the error kind to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindGateway:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func Validation(format string, args ...any) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationField reports a single invalid field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: message,
		Details: map[string]string{field: message},
	}
}

func NotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func Conflict(format string, args ...any) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Gateway(message string, err error) *AppError {
	return &AppError{Kind: KindGateway, Message: message, Err: err}
}

func Timeout(message string) *AppError {
	return &AppError{Kind: KindTimeout, Message: message}
}

func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// IsKind reports whether err, or anything it wraps, is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// AsAppError converts any error into an AppError, treating unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal server error", err)
}
