package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed console error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so that clones and wraps of a
// sentinel still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound             = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden            = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized         = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation           = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal             = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrTransport            = New("TRANSPORT_ERROR", http.StatusBadGateway, "backend unreachable")
	ErrDecode               = New("DECODE_ERROR", http.StatusBadGateway, "backend response is not valid JSON")
	ErrUnexpectedPayload    = New("UNEXPECTED_PAYLOAD", http.StatusBadGateway, "backend response has an unexpected shape")
	ErrBackend              = New("BACKEND_ERROR", http.StatusUnprocessableEntity, "backend rejected the request")
	ErrConfirmationRequired = New("CONFIRMATION_REQUIRED", http.StatusPreconditionRequired, "confirmation required")
	ErrStorage              = New("STORAGE_ERROR", http.StatusServiceUnavailable, "session storage unavailable")
	ErrSessionMissing       = New("SESSION_MISSING", http.StatusNotFound, "session entry not found")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Message returns the user facing message of err, falling back to fallback
// when err carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
