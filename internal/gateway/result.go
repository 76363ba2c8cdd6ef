package gateway

import (
	appErrors "github.com/noah-isme/academic-console/pkg/errors"
)

// Result is the outcome of a backend call that reached the backend and
// produced a JSON body: either the expected payload or the backend's error
// message. Transport and decode failures are reported separately as errors.
type Result[T any] struct {
	value   T
	failure string
	failed  bool
}

// Success wraps an expected payload.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure wraps a backend-reported error message.
func Failure[T any](message string) Result[T] {
	return Result[T]{failure: message, failed: true}
}

// Ok reports whether the result carries the expected payload.
func (r Result[T]) Ok() bool {
	return !r.failed
}

// Value returns the payload and true on success.
func (r Result[T]) Value() (T, bool) {
	return r.value, !r.failed
}

// Failure returns the backend message and true on failure.
func (r Result[T]) Failure() (string, bool) {
	return r.failure, r.failed
}

// Err converts a failure into a BACKEND_ERROR, nil on success.
func (r Result[T]) Err() error {
	if !r.failed {
		return nil
	}
	return appErrors.Clone(appErrors.ErrBackend, r.failure)
}
