package owncast

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream is the base error for all failed Owncast calls.
	ErrUpstream = errors.New("owncast upstream error")

	// ErrNotConfigured indicates no Owncast URL was configured.
	ErrNotConfigured = fmt.Errorf("owncast url not configured: %w", ErrUpstream)
)

// UpstreamError wraps a failed Owncast call with additional context.
type UpstreamError struct {
	operation  string
	statusCode int
	message    string
	cause      error
}

// NewUpstreamError creates a new UpstreamError.
func NewUpstreamError(operation string, statusCode int, message string, cause error) *UpstreamError {
	return &UpstreamError{
		operation:  operation,
		statusCode: statusCode,
		message:    message,
		cause:      cause,
	}
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("owncast %s: %s", e.operation, e.message)
	if e.statusCode != 0 {
		msg = fmt.Sprintf("owncast %s: status %d: %s", e.operation, e.statusCode, e.message)
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *UpstreamError) Unwrap() error {
	return e.cause
}

// Is reports whether target is ErrUpstream.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// Operation returns the operation that failed.
func (e *UpstreamError) Operation() string { return e.operation }

// StatusCode returns the HTTP status code if a response was received.
func (e *UpstreamError) StatusCode() int { return e.statusCode }
