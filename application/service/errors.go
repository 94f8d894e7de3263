package service

import "errors"

var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("vodcast: client is closed")

	// ErrValidation indicates caller input was rejected.
	ErrValidation = errors.New("validation failed")
)
