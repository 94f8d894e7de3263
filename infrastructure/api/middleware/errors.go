package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/helixml/vodcast/application/service"
	"github.com/helixml/vodcast/domain/byterange"
	"github.com/helixml/vodcast/domain/video"
	"github.com/helixml/vodcast/infrastructure/owncast"
)

// ErrAuthentication indicates a missing or unknown API key.
var ErrAuthentication = errors.New("authentication failed")

// APIError represents a structured API error with additional context.
// Message is what the client sees; the cause is only logged.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates a new APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{
		code:    code,
		message: message,
		cause:   cause,
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.cause
}

// Code returns the HTTP status code.
func (e *APIError) Code() int {
	return e.code
}

// Message returns the error message.
func (e *APIError) Message() string {
	return e.message
}

// AuthenticationError represents an authentication failure.
type AuthenticationError struct {
	message string
}

// NewAuthenticationError creates a new AuthenticationError.
func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{message: message}
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.message)
}

// Unwrap returns the base authentication error for errors.Is compatibility.
func (e *AuthenticationError) Unwrap() error {
	return ErrAuthentication
}

// ErrorResponse is the JSON body of every error answered by the JSON routes.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Messages for errors that carry no client-facing text of their own.
const (
	MessageNotFound       = "File not found"
	MessageInternalError  = "Internal server error"
	MessageUpstreamFailed = "Live server unavailable"
)

// StatusFor maps an error to its HTTP status code and client-facing message.
func StatusFor(err error) (int, string) {
	var apiErr *APIError
	var authErr *AuthenticationError

	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code(), apiErr.Message()
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, authErr.Error()
	case errors.Is(err, video.ErrNotFound):
		return http.StatusNotFound, MessageNotFound
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, byterange.ErrRange):
		return http.StatusRequestedRangeNotSatisfiable, http.StatusText(http.StatusRequestedRangeNotSatisfiable)
	case errors.Is(err, owncast.ErrUpstream):
		return http.StatusInternalServerError, MessageUpstreamFailed
	default:
		return http.StatusInternalServerError, MessageInternalError
	}
}

// WriteError writes a JSON error response and logs the underlying error.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, message := StatusFor(err)

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request error",
			slog.Int("status", status),
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
