package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/vodcast/internal/log"
)

// CorrelationIDHeader is the request and response header carrying the
// correlation ID.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID returns a middleware that adds correlation ID to the request context.
// An incoming X-Correlation-ID header wins; otherwise chi's request ID is used.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())

		correlationID := r.Header.Get(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = requestID
		}

		if correlationID != "" {
			w.Header().Set(CorrelationIDHeader, correlationID)
		}

		ctx := log.WithCorrelationID(r.Context(), correlationID)
		if requestID != "" {
			ctx = log.WithRequestID(ctx, requestID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID retrieves the correlation ID from the context.
func GetCorrelationID(ctx context.Context) string {
	return log.CorrelationID(ctx)
}
