// Package middleware applies per-key rate limiting to net/http handlers.
package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"perkey.ratelimiter/metrics"
	"perkey.ratelimiter/types"
)

// RateLimitMiddleware provides rate limiting functionality.
type RateLimitMiddleware struct {
	limiter types.Admitter
	metrics *metrics.RateLimitMetrics
}

// NewRateLimitMiddleware creates a new RateLimitMiddleware.
func NewRateLimitMiddleware(limiter types.Admitter, metrics *metrics.RateLimitMetrics) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		metrics: metrics,
	}
}

// Handle wraps an http.HandlerFunc with rate limiting logic.
// identifierFunc extracts the per-client key from the request, typically the
// client IP address.
func (m *RateLimitMiddleware) Handle(next http.HandlerFunc, identifierFunc func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identifier := identifierFunc(r)
		if identifier == "" {
			// Deny to be safe when no identifier can be extracted.
			log.Warn().Str("remote_addr", r.RemoteAddr).Msg("Middleware: Could not extract identifier for request")
			w.WriteHeader(http.StatusInternalServerError)
			m.metrics.RecordRequest(false)
			return
		}

		admitted := m.limiter.Request(identifier)
		m.metrics.RecordRequest(admitted)

		if !admitted {
			log.Debug().Str("identifier", identifier).Msg("Middleware: Request rate limited")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	}
}
