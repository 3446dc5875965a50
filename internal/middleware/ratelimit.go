package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/essayons/essayons-api/internal/pkg/metrics"
	"github.com/essayons/essayons-api/internal/pkg/ratelimit"
	"github.com/essayons/essayons-api/internal/pkg/response"
)

// RateLimit rejects requests over the store's limit with 429 + Retry-After.
// keyFn derives the counter key from the request (IP, user, route).
func RateLimit(store ratelimit.Store, name string, keyFn func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)

			decision, err := store.Allow(r.Context(), key)
			if err != nil {
				// A broken limiter backend must not take the API down.
				log.Error().Err(err).Str("limiter", name).Msg("Rate limit check failed")
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				metrics.RateLimitRejections.WithLabelValues(name).Inc()
				retryAfter := int(decision.RetryAfter.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				response.TooManyRequests(w, "Too many requests, slow down", retryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IPKey keys a limiter by client IP.
func IPKey(r *http.Request) string {
	return ClientIP(r)
}
