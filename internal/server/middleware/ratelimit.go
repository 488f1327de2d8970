package middleware

import (
	"net/http"
	"strconv"

	"github.com/vidlens/vidlens/internal/apierr"
	"github.com/vidlens/vidlens/pkg/ratelimit"
)

// RateLimit applies the given sliding-window limiter, keyed by caller
// identity. Each endpoint family gets its own limiter instance, so
// exhausting one family does not starve another.
//
// Denied requests receive 429 with a Retry-After header in seconds.
func RateLimit(limiter *ratelimit.SlidingWindow) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := limiter.Allow(CallerKey(r))
			if !decision.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
				apierr.Write(w, http.StatusTooManyRequests, apierr.CodeRateLimited,
					"Rate limit exceeded")
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			next.ServeHTTP(w, r)
		})
	}
}
