// Package ratelimit, middleware form of the limiter. This is the first stage
// of the pipeline on gated routes: it runs before validation and before
// authentication, so an exhausted quota is reported without revealing whether
// the supplied credential was even well-formed.
package ratelimit

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/user/mealplanner-go/apperror"
)

// Middleware returns a chi-compatible middleware enforcing the named route
// class's policy, keyed by client IP.
func Middleware(limiter *Limiter, class string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := limiter.Check(r.Context(), class, clientKey(r))
			if err != nil {
				// A store failure (e.g. Redis unreachable) fails open: locking
				// every user out of login because the counter is down would be
				// a worse failure than briefly losing the limit.
				log.Printf("rate limit check failed for class %s: %v", class, err)
				next.ServeHTTP(w, r)
				return
			}

			setHeaders(w, decision)

			if !decision.Allowed {
				policy, _ := limiter.PolicyFor(class)
				w.Header().Set("Retry-After", strconv.Itoa(int(decision.RetryAfter.Seconds())+1))
				writeDenied(w, r, policy.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setHeaders emits the standard draft rate-limit headers on every response
// from a gated route, allowed or not, so well-behaved clients can pace
// themselves before hitting the wall.
func setHeaders(w http.ResponseWriter, d Decision) {
	w.Header().Set("RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))
	w.Header().Set("RateLimit-Reset", strconv.FormatInt(int64(time.Until(d.ResetAt).Seconds())+1, 10))
}

// writeDenied emits the standard error envelope with 429 semantics.
func writeDenied(w http.ResponseWriter, r *http.Request, message string) {
	appErr := apperror.NewRateLimitError(message, nil)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse(r.URL.Path)); err != nil {
		http.Error(w, `{"message":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}

// clientKey derives the limiter key for a request. RemoteAddr has already been
// rewritten by the RealIP middleware when the API sits behind a proxy; the
// port is stripped so one client does not get a fresh window per connection.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
