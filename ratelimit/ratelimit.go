// Package ratelimit implements the fixed-window rate limiter guarding the
// sensitive endpoints (login, signup). Each (route class, client key) pair
// maps to an independent counting window with a fixed quota; once the quota
// is exhausted the request is denied with enough information for the client
// to compute a retry delay. Windows for different route classes never share
// state, so exhausting the login quota leaves the signup quota untouched.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Policy defines the quota for one route class.
type Policy struct {
	// Class names the logical group of endpoints sharing this policy.
	Class string
	// Quota is the number of requests admitted per window.
	Quota int
	// Window is the fixed window duration.
	Window time.Duration
	// Message is the human-readable text returned on denial.
	Message string
}

// Decision is the outcome of one limiter check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is how long until the window resets; only meaningful on denial.
	RetryAfter time.Duration
	// ResetAt is the absolute time the window resets.
	ResetAt time.Time
}

// Store tracks windows per (class, key). Hit atomically performs the
// read-increment-compare for one request: two concurrent hits on the same
// window must never both be admitted when only one slot remains.
type Store interface {
	Hit(ctx context.Context, class, key string, policy Policy) (Decision, error)
}

// Limiter resolves a route class to its policy and delegates counting to the
// store. The policy set is fixed at construction.
type Limiter struct {
	store    Store
	policies map[string]Policy
}

// New creates a Limiter over the given store and policies.
func New(store Store, policies ...Policy) *Limiter {
	byClass := make(map[string]Policy, len(policies))
	for _, p := range policies {
		byClass[p.Class] = p
	}
	return &Limiter{store: store, policies: byClass}
}

// Check records one request for (class, key) and reports whether it is
// admitted. An unknown class is a wiring bug, not a client error.
func (l *Limiter) Check(ctx context.Context, class, key string) (Decision, error) {
	policy, ok := l.policies[class]
	if !ok {
		return Decision{}, fmt.Errorf("no rate-limit policy registered for class %q", class)
	}
	return l.store.Hit(ctx, class, key, policy)
}

// PolicyFor returns the policy registered for a class, used by the middleware
// to build denial messages and headers.
func (l *Limiter) PolicyFor(class string) (Policy, bool) {
	p, ok := l.policies[class]
	return p, ok
}

// windowKey builds the store key for a (class, key) pair.
func windowKey(class, key string) string {
	return class + ":" + key
}
