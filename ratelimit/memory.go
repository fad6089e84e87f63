// Package ratelimit, in-process window store. This is the default store for a
// single-instance deployment; the Redis store covers the multi-instance case.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// window is one counting window. resetAt is stored rather than recomputed so
// the janitor can sweep expired windows without knowing the policy.
type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps windows in a map guarded by a mutex. The whole
// read-increment-compare happens under the lock, which is what keeps two
// concurrent requests from both taking the last slot of a window.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window

	// now is swappable in tests to step through window expiry.
	now func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Hit implements Store.
func (s *MemoryStore) Hit(_ context.Context, class, key string, policy Policy) (Decision, error) {
	now := s.now()
	k := windowKey(class, key)

	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.windows[k]
	if !exists || !now.Before(w.resetAt) {
		// No window, or the previous one elapsed: start fresh with this request counted.
		w = &window{count: 1, resetAt: now.Add(policy.Window)}
		s.windows[k] = w
		return Decision{
			Allowed:   true,
			Limit:     policy.Quota,
			Remaining: policy.Quota - 1,
			ResetAt:   w.resetAt,
		}, nil
	}

	w.count++
	if w.count > policy.Quota {
		return Decision{
			Allowed:    false,
			Limit:      policy.Quota,
			Remaining:  0,
			RetryAfter: w.resetAt.Sub(now),
			ResetAt:    w.resetAt,
		}, nil
	}

	return Decision{
		Allowed:   true,
		Limit:     policy.Quota,
		Remaining: policy.Quota - w.count,
		ResetAt:   w.resetAt,
	}, nil
}

// Sweep removes windows that elapsed before `now` and returns how many were
// dropped. Without a periodic sweep the map would grow with every client key
// that ever hit a limited route.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of live windows, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
