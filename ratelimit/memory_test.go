package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(quota int, window time.Duration) Policy {
	return Policy{Class: "login", Quota: quota, Window: window, Message: "too many"}
}

func TestMemoryStoreAdmitsUpToQuota(t *testing.T) {
	store := NewMemoryStore()
	policy := testPolicy(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := store.Hit(ctx, "login", "1.2.3.4", policy)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "hit %d should be admitted", i+1)
		assert.Equal(t, 3, d.Limit)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := store.Hit(ctx, "login", "1.2.3.4", policy)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
}

func TestMemoryStoreWindowResets(t *testing.T) {
	store := NewMemoryStore()
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	policy := testPolicy(1, time.Minute)
	ctx := context.Background()

	d, err := store.Hit(ctx, "login", "1.2.3.4", policy)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = store.Hit(ctx, "login", "1.2.3.4", policy)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Minute, d.RetryAfter)

	// Step past the window boundary; the next hit starts a fresh window.
	current = current.Add(time.Minute)
	d, err = store.Hit(ctx, "login", "1.2.3.4", policy)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMemoryStoreClassesAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	login := testPolicy(1, time.Minute)
	signup := Policy{Class: "signup", Quota: 1, Window: time.Minute, Message: "too many"}

	d, err := store.Hit(ctx, "login", "1.2.3.4", login)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = store.Hit(ctx, "login", "1.2.3.4", login)
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	// Exhausting login leaves signup untouched for the same client.
	d, err = store.Hit(ctx, "signup", "1.2.3.4", signup)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	policy := testPolicy(1, time.Minute)

	d, err := store.Hit(ctx, "login", "1.2.3.4", policy)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = store.Hit(ctx, "login", "5.6.7.8", policy)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMemoryStoreConcurrentHitsAdmitExactlyQuota(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	policy := testPolicy(50, time.Minute)

	const attempts = 200
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := store.Hit(ctx, "login", "1.2.3.4", policy)
			if err != nil {
				return
			}
			if d.Allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, policy.Quota, admitted)
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore()
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	short := Policy{Class: "login", Quota: 5, Window: time.Minute}
	long := Policy{Class: "signup", Quota: 5, Window: time.Hour}

	_, err := store.Hit(ctx, "login", "1.2.3.4", short)
	require.NoError(t, err)
	_, err = store.Hit(ctx, "signup", "1.2.3.4", long)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	// Only the short window has elapsed after two minutes.
	removed := store.Sweep(current.Add(2 * time.Minute))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
}
