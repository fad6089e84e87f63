package background

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/mealplanner-go/ratelimit"
)

func TestWindowJanitorSweepsExpiredWindows(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	policy := ratelimit.Policy{Class: "login", Quota: 5, Window: time.Millisecond}

	_, err := store.Hit(context.Background(), "login", "1.2.3.4", policy)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	stop := make(chan struct{})
	wg := StartWindowJanitor(store, 5*time.Millisecond, stop)

	assert.Eventually(t, func() bool {
		return store.Len() == 0
	}, time.Second, 5*time.Millisecond)

	close(stop)
	wg.Wait()
}

func TestWindowJanitorStopsOnClose(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	stop := make(chan struct{})
	wg := StartWindowJanitor(store, time.Millisecond, stop)

	close(stop)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after stop channel closed")
	}
}
