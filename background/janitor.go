// Package background contains services that run independently of the
// request-response cycle. The one resident here is the rate-window janitor:
// every client key that ever hits a limited route leaves a window behind in
// the in-memory store, so a periodic sweep keeps the map from growing without
// bound over the life of the process.
package background

import (
	"log"
	"sync"
	"time"

	"github.com/user/mealplanner-go/ratelimit"
)

// StartWindowJanitor launches the sweep loop for an in-memory window store.
// It can be shut down gracefully by closing stopChan; the returned WaitGroup
// lets the caller wait for the loop to finish draining before exiting.
func StartWindowJanitor(store *ratelimit.MemoryStore, interval time.Duration, stopChan <-chan struct{}) *sync.WaitGroup {
	log.Println("rate-window janitor starting...")

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		defer log.Println("rate-window janitor stopped.")

		ticker := time.NewTicker(interval)
		// Stopping the ticker releases its timer resources.
		defer ticker.Stop()

		for {
			select {
			case <-stopChan:
				return
			case now := <-ticker.C:
				if removed := store.Sweep(now); removed > 0 {
					log.Printf("rate-window janitor: removed %d expired windows", removed)
				}
			}
		}
	}()

	return &wg
}
