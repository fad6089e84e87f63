// Package planfeed, the broadcaster. It keeps track of connected clients and
// fans events out to the ones belonging to a given user. A user may have
// several connections at once (two browser tabs); each gets its own buffered
// channel.
package planfeed

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// client holds the delivery channel and owner of one SSE connection.
type client struct {
	userID  int
	events  chan Event
}

// Broadcaster manages SSE clients and message broadcasting. The clients map is
// guarded by an RWMutex: publishing only reads the map, while connect and
// disconnect write it.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]*client),
	}
}

// Subscribe registers a new client connection for a user and returns the
// client id (needed to unsubscribe) and the event channel to stream from.
func (b *Broadcaster) Subscribe(userID int) (string, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clientID := uuid.New().String()
	c := &client{
		userID: userID,
		// Buffered so one slow reader does not stall the publisher; events
		// beyond the buffer are dropped for that client, which is acceptable
		// because a plan-updated event is a refetch hint, not state.
		events: make(chan Event, 32),
	}
	b.clients[clientID] = c
	return clientID, c.events
}

// Unsubscribe removes a client and closes its channel. Safe to call twice;
// the second call is a no-op.
func (b *Broadcaster) Unsubscribe(clientID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.clients[clientID]
	if !ok {
		return
	}
	delete(b.clients, clientID)
	close(c.events)
}

// PublishToUser delivers an event to every connection owned by the user.
// Sends never block: a full buffer means the client is too far behind and the
// event is dropped for that connection.
func (b *Broadcaster) PublishToUser(userID int, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, c := range b.clients {
		if c.userID != userID {
			continue
		}
		select {
		case c.events <- event:
		default:
			log.Printf("planfeed: dropping event for slow client %s", id)
		}
	}
}

// ClientCount reports the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
