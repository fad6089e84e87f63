// Package planfeed, the SSE endpoint. The handler upgrades the response to a
// text/event-stream and forwards broadcaster events until the client hangs up.
package planfeed

import (
	"fmt"
	"net/http"
	"time"

	"github.com/user/mealplanner-go/apperror"
	"github.com/user/mealplanner-go/auth"
)

// keepAliveInterval is how often a comment line is written to detect dead
// connections and keep proxies from timing out the stream.
const keepAliveInterval = 30 * time.Second

// Handlers serves the SSE stream endpoint.
type Handlers struct {
	broadcaster *Broadcaster
}

// NewHandlers creates new planfeed Handlers.
func NewHandlers(broadcaster *Broadcaster) *Handlers {
	return &Handlers{broadcaster: broadcaster}
}

// HandleStream godoc
// @Summary Subscribe to plan update events
// @Description Streams plan-updated events for the authenticated user as Server-Sent Events.
// @Tags Feed
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string "SSE stream"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or missing token"
// @Router /api/feed/plans [get]
func (h *Handlers) HandleStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("identity not found in context", nil))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			auth.WriteError(w, r, apperror.NewInternalError("streaming unsupported by connection", nil))
			return
		}

		clientID, events := h.broadcaster.Subscribe(identity.UserID)
		defer h.broadcaster.Unsubscribe(clientID)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-keepAlive.C:
				// SSE comment line; ignored by clients, keeps the pipe warm.
				fmt.Fprint(w, ": keep-alive\n\n")
				flusher.Flush()
			case event, open := <-events:
				if !open {
					return
				}
				payload, err := event.Format()
				if err != nil {
					continue
				}
				fmt.Fprint(w, payload)
				flusher.Flush()
			}
		}
	}
}
