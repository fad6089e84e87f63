// Package planfeed pushes plan-update notifications to connected clients over
// Server-Sent Events, so a dashboard learns a plan changed without polling the
// meals endpoint a second time.
package planfeed

import (
	"encoding/json"
	"fmt"
)

// Event names understood by the client.
const (
	// EventPlanUpdated signals that the user's meal plan was regenerated and
	// should be refetched.
	EventPlanUpdated = "plan-updated"
)

// Event is one SSE message: a named event with a JSON payload.
type Event struct {
	Name string
	Data interface{}
}

// Format renders the event in the SSE wire format.
func (e Event) Format() (string, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal SSE event data: %w", err)
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", e.Name, data), nil
}
