package planfeed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterDeliversToOwnerOnly(t *testing.T) {
	b := NewBroadcaster()

	_, aliceEvents := b.Subscribe(1)
	_, bobEvents := b.Subscribe(2)

	b.PublishToUser(1, Event{Name: EventPlanUpdated, Data: `{"from":"2026-08-03"}`})

	select {
	case ev := <-aliceEvents:
		assert.Equal(t, EventPlanUpdated, ev.Name)
	default:
		t.Fatal("expected an event for user 1")
	}

	select {
	case <-bobEvents:
		t.Fatal("user 2 must not receive user 1's events")
	default:
	}
}

func TestBroadcasterFansOutToAllConnectionsOfUser(t *testing.T) {
	b := NewBroadcaster()

	_, tab1 := b.Subscribe(1)
	_, tab2 := b.Subscribe(1)

	b.PublishToUser(1, Event{Name: EventPlanUpdated})

	require.Len(t, tab1, 1)
	require.Len(t, tab2, 1)
}

func TestBroadcasterUnsubscribeIsIdempotent(t *testing.T) {
	b := NewBroadcaster()

	id, events := b.Subscribe(1)
	require.Equal(t, 1, b.ClientCount())

	b.Unsubscribe(id)
	assert.Equal(t, 0, b.ClientCount())

	// Channel is closed after unsubscribe.
	_, open := <-events
	assert.False(t, open)

	// Second call is a no-op rather than a double close.
	b.Unsubscribe(id)
}

func TestBroadcasterDropsEventsForSlowClients(t *testing.T) {
	b := NewBroadcaster()

	_, events := b.Subscribe(1)

	// Overflow the buffer without reading; the publisher must never block.
	for i := 0; i < 100; i++ {
		b.PublishToUser(1, Event{Name: EventPlanUpdated})
	}

	assert.Equal(t, cap(events), len(events))
}

func TestEventFormat(t *testing.T) {
	ev := Event{Name: EventPlanUpdated, Data: map[string]string{
		"from": "2026-08-03",
		"to":   "2026-08-10",
	}}
	got, err := ev.Format()
	require.NoError(t, err)
	assert.Equal(t,
		"event: plan-updated\ndata: {\"from\":\"2026-08-03\",\"to\":\"2026-08-10\"}\n\n",
		got)
}
