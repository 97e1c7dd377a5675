package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRunsHandlersForMatchingType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []EventType
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})
	d.Subscribe(EventTicketDeleted, func(_ context.Context, e Event) error {
		t.Fatalf("unexpected handler call for %s", e.Type)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.Equal(t, []EventType{EventTicketCreated}, got)
}

func TestPublishJoinsHandlerErrorsAndKeepsGoing(t *testing.T) {
	d := NewInMemoryDispatcher()
	first := errors.New("smtp down")
	second := errors.New("webhook down")
	calls := 0
	d.Subscribe(EventTicketStatusChanged, func(context.Context, Event) error {
		calls++
		return first
	})
	d.Subscribe(EventTicketStatusChanged, func(context.Context, Event) error {
		calls++
		return nil
	})
	d.Subscribe(EventTicketStatusChanged, func(context.Context, Event) error {
		calls++
		return second
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketStatusChanged})
	require.Error(t, err)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.Equal(t, 3, calls)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketNoteAdded}))
}
