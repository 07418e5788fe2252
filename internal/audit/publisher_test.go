package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caplock/pkg/requestcontext"
)

func TestStorePublisherStampsEvents(t *testing.T) {
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)

	store := NewInMemoryStore()
	publisher := NewStorePublisher(store)
	require.NoError(t, publisher.Emit(ctx, Event{Actor: "a", Action: ActionMint}))

	events := store.All()
	require.Len(t, events, 1)
	assert.NotZero(t, events[0].ID, "ID is stamped when empty")
	assert.Equal(t, fixed, events[0].Timestamp, "timestamp comes from the request clock")
}

func TestChannelPublisherDropsWhenFull(t *testing.T) {
	ctx := context.Background()
	inbox := make(chan Event, 1)
	publisher := NewChannelPublisher(inbox)

	require.NoError(t, publisher.Emit(ctx, Event{Action: "one"}))
	// Inbox is full; Emit must not block and must not error.
	require.NoError(t, publisher.Emit(ctx, Event{Action: "two"}))

	assert.Len(t, inbox, 1)
	assert.Equal(t, "one", (<-inbox).Action)
}

func TestWorkerDrainsInboxIntoSink(t *testing.T) {
	inbox := make(chan Event, 8)
	store := NewInMemoryStore()
	worker := NewWorker(NewStorePublisher(store), inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	publisher := NewChannelPublisher(inbox)
	for _, action := range []string{ActionMint, ActionDenylistSet, ActionGovernanceScheduled} {
		require.NoError(t, publisher.Emit(ctx, Event{Actor: "admin", Action: action}))
	}

	require.Eventually(t, func() bool {
		return len(store.All()) == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	byActor, err := store.ListByActor(context.Background(), "admin")
	require.NoError(t, err)
	assert.Len(t, byActor, 3)
}
