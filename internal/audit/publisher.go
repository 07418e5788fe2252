package audit

import (
	"context"

	"github.com/google/uuid"

	"caplock/pkg/requestcontext"
)

// Publisher is the sink domain services emit to. The memory store backs
// tests, the Kafka publisher backs production, and the channel publisher
// decouples emitters from slow sinks via the worker.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store is append-only persistence for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actor string) ([]Event, error)
}

// StorePublisher writes events straight to a store. Used in tests and
// single-instance deployments.
type StorePublisher struct {
	store Store
}

func NewStorePublisher(store Store) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Emit(ctx context.Context, event Event) error {
	return p.store.Append(ctx, stamp(ctx, event))
}

// ChannelPublisher hands events to a background worker. Emit never blocks on
// the sink; when the inbox is full the event is dropped, which is acceptable
// because audit is observability, not a precondition of any mutation.
type ChannelPublisher struct {
	inbox chan<- Event
}

func NewChannelPublisher(inbox chan<- Event) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event Event) error {
	select {
	case p.inbox <- stamp(ctx, event):
	default:
	}
	return nil
}

func stamp(ctx context.Context, event Event) Event {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	return event
}
