package calendar

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an update or delete references an id
	// that is not in the authoritative list. No mutation has happened.
	ErrNotFound = errors.New("event not found")

	// ErrValidation is returned before any state mutation or external call.
	ErrValidation = errors.New("invalid event")
)

// EventSource is the asynchronous persistence collaborator supplied by the
// embedder. CreateEvent receives an event with an empty ID and must return a
// fully-formed event including the assigned id. UpdateEvent returns the
// canonical persisted form, which may differ from its input. FetchRange
// returns the full event set for the range, not a delta; it should observe
// ctx cancellation, and a context.Canceled failure of a superseded fetch is
// treated as a silent no-op by the store.
type EventSource interface {
	CreateEvent(ctx context.Context, event Event) (*Event, error)
	UpdateEvent(ctx context.Context, event Event) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
	FetchRange(ctx context.Context, from time.Time, to time.Time) ([]Event, error)
}
