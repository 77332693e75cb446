package event_bus

import "context"

// Notification types published by the event store. Presentation subscribes to
// these to surface toasts with undo (on success) or retry (on failure).
const (
	EventCreated      NotificationType = "calendar.event.created"
	EventCreateFailed NotificationType = "calendar.event.create.failed"
	EventUpdated      NotificationType = "calendar.event.updated"
	EventUpdateFailed NotificationType = "calendar.event.update.failed"
	EventDeleted      NotificationType = "calendar.event.deleted"
	EventDeleteFailed NotificationType = "calendar.event.delete.failed"
	UndoApplied       NotificationType = "calendar.undo.applied"
	UndoFailed        NotificationType = "calendar.undo.failed"
	RangeLoadFailed   NotificationType = "calendar.range.load.failed"
)

// MutationOutcome describes the result of one store mutation. EventID and
// Title identify the affected event. Err is nil on success. Retry, set only
// on failures, re-invokes the exact same operation with the same input.
type MutationOutcome struct {
	EventID string
	Title   string
	Err     error
	Retry   func(ctx context.Context) error
}
