package event_bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// NotificationType identifies the kind of notification published on the bus.
type NotificationType string

// Notification is the generic envelope used by the bus. Data is kept as any
// so different payload types can share one bus.
type Notification struct {
	ctx       context.Context
	Type      NotificationType
	Timestamp time.Time
	Data      any
}

// NewNotification creates a Notification with the given context, type, and
// payload. The timestamp is set automatically.
func NewNotification(ctx context.Context, t NotificationType, data any) Notification {
	return Notification{
		ctx:       ctx,
		Type:      t,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Context returns the context the notification was published under.
func (n Notification) Context() context.Context {
	if n.ctx == nil {
		return context.Background()
	}
	return n.ctx
}

// NotificationT is a typed envelope used by typed handlers.
type NotificationT[T any] struct {
	ctx       context.Context
	Type      NotificationType
	Timestamp time.Time
	Data      T
}

// Context returns the context the notification was published under.
func (n NotificationT[T]) Context() context.Context {
	if n.ctx == nil {
		return context.Background()
	}
	return n.ctx
}

type handler func(Notification) error

// Bus is a concurrency-safe synchronous dispatcher. The calendar store
// publishes mutation outcomes on it; the embedding presentation layer
// subscribes to render toasts and wire undo/retry affordances. All handlers
// run sequentially during Publish.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[NotificationType]map[uint64]handler
	nextID      uint64
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[NotificationType]map[uint64]handler),
	}
}

// Subscribe registers a handler for the given notification type and returns
// an unsubscribe function that removes it.
func (b *Bus) Subscribe(t NotificationType, h func(Notification) error) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subscribers[t] == nil {
		b.subscribers[t] = make(map[uint64]handler)
	}
	b.subscribers[t][id] = handler(h)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if handlers := b.subscribers[t]; handlers != nil {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(b.subscribers, t)
			}
		}
	}
}

// SubscribeTyped registers a handler that expects a payload of type T. It is
// a free function because Go does not allow type parameters on methods. The
// wrapper only invokes the typed handler when the payload assertion succeeds.
func SubscribeTyped[T any](b *Bus, t NotificationType, h func(NotificationT[T]) error) (unsubscribe func()) {
	wrapper := func(n Notification) error {
		if n.Data == nil {
			log.Debugf("bus: nil payload for %s, skipping typed handler", t)
			return nil
		}
		payload, ok := n.Data.(T)
		if !ok {
			log.Debugf("bus: payload type mismatch for %s: expected %T, got %T", t, *new(T), n.Data)
			return nil
		}
		return h(NotificationT[T]{
			ctx:       n.ctx,
			Type:      n.Type,
			Timestamp: n.Timestamp,
			Data:      payload,
		})
	}
	return b.Subscribe(t, wrapper)
}

// Publish delivers the notification to all handlers registered for its type.
// Handler errors are collected and returned as one error; a panicking handler
// is recovered and treated as an error. If the notification's context is
// cancelled mid-delivery, remaining handlers are skipped.
func (b *Bus) Publish(n Notification) error {
	if err := n.Context().Err(); err != nil {
		return fmt.Errorf("notification %s: context cancelled before publish: %w", n.Type, err)
	}

	b.mu.RLock()
	handlers := make([]handler, 0, len(b.subscribers[n.Type]))
	for _, h := range b.subscribers[n.Type] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := n.Context().Err(); err != nil {
			errs = append(errs, fmt.Errorf("context cancelled during delivery: %w", err))
			break
		}
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("handler panic for notification %s: %v", n.Type, r)
					log.Error(err)
				}
			}()
			return h(n)
		}()
		if err != nil {
			log.Errorf("bus: handler error for notification %s: %v", n.Type, err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification %s: %d handler(s) failed: %v", n.Type, len(errs), errs)
	}
	return nil
}
