package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StubSource is an in-memory EventSource used in tests and as the default
// backend when the embedder supplies no persistence callbacks. The error
// fields inject failures for the next matching call; FetchFunc, when set,
// replaces the built-in range query entirely.
type StubSource struct {
	mu     sync.Mutex
	events map[string]Event
	order  []string
	nextId int

	CreateErr error
	UpdateErr error
	DeleteErr error
	FetchErr  error
	FetchFunc func(ctx context.Context, from time.Time, to time.Time) ([]Event, error)
}

func NewStubSource() *StubSource {
	return &StubSource{
		events: make(map[string]Event),
		nextId: 1,
	}
}

func (s *StubSource) CreateEvent(ctx context.Context, event Event) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	event.ID = fmt.Sprintf("event-%d", s.nextId)
	s.nextId++
	s.events[event.ID] = event
	s.order = append(s.order, event.ID)
	return &event, nil
}

func (s *StubSource) UpdateEvent(ctx context.Context, event Event) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	if _, ok := s.events[event.ID]; !ok {
		return nil, fmt.Errorf("no stored event with id %s", event.ID)
	}
	s.events[event.ID] = event
	return &event, nil
}

func (s *StubSource) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.events[id]; !ok {
		return fmt.Errorf("no stored event with id %s", id)
	}
	delete(s.events, id)
	for i, storedId := range s.order {
		if storedId == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *StubSource) FetchRange(ctx context.Context, from time.Time, to time.Time) ([]Event, error) {
	if s.FetchFunc != nil {
		return s.FetchFunc(ctx, from, to)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	var out []Event
	for _, id := range s.order {
		if s.events[id].OverlapsRange(from, to) {
			out = append(out, s.events[id])
		}
	}
	return out, nil
}

// Stored returns the persisted event with the given id, if any.
func (s *StubSource) Stored(id string) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	return e, ok
}

// Count returns the number of persisted events.
func (s *StubSource) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
