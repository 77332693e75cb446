package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kalendo/kalendo/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// Entry pairs an event with a session-local key. The key stays stable across
// the optimistic-to-persisted id swap, so the presentation layer can key UI
// elements on it without relying on id equality before confirmation.
type Entry struct {
	LocalKey string
	Event    Event
}

// EventStore owns the authoritative in-memory event list and the undo stack
// for the lifetime of the mounted widget. Mutations apply optimistically,
// delegate to the EventSource, and roll back to the captured snapshot when
// the collaborator fails. The mutex guards list and stack access but is never
// held across a collaborator call, so independent operations may interleave
// between suspension points.
type EventStore struct {
	source EventSource
	bus    *event_bus.Bus

	mu        sync.Mutex
	entries   []Entry
	undoStack []undoAction
	filters   map[Color]struct{}
	search    string

	fetchGen    uint64
	cancelFetch context.CancelFunc
	lastFrom    time.Time
	lastTo      time.Time
	hasRange    bool
	loading     bool
}

// NewEventStore creates a store over the given source. The bus may be nil,
// in which case mutation outcomes are not published. The initial filter set
// defaults to the full palette when empty.
func NewEventStore(source EventSource, bus *event_bus.Bus, initialFilters []Color) *EventStore {
	if len(initialFilters) == 0 {
		initialFilters = Palette
	}
	filters := make(map[Color]struct{}, len(initialFilters))
	for _, c := range initialFilters {
		filters[c] = struct{}{}
	}
	return &EventStore{
		source:  source,
		bus:     bus,
		filters: filters,
	}
}

// AddEvent inserts the event optimistically under a provisional id, then
// delegates to the source. On confirmation the provisional event is replaced
// by the persisted one under the same local key and an undo action is pushed.
// On failure the provisional event is removed and the error is returned so
// the caller can offer a retry.
func (s *EventStore) AddEvent(ctx context.Context, event Event) (*Event, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	localKey := uuid.NewString()
	provisional := event
	provisional.ID = "optimistic-" + localKey

	s.mu.Lock()
	s.entries = append(s.entries, Entry{LocalKey: localKey, Event: provisional})
	s.mu.Unlock()
	log.Debugf("optimistically added event %q as %s", event.Title, provisional.ID)

	toCreate := event
	toCreate.ID = ""
	created, err := s.source.CreateEvent(ctx, toCreate)
	if err != nil {
		s.removeByKey(localKey)
		s.notify(ctx, event_bus.EventCreateFailed, provisional, err, func(ctx context.Context) error {
			_, err := s.AddEvent(ctx, event)
			return err
		})
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.mu.Lock()
	s.replaceByKeyLocked(localKey, *created)
	s.undoStack = append(s.undoStack, addAction{event: *created})
	s.mu.Unlock()

	s.notify(ctx, event_bus.EventCreated, *created, nil, nil)
	return created, nil
}

// UpdateEvent replaces the matching list entry optimistically, then delegates
// to the source. On failure the exact pre-update snapshot is restored. An
// unknown id fails with ErrNotFound before any mutation or external call.
func (s *EventStore) UpdateEvent(ctx context.Context, updated Event) (*Event, error) {
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	i := s.indexByIDLocked(updated.ID)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, updated.ID)
	}
	previous := s.entries[i].Event
	localKey := s.entries[i].LocalKey
	s.entries[i].Event = updated
	s.mu.Unlock()

	confirmed, err := s.source.UpdateEvent(ctx, updated)
	if err != nil {
		s.mu.Lock()
		s.replaceByKeyLocked(localKey, previous)
		s.mu.Unlock()
		s.notify(ctx, event_bus.EventUpdateFailed, updated, err, func(ctx context.Context) error {
			_, err := s.UpdateEvent(ctx, updated)
			return err
		})
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.mu.Lock()
	s.replaceByKeyLocked(localKey, *confirmed)
	s.undoStack = append(s.undoStack, updateAction{previous: previous, updated: *confirmed})
	s.mu.Unlock()

	s.notify(ctx, event_bus.EventUpdated, *confirmed, nil, nil)
	return confirmed, nil
}

// DeleteEvent removes the event optimistically, then delegates to the source.
// On failure the captured event is re-inserted; its position in the list is
// not load-bearing, display order is a sort key computed at query time.
func (s *EventStore) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexByIDLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	captured := s.entries[i]
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.mu.Unlock()

	if err := s.source.DeleteEvent(ctx, id); err != nil {
		s.mu.Lock()
		s.entries = append(s.entries, captured)
		s.mu.Unlock()
		s.notify(ctx, event_bus.EventDeleteFailed, captured.Event, err, func(ctx context.Context) error {
			return s.DeleteEvent(ctx, id)
		})
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.mu.Lock()
	s.undoStack = append(s.undoStack, deleteAction{event: captured.Event})
	s.mu.Unlock()

	s.notify(ctx, event_bus.EventDeleted, captured.Event, nil, nil)
	return nil
}

// Undo reverses the most recent confirmed mutation. An add is reversed by
// deleting the persisted event, an update by re-sending the previous
// snapshot, a delete by re-creating the event's data (its original id is
// discarded; creation assigns a fresh one). When the reversal's collaborator
// call fails the action is pushed back onto the stack and the list keeps its
// pre-undo state. An empty stack is a no-op.
func (s *EventStore) Undo(ctx context.Context) error {
	s.mu.Lock()
	if len(s.undoStack) == 0 {
		s.mu.Unlock()
		return nil
	}
	action := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.mu.Unlock()

	var affected Event
	var err error
	switch a := action.(type) {
	case addAction:
		affected = a.event
		if err = s.source.DeleteEvent(ctx, a.event.ID); err == nil {
			s.removeByID(a.event.ID)
		}
	case updateAction:
		affected = a.previous
		if _, err = s.source.UpdateEvent(ctx, a.previous); err == nil {
			s.replaceByID(a.previous.ID, a.previous)
		}
	case deleteAction:
		affected = a.event
		data := a.event
		data.ID = ""
		var restored *Event
		if restored, err = s.source.CreateEvent(ctx, data); err == nil {
			s.mu.Lock()
			s.entries = append(s.entries, Entry{LocalKey: uuid.NewString(), Event: *restored})
			s.mu.Unlock()
			affected = *restored
		}
	}

	if err != nil {
		s.mu.Lock()
		s.undoStack = append(s.undoStack, action)
		s.mu.Unlock()
		s.notify(ctx, event_bus.UndoFailed, affected, err, s.Undo)
		return fmt.Errorf("failed to undo: %w", err)
	}

	s.notify(ctx, event_bus.UndoApplied, affected, nil, nil)
	return nil
}

// CanUndo reports whether the undo stack is non-empty.
func (s *EventStore) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack) > 0
}

// SetDateRange cancels any in-flight range fetch, fetches the full event set
// for [from, to] and replaces the authoritative list with it. Only the most
// recently issued fetch may apply its result: a superseded fetch resolving
// late is discarded by a generation check, whether or not the source honored
// the cancellation. A context.Canceled failure is swallowed.
func (s *EventStore) SetDateRange(ctx context.Context, from time.Time, to time.Time) error {
	s.mu.Lock()
	s.fetchGen++
	gen := s.fetchGen
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancelFetch = cancel
	s.lastFrom, s.lastTo, s.hasRange = from, to, true
	s.loading = true
	s.mu.Unlock()

	events, err := s.source.FetchRange(fetchCtx, from, to)

	s.mu.Lock()
	if gen != s.fetchGen {
		s.mu.Unlock()
		log.Debugf("discarding stale range fetch result (generation %d)", gen)
		return nil
	}
	s.loading = false
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		s.notify(ctx, event_bus.RangeLoadFailed, Event{}, err, func(ctx context.Context) error {
			return s.SetDateRange(ctx, from, to)
		})
		return fmt.Errorf("failed to fetch events for range: %w", err)
	}
	entries := make([]Entry, len(events))
	for i, e := range events {
		entries[i] = Entry{LocalKey: uuid.NewString(), Event: e}
	}
	s.entries = entries
	s.mu.Unlock()

	log.Debugf("loaded %d events for range %s - %s", len(events), from.Format(DateLayout), to.Format(DateLayout))
	return nil
}

// Refetch re-issues the most recently requested range, if any.
func (s *EventStore) Refetch(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasRange {
		s.mu.Unlock()
		return nil
	}
	from, to := s.lastFrom, s.lastTo
	s.mu.Unlock()
	return s.SetDateRange(ctx, from, to)
}

// Loading reports whether a range fetch for the current generation is in
// flight.
func (s *EventStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Events returns a snapshot of the authoritative list, unfiltered, in
// insertion order. Optimistic entries are included.
func (s *EventStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Event
	}
	return out
}

// Entries returns a snapshot of the list with local keys, for presentation
// layers that key UI elements across the optimistic id swap.
func (s *EventStore) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// EventsOnDate returns events whose date span includes the given day and
// which pass the active color filters and search query. Optimistic state is
// reflected immediately.
func (s *EventStore) EventsOnDate(day time.Time) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.entries {
		if s.matchesLocked(e.Event) && e.Event.OccursOn(day) {
			out = append(out, e.Event)
		}
	}
	return out
}

// EventsInRange returns events whose date span intersects [from, to] and
// which pass the active color filters and search query.
func (s *EventStore) EventsInRange(from time.Time, to time.Time) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.entries {
		if s.matchesLocked(e.Event) && e.Event.OverlapsRange(from, to) {
			out = append(out, e.Event)
		}
	}
	return out
}

// SetFilters replaces the active color filter set.
func (s *EventStore) SetFilters(colors []Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = make(map[Color]struct{}, len(colors))
	for _, c := range colors {
		s.filters[c] = struct{}{}
	}
}

// ToggleFilter adds or removes one color from the active filter set.
func (s *EventStore) ToggleFilter(color Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.filters[color]; ok {
		delete(s.filters, color)
	} else {
		s.filters[color] = struct{}{}
	}
}

// ActiveFilters returns the colors currently passing the filter, in palette
// order.
func (s *EventStore) ActiveFilters() []Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Color
	for _, c := range Palette {
		if _, ok := s.filters[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// SetSearchQuery sets the case-insensitive substring filter applied by the
// date queries over title and description.
func (s *EventStore) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = q
}

func (s *EventStore) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

func (s *EventStore) matchesLocked(e Event) bool {
	if _, ok := s.filters[e.Color]; !ok {
		return false
	}
	if s.search == "" {
		return true
	}
	q := strings.ToLower(s.search)
	return strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.Description), q)
}

func (s *EventStore) indexByIDLocked(id string) int {
	for i, e := range s.entries {
		if e.Event.ID == id {
			return i
		}
	}
	return -1
}

// replaceByKeyLocked swaps the event held under a local key. A missing key is a
// no-op: the entry was removed by an interleaved operation and last writer
// wins.
func (s *EventStore) replaceByKeyLocked(localKey string, event Event) {
	for i, e := range s.entries {
		if e.LocalKey == localKey {
			s.entries[i].Event = event
			return
		}
	}
}

func (s *EventStore) removeByKey(localKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.LocalKey == localKey {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *EventStore) removeByID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexByIDLocked(id); i >= 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
	}
}

func (s *EventStore) replaceByID(id string, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexByIDLocked(id); i >= 0 {
		s.entries[i].Event = event
	}
}

func (s *EventStore) notify(ctx context.Context, t event_bus.NotificationType, e Event, err error, retry func(ctx context.Context) error) {
	if s.bus == nil {
		return
	}
	outcome := event_bus.MutationOutcome{
		EventID: e.ID,
		Title:   e.Title,
		Err:     err,
		Retry:   retry,
	}
	if publishErr := s.bus.Publish(event_bus.NewNotification(ctx, t, outcome)); publishErr != nil {
		log.Warnf("failed to publish %s notification: %v", t, publishErr)
	}
}
