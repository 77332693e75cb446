package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kalendo/kalendo/internal/utils"
	log "github.com/sirupsen/logrus"
)

type Direction string

const (
	DirectionNone     Direction = ""
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// RangeRequester loads the event set for a newly visible range. The store's
// SetDateRange satisfies it.
type RangeRequester func(ctx context.Context, from time.Time, to time.Time) error

// Navigator is the view-state machine: any mode is reachable from any other,
// and every transition triggers a range request for the new anchor under the
// active mode. Direction only feeds presentation transitions and carries no
// other meaning.
type Navigator struct {
	request   RangeRequester
	clock     utils.Clock
	weekStart time.Weekday

	mu        sync.Mutex
	mode      Mode
	anchor    time.Time
	selected  time.Time
	direction Direction
}

func NewNavigator(request RangeRequester, clock utils.Clock, mode Mode, weekStart time.Weekday) *Navigator {
	if !mode.Valid() {
		mode = ModeMonth
	}
	now := clock.Now()
	return &Navigator{
		request:   request,
		clock:     clock,
		weekStart: weekStart,
		mode:      mode,
		anchor:    now,
		selected:  now,
	}
}

// Refresh requests the range for the current anchor and mode without moving
// anything. Called once after construction for the initial load, and by
// presentation-level retry affordances.
func (n *Navigator) Refresh(ctx context.Context) error {
	n.mu.Lock()
	anchor, mode := n.anchor, n.mode
	n.mu.Unlock()
	return n.dispatch(ctx, anchor, mode)
}

// Next advances the anchor by one unit of the current view mode.
func (n *Navigator) Next(ctx context.Context) error {
	return n.step(ctx, 1, DirectionForward)
}

// Previous retreats the anchor by one unit of the current view mode.
func (n *Navigator) Previous(ctx context.Context) error {
	return n.step(ctx, -1, DirectionBackward)
}

func (n *Navigator) step(ctx context.Context, sign int, dir Direction) error {
	n.mu.Lock()
	var next time.Time
	switch n.mode {
	case ModeDay:
		next = n.anchor.AddDate(0, 0, sign)
	case ModeWeek:
		next = n.anchor.AddDate(0, 0, 7*sign)
	case ModeYear:
		next = n.anchor.AddDate(sign, 0, 0)
	default: // month and list both page by month
		next = addMonths(n.anchor, sign)
	}
	n.anchor = next
	n.direction = dir
	mode := n.mode
	n.mu.Unlock()
	return n.dispatch(ctx, next, mode)
}

// GoToToday moves anchor and selection to the current day and clears the
// transition direction.
func (n *Navigator) GoToToday(ctx context.Context) error {
	now := n.clock.Now()
	n.mu.Lock()
	n.anchor = now
	n.selected = now
	n.direction = DirectionNone
	mode := n.mode
	n.mu.Unlock()
	return n.dispatch(ctx, now, mode)
}

// SetMode switches the view; the existing anchor is reused, so a month
// anchor carried into week view still yields a range containing that date.
func (n *Navigator) SetMode(ctx context.Context, mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown view mode %q", mode)
	}
	n.mu.Lock()
	n.mode = mode
	n.direction = DirectionNone
	anchor := n.anchor
	n.mu.Unlock()
	return n.dispatch(ctx, anchor, mode)
}

// GoToMonth replaces the anchor's month component in place.
func (n *Navigator) GoToMonth(ctx context.Context, month time.Month) error {
	n.mu.Lock()
	a := n.anchor
	day := a.Day()
	if last := time.Date(a.Year(), month+1, 0, 0, 0, 0, 0, a.Location()).Day(); day > last {
		day = last
	}
	n.anchor = time.Date(a.Year(), month, day, 0, 0, 0, 0, a.Location())
	n.direction = DirectionNone
	anchor, mode := n.anchor, n.mode
	n.mu.Unlock()
	return n.dispatch(ctx, anchor, mode)
}

// GoToYear replaces the anchor's year component in place.
func (n *Navigator) GoToYear(ctx context.Context, year int) error {
	n.mu.Lock()
	a := n.anchor
	day := a.Day()
	if last := time.Date(year, a.Month()+1, 0, 0, 0, 0, 0, a.Location()).Day(); day > last {
		day = last
	}
	n.anchor = time.Date(year, a.Month(), day, 0, 0, 0, 0, a.Location())
	n.direction = DirectionNone
	anchor, mode := n.anchor, n.mode
	n.mu.Unlock()
	return n.dispatch(ctx, anchor, mode)
}

// SetSelected records the day highlighted in the grid.
func (n *Navigator) SetSelected(day time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.selected = day
}

func (n *Navigator) Mode() Mode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mode
}

func (n *Navigator) Anchor() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.anchor
}

func (n *Navigator) Selected() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.selected
}

func (n *Navigator) Direction() Direction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.direction
}

// VisibleRange returns the range for the current anchor and mode.
func (n *Navigator) VisibleRange() Range {
	n.mu.Lock()
	defer n.mu.Unlock()
	return RangeFor(n.anchor, n.mode, n.weekStart)
}

func (n *Navigator) dispatch(ctx context.Context, anchor time.Time, mode Mode) error {
	if n.request == nil {
		return nil
	}
	r := RangeFor(anchor, mode, n.weekStart)
	log.Debugf("requesting %s range %s - %s", mode, r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	return n.request(ctx, r.From, r.To)
}
