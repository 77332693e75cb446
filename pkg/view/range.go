// Package view owns the navigation state of the widget: the active view
// mode, the anchor date the visible range is computed from, and the selected
// day. Every transition recomputes the range and asks the range requester
// (the event store) to load it.
package view

import "time"

type Mode string

const (
	ModeDay   Mode = "day"
	ModeWeek  Mode = "week"
	ModeMonth Mode = "month"
	ModeYear  Mode = "year"
	ModeList  Mode = "list"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeDay, ModeWeek, ModeMonth, ModeYear, ModeList:
		return true
	}
	return false
}

// Range is a closed interval of civil days. From and To are midnights; the
// day To itself is included.
type Range struct {
	From time.Time
	To   time.Time
}

// RangeFor computes the visible range for a view anchored at the given date.
// Month ranges are padded to whole weeks so a month grid has no partial
// leading or trailing week; list ranges are the unpadded month.
func RangeFor(anchor time.Time, mode Mode, weekStart time.Weekday) Range {
	switch mode {
	case ModeDay:
		d := startOfDay(anchor)
		return Range{From: d, To: d}
	case ModeWeek:
		return Range{
			From: startOfWeek(anchor, weekStart),
			To:   endOfWeek(anchor, weekStart),
		}
	case ModeYear:
		return Range{
			From: time.Date(anchor.Year(), time.January, 1, 0, 0, 0, 0, anchor.Location()),
			To:   time.Date(anchor.Year(), time.December, 31, 0, 0, 0, 0, anchor.Location()),
		}
	case ModeList:
		return Range{
			From: startOfMonth(anchor),
			To:   endOfMonth(anchor),
		}
	default: // month
		return Range{
			From: startOfWeek(startOfMonth(anchor), weekStart),
			To:   endOfWeek(endOfMonth(anchor), weekStart),
		}
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	back := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return startOfDay(t).AddDate(0, 0, -back)
}

func endOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	return startOfWeek(t, weekStart).AddDate(0, 0, 6)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, -1)
}

// addMonths shifts by whole months, clamping the day-of-month so Jan 31
// plus one month lands on the last day of February rather than overflowing
// into March.
func addMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}
