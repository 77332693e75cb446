// Package layout assigns horizontal columns to temporally overlapping events
// so a day or week time grid can render them in non-overlapping lanes.
package layout

import (
	"fmt"
	"sort"

	"github.com/kalendo/kalendo/pkg/calendar"
)

// Positioned is one timed event with its computed lane. Column is the
// zero-based lane index; TotalColumns is shared by every member of the same
// overlap group, so width fractions line up across the group.
type Positioned struct {
	Event        calendar.Event
	Column       int
	TotalColumns int
	StartMinutes int
	EndMinutes   int
}

// Result separates the timed grid placement from the all-day lane. All-day
// events never receive a column.
type Result struct {
	Timed  []Positioned
	AllDay []calendar.Event
}

// Layout computes lane positions for the events of a single day. Events are
// sorted by start time ascending, ties broken by descending duration so
// longer blocks claim the leftmost lanes, then greedily placed in the first
// column whose previous occupant has ended. Transitively overlapping events
// form a group and report the group's shared column count; disjoint groups
// on the same day are laid out independently.
func Layout(events []calendar.Event) (Result, error) {
	var res Result
	timed := make([]Positioned, 0, len(events))
	for _, e := range events {
		if e.IsAllDay {
			res.AllDay = append(res.AllDay, e)
			continue
		}
		start, err := calendar.MinutesOfDay(e.StartTime)
		if err != nil {
			return Result{}, fmt.Errorf("failed to lay out event %s: %w", e.ID, err)
		}
		end, err := calendar.MinutesOfDay(e.EndTime)
		if err != nil {
			return Result{}, fmt.Errorf("failed to lay out event %s: %w", e.ID, err)
		}
		timed = append(timed, Positioned{Event: e, StartMinutes: start, EndMinutes: end})
	}
	if len(timed) == 0 {
		return res, nil
	}

	sort.SliceStable(timed, func(i, j int) bool {
		if timed[i].StartMinutes != timed[j].StartMinutes {
			return timed[i].StartMinutes < timed[j].StartMinutes
		}
		return timed[i].EndMinutes-timed[i].StartMinutes > timed[j].EndMinutes-timed[j].StartMinutes
	})

	// Greedy first-fit: columnEnds[c] is the end time of the last event
	// placed in column c. Identical spans never merge; each occupies its
	// own column.
	var columnEnds []int
	for i := range timed {
		placed := false
		for c, end := range columnEnds {
			if end <= timed[i].StartMinutes {
				timed[i].Column = c
				columnEnds[c] = timed[i].EndMinutes
				placed = true
				break
			}
		}
		if !placed {
			timed[i].Column = len(columnEnds)
			columnEnds = append(columnEnds, timed[i].EndMinutes)
		}
	}

	// With starts sorted ascending, a transitively-connected overlap group
	// is exactly a maximal run where each event starts before the running
	// maximum end of the run.
	groupStart := 0
	maxEnd := timed[0].EndMinutes
	for i := 1; i <= len(timed); i++ {
		if i < len(timed) && timed[i].StartMinutes < maxEnd {
			if timed[i].EndMinutes > maxEnd {
				maxEnd = timed[i].EndMinutes
			}
			continue
		}
		widest := 0
		for j := groupStart; j < i; j++ {
			if timed[j].Column > widest {
				widest = timed[j].Column
			}
		}
		for j := groupStart; j < i; j++ {
			timed[j].TotalColumns = widest + 1
		}
		if i < len(timed) {
			groupStart = i
			maxEnd = timed[i].EndMinutes
		}
	}

	res.Timed = timed
	return res, nil
}

// Geometry is the proportional placement of one positioned event within its
// day column. Top and Height are in the same unit as the hour height; Left
// and Width are fractions of the column width in [0, 1].
type Geometry struct {
	Top    float64
	Height float64
	Left   float64
	Width  float64
}

// Geometry converts the time placement into pixel-ish coordinates. Only the
// ratios are contractual: top and height are proportional to start time and
// duration, a zero-duration event still gets the minimum height.
func (p Positioned) Geometry(hourHeight, minHeight float64) Geometry {
	duration := float64(p.EndMinutes - p.StartMinutes)
	height := duration / 60 * hourHeight
	if height < minHeight {
		height = minHeight
	}
	width := 1.0 / float64(p.TotalColumns)
	return Geometry{
		Top:    float64(p.StartMinutes) / 60 * hourHeight,
		Height: height,
		Left:   float64(p.Column) * width,
		Width:  width,
	}
}
