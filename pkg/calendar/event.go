package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the civil-date form used by StartDate/EndDate.
const DateLayout = "2006-01-02"

// ClockLayout is the 24-hour time-of-day form used by StartTime/EndTime.
const ClockLayout = "15:04"

type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorPurple Color = "purple"
	ColorRed    Color = "red"
)

// Palette is the fixed set of event colors, used for visual grouping and
// user-facing filtering.
var Palette = []Color{ColorBlue, ColorGreen, ColorYellow, ColorPurple, ColorRed}

func (c Color) Valid() bool {
	switch c {
	case ColorBlue, ColorGreen, ColorYellow, ColorPurple, ColorRed:
		return true
	}
	return false
}

type RecurrencePattern string

const (
	RecurDaily   RecurrencePattern = "daily"
	RecurWeekly  RecurrencePattern = "weekly"
	RecurMonthly RecurrencePattern = "monthly"
)

// Event is the scheduling unit. StartTime/EndTime are meaningful relative to
// StartDate/EndDate; all-day events use the "00:00"/"23:59" convention and
// are rendered in a separate lane, outside the timed grid. Recurrence fields
// are descriptive only: a recurring event is stored and displayed as a single
// span, never expanded into occurrences.
type Event struct {
	ID                string
	Title             string
	Description       string
	StartDate         string
	EndDate           string
	StartTime         string
	EndTime           string
	Color             Color
	IsRecurring       bool
	RecurrencePattern RecurrencePattern
	IsAllDay          bool
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// MinutesOfDay converts an "HH:MM" clock string to minutes since midnight.
// The form is strict: two digits, a colon, two digits, 24-hour clock.
func MinutesOfDay(clock string) (int, error) {
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("malformed clock string %q, want HH:MM", clock)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("clock string %q has no valid hour", clock)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock string %q has no valid minute", clock)
	}
	return h*60 + m, nil
}

// ClockOfMinutes converts minutes since midnight back to an "HH:MM" string.
func ClockOfMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Validate checks the structural invariants the store relies on. The ID is
// not checked; creation assigns it.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if !e.Color.Valid() {
		return fmt.Errorf("%w: unknown color %q", ErrValidation, e.Color)
	}
	start, err := ParseDate(e.StartDate)
	if err != nil {
		return fmt.Errorf("%w: start date %q: %v", ErrValidation, e.StartDate, err)
	}
	end, err := ParseDate(e.EndDate)
	if err != nil {
		return fmt.Errorf("%w: end date %q: %v", ErrValidation, e.EndDate, err)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date %s before start date %s", ErrValidation, e.EndDate, e.StartDate)
	}
	if _, err := MinutesOfDay(e.StartTime); err != nil {
		return fmt.Errorf("%w: start time: %v", ErrValidation, err)
	}
	if _, err := MinutesOfDay(e.EndTime); err != nil {
		return fmt.Errorf("%w: end time: %v", ErrValidation, err)
	}
	if e.IsRecurring {
		switch e.RecurrencePattern {
		case RecurDaily, RecurWeekly, RecurMonthly:
		default:
			return fmt.Errorf("%w: unknown recurrence pattern %q", ErrValidation, e.RecurrencePattern)
		}
	}
	return nil
}

// OccursOn reports whether the event's date span includes the given day.
// Events with unparseable dates never qualify.
func (e Event) OccursOn(day time.Time) bool {
	start, err := ParseDate(e.StartDate)
	if err != nil {
		return false
	}
	end, err := ParseDate(e.EndDate)
	if err != nil {
		return false
	}
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(start) && !d.After(end)
}

// OverlapsRange reports whether the event's date span intersects [from, to].
func (e Event) OverlapsRange(from, to time.Time) bool {
	start, err := ParseDate(e.StartDate)
	if err != nil {
		return false
	}
	end, err := ParseDate(e.EndDate)
	if err != nil {
		return false
	}
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return !start.After(t) && !end.Before(f)
}

// TimePreset is a named start/end pair offered as a form default.
type TimePreset struct {
	Label     string
	StartTime string
	EndTime   string
}

var TimePresets = []TimePreset{
	{Label: "Morning", StartTime: "09:00", EndTime: "10:00"},
	{Label: "Lunch", StartTime: "12:00", EndTime: "13:00"},
	{Label: "Early Afternoon", StartTime: "14:00", EndTime: "15:00"},
	{Label: "Late Afternoon", StartTime: "16:00", EndTime: "17:00"},
	{Label: "Evening", StartTime: "18:00", EndTime: "19:00"},
	{Label: "Night", StartTime: "20:00", EndTime: "21:00"},
}
