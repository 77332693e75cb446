package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRangeFor(t *testing.T) {
	testCases := []struct {
		name      string
		anchor    time.Time
		mode      Mode
		weekStart time.Weekday
		want      Range
	}{
		{
			name:      "day is the anchor itself",
			anchor:    day(2025, time.December, 15),
			mode:      ModeDay,
			weekStart: time.Monday,
			want:      Range{From: day(2025, time.December, 15), To: day(2025, time.December, 15)},
		},
		{
			name:      "week with Monday start",
			anchor:    day(2025, time.December, 17), // a Wednesday
			mode:      ModeWeek,
			weekStart: time.Monday,
			want:      Range{From: day(2025, time.December, 15), To: day(2025, time.December, 21)},
		},
		{
			name:      "week with Sunday start",
			anchor:    day(2025, time.December, 17),
			mode:      ModeWeek,
			weekStart: time.Sunday,
			want:      Range{From: day(2025, time.December, 14), To: day(2025, time.December, 20)},
		},
		{
			name:      "month padded to whole weeks, Monday start",
			anchor:    day(2025, time.December, 15),
			mode:      ModeMonth,
			weekStart: time.Monday,
			// Dec 1 2025 is already a Monday; Dec 31 is a Wednesday, padded
			// forward to Sunday Jan 4.
			want: Range{From: day(2025, time.December, 1), To: day(2026, time.January, 4)},
		},
		{
			name:      "month padded to whole weeks, Sunday start",
			anchor:    day(2025, time.December, 15),
			mode:      ModeMonth,
			weekStart: time.Sunday,
			want:      Range{From: day(2025, time.November, 30), To: day(2026, time.January, 3)},
		},
		{
			name:      "year spans Jan 1 to Dec 31",
			anchor:    day(2025, time.June, 10),
			mode:      ModeYear,
			weekStart: time.Monday,
			want:      Range{From: day(2025, time.January, 1), To: day(2025, time.December, 31)},
		},
		{
			name:      "list is the unpadded month",
			anchor:    day(2025, time.December, 15),
			mode:      ModeList,
			weekStart: time.Monday,
			want:      Range{From: day(2025, time.December, 1), To: day(2025, time.December, 31)},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := RangeFor(tc.anchor, tc.mode, tc.weekStart)
			assert.Equal(t, tc.want.From, got.From)
			assert.Equal(t, tc.want.To, got.To)
		})
	}
}

func TestRangeFor_MonthStartsOnWeekStart(t *testing.T) {
	got := RangeFor(day(2025, time.December, 15), ModeMonth, time.Monday)
	assert.Equal(t, time.Monday, got.From.Weekday())
	assert.Equal(t, time.Sunday, got.To.Weekday())
	assert.False(t, got.From.After(day(2025, time.December, 1)))
	assert.False(t, got.To.Before(day(2025, time.December, 31)))
}

func TestAddMonths_ClampsDayOfMonth(t *testing.T) {
	testCases := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"january 31 forward lands on february 28", day(2025, time.January, 31), 1, day(2025, time.February, 28)},
		{"leap year keeps february 29", day(2024, time.January, 31), 1, day(2024, time.February, 29)},
		{"march 31 backward lands on february 28", day(2025, time.March, 31), -1, day(2025, time.February, 28)},
		{"mid-month is untouched", day(2025, time.December, 15), 1, day(2026, time.January, 15)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, addMonths(tc.start, tc.months))
		})
	}
}
