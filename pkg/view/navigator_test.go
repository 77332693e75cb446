package view

import (
	"context"
	"testing"
	"time"

	"github.com/kalendo/kalendo/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rangeRecorder struct {
	calls []Range
}

func (r *rangeRecorder) request(ctx context.Context, from time.Time, to time.Time) error {
	r.calls = append(r.calls, Range{From: from, To: to})
	return nil
}

func setupNavigatorTest(mode Mode, anchor time.Time) (*Navigator, *rangeRecorder, *utils.MockClock) {
	recorder := &rangeRecorder{}
	clock := &utils.MockClock{FixedNow: anchor}
	nav := NewNavigator(recorder.request, clock, mode, time.Monday)
	return nav, recorder, clock
}

func TestNavigator_NextAdvancesByViewUnit(t *testing.T) {
	start := day(2025, time.December, 15)
	testCases := []struct {
		mode Mode
		want time.Time
	}{
		{ModeDay, day(2025, time.December, 16)},
		{ModeWeek, day(2025, time.December, 22)},
		{ModeMonth, day(2026, time.January, 15)},
		{ModeYear, day(2026, time.December, 15)},
		{ModeList, day(2026, time.January, 15)},
	}
	for _, tc := range testCases {
		t.Run(string(tc.mode), func(t *testing.T) {
			nav, recorder, _ := setupNavigatorTest(tc.mode, start)

			err := nav.Next(context.Background())

			assert.NoError(t, err)
			assert.Equal(t, tc.want, nav.Anchor())
			assert.Equal(t, DirectionForward, nav.Direction())
			require.Len(t, recorder.calls, 1)
			assert.Equal(t, RangeFor(tc.want, tc.mode, time.Monday), recorder.calls[0])
		})
	}
}

func TestNavigator_PreviousRetreatsByViewUnit(t *testing.T) {
	nav, _, _ := setupNavigatorTest(ModeMonth, day(2025, time.December, 15))

	err := nav.Previous(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, day(2025, time.November, 15), nav.Anchor())
	assert.Equal(t, DirectionBackward, nav.Direction())
}

func TestNavigator_MonthPagingClampsEndOfMonth(t *testing.T) {
	nav, _, _ := setupNavigatorTest(ModeMonth, day(2025, time.January, 31))

	err := nav.Next(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, day(2025, time.February, 28), nav.Anchor())
}

func TestNavigator_GoToToday(t *testing.T) {
	nav, recorder, clock := setupNavigatorTest(ModeWeek, day(2025, time.December, 15))
	_ = nav.Next(context.Background())
	today := day(2026, time.February, 3)
	clock.SetNow(today)

	err := nav.GoToToday(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, today, nav.Anchor())
	assert.Equal(t, today, nav.Selected())
	assert.Equal(t, DirectionNone, nav.Direction())
	require.Len(t, recorder.calls, 2)
	assert.Equal(t, RangeFor(today, ModeWeek, time.Monday), recorder.calls[1])
}

func TestNavigator_SetModeReusesAnchor(t *testing.T) {
	anchor := day(2025, time.December, 15)
	nav, recorder, _ := setupNavigatorTest(ModeMonth, anchor)

	err := nav.SetMode(context.Background(), ModeWeek)

	assert.NoError(t, err)
	assert.Equal(t, ModeWeek, nav.Mode())
	assert.Equal(t, DirectionNone, nav.Direction())
	require.Len(t, recorder.calls, 1)
	// The week range computed from the month anchor still contains it.
	assert.False(t, recorder.calls[0].From.After(anchor))
	assert.False(t, recorder.calls[0].To.Before(anchor))
}

func TestNavigator_SetModeRejectsUnknownMode(t *testing.T) {
	nav, recorder, _ := setupNavigatorTest(ModeMonth, day(2025, time.December, 15))

	err := nav.SetMode(context.Background(), Mode("agenda"))

	assert.Error(t, err)
	assert.Equal(t, ModeMonth, nav.Mode())
	assert.Empty(t, recorder.calls)
}

func TestNavigator_GoToMonthReplacesComponent(t *testing.T) {
	nav, recorder, _ := setupNavigatorTest(ModeMonth, day(2025, time.December, 15))
	_ = nav.Next(context.Background())

	err := nav.GoToMonth(context.Background(), time.March)

	assert.NoError(t, err)
	assert.Equal(t, day(2026, time.March, 15), nav.Anchor())
	assert.Equal(t, DirectionNone, nav.Direction())
	assert.Len(t, recorder.calls, 2)
}

func TestNavigator_GoToYearReplacesComponent(t *testing.T) {
	nav, _, _ := setupNavigatorTest(ModeYear, day(2025, time.December, 15))

	err := nav.GoToYear(context.Background(), 2030)

	assert.NoError(t, err)
	assert.Equal(t, day(2030, time.December, 15), nav.Anchor())
}

func TestNavigator_GoToMonthClampsDay(t *testing.T) {
	nav, _, _ := setupNavigatorTest(ModeMonth, day(2025, time.December, 31))

	err := nav.GoToMonth(context.Background(), time.February)

	assert.NoError(t, err)
	assert.Equal(t, day(2025, time.February, 28), nav.Anchor())
}

func TestNavigator_RefreshRequestsCurrentRange(t *testing.T) {
	anchor := day(2025, time.December, 15)
	nav, recorder, _ := setupNavigatorTest(ModeMonth, anchor)

	err := nav.Refresh(context.Background())

	assert.NoError(t, err)
	require.Len(t, recorder.calls, 1)
	assert.Equal(t, RangeFor(anchor, ModeMonth, time.Monday), recorder.calls[0])
	assert.Equal(t, nav.VisibleRange(), recorder.calls[0])
}
