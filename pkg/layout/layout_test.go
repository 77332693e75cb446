package layout

import (
	"testing"

	"github.com/kalendo/kalendo/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timedEvent(id, start, end string) calendar.Event {
	return calendar.Event{
		ID:        id,
		Title:     "Event " + id,
		StartDate: "2025-12-15",
		EndDate:   "2025-12-15",
		StartTime: start,
		EndTime:   end,
		Color:     calendar.ColorBlue,
	}
}

func TestLayout_Empty(t *testing.T) {
	res, err := Layout(nil)
	assert.NoError(t, err)
	assert.Empty(t, res.Timed)
	assert.Empty(t, res.AllDay)
}

func TestLayout_SampleOverlapGroup(t *testing.T) {
	// Three events sharing a start form one group; the longest claims the
	// leftmost column.
	res, err := Layout([]calendar.Event{
		timedEvent("A", "10:00", "11:30"),
		timedEvent("B", "10:00", "12:00"),
		timedEvent("C", "10:00", "13:00"),
	})
	require.NoError(t, err)
	require.Len(t, res.Timed, 3)

	byId := make(map[string]Positioned)
	for _, p := range res.Timed {
		byId[p.Event.ID] = p
	}
	assert.Equal(t, 0, byId["C"].Column)
	assert.Equal(t, 1, byId["B"].Column)
	assert.Equal(t, 2, byId["A"].Column)
	for id, p := range byId {
		assert.Equalf(t, 3, p.TotalColumns, "event %s", id)
	}
}

func TestLayout_SameColumnNeverOverlaps(t *testing.T) {
	res, err := Layout([]calendar.Event{
		timedEvent("A", "09:00", "10:00"),
		timedEvent("B", "09:30", "11:00"),
		timedEvent("C", "10:00", "12:00"),
		timedEvent("D", "10:30", "11:30"),
		timedEvent("E", "12:30", "13:00"),
	})
	require.NoError(t, err)

	for i, a := range res.Timed {
		for j, b := range res.Timed {
			if i >= j || a.Column != b.Column {
				continue
			}
			intersects := a.StartMinutes < b.EndMinutes && a.EndMinutes > b.StartMinutes
			assert.Falsef(t, intersects, "events %s and %s share column %d but overlap",
				a.Event.ID, b.Event.ID, a.Column)
		}
	}
}

func TestLayout_GroupColumnCountConsistency(t *testing.T) {
	res, err := Layout([]calendar.Event{
		// Chain: A-B overlap, B-C overlap, A-C do not. Still one group.
		timedEvent("A", "09:00", "10:30"),
		timedEvent("B", "10:00", "11:30"),
		timedEvent("C", "11:00", "12:00"),
	})
	require.NoError(t, err)
	require.Len(t, res.Timed, 3)

	maxColumn := 0
	for _, p := range res.Timed {
		if p.Column > maxColumn {
			maxColumn = p.Column
		}
	}
	for _, p := range res.Timed {
		assert.Equal(t, res.Timed[0].TotalColumns, p.TotalColumns)
		assert.GreaterOrEqual(t, p.TotalColumns, maxColumn+1)
	}
}

func TestLayout_DisjointGroupsAreIndependent(t *testing.T) {
	res, err := Layout([]calendar.Event{
		timedEvent("A", "09:00", "10:00"),
		timedEvent("B", "09:00", "10:00"),
		timedEvent("C", "14:00", "15:00"),
	})
	require.NoError(t, err)

	byId := make(map[string]Positioned)
	for _, p := range res.Timed {
		byId[p.Event.ID] = p
	}
	assert.Equal(t, 2, byId["A"].TotalColumns)
	assert.Equal(t, 2, byId["B"].TotalColumns)
	// The afternoon event does not share the morning group's column count.
	assert.Equal(t, 0, byId["C"].Column)
	assert.Equal(t, 1, byId["C"].TotalColumns)
}

func TestLayout_IdenticalSpansGetSeparateColumns(t *testing.T) {
	res, err := Layout([]calendar.Event{
		timedEvent("A", "10:00", "11:00"),
		timedEvent("B", "10:00", "11:00"),
	})
	require.NoError(t, err)
	require.Len(t, res.Timed, 2)
	assert.NotEqual(t, res.Timed[0].Column, res.Timed[1].Column)
	assert.Equal(t, 2, res.Timed[0].TotalColumns)
	assert.Equal(t, 2, res.Timed[1].TotalColumns)
}

func TestLayout_AllDayEventsStayOutOfTheGrid(t *testing.T) {
	allDay := calendar.Event{
		ID:        "holiday",
		Title:     "Holiday",
		StartDate: "2025-12-15",
		EndDate:   "2025-12-15",
		StartTime: "00:00",
		EndTime:   "23:59",
		Color:     calendar.ColorGreen,
		IsAllDay:  true,
	}
	res, err := Layout([]calendar.Event{allDay, timedEvent("A", "10:00", "11:00")})
	require.NoError(t, err)
	require.Len(t, res.AllDay, 1)
	assert.Equal(t, "holiday", res.AllDay[0].ID)
	require.Len(t, res.Timed, 1)
	assert.Equal(t, "A", res.Timed[0].Event.ID)
}

func TestLayout_UnparseableClockFails(t *testing.T) {
	_, err := Layout([]calendar.Event{timedEvent("A", "25:99", "11:00")})
	assert.Error(t, err)
}

func TestGeometry(t *testing.T) {
	testCases := []struct {
		name       string
		positioned Positioned
		want       Geometry
	}{
		{
			name:       "full hour in single column",
			positioned: Positioned{StartMinutes: 600, EndMinutes: 660, Column: 0, TotalColumns: 1},
			want:       Geometry{Top: 600, Height: 60, Left: 0, Width: 1},
		},
		{
			name:       "half width second column",
			positioned: Positioned{StartMinutes: 90, EndMinutes: 180, Column: 1, TotalColumns: 2},
			want:       Geometry{Top: 90, Height: 90, Left: 0.5, Width: 0.5},
		},
		{
			name:       "zero duration still gets minimum height",
			positioned: Positioned{StartMinutes: 300, EndMinutes: 300, Column: 0, TotalColumns: 1},
			want:       Geometry{Top: 300, Height: 24, Left: 0, Width: 1},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.positioned.Geometry(60, 24)
			assert.InDelta(t, tc.want.Top, got.Top, 1e-9)
			assert.InDelta(t, tc.want.Height, got.Height, 1e-9)
			assert.InDelta(t, tc.want.Left, got.Left, 1e-9)
			assert.InDelta(t, tc.want.Width, got.Width, 1e-9)
		})
	}
}
