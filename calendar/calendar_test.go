package calendar_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-payroll/calendar"
	"github.com/warp/shift-payroll/records"
	"github.com/warp/shift-payroll/records/store"
)

func march(day int) records.Date { return records.NewDate(2025, time.March, day) }

func at(h, m int) records.ClockTime { return records.NewClockTime(h, m, 0) }

// =============================================================================
// GRID
// =============================================================================

func TestMonthGrid_MondayFirstLayout(t *testing.T) {
	// March 2025 starts on a Saturday
	g := calendar.NewMonthGrid(2025, time.March)

	cells := g.Cells()
	require.Len(t, cells, calendar.Rows*calendar.Cols)
	assert.Equal(t, "1_0", cells[0].ID)
	assert.False(t, cells[0].InMonth())

	id, ok := g.CellFor(march(1))
	require.True(t, ok)
	assert.Equal(t, "1_5", id)

	id, _ = g.CellFor(march(3))
	assert.Equal(t, "2_0", id)

	id, _ = g.CellFor(march(31))
	assert.Equal(t, "6_0", id)

	d, ok := g.DateFor("1_6")
	require.True(t, ok)
	assert.Equal(t, march(2), d)

	_, ok = g.DateFor("6_1")
	assert.False(t, ok)
	_, ok = g.CellFor(records.NewDate(2025, time.April, 1))
	assert.False(t, ok)
	assert.Len(t, g.Days(), 31)
}

func TestMonthGrid_Navigation(t *testing.T) {
	g := calendar.NewMonthGrid(2025, time.January)

	prev := g.Previous()
	assert.Equal(t, 2024, prev.Year)
	assert.Equal(t, time.December, prev.Month)
	assert.Equal(t, "2025-02", g.Next().Title())
	assert.Equal(t, "2026-01", calendar.NewMonthGrid(2025, 13).Title())
}

// =============================================================================
// SUMMARIES
// =============================================================================

func TestSummaries(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	// GIVEN: two named employees, one unnamed, shifts in and around March
	kim, err := s.AddEmployee(ctx, records.NewEmployee("Kim", 10000, ""))
	require.NoError(t, err)
	lee, err := s.AddEmployee(ctx, records.NewEmployee("Lee", 10000, ""))
	require.NoError(t, err)
	anon, err := s.AddEmployee(ctx, records.NewEmployee("", 10000, ""))
	require.NoError(t, err)

	for _, w := range []records.WorkLog{
		{EmployeeID: kim.ID, Date: march(3), StartTime: at(9, 0), EndTime: at(18, 0)},
		{EmployeeID: lee.ID, Date: march(3), StartTime: at(22, 0), EndTime: at(6, 30)},
		{EmployeeID: kim.ID, Date: march(4), StartTime: at(18, 0), EndTime: at(18, 0)},
		{EmployeeID: anon.ID, Date: march(5), StartTime: at(9, 0), EndTime: at(10, 0)},
		{EmployeeID: kim.ID, Date: records.NewDate(2025, time.April, 1), StartTime: at(9, 0), EndTime: at(10, 0)},
	} {
		require.NoError(t, s.AddWorkLog(ctx, w))
	}

	// WHEN: summarising March for Lee then Kim, plus an unknown id
	days, err := calendar.Summaries(ctx, s, []int{lee.ID, 99, kim.ID, anon.ID}, calendar.NewMonthGrid(2025, time.March))
	require.NoError(t, err)

	// THEN: every March day is present, only worked days carry entries
	require.Len(t, days, 31)
	byDate := map[records.Date]calendar.Day{}
	for _, d := range days {
		byDate[d.Date] = d
	}

	mon := byDate[march(3)]
	assert.Equal(t, "2_0", mon.CellID)
	require.Len(t, mon.Entries, 2)
	assert.Equal(t, "Lee: 22:00~06:30 / 8.50h\nKim: 09:00~18:00 / 9.00h", mon.Label())

	assert.Empty(t, byDate[march(4)].Entries, "zero-hour day is skipped")
	assert.Empty(t, byDate[march(5)].Entries, "unnamed employee is skipped")
	assert.Equal(t, "", byDate[march(5)].Label())
}
