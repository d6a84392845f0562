package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-payroll/records"
	"github.com/warp/shift-payroll/records/store"
	"github.com/warp/shift-payroll/records/storetest"
)

func TestMemory_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) records.Store {
		return store.NewMemory()
	})
}

// =============================================================================
// TEST HELPERS
// =============================================================================

func seeded(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()

	kim, err := m.AddEmployee(ctx, records.NewEmployee("Kim", 10000, "110-123"))
	require.NoError(t, err)
	lee, err := m.AddEmployee(ctx, records.NewEmployee("Lee", 11000, "220-456"))
	require.NoError(t, err)

	require.NoError(t, m.AddWorkLog(ctx, records.WorkLog{
		EmployeeID: kim.ID,
		Date:       records.NewDate(2025, time.March, 3),
		StartTime:  records.NewClockTime(9, 0, 0),
		EndTime:    records.NewClockTime(18, 0, 0),
	}))
	require.NoError(t, m.AddWorkLog(ctx, records.WorkLog{
		EmployeeID: lee.ID,
		Date:       records.NewDate(2025, time.March, 4),
		StartTime:  records.NewClockTime(22, 0, 0),
		EndTime:    records.NewClockTime(6, 0, 0),
	}))
	return m
}

func snapshotOf(t *testing.T, m *store.Memory) records.Snapshot {
	t.Helper()
	s, err := m.Snapshot(context.Background())
	require.NoError(t, err)
	return s
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

func TestMemory_SaveLoadRoundTrip(t *testing.T) {
	// GIVEN: a populated store saved to disk
	path := filepath.Join(t.TempDir(), "salary_data.json")
	src := seeded(t)
	require.NoError(t, src.Save(path))

	// WHEN: a fresh store loads it
	dst := store.NewMemory()
	require.NoError(t, dst.Load(path))

	// THEN: the state and the next id survive
	assert.Equal(t, snapshotOf(t, src), snapshotOf(t, dst))
	assert.Equal(t, 3, dst.NextEmployeeID())

	e, err := dst.AddEmployee(context.Background(), records.NewEmployee("Park", 9860, ""))
	require.NoError(t, err)
	assert.Equal(t, 3, e.ID)
}

func TestMemory_SaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, seeded(t).Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nextEmployeeId": 3,
		"employees": [
			{"id": 1, "name": "Kim", "hourlyWage": 10000, "bankAccount": "110-123"},
			{"id": 2, "name": "Lee", "hourlyWage": 11000, "bankAccount": "220-456"}
		],
		"worklogs": [
			{"employeeId": 1, "date": "2025-03-03", "startTime": "09:00:00", "endTime": "18:00:00"},
			{"employeeId": 2, "date": "2025-03-04", "startTime": "22:00:00", "endTime": "06:00:00"}
		]
	}`, string(data))
}

func TestMemory_LoadGuardsStaleCounter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"nextEmployeeId": 2,
		"employees": [{"id": 1, "name": "Kim"}, {"id": 5, "name": "Park"}],
		"worklogs": []
	}`), 0o644))

	m := store.NewMemory()
	require.NoError(t, m.Load(path))

	assert.Equal(t, 6, m.NextEmployeeID())
}

func TestMemory_LoadMissingEmployeesField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nextEmployeeId": 4, "worklogs": []}`), 0o644))

	m := seeded(t)
	require.NoError(t, m.Load(path))

	emps, err := m.Employees(context.Background())
	require.NoError(t, err)
	assert.Empty(t, emps)
	assert.Equal(t, 4, m.NextEmployeeID())
}

func TestMemory_LoadFailureKeepsState(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte(`[1, 2, 3]`), 0o644))

	tests := []struct {
		name string
		path string
	}{
		{"nonexistent file", filepath.Join(dir, "missing.json")},
		{"not an object", garbage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := seeded(t)
			before := snapshotOf(t, m)

			err := m.Load(tt.path)

			require.Error(t, err)
			assert.ErrorIs(t, err, records.ErrLoadFailed)
			assert.Equal(t, before, snapshotOf(t, m))
			assert.Equal(t, 3, m.NextEmployeeID())
		})
	}
}

func TestMemory_SaveToUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "out.json")

	err := seeded(t).Save(path)

	require.Error(t, err)
	assert.ErrorIs(t, err, records.ErrSaveFailed)
}

func TestMemory_LoadAcceptsLegacyDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"nextEmployeeId": 2,
		"employees": [{"id": 1, "name": "Kim", "hourlyWage": 10000}],
		"worklogs": [
			{"employeeId": 1, "date": "2025-03-03", "startTime": "09:00:00", "endTime": "12:00:00"},
			{"employeeId": 1, "date": "2025-03-03", "startTime": "13:00:00", "endTime": "18:00:00"}
		]
	}`), 0o644))

	m := store.NewMemory()
	require.NoError(t, m.Load(path))

	logs, err := m.WorkLogsForEmployeeOnDate(context.Background(), 1, records.NewDate(2025, time.March, 3))
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	first, ok, err := m.WorkLogByEmployeeAndDate(context.Background(), 1, records.NewDate(2025, time.March, 3))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, records.NewClockTime(9, 0, 0), first.StartTime)
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestMemory_ConcurrentAddsGetDistinctIDs(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	const n = 50

	ids := make(chan int, n)
	for i := 0; i < n; i++ {
		go func() {
			e, err := m.AddEmployee(ctx, records.NewEmployee("worker", 10000, ""))
			if err == nil {
				ids <- e.ID
			}
		}()
	}

	seen := map[int]bool{}
	for i := 0; i < n; i++ {
		id := <-ids
		assert.False(t, seen[id], "id %d handed out twice", id)
		seen[id] = true
	}
	assert.Equal(t, n+1, m.NextEmployeeID())
}
