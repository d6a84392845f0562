package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-payroll/records"
	"github.com/warp/shift-payroll/records/store"
	"github.com/warp/shift-payroll/records/storetest"
	"github.com/warp/shift-payroll/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) records.Store {
		return newTestStore(t)
	})
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payroll.db")

	// GIVEN: data written through one handle
	s, err := sqlite.New(path)
	require.NoError(t, err)
	kim, err := s.AddEmployee(ctx, records.NewEmployee("Kim", 10000, "110-123"))
	require.NoError(t, err)
	require.NoError(t, s.AddWorkLog(ctx, records.WorkLog{
		EmployeeID: kim.ID,
		Date:       records.NewDate(2025, time.March, 3),
		StartTime:  records.NewClockTime(22, 0, 0),
		EndTime:    records.NewClockTime(6, 0, 0),
	}))
	require.NoError(t, s.Close())

	// WHEN: the database is reopened
	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	// THEN: records and the id counter are intact
	emps, err := reopened.Employees(ctx)
	require.NoError(t, err)
	assert.Equal(t, []records.Employee{kim}, emps)

	next, err := reopened.NextEmployeeID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	w, ok, err := reopened.WorkLogByEmployeeAndDate(ctx, kim.ID, records.NewDate(2025, time.March, 3))
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 8.0, w.HoursWorked(), 1e-9)
}

func TestSQLite_ImportsJSONDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "salary_data.json")

	// GIVEN: a JSON document produced by the in-memory store
	mem := store.NewMemory()
	_, err := mem.AddEmployee(ctx, records.NewEmployee("Kim", 10000, ""))
	require.NoError(t, err)
	_, err = mem.RecordShift(ctx, records.WorkLog{
		EmployeeID: 1,
		Date:       records.NewDate(2025, time.March, 4),
		StartTime:  records.NewClockTime(9, 0, 0),
		EndTime:    records.NewClockTime(13, 30, 0),
	})
	require.NoError(t, err)
	require.NoError(t, mem.Save(path))

	// WHEN: it is loaded into SQLite
	db := newTestStore(t)
	require.NoError(t, store.LoadFile(ctx, db, path, nil))

	// THEN: both stores hold the same state
	want, err := mem.Snapshot(ctx)
	require.NoError(t, err)
	got, err := db.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLite_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.AddEmployee(ctx, records.NewEmployee("Kim", 10000, ""))

	assert.Error(t, err)
}
