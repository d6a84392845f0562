// Package storetest is a behaviour suite for records.Store implementations.
//
// Each backend's tests call Run with a constructor for an empty store:
//
//	func TestMemory(t *testing.T) {
//	    storetest.Run(t, func(t *testing.T) records.Store { return store.NewMemory() })
//	}
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-payroll/records"
)

// Factory returns a new, empty store.
type Factory func(t *testing.T) records.Store

// Run exercises the full records.Store contract.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s records.Store)
	}{
		{"AddEmployee_AssignsIncreasingIDs", testAddEmployeeAssignsIDs},
		{"EmployeeByID_MissReturnsSentinel", testEmployeeByIDMiss},
		{"UpdateEmployee_KeepsID", testUpdateEmployee},
		{"UpdateEmployee_MissChangesNothing", testUpdateEmployeeMiss},
		{"DeleteEmployee_CascadesOnlyOwnWorkLogs", testDeleteEmployeeCascade},
		{"DeleteEmployee_MissSkipsCascade", testDeleteEmployeeMiss},
		{"AddWorkLog_RejectsSecondShiftSameDay", testAddWorkLogDuplicate},
		{"RecordShift_ReplacesOrAppends", testRecordShift},
		{"Queries_FilterAndPreserveOrder", testQueries},
		{"Queries_NoMatchIsEmptyNotNil", testQueriesEmpty},
		{"WorkLogByEmployeeAndDate_MissReturnsSentinel", testWorkLogLookupMiss},
		{"UpdateWorkLog_ReplacesWholesale", testUpdateWorkLog},
		{"UpdateWorkLog_CollisionRejected", testUpdateWorkLogCollision},
		{"DeleteWorkLog_FirstMatchOnly", testDeleteWorkLog},
		{"Results_AreCopies", testResultsAreCopies},
		{"Restore_GuardsNextID", testRestoreGuardsNextID},
		{"Snapshot_RoundTrip", testSnapshotRoundTrip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

// =============================================================================
// FIXTURES
// =============================================================================

var (
	mon = records.NewDate(2025, time.March, 3)
	tue = records.NewDate(2025, time.March, 4)
	wed = records.NewDate(2025, time.March, 5)
)

func clock(h, m int) records.ClockTime { return records.NewClockTime(h, m, 0) }

func shift(employeeID int, date records.Date, startH, endH int) records.WorkLog {
	return records.WorkLog{EmployeeID: employeeID, Date: date, StartTime: clock(startH, 0), EndTime: clock(endH, 0)}
}

func addEmployee(t *testing.T, s records.Store, name string, wage int) records.Employee {
	t.Helper()
	e, err := s.AddEmployee(context.Background(), records.NewEmployee(name, wage, "bank-"+name))
	require.NoError(t, err)
	return e
}

func addShift(t *testing.T, s records.Store, w records.WorkLog) {
	t.Helper()
	require.NoError(t, s.AddWorkLog(context.Background(), w))
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func testAddEmployeeAssignsIDs(t *testing.T, s records.Store) {
	ctx := context.Background()

	// GIVEN: input carrying a bogus id
	in := records.Employee{ID: 42, Name: "Kim", HourlyWage: 10000, BankAccount: "111-222"}

	// WHEN: three employees are added in sequence
	a, err := s.AddEmployee(ctx, in)
	require.NoError(t, err)
	b := addEmployee(t, s, "Lee", 0)
	c := addEmployee(t, s, "", 9860)

	// THEN: ids are 1, 2, 3 in insertion order and the input id is ignored
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
	assert.Equal(t, 3, c.ID)

	all, err := s.Employees(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "Kim", all[0].Name)
	assert.Equal(t, 10000, all[0].HourlyWage)
	assert.Equal(t, "111-222", all[0].BankAccount)
}

func testEmployeeByIDMiss(t *testing.T, s records.Store) {
	addEmployee(t, s, "Kim", 10000)

	e, ok, err := s.EmployeeByID(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, records.UnassignedID, e.ID)
	assert.False(t, e.Found())
}

func testUpdateEmployee(t *testing.T, s records.Store) {
	ctx := context.Background()
	kim := addEmployee(t, s, "Kim", 10000)

	ok, err := s.UpdateEmployee(ctx, kim.ID, records.Employee{ID: 99, Name: "Kim Y.", HourlyWage: 12000, BankAccount: "333"})
	require.NoError(t, err)
	assert.True(t, ok)

	got, found, err := s.EmployeeByID(ctx, kim.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, records.Employee{ID: kim.ID, Name: "Kim Y.", HourlyWage: 12000, BankAccount: "333"}, got)

	_, found, err = s.EmployeeByID(ctx, 99)
	require.NoError(t, err)
	assert.False(t, found, "update must not change the id")
}

func testUpdateEmployeeMiss(t *testing.T, s records.Store) {
	ctx := context.Background()
	kim := addEmployee(t, s, "Kim", 10000)

	ok, err := s.UpdateEmployee(ctx, kim.ID+1, records.NewEmployee("Ghost", 1, "x"))
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := s.Employees(ctx)
	require.NoError(t, err)
	assert.Equal(t, []records.Employee{kim}, all)
}

func testDeleteEmployeeCascade(t *testing.T, s records.Store) {
	ctx := context.Background()

	// GIVEN: two employees with shifts on overlapping days
	kim := addEmployee(t, s, "Kim", 10000)
	lee := addEmployee(t, s, "Lee", 11000)
	addShift(t, s, shift(kim.ID, mon, 9, 18))
	addShift(t, s, shift(lee.ID, mon, 9, 13))
	addShift(t, s, shift(kim.ID, tue, 9, 18))
	addShift(t, s, shift(lee.ID, wed, 22, 6))

	// WHEN: Kim is deleted
	ok, err := s.DeleteEmployee(ctx, kim.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// THEN: only Kim and Kim's shifts are gone
	all, err := s.Employees(ctx)
	require.NoError(t, err)
	assert.Equal(t, []records.Employee{lee}, all)

	logs, err := s.WorkLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []records.WorkLog{shift(lee.ID, mon, 9, 13), shift(lee.ID, wed, 22, 6)}, logs)
}

func testDeleteEmployeeMiss(t *testing.T, s records.Store) {
	ctx := context.Background()

	// GIVEN: an orphan shift for an id no employee has
	addEmployee(t, s, "Kim", 10000)
	orphan := shift(9, mon, 9, 18)
	addShift(t, s, orphan)

	// WHEN: deleting that id
	ok, err := s.DeleteEmployee(ctx, 9)
	require.NoError(t, err)

	// THEN: nothing matched, so the cascade never ran
	assert.False(t, ok)
	logs, err := s.WorkLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []records.WorkLog{orphan}, logs)
}

// =============================================================================
// WORK LOGS
// =============================================================================

func testAddWorkLogDuplicate(t *testing.T, s records.Store) {
	ctx := context.Background()
	kim := addEmployee(t, s, "Kim", 10000)
	first := shift(kim.ID, mon, 9, 18)
	addShift(t, s, first)

	err := s.AddWorkLog(ctx, shift(kim.ID, mon, 10, 12))

	require.Error(t, err)
	assert.True(t, errors.Is(err, records.ErrDuplicateShift))
	var dup *records.DuplicateShiftError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, kim.ID, dup.EmployeeID)
	assert.True(t, dup.Date.Equal(mon))

	logs, err := s.WorkLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []records.WorkLog{first}, logs, "rejected add must leave the store unchanged")
}

func testRecordShift(t *testing.T, s records.Store) {
	ctx := context.Background()
	kim := addEmployee(t, s, "Kim", 10000)
	addShift(t, s, shift(kim.ID, mon, 9, 18))
	addShift(t, s, shift(kim.ID, tue, 9, 18))

	replaced, err := s.RecordShift(ctx, shift(kim.ID, mon, 13, 17))
	require.NoError(t, err)
	assert.True(t, replaced)

	replaced, err = s.RecordShift(ctx, shift(kim.ID, wed, 8, 12))
	require.NoError(t, err)
	assert.False(t, replaced)

	logs, err := s.WorkLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []records.WorkLog{
		shift(kim.ID, mon, 13, 17),
		shift(kim.ID, tue, 9, 18),
		shift(kim.ID, wed, 8, 12),
	}, logs)
}

func testQueries(t *testing.T, s records.Store) {
	ctx := context.Background()
	kim := addEmployee(t, s, "Kim", 10000)
	lee := addEmployee(t, s, "Lee", 11000)
	feb := records.NewDate(2025, time.February, 28)
	apr := records.NewDate(2025, time.April, 1)

	addShift(t, s, shift(kim.ID, feb, 9, 18))
	addShift(t, s, shift(kim.ID, mon, 9, 18))
	addShift(t, s, shift(lee.ID, mon, 12, 20))
	addShift(t, s, shift(kim.ID, wed, 9, 13))
	addShift(t, s, shift(kim.ID, apr, 9, 18))

	onDate, err := s.WorkLogsForDate(ctx, mon)
	require.NoError(t, err)
	assert.Equal(t, []records.WorkLog{shift(kim.ID, mon, 9, 18), shift(lee.ID, mon, 12, 20)}, onDate)

	kimMon, err := s.WorkLogsForEmployeeOnDate(ctx, kim.ID, mon)
	require.NoError(t, err)
	assert.Equal(t, []records.WorkLog{shift(kim.ID, mon, 9, 18)}, kimMon)

	march, err := s.WorkLogsForEmployeeForMonth(ctx, kim.ID, 2025, time.March)
	require.NoError(t, err)
	assert.Equal(t, []records.WorkLog{shift(kim.ID, mon, 9, 18), shift(kim.ID, wed, 9, 13)}, march)

	// range is inclusive at both ends
	inRange, err := s.WorkLogsInRange(ctx, kim.ID, feb, wed)
	require.NoError(t, err)
	assert.Equal(t, []records.WorkLog{
		shift(kim.ID, feb, 9, 18),
		shift(kim.ID, mon, 9, 18),
		shift(kim.ID, wed, 9, 13),
	}, inRange)

	found, ok, err := s.WorkLogByEmployeeAndDate(ctx, lee.ID, mon)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, shift(lee.ID, mon, 12, 20), found)
}

func testQueriesEmpty(t *testing.T, s records.Store) {
	ctx := context.Background()
	kim := addEmployee(t, s, "Kim", 10000)

	onDate, err := s.WorkLogsForDate(ctx, mon)
	require.NoError(t, err)
	assert.NotNil(t, onDate)
	assert.Empty(t, onDate)

	month, err := s.WorkLogsForEmployeeForMonth(ctx, kim.ID, 2025, time.March)
	require.NoError(t, err)
	assert.NotNil(t, month)
	assert.Empty(t, month)

	all, err := s.WorkLogs(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func testWorkLogLookupMiss(t *testing.T, s records.Store) {
	kim := addEmployee(t, s, "Kim", 10000)
	addShift(t, s, shift(kim.ID, mon, 9, 18))

	w, ok, err := s.WorkLogByEmployeeAndDate(context.Background(), kim.ID, tue)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, records.UnassignedID, w.EmployeeID)
}

func testUpdateWorkLog(t *testing.T, s records.Store) {
	ctx := context.Background()
	kim := addEmployee(t, s, "Kim", 10000)
	old := shift(kim.ID, mon, 9, 18)
	addShift(t, s, old)
	addShift(t, s, shift(kim.ID, tue, 9, 18))

	// moving the shift to Wednesday replaces every field, in place
	updated := shift(kim.ID, wed, 22, 6)
	ok, err := s.UpdateWorkLog(ctx, old, updated)
	require.NoError(t, err)
	assert.True(t, ok)

	logs, err := s.WorkLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []records.WorkLog{updated, shift(kim.ID, tue, 9, 18)}, logs)

	ok, err = s.UpdateWorkLog(ctx, old, shift(kim.ID, mon, 1, 2))
	require.NoError(t, err)
	assert.False(t, ok, "old slot no longer exists")
}

func testUpdateWorkLogCollision(t *testing.T, s records.Store) {
	ctx := context.Background()
	kim := addEmployee(t, s, "Kim", 10000)
	addShift(t, s, shift(kim.ID, mon, 9, 18))
	addShift(t, s, shift(kim.ID, tue, 9, 18))

	ok, err := s.UpdateWorkLog(ctx, shift(kim.ID, mon, 0, 0), shift(kim.ID, tue, 6, 10))

	assert.False(t, ok)
	assert.ErrorIs(t, err, records.ErrDuplicateShift)
	logs, err := s.WorkLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []records.WorkLog{shift(kim.ID, mon, 9, 18), shift(kim.ID, tue, 9, 18)}, logs)
}

func testDeleteWorkLog(t *testing.T, s records.Store) {
	ctx := context.Background()

	// GIVEN: a legacy state holding two shifts for the same slot
	require.NoError(t, s.Restore(ctx, records.Snapshot{
		NextEmployeeID: 2,
		Employees:      []records.Employee{{ID: 1, Name: "Kim", HourlyWage: 10000}},
		WorkLogs: []records.WorkLog{
			shift(1, mon, 9, 12),
			shift(1, mon, 13, 18),
			shift(1, tue, 9, 18),
		},
	}))

	// WHEN/THEN: DeleteWorkLog removes only the first match
	ok, err := s.DeleteWorkLog(ctx, 1, mon)
	require.NoError(t, err)
	assert.True(t, ok)
	logs, err := s.WorkLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []records.WorkLog{shift(1, mon, 13, 18), shift(1, tue, 9, 18)}, logs)

	// re-seed the duplicate and clear the slot in bulk
	require.NoError(t, s.Restore(ctx, records.Snapshot{
		NextEmployeeID: 2,
		Employees:      []records.Employee{{ID: 1, Name: "Kim", HourlyWage: 10000}},
		WorkLogs:       []records.WorkLog{shift(1, mon, 9, 12), shift(1, tue, 9, 18), shift(1, mon, 13, 18)},
	}))
	ok, err = s.DeleteWorkLogsForEmployeeOnDate(ctx, 1, mon)
	require.NoError(t, err)
	assert.True(t, ok)
	logs, err = s.WorkLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []records.WorkLog{shift(1, tue, 9, 18)}, logs)

	ok, err = s.DeleteWorkLogsForEmployeeOnDate(ctx, 1, mon)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.DeleteWorkLog(ctx, 1, wed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testResultsAreCopies(t *testing.T, s records.Store) {
	ctx := context.Background()
	kim := addEmployee(t, s, "Kim", 10000)
	addShift(t, s, shift(kim.ID, mon, 9, 18))

	emps, err := s.Employees(ctx)
	require.NoError(t, err)
	emps[0].Name = "mutated"
	logs, err := s.WorkLogs(ctx)
	require.NoError(t, err)
	logs[0].EmployeeID = 77

	again, _, err := s.EmployeeByID(ctx, kim.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kim", again.Name)
	still, ok, err := s.WorkLogByEmployeeAndDate(ctx, kim.ID, mon)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, kim.ID, still.EmployeeID)
}

// =============================================================================
// WHOLE STATE
// =============================================================================

func testRestoreGuardsNextID(t *testing.T, s records.Store) {
	ctx := context.Background()

	// GIVEN: a stale counter lower than the ids present
	require.NoError(t, s.Restore(ctx, records.Snapshot{
		NextEmployeeID: 2,
		Employees: []records.Employee{
			{ID: 1, Name: "Kim"},
			{ID: 5, Name: "Park"},
		},
	}))

	// WHEN: adding a new employee
	e := addEmployee(t, s, "Choi", 9860)

	// THEN: the id continues past the largest loaded id
	assert.Equal(t, 6, e.ID)
	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, snap.NextEmployeeID)
}

func testSnapshotRoundTrip(t *testing.T, s records.Store) {
	ctx := context.Background()
	kim := addEmployee(t, s, "Kim", 10000)
	lee := addEmployee(t, s, "Lee", 11000)
	addShift(t, s, shift(kim.ID, mon, 9, 18))
	addShift(t, s, shift(lee.ID, tue, 22, 6))
	addShift(t, s, records.WorkLog{EmployeeID: lee.ID, Date: wed})
	ok, err := s.DeleteEmployee(ctx, kim.ID)
	require.NoError(t, err)
	require.True(t, ok)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.NextEmployeeID, "deleting does not rewind the counter")
	assert.Equal(t, []records.Employee{lee}, snap.Employees)
	assert.Equal(t, []records.WorkLog{shift(lee.ID, tue, 22, 6), {EmployeeID: lee.ID, Date: wed}}, snap.WorkLogs)

	// restoring into the same store is idempotent
	require.NoError(t, s.Restore(ctx, snap))
	again, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, again)
}
