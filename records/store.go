/*
store.go - Record store contract

PURPOSE:
  Defines the interface between the payroll/presentation layers and the
  storage backend. A Store exclusively owns the employee list, the worklog
  list and the next-id counter; everything else goes through these methods.

KEY INTERFACES:
  Reader:     Read side, all the payroll calculator and calendar need
  Store:      Full CRUD plus whole-state Snapshot/Restore

CONTRACT:
  - Misses are not errors: lookups return (sentinel, false, nil) and
    update/delete return (false, nil). The error return is reserved for
    backend failures (a SQLite I/O error, a cancelled context).
  - Every returned slice is a fresh copy; callers may keep or mutate it.
  - Employees and worklogs come back in insertion order.
  - At most one worklog per (employee, date): AddWorkLog rejects a second
    one with *DuplicateShiftError, RecordShift replaces it.

IMPLEMENTATIONS:
  - records/store/memory.go: in-memory, persisted as a JSON document
  - store/sqlite/sqlite.go: SQLite

SEE ALSO:
  - snapshot.go: persisted document format
  - records/storetest: behaviour suite run against every implementation
*/
package records

import (
	"context"
	"time"
)

// Reader is the read side of a Store.
type Reader interface {
	// Employees returns all employees in insertion order.
	Employees(ctx context.Context) ([]Employee, error)

	// EmployeeByID returns the employee or (MissingEmployee(), false).
	EmployeeByID(ctx context.Context, id int) (Employee, bool, error)

	// WorkLogs returns every worklog in insertion order.
	WorkLogs(ctx context.Context) ([]WorkLog, error)

	WorkLogsForEmployeeOnDate(ctx context.Context, employeeID int, date Date) ([]WorkLog, error)
	WorkLogsForDate(ctx context.Context, date Date) ([]WorkLog, error)
	WorkLogsForEmployeeForMonth(ctx context.Context, employeeID int, year int, month time.Month) ([]WorkLog, error)

	// WorkLogsInRange returns the employee's worklogs dated in [from, to].
	WorkLogsInRange(ctx context.Context, employeeID int, from, to Date) ([]WorkLog, error)

	// WorkLogByEmployeeAndDate returns the first match or (MissingWorkLog(), false).
	WorkLogByEmployeeAndDate(ctx context.Context, employeeID int, date Date) (WorkLog, bool, error)
}

// Store is the authoritative holder of employee and worklog data.
type Store interface {
	Reader

	// AddEmployee ignores e.ID, assigns the next id and appends. The stored
	// record is returned.
	AddEmployee(ctx context.Context, e Employee) (Employee, error)

	// UpdateEmployee overwrites name, wage and bank account. The id is kept.
	UpdateEmployee(ctx context.Context, id int, info Employee) (bool, error)

	// DeleteEmployee removes the first matching employee and then every
	// worklog of that id. Nothing is touched when no employee matched.
	DeleteEmployee(ctx context.Context, id int) (bool, error)

	// AddWorkLog appends a shift. A shift already recorded for the same
	// employee and date yields *DuplicateShiftError and no change.
	AddWorkLog(ctx context.Context, log WorkLog) error

	// RecordShift replaces the shift on the same (employee, date) wholesale,
	// or appends when there is none. It reports whether it replaced.
	RecordShift(ctx context.Context, log WorkLog) (bool, error)

	// UpdateWorkLog replaces the record matching (old.EmployeeID, old.Date)
	// with updated. Moving onto a slot held by another record is a
	// *DuplicateShiftError.
	UpdateWorkLog(ctx context.Context, old, updated WorkLog) (bool, error)

	// DeleteWorkLog removes the first matching record.
	DeleteWorkLog(ctx context.Context, employeeID int, date Date) (bool, error)

	// DeleteWorkLogsForEmployeeOnDate removes every matching record.
	DeleteWorkLogsForEmployeeOnDate(ctx context.Context, employeeID int, date Date) (bool, error)

	// Snapshot copies out the whole state.
	Snapshot(ctx context.Context) (Snapshot, error)

	// Restore replaces the whole state with s. The next-id counter becomes
	// s.GuardedNextID(). On error the previous state is kept.
	Restore(ctx context.Context, s Snapshot) error
}
