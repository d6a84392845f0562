/*
Package records holds the employee and shift data of the payroll system.

PURPOSE:
  Defines the record types (Employee, WorkLog), the calendar and clock types
  they are keyed on, and the Store contract every backend implements. This is
  the single source of truth for employee ids and for date-keyed shift
  lookup; the payroll package only reads from it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: identity record, id assigned by the store
  - WorkLog: one shift of one employee on one date
  - Sentinels: lookups that miss return a record tagged with id -1

ABSENT RECORDS:
  Lookups return (record, ok). When ok is false the record is the sentinel
  (Employee.ID == -1, WorkLog.EmployeeID == -1), so code that only inspects
  the record still sees an impossible id.

SEE ALSO:
  - time.go: Date and ClockTime
  - store.go: Store interface
  - store/memory.go: in-memory implementation with JSON persistence
  - ../store/sqlite: SQLite implementation
*/
package records

// UnassignedID marks an employee that has no store-assigned id yet, or a
// lookup that found nothing. It is never the id of a live record.
const UnassignedID = -1

// =============================================================================
// EMPLOYEE
// =============================================================================

type Employee struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	HourlyWage  int    `json:"hourlyWage"`
	BankAccount string `json:"bankAccount"`
}

// NewEmployee builds an employee that has not been stored yet.
func NewEmployee(name string, hourlyWage int, bankAccount string) Employee {
	return Employee{ID: UnassignedID, Name: name, HourlyWage: hourlyWage, BankAccount: bankAccount}
}

// MissingEmployee is the not-found sentinel.
func MissingEmployee() Employee { return Employee{ID: UnassignedID} }

func (e Employee) Found() bool { return e.ID != UnassignedID }

// =============================================================================
// WORK LOG - A single shift
// =============================================================================

type WorkLog struct {
	EmployeeID int       `json:"employeeId"`
	Date       Date      `json:"date"`
	StartTime  ClockTime `json:"startTime"`
	EndTime    ClockTime `json:"endTime"`
}

// MissingWorkLog is the not-found sentinel.
func MissingWorkLog() WorkLog { return WorkLog{EmployeeID: UnassignedID} }

func (w WorkLog) Found() bool { return w.EmployeeID != UnassignedID }

// HoursWorked is derived, never stored.
func (w WorkLog) HoursWorked() float64 { return ShiftHours(w.StartTime, w.EndTime) }

// SameShift reports whether both logs occupy the same (employee, date) slot.
func (w WorkLog) SameShift(other WorkLog) bool {
	return w.EmployeeID == other.EmployeeID && w.Date.Equal(other.Date)
}

// Matches reports whether w is the shift of employeeID on date.
func (w WorkLog) Matches(employeeID int, date Date) bool {
	return w.EmployeeID == employeeID && w.Date.Equal(date)
}
