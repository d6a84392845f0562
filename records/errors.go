/*
errors.go - Error types for the record store

ERROR CATEGORIES:
  1. Lookup errors - used by callers that turn a sentinel miss into an error
  2. Invariant errors - one shift per employee per day
  3. Persistence errors - load/save failures

  Store queries themselves report misses with sentinels and booleans; these
  errors are for the layers above (payroll, api) and for Save/Load.
*/
package records

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrWorkLogNotFound is returned when no shift exists for (employee, date).
	ErrWorkLogNotFound = errors.New("work log not found")

	// ErrDuplicateShift is returned when a second shift is added for the same
	// employee and date.
	ErrDuplicateShift = errors.New("shift already recorded for employee on date")

	// ErrInvalidRange is returned when a date range is malformed (end before start).
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrLoadFailed is returned when persisted data cannot be read or parsed.
	ErrLoadFailed = errors.New("load failed")

	// ErrSaveFailed is returned when the destination cannot be written.
	ErrSaveFailed = errors.New("save failed")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// DuplicateShiftError carries the slot that is already taken.
type DuplicateShiftError struct {
	EmployeeID int
	Date       Date
	Existing   WorkLog
}

func (e *DuplicateShiftError) Error() string {
	return fmt.Sprintf("shift already recorded: employee %d on %s (%s-%s)",
		e.EmployeeID, e.Date, e.Existing.StartTime, e.Existing.EndTime)
}

func (e *DuplicateShiftError) Unwrap() error {
	return ErrDuplicateShift
}

// PersistenceError wraps an I/O or decode failure with the path involved.
type PersistenceError struct {
	Op   error // ErrLoadFailed or ErrSaveFailed
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the operation sentinel and the cause.
func (e *PersistenceError) Unwrap() []error {
	return []error{e.Op, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrWorkLogNotFound)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateShift) || errors.Is(err, ErrInvalidRange)
}
