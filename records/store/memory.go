// Package store provides the in-memory records.Store and its JSON file
// persistence.
package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/shift-payroll/records"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees []records.Employee
	workLogs  []records.WorkLog
	nextID    int
	logger    *zap.Logger
}

// Option configures a Memory store.
type Option func(*Memory)

// WithLogger routes store diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(m *Memory) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		employees: []records.Employee{},
		workLogs:  []records.WorkLog{},
		nextID:    1,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NextEmployeeID is the id the next AddEmployee will assign.
func (m *Memory) NextEmployeeID() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nextID
}

// -----------------------------------------------------------------------------
// Employees
// -----------------------------------------------------------------------------

func (m *Memory) AddEmployee(_ context.Context, e records.Employee) (records.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = m.nextID
	m.nextID++
	m.employees = append(m.employees, e)
	m.logger.Debug("employee added", zap.Int("employee_id", e.ID), zap.String("name", e.Name))
	return e, nil
}

func (m *Memory) Employees(_ context.Context) ([]records.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]records.Employee, len(m.employees))
	copy(result, m.employees)
	return result, nil
}

func (m *Memory) EmployeeByID(_ context.Context, id int) (records.Employee, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.employees {
		if e.ID == id {
			return e, true, nil
		}
	}
	m.logger.Warn("employee not found", zap.Int("employee_id", id))
	return records.MissingEmployee(), false, nil
}

func (m *Memory) UpdateEmployee(_ context.Context, id int, info records.Employee) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.employees {
		if m.employees[i].ID == id {
			m.employees[i].Name = info.Name
			m.employees[i].HourlyWage = info.HourlyWage
			m.employees[i].BankAccount = info.BankAccount
			m.logger.Debug("employee updated", zap.Int("employee_id", id))
			return true, nil
		}
	}
	m.logger.Warn("update failed: employee not found", zap.Int("employee_id", id))
	return false, nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, e := range m.employees {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.logger.Warn("delete failed: employee not found", zap.Int("employee_id", id))
		return false, nil
	}
	m.employees = append(m.employees[:idx], m.employees[idx+1:]...)

	removed := m.removeWorkLogsLocked(func(w records.WorkLog) bool { return w.EmployeeID == id }, false)
	m.logger.Debug("employee deleted", zap.Int("employee_id", id), zap.Int("worklogs_removed", removed))
	return true, nil
}

// -----------------------------------------------------------------------------
// Work logs
// -----------------------------------------------------------------------------

func (m *Memory) AddWorkLog(_ context.Context, log records.WorkLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.findLocked(log.EmployeeID, log.Date); ok {
		return &records.DuplicateShiftError{EmployeeID: log.EmployeeID, Date: log.Date, Existing: existing}
	}
	m.workLogs = append(m.workLogs, log)
	m.logger.Debug("worklog added",
		zap.Int("employee_id", log.EmployeeID),
		zap.Stringer("date", log.Date),
		zap.Float64("hours", log.HoursWorked()))
	return nil
}

func (m *Memory) RecordShift(_ context.Context, log records.WorkLog) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.workLogs {
		if m.workLogs[i].SameShift(log) {
			m.workLogs[i] = log
			return true, nil
		}
	}
	m.workLogs = append(m.workLogs, log)
	return false, nil
}

func (m *Memory) WorkLogs(_ context.Context) ([]records.WorkLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]records.WorkLog, len(m.workLogs))
	copy(result, m.workLogs)
	return result, nil
}

func (m *Memory) WorkLogsForEmployeeOnDate(_ context.Context, employeeID int, date records.Date) ([]records.WorkLog, error) {
	return m.filter(func(w records.WorkLog) bool { return w.Matches(employeeID, date) }), nil
}

func (m *Memory) WorkLogsForDate(_ context.Context, date records.Date) ([]records.WorkLog, error) {
	return m.filter(func(w records.WorkLog) bool { return w.Date.Equal(date) }), nil
}

func (m *Memory) WorkLogsForEmployeeForMonth(_ context.Context, employeeID int, year int, month time.Month) ([]records.WorkLog, error) {
	return m.filter(func(w records.WorkLog) bool {
		return w.EmployeeID == employeeID && w.Date.IsValid() &&
			w.Date.Year() == year && w.Date.Month() == month
	}), nil
}

func (m *Memory) WorkLogsInRange(_ context.Context, employeeID int, from, to records.Date) ([]records.WorkLog, error) {
	return m.filter(func(w records.WorkLog) bool {
		return w.EmployeeID == employeeID && w.Date.IsValid() &&
			from.BeforeOrEqual(w.Date) && w.Date.BeforeOrEqual(to)
	}), nil
}

func (m *Memory) WorkLogByEmployeeAndDate(_ context.Context, employeeID int, date records.Date) (records.WorkLog, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if w, ok := m.findLocked(employeeID, date); ok {
		return w, true, nil
	}
	return records.MissingWorkLog(), false, nil
}

func (m *Memory) UpdateWorkLog(_ context.Context, old, updated records.WorkLog) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i := range m.workLogs {
		if m.workLogs[i].SameShift(old) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	if !updated.SameShift(old) {
		if existing, ok := m.findLocked(updated.EmployeeID, updated.Date); ok {
			return false, &records.DuplicateShiftError{EmployeeID: updated.EmployeeID, Date: updated.Date, Existing: existing}
		}
	}
	m.workLogs[idx] = updated
	return true, nil
}

func (m *Memory) DeleteWorkLog(_ context.Context, employeeID int, date records.Date) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.removeWorkLogsLocked(func(w records.WorkLog) bool { return w.Matches(employeeID, date) }, true)
	return removed > 0, nil
}

func (m *Memory) DeleteWorkLogsForEmployeeOnDate(_ context.Context, employeeID int, date records.Date) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.removeWorkLogsLocked(func(w records.WorkLog) bool { return w.Matches(employeeID, date) }, false)
	if removed > 0 {
		m.logger.Debug("worklogs deleted",
			zap.Int("employee_id", employeeID),
			zap.Stringer("date", date),
			zap.Int("count", removed))
	}
	return removed > 0, nil
}

// -----------------------------------------------------------------------------
// Whole state
// -----------------------------------------------------------------------------

func (m *Memory) Snapshot(_ context.Context) (records.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return records.Snapshot{
		NextEmployeeID: m.nextID,
		Employees:      m.employees,
		WorkLogs:       m.workLogs,
	}.Clone(), nil
}

func (m *Memory) Restore(_ context.Context, s records.Snapshot) error {
	restored := s.Clone()
	next := s.GuardedNextID()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.employees = restored.Employees
	m.workLogs = restored.WorkLogs
	m.nextID = next
	return nil
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

func (m *Memory) filter(keep func(records.WorkLog) bool) []records.WorkLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []records.WorkLog{}
	for _, w := range m.workLogs {
		if keep(w) {
			result = append(result, w)
		}
	}
	return result
}

func (m *Memory) findLocked(employeeID int, date records.Date) (records.WorkLog, bool) {
	for _, w := range m.workLogs {
		if w.Matches(employeeID, date) {
			return w, true
		}
	}
	return records.WorkLog{}, false
}

// removeWorkLogsLocked drops matching worklogs, stopping after the first when
// firstOnly is set. It returns how many were removed.
func (m *Memory) removeWorkLogsLocked(match func(records.WorkLog) bool, firstOnly bool) int {
	kept := m.workLogs[:0]
	removed := 0
	for _, w := range m.workLogs {
		if match(w) && (!firstOnly || removed == 0) {
			removed++
			continue
		}
		kept = append(kept, w)
	}
	m.workLogs = kept
	return removed
}

var _ records.Store = (*Memory)(nil)
