/*
Package sqlite provides a SQLite-backed implementation of records.Store.

PURPOSE:
  Same contract as the in-memory store (see records/store.go), but every
  mutation is durable as soon as it returns. Used by the server when
  PAYROLL_BACKEND=sqlite; the JSON document remains the interchange format
  via Snapshot/Restore.

KEY TABLES:
  employees: one row per employee, seq keeps insertion order
  worklogs:  one row per shift, seq keeps insertion order
  meta:      next_employee_id counter

ONE SHIFT PER DAY:
  Enforced in code inside a transaction rather than with a UNIQUE index:
  documents written by older versions may hold two shifts for the same
  employee and date, and Restore must accept them.

DATES:
  Stored as YYYY-MM-DD text so range and month filters are plain string
  comparisons. Invalid dates and clock times are stored as NULL and
  compared with IS, matching the in-memory store where two invalid dates
  are equal.

CONCURRENCY:
  The pool is pinned to a single connection (":memory:" databases are per
  connection) and a sync.RWMutex serialises writers.

USAGE:
  s, err := sqlite.New("./payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer s.Close()

SEE ALSO:
  - records/store.go: Store interface
  - records/store/memory.go: in-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/warp/shift-payroll/records"
)

// Store implements records.Store using SQLite.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger routes store diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		hourly_wage INTEGER NOT NULL DEFAULT 0,
		bank_account TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_employees_id
		ON employees(id);

	CREATE TABLE IF NOT EXISTS worklogs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL,
		date TEXT,
		start_time TEXT,
		end_time TEXT
	);

	-- Hot path: (employee, date) lookups and per-employee range scans
	CREATE INDEX IF NOT EXISTS idx_worklogs_employee_date
		ON worklogs(employee_id, date);
	CREATE INDEX IF NOT EXISTS idx_worklogs_date
		ON worklogs(date);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);

	INSERT OR IGNORE INTO meta (key, value) VALUES ('next_employee_id', 1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction. It must be called with s.mu held.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// EMPLOYEES
// =============================================================================

const employeeColumns = "id, name, hourly_wage, bank_account"

// AddEmployee assigns the next id and appends the employee.
func (s *Store) AddEmployee(ctx context.Context, e records.Employee) (records.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		next, err := nextEmployeeID(ctx, tx)
		if err != nil {
			return err
		}
		e.ID = next

		if err := insertEmployee(ctx, tx, e); err != nil {
			return err
		}
		return setNextEmployeeID(ctx, tx, next+1)
	})
	if err != nil {
		return records.MissingEmployee(), fmt.Errorf("failed to add employee: %w", err)
	}

	s.logger.Debug("employee added", zap.Int("employee_id", e.ID), zap.String("name", e.Name))
	return e, nil
}

// Employees returns all employees in insertion order.
func (s *Store) Employees(ctx context.Context) ([]records.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryEmployees(ctx, s.db, "SELECT "+employeeColumns+" FROM employees ORDER BY seq")
}

// EmployeeByID returns the first employee with id.
func (s *Store) EmployeeByID(ctx context.Context, id int) (records.Employee, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found, err := queryEmployees(ctx, s.db,
		"SELECT "+employeeColumns+" FROM employees WHERE id = ? ORDER BY seq LIMIT 1", id)
	if err != nil {
		return records.MissingEmployee(), false, err
	}
	if len(found) == 0 {
		s.logger.Warn("employee not found", zap.Int("employee_id", id))
		return records.MissingEmployee(), false, nil
	}
	return found[0], true, nil
}

// UpdateEmployee overwrites the mutable fields of the first employee with id.
func (s *Store) UpdateEmployee(ctx context.Context, id int, info records.Employee) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE employees SET name = ?, hourly_wage = ?, bank_account = ?
		WHERE seq = (SELECT seq FROM employees WHERE id = ? ORDER BY seq LIMIT 1)`,
		info.Name, info.HourlyWage, nullString(info.BankAccount), id)
	if err != nil {
		return false, fmt.Errorf("failed to update employee: %w", err)
	}

	ok, err := affected(res)
	if err == nil && !ok {
		s.logger.Warn("update failed: employee not found", zap.Int("employee_id", id))
	}
	return ok, err
}

// DeleteEmployee removes the first employee with id and then all of that
// id's worklogs, atomically.
func (s *Store) DeleteEmployee(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted bool
	var cascaded int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM employees WHERE seq = (SELECT seq FROM employees WHERE id = ? ORDER BY seq LIMIT 1)", id)
		if err != nil {
			return err
		}
		if deleted, err = affected(res); err != nil || !deleted {
			return err
		}

		res, err = tx.ExecContext(ctx, "DELETE FROM worklogs WHERE employee_id = ?", id)
		if err != nil {
			return err
		}
		cascaded, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete employee: %w", err)
	}

	if !deleted {
		s.logger.Warn("delete failed: employee not found", zap.Int("employee_id", id))
		return false, nil
	}
	s.logger.Debug("employee deleted", zap.Int("employee_id", id), zap.Int64("worklogs_removed", cascaded))
	return true, nil
}

func insertEmployee(ctx context.Context, q querier, e records.Employee) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO employees ("+employeeColumns+") VALUES (?, ?, ?, ?)",
		e.ID, e.Name, e.HourlyWage, nullString(e.BankAccount))
	return err
}

func queryEmployees(ctx context.Context, q querier, query string, args ...any) ([]records.Employee, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := []records.Employee{}
	for rows.Next() {
		var e records.Employee
		var bank sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &e.HourlyWage, &bank); err != nil {
			return nil, err
		}
		e.BankAccount = bank.String
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// =============================================================================
// WORK LOGS
// =============================================================================

const workLogColumns = "employee_id, date, start_time, end_time"

// slotFilter selects the worklogs of one employee on one date.
const slotFilter = "employee_id = ? AND date IS ?"

// AddWorkLog appends a shift unless the slot is taken.
func (s *Store) AddWorkLog(ctx context.Context, log records.WorkLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, ok, err := firstInSlot(ctx, tx, log.EmployeeID, log.Date)
		if err != nil {
			return err
		}
		if ok {
			return &records.DuplicateShiftError{EmployeeID: log.EmployeeID, Date: log.Date, Existing: existing}
		}
		return insertWorkLog(ctx, tx, log)
	})
	if err != nil {
		return fmt.Errorf("failed to add worklog: %w", err)
	}

	s.logger.Debug("worklog added",
		zap.Int("employee_id", log.EmployeeID),
		zap.Stringer("date", log.Date),
		zap.Float64("hours", log.HoursWorked()))
	return nil
}

// RecordShift replaces the first shift in the slot, or appends.
func (s *Store) RecordShift(ctx context.Context, log records.WorkLog) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var replaced bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE worklogs SET start_time = ?, end_time = ?
			WHERE seq = (SELECT seq FROM worklogs WHERE `+slotFilter+` ORDER BY seq LIMIT 1)`,
			clockValue(log.StartTime), clockValue(log.EndTime), log.EmployeeID, dateValue(log.Date))
		if err != nil {
			return err
		}
		if replaced, err = affected(res); err != nil || replaced {
			return err
		}
		return insertWorkLog(ctx, tx, log)
	})
	if err != nil {
		return false, fmt.Errorf("failed to record shift: %w", err)
	}
	return replaced, nil
}

// WorkLogs returns every worklog in insertion order.
func (s *Store) WorkLogs(ctx context.Context) ([]records.WorkLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryWorkLogs(ctx, s.db, "SELECT "+workLogColumns+" FROM worklogs ORDER BY seq")
}

func (s *Store) WorkLogsForEmployeeOnDate(ctx context.Context, employeeID int, date records.Date) ([]records.WorkLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryWorkLogs(ctx, s.db,
		"SELECT "+workLogColumns+" FROM worklogs WHERE "+slotFilter+" ORDER BY seq",
		employeeID, dateValue(date))
}

func (s *Store) WorkLogsForDate(ctx context.Context, date records.Date) ([]records.WorkLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryWorkLogs(ctx, s.db,
		"SELECT "+workLogColumns+" FROM worklogs WHERE date IS ? ORDER BY seq",
		dateValue(date))
}

func (s *Store) WorkLogsForEmployeeForMonth(ctx context.Context, employeeID int, year int, month time.Month) ([]records.WorkLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryWorkLogs(ctx, s.db,
		"SELECT "+workLogColumns+" FROM worklogs WHERE employee_id = ? AND substr(date, 1, 7) = ? ORDER BY seq",
		employeeID, fmt.Sprintf("%04d-%02d", year, int(month)))
}

// WorkLogsInRange returns the employee's worklogs dated in [from, to].
func (s *Store) WorkLogsInRange(ctx context.Context, employeeID int, from, to records.Date) ([]records.WorkLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryWorkLogs(ctx, s.db,
		"SELECT "+workLogColumns+" FROM worklogs WHERE employee_id = ? AND date >= ? AND date <= ? ORDER BY seq",
		employeeID, dateValue(from), dateValue(to))
}

func (s *Store) WorkLogByEmployeeAndDate(ctx context.Context, employeeID int, date records.Date) (records.WorkLog, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok, err := firstInSlot(ctx, s.db, employeeID, date)
	if err != nil || !ok {
		return records.MissingWorkLog(), false, err
	}
	return w, true, nil
}

// UpdateWorkLog replaces the first record in old's slot with updated.
func (s *Store) UpdateWorkLog(ctx context.Context, old, updated records.WorkLog) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ok bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var seq int64
		err := tx.QueryRowContext(ctx,
			"SELECT seq FROM worklogs WHERE "+slotFilter+" ORDER BY seq LIMIT 1",
			old.EmployeeID, dateValue(old.Date)).Scan(&seq)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}

		if !updated.SameShift(old) {
			existing, taken, err := firstInSlot(ctx, tx, updated.EmployeeID, updated.Date)
			if err != nil {
				return err
			}
			if taken {
				return &records.DuplicateShiftError{EmployeeID: updated.EmployeeID, Date: updated.Date, Existing: existing}
			}
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE worklogs SET employee_id = ?, date = ?, start_time = ?, end_time = ? WHERE seq = ?",
			updated.EmployeeID, dateValue(updated.Date), clockValue(updated.StartTime), clockValue(updated.EndTime), seq)
		ok = err == nil
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to update worklog: %w", err)
	}
	return ok, nil
}

// DeleteWorkLog removes the first record in the slot.
func (s *Store) DeleteWorkLog(ctx context.Context, employeeID int, date records.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM worklogs WHERE seq = (SELECT seq FROM worklogs WHERE "+slotFilter+" ORDER BY seq LIMIT 1)",
		employeeID, dateValue(date))
	if err != nil {
		return false, fmt.Errorf("failed to delete worklog: %w", err)
	}
	return affected(res)
}

// DeleteWorkLogsForEmployeeOnDate removes every record in the slot.
func (s *Store) DeleteWorkLogsForEmployeeOnDate(ctx context.Context, employeeID int, date records.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM worklogs WHERE "+slotFilter, employeeID, dateValue(date))
	if err != nil {
		return false, fmt.Errorf("failed to delete worklogs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.logger.Debug("worklogs deleted",
			zap.Int("employee_id", employeeID),
			zap.Stringer("date", date),
			zap.Int64("count", n))
	}
	return n > 0, nil
}

func insertWorkLog(ctx context.Context, q querier, w records.WorkLog) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO worklogs ("+workLogColumns+") VALUES (?, ?, ?, ?)",
		w.EmployeeID, dateValue(w.Date), clockValue(w.StartTime), clockValue(w.EndTime))
	return err
}

func firstInSlot(ctx context.Context, q querier, employeeID int, date records.Date) (records.WorkLog, bool, error) {
	found, err := queryWorkLogs(ctx, q,
		"SELECT "+workLogColumns+" FROM worklogs WHERE "+slotFilter+" ORDER BY seq LIMIT 1",
		employeeID, dateValue(date))
	if err != nil || len(found) == 0 {
		return records.WorkLog{}, false, err
	}
	return found[0], true, nil
}

func queryWorkLogs(ctx context.Context, q querier, query string, args ...any) ([]records.WorkLog, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []records.WorkLog{}
	for rows.Next() {
		var w records.WorkLog
		var date, start, end sql.NullString
		if err := rows.Scan(&w.EmployeeID, &date, &start, &end); err != nil {
			return nil, err
		}
		w.Date = records.ParseDate(date.String)
		w.StartTime = records.ParseClockTime(start.String)
		w.EndTime = records.ParseClockTime(end.String)
		logs = append(logs, w)
	}
	return logs, rows.Err()
}

// =============================================================================
// WHOLE STATE
// =============================================================================

// Snapshot reads the whole state in one transaction.
func (s *Store) Snapshot(ctx context.Context) (records.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap records.Snapshot
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if snap.NextEmployeeID, err = nextEmployeeID(ctx, tx); err != nil {
			return err
		}
		if snap.Employees, err = queryEmployees(ctx, tx, "SELECT "+employeeColumns+" FROM employees ORDER BY seq"); err != nil {
			return err
		}
		snap.WorkLogs, err = queryWorkLogs(ctx, tx, "SELECT "+workLogColumns+" FROM worklogs ORDER BY seq")
		return err
	})
	if err != nil {
		return records.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return snap, nil
}

// Restore replaces every row. Either the whole snapshot lands or nothing
// changes.
func (s *Store) Restore(ctx context.Context, snap records.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{"DELETE FROM employees", "DELETE FROM worklogs"} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		for _, e := range snap.Employees {
			if err := insertEmployee(ctx, tx, e); err != nil {
				return err
			}
		}
		for _, w := range snap.WorkLogs {
			if err := insertWorkLog(ctx, tx, w); err != nil {
				return err
			}
		}
		return setNextEmployeeID(ctx, tx, snap.GuardedNextID())
	})
	if err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}

	s.logger.Debug("snapshot restored",
		zap.Int("employees", len(snap.Employees)),
		zap.Int("worklogs", len(snap.WorkLogs)))
	return nil
}

// NextEmployeeID is the id the next AddEmployee will assign.
func (s *Store) NextEmployeeID(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return nextEmployeeID(ctx, s.db)
}

func nextEmployeeID(ctx context.Context, q querier) (int, error) {
	var next int
	err := q.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'next_employee_id'").Scan(&next)
	return next, err
}

func setNextEmployeeID(ctx context.Context, q querier, next int) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES ('next_employee_id', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		next)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func dateValue(d records.Date) sql.NullString      { return nullString(d.String()) }
func clockValue(c records.ClockTime) sql.NullString { return nullString(c.String()) }

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ records.Store = (*Store)(nil)
