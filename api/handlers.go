/*
handlers.go - HTTP API handlers for the payroll service

PURPOSE:
  Exposes the record store and the payroll calculator via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                      List all employees
    POST   /api/employees                      Create employee
    GET    /api/employees/{id}                 Get employee
    PUT    /api/employees/{id}                 Update name, wage, account
    DELETE /api/employees/{id}                 Delete employee and their shifts

  Shifts:
    GET    /api/employees/{id}/worklogs        Shifts in ?year=&month=
    PUT    /api/employees/{id}/shifts/{date}   Record shift (add or replace)
    GET    /api/employees/{id}/shifts/{date}   Get shift
    DELETE /api/employees/{id}/shifts/{date}   Delete shift
    GET    /api/worklogs?date=                 All shifts on a date

  Payroll:
    GET    /api/employees/{id}/payroll         Breakdown for ?from=&to=
    POST   /api/payroll                        Aggregate over a selection
    GET    /api/payroll/export                 CSV or XLSX download

  Calendar:
    GET    /api/calendar?year=&month=&ids=     Month grid with day summaries

  Data:
    POST   /api/data/save                      Persist now

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: record store (in-memory or SQLite)
  - Calculator: payroll figures over Store
  - persist: writes the JSON document; nil when persistence is off

REFERENTIAL INTEGRITY:
  The store accepts shifts for any employee id. Handlers check that the
  employee exists before recording a shift, so shifts entered through the
  API always reference a live employee.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, reversed date range
  - 404: Employee or shift not found
  - 409: Conflict (second shift on the same day)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/shift-payroll/calendar"
	"github.com/warp/shift-payroll/export"
	"github.com/warp/shift-payroll/payroll"
	"github.com/warp/shift-payroll/records"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// PersistFunc writes the current state to durable storage.
type PersistFunc func(ctx context.Context) error

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      records.Store
	Calculator *payroll.Calculator
	Logger     *zap.Logger

	persist PersistFunc

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger routes handler diagnostics to l.
func WithLogger(l *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.Logger = l
		}
	}
}

// WithPersist enables POST /api/data/save.
func WithPersist(fn PersistFunc) HandlerOption {
	return func(h *Handler) { h.persist = fn }
}

// NewHandler creates a new handler with the given store.
func NewHandler(store records.Store, opts ...HandlerOption) *Handler {
	h := &Handler{Store: store, Logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	h.Calculator = payroll.NewCalculator(store, payroll.WithLogger(h.Logger))
	return h
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.Employees(r.Context())
	if err != nil {
		h.writeStoreError(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	e, ok := h.employeeFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(e))
}

// CreateEmployee creates a new employee. The store assigns the id.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEmployeeRequest(w, r)
	if !ok {
		return
	}

	e, err := h.Store.AddEmployee(r.Context(), records.NewEmployee(req.Name, req.HourlyWage, req.BankAccount))
	if err != nil {
		h.writeStoreError(w, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(e))
}

// UpdateEmployee overwrites name, wage and bank account.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}
	req, ok := decodeEmployeeRequest(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	updated, err := h.Store.UpdateEmployee(ctx, id, records.NewEmployee(req.Name, req.HourlyWage, req.BankAccount))
	if err != nil {
		h.writeStoreError(w, "Failed to update employee", err)
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "Employee not found", records.ErrEmployeeNotFound)
		return
	}

	e, _, err := h.Store.EmployeeByID(ctx, id)
	if err != nil {
		h.writeStoreError(w, "Failed to read employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(e))
}

// DeleteEmployee removes the employee and every shift they have.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}

	deleted, err := h.Store.DeleteEmployee(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, "Failed to delete employee", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Employee not found", records.ErrEmployeeNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListMonthWorkLogs returns an employee's shifts in one month.
// GET /api/employees/{id}/worklogs?year=2025&month=3
func (h *Handler) ListMonthWorkLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year/month", err)
		return
	}

	logs, err := h.Store.WorkLogsForEmployeeForMonth(r.Context(), id, year, month)
	if err != nil {
		h.writeStoreError(w, "Failed to list worklogs", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkLogDTOs(logs))
}

// ListWorkLogsForDate returns every shift on a date.
// GET /api/worklogs?date=2025-03-03
func (h *Handler) ListWorkLogsForDate(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.URL.Query().Get("date"), "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	logs, err := h.Store.WorkLogsForDate(r.Context(), date)
	if err != nil {
		h.writeStoreError(w, "Failed to list worklogs", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkLogDTOs(logs))
}

// RecordShift adds the employee's shift on a date, or replaces the one
// already there. 201 when added, 200 when replaced.
// PUT /api/employees/{id}/shifts/{date}
func (h *Handler) RecordShift(w http.ResponseWriter, r *http.Request) {
	e, ok := h.employeeFromPath(w, r)
	if !ok {
		return
	}
	date, err := parseDate(chi.URLParam(r, "date"), "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start := records.ParseClockTime(req.StartTime)
	end := records.ParseClockTime(req.EndTime)
	if !start.IsValid() || !end.IsValid() {
		writeError(w, http.StatusBadRequest, "Invalid start_time/end_time (use HH:MM or HH:MM:SS)", nil)
		return
	}

	log := records.WorkLog{EmployeeID: e.ID, Date: date, StartTime: start, EndTime: end}
	replaced, err := h.Store.RecordShift(r.Context(), log)
	if err != nil {
		h.writeStoreError(w, "Failed to record shift", err)
		return
	}

	status := http.StatusCreated
	if replaced {
		status = http.StatusOK
	}
	writeJSON(w, status, RecordShiftResponse{WorkLog: toWorkLogDTO(log), Replaced: replaced})
}

// GetShift returns the employee's shift on a date.
// GET /api/employees/{id}/shifts/{date}
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	id, date, ok := shiftKeyFromPath(w, r)
	if !ok {
		return
	}

	log, found, err := h.Store.WorkLogByEmployeeAndDate(r.Context(), id, date)
	if err != nil {
		h.writeStoreError(w, "Failed to get shift", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Shift not found", records.ErrWorkLogNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toWorkLogDTO(log))
}

// DeleteShift removes the employee's shift on a date.
// DELETE /api/employees/{id}/shifts/{date}
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id, date, ok := shiftKeyFromPath(w, r)
	if !ok {
		return
	}

	deleted, err := h.Store.DeleteWorkLog(r.Context(), id, date)
	if err != nil {
		h.writeStoreError(w, "Failed to delete shift", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Shift not found", records.ErrWorkLogNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// GetEmployeePayroll returns one employee's breakdown.
// GET /api/employees/{id}/payroll?from=2025-03-01&to=2025-03-31
func (h *Handler) GetEmployeePayroll(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	period, err := parsePeriod(q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	b, err := h.Calculator.Calculate(r.Context(), id, period)
	if err != nil {
		h.writeStoreError(w, "Failed to calculate payroll", err)
		return
	}
	writeJSON(w, http.StatusOK, toBreakdownDTO(b))
}

// AggregatePayroll combines the pay of the selected employees.
// POST /api/payroll
func (h *Handler) AggregatePayroll(w http.ResponseWriter, r *http.Request) {
	var req PayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	period, err := parsePeriod(req.From, req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	totals, err := h.Calculator.Aggregate(r.Context(), req.EmployeeIDs, period)
	if err != nil {
		h.writeStoreError(w, "Failed to calculate payroll", err)
		return
	}
	writeJSON(w, http.StatusOK, toTotalsDTO(totals))
}

// ExportPayroll downloads the aggregate as CSV or XLSX.
// GET /api/payroll/export?ids=1,2&from=...&to=...&format=xlsx
func (h *Handler) ExportPayroll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := parsePeriod(q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	ids, err := parseIDList(q.Get("ids"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ids", err)
		return
	}
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid format", err)
		return
	}

	totals, err := h.Calculator.Aggregate(r.Context(), ids, period)
	if err != nil {
		h.writeStoreError(w, "Failed to calculate payroll", err)
		return
	}

	filename := fmt.Sprintf("payroll_%s_%s.%s", period.Start, period.End, format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := export.Write(w, format, export.Rows(totals)); err != nil {
		// headers are already sent
		h.Logger.Error("Failed to write export", zap.String("format", string(format)), zap.Error(err))
	}
}

// =============================================================================
// CALENDAR HANDLER
// =============================================================================

// GetCalendar returns the month grid with day summaries for the selected
// employees, or for everyone when ids is omitted.
// GET /api/calendar?year=2025&month=3&ids=1,2
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year/month", err)
		return
	}
	ctx := r.Context()

	ids, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ids", err)
		return
	}
	if ids == nil {
		if ids, err = h.allEmployeeIDs(ctx); err != nil {
			h.writeStoreError(w, "Failed to list employees", err)
			return
		}
	}

	grid := calendar.NewMonthGrid(year, month)
	days, err := calendar.Summaries(ctx, h.Store, ids, grid)
	if err != nil {
		h.writeStoreError(w, "Failed to build calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarDTO(grid, days))
}

// =============================================================================
// DATA HANDLER
// =============================================================================

// SaveData persists the current state now.
// POST /api/data/save
func (h *Handler) SaveData(w http.ResponseWriter, r *http.Request) {
	if h.persist == nil {
		writeError(w, http.StatusNotImplemented, "Persistence is not configured", nil)
		return
	}
	if err := h.persist(r.Context()); err != nil {
		h.Logger.Error("Failed to save data", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: errorCode(err)}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps domain errors to a status and logs the rest.
func (h *Handler) writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, records.ErrDuplicateShift):
		writeError(w, http.StatusConflict, message, err)
	case records.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case records.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, records.ErrDuplicateShift):
		return "duplicate_shift"
	case errors.Is(err, records.ErrEmployeeNotFound):
		return "employee_not_found"
	case errors.Is(err, records.ErrWorkLogNotFound):
		return "worklog_not_found"
	case errors.Is(err, records.ErrInvalidRange):
		return "invalid_range"
	default:
		return ""
	}
}

func decodeEmployeeRequest(w http.ResponseWriter, r *http.Request) (EmployeeRequest, bool) {
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, false
	}
	if req.HourlyWage < 0 {
		writeError(w, http.StatusBadRequest, "hourly_wage must not be negative", nil)
		return req, false
	}
	return req, true
}

func idFromPath(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id", err)
		return 0, false
	}
	return id, true
}

// employeeFromPath resolves {id}, writing 400/404 itself on failure.
func (h *Handler) employeeFromPath(w http.ResponseWriter, r *http.Request) (records.Employee, bool) {
	id, ok := idFromPath(w, r)
	if !ok {
		return records.Employee{}, false
	}
	e, found, err := h.Store.EmployeeByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, "Failed to get employee", err)
		return records.Employee{}, false
	}
	if !found {
		writeError(w, http.StatusNotFound, "Employee not found", records.ErrEmployeeNotFound)
		return records.Employee{}, false
	}
	return e, true
}

func shiftKeyFromPath(w http.ResponseWriter, r *http.Request) (int, records.Date, bool) {
	id, ok := idFromPath(w, r)
	if !ok {
		return 0, records.Date{}, false
	}
	date, err := parseDate(chi.URLParam(r, "date"), "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return 0, records.Date{}, false
	}
	return id, date, true
}

func (h *Handler) allEmployeeIDs(ctx context.Context) ([]int, error) {
	employees, err := h.Store.Employees(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}
	return ids, nil
}

func parseDate(s, field string) (records.Date, error) {
	d := records.ParseDate(s)
	if !d.IsValid() {
		return d, fmt.Errorf("%s: %q is not a YYYY-MM-DD date", field, s)
	}
	return d, nil
}

// parsePeriod requires both ends; a reversed range is ErrInvalidRange.
func parsePeriod(from, to string) (payroll.Period, error) {
	start, err := parseDate(from, "from")
	if err != nil {
		return payroll.Period{}, err
	}
	end, err := parseDate(to, "to")
	if err != nil {
		return payroll.Period{}, err
	}
	p := payroll.NewPeriod(start, end)
	return p, p.Validate()
}

func parseYearMonth(r *http.Request) (int, time.Month, error) {
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return 0, 0, fmt.Errorf("year: %q is not a number", q.Get("year"))
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month: %q is not 1-12", q.Get("month"))
	}
	return year, time.Month(month), nil
}

// parseIDList reads "1,2,3". Empty input yields nil.
func parseIDList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not an employee id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
