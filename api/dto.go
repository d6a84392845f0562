/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the record and payroll types from the external API contract. The
  persisted file format (records.Snapshot) is camelCase; the HTTP API is
  snake_case like the rest of the API surface.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employee:  EmployeeDTO, EmployeeRequest
  Shifts:    WorkLogDTO, ShiftRequest, RecordShiftResponse
  Payroll:   BreakdownDTO, TotalsDTO, WeekDTO, DisplayDTO, PayrollRequest
  Calendar:  CalendarDTO, CellDTO, EntryDTO
  Scenarios: ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/shift-payroll/calendar"
	"github.com/warp/shift-payroll/payroll"
	"github.com/warp/shift-payroll/records"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	HourlyWage  int    `json:"hourly_wage"`
	BankAccount string `json:"bank_account"`
}

// EmployeeRequest is the body of create and update.
type EmployeeRequest struct {
	Name        string `json:"name"`
	HourlyWage  int    `json:"hourly_wage"`
	BankAccount string `json:"bank_account"`
}

func toEmployeeDTO(e records.Employee) EmployeeDTO {
	return EmployeeDTO{ID: e.ID, Name: e.Name, HourlyWage: e.HourlyWage, BankAccount: e.BankAccount}
}

// =============================================================================
// SHIFTS
// =============================================================================

// WorkLogDTO represents one shift.
type WorkLogDTO struct {
	EmployeeID int     `json:"employee_id"`
	Date       string  `json:"date"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Hours      float64 `json:"hours"`
}

// ShiftRequest is the body of PUT /api/employees/{id}/shifts/{date}.
// Times are HH:MM or HH:MM:SS.
type ShiftRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// RecordShiftResponse reports whether an existing shift was replaced.
type RecordShiftResponse struct {
	WorkLog  WorkLogDTO `json:"worklog"`
	Replaced bool       `json:"replaced"`
}

func toWorkLogDTO(w records.WorkLog) WorkLogDTO {
	return WorkLogDTO{
		EmployeeID: w.EmployeeID,
		Date:       w.Date.String(),
		StartTime:  w.StartTime.String(),
		EndTime:    w.EndTime.String(),
		Hours:      payroll.HoursWorked(w),
	}
}

func toWorkLogDTOs(logs []records.WorkLog) []WorkLogDTO {
	dtos := make([]WorkLogDTO, len(logs))
	for i, w := range logs {
		dtos[i] = toWorkLogDTO(w)
	}
	return dtos
}

// =============================================================================
// PAYROLL
// =============================================================================

// PayrollRequest is the body of POST /api/payroll.
type PayrollRequest struct {
	EmployeeIDs []int  `json:"employee_ids"`
	From        string `json:"from"`
	To          string `json:"to"`
}

// WeekDTO is one Monday-anchored bucket.
type WeekDTO struct {
	WeekStart string  `json:"week_start"`
	Hours     float64 `json:"hours"`
	Eligible  bool    `json:"eligible"`
}

// DisplayDTO holds amounts truncated to whole currency units.
type DisplayDTO struct {
	BasicPay         int64 `json:"basic_pay"`
	WeeklyHolidayPay int64 `json:"weekly_holiday_pay"`
	Tax              int64 `json:"tax"`
	NetPay           int64 `json:"net_pay"`
}

// BreakdownDTO is one employee's pay over a period. Unrounded amounts are
// included for clients that do their own formatting.
type BreakdownDTO struct {
	Employee         EmployeeDTO `json:"employee"`
	From             string      `json:"from"`
	To               string      `json:"to"`
	Shifts           int         `json:"shifts"`
	TotalHours       float64     `json:"total_hours"`
	Weeks            []WeekDTO   `json:"weeks"`
	BasicPay         float64     `json:"basic_pay"`
	WeeklyHolidayPay float64     `json:"weekly_holiday_pay"`
	Tax              float64     `json:"tax"`
	NetPay           float64     `json:"net_pay"`
	Display          DisplayDTO  `json:"display"`
}

// TotalsDTO is the combined pay of a selection.
type TotalsDTO struct {
	From             string         `json:"from"`
	To               string         `json:"to"`
	Employees        []BreakdownDTO `json:"employees"`
	Names            []string       `json:"names"`
	Skipped          []int          `json:"skipped"`
	TotalHours       float64        `json:"total_hours"`
	BasicPay         float64        `json:"basic_pay"`
	WeeklyHolidayPay float64        `json:"weekly_holiday_pay"`
	Tax              float64        `json:"tax"`
	NetPay           float64        `json:"net_pay"`
	Display          DisplayDTO     `json:"display"`
}

func toDisplayDTO(d payroll.Display) DisplayDTO {
	return DisplayDTO{BasicPay: d.BasicPay, WeeklyHolidayPay: d.WeeklyHolidayPay, Tax: d.Tax, NetPay: d.NetPay}
}

func toBreakdownDTO(b payroll.Breakdown) BreakdownDTO {
	weeks := make([]WeekDTO, len(b.Weeks))
	for i, w := range b.Weeks {
		weeks[i] = WeekDTO{WeekStart: w.WeekStart.String(), Hours: w.Hours, Eligible: w.Eligible()}
	}
	return BreakdownDTO{
		Employee:         toEmployeeDTO(b.Employee),
		From:             b.Period.Start.String(),
		To:               b.Period.End.String(),
		Shifts:           b.Shifts,
		TotalHours:       b.TotalHours,
		Weeks:            weeks,
		BasicPay:         b.BasicPay,
		WeeklyHolidayPay: b.WeeklyHolidayPay,
		Tax:              b.Tax,
		NetPay:           b.NetPay,
		Display:          toDisplayDTO(b.Display()),
	}
}

func toTotalsDTO(t payroll.Totals) TotalsDTO {
	lines := make([]BreakdownDTO, len(t.Lines))
	for i, b := range t.Lines {
		lines[i] = toBreakdownDTO(b)
	}
	skipped := t.Skipped
	if skipped == nil {
		skipped = []int{}
	}
	return TotalsDTO{
		From:             t.Period.Start.String(),
		To:               t.Period.End.String(),
		Employees:        lines,
		Names:            t.Names(),
		Skipped:          skipped,
		TotalHours:       t.TotalHours,
		BasicPay:         t.BasicPay,
		WeeklyHolidayPay: t.WeeklyHolidayPay,
		Tax:              t.Tax,
		NetPay:           t.NetPay,
		Display:          toDisplayDTO(t.Display()),
	}
}

// =============================================================================
// CALENDAR
// =============================================================================

// CalendarDTO is a month view: 42 cells, Monday first.
type CalendarDTO struct {
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Title string    `json:"title"`
	Cells []CellDTO `json:"cells"`
}

// CellDTO is one grid slot. Date is empty outside the month.
type CellDTO struct {
	ID      string     `json:"id"`
	Row     int        `json:"row"`
	Col     int        `json:"col"`
	Date    string     `json:"date,omitempty"`
	Label   string     `json:"label,omitempty"`
	Entries []EntryDTO `json:"entries,omitempty"`
}

// EntryDTO is one employee's summary on one day.
type EntryDTO struct {
	EmployeeID int     `json:"employee_id"`
	Name       string  `json:"name"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Hours      float64 `json:"hours"`
	Label      string  `json:"label"`
}

func toCalendarDTO(grid calendar.MonthGrid, days []calendar.Day) CalendarDTO {
	byCell := make(map[string]calendar.Day, len(days))
	for _, d := range days {
		byCell[d.CellID] = d
	}

	cells := grid.Cells()
	dto := CalendarDTO{
		Year:  grid.Year,
		Month: int(grid.Month),
		Title: grid.Title(),
		Cells: make([]CellDTO, len(cells)),
	}
	for i, c := range cells {
		cell := CellDTO{ID: c.ID, Row: c.Row, Col: c.Col, Date: c.Date.String()}
		if day, ok := byCell[c.ID]; ok {
			cell.Label = day.Label()
			for _, e := range day.Entries {
				cell.Entries = append(cell.Entries, EntryDTO{
					EmployeeID: e.EmployeeID,
					Name:       e.Name,
					Start:      e.Earliest.Short(),
					End:        e.Latest.Short(),
					Hours:      e.Hours,
					Label:      e.Label(),
				})
			}
		}
		dto.Cells[i] = cell
	}
	return dto
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load. WeekOf picks
// the week the shifts are placed in; empty means the current week.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
	WeekOf     string `json:"week_of,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
