package calendar

import (
	"context"
	"fmt"
	"strings"

	"github.com/warp/shift-payroll/payroll"
	"github.com/warp/shift-payroll/records"
)

// Entry summarises one employee's shifts on one day.
type Entry struct {
	EmployeeID int
	Name       string
	Earliest   records.ClockTime
	Latest     records.ClockTime
	Hours      float64
}

// Label formats the entry as "name: HH:MM~HH:MM / H.HHh".
func (e Entry) Label() string {
	return fmt.Sprintf("%s: %s~%s / %sh", e.Name, e.Earliest.Short(), e.Latest.Short(), payroll.FormatHours(e.Hours))
}

// Day is the display data of one in-month cell.
type Day struct {
	Date    records.Date
	CellID  string
	Entries []Entry
}

// Label joins the entry labels, one per line.
func (d Day) Label() string {
	lines := make([]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		lines = append(lines, e.Label())
	}
	return strings.Join(lines, "\n")
}

// Summaries builds the display data of every day of the grid's month for
// the selected employees. Unknown or unnamed employees are left out, and so
// is any day on which an employee's shifts add up to zero hours. Entries
// keep the selection order.
func Summaries(ctx context.Context, src records.Reader, ids []int, grid MonthGrid) ([]Day, error) {
	days := grid.Days()
	out := make([]Day, len(days))
	index := make(map[records.Date]int, len(days))
	for i, d := range days {
		id, _ := grid.CellFor(d)
		out[i] = Day{Date: d, CellID: id, Entries: []Entry{}}
		index[d] = i
	}

	for _, id := range ids {
		e, ok, err := src.EmployeeByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok || e.Name == "" {
			continue
		}

		logs, err := src.WorkLogsForEmployeeForMonth(ctx, id, grid.Year, grid.Month)
		if err != nil {
			return nil, err
		}
		for _, d := range days {
			entry, worked := summarise(e, logs, d)
			if worked {
				i := index[d]
				out[i].Entries = append(out[i].Entries, entry)
			}
		}
	}
	return out, nil
}

func summarise(e records.Employee, logs []records.WorkLog, d records.Date) (Entry, bool) {
	entry := Entry{
		EmployeeID: e.ID,
		Name:       e.Name,
		Earliest:   records.NewClockTime(23, 59, 59),
		Latest:     records.NewClockTime(0, 0, 0),
	}
	for _, w := range logs {
		if !w.Date.Equal(d) {
			continue
		}
		entry.Hours += payroll.HoursWorked(w)
		if w.StartTime.IsValid() && w.StartTime.Before(entry.Earliest) {
			entry.Earliest = w.StartTime
		}
		if w.EndTime.IsValid() && w.EndTime.After(entry.Latest) {
			entry.Latest = w.EndTime
		}
	}
	return entry, entry.Hours > 0
}
