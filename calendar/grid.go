/*
Package calendar maps the days of a month onto a fixed display grid and
summarises the shifts worked on each day.

PURPOSE:
  The presentation layer renders a 6×7 month view. This package decides
  which cell shows which date and what text goes in it, so a renderer only
  has to look cells up by id.

KEY CONCEPTS:
  - Cell id: "row_col", rows 1-6 top to bottom, columns 0-6 Monday to
    Sunday. Cells outside the month carry no date.
  - Day summary: per selected employee, earliest start ~ latest end and the
    hours worked that day, e.g. "Kim: 09:00~18:00 / 9.00h".

SEE ALSO:
  - summary.go: Summaries
  - ../payroll: hours arithmetic
*/
package calendar

import (
	"fmt"
	"time"

	"github.com/warp/shift-payroll/records"
)

const (
	Rows = 6
	Cols = 7
)

// Cell is one slot of the month view.
type Cell struct {
	ID   string
	Row  int // 1-based
	Col  int // 0 = Monday
	Date records.Date
}

// InMonth reports whether the cell shows a date.
func (c Cell) InMonth() bool { return c.Date.IsValid() }

// CellID formats the stable id of a grid position.
func CellID(row, col int) string {
	return fmt.Sprintf("%d_%d", row, col)
}

// MonthGrid lays out one month, Monday first.
type MonthGrid struct {
	Year  int
	Month time.Month
	cells []Cell
	ids   map[records.Date]string
	dates map[string]records.Date
}

func NewMonthGrid(year int, month time.Month) MonthGrid {
	first := records.NewDate(year, month, 1)
	// normalise overflowing months, e.g. month 13
	year, month = first.Year(), first.Month()

	g := MonthGrid{
		Year:  year,
		Month: month,
		cells: make([]Cell, 0, Rows*Cols),
		ids:   make(map[records.Date]string),
		dates: make(map[string]records.Date),
	}

	offset := first.ISOWeekday() - 1
	days := records.DaysInMonth(year, month)
	for row := 1; row <= Rows; row++ {
		for col := 0; col < Cols; col++ {
			cell := Cell{ID: CellID(row, col), Row: row, Col: col}
			day := (row-1)*Cols + col - offset + 1
			if day >= 1 && day <= days {
				cell.Date = records.NewDate(year, month, day)
				g.ids[cell.Date] = cell.ID
				g.dates[cell.ID] = cell.Date
			}
			g.cells = append(g.cells, cell)
		}
	}
	return g
}

// Cells returns all 42 cells in row-major order.
func (g MonthGrid) Cells() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// Days returns the dates of the month in order.
func (g MonthGrid) Days() []records.Date {
	out := make([]records.Date, 0, len(g.ids))
	for _, c := range g.cells {
		if c.InMonth() {
			out = append(out, c.Date)
		}
	}
	return out
}

// CellFor returns the id of the cell showing d.
func (g MonthGrid) CellFor(d records.Date) (string, bool) {
	id, ok := g.ids[d]
	return id, ok
}

// DateFor returns the date shown in the cell, if any.
func (g MonthGrid) DateFor(id string) (records.Date, bool) {
	d, ok := g.dates[id]
	return d, ok
}

func (g MonthGrid) Previous() MonthGrid { return NewMonthGrid(g.Year, g.Month-1) }
func (g MonthGrid) Next() MonthGrid     { return NewMonthGrid(g.Year, g.Month+1) }

// Title formats the month for a header, e.g. "2025-03".
func (g MonthGrid) Title() string {
	return fmt.Sprintf("%04d-%02d", g.Year, int(g.Month))
}
