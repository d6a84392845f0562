package payroll

import (
	"fmt"
	"time"

	"github.com/warp/shift-payroll/records"
)

// =============================================================================
// PERIOD - The date range every figure is computed over
// =============================================================================

// Period is an inclusive date range [Start, End].
//
// Examples:
//   - A pay month: Mar 1 - Mar 31
//   - A single week: Mon - Sun
//   - Whatever range the user selected
type Period struct {
	Start records.Date
	End   records.Date
}

func NewPeriod(start, end records.Date) Period {
	return Period{Start: start, End: end}
}

// MonthPeriod covers the whole calendar month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{
		Start: records.NewDate(year, month, 1),
		End:   records.NewDate(year, month, records.DaysInMonth(year, month)),
	}
}

// WeekPeriod covers the Monday-to-Sunday week containing d.
func WeekPeriod(d records.Date) Period {
	start := d.WeekStart()
	return Period{Start: start, End: start.AddDays(6)}
}

// Validate rejects unset dates and a range that ends before it starts.
func (p Period) Validate() error {
	if !p.Start.IsValid() || !p.End.IsValid() {
		return fmt.Errorf("%w: period %s has an unset date", records.ErrInvalidRange, p)
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: %s", records.ErrInvalidRange, p)
	}
	return nil
}

// Empty reports whether the period contains no days. Invalid periods are
// empty, so every figure computed over them is zero.
func (p Period) Empty() bool {
	return p.Validate() != nil
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d records.Date) bool {
	if p.Empty() || !d.IsValid() {
		return false
	}
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns all days in the period in order.
func (p Period) Days() []records.Date {
	if p.Empty() {
		return nil
	}
	var days []records.Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
