/*
Package payroll derives hours and pay from the shifts held in a record store.

PURPOSE:
  Stateless figures over a records.Reader: hours worked, Monday-anchored
  weekly buckets, weekly holiday pay, basic pay, withholding tax and net pay,
  for one employee or a selection of employees over an inclusive period.

KEY CONCEPTS:
  - Week bucket: hours of the days in the period grouped by the Monday on or
    before each day. Only the first shift recorded for a day counts.
  - Weekly holiday pay: every bucket of at least 15 hours earns
    wage × 0.2 × bucket hours. Shorter weeks earn nothing.
  - Settlement: tax is 3.3% of basic + holiday pay and is always computed
    once from the final totals, including for aggregates.

PRECISION:
  Figures accumulate as float64. Rounding happens only at presentation
  time, truncating to whole currency units (see Display).

SEE ALSO:
  - period.go: Period
  - ../records/store.go: Reader
  - ../calendar: per-day display data built from the same store
*/
package payroll

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/warp/shift-payroll/records"
)

const (
	// WeeklyHolidayThreshold is the minimum hours in a week, inclusive, for
	// that week to earn weekly holiday pay.
	WeeklyHolidayThreshold = 15.0

	// WeeklyHolidayRate multiplies wage × week hours for an eligible week.
	WeeklyHolidayRate = 0.2

	// TaxRate is the flat withholding rate on basic + holiday pay.
	TaxRate = 0.033
)

// =============================================================================
// PURE FIGURES
// =============================================================================

// HoursWorked is the length of one shift, wrapping once past midnight.
func HoursWorked(w records.WorkLog) float64 {
	return records.ShiftHours(w.StartTime, w.EndTime)
}

// WeekHours is one Monday-anchored bucket.
type WeekHours struct {
	WeekStart records.Date
	Hours     float64
}

// Eligible reports whether the week earns weekly holiday pay.
func (w WeekHours) Eligible() bool {
	return w.Hours >= WeeklyHolidayThreshold
}

// HolidayPayForWeeks sums wage × rate × hours over the eligible weeks.
func HolidayPayForWeeks(hourlyWage int, weeks []WeekHours) float64 {
	total := 0.0
	for _, w := range weeks {
		if w.Eligible() {
			total += float64(hourlyWage) * WeeklyHolidayRate * w.Hours
		}
	}
	return total
}

// BucketByWeek groups the first shift of each day in p by week. Buckets are
// returned in date order; weeks without shifts are absent.
func BucketByWeek(logs []records.WorkLog, p Period) []WeekHours {
	seen := make(map[records.Date]bool)
	byWeek := make(map[records.Date]float64)
	for _, w := range logs {
		if !p.Contains(w.Date) || seen[w.Date] {
			continue
		}
		seen[w.Date] = true
		byWeek[w.Date.WeekStart()] += HoursWorked(w)
	}

	weeks := make([]WeekHours, 0, len(byWeek))
	for start, hours := range byWeek {
		weeks = append(weeks, WeekHours{WeekStart: start, Hours: hours})
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].WeekStart.Before(weeks[j].WeekStart)
	})
	return weeks
}

// Settle computes tax and net pay from basic and holiday pay.
func Settle(basicPay, weeklyHolidayPay float64) (tax, net float64) {
	gross := basicPay + weeklyHolidayPay
	tax = gross * TaxRate
	return tax, gross - tax
}

// =============================================================================
// CALCULATOR - Figures read from a store
// =============================================================================

// Calculator reads shifts and wages from a store. It holds no state of its
// own; the same Calculator can serve concurrent callers.
type Calculator struct {
	source records.Reader
	logger *zap.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger routes calculator diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewCalculator(source records.Reader, opts ...Option) *Calculator {
	c := &Calculator{source: source, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// shifts returns the employee's shifts in p. Empty periods read nothing.
func (c *Calculator) shifts(ctx context.Context, employeeID int, p Period) ([]records.WorkLog, error) {
	if p.Empty() {
		return nil, nil
	}
	return c.source.WorkLogsInRange(ctx, employeeID, p.Start, p.End)
}

// TotalHours sums every shift of the employee dated in p.
func (c *Calculator) TotalHours(ctx context.Context, employeeID int, p Period) (float64, error) {
	logs, err := c.shifts(ctx, employeeID, p)
	if err != nil {
		return 0, err
	}
	return sumHours(logs), nil
}

// WeeklyHours buckets the employee's shifts in p by week.
func (c *Calculator) WeeklyHours(ctx context.Context, employeeID int, p Period) ([]WeekHours, error) {
	logs, err := c.shifts(ctx, employeeID, p)
	if err != nil {
		return nil, err
	}
	return BucketByWeek(logs, p), nil
}

// WeeklyHolidayPay is the holiday pay earned in p. An unknown employee earns 0.
func (c *Calculator) WeeklyHolidayPay(ctx context.Context, employeeID int, p Period) (float64, error) {
	e, ok, err := c.source.EmployeeByID(ctx, employeeID)
	if err != nil || !ok {
		return 0, err
	}
	weeks, err := c.WeeklyHours(ctx, employeeID, p)
	if err != nil {
		return 0, err
	}
	return HolidayPayForWeeks(e.HourlyWage, weeks), nil
}

// Calculate builds the full breakdown for one employee. An unknown id is
// records.ErrEmployeeNotFound.
func (c *Calculator) Calculate(ctx context.Context, employeeID int, p Period) (Breakdown, error) {
	e, ok, err := c.source.EmployeeByID(ctx, employeeID)
	if err != nil {
		return Breakdown{}, err
	}
	if !ok {
		return Breakdown{}, records.ErrEmployeeNotFound
	}

	logs, err := c.shifts(ctx, employeeID, p)
	if err != nil {
		return Breakdown{}, err
	}
	return breakdownFor(e, p, logs), nil
}

// Aggregate combines the breakdowns of ids. Unknown ids are skipped and
// reported; repeated ids count once. Tax and net are settled once from the
// summed basic and holiday pay.
func (c *Calculator) Aggregate(ctx context.Context, ids []int, p Period) (Totals, error) {
	totals := Totals{Period: p, Lines: []Breakdown{}}
	counted := make(map[int]bool, len(ids))

	for _, id := range ids {
		if counted[id] {
			continue
		}
		counted[id] = true

		b, err := c.Calculate(ctx, id, p)
		if records.IsNotFound(err) {
			c.logger.Warn("aggregate: skipping unknown employee", zap.Int("employee_id", id))
			totals.Skipped = append(totals.Skipped, id)
			continue
		}
		if err != nil {
			return Totals{}, err
		}

		totals.Lines = append(totals.Lines, b)
		totals.TotalHours += b.TotalHours
		totals.BasicPay += b.BasicPay
		totals.WeeklyHolidayPay += b.WeeklyHolidayPay
	}

	totals.Tax, totals.NetPay = Settle(totals.BasicPay, totals.WeeklyHolidayPay)
	return totals, nil
}

func breakdownFor(e records.Employee, p Period, logs []records.WorkLog) Breakdown {
	b := Breakdown{
		Employee:   e,
		Period:     p,
		Shifts:     len(logs),
		TotalHours: sumHours(logs),
		Weeks:      BucketByWeek(logs, p),
	}
	b.BasicPay = b.TotalHours * float64(e.HourlyWage)
	b.WeeklyHolidayPay = HolidayPayForWeeks(e.HourlyWage, b.Weeks)
	b.Tax, b.NetPay = Settle(b.BasicPay, b.WeeklyHolidayPay)
	return b
}

func sumHours(logs []records.WorkLog) float64 {
	total := 0.0
	for _, w := range logs {
		total += HoursWorked(w)
	}
	return total
}
