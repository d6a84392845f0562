package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/shift-payroll/records"
)

// =============================================================================
// RESULTS
// =============================================================================

// Breakdown is the pay of one employee over a period.
type Breakdown struct {
	Employee         records.Employee
	Period           Period
	Shifts           int
	TotalHours       float64
	Weeks            []WeekHours
	BasicPay         float64
	WeeklyHolidayPay float64
	Tax              float64
	NetPay           float64
}

func (b Breakdown) Display() Display {
	return displayOf(b.BasicPay, b.WeeklyHolidayPay, b.Tax, b.NetPay)
}

// Totals is the combined pay of a selection of employees.
type Totals struct {
	Period           Period
	Lines            []Breakdown
	Skipped          []int
	TotalHours       float64
	BasicPay         float64
	WeeklyHolidayPay float64
	Tax              float64
	NetPay           float64
}

func (t Totals) Display() Display {
	return displayOf(t.BasicPay, t.WeeklyHolidayPay, t.Tax, t.NetPay)
}

// Names lists the included employees in selection order.
func (t Totals) Names() []string {
	names := make([]string, 0, len(t.Lines))
	for _, l := range t.Lines {
		names = append(names, l.Employee.Name)
	}
	return names
}

// =============================================================================
// PRESENTATION
// =============================================================================

// Display holds amounts truncated to whole currency units.
type Display struct {
	BasicPay         int64
	WeeklyHolidayPay int64
	Tax              int64
	NetPay           int64
}

func displayOf(basic, holiday, tax, net float64) Display {
	return Display{
		BasicPay:         Truncate(basic),
		WeeklyHolidayPay: Truncate(holiday),
		Tax:              Truncate(tax),
		NetPay:           Truncate(net),
	}
}

// Truncate drops the fractional part of an amount, toward zero.
func Truncate(amount float64) int64 {
	return decimal.NewFromFloat(amount).Truncate(0).IntPart()
}

// FormatHours renders hours with two decimals.
func FormatHours(hours float64) string {
	return decimal.NewFromFloat(hours).StringFixed(2)
}
