// Package export renders payroll totals as CSV or XLSX for transfer to a
// bank or accountant.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/warp/shift-payroll/payroll"
)

// Format is an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx", case-insensitively. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// =============================================================================
// ROWS
// =============================================================================

// TotalLabel names the summary row.
const TotalLabel = "TOTAL"

// Row is one exported line. Amounts are whole currency units.
type Row struct {
	EmployeeID       string `csv:"employee_id"`
	Name             string `csv:"name"`
	BankAccount      string `csv:"bank_account"`
	From             string `csv:"from"`
	To               string `csv:"to"`
	Hours            string `csv:"hours"`
	HourlyWage       int    `csv:"hourly_wage"`
	BasicPay         int64  `csv:"basic_pay"`
	WeeklyHolidayPay int64  `csv:"weekly_holiday_pay"`
	Tax              int64  `csv:"tax"`
	NetPay           int64  `csv:"net_pay"`
}

var headers = []string{
	"employee_id", "name", "bank_account", "from", "to", "hours",
	"hourly_wage", "basic_pay", "weekly_holiday_pay", "tax", "net_pay",
}

func (r Row) values() []any {
	return []any{
		r.EmployeeID, r.Name, r.BankAccount, r.From, r.To, r.Hours,
		r.HourlyWage, r.BasicPay, r.WeeklyHolidayPay, r.Tax, r.NetPay,
	}
}

// Rows lists one row per included employee followed by the total row. The
// total row carries the aggregate's own tax and net, not column sums.
func Rows(t payroll.Totals) []Row {
	from, to := t.Period.Start.String(), t.Period.End.String()

	rows := make([]Row, 0, len(t.Lines)+1)
	for _, b := range t.Lines {
		d := b.Display()
		rows = append(rows, Row{
			EmployeeID:       strconv.Itoa(b.Employee.ID),
			Name:             b.Employee.Name,
			BankAccount:      b.Employee.BankAccount,
			From:             from,
			To:               to,
			Hours:            payroll.FormatHours(b.TotalHours),
			HourlyWage:       b.Employee.HourlyWage,
			BasicPay:         d.BasicPay,
			WeeklyHolidayPay: d.WeeklyHolidayPay,
			Tax:              d.Tax,
			NetPay:           d.NetPay,
		})
	}

	d := t.Display()
	rows = append(rows, Row{
		Name:             TotalLabel,
		From:             from,
		To:               to,
		Hours:            payroll.FormatHours(t.TotalHours),
		BasicPay:         d.BasicPay,
		WeeklyHolidayPay: d.WeeklyHolidayPay,
		Tax:              d.Tax,
		NetPay:           d.NetPay,
	})
	return rows
}

// =============================================================================
// WRITERS
// =============================================================================

// Write renders rows in format f.
func Write(w io.Writer, f Format, rows []Row) error {
	if f == FormatXLSX {
		return WriteXLSX(w, rows)
	}
	return WriteCSV(w, rows)
}

// WriteCSV writes a header line and one line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	return gocsv.Marshal(rows, w)
}

// SheetName is the worksheet the XLSX export writes to.
const SheetName = "Payroll"

// WriteXLSX writes a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	if err := setRow(f, 1, toAny(headers)); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setRow(f, i+2, r.values()); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(SheetName, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
