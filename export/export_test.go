package export_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/shift-payroll/export"
	"github.com/warp/shift-payroll/payroll"
	"github.com/warp/shift-payroll/records"
	"github.com/warp/shift-payroll/records/store"
)

// weekTotals is one full-time week for Kim plus a short overnight for Lee.
func weekTotals(t *testing.T) payroll.Totals {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()

	kim, err := s.AddEmployee(ctx, records.NewEmployee("Kim", 10000, "110-123"))
	require.NoError(t, err)
	lee, err := s.AddEmployee(ctx, records.NewEmployee("Lee", 10000, "220-456"))
	require.NoError(t, err)

	monday := records.NewDate(2025, time.March, 3)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.AddWorkLog(ctx, records.WorkLog{
			EmployeeID: kim.ID, Date: monday.AddDays(i),
			StartTime: records.NewClockTime(9, 0, 0), EndTime: records.NewClockTime(18, 0, 0),
		}))
	}
	require.NoError(t, s.AddWorkLog(ctx, records.WorkLog{
		EmployeeID: lee.ID, Date: monday,
		StartTime: records.NewClockTime(22, 0, 0), EndTime: records.NewClockTime(2, 0, 0),
	}))

	totals, err := payroll.NewCalculator(s).Aggregate(ctx, []int{kim.ID, lee.ID}, payroll.WeekPeriod(monday))
	require.NoError(t, err)
	return totals
}

func TestRows(t *testing.T) {
	rows := export.Rows(weekTotals(t))

	require.Len(t, rows, 3)
	assert.Equal(t, export.Row{
		EmployeeID: "1", Name: "Kim", BankAccount: "110-123",
		From: "2025-03-03", To: "2025-03-09", Hours: "45.00", HourlyWage: 10000,
		BasicPay: 450000, WeeklyHolidayPay: 90000, Tax: 17820, NetPay: 522180,
	}, rows[0])

	// Lee: 4h, below threshold; 40000 basic, tax 1320
	assert.Equal(t, int64(40000), rows[1].BasicPay)
	assert.Equal(t, int64(0), rows[1].WeeklyHolidayPay)
	assert.Equal(t, int64(1320), rows[1].Tax)

	total := rows[2]
	assert.Equal(t, export.TotalLabel, total.Name)
	assert.Equal(t, "", total.EmployeeID)
	assert.Equal(t, "49.00", total.Hours)
	assert.Equal(t, int64(490000), total.BasicPay)
	assert.Equal(t, int64(19140), total.Tax)
	assert.Equal(t, int64(560860), total.NetPay)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, export.WriteCSV(&buf, export.Rows(weekTotals(t))))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "employee_id,name,bank_account,from,to,hours,hourly_wage,basic_pay,weekly_holiday_pay,tax,net_pay", lines[0])
	assert.Equal(t, "1,Kim,110-123,2025-03-03,2025-03-09,45.00,10000,450000,90000,17820,522180", lines[1])
	assert.True(t, strings.HasPrefix(lines[3], ",TOTAL,,"))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, export.Rows(weekTotals(t))))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, export.SheetName, f.GetSheetName(0))
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "employee_id", rows[0][0])
	assert.Equal(t, "net_pay", rows[0][10])
	assert.Equal(t, []string{"1", "Kim", "110-123", "2025-03-03", "2025-03-09", "45.00", "10000", "450000", "90000", "17820", "522180"}, rows[1])
	assert.Equal(t, export.TotalLabel, rows[3][1])
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)

	f, err = export.ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, export.FormatXLSX, f)

	_, err = export.ParseFormat("pdf")
	assert.Error(t, err)
}
