package records_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-payroll/records"
)

func TestSnapshot_GuardedNextID(t *testing.T) {
	tests := []struct {
		name string
		snap records.Snapshot
		want int
	}{
		{"empty keeps counter", records.Snapshot{NextEmployeeID: 4}, 4},
		{"counter ahead of ids", records.Snapshot{NextEmployeeID: 9, Employees: []records.Employee{{ID: 3}}}, 9},
		{"stale counter", records.Snapshot{NextEmployeeID: 2, Employees: []records.Employee{{ID: 1}, {ID: 5}}}, 6},
		{"counter equal to max id", records.Snapshot{NextEmployeeID: 5, Employees: []records.Employee{{ID: 5}}}, 6},
		{"only unassigned ids", records.Snapshot{NextEmployeeID: 0, Employees: []records.Employee{{ID: -1}}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snap.GuardedNextID())
		})
	}
}

func TestEncodeSnapshot_EmptyArrays(t *testing.T) {
	data, err := records.EncodeSnapshot(records.Snapshot{NextEmployeeID: 1})

	require.NoError(t, err)
	assert.JSONEq(t, `{"nextEmployeeId": 1, "employees": [], "worklogs": []}`, string(data))
}

func TestDecodeSnapshot_RoundTrip(t *testing.T) {
	in := records.Snapshot{
		NextEmployeeID: 3,
		Employees: []records.Employee{
			{ID: 1, Name: "김민수", HourlyWage: 10000, BankAccount: "110-123-456789"},
			{ID: 2, Name: "Lee", HourlyWage: 9860, BankAccount: ""},
		},
		WorkLogs: []records.WorkLog{
			{EmployeeID: 1, Date: records.NewDate(2025, time.March, 3), StartTime: records.NewClockTime(22, 0, 0), EndTime: records.NewClockTime(6, 0, 0)},
		},
	}

	data, err := records.EncodeSnapshot(in)
	require.NoError(t, err)
	out, err := records.DecodeSnapshot(data)
	require.NoError(t, err)

	assert.Equal(t, in, out)
}

func TestDecodeSnapshot_Lenient(t *testing.T) {
	// GIVEN: a document with missing, mistyped and non-object entries
	doc := `{
		"employees": [
			{"name": "No Id", "hourlyWage": "lots"},
			{"id": 2.5, "name": 7, "bankAccount": "x"},
			"garbage"
		],
		"worklogs": [
			{"date": "2025-13-40", "startTime": "09:00:00"}
		],
		"extra": true
	}`

	// WHEN: decoding
	snap, err := records.DecodeSnapshot([]byte(doc))

	// THEN: every field falls back to its default
	require.NoError(t, err)
	assert.Equal(t, 1, snap.NextEmployeeID)
	assert.Equal(t, []records.Employee{
		{ID: -1, Name: "No Id"},
		{ID: -1, BankAccount: "x"},
		{ID: -1},
	}, snap.Employees)
	require.Len(t, snap.WorkLogs, 1)
	assert.Equal(t, -1, snap.WorkLogs[0].EmployeeID)
	assert.False(t, snap.WorkLogs[0].Date.IsValid())
	assert.Equal(t, records.NewClockTime(9, 0, 0), snap.WorkLogs[0].StartTime)
	assert.False(t, snap.WorkLogs[0].EndTime.IsValid())
}

func TestDecodeSnapshot_MissingArraysAreEmpty(t *testing.T) {
	snap, err := records.DecodeSnapshot([]byte(`{"nextEmployeeId": 5, "worklogs": {}}`))

	require.NoError(t, err)
	assert.Equal(t, 5, snap.NextEmployeeID)
	assert.NotNil(t, snap.Employees)
	assert.Empty(t, snap.Employees)
	assert.Empty(t, snap.WorkLogs)
}

func TestDecodeSnapshot_RejectsNonObject(t *testing.T) {
	for _, doc := range []string{``, `[]`, `null`, `"text"`, `{"employees": [`} {
		_, err := records.DecodeSnapshot([]byte(doc))
		assert.Error(t, err, doc)
	}
}

func TestPersistenceError_Unwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&records.PersistenceError{Op: records.ErrSaveFailed, Path: "/tmp/x.json", Err: cause})

	assert.ErrorIs(t, err, records.ErrSaveFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, records.ErrLoadFailed)
	assert.Contains(t, err.Error(), "/tmp/x.json")
}

func TestErrorHelpers(t *testing.T) {
	dup := &records.DuplicateShiftError{EmployeeID: 1, Date: records.NewDate(2025, time.March, 3)}

	assert.True(t, records.IsClientError(dup))
	assert.True(t, records.IsClientError(records.ErrInvalidRange))
	assert.False(t, records.IsClientError(records.ErrEmployeeNotFound))
	assert.True(t, records.IsNotFound(records.ErrEmployeeNotFound))
	assert.False(t, records.IsNotFound(dup))
}
