package api

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-payroll/records"
	"github.com/warp/shift-payroll/records/store"
)

func TestAutosave_SavesOnInterval(t *testing.T) {
	var calls atomic.Int32
	s := NewAutosaveScheduler(func(context.Context) error {
		calls.Add(1)
		return nil
	}, 10*time.Millisecond, nil)

	s.Start()
	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "no saves after Stop")

	// second Stop is a no-op
	s.Stop()
}

func TestAutosave_DisabledWithoutInterval(t *testing.T) {
	var calls atomic.Int32
	s := NewAutosaveScheduler(func(context.Context) error {
		calls.Add(1)
		return nil
	}, 0, nil)

	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	assert.Zero(t, calls.Load())
	assert.Zero(t, s.Runs())
}

func TestAutosave_RunNowRecordsOutcome(t *testing.T) {
	failure := errors.New("disk full")
	fail := true
	s := NewAutosaveScheduler(func(context.Context) error {
		if fail {
			return failure
		}
		return nil
	}, time.Hour, nil)

	err := s.RunNow()
	assert.ErrorIs(t, err, failure)
	at, lastErr := s.LastRun()
	assert.False(t, at.IsZero())
	assert.ErrorIs(t, lastErr, failure)

	fail = false
	require.NoError(t, s.RunNow())
	_, lastErr = s.LastRun()
	assert.NoError(t, lastErr)
	assert.Equal(t, 2, s.Runs())
}

func TestAutosave_WritesDataFile(t *testing.T) {
	// GIVEN: A store with one shift and a scheduler saving to a file
	ctx := context.Background()
	mem := store.NewMemory()
	kim, err := mem.AddEmployee(ctx, records.NewEmployee("Kim", 10000, ""))
	require.NoError(t, err)
	require.NoError(t, mem.AddWorkLog(ctx, records.WorkLog{
		EmployeeID: kim.ID,
		Date:       monday,
		StartTime:  records.NewClockTime(9, 0, 0),
		EndTime:    records.NewClockTime(18, 0, 0),
	}))

	path := filepath.Join(t.TempDir(), "salary_data.json")
	s := NewAutosaveScheduler(func(ctx context.Context) error {
		return store.SaveFile(ctx, mem, path, nil)
	}, time.Hour, nil)

	// WHEN: Saving
	require.NoError(t, s.RunNow())

	// THEN: The file loads back into an equal store
	restored := store.NewMemory()
	require.NoError(t, restored.Load(path))
	want, err := mem.Snapshot(ctx)
	require.NoError(t, err)
	got, err := restored.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
