/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario correctly sets up the expected state:
	- Employees are created with fresh ids
	- Shifts land in the anchor week
	- Weekly holiday pay eligibility matches the scenario's intent

These tests ensure scenarios work correctly and can be used as integration tests.
*/
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-payroll/payroll"
	"github.com/warp/shift-payroll/records"
)

func TestScenario_WeekdayFulltime(t *testing.T) {
	// GIVEN: Weekday full-time scenario
	// WHEN: Loading the scenario
	// THEN: Kim has five 9-hour shifts and earns holiday pay

	h, _ := setupTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadScenario(ctx, "weekday-fulltime", monday))

	employees, err := h.Store.Employees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Kim", employees[0].Name)

	weeks, err := h.Calculator.WeeklyHours(ctx, 1, payroll.WeekPeriod(monday))
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	assert.Equal(t, 45.0, weeks[0].Hours)
	assert.True(t, weeks[0].Eligible())
}

func TestScenario_Overnight(t *testing.T) {
	h, _ := setupTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadScenario(ctx, "overnight", monday))

	logs, err := h.Store.WorkLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 4)
	for _, w := range logs {
		assert.Equal(t, 8.0, w.HoursWorked())
	}

	pay, err := h.Calculator.WeeklyHolidayPay(ctx, 1, payroll.WeekPeriod(monday))
	require.NoError(t, err)
	assert.Equal(t, 70400.0, pay)
}

func TestScenario_BelowThreshold(t *testing.T) {
	h, _ := setupTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadScenario(ctx, "below-threshold", monday))

	hours, err := h.Calculator.TotalHours(ctx, 1, payroll.WeekPeriod(monday))
	require.NoError(t, err)
	assert.Less(t, hours, payroll.WeeklyHolidayThreshold)
	assert.Greater(t, hours, 14.9)

	pay, err := h.Calculator.WeeklyHolidayPay(ctx, 1, payroll.WeekPeriod(monday))
	require.NoError(t, err)
	assert.Zero(t, pay)
}

func TestScenario_ReloadResetsIDs(t *testing.T) {
	// GIVEN: A loaded team scenario
	// WHEN: Loading another scenario
	// THEN: Old data is gone and ids restart at 1

	h, _ := setupTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadScenario(ctx, "team", monday))
	require.NoError(t, h.loadScenario(ctx, "overnight", records.NewDate(2025, 3, 12)))

	employees, err := h.Store.Employees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, 1, employees[0].ID)
	assert.Equal(t, "Lee", employees[0].Name)

	// week_of mid-week is anchored to its Monday
	logs, err := h.Store.WorkLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", logs[0].Date.String())
}

func TestScenario_UnknownLeavesDataAlone(t *testing.T) {
	h, _ := setupTestHandler(t)
	ctx := context.Background()
	require.NoError(t, h.loadScenario(ctx, "team", monday))

	err := h.loadScenario(ctx, "payday", monday)

	assert.ErrorIs(t, err, errUnknownScenario)
	employees, err := h.Store.Employees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 3)
}

func TestScenarioEndpoints(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ScenarioDTO](t, rec), len(scenarios))

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null\n", rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "team", WeekOf: "2025-03-05"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-03-03", decode[map[string]string](t, rec)["week_of"])

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "team", decode[ScenarioDTO](t, rec).ID)

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "team", WeekOf: "March"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/employees", nil)
	assert.Equal(t, "[]\n", rec.Body.String())
	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null\n", rec.Body.String())
}
