/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	shift data for demos. Each scenario creates employees and one week of
	shifts that exercise a specific payroll rule.

AVAILABLE SCENARIOS:

	weekday-fulltime: Mon-Fri 09:00-18:00, holiday pay earned
	overnight:        22:00-06:00 shifts crossing midnight
	below-threshold:  Just under 15 hours, no holiday pay
	team:             All of the above in one store

HOW SCENARIOS WORK:
 1. Reset the store (empty snapshot, ids restart at 1)
 2. Create employees
 3. Add shifts in the week starting on the anchor Monday

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "team", "week_of": "2025-03-03"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, monday)
 3. Add case to loadScenario

NOTE:

	Scenarios replace all data. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler and helpers
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/warp/shift-payroll/records"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "weekday-fulltime",
		Name:        "Weekday Full-Time",
		Description: "Kim works Mon-Fri 09:00-18:00 at 10,000/h: 45h, weekly holiday pay applies",
	},
	{
		ID:          "overnight",
		Name:        "Overnight Shifts",
		Description: "Lee works 22:00-06:00 Mon-Thu at 11,000/h: shifts cross midnight",
	},
	{
		ID:          "below-threshold",
		Name:        "Below Threshold",
		Description: "Park works just under 15h at 9,860/h: no weekly holiday pay",
	},
	{
		ID:          "team",
		Name:        "Team",
		Description: "Kim, Lee and Park together for aggregate payroll",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario replaces all data with a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	monday := records.Today()
	if req.WeekOf != "" {
		d, err := parseDate(req.WeekOf, "week_of")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid week_of", err)
			return
		}
		monday = d
	}
	monday = monday.WeekStart()

	if err := h.loadScenario(r.Context(), req.ScenarioID, monday); err != nil {
		if errors.Is(err, errUnknownScenario) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("%q", req.ScenarioID))
			return
		}
		h.Logger.Error("Failed to load scenario", zap.String("scenario", req.ScenarioID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.Logger.Info("Loaded scenario",
		zap.String("scenario", req.ScenarioID),
		zap.Stringer("week_of", monday))
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"week_of":  monday.String(),
	})
}

// ResetData clears all employees and shifts.
func (h *Handler) ResetData(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		h.writeStoreError(w, "Failed to reset data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

var errUnknownScenario = errors.New("unknown scenario")

func (h *Handler) loadScenario(ctx context.Context, id string, monday records.Date) error {
	var load func(context.Context, records.Date) error
	switch id {
	case "weekday-fulltime":
		load = h.loadWeekdayFulltimeScenario
	case "overnight":
		load = h.loadOvernightScenario
	case "below-threshold":
		load = h.loadBelowThresholdScenario
	case "team":
		load = h.loadTeamScenario
	default:
		return errUnknownScenario
	}

	if err := h.reset(ctx); err != nil {
		return err
	}
	if err := load(ctx, monday.WeekStart()); err != nil {
		return err
	}

	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
	return nil
}

func (h *Handler) reset(ctx context.Context) error {
	if err := h.Store.Restore(ctx, records.EmptySnapshot()); err != nil {
		return err
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	return nil
}

func (h *Handler) loadWeekdayFulltimeScenario(ctx context.Context, monday records.Date) error {
	kim, err := h.Store.AddEmployee(ctx, records.NewEmployee("Kim", 10000, "110-234-567890"))
	if err != nil {
		return err
	}
	for day := 0; day < 5; day++ {
		if err := h.addShift(ctx, kim.ID, monday.AddDays(day), "09:00", "18:00"); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadOvernightScenario(ctx context.Context, monday records.Date) error {
	lee, err := h.Store.AddEmployee(ctx, records.NewEmployee("Lee", 11000, "302-1111-2222-31"))
	if err != nil {
		return err
	}
	for day := 0; day < 4; day++ {
		if err := h.addShift(ctx, lee.ID, monday.AddDays(day), "22:00", "06:00"); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadBelowThresholdScenario(ctx context.Context, monday records.Date) error {
	park, err := h.Store.AddEmployee(ctx, records.NewEmployee("Park", 9860, ""))
	if err != nil {
		return err
	}
	shifts := []struct{ start, end string }{
		{"09:00", "14:00"},
		{"09:00", "14:00"},
		{"09:00", "13:59"},
	}
	for day, s := range shifts {
		if err := h.addShift(ctx, park.ID, monday.AddDays(day), s.start, s.end); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadTeamScenario(ctx context.Context, monday records.Date) error {
	for _, load := range []func(context.Context, records.Date) error{
		h.loadWeekdayFulltimeScenario,
		h.loadOvernightScenario,
		h.loadBelowThresholdScenario,
	} {
		if err := load(ctx, monday); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) addShift(ctx context.Context, employeeID int, date records.Date, start, end string) error {
	return h.Store.AddWorkLog(ctx, records.WorkLog{
		EmployeeID: employeeID,
		Date:       date,
		StartTime:  records.ParseClockTime(start),
		EndTime:    records.ParseClockTime(end),
	})
}
