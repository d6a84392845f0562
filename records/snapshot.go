package records

import (
	"encoding/json"
	"fmt"
	"math"
)

// =============================================================================
// SNAPSHOT - The whole store as one document
// =============================================================================

// Snapshot is the complete state of a store. Its JSON form is the persisted
// file format:
//
//	{
//	  "nextEmployeeId": 3,
//	  "employees": [{"id": 1, "name": "...", "hourlyWage": 10000, "bankAccount": "..."}],
//	  "worklogs":  [{"employeeId": 1, "date": "2025-03-03", "startTime": "09:00:00", "endTime": "18:00:00"}]
//	}
type Snapshot struct {
	NextEmployeeID int        `json:"nextEmployeeId"`
	Employees      []Employee `json:"employees"`
	WorkLogs       []WorkLog  `json:"worklogs"`
}

// EmptySnapshot is the state of a freshly constructed store.
func EmptySnapshot() Snapshot {
	return Snapshot{NextEmployeeID: 1, Employees: []Employee{}, WorkLogs: []WorkLog{}}
}

// GuardedNextID is the counter a store must continue from after restoring s:
// never lower than one past the largest employee id present, so a stale
// persisted counter cannot hand out an id that is already taken.
func (s Snapshot) GuardedNextID() int {
	maxID := 0
	for _, e := range s.Employees {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	if s.NextEmployeeID <= maxID {
		return maxID + 1
	}
	return s.NextEmployeeID
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		NextEmployeeID: s.NextEmployeeID,
		Employees:      make([]Employee, len(s.Employees)),
		WorkLogs:       make([]WorkLog, len(s.WorkLogs)),
	}
	copy(out.Employees, s.Employees)
	copy(out.WorkLogs, s.WorkLogs)
	return out
}

// EncodeSnapshot renders s as indented JSON.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	if s.Employees == nil {
		s.Employees = []Employee{}
	}
	if s.WorkLogs == nil {
		s.WorkLogs = []WorkLog{}
	}
	return json.MarshalIndent(s, "", "    ")
}

// DecodeSnapshot parses a persisted document leniently. Only input that is not
// a JSON object is an error. Missing or mistyped fields fall back to
// defaults: nextEmployeeId 1, employee id -1, worklog employeeId -1, empty
// strings, zero wage, invalid dates and times. Non-array employees/worklogs
// are treated as empty.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return Snapshot{}, fmt.Errorf("not a JSON object: %w", err)
	}
	if root == nil {
		return Snapshot{}, fmt.Errorf("not a JSON object: null document")
	}

	snap := EmptySnapshot()
	snap.NextEmployeeID = intField(root, "nextEmployeeId", 1)

	for _, obj := range objectArray(root, "employees") {
		snap.Employees = append(snap.Employees, Employee{
			ID:          intField(obj, "id", UnassignedID),
			Name:        stringField(obj, "name"),
			HourlyWage:  intField(obj, "hourlyWage", 0),
			BankAccount: stringField(obj, "bankAccount"),
		})
	}

	for _, obj := range objectArray(root, "worklogs") {
		snap.WorkLogs = append(snap.WorkLogs, WorkLog{
			EmployeeID: intField(obj, "employeeId", UnassignedID),
			Date:       ParseDate(stringField(obj, "date")),
			StartTime:  ParseClockTime(stringField(obj, "startTime")),
			EndTime:    ParseClockTime(stringField(obj, "endTime")),
		})
	}

	return snap, nil
}

func objectArray(obj map[string]json.RawMessage, key string) []map[string]json.RawMessage {
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(item, &m); err != nil || m == nil {
			// non-object entries decode as an all-defaults record
			m = map[string]json.RawMessage{}
		}
		out = append(out, m)
	}
	return out
}

func intField(obj map[string]json.RawMessage, key string, def int) int {
	raw, ok := obj[key]
	if !ok {
		return def
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return def
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(f)
}

func stringField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
