// Package testutil provides shared test infrastructure for the
// latencylab simulator. It consolidates golden-scenario types and
// assertion helpers used across sim/ and engine/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset is the structure of testdata/scenarios.json: a batch of
// named model scenarios, each with the aggregate outcome expected after
// simulating it.
type GoldenDataset struct {
	Scenarios []GoldenScenario `json:"scenarios"`
}

// GoldenScenario pins one model (given inline as a decoded JSON object,
// matching what sim.Parse accepts) to the run parameters and expected
// summary values a correct executor must reproduce exactly.
type GoldenScenario struct {
	Name           string         `json:"name"`
	Model          map[string]any `json:"model"`
	Runs           int            `json:"runs"`
	Seed           int64          `json:"seed"`
	MaxTasksPerRun int            `json:"max_tasks_per_run"`
	Want           GoldenSummary  `json:"want"`
}

// GoldenSummary captures the subset of sim.Summary a scenario pins down.
// Every field is compared exactly, so scenarios use fixed durations only.
// For scenarios with failed runs only the run counts are compared.
type GoldenSummary struct {
	RunsOK            int     `json:"runs_ok"`
	RunsFailed        int     `json:"runs_failed"`
	MakespanP50       float64 `json:"makespan_p50"`
	CriticalPathTasks string  `json:"critical_path_tasks"`
}

// LoadGoldenDataset loads the golden dataset from the testdata
// directory. The path is resolved relative to this source file:
// internal/testutil/ -> testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get current file path")
	}
	// internal/testutil/ -> internal/ -> repo root -> testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "testdata", "scenarios.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
