package sim

import (
	"math"
	"testing"
)

func TestPercentile_EmptyIsNaN(t *testing.T) {
	if got := Percentile(nil, 50); !math.IsNaN(got) {
		t.Errorf("Percentile(nil, 50) = %v, want NaN", got)
	}
}

func TestPercentile_SingleValue(t *testing.T) {
	for _, p := range []float64{0, 1, 50, 99, 100} {
		if got := Percentile([]float64{7}, p); got != 7 {
			t.Errorf("Percentile([7], %v) = %v, want 7", p, got)
		}
	}
}

func TestPercentile_BoundaryClamps(t *testing.T) {
	vals := []float64{5, 1, 9, 3}
	if got := Percentile(vals, -10); got != 1 {
		t.Errorf("Percentile(p<=0) = %v, want min 1", got)
	}
	if got := Percentile(vals, 250); got != 9 {
		t.Errorf("Percentile(p>=100) = %v, want max 9", got)
	}
}

func TestPercentile_Monotone(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	prev := Percentile(vals, 0)
	for p := 1.0; p <= 100; p++ {
		got := Percentile(vals, p)
		if got < prev {
			t.Fatalf("Percentile not monotone at p=%v: %v < %v", p, got, prev)
		}
		prev = got
	}
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	vals := []float64{0, 10}
	if got := Percentile(vals, 50); got != 5 {
		t.Errorf("Percentile([0,10], 50) = %v, want 5", got)
	}
}

func TestAggregateRuns_FiltersFailedRuns(t *testing.T) {
	m := &Model{Version: 1}
	runs := []RunResult{
		{RunID: 0, MakespanMS: 10, CriticalPathTasks: "a"},
		{RunID: 1, Failed: true, FailureReason: "boom"},
		{RunID: 2, MakespanMS: 20, CriticalPathTasks: "a"},
	}

	summary := AggregateRuns(m, runs)
	if summary.RunsRequested != 3 || summary.RunsOK != 2 || summary.RunsFailed != 1 {
		t.Fatalf("unexpected run counts: %+v", summary)
	}
	if summary.LatencyMS.Makespan.P50 != 15 {
		t.Errorf("makespan p50 = %v, want 15", summary.LatencyMS.Makespan.P50)
	}
}

func TestAggregateRuns_TopPathsOrdering(t *testing.T) {
	m := &Model{Version: 1}
	runs := []RunResult{
		{CriticalPathTasks: "a"},
		{CriticalPathTasks: "b"},
		{CriticalPathTasks: "b"},
		{CriticalPathTasks: "a"},
		{CriticalPathTasks: "c"},
	}

	summary := AggregateRuns(m, runs)
	if len(summary.CriticalPath.TopPaths) != 3 {
		t.Fatalf("TopPaths = %+v, want 3 entries", summary.CriticalPath.TopPaths)
	}
	// "a" and "b" tie at count 2; lexicographic order breaks the tie.
	if summary.CriticalPath.TopPaths[0].Tasks != "a" || summary.CriticalPath.TopPaths[0].Count != 2 {
		t.Errorf("TopPaths[0] = %+v, want a:2", summary.CriticalPath.TopPaths[0])
	}
	if summary.CriticalPath.TopPaths[1].Tasks != "b" || summary.CriticalPath.TopPaths[1].Count != 2 {
		t.Errorf("TopPaths[1] = %+v, want b:2", summary.CriticalPath.TopPaths[1])
	}
	if summary.CriticalPath.TopPaths[2].Tasks != "c" || summary.CriticalPath.TopPaths[2].Count != 1 {
		t.Errorf("TopPaths[2] = %+v, want c:1", summary.CriticalPath.TopPaths[2])
	}
}

func TestAddTaskMetadata_SkipsV1(t *testing.T) {
	m := &Model{
		Version: 1,
		Tasks:   map[string]TaskDef{"t": {Meta: &TaskMeta{Category: "x"}}},
	}
	summary := Summary{}
	got := AddTaskMetadata(summary, m)
	if got.TaskMetadata != nil {
		t.Errorf("TaskMetadata = %+v, want nil for v1", got.TaskMetadata)
	}
}

func TestAddTaskMetadata_PopulatesV2(t *testing.T) {
	m := &Model{
		Version: 2,
		Tasks:   map[string]TaskDef{"t": {Meta: &TaskMeta{Category: "x"}}},
	}
	summary := AddTaskMetadata(Summary{}, m)
	if summary.TaskMetadata == nil || summary.TaskMetadata["t"].Category != "x" {
		t.Errorf("TaskMetadata = %+v, want t:{Category:x}", summary.TaskMetadata)
	}
}
