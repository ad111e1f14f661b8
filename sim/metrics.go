package sim

import (
	"math"
	"sort"
)

// percentiles are always reported at these four ranks.
var summaryPercentiles = []int{50, 90, 95, 99}

// Percentile computes the p-th percentile of values using linear
// interpolation between the closest ranks. p<=0 returns the minimum,
// p>=100 the maximum, and an empty input returns NaN.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	n := len(sorted)
	pos := (p / 100.0) * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// PercentileSet is the {p50,p90,p95,p99} shape used throughout Summary.
type PercentileSet struct {
	P50 float64
	P90 float64
	P95 float64
	P99 float64
}

func percentileSet(values []float64) PercentileSet {
	return PercentileSet{
		P50: Percentile(values, 50),
		P90: Percentile(values, 90),
		P95: Percentile(values, 95),
		P99: Percentile(values, 99),
	}
}

// LatencyMetrics groups the three timing distributions tracked per run.
type LatencyMetrics struct {
	FirstUI  PercentileSet
	LastUI   PercentileSet
	Makespan PercentileSet
}

// CriticalPathEntry is one ranked entry in the top-paths table.
type CriticalPathEntry struct {
	Tasks string
	Count int
}

// CriticalPathMetrics holds up to ten of the most common critical paths
// across non-failed runs.
type CriticalPathMetrics struct {
	TopPaths []CriticalPathEntry
}

// Summary is the aggregate shape produced by AggregateRuns.
type Summary struct {
	ModelVersion  int
	RunsRequested int
	RunsOK        int
	RunsFailed    int
	LatencyMS     LatencyMetrics
	CriticalPath  CriticalPathMetrics

	// TaskMetadata is populated by AddTaskMetadata for v2 models that
	// carry task meta; nil otherwise.
	TaskMetadata map[string]TaskMeta
}

// AggregateRuns computes the summary shape over a batch of RunResults.
func AggregateRuns(m *Model, runs []RunResult) Summary {
	var ok []RunResult
	for _, r := range runs {
		if !r.Failed {
			ok = append(ok, r)
		}
	}

	var firstUI, lastUI, makespans []float64
	for _, r := range ok {
		if r.FirstUIEventTimeMS != nil {
			firstUI = append(firstUI, *r.FirstUIEventTimeMS)
		}
		if r.LastUIEventTimeMS != nil {
			lastUI = append(lastUI, *r.LastUIEventTimeMS)
		}
		makespans = append(makespans, r.MakespanMS)
	}

	counts := map[string]int{}
	for _, r := range ok {
		if r.CriticalPathTasks != "" {
			counts[r.CriticalPathTasks]++
		}
	}
	paths := make([]string, 0, len(counts))
	for p := range counts {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		if counts[paths[i]] != counts[paths[j]] {
			return counts[paths[i]] > counts[paths[j]]
		}
		return paths[i] < paths[j]
	})
	if len(paths) > 10 {
		paths = paths[:10]
	}
	topPaths := make([]CriticalPathEntry, 0, len(paths))
	for _, p := range paths {
		topPaths = append(topPaths, CriticalPathEntry{Tasks: p, Count: counts[p]})
	}

	version := 0
	if m != nil {
		version = m.Version
	}

	return Summary{
		ModelVersion:  version,
		RunsRequested: len(runs),
		RunsOK:        len(ok),
		RunsFailed:    len(runs) - len(ok),
		LatencyMS: LatencyMetrics{
			FirstUI:  percentileSet(firstUI),
			LastUI:   percentileSet(lastUI),
			Makespan: percentileSet(makespans),
		},
		CriticalPath: CriticalPathMetrics{TopPaths: topPaths},
	}
}

// AddTaskMetadata enriches summary with per-task meta for v2 models that
// declare any. summary is returned unmodified for v1 models or models
// with no task meta at all.
func AddTaskMetadata(summary Summary, m *Model) Summary {
	if m.Version != 2 {
		return summary
	}
	meta := map[string]TaskMeta{}
	for name, task := range m.Tasks {
		if task.Meta != nil {
			meta[name] = *task.Meta
		}
	}
	if len(meta) == 0 {
		return summary
	}
	summary.TaskMetadata = meta
	return summary
}
