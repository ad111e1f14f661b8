package engine

import "github.com/latencylab/latencylab/sim"

// Executor runs a model count times and returns one RunResult per run,
// in run-id order, plus an optional per-instance trace. The two
// implementations share only the completionHeap, the per-context queue
// types (ctxState, pendingTask) and the post-run helpers
// (computeRunResult, traceSortedInstances): each reproduces its own schema version's
// seed derivation and run loop independently, keeping the frozen legacy
// executor fully isolated from the current one.
type Executor interface {
	SimulateMany(model *sim.Model, baseSeed uint64, runs int, maxTasksPerRun int, wantTrace bool) ([]sim.RunResult, []sim.TaskInstance)
}

type v1Executor struct{}

func (v1Executor) SimulateMany(model *sim.Model, baseSeed uint64, runs int, maxTasksPerRun int, wantTrace bool) ([]sim.RunResult, []sim.TaskInstance) {
	return SimulateManyV1(model, baseSeed, runs, maxTasksPerRun, wantTrace)
}

type v2Executor struct{}

func (v2Executor) SimulateMany(model *sim.Model, baseSeed uint64, runs int, maxTasksPerRun int, wantTrace bool) ([]sim.RunResult, []sim.TaskInstance) {
	return SimulateManyV2(model, baseSeed, runs, maxTasksPerRun, wantTrace)
}

// DefaultExecutorForModel dispatches on model.Version, the one decision
// point that picks an executor. Validate should always run first; this
// only re-checks the version because an Executor can be constructed
// directly by tests without going through Validate.
func DefaultExecutorForModel(model *sim.Model) (Executor, error) {
	switch model.Version {
	case 1:
		return v1Executor{}, nil
	case 2:
		return v2Executor{}, nil
	default:
		return nil, &sim.UnsupportedVersionError{Version: model.Version}
	}
}

// Run validates model, resolves its executor, simulates it runs times,
// and returns the per-run results, the aggregated summary, and (when
// wantTrace is set) the flattened per-instance trace across all runs.
// It is the entry point cmd/root.go and the golden-scenario tests use.
func Run(model *sim.Model, baseSeed uint64, runs int, maxTasksPerRun int, wantTrace bool) ([]sim.RunResult, sim.Summary, []sim.TaskInstance, error) {
	if err := sim.Validate(model); err != nil {
		return nil, sim.Summary{}, nil, err
	}

	exec, err := DefaultExecutorForModel(model)
	if err != nil {
		return nil, sim.Summary{}, nil, err
	}

	results, trace := exec.SimulateMany(model, baseSeed, runs, maxTasksPerRun, wantTrace)
	summary := sim.AddTaskMetadata(sim.AggregateRuns(model, results), model)
	return results, summary, trace, nil
}
