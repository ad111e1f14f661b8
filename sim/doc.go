// Package sim defines LatencyLab's data model and pure-function support
// code: the immutable record types, model parsing/validation, the
// stochastic duration sampler, and run-level metrics.
//
// # Reading Guide
//
// Start with these files to understand the data model:
//   - types.go: TaskInstance, RunResult, EventOccurrence, the immutable
//     records produced by a run.
//   - model.go: ContextDef, EventDef, DurationDist, TaskDef, WiringEdge,
//     Model, and Parse, which builds a Model from a decoded JSON mapping.
//   - validate.go: Validate, the structural and semantic checks a Model
//     must pass before it can be simulated.
//   - sampler.go: SampleDuration, the seeded stochastic sampler shared by
//     both executors.
//   - metrics.go: Percentile, AggregateRuns, AddTaskMetadata.
//
// # Architecture
//
// This package has no knowledge of the event loop or scheduling policy.
// The discrete-event engine that consumes a Model and produces
// RunResults lives in the sibling engine package, which selects between
// the frozen v1 oracle executor and the current v2 executor by
// Model.Version. Callers outside this module (CLI, GUI, batch runners)
// interact only through Parse, Validate, engine.Run (or an
// engine.Executor's SimulateMany), and AggregateRuns.
package sim
