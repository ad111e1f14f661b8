package engine

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/latencylab/latencylab/sim"
)

// splitmix64 constants for the frozen legacy seed derivation. Never
// change these: v1 is the oracle every other executor is judged
// against, and its seed stream is part of that contract.
const (
	splitmix64Gamma = 0x9E3779B97F4A7C15
	splitmix64Mix1  = 0xBF58476D1CE4E5B9
	splitmix64Mix2  = 0x94D049BB133111EB
)

func splitmix64(x uint64) uint64 {
	x += splitmix64Gamma
	z := x
	z = (z ^ (z >> 30)) * splitmix64Mix1
	z = (z ^ (z >> 27)) * splitmix64Mix2
	return z ^ (z >> 31)
}

// seedForRunV1 derives a per-run seed from the model's base seed. This
// derivation is frozen: it defines the oracle stream every other
// executor's output is checked against.
func seedForRunV1(baseSeed uint64, runID int) uint64 {
	return splitmix64(baseSeed ^ uint64(int64(runID)))
}

// pendingTask is one entry waiting in a context's FIFO queue.
type pendingTask struct {
	TaskName  string
	EnqueueMS float64
	ParentID  *int64
}

// ctxState holds one context's queue, free-slot pool, and per-slot
// capacity-causality history for the lifetime of a single run.
type ctxState struct {
	queue      []pendingTask
	freeSlots  []int // kept sorted ascending; index 0 is always the lowest free slot
	lastOnSlot map[int]int64
}

// runStateV1 is the mutable state threaded through a single v1 run.
type runStateV1 struct {
	model *sim.Model
	rng   *rand.Rand

	nextInstanceID int64
	nextEventID    int64
	tasksStarted   int
	maxTasks       int
	failed         bool
	failureReason  string

	instances   map[int64]*sim.TaskInstance
	occurrences []sim.EventOccurrence
	contexts    map[string]*ctxState
	heap        *completionHeap
}

func newRunStateV1(model *sim.Model, rng *rand.Rand, maxTasks int) *runStateV1 {
	contexts := make(map[string]*ctxState, len(model.Contexts))
	for name, def := range model.Contexts {
		slots := make([]int, def.Concurrency)
		for i := range slots {
			slots[i] = i
		}
		contexts[name] = &ctxState{freeSlots: slots, lastOnSlot: map[int]int64{}}
	}
	return &runStateV1{
		model:          model,
		rng:            rng,
		nextInstanceID: 1,
		nextEventID:    1,
		maxTasks:       maxTasks,
		instances:      map[int64]*sim.TaskInstance{},
		occurrences:    nil,
		contexts:       contexts,
		heap:           newCompletionHeap(),
	}
}

// occurEvent records one event firing and enqueues every task wired to
// it, marking each enqueued task's context touched so the caller
// re-attempts tryStartTasks there even if that context never released a
// slot this tick.
func (rs *runStateV1) occurEvent(name string, timeMS float64, source *int64, touched map[string]bool) {
	rs.occurrences = append(rs.occurrences, sim.EventOccurrence{
		EventID:              rs.nextEventID,
		Name:                 name,
		TimeMS:               timeMS,
		SourceTaskInstanceID: source,
	})
	rs.nextEventID++
	for _, taskName := range rs.model.Wiring[name] {
		rs.enqueueTask(taskName, timeMS, source)
		touched[rs.model.Tasks[taskName].Context] = true
	}
}

func (rs *runStateV1) enqueueTask(taskName string, timeMS float64, parent *int64) {
	ctxName := rs.model.Tasks[taskName].Context
	cs := rs.contexts[ctxName]
	cs.queue = append(cs.queue, pendingTask{TaskName: taskName, EnqueueMS: timeMS, ParentID: parent})
}

// tryStartTasks admits as many queued tasks into ctxName as there are
// free slots, in FIFO order, sampling each admitted task's duration and
// scheduling its completion. It stops (without draining the queue) the
// instant max_tasks_per_run is exceeded, marking the run failed.
func (rs *runStateV1) tryStartTasks(ctxName string, timeMS float64) {
	cs := rs.contexts[ctxName]
	for len(cs.freeSlots) > 0 && len(cs.queue) > 0 {
		if rs.tasksStarted >= rs.maxTasks {
			rs.failed = true
			rs.failureReason = fmt.Sprintf("max_tasks_per_run exceeded (%d)", rs.maxTasks)
			return
		}

		pending := cs.queue[0]
		cs.queue = cs.queue[1:]
		slot := cs.freeSlots[0]
		cs.freeSlots = cs.freeSlots[1:]

		rs.tasksStarted++
		instanceID := rs.nextInstanceID
		rs.nextInstanceID++

		taskDef := rs.model.Tasks[pending.TaskName]
		duration, err := sim.SampleDuration(rs.rng, taskDef.DurationMS)
		if err != nil {
			rs.failed = true
			rs.failureReason = err.Error()
			return
		}

		startMS := timeMS
		endMS := startMS + duration

		var capParent *int64
		if prev, ok := cs.lastOnSlot[slot]; ok {
			capParent = int64Ptr(prev)
		}
		cs.lastOnSlot[slot] = instanceID

		emitted := make([]string, len(taskDef.Emit))
		copy(emitted, taskDef.Emit)

		rs.instances[instanceID] = &sim.TaskInstance{
			InstanceID:               instanceID,
			RunID:                    0, // filled in by caller
			TaskName:                 pending.TaskName,
			Context:                  ctxName,
			EnqueueTimeMS:            pending.EnqueueMS,
			StartTimeMS:              startMS,
			EndTimeMS:                endMS,
			QueueWaitMS:              startMS - pending.EnqueueMS,
			DurationMS:               duration,
			EmittedEvents:            emitted,
			ParentTaskInstanceID:     pending.ParentID,
			CapacityParentInstanceID: capParent,
		}

		rs.heap.schedule(completionEntry{
			EndTimeMS:  endMS,
			Kind:       kindTaskEnd,
			Context:    ctxName,
			TaskName:   pending.TaskName,
			InstanceID: instanceID,
			Slot:       slot,
		})
	}
}

func (rs *runStateV1) releaseSlot(ctxName string, slot int) {
	cs := rs.contexts[ctxName]
	cs.freeSlots = append(cs.freeSlots, slot)
	sort.Ints(cs.freeSlots)
}

// sortedContextNames returns the keys of touched in ascending order, so
// contexts are refilled (and durations sampled) in the same order on
// every call rather than in Go's randomized map order.
func sortedContextNames(touched map[string]bool) []string {
	names := make([]string, 0, len(touched))
	for name := range touched {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// run drives the v1 event loop to completion: seed the entry event,
// admit whatever it unblocks, then repeatedly advance to the next
// completion batch, release slots, fan out emitted events, and refill
// every context touched by a slot release or a fresh enqueue.
func (rs *runStateV1) run() {
	touched := map[string]bool{}
	rs.occurEvent(rs.model.EntryEvent, 0, nil, touched)
	for ctxName := range rs.contexts {
		touched[ctxName] = true
	}
	for _, ctxName := range sortedContextNames(touched) {
		rs.tryStartTasks(ctxName, 0)
	}

	for {
		t, ok := rs.heap.peekTime()
		if !ok {
			break
		}
		batch := rs.heap.popAllAt(t)

		touched := map[string]bool{}
		for _, entry := range batch {
			rs.releaseSlot(entry.Context, entry.Slot)
			touched[entry.Context] = true

			inst := rs.instances[entry.InstanceID]
			for _, eventName := range inst.EmittedEvents {
				rs.occurEvent(eventName, entry.EndTimeMS, int64Ptr(entry.InstanceID), touched)
			}
		}

		for _, ctxName := range sortedContextNames(touched) {
			rs.tryStartTasks(ctxName, t)
		}
		if rs.failed {
			break
		}
	}
}

// SimulateManyV1 runs model count times under the frozen v1 oracle,
// assigning each instance its run id before returning. When wantTrace
// is set, every instance recorded across all runs is also appended to
// the returned trace slice, in run order.
func SimulateManyV1(model *sim.Model, baseSeed uint64, runs int, maxTasksPerRun int, wantTrace bool) ([]sim.RunResult, []sim.TaskInstance) {
	results := make([]sim.RunResult, 0, runs)
	var trace []sim.TaskInstance
	for runID := 0; runID < runs; runID++ {
		seed := seedForRunV1(baseSeed, runID)
		rng := rand.New(rand.NewSource(seed))
		rs := newRunStateV1(model, rng, maxTasksPerRun)
		rs.run()

		for _, inst := range rs.instances {
			inst.RunID = runID
		}

		if wantTrace {
			trace = append(trace, traceSortedInstances(rs.instances)...)
		}

		results = append(results, computeRunResult(runID, rs.instances, rs.occurrences, model, rs.failed, rs.failureReason))
	}
	return results, trace
}
