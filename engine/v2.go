package engine

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/latencylab/latencylab/sim"
)

// delayContext is the reserved synthetic context wiring-edge delays run
// on: it never appears in a model's contexts map, has no capacity slot,
// and emits no events of its own.
const delayContext = "__delay__"

// seedForRunV2 derives a per-run seed for the current executor: a
// shifted base seed XORed with the run id, with no splitmix64 step.
// v1 and v2 therefore draw from different streams even at run 0;
// equivalence between them is only guaranteed for models whose
// durations are all fixed (no RNG ever consulted).
func seedForRunV2(baseSeed uint64, runID int) uint64 {
	return (baseSeed << 32) ^ uint64(uint32(runID))
}

func delayTaskName(event, task string) string {
	return fmt.Sprintf("delay(%s->%s)", event, task)
}

// runStateV2 extends the v1 run structure with the bookkeeping a
// synthetic delay node needs: the target task each in-flight delay
// instance will enqueue once it completes.
type runStateV2 struct {
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

	delayTargets map[int64]string
}

func newRunStateV2(model *sim.Model, rng *rand.Rand, maxTasks int) *runStateV2 {
	contexts := make(map[string]*ctxState, len(model.Contexts))
	for name, def := range model.Contexts {
		slots := make([]int, def.Concurrency)
		for i := range slots {
			slots[i] = i
		}
		contexts[name] = &ctxState{freeSlots: slots, lastOnSlot: map[int]int64{}}
	}
	return &runStateV2{
		model:          model,
		rng:            rng,
		nextInstanceID: 1,
		nextEventID:    1,
		maxTasks:       maxTasks,
		instances:      map[int64]*sim.TaskInstance{},
		contexts:       contexts,
		heap:           newCompletionHeap(),
		delayTargets:   map[int64]string{},
	}
}

// occurEvent records one event firing and dispatches every wiring edge
// attached to it: edges with no delay enqueue their target task
// immediately; edges with a delay spawn a synthetic delay instance on
// delayContext instead.
func (rs *runStateV2) occurEvent(name string, timeMS float64, source *int64, touched map[string]bool) {
	rs.occurrences = append(rs.occurrences, sim.EventOccurrence{
		EventID:              rs.nextEventID,
		Name:                 name,
		TimeMS:               timeMS,
		SourceTaskInstanceID: source,
	})
	rs.nextEventID++

	for _, edge := range rs.model.WiringEdges[name] {
		if edge.DelayMS == nil {
			rs.enqueueTask(edge.Task, timeMS, source)
			touched[rs.model.Tasks[edge.Task].Context] = true
			continue
		}
		rs.scheduleDelay(name, edge, timeMS, source)
	}
}

func (rs *runStateV2) scheduleDelay(eventName string, edge sim.WiringEdge, timeMS float64, source *int64) {
	duration, err := sim.SampleDuration(rs.rng, *edge.DelayMS)
	if err != nil {
		rs.failed = true
		rs.failureReason = err.Error()
		return
	}

	instanceID := rs.nextInstanceID
	rs.nextInstanceID++
	endMS := timeMS + duration
	name := delayTaskName(eventName, edge.Task)

	rs.instances[instanceID] = &sim.TaskInstance{
		InstanceID:           instanceID,
		TaskName:             name,
		Context:              delayContext,
		EnqueueTimeMS:        timeMS,
		StartTimeMS:          timeMS,
		EndTimeMS:            endMS,
		QueueWaitMS:          0,
		DurationMS:           duration,
		ParentTaskInstanceID: source,
	}
	rs.delayTargets[instanceID] = edge.Task

	rs.heap.schedule(completionEntry{
		EndTimeMS:  endMS,
		Kind:       kindDelayEnd,
		Context:    delayContext,
		TaskName:   name,
		InstanceID: instanceID,
		Slot:       noSlot,
	})
}

func (rs *runStateV2) enqueueTask(taskName string, timeMS float64, parent *int64) {
	ctxName := rs.model.Tasks[taskName].Context
	cs := rs.contexts[ctxName]
	cs.queue = append(cs.queue, pendingTask{TaskName: taskName, EnqueueMS: timeMS, ParentID: parent})
}

func (rs *runStateV2) tryStartTasks(ctxName string, timeMS float64) {
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

func (rs *runStateV2) releaseSlot(ctxName string, slot int) {
	cs := rs.contexts[ctxName]
	cs.freeSlots = append(cs.freeSlots, slot)
	sort.Ints(cs.freeSlots)
}

// run drives the v2 event loop. It differs from v1 only in how it
// reacts to each completion kind: task_end releases a slot and fans out
// through occurEvent as before; delay_end never touches a slot and
// instead enqueues its one target task directly, without going through
// occurEvent (a delay's completion is not itself a named event).
func (rs *runStateV2) run() {
	touched := map[string]bool{}
	rs.occurEvent(rs.model.EntryEvent, 0, nil, touched)
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
			switch entry.Kind {
			case kindTaskEnd:
				rs.releaseSlot(entry.Context, entry.Slot)
				touched[entry.Context] = true

				inst := rs.instances[entry.InstanceID]
				for _, eventName := range inst.EmittedEvents {
					rs.occurEvent(eventName, entry.EndTimeMS, int64Ptr(entry.InstanceID), touched)
				}
			case kindDelayEnd:
				target := rs.delayTargets[entry.InstanceID]
				rs.enqueueTask(target, entry.EndTimeMS, int64Ptr(entry.InstanceID))
				touched[rs.model.Tasks[target].Context] = true
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

// SimulateManyV2 runs model count times under the current executor,
// assigning each instance its run id before returning. When wantTrace
// is set, every instance recorded across all runs (including synthetic
// delay instances) is also appended to the returned trace slice, in run
// order.
func SimulateManyV2(model *sim.Model, baseSeed uint64, runs int, maxTasksPerRun int, wantTrace bool) ([]sim.RunResult, []sim.TaskInstance) {
	results := make([]sim.RunResult, 0, runs)
	var trace []sim.TaskInstance
	for runID := 0; runID < runs; runID++ {
		seed := seedForRunV2(baseSeed, runID)
		rng := rand.New(rand.NewSource(seed))
		rs := newRunStateV2(model, rng, maxTasksPerRun)
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
