package engine

import (
	"sort"

	"github.com/latencylab/latencylab/sim"
)

// computeRunResult derives a finished run's post-run outputs (makespan,
// first/last ui event time, critical-path reconstruction) from its
// instance table and event log. Both executors call this with their own
// independently-produced instances/occurrences; the derivation itself
// has no RNG dependency and is identical between v1 and v2 by
// construction.
func computeRunResult(
	runID int,
	instances map[int64]*sim.TaskInstance,
	occurrences []sim.EventOccurrence,
	model *sim.Model,
	failed bool,
	failureReason string,
) sim.RunResult {
	var makespan float64
	for _, inst := range instances {
		if inst.EndTimeMS > makespan {
			makespan = inst.EndTimeMS
		}
	}

	var firstUI, lastUI *float64
	for _, occ := range occurrences {
		ev, ok := model.Events[occ.Name]
		if !ok || !ev.HasTag("ui") {
			continue
		}
		if firstUI == nil || occ.TimeMS < *firstUI {
			firstUI = float64Ptr(occ.TimeMS)
		}
		if lastUI == nil || occ.TimeMS > *lastUI {
			lastUI = float64Ptr(occ.TimeMS)
		}
	}

	criticalPathTasks := reconstructCriticalPath(instances)

	return sim.RunResult{
		RunID:              runID,
		FirstUIEventTimeMS: firstUI,
		LastUIEventTimeMS:  lastUI,
		MakespanMS:         makespan,
		CriticalPathMS:     makespan,
		CriticalPathTasks:  criticalPathTasks,
		Failed:             failed,
		FailureReason:      failureReason,
	}
}

// reconstructCriticalPath walks backward from the instance with the
// lexicographically maximum (end_time, context, task_name, instance_id)
// key, following whichever of its capacity or event predecessor
// dominates. Instance ids strictly decrease along the walk (every
// predecessor has a strictly smaller id than its successor), so the
// walk always terminates.
func reconstructCriticalPath(instances map[int64]*sim.TaskInstance) string {
	if len(instances) == 0 {
		return ""
	}

	var last *sim.TaskInstance
	for _, inst := range instances {
		if last == nil || isLaterCriticalCandidate(inst, last) {
			last = inst
		}
	}

	var chain []string
	cur := last
	for cur != nil {
		chain = append(chain, cur.TaskName)

		var capPred *sim.TaskInstance
		capTime := negInf
		if cur.CapacityParentInstanceID != nil {
			capPred = instances[*cur.CapacityParentInstanceID]
			capTime = capPred.EndTimeMS
		}

		var evtPred *sim.TaskInstance
		if cur.ParentTaskInstanceID != nil {
			evtPred = instances[*cur.ParentTaskInstanceID]
		}
		evtTime := cur.EnqueueTimeMS

		switch {
		case capTime > evtTime:
			cur = capPred
		case evtPred != nil && evtTime >= capTime:
			cur = evtPred
		default:
			cur = nil
		}
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	out := ""
	for i, name := range chain {
		if i > 0 {
			out += ">"
		}
		out += name
	}
	return out
}

const negInf = -1e300 // sentinel low value for the walk's capacity-time comparison

// traceSortedInstances flattens a run's instance table into a slice
// ordered by InstanceID, the order instances were created in. Map
// iteration order is unspecified, so a trace built directly off the map
// would vary run to run even though the simulation itself is
// deterministic.
func traceSortedInstances(instances map[int64]*sim.TaskInstance) []sim.TaskInstance {
	out := make([]sim.TaskInstance, 0, len(instances))
	for _, inst := range instances {
		out = append(out, *inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstanceID < out[j].InstanceID })
	return out
}

func isLaterCriticalCandidate(a, b *sim.TaskInstance) bool {
	if a.EndTimeMS != b.EndTimeMS {
		return a.EndTimeMS > b.EndTimeMS
	}
	if a.Context != b.Context {
		return a.Context > b.Context
	}
	if a.TaskName != b.TaskName {
		return a.TaskName > b.TaskName
	}
	return a.InstanceID > b.InstanceID
}
