package engine

import (
	"container/heap"
	"sort"
)

// completionHeap is a min-heap of completionEntry ordered by
// (EndTimeMS, Kind, Context, TaskName, InstanceID, Slot), the full
// discriminator tuple, so the underlying order is always total and
// reproducible across implementations of container/heap.Interface.
// Generalized from a single event-type priority ordering to the
// simulator's kind/context/task/instance/slot tuple.
type completionHeap struct {
	entries []completionEntry
}

func newCompletionHeap() *completionHeap {
	h := &completionHeap{}
	heap.Init(h)
	return h
}

func (h *completionHeap) Len() int { return len(h.entries) }

func (h *completionHeap) Less(i, j int) bool {
	a, b := h.entries[i], h.entries[j]
	if a.EndTimeMS != b.EndTimeMS {
		return a.EndTimeMS < b.EndTimeMS
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Context != b.Context {
		return a.Context < b.Context
	}
	if a.TaskName != b.TaskName {
		return a.TaskName < b.TaskName
	}
	if a.InstanceID != b.InstanceID {
		return a.InstanceID < b.InstanceID
	}
	return a.Slot < b.Slot
}

func (h *completionHeap) Swap(i, j int) { h.entries[i], h.entries[j] = h.entries[j], h.entries[i] }

func (h *completionHeap) Push(x any) { h.entries = append(h.entries, x.(completionEntry)) }

func (h *completionHeap) Pop() any {
	old := h.entries
	n := len(old)
	item := old[n-1]
	h.entries = old[:n-1]
	return item
}

func (h *completionHeap) schedule(e completionEntry) { heap.Push(h, e) }

func (h *completionHeap) peekTime() (float64, bool) {
	if h.Len() == 0 {
		return 0, false
	}
	return h.entries[0].EndTimeMS, true
}

// popAllAt pops and returns every entry whose EndTimeMS equals t, sorted
// deterministically by (Kind, Context, TaskName, InstanceID). Slot is
// deliberately excluded: two entries at the same (kind, context, task,
// instance) can never collide, so slot never needs to break a tie here.
func (h *completionHeap) popAllAt(t float64) []completionEntry {
	var batch []completionEntry
	for h.Len() > 0 && h.entries[0].EndTimeMS == t {
		batch = append(batch, heap.Pop(h).(completionEntry))
	}
	sort.Slice(batch, func(i, j int) bool { return batchLess(batch[i], batch[j]) })
	return batch
}

func batchLess(a, b completionEntry) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Context != b.Context {
		return a.Context < b.Context
	}
	if a.TaskName != b.TaskName {
		return a.TaskName < b.TaskName
	}
	return a.InstanceID < b.InstanceID
}
