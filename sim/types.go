package sim

// TaskInstance is a single execution of a task within one run. Instances
// are append-only once recorded and are referenced elsewhere by
// InstanceID only, never by pointer, so causality edges can never form
// an ownership cycle.
type TaskInstance struct {
	InstanceID    int64
	RunID         int
	TaskName      string
	Context       string
	EnqueueTimeMS float64
	StartTimeMS   float64
	EndTimeMS     float64
	QueueWaitMS   float64
	DurationMS    float64
	EmittedEvents []string

	// ParentTaskInstanceID is the event-causality parent: the instance
	// whose completion (or, under v2, whose delay) triggered this
	// instance's enqueue. Nil for the entry event's direct children.
	ParentTaskInstanceID *int64

	// CapacityParentInstanceID is the instance that previously occupied
	// this instance's slot, or nil if the slot had never been used.
	CapacityParentInstanceID *int64
}

// EventOccurrence records a single firing of a named event.
type EventOccurrence struct {
	EventID              int64
	Name                 string
	TimeMS               float64
	SourceTaskInstanceID *int64
}

// RunResult is the per-run outcome returned by an executor.
type RunResult struct {
	RunID               int
	FirstUIEventTimeMS  *float64
	LastUIEventTimeMS   *float64
	MakespanMS          float64
	CriticalPathMS      float64
	CriticalPathTasks   string
	Failed              bool
	FailureReason       string
}
