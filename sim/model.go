package sim

import "fmt"

// ContextDef describes a bounded pool of indexed capacity slots.
type ContextDef struct {
	Concurrency int
	Policy      string
}

// EventDef describes a named signal and the tags attached to it. The tag
// "ui" designates user-visible events for latency metrics.
type EventDef struct {
	Tags []string
}

// HasTag reports whether this event carries the given tag.
func (e EventDef) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Distribution variant names recognized by DurationDist.
const (
	DistFixed     = "fixed"
	DistNormal    = "normal"
	DistLognormal = "lognormal"
)

// DurationDist is a tagged variant over fixed/normal/lognormal duration
// distributions. Parameters are floating-point milliseconds, keyed by
// the parameter name (value, mean, std, min, mu, sigma).
type DurationDist struct {
	Dist   string
	Params map[string]float64
}

// TaskMeta carries v2-only descriptive metadata about a task; it is
// never consulted by the scheduler, only surfaced by AddTaskMetadata.
type TaskMeta struct {
	Category string
	Tags     []string
	Labels   map[string]string
}

// WiringEdge maps an event to a target task, with an optional stochastic
// delay. Schema v1 wiring edges never carry a delay.
type WiringEdge struct {
	Task    string
	DelayMS *DurationDist
}

// TaskDef describes one task: its home context, its duration
// distribution, the events it emits on completion (in order), and
// optional v2 metadata.
type TaskDef struct {
	Context    string
	DurationMS DurationDist
	Emit       []string
	Meta       *TaskMeta
}

// Model is the parsed, immutable simulation model.
type Model struct {
	Version    int
	EntryEvent string
	Contexts   map[string]ContextDef
	Events     map[string]EventDef
	Tasks      map[string]TaskDef

	// Wiring is the v1-compatible flat view: event name -> ordered task
	// names, ignoring any per-edge delay. Always derivable from
	// WiringEdges; kept alongside it so v1-only callers never need to
	// know about WiringEdge.
	Wiring map[string][]string

	// WiringEdges is the full v2 view: event name -> ordered edges, each
	// optionally carrying a delay distribution.
	WiringEdges map[string][]WiringEdge
}

// Parse builds a Model from a decoded JSON-equivalent mapping.
// Unrecognized top-level keys are ignored.
func Parse(obj map[string]any) (*Model, error) {
	version, err := parseVersion(obj)
	if err != nil {
		return nil, err
	}

	entryEvent, ok := obj["entry_event"].(string)
	if !ok {
		return nil, newParseError("entry_event is required and must be a string")
	}

	contexts, err := parseContexts(obj["contexts"])
	if err != nil {
		return nil, err
	}

	events, err := parseEvents(obj["events"])
	if err != nil {
		return nil, err
	}

	tasks, err := parseTasks(obj["tasks"])
	if err != nil {
		return nil, err
	}

	wiring, wiringEdges, err := parseWiring(obj["wiring"])
	if err != nil {
		return nil, err
	}

	return &Model{
		Version:     version,
		EntryEvent:  entryEvent,
		Contexts:    contexts,
		Events:      events,
		Tasks:       tasks,
		Wiring:      wiring,
		WiringEdges: wiringEdges,
	}, nil
}

func parseVersion(obj map[string]any) (int, error) {
	for _, key := range []string{"schema_version", "version", "model_version"} {
		if v, ok := obj[key]; ok {
			n, err := toFloat64(v)
			if err != nil {
				return 0, newParseError("%s must be an integer: %v", key, err)
			}
			return int(n), nil
		}
	}
	return 0, newParseError("one of schema_version, version, model_version is required")
}

func parseContexts(raw any) (map[string]ContextDef, error) {
	out := map[string]ContextDef{}
	m, ok := asMap(raw)
	if !ok {
		return out, nil
	}
	for name, v := range m {
		c, ok := asMap(v)
		if !ok {
			return nil, newParseError("context %q must be an object", name)
		}
		concurrency := 0
		if cv, ok := c["concurrency"]; ok {
			n, err := toFloat64(cv)
			if err != nil {
				return nil, newParseError("context %q concurrency must be numeric: %v", name, err)
			}
			concurrency = int(n)
		}
		policy := "fifo"
		if p, ok := c["policy"]; ok {
			s, ok := p.(string)
			if !ok {
				return nil, newParseError("context %q policy must be a string", name)
			}
			policy = s
		}
		out[name] = ContextDef{Concurrency: concurrency, Policy: policy}
	}
	return out, nil
}

func parseEvents(raw any) (map[string]EventDef, error) {
	out := map[string]EventDef{}
	m, ok := asMap(raw)
	if !ok {
		return out, nil
	}
	for name, v := range m {
		e, ok := asMap(v)
		if !ok {
			return nil, newParseError("event %q must be an object", name)
		}
		tags, err := asStringSlice(e["tags"])
		if err != nil {
			return nil, newParseError("event %q tags: %v", name, err)
		}
		out[name] = EventDef{Tags: tags}
	}
	return out, nil
}

func parseTasks(raw any) (map[string]TaskDef, error) {
	out := map[string]TaskDef{}
	m, ok := asMap(raw)
	if !ok {
		return out, nil
	}
	for name, v := range m {
		t, ok := asMap(v)
		if !ok {
			return nil, newParseError("task %q must be an object", name)
		}
		context, _ := t["context"].(string)

		durObj, ok := t["duration_ms"]
		if !ok {
			return nil, newParseError("task %q requires duration_ms", name)
		}
		dist, err := parseDistObject(durObj)
		if err != nil {
			return nil, newParseError("task %q duration_ms: %v", name, err)
		}

		emit, err := asStringSlice(t["emit"])
		if err != nil {
			return nil, newParseError("task %q emit: %v", name, err)
		}

		meta, err := parseTaskMeta(t["meta"])
		if err != nil {
			return nil, newParseError("task %q meta: %v", name, err)
		}

		out[name] = TaskDef{Context: context, DurationMS: dist, Emit: emit, Meta: meta}
	}
	return out, nil
}

func parseTaskMeta(raw any) (*TaskMeta, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := asMap(raw)
	if !ok {
		return nil, fmt.Errorf("meta must be an object")
	}
	category, _ := m["category"].(string)
	tags, err := asStringSlice(m["tags"])
	if err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}
	labels := map[string]string{}
	if lm, ok := asMap(m["labels"]); ok {
		for k, v := range lm {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("label %q must be a string", k)
			}
			labels[k] = s
		}
	}
	return &TaskMeta{Category: category, Tags: tags, Labels: labels}, nil
}

// parseDistObject parses a duration_ms object: {dist: "fixed"|"normal"|"lognormal", ...params}.
func parseDistObject(raw any) (DurationDist, error) {
	m, ok := asMap(raw)
	if !ok {
		return DurationDist{}, fmt.Errorf("must be an object with a dist field")
	}
	name, ok := m["dist"].(string)
	if !ok {
		return DurationDist{}, fmt.Errorf("dist field is required and must be a string")
	}
	params := map[string]float64{}
	for k, v := range m {
		if k == "dist" {
			continue
		}
		n, err := toFloat64(v)
		if err != nil {
			return DurationDist{}, fmt.Errorf("param %q: %w", k, err)
		}
		params[k] = n
	}
	return DurationDist{Dist: name, Params: params}, nil
}

// parseDelayDist parses a wiring-edge delay_ms: a bare number (shorthand
// for fixed(N)) or a full dist object.
func parseDelayDist(raw any) (*DurationDist, error) {
	if raw == nil {
		return nil, nil
	}
	if n, err := toFloat64(raw); err == nil {
		return &DurationDist{Dist: DistFixed, Params: map[string]float64{"value": n}}, nil
	}
	d, err := parseDistObject(raw)
	if err != nil {
		return nil, fmt.Errorf("delay_ms must be a number or a dist object: %w", err)
	}
	return &d, nil
}

func parseWiring(raw any) (map[string][]string, map[string][]WiringEdge, error) {
	flat := map[string][]string{}
	edges := map[string][]WiringEdge{}
	m, ok := asMap(raw)
	if !ok {
		return flat, edges, nil
	}
	for event, listenersRaw := range m {
		listeners, ok := listenersRaw.([]any)
		if !ok {
			return nil, nil, newParseError("wiring %q must be a list", event)
		}
		var flatTasks []string
		var wEdges []WiringEdge
		for _, item := range listeners {
			switch v := item.(type) {
			case string:
				flatTasks = append(flatTasks, v)
				wEdges = append(wEdges, WiringEdge{Task: v})
			case map[string]any:
				task, ok := v["task"].(string)
				if !ok {
					return nil, nil, newParseError("wiring %q entry requires a string task field", event)
				}
				delay, err := parseDelayDist(v["delay_ms"])
				if err != nil {
					return nil, nil, newParseError("wiring %q -> %q: %v", event, task, err)
				}
				flatTasks = append(flatTasks, task)
				wEdges = append(wEdges, WiringEdge{Task: task, DelayMS: delay})
			default:
				return nil, nil, newParseError("wiring %q listeners must be strings or objects", event)
			}
		}
		flat[event] = flatTasks
		edges[event] = wEdges
	}
	return flat, edges, nil
}

// --- decode helpers -------------------------------------------------

func asMap(raw any) (map[string]any, bool) {
	m, ok := raw.(map[string]any)
	return m, ok
}

func asStringSlice(raw any) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("must be a list of strings")
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("must be a list of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
