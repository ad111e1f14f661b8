package sim

// Validate checks the structural and semantic invariants of a parsed
// Model. Validation errors are raised before any simulation begins;
// the caller sees them synchronously.
func Validate(m *Model) error {
	if m.Version != 1 && m.Version != 2 {
		return newValidationError("unsupported model version: %d (expected 1 or 2)", m.Version)
	}

	if _, ok := m.Events[m.EntryEvent]; !ok {
		return newValidationError("entry_event %q must exist in events", m.EntryEvent)
	}

	for name, ctx := range m.Contexts {
		if ctx.Concurrency < 1 {
			return newValidationError("context %q concurrency must be >= 1 (got %d)", name, ctx.Concurrency)
		}
		if ctx.Policy != "fifo" {
			return newValidationError("context %q policy must be 'fifo' (got %q)", name, ctx.Policy)
		}
	}

	for name, task := range m.Tasks {
		if _, ok := m.Contexts[task.Context]; !ok {
			return newValidationError("task %q references unknown context %q", name, task.Context)
		}
		if err := validateDist(name+" duration_ms", task.DurationMS); err != nil {
			return err
		}
		for _, ev := range task.Emit {
			if _, ok := m.Events[ev]; !ok {
				return newValidationError("task %q emits unknown event %q (must exist in events)", name, ev)
			}
		}
		if task.Meta != nil && m.Version != 2 {
			return newValidationError("task %q has meta, which is only valid under schema v2", name)
		}
	}

	for event, edges := range m.WiringEdges {
		if _, ok := m.Events[event]; !ok {
			return newValidationError("wiring references unknown event %q", event)
		}
		for _, edge := range edges {
			if _, ok := m.Tasks[edge.Task]; !ok {
				return newValidationError("wiring for event %q references unknown task %q", event, edge.Task)
			}
			if edge.DelayMS != nil {
				if m.Version == 1 {
					return newValidationError("wiring %q -> %q has a delay, which is only valid under schema v2", event, edge.Task)
				}
				if err := validateDist("wiring "+event+" -> "+edge.Task+" delay_ms", *edge.DelayMS); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func validateDist(label string, d DurationDist) error {
	p := d.Params
	switch d.Dist {
	case DistFixed:
		v, ok := p["value"]
		if !ok {
			return newValidationError("%s fixed dist requires 'value'", label)
		}
		if v < 0 {
			return newValidationError("%s fixed value must be >= 0", label)
		}
	case DistNormal:
		for _, k := range []string{"mean", "std"} {
			if _, ok := p[k]; !ok {
				return newValidationError("%s normal dist requires %q", label, k)
			}
		}
		if p["std"] < 0 {
			return newValidationError("%s normal std must be >= 0", label)
		}
		if m, ok := p["min"]; ok && m < 0 {
			return newValidationError("%s normal min must be >= 0", label)
		}
	case DistLognormal:
		for _, k := range []string{"mu", "sigma"} {
			if _, ok := p[k]; !ok {
				return newValidationError("%s lognormal dist requires %q", label, k)
			}
		}
		if p["sigma"] < 0 {
			return newValidationError("%s lognormal sigma must be >= 0", label)
		}
	default:
		return newValidationError("%s has unsupported dist %q", label, d.Dist)
	}
	return nil
}
