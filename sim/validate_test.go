package sim

import "testing"

func validModel() *Model {
	return &Model{
		Version:    1,
		EntryEvent: "e0",
		Contexts:   map[string]ContextDef{"ui": {Concurrency: 1, Policy: "fifo"}},
		Events:     map[string]EventDef{"e0": {}, "done": {}},
		Tasks: map[string]TaskDef{
			"t": {
				Context:    "ui",
				DurationMS: DurationDist{Dist: DistFixed, Params: map[string]float64{"value": 10}},
				Emit:       []string{"done"},
			},
		},
		Wiring:      map[string][]string{"e0": {"t"}},
		WiringEdges: map[string][]WiringEdge{"e0": {{Task: "t"}}},
	}
}

func TestValidate_ValidModelPasses(t *testing.T) {
	if err := Validate(validModel()); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_UnsupportedVersion(t *testing.T) {
	m := validModel()
	m.Version = 3
	if err := Validate(m); err == nil {
		t.Fatal("Validate() = nil, want error for version 3")
	}
}

func TestValidate_MissingEntryEvent(t *testing.T) {
	m := validModel()
	m.EntryEvent = "nope"
	if err := Validate(m); err == nil {
		t.Fatal("Validate() = nil, want error for missing entry_event")
	}
}

func TestValidate_ZeroConcurrencyRejected(t *testing.T) {
	m := validModel()
	m.Contexts["ui"] = ContextDef{Concurrency: 0, Policy: "fifo"}
	if err := Validate(m); err == nil {
		t.Fatal("Validate() = nil, want error for concurrency 0")
	}
}

func TestValidate_NonFifoPolicyRejected(t *testing.T) {
	m := validModel()
	m.Contexts["ui"] = ContextDef{Concurrency: 1, Policy: "lifo"}
	if err := Validate(m); err == nil {
		t.Fatal("Validate() = nil, want error for non-fifo policy")
	}
}

func TestValidate_TaskUnknownContext(t *testing.T) {
	m := validModel()
	task := m.Tasks["t"]
	task.Context = "missing"
	m.Tasks["t"] = task
	if err := Validate(m); err == nil {
		t.Fatal("Validate() = nil, want error for unknown context")
	}
}

func TestValidate_TaskEmitsUnknownEvent(t *testing.T) {
	m := validModel()
	task := m.Tasks["t"]
	task.Emit = []string{"ghost"}
	m.Tasks["t"] = task
	if err := Validate(m); err == nil {
		t.Fatal("Validate() = nil, want error for unknown emit event")
	}
}

func TestValidate_MetaRequiresV2(t *testing.T) {
	m := validModel()
	task := m.Tasks["t"]
	task.Meta = &TaskMeta{Category: "x"}
	m.Tasks["t"] = task
	if err := Validate(m); err == nil {
		t.Fatal("Validate() = nil, want error for v1 task meta")
	}
	m.Version = 2
	if err := Validate(m); err != nil {
		t.Fatalf("Validate() = %v, want nil once version is 2", err)
	}
}

func TestValidate_DelayRequiresV2(t *testing.T) {
	m := validModel()
	delay := DurationDist{Dist: DistFixed, Params: map[string]float64{"value": 1}}
	m.WiringEdges["e0"][0].DelayMS = &delay
	if err := Validate(m); err == nil {
		t.Fatal("Validate() = nil, want error for v1 wiring delay")
	}
	m.Version = 2
	if err := Validate(m); err != nil {
		t.Fatalf("Validate() = %v, want nil once version is 2", err)
	}
}

func TestValidate_DistParamValidation(t *testing.T) {
	cases := []struct {
		name string
		dist DurationDist
		ok   bool
	}{
		{"fixed ok", DurationDist{Dist: DistFixed, Params: map[string]float64{"value": 0}}, true},
		{"fixed negative", DurationDist{Dist: DistFixed, Params: map[string]float64{"value": -1}}, false},
		{"fixed missing value", DurationDist{Dist: DistFixed, Params: map[string]float64{}}, false},
		{"normal ok", DurationDist{Dist: DistNormal, Params: map[string]float64{"mean": 5, "std": 1}}, true},
		{"normal missing std", DurationDist{Dist: DistNormal, Params: map[string]float64{"mean": 5}}, false},
		{"normal negative std", DurationDist{Dist: DistNormal, Params: map[string]float64{"mean": 5, "std": -1}}, false},
		{"lognormal ok", DurationDist{Dist: DistLognormal, Params: map[string]float64{"mu": 0, "sigma": 1}}, true},
		{"lognormal missing sigma", DurationDist{Dist: DistLognormal, Params: map[string]float64{"mu": 0}}, false},
		{"unknown dist", DurationDist{Dist: "weibull", Params: map[string]float64{}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := validModel()
			task := m.Tasks["t"]
			task.DurationMS = c.dist
			m.Tasks["t"] = task
			err := Validate(m)
			if c.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !c.ok && err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}
