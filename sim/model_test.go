package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_VersionAliasing(t *testing.T) {
	base := map[string]any{
		"entry_event": "e0",
		"contexts":    map[string]any{},
		"events":      map[string]any{"e0": map[string]any{}},
		"tasks":       map[string]any{},
		"wiring":      map[string]any{},
	}

	for _, key := range []string{"schema_version", "version", "model_version"} {
		obj := map[string]any{}
		for k, v := range base {
			obj[k] = v
		}
		obj[key] = float64(2)

		m, err := Parse(obj)
		require.NoError(t, err)
		assert.Equal(t, 2, m.Version)
	}
}

func TestParse_MissingVersion(t *testing.T) {
	_, err := Parse(map[string]any{"entry_event": "e0"})
	require.Error(t, err)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParse_FullModel(t *testing.T) {
	obj := map[string]any{
		"schema_version": float64(2),
		"entry_event":    "e0",
		"contexts": map[string]any{
			"ui": map[string]any{"concurrency": float64(2), "policy": "fifo"},
		},
		"events": map[string]any{
			"e0":   map[string]any{"tags": []any{"ui"}},
			"done": map[string]any{"tags": []any{"ui"}},
		},
		"tasks": map[string]any{
			"t": map[string]any{
				"context":     "ui",
				"duration_ms": map[string]any{"dist": "fixed", "value": float64(10)},
				"emit":        []any{"done"},
				"meta": map[string]any{
					"category": "render",
					"tags":     []any{"critical"},
					"labels":   map[string]any{"owner": "frontend"},
				},
			},
		},
		"wiring": map[string]any{
			"e0": []any{
				map[string]any{"task": "t", "delay_ms": float64(5)},
			},
		},
	}

	m, err := Parse(obj)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Version)
	assert.Equal(t, "e0", m.EntryEvent)
	assert.Equal(t, ContextDef{Concurrency: 2, Policy: "fifo"}, m.Contexts["ui"])
	assert.True(t, m.Events["e0"].HasTag("ui"))
	assert.Equal(t, []string{"done"}, m.Tasks["t"].Emit)
	require.NotNil(t, m.Tasks["t"].Meta)
	assert.Equal(t, "render", m.Tasks["t"].Meta.Category)
	assert.Equal(t, []string{"t"}, m.Wiring["e0"])
	require.Len(t, m.WiringEdges["e0"], 1)
	require.NotNil(t, m.WiringEdges["e0"][0].DelayMS)
	assert.Equal(t, DurationDist{Dist: DistFixed, Params: map[string]float64{"value": 5}}, *m.WiringEdges["e0"][0].DelayMS)
}

func TestParse_WiringBareStringListener(t *testing.T) {
	obj := map[string]any{
		"schema_version": float64(1),
		"entry_event":    "e0",
		"contexts":       map[string]any{"ui": map[string]any{"concurrency": float64(1)}},
		"events":         map[string]any{"e0": map[string]any{}},
		"tasks": map[string]any{
			"t": map[string]any{
				"context":     "ui",
				"duration_ms": map[string]any{"dist": "fixed", "value": float64(1)},
			},
		},
		"wiring": map[string]any{"e0": []any{"t"}},
	}

	m, err := Parse(obj)
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, m.Wiring["e0"])
	assert.Nil(t, m.WiringEdges["e0"][0].DelayMS)
}
