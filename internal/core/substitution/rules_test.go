package substitution

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRulesMapShape(t *testing.T) {
	raw := json.RawMessage(`{
		"butter": [
			{"target_id": "margarine", "weight": 0.8, "reason": "similar fat profile"},
			{"id": "coconut_oil", "similarity": 0.7, "notes": "adds coconut flavor"},
			{"target_id": "olive_oil"}
		]
	}`)

	rules := NormalizeRules(raw, 0.6)
	require.Len(t, rules["butter"], 3)

	t.Run("target_id and weight pass through", func(t *testing.T) {
		r := rules["butter"][0]
		assert.Equal(t, "margarine", r.TargetID)
		assert.Equal(t, 0.8, r.Weight)
		assert.Equal(t, "similar fat profile", r.Reason)
	})

	t.Run("id and similarity are accepted aliases", func(t *testing.T) {
		r := rules["butter"][1]
		assert.Equal(t, "coconut_oil", r.TargetID)
		assert.Equal(t, 0.7, r.Weight)
		assert.Equal(t, "adds coconut flavor", r.Reason, "reason falls back to notes")
		assert.Equal(t, "adds coconut flavor", r.Notes)
	})

	t.Run("missing weight and reason get defaults", func(t *testing.T) {
		r := rules["butter"][2]
		assert.Equal(t, 0.6, r.Weight)
		assert.Equal(t, "rule-based substitute", r.Reason)
	})
}

func TestNormalizeRulesListShape(t *testing.T) {
	raw := json.RawMessage(`[
		{"source_id": "milk", "targets": [{"target_id": "oat_milk", "weight": 0.75}]},
		{"source_id": "milk", "targets": [{"target_id": "soy_milk", "weight": 0.7}]},
		{"targets": [{"target_id": "orphan"}]}
	]`)

	rules := NormalizeRules(raw, 0.6)
	require.Len(t, rules, 1)
	require.Len(t, rules["milk"], 2, "repeated source ids accumulate")
	assert.Equal(t, "oat_milk", rules["milk"][0].TargetID)
	assert.Equal(t, "soy_milk", rules["milk"][1].TargetID)
}

func TestNormalizeRulesDropsMalformed(t *testing.T) {
	raw := json.RawMessage(`{
		"butter": [
			{"weight": 0.9},
			"not an object",
			{"target_id": "margarine", "weight": 0.8}
		],
		"": [{"target_id": "ghost"}]
	}`)

	rules := NormalizeRules(raw, 0.6)
	require.Len(t, rules, 1)
	require.Len(t, rules["butter"], 1, "entries without a target id are dropped")
	assert.Equal(t, "margarine", rules["butter"][0].TargetID)
}

func TestNormalizeRulesUnknownShape(t *testing.T) {
	assert.Empty(t, NormalizeRules(json.RawMessage(`"just a string"`), 0.6))
	assert.Empty(t, NormalizeRules(json.RawMessage(`42`), 0.6))
	assert.Empty(t, NormalizeRules(nil, 0.6))
}

func TestNormalizeRulesExplicitZeroWeight(t *testing.T) {
	raw := json.RawMessage(`{"a": [{"target_id": "b", "weight": 0}]}`)
	rules := NormalizeRules(raw, 0.6)
	require.Len(t, rules["a"], 1)
	assert.Equal(t, 0.0, rules["a"][0].Weight, "an explicit zero is not the absence of a weight")
}
