package normalize

import (
	"testing"

	"recipe-finder/internal/core/ontology"

	"github.com/stretchr/testify/assert"
)

func newTestNormalizer() *Normalizer {
	nodes := []ontology.Node{
		{ID: "tomato", Label: "Tomato", Synonyms: []string{"love apple"}},
		{ID: "scallion", Label: "Scallion", Synonyms: []string{"green onion", "spring onion"}},
		{ID: "cilantro", Label: "Cilantro", Synonyms: []string{"coriander leaves"}},
	}
	aliases := map[string]string{
		"toms":      "tomato",
		" Spring O": "scallion",
	}
	return NewNormalizer(ontology.NewIndex(nodes), nodes, aliases)
}

func TestResolve(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name       string
		term       string
		wantID     string
		wantSource string
		wantConf   float64
	}{
		{"alias wins at full confidence", "TOMS", "tomato", SourceAlias, 1.0},
		{"alias keys are trimmed", "spring o", "scallion", SourceAlias, 1.0},
		{"exact label", "Tomato", "tomato", SourceLabel, 1.0},
		{"exact synonym", "green onion", "scallion", SourceSynonym, 0.9},
		{"synonym with surrounding space", "  love apple  ", "tomato", SourceSynonym, 0.9},
		{"fuzzy three-char prefix", "cilantro bunch", "cilantro", SourceFuzzy, 0.5},
		{"empty input", "   ", "", SourceEmpty, 0},
		{"no match at all", "xyzzy", "", SourceNotFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Resolve(tt.term)
			assert.Equal(t, tt.wantID, got.ID)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.wantConf, got.Confidence)
		})
	}
}

func TestResolveLabelAttached(t *testing.T) {
	n := newTestNormalizer()
	got := n.Resolve("toms")
	assert.Equal(t, "Tomato", got.Label)
}

func TestResolveFuzzyDeterministic(t *testing.T) {
	// Both "cilantro" and "coriander leaves" start with "c"; with a shared
	// 3-char prefix the sorted name list makes the pick stable.
	nodes := []ontology.Node{
		{ID: "corn", Label: "Corn"},
		{ID: "coriander", Label: "Coriander"},
	}
	n := NewNormalizer(ontology.NewIndex(nodes), nodes, nil)

	first := n.Resolve("corxx")
	assert.Equal(t, SourceFuzzy, first.Source)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, n.Resolve("corxx"))
	}
	assert.Equal(t, "coriander", first.ID, "lexicographically first name wins")
}

func TestResolveLabelBeatsSynonymInFuzzy(t *testing.T) {
	// When a label and a synonym share the same text the label's id owns it.
	nodes := []ontology.Node{
		{ID: "basil", Label: "Basil"},
		{ID: "thai_basil", Label: "Thai basil", Synonyms: []string{"basil"}},
	}
	n := NewNormalizer(ontology.NewIndex(nodes), nodes, nil)

	got := n.Resolve("basil")
	assert.Equal(t, "basil", got.ID)
	assert.Equal(t, SourceLabel, got.Source)
}
