package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTypeahead() *Typeahead {
	return NewTypeahead([]TypeaheadRow{
		{ID: "tomato", Name: "Tomato", Kind: "label"},
		{ID: "tomato", Name: "love apple", Kind: "synonym"},
		{ID: "scallion", Name: "Scallion", Kind: "label"},
		{ID: "scallion", Name: "green onion", Kind: "synonym"},
		{ID: "onion", Name: "Onion", Kind: "label"},
	})
}

func TestTypeaheadPrefix(t *testing.T) {
	ta := newTestTypeahead()

	t.Run("case-insensitive prefix in stored order", func(t *testing.T) {
		rows := ta.Prefix("TOM", 10)
		require.Len(t, rows, 1)
		assert.Equal(t, "Tomato", rows[0].Name)
	})

	t.Run("limit caps results", func(t *testing.T) {
		rows := ta.Prefix("o", 10)
		require.Len(t, rows, 1)
		assert.Equal(t, "Onion", rows[0].Name)
	})

	t.Run("empty query yields nothing", func(t *testing.T) {
		assert.Empty(t, ta.Prefix("", 10))
		assert.Empty(t, ta.Prefix("   ", 10))
	})

	t.Run("non-positive limit yields nothing", func(t *testing.T) {
		assert.Empty(t, ta.Prefix("tom", 0))
	})
}

func TestTypeaheadContains(t *testing.T) {
	ta := newTestTypeahead()

	rows := ta.Contains("onion", 10)
	require.Len(t, rows, 2)
	assert.Equal(t, "green onion", rows[0].Name)
	assert.Equal(t, "Onion", rows[1].Name)

	rows = ta.Contains("onion", 1)
	require.Len(t, rows, 1)
	assert.Equal(t, "green onion", rows[0].Name, "stored order, first match wins the limit")
}

func TestTypeaheadRows(t *testing.T) {
	ta := newTestTypeahead()
	assert.Len(t, ta.Rows(), 5)
	assert.Empty(t, NewTypeahead(nil).Rows())
}
