package validate

import (
	"testing"

	"recipe-finder/internal/core/ontology"
	"recipe-finder/internal/core/retrieval"
	"recipe-finder/internal/core/units"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *Validator {
	index := ontology.NewIndex([]ontology.Node{
		{ID: "flour", Label: "Flour"},
		{ID: "sugar", Label: "Sugar"},
	})
	return NewValidator(index, units.NewService(nil))
}

func TestValidateRecipe(t *testing.T) {
	v := newTestValidator()

	t.Run("valid recipe has no errors", func(t *testing.T) {
		errs := v.ValidateRecipe(retrieval.Recipe{
			Title:       "Cake",
			Ingredients: []retrieval.Ingredient{{ID: "flour", Qty: "200 g"}, {ID: "sugar"}},
		})
		assert.Empty(t, errs)
	})

	t.Run("missing title", func(t *testing.T) {
		errs := v.ValidateRecipe(retrieval.Recipe{
			Ingredients: []retrieval.Ingredient{{ID: "flour"}},
		})
		assert.Equal(t, []string{"missing key: title"}, errs)
	})

	t.Run("empty ingredient list short-circuits", func(t *testing.T) {
		errs := v.ValidateRecipe(retrieval.Recipe{Title: "Empty"})
		assert.Equal(t, []string{"ingredients must be a non-empty list"}, errs)
	})

	t.Run("ingredient without id", func(t *testing.T) {
		errs := v.ValidateRecipe(retrieval.Recipe{
			Title:       "Odd",
			Ingredients: []retrieval.Ingredient{{Qty: "1 cup"}},
		})
		assert.Equal(t, []string{"ingredient[0] missing 'id'"}, errs)
	})

	t.Run("unknown ontology id", func(t *testing.T) {
		errs := v.ValidateRecipe(retrieval.Recipe{
			Title:       "Mystery",
			Ingredients: []retrieval.Ingredient{{ID: "unobtainium"}},
		})
		assert.Equal(t, []string{"ingredient[0] unknown ontology id: unobtainium"}, errs)
	})

	t.Run("unparseable qty", func(t *testing.T) {
		errs := v.ValidateRecipe(retrieval.Recipe{
			Title:       "Vague",
			Ingredients: []retrieval.Ingredient{{ID: "flour", Qty: "???"}},
		})
		assert.Equal(t, []string{"ingredient[0] qty not understood: ???"}, errs)
	})

	t.Run("multiple problems accumulate", func(t *testing.T) {
		errs := v.ValidateRecipe(retrieval.Recipe{
			Ingredients: []retrieval.Ingredient{{ID: "unobtainium"}, {ID: ""}},
		})
		require.Len(t, errs, 3)
		assert.Contains(t, errs, "missing key: title")
	})
}

func TestValidateAll(t *testing.T) {
	v := newTestValidator()
	recipes := []retrieval.Recipe{
		{Title: "Good", Ingredients: []retrieval.Ingredient{{ID: "flour"}}},
		{Title: "Bad", Ingredients: []retrieval.Ingredient{{ID: "unobtainium"}}},
	}

	issues := v.ValidateAll(recipes)
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].RecipeIndex)
	assert.NotEmpty(t, issues[0].Errors)

	assert.Empty(t, v.ValidateAll(recipes[:1]))
	assert.NotNil(t, v.ValidateAll(recipes[:1]), "clean corpus serializes as []")
}

func TestMissingIDs(t *testing.T) {
	v := newTestValidator()
	assert.Equal(t, []string{"salt"}, v.MissingIDs([]string{"flour", "salt", "sugar"}))
	assert.Empty(t, v.MissingIDs([]string{"flour"}))
}
