package retrieval

import (
	"sort"

	"recipe-finder/internal/core/ontology"
	"recipe-finder/internal/core/substitution"
)

// ScoreWeights are the signed ranking coefficients. Score is
// WeightHave·have − WeightAvoid·avoid − WeightMissing·missing and may be
// negative.
type ScoreWeights struct {
	Have    int
	Avoid   int
	Missing int
}

// DefaultScoreWeights returns the stock 3/−2/−1 coefficients.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Have: 3, Avoid: 2, Missing: 1}
}

// SearchQuery is one corpus search.
type SearchQuery struct {
	HaveIDs                []string
	AvoidIDs               []string
	Diet                   []string
	AvoidAllergens         []string
	Limit                  int
	HardExcludeUnavoidable bool
	AttachLabels           bool
}

// AdaptedIngredient mirrors Ingredient with an optional display label
// attached when the caller requests it.
type AdaptedIngredient struct {
	ID    string `json:"id"`
	Qty   string `json:"qty,omitempty"`
	Label string `json:"label,omitempty"`
}

// Result is one ranked, adapted recipe.
type Result struct {
	RecipeIndex         int                 `json:"recipe_index"`
	Title               string              `json:"title"`
	Score               int                 `json:"score"`
	HaveCount           int                 `json:"have_count"`
	MissingCount        int                 `json:"missing_count"`
	AvoidCount          int                 `json:"avoid_count"`
	IngredientsOriginal []Ingredient        `json:"ingredients_original"`
	IngredientsAdapted  []AdaptedIngredient `json:"ingredients_adapted"`
	ChangeLog           []ChangeEntry       `json:"change_log"`
}

// SearchResponse is the search result envelope.
type SearchResponse struct {
	Count   int      `json:"count"`
	Results []Result `json:"results"`
}

// Ranker drives the adapter across the whole recipe corpus and produces a
// deterministically ordered, size-limited result set.
type Ranker struct {
	recipes []Recipe
	adapter *Adapter
	index   *ontology.Index
	weights ScoreWeights
}

// NewRanker creates a ranker over one recipe corpus snapshot.
func NewRanker(recipes []Recipe, adapter *Adapter, index *ontology.Index, weights ScoreWeights) *Ranker {
	return &Ranker{
		recipes: recipes,
		adapter: adapter,
		index:   index,
		weights: weights,
	}
}

// Recipes returns the corpus in its stored order.
func (r *Ranker) Recipes() []Recipe {
	return r.recipes
}

// Search adapts every recipe in corpus order, skips hard-excluded ones,
// scores and ranks the rest, and truncates to the limit (coerced to ≥ 1).
func (r *Ranker) Search(q SearchQuery) SearchResponse {
	if q.Limit < 1 {
		q.Limit = 1
	}

	constraints := Constraints{
		Have:                   substitution.NewIDSet(q.HaveIDs...),
		Avoid:                  substitution.NewIDSet(q.AvoidIDs...),
		Diet:                   ontology.NewTagSet(q.Diet...),
		AvoidAllergens:         ontology.NewTagSet(q.AvoidAllergens...),
		HardExcludeUnavoidable: q.HardExcludeUnavoidable,
	}

	results := make([]Result, 0, len(r.recipes))
	for idx, recipe := range r.recipes {
		adapted := r.adapter.Adapt(recipe, constraints)
		if adapted == nil {
			// Hard exclusion: the recipe leaves the result set entirely.
			continue
		}

		results = append(results, Result{
			RecipeIndex:         idx,
			Title:               recipe.Title,
			Score:               r.score(adapted),
			HaveCount:           adapted.HaveCount,
			MissingCount:        adapted.MissingCount,
			AvoidCount:          adapted.AvoidCount,
			IngredientsOriginal: recipe.Ingredients,
			IngredientsAdapted:  r.decorate(adapted.Ingredients, q.AttachLabels),
			ChangeLog:           adapted.ChangeLog,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return resultLess(results[i], results[j])
	})

	if len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return SearchResponse{Count: len(results), Results: results}
}

func (r *Ranker) score(a *Adaptation) int {
	return r.weights.Have*a.HaveCount - r.weights.Avoid*a.AvoidCount - r.weights.Missing*a.MissingCount
}

// resultLess is the ranking comparator: score descending, then missing
// count ascending, then avoid count ascending, then title ascending. The
// exact key chain is what makes result order reproducible across runs, so
// it lives in one named function and is tested in isolation.
func resultLess(a, b Result) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.MissingCount != b.MissingCount {
		return a.MissingCount < b.MissingCount
	}
	if a.AvoidCount != b.AvoidCount {
		return a.AvoidCount < b.AvoidCount
	}
	return a.Title < b.Title
}

func (r *Ranker) decorate(ings []Ingredient, attachLabels bool) []AdaptedIngredient {
	out := make([]AdaptedIngredient, 0, len(ings))
	for _, ing := range ings {
		item := AdaptedIngredient{ID: ing.ID, Qty: ing.Qty}
		if attachLabels {
			item.Label = r.index.Label(ing.ID)
		}
		out = append(out, item)
	}
	return out
}
