package retrieval

import (
	"recipe-finder/internal/core/ontology"
	"recipe-finder/internal/core/substitution"
)

// Ingredient is one recipe line. Qty is opaque text; the core never
// interprets it.
type Ingredient struct {
	ID  string `json:"id"`
	Qty string `json:"qty,omitempty"`
}

// Recipe is one corpus entry.
type Recipe struct {
	Title       string       `json:"title"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Change log entry types.
const (
	ChangeAvoidSub    = "avoid_sub"
	ChangeAvoidRemove = "avoid_remove"
	ChangeMissingSub  = "missing_sub"
)

// ChangeEntry records one substitution or removal applied while adapting a
// recipe. ToID and Score are absent for removals.
type ChangeEntry struct {
	Type   string   `json:"type"`
	FromID string   `json:"from_id"`
	ToID   string   `json:"to_id,omitempty"`
	Reason string   `json:"reason"`
	Score  *float64 `json:"score,omitempty"`
	Notes  string   `json:"notes,omitempty"`
}

// Constraints are the user-side inputs to one adaptation.
type Constraints struct {
	Have           substitution.IDSet
	Avoid          substitution.IDSet
	Diet           ontology.TagSet
	AvoidAllergens ontology.TagSet
	// HardExcludeUnavoidable discards the whole recipe when an avoided
	// ingredient has no substitute, instead of dropping the ingredient.
	HardExcludeUnavoidable bool
}

// Adaptation is the outcome of adapting one recipe. Counts are computed
// over the original ingredient ids, independent of substitution outcomes.
type Adaptation struct {
	HaveCount    int
	MissingCount int
	AvoidCount   int
	Ingredients  []Ingredient
	ChangeLog    []ChangeEntry
}

// Adapter applies the substitution engine to every ingredient of a recipe.
type Adapter struct {
	subs *substitution.Engine
}

// NewAdapter creates an adapter over the given substitution engine.
func NewAdapter(subs *substitution.Engine) *Adapter {
	return &Adapter{subs: subs}
}

// Adapt walks the recipe's ingredients in order and returns the adapted
// result, or nil when HardExcludeUnavoidable is set and an avoided
// ingredient has no substitute (the recipe-discard sentinel).
func (a *Adapter) Adapt(recipe Recipe, c Constraints) *Adaptation {
	haveCount, missingCount, avoidCount := 0, 0, 0
	for _, ing := range recipe.Ingredients {
		if ing.ID == "" {
			continue
		}
		if c.Have.Has(ing.ID) {
			haveCount++
		} else {
			missingCount++
		}
		if c.Avoid.Has(ing.ID) {
			avoidCount++
		}
	}

	// Substitutions must never reintroduce an avoided item or duplicate
	// something the user already owns.
	blockList := make(substitution.IDSet, len(c.Avoid)+len(c.Have))
	for id := range c.Avoid {
		blockList[id] = struct{}{}
	}
	for id := range c.Have {
		blockList[id] = struct{}{}
	}

	adapted := make([]Ingredient, 0, len(recipe.Ingredients))
	changeLog := make([]ChangeEntry, 0)

	for _, ing := range recipe.Ingredients {
		if ing.ID == "" {
			continue
		}

		switch {
		case c.Avoid.Has(ing.ID):
			best, ok := a.bestSuggestion(ing.ID, blockList, c)
			if ok {
				adapted = append(adapted, Ingredient{ID: best.TargetID, Qty: ing.Qty})
				score := best.Score
				changeLog = append(changeLog, ChangeEntry{
					Type:   ChangeAvoidSub,
					FromID: ing.ID,
					ToID:   best.TargetID,
					Reason: best.Reason,
					Score:  &score,
					Notes:  best.Notes,
				})
				continue
			}
			if c.HardExcludeUnavoidable {
				// Unavoidable and unsubstitutable: discard the recipe.
				return nil
			}
			// Drop the ingredient as a last resort.
			changeLog = append(changeLog, ChangeEntry{
				Type:   ChangeAvoidRemove,
				FromID: ing.ID,
				Reason: "no suitable substitute found",
			})

		case c.Have.Has(ing.ID):
			adapted = append(adapted, ing)

		default:
			// Missing: substitute when possible, otherwise keep the
			// original line rather than silently dropping it.
			best, ok := a.bestSuggestion(ing.ID, blockList, c)
			if !ok {
				adapted = append(adapted, ing)
				continue
			}
			adapted = append(adapted, Ingredient{ID: best.TargetID, Qty: ing.Qty})
			score := best.Score
			changeLog = append(changeLog, ChangeEntry{
				Type:   ChangeMissingSub,
				FromID: ing.ID,
				ToID:   best.TargetID,
				Reason: best.Reason,
				Score:  &score,
				Notes:  best.Notes,
			})
		}
	}

	return &Adaptation{
		HaveCount:    haveCount,
		MissingCount: missingCount,
		AvoidCount:   avoidCount,
		Ingredients:  adapted,
		ChangeLog:    changeLog,
	}
}

func (a *Adapter) bestSuggestion(sourceID string, blockList substitution.IDSet, c Constraints) (substitution.Suggestion, bool) {
	suggestions := a.subs.SuggestFor(substitution.Query{
		SourceID:        sourceID,
		AvoidIDs:        blockList,
		DietRequired:    c.Diet,
		AvoidAllergens:  c.AvoidAllergens,
		Limit:           1,
		IncludeFallback: true,
	})
	if len(suggestions) == 0 {
		return substitution.Suggestion{}, false
	}
	return suggestions[0], true
}
