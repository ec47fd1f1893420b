package validate

import (
	"fmt"

	"recipe-finder/internal/core/ontology"
	"recipe-finder/internal/core/retrieval"
	"recipe-finder/internal/core/units"
)

// Issue lists the problems found in one recipe.
type Issue struct {
	RecipeIndex int      `json:"recipe_index"`
	Errors      []string `json:"errors"`
}

// Validator checks recipe snapshots against the ontology and the units
// parser.
type Validator struct {
	index *ontology.Index
	units *units.Service
}

// NewValidator creates a validator over one snapshot generation.
func NewValidator(index *ontology.Index, units *units.Service) *Validator {
	return &Validator{index: index, units: units}
}

// ValidateAll validates every recipe and returns issues for the ones with
// problems. An empty result means the corpus is structurally sound.
func (v *Validator) ValidateAll(recipes []retrieval.Recipe) []Issue {
	issues := []Issue{}
	for idx, r := range recipes {
		if errs := v.ValidateRecipe(r); len(errs) > 0 {
			issues = append(issues, Issue{RecipeIndex: idx, Errors: errs})
		}
	}
	return issues
}

// ValidateRecipe checks the shape of a single recipe and returns
// human-readable error strings (empty if valid). Requirements: a title, a
// non-empty ingredient list, known ontology ids, and parseable quantities
// where a qty is present.
func (v *Validator) ValidateRecipe(recipe retrieval.Recipe) []string {
	errs := []string{}

	if recipe.Title == "" {
		errs = append(errs, "missing key: title")
	}
	if len(recipe.Ingredients) == 0 {
		errs = append(errs, "ingredients must be a non-empty list")
		return errs
	}

	for i, ing := range recipe.Ingredients {
		if ing.ID == "" {
			errs = append(errs, fmt.Sprintf("ingredient[%d] missing 'id'", i))
			continue
		}
		if !v.index.Has(ing.ID) {
			errs = append(errs, fmt.Sprintf("ingredient[%d] unknown ontology id: %s", i, ing.ID))
		}

		// qty is optional, but if present it should be understandable.
		if ing.Qty != "" {
			parsed := v.units.ParseQuantity(ing.Qty)
			if parsed.AmountMin == nil && parsed.Unit == "" {
				errs = append(errs, fmt.Sprintf("ingredient[%d] qty not understood: %s", i, ing.Qty))
			}
		}
	}

	return errs
}

// MissingIDs returns the subset of ids that are not known ontology nodes.
func (v *Validator) MissingIDs(ids []string) []string {
	missing := []string{}
	for _, id := range ids {
		if !v.index.Has(id) {
			missing = append(missing, id)
		}
	}
	return missing
}
