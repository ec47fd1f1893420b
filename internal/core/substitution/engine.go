package substitution

import (
	"sort"
	"strings"

	"recipe-finder/internal/core/ontology"
)

// Weights are the named heuristic constants of the suggestion scorer.
type Weights struct {
	FallbackBase       float64
	BonusRoleMatch     float64
	BonusSameParent    float64
	BonusDietOK        float64
	PenaltyRoleUnknown float64
	SharedParentStep   float64
	DefaultRuleWeight  float64
}

// DefaultWeights returns the stock scoring constants.
func DefaultWeights() Weights {
	return Weights{
		FallbackBase:       0.55,
		BonusRoleMatch:     0.10,
		BonusSameParent:    0.05,
		BonusDietOK:        0.05,
		PenaltyRoleUnknown: 0.05,
		SharedParentStep:   0.01,
		DefaultRuleWeight:  0.6,
	}
}

// Suggestion is one candidate replacement for a source ingredient.
type Suggestion struct {
	TargetID string  `json:"target_id"`
	Score    float64 `json:"score"`
	Reason   string  `json:"reason"`
	Source   string  `json:"source"` // "rule" or "fallback"
	Notes    string  `json:"notes,omitempty"`
}

// IDSet is a set of raw ingredient ids (case-sensitive, unlike TagSet).
type IDSet map[string]struct{}

// NewIDSet builds an IDSet from ids, dropping empties.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Query carries one SuggestFor invocation's constraints.
type Query struct {
	SourceID        string
	Role            string
	AvoidIDs        IDSet
	DietRequired    ontology.TagSet
	AvoidAllergens  ontology.TagSet
	Limit           int
	IncludeFallback bool
}

// Engine produces ranked substitution candidates by combining explicit rules
// with ontology sibling fallback. It is immutable after construction and
// safe for concurrent use.
type Engine struct {
	index   *ontology.Index
	roles   *ontology.RoleResolver
	rules   RuleMap
	weights Weights
}

// NewEngine creates a substitution engine over one snapshot generation.
func NewEngine(index *ontology.Index, roles *ontology.RoleResolver, rules RuleMap, weights Weights) *Engine {
	return &Engine{
		index:   index,
		roles:   roles,
		rules:   rules,
		weights: weights,
	}
}

// SuggestFor returns up to q.Limit suggestions for q.SourceID, best first.
// Rule candidates are gathered first; the sibling fallback runs only when
// IncludeFallback is set and rules alone cannot fill the limit. Absence of
// suggestions is a valid, silent outcome — there is no error path.
func (e *Engine) SuggestFor(q Query) []Suggestion {
	if q.Limit <= 0 {
		q.Limit = 5
	}
	q.Role = strings.ToLower(strings.TrimSpace(q.Role))

	ruled := e.suggestFromRules(q)

	var fallbacks []Suggestion
	if q.IncludeFallback && len(ruled) < q.Limit {
		fallbacks = e.suggestFromSiblings(q)
	}

	combined := mergeAndRank(ruled, fallbacks)
	if len(combined) > q.Limit {
		combined = combined[:q.Limit]
	}
	return combined
}

// suggestFromRules runs the explicit-rule pass. The rule map is consulted
// even when the source is not a known ontology node.
func (e *Engine) suggestFromRules(q Query) []Suggestion {
	rules := e.rules[q.SourceID]
	if len(rules) == 0 {
		return nil
	}

	out := make([]Suggestion, 0, len(rules))
	for _, rule := range rules {
		if rule.TargetID == "" || rule.TargetID == q.SourceID || q.AvoidIDs.Has(rule.TargetID) {
			continue
		}
		if !e.index.Has(rule.TargetID) {
			continue
		}
		if !e.index.MeetsDiet(rule.TargetID, q.DietRequired) {
			continue
		}
		if !e.index.AvoidsAllergens(rule.TargetID, q.AvoidAllergens) {
			continue
		}
		// A pinned role constraint must equal the requested role when one
		// was requested. Unconstrained rules always pass.
		constraint := strings.ToLower(strings.TrimSpace(rule.RoleConstraint))
		if constraint != "" && q.Role != "" && q.Role != constraint {
			continue
		}

		score := rule.Weight
		reasons := []string{"explicit rule"}

		if q.Role != "" && constraint == q.Role {
			score += e.weights.BonusRoleMatch
			reasons = append(reasons, "role match: "+q.Role)
		}
		if e.index.SharedParents(q.SourceID, rule.TargetID) > 0 {
			score += e.weights.BonusSameParent
			reasons = append(reasons, "same parent class")
		}
		if len(q.DietRequired) > 0 {
			score += e.weights.BonusDietOK
			reasons = append(reasons, "meets diet")
		}

		out = append(out, Suggestion{
			TargetID: rule.TargetID,
			Score:    clamp01(score),
			Reason:   strings.Join(reasons, "; "),
			Source:   "rule",
			Notes:    rule.Notes,
		})
	}
	return out
}

// admitByRole is the fallback-pass admission predicate: a candidate passes
// when no role was requested, when its role set contains the requested
// role, or when its role set is empty (unknown roles are tolerated; the
// score penalty is applied separately).
func admitByRole(requested string, candRoles ontology.TagSet) bool {
	if requested == "" {
		return true
	}
	if candRoles.Has(requested) {
		return true
	}
	return len(candRoles) == 0
}

// suggestFromSiblings runs the ontology fallback pass: every other child of
// every parent of the source is a candidate. An unknown source has no
// sibling data and yields nothing.
func (e *Engine) suggestFromSiblings(q Query) []Suggestion {
	if !e.index.Has(q.SourceID) {
		return nil
	}

	seen := make(map[string]struct{})
	candidates := make([]string, 0)
	for _, parent := range e.index.ParentsOf(q.SourceID) {
		for _, sib := range e.index.ChildrenOf(parent) {
			if sib == q.SourceID {
				continue
			}
			if _, dup := seen[sib]; dup {
				continue
			}
			seen[sib] = struct{}{}
			candidates = append(candidates, sib)
		}
	}
	sort.Strings(candidates)

	out := make([]Suggestion, 0, len(candidates))
	for _, targetID := range candidates {
		if q.AvoidIDs.Has(targetID) {
			continue
		}
		if !e.index.MeetsDiet(targetID, q.DietRequired) {
			continue
		}
		if !e.index.AvoidsAllergens(targetID, q.AvoidAllergens) {
			continue
		}

		candRoles := e.roles.RolesFor(targetID)
		if !admitByRole(q.Role, candRoles) {
			continue
		}

		score := e.weights.FallbackBase
		reasons := []string{"same parent fallback"}

		if q.Role != "" {
			if candRoles.Has(q.Role) {
				score += e.weights.BonusRoleMatch
				reasons = append(reasons, "role match: "+q.Role)
			} else if len(candRoles) == 0 {
				score -= e.weights.PenaltyRoleUnknown
				reasons = append(reasons, "role unknown")
			}
		}

		score += e.weights.SharedParentStep * float64(e.index.SharedParents(q.SourceID, targetID))

		if len(q.DietRequired) > 0 {
			score += e.weights.BonusDietOK
			reasons = append(reasons, "meets diet")
		}

		out = append(out, Suggestion{
			TargetID: targetID,
			Score:    clamp01(score),
			Reason:   strings.Join(reasons, "; "),
			Source:   "fallback",
		})
	}
	return out
}

// mergeAndRank de-duplicates by target id keeping the highest score, then
// orders by score descending with target id ascending as the tie-break so
// identical inputs always rank identically.
func mergeAndRank(a, b []Suggestion) []Suggestion {
	best := make(map[string]Suggestion, len(a)+len(b))
	for _, item := range append(append([]Suggestion{}, a...), b...) {
		prev, ok := best[item.TargetID]
		if !ok || item.Score > prev.Score {
			best[item.TargetID] = item
		}
	}

	merged := make([]Suggestion, 0, len(best))
	for _, item := range best {
		merged = append(merged, item)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].TargetID < merged[j].TargetID
	})
	return merged
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
