package substitution

import (
	"encoding/json"
)

// Rule is one canonical substitution rule. Rules are keyed by source id in a
// RuleMap; multiple rules per source are allowed.
type Rule struct {
	TargetID       string
	Weight         float64
	Reason         string
	Notes          string
	RoleConstraint string
}

// RuleMap is the canonical per-source rule table.
type RuleMap map[string][]Rule

// ruleRecord matches a single target entry in either snapshot shape.
// target_id/id and weight/similarity are accepted interchangeably.
type ruleRecord struct {
	TargetID       string   `json:"target_id"`
	ID             string   `json:"id"`
	Weight         *float64 `json:"weight"`
	Similarity     *float64 `json:"similarity"`
	Reason         string   `json:"reason"`
	Notes          string   `json:"notes"`
	RoleConstraint string   `json:"role_constraint"`
}

// NormalizeRules coerces a rule snapshot into a RuleMap. Two input shapes
// are accepted:
//
//	{ "src": [ {target_id|id, weight|similarity, ...}, ... ] }
//	[ { "source_id": "src", "targets": [ ... ] }, ... ]
//
// The function is total: malformed entries are dropped and an unrecognized
// top-level shape yields an empty map. Scoring code never sees the raw
// input shape again.
func NormalizeRules(raw json.RawMessage, defaultWeight float64) RuleMap {
	out := make(RuleMap)
	if len(raw) == 0 {
		return out
	}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err == nil {
		for src, targets := range asMap {
			if src == "" {
				continue
			}
			bucket := decodeTargets(targets, defaultWeight)
			if len(bucket) > 0 {
				out[src] = bucket
			}
		}
		return out
	}

	var asList []json.RawMessage
	if err := json.Unmarshal(raw, &asList); err == nil {
		for _, item := range asList {
			var entry struct {
				SourceID string          `json:"source_id"`
				Targets  json.RawMessage `json:"targets"`
			}
			if err := json.Unmarshal(item, &entry); err != nil || entry.SourceID == "" {
				continue
			}
			bucket := decodeTargets(entry.Targets, defaultWeight)
			if len(bucket) > 0 {
				out[entry.SourceID] = append(out[entry.SourceID], bucket...)
			}
		}
		return out
	}

	// Unknown shape: treated as no rules at all.
	return out
}

func decodeTargets(raw json.RawMessage, defaultWeight float64) []Rule {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil
	}

	bucket := make([]Rule, 0, len(records))
	for _, rec := range records {
		var r ruleRecord
		if err := json.Unmarshal(rec, &r); err != nil {
			continue
		}
		target := r.TargetID
		if target == "" {
			target = r.ID
		}
		if target == "" {
			continue
		}

		weight := defaultWeight
		if r.Weight != nil {
			weight = *r.Weight
		} else if r.Similarity != nil {
			weight = *r.Similarity
		}

		reason := r.Reason
		if reason == "" {
			reason = r.Notes
		}
		if reason == "" {
			reason = "rule-based substitute"
		}

		bucket = append(bucket, Rule{
			TargetID:       target,
			Weight:         weight,
			Reason:         reason,
			Notes:          r.Notes,
			RoleConstraint: r.RoleConstraint,
		})
	}
	return bucket
}
