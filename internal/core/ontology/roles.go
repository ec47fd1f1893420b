package ontology

import (
	"strings"
	"sync"
)

// RoleConfig holds the three role-derivation strategies from the role
// snapshot.
type RoleConfig struct {
	ByID             map[string][]string `json:"by_id"`
	ByParent         map[string][]string `json:"by_parent"`
	ByLabelSubstring map[string][]string `json:"by_label_substring"`
}

// RoleResolver derives functional role tags (e.g. "protein", "dairy") for
// ingredient ids. Results are memoized for the lifetime of the snapshot;
// the memo is write-once per id, so concurrent readers of one generation
// never see mixed data.
type RoleResolver struct {
	index *Index
	cfg   RoleConfig
	memo  sync.Map // id → TagSet
}

// NewRoleResolver creates a resolver bound to one ontology snapshot.
func NewRoleResolver(index *Index, cfg RoleConfig) *RoleResolver {
	return &RoleResolver{index: index, cfg: cfg}
}

// RolesFor returns the role tags for id: the union of the by-id mapping,
// the by-parent mapping over every parent, and every label-substring rule
// whose needle matches the node's label case-insensitively. Unknown ids
// yield an empty set.
func (r *RoleResolver) RolesFor(id string) TagSet {
	if cached, ok := r.memo.Load(id); ok {
		return cached.(TagSet)
	}

	out := make(TagSet)
	add := func(role string) {
		role = strings.ToLower(strings.TrimSpace(role))
		if role != "" {
			out[role] = struct{}{}
		}
	}

	for _, role := range r.cfg.ByID[id] {
		add(role)
	}

	if node, ok := r.index.Get(id); ok {
		for _, p := range r.index.ParentsOf(id) {
			for _, role := range r.cfg.ByParent[p] {
				add(role)
			}
		}

		label := strings.ToLower(node.Label)
		for needle, roles := range r.cfg.ByLabelSubstring {
			if needle == "" {
				continue
			}
			if strings.Contains(label, strings.ToLower(needle)) {
				for _, role := range roles {
					add(role)
				}
			}
		}
	}

	actual, _ := r.memo.LoadOrStore(id, out)
	return actual.(TagSet)
}
