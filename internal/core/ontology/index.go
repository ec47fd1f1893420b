package ontology

import (
	"sort"
	"strings"
)

// Node is one ingredient concept in the ontology snapshot. Immutable once
// loaded.
type Node struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Parents      []string `json:"parents"`
	Synonyms     []string `json:"synonyms"`
	DietTags     []string `json:"diet_tags"`
	AllergenTags []string `json:"allergen_tags"`
}

// TagSet is a normalized (trimmed, lowercased) set of tag strings.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from raw values, dropping empties.
func NewTagSet(vals ...string) TagSet {
	s := make(TagSet, len(vals))
	for _, v := range vals {
		t := strings.ToLower(strings.TrimSpace(v))
		if t == "" {
			continue
		}
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether v (normalized) is in the set.
func (s TagSet) Has(v string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

type entry struct {
	node      *Node
	parents   map[string]struct{}
	diet      TagSet
	allergens TagSet
}

// Index is the read-only ontology graph: id → node plus a reverse index
// parent id → child ids. Unknown ids are a normal absent result.
type Index struct {
	entries  map[string]*entry
	children map[string][]string
}

// NewIndex builds the index over all nodes, including the parent reverse
// index. O(n) construction; the index never mutates afterwards.
func NewIndex(nodes []Node) *Index {
	ix := &Index{
		entries:  make(map[string]*entry, len(nodes)),
		children: make(map[string][]string),
	}
	for i := range nodes {
		n := nodes[i]
		if n.ID == "" {
			continue
		}
		parents := make(map[string]struct{}, len(n.Parents))
		for _, p := range n.Parents {
			if p == "" {
				continue
			}
			parents[p] = struct{}{}
		}
		ix.entries[n.ID] = &entry{
			node:      &n,
			parents:   parents,
			diet:      NewTagSet(n.DietTags...),
			allergens: NewTagSet(n.AllergenTags...),
		}
		for p := range parents {
			ix.children[p] = append(ix.children[p], n.ID)
		}
	}
	// Sorted child lists keep sibling iteration deterministic.
	for p := range ix.children {
		sort.Strings(ix.children[p])
	}
	return ix
}

// Get returns the node for id, or absent.
func (ix *Index) Get(id string) (*Node, bool) {
	e, ok := ix.entries[id]
	if !ok {
		return nil, false
	}
	return e.node, true
}

// Has reports whether id is a known node.
func (ix *Index) Has(id string) bool {
	_, ok := ix.entries[id]
	return ok
}

// Len returns the number of nodes.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// ParentsOf returns the parent ids of id (empty for roots and unknown ids).
func (ix *Index) ParentsOf(id string) []string {
	e, ok := ix.entries[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(e.parents))
	for p := range e.parents {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ChildrenOf returns the ids sharing the given parent, in sorted order.
func (ix *Index) ChildrenOf(parent string) []string {
	return ix.children[parent]
}

// SharedParents counts the parent ids a and b have in common.
func (ix *Index) SharedParents(a, b string) int {
	ea, ok := ix.entries[a]
	if !ok {
		return 0
	}
	eb, ok := ix.entries[b]
	if !ok {
		return 0
	}
	// Walk the smaller set.
	small, large := ea.parents, eb.parents
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for p := range small {
		if _, ok := large[p]; ok {
			n++
		}
	}
	return n
}

// MeetsDiet reports whether the node carries every required diet tag. An
// empty requirement always passes; an unknown id fails a non-empty one.
func (ix *Index) MeetsDiet(id string, required TagSet) bool {
	if len(required) == 0 {
		return true
	}
	e, ok := ix.entries[id]
	if !ok {
		return false
	}
	for tag := range required {
		if _, ok := e.diet[tag]; !ok {
			return false
		}
	}
	return true
}

// AvoidsAllergens reports whether the node carries none of the avoided
// allergen tags. An empty avoid set always passes.
func (ix *Index) AvoidsAllergens(id string, avoid TagSet) bool {
	if len(avoid) == 0 {
		return true
	}
	e, ok := ix.entries[id]
	if !ok {
		return true
	}
	for tag := range avoid {
		if _, ok := e.allergens[tag]; ok {
			return false
		}
	}
	return true
}

// Label returns the display label for id, falling back to the id itself.
func (ix *Index) Label(id string) string {
	if e, ok := ix.entries[id]; ok && e.node.Label != "" {
		return e.node.Label
	}
	return id
}
