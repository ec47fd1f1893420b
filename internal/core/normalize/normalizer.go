package normalize

import (
	"sort"
	"strings"

	"recipe-finder/internal/core/ontology"
)

// Resolution sources, strongest match first.
const (
	SourceAlias    = "alias"
	SourceLabel    = "label"
	SourceSynonym  = "synonym"
	SourceFuzzy    = "fuzzy"
	SourceEmpty    = "empty"
	SourceNotFound = "not_found"
)

// Resolution is the outcome of resolving one free-text term.
type Resolution struct {
	ID         string  `json:"id,omitempty"`
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Normalizer resolves free-text ingredient names to ontology ids using, in
// order: the local alias map, exact labels, exact synonyms, and a fuzzy
// prefix fallback.
type Normalizer struct {
	index    *ontology.Index
	aliases  map[string]string
	labels   map[string]string
	synonyms map[string]string
	allNames map[string]string
	// sorted name keys keep the fuzzy fallback deterministic
	names []string
}

// NewNormalizer builds the name indexes over one ontology snapshot plus a
// local alias map (alias → id, keys matched case-insensitively).
func NewNormalizer(index *ontology.Index, nodes []ontology.Node, aliases map[string]string) *Normalizer {
	n := &Normalizer{
		index:    index,
		aliases:  make(map[string]string, len(aliases)),
		labels:   make(map[string]string, len(nodes)),
		synonyms: make(map[string]string),
		allNames: make(map[string]string),
	}

	for alias, id := range aliases {
		key := strings.ToLower(strings.TrimSpace(alias))
		if key != "" && id != "" {
			n.aliases[key] = id
		}
	}

	for _, node := range nodes {
		if node.ID == "" {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(node.Label))
		if label != "" {
			n.labels[label] = node.ID
		}
		for _, syn := range node.Synonyms {
			s := strings.ToLower(strings.TrimSpace(syn))
			if s != "" {
				n.synonyms[s] = node.ID
			}
		}
	}

	// Labels take precedence over synonyms in the combined index.
	for s, id := range n.synonyms {
		n.allNames[s] = id
	}
	for l, id := range n.labels {
		n.allNames[l] = id
	}

	n.names = make([]string, 0, len(n.allNames))
	for name := range n.allNames {
		n.names = append(n.names, name)
	}
	sort.Strings(n.names)

	return n
}

// Resolve turns free text into an ontology id. Failure to resolve is a
// normal outcome, reported through Source, never an error.
func (n *Normalizer) Resolve(raw string) Resolution {
	term := strings.ToLower(strings.TrimSpace(raw))
	if term == "" {
		return Resolution{Source: SourceEmpty}
	}

	if id, ok := n.aliases[term]; ok {
		return Resolution{ID: id, Label: n.index.Label(id), Confidence: 1.0, Source: SourceAlias}
	}

	if id, ok := n.labels[term]; ok {
		return Resolution{ID: id, Label: n.index.Label(id), Confidence: 1.0, Source: SourceLabel}
	}

	if id, ok := n.synonyms[term]; ok {
		return Resolution{ID: id, Label: n.index.Label(id), Confidence: 0.9, Source: SourceSynonym}
	}

	// Fuzzy fallback: first known name sharing the term's 3-char prefix.
	prefix := term
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	for _, name := range n.names {
		if strings.HasPrefix(name, prefix) {
			id := n.allNames[name]
			return Resolution{ID: id, Label: n.index.Label(id), Confidence: 0.5, Source: SourceFuzzy}
		}
	}

	return Resolution{Source: SourceNotFound}
}
