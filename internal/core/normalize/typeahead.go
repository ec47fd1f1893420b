package normalize

import "strings"

// TypeaheadRow is one flattened name entry from the typeahead snapshot.
type TypeaheadRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"` // "label", "synonym" or "alias"
}

// Typeahead serves name suggestions for the UI from an immutable snapshot.
type Typeahead struct {
	rows []TypeaheadRow
}

// NewTypeahead wraps the snapshot rows.
func NewTypeahead(rows []TypeaheadRow) *Typeahead {
	return &Typeahead{rows: rows}
}

// Rows returns the whole snapshot in stored order.
func (t *Typeahead) Rows() []TypeaheadRow {
	return t.rows
}

// Prefix returns up to limit rows whose name starts with q,
// case-insensitively, in stored order.
func (t *Typeahead) Prefix(q string, limit int) []TypeaheadRow {
	return t.scan(q, limit, strings.HasPrefix)
}

// Contains returns up to limit rows whose name contains q,
// case-insensitively, in stored order.
func (t *Typeahead) Contains(q string, limit int) []TypeaheadRow {
	return t.scan(q, limit, strings.Contains)
}

func (t *Typeahead) scan(q string, limit int, match func(name, q string) bool) []TypeaheadRow {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []TypeaheadRow{}
	if q == "" || limit <= 0 {
		return out
	}
	for _, row := range t.rows {
		if match(strings.ToLower(row.Name), q) {
			out = append(out, row)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}
