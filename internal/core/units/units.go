package units

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var unicodeFractions = map[string]float64{
	"½": 0.5,
	"¼": 0.25,
	"¾": 0.75,
	"⅓": 1.0 / 3,
	"⅔": 2.0 / 3,
	"⅛": 0.125,
	"⅜": 0.375,
	"⅝": 0.625,
	"⅞": 0.875,
}

// Parsed is a normalized quantity. All fields stay unset when the text
// could not be understood.
type Parsed struct {
	AmountMin *float64 `json:"amount_min"`
	AmountMax *float64 `json:"amount_max"`
	Unit      string   `json:"unit,omitempty"`
}

// Service parses free-text ingredient quantities against a unit table. The
// table supports both schema styles:
//
//	canonical objects:  "gram": { "aliases": ["g", "grams"] }
//	alias redirects:    "g": "gram"
type Service struct {
	defs        map[string][]string // canonical → aliases
	aliasToUnit map[string]string   // alias → canonical
	qtyRe       *regexp.Regexp
}

// Handles "2 tbsp", "1/2 cup", "½ tsp", "1-2 tsp", "3g", "pinch".
// Fractions come first in the alternation so "1/2" is not cut short at "1".
const qtyPattern = `^\s*(?P<a1>\d+/\d+|\d+(?:\.\d+)?|[½¼¾⅓⅔⅛⅜⅝⅞])?(?:\s*-\s*(?P<a2>\d+/\d+|\d+(?:\.\d+)?|[½¼¾⅓⅔⅛⅜⅝⅞]))?\s*(?P<unit>[a-zA-Zµ]+)?`

// NewService builds the unit tables from the raw units snapshot. A nil or
// empty snapshot still yields a working parser with common defaults.
func NewService(raw map[string]json.RawMessage) *Service {
	s := &Service{
		defs:        make(map[string][]string),
		aliasToUnit: make(map[string]string),
		qtyRe:       regexp.MustCompile(qtyPattern),
	}

	type unitSpec struct {
		Aliases []string `json:"aliases"`
	}

	// Pass 1: canonical definitions (object values).
	for key, val := range raw {
		var spec unitSpec
		if err := json.Unmarshal(val, &spec); err != nil {
			continue
		}
		canon := strings.ToLower(key)
		aliases := make([]string, 0, len(spec.Aliases)+1)
		hasSelf := false
		for _, a := range spec.Aliases {
			a = strings.ToLower(a)
			aliases = append(aliases, a)
			if a == canon {
				hasSelf = true
			}
		}
		if !hasSelf {
			aliases = append(aliases, canon)
		}
		s.defs[canon] = aliases
	}

	// Pass 2: alias redirects (string values).
	for key, val := range raw {
		var target string
		if err := json.Unmarshal(val, &target); err != nil {
			continue
		}
		alias := strings.ToLower(key)
		canon := strings.ToLower(target)
		if _, ok := s.defs[canon]; !ok {
			s.defs[canon] = []string{canon}
		}
		s.aliasToUnit[alias] = canon
	}

	// Pass 3: map all aliases from canonical objects.
	for canon, aliases := range s.defs {
		for _, a := range aliases {
			s.aliasToUnit[a] = canon
		}
	}

	s.ensureCommonDefaults()

	return s
}

// ParseQuantity parses text like "2 tbsp", "500 g", "1/2 cup", "½ tsp" or
// "1-2 tsp" into amounts and a canonical unit. Unparseable text yields a
// zero Parsed, never an error.
func (s *Service) ParseQuantity(qty string) Parsed {
	text := strings.ToLower(strings.TrimSpace(qty))
	if text == "" {
		return Parsed{}
	}

	m := s.qtyRe.FindStringSubmatch(text)
	if m == nil {
		return Parsed{}
	}

	groups := make(map[string]string)
	for i, name := range s.qtyRe.SubexpNames() {
		if name != "" && i < len(m) {
			groups[name] = m[i]
		}
	}

	a1 := parseAmount(groups["a1"])
	a2 := parseAmount(groups["a2"])

	unit := ""
	if raw := groups["unit"]; raw != "" {
		unit = s.aliasToUnit[raw]
	}

	// A single amount is both min and max.
	if a1 != nil && a2 == nil {
		v := *a1
		a2 = &v
	}

	return Parsed{AmountMin: a1, AmountMax: a2, Unit: unit}
}

// CanonicalUnit resolves a unit alias to its canonical name, or "".
func (s *Service) CanonicalUnit(alias string) string {
	return s.aliasToUnit[strings.ToLower(strings.TrimSpace(alias))]
}

func parseAmount(token string) *float64 {
	if token == "" {
		return nil
	}

	if v, ok := unicodeFractions[token]; ok {
		return &v
	}

	if n, d, ok := strings.Cut(token, "/"); ok {
		num, errN := strconv.ParseFloat(n, 64)
		den, errD := strconv.ParseFloat(d, 64)
		if errN != nil || errD != nil || den == 0 {
			return nil
		}
		v := num / den
		return &v
	}

	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ensureCommonDefaults keeps very common units working even when the
// snapshot is minimal. Existing definitions are extended, never replaced.
func (s *Service) ensureCommonDefaults() {
	defaults := map[string][]string{
		"gram":       {"g", "gram", "grams"},
		"kilogram":   {"kg", "kilogram", "kilograms"},
		"milliliter": {"ml", "milliliter", "milliliters"},
		"liter":      {"l", "liter", "liters"},
		"teaspoon":   {"tsp", "teaspoon", "teaspoons"},
		"tablespoon": {"tbsp", "tablespoon", "tablespoons"},
		"cup":        {"cup", "cups"},
		"pinch":      {"pinch"},
		"dash":       {"dash"},
		"piece":      {"pc", "pcs", "piece", "pieces"},
		"clove":      {"clove", "cloves"},
	}

	for canon, aliases := range defaults {
		existing := make(map[string]bool, len(s.defs[canon]))
		for _, a := range s.defs[canon] {
			existing[a] = true
		}
		for _, a := range aliases {
			if !existing[a] {
				s.defs[canon] = append(s.defs[canon], a)
			}
		}
	}

	for canon, aliases := range s.defs {
		for _, a := range aliases {
			if _, ok := s.aliasToUnit[a]; !ok {
				s.aliasToUnit[a] = canon
			}
		}
	}
}
