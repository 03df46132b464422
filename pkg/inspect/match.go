package inspect

import (
	"sort"
	"strings"
)

// MatchKind ranks how a candidate matched a query.
type MatchKind uint8

const (
	// MatchExact - candidate equals the query.
	MatchExact MatchKind = iota

	// MatchPrefix - candidate starts with the query.
	MatchPrefix

	// MatchSubstring - candidate contains the query.
	MatchSubstring
)

// Match is one search hit.
type Match struct {
	Name string
	Kind MatchKind
}

// Search matches a query against candidate names, case-insensitive.
// Results are ordered exact first, then prefix, then substring, with
// alphabetical order inside each rank. An empty query matches every
// candidate.
func Search(query string, candidates []string) []Match {
	q := strings.ToLower(strings.TrimSpace(query))

	var matches []Match
	for _, name := range candidates {
		lower := strings.ToLower(name)
		switch {
		case q == "" || lower == q:
			kind := MatchExact
			if q == "" {
				kind = MatchSubstring
			}
			matches = append(matches, Match{Name: name, Kind: kind})
		case strings.HasPrefix(lower, q):
			matches = append(matches, Match{Name: name, Kind: MatchPrefix})
		case strings.Contains(lower, q):
			matches = append(matches, Match{Name: name, Kind: MatchSubstring})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Kind != matches[j].Kind {
			return matches[i].Kind < matches[j].Kind
		}
		return matches[i].Name < matches[j].Name
	})
	return matches
}

// SearchUnits matches a query against the units loaded on a host.
func (i *Inspector) SearchUnits(query string) []Match {
	statuses := i.host.List()
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.Name)
	}
	return Search(query, names)
}

// SearchParams matches a query against the parameters of one unit.
func (i *Inspector) SearchParams(unit, query string) ([]Match, error) {
	node, err := i.InspectUnit(unit)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(node.Params))
	for _, p := range node.Params {
		names = append(names, p.Name)
	}
	return Search(query, names), nil
}
