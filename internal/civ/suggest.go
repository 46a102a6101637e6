package civ

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/antzucaro/matchr"
)

// Suggestion is a candidate name offered when a lookup misses.
type Suggestion struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Distance int    `json:"distance"`
	Phonetic bool   `json:"phonetic,omitempty"`
}

// Suggest returns up to limit entity names close to query, by edit
// distance or by sounding alike. It is only used to explain a miss;
// [Dataset.FindEntityByName] never matches fuzzily.
func (d *Dataset) Suggest(query string, limit int) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}
	qPrimary, qSecondary := matchr.DoubleMetaphone(q)

	var out []Suggestion
	seen := make(map[string]bool)
	for _, e := range d.All() {
		name := e.Info().Name
		lower := strings.ToLower(name)
		if seen[lower] {
			continue
		}

		dist := levenshtein.ComputeDistance(q, lower)
		phonetic := soundsAlike(qPrimary, qSecondary, lower)
		if dist > distanceLimit(len(lower)) && !phonetic {
			continue
		}
		seen[lower] = true
		out = append(out, Suggestion{Name: name, Kind: e.Kind(), Distance: dist, Phonetic: phonetic})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance == out[j].Distance {
			return out[i].Name < out[j].Name
		}
		return out[i].Distance < out[j].Distance
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func soundsAlike(primary, secondary, candidate string) bool {
	if primary == "" {
		return false
	}
	cp, cs := matchr.DoubleMetaphone(candidate)
	if cp == "" {
		return false
	}
	return primary == cp || (secondary != "" && secondary == cs) || primary == cs || secondary == cp
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
