// Package selection tracks which major god, building and entity a viewer
// session has selected, and persists that choice between visits.
package selection

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned for a key that is not one of the three
// selection keys.
var ErrUnknownKey = errors.New("unknown selection key")

// Key names one stored selection value.
type Key string

const (
	KeyEntity   Key = "activeEntity"
	KeyMajorGod Key = "activeMajorGod"
	KeyBuilding Key = "activeBuilding"
)

// Keys lists every selection key.
var Keys = []Key{KeyEntity, KeyMajorGod, KeyBuilding}

// ParseKey validates s as a selection key.
func ParseKey(s string) (Key, error) {
	for _, k := range Keys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// Fallback values for a session that has never selected anything.
const (
	DefaultMajorGod = "zeus"
	DefaultBuilding = "town_center"
)

// Defaults are the values a fresh session starts from.
type Defaults struct {
	MajorGod string
	Building string
}

func (d Defaults) withFallbacks() Defaults {
	if d.MajorGod == "" {
		d.MajorGod = DefaultMajorGod
	}
	if d.Building == "" {
		d.Building = DefaultBuilding
	}
	return d
}

// State is one session's selection. An empty field means nothing is
// selected, except MajorGod which always falls back to a default.
type State struct {
	MajorGod string `json:"activeMajorGod"`
	Building string `json:"activeBuilding"`
	Entity   string `json:"activeEntity"`
}

// Initial returns the state of a session with nothing stored. Empty
// defaults fall back to DefaultMajorGod and DefaultBuilding.
func Initial(d Defaults) State {
	d = d.withFallbacks()
	return State{MajorGod: d.MajorGod, Building: d.Building}
}

// Change records one value that a mutation altered.
type Change struct {
	Key      Key
	Previous string
	Value    string
}

// SelectMajorGod makes key the active major god.
func (s *State) SelectMajorGod(key string) []Change {
	var changes []Change
	s.set(KeyMajorGod, key, &changes)
	return changes
}

// SelectBuilding makes name the active building. The name is stored lower
// cased and the active entity is cleared.
func (s *State) SelectBuilding(name string) []Change {
	var changes []Change
	s.set(KeyBuilding, strings.ToLower(name), &changes)
	s.set(KeyEntity, "", &changes)
	return changes
}

// SelectEntity makes name the active entity.
func (s *State) SelectEntity(name string) []Change {
	var changes []Change
	s.set(KeyEntity, name, &changes)
	return changes
}

// Get returns the value stored under k.
func (s State) Get(k Key) string {
	switch k {
	case KeyEntity:
		return s.Entity
	case KeyMajorGod:
		return s.MajorGod
	case KeyBuilding:
		return s.Building
	}
	return ""
}

// Set stores v under k without any of the side effects of the Select
// methods.
func (s *State) Set(k Key, v string) error {
	if _, err := ParseKey(string(k)); err != nil {
		return err
	}
	s.set(k, v, nil)
	return nil
}

// Diff lists the keys whose values differ between s and next.
func (s State) Diff(next State) []Change {
	var changes []Change
	for _, k := range Keys {
		if prev, v := s.Get(k), next.Get(k); prev != v {
			changes = append(changes, Change{Key: k, Previous: prev, Value: v})
		}
	}
	return changes
}

func (s *State) set(k Key, v string, changes *[]Change) {
	prev := s.Get(k)
	switch k {
	case KeyEntity:
		s.Entity = v
	case KeyMajorGod:
		s.MajorGod = v
	case KeyBuilding:
		s.Building = v
	}
	if changes != nil && prev != v {
		*changes = append(*changes, Change{Key: k, Previous: prev, Value: v})
	}
}
