// Package civ models one civilization's dataset: units, buildings,
// technologies, gods, abilities and god powers, plus the lookups the
// viewer runs against them.
//
// Every entity kind is a concrete struct implementing [Entity]. Callers
// switch on the concrete type instead of probing for optional fields.
package civ

import (
	"encoding/json"
	"strings"
)

// Kind is the discriminator carried by every entity.
type Kind string

const (
	KindUnit       Kind = "unit"
	KindBuilding   Kind = "building"
	KindTechnology Kind = "technology"
	KindMajorGod   Kind = "majorGod"
	KindMinorGod   Kind = "minorGod"
	KindAbility    Kind = "ability"
	KindGodPower   Kind = "godPower"
)

// PlaceholderImage is shown for entities without an image.
const PlaceholderImage = "assets/placeholder.jpg"

// Entity is implemented by the seven entity kinds of a dataset.
type Entity interface {
	// Info returns the fields shared by every kind.
	Info() *Base
	// Kind reports which variant this is.
	Kind() Kind

	sealed()
}

// Base holds the fields every entity carries.
type Base struct {
	Name        string `json:"name"`
	Type        Kind   `json:"type,omitempty"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
}

// Info implements [Entity].
func (b *Base) Info() *Base { return b }

// ImageOrPlaceholder returns the entity image, or [PlaceholderImage] when
// the dataset does not provide one.
func (b *Base) ImageOrPlaceholder() string {
	if b.Image == "" {
		return PlaceholderImage
	}
	return b.Image
}

// DefensiveStats are armor percentages.
type DefensiveStats struct {
	HackArmor   float64 `json:"hack_armor"`
	PierceArmor float64 `json:"pierce_armor"`
	CrushArmor  float64 `json:"crush_armor"`
}

// AttackType is melee or ranged.
type AttackType string

const (
	AttackMelee  AttackType = "melee"
	AttackRanged AttackType = "ranged"
)

// Attack describes a unit's attack. Multipliers holds the vs_<category>
// bonuses keyed by category.
type Attack struct {
	Type         AttackType         `json:"type"`
	HackDamage   float64            `json:"hack_damage,omitempty"`
	PierceDamage float64            `json:"pierce_damage,omitempty"`
	CrushDamage  float64            `json:"crush_damage,omitempty"`
	DivineDamage float64            `json:"divine_damage,omitempty"`
	ReloadTime   float64            `json:"reload_time,omitempty"`
	Range        float64            `json:"range,omitempty"`
	Multipliers  map[string]float64 `json:"-"`
}

// multiplierPrefix marks per-category damage multipliers in attack objects.
const multiplierPrefix = "vs_"

// UnmarshalJSON decodes the fixed attack fields and collects every
// vs_<category> number into Multipliers.
func (a *Attack) UnmarshalJSON(data []byte) error {
	type plain Attack
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if !strings.HasPrefix(k, multiplierPrefix) {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			continue
		}
		if p.Multipliers == nil {
			p.Multipliers = make(map[string]float64)
		}
		p.Multipliers[strings.TrimPrefix(k, multiplierPrefix)] = f
	}

	*a = Attack(p)
	return nil
}

// MarshalJSON writes Multipliers back out as vs_<category> keys.
func (a Attack) MarshalJSON() ([]byte, error) {
	type plain Attack
	fixed, err := json.Marshal(plain(a))
	if err != nil {
		return nil, err
	}
	if len(a.Multipliers) == 0 {
		return fixed, nil
	}

	var m map[string]any
	if err := json.Unmarshal(fixed, &m); err != nil {
		return nil, err
	}
	for k, v := range a.Multipliers {
		m[multiplierPrefix+k] = v
	}
	return json.Marshal(m)
}

// Unit is a trainable unit.
type Unit struct {
	Base
	Hitpoints      float64         `json:"hitpoints,omitempty"`
	DefensiveStats *DefensiveStats `json:"defensive_stats,omitempty"`
	Speed          float64         `json:"speed,omitempty"`
	Attack         *Attack         `json:"attack,omitempty"`
	UnitTags       []string        `json:"unit_tags,omitempty"`
	UnitCategory   string          `json:"unit_category,omitempty"`
	Garrison       int             `json:"garrison,omitempty"`
}

// HasTag reports whether the unit carries tag exactly.
func (u *Unit) HasTag(tag string) bool {
	for _, t := range u.UnitTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Functions lists what a building trains and researches, by reference.
type Functions struct {
	TrainsUnits     []string `json:"trains_units,omitempty"`
	ResearchesTechs []string `json:"researches_techs,omitempty"`
}

// Relation selects one of the reference lists in [Functions].
type Relation string

const (
	RelationTrains     Relation = "trains_units"
	RelationResearches Relation = "researches_techs"
)

// Refs returns the reference list for rel.
func (f Functions) Refs(rel Relation) []string {
	switch rel {
	case RelationTrains:
		return f.TrainsUnits
	case RelationResearches:
		return f.ResearchesTechs
	}
	return nil
}

// Building trains units and researches technologies.
type Building struct {
	Base
	Functions Functions `json:"functions"`
	Hitpoints float64   `json:"hitpoints,omitempty"`
	Garrison  int       `json:"garrison,omitempty"`
}

// Noun is the target of a technology effect.
type Noun struct {
	UnitName string   `json:"unit_name,omitempty"`
	UnitTags []string `json:"unit_tags,omitempty"`
}

// TargetsUnits reports whether the noun names a unit or at least one tag.
func (n Noun) TargetsUnits() bool {
	return n.UnitName != "" || len(n.UnitTags) > 0
}

// Effect is one modification a technology applies.
type Effect struct {
	Noun  Noun    `json:"noun"`
	Verb  string  `json:"verb,omitempty"`
	Value float64 `json:"value,omitempty"`
}

// Technology is researched in a building. PrerequisiteGod, when set,
// names the minor god that unlocks it.
type Technology struct {
	Base
	Effects         []Effect `json:"effects,omitempty"`
	PrerequisiteGod string   `json:"prerequisite_god,omitempty"`
}

// UnitBased reports whether any effect targets a unit name or unit tags.
func (t *Technology) UnitBased() bool {
	for _, e := range t.Effects {
		if e.Noun.TargetsUnits() {
			return true
		}
	}
	return false
}

// MajorGod is the top-level god choice.
type MajorGod struct {
	Base
	Tagline   string   `json:"tagline,omitempty"`
	MinorGods []string `json:"minorGods,omitempty"`
	GodPowers []string `json:"godPowers,omitempty"`
}

// MinorGod is unlocked under a major god. An empty PrerequisiteGod makes
// it available under every major god.
type MinorGod struct {
	Base
	Tagline         string   `json:"tagline,omitempty"`
	PrerequisiteGod string   `json:"prerequisite_god,omitempty"`
	GodPowers       []string `json:"godPowers,omitempty"`
}

// Ability is a passive or active unit ability.
type Ability struct {
	Base
	Effect string `json:"effect,omitempty"`
}

// GodPower is a god's special power.
type GodPower struct {
	Base
	Cost     float64 `json:"cost,omitempty"`
	Cooldown float64 `json:"cooldown,omitempty"`
	Uses     int     `json:"uses,omitempty"`
}

func (*Unit) Kind() Kind       { return KindUnit }
func (*Building) Kind() Kind   { return KindBuilding }
func (*Technology) Kind() Kind { return KindTechnology }
func (*MajorGod) Kind() Kind   { return KindMajorGod }
func (*MinorGod) Kind() Kind   { return KindMinorGod }
func (*Ability) Kind() Kind    { return KindAbility }
func (*GodPower) Kind() Kind   { return KindGodPower }

func (*Unit) sealed()       {}
func (*Building) sealed()   {}
func (*Technology) sealed() {}
func (*MajorGod) sealed()   {}
func (*MinorGod) sealed()   {}
func (*Ability) sealed()    {}
func (*GodPower) sealed()   {}
