package view

import (
	"html/template"
	"sort"
	"strconv"
	"strings"

	"github.com/ziadkadry99/civcards/internal/civ"
)

// NoSelectionMessage is shown when nothing is selected.
const NoSelectionMessage = "Select an item."

// StatIcons decorate stat values on the preview card.
var StatIcons = map[string]string{
	"hitpoints":     "❤️",
	"hack_armor":    "🦺",
	"pierce_armor":  "🛡️",
	"crush_armor":   "🪨",
	"speed":         "👟",
	"hack_damage":   "⚔️",
	"pierce_damage": "🏹",
	"crush_damage":  "💥",
	"divine_damage": "⚡",
	"reload_time":   "〽️",
	"range":         "🎯",
	"garrison":      "🏰",
}

// GodIcons are the background marks of the preview card, keyed by major
// god. Unknown gods use the "default" entry.
var GodIcons = map[string]string{
	"zeus":     "⚡",
	"poseidon": "🔱",
	"hades":    "💀",
	"default":  "❓",
}

// Stat is one labelled value.
type Stat struct {
	Key   string `json:"key"`
	Icon  string `json:"icon"`
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
}

// AttackBlock is the attack section of a unit preview.
type AttackBlock struct {
	Title       string   `json:"title"`
	Stats       []Stat   `json:"stats"`
	Multipliers []string `json:"multipliers,omitempty"`
}

// PreviewCard is the detail card for one entity. A card with an empty
// Name is the "nothing selected" card and only carries Message.
type PreviewCard struct {
	Message         string        `json:"message,omitempty"`
	Kind            civ.Kind      `json:"kind,omitempty"`
	Name            string        `json:"name,omitempty"`
	Image           string        `json:"image,omitempty"`
	GodIcon         string        `json:"god_icon,omitempty"`
	Stats           []Stat        `json:"stats,omitempty"`
	Attack          *AttackBlock  `json:"attack,omitempty"`
	TrainedAt       []string      `json:"trained_at,omitempty"`
	ResearchedAt    []string      `json:"researched_at,omitempty"`
	Trains          []string      `json:"trains,omitempty"`
	Researches      []string      `json:"researches,omitempty"`
	GodPowers       []string      `json:"god_powers,omitempty"`
	Tagline         string        `json:"tagline,omitempty"`
	Description     template.HTML `json:"description,omitempty"`
	PrerequisiteGod string        `json:"prerequisite_god,omitempty"`
}

// Preview projects the card for e. activeMajorGod picks the god icon for
// entities that do not name a god themselves. A nil e gives the "nothing
// selected" card.
func Preview(ds *civ.Dataset, e civ.Entity, activeMajorGod string) PreviewCard {
	if e == nil {
		return PreviewCard{Message: NoSelectionMessage}
	}

	b := e.Info()
	card := PreviewCard{
		Kind:        e.Kind(),
		Name:        b.Name,
		Image:       b.ImageOrPlaceholder(),
		GodIcon:     godIcon(e, activeMajorGod),
		Description: RenderDescription(b.Description),
	}

	switch v := e.(type) {
	case *civ.Unit:
		card.Stats = unitStats(v)
		card.Attack = attackBlock(v.Attack)
		card.TrainedAt = ds.RelatedBuildings(v.Name, civ.RelationTrains)
	case *civ.Building:
		card.Stats = appendStat(nil, "hitpoints", "", v.Hitpoints, "")
		card.Stats = appendStat(card.Stats, "garrison", "", float64(v.Garrison), "")
		card.Trains = entityNames(ds.Units.Resolve(v.Functions.TrainsUnits))
		card.Researches = entityNames(ds.Technologies.Resolve(v.Functions.ResearchesTechs))
	case *civ.Technology:
		card.ResearchedAt = ds.RelatedBuildings(v.Name, civ.RelationResearches)
		card.PrerequisiteGod = v.PrerequisiteGod
	case *civ.MajorGod:
		card.Tagline = v.Tagline
		card.GodPowers = entityNames(ds.GodPowersOf(v))
	case *civ.MinorGod:
		card.Tagline = v.Tagline
		card.GodPowers = entityNames(ds.GodPowersOf(v))
		card.PrerequisiteGod = v.PrerequisiteGod
	case *civ.Ability:
		if v.Effect != "" {
			card.Tagline = v.Effect
		}
	case *civ.GodPower:
		card.Stats = appendStat(nil, "cost", "Cost", v.Cost, "")
		card.Stats = appendStat(card.Stats, "cooldown", "Cooldown", v.Cooldown, "s")
		card.Stats = appendStat(card.Stats, "uses", "Uses", float64(v.Uses), "")
	}
	return card
}

// godIcon uses the entity's prerequisite god, the god itself for major
// gods, and the active major god otherwise.
func godIcon(e civ.Entity, activeMajorGod string) string {
	god := activeMajorGod
	switch v := e.(type) {
	case *civ.Technology:
		if v.PrerequisiteGod != "" {
			god = v.PrerequisiteGod
		}
	case *civ.MinorGod:
		if v.PrerequisiteGod != "" {
			god = v.PrerequisiteGod
		}
	case *civ.MajorGod:
		god = strings.ToLower(v.Name)
	}
	if icon, ok := GodIcons[god]; ok {
		return icon
	}
	return GodIcons["default"]
}

func unitStats(u *civ.Unit) []Stat {
	stats := appendStat(nil, "hitpoints", "", u.Hitpoints, "")
	if d := u.DefensiveStats; d != nil {
		stats = append(stats,
			Stat{Key: "hack_armor", Icon: StatIcons["hack_armor"], Value: formatNumber(d.HackArmor) + "%"},
			Stat{Key: "pierce_armor", Icon: StatIcons["pierce_armor"], Value: formatNumber(d.PierceArmor) + "%"},
			Stat{Key: "crush_armor", Icon: StatIcons["crush_armor"], Value: formatNumber(d.CrushArmor) + "%"},
		)
	}
	return appendStat(stats, "speed", "", u.Speed, "")
}

// attackBlock lists the non-zero damage values, the reload time, the
// range for ranged attacks and every multiplier above 1 sorted by
// category.
func attackBlock(a *civ.Attack) *AttackBlock {
	if a == nil {
		return nil
	}
	block := &AttackBlock{Title: strings.ToUpper(string(a.Type)) + " ATTACK"}
	block.Stats = appendStat(block.Stats, "hack_damage", "Hack", a.HackDamage, "")
	block.Stats = appendStat(block.Stats, "pierce_damage", "Pierce", a.PierceDamage, "")
	block.Stats = appendStat(block.Stats, "crush_damage", "Crush", a.CrushDamage, "")
	block.Stats = appendStat(block.Stats, "divine_damage", "Divine", a.DivineDamage, "")
	block.Stats = appendStat(block.Stats, "reload_time", "Reload", a.ReloadTime, "s")
	if a.Type == civ.AttackRanged {
		block.Stats = appendStat(block.Stats, "range", "Range", a.Range, "")
	}

	categories := make([]string, 0, len(a.Multipliers))
	for c, v := range a.Multipliers {
		if v > 1 {
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)
	for _, c := range categories {
		block.Multipliers = append(block.Multipliers, formatNumber(a.Multipliers[c])+"x vs "+c)
	}
	return block
}

// appendStat adds a stat unless v is zero.
func appendStat(stats []Stat, key, label string, v float64, suffix string) []Stat {
	if v == 0 {
		return stats
	}
	return append(stats, Stat{Key: key, Icon: StatIcons[key], Label: label, Value: formatNumber(v) + suffix})
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func entityNames[T civ.Entity](entities []T) []string {
	if len(entities) == 0 {
		return nil
	}
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Info().Name
	}
	return names
}
