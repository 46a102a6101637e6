package layout

import (
	"strings"

	"github.com/ziadkadry99/civcards/internal/civ"
)

// SlotKind describes what a building slot shows.
type SlotKind string

const (
	// SlotAdd is a cell the table leaves open.
	SlotAdd SlotKind = "add"
	// SlotEmpty is a cell whose building is not in the dataset.
	SlotEmpty SlotKind = "empty"
	// SlotBuilding is a resolved building.
	SlotBuilding SlotKind = "building"
)

// DefaultBuildingSlots is the standard 3x6 building table. Empty strings
// are open cells.
var DefaultBuildingSlots = [][]string{
	{"house", "", "", "", "temple", "dock"},
	{"barracks", "archery_range", "stable", "", "market", "armory"},
	{"town_center", "wall", "tower", "fortress", "", "wonder"},
}

// BuildingSlot is one cell of the building table.
type BuildingSlot struct {
	Kind     SlotKind      `json:"kind"`
	Key      string        `json:"key,omitempty"`
	Building *civ.Building `json:"building,omitempty"`
	Active   bool          `json:"active,omitempty"`
}

// BuildingSlots resolves every key of table against the dataset's
// building names. A nil table uses DefaultBuildingSlots. The slot whose
// building matches activeBuilding is marked active.
func BuildingSlots(ds *civ.Dataset, table [][]string, activeBuilding string) [][]BuildingSlot {
	if table == nil {
		table = DefaultBuildingSlots
	}

	out := make([][]BuildingSlot, len(table))
	for r, row := range table {
		out[r] = make([]BuildingSlot, len(row))
		for c, key := range row {
			if key == "" {
				out[r][c] = BuildingSlot{Kind: SlotAdd}
				continue
			}
			var (
				b  *civ.Building
				ok bool
			)
			if ds != nil {
				b, ok = FindBuilding(ds, key)
			}
			if !ok {
				out[r][c] = BuildingSlot{Kind: SlotEmpty, Key: key}
				continue
			}
			out[r][c] = BuildingSlot{
				Kind:     SlotBuilding,
				Key:      key,
				Building: b,
				Active:   IsActiveBuilding(b, activeBuilding),
			}
		}
	}
	return out
}

// IsActiveBuilding reports whether active names b, case-insensitively.
// Slot style keys such as "town_center" are accepted too.
func IsActiveBuilding(b *civ.Building, active string) bool {
	if active == "" {
		return false
	}
	return strings.EqualFold(b.Name, active) || strings.EqualFold(b.Name, strings.ReplaceAll(active, "_", " "))
}
