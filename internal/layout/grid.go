// Package layout arranges dataset entities for display: the units and
// technologies grid of a building, the major god carousel and the fixed
// building slot table. Every function here is pure.
package layout

import (
	"strings"

	"github.com/ziadkadry99/civcards/internal/civ"
)

// DefaultColumns is the grid width used when GridOptions.Columns is unset.
const DefaultColumns = 6

// Grid rows.
const (
	RowUnits = iota
	RowUnitTechs
	RowGenericTechs
	gridRows
)

// GridOptions tunes ComputeGrid.
type GridOptions struct {
	Columns int
}

func (o GridOptions) columns() int {
	if o.Columns <= 0 {
		return DefaultColumns
	}
	return o.Columns
}

// Grid is the units and technologies layout of one building. Row 0 holds
// trainable units, row 1 the technology matched to the unit above it and
// row 2 generic technologies. Nil cells are empty.
type Grid [gridRows][]civ.Entity

func newGrid(columns int) Grid {
	var g Grid
	for i := range g {
		g[i] = make([]civ.Entity, columns)
	}
	return g
}

// Columns returns the grid width.
func (g Grid) Columns() int { return len(g[RowUnits]) }

// Empty reports whether every cell is empty.
func (g Grid) Empty() bool {
	for _, row := range g {
		for _, e := range row {
			if e != nil {
				return false
			}
		}
	}
	return true
}

// ComputeGrid lays out what activeBuilding trains and researches.
//
// Units go to row 0 in training order. Each unit, left to right, claims
// the first unclaimed unit-based technology that names it or shares one
// of its tags; the claimed technology goes in row 1 below it. Technologies
// with no unit effect go to row 2 when they have no prerequisite god or
// their prerequisite is one of activeMajorGod's minor gods. Anything that
// does not fit is left out. An unknown building gives an empty grid.
func ComputeGrid(ds *civ.Dataset, activeBuilding, activeMajorGod string, opts GridOptions) Grid {
	cols := opts.columns()
	grid := newGrid(cols)

	if ds == nil || activeBuilding == "" {
		return grid
	}
	building, ok := FindBuilding(ds, activeBuilding)
	if !ok {
		return grid
	}

	units := ds.Units.Resolve(building.Functions.TrainsUnits)
	if len(units) > cols {
		units = units[:cols]
	}
	for i, u := range units {
		grid[RowUnits][i] = u
	}

	var unitTechs, genericTechs []*civ.Technology
	for _, t := range ds.Technologies.Resolve(building.Functions.ResearchesTechs) {
		if t.UnitBased() {
			unitTechs = append(unitTechs, t)
		} else {
			genericTechs = append(genericTechs, t)
		}
	}

	claimed := make(map[int]bool, len(unitTechs))
	for col, u := range units {
		for i, t := range unitTechs {
			if claimed[i] || !appliesTo(t, u) {
				continue
			}
			claimed[i] = true
			grid[RowUnitTechs][col] = t
			break
		}
	}

	minorGods := majorGodMinorGods(ds, activeMajorGod)
	col := 0
	for _, t := range genericTechs {
		if col == cols {
			break
		}
		if t.PrerequisiteGod != "" && !containsFold(minorGods, t.PrerequisiteGod) {
			continue
		}
		grid[RowGenericTechs][col] = t
		col++
	}

	return grid
}

// FindBuilding resolves the active building by name, case-insensitively.
// Slot style keys such as "town_center" also match "Town Center".
func FindBuilding(ds *civ.Dataset, name string) (*civ.Building, bool) {
	if b, ok := ds.FindBuildingByName(name); ok {
		return b, true
	}
	if spaced := strings.ReplaceAll(name, "_", " "); spaced != name {
		return ds.FindBuildingByName(spaced)
	}
	return nil, false
}

// appliesTo reports whether any effect of t targets u, by exact unit name
// or by tag. A tag matches when the unit carries it, or when the tag with
// its "is_" prefix removed equals the unit category.
func appliesTo(t *civ.Technology, u *civ.Unit) bool {
	for _, e := range t.Effects {
		if e.Noun.UnitName != "" && e.Noun.UnitName == u.Name {
			return true
		}
		for _, tag := range e.Noun.UnitTags {
			if u.HasTag(tag) || strings.EqualFold(u.UnitCategory, strings.TrimPrefix(tag, "is_")) {
				return true
			}
		}
	}
	return false
}

func majorGodMinorGods(ds *civ.Dataset, key string) []string {
	g, ok := ds.MajorGods.Get(key)
	if !ok {
		g, ok = ds.MajorGods.Lookup(key)
	}
	if !ok {
		return nil
	}
	return g.MinorGods
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
