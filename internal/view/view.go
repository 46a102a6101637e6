// Package view projects a dataset and a selection into plain values
// describing what each mount point of the viewer shows, and renders those
// values to HTML.
package view

import (
	"github.com/ziadkadry99/civcards/internal/civ"
	"github.com/ziadkadry99/civcards/internal/layout"
	"github.com/ziadkadry99/civcards/internal/selection"
)

// Mount point ids.
const (
	MountMajorGods      = "major-gods"
	MountMinorGods      = "minor-gods"
	MountBuildings      = "buildings"
	MountUnitsTechs     = "units-techs"
	MountBuildingsPane  = "buildings-pane"
	MountUnitsTechsPane = "units-techs-pane"
	MountModal          = "modal"
)

// GridMounts are the mount points re-rendered on every change.
var GridMounts = []string{MountMajorGods, MountMinorGods, MountBuildings, MountUnitsTechs}

// DefaultBreakpoint is the widest viewport that shows previews in the
// modal.
const DefaultBreakpoint = 768

// Options carries the display settings projections depend on.
type Options struct {
	Grid       layout.GridOptions
	Slots      [][]string
	Breakpoint int
}

func (o Options) breakpoint() int {
	if o.Breakpoint <= 0 {
		return DefaultBreakpoint
	}
	return o.Breakpoint
}

// GodCard is one card of the major god carousel.
type GodCard struct {
	Key     string `json:"key,omitempty"`
	Name    string `json:"name,omitempty"`
	Tagline string `json:"tagline,omitempty"`
	Image   string `json:"image,omitempty"`
	Offset  int    `json:"offset"`
	// Active cards offer the edit and remove actions.
	Active bool `json:"active"`
	AddNew bool `json:"add_new,omitempty"`
}

// Tile is one cell of a tile grid.
type Tile struct {
	Kind    civ.Kind `json:"kind,omitempty"`
	Name    string   `json:"name,omitempty"`
	Tagline string   `json:"tagline,omitempty"`
	Image   string   `json:"image,omitempty"`
	Active  bool     `json:"active,omitempty"`
	// Placeholder tiles show the add marker. Empty tiles show nothing.
	Placeholder bool `json:"placeholder,omitempty"`
	Empty       bool `json:"empty,omitempty"`
}

func entityTile(e civ.Entity, active bool) Tile {
	b := e.Info()
	t := Tile{Kind: e.Kind(), Name: b.Name, Image: b.ImageOrPlaceholder(), Active: active}
	if g, ok := e.(*civ.MinorGod); ok {
		t.Tagline = g.Tagline
	}
	return t
}

// MajorGods projects the carousel.
func MajorGods(ds *civ.Dataset, st selection.State) []GodCard {
	slots := layout.Carousel(ds.MajorGods.Keys(), st.MajorGod)
	cards := make([]GodCard, 0, len(slots))
	for _, s := range slots {
		card := GodCard{Key: s.Key, Offset: s.Offset, Active: s.Active, AddNew: s.AddNew}
		if g, ok := ds.MajorGods.Get(s.Key); ok {
			card.Name = g.Name
			card.Tagline = g.Tagline
			card.Image = g.ImageOrPlaceholder()
		}
		cards = append(cards, card)
	}
	return cards
}

// MinorGods projects the minor gods available under the active major god.
func MinorGods(ds *civ.Dataset, st selection.State) []Tile {
	gods := ds.MinorGodsFor(st.MajorGod)
	tiles := make([]Tile, 0, len(gods))
	for _, g := range gods {
		tiles = append(tiles, entityTile(g, g.Name == st.Entity))
	}
	return tiles
}

// Buildings projects the building slot table.
func Buildings(ds *civ.Dataset, st selection.State, opts Options) [][]Tile {
	slots := layout.BuildingSlots(ds, opts.Slots, st.Building)
	rows := make([][]Tile, len(slots))
	for r, row := range slots {
		rows[r] = make([]Tile, len(row))
		for c, s := range row {
			switch s.Kind {
			case layout.SlotAdd:
				rows[r][c] = Tile{Placeholder: true}
			case layout.SlotEmpty:
				rows[r][c] = Tile{Empty: true}
			case layout.SlotBuilding:
				rows[r][c] = entityTile(s.Building, s.Active)
			}
		}
	}
	return rows
}

// UnitsTechs projects the units and technologies grid of the active
// building. Empty cells become placeholders.
func UnitsTechs(ds *civ.Dataset, st selection.State, opts Options) [][]Tile {
	grid := layout.ComputeGrid(ds, st.Building, st.MajorGod, opts.Grid)
	rows := make([][]Tile, len(grid))
	for r, row := range grid {
		rows[r] = make([]Tile, len(row))
		for c, e := range row {
			if e == nil {
				rows[r][c] = Tile{Placeholder: true}
				continue
			}
			rows[r][c] = entityTile(e, e.Info().Name == st.Entity)
		}
	}
	return rows
}

// PreviewMount picks where the preview of e is shown. Viewports up to
// breakpoint wide use the modal; wider ones use the pane next to the grid
// e belongs to. A non-positive width means the width is unknown and is
// treated as wide.
func PreviewMount(e civ.Entity, viewportWidth, breakpoint int) string {
	if viewportWidth > 0 && viewportWidth <= breakpoint {
		return MountModal
	}
	if _, ok := e.(*civ.Building); ok {
		return MountBuildingsPane
	}
	return MountUnitsTechsPane
}

// Page is every projection for one session.
type Page struct {
	Civ          string      `json:"civ"`
	MajorGods    []GodCard   `json:"major_gods"`
	MinorGods    []Tile      `json:"minor_gods"`
	Buildings    [][]Tile    `json:"buildings"`
	UnitsTechs   [][]Tile    `json:"units_techs"`
	Preview      PreviewCard `json:"preview"`
	PreviewMount string      `json:"preview_mount"`
}

// Project builds the page for st. The previewed entity is the active
// entity, or the active building when no entity is selected.
func Project(ds *civ.Dataset, st selection.State, viewportWidth int, opts Options) Page {
	p := Page{
		Civ:        ds.Name,
		MajorGods:  MajorGods(ds, st),
		MinorGods:  MinorGods(ds, st),
		Buildings:  Buildings(ds, st, opts),
		UnitsTechs: UnitsTechs(ds, st, opts),
	}

	focus := st.Entity
	if focus == "" {
		focus = st.Building
	}
	e, _ := ds.FindEntityByName(focus)
	p.Preview = Preview(ds, e, st.MajorGod)
	p.PreviewMount = PreviewMount(e, viewportWidth, opts.breakpoint())
	return p
}
