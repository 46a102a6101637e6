package civ

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound is returned when a name resolves to no entity.
var ErrNotFound = errors.New("entity not found")

// Dataset is one civilization's entities. It is built once by [Decode]
// and only read afterwards, so it is safe to share between goroutines.
type Dataset struct {
	Name         string                  `json:"name"`
	Units        Collection[*Unit]       `json:"units"`
	Buildings    Collection[*Building]   `json:"buildings"`
	Technologies Collection[*Technology] `json:"technologies"`
	MajorGods    Collection[*MajorGod]   `json:"majorGods"`
	MinorGods    Collection[*MinorGod]   `json:"minorGods"`
	Abilities    Collection[*Ability]    `json:"abilities"`
	GodPowers    Collection[*GodPower]   `json:"godPowers"`
}

// Decode reads a dataset document. Missing type tags are filled in from
// the collection each entity was found in.
func Decode(r io.Reader) (*Dataset, error) {
	var ds Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	ds.normalize()
	return &ds, nil
}

func (d *Dataset) normalize() {
	for _, c := range d.collections() {
		for _, e := range c.entities() {
			if b := e.Info(); b.Type == "" {
				b.Type = e.Kind()
			}
		}
	}
}

type entityCollection interface {
	lookupEntity(ref string) (Entity, bool)
	entities() []Entity
	Len() int
}

// collections returns every collection in lookup priority order.
func (d *Dataset) collections() []entityCollection {
	return []entityCollection{
		d.Units,
		d.Buildings,
		d.Technologies,
		d.MajorGods,
		d.MinorGods,
		d.Abilities,
		d.GodPowers,
	}
}

// Size returns the total number of entities.
func (d *Dataset) Size() int {
	n := 0
	for _, c := range d.collections() {
		n += c.Len()
	}
	return n
}

// All returns every entity in lookup priority order.
func (d *Dataset) All() []Entity {
	var out []Entity
	for _, c := range d.collections() {
		out = append(out, c.entities()...)
	}
	return out
}

// FindEntityByName searches units, buildings, technologies, major gods,
// minor gods, abilities and god powers in that order. Within a collection
// keys are compared before names, both case-insensitively. The first
// collection with a match wins. An empty query finds nothing.
func (d *Dataset) FindEntityByName(query string) (Entity, bool) {
	if query == "" {
		return nil, false
	}
	for _, c := range d.collections() {
		if e, ok := c.lookupEntity(query); ok {
			return e, true
		}
	}
	return nil, false
}

// ResolveUnit resolves a unit reference by key, then by name.
func (d *Dataset) ResolveUnit(ref string) (*Unit, bool) { return d.Units.Lookup(ref) }

// ResolveTechnology resolves a technology reference by key, then by name.
func (d *Dataset) ResolveTechnology(ref string) (*Technology, bool) {
	return d.Technologies.Lookup(ref)
}

// ResolveBuilding resolves a building reference by key, then by name.
func (d *Dataset) ResolveBuilding(ref string) (*Building, bool) { return d.Buildings.Lookup(ref) }

// FindBuildingByName matches building names only, case-insensitively.
func (d *Dataset) FindBuildingByName(name string) (*Building, bool) {
	return d.Buildings.FindByName(name)
}

// RelatedBuildings returns the names of buildings whose rel list refers
// to entityName, in dataset order. A reference matches when it equals the
// name or resolves to an entity carrying it.
func (d *Dataset) RelatedBuildings(entityName string, rel Relation) []string {
	if entityName == "" {
		return nil
	}
	var names []string
	d.Buildings.Each(func(_ string, b *Building) bool {
		for _, ref := range b.Functions.Refs(rel) {
			if ref == entityName || d.refName(ref, rel) == entityName {
				names = append(names, b.Name)
				break
			}
		}
		return true
	})
	return names
}

func (d *Dataset) refName(ref string, rel Relation) string {
	switch rel {
	case RelationTrains:
		if u, ok := d.Units.Lookup(ref); ok {
			return u.Name
		}
	case RelationResearches:
		if t, ok := d.Technologies.Lookup(ref); ok {
			return t.Name
		}
	}
	return ""
}

// GodPowersOf resolves the god powers listed by a major or minor god.
// Unknown references are dropped. Other entity kinds have none.
func (d *Dataset) GodPowersOf(e Entity) []*GodPower {
	var refs []string
	switch g := e.(type) {
	case *MajorGod:
		refs = g.GodPowers
	case *MinorGod:
		refs = g.GodPowers
	default:
		return nil
	}
	return d.GodPowers.Resolve(refs)
}

// MinorGodsFor returns the minor gods available under majorGodKey: those
// without a prerequisite and those whose prerequisite equals the key.
func (d *Dataset) MinorGodsFor(majorGodKey string) []*MinorGod {
	var out []*MinorGod
	d.MinorGods.Each(func(_ string, g *MinorGod) bool {
		if g.PrerequisiteGod == "" || strings.ToLower(g.PrerequisiteGod) == majorGodKey {
			out = append(out, g)
		}
		return true
	})
	return out
}
