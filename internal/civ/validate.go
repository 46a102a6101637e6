package civ

import (
	"errors"
	"fmt"
)

// Validate reports every reference in the dataset that does not resolve.
// Unresolved references are dropped at display time, so this is advisory:
// a dataset with problems still loads.
//
// Checked references:
//   - building trains_units against units
//   - building researches_techs against technologies
//   - technology prerequisite_god against minor gods
//   - major god minorGods against minor gods, godPowers against god powers
//   - minor god prerequisite_god against major gods, godPowers against god powers
func (d *Dataset) Validate() error {
	var errs []error

	d.Buildings.Each(func(key string, b *Building) bool {
		for _, ref := range b.Functions.TrainsUnits {
			if _, ok := d.Units.Lookup(ref); !ok {
				errs = append(errs, fmt.Errorf("building %q: unknown unit %q", key, ref))
			}
		}
		for _, ref := range b.Functions.ResearchesTechs {
			if _, ok := d.Technologies.Lookup(ref); !ok {
				errs = append(errs, fmt.Errorf("building %q: unknown technology %q", key, ref))
			}
		}
		return true
	})

	d.Technologies.Each(func(key string, t *Technology) bool {
		if t.PrerequisiteGod != "" {
			if _, ok := d.MinorGods.Lookup(t.PrerequisiteGod); !ok {
				errs = append(errs, fmt.Errorf("technology %q: unknown prerequisite god %q", key, t.PrerequisiteGod))
			}
		}
		return true
	})

	d.MajorGods.Each(func(key string, g *MajorGod) bool {
		for _, ref := range g.MinorGods {
			if _, ok := d.MinorGods.Lookup(ref); !ok {
				errs = append(errs, fmt.Errorf("major god %q: unknown minor god %q", key, ref))
			}
		}
		for _, ref := range g.GodPowers {
			if _, ok := d.GodPowers.Lookup(ref); !ok {
				errs = append(errs, fmt.Errorf("major god %q: unknown god power %q", key, ref))
			}
		}
		return true
	})

	d.MinorGods.Each(func(key string, g *MinorGod) bool {
		if g.PrerequisiteGod != "" {
			if _, ok := d.MajorGods.Lookup(g.PrerequisiteGod); !ok {
				errs = append(errs, fmt.Errorf("minor god %q: unknown prerequisite god %q", key, g.PrerequisiteGod))
			}
		}
		for _, ref := range g.GodPowers {
			if _, ok := d.GodPowers.Lookup(ref); !ok {
				errs = append(errs, fmt.Errorf("minor god %q: unknown god power %q", key, ref))
			}
		}
		return true
	})

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
