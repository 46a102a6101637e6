package civ

import (
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Collection is a keyed set of entities that remembers the key order of
// the dataset document. The zero value is an empty collection.
type Collection[T Entity] struct {
	m *orderedmap.OrderedMap[string, T]
}

// NewCollection returns an empty collection.
func NewCollection[T Entity]() Collection[T] {
	return Collection[T]{m: orderedmap.New[string, T]()}
}

// Put adds or replaces the entity stored under key. Used while building
// a dataset; datasets are not modified after loading.
func (c *Collection[T]) Put(key string, v T) {
	if c.m == nil {
		c.m = orderedmap.New[string, T]()
	}
	c.m.Set(key, v)
}

// Len returns the number of entities.
func (c Collection[T]) Len() int {
	if c.m == nil {
		return 0
	}
	return c.m.Len()
}

// Keys returns the keys in document order.
func (c Collection[T]) Keys() []string {
	keys := make([]string, 0, c.Len())
	c.Each(func(key string, _ T) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Values returns the entities in document order.
func (c Collection[T]) Values() []T {
	values := make([]T, 0, c.Len())
	c.Each(func(_ string, v T) bool {
		values = append(values, v)
		return true
	})
	return values
}

// Each calls fn for every entry in document order until fn returns false.
func (c Collection[T]) Each(fn func(key string, v T) bool) {
	if c.m == nil {
		return
	}
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Get returns the entity stored under exactly key.
func (c Collection[T]) Get(key string) (T, bool) {
	if c.m == nil {
		var zero T
		return zero, false
	}
	return c.m.Get(key)
}

// Lookup resolves a reference: first a case-insensitive match against the
// keys, then against every entity name.
func (c Collection[T]) Lookup(ref string) (T, bool) {
	var (
		found T
		ok    bool
	)
	if ref == "" {
		return found, false
	}

	c.Each(func(key string, v T) bool {
		if strings.EqualFold(key, ref) {
			found, ok = v, true
			return false
		}
		return true
	})
	if ok {
		return found, true
	}
	return c.FindByName(ref)
}

// FindByName returns the first entity whose name matches name
// case-insensitively.
func (c Collection[T]) FindByName(name string) (T, bool) {
	var (
		found T
		ok    bool
	)
	if name == "" {
		return found, false
	}
	c.Each(func(_ string, v T) bool {
		if strings.EqualFold(v.Info().Name, name) {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}

// Resolve maps refs through Lookup, dropping references that do not
// resolve. Order is preserved.
func (c Collection[T]) Resolve(refs []string) []T {
	out := make([]T, 0, len(refs))
	for _, ref := range refs {
		if v, ok := c.Lookup(ref); ok {
			out = append(out, v)
		}
	}
	return out
}

func (c Collection[T]) lookupEntity(ref string) (Entity, bool) {
	v, ok := c.Lookup(ref)
	if !ok {
		return nil, false
	}
	return v, true
}

func (c Collection[T]) entities() []Entity {
	out := make([]Entity, 0, c.Len())
	c.Each(func(_ string, v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// UnmarshalJSON decodes a JSON object keeping its key order. Null entries
// are skipped.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	raw := orderedmap.New[string, T]()
	if err := json.Unmarshal(data, raw); err != nil {
		return err
	}

	m := orderedmap.New[string, T]()
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		if isNil(pair.Value) {
			continue
		}
		m.Set(pair.Key, pair.Value)
	}
	c.m = m
	return nil
}

// MarshalJSON encodes the collection as an object in document order.
func (c Collection[T]) MarshalJSON() ([]byte, error) {
	if c.m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.m)
}

func isNil(e Entity) bool {
	if e == nil {
		return true
	}
	switch v := e.(type) {
	case *Unit:
		return v == nil
	case *Building:
		return v == nil
	case *Technology:
		return v == nil
	case *MajorGod:
		return v == nil
	case *MinorGod:
		return v == nil
	case *Ability:
		return v == nil
	case *GodPower:
		return v == nil
	}
	return false
}
