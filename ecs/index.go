package ecs

import (
	"slices"

	"github.com/kamstrup/intmap"
)

type indexEntry struct {
	refs int
	slot int
}

// entitySet is a reference-counted set of entity ids with stable iteration
// order between mutations.
type entitySet struct {
	entries *intmap.Map[EntityID, indexEntry]
	members []EntityID
}

func newEntitySet() *entitySet {
	return &entitySet{
		entries: intmap.New[EntityID, indexEntry](64),
	}
}

func (s *entitySet) add(id EntityID) {
	entry, ok := s.entries.Get(id)
	if ok {
		entry.refs++
		s.entries.Put(id, entry)
		return
	}
	s.entries.Put(id, indexEntry{refs: 1, slot: len(s.members)})
	s.members = append(s.members, id)
}

func (s *entitySet) remove(id EntityID) {
	entry, ok := s.entries.Get(id)
	if !ok {
		return
	}
	if entry.refs > 1 {
		entry.refs--
		s.entries.Put(id, entry)
		return
	}

	last := len(s.members) - 1
	if entry.slot != last {
		moved := s.members[last]
		s.members[entry.slot] = moved
		movedEntry, _ := s.entries.Get(moved)
		movedEntry.slot = entry.slot
		s.entries.Put(moved, movedEntry)
	}
	s.members = s.members[:last]
	s.entries.Del(id)
}

// TypeIndex maps every component type name, own and ancestor, to the set of
// entities holding at least one component under that name.
type TypeIndex struct {
	sets map[string]*entitySet
}

func newTypeIndex() *TypeIndex {
	return &TypeIndex{sets: make(map[string]*entitySet)}
}

func (x *TypeIndex) add(name string, id EntityID) {
	set, ok := x.sets[name]
	if !ok {
		set = newEntitySet()
		x.sets[name] = set
	}
	set.add(id)
}

func (x *TypeIndex) remove(name string, id EntityID) {
	if set, ok := x.sets[name]; ok {
		set.remove(id)
	}
}

// Has reports whether the entity holds a component under name.
func (x *TypeIndex) Has(name string, id EntityID) bool {
	set, ok := x.sets[name]
	return ok && set.entries.Has(id)
}

// Refs returns how many components the entity holds under name.
func (x *TypeIndex) Refs(name string, id EntityID) int {
	set, ok := x.sets[name]
	if !ok {
		return 0
	}
	entry, _ := set.entries.Get(id)
	return entry.refs
}

// Len returns the number of entities indexed under name.
func (x *TypeIndex) Len(name string) int {
	if set, ok := x.sets[name]; ok {
		return len(set.members)
	}
	return 0
}

// Entities returns the ids indexed under name. The slice is owned by the index
// and is only valid until the next mutation.
func (x *TypeIndex) Entities(name string) []EntityID {
	if set, ok := x.sets[name]; ok {
		return set.members
	}
	return nil
}

// Names returns every name that currently indexes at least one entity, sorted.
func (x *TypeIndex) Names() []string {
	names := make([]string, 0, len(x.sets))
	for name, set := range x.sets {
		if len(set.members) > 0 {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func (x *TypeIndex) clear() {
	clear(x.sets)
}
