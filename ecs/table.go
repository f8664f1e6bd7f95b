package ecs

import "github.com/kamstrup/intmap"

// EntityTable is the authoritative id to entity map of a World.
type EntityTable struct {
	slots    *intmap.Map[EntityID, int]
	entities []*Entity
}

func newEntityTable() *EntityTable {
	return &EntityTable{
		slots:    intmap.New[EntityID, int](256),
		entities: make([]*Entity, 0, 256),
	}
}

func (t *EntityTable) add(e *Entity) {
	if t.slots.Has(e.id) {
		return
	}
	t.slots.Put(e.id, len(t.entities))
	t.entities = append(t.entities, e)
}

func (t *EntityTable) remove(id EntityID) bool {
	slot, ok := t.slots.Get(id)
	if !ok {
		return false
	}
	last := len(t.entities) - 1
	if slot != last {
		moved := t.entities[last]
		t.entities[slot] = moved
		t.slots.Put(moved.id, slot)
	}
	t.entities[last] = nil
	t.entities = t.entities[:last]
	t.slots.Del(id)
	return true
}

// Get returns the entity with the given id, or nil.
func (t *EntityTable) Get(id EntityID) *Entity {
	slot, ok := t.slots.Get(id)
	if !ok {
		return nil
	}
	return t.entities[slot]
}

// Has reports whether id is in the table.
func (t *EntityTable) Has(id EntityID) bool {
	return t.slots.Has(id)
}

// Len returns the number of entities in the table.
func (t *EntityTable) Len() int {
	return len(t.entities)
}

// Snapshot returns a copy of the table's entities.
func (t *EntityTable) Snapshot() []*Entity {
	out := make([]*Entity, len(t.entities))
	copy(out, t.entities)
	return out
}

func (t *EntityTable) clear() {
	t.slots.Clear()
	clear(t.entities)
	t.entities = t.entities[:0]
}
