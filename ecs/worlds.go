package ecs

import (
	"slices"

	"go.uber.org/zap"
)

// Worlds is a keyed collection of independent Worlds sharing one Registry. It
// is itself the default World: key 0 resolves to the embedded World, so code
// that never needs parallel simulations can use a Worlds as a plain World.
type Worlds struct {
	*World
	worlds map[int]*World
}

// NewWorlds creates a Worlds whose default World is empty.
func NewWorlds(registry *Registry) *Worlds {
	return &Worlds{
		World:  newWorld(registry, 0),
		worlds: make(map[int]*World),
	}
}

// Get returns the World for key, creating it on first reference. Key 0 is the
// default World.
func (ws *Worlds) Get(key int) *World {
	if key == 0 {
		return ws.World
	}
	w, ok := ws.worlds[key]
	if !ok {
		w = newWorld(ws.registry, key)
		ws.worlds[key] = w
		ws.log.Debug("world created", zap.Int("key", key))
	}
	return w
}

// Lookup returns the World for key without creating it.
func (ws *Worlds) Lookup(key int) (*World, bool) {
	if key == 0 {
		return ws.World, true
	}
	w, ok := ws.worlds[key]
	return w, ok
}

// Delete tears down the World for key and forgets it. The default World is
// cleared but never forgotten. It reports whether a World existed.
func (ws *Worlds) Delete(key int) bool {
	if key == 0 {
		ws.World.Clear()
		return true
	}
	w, ok := ws.worlds[key]
	if !ok {
		return false
	}
	w.Clear()
	delete(ws.worlds, key)
	ws.log.Debug("world deleted", zap.Int("key", key))
	return true
}

// Clear tears down every World, the default one included.
func (ws *Worlds) Clear() {
	for _, key := range ws.Keys() {
		ws.Delete(key)
	}
	ws.World.Clear()
}

// Keys returns the keys of the non-default Worlds, ascending.
func (ws *Worlds) Keys() []int {
	keys := make([]int, 0, len(ws.worlds))
	for key := range ws.worlds {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of Worlds, the default one included.
func (ws *Worlds) Len() int {
	return len(ws.worlds) + 1
}

// All returns the default World followed by the others in key order.
func (ws *Worlds) All() []*World {
	out := make([]*World, 0, ws.Len())
	out = append(out, ws.World)
	for _, key := range ws.Keys() {
		out = append(out, ws.worlds[key])
	}
	return out
}

// CreateEntity creates an entity in the World selected by InWorld, or in the
// default World when no key is given.
func (ws *Worlds) CreateEntity(typeName string, opts ...EntityOption) *Entity {
	var o entityOptions
	for _, opt := range opts {
		opt(&o)
	}
	return ws.Get(o.world).CreateEntity(typeName, opts...)
}

// ExecuteAll runs Execute on every World: the default one first, then the
// others in key order.
func (ws *Worlds) ExecuteAll(args ...any) {
	for _, w := range ws.All() {
		w.Execute(args...)
	}
}

// UpdateAll runs Update on every World in the same order as ExecuteAll.
func (ws *Worlds) UpdateAll(args ...any) {
	for _, w := range ws.All() {
		w.Update(args...)
	}
}
