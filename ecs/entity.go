package ecs

import (
	"reflect"
	"slices"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// EntityID identifies an entity within its World. Ids are never reused while
// the World lives; a recycled entity receives a fresh id.
type EntityID uint64

// Node is an opaque handle to a host object (for example a scene-graph node)
// bound to an entity. The engine stores it and hands it back, nothing more.
type Node = any

// Entity owns a set of attached components and the flag describing their
// types. Entities are created by World.CreateEntity.
type Entity struct {
	id      EntityID
	typ     *EntityType
	world   *World
	node    Node
	enabled bool
	valid   bool
	dying   bool
	flag    Flag

	components *intmap.Map[uint64, Component]
	order      []uint64
	byName     map[string][]uint64
	counts     map[string]int
}

func newEntity(w *World, typ *EntityType) *Entity {
	return &Entity{
		typ:        typ,
		world:      w,
		components: intmap.New[uint64, Component](8),
		byName:     make(map[string][]uint64),
		counts:     make(map[string]int),
	}
}

// ID returns the entity id.
func (e *Entity) ID() EntityID { return e.id }

// TypeName returns the entity type name.
func (e *Entity) TypeName() string { return e.typ.Name }

// World returns the owning World.
func (e *Entity) World() *World { return e.world }

// Node returns the host handle bound at creation, or nil.
func (e *Entity) Node() Node { return e.node }

// Valid reports whether the entity is alive. It turns false during teardown.
func (e *Entity) Valid() bool { return e.valid }

// Enabled reports whether the entity takes part in filters.
func (e *Entity) Enabled() bool { return e.enabled }

// Flag returns the union of the all-inclusive flags of every attached type.
// The returned flag must not be modified.
func (e *Entity) Flag() Flag { return e.flag }

// Len returns the number of attached components.
func (e *Entity) Len() int { return len(e.order) }

// Components returns the attached components in attach order.
func (e *Entity) Components() []Component {
	out := make([]Component, 0, len(e.order))
	for _, uuid := range e.order {
		if c, ok := e.components.Get(uuid); ok {
			out = append(out, c)
		}
	}
	return out
}

// TypeNames returns the own type names of the attached components, sorted.
func (e *Entity) TypeNames() []string {
	names := make([]string, 0, len(e.counts))
	for name := range e.counts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Has reports whether a component of name, or of a type extending it, is
// attached.
func (e *Entity) Has(name string) bool {
	return len(e.byName[name]) > 0
}

// Enable turns the entity on and runs the entity type's OnEnable hook.
func (e *Entity) Enable() {
	if !e.valid || e.enabled {
		return
	}
	e.enabled = true
	if e.typ.OnEnable != nil {
		e.typ.OnEnable(e)
	}
}

// Disable turns the entity off and runs the entity type's OnDisable hook.
// Disabled entities keep their components but are skipped by filters.
func (e *Entity) Disable() {
	if !e.enabled {
		return
	}
	e.enabled = false
	if e.typ.OnDisable != nil {
		e.typ.OnDisable(e)
	}
}

// AddComponent attaches a new unowned component of the named type and returns
// it. If an unowned component of exactly that type is already attached it is
// returned instead. Unknown names return nil.
func (e *Entity) AddComponent(name string) Component {
	return e.AddComponentFor(name, nil)
}

// AddComponentFor attaches a new component of the named type on behalf of
// token. Only a caller presenting the same token can remove it.
func (e *Entity) AddComponentFor(name string, token Token) Component {
	if !e.valid || e.dying {
		return nil
	}
	if c := e.exact(name, token); c != nil {
		return c
	}
	c := e.world.NewComponent(name)
	if c == nil {
		return nil
	}
	e.attach(c, token)
	return c
}

// Attach attaches an existing instance on behalf of token. It returns false
// when the instance is already attached, when a component of the same type is
// attached with the same token, or when the instance's type is unknown.
func (e *Entity) Attach(c Component, token Token) bool {
	if !e.valid || e.dying || c == nil {
		return false
	}
	b := c.componentBase()
	if b.typ == nil {
		name := e.world.registry.nameFor(reflect.TypeOf(c))
		t, ok := e.world.registry.Component(name)
		if !ok {
			e.world.log.Warn("attach of unregistered component type", zap.Uint64("entity", uint64(e.id)))
			return false
		}
		b.typ = t
	}
	if b.valid {
		if b.entity == e.id && e.components.Has(b.uuid) {
			e.world.log.Warn("component already attached",
				zap.Uint64("entity", uint64(e.id)),
				zap.String("type", b.typ.Name),
				zap.Uint64("uuid", b.uuid))
		} else {
			e.world.log.Warn("component attached to another entity",
				zap.Uint64("entity", uint64(e.id)),
				zap.Uint64("owner", uint64(b.entity)),
				zap.String("type", b.typ.Name))
		}
		return false
	}
	if e.exact(b.typ.Name, token) != nil {
		e.world.log.Warn("component type already attached for token",
			zap.Uint64("entity", uint64(e.id)),
			zap.String("type", b.typ.Name))
		return false
	}
	e.attach(c, token)
	return true
}

func (e *Entity) attach(c Component, token Token) {
	b := c.componentBase()
	b.uuid = e.world.registry.newUUID()
	b.entity = e.id
	b.token = token
	b.valid = true

	name := b.typ.Name
	e.components.Put(b.uuid, c)
	e.order = append(e.order, b.uuid)
	e.byName[name] = append(e.byName[name], b.uuid)
	e.world.index.add(name, e.id)
	for ancestor := range e.world.registry.Ancestors(name) {
		e.byName[ancestor] = append(e.byName[ancestor], b.uuid)
		e.world.index.add(ancestor, e.id)
	}

	e.counts[name]++
	if e.counts[name] == 1 {
		e.flag = e.flag.Or(e.world.registry.flags.AllInclusive(name))
	}

	for _, m := range b.typ.Mixins {
		mixed := e.AddComponentFor(m.Type, c)
		if mixed != nil && m.Init != nil {
			m.Init(c, mixed)
		}
	}

	if h, ok := c.(componentEnabler); ok {
		h.OnEnable(e)
	}
}

// RemoveComponent removes an unowned component of the named type.
func (e *Entity) RemoveComponent(name string) bool {
	return e.RemoveComponentFor(name, nil)
}

// RemoveComponentFor removes the component of the named type attached with
// token. Exact-type matches are preferred over ancestor matches. It returns
// false when nothing of that name is attached or the token does not match.
func (e *Entity) RemoveComponentFor(name string, token Token) bool {
	candidates := e.candidates(name)
	if len(candidates) == 0 {
		return false
	}
	for _, c := range candidates {
		if c.componentBase().token == token {
			return e.Detach(c, token)
		}
	}
	e.world.log.Debug("component removal refused: token mismatch",
		zap.Uint64("entity", uint64(e.id)),
		zap.String("type", name))
	return false
}

// Detach removes c if it is attached to e with token.
func (e *Entity) Detach(c Component, token Token) bool {
	if c == nil {
		return false
	}
	b := c.componentBase()
	if !b.valid || b.detaching || b.entity != e.id || !e.components.Has(b.uuid) {
		return false
	}
	if b.token != token {
		e.world.log.Debug("component detach refused: token mismatch",
			zap.Uint64("entity", uint64(e.id)),
			zap.String("type", b.typ.Name))
		return false
	}
	e.detach(c)
	return true
}

func (e *Entity) detach(c Component) {
	b := c.componentBase()
	if b.detaching {
		return
	}
	b.detaching = true

	if h, ok := c.(componentDisabler); ok {
		h.OnDisable(e)
	}
	for i := len(b.typ.Mixins) - 1; i >= 0; i-- {
		e.RemoveComponentFor(b.typ.Mixins[i].Type, c)
	}

	// A hook that destroyed e has already unlinked c.
	if e.components.Has(b.uuid) {
		e.unlink(c)
	}

	b.valid = false
	b.detaching = false
	b.entity = 0
	b.token = nil
	e.world.recycleComponent(c)
}

// unlink drops c from the entity's maps, the type index and the flag without
// running hooks or recycling it.
func (e *Entity) unlink(c Component) {
	b := c.componentBase()
	name := b.typ.Name
	e.components.Del(b.uuid)
	e.order = deleteID(e.order, b.uuid)
	e.unindex(name, b.uuid)
	for ancestor := range e.world.registry.Ancestors(name) {
		e.unindex(ancestor, b.uuid)
	}

	e.counts[name]--
	if e.counts[name] <= 0 {
		delete(e.counts, name)
		e.recomputeFlag()
	}
}

func (e *Entity) unindex(name string, uuid uint64) {
	ids := deleteID(e.byName[name], uuid)
	if len(ids) == 0 {
		delete(e.byName, name)
	} else {
		e.byName[name] = ids
	}
	e.world.index.remove(name, e.id)
}

// recomputeFlag rebuilds the flag from the remaining attached types. Clearing
// the removed type's bits directly would be wrong when another attached type
// shares an ancestor with it.
func (e *Entity) recomputeFlag() {
	var f Flag
	for name := range e.counts {
		f = f.Or(e.world.registry.flags.AllInclusive(name))
	}
	e.flag = f
}

// GetComponent returns a component attached under name: an exact-type match
// first, otherwise one whose type extends name. It returns nil when absent.
func (e *Entity) GetComponent(name string) Component {
	candidates := e.candidates(name)
	if len(candidates) == 0 {
		return nil
	}
	return candidates[0]
}

// GetComponentFor is GetComponent restricted to components attached with token.
func (e *Entity) GetComponentFor(name string, token Token) Component {
	for _, c := range e.candidates(name) {
		if c.componentBase().token == token {
			return c
		}
	}
	return nil
}

// GetComponents returns every component attached under name, exact-type
// matches first.
func (e *Entity) GetComponents(name string) []Component {
	return e.candidates(name)
}

// GetComponentsFor is GetComponents restricted to components attached with token.
func (e *Entity) GetComponentsFor(name string, token Token) []Component {
	var out []Component
	for _, c := range e.candidates(name) {
		if c.componentBase().token == token {
			out = append(out, c)
		}
	}
	return out
}

func (e *Entity) candidates(name string) []Component {
	uuids := e.byName[name]
	if len(uuids) == 0 {
		return nil
	}
	out := make([]Component, 0, len(uuids))
	var derived []Component
	for _, uuid := range uuids {
		c, ok := e.components.Get(uuid)
		if !ok {
			continue
		}
		if c.componentBase().typ.Name == name {
			out = append(out, c)
		} else {
			derived = append(derived, c)
		}
	}
	return append(out, derived...)
}

func (e *Entity) exact(name string, token Token) Component {
	for _, uuid := range e.byName[name] {
		c, ok := e.components.Get(uuid)
		if !ok {
			continue
		}
		b := c.componentBase()
		if b.typ.Name == name && b.token == token {
			return c
		}
	}
	return nil
}

// CheckFlagAll reports whether the entity's flag contains every bit of flag.
func (e *Entity) CheckFlagAll(flag Flag) bool {
	return ContainsAll(e.flag, flag)
}

// CheckFlagAny reports whether the entity's flag shares a bit with flag.
func (e *Entity) CheckFlagAny(flag Flag) bool {
	return ContainsAny(e.flag, flag)
}

// CheckFlagOnly reports whether the entity contains flag and every attached
// type's all-inclusive flag lies within flag. Only declared attached types are
// checked, so holding a subtype of a queried type does not count as "only".
func (e *Entity) CheckFlagOnly(flag Flag) bool {
	if !ContainsAll(e.flag, flag) {
		return false
	}
	flags := e.world.registry.flags
	for name := range e.counts {
		if !ContainsAll(flag, flags.AllInclusive(name)) {
			return false
		}
	}
	return true
}

// Destroy tears the entity down: disable, detach every component, invalidate,
// remove from the World, release the node, and recycle when poolable.
func (e *Entity) Destroy() {
	if !e.valid || e.dying {
		return
	}
	e.teardown()
}

// Kill is Destroy with the entity invalidated first, so hooks running during
// teardown already see it as invalid.
func (e *Entity) Kill() {
	if !e.valid || e.dying {
		return
	}
	e.valid = false
	e.teardown()
}

func (e *Entity) teardown() {
	e.dying = true
	e.Disable()
	for len(e.order) > 0 {
		uuid := e.order[len(e.order)-1]
		c, ok := e.components.Get(uuid)
		if !ok {
			e.order = e.order[:len(e.order)-1]
			continue
		}
		if c.componentBase().detaching {
			// Its own detach is still on the stack and recycles it.
			e.unlink(c)
			continue
		}
		e.detach(c)
	}
	e.valid = false
	e.world.entities.remove(e.id)
	e.node = nil
	e.world.recycleEntity(e)
}

func (e *Entity) reset() {
	e.id = 0
	e.node = nil
	e.enabled = false
	e.valid = false
	e.dying = false
	e.flag = nil
	e.components.Clear()
	e.order = e.order[:0]
	clear(e.byName)
	clear(e.counts)
}

func deleteID(ids []uint64, id uint64) []uint64 {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}
