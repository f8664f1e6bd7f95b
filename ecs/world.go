package ecs

import (
	"context"
	"reflect"
	"time"

	"go.uber.org/zap"
)

// World is an isolated ECS instance: its own entities, systems, singleton
// components and type index, sharing the Registry with every other World.
type World struct {
	key      int
	registry *Registry
	log      *zap.Logger

	entities   *EntityTable
	systems    *SystemTable
	index      *TypeIndex
	singletons []Component
	commands   *Commands

	entityPool    map[string][]*Entity
	componentPool map[string][]Component

	nextID        EntityID
	executeFrames uint64
	updateFrames  uint64
}

// NewWorld creates an empty World on the given registry.
func NewWorld(registry *Registry) *World {
	return newWorld(registry, 0)
}

func newWorld(registry *Registry, key int) *World {
	return &World{
		key:           key,
		registry:      registry,
		log:           registry.log.With(zap.Int("world", key)),
		entities:      newEntityTable(),
		systems:       newSystemTable(),
		index:         newTypeIndex(),
		commands:      newCommands(),
		entityPool:    make(map[string][]*Entity),
		componentPool: make(map[string][]Component),
	}
}

// Key returns the key the World is registered under in its Worlds, 0 for the
// default World.
func (w *World) Key() int { return w.key }

// Registry returns the shared registry.
func (w *World) Registry() *Registry { return w.registry }

// Logger returns the World's logger.
func (w *World) Logger() *zap.Logger { return w.log }

// Index returns the World's type index.
func (w *World) Index() *TypeIndex { return w.index }

// Commands returns the deferred command buffer flushed after each frame phase.
func (w *World) Commands() *Commands { return w.commands }

// Frames returns how many times Execute and Update have run.
func (w *World) Frames() (execute, update uint64) {
	return w.executeFrames, w.updateFrames
}

// NewComponent builds a detached component of the named type, reusing a pooled
// instance when the type is poolable. It returns nil for unknown names.
func (w *World) NewComponent(name string) Component {
	t, ok := w.registry.Component(name)
	if !ok {
		w.log.Debug("unknown component type", zap.String("type", name))
		return nil
	}
	if t.Poolable {
		if pool := w.componentPool[name]; len(pool) > 0 {
			c := pool[len(pool)-1]
			pool[len(pool)-1] = nil
			w.componentPool[name] = pool[:len(pool)-1]
			c.componentBase().typ = t
			return c
		}
	}
	c := t.New()
	if c == nil {
		return nil
	}
	c.componentBase().typ = t
	return c
}

func (w *World) recycleComponent(c Component) {
	b := c.componentBase()
	if b.typ == nil || !b.typ.Poolable {
		return
	}
	if r, ok := c.(resetter); ok {
		r.Reset()
	}
	w.componentPool[b.typ.Name] = append(w.componentPool[b.typ.Name], c)
}

// EntityOption configures CreateEntity.
type EntityOption func(*entityOptions)

type entityOptions struct {
	node  Node
	world int
}

// WithNode binds a host handle to the new entity.
func WithNode(node Node) EntityOption {
	return func(o *entityOptions) { o.node = node }
}

// InWorld selects the World a Worlds.CreateEntity call targets. A World's own
// CreateEntity ignores it.
func InWorld(key int) EntityOption {
	return func(o *entityOptions) { o.world = key }
}

// CreateEntity creates an entity of the named entity type ("" for a plain
// entity), registers it and runs its OnEnable hook. Unknown types return nil.
func (w *World) CreateEntity(typeName string, opts ...EntityOption) *Entity {
	var o entityOptions
	for _, opt := range opts {
		opt(&o)
	}

	typ, ok := w.registry.Entity(typeName)
	if !ok {
		w.log.Warn("unknown entity type", zap.String("type", typeName))
		return nil
	}

	var e *Entity
	if typ.Poolable {
		if pool := w.entityPool[typ.Name]; len(pool) > 0 {
			e = pool[len(pool)-1]
			pool[len(pool)-1] = nil
			w.entityPool[typ.Name] = pool[:len(pool)-1]
		}
	}
	if e == nil {
		e = newEntity(w, typ)
	}

	w.nextID++
	e.id = w.nextID
	e.node = o.node
	e.valid = true
	w.entities.add(e)
	e.Enable()
	return e
}

func (w *World) recycleEntity(e *Entity) {
	if !e.typ.Poolable {
		return
	}
	e.reset()
	w.entityPool[e.typ.Name] = append(w.entityPool[e.typ.Name], e)
}

// Entity returns the entity with the given id, or nil.
func (w *World) Entity(id EntityID) *Entity {
	return w.entities.Get(id)
}

// Entities returns a snapshot of every entity in the World.
func (w *World) Entities() []*Entity {
	return w.entities.Snapshot()
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return w.entities.Len()
}

// DestroyEntity destroys the entity with the given id. It reports whether the
// entity existed.
func (w *World) DestroyEntity(id EntityID) bool {
	e := w.entities.Get(id)
	if e == nil {
		return false
	}
	e.Destroy()
	return true
}

// AddSystem instantiates the system registered under name, appends it in
// arrival order (or by the optional priority, higher first) and runs its
// OnEnable hook. Adding a name that is already present returns the existing
// system.
func (w *World) AddSystem(name string, priority ...int) System {
	if s := w.systems.Get(name); s != nil {
		return s
	}
	factory, ok := w.registry.System(name)
	if !ok {
		w.log.Warn("unknown system type", zap.String("type", name))
		return nil
	}
	s := factory()
	if s == nil {
		return nil
	}
	w.addSystem(name, s, priority)
	return s
}

// AddSystemInstance adds an already built system under name.
func (w *World) AddSystemInstance(name string, s System, priority ...int) bool {
	if s == nil || w.systems.Get(name) != nil {
		return false
	}
	if s.systemBase().world != nil {
		w.log.Warn("system already belongs to a world", zap.String("system", name))
		return false
	}
	w.addSystem(name, s, priority)
	return true
}

func (w *World) addSystem(name string, s System, priority []int) {
	b := s.systemBase()
	b.name = name
	b.world = w
	b.priority = 0
	if len(priority) > 0 {
		b.priority = priority[0]
	}
	w.systems.insert(s)
	if h, ok := s.(systemEnabler); ok {
		h.OnEnable(w)
	}
}

// GetSystem returns the system added under name, or nil.
func (w *World) GetSystem(name string) System {
	return w.systems.Get(name)
}

// RemoveSystem runs the system's OnDisable hook, cancels its timers and removes
// it. It reports whether the system was present.
func (w *World) RemoveSystem(name string) bool {
	s := w.systems.Get(name)
	if s == nil {
		return false
	}
	if h, ok := s.(systemDisabler); ok {
		h.OnDisable(w)
	}
	w.systems.remove(name)
	b := s.systemBase()
	b.executeTimers.Clear()
	b.updateTimers.Clear()
	b.world = nil
	return true
}

// Systems returns the system names in execution order.
func (w *World) Systems() []string {
	return w.systems.Names()
}

// AddSingleton returns the singleton of the named type, creating and enabling
// it when absent. Singletons are not entities and never appear in filters.
func (w *World) AddSingleton(name string) Component {
	if c := w.GetSingleton(name); c != nil {
		return c
	}
	c := w.NewComponent(name)
	if c == nil {
		return nil
	}
	w.storeSingleton(c)
	return c
}

// AddSingletonInstance stores c as the singleton of its type and returns the
// stored singleton, which is the existing one when its type is already
// present.
func (w *World) AddSingletonInstance(c Component) Component {
	if c == nil {
		return nil
	}
	b := c.componentBase()
	if b.typ == nil {
		t, ok := w.registry.Component(w.registry.nameFor(reflect.TypeOf(c)))
		if !ok {
			w.log.Warn("singleton of unregistered component type")
			return nil
		}
		b.typ = t
	}
	if existing := w.GetSingleton(b.typ.Name); existing != nil {
		return existing
	}
	if b.valid {
		w.log.Warn("singleton instance is attached elsewhere", zap.String("type", b.typ.Name))
		return nil
	}
	w.storeSingleton(c)
	return c
}

func (w *World) storeSingleton(c Component) {
	b := c.componentBase()
	b.uuid = w.registry.newUUID()
	b.valid = true
	w.singletons = append(w.singletons, c)
	if h, ok := c.(componentEnabler); ok {
		h.OnEnable(nil)
	}
}

// GetSingleton returns the singleton of the named type, or nil. The list is
// short, so it is scanned linearly.
func (w *World) GetSingleton(name string) Component {
	for _, c := range w.singletons {
		if c.componentBase().typ.Name == name {
			return c
		}
	}
	return nil
}

// RemoveSingleton disables and drops the singleton of the named type.
func (w *World) RemoveSingleton(name string) bool {
	for i, c := range w.singletons {
		b := c.componentBase()
		if b.typ.Name != name {
			continue
		}
		if h, ok := c.(componentDisabler); ok {
			h.OnDisable(nil)
		}
		b.valid = false
		w.singletons = append(w.singletons[:i], w.singletons[i+1:]...)
		return true
	}
	return false
}

// Singletons returns the singleton type names in insertion order.
func (w *World) Singletons() []string {
	names := make([]string, len(w.singletons))
	for i, c := range w.singletons {
		names[i] = c.componentBase().typ.Name
	}
	return names
}

// Execute runs the Execute phase: every system's execute timers and
// BeforeExecute, then Execute on systems and attached components, then
// AfterExecute, then the command buffer. args reach every hook unchanged.
func (w *World) Execute(args ...any) {
	w.executeFrames++
	systems := w.systems.Snapshot()

	for _, s := range systems {
		b := s.systemBase()
		if !w.runs(b) {
			continue
		}
		start := time.Now()
		b.executeTimers.drain(args)
		if h, ok := s.(beforeExecutor); ok && w.runs(b) {
			h.BeforeExecute(args...)
		}
		b.stats.current += time.Since(start)
	}

	for _, s := range systems {
		b := s.systemBase()
		if h, ok := s.(executor); ok && w.runs(b) {
			start := time.Now()
			h.Execute(args...)
			b.stats.current += time.Since(start)
		}
	}
	w.eachComponent(func(c Component) {
		if h, ok := c.(executor); ok {
			h.Execute(args...)
		}
	})

	for _, s := range systems {
		b := s.systemBase()
		if h, ok := s.(afterExecutor); ok && w.runs(b) {
			start := time.Now()
			h.AfterExecute(args...)
			b.stats.current += time.Since(start)
		}
	}

	for _, s := range systems {
		b := s.systemBase()
		if w.runs(b) {
			b.stats.executeCalls++
			b.stats.commit()
		}
	}
	w.commands.Flush(w)
}

// Update runs the Update phase with the same shape as Execute, using the
// update timers and the Update hooks.
func (w *World) Update(args ...any) {
	w.updateFrames++
	systems := w.systems.Snapshot()

	for _, s := range systems {
		b := s.systemBase()
		if !w.runs(b) {
			continue
		}
		start := time.Now()
		b.updateTimers.drain(args)
		if h, ok := s.(beforeUpdater); ok && w.runs(b) {
			h.BeforeUpdate(args...)
		}
		b.stats.current += time.Since(start)
	}

	for _, s := range systems {
		b := s.systemBase()
		if h, ok := s.(updater); ok && w.runs(b) {
			start := time.Now()
			h.Update(args...)
			b.stats.current += time.Since(start)
		}
	}
	w.eachComponent(func(c Component) {
		if h, ok := c.(updater); ok {
			h.Update(args...)
		}
	})

	for _, s := range systems {
		b := s.systemBase()
		if h, ok := s.(afterUpdater); ok && w.runs(b) {
			start := time.Now()
			h.AfterUpdate(args...)
			b.stats.current += time.Since(start)
		}
	}

	for _, s := range systems {
		b := s.systemBase()
		if w.runs(b) {
			b.stats.updateCalls++
			b.stats.commit()
		}
	}
	w.commands.Flush(w)
}

// runs reports whether a system is still in this World and enabled. A hook may
// remove or disable a later system mid-phase.
func (w *World) runs(b *SystemBase) bool {
	return b.world == w && !b.disabled
}

// eachComponent visits the components of every enabled entity, entities in
// table order and components in attach order. Components attached during the
// walk are not visited; detached ones are skipped.
func (w *World) eachComponent(fn func(Component)) {
	for _, e := range w.entities.Snapshot() {
		if !e.valid || !e.enabled {
			continue
		}
		for _, c := range e.Components() {
			if b := c.componentBase(); b.valid && b.entity == e.id {
				fn(c)
			}
		}
	}
}

// Run drives Execute and Update once per interval until ctx is done. Both
// receive the elapsed time since the previous tick in seconds as their only
// argument.
func (w *World) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			w.Execute(dt)
			w.Update(dt)
		}
	}
}

// Clear destroys every entity, removes every system and singleton and drops
// the pools. The World stays usable.
func (w *World) Clear() {
	for _, e := range w.entities.Snapshot() {
		e.Destroy()
	}
	for _, name := range w.systems.Names() {
		w.RemoveSystem(name)
	}
	for len(w.singletons) > 0 {
		w.RemoveSingleton(w.singletons[len(w.singletons)-1].componentBase().typ.Name)
	}
	w.entities.clear()
	w.index.clear()
	w.commands = newCommands()
	clear(w.entityPool)
	clear(w.componentPool)
	w.log.Debug("world cleared")
}
