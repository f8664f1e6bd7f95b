package ecs

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"

	"go.uber.org/zap"
)

var (
	// ErrUnknownType is returned when a name has no registered descriptor.
	ErrUnknownType = errors.New("ecs: unknown type")
	// ErrAncestorCycle is returned when a type would become its own ancestor.
	ErrAncestorCycle = errors.New("ecs: ancestor cycle")
)

// ComponentType describes a component type. Types are registered once at
// startup and never unregistered.
type ComponentType struct {
	Name     string
	Ancestor string
	Poolable bool
	New      func() Component
	Mixins   []Mixin

	goType reflect.Type
}

// Mixin is a component type attached alongside its parent and detached with
// it. Init runs after the mixed-in instance is attached, before the parent's
// OnEnable hook.
type Mixin struct {
	Type string
	Init func(parent, mixed Component)
}

// EntityType describes a kind of entity. The zero name is the plain entity.
type EntityType struct {
	Name      string
	Poolable  bool
	OnEnable  func(*Entity)
	OnDisable func(*Entity)
}

// TypeOption adjusts a ComponentType during RegisterComponent.
type TypeOption func(*ComponentType)

// Extends declares the immediate ancestor of the component type.
func Extends(ancestor string) TypeOption {
	return func(t *ComponentType) { t.Ancestor = ancestor }
}

// Pooled marks the component type as recyclable.
func Pooled() TypeOption {
	return func(t *ComponentType) { t.Poolable = true }
}

// MixIn declares a component type attached alongside this one.
func MixIn(typeName string, init func(parent, mixed Component)) TypeOption {
	return func(t *ComponentType) {
		t.Mixins = append(t.Mixins, Mixin{Type: typeName, Init: init})
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger shared by the registry and every World built on it.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMaxWords sets how many 31-bit words component flags may use.
func WithMaxWords(n int) Option {
	return func(r *Registry) { r.maxWords = n }
}

// Registry maps names to component, entity and system descriptors and owns the
// flag allocator. One Registry is shared by every World of a process.
type Registry struct {
	log        *zap.Logger
	maxWords   int
	flags      *FlagAllocator
	components map[string]*ComponentType
	entities   map[string]*EntityType
	systems    map[string]func() System
	byGoType   map[reflect.Type]string
	nextUUID   uint64
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		log:        zap.NewNop(),
		maxWords:   DefaultMaxWords,
		components: make(map[string]*ComponentType),
		entities:   make(map[string]*EntityType),
		systems:    make(map[string]func() System),
		byGoType:   make(map[reflect.Type]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.flags = NewFlagAllocator(r, r.maxWords)
	return r
}

// Logger returns the registry logger.
func (r *Registry) Logger() *zap.Logger { return r.log }

// Flags returns the flag allocator.
func (r *Registry) Flags() *FlagAllocator { return r.flags }

// Register records a component type. The type's bit is assigned here so that
// running out of capacity surfaces at startup. Registering a name twice logs a
// warning and the newer descriptor replaces the older one.
func (r *Registry) Register(t ComponentType) error {
	if t.Name == "" {
		return fmt.Errorf("register component: empty name")
	}
	if t.New == nil {
		return fmt.Errorf("register component %q: nil constructor", t.Name)
	}
	if t.Ancestor == t.Name {
		return fmt.Errorf("register component %q: %w", t.Name, ErrAncestorCycle)
	}
	for _, m := range t.Mixins {
		if m.Type == t.Name {
			return fmt.Errorf("register component %q: mixes in itself", t.Name)
		}
	}
	if t.Ancestor != "" {
		for ancestor := range r.Ancestors(t.Ancestor) {
			if ancestor == t.Name {
				return fmt.Errorf("register component %q extends %q: %w", t.Name, t.Ancestor, ErrAncestorCycle)
			}
		}
	}

	if _, err := r.flags.Assign(t.Name); err != nil {
		return fmt.Errorf("register component %q: %w", t.Name, err)
	}
	if t.Ancestor != "" {
		if _, err := r.flags.Assign(t.Ancestor); err != nil {
			return fmt.Errorf("register component %q: ancestor %q: %w", t.Name, t.Ancestor, err)
		}
	}

	if prev, ok := r.components[t.Name]; ok {
		r.log.Warn("component type registered twice",
			zap.String("type", t.Name),
			zap.String("ancestor", t.Ancestor),
			zap.String("previousAncestor", prev.Ancestor))
	}

	desc := t
	desc.Mixins = append([]Mixin(nil), t.Mixins...)
	r.components[t.Name] = &desc
	r.flags.invalidate()
	if desc.goType == nil {
		// Resolve the Go type from a sample instance so Attach can accept
		// instances built outside the registry.
		if sample := desc.New(); sample != nil {
			desc.goType = reflect.TypeOf(sample)
		}
	}
	if desc.goType != nil {
		if prev, ok := r.byGoType[desc.goType]; ok && prev != t.Name {
			// Several names share one Go type; instances of it must come from
			// World.NewComponent to carry their name.
			r.byGoType[desc.goType] = ""
		} else {
			r.byGoType[desc.goType] = t.Name
		}
	}
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(t ComponentType) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// RegisterComponent registers T under name. PT is inferred, so callers write
// RegisterComponent[Position](registry, "Position"). It panics on error.
func RegisterComponent[T any, PT interface {
	*T
	Component
}](r *Registry, name string, opts ...TypeOption) {
	t := ComponentType{
		Name:   name,
		New:    func() Component { return PT(new(T)) },
		goType: reflect.TypeFor[PT](),
	}
	for _, opt := range opts {
		opt(&t)
	}
	r.MustRegister(t)
}

// Component returns the descriptor for name.
func (r *Registry) Component(name string) (*ComponentType, bool) {
	t, ok := r.components[name]
	return t, ok
}

// ComponentNames returns every registered component type name, sorted.
func (r *Registry) ComponentNames() []string {
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NameOf returns the registered name for a component instance's Go type.
func (r *Registry) NameOf(c Component) (string, bool) {
	if c == nil {
		return "", false
	}
	name := r.byGoType[reflect.TypeOf(c)]
	return name, name != ""
}

func (r *Registry) nameFor(t reflect.Type) string {
	return r.byGoType[t]
}

// Ancestors walks the ancestor chain of name up to the root, excluding name
// itself. An ancestor that was never registered is yielded and ends the walk.
func (r *Registry) Ancestors(name string) iter.Seq[string] {
	return func(yield func(string) bool) {
		t, ok := r.components[name]
		for steps := 0; ok && t.Ancestor != "" && steps <= len(r.components); steps++ {
			if !yield(t.Ancestor) {
				return
			}
			t, ok = r.components[t.Ancestor]
		}
	}
}

// IsA reports whether name equals ancestor or descends from it.
func (r *Registry) IsA(name, ancestor string) bool {
	if name == ancestor {
		return true
	}
	for a := range r.Ancestors(name) {
		if a == ancestor {
			return true
		}
	}
	return false
}

// RegisterEntity records an entity type. Re-registration logs a warning and
// replaces the previous descriptor.
func (r *Registry) RegisterEntity(t EntityType) {
	if _, ok := r.entities[t.Name]; ok {
		r.log.Warn("entity type registered twice", zap.String("type", t.Name))
	}
	desc := t
	r.entities[t.Name] = &desc
}

// Entity returns the entity type registered under name. The empty name always
// resolves to the plain entity type.
func (r *Registry) Entity(name string) (*EntityType, bool) {
	if t, ok := r.entities[name]; ok {
		return t, true
	}
	if name == "" {
		return &plainEntity, true
	}
	return nil, false
}

var plainEntity = EntityType{}

// RegisterSystem records a system factory under name.
func (r *Registry) RegisterSystem(name string, factory func() System) {
	if _, ok := r.systems[name]; ok {
		r.log.Warn("system type registered twice", zap.String("type", name))
	}
	r.systems[name] = factory
}

// System returns the factory registered under name.
func (r *Registry) System(name string) (func() System, bool) {
	f, ok := r.systems[name]
	return f, ok
}

func (r *Registry) newUUID() uint64 {
	r.nextUUID++
	return r.nextUUID
}
