package ecs

import (
	"iter"
	"reflect"
)

// View reads entities through a struct of component pointers:
//
//	type mover struct {
//		*Position
//		*Velocity
//		Sprite *Sprite `ecs:"optional"`
//	}
//	view := ecs.NewView[mover](world)
//
// Every field must be a pointer to a registered component type. Embedded
// fields are always required; named fields can be marked optional with the
// `ecs:"optional"` struct tag and are left nil when absent.
type View[T any] struct {
	world    *World
	names    []string
	optional []bool
	fields   []int
	filter   *Filter
}

// NewView builds a view over w. It panics when T is not a struct of pointers
// to component types registered under a single name each.
func NewView[T any](w *World) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{world: w}
	var required []string
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}
		name := w.registry.nameFor(field.Type)
		if name == "" {
			panic("View field " + field.Name + " is not a registered component type")
		}

		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}

		v.names = append(v.names, name)
		v.optional = append(v.optional, isOptional)
		v.fields = append(v.fields, i)
		if !isOptional {
			required = append(required, name)
		}
	}

	v.filter = w.Filter().All(required...)
	return v
}

// Filter returns the filter selecting entities that hold every required field.
func (v *View[T]) Filter() *Filter { return v.filter }

// Fill populates ptr with e's components. It returns false if e is missing a
// required component.
func (v *View[T]) Fill(e *Entity, ptr *T) bool {
	if e == nil || !e.valid || e.world != v.world {
		return false
	}
	out := reflect.ValueOf(ptr).Elem()
	for i, name := range v.names {
		field := out.Field(v.fields[i])
		c := e.exactOrDerived(name, field.Type())
		if c == nil {
			if !v.optional[i] {
				return false
			}
			field.SetZero()
			continue
		}
		field.Set(reflect.ValueOf(c))
	}
	return true
}

// Get returns a populated view struct for e, or nil if e doesn't have all the
// required components.
func (v *View[T]) Get(e *Entity) *T {
	var result T
	if !v.Fill(e, &result) {
		return nil
	}
	return &result
}

// Iter yields every enabled entity holding the required components together
// with its populated view struct.
func (v *View[T]) Iter() iter.Seq2[*Entity, T] {
	return func(yield func(*Entity, T) bool) {
		for _, e := range v.filter.Query() {
			var result T
			if !v.Fill(e, &result) {
				continue
			}
			if !yield(e, result) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates a plain entity and attaches the non-nil fields of data as
// unowned components. It panics if a required field is nil.
func (v *View[T]) Spawn(data T, opts ...EntityOption) *Entity {
	in := reflect.ValueOf(&data).Elem()
	components := make([]Component, 0, len(v.names))
	for i := range v.names {
		field := in.Field(v.fields[i])
		if field.IsNil() {
			if !v.optional[i] {
				panic("required component is nil in View.Spawn")
			}
			continue
		}
		components = append(components, field.Interface().(Component))
	}
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	e := v.world.CreateEntity("", opts...)
	for _, c := range components {
		e.Attach(c, nil)
	}
	return e
}

// exactOrDerived returns the first component attached under name whose Go
// type is assignable to want.
func (e *Entity) exactOrDerived(name string, want reflect.Type) Component {
	for _, c := range e.candidates(name) {
		if reflect.TypeOf(c).AssignableTo(want) {
			return c
		}
	}
	return nil
}
