package ecs

import "reflect"

// Get returns the first component of Go type T attached to e, or nil. T is the
// struct type; the component is returned as *T:
//
//	pos := ecs.Get[Position](e)
func Get[T any, PT interface {
	*T
	Component
}](e *Entity) PT {
	if e == nil {
		return nil
	}
	name := e.world.registry.nameFor(reflect.TypeFor[PT]())
	if name == "" {
		return findTyped[PT](e.Components())
	}
	return findTyped[PT](e.candidates(name))
}

// GetAll returns every component of Go type T attached to e, in attach order.
func GetAll[T any, PT interface {
	*T
	Component
}](e *Entity) []PT {
	if e == nil {
		return nil
	}
	var out []PT
	for _, c := range e.Components() {
		if typed, ok := c.(PT); ok {
			out = append(out, typed)
		}
	}
	return out
}

// Add attaches a new unowned component of Go type T to e. It returns nil when
// T is not registered under a single name.
func Add[T any, PT interface {
	*T
	Component
}](e *Entity) PT {
	if e == nil {
		return nil
	}
	name := e.world.registry.nameFor(reflect.TypeFor[PT]())
	if name == "" {
		return nil
	}
	typed, _ := e.AddComponent(name).(PT)
	return typed
}

// Singleton returns the World's singleton of Go type T, creating it when
// absent. It returns nil when T is not registered under a single name.
func Singleton[T any, PT interface {
	*T
	Component
}](w *World) PT {
	name := w.registry.nameFor(reflect.TypeFor[PT]())
	if name == "" {
		for _, c := range w.singletons {
			if typed, ok := c.(PT); ok {
				return typed
			}
		}
		return nil
	}
	typed, _ := w.AddSingleton(name).(PT)
	return typed
}

func findTyped[PT Component](candidates []Component) PT {
	for _, c := range candidates {
		if typed, ok := c.(PT); ok {
			return typed
		}
	}
	var zero PT
	return zero
}
