package ecs

// Token is an ownership token recorded when a component is attached on
// behalf of a caller. Tokens are compared with ==, so they must be comparable.
// The nil token means the component is unowned.
type Token = any

// Component is implemented by every component type through an embedded
// ComponentBase:
//
//	type Position struct {
//		ecs.ComponentBase
//		X, Y float64
//	}
//
// A component may also implement any of these optional hooks:
//
//	OnEnable(e *Entity)   // after attach, once per attach
//	OnDisable(e *Entity)  // before detach, once per detach
//	Execute(args ...any)  // once per World.Execute while attached
//	Update(args ...any)   // once per World.Update while attached
//	Reset()               // before a pooled instance is reused
//
// Singleton components receive a nil entity in OnEnable and OnDisable.
type Component interface {
	componentBase() *ComponentBase
}

// ComponentBase holds the engine-managed state of a component.
type ComponentBase struct {
	uuid      uint64
	typ       *ComponentType
	entity    EntityID
	token     Token
	valid     bool
	detaching bool
}

func (b *ComponentBase) componentBase() *ComponentBase { return b }

// UUID returns the instance id assigned at attach time.
func (b *ComponentBase) UUID() uint64 { return b.uuid }

// TypeName returns the registered type name, or "" for an instance that was
// never attached.
func (b *ComponentBase) TypeName() string {
	if b.typ == nil {
		return ""
	}
	return b.typ.Name
}

// Entity returns the id of the owning entity, or 0 when detached.
func (b *ComponentBase) Entity() EntityID { return b.entity }

// Token returns the ownership token the component was attached with.
func (b *ComponentBase) Token() Token { return b.token }

// Valid reports whether the component is currently attached.
func (b *ComponentBase) Valid() bool { return b.valid }

type componentEnabler interface {
	OnEnable(e *Entity)
}

type componentDisabler interface {
	OnDisable(e *Entity)
}

type resetter interface {
	Reset()
}
