package ecs_test

import (
	"fmt"

	"github.com/plus3/flagecs/ecs"
)

// Common test component types
type Position struct {
	ecs.ComponentBase
	X, Y float32
}

type Velocity struct {
	ecs.ComponentBase
	DX, DY float32
}

type Health struct {
	ecs.ComponentBase
	Current int
	Max     int
}

type Name struct {
	ecs.ComponentBase
	Value string
}

type Alpha struct {
	ecs.ComponentBase
}

type Beta struct {
	ecs.ComponentBase
}

type Gamma struct {
	ecs.ComponentBase
}

type X struct {
	ecs.ComponentBase
}

type Y struct {
	ecs.ComponentBase
}

// Bullet is pooled; Reset counts how often an instance was recycled.
type Bullet struct {
	ecs.ComponentBase
	Damage int
	Resets int
}

func (b *Bullet) Reset() {
	b.Damage = 0
	b.Resets++
}

// Glow is mixed into Lamp.
type Glow struct {
	ecs.ComponentBase
	Radius float32
}

type Lamp struct {
	ecs.ComponentBase
	Lit bool
}

// hookLog records lifecycle hooks of Tracer and Lamp in call order.
var hookLog []string

type Tracer struct {
	ecs.ComponentBase
}

func (t *Tracer) OnEnable(e *ecs.Entity) {
	if e == nil {
		hookLog = append(hookLog, "enable:singleton")
		return
	}
	hookLog = append(hookLog, fmt.Sprintf("enable:%d:%d", e.ID(), e.Len()))
}

func (t *Tracer) OnDisable(e *ecs.Entity) {
	if e == nil {
		hookLog = append(hookLog, "disable:singleton")
		return
	}
	hookLog = append(hookLog, fmt.Sprintf("disable:%d:%v", e.ID(), e.Valid()))
}

func (t *Tracer) Execute(args ...any) {
	hookLog = append(hookLog, "tracer.execute")
}

func (t *Tracer) Update(args ...any) {
	hookLog = append(hookLog, "tracer.update")
}

func (l *Lamp) OnEnable(e *ecs.Entity) {
	_, glowing := e.GetComponent("Glow").(*Glow)
	hookLog = append(hookLog, fmt.Sprintf("lamp.enable glow=%v", glowing))
}

func (l *Lamp) OnDisable(e *ecs.Entity) {
	_, glowing := e.GetComponent("Glow").(*Glow)
	hookLog = append(hookLog, fmt.Sprintf("lamp.disable glow=%v", glowing))
}

func newTestRegistry() *ecs.Registry {
	registry := ecs.NewRegistry()
	ecs.RegisterComponent[Position](registry, "Position")
	ecs.RegisterComponent[Velocity](registry, "Velocity")
	ecs.RegisterComponent[Health](registry, "Health")
	ecs.RegisterComponent[Name](registry, "Name")
	ecs.RegisterComponent[Alpha](registry, "Alpha")
	ecs.RegisterComponent[Beta](registry, "Beta", ecs.Extends("Alpha"))
	ecs.RegisterComponent[Gamma](registry, "Gamma", ecs.Extends("Beta"))
	ecs.RegisterComponent[X](registry, "X")
	ecs.RegisterComponent[Y](registry, "Y")
	ecs.RegisterComponent[Bullet](registry, "Bullet", ecs.Pooled())
	ecs.RegisterComponent[Glow](registry, "Glow")
	ecs.RegisterComponent[Lamp](registry, "Lamp", ecs.MixIn("Glow", func(parent, mixed ecs.Component) {
		mixed.(*Glow).Radius = 2
	}))
	ecs.RegisterComponent[Tracer](registry, "Tracer")
	return registry
}

func newTestWorld() *ecs.World {
	hookLog = nil
	return ecs.NewWorld(newTestRegistry())
}

func spawn(w *ecs.World, names ...string) *ecs.Entity {
	e := w.CreateEntity("")
	for _, name := range names {
		e.AddComponent(name)
	}
	return e
}
