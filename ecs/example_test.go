package ecs_test

import (
	"fmt"

	"github.com/plus3/flagecs/ecs"
)

type Mover struct {
	ecs.SystemBase
}

func (m *Mover) Execute(args ...any) {
	dt := args[0].(float64)
	for _, e := range m.World().Filter().All("Position", "Velocity").Query() {
		pos := ecs.Get[Position](e)
		vel := ecs.Get[Velocity](e)
		pos.X += vel.DX * float32(dt)
		pos.Y += vel.DY * float32(dt)
	}
}

// ExampleWorld shows the basic flow: register component types once, create a
// World, attach components by name and drive systems through Execute.
func ExampleWorld() {
	registry := ecs.NewRegistry()
	ecs.RegisterComponent[Position](registry, "Position")
	ecs.RegisterComponent[Velocity](registry, "Velocity")
	registry.RegisterSystem("Mover", func() ecs.System { return &Mover{} })

	world := ecs.NewWorld(registry)
	world.AddSystem("Mover")

	ship := world.CreateEntity("")
	ecs.Add[Position](ship)
	vel := ecs.Add[Velocity](ship)
	vel.DX, vel.DY = 2, 1

	rock := world.CreateEntity("")
	ecs.Add[Position](rock).X = 10

	world.Execute(1.0)
	world.Execute(0.5)

	for _, e := range world.Filter().All("Position").Query() {
		pos := ecs.Get[Position](e)
		fmt.Printf("entity %d at (%.0f, %.1f)\n", e.ID(), pos.X, pos.Y)
	}

	// Output:
	// entity 1 at (3, 1.5)
	// entity 2 at (10, 0.0)
}

// ExampleFilter demonstrates the four combinators on a small world.
func ExampleFilter() {
	world := newTestWorld()
	spawn(world, "X")
	spawn(world, "X", "Y")
	spawn(world, "Y")

	fmt.Println("any(X,Y):", len(world.Filter().Any("X", "Y").Query()))
	fmt.Println("all(X,Y):", ids(world.Filter().All("X", "Y").Query()))
	fmt.Println("only(X):", ids(world.Filter().Only("X").Query()))
	fmt.Println("exclude(Y):", ids(world.Filter().Exclude("Y").Query()))

	// Output:
	// any(X,Y): 3
	// all(X,Y): [2]
	// only(X): [1]
	// exclude(Y): [1]
}

// ExampleExtends shows declared ancestry: asking for a base type finds a
// derived instance, and filters on the base type match it.
func ExampleExtends() {
	registry := ecs.NewRegistry()
	ecs.RegisterComponent[Alpha](registry, "Alpha")
	ecs.RegisterComponent[Beta](registry, "Beta", ecs.Extends("Alpha"))

	world := ecs.NewWorld(registry)
	e1 := world.CreateEntity("")
	e1.AddComponent("Beta")

	fmt.Println(e1.GetComponent("Alpha").(*Beta) != nil)
	fmt.Println(world.Filter().All("Alpha").Count())
	fmt.Println(e1.Flag())

	// Output:
	// true
	// 1
	// 0000000000000000000000000000011
}

// ExampleEntity_AddComponentFor shows ownership tokens: a component leased by
// one caller cannot be removed by another.
func ExampleEntity_AddComponentFor() {
	world := newTestWorld()
	e := world.CreateEntity("")

	type buff struct{ source string }
	poison := &buff{"poison"}
	e.AddComponentFor("Health", poison)

	fmt.Println(e.RemoveComponent("Health"))
	fmt.Println(e.RemoveComponentFor("Health", &buff{"poison"}))
	fmt.Println(e.RemoveComponentFor("Health", poison))

	// Output:
	// false
	// false
	// true
}

// ExampleTimers shows frame-counted timers drained at the start of each
// Execute.
func ExampleTimers() {
	world := newTestWorld()
	sys := &countingSystem{}
	world.AddSystemInstance("Clock", sys)

	sys.ExecuteTimers().Once(3, func(args ...any) {
		fmt.Println("boom on frame", args[0])
	})
	sys.ExecuteTimers().Repeat(2, 2, func(args ...any) {
		fmt.Println("tick on frame", args[0])
	})

	for frame := 1; frame <= 5; frame++ {
		world.Execute(frame)
	}

	// Output:
	// tick on frame 2
	// boom on frame 3
	// tick on frame 4
}

// ExampleWorlds shows keyed worlds sharing one registry.
func ExampleWorlds() {
	worlds := ecs.NewWorlds(newTestRegistry())

	worlds.CreateEntity("").AddComponent("Position")
	worlds.CreateEntity("", ecs.InWorld(1)).AddComponent("Position")
	worlds.CreateEntity("", ecs.InWorld(1)).AddComponent("Position")

	for _, w := range worlds.All() {
		fmt.Printf("world %d: %d\n", w.Key(), w.Filter().All("Position").Count())
	}

	worlds.Delete(1)
	fmt.Println("keys:", worlds.Keys())

	// Output:
	// world 0: 1
	// world 1: 2
	// keys: []
}
