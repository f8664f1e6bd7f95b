package ecs_test

import (
	"testing"

	"github.com/plus3/flagecs/ecs"
)

func BenchmarkCreateEntity(b *testing.B) {
	world := ecs.NewWorld(newTestRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := world.CreateEntity("")
		e.AddComponent("Position")
		e.AddComponent("Velocity")
	}
}

func BenchmarkCreateDestroyPooled(b *testing.B) {
	registry := newTestRegistry()
	registry.RegisterEntity(ecs.EntityType{Name: "Shot", Poolable: true})
	world := ecs.NewWorld(registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := world.CreateEntity("Shot")
		e.AddComponent("Bullet")
		e.Destroy()
	}
}

func BenchmarkAttachDetach(b *testing.B) {
	world := ecs.NewWorld(newTestRegistry())
	e := spawn(world, "Position")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.AddComponent("Gamma")
		e.RemoveComponent("Gamma")
	}
}

func BenchmarkGetComponent(b *testing.B) {
	world := ecs.NewWorld(newTestRegistry())
	e := spawn(world, "Position", "Velocity", "Beta")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.GetComponent("Alpha")
	}
}

func BenchmarkGenericGet(b *testing.B) {
	world := ecs.NewWorld(newTestRegistry())
	e := spawn(world, "Position", "Velocity")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ecs.Get[Velocity](e)
	}
}

func benchWorld(n int) *ecs.World {
	world := ecs.NewWorld(newTestRegistry())
	for i := 0; i < n; i++ {
		switch i % 4 {
		case 0:
			spawn(world, "Position")
		case 1:
			spawn(world, "Position", "Velocity")
		case 2:
			spawn(world, "Position", "Velocity", "Health")
		default:
			spawn(world, "Velocity", "Beta")
		}
	}
	return world
}

func BenchmarkQueryAll(b *testing.B) {
	world := benchWorld(10000)
	filter := world.Filter().All("Position", "Velocity")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = filter.Query()
	}
}

func BenchmarkQueryAnyExclude(b *testing.B) {
	world := benchWorld(10000)
	filter := world.Filter().Any("Health", "Beta").Exclude("Position")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = filter.Query()
	}
}

func BenchmarkFind(b *testing.B) {
	world := benchWorld(10000)
	filter := world.Filter().Any("Beta", "Health")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = filter.Find()
	}
}

func BenchmarkViewIter(b *testing.B) {
	world := benchWorld(10000)
	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](world)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, item := range view.Iter() {
			item.X += item.DX
		}
	}
}

func BenchmarkExecute(b *testing.B) {
	world := benchWorld(1000)
	world.AddSystemInstance("Mover", &Mover{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		world.Execute(0.016)
	}
}
