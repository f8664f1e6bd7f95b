// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// It manages ImGui rendering and input state through ECS components and systems.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/flagecs/ecs"
)

// Type names registered by Register.
const (
	ImguiItemType       = "debugui.ImguiItem"
	ImguiInputStateType = "debugui.ImguiInputState"
	ImguiSystemType     = "debugui.Imgui"
	DebugPanelsType     = "debugui.Panels"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	ecs.ComponentBase
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state as a singleton component.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	ecs.ComponentBase
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem finds every ImguiItem and defers its render function to the end
// of the frame. It also updates the ImguiInputState singleton.
type ImguiSystem struct {
	ecs.SystemBase
	items *ecs.Filter
}

func (i *ImguiSystem) OnEnable(w *ecs.World) {
	i.items = w.Filter().All(ImguiItemType)
	w.AddSingleton(ImguiInputStateType)
}

// Execute updates input state and queues all ImGui render functions for execution.
func (i *ImguiSystem) Execute(args ...any) {
	w := i.World()
	if state := ecs.Singleton[ImguiInputState](w); state != nil {
		state.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
		state.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()
	}

	i.items.Each(func(e *ecs.Entity) {
		for _, item := range ecs.GetAll[ImguiItem](e) {
			if item.Render != nil {
				w.Commands().Defer(item.Render)
			}
		}
	})
}

// Register adds the debugui component, entity and system types to registry.
func Register(registry *ecs.Registry) {
	ecs.RegisterComponent[ImguiItem](registry, ImguiItemType)
	ecs.RegisterComponent[ImguiInputState](registry, ImguiInputStateType)
	ecs.RegisterComponent[Panels](registry, DebugPanelsType)
	registry.RegisterSystem(ImguiSystemType, func() ecs.System { return &ImguiSystem{} })
}
