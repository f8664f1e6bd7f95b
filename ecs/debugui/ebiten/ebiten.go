// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"

	"github.com/plus3/flagecs/ecs"
)

// ImguiBackendType is the singleton type name registered by Register.
const ImguiBackendType = "debugui.ImguiBackend"

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Store it as a World singleton to integrate Dear ImGui rendering into Ebiten game loops.
type ImguiBackend struct {
	ecs.ComponentBase
	*ebitenbackend.EbitenBackend
}

// Register adds the ImguiBackend component type to registry.
func Register(registry *ecs.Registry) {
	ecs.RegisterComponent[ImguiBackend](registry, ImguiBackendType)
}
