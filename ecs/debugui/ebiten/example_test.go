package ebiten_test

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/plus3/flagecs/ecs"
	"github.com/plus3/flagecs/ecs/debugui"
	debugui_ebiten "github.com/plus3/flagecs/ecs/debugui/ebiten"
)

// Game implements ebiten.Game and integrates the ECS with ImGui rendering.
type Game struct {
	world *ecs.World
}

func (g *Game) backend() *debugui_ebiten.ImguiBackend {
	return ecs.Singleton[debugui_ebiten.ImguiBackend](g.world)
}

func (g *Game) Update() error {
	// Begin ImGui frame before executing systems
	g.backend().BeginFrame()

	// Execute all ECS systems (including ImguiSystem). The deferred render
	// functions run when the frame's commands flush.
	g.world.Execute(1.0 / 60.0)

	// End ImGui frame after systems complete
	g.backend().EndFrame()

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	// Draw game content to screen
	// ...

	// Draw ImGui overlay on top
	g.backend().Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.backend().Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func Example() {
	// Create Ebiten window and ImGui backend
	imguiBackend := ebitenbackend.NewEbitenBackend()
	imguiBackend.CreateWindow("ECS ImGui Example", 1280, 720)
	imgui.CurrentIO().SetIniFilename("") // Disable imgui.ini

	// Set up the ECS registry
	registry := ecs.NewRegistry()
	debugui.Register(registry)
	debugui_ebiten.Register(registry)

	world := ecs.NewWorld(registry)

	// Register ImGui backend as a singleton
	world.AddSingletonInstance(&debugui_ebiten.ImguiBackend{EbitenBackend: imguiBackend})

	// Spawn an entity with an ImGui render function
	world.CreateEntity("").Attach(&debugui.ImguiItem{
		Render: func() {
			imgui.Begin("Debug Window")
			imgui.Text("Hello from ECS!")
			imgui.End()
		},
	}, nil)

	// Add the entity browser, inspector, type index and filter windows
	debugui.SpawnDebugUI(world)

	world.AddSystem(debugui.ImguiSystemType)

	// Run the game
	if err := ebiten.RunGame(&Game{world: world}); err != nil {
		panic(err)
	}
}
