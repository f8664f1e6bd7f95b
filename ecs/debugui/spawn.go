package debugui

import "github.com/plus3/flagecs/ecs"

// Panels bundles the debug windows. The type index selects the browser's
// type filter and the browser selects the inspected entity.
type Panels struct {
	ecs.ComponentBase
	Browser   *EntityBrowser
	Inspector *ComponentInspector
	Types     *TypeIndexViewer
	Perf      *PerformanceStats
	Filters   *FilterDebugger
	timer     *FrameTimer
}

func NewPanels() *Panels {
	return &Panels{
		Browser:   NewEntityBrowser(100),
		Inspector: NewComponentInspector(),
		Types:     NewTypeIndexViewer(),
		Perf:      NewPerformanceStats(120),
		Filters:   NewFilterDebugger(),
		timer:     NewFrameTimer(),
	}
}

func (p *Panels) Render(w *ecs.World) {
	if name := p.Types.Render(w); name != "" {
		p.Browser.SetTypeFilter(name)
	}
	p.Browser.Render(w)
	p.Inspector.Render(w, p.Browser.GetSelectedEntity())
	p.Perf.Render(w, p.timer.GetDeltaTime())
	p.Filters.Render(w)
}

// SpawnDebugUI creates an entity carrying the debug panels and the ImguiItem
// that draws them. Register must have been called on the World's Registry and
// the ImguiSystem added to the World.
func SpawnDebugUI(w *ecs.World) *ecs.Entity {
	e := w.CreateEntity("")
	panels := NewPanels()
	e.Attach(panels, nil)
	e.Attach(&ImguiItem{Render: func() { panels.Render(w) }}, nil)
	return e
}
