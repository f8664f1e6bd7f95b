package debugui

import (
	"fmt"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/flagecs/ecs"
)

const filterPreviewLimit = 20

func NewFilterDebugger() *FilterDebugger {
	fd := &FilterDebugger{}
	fd.Clear()
	return fd
}

// Clear deselects every type in every stage.
func (fd *FilterDebugger) Clear() {
	fd.selected = make(map[stageName]map[string]bool, stageCount)
	for s := range stageCount {
		fd.selected[s] = make(map[string]bool)
	}
}

// Toggle flips name in a stage ("all", "any", "only" or "exclude").
func (fd *FilterDebugger) Toggle(stage, name string) {
	i := slices.Index(stageLabels[:], stage)
	if i < 0 {
		return
	}
	set := fd.selected[stageName(i)]
	if set[name] {
		delete(set, name)
	} else {
		set[name] = true
	}
}

// Build returns the filter described by the current selection, or nil when
// nothing is selected.
func (fd *FilterDebugger) Build(w *ecs.World) *ecs.Filter {
	f := w.Filter()
	empty := true
	for s := range stageCount {
		names := make([]string, 0, len(fd.selected[s]))
		for name := range fd.selected[s] {
			names = append(names, name)
		}
		if len(names) == 0 {
			continue
		}
		slices.Sort(names)
		empty = false
		switch s {
		case stageAll:
			f.All(names...)
		case stageAny:
			f.Any(names...)
		case stageOnly:
			f.Only(names...)
		case stageExclude:
			f.Exclude(names...)
		}
	}
	if empty {
		return nil
	}
	return f
}

func (fd *FilterDebugger) Render(w *ecs.World) {
	if !imgui.BeginV("Filter Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if imgui.Button("Clear All") {
		fd.Clear()
	}
	imgui.Separator()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
	if imgui.BeginTableV("FilterStageTable", int32(stageCount)+1, tableFlags, imgui.NewVec2(0, 200), 0) {
		imgui.TableSetupColumn("Type")
		for _, label := range stageLabels {
			imgui.TableSetupColumn(label)
		}
		imgui.TableHeadersRow()

		for _, name := range w.Registry().ComponentNames() {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(name)
			for s := range stageCount {
				imgui.TableNextColumn()
				checked := fd.selected[s][name]
				if imgui.Checkbox(fmt.Sprintf("##%s-%s", stageLabels[s], name), &checked) {
					fd.Toggle(stageLabels[s], name)
				}
			}
		}

		imgui.EndTable()
	}

	imgui.Separator()

	f := fd.Build(w)
	if f == nil {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	matches := f.Query()
	imgui.Text(fmt.Sprintf("Filter: %s", f.Describe()))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matches)))

	if imgui.TreeNodeStr("Matches") {
		for _, e := range matches[:min(len(matches), filterPreviewLimit)] {
			imgui.BulletText(fmt.Sprintf("%d %s %v", e.ID(), e.TypeName(), e.TypeNames()))
		}
		if len(matches) > filterPreviewLimit {
			imgui.Text(fmt.Sprintf("... %d more", len(matches)-filterPreviewLimit))
		}
		imgui.TreePop()
	}

	imgui.End()
}
