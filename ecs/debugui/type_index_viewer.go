package debugui

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/flagecs/ecs"
)

// TypeInfo is one row of the type index: a component type name, its flag bit
// and the number of entities carrying it or a type extending it.
type TypeInfo struct {
	Name        string
	Bit         int
	Ancestors   []string
	EntityCount int
}

type TypeIndexViewerCache struct {
	types         []TypeInfo
	lastTypeCount int
	sortColumn    int
	sortAscending bool
}

func NewTypeIndexViewer() *TypeIndexViewer {
	return &TypeIndexViewer{
		cache: &TypeIndexViewerCache{
			lastTypeCount: -1,
			sortColumn:    3,
			sortAscending: false,
		},
		sortColumn:    3,
		sortAscending: false,
	}
}

// Render draws the type index and returns the type name clicked this frame,
// or "".
func (tv *TypeIndexViewer) Render(w *ecs.World) string {
	if !imgui.BeginV("Type Index", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return ""
	}

	tv.rebuildCacheIfNeeded(w)

	maxEntityCount := 0
	for _, t := range tv.cache.types {
		maxEntityCount = max(maxEntityCount, t.EntityCount)
	}

	var clicked string

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("TypeIndexTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Type")
		imgui.TableSetupColumn("Bit")
		imgui.TableSetupColumn("Ancestors")
		imgui.TableSetupColumn("Entity Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			tv.cache.sortColumn = int(spec.ColumnIndex())
			tv.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			tv.sortColumn = tv.cache.sortColumn
			tv.sortAscending = tv.cache.sortAscending
			tv.sortTypes()
			sortSpecs.SetSpecsDirty(false)
		}

		for _, t := range tv.cache.types {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(t.Name, tv.selectedType == t.Name, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				tv.selectedType = t.Name
				clicked = t.Name
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", t.Bit))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(t.Ancestors, " > "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", t.EntityCount))

			if maxEntityCount > 0 {
				barWidth := float32(t.EntityCount) / float32(maxEntityCount) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	imgui.End()
	return clicked
}

func (tv *TypeIndexViewer) rebuildCacheIfNeeded(w *ecs.World) {
	if count := len(w.Index().Names()); tv.cache.lastTypeCount != count {
		tv.cache.types = nil
		tv.cache.lastTypeCount = count
	}

	if tv.cache.types == nil {
		tv.rebuildCache(w)
	} else {
		tv.updateEntityCounts(w)
	}
}

func (tv *TypeIndexViewer) rebuildCache(w *ecs.World) {
	stats := w.CollectStats()
	registry := w.Registry()
	tv.cache.types = make([]TypeInfo, 0, len(stats.TypeBreakdown))

	for _, t := range stats.TypeBreakdown {
		tv.cache.types = append(tv.cache.types, TypeInfo{
			Name:        t.Name,
			Bit:         t.Bit,
			Ancestors:   slices.Collect(registry.Ancestors(t.Name)),
			EntityCount: t.EntityCount,
		})
	}

	tv.sortTypes()
}

func (tv *TypeIndexViewer) updateEntityCounts(w *ecs.World) {
	index := w.Index()
	for i := range tv.cache.types {
		tv.cache.types[i].EntityCount = index.Len(tv.cache.types[i].Name)
	}

	if tv.sortColumn == 3 {
		tv.sortTypes()
	}
}

func (tv *TypeIndexViewer) sortTypes() {
	sort.SliceStable(tv.cache.types, func(i, j int) bool {
		a, b := tv.cache.types[i], tv.cache.types[j]
		var less bool

		switch tv.cache.sortColumn {
		case 0:
			less = a.Name < b.Name
		case 1:
			less = a.Bit < b.Bit
		case 2:
			less = len(a.Ancestors) < len(b.Ancestors)
		case 3:
			less = a.EntityCount < b.EntityCount
		default:
			less = a.EntityCount < b.EntityCount
		}

		if !tv.cache.sortAscending {
			return !less
		}
		return less
	})
}
