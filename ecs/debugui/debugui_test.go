package debugui

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/flagecs/ecs"
)

type position struct {
	ecs.ComponentBase
	X, Y   float32
	Label  string
	hidden int
}

type tag struct {
	ecs.ComponentBase
}

func newTestWorld(t *testing.T) *ecs.World {
	t.Helper()
	registry := ecs.NewRegistry()
	Register(registry)
	ecs.RegisterComponent[position](registry, "Position")
	ecs.RegisterComponent[tag](registry, "Tag")
	return ecs.NewWorld(registry)
}

func TestFilterDebuggerBuild(t *testing.T) {
	w := newTestWorld(t)
	a := w.CreateEntity("")
	a.AddComponent("Position")
	b := w.CreateEntity("")
	b.AddComponent("Position")
	b.AddComponent("Tag")

	fd := NewFilterDebugger()
	assert.Nil(t, fd.Build(w))

	fd.Toggle("all", "Position")
	assert.Equal(t, 2, fd.Build(w).Count())

	fd.Toggle("exclude", "Tag")
	f := fd.Build(w)
	assert.Equal(t, []*ecs.Entity{a}, f.Query())
	assert.Equal(t, "all(Position) exclude(Tag)", f.Describe())

	fd.Toggle("exclude", "Tag")
	fd.Toggle("bogus", "Tag")
	assert.Equal(t, 2, fd.Build(w).Count())

	fd.Clear()
	assert.Nil(t, fd.Build(w))
}

func TestEntityBrowserCache(t *testing.T) {
	w := newTestWorld(t)
	for range 3 {
		w.CreateEntity("").AddComponent("Position")
	}
	tagged := w.CreateEntity("")
	tagged.AddComponent("Tag")

	eb := NewEntityBrowser(10)
	eb.rebuildCacheIfNeeded(w)
	require.Len(t, eb.cache.entities, 4)
	assert.Equal(t, []string{"Position"}, eb.cache.entities[0].ComponentTypes)

	eb.SetTypeFilter("Tag")
	filtered := eb.filteredEntities(w)
	require.Len(t, filtered, 1)
	assert.Equal(t, tagged.ID(), filtered[0].ID)

	eb.SetTypeFilter("")
	eb.filterText = "tag"
	assert.Len(t, eb.filteredEntities(w), 1)

	w.CreateEntity("")
	eb.rebuildCacheIfNeeded(w)
	assert.Len(t, eb.cache.entities, 5, "cache follows the entity count")
}

func TestTypeIndexViewerCache(t *testing.T) {
	w := newTestWorld(t)
	w.CreateEntity("").AddComponent("Position")
	w.CreateEntity("").AddComponent("Position")

	tv := NewTypeIndexViewer()
	tv.rebuildCacheIfNeeded(w)
	require.Len(t, tv.cache.types, 1)
	assert.Equal(t, "Position", tv.cache.types[0].Name)
	assert.Equal(t, 2, tv.cache.types[0].EntityCount)

	w.CreateEntity("").AddComponent("Tag")
	tv.rebuildCacheIfNeeded(w)
	require.Len(t, tv.cache.types, 2)
	assert.Equal(t, "Position", tv.cache.types[0].Name, "sorted by entity count, largest first")
}

func TestPerformanceStatsRecord(t *testing.T) {
	ps := NewPerformanceStats(2)
	assert.InDelta(t, 5.0, ps.record(0.010), 1e-4)
	assert.InDelta(t, 15.0, ps.record(0.020), 1e-4)
	assert.InDelta(t, 25.0, ps.record(0.030), 1e-4, "oldest frame drops out")
}

func TestInspectorFieldsSkipBase(t *testing.T) {
	ci := NewComponentInspector()
	fields := ci.fieldsOf(reflect.TypeFor[position]())
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.name)
	}
	assert.Equal(t, []string{"X", "Y", "Label"}, names)
	assert.Len(t, ci.fields, 1, "fields are kept per type")
}

func TestImguiSystemRegistration(t *testing.T) {
	w := newTestWorld(t)
	SpawnDebugUI(w)

	assert.Equal(t, 1, w.Filter().All(ImguiItemType).Count())
	assert.Equal(t, 1, w.Filter().All(DebugPanelsType).Count())
}
