package script_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/plus3/flagecs/ecs"
	"github.com/plus3/flagecs/ecs/manifest"
	"github.com/plus3/flagecs/ecs/script"
)

const types = `
components:
  - name: Health
    fields:
      - {name: current, type: int, default: 3}
  - name: Poisoned
  - name: Marker
`

const decay = `
return {
  name = "decay",
  priority = 5,
  execute = function(world, amount)
    for _, id in ipairs(world:query{all = {"Health", "Poisoned"}}) do
      local hp = world:get(id, "Health", "current") - amount
      world:set(id, "Health", "current", hp)
      if hp <= 0 then
        world:destroy(id)
      end
    end
  end,
}
`

const spawner = `
local spawned = 0
return {
  name = "spawner",
  on_enable = function(world)
    local id = world:create()
    world:add(id, "Marker")
  end,
  update = function(world)
    local id = world:create()
    world:add(id, "Health")
    if world:count{all = "Marker"} > 0 then
      world:add(id, "Poisoned")
    end
    spawned = spawned + 1
  end,
}
`

func setup(t *testing.T, log *zap.Logger, sources map[string]string) (*script.Engine, *ecs.World) {
	t.Helper()
	m, err := manifest.Parse([]byte(types))
	require.NoError(t, err)
	registry := ecs.NewRegistry(ecs.WithLogger(log))
	require.NoError(t, manifest.Register(registry, m))

	engine := script.NewEngine(log)
	t.Cleanup(engine.Close)
	for name, src := range sources {
		require.NoError(t, engine.LoadString(name, src))
	}
	engine.Register(registry)

	world := ecs.NewWorld(registry)
	engine.AddTo(world)
	return engine, world
}

func TestScriptSystems(t *testing.T) {
	_, world := setup(t, zap.NewNop(), map[string]string{"decay.lua": decay, "spawner.lua": spawner})

	assert.Equal(t, []string{"decay", "spawner"}, world.Systems(), "higher priority first")
	assert.Equal(t, 1, world.Filter().All("Marker").Count(), "on_enable ran")

	world.Update()
	world.Update()
	victims := world.Filter().All("Poisoned").Query()
	require.Len(t, victims, 2)

	world.Execute(2)
	for _, e := range victims {
		assert.Equal(t, 1, e.GetComponent("Health").(*manifest.Data).Int("current"))
	}

	world.Execute(1)
	assert.Equal(t, 0, world.Filter().All("Poisoned").Count(), "destroyed at the end of the frame")
	assert.Equal(t, 1, world.EntityCount())
}

func TestScriptErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, world := setup(t, zap.New(core), map[string]string{
		"broken.lua": `return { name = "broken", execute = function(world) error("boom") end }`,
	})

	world.Execute()
	world.Execute()

	s := world.GetSystem("broken").(*script.System)
	assert.Equal(t, 2, s.Errors())
	entries := logs.FilterMessage("lua system error").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "execute", entries[0].ContextMap()["hook"])
	assert.Equal(t, "broken", entries[0].ContextMap()["system"])
}

func TestLoadRejects(t *testing.T) {
	engine := script.NewEngine(nil)
	defer engine.Close()

	assert.Error(t, engine.LoadString("syntax", "return {"))
	assert.Error(t, engine.LoadString("number", "return 1"))
	assert.Error(t, engine.LoadString("anonymous", "return {}"))
	assert.Error(t, engine.LoadString("raises", `error("no")`))
	assert.Empty(t, engine.Definitions())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`return { name = "b" }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`return { name = "a", priority = 2 }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

	engine := script.NewEngine(nil)
	defer engine.Close()
	require.NoError(t, engine.LoadDir(dir))
	require.NoError(t, engine.LoadDir(filepath.Join(dir, "missing")))

	defs := engine.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "a", defs[0].Name)
	assert.Equal(t, 2, defs[0].Priority)
	assert.Equal(t, filepath.Join(dir, "a.lua"), defs[0].File)
}

func TestReleasedWorld(t *testing.T) {
	engine, world := setup(t, zap.NewNop(), map[string]string{
		"counter.lua": `return { name = "counter", execute = function(world) world:count{all = "Marker"} end }`,
	})
	world.Execute()
	s := world.GetSystem("counter").(*script.System)
	require.Zero(t, s.Errors())

	engine.Release(world)
	world.Execute()
	assert.Zero(t, s.Errors(), "a fresh handle is made on the next call")
}

func TestHookArgumentsKeepPositions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	_, world := setup(t, zap.New(core), map[string]string{
		"args.lua": `return {
  name = "args",
  execute = function(world, frame, dt, label)
    if type(frame) ~= "userdata" then error("frame is " .. type(frame)) end
    world:log(string.format("dt=%s label=%s", tostring(dt), tostring(label)))
  end,
}`,
	})

	type frameInfo struct{ n int }
	world.Execute(frameInfo{n: 1}, 0.5, "tick")

	s := world.GetSystem("args").(*script.System)
	assert.Zero(t, s.Errors())
	entries := logs.FilterMessage("dt=0.5 label=tick").All()
	assert.Len(t, entries, 1)
}
