// Package script runs systems written in Lua. A script file returns a table
// describing one system:
//
//	return {
//	  name = "decay",
//	  priority = 5,
//	  execute = function(world, dt)
//	    for _, id in ipairs(world:query{all = {"Health"}}) do
//	      world:set(id, "Health", "current", world:get(id, "Health", "current") - 1)
//	    end
//	  end,
//	}
//
// Recognized hooks are on_enable, on_disable, before_execute, execute,
// after_execute, before_update, update and after_update. Each receives the
// world handle followed by the frame arguments that have a Lua form.
//
// An Engine owns one Lua VM and must only be used from one goroutine.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/plus3/flagecs/ecs"
)

const worldTypeName = "ecs.world"

// Definition is a loaded script system.
type Definition struct {
	Name     string
	Priority int
	File     string
	table    *lua.LTable
}

// Engine loads script systems and runs their hooks.
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	defs   map[string]*Definition
	order  []string
	worlds map[*ecs.World]*lua.LUserData
}

// NewEngine creates an engine with the standard Lua libraries and the world
// API installed.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:     vm,
		log:    log,
		defs:   make(map[string]*Definition),
		worlds: make(map[*ecs.World]*lua.LUserData),
	}
	mt := vm.NewTypeMetatable(worldTypeName)
	vm.SetField(mt, "__index", vm.SetFuncs(vm.NewTable(), worldMethods))
	return e
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// LoadDir loads every .lua file in dir, in name order. A missing directory
// loads nothing.
func (e *Engine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.LoadFile(path); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile loads one script file.
func (e *Engine) LoadFile(path string) error {
	fn, err := e.vm.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if err := e.define(fn, path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadString loads a script from source. source names it in errors.
func (e *Engine) LoadString(source, code string) error {
	fn, err := e.vm.Load(strings.NewReader(code), source)
	if err != nil {
		return fmt.Errorf("load %s: %w", source, err)
	}
	if err := e.define(fn, source); err != nil {
		return fmt.Errorf("load %s: %w", source, err)
	}
	return nil
}

func (e *Engine) define(fn *lua.LFunction, file string) error {
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return err
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)

	t, ok := ret.(*lua.LTable)
	if !ok {
		return fmt.Errorf("script returned %s, want a table", ret.Type())
	}
	name, ok := t.RawGetString("name").(lua.LString)
	if !ok || name == "" {
		return fmt.Errorf("script table has no name")
	}
	def := &Definition{
		Name:     string(name),
		Priority: int(lua.LVAsNumber(t.RawGetString("priority"))),
		File:     file,
		table:    t,
	}
	if _, ok := e.defs[def.Name]; !ok {
		e.order = append(e.order, def.Name)
	} else {
		e.log.Warn("lua system redefined", zap.String("system", def.Name), zap.String("file", file))
	}
	e.defs[def.Name] = def
	e.log.Debug("loaded lua script", zap.String("file", file), zap.String("system", def.Name))
	return nil
}

// Definitions returns the loaded systems in load order.
func (e *Engine) Definitions() []*Definition {
	out := make([]*Definition, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.defs[name])
	}
	return out
}

// Register records a system factory for every loaded script.
func (e *Engine) Register(registry *ecs.Registry) {
	for _, def := range e.Definitions() {
		registry.RegisterSystem(def.Name, func() ecs.System {
			return &System{engine: e, def: def}
		})
	}
}

// AddTo adds every loaded script system to w with its declared priority. The
// systems must have been registered with w's Registry.
func (e *Engine) AddTo(w *ecs.World) {
	for _, def := range e.Definitions() {
		w.AddSystem(def.Name, def.Priority)
	}
}

// Release drops the Lua handle of w. Scripts holding it see an invalid world.
func (e *Engine) Release(w *ecs.World) {
	if ud, ok := e.worlds[w]; ok {
		ud.Value = nil
		delete(e.worlds, w)
	}
}

func (e *Engine) worldValue(w *ecs.World) *lua.LUserData {
	if ud, ok := e.worlds[w]; ok {
		return ud
	}
	ud := e.vm.NewUserData()
	ud.Value = w
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(worldTypeName))
	e.worlds[w] = ud
	return ud
}

func (e *Engine) call(s *System, hook string, args []any) {
	fn, ok := s.def.table.RawGetString(hook).(*lua.LFunction)
	if !ok {
		return
	}
	params := make([]lua.LValue, 0, len(args)+1)
	params = append(params, e.worldValue(s.World()))
	for _, a := range args {
		v, ok := toLua(a)
		if !ok {
			// Opaque to Lua but kept in place so later arguments keep their
			// positions.
			ud := e.vm.NewUserData()
			ud.Value = a
			v = ud
		}
		params = append(params, v)
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, params...); err != nil {
		s.errors++
		e.log.Error("lua system error",
			zap.String("system", s.def.Name),
			zap.String("hook", hook),
			zap.Error(err))
	}
}

// System is an ecs.System backed by a script.
type System struct {
	ecs.SystemBase
	engine *Engine
	def    *Definition
	errors int
}

// Definition returns the script the system runs.
func (s *System) Definition() *Definition { return s.def }

// Errors returns the number of hook calls that raised a Lua error.
func (s *System) Errors() int { return s.errors }

func (s *System) OnEnable(w *ecs.World) { s.engine.call(s, "on_enable", nil) }

func (s *System) OnDisable(w *ecs.World) { s.engine.call(s, "on_disable", nil) }

func (s *System) BeforeExecute(args ...any) { s.engine.call(s, "before_execute", args) }

func (s *System) Execute(args ...any) { s.engine.call(s, "execute", args) }

func (s *System) AfterExecute(args ...any) { s.engine.call(s, "after_execute", args) }

func (s *System) BeforeUpdate(args ...any) { s.engine.call(s, "before_update", args) }

func (s *System) Update(args ...any) { s.engine.call(s, "update", args) }

func (s *System) AfterUpdate(args ...any) { s.engine.call(s, "after_update", args) }

func toLua(v any) (lua.LValue, bool) {
	switch v := v.(type) {
	case nil:
		return lua.LNil, true
	case bool:
		return lua.LBool(v), true
	case string:
		return lua.LString(v), true
	case int:
		return lua.LNumber(v), true
	case int32:
		return lua.LNumber(v), true
	case int64:
		return lua.LNumber(v), true
	case uint64:
		return lua.LNumber(v), true
	case float32:
		return lua.LNumber(v), true
	case float64:
		return lua.LNumber(v), true
	case ecs.EntityID:
		return lua.LNumber(v), true
	}
	return nil, false
}

func fromLua(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return float64(v)
	}
	return nil
}
