package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/plus3/flagecs/ecs"
	"github.com/plus3/flagecs/ecs/manifest"
)

// worldMethods is the method table of the world handle passed to hooks.
// Entities are addressed by id.
var worldMethods = map[string]lua.LGFunction{
	"key":     worldKey,
	"frames":  worldFrames,
	"create":  worldCreate,
	"destroy": worldDestroy,
	"valid":   worldValid,
	"add":     worldAdd,
	"remove":  worldRemove,
	"has":     worldHas,
	"count":   worldCount,
	"query":   worldQuery,
	"get":     worldGet,
	"set":     worldSet,
	"log":     worldLog,
}

func checkWorld(L *lua.LState) *ecs.World {
	ud := L.CheckUserData(1)
	w, ok := ud.Value.(*ecs.World)
	if !ok || w == nil {
		L.ArgError(1, "world expected")
		return nil
	}
	return w
}

func checkEntity(L *lua.LState, w *ecs.World) *ecs.Entity {
	return w.Entity(ecs.EntityID(L.CheckInt64(2)))
}

func worldKey(L *lua.LState) int {
	L.Push(lua.LNumber(checkWorld(L).Key()))
	return 1
}

func worldFrames(L *lua.LState) int {
	execute, update := checkWorld(L).Frames()
	L.Push(lua.LNumber(execute))
	L.Push(lua.LNumber(update))
	return 2
}

// world:create([type]) returns the new entity id, or nil for unknown types.
func worldCreate(L *lua.LState) int {
	w := checkWorld(L)
	e := w.CreateEntity(L.OptString(2, ""))
	if e == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(e.ID()))
	return 1
}

// world:destroy(id) defers the destruction to the end of the frame.
func worldDestroy(L *lua.LState) int {
	w := checkWorld(L)
	e := checkEntity(L, w)
	if e == nil {
		L.Push(lua.LFalse)
		return 1
	}
	w.Commands().Destroy(e.ID())
	L.Push(lua.LTrue)
	return 1
}

func worldValid(L *lua.LState) int {
	w := checkWorld(L)
	e := checkEntity(L, w)
	L.Push(lua.LBool(e != nil && e.Valid()))
	return 1
}

func worldAdd(L *lua.LState) int {
	w := checkWorld(L)
	e := checkEntity(L, w)
	name := L.CheckString(3)
	L.Push(lua.LBool(e != nil && e.AddComponent(name) != nil))
	return 1
}

func worldRemove(L *lua.LState) int {
	w := checkWorld(L)
	e := checkEntity(L, w)
	name := L.CheckString(3)
	L.Push(lua.LBool(e != nil && e.RemoveComponent(name)))
	return 1
}

func worldHas(L *lua.LState) int {
	w := checkWorld(L)
	e := checkEntity(L, w)
	name := L.CheckString(3)
	L.Push(lua.LBool(e != nil && e.Has(name)))
	return 1
}

// world:count{all=..., any=..., only=..., exclude=...}
func worldCount(L *lua.LState) int {
	w := checkWorld(L)
	L.Push(lua.LNumber(buildFilter(L, w, L.CheckTable(2)).Count()))
	return 1
}

// world:query{...} returns an array of matching entity ids.
func worldQuery(L *lua.LState) int {
	w := checkWorld(L)
	out := L.NewTable()
	for _, e := range buildFilter(L, w, L.CheckTable(2)).Query() {
		out.Append(lua.LNumber(e.ID()))
	}
	L.Push(out)
	return 1
}

func buildFilter(L *lua.LState, w *ecs.World, desc *lua.LTable) *ecs.Filter {
	f := w.Filter()
	desc.ForEach(func(k, v lua.LValue) {
		names := stringList(v)
		switch lua.LVAsString(k) {
		case "all":
			f.All(names...)
		case "any":
			f.Any(names...)
		case "only":
			f.Only(names...)
		case "exclude":
			f.Exclude(names...)
		default:
			L.ArgError(2, "unknown filter stage "+lua.LVAsString(k))
		}
	})
	return f
}

func stringList(v lua.LValue) []string {
	switch v := v.(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		var names []string
		v.ForEach(func(_, item lua.LValue) {
			if s, ok := item.(lua.LString); ok {
				names = append(names, string(s))
			}
		})
		return names
	}
	return nil
}

// world:get(id, component, field) reads a field of a manifest component.
func worldGet(L *lua.LState) int {
	w := checkWorld(L)
	e := checkEntity(L, w)
	name := L.CheckString(3)
	field := L.CheckString(4)
	data := dataOf(e, name)
	if data == nil {
		L.Push(lua.LNil)
		return 1
	}
	v, _ := data.Get(field)
	lv, ok := toLua(v)
	if !ok {
		lv = lua.LNil
	}
	L.Push(lv)
	return 1
}

// world:set(id, component, field, value) writes a field of a manifest
// component. Numbers written over an int field stay ints.
func worldSet(L *lua.LState) int {
	w := checkWorld(L)
	e := checkEntity(L, w)
	name := L.CheckString(3)
	field := L.CheckString(4)
	value := fromLua(L.CheckAny(5))
	data := dataOf(e, name)
	if data == nil {
		L.Push(lua.LFalse)
		return 1
	}
	if n, ok := value.(float64); ok {
		if _, isInt := data.Fields[field].(int); isInt {
			value = int(n)
		}
	}
	data.Set(field, value)
	L.Push(lua.LTrue)
	return 1
}

func dataOf(e *ecs.Entity, name string) *manifest.Data {
	if e == nil {
		return nil
	}
	data, _ := e.GetComponent(name).(*manifest.Data)
	return data
}

// world:log(msg) writes msg at info level to the world's logger.
func worldLog(L *lua.LState) int {
	w := checkWorld(L)
	w.Logger().Info(L.CheckString(2))
	return 0
}
