package debugui

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/flagecs/ecs"
	"github.com/plus3/flagecs/ecs/manifest"
)

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{}
}

func (ci *ComponentInspector) Render(w *ecs.World, selectedEntityId ecs.EntityID) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selectedEntityId = selectedEntityId

	if ci.selectedEntityId == 0 {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	e := w.Entity(ci.selectedEntityId)
	if e == nil {
		imgui.Text(fmt.Sprintf("Entity %d not found", ci.selectedEntityId))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity ID: %d", e.ID()))
	imgui.Text(fmt.Sprintf("Type: %s", e.TypeName()))
	imgui.Text(fmt.Sprintf("Flag: %s", e.Flag()))

	enabled := e.Enabled()
	if imgui.Checkbox("Enabled", &enabled) {
		if enabled {
			e.Enable()
		} else {
			e.Disable()
		}
	}
	imgui.SameLine()
	if imgui.Button("Destroy") {
		w.Commands().Destroy(e.ID())
	}
	imgui.Separator()

	for _, c := range e.Components() {
		info := c.(componentInfo)
		label := fmt.Sprintf("%s##%d", componentLabel(info), info.UUID())
		if imgui.TreeNodeStr(label) {
			ci.renderComponent(c)
			imgui.TreePop()
		}
	}

	imgui.End()
}

// componentInfo is the part of ecs.ComponentBase the inspector shows.
type componentInfo interface {
	UUID() uint64
	TypeName() string
	Token() ecs.Token
}

// componentLabel names a component by its type and, when owned, its token.
func componentLabel(b componentInfo) string {
	if b.Token() == nil {
		return b.TypeName()
	}
	return fmt.Sprintf("%s (owned by %T)", b.TypeName(), b.Token())
}

func (ci *ComponentInspector) renderComponent(component ecs.Component) {
	if data, ok := component.(*manifest.Data); ok {
		ci.renderData(data)
		return
	}

	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		imgui.Text(fmt.Sprintf("%v", component))
		return
	}

	ci.renderFields(val)
}

// renderData edits the fields of a manifest component in name order.
func (ci *ComponentInspector) renderData(data *manifest.Data) {
	names := make([]string, 0, len(data.Fields))
	for name := range data.Fields {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		switch v := data.Fields[name].(type) {
		case int:
			n := int32(v)
			if imgui.InputInt(name, &n) {
				data.Set(name, int(n))
			}
		case float64:
			f := float32(v)
			if imgui.InputFloat(name, &f) {
				data.Set(name, float64(f))
			}
		case bool:
			if imgui.Checkbox(name, &v) {
				data.Set(name, v)
			}
		case string:
			if imgui.InputTextWithHint(name, "", &v, imgui.InputTextFlagsNone, nil) {
				data.Set(name, v)
			}
		default:
			imgui.Text(fmt.Sprintf("%s: %v", name, v))
		}
	}
}

// inspectedField is an exported, non-embedded field of a component struct.
type inspectedField struct {
	name    string
	index   int
	pointer bool
}

// fieldsOf lists the fields of struct type t the inspector shows. Embedded
// bases hold engine state and are skipped.
func (ci *ComponentInspector) fieldsOf(t reflect.Type) []inspectedField {
	if fields, ok := ci.fields[t]; ok {
		return fields
	}
	var fields []inspectedField
	for i := range t.NumField() {
		f := t.Field(i)
		if f.IsExported() && !f.Anonymous {
			fields = append(fields, inspectedField{
				name:    f.Name,
				index:   i,
				pointer: f.Type.Kind() == reflect.Pointer,
			})
		}
	}
	if ci.fields == nil {
		ci.fields = make(map[reflect.Type][]inspectedField)
	}
	ci.fields[t] = fields
	return fields
}

func (ci *ComponentInspector) renderFields(val reflect.Value) {
	for _, f := range ci.fieldsOf(val.Type()) {
		fv := val.Field(f.index)
		if f.pointer {
			if fv.IsNil() {
				imgui.Text(fmt.Sprintf("%s: nil", f.name))
				continue
			}
			fv = fv.Elem()
		}
		ci.renderField(f.name, fv)
	}
}

func (ci *ComponentInspector) renderField(name string, val reflect.Value) {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && val.CanSet() {
			val.SetInt(int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && v >= 0 && val.CanSet() {
			val.SetUint(uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", name), &v) && val.CanSet() {
			val.SetFloat(float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) && val.CanSet() {
			val.SetBool(v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s", name), "", &v, imgui.InputTextFlagsNone, nil) && val.CanSet() {
			val.SetString(v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			ci.renderFields(val)
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	case reflect.Func:
		imgui.Text(fmt.Sprintf("%s: func", name))

	default:
		if val.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		}
	}
}
