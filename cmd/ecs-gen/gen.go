package main

import (
	"bytes"
	"fmt"
	"go/token"
	"strings"
	"text/template"
	"unicode"

	"golang.org/x/tools/imports"

	"github.com/plus3/flagecs/ecs/manifest"
)

var goTypes = map[string]string{
	"int":    "int",
	"float":  "float64",
	"string": "string",
	"bool":   "bool",
}

type genField struct {
	Name    string
	Type    string
	Default string
}

type genComponent struct {
	manifest.Component
	GoName string
	Fields []genField
}

type genInput struct {
	Package    string
	Source     string
	Components []genComponent
	Entities   []manifest.Entity
}

const fileTemplate = `// Code generated by ecs-gen{{with .Source}} from {{.}}{{end}}. DO NOT EDIT.

package {{.Package}}

import "github.com/plus3/flagecs/ecs"
{{range .Components}}
{{if .Extends}}// {{.GoName}} is the {{.Name}} component. It extends {{.Extends}}.{{else}}// {{.GoName}} is the {{.Name}} component.{{end}}
type {{.GoName}} struct {
	ecs.ComponentBase
{{- range .Fields}}
	{{.Name}} {{.Type}}
{{- end}}
}

func new{{.GoName}}() *{{.GoName}} {
	c := &{{.GoName}}{}
	c.Reset()
	return c
}

// Reset restores the declared defaults.
func (c *{{.GoName}}) Reset() {
{{- range .Fields}}
	c.{{.Name}} = {{.Default}}
{{- end}}
}
{{end}}
// RegisterTypes registers the generated component and entity types.
func RegisterTypes(r *ecs.Registry) error {
	for _, t := range []ecs.ComponentType{
{{- range .Components}}
		{
			Name: {{printf "%q" .Name}},
{{- if .Extends}}
			Ancestor: {{printf "%q" .Extends}},
{{- end}}
{{- if .Pooled}}
			Poolable: true,
{{- end}}
			New: func() ecs.Component { return new{{.GoName}}() },
{{- if .Mixins}}
			Mixins: []ecs.Mixin{ {{- range .Mixins}}{Type: {{printf "%q" .}}}, {{end -}} },
{{- end}}
		},
{{- end}}
	} {
		if err := r.Register(t); err != nil {
			return err
		}
	}
{{range .Entities}}
	r.RegisterEntity(ecs.EntityType{
		Name: {{printf "%q" .Name}},
{{- if .Pooled}}
		Poolable: true,
{{- end}}
{{- if .Components}}
		OnEnable: func(e *ecs.Entity) {
{{- range .Components}}
			e.AddComponent({{printf "%q" .}})
{{- end}}
		},
{{- end}}
	})
{{- end}}
	return nil
}
`

var fileTmpl = template.Must(template.New("file").Parse(fileTemplate))

// Generate renders m as Go source for package pkg. source names the manifest
// in the generated header and may be empty.
func Generate(m *manifest.Manifest, pkg, source string) ([]byte, error) {
	if !token.IsIdentifier(pkg) {
		return nil, fmt.Errorf("invalid package name %q", pkg)
	}
	in := genInput{Package: pkg, Source: source, Entities: m.Entities}
	for _, c := range m.Components {
		gc := genComponent{Component: c, GoName: exportName(c.Name)}
		if !token.IsIdentifier(gc.GoName) {
			return nil, fmt.Errorf("component %q has no Go name", c.Name)
		}
		for _, f := range c.Fields {
			typ, ok := goTypes[f.Type]
			if !ok {
				return nil, fmt.Errorf("component %q field %q: unknown type %q", c.Name, f.Name, f.Type)
			}
			name := exportName(f.Name)
			if !token.IsIdentifier(name) {
				return nil, fmt.Errorf("component %q field %q has no Go name", c.Name, f.Name)
			}
			gc.Fields = append(gc.Fields, genField{Name: name, Type: typ, Default: literal(f.Default)})
		}
		in.Components = append(in.Components, gc)
	}

	var buf bytes.Buffer
	if err := fileTmpl.Execute(&buf, in); err != nil {
		return nil, err
	}
	out, err := imports.Process(pkg+"_types.go", buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return out, nil
}

// exportName turns snake_case or kebab-case into an exported Go name.
func exportName(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '_' || r == '-' || r == ' ' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func literal(v any) string {
	switch v := v.(type) {
	case nil:
		return "0"
	case float64:
		s := fmt.Sprintf("%#v", v)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	}
	return fmt.Sprintf("%#v", v)
}
