// Package manifest loads component and entity types from YAML so they can be
// registered without Go code:
//
//	components:
//	  - name: Item
//	    fields:
//	      - {name: weight, type: float, default: 1}
//	  - name: Sword
//	    extends: Item
//	    pooled: true
//	    mixins: [Glint]
//	    fields:
//	      - {name: damage, type: int, default: 10}
//	entities:
//	  - name: Armory
//	    components: [Sword]
package manifest

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/plus3/flagecs/ecs"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("manifest: invalid")

type Manifest struct {
	Components []Component `yaml:"components"`
	Entities   []Entity    `yaml:"entities"`
}

type Component struct {
	Name    string   `yaml:"name"`
	Extends string   `yaml:"extends"`
	Pooled  bool     `yaml:"pooled"`
	Mixins  []string `yaml:"mixins"`
	Fields  []Field  `yaml:"fields"`
}

type Field struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"` // int, float, string or bool
	Default any    `yaml:"default"`
}

type Entity struct {
	Name       string   `yaml:"name"`
	Pooled     bool     `yaml:"pooled"`
	Components []string `yaml:"components"` // attached when the entity is enabled
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks names, field types and defaults. Defaults are normalized to
// int, float64, string or bool.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Components))
	for i := range m.Components {
		c := &m.Components[i]
		if c.Name == "" {
			return fmt.Errorf("%w: component %d has no name", ErrInvalid, i)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: component %q declared twice", ErrInvalid, c.Name)
		}
		seen[c.Name] = true

		fields := make(map[string]bool, len(c.Fields))
		for j := range c.Fields {
			f := &c.Fields[j]
			if f.Name == "" {
				return fmt.Errorf("%w: component %q field %d has no name", ErrInvalid, c.Name, j)
			}
			if fields[f.Name] {
				return fmt.Errorf("%w: component %q field %q declared twice", ErrInvalid, c.Name, f.Name)
			}
			fields[f.Name] = true
			v, err := normalize(f.Type, f.Default)
			if err != nil {
				return fmt.Errorf("%w: component %q field %q: %v", ErrInvalid, c.Name, f.Name, err)
			}
			f.Default = v
		}
	}
	for i, e := range m.Entities {
		if e.Name == "" {
			return fmt.Errorf("%w: entity %d has no name", ErrInvalid, i)
		}
	}
	return nil
}

func normalize(typ string, v any) (any, error) {
	switch typ {
	case "int":
		switch n := v.(type) {
		case nil:
			return 0, nil
		case int:
			return n, nil
		case float64:
			if n != float64(int(n)) {
				return nil, fmt.Errorf("default %v is not an int", v)
			}
			return int(n), nil
		}
	case "float":
		switch n := v.(type) {
		case nil:
			return 0.0, nil
		case int:
			return float64(n), nil
		case float64:
			return n, nil
		}
	case "string":
		switch s := v.(type) {
		case nil:
			return "", nil
		case string:
			return s, nil
		case int:
			return strconv.Itoa(s), nil
		}
	case "bool":
		switch b := v.(type) {
		case nil:
			return false, nil
		case bool:
			return b, nil
		}
	default:
		return nil, fmt.Errorf("unknown type %q", typ)
	}
	return nil, fmt.Errorf("default %v (%T) does not fit type %s", v, v, typ)
}

// Data is the component instance for manifest types. Fields start as the
// declared defaults and are restored to them when a pooled instance is reused.
type Data struct {
	ecs.ComponentBase
	Fields   map[string]any
	defaults map[string]any
}

func newData(defaults map[string]any) *Data {
	return &Data{Fields: maps.Clone(defaults), defaults: defaults}
}

// Reset restores the defaults.
func (d *Data) Reset() {
	clear(d.Fields)
	maps.Copy(d.Fields, d.defaults)
}

// Get returns the value of a field.
func (d *Data) Get(name string) (any, bool) {
	v, ok := d.Fields[name]
	return v, ok
}

// Set stores a field value.
func (d *Data) Set(name string, v any) {
	d.Fields[name] = v
}

// Int returns a field as an int, or 0.
func (d *Data) Int(name string) int {
	switch v := d.Fields[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Float returns a field as a float64, or 0.
func (d *Data) Float(name string) float64 {
	switch v := d.Fields[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Text returns a field as a string, or "".
func (d *Data) Text(name string) string {
	s, _ := d.Fields[name].(string)
	return s
}

// Bool returns a field as a bool, or false.
func (d *Data) Bool(name string) bool {
	b, _ := d.Fields[name].(bool)
	return b
}

// Register adds every component and entity type of m to registry. It stops at
// the first registration error, which wraps ecs.ErrCapacityExceeded when the
// flag words run out.
func Register(registry *ecs.Registry, m *Manifest) error {
	for _, c := range m.Components {
		defaults := make(map[string]any, len(c.Fields))
		for _, f := range c.Fields {
			defaults[f.Name] = f.Default
		}
		t := ecs.ComponentType{
			Name:     c.Name,
			Ancestor: c.Extends,
			Poolable: c.Pooled,
			New:      func() ecs.Component { return newData(defaults) },
		}
		for _, mixin := range c.Mixins {
			t.Mixins = append(t.Mixins, ecs.Mixin{Type: mixin})
		}
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("manifest component %q: %w", c.Name, err)
		}
	}

	for _, e := range m.Entities {
		components := e.Components
		registry.RegisterEntity(ecs.EntityType{
			Name:     e.Name,
			Poolable: e.Pooled,
			OnEnable: func(entity *ecs.Entity) {
				for _, name := range components {
					entity.AddComponent(name)
				}
			},
		})
	}
	return nil
}
