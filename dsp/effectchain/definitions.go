package effectchain

import (
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ParamSpec declares one numeric parameter of an effect. Min and Max are
// optional UI bounds and are not enforced when building.
type ParamSpec struct {
	Name    string
	Default float64
	Min     *float64
	Max     *float64
}

// Definition is one registry entry.
type Definition struct {
	Name   string
	Class  string
	Params []ParamSpec
}

// Param returns the named parameter spec.
func (d Definition) Param(name string) (ParamSpec, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}

	return ParamSpec{}, false
}

func (d Definition) clone() Definition {
	out := Definition{Name: d.Name, Class: d.Class}
	if d.Params == nil {
		return out
	}

	out.Params = make([]ParamSpec, len(d.Params))
	for i, p := range d.Params {
		out.Params[i] = ParamSpec{Name: p.Name, Default: p.Default, Min: cloneFloat(p.Min), Max: cloneFloat(p.Max)}
	}

	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}

	c := *v

	return &c
}

// Definitions is the effect registry. It is read-only after construction
// and safe for concurrent use.
type Definitions struct {
	order  []string
	byName map[string]Definition
}

// NewDefinitions validates defs and returns a registry keeping their order.
func NewDefinitions(defs ...Definition) (*Definitions, error) {
	d := &Definitions{byName: make(map[string]Definition, len(defs))}

	for _, def := range defs {
		if err := d.add(def.clone()); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// LoadDefinitionsFile reads a registry document from path.
func LoadDefinitionsFile(path string) (*Definitions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open effect definitions: %w", err)
	}
	defer f.Close()

	defs, err := LoadDefinitions(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return defs, nil
}

type paramDoc struct {
	Default *float64 `yaml:"default"`
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
}

type effectDoc struct {
	Class  string    `yaml:"class"`
	Params yaml.Node `yaml:"params"`
}

// LoadDefinitions parses a YAML registry document of the form
//
//	effects:
//	  Name:
//	    class: Kind
//	    params:
//	      param: {default: 0, min: -1, max: 1}
//
// Effect and parameter order follow the document.
func LoadDefinitions(r io.Reader) (*Definitions, error) {
	var doc struct {
		Effects yaml.Node `yaml:"effects"`
	}

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return NewDefinitions()
		}

		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	if doc.Effects.Kind == 0 {
		return NewDefinitions()
	}

	if doc.Effects.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: effects must be a mapping", ErrInvalidDefinition, doc.Effects.Line)
	}

	defs := make([]Definition, 0, len(doc.Effects.Content)/2)

	for i := 0; i+1 < len(doc.Effects.Content); i += 2 {
		key, body := doc.Effects.Content[i], doc.Effects.Content[i+1]

		var ed effectDoc
		if err := body.Decode(&ed); err != nil {
			return nil, fmt.Errorf("%w: effect %q: %v", ErrInvalidDefinition, key.Value, err)
		}

		params, err := decodeParams(key.Value, &ed.Params)
		if err != nil {
			return nil, err
		}

		defs = append(defs, Definition{Name: key.Value, Class: ed.Class, Params: params})
	}

	return NewDefinitions(defs...)
}

func decodeParams(effect string, node *yaml.Node) ([]ParamSpec, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("%w: effect %q: params must be a mapping", ErrInvalidDefinition, effect)
	}

	params := make([]ParamSpec, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value

		var pd paramDoc
		if err := node.Content[i+1].Decode(&pd); err != nil {
			return nil, fmt.Errorf("%w: effect %q param %q: %v", ErrInvalidDefinition, effect, name, err)
		}

		if pd.Default == nil {
			return nil, fmt.Errorf("%w: effect %q param %q has no default", ErrInvalidDefinition, effect, name)
		}

		params = append(params, ParamSpec{Name: name, Default: *pd.Default, Min: pd.Min, Max: pd.Max})
	}

	return params, nil
}

func (d *Definitions) add(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("%w: empty effect name", ErrInvalidDefinition)
	}

	if _, exists := d.byName[def.Name]; exists {
		return fmt.Errorf("%w: duplicate effect %q", ErrInvalidDefinition, def.Name)
	}

	seen := make(map[string]struct{}, len(def.Params))

	for _, p := range def.Params {
		if p.Name == "" {
			return fmt.Errorf("%w: effect %q has an unnamed param", ErrInvalidDefinition, def.Name)
		}

		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: effect %q declares %q twice", ErrInvalidDefinition, def.Name, p.Name)
		}

		seen[p.Name] = struct{}{}

		if math.IsNaN(p.Default) || math.IsInf(p.Default, 0) {
			return fmt.Errorf("%w: effect %q param %q default is not finite", ErrInvalidDefinition, def.Name, p.Name)
		}

		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			return fmt.Errorf("%w: effect %q param %q min %g > max %g",
				ErrInvalidDefinition, def.Name, p.Name, *p.Min, *p.Max)
		}
	}

	d.order = append(d.order, def.Name)
	d.byName[def.Name] = def

	return nil
}

// Len returns the number of definitions.
func (d *Definitions) Len() int { return len(d.order) }

// Names returns effect names in registry order.
func (d *Definitions) Names() []string {
	return append([]string(nil), d.order...)
}

// Lookup returns a copy of the named definition.
func (d *Definitions) Lookup(name string) (Definition, bool) {
	def, ok := d.byName[name]
	if !ok {
		return Definition{}, false
	}

	return def.clone(), true
}

// All returns a deep copy of every definition keyed by name. Mutating the
// result does not affect the registry.
func (d *Definitions) All() map[string]Definition {
	out := make(map[string]Definition, len(d.byName))
	for name, def := range d.byName {
		out[name] = def.clone()
	}

	return out
}

// Ordered returns deep copies of every definition in registry order.
func (d *Definitions) Ordered() []Definition {
	out := make([]Definition, len(d.order))
	for i, name := range d.order {
		out[i] = d.byName[name].clone()
	}

	return out
}
