package jsonschema

import (
	"fmt"

	"github.com/reoring/gofactory"
)

// Draft is the dialect written to $schema.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// FromModel exports m as a JSON Schema document. Nested models become $defs
// entries referenced with $ref; a reference back to m itself is "#". extra
// registers models that Ref descriptors of m name.
func FromModel(m *gofactory.Model, extra ...*gofactory.Model) (*Schema, error) {
	cat, err := gofactory.NewCatalog(append([]*gofactory.Model{m}, extra...)...)
	if err != nil {
		return nil, err
	}
	x := &exporter{cat: cat, root: m.Name(), defs: map[string]*Schema{}}
	s, err := x.object(m)
	if err != nil {
		return nil, err
	}
	s.Schema = Draft
	s.Title = m.Name()
	if len(x.defs) > 0 {
		s.Defs = x.defs
	}
	return s, nil
}

type exporter struct {
	cat  *gofactory.Catalog
	root string
	defs map[string]*Schema
}

func (x *exporter) object(m *gofactory.Model) (*Schema, error) {
	s := &Schema{Type: "object", Properties: map[string]*Schema{}}
	for _, f := range m.Fields() {
		var ps *Schema
		if f.Type == nil {
			ps = &Schema{}
		} else {
			var err error
			if ps, err = x.schema(f.Type); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", m.Name(), f.Name, err)
			}
		}
		if f.HasDefault {
			ps.Default = f.Default
		}
		s.Properties[f.Name] = ps
		if _, optional := f.Type.(*gofactory.OptionalType); !optional {
			s.Required = append(s.Required, f.Name)
		}
	}
	return s, nil
}

func (x *exporter) schema(t gofactory.Type) (*Schema, error) {
	switch tt := t.(type) {
	case *gofactory.ScalarType:
		return scalar(tt), nil
	case *gofactory.OptionalType:
		inner, err := x.schema(tt.Inner())
		if err != nil {
			return nil, err
		}
		return &Schema{OneOf: []*Schema{inner, {Type: "null"}}}, nil
	case *gofactory.UnionType:
		s := &Schema{}
		for _, m := range tt.Members() {
			ms, err := x.schema(m)
			if err != nil {
				return nil, err
			}
			s.OneOf = append(s.OneOf, ms)
		}
		return s, nil
	case *gofactory.ListType:
		return x.array(tt.Elem(), false, sized(tt.SizeBounds()))
	case *gofactory.SetType:
		return x.array(tt.Elem(), true, sized(tt.SizeBounds()))
	case *gofactory.VarTupleType:
		return x.array(tt.Elem(), false, sized(tt.SizeBounds()))
	case *gofactory.TupleType:
		s := &Schema{Type: "array"}
		for _, e := range tt.Elems() {
			es, err := x.schema(e)
			if err != nil {
				return nil, err
			}
			s.PrefixItems = append(s.PrefixItems, es)
		}
		n := len(s.PrefixItems)
		s.MinItems, s.MaxItems = &n, &n
		return s, nil
	case *gofactory.MapType:
		val, err := x.schema(tt.Value())
		if err != nil {
			return nil, err
		}
		s := &Schema{Type: "object", AdditionalProperties: val}
		if ks, ok := tt.Key().(*gofactory.ScalarType); !ok || ks.Kind() != gofactory.KindString {
			if s.PropertyNames, err = x.schema(tt.Key()); err != nil {
				return nil, err
			}
		}
		return s, nil
	case *gofactory.NestedType:
		return x.ref(tt.Name())
	case *gofactory.EnumType:
		members := tt.Members()
		if len(members) == 1 {
			if members[0] == nil {
				return &Schema{Type: "null"}, nil
			}
			return &Schema{Const: members[0]}, nil
		}
		return &Schema{Enum: members}, nil
	}
	return nil, fmt.Errorf("jsonschema: unsupported type %v", t)
}

// ref emits a $ref to name, exporting the model into $defs on first use.
func (x *exporter) ref(name string) (*Schema, error) {
	if name == x.root {
		return &Schema{Ref: "#"}, nil
	}
	if _, ok := x.defs[name]; !ok {
		m, ok := x.cat.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("jsonschema: unknown model %q", name)
		}
		x.defs[name] = &Schema{} // placeholder for recursive references
		s, err := x.object(m)
		if err != nil {
			return nil, err
		}
		s.Title = name
		x.defs[name] = s
	}
	return &Schema{Ref: "#/$defs/" + name}, nil
}

func (x *exporter) array(elem gofactory.Type, unique bool, bounds []int) (*Schema, error) {
	es, err := x.schema(elem)
	if err != nil {
		return nil, err
	}
	s := &Schema{Type: "array", Items: es, UniqueItems: unique}
	if bounds != nil {
		s.MinItems, s.MaxItems = &bounds[0], &bounds[1]
	}
	return s, nil
}

func sized(min, max int, ok bool) []int {
	if !ok {
		return nil
	}
	return []int{min, max}
}

func scalar(st *gofactory.ScalarType) *Schema {
	var s *Schema
	switch st.Kind() {
	case gofactory.KindString:
		s = &Schema{Type: "string"}
	case gofactory.KindInt:
		s = &Schema{Type: "integer"}
	case gofactory.KindInt64:
		s = &Schema{Type: "integer", Format: "int64"}
	case gofactory.KindUint:
		zero := 0.0
		s = &Schema{Type: "integer", Minimum: &zero}
	case gofactory.KindFloat:
		s = &Schema{Type: "number"}
	case gofactory.KindBool:
		s = &Schema{Type: "boolean"}
	case gofactory.KindBytes:
		s = &Schema{Type: "string", Format: "byte"}
	case gofactory.KindTime:
		s = &Schema{Type: "string", Format: "date-time"}
	case gofactory.KindDate:
		s = &Schema{Type: "string", Format: "date"}
	case gofactory.KindDuration:
		s = &Schema{Type: "string", Format: "duration"}
	case gofactory.KindUUID:
		s = &Schema{Type: "string", Format: "uuid"}
	case gofactory.KindEmail:
		s = &Schema{Type: "string", Format: "email"}
	case gofactory.KindURL:
		s = &Schema{Type: "string", Format: "uri"}
	case gofactory.KindIP:
		s = &Schema{Type: "string", Format: "ipv4"}
	case gofactory.KindDecimal:
		s = &Schema{Type: "string", Format: "decimal"}
	case gofactory.KindAny:
		s = &Schema{}
	default:
		return &Schema{Kind: string(st.Kind())}
	}
	c := st.Constraints()
	if c.Min != nil {
		v := *c.Min
		s.Minimum = &v
	}
	if c.Max != nil {
		v := *c.Max
		s.Maximum = &v
	}
	if c.MinLen != nil {
		v := *c.MinLen
		s.MinLength = &v
	}
	if c.MaxLen != nil {
		v := *c.MaxLen
		s.MaxLength = &v
	}
	return s
}
