package gofactory

import (
	"fmt"
	"math"
)

// Field is one named slot of a Model. Type may be nil only when a Directive
// supplies the value.
type Field struct {
	Name       string
	Type       Type
	Directive  Directive
	Default    any
	HasDefault bool
}

// NewField returns a plain field of type t.
func NewField(name string, t Type) Field { return Field{Name: name, Type: t} }

// With returns a copy of f carrying directive d.
func (f Field) With(d Directive) Field {
	f.Directive = d
	return f
}

// WithDefault returns a copy of f with a declared default, used when
// Config.UseDefaults is on.
func (f Field) WithDefault(v any) Field {
	f.Default, f.HasDefault = v, true
	return f
}

// Model is a named, ordered collection of fields. It is immutable once built.
type Model struct {
	name   string
	fields []Field
	index  map[string]int
}

// NewModel validates and freezes a model. Field names must be unique and non-empty.
func NewModel(name string, fields ...Field) (*Model, error) {
	if name == "" {
		return nil, &DescriptorError{Path: "/", Reason: "model name is empty"}
	}
	m := &Model{name: name, fields: make([]Field, 0, len(fields)), index: make(map[string]int, len(fields))}
	at := RootPath().Field(name)
	for _, f := range fields {
		if f.Name == "" {
			return nil, &DescriptorError{Path: at.Pointer(), Reason: "field name is empty"}
		}
		if _, dup := m.index[f.Name]; dup {
			return nil, &DescriptorError{Path: at.Field(f.Name).Pointer(), Reason: fmt.Sprintf("duplicate field %q", f.Name)}
		}
		if f.Type == nil && f.Directive == nil {
			return nil, &DescriptorError{Path: at.Field(f.Name).Pointer(), Reason: "field has neither a type nor a directive"}
		}
		m.index[f.Name] = len(m.fields)
		m.fields = append(m.fields, f)
	}
	return m, nil
}

// MustModel is NewModel that panics on error.
func MustModel(name string, fields ...Field) *Model {
	m, err := NewModel(name, fields...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Model) Name() string { return m.name }
func (m *Model) Len() int     { return len(m.fields) }

// Fields returns the fields in declaration order.
func (m *Model) Fields() []Field { return append([]Field(nil), m.fields...) }

// Field looks a field up by name.
func (m *Model) Field(name string) (Field, bool) {
	i, ok := m.index[name]
	if !ok {
		return Field{}, false
	}
	return m.fields[i], true
}

// Catalog maps model names to models. It is the arena through which Ref types
// resolve, so cyclic model graphs need no pointer cycles.
type Catalog struct {
	models map[string]*Model
	order  []string
}

// NewCatalog registers the given models and every model reachable from them
// through Nested types, then validates all field types. Ref names must resolve and
// two distinct models may not share a name.
func NewCatalog(models ...*Model) (*Catalog, error) {
	c := &Catalog{models: map[string]*Model{}}
	for _, m := range models {
		if err := c.collect(m); err != nil {
			return nil, err
		}
	}
	for _, name := range c.order {
		m := c.models[name]
		at := RootPath().Field(name)
		for _, f := range m.fields {
			if f.Type == nil {
				continue
			}
			if err := c.validate(f.Type, at.Field(f.Name)); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (c *Catalog) collect(m *Model) error {
	if m == nil {
		return &DescriptorError{Path: "/", Reason: "nil model"}
	}
	if prev, ok := c.models[m.name]; ok {
		if prev != m {
			return &DescriptorError{Path: RootPath().Field(m.name).Pointer(), Reason: fmt.Sprintf("two different models named %q", m.name)}
		}
		return nil
	}
	c.models[m.name] = m
	c.order = append(c.order, m.name)
	for _, f := range m.fields {
		if err := c.collectType(f.Type); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) collectType(t Type) error {
	switch t := t.(type) {
	case *NestedType:
		if t.model != nil {
			return c.collect(t.model)
		}
	case *OptionalType:
		return c.collectType(t.inner)
	case *UnionType:
		for _, m := range t.members {
			if err := c.collectType(m); err != nil {
				return err
			}
		}
	case *ListType:
		return c.collectType(t.elem)
	case *SetType:
		return c.collectType(t.elem)
	case *VarTupleType:
		return c.collectType(t.elem)
	case *MapType:
		if err := c.collectType(t.key); err != nil {
			return err
		}
		return c.collectType(t.val)
	case *TupleType:
		for _, e := range t.elems {
			if err := c.collectType(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Catalog) validate(t Type, at PathRef) error {
	bad := func(format string, args ...any) error {
		return &DescriptorError{Path: at.Pointer(), Reason: fmt.Sprintf(format, args...)}
	}
	checkSize := func(min, max int, ok bool) error {
		if ok && (min < 0 || max < min) {
			return bad("invalid size range [%d, %d]", min, max)
		}
		return nil
	}
	switch t := t.(type) {
	case nil:
		return bad("nil type")
	case *ScalarType:
		if t.kind == "" {
			return bad("scalar without kind")
		}
		if t.c.Min != nil && t.c.Max != nil && (*t.c.Min > *t.c.Max || math.IsNaN(*t.c.Min) || math.IsNaN(*t.c.Max)) {
			return bad("invalid bounds [%v, %v] for %s", *t.c.Min, *t.c.Max, t.kind)
		}
		if (t.c.MinLen != nil && *t.c.MinLen < 0) || (t.c.MinLen != nil && t.c.MaxLen != nil && *t.c.MinLen > *t.c.MaxLen) {
			return bad("invalid length range for %s", t.kind)
		}
	case *OptionalType:
		return c.validate(t.inner, at)
	case *UnionType:
		if len(t.members) == 0 {
			return bad("union without members")
		}
		for _, m := range t.members {
			if err := c.validate(m, at); err != nil {
				return err
			}
		}
	case *ListType:
		if err := checkSize(t.size.get()); err != nil {
			return err
		}
		return c.validate(t.elem, at.Index(0))
	case *SetType:
		if err := checkSize(t.size.get()); err != nil {
			return err
		}
		if t.elem != nil && !hashable(t.elem) {
			return bad("set element type %s is not hashable", t.elem)
		}
		return c.validate(t.elem, at.Index(0))
	case *VarTupleType:
		if err := checkSize(t.size.get()); err != nil {
			return err
		}
		return c.validate(t.elem, at.Index(0))
	case *MapType:
		if err := checkSize(t.size.get()); err != nil {
			return err
		}
		if t.key != nil && !hashable(t.key) {
			return bad("map key type %s is not hashable", t.key)
		}
		if err := c.validate(t.key, at); err != nil {
			return err
		}
		return c.validate(t.val, at)
	case *TupleType:
		if len(t.elems) == 0 {
			return bad("tuple without elements")
		}
		for i, e := range t.elems {
			if err := c.validate(e, at.Index(i)); err != nil {
				return err
			}
		}
	case *NestedType:
		if t.name == "" {
			return bad("nested type without model")
		}
		if _, ok := c.models[t.name]; !ok {
			return bad("unresolved model reference %q", t.name)
		}
	case *EnumType:
		if len(t.members) == 0 {
			return bad("enum without members")
		}
	}
	// Other Type implementations are left to the resolver, which reports them as
	// unresolvable when a value is actually needed.
	return nil
}

// Lookup returns the model registered under name.
func (c *Catalog) Lookup(name string) (*Model, bool) {
	m, ok := c.models[name]
	return m, ok
}

// Names lists registered model names in registration order.
func (c *Catalog) Names() []string { return append([]string(nil), c.order...) }

func (c *Catalog) Len() int { return len(c.order) }
