package gofactory

import (
	"fmt"
	"strings"
)

// TypeTag identifies a variant of the closed type-descriptor set.
type TypeTag uint8

const (
	TagScalar TypeTag = iota + 1
	TagOptional
	TagUnion
	TagList
	TagSet
	TagMap
	TagTuple
	TagVarTuple
	TagNested
	TagEnum
)

func (t TypeTag) String() string {
	switch t {
	case TagScalar:
		return "scalar"
	case TagOptional:
		return "optional"
	case TagUnion:
		return "union"
	case TagList:
		return "list"
	case TagSet:
		return "set"
	case TagMap:
		return "map"
	case TagTuple:
		return "tuple"
	case TagVarTuple:
		return "vartuple"
	case TagNested:
		return "nested"
	case TagEnum:
		return "enum"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Type describes the shape of a field value. Descriptors are immutable: constraint
// methods return modified copies.
type Type interface {
	Tag() TypeTag
	String() string
}

// Constraints narrows the values a scalar generator may produce. Nil bounds fall back
// to the generator's defaults. Min/Max bound numbers (and Unix seconds for time kinds,
// seconds for durations); MinLen/MaxLen bound strings and bytes.
type Constraints struct {
	Min    *float64
	Max    *float64
	MinLen *int
	MaxLen *int
}

// ScalarType is a leaf value of a given Kind.
type ScalarType struct {
	kind Kind
	c    Constraints
}

// Scalar returns the descriptor for kind k.
func Scalar(k Kind) *ScalarType { return &ScalarType{kind: k} }

func (s *ScalarType) Tag() TypeTag             { return TagScalar }
func (s *ScalarType) Kind() Kind               { return s.kind }
func (s *ScalarType) Constraints() Constraints { return s.c }
func (s *ScalarType) String() string           { return string(s.kind) }

func (s *ScalarType) with(c Constraints) *ScalarType { return &ScalarType{kind: s.kind, c: c} }

// Between bounds numeric output to [min, max].
func (s *ScalarType) Between(min, max float64) *ScalarType {
	c := s.c
	c.Min, c.Max = &min, &max
	return s.with(c)
}

// AtLeast sets the lower numeric bound.
func (s *ScalarType) AtLeast(min float64) *ScalarType {
	c := s.c
	c.Min = &min
	return s.with(c)
}

// AtMost sets the upper numeric bound.
func (s *ScalarType) AtMost(max float64) *ScalarType {
	c := s.c
	c.Max = &max
	return s.with(c)
}

// Length bounds string and byte output to [min, max] characters.
func (s *ScalarType) Length(min, max int) *ScalarType {
	c := s.c
	c.MinLen, c.MaxLen = &min, &max
	return s.with(c)
}

// OptionalType is either absent (nil) or a value of Inner.
type OptionalType struct{ inner Type }

func Optional(inner Type) *OptionalType { return &OptionalType{inner: inner} }

func (o *OptionalType) Tag() TypeTag   { return TagOptional }
func (o *OptionalType) Inner() Type    { return o.inner }
func (o *OptionalType) String() string { return "Optional[" + typeString(o.inner) + "]" }

// UnionType is a value of exactly one of its members.
type UnionType struct{ members []Type }

func Union(members ...Type) *UnionType {
	return &UnionType{members: append([]Type(nil), members...)}
}

func (u *UnionType) Tag() TypeTag    { return TagUnion }
func (u *UnionType) Members() []Type { return append([]Type(nil), u.members...) }
func (u *UnionType) String() string  { return "Union[" + joinTypes(u.members) + "]" }

// sizeBounds is shared by the variable-size containers. ok=false means the factory
// collection size applies.
type sizeBounds struct {
	min, max int
	ok       bool
}

func (b sizeBounds) get() (int, int, bool) { return b.min, b.max, b.ok }

// ListType is an ordered sequence of Elem values.
type ListType struct {
	elem Type
	size sizeBounds
}

func List(elem Type) *ListType { return &ListType{elem: elem} }

func (l *ListType) Tag() TypeTag                 { return TagList }
func (l *ListType) Elem() Type                   { return l.elem }
func (l *ListType) SizeBounds() (int, int, bool) { return l.size.get() }
func (l *ListType) String() string               { return "List[" + typeString(l.elem) + "]" }

// Size fixes the element count range for this list.
// When the element type would re-enter a model already at the recursion bound,
// the collection is produced empty regardless of min.
func (l *ListType) Size(min, max int) *ListType {
	return &ListType{elem: l.elem, size: sizeBounds{min: min, max: max, ok: true}}
}

// SetType is a collection of distinct Elem values.
type SetType struct {
	elem Type
	size sizeBounds
}

func Set(elem Type) *SetType { return &SetType{elem: elem} }

func (s *SetType) Tag() TypeTag                 { return TagSet }
func (s *SetType) Elem() Type                   { return s.elem }
func (s *SetType) SizeBounds() (int, int, bool) { return s.size.get() }
func (s *SetType) String() string               { return "Set[" + typeString(s.elem) + "]" }

// Size fixes the element count range; like ListType.Size, the minimum does not
// hold at the recursion bound.
func (s *SetType) Size(min, max int) *SetType {
	return &SetType{elem: s.elem, size: sizeBounds{min: min, max: max, ok: true}}
}

// MapType is a mapping with distinct keys.
type MapType struct {
	key, val Type
	size     sizeBounds
}

func Map(key, val Type) *MapType { return &MapType{key: key, val: val} }

func (m *MapType) Tag() TypeTag                 { return TagMap }
func (m *MapType) Key() Type                    { return m.key }
func (m *MapType) Value() Type                  { return m.val }
func (m *MapType) SizeBounds() (int, int, bool) { return m.size.get() }
func (m *MapType) String() string {
	return "Map[" + typeString(m.key) + ", " + typeString(m.val) + "]"
}

// Size fixes the entry count range; like ListType.Size, the minimum does not hold
// at the recursion bound.
func (m *MapType) Size(min, max int) *MapType {
	return &MapType{key: m.key, val: m.val, size: sizeBounds{min: min, max: max, ok: true}}
}

// TupleType is a fixed-arity sequence; element i has type Elems()[i].
type TupleType struct{ elems []Type }

func Tuple(elems ...Type) *TupleType {
	return &TupleType{elems: append([]Type(nil), elems...)}
}

func (t *TupleType) Tag() TypeTag   { return TagTuple }
func (t *TupleType) Elems() []Type  { return append([]Type(nil), t.elems...) }
func (t *TupleType) String() string { return "Tuple[" + joinTypes(t.elems) + "]" }

// VarTupleType is a homogeneous tuple of variable length.
type VarTupleType struct {
	elem Type
	size sizeBounds
}

func VarTuple(elem Type) *VarTupleType { return &VarTupleType{elem: elem} }

func (v *VarTupleType) Tag() TypeTag                 { return TagVarTuple }
func (v *VarTupleType) Elem() Type                   { return v.elem }
func (v *VarTupleType) SizeBounds() (int, int, bool) { return v.size.get() }
func (v *VarTupleType) String() string               { return "Tuple[" + typeString(v.elem) + ", ...]" }

// Size fixes the length range; like ListType.Size, the minimum does not hold at the
// recursion bound.
func (v *VarTupleType) Size(min, max int) *VarTupleType {
	return &VarTupleType{elem: v.elem, size: sizeBounds{min: min, max: max, ok: true}}
}

// NestedType embeds another model. It holds either the model itself (Nested) or only
// its name (Ref), resolved through the factory Catalog; Ref is what makes
// self-referential and mutually recursive models expressible.
type NestedType struct {
	name  string
	model *Model
}

func Nested(m *Model) *NestedType {
	if m == nil {
		return &NestedType{}
	}
	return &NestedType{name: m.name, model: m}
}

func Ref(name string) *NestedType { return &NestedType{name: name} }

func (n *NestedType) Tag() TypeTag { return TagNested }
func (n *NestedType) Name() string { return n.name }
func (n *NestedType) Model() *Model  { return n.model } // nil for Ref
func (n *NestedType) String() string { return n.name }

// EnumType is one of a finite set of literal values.
type EnumType struct{ members []any }

func Enum(members ...any) *EnumType {
	return &EnumType{members: append([]any(nil), members...)}
}

func (e *EnumType) Tag() TypeTag   { return TagEnum }
func (e *EnumType) Members() []any { return append([]any(nil), e.members...) }
func (e *EnumType) String() string {
	parts := make([]string, len(e.members))
	for i, m := range e.members {
		parts[i] = fmt.Sprint(m)
	}
	return "Enum[" + strings.Join(parts, ", ") + "]"
}

func typeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = typeString(t)
	}
	return strings.Join(parts, ", ")
}

// hashable reports whether values of t can serve as set elements or mapping keys.
func hashable(t Type) bool {
	switch t := t.(type) {
	case *ScalarType:
		return t.kind != KindBytes && t.kind != KindIP
	case *EnumType:
		return true
	case *OptionalType:
		return hashable(t.inner)
	case *UnionType:
		for _, m := range t.members {
			if !hashable(m) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// textKeyed reports whether a mapping keyed by t is emitted as map[string]any.
func textKeyed(t Type) bool {
	switch t := t.(type) {
	case *ScalarType:
		return textKinds[t.kind]
	case *EnumType:
		for _, m := range t.members {
			if _, ok := m.(string); !ok {
				return false
			}
		}
		return len(t.members) > 0
	default:
		return false
	}
}
