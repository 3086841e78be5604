package dsl

import "github.com/reoring/gofactory"

// Optional is absent (nil) or a value of t.
func Optional(t gofactory.Type) *gofactory.OptionalType { return gofactory.Optional(t) }

// Nullable is an alias of Optional.
func Nullable(t gofactory.Type) *gofactory.OptionalType { return gofactory.Optional(t) }

func Union(members ...gofactory.Type) *gofactory.UnionType { return gofactory.Union(members...) }
func List(elem gofactory.Type) *gofactory.ListType         { return gofactory.List(elem) }
func Set(elem gofactory.Type) *gofactory.SetType           { return gofactory.Set(elem) }
func Map(key, val gofactory.Type) *gofactory.MapType       { return gofactory.Map(key, val) }
func Tuple(elems ...gofactory.Type) *gofactory.TupleType   { return gofactory.Tuple(elems...) }
func VarTuple(elem gofactory.Type) *gofactory.VarTupleType { return gofactory.VarTuple(elem) }

// Dict is a map keyed by random strings.
func Dict(val gofactory.Type) *gofactory.MapType { return gofactory.Map(String(), val) }

func Nested(m *gofactory.Model) *gofactory.NestedType { return gofactory.Nested(m) }

// Ref refers to a model by name. The model must be reachable from the factory's
// root model or registered with gofactory.WithModels.
func Ref(name string) *gofactory.NestedType { return gofactory.Ref(name) }

// Enum picks one of the literal values.
func Enum(values ...any) *gofactory.EnumType { return gofactory.Enum(values...) }

// EnumOf is Enum for a typed value list.
func EnumOf[T any](values ...T) *gofactory.EnumType {
	members := make([]any, len(values))
	for i, v := range values {
		members[i] = v
	}
	return gofactory.Enum(members...)
}

// Literal always yields v; it is an Enum with a single member.
func Literal(v any) *gofactory.EnumType { return gofactory.Enum(v) }
