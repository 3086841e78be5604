package gofactory

// strategy synthesizes one value of a descriptor at path at.
type strategy func(s *synth, t Type, at PathRef) (any, error)

// resolver maps each descriptor to the strategy that synthesizes it: a table keyed
// by TypeTag for composite types and the generator registry for scalars.
type resolver struct {
	table      map[TypeTag]strategy
	generators Generators
}

func newResolver(gens Generators) *resolver {
	return &resolver{
		generators: gens,
		table: map[TypeTag]strategy{
			TagScalar:   (*synth).scalar,
			TagOptional: (*synth).optional,
			TagUnion:    (*synth).union,
			TagList:     (*synth).list,
			TagSet:      (*synth).set,
			TagMap:      (*synth).mapping,
			TagTuple:    (*synth).tuple,
			TagVarTuple: (*synth).varTuple,
			TagNested:   (*synth).nested,
			TagEnum:     (*synth).enum,
		},
	}
}

// classify returns the strategy for t. field names the model field being
// synthesized and is reported when t cannot be resolved.
func (r *resolver) classify(t Type, at PathRef, field string) (strategy, error) {
	unresolvable := &UnresolvableTypeError{Path: at.Pointer(), Field: field, Type: typeString(t)}
	switch t.(type) {
	case *ScalarType, *OptionalType, *UnionType, *ListType, *SetType, *MapType,
		*TupleType, *VarTupleType, *NestedType, *EnumType:
	default:
		return nil, unresolvable
	}
	st, ok := r.table[t.Tag()]
	if !ok {
		return nil, unresolvable
	}
	if sc, ok := t.(*ScalarType); ok {
		if _, ok := r.generators.Lookup(sc.kind); !ok {
			return nil, unresolvable
		}
	}
	return st, nil
}
