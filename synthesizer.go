package gofactory

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
)

// synth holds the state of one build: the Random in use, the per-model occurrence
// count on the current nesting path and the model field being synthesized.
type synth struct {
	ctx   context.Context
	f     *Factory
	rnd   *Random
	depth map[string]int
	field string
}

func (s *synth) value(t Type, at PathRef) (any, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	st, err := s.f.resolver.classify(t, at, s.field)
	if err != nil {
		return nil, err
	}
	return st(s, t, at)
}

// blocked reports whether producing a value of t now would re-enter a model that
// already reached the depth limit.
func (s *synth) blocked(t Type) bool {
	switch t := t.(type) {
	case *NestedType:
		return s.depth[t.name] >= s.f.cfg.MaxDepth
	case *TupleType:
		for _, e := range t.elems {
			if s.blocked(e) {
				return true
			}
		}
	case *UnionType:
		for _, m := range t.members {
			if !s.blocked(m) {
				return false
			}
		}
		return len(t.members) > 0
	}
	return false
}

func (s *synth) bottomOut(t Type, at PathRef) {
	s.f.log.Debug("recursion bound reached", zap.String("path", at.Pointer()), zap.String("type", typeString(t)))
}

func (s *synth) size(min, max int, ok bool) (int, int, int) {
	if !ok {
		min, max = s.f.cfg.MinItems, s.f.cfg.MaxItems
	}
	return s.rnd.IntBetween(min, max), min, max
}

func (s *synth) scalar(t Type, at PathRef) (any, error) {
	sc := t.(*ScalarType)
	gen, _ := s.f.resolver.generators.Lookup(sc.kind)
	v, err := gen(s.rnd, sc.c)
	if err != nil {
		return nil, &DescriptorError{Path: at.Pointer(), Reason: fmt.Sprintf("%s generator: %v", sc.kind, err), Cause: err}
	}
	return v, nil
}

func (s *synth) optional(t Type, at PathRef) (any, error) {
	o := t.(*OptionalType)
	if s.blocked(o.inner) {
		s.bottomOut(t, at)
		return nil, nil
	}
	if s.rnd.Float64() >= s.f.cfg.OptionalProbability {
		return nil, nil
	}
	return s.value(o.inner, at)
}

func (s *synth) union(t Type, at PathRef) (any, error) {
	u := t.(*UnionType)
	candidates := make([]Type, 0, len(u.members))
	for _, m := range u.members {
		if !s.blocked(m) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		// every member recurses; the nested strategy reports the limit
		candidates = u.members
	} else if len(candidates) < len(u.members) {
		s.bottomOut(t, at)
	}
	i := s.f.cfg.union(s.rnd, candidates)
	if i < 0 || i >= len(candidates) {
		i = 0
	}
	return s.value(candidates[i], at)
}

func (s *synth) sequence(elem Type, n int, t Type, at PathRef) ([]any, error) {
	if s.blocked(elem) {
		s.bottomOut(t, at)
		return []any{}, nil
	}
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := s.value(elem, at.Index(i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *synth) list(t Type, at PathRef) (any, error) {
	l := t.(*ListType)
	n, _, _ := s.size(l.size.get())
	return s.sequence(l.elem, n, t, at)
}

func (s *synth) varTuple(t Type, at PathRef) (any, error) {
	v := t.(*VarTupleType)
	n, _, _ := s.size(v.size.get())
	return s.sequence(v.elem, n, t, at)
}

func (s *synth) tuple(t Type, at PathRef) (any, error) {
	tt := t.(*TupleType)
	out := make([]any, len(tt.elems))
	for i, e := range tt.elems {
		v, err := s.value(e, at.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *synth) set(t Type, at PathRef) (any, error) {
	st := t.(*SetType)
	n, min, _ := s.size(st.size.get())
	if s.blocked(st.elem) {
		s.bottomOut(t, at)
		return []any{}, nil
	}
	out := make([]any, 0, n)
	seen := make(map[any]struct{}, n)
	for retries := 0; len(out) < n; {
		v, err := s.value(st.elem, at.Index(len(out)))
		if err != nil {
			return nil, err
		}
		k := uniqueKey(v)
		if _, dup := seen[k]; dup {
			if retries++; retries > s.f.cfg.KeyRetries {
				break
			}
			continue
		}
		retries = 0
		seen[k] = struct{}{}
		out = append(out, v)
	}
	if len(out) < min {
		return nil, &KeyExhaustedError{Path: at.Pointer(), Type: t.String(), Got: len(out), Min: min}
	}
	return out, nil
}

func (s *synth) mapping(t Type, at PathRef) (any, error) {
	mt := t.(*MapType)
	n, min, _ := s.size(mt.size.get())
	text := textKeyed(mt.key)
	if s.blocked(mt.key) || s.blocked(mt.val) {
		s.bottomOut(t, at)
		return emptyValue(t), nil
	}
	keys := make([]any, 0, n)
	seen := make(map[any]struct{}, n)
	for retries := 0; len(keys) < n; {
		k, err := s.value(mt.key, at)
		if err != nil {
			return nil, err
		}
		if !isHashable(k) {
			return nil, &DescriptorError{Path: at.Pointer(), Reason: fmt.Sprintf("map key %T is not hashable", k)}
		}
		if text {
			if _, ok := k.(string); !ok {
				text = false
			}
		}
		if _, dup := seen[k]; dup {
			if retries++; retries > s.f.cfg.KeyRetries {
				break
			}
			continue
		}
		retries = 0
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if len(keys) < min {
		return nil, &KeyExhaustedError{Path: at.Pointer(), Type: t.String(), Got: len(keys), Min: min}
	}
	vals := make([]any, len(keys))
	for i, k := range keys {
		v, err := s.value(mt.val, at.Field(fmt.Sprint(k)))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	if text {
		out := make(map[string]any, len(keys))
		for i, k := range keys {
			out[k.(string)] = vals[i]
		}
		return out, nil
	}
	out := make(map[any]any, len(keys))
	for i, k := range keys {
		out[k] = vals[i]
	}
	return out, nil
}

func (s *synth) nested(t Type, at PathRef) (any, error) {
	n := t.(*NestedType)
	m, ok := s.f.catalog.Lookup(n.name)
	if !ok {
		return nil, &UnresolvableTypeError{Path: at.Pointer(), Field: s.field, Type: n.name}
	}
	return s.enter(m, at, overrides{})
}

// enter builds a nested instance of m, tracking m on the nesting path.
func (s *synth) enter(m *Model, at PathRef, ov overrides) (any, error) {
	if s.depth[m.name] >= s.f.cfg.MaxDepth {
		return nil, &RecursionLimitError{Path: at.Pointer(), Model: m.name, Limit: s.f.cfg.MaxDepth}
	}
	s.depth[m.name]++
	field := s.field
	defer func() {
		s.depth[m.name]--
		s.field = field
	}()
	v, err := s.f.buildModel(s, m, ov, at)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *synth) enum(t Type, _ PathRef) (any, error) {
	e := t.(*EnumType)
	return e.members[s.rnd.Intn(len(e.members))], nil
}

// emptyValue is the value of an Ignore()d field: empty containers, nil otherwise.
func emptyValue(t Type) any {
	switch t := t.(type) {
	case *ListType, *SetType, *VarTupleType:
		return []any{}
	case *MapType:
		if textKeyed(t.key) {
			return map[string]any{}
		}
		return map[any]any{}
	}
	return nil
}

func isHashable(v any) bool {
	rt := reflect.TypeOf(v)
	return rt == nil || rt.Comparable()
}

// uniqueKey maps a synthesized value to a comparable identity used to keep set
// elements distinct.
func uniqueKey(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case []byte:
		return "bytes:" + string(x)
	}
	if isHashable(v) {
		return v
	}
	return fmt.Sprintf("%T:%#v", v, v)
}
