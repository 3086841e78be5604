package gofactory

import (
	"context"
	"sort"
)

// DirectiveKind identifies a directive variant.
type DirectiveKind uint8

const (
	DirectiveFixed DirectiveKind = iota + 1
	DirectiveUse
	DirectiveRequire
	DirectiveIgnore
	DirectivePostGenerated
	DirectiveSubFactory
)

func (k DirectiveKind) String() string {
	switch k {
	case DirectiveFixed:
		return "Fixed"
	case DirectiveUse:
		return "Use"
	case DirectiveRequire:
		return "Require"
	case DirectiveIgnore:
		return "Ignore"
	case DirectivePostGenerated:
		return "PostGenerated"
	case DirectiveSubFactory:
		return "SubFactory"
	default:
		return "Unknown"
	}
}

// Kwargs are named arguments bound to a directive function.
type Kwargs map[string]any

// UseFunc computes a field value from its bound and build-time arguments.
type UseFunc func(ctx context.Context, kw Kwargs) (any, error)

// PostGenFunc computes a field value after every immediate field is resolved.
// values is a read-only view of the build context.
type PostGenFunc func(ctx context.Context, field string, values Values, kw Kwargs) (any, error)

// Directive overrides synthesis for one field. The set is closed: construct
// directives with Fixed, Use, SubFactory, Require, Ignore and PostGenerated.
type Directive interface {
	Kind() DirectiveKind
	isDirective()
}

type fixedDirective struct{ value any }

type useDirective struct {
	fn     UseFunc
	kwargs Kwargs
}

type requireDirective struct{}

type ignoreDirective struct{}

type postGenDirective struct {
	fn     PostGenFunc
	kwargs Kwargs
}

type subFactoryDirective struct {
	sub    *Factory
	kwargs Kwargs
}

func (fixedDirective) Kind() DirectiveKind      { return DirectiveFixed }
func (useDirective) Kind() DirectiveKind        { return DirectiveUse }
func (requireDirective) Kind() DirectiveKind    { return DirectiveRequire }
func (ignoreDirective) Kind() DirectiveKind     { return DirectiveIgnore }
func (postGenDirective) Kind() DirectiveKind    { return DirectivePostGenerated }
func (subFactoryDirective) Kind() DirectiveKind { return DirectiveSubFactory }

func (fixedDirective) isDirective()      {}
func (useDirective) isDirective()        {}
func (requireDirective) isDirective()    {}
func (ignoreDirective) isDirective()     {}
func (postGenDirective) isDirective()    {}
func (subFactoryDirective) isDirective() {}

// Fixed always yields v. The value is shared between builds, not copied.
func Fixed(v any) Directive { return fixedDirective{value: v} }

// Use invokes fn with kw (merged with build-time call arguments) on every build.
// It panics if fn is nil.
func Use(fn UseFunc, kw Kwargs) Directive {
	if fn == nil {
		panic("gofactory: Use requires a non-nil function")
	}
	return useDirective{fn: fn, kwargs: cloneKwargs(kw)}
}

// UseValue is Use for argument-free producers.
func UseValue(fn func() any) Directive {
	if fn == nil {
		panic("gofactory: UseValue requires a non-nil function")
	}
	return Use(func(context.Context, Kwargs) (any, error) { return fn(), nil }, nil)
}

// SubFactory builds the field with another factory. kw (merged with build-time call
// arguments) become overrides of the sub-build. The sub-build draws from the Random
// of the enclosing build, not from f's own.
func SubFactory(f *Factory, kw Kwargs) Directive {
	if f == nil {
		panic("gofactory: SubFactory requires a non-nil factory")
	}
	return subFactoryDirective{sub: f, kwargs: cloneKwargs(kw)}
}

// Require marks a field that the caller must supply at build time.
func Require() Directive { return requireDirective{} }

// Ignore yields the empty value of the field type.
func Ignore() Directive { return ignoreDirective{} }

// PostGenerated defers the field until all immediate fields are resolved and
// computes it with fn. It panics if fn is nil.
func PostGenerated(fn PostGenFunc, kw Kwargs) Directive {
	if fn == nil {
		panic("gofactory: PostGenerated requires a non-nil function")
	}
	return postGenDirective{fn: fn, kwargs: cloneKwargs(kw)}
}

func cloneKwargs(kw Kwargs) Kwargs {
	if len(kw) == 0 {
		return nil
	}
	out := make(Kwargs, len(kw))
	for k, v := range kw {
		out[k] = v
	}
	return out
}

// mergeKwargs joins bound and call-time kwargs. Keys present in both are returned
// sorted as collisions.
func mergeKwargs(bound, call Kwargs) (Kwargs, []string) {
	out := make(Kwargs, len(bound)+len(call))
	for k, v := range bound {
		out[k] = v
	}
	var collisions []string
	for k, v := range call {
		if _, dup := bound[k]; dup {
			collisions = append(collisions, k)
			continue
		}
		out[k] = v
	}
	sort.Strings(collisions)
	return out, collisions
}
