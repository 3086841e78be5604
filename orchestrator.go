package gofactory

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// overrides are the caller-supplied inputs of one model instance.
type overrides struct {
	values   map[string]any
	callArgs map[string]Kwargs
}

// buildModel resolves every field of m. Immediate fields are resolved in declaration
// order; post-generated fields follow, also in declaration order.
func (f *Factory) buildModel(s *synth, m *Model, ov overrides, at PathRef) (map[string]any, error) {
	if err := f.checkOverrides(m, ov, at); err != nil {
		return nil, err
	}
	bc := newBuildContext(m)
	var deferred []int
	for i, fd := range m.fields {
		_, overridden := ov.values[fd.Name]
		if !overridden && fd.Directive != nil && fd.Directive.Kind() == DirectivePostGenerated {
			deferred = append(deferred, i)
			continue
		}
		v, err := f.resolveField(s, fd, ov, at.Field(fd.Name))
		if err != nil {
			return nil, err
		}
		bc.set(fd.Name, v)
	}
	for _, i := range deferred {
		fd := m.fields[i]
		fat := at.Field(fd.Name)
		pg := fd.Directive.(postGenDirective)
		kw, err := f.kwargsFor(fd, pg.kwargs, ov, fat)
		if err != nil {
			return nil, err
		}
		f.log.Debug("apply directive", zap.String("path", fat.Pointer()), zap.Stringer("directive", DirectivePostGenerated))
		v, err := pg.fn(s.ctx, fd.Name, bc.view(i, f.cfg.PostGenVisibility), kw)
		if err != nil {
			return nil, &DirectiveInvocationError{Path: fat.Pointer(), Field: fd.Name, Directive: DirectivePostGenerated, Cause: err}
		}
		bc.set(fd.Name, v)
	}
	return bc.result(), nil
}

// resolveField applies the precedence override > directive > declared default >
// synthesis to an immediate field.
func (f *Factory) resolveField(s *synth, fd Field, ov overrides, at PathRef) (any, error) {
	if v, ok := ov.values[fd.Name]; ok {
		if p, ok := v.(Partial); ok {
			return f.partial(s, fd, p, at)
		}
		return v, nil
	}
	if fd.Directive != nil {
		f.log.Debug("apply directive", zap.String("path", at.Pointer()), zap.Stringer("directive", fd.Directive.Kind()))
	}
	switch d := fd.Directive.(type) {
	case fixedDirective:
		return d.value, nil
	case useDirective:
		kw, err := f.kwargsFor(fd, d.kwargs, ov, at)
		if err != nil {
			return nil, err
		}
		v, err := d.fn(s.ctx, kw)
		if err != nil {
			return nil, &DirectiveInvocationError{Path: at.Pointer(), Field: fd.Name, Directive: DirectiveUse, Cause: err}
		}
		return v, nil
	case subFactoryDirective:
		kw, err := f.kwargsFor(fd, d.kwargs, ov, at)
		if err != nil {
			return nil, err
		}
		v, err := d.sub.build(s.ctx, buildOptions{values: kw}, s.rnd)
		if err != nil {
			return nil, &DirectiveInvocationError{Path: at.Pointer(), Field: fd.Name, Directive: DirectiveSubFactory, Cause: err}
		}
		return v, nil
	case requireDirective:
		return nil, &MissingBuildArgumentError{Path: at.Pointer(), Field: fd.Name}
	case ignoreDirective:
		return emptyValue(fd.Type), nil
	}
	if f.cfg.UseDefaults && fd.HasDefault {
		return fd.Default, nil
	}
	prev := s.field
	s.field = fd.Name
	defer func() { s.field = prev }()
	return s.value(fd.Type, at)
}

// partial builds a model-typed field with the given nested overrides.
func (f *Factory) partial(s *synth, fd Field, p Partial, at PathRef) (any, error) {
	m, ok := f.modelOf(fd.Type)
	if !ok {
		return nil, &DescriptorError{Path: at.Pointer(), Reason: fmt.Sprintf("partial override for field %q of non-model type %s", fd.Name, typeString(fd.Type))}
	}
	return s.enter(m, at, overrides{values: p})
}

func (f *Factory) modelOf(t Type) (*Model, bool) {
	switch t := t.(type) {
	case *OptionalType:
		return f.modelOf(t.inner)
	case *NestedType:
		return f.catalog.Lookup(t.name)
	}
	return nil, false
}

func (f *Factory) kwargsFor(fd Field, bound Kwargs, ov overrides, at PathRef) (Kwargs, error) {
	kw, collisions := mergeKwargs(bound, ov.callArgs[fd.Name])
	if len(collisions) > 0 {
		return nil, &ArgumentCollisionError{Path: at.Pointer(), Field: fd.Name, Keys: collisions}
	}
	return kw, nil
}

func takesCallArgs(k DirectiveKind) bool {
	return k == DirectiveUse || k == DirectivePostGenerated || k == DirectiveSubFactory
}

// checkOverrides rejects override keys and call arguments that do not match a field
// of m (call arguments must target a Use, SubFactory or PostGenerated field).
func (f *Factory) checkOverrides(m *Model, ov overrides, at PathRef) error {
	if f.cfg.UnknownOverrides == OverridesIgnore {
		return nil
	}
	unknown := map[string]struct{}{}
	for k := range ov.values {
		if _, ok := m.index[k]; !ok {
			unknown[k] = struct{}{}
		}
	}
	for k := range ov.callArgs {
		fd, ok := m.Field(k)
		if !ok || fd.Directive == nil || !takesCallArgs(fd.Directive.Kind()) {
			unknown[k] = struct{}{}
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	keys := make([]string, 0, len(unknown))
	for k := range unknown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &UnknownOverrideError{Path: at.Pointer(), Keys: keys}
}
