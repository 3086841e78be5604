package structs

import (
	"fmt"
	"math"
	"net"
	"reflect"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/reoring/gofactory"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	uuidType     = reflect.TypeOf(uuid.UUID{})
	ipType       = reflect.TypeOf(net.IP{})
	numberType   = reflect.TypeOf(json.Number(""))
)

// Extract derives a Model from struct type rt. Nested structs become nested models
// named after their Go type; a struct that refers back to one of its enclosing
// structs is expressed with a Ref, so recursive types are supported.
func Extract(rt reflect.Type, opts ...Option) (*gofactory.Model, error) {
	o := newOptions(opts)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("structs: Extract requires a struct type, got %s", rt)
	}
	x := &extractor{
		opts:     o,
		models:   map[reflect.Type]*gofactory.Model{},
		building: map[reflect.Type]string{},
		names:    map[string]reflect.Type{},
		root:     rt,
	}
	return x.model(rt, "")
}

// ExtractOf is Extract for the type parameter T.
func ExtractOf[T any](opts ...Option) (*gofactory.Model, error) {
	return Extract(reflect.TypeOf((*T)(nil)).Elem(), opts...)
}

type extractor struct {
	opts     *options
	models   map[reflect.Type]*gofactory.Model
	building map[reflect.Type]string
	names    map[string]reflect.Type
	root     reflect.Type
}

// modelName picks a unique model name for rt. Anonymous structs are named after
// the field that holds them.
func (x *extractor) modelName(rt reflect.Type, hint string) string {
	name := rt.Name()
	if name == "" {
		name = hint
	}
	if prev, ok := x.names[name]; ok && prev != rt {
		name = rt.String()
		for i := 2; ; i++ {
			if prev, ok := x.names[name]; !ok || prev == rt {
				break
			}
			name = fmt.Sprintf("%s%d", rt.String(), i)
		}
	}
	x.names[name] = rt
	return name
}

func (x *extractor) model(rt reflect.Type, hint string) (*gofactory.Model, error) {
	if m, ok := x.models[rt]; ok {
		return m, nil
	}
	name := x.modelName(rt, hint)
	x.building[rt] = name
	defer delete(x.building, rt)

	directives := x.opts.directives[name]
	if rt == x.root {
		directives = mergeDirectives(x.opts.directives[""], directives)
	}
	fields := make([]gofactory.Field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" || key == "" {
			continue
		}
		tags, err := parseTag(sf)
		if err != nil {
			return nil, err
		}
		t, err := x.fieldType(sf.Type, tags, name+sf.Name)
		if err != nil {
			return nil, err
		}
		f := gofactory.NewField(key, t)
		switch {
		case directives[key] != nil:
			f = f.With(directives[key])
		case tags.required:
			f = f.With(gofactory.Require())
		case tags.ignore:
			f = f.With(gofactory.Ignore())
		}
		fields = append(fields, f)
	}
	m, err := gofactory.NewModel(name, fields...)
	if err != nil {
		return nil, err
	}
	x.models[rt] = m
	return m, nil
}

func mergeDirectives(a, b map[string]gofactory.Directive) map[string]gofactory.Directive {
	out := map[string]gofactory.Directive{}
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// fieldType applies the tag overrides (enum, kind, optional) around typeOf.
func (x *extractor) fieldType(rt reflect.Type, tags tagOptions, hint string) (gofactory.Type, error) {
	var t gofactory.Type
	switch {
	case len(tags.enum) > 0:
		members, err := enumMembers(rt, tags.enum)
		if err != nil {
			return nil, err
		}
		t = gofactory.Enum(members...)
		if rt.Kind() == reflect.Pointer {
			t = gofactory.Optional(t)
		}
	case tags.kind != "":
		t = gofactory.Scalar(gofactory.Kind(tags.kind))
		if rt.Kind() == reflect.Pointer {
			t = gofactory.Optional(t)
		}
	default:
		var err error
		if t, err = x.typeOf(rt, hint); err != nil {
			return nil, err
		}
	}
	t = constrain(t, tags)
	if tags.optional {
		if _, ok := t.(*gofactory.OptionalType); !ok {
			t = gofactory.Optional(t)
		}
	}
	return t, nil
}

func (x *extractor) typeOf(rt reflect.Type, hint string) (gofactory.Type, error) {
	if k, ok := x.opts.kinds[rt]; ok {
		return gofactory.Scalar(k), nil
	}
	switch rt {
	case timeType:
		return gofactory.Scalar(gofactory.KindTime), nil
	case durationType:
		return gofactory.Scalar(gofactory.KindDuration), nil
	case uuidType:
		return gofactory.Scalar(gofactory.KindUUID), nil
	case ipType:
		return gofactory.Scalar(gofactory.KindIP), nil
	case numberType:
		return gofactory.Scalar(gofactory.KindDecimal), nil
	}
	switch rt.Kind() {
	case reflect.String:
		return gofactory.Scalar(gofactory.KindString), nil
	case reflect.Bool:
		return gofactory.Scalar(gofactory.KindBool), nil
	case reflect.Int:
		return gofactory.Scalar(gofactory.KindInt), nil
	case reflect.Int8, reflect.Int16, reflect.Int32:
		bits := rt.Bits()
		lim := math.Ldexp(1, bits-1)
		return gofactory.Scalar(gofactory.KindInt).Between(-lim, lim-1), nil
	case reflect.Int64:
		return gofactory.Scalar(gofactory.KindInt64), nil
	case reflect.Uint8, reflect.Uint16:
		return gofactory.Scalar(gofactory.KindUint).Between(0, math.Ldexp(1, rt.Bits())-1), nil
	case reflect.Uint, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return gofactory.Scalar(gofactory.KindUint), nil
	case reflect.Float32, reflect.Float64:
		return gofactory.Scalar(gofactory.KindFloat), nil
	case reflect.Interface:
		return gofactory.Scalar(gofactory.KindAny), nil
	case reflect.Pointer:
		inner, err := x.typeOf(rt.Elem(), hint)
		if err != nil {
			return nil, err
		}
		return gofactory.Optional(inner), nil
	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			return gofactory.Scalar(gofactory.KindBytes), nil
		}
		elem, err := x.typeOf(rt.Elem(), hint)
		if err != nil {
			return nil, err
		}
		return gofactory.List(elem), nil
	case reflect.Array:
		elem, err := x.typeOf(rt.Elem(), hint)
		if err != nil {
			return nil, err
		}
		if rt.Len() == 0 {
			return gofactory.VarTuple(elem).Size(0, 0), nil
		}
		elems := make([]gofactory.Type, rt.Len())
		for i := range elems {
			elems[i] = elem
		}
		return gofactory.Tuple(elems...), nil
	case reflect.Map:
		key, err := x.typeOf(rt.Key(), hint)
		if err != nil {
			return nil, err
		}
		if isSetType(rt) {
			return gofactory.Set(key), nil
		}
		val, err := x.typeOf(rt.Elem(), hint)
		if err != nil {
			return nil, err
		}
		return gofactory.Map(key, val), nil
	case reflect.Struct:
		if !hasExportedFields(rt) {
			break
		}
		if name, ok := x.building[rt]; ok {
			return gofactory.Ref(name), nil
		}
		m, err := x.model(rt, hint)
		if err != nil {
			return nil, err
		}
		return gofactory.Nested(m), nil
	}
	// chans, funcs and structs without exported fields stay opaque until a
	// generator is registered for their kind
	return gofactory.Scalar(gofactory.Kind(rt.String())), nil
}

// constrain applies numeric, length and size options to t, looking through Optional.
func constrain(t gofactory.Type, tags tagOptions) gofactory.Type {
	switch tt := t.(type) {
	case *gofactory.OptionalType:
		return gofactory.Optional(constrain(tt.Inner(), tags))
	case *gofactory.ScalarType:
		if tags.min != nil {
			tt = tt.AtLeast(*tags.min)
		}
		if tags.max != nil {
			tt = tt.AtMost(*tags.max)
		}
		if tags.minLen != nil || tags.maxLen != nil {
			c := tt.Constraints()
			lo, hi := 0, math.MaxInt32
			if c.MinLen != nil {
				lo = *c.MinLen
			}
			if c.MaxLen != nil {
				hi = *c.MaxLen
			}
			if tags.minLen != nil {
				lo = *tags.minLen
			}
			if tags.maxLen != nil {
				hi = *tags.maxLen
			} else if hi == math.MaxInt32 {
				hi = lo + 8
			}
			tt = tt.Length(lo, hi)
		}
		return tt
	}
	if tags.size == nil {
		return t
	}
	lo, hi := tags.size[0], tags.size[1]
	switch tt := t.(type) {
	case *gofactory.ListType:
		return tt.Size(lo, hi)
	case *gofactory.SetType:
		return tt.Size(lo, hi)
	case *gofactory.MapType:
		return tt.Size(lo, hi)
	case *gofactory.VarTupleType:
		return tt.Size(lo, hi)
	}
	return t
}

// enumMembers converts tag literals to the field's underlying kind so the
// synthesized value can be assigned back.
func enumMembers(rt reflect.Type, raw []string) ([]any, error) {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	out := make([]any, len(raw))
	for i, s := range raw {
		var err error
		switch rt.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			var n int64
			n, err = strconv.ParseInt(s, 10, rt.Bits())
			out[i] = n
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			var n uint64
			n, err = strconv.ParseUint(s, 10, rt.Bits())
			out[i] = n
		case reflect.Float32, reflect.Float64:
			var f float64
			f, err = strconv.ParseFloat(s, rt.Bits())
			out[i] = f
		case reflect.Bool:
			var b bool
			b, err = strconv.ParseBool(s)
			out[i] = b
		default:
			out[i] = s
		}
		if err != nil {
			return nil, fmt.Errorf("structs: enum value %q for %s: %w", s, rt, err)
		}
	}
	return out, nil
}

func isSetType(rt reflect.Type) bool {
	e := rt.Elem()
	return e.Kind() == reflect.Struct && e.NumField() == 0
}

func hasExportedFields(rt reflect.Type) bool {
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).IsExported() {
			return true
		}
	}
	return false
}
