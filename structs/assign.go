package structs

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	json "github.com/goccy/go-json"
)

// ErrAssign is wrapped by every error raised while copying a built instance into
// a Go value.
var ErrAssign = errors.New("structs: value not assignable")

// fieldIndexCache maps a struct type to its external-key -> field-index table.
var fieldIndexCache sync.Map

func fieldIndex(rt reflect.Type) map[string]int {
	if v, ok := fieldIndexCache.Load(rt); ok {
		return v.(map[string]int)
	}
	idx := make(map[string]int, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := ResolveStructKey(sf)
		if name == "-" || name == "" {
			continue
		}
		idx[name] = i
	}
	fieldIndexCache.Store(rt, idx)
	return idx
}

// Assign copies a built value (maps, []any, scalars) into dst, converting numeric
// kinds and allocating pointers, slices and maps as needed. dst must be a non-nil
// pointer.
func Assign(dst any, v any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: destination must be a non-nil pointer, got %T", ErrAssign, dst)
	}
	return assign(rv.Elem(), v, "")
}

func assign(dst reflect.Value, v any, path string) error {
	dt := dst.Type()
	if v == nil {
		dst.Set(reflect.Zero(dt))
		return nil
	}
	vv := reflect.ValueOf(v)
	if vv.Type().AssignableTo(dt) {
		dst.Set(vv)
		return nil
	}
	mismatch := func() error {
		if path == "" {
			path = "/"
		}
		return fmt.Errorf("%w: %T into %s at %s", ErrAssign, v, dt, path)
	}
	switch dt.Kind() {
	case reflect.Pointer:
		p := reflect.New(dt.Elem())
		if err := assign(p.Elem(), v, path); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	case reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			return mismatch()
		}
		for key, i := range fieldIndex(dt) {
			if val, ok := m[key]; ok {
				if err := assign(dst.Field(i), val, path+"/"+key); err != nil {
					return err
				}
			}
		}
		return nil
	case reflect.Slice:
		items, ok := v.([]any)
		if !ok {
			return mismatch()
		}
		s := reflect.MakeSlice(dt, len(items), len(items))
		for i, it := range items {
			if err := assign(s.Index(i), it, fmt.Sprintf("%s/%d", path, i)); err != nil {
				return err
			}
		}
		dst.Set(s)
		return nil
	case reflect.Array:
		items, ok := v.([]any)
		if !ok {
			return mismatch()
		}
		for i := 0; i < len(items) && i < dt.Len(); i++ {
			if err := assign(dst.Index(i), items[i], fmt.Sprintf("%s/%d", path, i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		return assignMap(dst, v, path, mismatch)
	}
	if n, ok := v.(json.Number); ok {
		return assignNumber(dst, n, mismatch)
	}
	// int -> string conversion is legal Go but yields a rune, never what a field wants
	if dt.Kind() == reflect.String && vv.Kind() != reflect.String {
		return mismatch()
	}
	if vv.Type().ConvertibleTo(dt) {
		dst.Set(vv.Convert(dt))
		return nil
	}
	return mismatch()
}

func assignMap(dst reflect.Value, v any, path string, mismatch func() error) error {
	dt := dst.Type()
	if isSetType(dt) {
		items, ok := v.([]any)
		if !ok {
			return mismatch()
		}
		out := reflect.MakeMapWithSize(dt, len(items))
		for _, it := range items {
			k := reflect.New(dt.Key()).Elem()
			if err := assign(k, it, path); err != nil {
				return err
			}
			out.SetMapIndex(k, reflect.Zero(dt.Elem()))
		}
		dst.Set(out)
		return nil
	}
	src := reflect.ValueOf(v)
	if src.Kind() != reflect.Map {
		return mismatch()
	}
	out := reflect.MakeMapWithSize(dt, src.Len())
	iter := src.MapRange()
	for iter.Next() {
		k := reflect.New(dt.Key()).Elem()
		if err := assign(k, iter.Key().Interface(), path); err != nil {
			return err
		}
		val := reflect.New(dt.Elem()).Elem()
		if err := assign(val, iter.Value().Interface(), fmt.Sprintf("%s/%v", path, iter.Key().Interface())); err != nil {
			return err
		}
		out.SetMapIndex(k, val)
	}
	dst.Set(out)
	return nil
}

func assignNumber(dst reflect.Value, n json.Number, mismatch func() error) error {
	switch dst.Kind() {
	case reflect.Float32, reflect.Float64:
		f, err := n.Float64()
		if err != nil {
			return mismatch()
		}
		dst.SetFloat(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := n.Int64()
		if err != nil {
			return mismatch()
		}
		dst.SetInt(i)
	case reflect.String:
		dst.SetString(n.String())
	default:
		return mismatch()
	}
	return nil
}
