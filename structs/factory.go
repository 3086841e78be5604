package structs

import (
	"context"
	"reflect"

	"github.com/reoring/gofactory"
)

type options struct {
	factory    []gofactory.Option
	kinds      map[reflect.Type]gofactory.Kind
	directives map[string]map[string]gofactory.Directive
}

func newOptions(opts []Option) *options {
	o := &options{kinds: map[reflect.Type]gofactory.Kind{}, directives: map[string]map[string]gofactory.Directive{}}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Option configures extraction and the underlying factory.
type Option func(*options)

// WithFactoryOptions forwards options to gofactory.New.
func WithFactoryOptions(opts ...gofactory.Option) Option {
	return func(o *options) { o.factory = append(o.factory, opts...) }
}

// WithKind maps Go type V to scalar kind k, e.g. to plug a custom generator in
// for a struct type with unexported fields.
func WithKind[V any](k gofactory.Kind) Option {
	rt := reflect.TypeOf((*V)(nil)).Elem()
	return func(o *options) { o.kinds[rt] = k }
}

// WithDirective attaches d to field (by external key) of the root struct.
func WithDirective(field string, d gofactory.Directive) Option {
	return WithModelDirective("", field, d)
}

// WithModelDirective attaches d to field of the nested model named model.
func WithModelDirective(model, field string, d gofactory.Directive) Option {
	return func(o *options) {
		if o.directives[model] == nil {
			o.directives[model] = map[string]gofactory.Directive{}
		}
		o.directives[model][field] = d
	}
}

// Factory builds values of struct type T.
type Factory[T any] struct {
	inner *gofactory.Factory
}

// New extracts the model of T and creates its factory.
func New[T any](opts ...Option) (*Factory[T], error) {
	m, err := ExtractOf[T](opts...)
	if err != nil {
		return nil, err
	}
	inner, err := gofactory.New(m, newOptions(opts).factory...)
	if err != nil {
		return nil, err
	}
	return &Factory[T]{inner: inner}, nil
}

// MustNew is New that panics on error.
func MustNew[T any](opts ...Option) *Factory[T] {
	f, err := New[T](opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Build synthesizes one T. Overrides use the external keys of T's fields.
func (f *Factory[T]) Build(ctx context.Context, opts ...gofactory.BuildOption) (T, error) {
	var out T
	v, err := f.inner.Build(ctx, opts...)
	if err != nil {
		return out, err
	}
	if err := assign(reflect.ValueOf(&out).Elem(), v, ""); err != nil {
		return out, err
	}
	return out, nil
}

// MustBuild is Build that panics on error.
func (f *Factory[T]) MustBuild(ctx context.Context, opts ...gofactory.BuildOption) T {
	v, err := f.Build(ctx, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Batch synthesizes n values of T.
func (f *Factory[T]) Batch(ctx context.Context, n int, opts ...gofactory.BuildOption) ([]T, error) {
	vs, err := f.inner.Batch(ctx, n, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(vs))
	for i, v := range vs {
		if err := assign(reflect.ValueOf(&out[i]).Elem(), v, ""); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (f *Factory[T]) Model() *gofactory.Model { return f.inner.Model() }

// Untyped returns the map-producing factory behind f.
func (f *Factory[T]) Untyped() *gofactory.Factory { return f.inner }
