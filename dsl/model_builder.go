package dsl

import (
	"github.com/reoring/gofactory"
)

type modelBuilder struct {
	name   string
	fields []gofactory.Field
	index  map[string]int
}

type fieldStep struct {
	b *modelBuilder
	i int
}

// Model creates a new model builder. Fields keep their declaration order.
func Model(name string) *modelBuilder {
	return &modelBuilder{name: name, index: map[string]int{}}
}

// Field registers a field with its type. Registering a name twice replaces the
// earlier declaration in place.
func (b *modelBuilder) Field(name string, t gofactory.Type) *fieldStep {
	if i, ok := b.index[name]; ok {
		b.fields[i] = gofactory.NewField(name, t)
		return &fieldStep{b: b, i: i}
	}
	b.index[name] = len(b.fields)
	b.fields = append(b.fields, gofactory.NewField(name, t))
	return &fieldStep{b: b, i: len(b.fields) - 1}
}

// Value registers a field whose value is always v. It needs no type.
func (b *modelBuilder) Value(name string, v any) *modelBuilder {
	return b.Field(name, nil).Fixed(v)
}

func (f *fieldStep) set(d gofactory.Directive) *modelBuilder {
	f.b.fields[f.i] = f.b.fields[f.i].With(d)
	return f.b
}

// Fixed makes the current field always yield v.
func (f *fieldStep) Fixed(v any) *modelBuilder { return f.set(gofactory.Fixed(v)) }

// Use computes the current field with fn on every build.
func (f *fieldStep) Use(fn gofactory.UseFunc, kw gofactory.Kwargs) *modelBuilder {
	return f.set(gofactory.Use(fn, kw))
}

// UseValue computes the current field with an argument-free producer.
func (f *fieldStep) UseValue(fn func() any) *modelBuilder { return f.set(gofactory.UseValue(fn)) }

// SubFactory builds the current field with another factory.
func (f *fieldStep) SubFactory(sub *gofactory.Factory, kw gofactory.Kwargs) *modelBuilder {
	return f.set(gofactory.SubFactory(sub, kw))
}

// Require makes the current field a mandatory build argument.
func (f *fieldStep) Require() *modelBuilder { return f.set(gofactory.Require()) }

// Ignore makes the current field yield the empty value of its type.
func (f *fieldStep) Ignore() *modelBuilder { return f.set(gofactory.Ignore()) }

// PostGenerated computes the current field after the other fields are resolved.
func (f *fieldStep) PostGenerated(fn gofactory.PostGenFunc, kw gofactory.Kwargs) *modelBuilder {
	return f.set(gofactory.PostGenerated(fn, kw))
}

// Default declares a default for the current field, used with gofactory.WithUseDefaults.
func (f *fieldStep) Default(v any) *modelBuilder {
	f.b.fields[f.i] = f.b.fields[f.i].WithDefault(v)
	return f.b
}

func (f *fieldStep) Field(name string, t gofactory.Type) *fieldStep { return f.b.Field(name, t) }
func (f *fieldStep) Value(name string, v any) *modelBuilder         { return f.b.Value(name, v) }
func (f *fieldStep) Build() (*gofactory.Model, error)               { return f.b.Build() }
func (f *fieldStep) MustBuild() *gofactory.Model                    { return f.b.MustBuild() }

// Build validates the builder and returns the Model.
func (b *modelBuilder) Build() (*gofactory.Model, error) {
	return gofactory.NewModel(b.name, b.fields...)
}

// MustBuild is Build that panics on error.
func (b *modelBuilder) MustBuild() *gofactory.Model {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}

// Factory builds the model and a factory for it.
func (b *modelBuilder) Factory(opts ...gofactory.Option) (*gofactory.Factory, error) {
	m, err := b.Build()
	if err != nil {
		return nil, err
	}
	return gofactory.New(m, opts...)
}

func (f *fieldStep) Factory(opts ...gofactory.Option) (*gofactory.Factory, error) {
	return f.b.Factory(opts...)
}
