package gofactory

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Factory synthesizes instances of one Model. It is immutable after New and safe for
// concurrent Build calls; concurrent builds share the Random Source, so only
// sequential use of a seeded factory is reproducible.
type Factory struct {
	model    *Model
	catalog  *Catalog
	cfg      factoryConfig
	resolver *resolver
	rnd      *Random
	log      *zap.Logger
}

// New validates m (and every model reachable from it or registered with WithModels)
// and returns a Factory for it.
func New(m *Model, opts ...Option) (*Factory, error) {
	if m == nil {
		return nil, &DescriptorError{Path: "/", Reason: "nil model"}
	}
	cfg := defaultFactoryConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := cfg.Config.Validate(); err != nil {
		return nil, err
	}
	catalog, err := NewCatalog(append([]*Model{m}, cfg.models...)...)
	if err != nil {
		return nil, err
	}
	rnd := cfg.rnd
	switch {
	case rnd != nil:
	case cfg.Seed != nil:
		rnd = NewRandom(*cfg.Seed)
	default:
		rnd = NewEntropyRandom()
	}
	gens := cfg.generators.clone()
	f := &Factory{
		model:    m,
		catalog:  catalog,
		cfg:      cfg,
		resolver: newResolver(gens),
		rnd:      rnd,
		log:      cfg.logger.Named("gofactory"),
	}
	f.log.Debug("factory created",
		zap.String("model", m.name),
		zap.Int("models", catalog.Len()),
		zap.Bool("seeded", cfg.Seed != nil || cfg.rnd != nil),
	)
	return f, nil
}

// MustNew is New that panics on error.
func MustNew(m *Model, opts ...Option) *Factory {
	f, err := New(m, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Factory) Model() *Model     { return f.model }
func (f *Factory) Catalog() *Catalog { return f.catalog }
func (f *Factory) Random() *Random   { return f.rnd }

// Config returns the resolved configuration.
func (f *Factory) Config() Config { return f.cfg.Config }

// Build synthesizes one instance. The result has exactly one entry per model field.
func (f *Factory) Build(ctx context.Context, opts ...BuildOption) (map[string]any, error) {
	bo := newBuildOptions(opts)
	return f.build(ctx, bo, f.randomFor(bo))
}

// MustBuild is Build that panics on error.
func (f *Factory) MustBuild(ctx context.Context, opts ...BuildOption) map[string]any {
	v, err := f.Build(ctx, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Batch builds n instances with the same options. With WithBuildSeed, the whole
// batch draws from one fresh Random seeded once.
func (f *Factory) Batch(ctx context.Context, n int, opts ...BuildOption) ([]map[string]any, error) {
	if n < 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("batch size %d < 0", n)}
	}
	bo := newBuildOptions(opts)
	rnd := f.randomFor(bo)
	out := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := f.build(ctx, bo, rnd)
		if err != nil {
			return nil, fmt.Errorf("gofactory: batch item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *Factory) randomFor(bo buildOptions) *Random {
	if bo.seed != nil {
		return NewRandom(*bo.seed)
	}
	return f.rnd
}

func (f *Factory) build(ctx context.Context, bo buildOptions, rnd *Random) (map[string]any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &synth{ctx: ctx, f: f, rnd: rnd, depth: map[string]int{f.model.name: 1}}
	f.log.Debug("build start", zap.String("model", f.model.name), zap.Int("overrides", len(bo.values)))
	out, err := f.buildModel(s, f.model, overrides{values: bo.values, callArgs: bo.callArgs}, RootPath())
	if err != nil {
		f.log.Debug("build failed", zap.String("model", f.model.name), zap.Error(err))
		return nil, err
	}
	f.log.Debug("build finished", zap.String("model", f.model.name), zap.Int("fields", len(out)))
	return out, nil
}
