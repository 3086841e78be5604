package gofactory

// Partial overrides some fields of a model-typed field and lets the factory
// synthesize the rest. Use it as an override value:
//
//	f.Build(ctx, gofactory.With("owner", gofactory.Partial{"name": "Ada"}))
type Partial map[string]any

// BuildOption configures a single Build or Batch call.
type BuildOption func(*buildOptions)

type buildOptions struct {
	values   map[string]any
	callArgs map[string]Kwargs
	seed     *int64
}

func newBuildOptions(opts []BuildOption) buildOptions {
	bo := buildOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&bo)
		}
	}
	return bo
}

// With overrides field with v, used verbatim.
func With(field string, v any) BuildOption {
	return func(bo *buildOptions) {
		if bo.values == nil {
			bo.values = map[string]any{}
		}
		bo.values[field] = v
	}
}

// WithOverrides overrides every field named in values.
func WithOverrides(values map[string]any) BuildOption {
	return func(bo *buildOptions) {
		if len(values) == 0 {
			return
		}
		if bo.values == nil {
			bo.values = make(map[string]any, len(values))
		}
		for k, v := range values {
			bo.values[k] = v
		}
	}
}

// WithCallArgs passes kw to the Use or PostGenerated function of field. A key that
// is already bound at declaration is an ArgumentCollisionError.
func WithCallArgs(field string, kw Kwargs) BuildOption {
	return func(bo *buildOptions) {
		if bo.callArgs == nil {
			bo.callArgs = map[string]Kwargs{}
		}
		merged := cloneKwargs(bo.callArgs[field])
		if merged == nil {
			merged = Kwargs{}
		}
		for k, v := range kw {
			merged[k] = v
		}
		bo.callArgs[field] = merged
	}
}

// WithBuildSeed draws this build from a fresh Random seeded with seed, so the same
// seed yields the same instance regardless of the factory's own stream.
func WithBuildSeed(seed int64) BuildOption {
	return func(bo *buildOptions) { bo.seed = &seed }
}
