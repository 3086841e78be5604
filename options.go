package gofactory

import (
	"fmt"

	"go.uber.org/zap"
)

// UnionPolicy picks the index of the union member to synthesize. members holds only
// the members eligible at the current recursion depth and is never empty.
type UnionPolicy func(r *Random, members []Type) int

// UniformUnion picks a member uniformly at random. It is the default policy.
func UniformUnion(r *Random, members []Type) int { return r.Intn(len(members)) }

// FirstUnion always picks the first eligible member.
func FirstUnion(_ *Random, _ []Type) int { return 0 }

// factoryConfig is the resolved set of factory options.
type factoryConfig struct {
	Config
	generators Generators
	union      UnionPolicy
	logger     *zap.Logger
	rnd        *Random
	models     []*Model
}

func defaultFactoryConfig() factoryConfig {
	return factoryConfig{
		Config:     DefaultConfig(),
		generators: DefaultGenerators(),
		union:      UniformUnion,
		logger:     zap.NewNop(),
	}
}

// Option configures a Factory. Options are applied in order; the last one wins.
type Option func(*factoryConfig)

// WithConfig applies every non-zero field of c. A non-zero MaxItems carries MinItems
// with it, so a zero lower bound can be set; MinItems alone keeps the current
// maximum. UnknownOverrides, UseDefaults and PostGenVisibility are always taken
// from c.
func WithConfig(c Config) Option {
	return func(fc *factoryConfig) {
		if c.Seed != nil {
			seed := *c.Seed
			fc.Seed = &seed
		}
		switch {
		case c.MaxItems != 0:
			fc.MinItems, fc.MaxItems = c.MinItems, c.MaxItems
		case c.MinItems != 0:
			fc.MinItems = c.MinItems
		}
		if c.OptionalProbability != 0 {
			fc.OptionalProbability = c.OptionalProbability
		}
		if c.MaxDepth != 0 {
			fc.MaxDepth = c.MaxDepth
		}
		if c.KeyRetries != 0 {
			fc.KeyRetries = c.KeyRetries
		}
		fc.UnknownOverrides = c.UnknownOverrides
		fc.UseDefaults = c.UseDefaults
		fc.PostGenVisibility = c.PostGenVisibility
	}
}

// WithSeed makes the factory deterministic: two factories with the same seed and
// model produce identical build sequences.
func WithSeed(seed int64) Option {
	return func(fc *factoryConfig) {
		fc.Seed = &seed
		fc.rnd = nil
	}
}

// WithRandom shares r as the Random Source. It panics if r is nil.
func WithRandom(r *Random) Option {
	if r == nil {
		panic("gofactory: WithRandom(nil)")
	}
	return func(fc *factoryConfig) { fc.rnd = r }
}

// WithCollectionSize sets the default size range of lists, sets, maps and
// variable tuples. It panics if min < 0 or max < min.
func WithCollectionSize(min, max int) Option {
	if min < 0 || max < min {
		panic(fmt.Sprintf("gofactory: WithCollectionSize(%d, %d): invalid range", min, max))
	}
	return func(fc *factoryConfig) { fc.MinItems, fc.MaxItems = min, max }
}

// WithOptionalProbability sets the probability that an Optional value is present.
// It panics unless 0 < p < 1.
func WithOptionalProbability(p float64) Option {
	if !(p > 0 && p < 1) {
		panic(fmt.Sprintf("gofactory: WithOptionalProbability(%v): must be in (0, 1)", p))
	}
	return func(fc *factoryConfig) { fc.OptionalProbability = p }
}

// WithMaxDepth bounds how many times one model may appear on a nesting path.
// It panics if n < 1.
func WithMaxDepth(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("gofactory: WithMaxDepth(%d): must be >= 1", n))
	}
	return func(fc *factoryConfig) { fc.MaxDepth = n }
}

// WithKeyRetries bounds consecutive duplicate draws when filling sets and maps.
// It panics if n < 0.
func WithKeyRetries(n int) Option {
	if n < 0 {
		panic(fmt.Sprintf("gofactory: WithKeyRetries(%d): must be >= 0", n))
	}
	return func(fc *factoryConfig) { fc.KeyRetries = n }
}

func WithUnknownOverrides(p UnknownPolicy) Option {
	return func(fc *factoryConfig) { fc.UnknownOverrides = p }
}

// WithUseDefaults makes declared field defaults take precedence over synthesis.
func WithUseDefaults(on bool) Option {
	return func(fc *factoryConfig) { fc.UseDefaults = on }
}

func WithPostGenVisibility(v Visibility) Option {
	return func(fc *factoryConfig) { fc.PostGenVisibility = v }
}

// WithGenerator registers gen for kind k on this factory only. It panics if gen is nil.
func WithGenerator(k Kind, gen Generator) Option {
	if gen == nil {
		panic("gofactory: WithGenerator with nil generator")
	}
	return func(fc *factoryConfig) { fc.generators.Register(k, gen) }
}

// WithGenerators registers every entry of g.
func WithGenerators(g Generators) Option {
	return func(fc *factoryConfig) {
		for k, gen := range g {
			if gen != nil {
				fc.generators.Register(k, gen)
			}
		}
	}
}

// WithUnionPolicy replaces the union member selection. It panics if p is nil.
func WithUnionPolicy(p UnionPolicy) Option {
	if p == nil {
		panic("gofactory: WithUnionPolicy(nil)")
	}
	return func(fc *factoryConfig) { fc.union = p }
}

// WithLogger sets the logger for debug events. nil means no logging.
func WithLogger(l *zap.Logger) Option {
	return func(fc *factoryConfig) {
		if l == nil {
			l = zap.NewNop()
		}
		fc.logger = l
	}
}

// WithModels registers extra models in the factory catalog so Ref types can name them.
func WithModels(models ...*Model) Option {
	return func(fc *factoryConfig) { fc.models = append(fc.models, models...) }
}
