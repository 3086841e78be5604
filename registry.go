package gofactory

// Generator produces one value of a scalar kind from the factory's Random. c carries
// the constraints declared on the scalar descriptor.
type Generator func(r *Random, c Constraints) (any, error)

// Generators is a registry mapping scalar kinds to generators. A factory takes a copy
// at construction; registering afterwards does not affect existing factories.
type Generators map[Kind]Generator

// DefaultGenerators returns a fresh registry with every built-in kind.
func DefaultGenerators() Generators {
	return Generators{
		KindString:   genString,
		KindInt:      genInt,
		KindInt64:    genInt64,
		KindUint:     genUint,
		KindFloat:    genFloat,
		KindBool:     genBool,
		KindBytes:    genBytes,
		KindTime:     genTime,
		KindDate:     genDate,
		KindDuration: genDuration,
		KindUUID:     genUUID,
		KindEmail:    genEmail,
		KindURL:      genURL,
		KindIP:       genIP,
		KindDecimal:  genDecimal,
		KindAny:      genString,
	}
}

// Register adds or replaces the generator for k.
func (g Generators) Register(k Kind, gen Generator) { g[k] = gen }

// Lookup returns the generator for k.
func (g Generators) Lookup(k Kind) (Generator, bool) {
	gen, ok := g[k]
	return gen, ok && gen != nil
}

func (g Generators) clone() Generators {
	out := make(Generators, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}
