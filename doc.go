// Package gofactory provides:
//
// - Randomized, structurally valid test instances synthesized from Model descriptors
// - A closed set of field directives (Fixed/Use/Require/Ignore/PostGenerated) to override synthesis
// - Deterministic output through a seedable Random Source (WithSeed/WithBuildSeed)
// - A stable error model: every failure carries a code and a JSON Pointer path (see AsIssue)
//
// Design policy:
// - Keep the descriptor model, the engine and the Factory facade in the root package.
// - Place the fluent builder under dsl/, adapters under structs/ and openapi/, the JSON Schema exporter under jsonschema/, and the CLI under cmd/gofactory.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	pet := g.Model("Pet").
//	    Field("name", g.String()).
//	    Field("kind", g.Enum("dog", "cat")).
//	    MustBuild()
//	person := g.Model("Person").
//	    Field("id", g.UUID()).
//	    Field("nickname", g.Optional(g.String())).
//	    Field("pets", g.List(g.Nested(pet))).
//	    Field("email", g.Email()).Require().
//	    MustBuild()
//
//	f := gofactory.MustNew(person, gofactory.WithSeed(42))
//	v, err := f.Build(ctx, gofactory.With("email", "a@example.com"))
package gofactory
