// Package dsl provides a fluent builder for gofactory models.
//
// Overview
//   - Builder API: declare a model with Model(name).Field(...).Require()/Fixed()/Use()/PostGenerated()/Ignore()/Default() and MustBuild().
//   - Primitives: String()/Int()/UUID()/Email()/Time()... return scalar descriptors; chain Between/Length for constraints.
//   - Composites: Optional, Union, List, Set, Map, Tuple, VarTuple, Nested, Ref and Enum.
//   - Factory: Model(...)...Factory(opts...) builds the model and its gofactory.Factory in one step.
//
// Entry points
//   - Model(name): create a model builder; chain Field/directives then MustBuild()/Build.
//   - Nested(m)/Ref(name): embed another model, by value or by name for recursive models.
//
// File layout (roles)
//   - model_builder.go: modelBuilder/fieldStep and Build/MustBuild.
//   - primitives.go: scalar descriptors.
//   - composites.go: container, union, enum and model-reference descriptors.
//
// Example (quickstart)
//
//	package main
//
//	import (
//	    "context"
//
//	    "github.com/reoring/gofactory"
//	    g "github.com/reoring/gofactory/dsl"
//	)
//
//	func main() {
//	    ctx := context.Background()
//	    pet := g.Model("Pet").
//	        Field("name", g.String()).
//	        Field("species", g.Enum("dog", "cat")).
//	        MustBuild()
//	    person := g.Model("Person").
//	        Field("id", g.UUID()).
//	        Field("age", g.Int().Between(0, 120)).
//	        Field("pets", g.List(g.Nested(pet)).Size(0, 3)).
//	        Field("email", g.Email()).Require().
//	        MustBuild()
//
//	    f := gofactory.MustNew(person, gofactory.WithSeed(1))
//	    v, _ := f.Build(ctx, gofactory.With("email", "a@example.com"))
//	    _ = v
//	}
//
// Example (recursive model)
//
//	node := g.Model("Node").
//	    Field("value", g.Int()).
//	    Field("children", g.List(g.Ref("Node"))).
//	    MustBuild()
//	f := gofactory.MustNew(node, gofactory.WithMaxDepth(3))
package dsl
