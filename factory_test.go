package gofactory_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	g "github.com/reoring/gofactory"
)

var ctx = context.Background()

func str() g.Type { return g.Scalar(g.KindString) }
func num() g.Type { return g.Scalar(g.KindInt) }

func personModel(t *testing.T) *g.Model {
	t.Helper()
	pet, err := g.NewModel("Pet",
		g.NewField("name", str()),
		g.NewField("kind", g.Enum("dog", "cat", "fish")),
	)
	require.NoError(t, err)
	person, err := g.NewModel("Person",
		g.NewField("id", g.Scalar(g.KindUUID)),
		g.NewField("name", str()),
		g.NewField("age", g.Scalar(g.KindInt).Between(0, 120)),
		g.NewField("nickname", g.Optional(str())),
		g.NewField("pets", g.List(g.Nested(pet))),
		g.NewField("tags", g.Set(str())),
		g.NewField("scores", g.Map(str(), g.Scalar(g.KindFloat))),
		g.NewField("point", g.Tuple(num(), num())),
		g.NewField("history", g.VarTuple(g.Scalar(g.KindTime))),
		g.NewField("contact", g.Union(g.Scalar(g.KindEmail), g.Scalar(g.KindURL))),
	)
	require.NoError(t, err)
	return person
}

func TestBuild_EveryFieldPresent(t *testing.T) {
	m := personModel(t)
	f := g.MustNew(m, g.WithSeed(1))
	for i := 0; i < 20; i++ {
		v, err := f.Build(ctx)
		require.NoError(t, err)
		assert.Len(t, v, m.Len())
		for _, fd := range m.Fields() {
			assert.Contains(t, v, fd.Name)
		}
		assert.IsType(t, uuid.UUID{}, v["id"])
		age := v["age"].(int)
		assert.True(t, age >= 0 && age <= 120, "age %d out of range", age)
		pets := v["pets"].([]any)
		for _, p := range pets {
			pm := p.(map[string]any)
			assert.Contains(t, []any{"dog", "cat", "fish"}, pm["kind"])
		}
		assert.IsType(t, map[string]any{}, v["scores"])
		assert.Len(t, v["point"], 2)
	}
}

func TestBuild_FixedAlwaysHolds(t *testing.T) {
	m := g.MustModel("Cfg",
		g.NewField("env", str()).With(g.Fixed("prod")),
		g.NewField("port", num()),
	)
	f := g.MustNew(m)
	for i := 0; i < 25; i++ {
		v := f.MustBuild(ctx)
		assert.Equal(t, "prod", v["env"])
	}
}

func TestBuild_Require(t *testing.T) {
	m := g.MustModel("User",
		g.NewField("email", g.Scalar(g.KindEmail)).With(g.Require()),
		g.NewField("name", str()),
	)
	f := g.MustNew(m, g.WithSeed(3))

	_, err := f.Build(ctx)
	var missing *g.MissingBuildArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "email", missing.Field)
	assert.Equal(t, "/email", missing.Path)

	v, err := f.Build(ctx, g.With("email", "a@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", v["email"])
}

func TestBuild_OverrideBeatsEverything(t *testing.T) {
	called := false
	m := g.MustModel("M",
		g.NewField("a", num()).With(g.Fixed(1)),
		g.NewField("b", num()).With(g.Use(func(context.Context, g.Kwargs) (any, error) {
			called = true
			return 0, nil
		}, nil)),
		g.NewField("c", g.Scalar("Opaque")),
	)
	f := g.MustNew(m)
	v, err := f.Build(ctx, g.WithOverrides(map[string]any{"a": 10, "b": 20, "c": "x"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 10, "b": 20, "c": "x"}, v)
	assert.False(t, called, "Use function must not run when the field is overridden")
}

func TestBuild_PostGeneratedVisibility(t *testing.T) {
	var seen []string
	record := func(_ context.Context, _ string, vals g.Values, _ g.Kwargs) (any, error) {
		seen = vals.Keys()
		return vals.Len(), nil
	}
	m := g.MustModel("Order",
		g.NewField("a", num()).With(g.Fixed(2)),
		g.NewField("total", num()).With(g.PostGenerated(record, nil)),
		g.NewField("c", num()).With(g.Fixed(3)),
	)

	g.MustNew(m).MustBuild(ctx)
	assert.Equal(t, []string{"a"}, seen)

	v := g.MustNew(m, g.WithPostGenVisibility(g.VisibilityResolved)).MustBuild(ctx)
	assert.Equal(t, []string{"a", "c"}, seen)
	assert.Equal(t, 2, v["total"])
}

func TestBuild_PostGeneratedComputesFromSiblings(t *testing.T) {
	fullName := func(_ context.Context, _ string, vals g.Values, kw g.Kwargs) (any, error) {
		first, _ := vals.Get("first")
		last, _ := vals.Get("last")
		return fmt.Sprintf("%v%s%v", first, kw["sep"], last), nil
	}
	m := g.MustModel("Name",
		g.NewField("first", str()),
		g.NewField("last", str()),
		g.NewField("full", str()).With(g.PostGenerated(fullName, g.Kwargs{"sep": " "})),
	)
	v := g.MustNew(m, g.WithSeed(9)).MustBuild(ctx)
	assert.Equal(t, v["first"].(string)+" "+v["last"].(string), v["full"])
}

func TestBuild_DeterministicWithSeed(t *testing.T) {
	m := personModel(t)
	a := g.MustNew(m, g.WithSeed(42))
	b := g.MustNew(m, g.WithSeed(42))
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.MustBuild(ctx), b.MustBuild(ctx))
	}

	f := g.MustNew(m)
	assert.Equal(t, f.MustBuild(ctx, g.WithBuildSeed(7)), f.MustBuild(ctx, g.WithBuildSeed(7)))
}

func TestBuild_OptionalCoverage(t *testing.T) {
	m := g.MustModel("O", g.NewField("maybe", g.Optional(num())))
	f := g.MustNew(m, g.WithSeed(5))
	var present, absent int
	for i := 0; i < 60; i++ {
		if f.MustBuild(ctx)["maybe"] == nil {
			absent++
		} else {
			present++
		}
	}
	assert.Positive(t, present)
	assert.Positive(t, absent)
}

func TestBuild_TupleArity(t *testing.T) {
	m := g.MustModel("T", g.NewField("triple", g.Tuple(num(), str(), g.Scalar(g.KindBool))))
	f := g.MustNew(m)
	for i := 0; i < 10; i++ {
		tup := f.MustBuild(ctx)["triple"].([]any)
		require.Len(t, tup, 3)
		assert.IsType(t, 0, tup[0])
		assert.IsType(t, "", tup[1])
		assert.IsType(t, true, tup[2])
	}
}

func TestBuild_SetAndMapKeysUnique(t *testing.T) {
	m := g.MustModel("U",
		g.NewField("set", g.Set(g.Enum(1, 2, 3)).Size(3, 3)),
		g.NewField("dict", g.Map(g.Enum(1, 2, 3, 4), str()).Size(1, 4)),
	)
	f := g.MustNew(m, g.WithSeed(11), g.WithKeyRetries(64))
	for i := 0; i < 20; i++ {
		v := f.MustBuild(ctx)
		assert.ElementsMatch(t, []any{1, 2, 3}, v["set"])
		dict := v["dict"].(map[any]any)
		assert.NotEmpty(t, dict)
	}
}

func TestBuild_KeyExhausted(t *testing.T) {
	m := g.MustModel("K", g.NewField("set", g.Set(g.Enum("only")).Size(2, 2)))
	_, err := g.MustNew(m, g.WithSeed(1)).Build(ctx)
	var ke *g.KeyExhaustedError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, 1, ke.Got)
	assert.Equal(t, 2, ke.Min)
	assert.ErrorIs(t, err, g.ErrParameter)
}

func nodeDepth(v any) int {
	m, ok := v.(map[string]any)
	if !ok {
		return 0
	}
	d := nodeDepth(m["next"])
	for _, c := range m["children"].([]any) {
		d = max(d, nodeDepth(c))
	}
	return d + 1
}

func TestBuild_SelfReferenceTerminates(t *testing.T) {
	node := g.MustModel("Node",
		g.NewField("value", num()),
		g.NewField("next", g.Optional(g.Ref("Node"))),
		g.NewField("children", g.List(g.Ref("Node")).Size(0, 3)),
	)
	for _, depth := range []int{1, 2, 3, 4} {
		f := g.MustNew(node, g.WithSeed(int64(depth)), g.WithMaxDepth(depth), g.WithOptionalProbability(0.9))
		for i := 0; i < 10; i++ {
			v, err := f.Build(ctx)
			require.NoError(t, err)
			assert.LessOrEqual(t, nodeDepth(v), depth)
		}
	}
}

func TestBuild_SizedListEmptyAtRecursionBound(t *testing.T) {
	tree := g.MustModel("Tree", g.NewField("kids", g.List(g.Ref("Tree")).Size(2, 3)))
	v, err := g.MustNew(tree, g.WithSeed(4), g.WithMaxDepth(2)).Build(ctx)
	require.NoError(t, err)
	kids := v["kids"].([]any)
	assert.GreaterOrEqual(t, len(kids), 2)
	for _, k := range kids {
		assert.Equal(t, []any{}, k.(map[string]any)["kids"])
	}
}

func TestBuild_UnionAvoidsRecursionAtLimit(t *testing.T) {
	expr := g.MustModel("Expr",
		g.NewField("node", g.Union(num(), g.Ref("Expr"))),
	)
	f := g.MustNew(expr, g.WithSeed(2), g.WithMaxDepth(2))
	for i := 0; i < 20; i++ {
		_, err := f.Build(ctx)
		require.NoError(t, err)
	}
}

func TestBuild_RequiredSelfReferenceFails(t *testing.T) {
	loop := g.MustModel("Loop", g.NewField("next", g.Ref("Loop")))
	_, err := g.MustNew(loop).Build(ctx)
	var rl *g.RecursionLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "Loop", rl.Model)
	assert.Equal(t, g.DefaultMaxDepth, rl.Limit)
}

func TestBuild_UnresolvableType(t *testing.T) {
	m := g.MustModel("Holder",
		g.NewField("name", str()),
		g.NewField("thing", g.Scalar("MyClass")),
	)
	f := g.MustNew(m)
	_, err := f.Build(ctx)
	var ut *g.UnresolvableTypeError
	require.ErrorAs(t, err, &ut)
	assert.Equal(t, "thing", ut.Field)
	assert.Equal(t, "/thing", ut.Path)
	assert.Contains(t, err.Error(), "thing")
	assert.ErrorIs(t, err, g.ErrParameter)

	// an override or a registered generator makes the same model buildable
	_, err = f.Build(ctx, g.With("thing", struct{}{}))
	require.NoError(t, err)

	f2 := g.MustNew(m, g.WithGenerator("MyClass", func(r *g.Random, _ g.Constraints) (any, error) {
		return r.Intn(10), nil
	}))
	v, err := f2.Build(ctx)
	require.NoError(t, err)
	assert.IsType(t, 0, v["thing"])
}

func TestBuild_UnresolvableInsideNestedNamesInnerField(t *testing.T) {
	inner := g.MustModel("Inner", g.NewField("secret", g.List(g.Scalar("Opaque"))))
	outer := g.MustModel("Outer", g.NewField("in", g.Nested(inner)))
	_, err := g.MustNew(outer, g.WithCollectionSize(1, 1)).Build(ctx)
	var ut *g.UnresolvableTypeError
	require.ErrorAs(t, err, &ut)
	assert.Equal(t, "secret", ut.Field)
	assert.Equal(t, "/in/secret/0", ut.Path)
}

func TestBuild_UseKwargsAndCollision(t *testing.T) {
	greet := func(_ context.Context, kw g.Kwargs) (any, error) {
		return fmt.Sprintf("%v %v", kw["greeting"], kw["who"]), nil
	}
	m := g.MustModel("G", g.NewField("msg", str()).With(g.Use(greet, g.Kwargs{"greeting": "hello"})))
	f := g.MustNew(m)

	v, err := f.Build(ctx, g.WithCallArgs("msg", g.Kwargs{"who": "world"}))
	require.NoError(t, err)
	assert.Equal(t, "hello world", v["msg"])

	_, err = f.Build(ctx, g.WithCallArgs("msg", g.Kwargs{"greeting": "hi"}))
	var ac *g.ArgumentCollisionError
	require.ErrorAs(t, err, &ac)
	assert.Equal(t, []string{"greeting"}, ac.Keys)
}

func TestBuild_DirectiveFailureWrapsCause(t *testing.T) {
	boom := errors.New("boom")
	m := g.MustModel("D", g.NewField("x", num()).With(g.Use(func(context.Context, g.Kwargs) (any, error) {
		return nil, boom
	}, nil)))
	_, err := g.MustNew(m).Build(ctx)
	var de *g.DirectiveInvocationError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, g.DirectiveUse, de.Directive)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, g.ErrParameter)
}

func TestBuild_UnknownOverrides(t *testing.T) {
	m := g.MustModel("P", g.NewField("a", num()))

	_, err := g.MustNew(m).Build(ctx, g.With("zzz", 1), g.With("b", 2))
	var uo *g.UnknownOverrideError
	require.ErrorAs(t, err, &uo)
	assert.Equal(t, []string{"b", "zzz"}, uo.Keys)

	v, err := g.MustNew(m, g.WithUnknownOverrides(g.OverridesIgnore)).Build(ctx, g.With("zzz", 1))
	require.NoError(t, err)
	assert.NotContains(t, v, "zzz")
}

func TestBuild_PartialOverrideReachesNested(t *testing.T) {
	owner := g.MustModel("Owner",
		g.NewField("name", str()),
		g.NewField("email", g.Scalar(g.KindEmail)).With(g.Require()),
	)
	car := g.MustModel("Car",
		g.NewField("plate", str()),
		g.NewField("owner", g.Nested(owner)),
	)
	f := g.MustNew(car, g.WithSeed(4))

	_, err := f.Build(ctx)
	var missing *g.MissingBuildArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "/owner/email", missing.Path)

	v, err := f.Build(ctx, g.With("owner", g.Partial{"email": "o@example.com"}))
	require.NoError(t, err)
	o := v["owner"].(map[string]any)
	assert.Equal(t, "o@example.com", o["email"])
	assert.NotEmpty(t, o["name"])

	_, err = f.Build(ctx, g.With("plate", g.Partial{"x": 1}))
	var de *g.DescriptorError
	require.ErrorAs(t, err, &de)
}

func TestBuild_SubFactory(t *testing.T) {
	addr := g.MustModel("Address", g.NewField("city", str()), g.NewField("zip", str()))
	addrFactory := g.MustNew(addr, g.WithSeed(8))
	m := g.MustModel("Shop",
		g.NewField("address", g.Nested(addr)).With(g.SubFactory(addrFactory, g.Kwargs{"city": "Kyoto"})),
	)
	v, err := g.MustNew(m).Build(ctx)
	require.NoError(t, err)
	a := v["address"].(map[string]any)
	assert.Equal(t, "Kyoto", a["city"])
	assert.NotEmpty(t, a["zip"])
}

func TestBuild_SubFactoryFollowsBuildSeed(t *testing.T) {
	inner := g.MustModel("Inner", g.NewField("name", str()))
	outer := func() *g.Model {
		return g.MustModel("Outer",
			g.NewField("id", num()),
			g.NewField("inner", g.Nested(inner)).With(g.SubFactory(g.MustNew(inner), nil)),
		)
	}

	a := g.MustNew(outer(), g.WithSeed(7)).MustBuild(ctx)
	b := g.MustNew(outer(), g.WithSeed(7)).MustBuild(ctx)
	assert.Equal(t, a, b)

	f := g.MustNew(outer())
	assert.Equal(t, f.MustBuild(ctx, g.WithBuildSeed(3)), f.MustBuild(ctx, g.WithBuildSeed(3)))

	_, err := f.Build(ctx, g.WithCallArgs("inner", g.Kwargs{"nope": 1}))
	var de *g.DirectiveInvocationError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, g.DirectiveSubFactory, de.Directive)
	var uo *g.UnknownOverrideError
	require.ErrorAs(t, err, &uo)
	assert.Equal(t, []string{"nope"}, uo.Keys)
}

func TestBuild_IgnoreYieldsEmpty(t *testing.T) {
	m := g.MustModel("I",
		g.NewField("list", g.List(num())).With(g.Ignore()),
		g.NewField("dict", g.Map(str(), num())).With(g.Ignore()),
		g.NewField("opt", g.Optional(num())).With(g.Ignore()),
		g.NewField("scalar", num()).With(g.Ignore()),
	)
	v := g.MustNew(m).MustBuild(ctx)
	assert.Equal(t, []any{}, v["list"])
	assert.Equal(t, map[string]any{}, v["dict"])
	assert.Nil(t, v["opt"])
	assert.Nil(t, v["scalar"])
	assert.Len(t, v, 4)
}

func TestBuild_UseDefaults(t *testing.T) {
	m := g.MustModel("D", g.NewField("level", num()).WithDefault(7))
	assert.Equal(t, 7, g.MustNew(m, g.WithUseDefaults(true)).MustBuild(ctx)["level"])
	for i := 0; i < 5; i++ {
		assert.IsType(t, 0, g.MustNew(m, g.WithSeed(int64(i))).MustBuild(ctx)["level"])
	}
}

func TestBatch(t *testing.T) {
	m := g.MustModel("B", g.NewField("id", g.Scalar(g.KindUUID)))
	f := g.MustNew(m)
	vs, err := f.Batch(ctx, 10, g.WithBuildSeed(1))
	require.NoError(t, err)
	require.Len(t, vs, 10)
	ids := map[uuid.UUID]bool{}
	for _, v := range vs {
		ids[v["id"].(uuid.UUID)] = true
	}
	assert.Len(t, ids, 10)

	again, err := f.Batch(ctx, 10, g.WithBuildSeed(1))
	require.NoError(t, err)
	assert.Equal(t, vs, again)

	_, err = f.Batch(ctx, -1)
	assert.ErrorIs(t, err, g.ErrParameter)
}

func TestBuild_CanceledContext(t *testing.T) {
	m := g.MustModel("C", g.NewField("a", num()))
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err := g.MustNew(m).Build(cctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_InvalidDescriptors(t *testing.T) {
	cases := map[string]*g.Model{
		"dangling ref":   g.MustModel("A", g.NewField("b", g.Ref("Missing"))),
		"empty union":    g.MustModel("A", g.NewField("u", g.Union())),
		"empty tuple":    g.MustModel("A", g.NewField("t", g.Tuple())),
		"empty enum":     g.MustModel("A", g.NewField("e", g.Enum())),
		"bad size":       g.MustModel("A", g.NewField("l", g.List(num()).Size(3, 1))),
		"unhashable set": g.MustModel("A", g.NewField("s", g.Set(g.List(num())))),
		"bad bounds":     g.MustModel("A", g.NewField("n", g.Scalar(g.KindInt).Between(5, 1))),
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := g.New(m)
			var de *g.DescriptorError
			require.ErrorAs(t, err, &de)
			assert.ErrorIs(t, err, g.ErrParameter)
		})
	}

	_, err := g.NewModel("A", g.NewField("x", num()), g.NewField("x", str()))
	assert.ErrorIs(t, err, g.ErrParameter)

	// two different models sharing one name
	a1 := g.MustModel("Dup", g.NewField("x", num()))
	a2 := g.MustModel("Dup", g.NewField("y", num()))
	_, err = g.New(g.MustModel("Root", g.NewField("p", g.Nested(a1)), g.NewField("q", g.Nested(a2))))
	assert.ErrorIs(t, err, g.ErrParameter)
}

func TestNew_WithModelsResolvesRefs(t *testing.T) {
	tag := g.MustModel("Tag", g.NewField("label", str()))
	post := g.MustModel("Post", g.NewField("tags", g.List(g.Ref("Tag"))))
	_, err := g.New(post)
	require.Error(t, err)

	f, err := g.New(post, g.WithModels(tag))
	require.NoError(t, err)
	assert.Equal(t, []string{"Post", "Tag"}, f.Catalog().Names())
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := g.New(g.MustModel("A", g.NewField("a", num())), g.WithConfig(g.Config{MinItems: 4, MaxItems: 2}))
	var ce *g.ConfigError
	require.ErrorAs(t, err, &ce)

	assert.Panics(t, func() { g.WithOptionalProbability(1) })
	assert.Panics(t, func() { g.WithCollectionSize(-1, 2) })
	assert.Panics(t, func() { g.WithMaxDepth(0) })
}

func TestWithConfig_CollectionBounds(t *testing.T) {
	m := g.MustModel("A", g.NewField("a", num()))

	f, err := g.New(m, g.WithConfig(g.Config{MinItems: 2}))
	require.NoError(t, err)
	assert.Equal(t, 2, f.Config().MinItems)
	assert.Equal(t, g.DefaultMaxItems, f.Config().MaxItems)

	f, err = g.New(m, g.WithConfig(g.Config{MinItems: 0, MaxItems: 3}))
	require.NoError(t, err)
	assert.Equal(t, 0, f.Config().MinItems)
	assert.Equal(t, 3, f.Config().MaxItems)

	_, err = g.New(m, g.WithConfig(g.Config{MinItems: g.DefaultMaxItems + 1}))
	var ce *g.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestAsIssue(t *testing.T) {
	m := g.MustModel("A", g.NewField("x", g.Scalar("Nope")))
	_, err := g.MustNew(m).Build(ctx)
	is, ok := g.AsIssue(fmt.Errorf("wrapped: %w", err))
	require.True(t, ok)
	assert.Equal(t, g.CodeUnresolvableType, is.Code)
	assert.Equal(t, "/x", is.Path)
	assert.Equal(t, "x", is.Params["field"])
	assert.True(t, strings.HasPrefix(err.Error(), "gofactory: "))

	_, ok = g.AsIssue(errors.New("plain"))
	assert.False(t, ok)
}
