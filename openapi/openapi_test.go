package openapi_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gofactory"
	"github.com/reoring/gofactory/openapi"
)

var ctx = context.Background()

func fieldTypes(m *gofactory.Model) ([]string, map[string]string) {
	var order []string
	types := map[string]string{}
	for _, f := range m.Fields() {
		order = append(order, f.Name)
		types[f.Name] = f.Type.String()
	}
	return order, types
}

const personSchema = `{
  "title": "Person",
  "type": "object",
  "required": ["name", "age", "tags", "address"],
  "properties": {
    "name": {"type": "string", "minLength": 2, "maxLength": 5},
    "age": {"type": "integer", "minimum": 1, "maximum": 3},
    "email": {"type": "string", "format": "email"},
    "role": {"enum": ["admin", "user"]},
    "tags": {"type": "array", "items": {"type": "string"}, "uniqueItems": true, "minItems": 2, "maxItems": 2},
    "point": {"type": "array", "prefixItems": [{"type": "number"}, {"type": "number"}]},
    "nickname": {"type": ["string", "null"]},
    "address": {
      "type": "object",
      "required": ["city"],
      "properties": {"city": {"type": "string"}, "zip": {"type": "string", "pattern": "^[0-9]+$"}}
    },
    "labels": {"type": "object", "additionalProperties": {"type": "integer"}}
  }
}`

func TestImport_JSONSchema(t *testing.T) {
	res, diag, err := openapi.Import([]byte(personSchema), openapi.Options{})
	require.NoError(t, err)
	assert.Equal(t, "Person", res.Root.Name())
	require.True(t, diag.HasWarnings())
	assert.Contains(t, diag.Warnings()[0], "pattern")

	order, types := fieldTypes(res.Root)
	assert.Equal(t, []string{"name", "age", "email", "role", "tags", "point", "nickname", "address", "labels"}, order)
	assert.Equal(t, map[string]string{
		"name":     "string",
		"age":      "int",
		"email":    "Optional[email]",
		"role":     "Optional[Enum[admin, user]]",
		"tags":     "Set[string]",
		"point":    "Optional[Tuple[float, float]]",
		"nickname": "Optional[string]",
		"address":  "PersonAddress",
		"labels":   "Optional[Map[string, int]]",
	}, types)

	f, err := res.NewFactory(gofactory.WithSeed(3))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		v, err := f.Build(ctx)
		require.NoError(t, err)
		name := v["name"].(string)
		assert.True(t, len(name) >= 2 && len(name) <= 5, "name %q", name)
		assert.Contains(t, []any{1, 2, 3}, v["age"])
		assert.Len(t, v["tags"], 2)
		addr := v["address"].(map[string]any)
		assert.IsType(t, "", addr["city"])
	}
}

func TestImport_GoMapSortsKeys(t *testing.T) {
	res, _, err := openapi.Import(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"b": map[string]any{"type": "boolean"},
			"a": map[string]any{"type": "string", "format": "uuid"},
		},
	}, openapi.Options{RootName: "Thing"})
	require.NoError(t, err)
	order, types := fieldTypes(res.Root)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, "Optional[uuid]", types["a"])
	assert.Equal(t, "Thing", res.Root.Name())
}

const treeSchema = `
$defs:
  Node:
    type: object
    required: [value]
    properties:
      value: {type: integer, minimum: 0, maximum: 9}
      children:
        type: array
        items: {$ref: "#/$defs/Node"}
  Color:
    type: string
    enum: [red, green]
type: object
required: [tree, color]
properties:
  tree: {$ref: "#/$defs/Node"}
  color: {$ref: "#/$defs/Color"}
`

func TestImport_RefsAndRecursion(t *testing.T) {
	res, _, err := openapi.Import([]byte(treeSchema), openapi.Options{RootName: "Forest"})
	require.NoError(t, err)
	_, types := fieldTypes(res.Root)
	assert.Equal(t, "Node", types["tree"])
	assert.Equal(t, "Enum[red, green]", types["color"])
	require.Len(t, res.Models, 1)
	node, ok := res.Model("Node")
	require.True(t, ok)
	_, nodeTypes := fieldTypes(node)
	assert.Equal(t, "Optional[List[Node]]", nodeTypes["children"])

	f, err := res.NewFactory(gofactory.WithSeed(11), gofactory.WithMaxDepth(3))
	require.NoError(t, err)
	var depth func(v map[string]any) int
	depth = func(v map[string]any) int {
		d := 0
		if kids, ok := v["children"].([]any); ok {
			for _, k := range kids {
				d = max(d, depth(k.(map[string]any)))
			}
		}
		return d + 1
	}
	for i := 0; i < 10; i++ {
		v, err := f.Build(ctx)
		require.NoError(t, err)
		assert.LessOrEqual(t, depth(v["tree"].(map[string]any)), 3)
		assert.Contains(t, []any{"red", "green"}, v["color"])
	}
}

func TestImport_SelectSchemaFromComponents(t *testing.T) {
	doc := `
components:
  schemas:
    Pet:
      type: object
      required: [id, owner]
      properties:
        id: {type: integer, format: int64}
        owner: {$ref: "#/components/schemas/Owner"}
    Owner:
      type: object
      required: [pet]
      properties:
        pet: {$ref: "#/components/schemas/Pet"}
`
	res, _, err := openapi.Import(doc, openapi.Options{Schema: "Pet"})
	require.NoError(t, err)
	assert.Equal(t, "Pet", res.Root.Name())
	_, types := fieldTypes(res.Root)
	assert.Equal(t, "int64", types["id"])
	owner, ok := res.Model("Owner")
	require.True(t, ok)
	_, ownerTypes := fieldTypes(owner)
	assert.Equal(t, "Pet", ownerTypes["pet"])

	// Pet -> Owner -> Pet is required all the way down
	f, err := res.NewFactory()
	require.NoError(t, err)
	_, err = f.Build(ctx)
	var rl *gofactory.RecursionLimitError
	assert.ErrorAs(t, err, &rl)

	_, _, err = openapi.Import(doc, openapi.Options{Schema: "Missing"})
	assert.Error(t, err)
}

func TestImport_UnionsAndNullability(t *testing.T) {
	doc := `
type: object
required: [a, b, c, d, e, f]
properties:
  a: {oneOf: [{type: integer}, {type: string}]}
  b: {anyOf: [{type: string, format: date-time}, {type: "null"}]}
  c: {type: string, nullable: true}
  d: {x-kubernetes-int-or-string: true}
  e: {type: [integer, boolean]}
  f: {allOf: [{type: object, required: [x], properties: {x: {type: integer}}}, {properties: {y: {type: boolean}}}]}
`
	res, _, err := openapi.Import(doc, openapi.Options{RootName: "U"})
	require.NoError(t, err)
	_, types := fieldTypes(res.Root)
	assert.Equal(t, "Union[int, string]", types["a"])
	assert.Equal(t, "Optional[time]", types["b"])
	assert.Equal(t, "Optional[string]", types["c"])
	assert.Equal(t, "Union[int, string]", types["d"])
	assert.Equal(t, "Union[int, bool]", types["e"])
	assert.Equal(t, "UF", types["f"])

	v, err := gofactory.MustNew(res.Root, gofactory.WithSeed(1)).Build(ctx)
	require.NoError(t, err)
	assert.Contains(t, v["f"].(map[string]any), "x")
}

func TestImport_Defaults(t *testing.T) {
	doc := `
type: object
properties:
  replicas: {type: integer, default: 3}
  mode: {type: string, default: fast}
`
	res, _, err := openapi.Import(doc, openapi.Options{DefaultMode: openapi.DefaultApply})
	require.NoError(t, err)
	f, err := res.NewFactory(gofactory.WithUseDefaults(true))
	require.NoError(t, err)
	v, err := f.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v["replicas"])
	assert.Equal(t, "fast", v["mode"])

	res, _, err = openapi.Import(doc, openapi.Options{})
	require.NoError(t, err)
	for _, fd := range res.Root.Fields() {
		assert.False(t, fd.HasDefault)
	}
}

func TestImport_Refs(t *testing.T) {
	doc := `
type: object
properties:
  x: {$ref: "#/$defs/Nope"}
`
	res, diag, err := openapi.Import(doc, openapi.Options{})
	require.NoError(t, err)
	_, types := fieldTypes(res.Root)
	assert.Equal(t, "Optional[any]", types["x"])
	assert.True(t, diag.HasWarnings())

	_, _, err = openapi.Import(doc, openapi.Options{Refs: openapi.RefStrict})
	var de *gofactory.DescriptorError
	assert.ErrorAs(t, err, &de)
}

func TestImport_Errors(t *testing.T) {
	for _, in := range []any{nil, "- a\n- b\n", []byte("{not yaml"), 42} {
		_, _, err := openapi.Import(in, openapi.Options{})
		assert.Error(t, err, "input %v", in)
	}
	_, diag, err := openapi.Import(`{"type": "string"}`, openapi.Options{})
	require.NoError(t, err)
	assert.True(t, diag.HasWarnings())
}

const bundle = `
apiVersion: apiextensions.k8s.io/v1
kind: CustomResourceDefinition
metadata: {name: gadgets.example.com}
spec:
  group: example.com
  names: {kind: Gadget, plural: gadgets}
  versions:
    - name: v1
      served: true
      schema:
        openAPIV3Schema:
          type: object
          properties:
            spec: {type: object, properties: {on: {type: boolean}}}
---
apiVersion: apiextensions.k8s.io/v1
kind: CustomResourceDefinition
metadata: {name: widgets.example.com}
spec:
  group: example.com
  names: {kind: Widget, plural: widgets}
  versions:
    - name: v1alpha1
      served: false
      schema:
        openAPIV3Schema: {type: object}
    - name: v1
      served: true
      schema:
        openAPIV3Schema:
          type: object
          required: [spec]
          properties:
            apiVersion: {type: string}
            kind: {type: string}
            metadata: {type: object}
            spec:
              type: object
              required: [replicas, ports, template]
              properties:
                replicas: {x-kubernetes-int-or-string: true}
                ports:
                  type: array
                  x-kubernetes-list-type: set
                  minItems: 1
                  items: {type: integer, minimum: 1, maximum: 65535}
                template: {type: object, x-kubernetes-embedded-resource: true}
`

func TestImportYAMLForCRDKind(t *testing.T) {
	kinds, err := openapi.CRDKinds([]byte(bundle))
	require.NoError(t, err)
	assert.Equal(t, []string{"Gadget", "Widget"}, kinds)

	res, _, err := openapi.ImportYAMLForCRDKind([]byte(bundle), "Widget", openapi.Options{FixTypeMeta: true})
	require.NoError(t, err)
	assert.Equal(t, "Widget", res.Root.Name())
	_, types := fieldTypes(res.Root)
	assert.Equal(t, "Optional[Map[string, any]]", types["metadata"])
	assert.Equal(t, "WidgetSpec", types["spec"])

	f, err := res.NewFactory(gofactory.WithSeed(9))
	require.NoError(t, err)
	v, err := f.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, "example.com/v1", v["apiVersion"])
	assert.Equal(t, "Widget", v["kind"])
	spec := v["spec"].(map[string]any)
	assert.NotEmpty(t, spec["ports"])
	tpl := spec["template"].(map[string]any)
	assert.Contains(t, tpl, "apiVersion")
	assert.Contains(t, tpl, "metadata")

	_, _, err = openapi.ImportYAMLForCRDKind([]byte(bundle), "Nope", openapi.Options{})
	assert.Error(t, err)
}

func TestImportYAMLForCRDName(t *testing.T) {
	res, _, err := openapi.ImportYAMLForCRDName([]byte(bundle), "gadgets.example.com", openapi.Options{})
	require.NoError(t, err)
	assert.Equal(t, "Gadget", res.Root.Name())

	_, _, err = openapi.ImportYAMLForCRDName([]byte(bundle), "nope.example.com", openapi.Options{})
	assert.Error(t, err)
}

func TestImport_OpenAPIV3SchemaWrapper(t *testing.T) {
	res, _, err := openapi.Import(`{"openAPIV3Schema": {"type": "object", "properties": {"n": {"type": "number", "exclusiveMinimum": 0, "maximum": 1}}}}`, openapi.Options{})
	require.NoError(t, err)
	assert.Equal(t, "Root", res.Root.Name())
	n, ok := res.Root.Field("n")
	require.True(t, ok)
	st := n.Type.(*gofactory.OptionalType).Inner().(*gofactory.ScalarType)
	c := st.Constraints()
	require.NotNil(t, c.Min)
	require.NotNil(t, c.Max)
	assert.Equal(t, 0.0, *c.Min)
	assert.Equal(t, 1.0, *c.Max)
}
