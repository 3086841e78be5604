package openapi

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/reoring/gofactory"
)

// defaultMaxItems caps collections whose schema only gives minItems.
const defaultMaxItems = 4

// Result is an imported schema: the root model plus the models built from
// named definitions. Recursive definitions refer to each other by name, so
// Models must be registered with the factory (see NewFactory).
type Result struct {
	Root   *gofactory.Model
	Models []*gofactory.Model
}

// FactoryOptions returns the options that register r.Models.
func (r *Result) FactoryOptions() []gofactory.Option {
	return []gofactory.Option{gofactory.WithModels(r.Models...)}
}

// NewFactory creates a factory for r.Root with r.Models registered. opts are
// applied after the registration.
func (r *Result) NewFactory(opts ...gofactory.Option) (*gofactory.Factory, error) {
	return gofactory.New(r.Root, append(r.FactoryOptions(), opts...)...)
}

// Model returns the model named name, root included.
func (r *Result) Model(name string) (*gofactory.Model, bool) {
	if r.Root != nil && r.Root.Name() == name {
		return r.Root, true
	}
	for _, m := range r.Models {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}

// Import converts a JSON Schema / OpenAPI v3 schema into gofactory models.
//
// schema may be []byte or string (JSON or YAML), a *yaml.Node, a decoded
// map[string]any, or any value goccy/go-json can marshal. Documents with an
// openAPIV3Schema key and CustomResourceDefinition manifests are unwrapped.
// Property order follows the document for byte and YAML inputs and is sorted for
// Go maps.
func Import(schema any, opts Options) (*Result, Diag, error) {
	d := &simpleDiag{}
	doc, err := rootNode(schema)
	if err != nil {
		return nil, d, err
	}
	root := doc
	var tm *typeMeta
	if oas := doc.obj("openAPIV3Schema"); oas != nil {
		root = oas
	} else if doc.str("kind") == kindCRD {
		if root, tm = unwrapCRD(doc); root == nil {
			return nil, d, fmt.Errorf("openapi: CRD %q has no openAPIV3Schema", doc.obj("metadata").str("name"))
		}
	}

	c := &converter{
		opts:     opts,
		diag:     d,
		defs:     extractDefs(doc),
		models:   map[string]*gofactory.Model{},
		building: map[string]bool{},
		inlining: map[string]bool{},
		names:    map[string]bool{},
	}
	for _, def := range c.defs {
		c.names[def.name] = true
	}

	name := opts.RootName
	if opts.Schema != "" {
		def, ok := lookupDef(c.defs, opts.Schema)
		if !ok {
			return nil, d, fmt.Errorf("openapi: schema %q not found", opts.Schema)
		}
		root = def.schema
		if name == "" {
			name = def.name
		}
		c.rootDef = def.name
	}
	if name == "" && tm != nil {
		name = tm.kind
	}
	if name == "" {
		name = root.str("title")
	}
	if name == "" {
		name = "Root"
	}
	if c.names[name] && name != c.rootDef {
		name = c.uniqueName(name)
	}
	c.rootName = name
	c.names[name] = true

	if root.has("allOf") {
		root = mergeAllOf(root, c.resolveBranch)
	}
	if !isObjectSchema(root) {
		if t := root.get("type"); t != nil && t != "object" {
			d.warnf("root schema has type %v; generating an empty object", t)
		} else {
			d.warnf("root schema declares no properties; generating an empty object")
		}
	}
	c.building[name] = true
	m, err := c.model(name, root)
	if err != nil {
		return nil, d, err
	}
	if opts.FixTypeMeta {
		if m, err = pinTypeMeta(m, tm); err != nil {
			return nil, d, err
		}
	}
	res := &Result{Root: m}
	for _, n := range c.order {
		res.Models = append(res.Models, c.models[n])
	}
	return res, d, nil
}

type converter struct {
	opts     Options
	diag     *simpleDiag
	defs     map[string]definition
	models   map[string]*gofactory.Model
	order    []string
	building map[string]bool // models under construction, referenced by name
	inlining map[string]bool // non-object definitions being expanded
	names    map[string]bool
	rootName string
	rootDef  string
}

// model builds a model from an object schema. Properties keep document order;
// those not listed in required become Optional.
func (c *converter) model(name string, s *node) (*gofactory.Model, error) {
	required := map[string]bool{}
	for _, r := range s.list("required") {
		if rs, ok := r.(string); ok {
			required[rs] = true
		}
	}
	props := s.obj("properties")
	var fields []gofactory.Field
	if props != nil {
		fields = make([]gofactory.Field, 0, len(props.keys))
		for _, k := range props.keys {
			var ps *node
			switch pv := props.vals[k].(type) {
			case *node:
				ps = pv
			case bool:
				if !pv {
					continue
				}
			}
			t, err := c.typeOf(ps, name+pascal(k), name+"."+k)
			if err != nil {
				return nil, err
			}
			if !required[k] {
				if _, ok := t.(*gofactory.OptionalType); !ok {
					t = gofactory.Optional(t)
				}
			}
			f := gofactory.NewField(k, t)
			if c.opts.DefaultMode == DefaultApply && ps.has("default") {
				f = f.WithDefault(toPlain(ps.get("default")))
			}
			fields = append(fields, f)
		}
	}
	m, err := gofactory.NewModel(name, fields...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// uniqueName returns hint, suffixed when another model already uses it.
func (c *converter) uniqueName(hint string) string {
	name := hint
	for i := 2; c.names[name]; i++ {
		name = fmt.Sprintf("%s%d", hint, i)
	}
	c.names[name] = true
	return name
}

// resolveBranch follows a $ref (and nested allOf) for allOf merging.
func (c *converter) resolveBranch(s *node) *node {
	if ref := s.str("$ref"); ref != "" {
		def, ok := c.defs[ref]
		if !ok || c.inlining[ref] {
			c.diag.warnf("allOf: cannot resolve %s", ref)
			return newNode()
		}
		c.inlining[ref] = true
		defer delete(c.inlining, ref)
		s = def.schema
	}
	if s.has("allOf") {
		return mergeAllOf(s, c.resolveBranch)
	}
	return s
}

// typeOf maps a schema to a descriptor. hint names anonymous object models and
// at locates warnings.
func (c *converter) typeOf(s *node, hint, at string) (gofactory.Type, error) {
	if s == nil {
		return gofactory.Scalar(gofactory.KindAny), nil
	}
	if ref := s.str("$ref"); ref != "" {
		return c.refType(ref, at)
	}
	t, err := c.bareType(s, hint, at)
	if err != nil {
		return nil, err
	}
	if s.boolean("nullable") {
		if _, ok := t.(*gofactory.OptionalType); !ok {
			t = gofactory.Optional(t)
		}
	}
	return t, nil
}

func (c *converter) bareType(s *node, hint, at string) (gofactory.Type, error) {
	switch {
	case s.has("const"):
		return gofactory.Enum(toPlain(s.get("const"))), nil
	case s.has("enum"):
		return enumType(s.list("enum")), nil
	case s.has("allOf"):
		return c.typeOf(mergeAllOf(s, c.resolveBranch), hint, at)
	case s.has("oneOf"):
		return c.unionType(s.list("oneOf"), hint, at)
	case s.has("anyOf"):
		return c.unionType(s.list("anyOf"), hint, at)
	case s.str("x-gofactory-kind") != "":
		return gofactory.Scalar(gofactory.Kind(s.str("x-gofactory-kind"))), nil
	case s.boolean("x-kubernetes-int-or-string"):
		return gofactory.Union(gofactory.Scalar(gofactory.KindInt), gofactory.Scalar(gofactory.KindString)), nil
	}

	var types []string
	nullable := false
	switch tv := s.get("type").(type) {
	case string:
		types = []string{tv}
	case []any:
		for _, x := range tv {
			if xs, ok := x.(string); ok {
				if xs == "null" {
					nullable = true
					continue
				}
				types = append(types, xs)
			}
		}
	}
	if len(types) == 0 {
		switch {
		case s.has("properties") || s.has("additionalProperties"):
			types = []string{"object"}
		case s.has("items") || s.has("prefixItems"):
			types = []string{"array"}
		}
	}
	var t gofactory.Type
	switch len(types) {
	case 0:
		if nullable {
			t = gofactory.Enum(nil)
			break
		}
		t = gofactory.Scalar(gofactory.KindAny)
	case 1:
		var err error
		if t, err = c.typeFor(types[0], s, hint, at); err != nil {
			return nil, err
		}
	default:
		members := make([]gofactory.Type, 0, len(types))
		for _, ty := range types {
			mt, err := c.typeFor(ty, s, hint, at)
			if err != nil {
				return nil, err
			}
			members = append(members, mt)
		}
		t = gofactory.Union(members...)
	}
	if nullable && len(types) > 0 {
		t = gofactory.Optional(t)
	}
	return t, nil
}

func (c *converter) typeFor(ty string, s *node, hint, at string) (gofactory.Type, error) {
	switch ty {
	case "string":
		return stringType(s, at, c.diag), nil
	case "integer":
		k := gofactory.KindInt
		if s.str("format") == "int64" {
			k = gofactory.KindInt64
		}
		return bounded(gofactory.Scalar(k), s, true), nil
	case "number":
		return bounded(gofactory.Scalar(gofactory.KindFloat), s, false), nil
	case "boolean":
		return gofactory.Scalar(gofactory.KindBool), nil
	case "null":
		return gofactory.Enum(nil), nil
	case "array":
		return c.arrayType(s, hint, at)
	case "object":
		return c.objectType(s, hint, at)
	}
	c.diag.warnf("%s: unknown type %q; generating any", at, ty)
	return gofactory.Scalar(gofactory.KindAny), nil
}

// refType resolves a local $ref. Object definitions become models named after the
// definition; a reference to a model still under construction becomes a Ref.
// Other definitions are inlined, with a cycle among them degrading to Any.
func (c *converter) refType(ref, at string) (gofactory.Type, error) {
	if ref == "#" {
		return gofactory.Ref(c.rootName), nil
	}
	def, ok := c.defs[ref]
	if !ok {
		if c.opts.Refs == RefStrict {
			return nil, &gofactory.DescriptorError{Reason: fmt.Sprintf("%s: unresolvable $ref %q", at, ref)}
		}
		c.diag.warnf("%s: unresolvable $ref %q; generating any", at, ref)
		return gofactory.Scalar(gofactory.KindAny), nil
	}
	s := def.schema
	if s.has("allOf") {
		s = mergeAllOf(s, c.resolveBranch)
	}
	if !isObjectSchema(s) {
		if c.inlining[ref] {
			c.diag.warnf("%s: cyclic non-object $ref %q; generating any", at, ref)
			return gofactory.Scalar(gofactory.KindAny), nil
		}
		c.inlining[ref] = true
		defer delete(c.inlining, ref)
		return c.typeOf(s, def.name, at)
	}
	name := def.name
	if def.name == c.rootDef {
		name = c.rootName
	}
	if c.building[name] {
		return gofactory.Ref(name), nil
	}
	if m, ok := c.models[name]; ok {
		return gofactory.Nested(m), nil
	}
	c.building[name] = true
	defer delete(c.building, name)
	m, err := c.model(name, s)
	if err != nil {
		return nil, err
	}
	c.models[name] = m
	c.order = append(c.order, name)
	return gofactory.Nested(m), nil
}

// unionType maps oneOf/anyOf. A null branch makes the result Optional.
func (c *converter) unionType(branches []any, hint, at string) (gofactory.Type, error) {
	var members []gofactory.Type
	nullable := false
	for i, b := range branches {
		bn, ok := b.(*node)
		if !ok {
			continue
		}
		if bn.get("type") == "null" {
			nullable = true
			continue
		}
		t, err := c.typeOf(bn, fmt.Sprintf("%sOption%d", hint, i+1), fmt.Sprintf("%s[%d]", at, i))
		if err != nil {
			return nil, err
		}
		members = append(members, t)
	}
	var t gofactory.Type
	switch len(members) {
	case 0:
		return gofactory.Enum(nil), nil
	case 1:
		t = members[0]
	default:
		t = gofactory.Union(members...)
	}
	if nullable {
		t = gofactory.Optional(t)
	}
	return t, nil
}

func (c *converter) arrayType(s *node, hint, at string) (gofactory.Type, error) {
	// prefixItems (2020-12) and array-valued items (draft 4-7) describe tuples
	prefix := s.list("prefixItems")
	if prefix == nil {
		prefix = s.list("items")
	}
	if len(prefix) > 0 {
		elems := make([]gofactory.Type, 0, len(prefix))
		for i, p := range prefix {
			pn, _ := p.(*node)
			t, err := c.typeOf(pn, fmt.Sprintf("%sItem%d", hint, i+1), fmt.Sprintf("%s[%d]", at, i))
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
		}
		return gofactory.Tuple(elems...), nil
	}
	elem, err := c.typeOf(s.obj("items"), hint+"Item", at+"[]")
	if err != nil {
		return nil, err
	}
	lo, hi, sized := sizeOf(s, "minItems", "maxItems")
	unique := s.boolean("uniqueItems") || s.str("x-kubernetes-list-type") == "set"
	if unique && !setElem(elem) {
		c.diag.warnf("%s: uniqueItems on %s elements is not enforced", at, elem)
		unique = false
	}
	if unique {
		set := gofactory.Set(elem)
		if sized {
			set = set.Size(lo, hi)
		}
		return set, nil
	}
	list := gofactory.List(elem)
	if sized {
		list = list.Size(lo, hi)
	}
	return list, nil
}

func (c *converter) objectType(s *node, hint, at string) (gofactory.Type, error) {
	if isObjectSchema(s) {
		name := c.uniqueName(firstNonEmpty(pascal(s.str("title")), hint))
		m, err := c.model(name, s)
		if err != nil {
			return nil, err
		}
		return gofactory.Nested(m), nil
	}
	if s.boolean("x-kubernetes-embedded-resource") {
		return c.embeddedResource(hint)
	}
	var val gofactory.Type = gofactory.Scalar(gofactory.KindAny)
	switch ap := s.get("additionalProperties").(type) {
	case *node:
		var err error
		if val, err = c.typeOf(ap, hint+"Value", at+"{}"); err != nil {
			return nil, err
		}
	case bool:
		if !ap {
			m, err := gofactory.NewModel(c.uniqueName(hint))
			if err != nil {
				return nil, err
			}
			return gofactory.Nested(m), nil
		}
	default:
		if pp := s.obj("patternProperties"); pp != nil && len(pp.keys) > 0 {
			c.diag.warnf("%s: patternProperties keys are not generated to match their patterns", at)
			var err error
			if val, err = c.typeOf(pp.obj(pp.keys[0]), hint+"Value", at+"{}"); err != nil {
				return nil, err
			}
		}
	}
	mt := gofactory.Map(gofactory.Scalar(gofactory.KindString), val)
	if lo, hi, ok := sizeOf(s, "minProperties", "maxProperties"); ok {
		mt = mt.Size(lo, hi)
	}
	return mt, nil
}

// embeddedResource models an x-kubernetes-embedded-resource without declared
// properties: apiVersion, kind and metadata are always present.
func (c *converter) embeddedResource(hint string) (gofactory.Type, error) {
	str := gofactory.Scalar(gofactory.KindString)
	m, err := gofactory.NewModel(c.uniqueName(hint),
		gofactory.NewField("apiVersion", str),
		gofactory.NewField("kind", str),
		gofactory.NewField("metadata", gofactory.Map(str, gofactory.Scalar(gofactory.KindAny))),
	)
	if err != nil {
		return nil, err
	}
	return gofactory.Nested(m), nil
}

func stringType(s *node, at string, d *simpleDiag) gofactory.Type {
	var k gofactory.Kind
	switch s.str("format") {
	case "date-time":
		k = gofactory.KindTime
	case "date":
		k = gofactory.KindDate
	case "duration":
		k = gofactory.KindDuration
	case "email", "idn-email":
		k = gofactory.KindEmail
	case "uri", "url", "iri":
		k = gofactory.KindURL
	case "uuid":
		k = gofactory.KindUUID
	case "ipv4", "ipv6", "ip":
		k = gofactory.KindIP
	case "byte", "binary":
		k = gofactory.KindBytes
	case "decimal":
		k = gofactory.KindDecimal
	default:
		k = gofactory.KindString
	}
	st := gofactory.Scalar(k)
	if k != gofactory.KindString && k != gofactory.KindBytes {
		return st
	}
	if s.has("pattern") {
		d.warnf("%s: pattern %q is not enforced", at, s.str("pattern"))
	}
	if lo, hi, ok := sizeOf(s, "minLength", "maxLength"); ok {
		st = st.Length(lo, hi)
	}
	return st
}

// bounded applies minimum/maximum and their exclusive variants. Exclusive
// bounds tighten integers by one; floats are generated in [min, max) already.
func bounded(st *gofactory.ScalarType, s *node, integer bool) *gofactory.ScalarType {
	step := 0.0
	if integer {
		step = 1
	}
	if v, ok := s.num("minimum"); ok {
		if s.boolean("exclusiveMinimum") {
			v += step
		}
		st = st.AtLeast(v)
	}
	if v, ok := s.num("exclusiveMinimum"); ok {
		st = st.AtLeast(v + step)
	}
	if v, ok := s.num("maximum"); ok {
		if s.boolean("exclusiveMaximum") {
			v -= step
		}
		st = st.AtMost(v)
	}
	if v, ok := s.num("exclusiveMaximum"); ok {
		st = st.AtMost(v - step)
	}
	if integer {
		c := st.Constraints()
		if c.Min != nil && c.Max != nil && *c.Max < *c.Min {
			st = st.Between(math.Ceil(*c.Min), math.Ceil(*c.Min))
		}
	}
	return st
}

// sizeOf reads a min/max keyword pair. A missing max is min+defaultMaxItems; a
// missing min is 0 capped by max.
func sizeOf(s *node, minKey, maxKey string) (int, int, bool) {
	lo, hasLo := s.num(minKey)
	hi, hasHi := s.num(maxKey)
	if !hasLo && !hasHi {
		return 0, 0, false
	}
	if !hasHi {
		hi = lo + defaultMaxItems
	}
	if !hasLo {
		lo = math.Min(1, hi)
	}
	if hi < lo {
		hi = lo
	}
	return int(lo), int(hi), true
}

func enumType(vals []any) gofactory.Type {
	members := make([]any, 0, len(vals))
	nullable := false
	for _, v := range vals {
		if v == nil {
			nullable = true
			continue
		}
		members = append(members, toPlain(v))
	}
	if len(members) == 0 {
		return gofactory.Enum(nil)
	}
	var t gofactory.Type = gofactory.Enum(members...)
	if nullable {
		t = gofactory.Optional(t)
	}
	return t
}

// setElem reports whether elements of t can be deduplicated as a Set.
func setElem(t gofactory.Type) bool {
	switch tt := t.(type) {
	case *gofactory.EnumType:
		return true
	case *gofactory.ScalarType:
		return tt.Kind() != gofactory.KindBytes && tt.Kind() != gofactory.KindIP
	}
	return false
}

// pascal turns a property name such as "max_replicas" or "node-selector" into
// "MaxReplicas" / "NodeSelector" for model naming.
func pascal(s string) string {
	var b strings.Builder
	up := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			up = true
			continue
		}
		if up {
			r = unicode.ToUpper(r)
			up = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
