package gofactory

// Values is a read-only view of the fields resolved so far in one build, in
// resolution order.
type Values struct {
	keys []string
	m    map[string]any
}

func (v Values) Get(name string) (any, bool) {
	x, ok := v.m[name]
	return x, ok
}

func (v Values) Has(name string) bool {
	_, ok := v.m[name]
	return ok
}

// Keys returns field names in resolution order.
func (v Values) Keys() []string { return append([]string(nil), v.keys...) }

func (v Values) Len() int { return len(v.keys) }

// Map copies the view into a plain map.
func (v Values) Map() map[string]any {
	out := make(map[string]any, len(v.keys))
	for _, k := range v.keys {
		out[k] = v.m[k]
	}
	return out
}

// buildContext accumulates one model instance. decl maps a field name to its
// declaration index so views can be restricted to earlier-declared fields.
type buildContext struct {
	keys []string
	m    map[string]any
	decl map[string]int
}

func newBuildContext(m *Model) *buildContext {
	return &buildContext{m: make(map[string]any, len(m.fields)), decl: m.index}
}

func (b *buildContext) set(name string, v any) {
	if _, ok := b.m[name]; !ok {
		b.keys = append(b.keys, name)
	}
	b.m[name] = v
}

// view exposes the context to the post-generated field declared at index pos.
func (b *buildContext) view(pos int, vis Visibility) Values {
	keys := make([]string, 0, len(b.keys))
	m := make(map[string]any, len(b.keys))
	for _, k := range b.keys {
		if vis == VisibilityResolved || b.decl[k] < pos {
			keys = append(keys, k)
			m[k] = b.m[k]
		}
	}
	return Values{keys: keys, m: m}
}

// result returns the instance with every model field present.
func (b *buildContext) result() map[string]any {
	out := make(map[string]any, len(b.m))
	for k, v := range b.m {
		out[k] = v
	}
	return out
}
