package openapi

import "strings"

// definition is a named schema reachable through a local $ref.
type definition struct {
	name   string
	schema *node
}

// defPrefixes are the local locations a $ref may point into.
var defPrefixes = []struct {
	pointer string
	path    []string
}{
	{"#/$defs/", []string{"$defs"}},
	{"#/definitions/", []string{"definitions"}},
	{"#/components/schemas/", []string{"components", "schemas"}},
}

// extractDefs indexes every named schema of doc by its $ref string.
func extractDefs(doc *node) map[string]definition {
	out := map[string]definition{}
	for _, p := range defPrefixes {
		n := doc
		for _, seg := range p.path {
			n = n.obj(seg)
		}
		if n == nil {
			continue
		}
		for _, k := range n.keys {
			if s, ok := n.vals[k].(*node); ok {
				out[p.pointer+escapePointer(k)] = definition{name: k, schema: s}
			}
		}
	}
	return out
}

// lookupDef finds a definition by bare name, checking $defs, definitions and
// components.schemas in that order.
func lookupDef(defs map[string]definition, name string) (definition, bool) {
	for _, p := range defPrefixes {
		if d, ok := defs[p.pointer+escapePointer(name)]; ok {
			return d, true
		}
	}
	return definition{}, false
}

func escapePointer(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}

// isObjectSchema reports whether s describes an object with declared properties.
// Such schemas become models; everything else is inlined where referenced.
func isObjectSchema(s *node) bool {
	if s == nil {
		return false
	}
	props := s.obj("properties")
	return props != nil && len(props.keys) > 0
}

// mergeAllOf folds allOf branches into a single schema. Properties and required
// lists are combined; for other keywords the later branch wins.
func mergeAllOf(s *node, resolve func(*node) *node) *node {
	out := newNode()
	props := newNode()
	var required []any
	seenReq := map[string]bool{}
	add := func(src *node) {
		for _, k := range src.keys {
			switch k {
			case "allOf":
				continue
			case "properties":
				if p, ok := src.vals[k].(*node); ok {
					for _, pk := range p.keys {
						props.set(pk, p.vals[pk])
					}
				}
			case "required":
				for _, r := range src.list(k) {
					if rs, ok := r.(string); ok && !seenReq[rs] {
						seenReq[rs] = true
						required = append(required, rs)
					}
				}
			default:
				out.set(k, src.vals[k])
			}
		}
	}
	for _, b := range s.list("allOf") {
		if bn, ok := b.(*node); ok {
			add(resolve(bn))
		}
	}
	add(s)
	if len(props.keys) > 0 {
		out.set("properties", props)
		if !out.has("type") {
			out.set("type", "object")
		}
	}
	if len(required) > 0 {
		out.set("required", required)
	}
	return out
}
