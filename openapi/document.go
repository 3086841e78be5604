package openapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// node is a schema object with its key order preserved. Values are *node, []any,
// or YAML scalars (string, int, float64, bool, nil).
type node struct {
	keys []string
	vals map[string]any
}

func newNode() *node { return &node{vals: map[string]any{}} }

func (n *node) set(k string, v any) {
	if _, ok := n.vals[k]; !ok {
		n.keys = append(n.keys, k)
	}
	n.vals[k] = v
}

func (n *node) has(k string) bool {
	if n == nil {
		return false
	}
	_, ok := n.vals[k]
	return ok
}

func (n *node) get(k string) any {
	if n == nil {
		return nil
	}
	return n.vals[k]
}

func (n *node) str(k string) string {
	s, _ := n.get(k).(string)
	return s
}

func (n *node) obj(k string) *node {
	o, _ := n.get(k).(*node)
	return o
}

func (n *node) list(k string) []any {
	l, _ := n.get(k).([]any)
	return l
}

func (n *node) boolean(k string) bool {
	b, _ := n.get(k).(bool)
	return b
}

func (n *node) num(k string) (float64, bool) {
	switch v := n.get(k).(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// decodeDocuments reads every document of a YAML (or JSON) stream.
func decodeDocuments(data []byte) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []any
	for {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("openapi: invalid YAML/JSON: %w", err)
		}
		v, err := fromYAML(&doc)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, v)
		}
	}
	return out, nil
}

func fromYAML(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAML(n.Content[0])
	case yaml.MappingNode:
		out := newNode()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out.set(n.Content[i].Value, v)
		}
		return out, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("openapi: line %d: %w", n.Line, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("openapi: line %d: unsupported YAML node kind %d", n.Line, n.Kind)
}

// fromValue converts decoded Go values into nodes. Plain maps carry no order, so
// their keys are sorted for deterministic output.
func fromValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := newNode()
		for _, k := range keys {
			out.set(k, fromValue(t[k]))
		}
		return out
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			if ks, ok := k.(string); ok {
				m[ks] = vv
			}
		}
		return fromValue(m)
	case []any:
		items := make([]any, len(t))
		for i := range t {
			items[i] = fromValue(t[i])
		}
		return items
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		f, _ := t.Float64()
		return f
	default:
		return v
	}
}

// toPlain converts nodes back into map[string]any values (for enum members and
// defaults).
func toPlain(v any) any {
	switch t := v.(type) {
	case *node:
		out := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			out[k] = toPlain(t.vals[k])
		}
		return out
	case []any:
		items := make([]any, len(t))
		for i := range t {
			items[i] = toPlain(t[i])
		}
		return items
	default:
		return v
	}
}

// rootNode accepts the inputs Import supports and returns the first document.
func rootNode(doc any) (*node, error) {
	var v any
	switch t := doc.(type) {
	case nil:
		return nil, errors.New("openapi: nil schema")
	case []byte:
		docs, err := decodeDocuments(t)
		if err != nil {
			return nil, err
		}
		if len(docs) > 0 {
			v = docs[0]
		}
	case string:
		return rootNode([]byte(t))
	case *yaml.Node:
		var err error
		if v, err = fromYAML(t); err != nil {
			return nil, err
		}
	case *node:
		v = t
	case map[string]any, map[any]any:
		v = fromValue(t)
	default:
		// json.Marshaler style inputs (schema structs from other libraries)
		b, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("openapi: cannot marshal input: %w", err)
		}
		return rootNode(b)
	}
	n, ok := v.(*node)
	if !ok {
		return nil, errors.New("openapi: schema document is not an object")
	}
	return n, nil
}
