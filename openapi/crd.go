package openapi

import (
	"errors"

	"github.com/reoring/gofactory"
)

const kindCRD = "CustomResourceDefinition"

// typeMeta is the apiVersion/kind pair of the resources a CRD defines.
type typeMeta struct {
	apiVersion string
	kind       string
}

// unwrapCRD returns the openAPIV3Schema of a CustomResourceDefinition, preferring
// the first served version, then the first version with a schema, then the
// legacy spec.validation location.
func unwrapCRD(root *node) (*node, *typeMeta) {
	spec := root.obj("spec")
	if spec == nil {
		return nil, nil
	}
	tm := &typeMeta{kind: spec.obj("names").str("kind")}
	group := spec.str("group")
	apiVersion := func(version string) string {
		if group == "" {
			return version
		}
		return group + "/" + version
	}
	var first *node
	var firstVersion string
	for _, v := range spec.list("versions") {
		vm, _ := v.(*node)
		if vm == nil {
			continue
		}
		served := true
		if sv, ok := vm.get("served").(bool); ok {
			served = sv
		}
		oas := vm.obj("schema").obj("openAPIV3Schema")
		if oas == nil {
			continue
		}
		if served {
			tm.apiVersion = apiVersion(vm.str("name"))
			return oas, tm
		}
		if first == nil {
			first, firstVersion = oas, vm.str("name")
		}
	}
	if first != nil {
		tm.apiVersion = apiVersion(firstVersion)
		return first, tm
	}
	if oas := spec.obj("validation").obj("openAPIV3Schema"); oas != nil {
		tm.apiVersion = apiVersion(spec.str("version"))
		return oas, tm
	}
	return nil, nil
}

// ImportYAMLForCRDKind scans a multi-document YAML bundle and imports the CRD
// whose spec.names.kind equals kind.
func ImportYAMLForCRDKind(data []byte, kind string, opts Options) (*Result, Diag, error) {
	return importFromBundle(data, opts, func(n *node) bool {
		return n.obj("spec").obj("names").str("kind") == kind
	}, "openapi: CRD kind not found in YAML bundle")
}

// ImportYAMLForCRDName scans a multi-document YAML bundle and imports the CRD
// whose metadata.name equals name (e.g. "widgets.example.com").
func ImportYAMLForCRDName(data []byte, name string, opts Options) (*Result, Diag, error) {
	return importFromBundle(data, opts, func(n *node) bool {
		return n.obj("metadata").str("name") == name
	}, "openapi: CRD name not found in YAML bundle")
}

func importFromBundle(data []byte, opts Options, match func(*node) bool, notFound string) (*Result, Diag, error) {
	docs, err := decodeDocuments(data)
	if err != nil {
		return nil, &simpleDiag{}, err
	}
	for _, doc := range docs {
		n, ok := doc.(*node)
		if !ok || n.str("kind") != kindCRD {
			continue
		}
		if match(n) {
			return Import(n, opts)
		}
	}
	return nil, &simpleDiag{}, errors.New(notFound)
}

// CRDKinds lists spec.names.kind of every CRD in a YAML bundle, in document order.
func CRDKinds(data []byte) ([]string, error) {
	docs, err := decodeDocuments(data)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, doc := range docs {
		if n, ok := doc.(*node); ok && n.str("kind") == kindCRD {
			if k := n.obj("spec").obj("names").str("kind"); k != "" {
				out = append(out, k)
			}
		}
	}
	return out, nil
}

// pinTypeMeta fixes apiVersion and kind on the root model when the schema
// declares them.
func pinTypeMeta(m *gofactory.Model, tm *typeMeta) (*gofactory.Model, error) {
	if tm == nil {
		return m, nil
	}
	fields := m.Fields()
	for i, f := range fields {
		switch {
		case f.Name == "apiVersion" && tm.apiVersion != "":
			fields[i] = f.With(gofactory.Fixed(tm.apiVersion))
		case f.Name == "kind" && tm.kind != "":
			fields[i] = f.With(gofactory.Fixed(tm.kind))
		}
	}
	return gofactory.NewModel(m.Name(), fields...)
}
