// Package openapi imports JSON Schema, OpenAPI v3 component schemas and
// Kubernetes CustomResourceDefinitions as gofactory models, so fixtures can be
// synthesized straight from an API definition.
//
// Object schemas become models (properties in document order, those not listed
// in required wrapped in Optional), local $refs to object definitions become
// named models that may be recursive, and string formats, numeric bounds,
// enum/const, oneOf/anyOf, allOf, uniqueItems, prefixItems and the
// x-kubernetes-* extensions map onto the matching descriptors. Keywords that
// cannot be honored during generation (pattern, patternProperties) are reported
// through Diag.
package openapi
