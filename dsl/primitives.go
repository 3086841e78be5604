package dsl

import "github.com/reoring/gofactory"

// String returns a random alphabetic string descriptor.
func String() *gofactory.ScalarType { return gofactory.Scalar(gofactory.KindString) }

// Int returns an int descriptor. Chain Between for bounds.
func Int() *gofactory.ScalarType { return gofactory.Scalar(gofactory.KindInt) }

func Int64() *gofactory.ScalarType    { return gofactory.Scalar(gofactory.KindInt64) }
func Uint() *gofactory.ScalarType     { return gofactory.Scalar(gofactory.KindUint) }
func Float() *gofactory.ScalarType    { return gofactory.Scalar(gofactory.KindFloat) }
func Bool() *gofactory.ScalarType     { return gofactory.Scalar(gofactory.KindBool) }
func Bytes() *gofactory.ScalarType    { return gofactory.Scalar(gofactory.KindBytes) }
func Time() *gofactory.ScalarType     { return gofactory.Scalar(gofactory.KindTime) }
func Date() *gofactory.ScalarType     { return gofactory.Scalar(gofactory.KindDate) }
func Duration() *gofactory.ScalarType { return gofactory.Scalar(gofactory.KindDuration) }
func UUID() *gofactory.ScalarType     { return gofactory.Scalar(gofactory.KindUUID) }
func Email() *gofactory.ScalarType    { return gofactory.Scalar(gofactory.KindEmail) }
func URL() *gofactory.ScalarType      { return gofactory.Scalar(gofactory.KindURL) }
func IP() *gofactory.ScalarType       { return gofactory.Scalar(gofactory.KindIP) }

// Decimal returns a json.Number descriptor with two fractional digits.
func Decimal() *gofactory.ScalarType { return gofactory.Scalar(gofactory.KindDecimal) }

// Any returns a descriptor for values of unspecified type.
func Any() *gofactory.ScalarType { return gofactory.Scalar(gofactory.KindAny) }

// Opaque returns a scalar of a custom kind. Building it fails with
// UnresolvableTypeError unless a generator is registered for kind
// (gofactory.WithGenerator) or the field is overridden.
func Opaque(kind string) *gofactory.ScalarType { return gofactory.Scalar(gofactory.Kind(kind)) }
