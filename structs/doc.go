// Package structs derives gofactory models from Go struct types and builds typed
// values.
//
// Field keys follow ResolveStructKey (factory:"name=..." > json tag > field name).
// Field types map as follows: pointers become Optional, slices List, arrays fixed
// Tuples, map[K]struct{} Set, other maps Map, nested structs nested models (Ref for
// recursive types), time.Time/time.Duration/uuid.UUID/net.IP/json.Number their
// scalar kinds. Types with no mapping (structs without exported fields, chans,
// funcs) become opaque scalars named after the Go type; building them fails with
// gofactory.UnresolvableTypeError unless a generator is registered or the field is
// overridden.
//
// Tag options:
//
//	`factory:"min=1,max=9"`         numeric bounds
//	`factory:"minlen=2,maxlen=8"`   string/bytes length
//	`factory:"size=1:3"`            collection size
//	`factory:"enum=a|b|c"`          literal choices
//	`factory:"kind=email"`          scalar kind override
//	`factory:"optional"`            may be absent (nil)
//	`factory:"required"`            must be supplied at build time
//	`factory:"ignore"`              always the empty value
//
// Example
//
//	type User struct {
//	    ID    uuid.UUID `json:"id"`
//	    Email string    `json:"email" factory:"kind=email"`
//	    Age   int       `json:"age" factory:"min=18,max=99"`
//	}
//	f := structs.MustNew[User](structs.WithFactoryOptions(gofactory.WithSeed(1)))
//	u, err := f.Build(ctx)
package structs
