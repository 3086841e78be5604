package gofactory

import "fmt"

// Kind names a scalar type. The built-in kinds below have generators registered by
// default; any other Kind is opaque until a Generator is registered for it.
type Kind string

const (
	KindString   Kind = "string"
	KindInt      Kind = "int"
	KindInt64    Kind = "int64"
	KindUint     Kind = "uint"
	KindFloat    Kind = "float"
	KindBool     Kind = "bool"
	KindBytes    Kind = "bytes"
	KindTime     Kind = "time"
	KindDate     Kind = "date"
	KindDuration Kind = "duration"
	KindUUID     Kind = "uuid"
	KindEmail    Kind = "email"
	KindURL      Kind = "url"
	KindIP       Kind = "ip"
	KindDecimal  Kind = "decimal" // json.Number
	KindAny      Kind = "any"
)

// textKinds produce string values; maps keyed by them are emitted as map[string]any.
var textKinds = map[Kind]bool{
	KindString: true,
	KindEmail:  true,
	KindURL:    true,
}

// UnknownPolicy controls how build-time overrides for undeclared fields are handled.
type UnknownPolicy int

const (
	OverridesStrict UnknownPolicy = iota // Reject unknown override keys with an error.
	OverridesIgnore                      // Drop unknown override keys.
)

// Visibility selects which sibling values a PostGenerated function can observe.
type Visibility int

const (
	// VisibilityDeclared exposes only fields declared before the post-generated field.
	VisibilityDeclared Visibility = iota
	// VisibilityResolved exposes every value resolved so far, including immediate
	// fields declared after the post-generated field.
	VisibilityResolved
)

// Config bundles the factory knobs. The zero value of a field means "use the default";
// see DefaultConfig.
type Config struct {
	Seed                *int64
	MinItems            int
	MaxItems            int
	OptionalProbability float64
	MaxDepth            int
	KeyRetries          int
	UnknownOverrides    UnknownPolicy
	UseDefaults         bool
	PostGenVisibility   Visibility
}

// Deterministic defaults.
const (
	DefaultMinItems            = 1
	DefaultMaxItems            = 5
	DefaultOptionalProbability = 0.5
	DefaultMaxDepth            = 3
	DefaultKeyRetries          = 16
)

// DefaultConfig returns the configuration used when no option is supplied.
func DefaultConfig() Config {
	return Config{
		MinItems:            DefaultMinItems,
		MaxItems:            DefaultMaxItems,
		OptionalProbability: DefaultOptionalProbability,
		MaxDepth:            DefaultMaxDepth,
		KeyRetries:          DefaultKeyRetries,
		UnknownOverrides:    OverridesStrict,
		PostGenVisibility:   VisibilityDeclared,
	}
}

// Validate reports values outside their valid range as a *ConfigError.
func (c Config) Validate() error {
	switch {
	case c.MinItems < 0 || c.MaxItems < c.MinItems:
		return &ConfigError{Reason: fmt.Sprintf("collection size range [%d, %d]", c.MinItems, c.MaxItems)}
	case !(c.OptionalProbability > 0 && c.OptionalProbability < 1):
		return &ConfigError{Reason: fmt.Sprintf("optional probability %v outside (0, 1)", c.OptionalProbability)}
	case c.MaxDepth < 1:
		return &ConfigError{Reason: fmt.Sprintf("max depth %d < 1", c.MaxDepth)}
	case c.KeyRetries < 0:
		return &ConfigError{Reason: fmt.Sprintf("key retries %d < 0", c.KeyRetries)}
	case c.UnknownOverrides != OverridesStrict && c.UnknownOverrides != OverridesIgnore:
		return &ConfigError{Reason: fmt.Sprintf("unknown override policy %d", c.UnknownOverrides)}
	case c.PostGenVisibility != VisibilityDeclared && c.PostGenVisibility != VisibilityResolved:
		return &ConfigError{Reason: fmt.Sprintf("unknown post-generation visibility %d", c.PostGenVisibility)}
	}
	return nil
}
