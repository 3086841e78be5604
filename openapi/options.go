package openapi

import "fmt"

// DefaultMode controls how schema defaults are carried into the model.
type DefaultMode int

const (
	// DefaultIgnore drops schema defaults.
	DefaultIgnore DefaultMode = iota
	// DefaultApply attaches them as field defaults, used when the factory runs
	// with gofactory.WithUseDefaults(true).
	DefaultApply
)

// RefMode controls how an unresolvable $ref is treated.
type RefMode int

const (
	// RefLenient imports the referencing property as Any and records a warning.
	RefLenient RefMode = iota
	// RefStrict fails the import.
	RefStrict
)

// Options controls import behavior.
type Options struct {
	// RootName names the root model. Defaults to the CRD kind, the schema title,
	// or "Root".
	RootName string
	// Schema selects a named schema from $defs, definitions or
	// components.schemas as the root instead of the document itself.
	Schema      string
	DefaultMode DefaultMode
	Refs        RefMode
	// FixTypeMeta pins the apiVersion and kind fields of an imported CRD to the
	// group/version and kind of the selected version.
	FixTypeMeta bool
}

// Diag carries non-fatal warnings produced during import.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }
