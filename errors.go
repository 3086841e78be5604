package gofactory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/gofactory/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUnresolvableType     = "unresolvable_type"
	CodeMissingBuildArgument = "missing_build_argument"
	CodeDirectiveInvocation  = "directive_invocation"
	CodeRecursionLimit       = "recursion_limit"
	CodeArgumentCollision    = "argument_collision"
	CodeUnknownOverride      = "unknown_override"
	CodeKeyExhausted         = "key_exhausted"
	CodeInvalidDescriptor    = "invalid_descriptor"
	CodeInvalidConfig        = "invalid_config"
)

// ErrParameter is matched (errors.Is) by every error caused by a schema, override or
// configuration mistake rather than by a directive function.
var ErrParameter = errors.New("gofactory: parameter error")

// Issue is the structured view of a build failure.
type Issue struct {
	Path    string // JSON Pointer into the instance being built (for example: /pets/2/name).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: field name, type description, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"field":"name","limit":3})
	// for i18n and observability.
	Params map[string]any
}

type issuer interface {
	Issue() Issue
}

// AsIssue extracts the Issue of the first gofactory error in err's chain.
func AsIssue(err error) (Issue, bool) {
	if err == nil {
		return Issue{}, false
	}
	var is issuer
	if errors.As(err, &is) {
		return is.Issue(), true
	}
	return Issue{}, false
}

func formatIssue(code, path, detail string) string {
	b := &strings.Builder{}
	b.WriteString("gofactory: ")
	b.WriteString(i18n.T(code, nil))
	if path != "" {
		fmt.Fprintf(b, " at %s", path)
	}
	if detail != "" {
		b.WriteString(": ")
		b.WriteString(detail)
	}
	return b.String()
}

// UnresolvableTypeError reports a descriptor for which no strategy or generator exists.
type UnresolvableTypeError struct {
	Path  string
	Field string
	Type  string
}

func (e *UnresolvableTypeError) Error() string {
	return formatIssue(CodeUnresolvableType, e.Path, fmt.Sprintf("field %q has unsupported type %s", e.Field, e.Type))
}

func (e *UnresolvableTypeError) Is(target error) bool { return target == ErrParameter }

func (e *UnresolvableTypeError) Issue() Issue {
	return Issue{Path: e.Path, Code: CodeUnresolvableType, Message: i18n.T(CodeUnresolvableType, nil), Hint: e.Type,
		Params: map[string]any{"field": e.Field, "type": e.Type}}
}

// MissingBuildArgumentError reports a Require()d field without a build-time override.
type MissingBuildArgumentError struct {
	Path  string
	Field string
}

func (e *MissingBuildArgumentError) Error() string {
	return formatIssue(CodeMissingBuildArgument, e.Path, fmt.Sprintf("field %q must be supplied at build time", e.Field))
}

func (e *MissingBuildArgumentError) Issue() Issue {
	return Issue{Path: e.Path, Code: CodeMissingBuildArgument, Message: i18n.T(CodeMissingBuildArgument, nil), Hint: e.Field,
		Params: map[string]any{"field": e.Field}}
}

// DirectiveInvocationError wraps an error returned by a Use or PostGenerated function.
type DirectiveInvocationError struct {
	Path      string
	Field     string
	Directive DirectiveKind
	Cause     error
}

func (e *DirectiveInvocationError) Error() string {
	return formatIssue(CodeDirectiveInvocation, e.Path, fmt.Sprintf("%s for field %q: %v", e.Directive, e.Field, e.Cause))
}

func (e *DirectiveInvocationError) Unwrap() error { return e.Cause }

func (e *DirectiveInvocationError) Issue() Issue {
	return Issue{Path: e.Path, Code: CodeDirectiveInvocation, Message: i18n.T(CodeDirectiveInvocation, nil), Hint: e.Directive.String(),
		Cause: e.Cause, Params: map[string]any{"field": e.Field}}
}

// RecursionLimitError reports a model that would re-enter itself beyond the configured depth
// with no optional or collection indirection left to stop at.
type RecursionLimitError struct {
	Path  string
	Model string
	Limit int
}

func (e *RecursionLimitError) Error() string {
	return formatIssue(CodeRecursionLimit, e.Path, fmt.Sprintf("model %s nested more than %d times", e.Model, e.Limit))
}

func (e *RecursionLimitError) Issue() Issue {
	return Issue{Path: e.Path, Code: CodeRecursionLimit, Message: i18n.T(CodeRecursionLimit, nil), Hint: e.Model,
		Params: map[string]any{"model": e.Model, "limit": e.Limit}}
}

// ArgumentCollisionError reports build-time kwargs that repeat a key bound at declaration.
type ArgumentCollisionError struct {
	Path  string
	Field string
	Keys  []string
}

func (e *ArgumentCollisionError) Error() string {
	return formatIssue(CodeArgumentCollision, e.Path, fmt.Sprintf("field %q: %s already bound", e.Field, strings.Join(e.Keys, ", ")))
}

func (e *ArgumentCollisionError) Is(target error) bool { return target == ErrParameter }

func (e *ArgumentCollisionError) Issue() Issue {
	return Issue{Path: e.Path, Code: CodeArgumentCollision, Message: i18n.T(CodeArgumentCollision, nil), Hint: strings.Join(e.Keys, ","),
		Params: map[string]any{"field": e.Field, "keys": e.Keys}}
}

// UnknownOverrideError reports override keys that name no declared field.
type UnknownOverrideError struct {
	Path string
	Keys []string
}

func (e *UnknownOverrideError) Error() string {
	return formatIssue(CodeUnknownOverride, e.Path, strings.Join(e.Keys, ", "))
}

func (e *UnknownOverrideError) Is(target error) bool { return target == ErrParameter }

func (e *UnknownOverrideError) Issue() Issue {
	return Issue{Path: e.Path, Code: CodeUnknownOverride, Message: i18n.T(CodeUnknownOverride, nil), Hint: strings.Join(e.Keys, ","),
		Params: map[string]any{"keys": e.Keys}}
}

// KeyExhaustedError reports a set or mapping that could not reach its minimum size with
// unique entries within the retry bound.
type KeyExhaustedError struct {
	Path string
	Type string
	Got  int
	Min  int
}

func (e *KeyExhaustedError) Error() string {
	return formatIssue(CodeKeyExhausted, e.Path, fmt.Sprintf("%s: %d unique entries, need %d", e.Type, e.Got, e.Min))
}

func (e *KeyExhaustedError) Is(target error) bool { return target == ErrParameter }

func (e *KeyExhaustedError) Issue() Issue {
	return Issue{Path: e.Path, Code: CodeKeyExhausted, Message: i18n.T(CodeKeyExhausted, nil), Hint: e.Type,
		Params: map[string]any{"got": e.Got, "min": e.Min}}
}

// DescriptorError reports a malformed Model, Type or scalar constraint.
type DescriptorError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *DescriptorError) Error() string {
	return formatIssue(CodeInvalidDescriptor, e.Path, e.Reason)
}

func (e *DescriptorError) Unwrap() error { return e.Cause }

func (e *DescriptorError) Is(target error) bool { return target == ErrParameter }

func (e *DescriptorError) Issue() Issue {
	return Issue{Path: e.Path, Code: CodeInvalidDescriptor, Message: i18n.T(CodeInvalidDescriptor, nil), Hint: e.Reason, Cause: e.Cause}
}

// ConfigError reports factory configuration values outside their valid range.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return formatIssue(CodeInvalidConfig, "", e.Reason) }

func (e *ConfigError) Is(target error) bool { return target == ErrParameter }

func (e *ConfigError) Issue() Issue {
	return Issue{Path: "/", Code: CodeInvalidConfig, Message: i18n.T(CodeInvalidConfig, nil), Hint: e.Reason}
}
