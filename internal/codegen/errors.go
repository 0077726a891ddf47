package codegen

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrConfig indicates an invalid configuration. Raised before any IR processing.
	ErrConfig = errors.New("configuration error")

	// ErrBrokenImport indicates a class name that no model resolves to.
	ErrBrokenImport = errors.New("broken import reference")

	// ErrAmbiguousImport indicates a class name claimed by more than one model.
	ErrAmbiguousImport = errors.New("ambiguous import")
)

// ConfigError reports an invalid configuration option.
type ConfigError struct {
	Option  string
	Value   any
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// ImportError reports a class name that cannot be turned into a single
// import path. Owner names the model or operation whose file would carry
// the dangling import.
type ImportError struct {
	OwnerKind string // "model" or "operation"
	Owner     string
	ClassName string
	// Ambiguous is set when ClassName resolves to more than one location;
	// Conflict then names the competing models.
	Ambiguous bool
	Conflict  string
}

func (e *ImportError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("ambiguous import: class %q for %s %q conflicts with %s", e.ClassName, e.OwnerKind, e.Owner, e.Conflict)
	}
	return fmt.Sprintf("broken import reference: %s %q imports unknown class %q", e.OwnerKind, e.Owner, e.ClassName)
}

// Is matches ErrAmbiguousImport or ErrBrokenImport depending on the flag.
func (e *ImportError) Is(target error) bool {
	if e.Ambiguous {
		return target == ErrAmbiguousImport
	}
	return target == ErrBrokenImport
}
