package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // bytes to prototype tree
	PhaseEncode   Phase = "encode"   // prototype tree to bytes
	PhaseValidate Phase = "validate" // consistency checks on a decoded tree
	PhaseLoad     Phase = "load"     // reading chunk files
	PhaseExport   Phase = "export"   // JSON/YAML/CBOR rendering
)

// Kind categorizes the error
type Kind string

const (
	KindTruncatedInput      Kind = "truncated_input"
	KindInvalidText         Kind = "invalid_text"
	KindMalformedHeader     Kind = "malformed_header"
	KindUnsupportedPlatform Kind = "unsupported_platform"
	KindUnknownConstantTag  Kind = "unknown_constant_tag"
	KindInvalidData         Kind = "invalid_data"
	KindInconsistent        Kind = "inconsistent"
	KindInvalidInput        Kind = "invalid_input"
)

// Kind sentinels for errors.Is. They carry no phase, so they match an
// error of the same kind raised in any phase.
var (
	ErrTruncatedInput      = &Error{Kind: KindTruncatedInput, Offset: -1}
	ErrInvalidText         = &Error{Kind: KindInvalidText, Offset: -1}
	ErrMalformedHeader     = &Error{Kind: KindMalformedHeader, Offset: -1}
	ErrUnsupportedPlatform = &Error{Kind: KindUnsupportedPlatform, Offset: -1}
	ErrUnknownConstantTag  = &Error{Kind: KindUnknownConstantTag, Offset: -1}
	ErrInvalidData         = &Error{Kind: KindInvalidData, Offset: -1}
	ErrInconsistent        = &Error{Kind: KindInconsistent, Offset: -1}
)

// Error is the structured error type used throughout the module
type Error struct {
	Expected any
	Actual   any
	Cause    error
	Phase    Phase
	Kind     Kind
	Field    string
	Detail   string
	Path     []string
	// Offset is the byte offset where the failing read began, or -1.
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" in ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}

	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
		if e.Expected != nil || e.Actual != nil {
			fmt.Fprintf(&b, " expected %s, got %s", formatValue(e.Expected), formatValue(e.Actual))
		}
	}

	if e.Detail != "" {
		if e.Field != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<none>"
	case string:
		return fmt.Sprintf("%q", x)
	case []byte:
		return fmt.Sprintf("% x", x)
	case byte:
		return fmt.Sprintf("0x%02x", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Path sets the prototype path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the byte offset
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Field sets the offending field name
func (b *Builder) Field(name string) *Builder {
	b.err.Field = name
	return b
}

// Mismatch records the expected and actual values of the field
func (b *Builder) Mismatch(expected, actual any) *Builder {
	b.err.Expected = expected
	b.err.Actual = actual
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Truncated creates a truncated input error
func Truncated(offset int, path []string, what string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTruncatedInput,
		Path:   path,
		Offset: offset,
		Detail: fmt.Sprintf("input ended while reading %s", what),
	}
}

// InvalidText creates an invalid UTF-8 text error
func InvalidText(offset int, path []string, what string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidText,
		Path:   path,
		Offset: offset,
		Detail: fmt.Sprintf("%s is not valid UTF-8", what),
	}
}

// HeaderMismatch creates a malformed header error for one header field
func HeaderMismatch(offset int, field string, expected, actual any) *Error {
	return &Error{
		Phase:    PhaseDecode,
		Kind:     KindMalformedHeader,
		Offset:   offset,
		Field:    field,
		Expected: expected,
		Actual:   actual,
	}
}

// UnsupportedSize creates an unsupported platform error for a size descriptor
func UnsupportedSize(offset int, field string, expected, actual byte) *Error {
	return &Error{
		Phase:    PhaseDecode,
		Kind:     KindUnsupportedPlatform,
		Offset:   offset,
		Field:    field,
		Expected: expected,
		Actual:   actual,
	}
}

// UnknownTag creates an unknown constant tag error
func UnknownTag(offset int, path []string, tag byte) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownConstantTag,
		Path:   path,
		Offset: offset,
		Actual: tag,
		Detail: fmt.Sprintf("constant tag 0x%02x is not defined", tag),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Offset: -1,
		Detail: detail,
	}
}

// Inconsistent creates a consistency check failure
func Inconsistent(path []string, field, detail string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindInconsistent,
		Path:   path,
		Offset: -1,
		Field:  field,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: -1,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a chunk loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}
