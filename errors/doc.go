// Package errors provides structured error types for the luachunk module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the byte offset of the failing read, the prototype path,
// the offending header field with its expected and actual values, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindMalformedHeader).
//		Offset(4).
//		Field("version").
//		Mismatch(byte(0x53), byte(0x52)).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated(off, path, "constant count")
//	err := errors.UnknownTag(off, path, tag)
//
// Kind sentinels match any error of that kind regardless of phase:
//
//	if stderrors.Is(err, errors.ErrTruncatedInput) { ... }
//
// As extracts the *Error from a wrapped chain:
//
//	if e, ok := errors.As(err); ok {
//		fmt.Println(e.Kind, e.Offset)
//	}
package errors
