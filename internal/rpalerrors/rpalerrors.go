// Package rpalerrors holds the error taxonomy used across the RPAL
// interpreter's stages (spec §7). Every error raised by lex, parser,
// standardize, flatten, and cse carries both a technical Error() string
// and, optionally, a human-readable diagnostic suitable for printing
// straight to a terminal or an HTTP client.
package rpalerrors

import (
	"errors"
	"fmt"
)

// Sentinel causes. Stage-specific constructors below wrap one of these so
// that callers can use errors.Is without type-asserting the concrete error.
var (
	// ErrSyntax is the cause of any error raised while tokenizing or
	// parsing source text (spec §7 "Syntactic"/"Lexical").
	ErrSyntax = errors.New("syntax error")

	// ErrStandardize is the cause of a malformed-arity error encountered
	// while rewriting a parse tree (spec §7 "Standardization"); this should
	// never occur for a tree the parser itself produced.
	ErrStandardize = errors.New("standardization error")

	// ErrRuntime is the cause of any error raised by the CSE machine while
	// executing a flattened control structure (spec §7 "Runtime/type").
	ErrRuntime = errors.New("runtime error")

	// ErrTypeMismatch is a more specific Runtime cause: an operator was
	// applied to an operand of the wrong kind (e.g. neg on a string).
	ErrTypeMismatch = errors.New("operator applied to a value of the wrong type")

	// ErrDivisionByZero is a more specific Runtime cause.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrTupleIndex is a more specific Runtime cause: a tuple was indexed
	// out of range.
	ErrTupleIndex = errors.New("tuple index out of range")

	// ErrNotApplicable is a more specific Runtime cause: Gamma was applied
	// to a value that is not a function, tuple, Y*, or Eta.
	ErrNotApplicable = errors.New("value is not applicable")

	// ErrStepLimitExceeded is a Runtime cause raised when the CSE machine's
	// configured step budget is exhausted (see config.Config.MaxSteps; this
	// is a SPEC_FULL.md safety addition, not part of the classical machine).
	ErrStepLimitExceeded = errors.New("step limit exceeded")
)

// interpError is an error caused by attempting to process RPAL source.
// Either the input could not be understood, or it describes doing something
// that is impossible at the current stage.
type interpError struct {
	msg  string
	diag string
	wrap error
}

func (e *interpError) Error() string {
	return e.msg
}

// Diagnostic returns the human-readable message suitable for display to an
// operator, as opposed to the more technical Error() string.
func (e *interpError) Diagnostic() string {
	if e.diag == "" {
		return e.msg
	}
	return e.diag
}

func (e *interpError) Unwrap() error {
	return e.wrap
}

func newf(cause error, diagFormat string, a ...interface{}) error {
	diag := fmt.Sprintf(diagFormat, a...)
	return &interpError{
		msg:  diag,
		diag: diag,
		wrap: cause,
	}
}

// Syntaxf returns an error wrapping ErrSyntax with a formatted diagnostic,
// e.g. "line 3: expected 'in' after let-declaration, found 'where'".
func Syntaxf(format string, a ...interface{}) error {
	return newf(ErrSyntax, format, a...)
}

// Standardizef returns an error wrapping ErrStandardize with a formatted
// diagnostic describing the malformed node encountered.
func Standardizef(format string, a ...interface{}) error {
	return newf(ErrStandardize, format, a...)
}

// Runtimef returns an error wrapping ErrRuntime with a formatted diagnostic.
func Runtimef(format string, a ...interface{}) error {
	return newf(ErrRuntime, format, a...)
}

// WrapRuntime returns an error wrapping both ErrRuntime and a more specific
// cause (one of the Err* sentinels above, or any error), with a formatted
// diagnostic.
func WrapRuntime(cause error, format string, a ...interface{}) error {
	diag := fmt.Sprintf(format, a...)
	return &interpError{
		msg:  diag,
		diag: diag,
		wrap: fmt.Errorf("%w: %w", ErrRuntime, cause),
	}
}

// Diagnostic gets the human-readable message for the given error. If it is
// one of the types defined in this package, the diagnostic text is
// returned; otherwise err.Error() is returned.
func Diagnostic(err error) string {
	var ie *interpError
	if errors.As(err, &ie) {
		return ie.Diagnostic()
	}
	return err.Error()
}
