// Package compileerr defines the error taxonomy raised by the compiler.
//
// Every error that resolution, typing, normalisation, materialisation
// and codegen raise themselves is a *CompileError; a rendered
// expression that expr-lang fails to compile (package opchain) is
// returned as a wrapped ordinary error instead. The compiler never
// recovers from an error internally: every phase fails fast and
// bubbles the first error up through the call stack that produced it.
package compileerr

import (
	"errors"
	"fmt"
)

// Kind enumerates the error taxonomy of the compiler.
type Kind int

const (
	ParseError Kind = iota
	UnknownTable
	UnknownColumn
	AmbiguousColumn
	AliasConflict
	StreamConflict
	TypeMismatch
	NonNumericArith
	NonGroupedReference
	InvalidAggregate
	ScalarSubqueryCardinality
	SubqueryCompilation
	InternalInvariant
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case UnknownTable:
		return "UnknownTable"
	case UnknownColumn:
		return "UnknownColumn"
	case AmbiguousColumn:
		return "AmbiguousColumn"
	case AliasConflict:
		return "AliasConflict"
	case StreamConflict:
		return "StreamConflict"
	case TypeMismatch:
		return "TypeMismatch"
	case NonNumericArith:
		return "NonNumericArith"
	case NonGroupedReference:
		return "NonGroupedReference"
	case InvalidAggregate:
		return "InvalidAggregate"
	case ScalarSubqueryCardinality:
		return "ScalarSubqueryCardinality"
	case SubqueryCompilation:
		return "SubqueryCompilation"
	case InternalInvariant:
		return "InternalInvariant"
	default:
		return "UnknownError"
	}
}

// Pos stands in for a source span now that the surface parser is out of
// scope: it is the sequence number the IR assigned the offending node
// at construction time (see plan.NextPos).
type Pos int

// CompileError is the concrete error type of the taxonomy above.
// Callers match on Kind via errors.As, not string content.
type CompileError struct {
	Kind    Kind
	Message string
	At      Pos
	Wrapped error
}

func (e *CompileError) Error() string {
	if e.At != 0 {
		return fmt.Sprintf("%s at node #%d: %s", e.Kind, e.At, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Wrapped
}

// New builds a CompileError with no source position.
func New(kind Kind, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Newf is an alias of New kept for call sites that read better with an
// explicit "f" suffix when the format string is long.
func Newf(kind Kind, format string, args ...interface{}) *CompileError {
	return New(kind, format, args...)
}

// At builds a CompileError like New and records the offending node's
// position on it.
func At(kind Kind, pos Pos, format string, args ...interface{}) *CompileError {
	e := New(kind, format, args...)
	e.At = pos
	return e
}

// Wrap attaches an arbitrary inner error (e.g. a subquery's own
// CompileError) as the cause of a SubqueryCompilation failure.
func Wrap(kind Kind, pos Pos, cause error, format string, args ...interface{}) *CompileError {
	e := At(kind, pos, format, args...)
	e.Wrapped = cause
	return e
}

// Is reports whether err is a *CompileError of the given kind.
func Is(err error, kind Kind) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}
