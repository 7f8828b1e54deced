// Package errs defines the closed set of error kinds returned by the analytics core.
//
// Every structural failure is an *Error carrying its Kind, the operation that
// failed and the offending input. Callers branch on kind with errors.Is:
//
//	if errors.Is(err, errs.ErrOutOfRange) { ... }
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind string

const (
	UnknownCalendar      Kind = "UNKNOWN_CALENDAR"
	UnknownConvention    Kind = "UNKNOWN_CONVENTION"
	OutOfRange           Kind = "OUT_OF_RANGE"
	UnsupportedOperation Kind = "UNSUPPORTED_OPERATION"
	OptimisationFailed   Kind = "OPTIMISATION_FAILED"
	Inconsistent         Kind = "INCONSISTENT"
	Precondition         Kind = "PRECONDITION"
)

// Error is the error type returned by the core packages.
type Error struct {
	Kind  Kind
	Op    string // failing operation, e.g. "daycount.Tf"
	Input any    // offending input, if any
	Err   error  // underlying cause
}

// Sentinels for errors.Is comparisons. They match any *Error of the same kind.
var (
	ErrUnknownCalendar      = &Error{Kind: UnknownCalendar}
	ErrUnknownConvention    = &Error{Kind: UnknownConvention}
	ErrOutOfRange           = &Error{Kind: OutOfRange}
	ErrUnsupportedOperation = &Error{Kind: UnsupportedOperation}
	ErrOptimisationFailed   = &Error{Kind: OptimisationFailed}
	ErrInconsistent         = &Error{Kind: Inconsistent}
	ErrPrecondition         = &Error{Kind: Precondition}
)

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Input != nil {
		msg += fmt.Sprintf(" (input %v)", e.Input)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an *Error with a formatted cause.
func New(kind Kind, op string, input any, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Input: input, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind and operation to an existing error. Wrap(nil) is nil.
func Wrap(kind Kind, op string, input any, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Input: input, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
