// Package core holds the error vocabulary shared by every CADET package.
package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an Error the way spec.md's error-handling design requires:
// callers switch on Kind to decide whether to surface, abort, or degrade to
// Unknown.
type Kind int

const (
	// InvalidInput covers malformed parser input: bad header, non-numeric
	// literal, unknown quantifier tag, duplicate variable, tautological
	// clause, zero literal inside a quantifier block.
	InvalidInput Kind = iota
	// UnsupportedPrefix is returned when the QCNF has more than two
	// quantifier alternations, or DQBF dependency sets are requested.
	UnsupportedPrefix
	// InternalInvariant marks a solver bug: NoReasonFound, undo-stack
	// underflow, UC-map inconsistency, or a side proven unsatisfiable
	// moments before turning out satisfiable again.
	InternalInvariant
	// Timeout is returned when the termination callback asked the engine
	// to stop; engine state remains valid and resumable.
	Timeout
	// CertificateInconsistent marks a failed co-verification of an emitted
	// AIG certificate against the original CNF.
	CertificateInconsistent
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case UnsupportedPrefix:
		return "unsupported_prefix"
	case InternalInvariant:
		return "internal_invariant"
	case Timeout:
		return "timeout"
	case CertificateInconsistent:
		return "certificate_inconsistent"
	default:
		return "unknown"
	}
}

// Error is CADET's single error type. System/Op locate the failure inside
// the pipeline (e.g. System: "skolem", Op: "globalConflictCheck"); Kind
// drives the propagation policy of spec.md §7; Cause, when present, is
// chased with errors.Cause.
type Error struct {
	System  string
	Op      string
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.System != "" {
		return fmt.Sprintf("cadet: %s.%s: %s: %s", e.System, e.Op, e.Kind, e.Message)
	}
	return fmt.Sprintf("cadet: %s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error with no wrapped cause.
func New(system, op string, kind Kind, message string) *Error {
	return &Error{System: system, Op: op, Kind: kind, Message: message}
}

// Wrap constructs an Error that chains a lower-level cause, using
// pkg/errors so that errors.Cause(err) still reaches the root failure.
func Wrap(cause error, system, op string, kind Kind, message string) *Error {
	return &Error{System: system, Op: op, Kind: kind, Message: message, Cause: errors.WithMessage(cause, message)}
}

// Fatal aborts the process for InternalInvariant violations, per spec.md
// §7's propagation policy: these are bugs, not recoverable conditions.
func Fatal(err *Error) {
	panic(err)
}

// IsKind reports whether err (or any error in its chain) is a *Error of
// the given Kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if ce, ok := err.(*Error); ok && ce.Kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
