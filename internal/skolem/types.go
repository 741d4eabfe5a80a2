// Package skolem implements CADET's determinization engine: it tracks,
// for each existential variable, whether its value has been proven
// "deterministic" (implied by the universals and the already-determined
// existentials ahead of it), and if so maintains the growing Skolem
// function certifying that fact. It is grounded on the teacher's
// sat/cdcl.go CDCLSolver (the state-machine shape: a main record per
// variable, a decision stack, a conflict/propagate/decide cycle) and
// sat/heuristics.go (the VSIDS-style activity bookkeeping), re-typed
// from the teacher's string-keyed literals onto qcnf.Lit.
package skolem

import (
	"github.com/cadet-qbf/cadet/internal/qcnf"
	"github.com/cadet-qbf/cadet/internal/satsolver"
)

// State is the outcome of a single call into the Skolem engine's main
// determinization step.
type State int

const (
	Ready State = iota
	ConstantsConflict
	SkolemConflict
	EmptyDomain
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case ConstantsConflict:
		return "constants_conflict"
	case SkolemConflict:
		return "skolem_conflict"
	case EmptyDomain:
		return "empty_domain"
	default:
		return "unknown"
	}
}

// variable is the per-existential-variable Skolem record of spec.md §3.
type variable struct {
	id int32

	// posLit/negLit are the literals in the embedded solver S that encode
	// "this existential is assigned true" / "...false" once the variable
	// has been given a partial-function encoding.
	posLit satsolver.Lit
	negLit satsolver.Lit

	deterministic bool

	// constValue holds the fixed Skolem value of a constant variable,
	// whether it came from a decision, the pure-literal rule, or narrow
	// constant propagation. Only meaningful when isConstant is set; a
	// variable determined through the S encoding leaves it false.
	constValue bool

	// isConstant marks a deterministic variable whose Skolem function is
	// a single flat boolean — a decision, the pure-literal rule, or true
	// constant propagation (spec.md §4.2.8) — as opposed to one
	// determined via the embedded-solver partial-function encoding
	// (spec.md §4.2.3), whose value genuinely depends on other
	// variables. deterministic can be set with isConstant false.
	isConstant bool

	// purePos/pureNeg record the pure-literal rule's verdict: the
	// variable occurs only positively (resp. negatively) among active
	// clauses, so it can be fixed without search.
	purePos bool
	pureNeg bool

	// decisionPos/decisionNeg record that the outer loop decided this
	// variable's value directly (as opposed to it becoming deterministic
	// through propagation).
	decisionPos bool
	decisionNeg bool

	// dep is the dependency set: the universal and preceding-existential
	// variables this variable's Skolem function may legally read, per
	// spec.md §3's "legal dependence" invariant.
	dep map[int32]struct{}

	decisionLvl int

	// reasonForConstant/dlvlForConstant record why and when a variable
	// became a propagated constant, consumed by conflict analysis's
	// GetReasonFor.
	reasonForConstant qcnf.ClauseID
	dlvlForConstant    int

	// conflictPotential flags a variable whose constant propagation
	// produced opposing UC derivations — a candidate for the
	// ConstantsConflict state.
	conflictPotential bool

	activity float64
}

func newVariable(id int32) *variable {
	return &variable{id: id, reasonForConstant: -1, dlvlForConstant: -1}
}

// uc is a recorded unique-consequence: clause implies that, were every
// other literal in it false, lit would have to be true for the clause to
// be satisfied.
type uc struct {
	lit    qcnf.Lit
	clause qcnf.ClauseID
}
