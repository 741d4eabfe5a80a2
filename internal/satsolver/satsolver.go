// Package satsolver adapts an embedded propositional SAT solver to the
// narrow interface the Skolem engine and CEGAR subsystems need, per
// spec.md §1's framing of the SAT solver as an external collaborator
// "assumed to provide new_var, add_lit, clause_finished, assume, sat,
// deref, push/pop." The adapter is grounded on
// operator-framework/operator-lifecycle-manager's
// pkg/controller/registry/resolver/solver package, which wires the same
// github.com/go-air/gini engine through an almost identical
// lit/clause/assume/value/why vocabulary for its own embedded boolean
// constraint solving.
package satsolver

// Lit is an opaque handle into the embedded solver's own literal space.
// It is distinct from qcnf.Lit: skolem literals are SAT-solver variables
// that do not necessarily correspond 1:1 with QCNF variables (fresh
// "s_v" and "newlit" literals introduced by the Skolem encoding live only
// here).
type Lit int32

// NullLit is returned where "no literal" is meaningful, mirroring
// qcnf.NullLit and gini's z.LitNull.
const NullLit Lit = 0

// Result is the three-valued outcome of a Sat() call.
type Result int8

const (
	Unknown Result = 0
	Sat     Result = 1
	Unsat   Result = -1
)

// Solver is the embedded SAT solver interface consumed by the Skolem
// engine (as S) and by case-splits/CEGAR (as the dual existential solver
// E). Two independent instances exist at runtime and are never shared,
// per spec.md §5.
type Solver interface {
	// NewVar allocates a fresh SAT variable and returns its positive
	// literal.
	NewVar() Lit

	// AddLit accumulates a literal into the clause under construction.
	// ClauseFinished terminates it, mirroring IPASIR's add(0).
	AddLit(l Lit)

	// ClauseFinished commits the literals accumulated since the last
	// call (or since the solver was created) as one clause.
	ClauseFinished()

	// Assume registers a unit assumption that holds for the next Sat()
	// call only, unless made permanent via Push.
	Assume(l Lit)

	// Sat runs the solver under the current assumptions.
	Sat() Result

	// Deref reads the model value of l after a Sat() == Sat call.
	Deref(l Lit) bool

	// FailedAssumptions returns the subset of the assumptions passed to
	// the most recent Sat() call (which must have returned Unsat) that
	// the solver's internal analysis identifies as jointly
	// unsatisfiable — the "failed-assumption extraction" spec.md §1
	// requires of the embedded solver.
	FailedAssumptions() []Lit

	// Push asserts l as a permanent unit (until the matching Pop) and
	// opens a new scope. Calls marked "push before conflict check, pop
	// after unsat" in spec.md §9 must stay strictly matched.
	Push(l Lit)

	// Pop closes the most recently opened Push scope, retracting its
	// unit. Clauses added through AddLit while the scope was open stay.
	Pop()

	// Stats returns solver-adapter-local counters.
	Stats() Stats
}

// Stats mirrors spec.md §4.2.7's "separate SAT-success and SAT-fail
// histograms" at a level this adapter can cheaply maintain.
type Stats struct {
	SatCalls      int64
	SatSuccesses  int64
	SatFailures   int64
	ClausesTaught int64
}
