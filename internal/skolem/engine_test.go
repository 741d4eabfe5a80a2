package skolem

import (
	"testing"

	"github.com/cadet-qbf/cadet/internal/qcnf"
	"github.com/cadet-qbf/cadet/internal/satsolver"
)

func newTestEngine(t *testing.T, universals, existentials []int32) (*qcnf.QCNF, *Engine) {
	t.Helper()
	q := qcnf.New()
	for _, id := range universals {
		if err := q.NewVar(id, qcnf.ScopeUniversal, true, true); err != nil {
			t.Fatalf("NewVar(%d): %v", id, err)
		}
	}
	for _, id := range existentials {
		if err := q.NewVar(id, qcnf.ScopeInnerExistential, false, true); err != nil {
			t.Fatalf("NewVar(%d): %v", id, err)
		}
	}
	e := New(q, satsolver.New(), Config{})
	return q, e
}

func closeClause(t *testing.T, q *qcnf.QCNF, lits ...qcnf.Lit) qcnf.ClauseID {
	t.Helper()
	for _, l := range lits {
		q.AddLiteral(l)
	}
	id, err := q.CloseClause(true)
	if err != nil {
		t.Fatalf("CloseClause(%v): %v", lits, err)
	}
	return id
}

func TestPureLiteralRuleFixesSinglePolarityVariable(t *testing.T) {
	q, e := newTestEngine(t, []int32{1}, []int32{2, 3})
	// y2 occurs only positively: (x1 ∨ y2), (-x1 ∨ y2 ∨ y3)
	closeClause(t, q, 1, 2)
	closeClause(t, q, -1, 2, 3)

	e.PureLiteralRule()

	if !e.IsDeterministic(2) {
		t.Fatalf("expected variable 2 to be fixed by the pure-literal rule")
	}
	if !e.vars[2].purePos {
		t.Fatalf("expected purePos to be set for variable 2")
	}
}

// PropagateConstants must not fix a variable via a UC clause whose only
// other literal is a live universal: that shape is spec.md §4.2.1's
// unique-consequence detection, resolved through the embedded-solver-
// backed Skolem pipeline (determinizeViaSkolem), not spec.md §4.2.8's
// narrow constant propagation.
func TestPropagateConstantsDoesNotFireAcrossLiveUniversal(t *testing.T) {
	q, e := newTestEngine(t, []int32{1}, []int32{2})
	// (-1 ∨ 2): 2 is the unique consequence of x1, but x1 is a live
	// universal, not an already-resolved constant.
	closeClause(t, q, -1, 2)

	if got := e.PropagateConstants(); got != Ready {
		t.Fatalf("expected Ready, got %v", got)
	}
	if e.IsDeterministic(2) {
		t.Fatalf("did not expect variable 2 to become a flat constant from a live-universal antecedent")
	}
	if len(e.ucByLit[qcnf.Lit(2)]) != 1 {
		t.Fatalf("expected the unique-consequence map to still record the clause for the Skolem pipeline")
	}
}

// True narrow constant propagation: the UC clause's only other literal
// is itself already a resolved flat constant (here, fixed by a first
// propagation pass over a unit clause), so spec.md §4.2.8 applies
// directly.
func TestPropagateConstantsAppliesNarrowConstantPropagation(t *testing.T) {
	q, e := newTestEngine(t, nil, []int32{2, 3})
	// The unit clause (3) has no other literal, so the first propagation
	// pass fixes 3 true.
	closeClause(t, q, 3)
	// (-3 ∨ 2): with 3 now a resolved constant (true), -3 is a resolved-
	// false antecedent, so 2 is the unique consequence of a clause whose
	// only other literal is already constant.
	closeClause(t, q, -3, 2)

	e.PropagateConstants()
	if !e.IsDeterministic(3) {
		t.Fatalf("expected variable 3 to be fixed by propagating the unit clause")
	}

	if got := e.PropagateConstants(); got != Ready {
		t.Fatalf("expected Ready, got %v", got)
	}
	if !e.IsDeterministic(2) {
		t.Fatalf("expected variable 2 to become deterministic via narrow constant propagation")
	}
	if !e.vars[2].isConstant {
		t.Fatalf("expected variable 2 to be recorded as a flat constant")
	}
}

func TestPropagateConstantsReportsConflict(t *testing.T) {
	q, e := newTestEngine(t, nil, []int32{2, 3})
	// The unit clause (3) is fixed true by a first propagation pass; both
	// remaining clauses then have 3's literal as their only (already
	// resolved) antecedent, so narrow constant propagation applies to 2
	// directly from each — in opposite directions.
	closeClause(t, q, 3)
	closeClause(t, q, -3, 2)
	closeClause(t, q, -3, -2)

	e.PropagateConstants()
	if !e.IsDeterministic(3) {
		t.Fatalf("expected variable 3 to be fixed by propagating the unit clause")
	}

	if got := e.PropagateConstants(); got != ConstantsConflict {
		t.Fatalf("expected ConstantsConflict, got %v", got)
	}
}

func TestLocalConflictCheckDetectsUnsatisfiableForcing(t *testing.T) {
	q, e := newTestEngine(t, []int32{1}, []int32{2})
	closeClause(t, q, 2)
	closeClause(t, q, -2)

	if !e.LocalConflictCheck(2, true) {
		t.Fatalf("expected forcing variable 2 true to be locally unsatisfiable")
	}
	if !e.LocalConflictCheck(2, false) {
		t.Fatalf("expected forcing variable 2 false to be locally unsatisfiable")
	}
}

func TestLocalConflictCheckAllowsSatisfiableForcing(t *testing.T) {
	q, e := newTestEngine(t, []int32{1}, []int32{2, 3})
	closeClause(t, q, 2, 3)

	if e.LocalConflictCheck(2, true) {
		t.Fatalf("forcing variable 2 true should remain locally satisfiable")
	}
}

// ∀x ∃y, (x ∨ y)(¬x ∨ ¬y): the Skolem function is y = ¬x. The local
// antecedent sets ({x1},{¬x1}) contradict each other, so
// LocalDeterminicityCheck forces escalation, and GlobalConflictCheck must
// find no real conflict (x1=false and x1=true each pin y to exactly one
// value, never both).
func TestDeterminizeViaSkolemEstablishesNegatedSkolemFunction(t *testing.T) {
	q, e := newTestEngine(t, []int32{1}, []int32{2})
	closeClause(t, q, 1, 2)
	closeClause(t, q, -1, -2)

	if got := e.PropagateConstants(); got != Ready {
		t.Fatalf("expected Ready, got %v", got)
	}
	if got := e.determinizeViaSkolem(2); got != Ready {
		t.Fatalf("expected Ready, got %v", got)
	}
	if !e.IsDeterministic(2) {
		t.Fatalf("expected variable 2 to become deterministic via the Skolem pipeline")
	}
	if e.vars[2].isConstant {
		t.Fatalf("variable 2's value depends on x1; it must not be recorded as a flat constant")
	}
	if e.ReasonForConstant(2) < 0 {
		t.Fatalf("expected a UC clause reason, not a flat constant/decision reason")
	}
}

// ∀x ∃y, (¬x ∨ y)(¬x ∨ ¬y): at x1=true both clauses demand opposite
// values for y2, a genuine global conflict. The local antecedent sets
// ({¬x1},{¬x1}) are each trivially satisfiable by x1=false alone, so only
// the S-backed global check can see it.
func TestGlobalConflictCheckDetectsConflictAcrossForcedUniversal(t *testing.T) {
	q, e := newTestEngine(t, []int32{1}, []int32{2})
	closeClause(t, q, -1, 2)
	closeClause(t, q, -1, -2)

	e.DetectUniqueConsequences()
	if e.LocalDeterminicityCheck(2) {
		t.Fatalf("expected the cheap local check to stay silent on this shape")
	}
	if !e.GlobalConflictCheck(2) {
		t.Fatalf("expected the global conflict check to catch the forced-true contradiction")
	}
}

func TestDecidePicksHighestActivityNonDeterministicVariable(t *testing.T) {
	_, e := newTestEngine(t, nil, []int32{2, 3})
	e.varRec(3).activity = 5
	e.varRec(2).activity = 1

	id, _, ok := e.Decide()
	if !ok || id != 3 {
		t.Fatalf("expected variable 3 to be decided first, got id=%d ok=%v", id, ok)
	}
	if !e.IsDeterministic(3) {
		t.Fatalf("expected decided variable to be marked deterministic")
	}
}
