package casesplit

import (
	"testing"

	"github.com/cadet-qbf/cadet/internal/qcnf"
	"github.com/cadet-qbf/cadet/internal/satsolver"
)

// fakeUnivLits stands in for the Skolem engine's UniversalLit bookkeeping
// in tests that only exercise casesplit's own logic.
type fakeUnivLits struct {
	s    satsolver.Solver
	lits map[int32]satsolver.Lit
}

func newFakeUnivLits(s satsolver.Solver) *fakeUnivLits {
	return &fakeUnivLits{s: s, lits: make(map[int32]satsolver.Lit)}
}

func (f *fakeUnivLits) UniversalLit(id int32) satsolver.Lit {
	if l, ok := f.lits[id]; ok {
		return l
	}
	l := f.s.NewVar()
	f.lits[id] = l
	return l
}

func newTestFormula(t *testing.T) *qcnf.QCNF {
	t.Helper()
	q := qcnf.New()
	if err := q.NewVar(1, qcnf.ScopeUniversal, true, true); err != nil {
		t.Fatal(err)
	}
	if err := q.NewVar(2, qcnf.ScopeInnerExistential, false, true); err != nil {
		t.Fatal(err)
	}
	// (x1 ∨ y2) ∧ (-x1 ∨ y2): whichever value x1 takes, one clause
	// needs y2, so the only correct Skolem function is y2 = true.
	for _, lits := range [][]qcnf.Lit{{1, 2}, {-1, 2}} {
		for _, l := range lits {
			q.AddLiteral(l)
		}
		if _, err := q.CloseClause(true); err != nil {
			t.Fatal(err)
		}
	}
	return q
}

func TestFindCounterexampleDetectsWrongSkolemValue(t *testing.T) {
	q := newTestFormula(t)
	sShared := satsolver.New()
	eng := New(q, sShared, newFakeUnivLits(sShared), satsolver.New())

	// y2 = false violates one of the two clauses whichever value x1 takes.
	cube := eng.FindCounterexample(map[int32]bool{2: false})
	if cube == nil {
		t.Fatal("expected a counterexample for the unsound Skolem value y2=false")
	}
}

func TestFindCounterexampleAcceptsCorrectSkolemValue(t *testing.T) {
	q := newTestFormula(t)
	sShared := satsolver.New()
	eng := New(q, sShared, newFakeUnivLits(sShared), satsolver.New())

	if cube := eng.FindCounterexample(map[int32]bool{2: true}); cube != nil {
		t.Fatalf("expected no counterexample for the sound Skolem value y2=true, got %v", cube)
	}
}

func TestPushPopCaseBalancesSolverScopes(t *testing.T) {
	q := newTestFormula(t)
	s := satsolver.New()
	eng := New(q, s, newFakeUnivLits(s), satsolver.New())

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Pop panicked after balanced PushCase/PopCase: %v", r)
		}
	}()

	eng.PushCase(map[int32]bool{1: true})
	eng.PopCase()
}
