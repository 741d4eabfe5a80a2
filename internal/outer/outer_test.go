package outer

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/cadet-qbf/cadet/internal/qcnf"
	"github.com/cadet-qbf/cadet/internal/satsolver"
	"github.com/cadet-qbf/cadet/internal/skolem"
)

// buildQCNF constructs a 2QBF store with the given universal and
// existential variable ids, then closes each clause in clauses (each a
// slice of signed literals) as an original input clause.
func buildQCNF(t *testing.T, universals, existentials []int32, clauses [][]int32) *qcnf.QCNF {
	t.Helper()
	q := qcnf.New()
	for _, id := range universals {
		if err := q.NewVar(id, qcnf.ScopeUniversal, true, true); err != nil {
			t.Fatalf("NewVar(%d universal): %v", id, err)
		}
	}
	for _, id := range existentials {
		if err := q.NewVar(id, qcnf.ScopeInnerExistential, false, true); err != nil {
			t.Fatalf("NewVar(%d existential): %v", id, err)
		}
	}
	for _, c := range clauses {
		for _, l := range c {
			q.AddLiteral(qcnf.Lit(l))
		}
		if _, err := q.CloseClause(true); err != nil {
			t.Fatalf("CloseClause(%v): %v", c, err)
		}
	}
	return q
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func newSolver(q *qcnf.QCNF, opts Options) *Solver {
	return New(q, satsolver.New(), satsolver.New(), skolem.Config{}, opts, testLogger())
}

func runSolver(t *testing.T, s *Solver) Outcome {
	t.Helper()
	outcome, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return outcome
}

// S1: ∀x ∃y, (x ∨ y)(¬x ∨ y). y is forced true regardless of x.
func TestS1SatConstantTrue(t *testing.T) {
	q := buildQCNF(t, []int32{1}, []int32{2}, [][]int32{
		{1, 2},
		{-1, 2},
	})
	s := newSolver(q, Options{})
	if outcome := runSolver(t, s); outcome != Sat {
		t.Fatalf("expected Sat, got %v", outcome)
	}
}

// S2: ∀x ∃y, (x ∨ y)(¬x ∨ ¬y). Skolem function is y = ¬x.
func TestS2SatNegatedInput(t *testing.T) {
	q := buildQCNF(t, []int32{1}, []int32{2}, [][]int32{
		{1, 2},
		{-1, -2},
	})
	s := newSolver(q, Options{})
	if outcome := runSolver(t, s); outcome != Sat {
		t.Fatalf("expected Sat, got %v", outcome)
	}
}

// S3: ∀x ∃y, (x)(¬x). Already refuted on the universals alone; the
// empty-clause-at-parse path must catch this before the Skolem engine
// ever runs.
func TestS3UnsatPureUniversalContradiction(t *testing.T) {
	q := buildQCNF(t, []int32{1}, []int32{2}, [][]int32{
		{1},
		{-1},
	})
	s := newSolver(q, Options{})
	if outcome := runSolver(t, s); outcome != Unsat {
		t.Fatalf("expected Unsat, got %v", outcome)
	}
}

// S4: ∀x1 x2 ∃y, the standard AND-gate encoding of y = x1 ∧ x2, run with
// case-splitting enabled.
func TestS4SatAfterCaseSplit(t *testing.T) {
	q := buildQCNF(t, []int32{1, 2}, []int32{3}, [][]int32{
		{-1, -2, 3},
		{1, -3},
		{2, -3},
	})
	s := newSolver(q, Options{CaseSplits: true})
	if outcome := runSolver(t, s); outcome != Sat {
		t.Fatalf("expected Sat, got %v", outcome)
	}
}

// S5: ∀x ∃y1 y2, exercises pure-literal detection plus a decision.
func TestS5SatPureLiteralAndDecision(t *testing.T) {
	q := buildQCNF(t, []int32{1}, []int32{2, 3}, [][]int32{
		{2, 3},
		{-2, 3, 1},
		{2, -3, -1},
		{-2, -3},
	})
	s := newSolver(q, Options{})
	if outcome := runSolver(t, s); outcome != Sat {
		t.Fatalf("expected Sat, got %v", outcome)
	}
}

// S6: same as S2 but with an added contradictory unit-clause pair,
// forcing an immediate constants-conflict UNSAT rather than a
// parse-time empty clause.
func TestS6UnsatConstantsConflict(t *testing.T) {
	q := buildQCNF(t, []int32{1}, []int32{2}, [][]int32{
		{1, 2},
		{-1, -2},
		{-2},
		{2},
	})
	s := newSolver(q, Options{})
	if outcome := runSolver(t, s); outcome != Unsat {
		t.Fatalf("expected Unsat, got %v", outcome)
	}
}

// Zero universals: the formula degenerates to a plain propositional
// instance. There is no separate propositional path; the ordinary
// cycle runs and must report Sat.
func TestZeroUniversalsFallsBackToPropositional(t *testing.T) {
	q := buildQCNF(t, nil, []int32{1, 2}, [][]int32{
		{1, 2},
		{-1, 2},
	})
	s := newSolver(q, Options{})
	if outcome := runSolver(t, s); outcome != Sat {
		t.Fatalf("expected Sat, got %v", outcome)
	}
}

// A variable with zero occurrences must be ignored by allDeterministic
// rather than stalling the main cycle.
func TestUnoccurringExistentialIsIgnored(t *testing.T) {
	q := buildQCNF(t, []int32{1}, []int32{2, 3}, [][]int32{
		{1, 2},
		{-1, 2},
	})
	s := newSolver(q, Options{})
	if outcome := runSolver(t, s); outcome != Sat {
		t.Fatalf("expected Sat with an unoccurring existential present, got %v", outcome)
	}
}

func TestRefutingAssignmentReportedOnUnsat(t *testing.T) {
	q := buildQCNF(t, []int32{1}, []int32{2}, [][]int32{
		{1},
		{-1},
	})
	s := newSolver(q, Options{})
	if outcome := runSolver(t, s); outcome != Unsat {
		t.Fatalf("expected Unsat, got %v", outcome)
	}
	// S3's limit case: zero universal literals survive reduction into
	// the blamed clause, so the reported assignment is empty rather
	// than absent.
	if assignment := s.RefutingAssignment(); assignment == nil {
		t.Fatalf("expected a non-nil (possibly empty) refuting assignment")
	}
}

// spec.md §6's "-l <N>" hard decision limit: a formula that needs at
// least one decision must not report Unsat under a budget of one
// decision; Unknown (budget hit) or Sat are both accepted.
func TestDecisionLimitReportsUnknown(t *testing.T) {
	q := buildQCNF(t, []int32{1}, []int32{2, 3}, [][]int32{
		{2, 3},
		{-2, 3, 1},
		{2, -3, -1},
		{-2, -3},
	})
	s := newSolver(q, Options{DecisionLimit: 0})
	// DecisionLimit of 0 means unlimited; set a limit too low to finish.
	s.opts.DecisionLimit = 1
	outcome := runSolver(t, s)
	if outcome != Unknown && outcome != Sat {
		t.Fatalf("expected Unknown (budget hit) or Sat (solved within budget), got %v", outcome)
	}
	if s.Stats.Decisions > 0 && outcome == Unknown && s.Stats.Decisions < s.opts.DecisionLimit {
		t.Fatalf("reported Unknown before reaching the decision limit: %d < %d", s.Stats.Decisions, s.opts.DecisionLimit)
	}
}

func TestRunRespectsContextCancellation(t *testing.T) {
	q := buildQCNF(t, []int32{1}, []int32{2}, [][]int32{
		{1, 2},
		{-1, 2},
	})
	s := newSolver(q, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome, err := s.Run(ctx)
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if outcome != Unknown {
		t.Fatalf("expected Unknown outcome on cancellation, got %v", outcome)
	}
}
