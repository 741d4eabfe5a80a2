package certificate

import (
	"testing"

	"github.com/cadet-qbf/cadet/internal/qcnf"
)

func TestUCFunctionForcesCorrectValue(t *testing.T) {
	q := qcnf.New()
	if err := q.NewVar(1, qcnf.ScopeUniversal, true, true); err != nil {
		t.Fatal(err)
	}
	if err := q.NewVar(2, qcnf.ScopeInnerExistential, false, true); err != nil {
		t.Fatal(err)
	}

	b := NewBuilder(q)
	// Clause (-1 ∨ 2): antecedent is the literal -1 itself, i.e. x1
	// negated in the clause means the antecedent literal is "-x1".
	b.UCFunction(2, []qcnf.Lit{-1})
	cert := b.Build()

	got := cert.Graph.Eval(map[string]bool{"x1": true})
	if !got[0] {
		t.Fatalf("expected variable 2's Skolem function to be true when x1=true (clause's only escape), got false")
	}
}

func TestPureConstantRecordsFixedOutput(t *testing.T) {
	q := qcnf.New()
	if err := q.NewVar(2, qcnf.ScopeInnerExistential, false, true); err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(q)
	b.PureConstant(2, true)
	cert := b.Build()

	got := cert.Graph.Eval(map[string]bool{})
	if !got[0] {
		t.Fatalf("expected constant-true Skolem function, got false")
	}
}
