package outer

import (
	"github.com/cadet-qbf/cadet/internal/partial"
	"github.com/cadet-qbf/cadet/internal/qcnf"
)

// MinimizeLearned attempts to shrink a freshly-learned clause by
// dropping literals whose absence the active clause set's own unit
// propagation already covers, per spec.md §4.5's minimize step: "push a
// fresh partial-assignment domain" for each candidate literal, non-
// destructively, rather than running a standing preprocessing pass.
func MinimizeLearned(q *qcnf.QCNF, lits []qcnf.Lit) []qcnf.Lit {
	if len(lits) <= 1 {
		return lits
	}
	kept := append([]qcnf.Lit(nil), lits...)
	for i := 0; i < len(kept); i++ {
		candidate := append(append([]qcnf.Lit(nil), kept[:i]...), kept[i+1:]...)
		if clauseRedundant(q, candidate, kept[i]) {
			kept = candidate
			i--
		}
	}
	return kept
}

// clauseRedundant reports whether dropped can be removed: every literal
// of candidate (the clause without dropped) is assumed false on a fresh
// partial-assignment trail, and the trail's own Propagate runs the unit-
// propagation fixpoint. A falsified clause anywhere means the active
// clause set already entails the shorter candidate clause on its own, so
// dropped is redundant.
func clauseRedundant(q *qcnf.QCNF, candidate []qcnf.Lit, dropped qcnf.Lit) bool {
	t := partial.New(q)
	for _, l := range candidate {
		t.Assign(l.Var(), l.Sign(), 0, 0, false) // assume each candidate literal false
	}
	return t.Propagate() != nil
}
