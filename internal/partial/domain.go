package partial

import (
	"github.com/cadet-qbf/cadet/internal/conflictanalysis"
	"github.com/cadet-qbf/cadet/internal/qcnf"
)

// domainView adapts Trail to conflictanalysis.Domain, letting the shared
// First-UIP analyzer resolve propagation conflicts the partial-assignment
// engine detects the same way it resolves Skolem conflicts.
type domainView struct {
	t *Trail
}

func (t *Trail) Domain() conflictanalysis.Domain { return domainView{t: t} }

func (d domainView) Literals(c conflictanalysis.ClauseID) []conflictanalysis.Lit {
	clause := &d.t.q.Clauses[qcnf.ClauseID(c)]
	out := make([]conflictanalysis.Lit, 0, len(clause.Lits))
	for _, l := range clause.Lits {
		cl := conflictanalysis.Lit(l.Var())
		if l.Sign() {
			cl = -cl
		}
		out = append(out, cl)
	}
	return out
}

func (d domainView) IsRelevantClause(c conflictanalysis.ClauseID) bool {
	if c == conflictanalysis.NoReason {
		return false
	}
	return d.t.q.Clauses[qcnf.ClauseID(c)].Active
}

func (d domainView) IsLegalDependence(v int32) bool { return true }

func (d domainView) GetDecisionLvl(v int32) int { return d.t.Level(v) }

func (d domainView) GetReasonFor(v int32) conflictanalysis.ClauseID {
	reason, ok := d.t.Reason(v)
	if !ok {
		return conflictanalysis.NoReason
	}
	return conflictanalysis.ClauseID(reason)
}
