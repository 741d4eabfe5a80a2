package skolem

import (
	"github.com/cadet-qbf/cadet/internal/conflictanalysis"
	"github.com/cadet-qbf/cadet/internal/qcnf"
)

// domainView adapts Engine to conflictanalysis.Domain so the shared
// First-UIP analyzer can resolve Skolem-conflict clauses the same way it
// resolves partial-assignment conflicts.
type domainView struct {
	e *Engine
}

// Domain returns a conflictanalysis.Domain backed by e.
func (e *Engine) Domain() conflictanalysis.Domain { return domainView{e: e} }

func (d domainView) Literals(c conflictanalysis.ClauseID) []conflictanalysis.Lit {
	clause := &d.e.q.Clauses[qcnf.ClauseID(c)]
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
	return d.e.q.Clauses[qcnf.ClauseID(c)].Active
}

func (d domainView) IsLegalDependence(v int32) bool {
	return !d.e.q.VarOf(v).IsUniversal
}

func (d domainView) GetDecisionLvl(v int32) int {
	rec, ok := d.e.vars[v]
	if !ok || !rec.deterministic {
		return -1
	}
	return rec.decisionLvl
}

func (d domainView) GetReasonFor(v int32) conflictanalysis.ClauseID {
	rec, ok := d.e.vars[v]
	if !ok || rec.reasonForConstant < 0 {
		return conflictanalysis.NoReason
	}
	return conflictanalysis.ClauseID(rec.reasonForConstant)
}
