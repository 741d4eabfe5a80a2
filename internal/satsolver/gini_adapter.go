package satsolver

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// giniSolver is the only implementation of Solver: a thin adapter over a
// github.com/go-air/gini instance. Scoped push/pop is implemented with
// activation literals rather than relying on any native gini scoping,
// following the "maintaining an assumption context per decision level"
// option spec.md §9 offers as an alternative to native solver push/pop.
type giniSolver struct {
	g *gini.Gini

	// openScopes holds one activation literal per currently-open Push;
	// each is re-asserted as an assumption on every subsequent Sat()
	// call until its matching Pop, at which point it is simply dropped
	// and the clauses it guarded go inert.
	openScopes []z.Lit

	// oneShot holds assumptions registered via Assume for the next Sat()
	// call only.
	oneShot []z.Lit

	lastAssumed []z.Lit
	stats       Stats
}

// New constructs a Solver backed by a fresh gini instance.
func New() Solver {
	return &giniSolver{g: gini.New()}
}

func toZ(l Lit) z.Lit { return z.Dimacs2Lit(int(l)) }
func fromZ(m z.Lit) Lit {
	return Lit(m.Dimacs())
}

func (s *giniSolver) NewVar() Lit {
	v := s.g.NewVar()
	return fromZ(v.Pos())
}

func (s *giniSolver) AddLit(l Lit) {
	if l == NullLit {
		s.g.Add(0)
		s.stats.ClausesTaught++
		return
	}
	s.g.Add(toZ(l))
}

func (s *giniSolver) ClauseFinished() {
	s.g.Add(0)
	s.stats.ClausesTaught++
}

func (s *giniSolver) Assume(l Lit) {
	s.oneShot = append(s.oneShot, toZ(l))
}

func (s *giniSolver) Sat() Result {
	assumed := make([]z.Lit, 0, len(s.openScopes)+len(s.oneShot))
	assumed = append(assumed, s.openScopes...)
	assumed = append(assumed, s.oneShot...)
	s.g.Assume(assumed...)
	s.lastAssumed = assumed
	s.oneShot = s.oneShot[:0]

	s.stats.SatCalls++
	switch s.g.Solve() {
	case 1:
		s.stats.SatSuccesses++
		return Sat
	case -1:
		s.stats.SatFailures++
		return Unsat
	default:
		return Unknown
	}
}

func (s *giniSolver) Deref(l Lit) bool {
	v := s.g.Value(toZ(l))
	if l.sign() {
		return !v
	}
	return v
}

func (l Lit) sign() bool { return l < 0 }

func (s *giniSolver) FailedAssumptions() []Lit {
	why := s.g.Why(nil)
	out := make([]Lit, 0, len(why))
	for _, m := range why {
		out = append(out, fromZ(m))
	}
	return out
}

func (s *giniSolver) Push(l Lit) {
	act := s.g.NewVar().Pos()
	// (¬act ∨ l): once act is assumed true, l is forced true for as
	// long as this scope stays open.
	s.g.Add(act.Not())
	s.g.Add(toZ(l))
	s.g.Add(0)
	s.stats.ClausesTaught++
	s.openScopes = append(s.openScopes, act)
}

func (s *giniSolver) Pop() {
	if len(s.openScopes) == 0 {
		panic("satsolver: Pop called with no open scope")
	}
	s.openScopes = s.openScopes[:len(s.openScopes)-1]
}

func (s *giniSolver) Stats() Stats { return s.stats }
