// Package outer drives CADET's main C2 cycle: step the Skolem engine,
// analyze and learn from the conflict it reports, and otherwise either decide a new existential
// or hand control to case-splitting/CEGAR. The partial-assignment engine
// is not stepped by this cycle; only clause minimization uses it.
// Grounded on the teacher's
// sat/cdcl.go CDCLSolver.Solve main loop (propagate/conflict-or-decide,
// restart scheduling, clause learning) generalized from a single
// monolithic boolean solver into the three-engine split spec.md
// describes.
package outer

import (
	"context"

	"github.com/cadet-qbf/cadet/core"
	"github.com/cadet-qbf/cadet/internal/casesplit"
	"github.com/cadet-qbf/cadet/internal/conflictanalysis"
	"github.com/cadet-qbf/cadet/internal/qcnf"
	"github.com/cadet-qbf/cadet/internal/satsolver"
	"github.com/cadet-qbf/cadet/internal/skolem"

	"github.com/sirupsen/logrus"
)

// Outcome is the solver's final verdict.
type Outcome int

const (
	Unknown Outcome = iota
	Sat
	Unsat
)

func (o Outcome) String() string {
	switch o {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Options carries the subset of options.Options the outer loop consults
// directly; the rest (certificate/output flags) are consumed by
// cmd/cadet after Run returns.
type Options struct {
	CaseSplits bool
	CEGAROnly  bool
	Minimize   bool

	// DecisionLimit is spec.md §6's "-l <N>: hard decision limit";
	// Run returns Unknown once Stats.Decisions reaches it. Zero means
	// unlimited.
	DecisionLimit int64
}

// Solver owns the three collaborating engines and runs the main cycle.
type Solver struct {
	q        *qcnf.QCNF
	skolem   *skolem.Engine
	cases    *casesplit.Engine
	analyzer *conflictanalysis.Analyzer
	restarts *RestartStrategy
	opts     Options

	log *logrus.Entry

	Stats Stats

	// lastConflict is the clause blamed for an UNSAT verdict: the UC
	// clause of the dlvl-0 ConstantsConflict that ended the run, or the
	// empty clause found before the main cycle. It stays -1 when the run
	// ended UNSAT through a dlvl-0 SkolemConflict (whose local-conflict-
	// check path has no single clause to blame) or EmptyDomain.
	// RefutingAssignment reads it to reconstruct spec.md §6's "V ..."
	// line.
	lastConflict qcnf.ClauseID
}

// Stats collects the counters spec.md's testable properties reference.
type Stats struct {
	Decisions   int64
	Conflicts   int64
	Restarts    int64
	MajorRestarts int64
	CEGARRounds int64
}

// New builds a Solver. s and e are the two embedded SAT-solver instances
// (Skolem-determinization and dual-existential respectively); they must
// never be shared between calls.
func New(q *qcnf.QCNF, s, e satsolver.Solver, skolemCfg skolem.Config, opts Options, log *logrus.Logger) *Solver {
	skolemEngine := skolem.New(q, s, skolemCfg)
	return &Solver{
		q:            q,
		skolem:       skolemEngine,
		cases:        casesplit.New(q, s, skolemEngine, e),
		analyzer:     conflictanalysis.New(),
		restarts:     NewRestartStrategy(),
		opts:         opts,
		log:          log.WithField("component", "outer"),
		lastConflict: -1,
	}
}

// Run executes the main cycle until a global verdict is reached or ctx
// is cancelled.
func (s *Solver) Run(ctx context.Context) (Outcome, error) {
	if id, ok := s.emptyClause(); ok {
		s.lastConflict = id
		return Unsat, nil
	}

	for {
		select {
		case <-ctx.Done():
			return Unknown, core.Wrap(ctx.Err(), "outer", "Run", core.Timeout, "solve cancelled")
		default:
		}

		state := s.skolem.Step()
		switch state {
		case skolem.ConstantsConflict, skolem.SkolemConflict:
			s.Stats.Conflicts++
			s.restarts.RecordConflict()
			if s.skolem.DecisionLevel() == 0 {
				if state == skolem.ConstantsConflict {
					s.lastConflict = s.skolem.ConflictClause()
				}
				return Unsat, nil
			}
			s.analyzeAndLearn(state)
			if s.restarts.ShouldRestart() {
				s.doRestart()
			}
			continue
		case skolem.EmptyDomain:
			return Unsat, nil
		}

		if s.allDeterministic() {
			if s.opts.CaseSplits || s.opts.CEGAROnly {
				cube := s.cases.FindCounterexample(s.currentSkolemValues())
				if cube == nil {
					return Sat, nil
				}
				s.Stats.CEGARRounds++
				cube = s.cases.MinimizeCube(cube, s.currentSkolemValues())
				s.cases.PushCase(cube)
				continue
			}
			return Sat, nil
		}

		id, _, ok := s.skolem.Decide()
		if !ok {
			return Sat, nil
		}
		s.Stats.Decisions++
		_ = id

		if s.opts.DecisionLimit > 0 && s.Stats.Decisions >= s.opts.DecisionLimit {
			return Unknown, nil
		}
	}
}

// emptyClause reports the first empty active clause in the store, if
// any: spec.md's "empty clause at parse" boundary case. qcnf.CloseClause's
// universal reduction already strips a clause down to nothing when every
// literal in it is universal (2QBF sorts universals before existentials,
// so such a clause is entirely a trailing run), so a purely-universal
// contradiction like (x)(¬x) arrives here as two literal-free clauses
// rather than needing its own detection path. Neither the Skolem engine's
// unique-consequence scan nor allDeterministic ever look at a clause with
// zero literals, so this has to be checked explicitly, once, before the
// main cycle starts.
func (s *Solver) emptyClause() (qcnf.ClauseID, bool) {
	it := s.q.ClauseIterator()
	for {
		c, err := it.Next()
		if err != nil || c == nil {
			return 0, false
		}
		if c.IsEmpty() {
			return c.ID, true
		}
	}
}

func (s *Solver) allDeterministic() bool {
	for id := range s.q.Vars {
		v := &s.q.Vars[id]
		if v.ID == 0 || v.IsUniversal {
			continue
		}
		if len(v.PosOccs)+len(v.NegOccs) == 0 {
			continue // a variable with no occurrences is ignored
		}
		if !s.skolem.IsDeterministic(v.ID) {
			return false
		}
	}
	return true
}

func (s *Solver) currentSkolemValues() map[int32]bool {
	values := make(map[int32]bool)
	for id := range s.q.Vars {
		v := &s.q.Vars[id]
		if v.ID == 0 || v.IsUniversal {
			continue
		}
		if s.skolem.IsDeterministic(v.ID) {
			values[v.ID] = s.skolem.ConstantValue(v.ID)
		}
	}
	return values
}

// analyzeAndLearn resolves the most recent conflict via the shared
// First-UIP analyzer and, when spec.md §4.5's minimize option is
// enabled, shrinks the learned clause before inserting it back into the
// store. It then backjumps the Skolem engine to the learned clause's
// second-highest decision level, per spec.md §4.4 step 2, so the next
// cycle does not immediately re-derive the same conflict.
//
// ConstantsConflict has a concrete UC clause to seed resolution from (the
// clause's own GetReasonFor chain leads back to whichever earlier clause
// fixed the opposing value). SkolemConflict's local-conflict check is a
// disposable, stateless probe with no persisted antecedent chain to
// resolve against, so it falls back to chronological backtracking by one
// level: still monotonically shrinks the search and guarantees the
// engine makes progress, at the cost of not producing a learned clause
// for that branch.
func (s *Solver) analyzeAndLearn(state skolem.State) {
	level := s.skolem.DecisionLevel()
	if state == skolem.SkolemConflict {
		s.skolem.Backtrack(level - 1)
		return
	}

	result := s.analyzer.Analyze(s.skolem.Domain(), conflictanalysis.ClauseID(s.skolem.ConflictClause()), level)
	if result == nil {
		s.skolem.Backtrack(level - 1)
		return
	}
	lits := make([]qcnf.Lit, 0, len(result.Clause))
	for _, l := range result.Clause {
		var ql qcnf.Lit
		if l < 0 {
			ql = qcnf.Lit(-int32(-l))
		} else {
			ql = qcnf.Lit(int32(l))
		}
		lits = append(lits, ql)
	}
	if s.opts.Minimize {
		lits = MinimizeLearned(s.q, lits)
	}
	for _, l := range lits {
		s.q.AddLiteral(l)
	}
	if _, err := s.q.CloseClause(false); err != nil {
		s.log.WithError(err).Debug("learned clause rejected as duplicate or tautology")
	}
	s.skolem.Backtrack(result.BacktrackLevel)
}

// Skolem exposes the underlying determinization engine so
// cmd/cadet can replay its trail into a certificate after a SAT Run,
// without outer growing a certificate-building dependency of its own.
func (s *Solver) Skolem() *skolem.Engine { return s.skolem }

// RefutingAssignment returns the universal assignment spec.md §6's "V
// ..." line reports after an UNSAT Run: the values that make each of the
// blamed clause's universal literals false (every one of them false is
// exactly what made the clause's unique existential consequence
// contradict an already-fixed value). For an empty clause found before
// the main cycle the map is empty but non-nil. Returns nil when no
// single clause is to blame — a dlvl-0 SkolemConflict, whose disposable
// local-conflict-check has no antecedent clause to read back.
func (s *Solver) RefutingAssignment() map[int32]bool {
	if s.lastConflict < 0 {
		return nil
	}
	c := &s.q.Clauses[s.lastConflict]
	assignment := make(map[int32]bool)
	for _, l := range c.Lits {
		v := s.q.VarOf(l.Var())
		if !v.IsUniversal {
			continue
		}
		assignment[v.ID] = l.Sign()
	}
	return assignment
}

func (s *Solver) doRestart() {
	major := s.restarts.OnRestart()
	s.Stats.Restarts++
	s.skolem.Backtrack(0)
	if major {
		s.Stats.MajorRestarts++
		s.log.Info("major restart")
	}
}
