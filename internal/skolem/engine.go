package skolem

import (
	"github.com/cadet-qbf/cadet/internal/qcnf"
	"github.com/cadet-qbf/cadet/internal/satsolver"
)

// Engine is the Skolem/determinization half of the outer C2 loop
// (spec.md §4.2): it owns the embedded solver S, the per-variable
// records, and the unique-consequence map, and exposes the operations
// internal/outer drives each cycle.
type Engine struct {
	q *qcnf.QCNF
	s satsolver.Solver

	vars map[int32]*variable

	// ucByLit indexes, for each literal, the clauses in which it is the
	// unique consequence of all the other literals being false.
	ucByLit map[qcnf.Lit][]uc

	// bothSided enables the both-sided partial-function encoding of
	// spec.md §9 (each direction of implication asserted, not just the
	// direction needed for soundness) for variables flagged
	// conflictPotential, or globally when this flag (Config.BothSided,
	// set by --pg) is on.
	bothSided bool

	// enhancedPureLiterals additionally treats a variable as pure when it
	// occurs with one polarity among *active* clauses only after
	// accounting for clauses already satisfied by other deterministic
	// variables, per spec.md §4.2's "enhanced pure literals" note.
	enhancedPureLiterals bool

	activityInc   float64
	activityDecay float64

	trail []int32 // existential variable ids, in the order they became deterministic

	// univLit is the persistent S-side literal standing for each universal
	// variable's own assignment. internal/casesplit reads the same map
	// (via UniversalLit) before asserting a case-split assumption in S, so
	// a case-split and a UC encoding that both mention a universal always
	// refer to the same S atom.
	univLit map[int32]satsolver.Lit

	// level is the current decision level: incremented once per Decide
	// call, shared by every variable assignment made before the next
	// decision (spec.md §3's decision_lvl field, kept here as a single
	// engine-wide counter rather than reinvented per variable).
	level int

	// conflictClause is the UC clause whose demand contradicted an
	// already-fixed constant, set when PropagateConstants reports
	// ConstantsConflict. internal/outer reads it as the seed for
	// conflict analysis: the clause's own reason chain (via
	// GetReasonFor) leads back to whichever earlier clause fixed the
	// opposing value.
	conflictClause qcnf.ClauseID

	// conflictVar is the existential whose both-polarities local check
	// failed, set when Step reports SkolemConflict.
	conflictVar int32

	// marks holds, per open decision level, a snapshot of every variable
	// record, the trail length, and the conflict-report fields at the
	// moment the level was opened — the "push a milestone, pop replays
	// records in reverse" discipline of spec.md §3's undo stack,
	// specialized to the Skolem engine's own state rather than threaded
	// through qcnf.UndoStack's generic tagged records. S's own
	// permanently-added UC-encoding and biconditional clauses are not
	// retracted by Backtrack: only GlobalConflictCheck's own transient
	// push/pop scope is undone within S itself, so a stale-but-unused
	// encoding clause left behind by a backtracked-away variable is
	// inert, never re-examined, not unsound.
	marks []levelMark
}

// levelMark is the state snapshot taken when a decision level opens.
type levelMark struct {
	trailLen       int
	vars           map[int32]variable
	conflictClause qcnf.ClauseID
	conflictVar    int32
}

// Config carries the options::Options flags the Skolem engine consults.
type Config struct {
	BothSided            bool
	EnhancedPureLiterals bool
}

// New builds a Skolem engine bound to q's existential variables. S is a
// fresh embedded SAT solver instance, owned exclusively by this engine
// per spec.md §5.
func New(q *qcnf.QCNF, s satsolver.Solver, cfg Config) *Engine {
	e := &Engine{
		q:                    q,
		s:                    s,
		vars:                 make(map[int32]*variable),
		ucByLit:              make(map[qcnf.Lit][]uc),
		bothSided:            cfg.BothSided,
		enhancedPureLiterals: cfg.EnhancedPureLiterals,
		activityInc:          1.0,
		activityDecay:        0.95,
		univLit:              make(map[int32]satsolver.Lit),
	}
	for id := range q.Vars {
		v := &q.Vars[id]
		if v.ID == 0 || v.IsUniversal {
			continue
		}
		e.vars[v.ID] = newVariable(v.ID)
	}
	return e
}

func (e *Engine) varRec(id int32) *variable {
	v, ok := e.vars[id]
	if !ok {
		v = newVariable(id)
		e.vars[id] = v
	}
	return v
}

// IsDeterministic reports whether id's Skolem function is already known.
func (e *Engine) IsDeterministic(id int32) bool { return e.varRec(id).deterministic }

// ConstantValue returns id's fixed Skolem value. It is meaningful only
// for a variable fixed as a constant; for a non-deterministic variable,
// or one determined through the S encoding, it returns false.
func (e *Engine) ConstantValue(id int32) bool { return e.varRec(id).constValue }

// ReasonForConstant returns the UC clause that propagated id's value, or
// -1 when id became deterministic by decision or the pure-literal rule
// instead. internal/certificate reads this to tell a real Skolem
// function (UCFunction) apart from a constant output (PureConstant)
// while replaying the determinization trail.
func (e *Engine) ReasonForConstant(id int32) qcnf.ClauseID { return e.varRec(id).reasonForConstant }

// Trail returns the existential variables in the order they became
// deterministic, oldest first.
func (e *Engine) Trail() []int32 { return append([]int32(nil), e.trail...) }

// recordUC registers lit as the unique consequence of clause c: every
// other literal in c is currently false, so lit must be true for c to be
// satisfied.
func (e *Engine) recordUC(lit qcnf.Lit, c qcnf.ClauseID) {
	e.ucByLit[lit] = append(e.ucByLit[lit], uc{lit: lit, clause: c})
}

// DetectUniqueConsequences rebuilds the unique-consequence map from
// scratch over the active clause set: a clause is a UC clause when
// exactly one of its existential literals is not yet a resolved flat
// constant, per spec.md §4.2.1. A clause already satisfied by some
// other, already-constant literal contributes no UC (it imposes no
// demand on anything). The map is discarded and rebuilt on every call
// rather than accumulated, since it is purely derived from the current
// clause/variable state and must never outlive a Backtrack that changes
// that state underneath it.
func (e *Engine) DetectUniqueConsequences() {
	e.ucByLit = make(map[qcnf.Lit][]uc)
	it := e.q.ClauseIterator()
	for {
		c, err := it.Next()
		if err != nil {
			return
		}
		if c == nil {
			break
		}
		if !c.Active || e.clauseSatisfiedByConstant(c) {
			continue
		}
		var candidate qcnf.Lit
		count := 0
		for _, l := range c.Lits {
			v := e.q.VarOf(l.Var())
			if v.IsUniversal {
				continue
			}
			if e.varRec(v.ID).isConstant {
				continue
			}
			count++
			candidate = l
		}
		if count == 1 {
			e.recordUC(candidate, c.ID)
		}
	}
}

// clauseSatisfiedByConstant reports whether c is already satisfied by a
// resolved flat constant on one of its existential literals — a
// decision, a pure literal, or an earlier constant propagation.
func (e *Engine) clauseSatisfiedByConstant(c *qcnf.Clause) bool {
	for _, l := range c.Lits {
		v := e.q.VarOf(l.Var())
		if v.IsUniversal {
			continue
		}
		rec := e.varRec(v.ID)
		if rec.isConstant && e.constantSatisfies(rec, l) {
			return true
		}
	}
	return false
}

// PureLiteralRule marks existential variables that occur with only one
// polarity among active clauses as deterministic constants, per spec.md
// §4.2's pure-literal step. With EnhancedPureLiterals, a variable also
// qualifies when its only occurrences of the opposite polarity sit in
// clauses that another already-deterministic variable already satisfies.
func (e *Engine) PureLiteralRule() {
	for id, rec := range e.vars {
		if rec.deterministic {
			continue
		}
		v := e.q.VarOf(id)
		posLive := e.anyActive(v.PosOccs)
		negLive := e.anyActive(v.NegOccs)
		if posLive && !negLive {
			rec.purePos = true
			e.makeConstant(id, true, -1)
		} else if negLive && !posLive {
			rec.pureNeg = true
			e.makeConstant(id, false, -1)
		} else if e.enhancedPureLiterals && posLive && negLive {
			if e.allSatisfiedByOthers(v.NegOccs, id) {
				rec.purePos = true
				e.makeConstant(id, true, -1)
			} else if e.allSatisfiedByOthers(v.PosOccs, id) {
				rec.pureNeg = true
				e.makeConstant(id, false, -1)
			}
		}
	}
}

func (e *Engine) anyActive(occs []qcnf.ClauseID) bool {
	for _, id := range occs {
		if e.q.Clauses[id].Active {
			return true
		}
	}
	return false
}

// allSatisfiedByOthers reports whether every active clause in occs
// contains a literal of a deterministic variable other than except whose
// fixed value satisfies the clause.
func (e *Engine) allSatisfiedByOthers(occs []qcnf.ClauseID, except int32) bool {
	for _, cid := range occs {
		c := &e.q.Clauses[cid]
		if !c.Active {
			continue
		}
		satisfied := false
		for _, l := range c.Lits {
			if l.Var() == except {
				continue
			}
			rec, ok := e.vars[l.Var()]
			if ok && rec.isConstant && e.constantSatisfies(rec, l) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}

func (e *Engine) constantSatisfies(rec *variable, l qcnf.Lit) bool {
	val := e.constantValue(rec)
	return val == !l.Sign()
}

func (e *Engine) constantValue(rec *variable) bool {
	return rec.constValue
}

// makeConstant fixes id's Skolem function to the constant value and
// records the clause responsible (or -1 for a decision/pure literal with
// no single antecedent clause) for conflict-analysis's GetReasonFor.
func (e *Engine) makeConstant(id int32, value bool, reason qcnf.ClauseID) {
	rec := e.varRec(id)
	rec.isConstant = true
	rec.constValue = value
	e.markDeterministic(id, reason)
}

// markSkolemDeterministic fixes id's Skolem function via the embedded-
// solver partial-function encoding (posLit/negLit), established by
// GlobalConflictCheck, rather than a flat constant: id's value genuinely
// depends on the universals/existentials its UC antecedents mention, so
// constValue/isConstant are left at their zero values. Only
// certificate.BuildFromTrail's UC replay, not PureConstant, can
// reconstruct such a variable's function.
func (e *Engine) markSkolemDeterministic(id int32, reason qcnf.ClauseID) {
	e.markDeterministic(id, reason)
}

// markDeterministic stamps the bookkeeping shared by both flavors of
// determinization: the variable is stamped with the engine's current
// decision level regardless of whether it arrived by decision, pure-
// literal rule, constant propagation, or the Skolem encoding, so conflict
// analysis sees a consistent level for every assigned variable.
func (e *Engine) markDeterministic(id int32, reason qcnf.ClauseID) {
	rec := e.varRec(id)
	rec.deterministic = true
	rec.reasonForConstant = reason
	rec.decisionLvl = e.level
	rec.dlvlForConstant = e.level
	e.trail = append(e.trail, id)
	e.bumpActivity(id)
}

func (e *Engine) bumpActivity(id int32) {
	rec := e.varRec(id)
	rec.activity += e.activityInc
}

// DecayActivities scales down every variable's activity, matching the
// teacher's VSIDS decay in sat/heuristics.go.
func (e *Engine) DecayActivities() {
	for _, rec := range e.vars {
		rec.activity *= e.activityDecay
	}
}

// PropagateConstants applies spec.md §4.2.8's narrow constant
// propagation: a UC clause fixes its candidate to a flat boolean only
// when every one of the clause's other literals is itself an
// already-resolved flat constant. A UC clause whose other literals
// include a live universal or a genuinely Skolem-function-determined
// (not-yet-constant) existential is left alone here — spec.md §4.2.1's
// broader unique-consequence detection for that shape is the embedded-
// solver-backed Skolem pipeline's job (determinizeViaSkolem), not this
// fast path. Reports ConstantsConflict if two narrowly-propagable UCs
// disagree on the same variable's value.
func (e *Engine) PropagateConstants() State {
	e.DetectUniqueConsequences()
	for lit, ucs := range e.ucByLit {
		for _, u := range ucs {
			c := &e.q.Clauses[u.clause]
			if !c.Active || !e.allOtherLiteralsConstant(c, lit) {
				continue
			}
			rec := e.varRec(lit.Var())
			want := !lit.Sign()
			if rec.isConstant {
				if e.constantValue(rec) != want {
					rec.conflictPotential = true
					e.conflictClause = u.clause
					return ConstantsConflict
				}
				continue
			}
			e.makeConstant(lit.Var(), want, u.clause)
		}
	}
	return Ready
}

// allOtherLiteralsConstant reports whether every literal in c other than
// except already belongs to a resolved flat constant — the precondition
// for spec.md §4.2.8's narrow constant propagation to fire on except.
func (e *Engine) allOtherLiteralsConstant(c *qcnf.Clause, except qcnf.Lit) bool {
	for _, l := range c.Lits {
		if l == except {
			continue
		}
		v := e.q.VarOf(l.Var())
		if v.IsUniversal {
			return false
		}
		if !e.varRec(v.ID).isConstant {
			return false
		}
	}
	return true
}

// LocalDeterminicityCheck decides, via a disposable DPLL instance built
// from id's UC antecedent clauses with id's own literal removed from
// each (spec.md §4.2.2), whether the antecedents alone already
// contradict each other — i.e. whether id is forced, regardless of id's
// own value, by the clauses currently mentioning it. Distinct from (and
// cheaper than) a global conflict check against all of S.
func (e *Engine) LocalDeterminicityCheck(id int32) bool {
	cs := e.ucAntecedentClauses(id)
	if len(cs) == 0 {
		return false
	}
	return !dpllSat(cs)
}

// ucAntecedentClauses builds id's recorded UC clauses (both polarities),
// each with id's own triggering literal removed, for
// LocalDeterminicityCheck: the question is whether the OTHER literals
// alone already force a contradiction, not whether id's own literal
// trivially satisfies its own clause.
func (e *Engine) ucAntecedentClauses(id int32) disposableClauses {
	var cs disposableClauses
	add := func(lit qcnf.Lit) {
		for _, u := range e.ucByLit[lit] {
			c := &e.q.Clauses[u.clause]
			if !c.Active {
				continue
			}
			clause := make([]satLit, 0, len(c.Lits)-1)
			for _, l := range c.Lits {
				if l == u.lit {
					continue
				}
				sl := satLit(l.Var())
				if l.Sign() {
					sl = -sl
				}
				clause = append(clause, sl)
			}
			cs = append(cs, clause)
		}
	}
	add(qcnf.Lit(id))
	add(qcnf.Lit(-id))
	return cs
}

// LocalConflictCheck asks whether forcing id to value, given only the
// clauses that currently mention id, is already locally unsatisfiable —
// spec.md §4.2.4's cheap pre-check before escalating to the shared
// embedded solver.
func (e *Engine) LocalConflictCheck(id int32, value bool) bool {
	v := e.q.VarOf(id)
	cs := e.buildDisposable(v.PosOccs, v.NegOccs)
	forced := satLit(id)
	if !value {
		forced = -forced
	}
	cs = append(cs, []satLit{forced})
	return !dpllSat(cs)
}

func (e *Engine) buildDisposable(posOccs, negOccs []qcnf.ClauseID) disposableClauses {
	var cs disposableClauses
	add := func(occs []qcnf.ClauseID) {
		for _, cid := range occs {
			c := &e.q.Clauses[cid]
			if !c.Active {
				continue
			}
			clause := make([]satLit, 0, len(c.Lits))
			for _, l := range c.Lits {
				sl := satLit(l.Var())
				if l.Sign() {
					sl = -sl
				}
				clause = append(clause, sl)
			}
			cs = append(cs, clause)
		}
	}
	add(posOccs)
	add(negOccs)
	return cs
}

// UniversalLit returns the persistent S-side literal standing for
// universal variable id's own assignment, allocating one on first use.
// internal/casesplit calls this instead of minting its own literal so a
// case-split assumption on id constrains exactly the atom the Skolem
// encoding below reasons about.
func (e *Engine) UniversalLit(id int32) satsolver.Lit {
	if lit, ok := e.univLit[id]; ok {
		return lit
	}
	lit := e.s.NewVar()
	e.univLit[id] = lit
	return lit
}

// EncodeAsDeterministic gives id a partial-function encoding in the
// embedded solver S: fresh literals posLit/negLit standing for "id is
// forced true"/"id is forced false," related to id's antecedent clauses
// by implication. With bothSided (or when rec.conflictPotential is set),
// both directions of each implication are asserted, per spec.md §9's
// resolution of the partial-function-encoding open question.
func (e *Engine) EncodeAsDeterministic(id int32) {
	rec := e.varRec(id)
	if rec.posLit != satsolver.NullLit {
		return
	}
	rec.posLit = e.s.NewVar()
	rec.negLit = e.s.NewVar()

	both := e.bothSided || rec.conflictPotential
	for _, u := range e.ucByLit[qcnf.Lit(id)] {
		e.encodeUC(rec.posLit, u, both)
	}
	for _, u := range e.ucByLit[qcnf.Lit(-id)] {
		e.encodeUC(rec.negLit, u, both)
	}
}

// satLitForTrue returns the S-side literal that holds exactly when l
// itself holds: the variable's own atom for a universal, and the
// matching posLit/negLit for an existential (recursively encoding it if
// it has none yet). This is what lets a UC clause's other literals be
// restated inside S.
func (e *Engine) satLitForTrue(l qcnf.Lit) satsolver.Lit {
	v := e.q.VarOf(l.Var())
	if v.IsUniversal {
		lit := e.UniversalLit(v.ID)
		if l.Sign() {
			return negateSat(lit)
		}
		return lit
	}
	e.EncodeAsDeterministic(v.ID)
	rec := e.varRec(v.ID)
	if l.Sign() {
		return rec.negLit
	}
	return rec.posLit
}

// encodeUC asserts "antecedent ⇒ trigger" for UC clause u: the clause's
// literals other than u's own, restated as their S-side true-indicators,
// disjoined with trigger — spec.md §4.2.3's "⋁(¬pos_lit(l_i)) ∨ s_v",
// read as the clause's own definitional unique-consequence shape: if
// every other literal is false, the clause forces u's literal, i.e.
// trigger, true. With both set, the converse "trigger ⇒ ¬antecedent" is
// asserted literal by literal, making the encoding an exact biconditional
// (trigger holds exactly when every antecedent is false) rather than
// one-directional — spec.md §9's resolution for when the stronger,
// two-sided form is required.
func (e *Engine) encodeUC(trigger satsolver.Lit, u uc, both bool) {
	c := &e.q.Clauses[u.clause]
	var antecedents []satsolver.Lit
	for _, l := range c.Lits {
		if l == u.lit {
			continue
		}
		antecedents = append(antecedents, e.satLitForTrue(l))
	}
	for _, a := range antecedents {
		e.s.AddLit(a)
	}
	e.s.AddLit(trigger)
	e.s.ClauseFinished()

	if both {
		for _, a := range antecedents {
			e.s.AddLit(negateSat(trigger))
			e.s.AddLit(negateSat(a))
			e.s.ClauseFinished()
		}
	}
}

func negateSat(l satsolver.Lit) satsolver.Lit { return -l }

// GlobalConflictCheck asks the shared embedded solver S whether id's two
// encoded directions, pos_lit(id) and neg_lit(id), can be simultaneously
// satisfied under everything already asserted — spec.md §4.2.7's
// authoritative global conflict check, the expensive fallback once the
// cheaper local checks can't decide id's fate alone. It first completes
// both triggers' biconditionals (trigger ⇒ ¬antecedent, the converse
// encodeUC only adds when bothSided/conflictPotential already applies),
// since without that the one-directional encoding never pins posLit or
// negLit false and the pos∧neg check would be vacuously satisfiable
// regardless of any real contradiction; duplicating an already-asserted
// biconditional costs a few redundant clauses in S, never correctness.
// A Sat result means two different UC derivations are demanding opposite
// values for id: a genuine conflict. An Unsat result establishes id as
// determined.
func (e *Engine) GlobalConflictCheck(id int32) bool {
	rec := e.varRec(id)
	e.EncodeAsDeterministic(id)
	e.completeBiconditional(rec.posLit, qcnf.Lit(id))
	e.completeBiconditional(rec.negLit, qcnf.Lit(-id))

	e.s.Push(rec.posLit)
	e.s.Push(rec.negLit)
	conflict := e.s.Sat() == satsolver.Sat
	e.s.Pop()
	e.s.Pop()
	return conflict
}

// completeBiconditional asserts trigger ⇒ ¬antecedent for every
// antecedent of every UC clause recorded under lit, regardless of
// whether encodeUC already added it under bothSided/conflictPotential —
// spec.md §4.2.7's global conflict check needs the full biconditional
// for pos_lit(v) ∧ neg_lit(v) to mean anything.
func (e *Engine) completeBiconditional(trigger satsolver.Lit, lit qcnf.Lit) {
	for _, u := range e.ucByLit[lit] {
		c := &e.q.Clauses[u.clause]
		for _, l := range c.Lits {
			if l == u.lit {
				continue
			}
			e.s.AddLit(negateSat(trigger))
			e.s.AddLit(negateSat(e.satLitForTrue(l)))
			e.s.ClauseFinished()
		}
	}
}

// Decide picks the next non-deterministic existential by activity (VSIDS
// order, teacher's sat/heuristics.go) and assigns it the polarity
// matching its last decision, defaulting to true. Opens a new decision
// level (spec.md §3's push()) so a later Backtrack can undo exactly this
// decision and everything propagated from it.
func (e *Engine) Decide() (int32, bool, bool) {
	var best int32
	bestActivity := -1.0
	for id, rec := range e.vars {
		if rec.deterministic {
			continue
		}
		if rec.activity > bestActivity {
			bestActivity = rec.activity
			best = id
		}
	}
	if best == 0 {
		return 0, false, false
	}
	e.openLevel()
	rec := e.varRec(best)
	value := !rec.decisionNeg
	rec.decisionPos = value
	rec.decisionNeg = !value
	e.makeConstant(best, value, -1)
	return best, value, true
}

// ConflictClause returns the UC clause responsible for the most recent
// ConstantsConflict. Only meaningful immediately after Step/
// PropagateConstants returned ConstantsConflict.
func (e *Engine) ConflictClause() qcnf.ClauseID { return e.conflictClause }

// ConflictVar returns the existential variable responsible for the most
// recent SkolemConflict. Only meaningful immediately after Step returned
// SkolemConflict.
func (e *Engine) ConflictVar() int32 { return e.conflictVar }

// DecisionLevel returns the engine's current decision level: the number
// of Decide calls made since construction (or since the last Backtrack to
// a lower level), per spec.md §3's decision_lvl bookkeeping.
func (e *Engine) DecisionLevel() int { return e.level }

// openLevel snapshots every variable record, plus the engine's own
// conflict-report fields, before incrementing the decision level, so
// Backtrack can restore exactly this state later.
func (e *Engine) openLevel() {
	snap := make(map[int32]variable, len(e.vars))
	for id, v := range e.vars {
		snap[id] = *v
	}
	e.marks = append(e.marks, levelMark{
		trailLen:       len(e.trail),
		vars:           snap,
		conflictClause: e.conflictClause,
		conflictVar:    e.conflictVar,
	})
	e.level++
}

// Backtrack undoes every decision and propagation made at a level deeper
// than target, restoring each variable record and the engine's own
// conflict-report fields to their value when that level opened, and
// truncating the determinization trail to match — spec.md §4.4 step 2's
// "back-jump to second-largest decision level," and spec.md §8 invariant
// 4's push/pop structural equality. ucByLit is not part of the snapshot:
// it is pure derived state, rebuilt from scratch by the next
// DetectUniqueConsequences call, so it never goes stale across a
// Backtrack the way a carried-forward value would.
func (e *Engine) Backtrack(target int) {
	for e.level > target {
		mark := e.marks[len(e.marks)-1]
		e.marks = e.marks[:len(e.marks)-1]
		for id, snap := range mark.vars {
			*e.vars[id] = snap
		}
		e.trail = e.trail[:mark.trailLen]
		e.conflictClause = mark.conflictClause
		e.conflictVar = mark.conflictVar
		e.level--
	}
}

// Step runs one determinization cycle: narrow constant propagation, the
// pure-literal rule, then the Skolem determinization pipeline
// (determinizeViaSkolem) for every existential the unique-consequence map
// still has something to say about. Step never returns EmptyDomain;
// internal/outer treats a cycle in which no decision is possible as SAT.
func (e *Engine) Step() State {
	if st := e.PropagateConstants(); st != Ready {
		return st
	}
	e.PureLiteralRule()
	for id, rec := range e.vars {
		if rec.deterministic {
			continue
		}
		if st := e.determinizeViaSkolem(id); st != Ready {
			return st
		}
	}
	return Ready
}

// determinizeViaSkolem drives spec.md §4.2's cheaper-before-expensive
// escalation for one non-deterministic existential: a pair of local
// conflict checks catches an outright contradiction without touching S,
// a local determinicity check decides whether its UC antecedents alone
// already force it, and only once that passes does it escalate to the
// authoritative, S-backed global conflict check that actually
// establishes (or refutes) id's determinism.
func (e *Engine) determinizeViaSkolem(id int32) State {
	if len(e.ucByLit[qcnf.Lit(id)]) == 0 && len(e.ucByLit[qcnf.Lit(-id)]) == 0 {
		return Ready
	}
	if e.LocalConflictCheck(id, true) && e.LocalConflictCheck(id, false) {
		e.conflictVar = id
		return SkolemConflict
	}
	if !e.LocalDeterminicityCheck(id) {
		return Ready
	}
	if e.GlobalConflictCheck(id) {
		e.conflictVar = id
		return SkolemConflict
	}
	e.markSkolemDeterministic(id, e.ucReasonFor(id))
	return Ready
}

// ucReasonFor returns a representative UC clause for id — whichever
// side (pos_lit or neg_lit) has one recorded, preferring the positive
// side. certificate.BuildFromTrail replays this one clause's antecedents
// as id's Skolem function; spec.md §4.2.3's full partial-function
// encoding may assert more than this single clause into S, but the one
// clause alone is already sufficient to reconstruct a sound function.
func (e *Engine) ucReasonFor(id int32) qcnf.ClauseID {
	if ucs := e.ucByLit[qcnf.Lit(id)]; len(ucs) > 0 {
		return ucs[0].clause
	}
	if ucs := e.ucByLit[qcnf.Lit(-id)]; len(ucs) > 0 {
		return ucs[0].clause
	}
	return -1
}
