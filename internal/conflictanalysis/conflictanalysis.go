// Package conflictanalysis implements a First-UIP-style backward
// resolution pass shared by both the Skolem engine's determinization
// conflicts and the partial-assignment engine's propagation conflicts.
// It is grounded on the teacher's sat/conflict_analysis.go
// FirstUIPAnalyzer, re-typed from string-keyed variables onto int32 ids
// and generalized behind a Domain interface so the same resolution loop
// serves both engines, per spec.md §9's guidance to replace C function
// pointers with a small interface rather than duplicating the analyzer.
// LBD/glue bookkeeping (relevant only to multi-clause-database learnt
// clause deletion policies the outer loop does not implement) is
// dropped.
package conflictanalysis

import "sort"

// Lit is a signed literal in whichever domain (Skolem or
// partial-assignment) the analyzer is currently resolving within.
type Lit int32

func (l Lit) variable() int32 {
	if l < 0 {
		return int32(-l)
	}
	return int32(l)
}
func (l Lit) negate() Lit { return -l }

// ClauseID identifies a clause within the Domain's own clause store.
type ClauseID int32

// NoReason marks a decision/pure-literal assignment with no antecedent
// clause.
const NoReason ClauseID = -1

// Domain abstracts over the two engines whose conflicts this analyzer
// resolves: the Skolem engine's deterministic-constant trail, and the
// partial-assignment engine's unit-propagation trail. Both expose the
// same five operations the resolution loop needs.
type Domain interface {
	// Literals returns the literals of clause c.
	Literals(c ClauseID) []Lit
	// IsRelevantClause reports whether c should participate in
	// resolution (the partial-assignment domain excludes clauses already
	// satisfied by a universal assumption outside the conflict's cone).
	IsRelevantClause(c ClauseID) bool
	// IsLegalDependence reports whether v is a valid resolution target —
	// the Skolem domain excludes universals, which can never be resolved
	// away.
	IsLegalDependence(v int32) bool
	// GetDecisionLvl returns v's decision level, or -1 if unassigned.
	GetDecisionLvl(v int32) int
	// GetReasonFor returns the clause that forced v's current value, or
	// NoReason if v was a decision or has no value.
	GetReasonFor(v int32) ClauseID
}

// Result is the outcome of Analyze: the learned clause and the level to
// backjump to.
type Result struct {
	Clause         []Lit
	BacktrackLevel int
}

// Analyzer runs First-UIP resolution against a Domain. One Analyzer can
// be reused across many conflicts; Analyze resets its scratch state on
// each call.
type Analyzer struct {
	resolutions int64
	unitClauses int64
}

func New() *Analyzer { return &Analyzer{} }

// Analyze resolves the conflicting clause back to its first unique
// implication point at the domain's current decision level. A root-level
// conflict (currentLevel == 0) returns a nil Result, signaling the
// caller (outer.Run) that the formula/Skolem problem is globally
// refuted.
func (a *Analyzer) Analyze(d Domain, conflict ClauseID, currentLevel int) *Result {
	if currentLevel == 0 {
		return nil
	}

	learnt := make([]Lit, 0)
	for _, l := range d.Literals(conflict) {
		learnt = append(learnt, l)
	}

	for a.countAtLevel(d, learnt, currentLevel) > 1 {
		resolveVar, ok := a.mostRecentAtLevel(d, learnt, currentLevel)
		if !ok {
			break
		}
		reason := d.GetReasonFor(resolveVar)
		if reason == NoReason {
			break // decision variable at current level: First-UIP reached
		}
		a.resolutions++
		learnt = a.resolve(d, learnt, reason, resolveVar)
	}

	learnt = dedup(learnt)
	if len(learnt) == 1 {
		a.unitClauses++
	}

	sort.Slice(learnt, func(i, j int) bool {
		return d.GetDecisionLvl(learnt[i].variable()) > d.GetDecisionLvl(learnt[j].variable())
	})

	return &Result{Clause: learnt, BacktrackLevel: a.backtrackLevel(d, learnt, currentLevel)}
}

func (a *Analyzer) countAtLevel(d Domain, clause []Lit, level int) int {
	n := 0
	for _, l := range clause {
		if d.GetDecisionLvl(l.variable()) == level {
			n++
		}
	}
	return n
}

// mostRecentAtLevel finds the clause literal at level whose variable was
// assigned latest. The Domain does not expose absolute trail position,
// so this is approximated: a decision is the first assignment made at
// its level, so a variable with a reason clause is preferred over one
// without, and otherwise the last such literal in clause order is taken.
func (a *Analyzer) mostRecentAtLevel(d Domain, clause []Lit, level int) (int32, bool) {
	found := false
	var v int32
	for i := len(clause) - 1; i >= 0; i-- {
		if !d.IsLegalDependence(clause[i].variable()) {
			continue
		}
		if d.GetDecisionLvl(clause[i].variable()) == level {
			if d.GetReasonFor(clause[i].variable()) != NoReason {
				return clause[i].variable(), true
			}
			if !found {
				v = clause[i].variable()
				found = true
			}
		}
	}
	return v, found
}

func (a *Analyzer) resolve(d Domain, learnt []Lit, reason ClauseID, resolveVar int32) []Lit {
	out := make([]Lit, 0, len(learnt))
	for _, l := range learnt {
		if l.variable() != resolveVar {
			out = append(out, l)
		}
	}
	if !d.IsRelevantClause(reason) {
		return out
	}
	have := map[int32]bool{}
	for _, l := range out {
		have[l.variable()] = true
	}
	for _, l := range d.Literals(reason) {
		if l.variable() == resolveVar || have[l.variable()] {
			continue
		}
		out = append(out, l)
		have[l.variable()] = true
	}
	return out
}

func dedup(clause []Lit) []Lit {
	seen := map[Lit]bool{}
	out := clause[:0:0]
	for _, l := range clause {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

func (a *Analyzer) backtrackLevel(d Domain, clause []Lit, currentLevel int) int {
	if len(clause) <= 1 {
		return 0
	}
	levels := make([]int, 0, len(clause))
	for _, l := range clause {
		lvl := d.GetDecisionLvl(l.variable())
		if lvl >= 0 && lvl < currentLevel {
			levels = append(levels, lvl)
		}
	}
	if len(levels) == 0 {
		return 0
	}
	sort.Ints(levels)
	uniq := levels[:0:0]
	prev := -1
	for _, l := range levels {
		if l != prev {
			uniq = append(uniq, l)
			prev = l
		}
	}
	if len(uniq) == 1 {
		return uniq[0]
	}
	return uniq[len(uniq)-1]
}

// Stats returns resolution counters, mirroring the teacher's
// GetStatistics in spirit (LBD/glue counters omitted since this
// analyzer's callers do not run a clause-database reduction policy).
func (a *Analyzer) Stats() (resolutions, unitClauses int64) {
	return a.resolutions, a.unitClauses
}
