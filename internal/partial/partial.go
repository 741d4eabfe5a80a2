// Package partial implements the partial-assignment engine: for each
// universal sub-cube under active exploration (spec.md §4.3), it
// maintains a classical unit-propagation trail over the active clause
// set, independent of the Skolem engine's determinization bookkeeping.
// It is grounded on the teacher's sat/trail.go DecisionTrailImpl (the
// level-indexed trail with O(1) reason/level lookup) and
// sat/preprocessor.go's unitPropagation fixpoint loop, re-typed from
// string-keyed variables onto qcnf's int32 ids and rewritten to
// propagate to fixpoint against the live, lazily-compacted active
// clause vector instead of a one-shot copied CNF.
package partial

import (
	"github.com/cadet-qbf/cadet/internal/qcnf"
)

// entry mirrors the teacher's TrailEntry: one assignment, its decision
// level, and the clause responsible (hasReason false for decisions/
// universal assumptions).
type entry struct {
	varID  int32
	value  bool
	level  int
	reason qcnf.ClauseID
	hasReason bool
}

// Trail is a level-indexed assignment trail for one partial-assignment
// worker. Multiple Trails can coexist (one per concrete universal
// assignment under simultaneous exploration, per spec.md §4.3), each
// reading the same underlying QCNF but keeping independent state.
type Trail struct {
	q *qcnf.QCNF

	entries     []entry
	varToIndex  map[int32]int
	levelStarts map[int]int

	currentLevel int
	maxLevel     int

	assigned map[int32]bool // current value per assigned variable
}

// New returns an empty Trail bound to q.
func New(q *qcnf.QCNF) *Trail {
	return &Trail{
		q:           q,
		varToIndex:  make(map[int32]int),
		levelStarts: make(map[int]int),
		assigned:    make(map[int32]bool),
	}
}

// Assign records varID := value at level, with reason identifying the
// propagating clause (hasReason == false marks a decision/assumption).
func (t *Trail) Assign(varID int32, value bool, level int, reason qcnf.ClauseID, hasReason bool) {
	if level > t.currentLevel {
		t.levelStarts[level] = len(t.entries)
		t.currentLevel = level
		if level > t.maxLevel {
			t.maxLevel = level
		}
	}
	t.entries = append(t.entries, entry{varID: varID, value: value, level: level, reason: reason, hasReason: hasReason})
	t.varToIndex[varID] = len(t.entries) - 1
	t.assigned[varID] = value
}

// Value reports varID's current value and whether it is assigned.
func (t *Trail) Value(varID int32) (bool, bool) {
	v, ok := t.assigned[varID]
	return v, ok
}

// Level returns varID's decision level, or -1 if unassigned.
func (t *Trail) Level(varID int32) int {
	if idx, ok := t.varToIndex[varID]; ok {
		return t.entries[idx].level
	}
	return -1
}

// Reason returns varID's propagating clause and whether it has one.
func (t *Trail) Reason(varID int32) (qcnf.ClauseID, bool) {
	if idx, ok := t.varToIndex[varID]; ok {
		return t.entries[idx].reason, t.entries[idx].hasReason
	}
	return 0, false
}

// Backtrack undoes every assignment made at a level above level,
// returning the variables that became unassigned.
func (t *Trail) Backtrack(level int) []int32 {
	if level >= t.currentLevel {
		return nil
	}
	cut := len(t.entries)
	if start, ok := t.levelStarts[level+1]; ok {
		cut = start
	}
	undone := make([]int32, 0, len(t.entries)-cut)
	for i := cut; i < len(t.entries); i++ {
		id := t.entries[i].varID
		undone = append(undone, id)
		delete(t.varToIndex, id)
		delete(t.assigned, id)
	}
	t.entries = t.entries[:cut]
	for l := level + 1; l <= t.maxLevel; l++ {
		delete(t.levelStarts, l)
	}
	t.currentLevel = level
	if level < t.maxLevel {
		t.maxLevel = level
		for l := range t.levelStarts {
			if l > t.maxLevel {
				t.maxLevel = l
			}
		}
	}
	return undone
}

// Conflict is returned by Propagate when unit propagation derives the
// empty clause.
type Conflict struct {
	Clause qcnf.ClauseID
}

// Propagate runs classical unit propagation to fixpoint over q's active
// clauses at the trail's current level, mirroring the teacher's
// SATPreprocessor.unitPropagation loop but operating against the live
// store instead of a copied, one-shot CNF: it repeatedly scans for a
// clause with exactly one unassigned literal and all others false,
// assigns that literal, and repeats until no further unit exists or a
// clause is fully falsified.
func (t *Trail) Propagate() *Conflict {
	for {
		progressed := false
		it := t.q.ClauseIterator()
		for {
			c, err := it.Next()
			if err != nil {
				return nil
			}
			if c == nil {
				break
			}
			unassignedLit, unassignedCount, falsified := t.scan(c)
			if falsified {
				return &Conflict{Clause: c.ID}
			}
			if unassignedCount == 1 {
				t.Assign(unassignedLit.Var(), !unassignedLit.Sign(), t.currentLevel, c.ID, true)
				progressed = true
			}
		}
		if !progressed {
			return nil
		}
	}
}

// scan reports the clause's status: if exactly one literal is
// unassigned and every other literal is false, it is returned as the
// unit literal; if every literal is false, falsified is true.
func (t *Trail) scan(c *qcnf.Clause) (unit qcnf.Lit, unassignedCount int, falsified bool) {
	satisfied := false
	for _, l := range c.Lits {
		val, ok := t.Value(l.Var())
		if !ok {
			unassignedCount++
			unit = l
			continue
		}
		if val == !l.Sign() {
			satisfied = true
		}
	}
	if satisfied {
		return 0, 0, false
	}
	if unassignedCount == 0 {
		return 0, 0, true
	}
	return unit, unassignedCount, false
}
