package qcnf

import (
	"sort"

	"github.com/cadet-qbf/cadet/core"
)

// QCNF is the authoritative formula store: a variable arena, a clause
// arena, and the shared undo log. Everything downstream (Skolem engine,
// partial-assignment engine, case-splits) references entities by index
// into these two arenas rather than holding pointers, per spec.md §9.
type QCNF struct {
	Vars    []Variable // index 0 unused; variable ids start at 1
	Clauses []Clause

	// active is the lazily-compacted "active clause vector" of spec.md
	// §3: a subset of Clauses that currently satisfies Active==true.
	active []ClauseID
	// iterToken invalidates stale iterators after a compacting pass.
	iterToken int

	Undo *UndoStack

	pending []Lit // clause currently being built by AddLiteral

	// Stats mirror the -v 3 diagnostic counters of the original CADET.
	Stats Stats
}

// Stats holds the testable, named counters spec.md calls out explicitly.
type Stats struct {
	UniversalReductions int64
	TautologiesRejected int64
	DuplicatesRejected  int64
}

// New returns an empty QCNF store.
func New() *QCNF {
	return &QCNF{
		Vars: make([]Variable, 1, 64), // reserve id 0
		Undo: NewUndoStack(),
	}
}

// NewVar introduces a variable. It is an error to reuse an id.
func (q *QCNF) NewVar(id int32, scope Scope, isUniversal, original bool) error {
	if int(id) < len(q.Vars) && q.Vars[id].ID == id {
		return core.New("qcnf", "NewVar", core.InvalidInput, "duplicate variable")
	}
	for int32(len(q.Vars)) <= id {
		q.Vars = append(q.Vars, Variable{})
	}
	q.Vars[id] = Variable{ID: id, Scope: scope, IsUniversal: isUniversal, Original: original}
	q.Undo.record(undoOp{Tag: undoNewVar, VarID: id})
	return nil
}

// HasVar reports whether id was introduced via NewVar.
func (q *QCNF) HasVar(id int32) bool {
	return id > 0 && int(id) < len(q.Vars) && q.Vars[id].ID == id
}

func (q *QCNF) VarOf(id int32) *Variable { return &q.Vars[id] }

// AddLiteral accumulates a literal into the clause currently under
// construction. The clause is finished (and validated) by CloseClause.
func (q *QCNF) AddLiteral(l Lit) {
	q.pending = append(q.pending, l)
}

// isUniversal reports whether l's variable is a universal.
func (q *QCNF) isUniversal(l Lit) bool { return q.Vars[l.Var()].IsUniversal }
func (q *QCNF) scopeOf(l Lit) Scope    { return q.Vars[l.Var()].Scope }

func clauseOrderLess(q *QCNF, a, b Lit) bool {
	ua, ub := q.isUniversal(a), q.isUniversal(b)
	if ua != ub {
		return ua // universals sort first
	}
	sa, sb := q.scopeOf(a), q.scopeOf(b)
	if sa != sb {
		return sa < sb
	}
	return a.Var() < b.Var()
}

// CloseClause finalizes the pending literal buffer into a clause: it
// sorts by the universal/scope/var order of spec.md §3, rejects
// tautologies, applies universal reduction (dropping a trailing run of
// universal literals that no existential in the clause could depend on —
// here, any universal at all, since 2QBF puts universals strictly before
// all existentials), deduplicates literals, and rejects a clause that
// literal-for-literal duplicates an already-active clause.
//
// Returns the new clause's id, or (0, nil) for a tautology.
func (q *QCNF) CloseClause(original bool) (ClauseID, error) {
	lits := q.pending
	q.pending = nil

	for _, l := range lits {
		if l == NullLit {
			return 0, core.New("qcnf", "CloseClause", core.InvalidInput, "zero literal inside clause")
		}
		if !q.HasVar(l.Var()) {
			return 0, core.New("qcnf", "CloseClause", core.InvalidInput, "literal refers to unknown variable")
		}
	}

	sort.Slice(lits, func(i, j int) bool { return clauseOrderLess(q, lits[i], lits[j]) })

	// dedup identical literals, reject tautologies (l and -l both present)
	dedup := lits[:0:0]
	for i, l := range lits {
		if i > 0 && dedup[len(dedup)-1] == l {
			continue
		}
		dedup = append(dedup, l)
	}
	for i := 0; i < len(dedup); i++ {
		for j := i + 1; j < len(dedup); j++ {
			if dedup[i] == dedup[j].Negate() {
				q.Stats.TautologiesRejected++
				return 0, nil
			}
		}
	}

	// Universal reduction: because 2QBF sorts universals first, a
	// trailing run of universal literals (those after the last
	// existential) can never be the unique-consequence literal of any
	// existential and is dropped. We scan from the back.
	end := len(dedup)
	for end > 0 && q.isUniversal(dedup[end-1]) {
		end--
		q.Stats.UniversalReductions++
	}
	dedup = dedup[:end]

	if q.isDuplicateActive(dedup) {
		q.Stats.DuplicatesRejected++
		return 0, core.New("qcnf", "CloseClause", core.InvalidInput, "duplicate active clause")
	}

	id := ClauseID(len(q.Clauses))
	c := Clause{ID: id, Original: original, Active: true, Lits: dedup}
	q.Clauses = append(q.Clauses, c)
	q.activate(id)

	for _, l := range dedup {
		v := q.VarOf(l.Var())
		if l.Sign() {
			v.NegOccs = append(v.NegOccs, id)
		} else {
			v.PosOccs = append(v.PosOccs, id)
		}
	}

	q.Undo.record(undoOp{Tag: undoCloseClause, Clause: id, WasOrig: original})
	return id, nil
}

func (q *QCNF) isDuplicateActive(lits []Lit) bool {
	if len(lits) == 0 {
		return false
	}
	for _, id := range q.VarOf(lits[0].Var()).occsFor(lits[0]) {
		c := &q.Clauses[id]
		if !c.Active || len(c.Lits) != len(lits) {
			continue
		}
		same := true
		for i := range lits {
			if c.Lits[i] != lits[i] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func (q *QCNF) activate(id ClauseID) {
	c := &q.Clauses[id]
	c.activeSlot = len(q.active)
	c.inActiveVec = true
	q.active = append(q.active, id)
}

// Retire deactivates a clause (used for learnt-clause deletion and
// minimization's replace-with-smaller-clause step). Occurrence-list
// purging happens lazily, during the next clause iteration pass.
func (q *QCNF) Retire(id ClauseID) {
	c := &q.Clauses[id]
	if !c.Active {
		return
	}
	c.Active = false
	q.Undo.record(undoOp{Tag: undoRetireClause, Clause: id})
}

// Iterator yields each active clause exactly once, compacting the active
// vector as it encounters retired entries (spec.md §4.1). It carries a
// token snapshot of the store's generation and returns a stale-iterator
// error if the store was compacted out from under it mid-walk.
type Iterator struct {
	q     *QCNF
	i     int
	token int
}

// ClauseIterator returns a fresh Iterator over the current active set.
func (q *QCNF) ClauseIterator() *Iterator {
	return &Iterator{q: q, token: q.iterToken}
}

var errStaleIterator = core.New("qcnf", "Iterator.Next", core.InternalInvariant, "stale clause iterator")

// Next advances the iterator, swap-removing inactive entries from the
// active vector as it compacts past them. Returns (nil, nil) at end.
func (it *Iterator) Next() (*Clause, error) {
	if it.token != it.q.iterToken {
		return nil, errStaleIterator
	}
	for it.i < len(it.q.active) {
		id := it.q.active[it.i]
		c := &it.q.Clauses[id]
		if !c.Active {
			last := len(it.q.active) - 1
			it.q.active[it.i] = it.q.active[last]
			it.q.Clauses[it.q.active[it.i]].activeSlot = it.i
			it.q.active = it.q.active[:last]
			it.q.iterToken++
			it.token = it.q.iterToken
			continue // re-check the slot we just swapped in
		}
		it.i++
		return c, nil
	}
	return nil, nil
}

// Push writes an undo milestone, per spec.md §4.1.
func (q *QCNF) Push() { q.Undo.Push() }

// Pop replays undo ops back to the last milestone, reversing every
// NewVar/CloseClause/Retire recorded since.
func (q *QCNF) Pop() {
	q.Undo.Pop(func(op undoOp) {
		switch op.Tag {
		case undoNewVar:
			q.Vars[op.VarID] = Variable{}
		case undoCloseClause:
			c := &q.Clauses[op.Clause]
			for _, l := range c.Lits {
				v := q.VarOf(l.Var())
				if l.Sign() {
					v.NegOccs = v.NegOccs[:len(v.NegOccs)-1]
				} else {
					v.PosOccs = v.PosOccs[:len(v.PosOccs)-1]
				}
			}
			if c.inActiveVec {
				last := len(q.active) - 1
				q.active[c.activeSlot] = q.active[last]
				q.Clauses[q.active[c.activeSlot]].activeSlot = c.activeSlot
				q.active = q.active[:last]
			}
			q.Clauses = q.Clauses[:op.Clause]
			q.iterToken++
		case undoRetireClause:
			q.Clauses[op.Clause].Active = true
		}
	})
}
