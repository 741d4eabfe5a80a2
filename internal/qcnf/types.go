// Package qcnf implements the authoritative formula store for a 2QBF
// instance: variables, clauses, occurrence lists, and a transactional undo
// stack, per spec.md §3/§4.1. Literal and Clause are deliberately flat,
// arena-indexed structs (spec.md §9's "arena + index" guidance) rather than
// the pointer graphs a naive port of a C qcnf would produce.
package qcnf

import "fmt"

// Lit is a nonzero signed literal: the absolute value is the variable id,
// the sign is the polarity. Lit(0) is reserved as the null literal.
type Lit int32

// NullLit is the distinguished "no literal" value.
const NullLit Lit = 0

// Var returns the variable id this literal refers to.
func (l Lit) Var() int32 {
	if l < 0 {
		return int32(-l)
	}
	return int32(l)
}

// Sign reports whether l is a negative literal.
func (l Lit) Sign() bool { return l < 0 }

// Negate returns ¬l.
func (l Lit) Negate() Lit { return -l }

func (l Lit) String() string {
	if l.Sign() {
		return fmt.Sprintf("-%d", l.Var())
	}
	return fmt.Sprintf("%d", l.Var())
}

// Scope identifies a 2QBF prefix level: 0 = propositional/outer existential,
// 1 = universal, 2 = inner existential. A variable at scope s may depend on
// every universal at a scope strictly below s.
type Scope uint8

const (
	ScopeOuterExistential Scope = 0
	ScopeUniversal        Scope = 1
	ScopeInnerExistential Scope = 2
)

// ClauseID is a clause's position in the QCNF's clause arena; it never
// changes even if the clause is later retired.
type ClauseID int32

// Variable holds everything the QCNF store, Skolem engine, and heuristics
// need about one variable. Occurrence lists are index slices into the
// QCNF's clause arena (spec.md §9: "back-edges are stored as index
// lists"), not pointers.
type Variable struct {
	ID          int32
	Scope       Scope
	IsUniversal bool
	Original    bool // false for solver-introduced helper variables
	PosOccs     []ClauseID
	NegOccs     []ClauseID
	// Activity is a per-variable activity slot; the solver does not
	// update it. The Skolem engine's decision heuristic keeps its own
	// per-variable activity instead.
	Activity float64
}

func (v *Variable) occsFor(l Lit) []ClauseID {
	if l.Sign() {
		return v.NegOccs
	}
	return v.PosOccs
}

// Clause is an immutable-after-construction, sorted literal list. Sort
// order is universal-before-existential, then scope id, then variable id,
// so Lits[len(Lits)-1] is always the innermost existential literal — this
// is what makes universal reduction on close a single trailing-slice trim.
type Clause struct {
	ID       ClauseID
	Original bool
	IsCube   bool // true for learnt refutation cubes (all-universal)
	Active   bool

	// inActiveVec caches whether this clause currently has a live slot in
	// the QCNF's active-clause vector, supporting lazy swap-remove.
	inActiveVec bool
	activeSlot  int

	Lits []Lit
}

func (c *Clause) String() string {
	if len(c.Lits) == 0 {
		return "[]"
	}
	s := "["
	for i, l := range c.Lits {
		if i > 0 {
			s += " "
		}
		s += l.String()
	}
	return s + "]"
}

// Contains reports whether l appears literally in c.
func (c *Clause) Contains(l Lit) bool {
	for _, x := range c.Lits {
		if x == l {
			return true
		}
	}
	return false
}

func (c *Clause) IsUnit() bool  { return len(c.Lits) == 1 }
func (c *Clause) IsEmpty() bool { return len(c.Lits) == 0 }
