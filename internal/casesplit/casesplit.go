// Package casesplit implements universal case-splitting and the CEGAR
// (counterexample-guided refinement) loop of spec.md §4.7: rather than
// building one Skolem function that is correct for every universal
// assignment at once, the outer loop may split on a concrete universal
// sub-cube, solve the existential side under that assumption, and use a
// second, dual existential SAT instance E to hunt for a universal
// assignment the accumulated Skolem functions do not yet cover.
//
// It is grounded on the litMapping/AssumeConstraints/Solve pattern of
// operator-framework-operator-lifecycle-manager's
// pkg/controller/registry/resolver/sat package (itself a gini-based
// assumption-and-solve wrapper) and on original_source's
// cegar.c/casesplits.c for the minimize-then-refine shape of the loop.
package casesplit

import (
	"github.com/cadet-qbf/cadet/internal/qcnf"
	"github.com/cadet-qbf/cadet/internal/satsolver"
)

// Case records one open universal sub-cube pushed onto the shared
// embedded solver S.
type Case struct {
	Assumptions map[int32]bool
}

// CubeStats mirrors spec.md §4.7's cube-minimization counters.
type CubeStats struct {
	SuccessfulMinimizations int64
	AdditionalAssignmentsNum int64
}

// UniversalLits is the subset of *skolem.Engine this package consumes: the
// shared, persistent mapping from a universal variable to its S-side
// literal. Depending on the interface rather than the concrete type keeps
// internal/casesplit from importing internal/skolem back.
type UniversalLits interface {
	UniversalLit(id int32) satsolver.Lit
}

// Engine drives case-splitting over the shared solver S and
// counterexample search over the dual existential solver E.
type Engine struct {
	q *qcnf.QCNF
	s satsolver.Solver // shared with the Skolem engine
	e satsolver.Solver // dual existential instance, owned exclusively here

	// univLits resolves a universal's persistent S-side literal through
	// the Skolem engine, so a case-split assumption here and a
	// unique-consequence encoding there constrain the same S atom.
	univLits UniversalLits

	// eUniversalLit and eExistLit give every universal and existential
	// its own fresh variable in E, independent of S; FindCounterexample
	// pins the existentials to the claimed Skolem values and asks E "is
	// there a universal assignment under which some clause is false."
	eUniversalLit map[int32]satsolver.Lit
	eExistLit     map[int32]satsolver.Lit

	cases []Case
	Stats CubeStats
}

// New builds a case-split/CEGAR engine. s is the Skolem engine's shared
// solver and univLits resolves its per-universal literals; e is freshly
// constructed and used only here.
func New(q *qcnf.QCNF, s satsolver.Solver, univLits UniversalLits, e satsolver.Solver) *Engine {
	eng := &Engine{
		q:             q,
		s:             s,
		univLits:      univLits,
		e:             e,
		eUniversalLit: make(map[int32]satsolver.Lit),
		eExistLit:     make(map[int32]satsolver.Lit),
	}
	for id := range q.Vars {
		v := &q.Vars[id]
		if v.ID == 0 {
			continue
		}
		if v.IsUniversal {
			eng.eUniversalLit[v.ID] = e.NewVar()
		} else {
			eng.eExistLit[v.ID] = e.NewVar()
		}
	}
	return eng
}

func (e *Engine) litFor(varID int32) satsolver.Lit {
	if l, ok := e.eUniversalLit[varID]; ok {
		return l
	}
	return e.eExistLit[varID]
}

// PushCase opens a new universal sub-cube: each assumption is asserted
// as a permanent unit in S for the lifetime of the case.
func (e *Engine) PushCase(assumptions map[int32]bool) {
	for varID, value := range assumptions {
		lit := e.univLits.UniversalLit(varID)
		target := lit
		if !value {
			target = -lit
		}
		e.s.Push(target)
	}
	e.cases = append(e.cases, Case{Assumptions: assumptions})
}

// PopCase closes the most recently opened case, retracting its
// assumptions from S.
func (e *Engine) PopCase() {
	if len(e.cases) == 0 {
		return
	}
	c := e.cases[len(e.cases)-1]
	e.cases = e.cases[:len(e.cases)-1]
	for range c.Assumptions {
		e.s.Pop()
	}
}

// FindCounterexample asks E whether some universal assignment, together
// with the given fixed Skolem values, falsifies an original clause — the
// only way a universal witness can falsify the whole formula, since a
// conjunction of clauses is false iff at least one conjunct is. It
// returns that falsifying universal assignment, or nil if every original
// clause holds under every universal assignment E can see.
func (e *Engine) FindCounterexample(skolemValues map[int32]bool) map[int32]bool {
	pushed := e.assumeSkolemValues(skolemValues)
	defer e.popAssumptions(pushed)

	it := e.q.ClauseIterator()
	for {
		c, err := it.Next()
		if err != nil {
			return nil
		}
		if c == nil {
			return nil
		}
		if !c.Original {
			continue
		}
		if cube := e.counterexampleViolating(c); cube != nil {
			return cube
		}
	}
}

// assumeSkolemValues pushes the given existential values onto E as
// permanent assumptions for the lifetime of the caller's search, and
// returns how many were pushed so popAssumptions can retract exactly
// those.
func (e *Engine) assumeSkolemValues(skolemValues map[int32]bool) int {
	pushed := 0
	for varID, value := range skolemValues {
		lit, ok := e.eExistLit[varID]
		if !ok {
			continue
		}
		if !value {
			lit = -lit
		}
		e.e.Push(lit)
		pushed++
	}
	return pushed
}

func (e *Engine) popAssumptions(n int) {
	for i := 0; i < n; i++ {
		e.e.Pop()
	}
}

// counterexampleViolating reports whether some universal assignment
// falsifies c given E's currently pushed existential values, returning
// that assignment's universal component, or nil if c holds everywhere —
// the same "push each literal false, ask Sat" idiom
// internal/certificate's Verify uses to co-check a finished certificate,
// applied here mid-search instead of after the fact.
func (e *Engine) counterexampleViolating(c *qcnf.Clause) map[int32]bool {
	pushed := 0
	for _, l := range c.Lits {
		lit := e.litFor(l.Var())
		if l.Sign() {
			lit = -lit
		}
		e.e.Push(-lit)
		pushed++
	}
	defer e.popAssumptions(pushed)

	if e.e.Sat() != satsolver.Sat {
		return nil
	}
	cube := make(map[int32]bool, len(e.eUniversalLit))
	for varID, lit := range e.eUniversalLit {
		cube[varID] = e.e.Deref(lit)
	}
	return cube
}

// MinimizeCube drops assumptions from cube one at a time, keeping the
// removal only when E still reports the (now smaller) cube as a
// counterexample against skolemValues — spec.md §4.7's cube
// minimization, mirroring the same "drop and recheck" shape as
// internal/outer's learned-clause minimization.
func (e *Engine) MinimizeCube(cube map[int32]bool, skolemValues map[int32]bool) map[int32]bool {
	minimized := make(map[int32]bool, len(cube))
	for k, v := range cube {
		minimized[k] = v
	}
	for varID := range cube {
		trial := make(map[int32]bool, len(minimized)-1)
		for k, v := range minimized {
			if k != varID {
				trial[k] = v
			}
		}
		if e.stillCounterexample(trial, skolemValues) {
			delete(minimized, varID)
			e.Stats.SuccessfulMinimizations++
		}
	}
	e.Stats.AdditionalAssignmentsNum += int64(len(cube) - len(minimized))
	return minimized
}

// stillCounterexample reports whether some original clause is still
// falsifiable once cube's universal values and skolemValues' existential
// values are both fixed — the same violation check FindCounterexample
// uses, restricted to a (possibly partial) universal sub-cube rather
// than leaving every universal free.
func (e *Engine) stillCounterexample(cube map[int32]bool, skolemValues map[int32]bool) bool {
	pushedSkolem := e.assumeSkolemValues(skolemValues)
	defer e.popAssumptions(pushedSkolem)

	pushedCube := 0
	for varID, value := range cube {
		lit, ok := e.eUniversalLit[varID]
		if !ok {
			continue
		}
		if !value {
			lit = -lit
		}
		e.e.Push(lit)
		pushedCube++
	}
	defer e.popAssumptions(pushedCube)

	it := e.q.ClauseIterator()
	for {
		c, err := it.Next()
		if err != nil {
			return false
		}
		if c == nil {
			return false
		}
		if !c.Original {
			continue
		}
		if e.counterexampleViolating(c) != nil {
			return true
		}
	}
}
