// Package certificate assembles the final Skolem-function certificate
// (as an AIG) from a solved Engine, and co-verifies it against the
// original formula. Grounded on the teacher's sat/system.go
// SATSystemImpl facade — specifically its VerifySolution method, which
// re-checks a claimed solution against the original problem rather than
// trusting the solver's own verdict — generalized here from re-running
// the expression evaluator to re-running a dedicated UNSAT check: "AIG ⊕
// CNF ⊕ some clause violated" must itself be unsatisfiable, per spec.md
// §4.8 and original_source's certify*.c/certification.c.
package certificate

import (
	"github.com/cadet-qbf/cadet/core"
	"github.com/cadet-qbf/cadet/internal/aig"
	"github.com/cadet-qbf/cadet/internal/qcnf"
	"github.com/cadet-qbf/cadet/internal/satsolver"
)

// DeterminizedEngine is the subset of *skolem.Engine the direct (non-
// case-split) certificate replay needs. Depending on the interface
// rather than the concrete type keeps this package from importing
// internal/skolem back.
type DeterminizedEngine interface {
	Trail() []int32
	ConstantValue(id int32) bool
	ReasonForConstant(id int32) qcnf.ClauseID
}

// Certificate is the finished product: one AIG output per existential
// variable, named by its original QDIMACS variable id.
type Certificate struct {
	Graph   *aig.Graph
	VarName []int32 // Graph.Outputs()[i] certifies VarName[i]
}

// Builder accumulates per-variable Skolem functions into a single AIG,
// in the order the existentials became deterministic.
type Builder struct {
	q     *qcnf.QCNF
	g     *aig.Graph
	input map[int32]aig.Lit // universal inputs, allocated lazily
	fn    map[int32]aig.Lit // completed existential outputs, for reuse as inputs to later functions
	order []int32
}

// NewBuilder returns an empty certificate builder over q.
func NewBuilder(q *qcnf.QCNF) *Builder {
	return &Builder{
		q:     q,
		g:     aig.New(),
		input: make(map[int32]aig.Lit),
		fn:    make(map[int32]aig.Lit),
	}
}

func (b *Builder) universalInput(varID int32) aig.Lit {
	if l, ok := b.input[varID]; ok {
		return l
	}
	l := b.g.Input(universalInputName(varID))
	b.input[varID] = l
	return l
}

func universalInputName(varID int32) string {
	return "x" + itoa(varID)
}

func itoa(v int32) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [12]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// PureConstant records a variable whose Skolem function is a constant
// (from the pure-literal rule or a propagated constant with no further
// case distinction).
func (b *Builder) PureConstant(varID int32, value bool) {
	l := aig.Lit(1) // constant true
	if !value {
		l = aig.ConstFalse
	}
	b.record(varID, l)
}

// UCFunction builds varID's Skolem function from a unique-consequence
// clause (lit_1 ∨ ... ∨ lit_k ∨ varID): the clause is only ever in
// danger of being violated when every antecedent lit_i is false, so
// varID := ¬lit_1 ∧ ... ∧ ¬lit_k — true exactly in the one case (all
// antecedents false) where the clause needs varID, false whenever some
// antecedent already satisfies the clause on its own.
func (b *Builder) UCFunction(varID int32, antecedents []qcnf.Lit) {
	acc := aig.Lit(1) // constant true, identity for AND
	for _, l := range antecedents {
		in := b.litFor(l.Var())
		if l.Sign() {
			in = in.Not()
		}
		acc = b.g.And(acc, in.Not())
	}
	b.record(varID, acc)
}

// litFor returns the AIG literal standing for varID's current value,
// whether it is a universal input or an already-certified existential.
func (b *Builder) litFor(varID int32) aig.Lit {
	if l, ok := b.fn[varID]; ok {
		return l
	}
	return b.universalInput(varID)
}

// MuxFunction combines per-case sub-functions already built for varID
// under disjoint universal sub-cubes, selected by each case's selector
// literal, per spec.md §4.8's case-split certificate shape.
func (b *Builder) MuxFunction(varID int32, cases []struct {
	Selector qcnf.Lit
	Function aig.Lit
}) {
	if len(cases) == 0 {
		return
	}
	acc := cases[len(cases)-1].Function
	for i := len(cases) - 2; i >= 0; i-- {
		sel := b.litFor(cases[i].Selector.Var())
		if cases[i].Selector.Sign() {
			sel = sel.Not()
		}
		acc = b.g.Mux(sel, cases[i].Function, acc)
	}
	b.record(varID, acc)
}

func (b *Builder) record(varID int32, fn aig.Lit) {
	b.fn[varID] = fn
	b.order = append(b.order, varID)
	b.g.AddOutput(fn)
}

// Build finalizes the certificate.
func (b *Builder) Build() *Certificate {
	return &Certificate{Graph: b.g, VarName: append([]int32(nil), b.order...)}
}

// BuildFromTrail replays a solved Skolem engine's determinization trail
// into a fresh certificate: each existential became deterministic either
// via a UC clause (ReasonForConstant >= 0, so UCFunction replays the
// clause's own antecedents) or via a decision/pure-literal constant
// (ReasonForConstant == -1, so PureConstant records its final value
// directly) — spec.md §4.8's non-case-split replay. Case-split runs
// build their multiplexer trees separately, per completed case, via
// MuxFunction; this entry point only covers direct determinization.
func BuildFromTrail(q *qcnf.QCNF, eng DeterminizedEngine) *Certificate {
	b := NewBuilder(q)
	for _, id := range eng.Trail() {
		reason := eng.ReasonForConstant(id)
		if reason < 0 {
			b.PureConstant(id, eng.ConstantValue(id))
			continue
		}
		c := &q.Clauses[reason]
		antecedents := make([]qcnf.Lit, 0, len(c.Lits)-1)
		for _, l := range c.Lits {
			if l.Var() == id {
				continue
			}
			antecedents = append(antecedents, l)
		}
		b.UCFunction(id, antecedents)
	}
	return b.Build()
}

// Verify co-checks cert against the original clause set using a fresh
// embedded solver instance: it asserts the AIG's own gate structure as
// CNF (via Tseitin clauses), then for each original clause asserts a
// blocking clause forcing every one of that clause's literals false
// under the certificate's own input/output literals, and checks the
// result is UNSAT — i.e. no universal input exists under which the
// certified Skolem values violate that clause. A Sat result means the
// certificate and the original formula disagree on some input, reported
// as core.CertificateInconsistent rather than silently trusted.
func Verify(q *qcnf.QCNF, cert *Certificate, s satsolver.Solver) error {
	tseitin := tseitinEncode(cert.Graph, s)

	varLit := map[int32]satsolver.Lit{}
	for i, varID := range cert.VarName {
		varLit[varID] = tseitin.outputLit(cert.Graph.Outputs()[i])
	}
	for varID, l := range tseitin.inputLits {
		varLit[varID] = l
	}

	it := q.ClauseIterator()
	for {
		c, err := it.Next()
		if err != nil {
			return core.Wrap(err, "certificate", "Verify", core.InternalInvariant, "clause iteration failed")
		}
		if c == nil {
			break
		}
		if !c.Original {
			continue
		}
		if violatable(s, c, varLit) {
			return core.New("certificate", "Verify", core.CertificateInconsistent,
				"an input exists under which the certified Skolem functions violate an original clause")
		}
	}
	return nil
}

// violatable pushes a scope asserting every literal of c false under the
// certificate's own variable literals, and reports whether that is
// satisfiable — if so, the certificate does not actually satisfy c
// everywhere.
func violatable(s satsolver.Solver, c *qcnf.Clause, varLit map[int32]satsolver.Lit) bool {
	pushed := 0
	for _, l := range c.Lits {
		lit, ok := varLit[l.Var()]
		if !ok {
			continue
		}
		falsified := lit
		if !l.Sign() {
			falsified = -lit // l is a positive literal; it is false when its variable is false
		}
		s.Push(falsified)
		pushed++
	}
	result := s.Sat() == satsolver.Sat
	for i := 0; i < pushed; i++ {
		s.Pop()
	}
	return result
}
