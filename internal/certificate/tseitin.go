package certificate

import (
	"github.com/cadet-qbf/cadet/internal/aig"
	"github.com/cadet-qbf/cadet/internal/satsolver"
)

// tseitinGraph gives every AIG gate a corresponding embedded-solver
// variable and asserts the standard Tseitin AND-gate clauses relating
// them, following the same "(¬aux ∨ child) ∧ (aux ∨ ¬child1 ∨ ...)"
// shape as the teacher's sat/cnf_converter.go transformAnd, specialized
// to the AIG's fixed two-input gates.
type tseitinGraph struct {
	nodeLit   map[uint32]satsolver.Lit
	inputLits map[int32]satsolver.Lit // universal-input name -> solver lit, keyed by parsed variable id
}

// tseitinEncode walks g and asserts its structure into s, returning a
// handle used to translate AIG literals into solver literals.
func tseitinEncode(g *aig.Graph, s satsolver.Solver) *tseitinGraph {
	t := &tseitinGraph{
		nodeLit:   make(map[uint32]satsolver.Lit),
		inputLits: make(map[int32]satsolver.Lit),
	}
	for _, out := range g.Outputs() {
		t.encodeNode(g, out.Node(), s)
	}
	return t
}

func (t *tseitinGraph) encodeNode(g *aig.Graph, id uint32, s satsolver.Solver) satsolver.Lit {
	if l, ok := t.nodeLit[id]; ok {
		return l
	}
	kind, a, b, name := g.Describe(id)
	lit := s.NewVar()
	t.nodeLit[id] = lit

	if kind == aig.NodeInput {
		varID := parseVarName(name)
		t.inputLits[varID] = lit
		return lit
	}
	if kind == aig.NodeConst {
		// node 0 is constant false
		s.AddLit(-lit)
		s.ClauseFinished()
		return lit
	}

	aLit := t.encodeLit(g, a, s)
	bLit := t.encodeLit(g, b, s)

	s.AddLit(-lit)
	s.AddLit(aLit)
	s.ClauseFinished()
	s.AddLit(-lit)
	s.AddLit(bLit)
	s.ClauseFinished()
	s.AddLit(lit)
	s.AddLit(-aLit)
	s.AddLit(-bLit)
	s.ClauseFinished()
	return lit
}

func (t *tseitinGraph) encodeLit(g *aig.Graph, l aig.Lit, s satsolver.Solver) satsolver.Lit {
	base := t.encodeNode(g, l.Node(), s)
	if l.Negated() {
		return -base
	}
	return base
}

// outputLit resolves an already-encoded AIG output literal to its
// solver literal.
func (t *tseitinGraph) outputLit(l aig.Lit) satsolver.Lit {
	base := t.nodeLit[l.Node()]
	if l.Negated() {
		return -base
	}
	return base
}

func parseVarName(name string) int32 {
	neg := false
	i := 0
	if len(name) > 0 && name[0] == 'x' {
		i = 1
	}
	if i < len(name) && name[i] == '-' {
		neg = true
		i++
	}
	var v int32
	for ; i < len(name); i++ {
		v = v*10 + int32(name[i]-'0')
	}
	if neg {
		v = -v
	}
	return v
}
