package conflictanalysis

import "testing"

// fakeDomain is a minimal in-memory Domain used to exercise the
// resolution loop without depending on skolem or partial.
type fakeDomain struct {
	clauses map[ClauseID][]Lit
	levels  map[int32]int
	reasons map[int32]ClauseID
}

func (f *fakeDomain) Literals(c ClauseID) []Lit          { return f.clauses[c] }
func (f *fakeDomain) IsRelevantClause(c ClauseID) bool    { return c != NoReason }
func (f *fakeDomain) IsLegalDependence(v int32) bool      { return true }
func (f *fakeDomain) GetDecisionLvl(v int32) int {
	if lvl, ok := f.levels[v]; ok {
		return lvl
	}
	return -1
}
func (f *fakeDomain) GetReasonFor(v int32) ClauseID {
	if r, ok := f.reasons[v]; ok {
		return r
	}
	return NoReason
}

func TestAnalyzeStopsAtRootLevel(t *testing.T) {
	a := New()
	d := &fakeDomain{clauses: map[ClauseID][]Lit{0: {1, 2}}}
	if got := a.Analyze(d, 0, 0); got != nil {
		t.Fatalf("expected nil result at decision level 0, got %+v", got)
	}
}

func TestAnalyzeResolvesToFirstUIP(t *testing.T) {
	// Decision x1@1 implies x2@1 (reason clause 10: -1 2); x2 and a
	// decision x3@1 conflict via clause 11: -2 -3. First-UIP resolution
	// should eliminate x2 (the only non-decision variable at level 1)
	// and learn a clause over the two level-1 decisions.
	d := &fakeDomain{
		clauses: map[ClauseID][]Lit{
			10: {-1, 2},
			11: {-2, -3},
		},
		levels:  map[int32]int{1: 1, 2: 1, 3: 1},
		reasons: map[int32]ClauseID{2: 10},
	}

	a := New()
	res := a.Analyze(d, 11, 1)
	if res == nil {
		t.Fatal("expected a non-nil result")
	}
	for _, l := range res.Clause {
		if l.variable() == 2 {
			t.Fatalf("expected the propagated variable 2 to be resolved away, got clause %v", res.Clause)
		}
	}
	if len(res.Clause) == 0 {
		t.Fatal("expected a non-empty learned clause")
	}
}

func TestBacktrackLevelIsSecondHighest(t *testing.T) {
	d := &fakeDomain{
		clauses: map[ClauseID][]Lit{0: {1, 2, 3}},
		levels:  map[int32]int{1: 3, 2: 2, 3: 1},
	}
	a := New()
	got := a.backtrackLevel(d, []Lit{1, 2, 3}, 3)
	if got != 2 {
		t.Fatalf("expected backtrack level 2, got %d", got)
	}
}
