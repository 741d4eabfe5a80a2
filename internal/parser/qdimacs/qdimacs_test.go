package qdimacs

import (
	"strings"
	"testing"

	"github.com/cadet-qbf/cadet/core"
)

func TestParseBasic2QBF(t *testing.T) {
	input := `c a comment
p cnf 2 2
a 1 0
e 2 0
-1 2 0
1 -2 0
`
	q, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(q.Clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(q.Clauses))
	}
	if !q.Vars[1].IsUniversal {
		t.Fatalf("expected variable 1 to be universal")
	}
	if q.Vars[2].IsUniversal {
		t.Fatalf("expected variable 2 to be existential")
	}
}

func TestParseRejectsThirdAlternation(t *testing.T) {
	input := `p cnf 3 1
a 1 0
e 2 0
a 3 0
1 2 3 0
`
	_, err := Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected an error for a third quantifier alternation")
	}
	if !core.IsKind(err, core.UnsupportedPrefix) {
		t.Fatalf("expected UnsupportedPrefix, got %v", err)
	}
}

func TestParseAllowsMissingProblemLine(t *testing.T) {
	input := `a 1 0
e 2 0
1 2 0
`
	q, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(q.Clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(q.Clauses))
	}
}

func TestParseTreatsUnquantifiedVariableAsInnerExistential(t *testing.T) {
	input := `p cnf 2 1
a 1 0
1 2 0
`
	q, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if q.Vars[2].IsUniversal {
		t.Fatalf("expected variable 2 (not in any quantifier block) to default to existential")
	}
}
