package aiger

import (
	"strings"
	"testing"

	"github.com/cadet-qbf/cadet/core"
)

// A single AND gate: output = in1 & controllable_1. Input 2 is
// universal (no controllable_ prefix), input 4 is existential.
const asciiSingleAnd = `aag 3 2 0 1 1
2
4
6
6 2 4
i0 u1
i1 controllable_1
`

func TestParseAsciiBuildsQCNF(t *testing.T) {
	q, err := Parse(strings.NewReader(asciiSingleAnd), "controllable_")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !q.Vars[1].IsUniversal {
		t.Fatalf("expected first input (no controllable_ prefix) to be universal")
	}
	if q.Vars[2].IsUniversal {
		t.Fatalf("expected second input (controllable_ prefix) to be existential")
	}
	// One Tseitin-encoded AND gate (3 clauses) plus the asserted output
	// unit clause.
	if len(q.Clauses) != 4 {
		t.Fatalf("expected 4 clauses (3 Tseitin + 1 output unit), got %d", len(q.Clauses))
	}
}

func TestParseRejectsSequentialAIGER(t *testing.T) {
	const withLatch = `aag 2 1 1 0 0
2
4 2
`
	_, err := Parse(strings.NewReader(withLatch), "controllable_")
	if err == nil {
		t.Fatal("expected an error for an AIGER instance with latches")
	}
	if !core.IsKind(err, core.UnsupportedPrefix) {
		t.Fatalf("expected UnsupportedPrefix, got %v", err)
	}
}

func TestParseRejectsUnknownMagic(t *testing.T) {
	_, err := Parse(strings.NewReader("bogus 1 1 0 0 0\n"), "controllable_")
	if err == nil {
		t.Fatal("expected an error for an unrecognized magic word")
	}
	if !core.IsKind(err, core.InvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}
