// Package qdimacs parses the QDIMACS input format: a DIMACS CNF body
// prefixed by a 2QBF quantifier block ("a ..." universals then
// "e ..." existentials, each terminated by 0). Grounded on
// cespare-saturday's ParseDIMACS — its tolerant comment-anywhere and
// optional-problem-line handling, and its field-by-field literal
// scanning — extended with quantifier-line recognition and QCNF store
// population in place of returning a bare [][]int.
package qdimacs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cadet-qbf/cadet/core"
	"github.com/cadet-qbf/cadet/internal/qcnf"
)

// Parse reads QDIMACS text from r and populates a fresh QCNF store. A
// universal ("a") block that follows an existential ("e") block — a
// third quantifier alternation, i.e. true QBF beyond 2QBF — and a DQBF
// "d" dependency line are both rejected with core.UnsupportedPrefix, per
// spec.md §1's scope restriction to 2QBF.
func Parse(r io.Reader) (*qcnf.QCNF, error) {
	q := qcnf.New()
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var problemSeen bool
	var sawExistentialBlock bool
	seenVar := map[int32]bool{}
	nextIsUniversal := true
	clauseOpen := false

	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if line == "%" {
			break
		}
		if strings.HasPrefix(line, "p") {
			if problemSeen {
				return nil, core.New("qdimacs", "Parse", core.InvalidInput, "multiple problem lines")
			}
			problemSeen = true
			continue
		}
		if line[0] == 'd' {
			return nil, core.New("qdimacs", "Parse", core.UnsupportedPrefix,
				"DQBF dependency lines are not supported")
		}
		if line[0] == 'a' || line[0] == 'e' {
			universal := line[0] == 'a'
			if !universal {
				sawExistentialBlock = true
			} else if sawExistentialBlock {
				return nil, core.New("qdimacs", "Parse", core.UnsupportedPrefix,
					"quantifier alternation beyond 2QBF (∀∃) is not supported")
			}
			ids, err := fields(line[1:])
			if err != nil {
				return nil, core.Wrap(err, "qdimacs", "Parse", core.InvalidInput, "malformed quantifier line")
			}
			scope := qcnf.ScopeInnerExistential
			if universal {
				scope = qcnf.ScopeUniversal
			}
			for _, id := range ids {
				if id == 0 {
					continue
				}
				if id < 0 || seenVar[id] {
					return nil, core.New("qdimacs", "Parse", core.InvalidInput, "invalid or duplicate quantified variable")
				}
				seenVar[id] = true
				if err := q.NewVar(id, scope, universal, true); err != nil {
					return nil, core.Wrap(err, "qdimacs", "Parse", core.InvalidInput, "duplicate variable declaration")
				}
			}
			nextIsUniversal = false
			continue
		}

		lits, err := fields(line)
		if err != nil {
			return nil, core.Wrap(err, "qdimacs", "Parse", core.InvalidInput, "invalid literal")
		}
		for _, n := range lits {
			if n == 0 {
				if clauseOpen {
					if _, err := q.CloseClause(true); err != nil {
						return nil, err
					}
					clauseOpen = false
				}
				continue
			}
			v := n
			if v < 0 {
				v = -v
			}
			if !q.HasVar(v) {
				// A variable present in the matrix but not mentioned in
				// any quantifier block is, per the QDIMACS convention,
				// implicitly existential and innermost.
				if err := q.NewVar(v, qcnf.ScopeInnerExistential, false, true); err != nil {
					return nil, err
				}
			}
			q.AddLiteral(qcnf.Lit(n))
			clauseOpen = true
		}
	}
	if err := s.Err(); err != nil {
		return nil, core.Wrap(err, "qdimacs", "Parse", core.InvalidInput, "scan error")
	}
	if clauseOpen {
		if _, err := q.CloseClause(true); err != nil {
			return nil, err
		}
	}
	_ = nextIsUniversal
	return q, nil
}

func fields(line string) ([]int32, error) {
	parts := strings.Fields(line)
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		if p == "0" {
			out = append(out, 0)
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", p, err)
		}
		out = append(out, int32(n))
	}
	return out, nil
}
