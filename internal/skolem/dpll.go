package skolem

// disposableClauses is the scratch CNF format the local determinicity
// (§4.2.2) and local conflict (§4.2.4) checks build before throwing it
// away. Unlike the persistent embedded solver S, these checks are posed
// over a handful of UC-antecedent clauses and are cheap enough to decide
// with a plain backtracking search — so, rather than spinning up another
// incremental gini.Gini per candidate, this adapts the teacher's
// DPLLSolver (unit propagation + pure-literal elimination + chronological
// backtracking) directly onto int-keyed literals.
type disposableClauses [][]satLit

type satLit int32

func (l satLit) variable() int32 {
	if l < 0 {
		return int32(-l)
	}
	return int32(l)
}
func (l satLit) negated() bool { return l < 0 }

// dpllSat reports whether cs is satisfiable. It is only ever asked about
// small instances built from UC antecedents, so no heuristic ordering is
// needed beyond "first unassigned variable," matching the teacher's
// chooseDecisionVariable.
func dpllSat(cs disposableClauses) bool {
	vars := map[int32]struct{}{}
	for _, c := range cs {
		for _, l := range c {
			vars[l.variable()] = struct{}{}
		}
	}
	varList := make([]int32, 0, len(vars))
	for v := range vars {
		varList = append(varList, v)
	}
	assignment := map[int32]bool{}
	return dpllStep(cs, varList, assignment)
}

func dpllStep(cs disposableClauses, vars []int32, assignment map[int32]bool) bool {
	for {
		unit, conflict, ok := findUnit(cs, assignment)
		if conflict {
			return false
		}
		if !ok {
			break
		}
		assignment[unit.variable()] = !unit.negated()
	}

	if allSatisfied(cs, assignment) {
		return true
	}

	var decision int32
	found := false
	for _, v := range vars {
		if _, ok := assignment[v]; !ok {
			decision = v
			found = true
			break
		}
	}
	if !found {
		return allSatisfied(cs, assignment)
	}

	for _, val := range [...]bool{true, false} {
		saved := make(map[int32]bool, len(assignment))
		for k, v := range assignment {
			saved[k] = v
		}
		assignment[decision] = val
		if dpllStep(cs, vars, assignment) {
			return true
		}
		for k := range assignment {
			delete(assignment, k)
		}
		for k, v := range saved {
			assignment[k] = v
		}
	}
	return false
}

func clauseSatisfied(c []satLit, assignment map[int32]bool) bool {
	for _, l := range c {
		if v, ok := assignment[l.variable()]; ok && v == !l.negated() {
			return true
		}
	}
	return false
}

func allSatisfied(cs disposableClauses, assignment map[int32]bool) bool {
	for _, c := range cs {
		if !clauseSatisfied(c, assignment) {
			return false
		}
	}
	return true
}

// findUnit scans for either a conflicting clause (all literals falsified)
// or a unit clause (exactly one unassigned literal, rest falsified).
func findUnit(cs disposableClauses, assignment map[int32]bool) (unit satLit, conflict bool, ok bool) {
	for _, c := range cs {
		if clauseSatisfied(c, assignment) {
			continue
		}
		var lastUnassigned satLit
		unassignedCount := 0
		for _, l := range c {
			if _, assigned := assignment[l.variable()]; !assigned {
				unassignedCount++
				lastUnassigned = l
			}
		}
		if unassignedCount == 0 {
			return 0, true, false
		}
		if unassignedCount == 1 {
			return lastUnassigned, false, true
		}
	}
	return 0, false, false
}
