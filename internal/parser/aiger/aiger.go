// Package aiger parses the AIGER and-inverter-graph format (both the
// "aag" ascii and "aig" binary dialects) into a QCNF instance, per
// spec.md §4.6's "inputs split into uncontrollable (universal) and
// controllable (existential by prefix match)" reading of an AIGER file
// as a 2QBF synthesis problem. Grounded on cespare-saturday's
// ParseDIMACS for the overall "scan a textual header, then a fixed
// number of structured records" shape, on the teacher's
// sat/cnf_converter.go Tseitin-clause shapes for turning each AND gate
// into CNF, and on go-air/gini's z.Dimacs2Lit/Lit.Dimacs even/odd
// literal-encoding convention, which AIGER's own "literal = (var<<1)|sign"
// scheme mirrors exactly.
package aiger

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cadet-qbf/cadet/core"
	"github.com/cadet-qbf/cadet/internal/qcnf"
)

// header holds AIGER's "M I L O A" counts.
type header struct {
	maxVar, inputs, latches, outputs, ands int
}

// Parse reads an AIGER file (either dialect, auto-detected from the
// magic word) and returns a QCNF instance: each AIGER input becomes a
// QCNF variable (universal when its symbol-table name has the
// controllablePrefix's complement — i.e. does NOT match the prefix —
// existential otherwise), each AND gate is Tseitin-encoded into three
// clauses, and each declared output is asserted true via a unit clause,
// matching spec.md §4.6's "outputs ... determine clauses introduced as
// CNF via Tseitin encoding".
//
// Latches are rejected: a sequential circuit is not a 2QBF matrix and
// spec.md §4.6 only asks for combinational AIGER.
func Parse(r io.Reader, controllablePrefix string) (*qcnf.QCNF, error) {
	if controllablePrefix == "" {
		controllablePrefix = "controllable_"
	}
	br := bufio.NewReader(r)
	magic, err := br.Peek(3)
	if err != nil {
		return nil, core.Wrap(err, "aiger", "Parse", core.InvalidInput, "empty input")
	}

	switch string(magic) {
	case "aag":
		return parseAscii(br, controllablePrefix)
	case "aig":
		return parseBinary(br, controllablePrefix)
	default:
		return nil, core.New("aiger", "Parse", core.InvalidInput, "unrecognized AIGER magic word")
	}
}

func readHeader(line string, want string) (header, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 || fields[0] != want {
		return header{}, core.New("aiger", "readHeader", core.InvalidInput, "malformed AIGER header")
	}
	nums := make([]int, 5)
	for i, f := range fields[1:] {
		n, err := strconv.Atoi(f)
		if err != nil {
			return header{}, core.Wrap(err, "aiger", "readHeader", core.InvalidInput, "non-numeric header field")
		}
		nums[i] = n
	}
	return header{maxVar: nums[0], inputs: nums[1], latches: nums[2], outputs: nums[3], ands: nums[4]}, nil
}

// builder accumulates AIGER literal -> qcnf.Lit translations and emits
// Tseitin clauses for AND gates lazily, the same memoize-as-you-walk
// shape as certificate/tseitin.go's encodeNode.
type builder struct {
	q          *qcnf.QCNF
	nextVar    int32
	lit        map[uint32]qcnf.Lit // AIGER literal (even form, i.e. node id*2) -> qcnf.Lit
	gateArgs   map[uint32][2]uint32
	inputOrder []uint32
	names      map[uint32]string
	prefix     string
}

func newBuilder(prefix string) *builder {
	return &builder{
		q:        qcnf.New(),
		nextVar:  1,
		lit:      make(map[uint32]qcnf.Lit),
		gateArgs: make(map[uint32][2]uint32),
		names:    make(map[uint32]string),
		prefix:   prefix,
	}
}

func (b *builder) declareInput(aigerLit uint32) {
	b.inputOrder = append(b.inputOrder, aigerLit)
}

func (b *builder) declareGate(lhs uint32, rhs0, rhs1 uint32) {
	b.gateArgs[lhs] = [2]uint32{rhs0, rhs1}
}

// finalizeInputs must run after the full symbol table (if any) has been
// read, since a name determines a variable's quantifier scope.
func (b *builder) finalizeInputs() error {
	for _, aigerLit := range b.inputOrder {
		name := b.names[aigerLit]
		universal := !strings.HasPrefix(name, b.prefix)
		id := b.nextVar
		b.nextVar++
		scope := qcnf.ScopeInnerExistential
		if universal {
			scope = qcnf.ScopeUniversal
		}
		if err := b.q.NewVar(id, scope, universal, true); err != nil {
			return err
		}
		b.lit[aigerLit] = qcnf.Lit(id)
	}
	return nil
}

// resolve returns the qcnf.Lit for an AIGER literal, recursively
// Tseitin-encoding any AND gate reached for the first time.
func (b *builder) resolve(aigerLit uint32) (qcnf.Lit, error) {
	if aigerLit == 0 {
		return 0, core.New("aiger", "resolve", core.InvalidInput, "constant-false literal has no CNF encoding")
	}
	if aigerLit == 1 {
		return 0, core.New("aiger", "resolve", core.InvalidInput, "constant-true literal has no CNF encoding")
	}
	node := aigerLit &^ 1
	if l, ok := b.lit[node]; ok {
		if aigerLit&1 == 1 {
			return l.Negate(), nil
		}
		return l, nil
	}
	args, isGate := b.gateArgs[node]
	if !isGate {
		return 0, core.New("aiger", "resolve", core.InvalidInput, "literal refers to neither a declared input nor an AND gate")
	}
	aLit, err := b.resolve(args[0])
	if err != nil {
		return 0, err
	}
	bLit, err := b.resolve(args[1])
	if err != nil {
		return 0, err
	}
	id := b.nextVar
	b.nextVar++
	if err := b.q.NewVar(id, qcnf.ScopeInnerExistential, false, false); err != nil {
		return 0, err
	}
	aux := qcnf.Lit(id)
	b.lit[node] = aux

	// aux ↔ (aLit ∧ bLit), the same clause shape as
	// certificate/tseitin.go's encodeNode / sat/cnf_converter.go's
	// transformAnd.
	b.q.AddLiteral(aux.Negate())
	b.q.AddLiteral(aLit)
	if _, err := b.q.CloseClause(false); err != nil {
		return 0, err
	}
	b.q.AddLiteral(aux.Negate())
	b.q.AddLiteral(bLit)
	if _, err := b.q.CloseClause(false); err != nil {
		return 0, err
	}
	b.q.AddLiteral(aux)
	b.q.AddLiteral(aLit.Negate())
	b.q.AddLiteral(bLit.Negate())
	if _, err := b.q.CloseClause(false); err != nil {
		return 0, err
	}

	if aigerLit&1 == 1 {
		return aux.Negate(), nil
	}
	return aux, nil
}

func (b *builder) assertOutput(aigerLit uint32) error {
	l, err := b.resolve(aigerLit)
	if err != nil {
		return err
	}
	b.q.AddLiteral(l)
	_, err = b.q.CloseClause(true)
	return err
}

func parseAscii(r *bufio.Reader, prefix string) (*qcnf.QCNF, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	if !s.Scan() {
		return nil, core.New("aiger", "parseAscii", core.InvalidInput, "missing header")
	}
	h, err := readHeader(s.Text(), "aag")
	if err != nil {
		return nil, err
	}
	if h.latches != 0 {
		return nil, core.New("aiger", "parseAscii", core.UnsupportedPrefix, "sequential AIGER (latches) is not a 2QBF matrix")
	}

	b := newBuilder(prefix)
	inputLits := make([]uint32, 0, h.inputs)
	for i := 0; i < h.inputs; i++ {
		if !s.Scan() {
			return nil, core.New("aiger", "parseAscii", core.InvalidInput, "truncated input section")
		}
		n, err := strconv.Atoi(strings.TrimSpace(s.Text()))
		if err != nil {
			return nil, core.Wrap(err, "aiger", "parseAscii", core.InvalidInput, "invalid input literal")
		}
		inputLits = append(inputLits, uint32(n))
		b.declareInput(uint32(n))
	}
	outputLits := make([]uint32, 0, h.outputs)
	for i := 0; i < h.outputs; i++ {
		if !s.Scan() {
			return nil, core.New("aiger", "parseAscii", core.InvalidInput, "truncated output section")
		}
		n, err := strconv.Atoi(strings.TrimSpace(s.Text()))
		if err != nil {
			return nil, core.Wrap(err, "aiger", "parseAscii", core.InvalidInput, "invalid output literal")
		}
		outputLits = append(outputLits, uint32(n))
	}
	for i := 0; i < h.ands; i++ {
		if !s.Scan() {
			return nil, core.New("aiger", "parseAscii", core.InvalidInput, "truncated AND section")
		}
		fields := strings.Fields(s.Text())
		if len(fields) != 3 {
			return nil, core.New("aiger", "parseAscii", core.InvalidInput, "malformed AND line")
		}
		lhs, e1 := strconv.Atoi(fields[0])
		r0, e2 := strconv.Atoi(fields[1])
		r1, e3 := strconv.Atoi(fields[2])
		if e1 != nil || e2 != nil || e3 != nil {
			return nil, core.New("aiger", "parseAscii", core.InvalidInput, "non-numeric AND gate operand")
		}
		b.declareGate(uint32(lhs), uint32(r0), uint32(r1))
	}

	// Symbol table: "i<k> name" / "o<k> name" lines, terminated by a
	// comment section ("c") or EOF.
	for s.Scan() {
		line := s.Text()
		if line == "" || line == "c" {
			break
		}
		if line[0] != 'i' {
			continue
		}
		var idx int
		var name string
		if _, err := fmt.Sscanf(line, "i%d", &idx); err != nil {
			continue
		}
		if sp := strings.IndexByte(line, ' '); sp >= 0 {
			name = line[sp+1:]
		}
		if idx < len(inputLits) {
			b.names[inputLits[idx]] = name
		}
	}

	if err := b.finalizeInputs(); err != nil {
		return nil, err
	}
	for _, out := range outputLits {
		if err := b.assertOutput(out); err != nil {
			return nil, err
		}
	}
	return b.q, nil
}

func parseBinary(r *bufio.Reader, prefix string) (*qcnf.QCNF, error) {
	headerLine, err := r.ReadString('\n')
	if err != nil {
		return nil, core.Wrap(err, "aiger", "parseBinary", core.InvalidInput, "missing header")
	}
	h, err := readHeader(strings.TrimRight(headerLine, "\n"), "aig")
	if err != nil {
		return nil, err
	}
	if h.latches != 0 {
		return nil, core.New("aiger", "parseBinary", core.UnsupportedPrefix, "sequential AIGER (latches) is not a 2QBF matrix")
	}

	b := newBuilder(prefix)

	// In the binary format inputs are implicit: literals 2, 4, ..., 2*I.
	inputLits := make([]uint32, 0, h.inputs)
	for i := 1; i <= h.inputs; i++ {
		lit := uint32(i) * 2
		inputLits = append(inputLits, lit)
		b.declareInput(lit)
	}

	outputLits := make([]uint32, 0, h.outputs)
	for i := 0; i < h.outputs; i++ {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, core.Wrap(err, "aiger", "parseBinary", core.InvalidInput, "truncated output section")
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return nil, core.Wrap(err, "aiger", "parseBinary", core.InvalidInput, "invalid output literal")
		}
		outputLits = append(outputLits, uint32(n))
	}

	// Binary AND gates: each gate's lhs is implicit (2*(I+L+1+k)) and
	// the two right-hand literals are delta-encoded against lhs via
	// AIGER's variable-length byte encoding, the same "base128 with a
	// continuation bit" scheme gini's internal DIMACS writer uses for
	// compact clause storage.
	firstAndVar := h.inputs + h.latches + 1
	for k := 0; k < h.ands; k++ {
		lhs := uint32(firstAndVar+k) * 2
		d0, err := readDelta(r)
		if err != nil {
			return nil, core.Wrap(err, "aiger", "parseBinary", core.InvalidInput, "truncated AND gate")
		}
		d1, err := readDelta(r)
		if err != nil {
			return nil, core.Wrap(err, "aiger", "parseBinary", core.InvalidInput, "truncated AND gate")
		}
		rhs0 := lhs - d0
		rhs1 := rhs0 - d1
		b.declareGate(lhs, rhs0, rhs1)
	}

	// Optional symbol table, same textual shape as the ascii dialect.
	rest, _ := io.ReadAll(r)
	for _, line := range strings.Split(string(bytes.TrimRight(rest, "\n")), "\n") {
		if line == "" || line == "c" || line[0] != 'i' {
			continue
		}
		var idx int
		if _, err := fmt.Sscanf(line, "i%d", &idx); err != nil {
			continue
		}
		var name string
		if sp := strings.IndexByte(line, ' '); sp >= 0 {
			name = line[sp+1:]
		}
		if idx < len(inputLits) {
			b.names[inputLits[idx]] = name
		}
	}

	if err := b.finalizeInputs(); err != nil {
		return nil, err
	}
	for _, out := range outputLits {
		if err := b.assertOutput(out); err != nil {
			return nil, err
		}
	}
	return b.q, nil
}

// readDelta decodes one AIGER variable-length-encoded unsigned integer:
// seven payload bits per byte, little-endian, continuation in the
// high bit.
func readDelta(r *bufio.Reader) (uint32, error) {
	var x uint32
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		x |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return x, nil
		}
		shift += 7
	}
}
