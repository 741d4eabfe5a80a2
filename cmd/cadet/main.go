// Command cadet is a 2QBF solver: it reads a QDIMACS instance, runs the
// incremental-determinization outer loop, and reports SAT/UNSAT along
// with an optional Skolem-function certificate. Grounded on
// cespare-saturday's cmd/saturday/saturday.go CLI shape (single
// positional input file, stdin fallback, a verbose flag gating a
// statistics dump) but using pflag-backed internal/options instead of
// the standard library's flag package, and emitting the QDIMACS-style
// "s cnf {0,1} ..." result line plus a "V ..." refuting assignment on
// UNSAT, per spec.md §6.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/cadet-qbf/cadet/internal/certificate"
	"github.com/cadet-qbf/cadet/internal/options"
	"github.com/cadet-qbf/cadet/internal/outer"
	"github.com/cadet-qbf/cadet/internal/parser/aiger"
	"github.com/cadet-qbf/cadet/internal/parser/qdimacs"
	"github.com/cadet-qbf/cadet/internal/qcnf"
	"github.com/cadet-qbf/cadet/internal/satsolver"
	"github.com/cadet-qbf/cadet/internal/skolem"
)

const (
	exitSAT     = 10
	exitUNSAT   = 20
	exitUnknown = 30
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := options.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUnknown
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	switch {
	case opts.Verbosity >= 3:
		log.SetLevel(logrus.DebugLevel)
	case opts.Verbosity >= 1:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	if opts.LogFile != "" {
		f, err := os.Create(opts.LogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitUnknown
		}
		defer f.Close()
		log.SetOutput(f)
	}

	var r io.Reader = os.Stdin
	if opts.InputPath != "" && opts.InputPath != "-" {
		f, err := os.Open(opts.InputPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitUnknown
		}
		defer f.Close()
		r = f
	}

	q, err := parseInput(r, opts.AigerControllableInputs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cadet:", err)
		return exitUnknown
	}

	s := satsolver.New()
	e := satsolver.New()
	solver := outer.New(q, s, e, skolem.Config{
		BothSided:            opts.PartialFuncGeneration,
		EnhancedPureLiterals: opts.EnhancedPureLiterals,
	}, outer.Options{
		CaseSplits:    opts.CaseSplits,
		CEGAROnly:     opts.CEGAROnly,
		Minimize:      opts.Minimize,
		DecisionLimit: opts.DecisionLimit,
	}, log)

	outcome, err := solver.Run(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "cadet:", err)
		return exitUnknown
	}

	switch outcome {
	case outer.Sat:
		fmt.Println("s cnf 1")
		if opts.CertificatePath != "" {
			if err := writeCertificate(q, solver, opts, log); err != nil {
				fmt.Fprintln(os.Stderr, "cadet:", err)
				return exitUnknown
			}
		}
		return exitSAT
	case outer.Unsat:
		fmt.Println("s cnf 0")
		printRefutingAssignment(solver.RefutingAssignment())
		return exitUNSAT
	default:
		fmt.Println("s cnf -1")
		return exitUnknown
	}
}

// printRefutingAssignment emits spec.md §6's "V ..." line: the
// falsified universal literals, varID order, terminated like a QDIMACS
// clause. Nothing is printed when no single clause could be blamed.
func printRefutingAssignment(assignment map[int32]bool) {
	if len(assignment) == 0 {
		return
	}
	ids := make([]int32, 0, len(assignment))
	for id := range assignment {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fmt.Print("V")
	for _, id := range ids {
		lit := id
		if !assignment[id] {
			lit = -id
		}
		fmt.Printf(" %d", lit)
	}
	fmt.Println(" 0")
}

// writeCertificate replays the Skolem engine's determinization trail
// into an AIG, co-verifies it against the original clause set, and
// writes it to opts.CertificatePath. The file is always ASCII AIGER,
// whichever certificate flag chose the path; the format is only logged.
// Case splits are not replayed here: the outer loop keeps no per-case
// sub-functions, so --case_splits/--cegar_only runs emit a direct-
// determinization certificate covering only the variables on the
// Skolem engine's trail, and no multiplexer tree over cases is built
// (every emitted output still passes Verify).
func writeCertificate(q *qcnf.QCNF, solver *outer.Solver, opts *options.Options, log *logrus.Logger) error {
	cert := certificate.BuildFromTrail(q, solver.Skolem())
	if err := certificate.Verify(q, cert, satsolver.New()); err != nil {
		return err
	}
	f, err := os.Create(opts.CertificatePath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := cert.Graph.WriteAscii(f); err != nil {
		return err
	}
	log.WithField("format", certificateFormatName(opts.CertificateFormat)).
		Info("certificate written")
	return nil
}

func certificateFormatName(f options.CertificateFormat) string {
	switch f {
	case options.QAiger:
		return "qaiger"
	case options.CAQECert:
		return "caqecert"
	default:
		return "qbfcert"
	}
}

// parseInput sniffs the leading bytes of r to pick between the QDIMACS
// and AIGER parsers, per spec.md §6's "positional QDIMACS/AIGER path" —
// the two formats are unambiguous from their first line alone ("aag"/
// "aig" magic words versus everything QDIMACS allows as a first
// non-comment character).
func parseInput(r io.Reader, controllablePrefix string) (*qcnf.QCNF, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(3)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if string(magic) == "aag" || string(magic) == "aig" {
		return aiger.Parse(br, controllablePrefix)
	}
	return qdimacs.Parse(br)
}
