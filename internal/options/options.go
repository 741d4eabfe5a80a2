// Package options defines cadet's command-line surface. Grounded on
// cespare-saturday's cmd/saturday/saturday.go flag-parsing idiom — one
// struct populated by a single FlagSet, validated once after Parse —
// but built on github.com/spf13/pflag instead of the standard library's
// flag package, matching the GNU-style long-flag conventions (--minimize,
// --cegar_only, ...) spec.md §6 specifies.
package options

import (
	"github.com/spf13/pflag"

	"github.com/cadet-qbf/cadet/core"
)

// CertificateFormat records which of --qbfcert/--qaiger/--caqecert
// supplied the certificate path.
type CertificateFormat int

const (
	NoCertificate CertificateFormat = iota
	QBFCert
	QAiger
	CAQECert
)

// Options holds every flag spec.md §6 names.
type Options struct {
	Verbosity int
	Seed      int64

	CertificatePath   string
	CertificateFormat CertificateFormat

	QDIMACSOut string
	Debugging  bool

	CEGAR     bool
	CEGAROnly bool

	CaseSplits bool

	FunctionalSynthesis bool
	SATByQBF            bool

	Miniscoping bool
	Minimize    bool

	PureLiterals          bool
	EnhancedPureLiterals  bool
	PartialFuncGeneration bool

	AigerControllableInputs string

	LogFile string

	// DecisionLimit is spec.md §6's "-l <N>: hard decision limit;
	// returns exit code for Unknown when hit." Zero means unlimited.
	DecisionLimit int64

	InputPath string
}

// Parse builds a FlagSet, parses args (typically os.Args[1:]), and
// returns the populated Options. The single positional argument, if any,
// is taken as the QDIMACS input path ("-" or absent means stdin).
func Parse(args []string) (*Options, error) {
	o := &Options{}
	fs := pflag.NewFlagSet("cadet", pflag.ContinueOnError)

	fs.IntVarP(&o.Verbosity, "verbosity", "v", 0, "verbosity level (0-3)")
	fs.Int64VarP(&o.Seed, "seed", "s", 0, "random seed (accepted; has no effect on solving)")

	var certFmt string
	fs.StringVar(&certFmt, "qbfcert", "", "write a QBF certificate to the given path")
	var qaiger string
	fs.StringVar(&qaiger, "qaiger", "", "write a QAIGER certificate to the given path")
	var caqecert string
	fs.StringVar(&caqecert, "caqecert", "", "write a CAQE-style certificate to the given path")

	fs.StringVar(&o.QDIMACSOut, "qdimacs_out", "", "QDIMACS output path (accepted; nothing is written)")
	fs.BoolVar(&o.Debugging, "debugging", false, "debugging output (accepted; has no effect)")

	fs.BoolVar(&o.CEGAR, "cegar", false, "CEGAR refinement (accepted; has no effect, CEGAR runs under --case_splits or --cegar_only)")
	fs.BoolVar(&o.CEGAROnly, "cegar_only", false, "solve using CEGAR exclusively, skipping direct determinization")
	fs.BoolVar(&o.CaseSplits, "case_splits", false, "enable universal case-splitting")

	fs.BoolVar(&o.FunctionalSynthesis, "functional-synthesis", false, "functional-synthesis mode (accepted; has no effect)")
	fs.BoolVar(&o.SATByQBF, "sat_by_qbf", false, "separate path for formulas without universals (accepted; has no effect, such formulas run through the normal cycle)")

	fs.BoolVar(&o.Miniscoping, "miniscoping", false, "miniscoping (accepted; has no effect)")
	fs.BoolVar(&o.Minimize, "minimize", false, "minimize learned clauses before insertion")

	fs.BoolVar(&o.PureLiterals, "pure_literals", true, "pure-literal rule (accepted; the rule always runs)")
	fs.BoolVar(&o.EnhancedPureLiterals, "enhanced_pure_literals", false, "enable the enhanced pure-literal rule")
	fs.BoolVar(&o.PartialFuncGeneration, "pg", false, "use both-sided partial-function encoding unconditionally")

	fs.StringVar(&o.AigerControllableInputs, "aiger_controllable_inputs", "", "name prefix marking AIGER input variables as controllable (existential) when parsing AIGER input")

	fs.StringVar(&o.LogFile, "log", "", "write logs to the given file instead of stderr")
	fs.Int64VarP(&o.DecisionLimit, "decision-limit", "l", 0, "hard decision limit; returns Unknown when hit (0 = unlimited)")

	if err := fs.Parse(args); err != nil {
		return nil, core.Wrap(err, "options", "Parse", core.InvalidInput, "flag parsing failed")
	}

	switch {
	case certFmt != "":
		o.CertificatePath, o.CertificateFormat = certFmt, QBFCert
	case qaiger != "":
		o.CertificatePath, o.CertificateFormat = qaiger, QAiger
	case caqecert != "":
		o.CertificatePath, o.CertificateFormat = caqecert, CAQECert
	}

	if rest := fs.Args(); len(rest) > 0 {
		o.InputPath = rest[0]
	}

	return o, nil
}
