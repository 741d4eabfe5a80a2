package options

import "testing"

func TestParseDefaults(t *testing.T) {
	o, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if !o.PureLiterals {
		t.Fatalf("expected pure_literals to default true")
	}
	if o.DecisionLimit != 0 {
		t.Fatalf("expected DecisionLimit to default to unlimited (0), got %d", o.DecisionLimit)
	}
	if o.InputPath != "" {
		t.Fatalf("expected empty InputPath with no positional args")
	}
}

func TestParseDecisionLimitShortFlag(t *testing.T) {
	o, err := Parse([]string{"-l", "500", "input.qdimacs"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if o.DecisionLimit != 500 {
		t.Fatalf("expected DecisionLimit=500, got %d", o.DecisionLimit)
	}
	if o.InputPath != "input.qdimacs" {
		t.Fatalf("expected positional arg to populate InputPath, got %q", o.InputPath)
	}
}

func TestParseCertificateDialects(t *testing.T) {
	cases := []struct {
		flag string
		want CertificateFormat
	}{
		{"--qbfcert", QBFCert},
		{"--qaiger", QAiger},
		{"--caqecert", CAQECert},
	}
	for _, c := range cases {
		o, err := Parse([]string{c.flag, "out.aag"})
		if err != nil {
			t.Fatalf("Parse(%s): %v", c.flag, err)
		}
		if o.CertificateFormat != c.want {
			t.Fatalf("%s: expected format %v, got %v", c.flag, c.want, o.CertificateFormat)
		}
		if o.CertificatePath != "out.aag" {
			t.Fatalf("%s: expected CertificatePath=out.aag, got %q", c.flag, o.CertificatePath)
		}
	}
}

func TestParseLogFlagDoesNotCollideWithDecisionLimit(t *testing.T) {
	o, err := Parse([]string{"--log", "cadet.log", "-l", "10"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if o.LogFile != "cadet.log" {
		t.Fatalf("expected LogFile=cadet.log, got %q", o.LogFile)
	}
	if o.DecisionLimit != 10 {
		t.Fatalf("expected DecisionLimit=10, got %d", o.DecisionLimit)
	}
}

func TestParseInvalidFlagIsInvalidInput(t *testing.T) {
	if _, err := Parse([]string{"--not-a-real-flag"}); err == nil {
		t.Fatalf("expected an error for an unknown flag")
	}
}
