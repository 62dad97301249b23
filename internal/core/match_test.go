package core

import "testing"

func TestScoreLadder(t *testing.T) {
	cases := []struct {
		name       string
		filename   string
		label      string
		confidence float64
		reason     MatchReason
	}{
		{"exact", "LAB-2024-001", "LAB-2024-001", 0.95, ReasonExactMatch},
		{"exact case-insensitive", "lab-2024-001", "LAB-2024-001", 0.95, ReasonExactMatch},
		{"separator stripped", "lab_2024_001", "LAB-2024-001", 0.85, ReasonCloseMatchSeparators},
		{"filename contains label", "LAB-2024-001_assembly_v2", "LAB-2024-001", 0.70, ReasonFilenameContainsLabel},
		{"label contains filename", "2024-001", "LAB-2024-001", 0.60, ReasonLabelContainsFilename},
		{"partial", "unrelated", "LAB-2024-001", 0.40, ReasonPartialMatch},
		{"both empty", "", "", 0.95, ReasonExactMatch},
		{"whitespace trimmed", "  LAB-2024-001  ", "LAB-2024-001", 0.95, ReasonExactMatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			confidence, reason := Score(tc.filename, tc.label)
			if confidence != tc.confidence || reason != tc.reason {
				t.Fatalf("Score(%q, %q) = (%v, %s), want (%v, %s)", tc.filename, tc.label, confidence, reason, tc.confidence, tc.reason)
			}
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	base := StripExtension("LAB-2024-001.fasta")
	for i := 0; i < 100; i++ {
		confidence, reason := Score(base, "LAB-2024-001")
		if confidence != 0.95 || reason != ReasonExactMatch {
			t.Fatalf("call %d: got (%v, %s), want (0.95, %s)", i, confidence, reason, ReasonExactMatch)
		}
	}
}

func TestScoreMonotonicLadder(t *testing.T) {
	sep, _ := Score("lab_2024_001", "LAB-2024-001")
	exact, _ := Score("LAB-2024-001", "LAB-2024-001")
	substring, _ := Score("LAB-2024-001_extra", "LAB-2024-001")
	if !(substring < sep && sep < exact) {
		t.Fatalf("ladder not monotonic: substring=%v separator=%v exact=%v", substring, sep, exact)
	}
}

func TestStripExtension(t *testing.T) {
	cases := map[string]string{
		"sample.fasta":       "sample",
		"sample.FASTA":       "sample",
		"sample.fa":          "sample",
		"sample.fna":         "sample",
		"sample.fastq":       "sample",
		"sample.fq":          "sample",
		"sample.txt":         "sample.txt",
		"sample.fasta.fasta": "sample.fasta",
		"sample":             "sample",
		"":                   "",
	}
	for in, want := range cases {
		if got := StripExtension(in); got != want {
			t.Fatalf("StripExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSearchTerms(t *testing.T) {
	terms := searchTerms("  ISO-2024-001  ")
	want := []string{"ISO-2024-001", "ISO2024001", "iso-2024-001"}
	if len(terms) != len(want) {
		t.Fatalf("got %d terms %v, want %d", len(terms), terms, len(want))
	}
	for i, term := range want {
		if terms[i] != term {
			t.Fatalf("term %d = %q, want %q", i, terms[i], term)
		}
	}

	if got := searchTerms("   "); len(got) != 0 {
		t.Fatalf("expected no terms for blank label, got %v", got)
	}
}
