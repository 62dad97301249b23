package core

import (
	"regexp"
	"strings"
)

// MatchReason tags why a filename/label pair earned its confidence score.
type MatchReason string

// Match reasons, ordered from strongest to weakest evidence.
const (
	ReasonExactMatch            MatchReason = "EXACT_MATCH"
	ReasonCloseMatchSeparators  MatchReason = "CLOSE_MATCH_IGNORING_SEPARATORS"
	ReasonFilenameContainsLabel MatchReason = "FILENAME_CONTAINS_LABEL"
	ReasonLabelContainsFilename MatchReason = "LABEL_CONTAINS_FILENAME"
	ReasonPartialMatch          MatchReason = "PARTIAL_MATCH"
)

// Confidence values assigned by the scoring ladder.
const (
	ConfidenceExact            = 0.95
	ConfidenceCloseSeparators  = 0.85
	ConfidenceFilenameContains = 0.70
	ConfidenceLabelContains    = 0.60
	ConfidencePartial          = 0.40
)

var genomeExtension = regexp.MustCompile(`(?i)\.(fasta|fa|fna|fastq|fq)$`)

// StripExtension removes a recognised genome file extension from name and
// trims surrounding whitespace.
func StripExtension(name string) string {
	return strings.TrimSpace(genomeExtension.ReplaceAllString(name, ""))
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ', '\t':
			return -1
		}
		return r
	}, s)
}

// Score computes a confidence in [0,1] and a reason for how well a filename
// base (extension already stripped) matches an isolate label. The ladder is
// evaluated strictly top-down; the first rung that applies wins. Pure and
// total: any pair of strings, including empty ones, yields a result.
func Score(filenameBase, label string) (float64, MatchReason) {
	f := strings.ToLower(strings.TrimSpace(filenameBase))
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case f == l:
		return ConfidenceExact, ReasonExactMatch
	case stripSeparators(f) == stripSeparators(l):
		return ConfidenceCloseSeparators, ReasonCloseMatchSeparators
	case strings.Contains(f, l):
		return ConfidenceFilenameContains, ReasonFilenameContainsLabel
	case strings.Contains(l, f):
		return ConfidenceLabelContains, ReasonLabelContainsFilename
	default:
		return ConfidencePartial, ReasonPartialMatch
	}
}

// searchTerms derives the candidate-finder search terms from an isolate
// label: trimmed, separator-stripped, lower- and upper-cased forms, with
// duplicates and empty terms dropped. Order is preserved.
func searchTerms(label string) []string {
	trimmed := strings.TrimSpace(label)
	raw := []string{
		trimmed,
		stripSeparators(trimmed),
		strings.ToLower(trimmed),
		strings.ToUpper(trimmed),
	}
	seen := make(map[string]struct{}, len(raw))
	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}
