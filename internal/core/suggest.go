package core

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/nalarbp/patomove/pkg/domain"
)

// maxSuggestions bounds the ranked suggestion list returned per lookup.
const maxSuggestions = 10

// MatchSuggestion pairs a candidate genome with its computed confidence.
// Ephemeral: scoped to one suggestion lookup, never persisted.
type MatchSuggestion struct {
	GenomeID         string      `json:"genomeId"`
	Filename         string      `json:"filename"`
	OriginalFilename string      `json:"originalFilename"`
	FileSize         int64       `json:"fileSize"`
	UploadDate       time.Time   `json:"uploadDate"`
	Confidence       float64     `json:"confidence"`
	Reason           MatchReason `json:"reason"`
}

// IsolateRef identifies the isolate a suggestion set was computed for.
type IsolateRef struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SuggestionSet is the response of a genome-suggestion lookup.
// TotalUnlinkedGenomes counts every valid unlinked genome in the system, not
// just the matched candidates.
type SuggestionSet struct {
	Isolate              IsolateRef        `json:"isolate"`
	Suggestions          []MatchSuggestion `json:"suggestions"`
	TotalUnlinkedGenomes int               `json:"totalUnlinkedGenomes"`
}

// GenomeSuggestions finds, scores, and ranks candidate genomes for the given
// isolate. Candidates are valid unlinked genomes whose stored or original
// filename contains one of the label's search terms. Ranking is confidence
// descending, then upload date descending, then original filename ascending;
// the list is capped at maxSuggestions after sorting.
func (s *Service) GenomeSuggestions(ctx context.Context, isolateID string) (SuggestionSet, error) {
	var set SuggestionSet
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		isolate, ok := view.FindIsolate(isolateID)
		if !ok {
			return NotFoundError{Entity: domain.EntityIsolate, ID: isolateID}
		}
		set.Isolate = IsolateRef{ID: isolate.ID, Label: isolate.Label}

		linked := linkedGenomeIDs(view)
		terms := searchTerms(isolate.Label)
		suggestions := make([]MatchSuggestion, 0)
		for _, g := range view.ListGenomes() {
			if g.ValidationStatus != domain.ValidationValid {
				continue
			}
			if _, isLinked := linked[g.ID]; isLinked {
				continue
			}
			set.TotalUnlinkedGenomes++
			if !matchesAnyTerm(g, terms) {
				continue
			}
			confidence, reason := Score(StripExtension(g.OriginalFilename), isolate.Label)
			suggestions = append(suggestions, MatchSuggestion{
				GenomeID:         g.ID,
				Filename:         g.Filename,
				OriginalFilename: g.OriginalFilename,
				FileSize:         g.FileSize,
				UploadDate:       g.UploadDate,
				Confidence:       confidence,
				Reason:           reason,
			})
		}
		sort.Slice(suggestions, func(i, j int) bool {
			a, b := suggestions[i], suggestions[j]
			if a.Confidence != b.Confidence {
				return a.Confidence > b.Confidence
			}
			if !a.UploadDate.Equal(b.UploadDate) {
				return a.UploadDate.After(b.UploadDate)
			}
			return a.OriginalFilename < b.OriginalFilename
		})
		if len(suggestions) > maxSuggestions {
			suggestions = suggestions[:maxSuggestions]
		}
		set.Suggestions = suggestions
		return nil
	})
	if err != nil {
		return SuggestionSet{}, err
	}
	return set, nil
}

func matchesAnyTerm(g domain.GenomicData, terms []string) bool {
	stored := strings.ToLower(g.Filename)
	original := strings.ToLower(g.OriginalFilename)
	for _, term := range terms {
		t := strings.ToLower(term)
		if strings.Contains(stored, t) || strings.Contains(original, t) {
			return true
		}
	}
	return false
}
