package core

import (
	"context"
	"fmt"

	"github.com/nalarbp/patomove/pkg/domain"
)

// NewPrimaryLinkRule returns the in-transaction rule enforcing that no genome
// is held as primary by more than one isolate.
func NewPrimaryLinkRule() domain.Rule {
	return primaryLinkRule{}
}

type primaryLinkRule struct{}

func (primaryLinkRule) Name() string { return "primary_link_uniqueness" }

func (primaryLinkRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	holders := make(map[string][]string)
	for _, iso := range view.ListIsolates() {
		if iso.GenomeID == nil {
			continue
		}
		holders[*iso.GenomeID] = append(holders[*iso.GenomeID], iso.ID)
	}

	res := domain.Result{}
	for genomeID, isolates := range holders {
		if len(isolates) > 1 {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "primary_link_uniqueness",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("genome %s held as primary by %d isolates", genomeID, len(isolates)),
				Entity:   domain.EntityGenome,
				EntityID: genomeID,
			})
		}
	}
	return res, nil
}
