package core

import (
	"context"
	"fmt"

	"github.com/nalarbp/patomove/pkg/domain"
)

// NewSourceExclusivityRule returns the rule flagging isolates that reference
// both a patient and an environmental source. The two are mutually exclusive
// in practice but legacy imports sometimes carry both, so this warns rather
// than blocks.
func NewSourceExclusivityRule() domain.Rule {
	return sourceExclusivityRule{}
}

type sourceExclusivityRule struct{}

func (sourceExclusivityRule) Name() string { return "source_exclusivity" }

func (sourceExclusivityRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, iso := range view.ListIsolates() {
		if iso.PatientID != nil && iso.EnvironmentID != nil {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "source_exclusivity",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("isolate %s (%s) references both a patient and an environment", iso.Label, iso.ID),
				Entity:   domain.EntityIsolate,
				EntityID: iso.ID,
			})
		}
	}
	return res, nil
}
