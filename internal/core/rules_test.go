package core

import (
	"context"
	"errors"
	"testing"

	"github.com/nalarbp/patomove/internal/infra/persistence/memory"
	"github.com/nalarbp/patomove/pkg/domain"
)

func TestPrimaryLinkRuleBlocksDoubleLink(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(DefaultRulesEngine())
	genomeID := "g-1"

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateGenome(domain.GenomicData{Base: domain.Base{ID: genomeID}}); err != nil {
			return err
		}
		for _, id := range []string{"iso-1", "iso-2"} {
			if _, err := tx.CreateIsolate(domain.Isolate{Base: domain.Base{ID: id}, Label: id, GenomeID: &genomeID}); err != nil {
				return err
			}
		}
		return nil
	})

	var ruleErr domain.RuleViolationError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if !ruleErr.Result.HasBlocking() {
		t.Fatalf("violation should be blocking: %+v", ruleErr.Result)
	}

	// The blocked transaction must not have committed anything.
	if _, ok := store.GetGenome(genomeID); ok {
		t.Fatalf("blocked transaction leaked state")
	}
}

func TestSourceExclusivityRuleWarns(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(DefaultRulesEngine())
	patientID, envID := "p-1", "e-1"

	res, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreatePatient(domain.Patient{Base: domain.Base{ID: patientID}}); err != nil {
			return err
		}
		if _, err := tx.CreateEnvironment(domain.Environment{Base: domain.Base{ID: envID}, SiteName: "sink"}); err != nil {
			return err
		}
		_, err := tx.CreateIsolate(domain.Isolate{
			Base:          domain.Base{ID: "iso-1"},
			Label:         "ISO-1",
			PatientID:     &patientID,
			EnvironmentID: &envID,
		})
		return err
	})
	if err != nil {
		t.Fatalf("warn severity must not block commit: %v", err)
	}

	var warned bool
	for _, v := range res.Violations {
		if v.Rule == "source_exclusivity" && v.Severity == domain.SeverityWarn {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("expected source_exclusivity warning, got %+v", res.Violations)
	}

	if _, ok := store.GetIsolate("iso-1"); !ok {
		t.Fatalf("warned transaction should still commit")
	}
}
