package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nalarbp/patomove/pkg/domain"
)

func TestTransactionCommitAndRollback(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateIsolate(domain.Isolate{Base: domain.Base{ID: "iso-1"}, Label: "ISO-1"})
		return err
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, ok := store.GetIsolate("iso-1"); !ok {
		t.Fatalf("committed isolate missing")
	}

	sentinel := errors.New("boom")
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateIsolate(domain.Isolate{Base: domain.Base{ID: "iso-2"}, Label: "ISO-2"}); err != nil {
			return err
		}
		if err := tx.DeleteIsolate("iso-1"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if _, ok := store.GetIsolate("iso-2"); ok {
		t.Fatalf("rolled-back create leaked")
	}
	if _, ok := store.GetIsolate("iso-1"); !ok {
		t.Fatalf("rolled-back delete applied")
	}
}

func TestTransactionIsolationFromSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateGenome(domain.GenomicData{
			Base:        domain.Base{ID: "g-1"},
			MLSTAlleles: map[string]string{"gapA": "3"},
		})
		return err
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _ := store.GetGenome("g-1")
	got.MLSTAlleles["gapA"] = "tampered"

	fresh, _ := store.GetGenome("g-1")
	if fresh.MLSTAlleles["gapA"] != "3" {
		t.Fatalf("caller mutation leaked into store state")
	}
}

func TestRulesEngineBlocksCommit(t *testing.T) {
	ctx := context.Background()
	engine := domain.NewRulesEngine()
	engine.Register(blockAllRule{})
	store := NewStore(engine)

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateIsolate(domain.Isolate{Base: domain.Base{ID: "iso-1"}, Label: "ISO-1"})
		return err
	})
	var ruleErr domain.RuleViolationError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if _, ok := store.GetIsolate("iso-1"); ok {
		t.Fatalf("blocked transaction committed")
	}
}

func TestFindIsolateByLabelDeterministic(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for _, id := range []string{"iso-b", "iso-a", "iso-c"} {
			if _, err := tx.CreateIsolate(domain.Isolate{Base: domain.Base{ID: id}, Label: "SHARED"}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	for i := 0; i < 10; i++ {
		err := store.View(ctx, func(v domain.TransactionView) error {
			iso, ok := v.FindIsolateByLabel("SHARED")
			if !ok {
				t.Fatalf("label not found")
			}
			if iso.ID != "iso-a" {
				t.Fatalf("lookup %d resolved %s, want iso-a", i, iso.ID)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("view: %v", err)
		}
	}
}

func TestSetNowFuncControlsTimestamps(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	fixed := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return fixed })

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateGenome(domain.GenomicData{Base: domain.Base{ID: "g-1"}})
		return err
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	g, _ := store.GetGenome("g-1")
	if !g.CreatedAt.Equal(fixed) || !g.UploadDate.Equal(fixed) {
		t.Fatalf("timestamps = created %v upload %v, want %v", g.CreatedAt, g.UploadDate, fixed)
	}
}

func TestExportImportState(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateOrganization(domain.Organization{Base: domain.Base{ID: "org-1"}, Name: "Ref Lab"}); err != nil {
			return err
		}
		genomeID := "g-1"
		if _, err := tx.CreateGenome(domain.GenomicData{Base: domain.Base{ID: genomeID}, OriginalFilename: "a.fasta"}); err != nil {
			return err
		}
		_, err := tx.CreateIsolate(domain.Isolate{Base: domain.Base{ID: "iso-1"}, Label: "ISO-1", GenomeID: &genomeID})
		return err
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	snapshot := store.ExportState()

	restored := NewStore(nil)
	restored.ImportState(snapshot)
	iso, ok := restored.GetIsolate("iso-1")
	if !ok || iso.GenomeID == nil || *iso.GenomeID != "g-1" {
		t.Fatalf("restored isolate wrong: %+v", iso)
	}
	if _, ok := restored.GetGenome("g-1"); !ok {
		t.Fatalf("restored genome missing")
	}
	if len(restored.ListOrganizations()) != 1 {
		t.Fatalf("restored organizations missing")
	}
}

type blockAllRule struct{}

func (blockAllRule) Name() string { return "block_all" }

func (blockAllRule) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	if len(changes) == 0 {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{
		Rule:     "block_all",
		Severity: domain.SeverityBlock,
		Message:  "blocked",
	}}}, nil
}
