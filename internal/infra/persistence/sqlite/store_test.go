package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nalarbp/patomove/pkg/domain"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "patomove.db")

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateIsolate(domain.Isolate{
			Base:             domain.Base{ID: "iso-1"},
			Label:            "ISO-2024-001",
			ProcessingStatus: domain.IsolateReceived,
		}); err != nil {
			return err
		}
		_, err := tx.CreateGenome(domain.GenomicData{
			Base:             domain.Base{ID: "g-1"},
			Filename:         "g-1_sample.fasta",
			OriginalFilename: "sample.fasta",
			ValidationStatus: domain.ValidationValid,
			ProcessingStatus: domain.GenomeValidated,
			MLSTAlleles:      map[string]string{"gapA": "3"},
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	iso, ok := reopened.GetIsolate("iso-1")
	if !ok {
		t.Fatalf("isolate not hydrated")
	}
	if iso.Label != "ISO-2024-001" {
		t.Fatalf("unexpected label %q", iso.Label)
	}
	genome, ok := reopened.GetGenome("g-1")
	if !ok {
		t.Fatalf("genome not hydrated")
	}
	if genome.OriginalFilename != "sample.fasta" || genome.ValidationStatus != domain.ValidationValid {
		t.Fatalf("genome fields lost: %+v", genome)
	}
	if genome.MLSTAlleles["gapA"] != "3" {
		t.Fatalf("allele map lost: %+v", genome.MLSTAlleles)
	}
}

func TestStorePersistsAfterEveryTransaction(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "patomove.db")

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	for _, id := range []string{"iso-1", "iso-2"} {
		id := id
		if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			_, err := tx.CreateIsolate(domain.Isolate{Base: domain.Base{ID: id}, Label: id})
			return err
		}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	var payload []byte
	if err := store.DB().QueryRow(`SELECT payload FROM state WHERE bucket = ?`, "isolates").Scan(&payload); err != nil {
		t.Fatalf("select bucket: %v", err)
	}
	if len(payload) == 0 {
		t.Fatalf("empty isolates bucket")
	}
}
