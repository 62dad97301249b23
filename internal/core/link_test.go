package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nalarbp/patomove/pkg/domain"
)

func TestLinkGenomeRecordsProvenance(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, WithNowFunc(func() time.Time { return now }))

	isolate := mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: "iso-1"}, Label: "ISO-1"})
	genome := mustCreateGenome(t, svc, validGenome("g-1", "ISO-1.fasta", uploadBase))

	result, _, err := svc.LinkGenome(ctx, isolate.ID, genome.ID, domain.LinkAutoExact)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if result.Isolate.GenomeID == nil || *result.Isolate.GenomeID != genome.ID {
		t.Fatalf("isolate genome ref = %v, want %s", result.Isolate.GenomeID, genome.ID)
	}
	if result.Genome.LinkedAt == nil || !result.Genome.LinkedAt.Equal(now) {
		t.Fatalf("linkedAt = %v, want %v", result.Genome.LinkedAt, now)
	}
	if !result.Genome.AutoLinked {
		t.Fatalf("auto_exact link should set AutoLinked")
	}
	if result.Genome.LinkingMethod != domain.LinkAutoExact {
		t.Fatalf("linking method = %s, want %s", result.Genome.LinkingMethod, domain.LinkAutoExact)
	}
}

func TestLinkGenomeManualMethodNotAutoLinked(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	isolate := mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: "iso-1"}, Label: "ISO-1"})
	genome := mustCreateGenome(t, svc, validGenome("g-1", "ISO-1.fasta", uploadBase))

	result, _, err := svc.LinkGenome(ctx, isolate.ID, genome.ID, domain.LinkManualSearch)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if result.Genome.AutoLinked {
		t.Fatalf("manual_search link should not set AutoLinked")
	}
}

func TestLinkGenomeNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	isolate := mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: "iso-1"}, Label: "ISO-1"})
	genome := mustCreateGenome(t, svc, validGenome("g-1", "ISO-1.fasta", uploadBase))

	if _, _, err := svc.LinkGenome(ctx, "missing", genome.ID, domain.LinkManualSearch); !IsNotFound(err) {
		t.Fatalf("unknown isolate: expected NotFoundError, got %v", err)
	}
	if _, _, err := svc.LinkGenome(ctx, isolate.ID, "missing", domain.LinkManualSearch); !IsNotFound(err) {
		t.Fatalf("unknown genome: expected NotFoundError, got %v", err)
	}
}

func TestLinkGenomeConflictNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	first := mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: "iso-1"}, Label: "ISO-1"})
	second := mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: "iso-2"}, Label: "ISO-2"})
	genome := mustCreateGenome(t, svc, validGenome("g-1", "ISO-1.fasta", uploadBase))

	if _, _, err := svc.LinkGenome(ctx, first.ID, genome.ID, domain.LinkManualSearch); err != nil {
		t.Fatalf("first link: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, _, err := svc.LinkGenome(ctx, second.ID, genome.ID, domain.LinkManualSearch); !IsConflict(err) {
			t.Fatalf("relink attempt %d: expected ConflictError, got %v", i, err)
		}
	}

	kept, err := svc.GetIsolate(ctx, first.ID)
	if err != nil {
		t.Fatalf("get isolate: %v", err)
	}
	if kept.GenomeID == nil || *kept.GenomeID != genome.ID {
		t.Fatalf("original link lost: %v", kept.GenomeID)
	}
}

func TestLinkGenomeAtMostOneWinnerUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	const contenders = 32
	genome := mustCreateGenome(t, svc, validGenome("g-1", "ISO.fasta", uploadBase))
	for i := 0; i < contenders; i++ {
		mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: fmt.Sprintf("iso-%02d", i)}, Label: fmt.Sprintf("ISO-%02d", i)})
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.LinkGenome(ctx, fmt.Sprintf("iso-%02d", i), genome.ID, domain.LinkManualSuggestion)
		}(i)
	}
	wg.Wait()

	winners, conflicts := 0, 0
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
		case IsConflict(err):
			conflicts++
		default:
			t.Fatalf("contender %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1 (conflicts %d)", winners, conflicts)
	}
	if conflicts != contenders-1 {
		t.Fatalf("conflicts = %d, want %d", conflicts, contenders-1)
	}

	holders := 0
	for _, iso := range svc.Store().ListIsolates() {
		if iso.GenomeID != nil && *iso.GenomeID == genome.ID {
			holders++
		}
	}
	if holders != 1 {
		t.Fatalf("genome held by %d isolates after race, want 1", holders)
	}
}
