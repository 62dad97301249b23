package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nalarbp/patomove/internal/pipeline"
	"github.com/nalarbp/patomove/pkg/domain"
)

func TestDeleteIsolateCascades(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	isolate := mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: "iso-1"}, Label: "ISO-1"})
	genome := mustCreateGenome(t, svc, validGenome("g-1", "ISO-1.fasta", uploadBase))
	if _, _, err := svc.LinkGenome(ctx, isolate.ID, genome.ID, domain.LinkManualSearch); err != nil {
		t.Fatalf("link: %v", err)
	}
	outcome, _, err := svc.CreateTreatmentOutcome(ctx, domain.TreatmentOutcome{
		IsolateID:  isolate.ID,
		Drug:       "meropenem",
		Outcome:    "resolved",
		RecordedAt: uploadBase,
	})
	if err != nil {
		t.Fatalf("create outcome: %v", err)
	}

	if _, err := svc.DeleteIsolate(ctx, isolate.ID); err != nil {
		t.Fatalf("delete isolate: %v", err)
	}

	if _, err := svc.GetIsolate(ctx, isolate.ID); !IsNotFound(err) {
		t.Fatalf("isolate should be gone, got %v", err)
	}
	if _, err := svc.GetGenome(ctx, genome.ID); !IsNotFound(err) {
		t.Fatalf("primary genome should cascade, got %v", err)
	}
	for _, o := range svc.ListTreatmentOutcomes(ctx) {
		if o.ID == outcome.ID {
			t.Fatalf("treatment outcome should cascade")
		}
	}
}

func TestDeleteGenomeRefusedWhileLinked(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	isolate := mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: "iso-1"}, Label: "ISO-1"})
	genome := mustCreateGenome(t, svc, validGenome("g-1", "ISO-1.fasta", uploadBase))
	if _, _, err := svc.LinkGenome(ctx, isolate.ID, genome.ID, domain.LinkManualSearch); err != nil {
		t.Fatalf("link: %v", err)
	}

	_, err := svc.DeleteGenome(ctx, genome.ID)
	if !IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !strings.Contains(err.Error(), "ISO-1") {
		t.Fatalf("error should name the linked isolate: %v", err)
	}
	if _, getErr := svc.GetGenome(ctx, genome.ID); getErr != nil {
		t.Fatalf("genome should survive refused delete: %v", getErr)
	}
}

func TestUpdateIsolatePreservesPrimaryLink(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	isolate := mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: "iso-1"}, Label: "ISO-1"})
	genome := mustCreateGenome(t, svc, validGenome("g-1", "ISO-1.fasta", uploadBase))
	if _, _, err := svc.LinkGenome(ctx, isolate.ID, genome.ID, domain.LinkManualSearch); err != nil {
		t.Fatalf("link: %v", err)
	}

	updated, _, err := svc.UpdateIsolate(ctx, isolate.ID, func(iso *domain.Isolate) error {
		iso.Notes = "edited"
		iso.GenomeID = nil // edits must not unlink
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.GenomeID == nil || *updated.GenomeID != genome.ID {
		t.Fatalf("update clobbered the primary link: %v", updated.GenomeID)
	}
	if updated.Notes != "edited" {
		t.Fatalf("edit lost: %q", updated.Notes)
	}
}

func TestListIsolatesFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	org := "org-1"
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: "a"}, Label: "A", OrgID: &org, CollectionSource: "clinical", CollectionDate: base})
	mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: "b"}, Label: "B", OrgID: &org, CollectionSource: "clinical", CollectionDate: base.AddDate(0, 1, 0)})
	mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: "c"}, Label: "C", CollectionSource: "environmental", CollectionDate: base.AddDate(0, 2, 0)})

	got := svc.ListIsolates(ctx, IsolateFilter{OrgID: org, CollectionSource: "clinical"})
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("filtered listing wrong: %+v", got)
	}

	all := svc.ListIsolates(ctx, IsolateFilter{})
	if len(all) != 3 || all[0].ID != "c" {
		t.Fatalf("unfiltered listing should be newest first: %+v", all)
	}
}

func TestUploadGenomeFileStoresAndSubmitsJob(t *testing.T) {
	ctx := context.Background()

	var submitted pipeline.JobRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs" {
			http.NotFound(w, r)
			return
		}
		if err := jsonDecode(r, &submitted); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"job_id":"job-77","status":"queued"}`))
	}))
	defer ts.Close()

	svc := newTestService(t, WithPipeline(pipeline.NewClient(ts.URL, "http://patomove.local/api/v1/pipeline/webhook")))
	genome := mustCreateGenome(t, svc, domain.GenomicData{Base: domain.Base{ID: "g-1"}})

	content := ">contig1\nACGTACGT\n"
	updated, err := svc.UploadGenomeFile(ctx, genome.ID, "Patient42_assembly.fasta", strings.NewReader(content))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if updated.StoragePath != "genomes/g-1_Patient42_assembly.fasta" {
		t.Fatalf("storage path = %s", updated.StoragePath)
	}
	if updated.OriginalFilename != "Patient42_assembly.fasta" {
		t.Fatalf("original filename = %s", updated.OriginalFilename)
	}
	if updated.FileSize != int64(len(content)) {
		t.Fatalf("file size = %d, want %d", updated.FileSize, len(content))
	}
	if updated.FileHash == "" {
		t.Fatalf("file hash not recorded")
	}
	if updated.PipelineJobID != "job-77" || updated.ProcessingStatus != domain.GenomeAnalyzing {
		t.Fatalf("job tracking: id=%s status=%s", updated.PipelineJobID, updated.ProcessingStatus)
	}

	if submitted.SampleID != pipeline.GenomeTarget(genome.ID) {
		t.Fatalf("submitted sample id = %s", submitted.SampleID)
	}
	if submitted.JobType != pipeline.JobValidation {
		t.Fatalf("submitted job type = %s", submitted.JobType)
	}
	if submitted.CallbackURL != "http://patomove.local/api/v1/pipeline/webhook" {
		t.Fatalf("callback url = %s", submitted.CallbackURL)
	}

	info, rc, err := svc.OpenGenomeFile(ctx, updated.StoragePath)
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	defer rc.Close()
	if info.Size != int64(len(content)) {
		t.Fatalf("blob size = %d", info.Size)
	}
}

func TestEndToEndPatient42(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	genome := mustCreateGenome(t, svc, domain.GenomicData{Base: domain.Base{ID: "g-42"}})
	if _, err := svc.UploadGenomeFile(ctx, genome.ID, "Patient42_assembly.fasta", strings.NewReader(">c\nACGT\n")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.Reconcile(ctx, completedCallback(pipeline.GenomeTarget(genome.ID), "job-42")); err != nil {
		t.Fatalf("validation callback: %v", err)
	}

	isolate := mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: "iso-42"}, Label: "Patient42"})

	set, err := svc.GenomeSuggestions(ctx, isolate.ID)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(set.Suggestions) == 0 {
		t.Fatalf("expected the uploaded genome to be suggested")
	}
	top := set.Suggestions[0]
	if top.GenomeID != genome.ID || top.Confidence < ConfidenceFilenameContains {
		t.Fatalf("top suggestion = %s at %v, want %s at >= %v", top.GenomeID, top.Confidence, genome.ID, ConfidenceFilenameContains)
	}

	if _, _, err := svc.LinkGenome(ctx, isolate.ID, genome.ID, domain.LinkManualSuggestion); err != nil {
		t.Fatalf("link: %v", err)
	}

	other := mustCreateIsolate(t, svc, domain.Isolate{Base: domain.Base{ID: "iso-43"}, Label: "Patient42"})
	after, err := svc.GenomeSuggestions(ctx, other.ID)
	if err != nil {
		t.Fatalf("post-link suggestions: %v", err)
	}
	for _, sug := range after.Suggestions {
		if sug.GenomeID == genome.ID {
			t.Fatalf("linked genome resurfaced as a suggestion")
		}
	}
	if after.TotalUnlinkedGenomes != 0 {
		t.Fatalf("totalUnlinkedGenomes = %d, want 0", after.TotalUnlinkedGenomes)
	}
}
