package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSubmitJob(t *testing.T) {
	var got JobRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(JobResponse{JobID: "job-42", Status: "queued"})
	}))
	defer ts.Close()

	client := NewClient(ts.URL+"/", "https://patomove.example/api/v1/pipeline/webhook")
	resp, err := client.SubmitJob(context.Background(), JobRequest{
		SampleID:  GenomeTarget("g-1"),
		InputPath: "genomes/g-1_sample.fasta",
		JobType:   JobValidation,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.JobID != "job-42" {
		t.Fatalf("job id = %q, want job-42", resp.JobID)
	}
	if got.SampleID != "genome_g-1" || got.JobType != JobValidation {
		t.Fatalf("unexpected submitted request: %+v", got)
	}
	if got.CallbackURL != "https://patomove.example/api/v1/pipeline/webhook" {
		t.Fatalf("callback url not filled: %q", got.CallbackURL)
	}
}

func TestSubmitJobNonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "")
	_, err := client.SubmitJob(context.Background(), JobRequest{SampleID: "genome_g-1"})
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestSplitGenomeTarget(t *testing.T) {
	if id, ok := SplitGenomeTarget("genome_abc123"); !ok || id != "abc123" {
		t.Fatalf("got %q %v", id, ok)
	}
	if _, ok := SplitGenomeTarget("ISO-2024-001"); ok {
		t.Fatalf("isolate label treated as genome target")
	}
	if _, ok := SplitGenomeTarget("genome_"); ok {
		t.Fatalf("empty genome id accepted")
	}
}
