// Package pipeline defines the wire types and HTTP client for the external
// bioinformatics analysis pipeline. The pipeline owns job state; patomove
// submits jobs and consumes terminal-status callbacks.
package pipeline

import "strings"

// GenomeTargetPrefix marks a callback target as a genome validation job.
// Targets without the prefix are isolate labels.
const GenomeTargetPrefix = "genome_"

// GenomeTarget builds the callback target identifier for a genome job.
func GenomeTarget(genomeID string) string {
	return GenomeTargetPrefix + genomeID
}

// SplitGenomeTarget returns the genome id and true when target carries the
// genome-job prefix.
func SplitGenomeTarget(target string) (string, bool) {
	if id := strings.TrimPrefix(target, GenomeTargetPrefix); id != target && id != "" {
		return id, true
	}
	return "", false
}

// Terminal callback statuses. The pipeline reports no intermediate states.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// JobRequest is the submission payload for a pipeline job.
type JobRequest struct {
	SampleID    string `json:"sample_id"`
	InputPath   string `json:"input_path"`
	JobType     string `json:"job_type"`
	CallbackURL string `json:"callback_url"`
}

// Job types accepted by the pipeline.
const (
	JobValidation = "validation"
	JobAnalysis   = "analysis"
)

// JobResponse is the pipeline's acknowledgement of a submitted job.
type JobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status,omitempty"`
}

// Callback is the payload the pipeline POSTs to the webhook when a job
// reaches a terminal state. IsolateID is the job target: either an isolate
// label or a genome target (see GenomeTargetPrefix).
type Callback struct {
	Event     string            `json:"event"`
	JobID     string            `json:"job_id"`
	IsolateID string            `json:"isolate_id"`
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Results   CallbackResults   `json:"results"`
}

// CallbackResults carries the structured analysis output of a completed job,
// or the error list of a failed one. All sections are optional.
type CallbackResults struct {
	ResistanceGenes []ResistanceGeneResult `json:"resistance_genes,omitempty"`
	MLST            *MLSTResult            `json:"mlst_result,omitempty"`
	AnnotationStats *AnnotationStats       `json:"annotation_stats,omitempty"`
	Files           *ResultFiles           `json:"files,omitempty"`
	Errors          []string               `json:"errors,omitempty"`
}

// ResistanceGeneResult is one detected resistance determinant.
type ResistanceGeneResult struct {
	Gene     string  `json:"gene"`
	Class    string  `json:"class"`
	Method   string  `json:"method"`
	Coverage float64 `json:"coverage"`
	Identity float64 `json:"identity"`
}

// MLSTResult is the multi-locus sequence typing outcome.
type MLSTResult struct {
	Scheme       string            `json:"scheme"`
	SequenceType string            `json:"sequence_type"`
	Alleles      map[string]string `json:"alleles,omitempty"`
}

// AnnotationStats summarises assembly and annotation figures.
type AnnotationStats struct {
	TotalGenes int      `json:"total_genes"`
	CDS        int      `json:"cds"`
	RRNA       int      `json:"rrna"`
	TRNA       int      `json:"trna"`
	GenomeSize int64    `json:"genome_size"`
	Contigs    int      `json:"contigs"`
	N50        *int64   `json:"n50,omitempty"`
	GCContent  *float64 `json:"gc_content,omitempty"`
}

// ResultFiles lists paths to result artifacts produced by the pipeline.
type ResultFiles struct {
	GFF              string `json:"gff,omitempty"`
	FAA              string `json:"faa,omitempty"`
	ResistanceReport string `json:"resistance_report,omitempty"`
}
