// Package domain defines the persistent entities, value types, and rule
// evaluation primitives used by patomove.
package domain

import (
	"fmt"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityOrganization identifies a submitting or owning organization record.
	EntityOrganization EntityType = "organization"
	// EntityPatient identifies a patient record.
	EntityPatient EntityType = "patient"
	// EntityEnvironment identifies an environmental sampling site record.
	EntityEnvironment EntityType = "environment"
	// EntityPhenotype identifies a phenotype profile record.
	EntityPhenotype EntityType = "phenotype_profile"
	// EntityIsolate identifies a biological isolate record.
	EntityIsolate EntityType = "isolate"
	// EntityGenome identifies a genomic data record.
	EntityGenome EntityType = "genomic_data"
	// EntityTreatmentOutcome identifies a treatment outcome record.
	EntityTreatmentOutcome EntityType = "treatment_outcome"
)

// ValidationStatus is the outcome of format and quality checks performed by
// the external pipeline on an uploaded genome file.
type ValidationStatus string

// Canonical genome validation statuses.
const (
	ValidationPending ValidationStatus = "pending"
	ValidationValid   ValidationStatus = "valid"
	ValidationInvalid ValidationStatus = "invalid"
)

// GenomeProcessingStatus tracks a genome file through upload and analysis.
type GenomeProcessingStatus string

// Canonical genome processing statuses.
const (
	GenomeUploaded  GenomeProcessingStatus = "uploaded"
	GenomeValidated GenomeProcessingStatus = "validated"
	GenomeAnalyzing GenomeProcessingStatus = "analyzing"
	GenomeCompleted GenomeProcessingStatus = "completed"
	GenomeFailed    GenomeProcessingStatus = "failed"
)

// IsolateStatus tracks an isolate through laboratory processing.
type IsolateStatus string

// Canonical isolate processing statuses. IsolateGenomicsCompleted is set by
// the pipeline reconciler once analysis results have been merged.
const (
	IsolateReceived          IsolateStatus = "received"
	IsolateProcessing        IsolateStatus = "processing"
	IsolateGenomicsCompleted IsolateStatus = "genomics completed"
)

// LinkingMethod records how a genome's primary isolate link was established.
type LinkingMethod string

// Recognised linking methods. Methods with the "auto_" prefix mark links made
// without a human decision.
const (
	LinkManualSearch     LinkingMethod = "manual_search"
	LinkManualSuggestion LinkingMethod = "manual_suggestion"
	LinkAutoExact        LinkingMethod = "auto_exact"
	LinkAutoSuggestion   LinkingMethod = "auto_suggestion"
	// LinkAutoPipeline marks genomes created pre-linked by the pipeline
	// reconciler's legacy result-ingestion path.
	LinkAutoPipeline LinkingMethod = "auto_pipeline"
)

// IsAutomatic reports whether the method denotes an automatic link.
func (m LinkingMethod) IsAutomatic() bool {
	return len(m) > 5 && m[:5] == "auto_"
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Organization represents a hospital, laboratory, or agency that submits or
// owns isolates.
type Organization struct {
	Base
	Name         string `json:"name"`
	Type         string `json:"type"`
	Code         string `json:"code"`
	IsInternal   bool   `json:"is_internal"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Address      string `json:"address,omitempty"`
	AccessLevel  string `json:"access_level"`
}

// Patient represents the clinical source of one or more isolates.
type Patient struct {
	Base
	DateOfBirth   *time.Time `json:"date_of_birth"`
	Sex           string     `json:"sex"`
	ClinicalNotes string     `json:"clinical_notes,omitempty"`
	OrgID         *string    `json:"org_id"`
}

// Environment represents an environmental sampling site.
type Environment struct {
	Base
	SiteName     string  `json:"site_name"`
	FacilityType string  `json:"facility_type"`
	OrgID        *string `json:"org_id"`
}

// PhenotypeProfile captures species identification and susceptibility data
// obtained by conventional (non-genomic) lab methods.
type PhenotypeProfile struct {
	Base
	Species    string            `json:"species"`
	Method     string            `json:"method"`
	TestDate   *time.Time        `json:"test_date"`
	Confidence float64           `json:"confidence"`
	MICData    map[string]string `json:"mic_data,omitempty"`
}

// Isolate represents a tracked biological sample awaiting or undergoing
// genomic processing. GenomeID, when set, is the isolate's primary genome;
// the LinkGenome transaction is the only write path allowed to set it.
type Isolate struct {
	Base
	Label            string        `json:"label"`
	CollectionSource string        `json:"collection_source"`
	CollectionSite   string        `json:"collection_site"`
	CollectionDate   time.Time     `json:"collection_date"`
	OrgID            *string       `json:"org_id"`
	PatientID        *string       `json:"patient_id"`
	EnvironmentID    *string       `json:"environment_id"`
	PhenotypeID      *string       `json:"phenotype_id"`
	Priority         string        `json:"priority"`
	ProcessingStatus IsolateStatus `json:"processing_status"`
	GenomeID         *string       `json:"genome_id"`
	Notes            string        `json:"notes,omitempty"`
}

// ResistanceGene is one detected resistance determinant reported by the
// analysis pipeline.
type ResistanceGene struct {
	Gene     string  `json:"gene"`
	Class    string  `json:"class"`
	Method   string  `json:"method"`
	Coverage float64 `json:"coverage"`
	Identity float64 `json:"identity"`
}

// AssemblyStats holds annotation and assembly summary figures from the
// pipeline. Pointer fields are absent when the pipeline did not report them.
type AssemblyStats struct {
	TotalGenes int      `json:"total_genes"`
	CDS        int      `json:"cds"`
	RRNA       int      `json:"rrna"`
	TRNA       int      `json:"trna"`
	GenomeSize int64    `json:"genome_size"`
	Contigs    int      `json:"contigs"`
	N50        *int64   `json:"n50,omitempty"`
	GCContent  *float64 `json:"gc_content,omitempty"`
}

// GenomicData is the metadata and analysis-result record for one uploaded
// genome assembly or read file.
type GenomicData struct {
	Base
	Filename         string                 `json:"filename"`
	OriginalFilename string                 `json:"original_filename"`
	StoragePath      string                 `json:"storage_path"`
	FileSize         int64                  `json:"file_size"`
	FileHash         string                 `json:"file_hash"`
	ValidationStatus ValidationStatus       `json:"validation_status"`
	ProcessingStatus GenomeProcessingStatus `json:"processing_status"`

	SequencingPlatform string `json:"sequencing_platform,omitempty"`

	// Assembly statistics reported by the validation pipeline.
	ContigCount *int     `json:"contig_count"`
	TotalLength *int64   `json:"total_length"`
	N50         *int64   `json:"n50"`
	GCContent   *float64 `json:"gc_content"`

	// Structured analysis results.
	AssemblyStats   *AssemblyStats    `json:"assembly_stats,omitempty"`
	MLSTScheme      string            `json:"mlst_scheme,omitempty"`
	MLSTType        string            `json:"mlst_type,omitempty"`
	MLSTAlleles     map[string]string `json:"mlst_alleles,omitempty"`
	ResistanceGenes []ResistanceGene  `json:"resistance_genes,omitempty"`

	// Result file locations reported by the pipeline.
	AssemblyPath   string `json:"assembly_path,omitempty"`
	AnnotationPath string `json:"annotation_path,omitempty"`

	// Linkage provenance, written only by the link transaction.
	LinkedAt      *time.Time    `json:"linked_at"`
	AutoLinked    bool          `json:"auto_linked"`
	LinkingMethod LinkingMethod `json:"linking_method,omitempty"`

	AnalysisCompleted bool     `json:"analysis_completed"`
	PipelineJobID     string   `json:"pipeline_job_id,omitempty"`
	ValidationErrors  []string `json:"validation_errors,omitempty"`

	UploadDate time.Time `json:"upload_date"`
	UploadedBy string    `json:"uploaded_by,omitempty"`
}

// TreatmentOutcome records the clinical outcome of treating the infection an
// isolate was cultured from. Kept minimal; isolate deletion cascades over it.
type TreatmentOutcome struct {
	Base
	IsolateID  string    `json:"isolate_id"`
	Drug       string    `json:"drug"`
	Outcome    string    `json:"outcome"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Action enumerates mutation kinds captured in Change records.
type Action string

// Change actions recorded by transactions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change captures one mutation applied within a transaction, for rule
// evaluation and auditing.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Violation describes a single rule violation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates rule violations produced while evaluating a transaction.
type Result struct {
	Violations []Violation
}

// Merge appends the other result's violations.
func (r *Result) Merge(other Result) {
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return fmt.Sprintf("transaction blocked by %d rule violation(s)", len(e.Result.Violations))
}
