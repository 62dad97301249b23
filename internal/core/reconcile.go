package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/nalarbp/patomove/internal/pipeline"
	"github.com/nalarbp/patomove/pkg/domain"
)

// Reconcile merges a terminal pipeline callback into the targeted record.
// Targets with the genome-job prefix resolve to a GenomicData record by id;
// all others resolve to an Isolate by exact label. Each callback is applied
// as one atomic transaction, and field updates are last-write-wins on the
// job identifier so retried deliveries converge to the same state.
func (s *Service) Reconcile(ctx context.Context, cb pipeline.Callback) error {
	if cb.JobID == "" || cb.IsolateID == "" {
		return BadRequestError{Message: "callback requires job_id and isolate_id"}
	}
	if cb.Status != pipeline.StatusCompleted && cb.Status != pipeline.StatusFailed {
		return BadRequestError{Message: fmt.Sprintf("unrecognized callback status %q", cb.Status)}
	}

	kind := "isolate"
	if _, isGenome := pipeline.SplitGenomeTarget(cb.IsolateID); isGenome {
		kind = "genome"
	}
	err := s.reconcile(ctx, cb)
	status := cb.Status
	if err != nil {
		status = "error"
	}
	pipelineCallbacks.WithLabelValues(kind, status).Inc()
	return err
}

func (s *Service) reconcile(ctx context.Context, cb pipeline.Callback) error {
	if genomeID, ok := pipeline.SplitGenomeTarget(cb.IsolateID); ok {
		return s.reconcileGenomeJob(ctx, genomeID, cb)
	}
	return s.reconcileIsolateJob(ctx, cb)
}

func (s *Service) reconcileGenomeJob(ctx context.Context, genomeID string, cb pipeline.Callback) error {
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.FindGenome(genomeID); !ok {
			return NotFoundError{Entity: domain.EntityGenome, ID: genomeID}
		}
		_, err := tx.UpdateGenome(genomeID, func(g *domain.GenomicData) error {
			if cb.Status == pipeline.StatusFailed {
				g.ValidationStatus = domain.ValidationInvalid
				g.ProcessingStatus = domain.GenomeFailed
				g.ValidationErrors = failureErrors(cb)
				g.PipelineJobID = cb.JobID
				return nil
			}
			g.ValidationStatus = domain.ValidationValid
			g.ProcessingStatus = domain.GenomeCompleted
			g.ValidationErrors = nil
			applyAnalysisResults(g, cb)
			return nil
		})
		return err
	})
	if err != nil {
		return err
	}
	s.log.Infow("genome validation reconciled", "genome_id", genomeID, "job_id", cb.JobID, "status", cb.Status)
	return nil
}

func (s *Service) reconcileIsolateJob(ctx context.Context, cb pipeline.Callback) error {
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		isolate, ok := tx.Snapshot().FindIsolateByLabel(cb.IsolateID)
		if !ok {
			return NotFoundError{Entity: domain.EntityIsolate, ID: cb.IsolateID}
		}

		if cb.Status == pipeline.StatusFailed {
			note := fmt.Sprintf("Pipeline analysis failed (job %s): %s", cb.JobID, strings.Join(failureErrors(cb), ", "))
			_, err := tx.UpdateIsolate(isolate.ID, func(iso *domain.Isolate) error {
				// Retried deliveries must not stack duplicate notes.
				if !strings.Contains(iso.Notes, note) {
					iso.Notes = strings.TrimSpace(iso.Notes + "\n" + note)
				}
				return nil
			})
			return err
		}

		if isolate.GenomeID != nil {
			if _, err := tx.UpdateGenome(*isolate.GenomeID, func(g *domain.GenomicData) error {
				g.ProcessingStatus = domain.GenomeCompleted
				applyAnalysisResults(g, cb)
				return nil
			}); err != nil {
				return err
			}
		} else {
			// Legacy path: the pipeline analyzed an isolate with no uploaded
			// genome; create a pre-linked record from the results.
			genome := domain.GenomicData{
				Filename:         isolate.Label + "_results",
				OriginalFilename: isolate.Label + "_results.gff",
				ValidationStatus: domain.ValidationValid,
				ProcessingStatus: domain.GenomeCompleted,
				FileHash:         "pipeline_" + cb.JobID,
				UploadedBy:       "pipeline-system",
			}
			if cb.Results.Files != nil {
				genome.StoragePath = cb.Results.Files.GFF
			}
			applyAnalysisResults(&genome, cb)
			now := s.nowFn()
			genome.LinkedAt = &now
			genome.AutoLinked = true
			genome.LinkingMethod = domain.LinkAutoPipeline
			created, err := tx.CreateGenome(genome)
			if err != nil {
				return err
			}
			if _, err := tx.UpdateIsolate(isolate.ID, func(iso *domain.Isolate) error {
				iso.GenomeID = &created.ID
				return nil
			}); err != nil {
				return err
			}
		}

		_, err := tx.UpdateIsolate(isolate.ID, func(iso *domain.Isolate) error {
			iso.ProcessingStatus = domain.IsolateGenomicsCompleted
			return nil
		})
		return err
	})
	if err != nil {
		return err
	}
	s.log.Infow("isolate analysis reconciled", "isolate_label", cb.IsolateID, "job_id", cb.JobID, "status", cb.Status)
	return nil
}

// applyAnalysisResults copies the structured analysis output onto a genome
// record. Every field is overwritten from the payload, never appended, so a
// repeated callback leaves the record unchanged.
func applyAnalysisResults(g *domain.GenomicData, cb pipeline.Callback) {
	results := cb.Results
	if g.SequencingPlatform == "" {
		g.SequencingPlatform = "illumina"
	}
	if stats := results.AnnotationStats; stats != nil {
		contigs := stats.Contigs
		totalLength := stats.GenomeSize
		g.ContigCount = &contigs
		g.TotalLength = &totalLength
		g.N50 = stats.N50
		g.GCContent = stats.GCContent
		g.AssemblyStats = &domain.AssemblyStats{
			TotalGenes: stats.TotalGenes,
			CDS:        stats.CDS,
			RRNA:       stats.RRNA,
			TRNA:       stats.TRNA,
			GenomeSize: stats.GenomeSize,
			Contigs:    stats.Contigs,
			N50:        stats.N50,
			GCContent:  stats.GCContent,
		}
	}
	if mlst := results.MLST; mlst != nil {
		g.MLSTScheme = mlst.Scheme
		g.MLSTType = mlst.SequenceType
		g.MLSTAlleles = mlst.Alleles
	}
	if len(results.ResistanceGenes) > 0 {
		genes := make([]domain.ResistanceGene, 0, len(results.ResistanceGenes))
		for _, rg := range results.ResistanceGenes {
			genes = append(genes, domain.ResistanceGene{
				Gene:     rg.Gene,
				Class:    rg.Class,
				Method:   rg.Method,
				Coverage: rg.Coverage,
				Identity: rg.Identity,
			})
		}
		g.ResistanceGenes = genes
	}
	if files := results.Files; files != nil {
		g.AssemblyPath = files.GFF
		g.AnnotationPath = files.FAA
	}
	g.AnalysisCompleted = true
	g.PipelineJobID = cb.JobID
}

func failureErrors(cb pipeline.Callback) []string {
	if len(cb.Results.Errors) > 0 {
		return cb.Results.Errors
	}
	return []string{"Pipeline analysis failed"}
}
