package core

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/nalarbp/patomove/internal/blob"
	"github.com/nalarbp/patomove/internal/pipeline"
	"github.com/nalarbp/patomove/pkg/domain"
)

const genomeKeyPrefix = "genomes/"

// GenomeFilter narrows genome listings.
type GenomeFilter struct {
	Unlinked         bool
	ValidationStatus domain.ValidationStatus
}

// CreateGenome persists a new genome metadata record ahead of file upload.
func (s *Service) CreateGenome(ctx context.Context, genome domain.GenomicData) (domain.GenomicData, domain.Result, error) {
	var created domain.GenomicData
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if genome.ValidationStatus == "" {
			genome.ValidationStatus = domain.ValidationPending
		}
		if genome.ProcessingStatus == "" {
			genome.ProcessingStatus = domain.GenomeUploaded
		}
		var err error
		created, err = tx.CreateGenome(genome)
		return err
	})
	return created, res, err
}

// GetGenome fetches one genome record.
func (s *Service) GetGenome(ctx context.Context, id string) (domain.GenomicData, error) {
	genome, ok := s.store.GetGenome(id)
	if !ok {
		return domain.GenomicData{}, NotFoundError{Entity: domain.EntityGenome, ID: id}
	}
	return genome, nil
}

// UpdateGenome applies mutator to a genome record. Linkage provenance fields
// are preserved; LinkGenome and the reconciler own them.
func (s *Service) UpdateGenome(ctx context.Context, id string, mutator func(*domain.GenomicData) error) (domain.GenomicData, domain.Result, error) {
	var updated domain.GenomicData
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.FindGenome(id); !ok {
			return NotFoundError{Entity: domain.EntityGenome, ID: id}
		}
		var err error
		updated, err = tx.UpdateGenome(id, func(g *domain.GenomicData) error {
			linkedAt, autoLinked, method := g.LinkedAt, g.AutoLinked, g.LinkingMethod
			if err := mutator(g); err != nil {
				return err
			}
			g.LinkedAt, g.AutoLinked, g.LinkingMethod = linkedAt, autoLinked, method
			return nil
		})
		return err
	})
	return updated, res, err
}

// DeleteGenome removes an unlinked genome record and its stored file.
// Deletion is refused while any isolate holds the genome as primary; the
// error names the referencing isolates.
func (s *Service) DeleteGenome(ctx context.Context, id string) (domain.Result, error) {
	var storagePath string
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		genome, ok := tx.FindGenome(id)
		if !ok {
			return NotFoundError{Entity: domain.EntityGenome, ID: id}
		}
		var labels []string
		for _, iso := range tx.Snapshot().ListIsolates() {
			if iso.GenomeID != nil && *iso.GenomeID == id {
				labels = append(labels, iso.Label)
			}
		}
		if len(labels) > 0 {
			sort.Strings(labels)
			return ConflictError{Message: fmt.Sprintf("genome is linked to isolate(s) %s; unlink before deleting", strings.Join(labels, ", "))}
		}
		storagePath = genome.StoragePath
		return tx.DeleteGenome(id)
	})
	if err != nil {
		return res, err
	}
	if storagePath != "" && s.blobs != nil {
		if _, delErr := s.blobs.Delete(ctx, storagePath); delErr != nil {
			s.log.Warnw("failed to delete genome blob", "key", storagePath, "error", delErr)
		}
	}
	return res, nil
}

// ListGenomes returns genome records matching the filter, newest upload first.
func (s *Service) ListGenomes(ctx context.Context, filter GenomeFilter) []domain.GenomicData {
	var genomes []domain.GenomicData
	_ = s.store.View(ctx, func(view domain.TransactionView) error {
		linked := linkedGenomeIDs(view)
		for _, g := range view.ListGenomes() {
			if filter.Unlinked {
				if _, isLinked := linked[g.ID]; isLinked {
					continue
				}
			}
			if filter.ValidationStatus != "" && g.ValidationStatus != filter.ValidationStatus {
				continue
			}
			genomes = append(genomes, g)
		}
		return nil
	})
	sort.Slice(genomes, func(i, j int) bool {
		if !genomes[i].UploadDate.Equal(genomes[j].UploadDate) {
			return genomes[i].UploadDate.After(genomes[j].UploadDate)
		}
		return genomes[i].ID < genomes[j].ID
	})
	return genomes
}

// UploadGenomeFile streams a genome file into the blob store under
// genomes/<genomeID>_<name>, records size and content hash on the genome,
// and submits a validation job to the pipeline.
func (s *Service) UploadGenomeFile(ctx context.Context, genomeID, filename string, r io.Reader) (domain.GenomicData, error) {
	if s.blobs == nil {
		return domain.GenomicData{}, fmt.Errorf("no blob store configured")
	}
	if filename == "" {
		return domain.GenomicData{}, BadRequestError{Message: "filename required"}
	}
	if _, ok := s.store.GetGenome(genomeID); !ok {
		return domain.GenomicData{}, NotFoundError{Entity: domain.EntityGenome, ID: genomeID}
	}

	name := path.Base(filename)
	key := genomeKeyPrefix + genomeID + "_" + name
	info, err := s.blobs.Put(ctx, key, r, blob.PutOptions{ContentType: contentTypeFor(name)})
	if err != nil {
		return domain.GenomicData{}, fmt.Errorf("store genome file: %w", err)
	}

	var jobID string
	if s.pipeline != nil {
		resp, submitErr := s.pipeline.SubmitJob(ctx, pipeline.JobRequest{
			SampleID:  pipeline.GenomeTarget(genomeID),
			InputPath: key,
			JobType:   pipeline.JobValidation,
		})
		if submitErr != nil {
			s.log.Warnw("pipeline submission failed", "genome_id", genomeID, "error", submitErr)
		} else {
			jobID = resp.JobID
		}
	}

	var updated domain.GenomicData
	_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateGenome(genomeID, func(g *domain.GenomicData) error {
			g.Filename = genomeID + "_" + name
			g.OriginalFilename = name
			g.StoragePath = key
			g.FileSize = info.Size
			g.FileHash = info.ETag
			g.ValidationStatus = domain.ValidationPending
			g.ProcessingStatus = domain.GenomeUploaded
			if jobID != "" {
				g.PipelineJobID = jobID
				g.ProcessingStatus = domain.GenomeAnalyzing
			}
			return nil
		})
		return txErr
	})
	if err != nil {
		return domain.GenomicData{}, err
	}
	return updated, nil
}

// OpenGenomeFile opens a stored blob for download.
func (s *Service) OpenGenomeFile(ctx context.Context, key string) (blob.Info, io.ReadCloser, error) {
	if s.blobs == nil {
		return blob.Info{}, nil, fmt.Errorf("no blob store configured")
	}
	info, rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return blob.Info{}, nil, NotFoundError{Entity: "file", ID: key}
	}
	return info, rc, nil
}

func contentTypeFor(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return "application/gzip"
	case genomeExtension.MatchString(lower):
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// linkedGenomeIDs returns the set of genome ids currently held as primary by
// some isolate.
func linkedGenomeIDs(view domain.TransactionView) map[string]string {
	linked := make(map[string]string)
	for _, iso := range view.ListIsolates() {
		if iso.GenomeID != nil {
			linked[*iso.GenomeID] = iso.ID
		}
	}
	return linked
}
