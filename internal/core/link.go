package core

import (
	"context"
	"fmt"

	"github.com/nalarbp/patomove/pkg/domain"
)

// LinkResult carries both records updated by a successful link.
type LinkResult struct {
	Isolate domain.Isolate     `json:"isolate"`
	Genome  domain.GenomicData `json:"genome"`
}

// LinkGenome establishes the primary link between an isolate and a genome.
// Precondition checks and both record mutations run inside one serialized
// store transaction, so at most one concurrent attempt per genome can
// succeed; losers observe ConflictError. This is the only write path allowed
// to set Isolate.GenomeID and the genome's linkage provenance.
func (s *Service) LinkGenome(ctx context.Context, isolateID, genomeID string, method domain.LinkingMethod) (LinkResult, domain.Result, error) {
	if method == "" {
		return LinkResult{}, domain.Result{}, BadRequestError{Message: "linking method required"}
	}
	var result LinkResult
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.FindIsolate(isolateID); !ok {
			return NotFoundError{Entity: domain.EntityIsolate, ID: isolateID}
		}
		if _, ok := tx.FindGenome(genomeID); !ok {
			return NotFoundError{Entity: domain.EntityGenome, ID: genomeID}
		}
		if holder, linked := linkedGenomeIDs(tx.Snapshot())[genomeID]; linked {
			return ConflictError{Message: fmt.Sprintf("genome %s is already linked to isolate %s", genomeID, holder)}
		}

		now := s.nowFn()
		isolate, err := tx.UpdateIsolate(isolateID, func(iso *domain.Isolate) error {
			iso.GenomeID = &genomeID
			return nil
		})
		if err != nil {
			return err
		}
		genome, err := tx.UpdateGenome(genomeID, func(g *domain.GenomicData) error {
			g.LinkedAt = &now
			g.AutoLinked = method.IsAutomatic()
			g.LinkingMethod = method
			return nil
		})
		if err != nil {
			return err
		}
		result = LinkResult{Isolate: isolate, Genome: genome}
		return nil
	})
	outcome := "linked"
	switch {
	case err == nil:
	case IsNotFound(err):
		outcome = "not_found"
	case IsConflict(err):
		outcome = "conflict"
	default:
		outcome = "error"
	}
	linkAttempts.WithLabelValues(outcome).Inc()
	if err != nil {
		return LinkResult{}, res, err
	}
	s.log.Infow("genome linked",
		"isolate_id", isolateID,
		"genome_id", genomeID,
		"method", string(method),
		"auto", method.IsAutomatic(),
	)
	return result, res, nil
}
