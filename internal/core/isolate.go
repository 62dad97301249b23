package core

import (
	"context"
	"sort"

	"github.com/nalarbp/patomove/pkg/domain"
)

// IsolateFilter narrows isolate listings.
type IsolateFilter struct {
	OrgID            string
	CollectionSource string
}

// IsolateFilterOptions lists the distinct values available for building
// filter dropdowns over the current isolate set.
type IsolateFilterOptions struct {
	Species []string `json:"species"`
	Sources []string `json:"sources"`
	Sites   []string `json:"sites"`
}

// CreateIsolate persists a new isolate record.
func (s *Service) CreateIsolate(ctx context.Context, isolate domain.Isolate) (domain.Isolate, domain.Result, error) {
	var created domain.Isolate
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if isolate.Label == "" {
			return BadRequestError{Message: "isolate label required"}
		}
		if isolate.ProcessingStatus == "" {
			isolate.ProcessingStatus = domain.IsolateReceived
		}
		// GenomeID is established only by the link transaction.
		isolate.GenomeID = nil
		var err error
		created, err = tx.CreateIsolate(isolate)
		return err
	})
	return created, res, err
}

// GetIsolate fetches one isolate.
func (s *Service) GetIsolate(ctx context.Context, id string) (domain.Isolate, error) {
	isolate, ok := s.store.GetIsolate(id)
	if !ok {
		return domain.Isolate{}, NotFoundError{Entity: domain.EntityIsolate, ID: id}
	}
	return isolate, nil
}

// UpdateIsolate applies mutator to an isolate. The primary genome reference
// is preserved across the mutation; LinkGenome is the only path allowed to
// set it.
func (s *Service) UpdateIsolate(ctx context.Context, id string, mutator func(*domain.Isolate) error) (domain.Isolate, domain.Result, error) {
	var updated domain.Isolate
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.FindIsolate(id); !ok {
			return NotFoundError{Entity: domain.EntityIsolate, ID: id}
		}
		var err error
		updated, err = tx.UpdateIsolate(id, func(iso *domain.Isolate) error {
			genomeID := iso.GenomeID
			if err := mutator(iso); err != nil {
				return err
			}
			iso.GenomeID = genomeID
			return nil
		})
		return err
	})
	return updated, res, err
}

// DeleteIsolate removes an isolate after cascading over its dependents: the
// primary genome record (if any) and all treatment outcomes referencing it.
func (s *Service) DeleteIsolate(ctx context.Context, id string) (domain.Result, error) {
	return s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		isolate, ok := tx.FindIsolate(id)
		if !ok {
			return NotFoundError{Entity: domain.EntityIsolate, ID: id}
		}
		for _, outcome := range tx.Snapshot().ListTreatmentOutcomes() {
			if outcome.IsolateID == id {
				if err := tx.DeleteTreatmentOutcome(outcome.ID); err != nil {
					return err
				}
			}
		}
		if isolate.GenomeID != nil {
			if _, ok := tx.FindGenome(*isolate.GenomeID); ok {
				if err := tx.DeleteGenome(*isolate.GenomeID); err != nil {
					return err
				}
			}
		}
		return tx.DeleteIsolate(id)
	})
}

// ListIsolates returns isolates matching the filter, newest collection first.
func (s *Service) ListIsolates(ctx context.Context, filter IsolateFilter) []domain.Isolate {
	isolates := s.store.ListIsolates()
	filtered := make([]domain.Isolate, 0, len(isolates))
	for _, iso := range isolates {
		if filter.OrgID != "" && (iso.OrgID == nil || *iso.OrgID != filter.OrgID) {
			continue
		}
		if filter.CollectionSource != "" && iso.CollectionSource != filter.CollectionSource {
			continue
		}
		filtered = append(filtered, iso)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].CollectionDate.Equal(filtered[j].CollectionDate) {
			return filtered[i].CollectionDate.After(filtered[j].CollectionDate)
		}
		return filtered[i].ID < filtered[j].ID
	})
	return filtered
}

// IsolateFilters collects the distinct species, collection sources, and
// collection sites present in the current data set, sorted alphabetically.
func (s *Service) IsolateFilters(ctx context.Context) (IsolateFilterOptions, error) {
	var opts IsolateFilterOptions
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		sources := make(map[string]struct{})
		sites := make(map[string]struct{})
		species := make(map[string]struct{})
		for _, iso := range view.ListIsolates() {
			if iso.CollectionSource != "" {
				sources[iso.CollectionSource] = struct{}{}
			}
			if iso.CollectionSite != "" {
				sites[iso.CollectionSite] = struct{}{}
			}
			if iso.PhenotypeID != nil {
				if profile, ok := view.FindPhenotypeProfile(*iso.PhenotypeID); ok && profile.Species != "" {
					species[profile.Species] = struct{}{}
				}
			}
		}
		opts.Species = sortedKeys(species)
		opts.Sources = sortedKeys(sources)
		opts.Sites = sortedKeys(sites)
		return nil
	})
	return opts, err
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
