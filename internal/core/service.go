// Package core implements patomove's domain service: CRUD over the tracked
// entities plus the genome-to-isolate matching, linking, and pipeline
// reconciliation subsystem.
package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nalarbp/patomove/internal/blob"
	"github.com/nalarbp/patomove/internal/pipeline"
	"github.com/nalarbp/patomove/pkg/domain"
)

// Service exposes transactional operations for the patomove schema. All
// mutations run through the store's serialized transactions so the rules
// engine sees every change set.
type Service struct {
	store    domain.PersistentStore
	blobs    blob.Store
	pipeline *pipeline.Client
	log      *zap.SugaredLogger
	nowFn    func() time.Time
}

// Option customises service construction.
type Option func(*Service)

// WithBlobStore attaches the genome file store.
func WithBlobStore(b blob.Store) Option {
	return func(s *Service) { s.blobs = b }
}

// WithPipeline attaches the external pipeline client. Without one, uploads
// are stored but no validation job is submitted.
func WithPipeline(c *pipeline.Client) Option {
	return func(s *Service) { s.pipeline = c }
}

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithNowFunc overrides the service clock, for tests.
func WithNowFunc(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.nowFn = fn
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   zap.NewNop().Sugar(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying persistent store.
func (s *Service) Store() domain.PersistentStore { return s.store }

// DefaultRulesEngine returns an engine with patomove's standard rules
// registered.
func DefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewPrimaryLinkRule())
	engine.Register(NewSourceExclusivityRule())
	return engine
}

// CreateOrganization persists a new organization.
func (s *Service) CreateOrganization(ctx context.Context, org domain.Organization) (domain.Organization, domain.Result, error) {
	var created domain.Organization
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateOrganization(org)
		return err
	})
	return created, res, err
}

// UpdateOrganization applies mutator to the organization with the given id.
func (s *Service) UpdateOrganization(ctx context.Context, id string, mutator func(*domain.Organization) error) (domain.Organization, domain.Result, error) {
	var updated domain.Organization
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.Snapshot().FindOrganization(id); !ok {
			return NotFoundError{Entity: domain.EntityOrganization, ID: id}
		}
		var err error
		updated, err = tx.UpdateOrganization(id, mutator)
		return err
	})
	return updated, res, err
}

// ListOrganizations returns all organizations.
func (s *Service) ListOrganizations(ctx context.Context) []domain.Organization {
	return s.store.ListOrganizations()
}

// GetOrganization fetches one organization.
func (s *Service) GetOrganization(ctx context.Context, id string) (domain.Organization, error) {
	var org domain.Organization
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		found, ok := view.FindOrganization(id)
		if !ok {
			return NotFoundError{Entity: domain.EntityOrganization, ID: id}
		}
		org = found
		return nil
	})
	return org, err
}

// CreatePatient persists a new patient.
func (s *Service) CreatePatient(ctx context.Context, patient domain.Patient) (domain.Patient, domain.Result, error) {
	var created domain.Patient
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreatePatient(patient)
		return err
	})
	return created, res, err
}

// ListPatients returns patients, optionally filtered by owning organization.
func (s *Service) ListPatients(ctx context.Context, orgID string) []domain.Patient {
	patients := s.store.ListPatients()
	if orgID == "" {
		return patients
	}
	filtered := patients[:0]
	for _, p := range patients {
		if p.OrgID != nil && *p.OrgID == orgID {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// CreateEnvironment persists a new environmental sampling site.
func (s *Service) CreateEnvironment(ctx context.Context, env domain.Environment) (domain.Environment, domain.Result, error) {
	var created domain.Environment
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateEnvironment(env)
		return err
	})
	return created, res, err
}

// ListEnvironments returns all environments.
func (s *Service) ListEnvironments(ctx context.Context) []domain.Environment {
	return s.store.ListEnvironments()
}

// CreatePhenotypeProfile persists conventional lab phenotyping results.
func (s *Service) CreatePhenotypeProfile(ctx context.Context, profile domain.PhenotypeProfile) (domain.PhenotypeProfile, domain.Result, error) {
	var created domain.PhenotypeProfile
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreatePhenotypeProfile(profile)
		return err
	})
	return created, res, err
}

// CreateTreatmentOutcome records the clinical outcome for an isolate.
func (s *Service) CreateTreatmentOutcome(ctx context.Context, outcome domain.TreatmentOutcome) (domain.TreatmentOutcome, domain.Result, error) {
	var created domain.TreatmentOutcome
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.FindIsolate(outcome.IsolateID); !ok {
			return NotFoundError{Entity: domain.EntityIsolate, ID: outcome.IsolateID}
		}
		var err error
		created, err = tx.CreateTreatmentOutcome(outcome)
		return err
	})
	return created, res, err
}

// ListTreatmentOutcomes returns all treatment outcomes.
func (s *Service) ListTreatmentOutcomes(ctx context.Context) []domain.TreatmentOutcome {
	return s.store.ListTreatmentOutcomes()
}
