// Package memory provides the in-memory transactional store the durable
// backends build upon. Transactions run against a copy-on-write snapshot
// under a global lock, so every transaction observes and commits a
// consistent state: a check-then-act sequence inside one transaction cannot
// interleave with another writer.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nalarbp/patomove/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

type memoryState struct {
	organizations map[string]domain.Organization
	patients      map[string]domain.Patient
	environments  map[string]domain.Environment
	phenotypes    map[string]domain.PhenotypeProfile
	isolates      map[string]domain.Isolate
	genomes       map[string]domain.GenomicData
	treatments    map[string]domain.TreatmentOutcome
}

func newMemoryState() memoryState {
	return memoryState{
		organizations: make(map[string]domain.Organization),
		patients:      make(map[string]domain.Patient),
		environments:  make(map[string]domain.Environment),
		phenotypes:    make(map[string]domain.PhenotypeProfile),
		isolates:      make(map[string]domain.Isolate),
		genomes:       make(map[string]domain.GenomicData),
		treatments:    make(map[string]domain.TreatmentOutcome),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.organizations {
		cloned.organizations[k] = v
	}
	for k, v := range s.patients {
		cloned.patients[k] = v
	}
	for k, v := range s.environments {
		cloned.environments[k] = v
	}
	for k, v := range s.phenotypes {
		cloned.phenotypes[k] = clonePhenotype(v)
	}
	for k, v := range s.isolates {
		cloned.isolates[k] = v
	}
	for k, v := range s.genomes {
		cloned.genomes[k] = cloneGenome(v)
	}
	for k, v := range s.treatments {
		cloned.treatments[k] = v
	}
	return cloned
}

func clonePhenotype(p domain.PhenotypeProfile) domain.PhenotypeProfile {
	cp := p
	if p.MICData != nil {
		cp.MICData = make(map[string]string, len(p.MICData))
		for k, v := range p.MICData {
			cp.MICData[k] = v
		}
	}
	return cp
}

func cloneGenome(g domain.GenomicData) domain.GenomicData {
	cp := g
	if g.MLSTAlleles != nil {
		cp.MLSTAlleles = make(map[string]string, len(g.MLSTAlleles))
		for k, v := range g.MLSTAlleles {
			cp.MLSTAlleles[k] = v
		}
	}
	cp.ResistanceGenes = append([]domain.ResistanceGene(nil), g.ResistanceGenes...)
	cp.ValidationErrors = append([]string(nil), g.ValidationErrors...)
	if g.AssemblyStats != nil {
		stats := *g.AssemblyStats
		cp.AssemblyStats = &stats
	}
	return cp
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *domain.RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the transaction clock, for tests.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		s.nowFn = fn
	}
}

func newID() string {
	return uuid.NewString()
}

// transaction is a mutation set applied to a snapshot of the store state.
type transaction struct {
	state   memoryState
	changes []domain.Change
	now     time.Time
}

var _ domain.Transaction = (*transaction)(nil)

// view exposes a read-only snapshot of transactional state.
type view struct {
	state *memoryState
}

var _ domain.TransactionView = view{}

// RunInTransaction executes fn within a transactional copy of the store state.
// Registered rules are evaluated over the resulting change set before commit;
// blocking violations abort the transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: &tx.state}, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(view{state: &snapshot})
}

// GetIsolate retrieves an isolate by ID.
func (s *Store) GetIsolate(id string) (domain.Isolate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	iso, ok := s.state.isolates[id]
	return iso, ok
}

// GetGenome retrieves a genome by ID.
func (s *Store) GetGenome(id string) (domain.GenomicData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.state.genomes[id]
	if !ok {
		return domain.GenomicData{}, false
	}
	return cloneGenome(g), true
}

// ListIsolates returns all isolates.
func (s *Store) ListIsolates() []domain.Isolate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Isolate, 0, len(s.state.isolates))
	for _, iso := range s.state.isolates {
		out = append(out, iso)
	}
	return out
}

// ListGenomes returns all genome records.
func (s *Store) ListGenomes() []domain.GenomicData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.GenomicData, 0, len(s.state.genomes))
	for _, g := range s.state.genomes {
		out = append(out, cloneGenome(g))
	}
	return out
}

// ListOrganizations returns all organizations.
func (s *Store) ListOrganizations() []domain.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Organization, 0, len(s.state.organizations))
	for _, o := range s.state.organizations {
		out = append(out, o)
	}
	return out
}

// ListPatients returns all patients.
func (s *Store) ListPatients() []domain.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Patient, 0, len(s.state.patients))
	for _, p := range s.state.patients {
		out = append(out, p)
	}
	return out
}

// ListEnvironments returns all environments.
func (s *Store) ListEnvironments() []domain.Environment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Environment, 0, len(s.state.environments))
	for _, e := range s.state.environments {
		out = append(out, e)
	}
	return out
}

// ListTreatmentOutcomes returns all treatment outcomes.
func (s *Store) ListTreatmentOutcomes() []domain.TreatmentOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TreatmentOutcome, 0, len(s.state.treatments))
	for _, t := range s.state.treatments {
		out = append(out, t)
	}
	return out
}
