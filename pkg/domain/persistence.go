package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateOrganization(Organization) (Organization, error)
	UpdateOrganization(id string, mutator func(*Organization) error) (Organization, error)
	DeleteOrganization(id string) error
	CreatePatient(Patient) (Patient, error)
	UpdatePatient(id string, mutator func(*Patient) error) (Patient, error)
	DeletePatient(id string) error
	CreateEnvironment(Environment) (Environment, error)
	UpdateEnvironment(id string, mutator func(*Environment) error) (Environment, error)
	DeleteEnvironment(id string) error
	CreatePhenotypeProfile(PhenotypeProfile) (PhenotypeProfile, error)
	UpdatePhenotypeProfile(id string, mutator func(*PhenotypeProfile) error) (PhenotypeProfile, error)
	DeletePhenotypeProfile(id string) error
	CreateIsolate(Isolate) (Isolate, error)
	UpdateIsolate(id string, mutator func(*Isolate) error) (Isolate, error)
	DeleteIsolate(id string) error
	CreateGenome(GenomicData) (GenomicData, error)
	UpdateGenome(id string, mutator func(*GenomicData) error) (GenomicData, error)
	DeleteGenome(id string) error
	CreateTreatmentOutcome(TreatmentOutcome) (TreatmentOutcome, error)
	DeleteTreatmentOutcome(id string) error
	FindIsolate(id string) (Isolate, bool)
	FindGenome(id string) (GenomicData, bool)
}

// TransactionView provides read-only access to snapshot data for rules and
// query helpers.
type TransactionView interface {
	ListOrganizations() []Organization
	ListPatients() []Patient
	ListEnvironments() []Environment
	ListPhenotypeProfiles() []PhenotypeProfile
	ListIsolates() []Isolate
	ListGenomes() []GenomicData
	ListTreatmentOutcomes() []TreatmentOutcome
	FindOrganization(id string) (Organization, bool)
	FindPatient(id string) (Patient, bool)
	FindEnvironment(id string) (Environment, bool)
	FindPhenotypeProfile(id string) (PhenotypeProfile, bool)
	FindIsolate(id string) (Isolate, bool)
	FindIsolateByLabel(label string) (Isolate, bool)
	FindGenome(id string) (GenomicData, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
//
// RunInTransaction executes fn against an isolated copy of the state and
// commits atomically; implementations serialize transactions, so a
// check-then-act sequence inside fn cannot interleave with another writer.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetIsolate(id string) (Isolate, bool)
	GetGenome(id string) (GenomicData, bool)
	ListIsolates() []Isolate
	ListGenomes() []GenomicData
	ListOrganizations() []Organization
	ListPatients() []Patient
	ListEnvironments() []Environment
	ListTreatmentOutcomes() []TreatmentOutcome
}
