package memory

import (
	"sort"

	"github.com/nalarbp/patomove/pkg/domain"
)

// Snapshot is the serialisable representation of the in-memory state. Durable
// backends persist it as JSON buckets and hydrate from it on startup.
type Snapshot struct {
	Organizations []domain.Organization     `json:"organizations"`
	Patients      []domain.Patient          `json:"patients"`
	Environments  []domain.Environment      `json:"environments"`
	Phenotypes    []domain.PhenotypeProfile `json:"phenotype_profiles"`
	Isolates      []domain.Isolate          `json:"isolates"`
	Genomes       []domain.GenomicData      `json:"genomes"`
	Treatments    []domain.TreatmentOutcome `json:"treatment_outcomes"`
}

// ExportState captures the current state as a sorted, serialisable snapshot.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{}
	for _, o := range s.state.organizations {
		snap.Organizations = append(snap.Organizations, o)
	}
	for _, p := range s.state.patients {
		snap.Patients = append(snap.Patients, p)
	}
	for _, e := range s.state.environments {
		snap.Environments = append(snap.Environments, e)
	}
	for _, p := range s.state.phenotypes {
		snap.Phenotypes = append(snap.Phenotypes, clonePhenotype(p))
	}
	for _, iso := range s.state.isolates {
		snap.Isolates = append(snap.Isolates, iso)
	}
	for _, g := range s.state.genomes {
		snap.Genomes = append(snap.Genomes, cloneGenome(g))
	}
	for _, t := range s.state.treatments {
		snap.Treatments = append(snap.Treatments, t)
	}

	sort.Slice(snap.Organizations, func(i, j int) bool { return snap.Organizations[i].ID < snap.Organizations[j].ID })
	sort.Slice(snap.Patients, func(i, j int) bool { return snap.Patients[i].ID < snap.Patients[j].ID })
	sort.Slice(snap.Environments, func(i, j int) bool { return snap.Environments[i].ID < snap.Environments[j].ID })
	sort.Slice(snap.Phenotypes, func(i, j int) bool { return snap.Phenotypes[i].ID < snap.Phenotypes[j].ID })
	sort.Slice(snap.Isolates, func(i, j int) bool { return snap.Isolates[i].ID < snap.Isolates[j].ID })
	sort.Slice(snap.Genomes, func(i, j int) bool { return snap.Genomes[i].ID < snap.Genomes[j].ID })
	sort.Slice(snap.Treatments, func(i, j int) bool { return snap.Treatments[i].ID < snap.Treatments[j].ID })
	return snap
}

// ImportState replaces the current state with the snapshot contents.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := newMemoryState()
	for _, o := range snap.Organizations {
		state.organizations[o.ID] = o
	}
	for _, p := range snap.Patients {
		state.patients[p.ID] = p
	}
	for _, e := range snap.Environments {
		state.environments[e.ID] = e
	}
	for _, p := range snap.Phenotypes {
		state.phenotypes[p.ID] = clonePhenotype(p)
	}
	for _, iso := range snap.Isolates {
		state.isolates[iso.ID] = iso
	}
	for _, g := range snap.Genomes {
		state.genomes[g.ID] = cloneGenome(g)
	}
	for _, t := range snap.Treatments {
		state.treatments[t.ID] = t
	}
	s.state = state
}
