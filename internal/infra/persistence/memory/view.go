package memory

import "github.com/nalarbp/patomove/pkg/domain"

// ListOrganizations returns all organizations within the snapshot.
func (v view) ListOrganizations() []domain.Organization {
	out := make([]domain.Organization, 0, len(v.state.organizations))
	for _, o := range v.state.organizations {
		out = append(out, o)
	}
	return out
}

// ListPatients returns all patients within the snapshot.
func (v view) ListPatients() []domain.Patient {
	out := make([]domain.Patient, 0, len(v.state.patients))
	for _, p := range v.state.patients {
		out = append(out, p)
	}
	return out
}

// ListEnvironments returns all environments within the snapshot.
func (v view) ListEnvironments() []domain.Environment {
	out := make([]domain.Environment, 0, len(v.state.environments))
	for _, e := range v.state.environments {
		out = append(out, e)
	}
	return out
}

// ListPhenotypeProfiles returns all phenotype profiles within the snapshot.
func (v view) ListPhenotypeProfiles() []domain.PhenotypeProfile {
	out := make([]domain.PhenotypeProfile, 0, len(v.state.phenotypes))
	for _, p := range v.state.phenotypes {
		out = append(out, clonePhenotype(p))
	}
	return out
}

// ListIsolates returns all isolates within the snapshot.
func (v view) ListIsolates() []domain.Isolate {
	out := make([]domain.Isolate, 0, len(v.state.isolates))
	for _, iso := range v.state.isolates {
		out = append(out, iso)
	}
	return out
}

// ListGenomes returns all genome records within the snapshot.
func (v view) ListGenomes() []domain.GenomicData {
	out := make([]domain.GenomicData, 0, len(v.state.genomes))
	for _, g := range v.state.genomes {
		out = append(out, cloneGenome(g))
	}
	return out
}

// ListTreatmentOutcomes returns all treatment outcomes within the snapshot.
func (v view) ListTreatmentOutcomes() []domain.TreatmentOutcome {
	out := make([]domain.TreatmentOutcome, 0, len(v.state.treatments))
	for _, t := range v.state.treatments {
		out = append(out, t)
	}
	return out
}

// FindOrganization retrieves an organization by ID from the snapshot.
func (v view) FindOrganization(id string) (domain.Organization, bool) {
	o, ok := v.state.organizations[id]
	return o, ok
}

// FindPatient retrieves a patient by ID from the snapshot.
func (v view) FindPatient(id string) (domain.Patient, bool) {
	p, ok := v.state.patients[id]
	return p, ok
}

// FindEnvironment retrieves an environment by ID from the snapshot.
func (v view) FindEnvironment(id string) (domain.Environment, bool) {
	e, ok := v.state.environments[id]
	return e, ok
}

// FindPhenotypeProfile retrieves a phenotype profile by ID from the snapshot.
func (v view) FindPhenotypeProfile(id string) (domain.PhenotypeProfile, bool) {
	p, ok := v.state.phenotypes[id]
	if !ok {
		return domain.PhenotypeProfile{}, false
	}
	return clonePhenotype(p), true
}

// FindIsolate retrieves an isolate by ID from the snapshot.
func (v view) FindIsolate(id string) (domain.Isolate, bool) {
	iso, ok := v.state.isolates[id]
	return iso, ok
}

// FindIsolateByLabel retrieves an isolate by its exact label. When several
// isolates share a label the lexically smallest ID wins, keeping lookups
// deterministic.
func (v view) FindIsolateByLabel(label string) (domain.Isolate, bool) {
	var match domain.Isolate
	found := false
	for _, iso := range v.state.isolates {
		if iso.Label != label {
			continue
		}
		if !found || iso.ID < match.ID {
			match = iso
			found = true
		}
	}
	return match, found
}

// FindGenome retrieves a genome by ID from the snapshot.
func (v view) FindGenome(id string) (domain.GenomicData, bool) {
	g, ok := v.state.genomes[id]
	if !ok {
		return domain.GenomicData{}, false
	}
	return cloneGenome(g), true
}
