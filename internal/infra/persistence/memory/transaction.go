package memory

import (
	"fmt"

	"github.com/nalarbp/patomove/pkg/domain"
)

func (tx *transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot exposes the transaction's working state to read helpers and rules.
func (tx *transaction) Snapshot() domain.TransactionView {
	return view{state: &tx.state}
}

// CreateOrganization stores a new organization within the transaction.
func (tx *transaction) CreateOrganization(o domain.Organization) (domain.Organization, error) {
	if o.ID == "" {
		o.ID = newID()
	}
	if _, exists := tx.state.organizations[o.ID]; exists {
		return domain.Organization{}, fmt.Errorf("organization %q already exists", o.ID)
	}
	o.CreatedAt = tx.now
	o.UpdatedAt = tx.now
	tx.state.organizations[o.ID] = o
	tx.recordChange(domain.Change{Entity: domain.EntityOrganization, Action: domain.ActionCreate, After: o})
	return o, nil
}

// UpdateOrganization mutates an organization using the provided mutator.
func (tx *transaction) UpdateOrganization(id string, mutator func(*domain.Organization) error) (domain.Organization, error) {
	current, ok := tx.state.organizations[id]
	if !ok {
		return domain.Organization{}, fmt.Errorf("organization %q not found", id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Organization{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.organizations[id] = current
	tx.recordChange(domain.Change{Entity: domain.EntityOrganization, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteOrganization removes an organization from the transaction state.
func (tx *transaction) DeleteOrganization(id string) error {
	current, ok := tx.state.organizations[id]
	if !ok {
		return fmt.Errorf("organization %q not found", id)
	}
	delete(tx.state.organizations, id)
	tx.recordChange(domain.Change{Entity: domain.EntityOrganization, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreatePatient stores a new patient.
func (tx *transaction) CreatePatient(p domain.Patient) (domain.Patient, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	if _, exists := tx.state.patients[p.ID]; exists {
		return domain.Patient{}, fmt.Errorf("patient %q already exists", p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.patients[p.ID] = p
	tx.recordChange(domain.Change{Entity: domain.EntityPatient, Action: domain.ActionCreate, After: p})
	return p, nil
}

// UpdatePatient mutates an existing patient.
func (tx *transaction) UpdatePatient(id string, mutator func(*domain.Patient) error) (domain.Patient, error) {
	current, ok := tx.state.patients[id]
	if !ok {
		return domain.Patient{}, fmt.Errorf("patient %q not found", id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Patient{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.patients[id] = current
	tx.recordChange(domain.Change{Entity: domain.EntityPatient, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeletePatient removes a patient from state.
func (tx *transaction) DeletePatient(id string) error {
	current, ok := tx.state.patients[id]
	if !ok {
		return fmt.Errorf("patient %q not found", id)
	}
	delete(tx.state.patients, id)
	tx.recordChange(domain.Change{Entity: domain.EntityPatient, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateEnvironment stores a new environment.
func (tx *transaction) CreateEnvironment(e domain.Environment) (domain.Environment, error) {
	if e.ID == "" {
		e.ID = newID()
	}
	if _, exists := tx.state.environments[e.ID]; exists {
		return domain.Environment{}, fmt.Errorf("environment %q already exists", e.ID)
	}
	e.CreatedAt = tx.now
	e.UpdatedAt = tx.now
	tx.state.environments[e.ID] = e
	tx.recordChange(domain.Change{Entity: domain.EntityEnvironment, Action: domain.ActionCreate, After: e})
	return e, nil
}

// UpdateEnvironment mutates an existing environment.
func (tx *transaction) UpdateEnvironment(id string, mutator func(*domain.Environment) error) (domain.Environment, error) {
	current, ok := tx.state.environments[id]
	if !ok {
		return domain.Environment{}, fmt.Errorf("environment %q not found", id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Environment{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.environments[id] = current
	tx.recordChange(domain.Change{Entity: domain.EntityEnvironment, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteEnvironment removes an environment from state.
func (tx *transaction) DeleteEnvironment(id string) error {
	current, ok := tx.state.environments[id]
	if !ok {
		return fmt.Errorf("environment %q not found", id)
	}
	delete(tx.state.environments, id)
	tx.recordChange(domain.Change{Entity: domain.EntityEnvironment, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreatePhenotypeProfile stores a new phenotype profile.
func (tx *transaction) CreatePhenotypeProfile(p domain.PhenotypeProfile) (domain.PhenotypeProfile, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	if _, exists := tx.state.phenotypes[p.ID]; exists {
		return domain.PhenotypeProfile{}, fmt.Errorf("phenotype profile %q already exists", p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.phenotypes[p.ID] = clonePhenotype(p)
	tx.recordChange(domain.Change{Entity: domain.EntityPhenotype, Action: domain.ActionCreate, After: clonePhenotype(p)})
	return clonePhenotype(p), nil
}

// UpdatePhenotypeProfile mutates an existing phenotype profile.
func (tx *transaction) UpdatePhenotypeProfile(id string, mutator func(*domain.PhenotypeProfile) error) (domain.PhenotypeProfile, error) {
	current, ok := tx.state.phenotypes[id]
	if !ok {
		return domain.PhenotypeProfile{}, fmt.Errorf("phenotype profile %q not found", id)
	}
	before := clonePhenotype(current)
	if err := mutator(&current); err != nil {
		return domain.PhenotypeProfile{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.phenotypes[id] = clonePhenotype(current)
	tx.recordChange(domain.Change{Entity: domain.EntityPhenotype, Action: domain.ActionUpdate, Before: before, After: clonePhenotype(current)})
	return clonePhenotype(current), nil
}

// DeletePhenotypeProfile removes a phenotype profile from state.
func (tx *transaction) DeletePhenotypeProfile(id string) error {
	current, ok := tx.state.phenotypes[id]
	if !ok {
		return fmt.Errorf("phenotype profile %q not found", id)
	}
	delete(tx.state.phenotypes, id)
	tx.recordChange(domain.Change{Entity: domain.EntityPhenotype, Action: domain.ActionDelete, Before: clonePhenotype(current)})
	return nil
}

// CreateIsolate stores a new isolate within the transaction.
func (tx *transaction) CreateIsolate(iso domain.Isolate) (domain.Isolate, error) {
	if iso.ID == "" {
		iso.ID = newID()
	}
	if _, exists := tx.state.isolates[iso.ID]; exists {
		return domain.Isolate{}, fmt.Errorf("isolate %q already exists", iso.ID)
	}
	iso.CreatedAt = tx.now
	iso.UpdatedAt = tx.now
	tx.state.isolates[iso.ID] = iso
	tx.recordChange(domain.Change{Entity: domain.EntityIsolate, Action: domain.ActionCreate, After: iso})
	return iso, nil
}

// UpdateIsolate mutates an isolate using the provided mutator function.
func (tx *transaction) UpdateIsolate(id string, mutator func(*domain.Isolate) error) (domain.Isolate, error) {
	current, ok := tx.state.isolates[id]
	if !ok {
		return domain.Isolate{}, fmt.Errorf("isolate %q not found", id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Isolate{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.isolates[id] = current
	tx.recordChange(domain.Change{Entity: domain.EntityIsolate, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteIsolate removes an isolate from the transaction state.
func (tx *transaction) DeleteIsolate(id string) error {
	current, ok := tx.state.isolates[id]
	if !ok {
		return fmt.Errorf("isolate %q not found", id)
	}
	delete(tx.state.isolates, id)
	tx.recordChange(domain.Change{Entity: domain.EntityIsolate, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateGenome stores a new genomic data record.
func (tx *transaction) CreateGenome(g domain.GenomicData) (domain.GenomicData, error) {
	if g.ID == "" {
		g.ID = newID()
	}
	if _, exists := tx.state.genomes[g.ID]; exists {
		return domain.GenomicData{}, fmt.Errorf("genome %q already exists", g.ID)
	}
	g.CreatedAt = tx.now
	g.UpdatedAt = tx.now
	if g.UploadDate.IsZero() {
		g.UploadDate = tx.now
	}
	tx.state.genomes[g.ID] = cloneGenome(g)
	tx.recordChange(domain.Change{Entity: domain.EntityGenome, Action: domain.ActionCreate, After: cloneGenome(g)})
	return cloneGenome(g), nil
}

// UpdateGenome mutates a genomic data record.
func (tx *transaction) UpdateGenome(id string, mutator func(*domain.GenomicData) error) (domain.GenomicData, error) {
	current, ok := tx.state.genomes[id]
	if !ok {
		return domain.GenomicData{}, fmt.Errorf("genome %q not found", id)
	}
	before := cloneGenome(current)
	if err := mutator(&current); err != nil {
		return domain.GenomicData{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.genomes[id] = cloneGenome(current)
	tx.recordChange(domain.Change{Entity: domain.EntityGenome, Action: domain.ActionUpdate, Before: before, After: cloneGenome(current)})
	return cloneGenome(current), nil
}

// DeleteGenome removes a genomic data record from the transaction state.
func (tx *transaction) DeleteGenome(id string) error {
	current, ok := tx.state.genomes[id]
	if !ok {
		return fmt.Errorf("genome %q not found", id)
	}
	delete(tx.state.genomes, id)
	tx.recordChange(domain.Change{Entity: domain.EntityGenome, Action: domain.ActionDelete, Before: cloneGenome(current)})
	return nil
}

// CreateTreatmentOutcome stores a treatment outcome record.
func (tx *transaction) CreateTreatmentOutcome(t domain.TreatmentOutcome) (domain.TreatmentOutcome, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	if _, exists := tx.state.treatments[t.ID]; exists {
		return domain.TreatmentOutcome{}, fmt.Errorf("treatment outcome %q already exists", t.ID)
	}
	t.CreatedAt = tx.now
	t.UpdatedAt = tx.now
	tx.state.treatments[t.ID] = t
	tx.recordChange(domain.Change{Entity: domain.EntityTreatmentOutcome, Action: domain.ActionCreate, After: t})
	return t, nil
}

// DeleteTreatmentOutcome removes a treatment outcome record.
func (tx *transaction) DeleteTreatmentOutcome(id string) error {
	current, ok := tx.state.treatments[id]
	if !ok {
		return fmt.Errorf("treatment outcome %q not found", id)
	}
	delete(tx.state.treatments, id)
	tx.recordChange(domain.Change{Entity: domain.EntityTreatmentOutcome, Action: domain.ActionDelete, Before: current})
	return nil
}

// FindIsolate retrieves an isolate from the transaction's working state.
func (tx *transaction) FindIsolate(id string) (domain.Isolate, bool) {
	iso, ok := tx.state.isolates[id]
	return iso, ok
}

// FindGenome retrieves a genome from the transaction's working state.
func (tx *transaction) FindGenome(id string) (domain.GenomicData, bool) {
	g, ok := tx.state.genomes[id]
	if !ok {
		return domain.GenomicData{}, false
	}
	return cloneGenome(g), true
}
