package httpapi

import (
	"net/http"

	"github.com/nalarbp/patomove/pkg/domain"
)

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	patients := s.svc.ListPatients(r.Context(), r.URL.Query().Get("orgId"))
	writeJSON(w, http.StatusOK, map[string]any{"patients": patients})
}

func (s *Server) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var patient domain.Patient
	if err := decodeJSON(r, &patient); err != nil {
		s.writeServiceError(w, err)
		return
	}
	created, res, err := s.svc.CreatePatient(r.Context(), patient)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logWarnings(res)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListEnvironments(w http.ResponseWriter, r *http.Request) {
	envs := s.svc.ListEnvironments(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"environments": envs})
}

func (s *Server) handleCreateEnvironment(w http.ResponseWriter, r *http.Request) {
	var env domain.Environment
	if err := decodeJSON(r, &env); err != nil {
		s.writeServiceError(w, err)
		return
	}
	created, res, err := s.svc.CreateEnvironment(r.Context(), env)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logWarnings(res)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleCreatePhenotype(w http.ResponseWriter, r *http.Request) {
	var profile domain.PhenotypeProfile
	if err := decodeJSON(r, &profile); err != nil {
		s.writeServiceError(w, err)
		return
	}
	created, res, err := s.svc.CreatePhenotypeProfile(r.Context(), profile)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logWarnings(res)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListTreatmentOutcomes(w http.ResponseWriter, r *http.Request) {
	outcomes := s.svc.ListTreatmentOutcomes(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"treatment_outcomes": outcomes})
}

func (s *Server) handleCreateTreatmentOutcome(w http.ResponseWriter, r *http.Request) {
	var outcome domain.TreatmentOutcome
	if err := decodeJSON(r, &outcome); err != nil {
		s.writeServiceError(w, err)
		return
	}
	created, res, err := s.svc.CreateTreatmentOutcome(r.Context(), outcome)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logWarnings(res)
	writeJSON(w, http.StatusCreated, created)
}
