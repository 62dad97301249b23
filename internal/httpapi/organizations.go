package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nalarbp/patomove/pkg/domain"
)

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs := s.svc.ListOrganizations(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"organizations": orgs})
}

func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var org domain.Organization
	if err := decodeJSON(r, &org); err != nil {
		s.writeServiceError(w, err)
		return
	}
	created, res, err := s.svc.CreateOrganization(r.Context(), org)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logWarnings(res)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.svc.GetOrganization(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (s *Server) handleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	var patch domain.Organization
	if err := decodeJSON(r, &patch); err != nil {
		s.writeServiceError(w, err)
		return
	}
	updated, res, err := s.svc.UpdateOrganization(r.Context(), mux.Vars(r)["id"], func(org *domain.Organization) error {
		base := org.Base
		*org = patch
		org.Base = base
		return nil
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logWarnings(res)
	writeJSON(w, http.StatusOK, updated)
}
