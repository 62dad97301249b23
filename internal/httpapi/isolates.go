package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nalarbp/patomove/internal/core"
	"github.com/nalarbp/patomove/pkg/domain"
)

func (s *Server) handleListIsolates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	isolates := s.svc.ListIsolates(r.Context(), core.IsolateFilter{
		OrgID:            q.Get("orgId"),
		CollectionSource: q.Get("collectionSource"),
	})
	writeJSON(w, http.StatusOK, map[string]any{"isolates": isolates})
}

func (s *Server) handleCreateIsolate(w http.ResponseWriter, r *http.Request) {
	var isolate domain.Isolate
	if err := decodeJSON(r, &isolate); err != nil {
		s.writeServiceError(w, err)
		return
	}
	created, res, err := s.svc.CreateIsolate(r.Context(), isolate)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logWarnings(res)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetIsolate(w http.ResponseWriter, r *http.Request) {
	isolate, err := s.svc.GetIsolate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, isolate)
}

func (s *Server) handleUpdateIsolate(w http.ResponseWriter, r *http.Request) {
	var patch domain.Isolate
	if err := decodeJSON(r, &patch); err != nil {
		s.writeServiceError(w, err)
		return
	}
	updated, res, err := s.svc.UpdateIsolate(r.Context(), mux.Vars(r)["id"], func(iso *domain.Isolate) error {
		base := iso.Base
		*iso = patch
		iso.Base = base
		return nil
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logWarnings(res)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteIsolate(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.DeleteIsolate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logWarnings(res)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleIsolateFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := s.svc.IsolateFilters(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (s *Server) handleGenomeSuggestions(w http.ResponseWriter, r *http.Request) {
	set, err := s.svc.GenomeSuggestions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

type linkRequest struct {
	GenomeID      string `json:"genomeId"`
	LinkingMethod string `json:"linkingMethod"`
}

func (s *Server) handleLinkGenome(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	if req.GenomeID == "" {
		writeError(w, http.StatusBadRequest, "genomeId required")
		return
	}
	method := domain.LinkingMethod(req.LinkingMethod)
	if method == "" {
		method = domain.LinkManualSuggestion
	}
	result, res, err := s.svc.LinkGenome(r.Context(), mux.Vars(r)["id"], req.GenomeID, method)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logWarnings(res)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"isolate": result.Isolate,
		"genome":  result.Genome,
	})
}
