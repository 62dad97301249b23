// Package httpapi exposes the patomove REST surface.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nalarbp/patomove/internal/core"
)

// Server wires the domain service into HTTP routes.
type Server struct {
	svc    *core.Service
	log    *zap.SugaredLogger
	router *mux.Router
}

// NewServer constructs the HTTP server around a service.
func NewServer(svc *core.Service, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{svc: svc, log: log, router: mux.NewRouter()}
	s.routes()
	return s
}

// Router returns the root handler.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) routes() {
	s.router.Use(s.instrument)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/organizations", s.handleListOrganizations).Methods(http.MethodGet)
	api.HandleFunc("/organizations", s.handleCreateOrganization).Methods(http.MethodPost)
	api.HandleFunc("/organizations/{id}", s.handleGetOrganization).Methods(http.MethodGet)
	api.HandleFunc("/organizations/{id}", s.handleUpdateOrganization).Methods(http.MethodPut)

	api.HandleFunc("/patients", s.handleListPatients).Methods(http.MethodGet)
	api.HandleFunc("/patients", s.handleCreatePatient).Methods(http.MethodPost)

	api.HandleFunc("/environments", s.handleListEnvironments).Methods(http.MethodGet)
	api.HandleFunc("/environments", s.handleCreateEnvironment).Methods(http.MethodPost)

	api.HandleFunc("/phenotypes", s.handleCreatePhenotype).Methods(http.MethodPost)

	api.HandleFunc("/treatment-outcomes", s.handleListTreatmentOutcomes).Methods(http.MethodGet)
	api.HandleFunc("/treatment-outcomes", s.handleCreateTreatmentOutcome).Methods(http.MethodPost)

	api.HandleFunc("/isolates", s.handleListIsolates).Methods(http.MethodGet)
	api.HandleFunc("/isolates", s.handleCreateIsolate).Methods(http.MethodPost)
	api.HandleFunc("/isolates/filters", s.handleIsolateFilters).Methods(http.MethodGet)
	api.HandleFunc("/isolates/{id}", s.handleGetIsolate).Methods(http.MethodGet)
	api.HandleFunc("/isolates/{id}", s.handleUpdateIsolate).Methods(http.MethodPut)
	api.HandleFunc("/isolates/{id}", s.handleDeleteIsolate).Methods(http.MethodDelete)
	api.HandleFunc("/isolates/{id}/genome-suggestions", s.handleGenomeSuggestions).Methods(http.MethodGet)
	api.HandleFunc("/isolates/{id}/genome-suggestions", s.handleLinkGenome).Methods(http.MethodPost)

	api.HandleFunc("/genomes", s.handleListGenomes).Methods(http.MethodGet)
	api.HandleFunc("/genomes", s.handleCreateGenome).Methods(http.MethodPost)
	api.HandleFunc("/genomes/{id}", s.handleGetGenome).Methods(http.MethodGet)
	api.HandleFunc("/genomes/{id}", s.handlePatchGenome).Methods(http.MethodPatch)
	api.HandleFunc("/genomes/{id}", s.handleDeleteGenome).Methods(http.MethodDelete)
	api.HandleFunc("/genomes/{id}/upload", s.handleUploadGenome).Methods(http.MethodPost)

	api.PathPrefix("/files/").HandlerFunc(s.handleDownloadFile).Methods(http.MethodGet)

	api.HandleFunc("/pipeline/webhook", s.handlePipelineWebhook).Methods(http.MethodPost)

	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
