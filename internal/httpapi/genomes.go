package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/nalarbp/patomove/internal/core"
	"github.com/nalarbp/patomove/pkg/domain"
)

// maxUploadBytes caps genome file uploads (500 MiB covers bacterial read
// sets; assemblies are far smaller).
const maxUploadBytes = 500 << 20

func (s *Server) handleListGenomes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.GenomeFilter{
		ValidationStatus: domain.ValidationStatus(q.Get("validationStatus")),
	}
	if v, err := strconv.ParseBool(q.Get("unlinked")); err == nil {
		filter.Unlinked = v
	}
	genomes := s.svc.ListGenomes(r.Context(), filter)
	writeJSON(w, http.StatusOK, map[string]any{"genomes": genomes})
}

func (s *Server) handleCreateGenome(w http.ResponseWriter, r *http.Request) {
	var genome domain.GenomicData
	if err := decodeJSON(r, &genome); err != nil {
		s.writeServiceError(w, err)
		return
	}
	created, res, err := s.svc.CreateGenome(r.Context(), genome)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logWarnings(res)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetGenome(w http.ResponseWriter, r *http.Request) {
	genome, err := s.svc.GetGenome(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genome)
}

func (s *Server) handlePatchGenome(w http.ResponseWriter, r *http.Request) {
	var patch struct {
		SequencingPlatform *string `json:"sequencing_platform"`
		UploadedBy         *string `json:"uploaded_by"`
	}
	if err := decodeJSON(r, &patch); err != nil {
		s.writeServiceError(w, err)
		return
	}
	updated, res, err := s.svc.UpdateGenome(r.Context(), mux.Vars(r)["id"], func(g *domain.GenomicData) error {
		if patch.SequencingPlatform != nil {
			g.SequencingPlatform = *patch.SequencingPlatform
		}
		if patch.UploadedBy != nil {
			g.UploadedBy = *patch.UploadedBy
		}
		return nil
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logWarnings(res)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteGenome(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.DeleteGenome(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.logWarnings(res)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleUploadGenome(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	genome, err := s.svc.UploadGenomeFile(r.Context(), mux.Vars(r)["id"], header.Filename, file)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"fileName":    genome.Filename,
		"storagePath": genome.StoragePath,
		"fileSize":    genome.FileSize,
		"genome":      genome,
	})
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/v1/files/")
	if key == "" {
		writeError(w, http.StatusBadRequest, "file key required")
		return
	}
	info, rc, err := s.svc.OpenGenomeFile(r.Context(), key)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filenameFromKey(key)))
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

func filenameFromKey(key string) string {
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
