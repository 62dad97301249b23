package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/nalarbp/patomove/internal/core"
	"github.com/nalarbp/patomove/internal/pipeline"
)

// handlePipelineWebhook receives terminal-status callbacks from the external
// analysis pipeline and feeds them to the reconciler. The pipeline retries
// non-2xx responses, so processing errors return 500 and unresolvable
// targets return 404.
func (s *Server) handlePipelineWebhook(w http.ResponseWriter, r *http.Request) {
	var cb pipeline.Callback
	// Lenient decoding: the pipeline adds payload fields over time.
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		writeError(w, http.StatusBadRequest, "invalid callback payload: "+err.Error())
		return
	}
	if err := s.svc.Reconcile(r.Context(), cb); err != nil {
		switch {
		case core.IsNotFound(err):
			writeError(w, http.StatusNotFound, err.Error())
		case core.IsBadRequest(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.log.Errorw("webhook processing failed", "job_id", cb.JobID, "target", cb.IsolateID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to process callback")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "received",
		"job_id":     cb.JobID,
		"isolate_id": cb.IsolateID,
	})
}
