package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nalarbp/patomove/internal/core"
	"github.com/nalarbp/patomove/pkg/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// writeServiceError maps domain service errors onto HTTP statuses: missing
// records are 404, conflicts and bad input are 400, blocked transactions are
// 409, everything else is 500.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var ruleErr domain.RuleViolationError
	switch {
	case core.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case core.IsConflict(err), core.IsBadRequest(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ruleErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      ruleErr.Error(),
			"violations": ruleErr.Result.Violations,
		})
	default:
		s.log.Errorw("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return core.BadRequestError{Message: "invalid JSON payload: " + err.Error()}
	}
	return nil
}

// logWarnings records non-blocking rule violations attached to a committed
// transaction.
func (s *Server) logWarnings(res domain.Result) {
	for _, v := range res.Violations {
		if v.Severity != domain.SeverityBlock {
			s.log.Warnw("rule violation", "rule", v.Rule, "severity", string(v.Severity), "message", v.Message, "entity_id", v.EntityID)
		}
	}
}
