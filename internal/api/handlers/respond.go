package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/wonny/tokenscout/internal/brain"
	"github.com/wonny/tokenscout/internal/contracts"
)

// ErrorBody is the error half of every failed response
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Phase   string `json:"phase,omitempty"`
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes {"success":false,"error":{...}}
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error": ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}

// respondPhase writes a phase result. Failures keep the result body so
// callers still see partial data (ignored keys, current config).
func respondPhase(w http.ResponseWriter, res contracts.PhaseResult, body interface{}) {
	if res.Success {
		respondJSON(w, http.StatusOK, body)
		return
	}

	status, code := phaseStatus(res.Error)
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error": ErrorBody{
			Code:    code,
			Message: res.Error,
			Phase:   string(res.Phase),
		},
		"result": body,
	})
}

// phaseStatus maps session error text to an HTTP status
func phaseStatus(msg string) (int, string) {
	switch {
	case strings.Contains(msg, brain.ErrNotFound.Error()):
		return http.StatusNotFound, "NOT_FOUND"
	case strings.Contains(msg, brain.ErrDuplicate.Error()):
		return http.StatusConflict, "DUPLICATE"
	case strings.Contains(msg, brain.ErrEmptyIdentifier.Error()),
		strings.Contains(msg, contracts.ErrInvalidAddress.Error()),
		strings.Contains(msg, contracts.ErrUnsupportedAlert.Error()):
		return http.StatusBadRequest, "BAD_REQUEST"
	case strings.Contains(msg, brain.ErrEmptyPool.Error()):
		return http.StatusConflict, "EMPTY_POOL"
	case strings.HasPrefix(msg, "internal error"):
		return http.StatusInternalServerError, "INTERNAL"
	default:
		return http.StatusUnprocessableEntity, "PHASE_FAILED"
	}
}

// decodeOptional decodes a JSON body into v; an empty body is not an error
func decodeOptional(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
