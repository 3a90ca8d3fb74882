package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/wonny/tokenscout/internal/audit"
)

// ReportStore is the persisted-analysis surface used by the API
type ReportStore interface {
	LatestReports(ctx context.Context, kind string, limit int) ([]audit.ReportRecord, error)
	SaveSnapshot(ctx context.Context, sessionID, configHash string, payload []byte) error
}

// GetReports lists the newest stored report per token
// GET /api/reports?kind=evaluation|diligence&limit=50
func (h *ScoutHandler) GetReports(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "PERSISTENCE_DISABLED", "DATABASE_URL is not configured")
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = audit.KindEvaluation
	}
	if kind != audit.KindEvaluation && kind != audit.KindDiligence {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "kind must be evaluation or diligence")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "BAD_REQUEST", "limit must be a positive integer")
			return
		}
		limit = n
	}

	reports, err := h.store.LatestReports(r.Context(), kind, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list reports")
		respondError(w, http.StatusInternalServerError, "INTERNAL", "Failed to retrieve reports")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"kind":    kind,
		"reports": reports,
		"count":   len(reports),
	})
}
