package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/tokenscout/internal/brain"
	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/pkg/logger"
)

// maxAlertBody bounds an alert request body
const maxAlertBody = 1 << 20

// Scout is the session surface the handlers drive
type Scout interface {
	Discover(ctx context.Context, override map[string]interface{}) *brain.DiscoverResult
	Screen(ctx context.Context, candidates []contracts.Candidate) *brain.ScreenResult
	Evaluate(ctx context.Context, identifier string) *brain.EvaluateResult
	RunDD(ctx context.Context, identifier string) *brain.DiligenceResult
	IngestAlert(ctx context.Context, payload *contracts.AlertPayload) *brain.AlertResult

	AddToWatchlist(identifier, notes string) *brain.WatchlistResult
	RemoveFromWatchlist(identifier string) *brain.WatchlistResult
	Watchlist() []contracts.WatchlistEntry
	TradeReady() []contracts.TradeIntent

	Config() pipelineconfig.Options
	SetConfig(override map[string]interface{}) *brain.ConfigResult
	Export() *brain.ExportResult
	Reset() contracts.PhaseResult
	SessionID() string
	Stats() contracts.SessionStats
}

// ScoutHandler handles pipeline and session endpoints
// ⭐ SSOT: 파이프라인 API 핸들러는 여기서만
type ScoutHandler struct {
	scout  Scout
	store  ReportStore
	logger *logger.Logger
}

// NewScoutHandler creates a new scout handler. store may be nil when
// persistence is disabled.
func NewScoutHandler(scout Scout, store ReportStore, log *logger.Logger) *ScoutHandler {
	return &ScoutHandler{
		scout:  scout,
		store:  store,
		logger: log.WithComponent("api"),
	}
}

// ============================================================
// Pipeline phases
// ============================================================

// Discover runs S1 with an optional config override body
// POST /api/discover
func (h *ScoutHandler) Discover(w http.ResponseWriter, r *http.Request) {
	var override map[string]interface{}
	if err := decodeOptional(r, &override); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid override body")
		return
	}

	res := h.scout.Discover(r.Context(), override)
	respondPhase(w, res.PhaseResult, res)
}

// Screen runs S2 over the candidate pool
// POST /api/screen
func (h *ScoutHandler) Screen(w http.ResponseWriter, r *http.Request) {
	res := h.scout.Screen(r.Context(), nil)
	respondPhase(w, res.PhaseResult, res)
}

// Evaluate runs S3 for one token
// POST /api/evaluate/{id}
func (h *ScoutHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	res := h.scout.Evaluate(r.Context(), mux.Vars(r)["id"])
	respondPhase(w, res.PhaseResult, res)
}

// RunDD runs S4 for one token
// POST /api/dd/{id}
func (h *ScoutHandler) RunDD(w http.ResponseWriter, r *http.Request) {
	res := h.scout.RunDD(r.Context(), mux.Vars(r)["id"])
	respondPhase(w, res.PhaseResult, res)
}

// IngestAlert accepts one scanner alert over HTTP
// POST /api/alerts
func (h *ScoutHandler) IngestAlert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxAlertBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Failed to read body")
		return
	}

	alert, err := contracts.ParseAlert(body)
	if err != nil {
		h.logger.WithError(err).Debug("Rejected alert body")
		respondError(w, http.StatusBadRequest, "INVALID_ALERT", err.Error())
		return
	}

	res := h.scout.IngestAlert(r.Context(), alert)
	respondPhase(w, res.PhaseResult, res)
}

// ============================================================
// Watchlist & trade-ready
// ============================================================

// WatchlistRequest adds a token to the watchlist
type WatchlistRequest struct {
	Identifier string `json:"identifier"`
	Notes      string `json:"notes"`
}

// GetWatchlist returns the watchlist
// GET /api/watchlist
func (h *ScoutHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	entries := h.scout.Watchlist()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"watchlist": entries,
		"count":     len(entries),
	})
}

// AddToWatchlist adds a token
// POST /api/watchlist
func (h *ScoutHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req WatchlistRequest
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}

	res := h.scout.AddToWatchlist(req.Identifier, req.Notes)
	respondPhase(w, res.PhaseResult, res)
}

// RemoveFromWatchlist removes a token
// DELETE /api/watchlist/{id}
func (h *ScoutHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	res := h.scout.RemoveFromWatchlist(mux.Vars(r)["id"])
	respondPhase(w, res.PhaseResult, res)
}

// GetTradeReady returns DD-passed tokens for execution
// GET /api/trade-ready
func (h *ScoutHandler) GetTradeReady(w http.ResponseWriter, r *http.Request) {
	intents := h.scout.TradeReady()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"intents": intents,
		"count":   len(intents),
	})
}

// ============================================================
// Session
// ============================================================

// GetSession returns the session ID and counters
// GET /api/session
func (h *ScoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"session_id": h.scout.SessionID(),
		"stats":      h.scout.Stats(),
	})
}

// GetConfig returns the session pipeline config
// GET /api/config
func (h *ScoutHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.scout.Config()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"config":  cfg,
	})
}

// UpdateConfig merges a partial config
// PUT /api/config
func (h *ScoutHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var override map[string]interface{}
	if err := decodeOptional(r, &override); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid config body")
		return
	}

	res := h.scout.SetConfig(override)
	respondPhase(w, res.PhaseResult, res)
}

// GetSnapshot exports the session
// GET /api/snapshot
func (h *ScoutHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	res := h.scout.Export()
	respondPhase(w, res.PhaseResult, res)
}

// SaveSnapshot exports the session and stores it
// POST /api/snapshot
func (h *ScoutHandler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "PERSISTENCE_DISABLED", "DATABASE_URL is not configured")
		return
	}

	res := h.scout.Export()
	if !res.Success {
		respondPhase(w, res.PhaseResult, res)
		return
	}

	payload, err := res.Snapshot.JSON()
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode snapshot")
		respondError(w, http.StatusInternalServerError, "INTERNAL", "Failed to encode snapshot")
		return
	}

	if err := h.store.SaveSnapshot(r.Context(), res.Snapshot.SessionID, res.Snapshot.ConfigHash, payload); err != nil {
		h.logger.WithError(err).Error("Failed to save snapshot")
		respondError(w, http.StatusInternalServerError, "INTERNAL", "Failed to save snapshot")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"session_id":  res.Snapshot.SessionID,
		"config_hash": res.Snapshot.ConfigHash,
	})
}

// Reset starts a new session
// POST /api/reset
func (h *ScoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	res := h.scout.Reset()
	respondPhase(w, res, map[string]interface{}{
		"success":    res.Success,
		"phase":      res.Phase,
		"session_id": h.scout.SessionID(),
	})
}
