package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tokenscout/internal/api/handlers"
	"github.com/wonny/tokenscout/internal/audit"
	"github.com/wonny/tokenscout/internal/brain"
	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/pkg/logger"
)

// fakeScout records calls and returns canned results
type fakeScout struct {
	lastOverride map[string]interface{}
	lastID       string
	lastNotes    string
	alert        *contracts.AlertPayload
	watchlist    []contracts.WatchlistEntry
	resets       int
	panicOn      string
}

func ok(stage contracts.Stage) contracts.PhaseResult {
	return contracts.Succeeded(stage, time.Now())
}

func fail(stage contracts.Stage, err error) contracts.PhaseResult {
	return contracts.Failed(stage, time.Now(), err)
}

func (f *fakeScout) Discover(_ context.Context, override map[string]interface{}) *brain.DiscoverResult {
	f.lastOverride = override
	return &brain.DiscoverResult{
		PhaseResult: ok(contracts.StageDiscovery),
		Candidates:  []contracts.Candidate{{Symbol: "AGENT", Chain: "base"}},
		Count:       1,
		PerSource:   map[string]int{"dexscreener": 1},
	}
}

func (f *fakeScout) Screen(context.Context, []contracts.Candidate) *brain.ScreenResult {
	return &brain.ScreenResult{PhaseResult: fail(contracts.StageScreening, brain.ErrEmptyPool)}
}

func (f *fakeScout) Evaluate(_ context.Context, id string) *brain.EvaluateResult {
	if f.panicOn == "evaluate" {
		panic("boom")
	}
	f.lastID = id
	if id == "missing" {
		return &brain.EvaluateResult{PhaseResult: fail(contracts.StageEvaluation, errors.New("missing: "+brain.ErrNotFound.Error()))}
	}
	return &brain.EvaluateResult{
		PhaseResult: ok(contracts.StageEvaluation),
		Evaluation:  &contracts.EvaluationResult{Key: id, TotalScore: 38, Recommendation: contracts.RecommendBuy},
	}
}

func (f *fakeScout) RunDD(_ context.Context, id string) *brain.DiligenceResult {
	f.lastID = id
	return &brain.DiligenceResult{
		PhaseResult: ok(contracts.StageDiligence),
		Report:      &contracts.DDResult{Key: id, PassRate: 0.8, Recommendation: contracts.DDBuy},
	}
}

func (f *fakeScout) IngestAlert(_ context.Context, payload *contracts.AlertPayload) *brain.AlertResult {
	f.alert = payload
	return &brain.AlertResult{PhaseResult: ok(contracts.StageAlert), RiskScore: 10}
}

func (f *fakeScout) AddToWatchlist(id, notes string) *brain.WatchlistResult {
	f.lastID, f.lastNotes = id, notes
	if id == "" {
		return &brain.WatchlistResult{PhaseResult: fail(contracts.StageWatchlist, brain.ErrEmptyIdentifier)}
	}
	for _, e := range f.watchlist {
		if e.Key == id {
			return &brain.WatchlistResult{PhaseResult: fail(contracts.StageWatchlist, brain.ErrDuplicate)}
		}
	}
	entry := contracts.WatchlistEntry{Key: id, Notes: notes}
	f.watchlist = append(f.watchlist, entry)
	return &brain.WatchlistResult{PhaseResult: ok(contracts.StageWatchlist), Entry: &entry, Watchlist: f.watchlist}
}

func (f *fakeScout) RemoveFromWatchlist(id string) *brain.WatchlistResult {
	f.lastID = id
	return &brain.WatchlistResult{PhaseResult: fail(contracts.StageWatchlist, brain.ErrNotFound)}
}

func (f *fakeScout) Watchlist() []contracts.WatchlistEntry { return f.watchlist }

func (f *fakeScout) TradeReady() []contracts.TradeIntent {
	return []contracts.TradeIntent{{Key: "0xabc", Symbol: "AGENT", WeightedScore: 0.9}}
}

func (f *fakeScout) Config() pipelineconfig.Options { return pipelineconfig.Defaults() }

func (f *fakeScout) SetConfig(override map[string]interface{}) *brain.ConfigResult {
	f.lastOverride = override
	if _, bad := override["risk"]; bad {
		return &brain.ConfigResult{PhaseResult: fail(contracts.StageConfig, errors.New("invalid risk"))}
	}
	return &brain.ConfigResult{PhaseResult: ok(contracts.StageConfig), Config: pipelineconfig.Defaults(), IgnoredKeys: []string{"bogus"}}
}

func (f *fakeScout) Export() *brain.ExportResult {
	return &brain.ExportResult{
		PhaseResult: ok(contracts.StageExport),
		Snapshot:    &brain.Snapshot{SessionID: "session-1", ConfigHash: "abc123"},
	}
}

func (f *fakeScout) Reset() contracts.PhaseResult {
	f.resets++
	return ok(contracts.StageReset)
}

func (f *fakeScout) SessionID() string { return "session-1" }

func (f *fakeScout) Stats() contracts.SessionStats { return contracts.SessionStats{Discoveries: 2} }

// fakeStore is an in-memory report store
type fakeStore struct {
	snapshots map[string]string
	reports   []audit.ReportRecord
	kind      string
	limit     int
}

func (s *fakeStore) LatestReports(_ context.Context, kind string, limit int) ([]audit.ReportRecord, error) {
	s.kind, s.limit = kind, limit
	return s.reports, nil
}

func (s *fakeStore) SaveSnapshot(_ context.Context, sessionID, configHash string, payload []byte) error {
	if s.snapshots == nil {
		s.snapshots = make(map[string]string)
	}
	s.snapshots[sessionID] = configHash
	return nil
}

func newTestRouter(scout *fakeScout, store handlers.ReportStore) http.Handler {
	log := logger.NewNop()
	return NewRouter(handlers.NewScoutHandler(scout, store, log), http.NotFoundHandler(), log)
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func errorCode(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	errBody, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "error body missing: %v", body)
	return errBody["code"].(string)
}

func TestHealth(t *testing.T) {
	rec, body := do(t, newTestRouter(&fakeScout{}, nil), "GET", "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestDiscover(t *testing.T) {
	scout := &fakeScout{}
	h := newTestRouter(scout, nil)

	rec, body := do(t, h, "POST", "/api/discover", `{"risk":"high"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, "high", scout.lastOverride["risk"])

	rec, _ = do(t, h, "POST", "/api/discover", "")
	assert.Equal(t, http.StatusOK, rec.Code, "override body is optional")
	assert.Nil(t, scout.lastOverride)

	rec, body = do(t, h, "POST", "/api/discover", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestPhaseFailureStatus(t *testing.T) {
	h := newTestRouter(&fakeScout{}, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"empty pool", "POST", "/api/screen", "", http.StatusConflict, "EMPTY_POOL"},
		{"unknown token", "POST", "/api/evaluate/missing", "", http.StatusNotFound, "NOT_FOUND"},
		{"remove unknown", "DELETE", "/api/watchlist/0xdead", "", http.StatusNotFound, "NOT_FOUND"},
		{"empty identifier", "POST", "/api/watchlist", `{"notes":"x"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"invalid config", "PUT", "/api/config", `{"risk":"reckless"}`, http.StatusUnprocessableEntity, "PHASE_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, errorCode(t, body))
		})
	}
}

func TestEvaluateAndDD(t *testing.T) {
	scout := &fakeScout{}
	h := newTestRouter(scout, nil)

	rec, body := do(t, h, "POST", "/api/evaluate/AGENT", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AGENT", scout.lastID)
	eval := body["evaluation"].(map[string]interface{})
	assert.Equal(t, float64(38), eval["total_score"])

	rec, body = do(t, h, "POST", "/api/dd/0xabc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0xabc", scout.lastID)
	report := body["report"].(map[string]interface{})
	assert.Equal(t, "BUY", report["recommendation"])
}

func TestWatchlistFlow(t *testing.T) {
	scout := &fakeScout{}
	h := newTestRouter(scout, nil)

	rec, _ := do(t, h, "POST", "/api/watchlist", `{"identifier":"0xabc","notes":"follow"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "follow", scout.lastNotes)

	rec, body := do(t, h, "POST", "/api/watchlist", `{"identifier":"0xabc"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE", errorCode(t, body))

	rec, body = do(t, h, "GET", "/api/watchlist", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])

	rec, body = do(t, h, "GET", "/api/trade-ready", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
}

func TestIngestAlert(t *testing.T) {
	scout := &fakeScout{}
	h := newTestRouter(scout, nil)

	alert := `{"type":"telegram_token_alert","token":{"address":"0x6982508145454Ce325dDbE47a25d4ec3d2311933","chain":"ethereum"}}`
	rec, body := do(t, h, "POST", "/api/alerts", alert)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(10), body["risk_score"])
	require.NotNil(t, scout.alert)
	assert.Equal(t, "ethereum", scout.alert.Token.Chain)

	scout.alert = nil
	rec, body = do(t, h, "POST", "/api/alerts", `{"token":{"address":"not-an-address","chain":"bsc"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ALERT", errorCode(t, body))
	assert.Nil(t, scout.alert, "invalid alerts never reach the session")
}

func TestConfigEndpoints(t *testing.T) {
	scout := &fakeScout{}
	h := newTestRouter(scout, nil)

	rec, body := do(t, h, "GET", "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, body["config"])

	rec, body = do(t, h, "PUT", "/api/config", `{"timeline":"days","bogus":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"bogus"}, body["ignored_keys"])
	assert.Equal(t, "days", scout.lastOverride["timeline"])
}

func TestSnapshot(t *testing.T) {
	t.Run("export", func(t *testing.T) {
		rec, body := do(t, newTestRouter(&fakeScout{}, nil), "GET", "/api/snapshot", "")
		require.Equal(t, http.StatusOK, rec.Code)
		snap := body["snapshot"].(map[string]interface{})
		assert.Equal(t, "session-1", snap["session_id"])
	})

	t.Run("save without database", func(t *testing.T) {
		rec, body := do(t, newTestRouter(&fakeScout{}, nil), "POST", "/api/snapshot", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "PERSISTENCE_DISABLED", errorCode(t, body))
	})

	t.Run("save", func(t *testing.T) {
		store := &fakeStore{}
		rec, body := do(t, newTestRouter(&fakeScout{}, store), "POST", "/api/snapshot", "")
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "abc123", body["config_hash"])
		assert.Equal(t, "abc123", store.snapshots["session-1"])
	})
}

func TestReports(t *testing.T) {
	store := &fakeStore{reports: []audit.ReportRecord{{TokenKey: "0xabc", Kind: audit.KindDiligence, Score: 0.9}}}
	h := newTestRouter(&fakeScout{}, store)

	rec, body := do(t, h, "GET", "/api/reports?kind=diligence&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, audit.KindDiligence, store.kind)
	assert.Equal(t, 5, store.limit)

	rec, _ = do(t, h, "GET", "/api/reports?kind=screening", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, "GET", "/api/reports?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetAndSession(t *testing.T) {
	scout := &fakeScout{}
	h := newTestRouter(scout, nil)

	rec, body := do(t, h, "POST", "/api/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, scout.resets)
	assert.Equal(t, "session-1", body["session_id"])

	rec, body = do(t, h, "GET", "/api/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["discoveries"])
}

func TestRecoveryMiddleware(t *testing.T) {
	rec, body := do(t, newTestRouter(&fakeScout{panicOn: "evaluate"}, nil), "POST", "/api/evaluate/AGENT", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL", errorCode(t, body))
}

func TestMethodNotAllowed(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/api/discover", http.StatusMethodNotAllowed},
		{"DELETE", "/api/config", http.StatusMethodNotAllowed},
		{"GET", "/api/evaluate/AGENT", http.StatusMethodNotAllowed},
		{"POST", "/api/trade-ready", http.StatusMethodNotAllowed},
		{"GET", "/api/unknown", http.StatusNotFound},
	}

	router := newTestRouter(&fakeScout{}, nil)
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
