package brain

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
)

// Session is the per-operator pipeline state.
// Only the orchestrator mutates it, always under its mutex.
// ⭐ SSOT: 세션 상태는 여기서만 보관
type Session struct {
	ID        string
	CreatedAt time.Time

	pool     []contracts.Candidate // latest discovery plus ingested alerts
	screened []contracts.Candidate // score descending

	// keyed by Candidate.Key(); no expiry, cleared by Reset
	evaluations map[string]*contracts.EvaluationResult
	diligence   map[string]*contracts.DDResult
	analyzed    map[string]contracts.Candidate

	watchlist []contracts.WatchlistEntry

	lastDiscovery *time.Time
	lastScreening *time.Time
	stats         contracts.SessionStats
}

func newSession(now time.Time) *Session {
	return &Session{
		ID:          uuid.NewString(),
		CreatedAt:   now,
		evaluations: make(map[string]*contracts.EvaluationResult),
		diligence:   make(map[string]*contracts.DDResult),
		analyzed:    make(map[string]contracts.Candidate),
	}
}

// findCandidate resolves identifier against the screened pool, then the
// candidate pool, then previously analyzed candidates
func (s *Session) findCandidate(identifier string) (contracts.Candidate, bool) {
	for _, pool := range [][]contracts.Candidate{s.screened, s.pool} {
		for i := range pool {
			if pool[i].Matches(identifier) {
				return pool[i].Clone(), true
			}
		}
	}
	if c, ok := s.analyzed[contracts.IdentityKey(identifier, "")]; ok {
		return c.Clone(), true
	}
	for _, c := range s.analyzed {
		if c.Matches(identifier) {
			return c.Clone(), true
		}
	}
	return contracts.Candidate{}, false
}

// findEvaluation looks an evaluation up by key, then by symbol
func (s *Session) findEvaluation(identifier string) (string, *contracts.EvaluationResult) {
	key := contracts.IdentityKey(identifier, "")
	if r, ok := s.evaluations[key]; ok {
		return key, r
	}
	for k, r := range s.evaluations {
		if strings.EqualFold(r.Symbol, identifier) {
			return k, r
		}
	}
	return "", nil
}

// upsertPool replaces the entry with the same key or appends c
func (s *Session) upsertPool(c contracts.Candidate) bool {
	key := c.Key()
	for i := range s.pool {
		if s.pool[i].Key() == key {
			s.pool[i] = c
			return true
		}
	}
	s.pool = append(s.pool, c)
	return false
}

// upsertScreened replaces or inserts c and keeps score order
func (s *Session) upsertScreened(c contracts.Candidate) {
	key := c.Key()
	out := s.screened[:0:0]
	for _, existing := range s.screened {
		if existing.Key() != key {
			out = append(out, existing)
		}
	}
	out = append(out, c)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Screening.Score > out[j].Screening.Score
	})
	s.screened = out
}

func (s *Session) watchIndex(identifier string) int {
	key := contracts.IdentityKey(identifier, "")
	for i, w := range s.watchlist {
		if w.Key == key || strings.EqualFold(w.Symbol, identifier) {
			return i
		}
	}
	return -1
}

// Snapshot is the exported session state.
// Timestamps marshal as RFC 3339.
type Snapshot struct {
	SessionID     string                                 `json:"session_id"`
	CreatedAt     time.Time                              `json:"created_at"`
	ExportedAt    time.Time                              `json:"exported_at"`
	Config        pipelineconfig.Options                 `json:"config"`
	ConfigHash    string                                 `json:"config_hash,omitempty"`
	Stats         contracts.SessionStats                 `json:"stats"`
	LastDiscovery *time.Time                             `json:"last_discovery,omitempty"`
	LastScreening *time.Time                             `json:"last_screening,omitempty"`
	Candidates    []contracts.Candidate                  `json:"candidates"`
	Screened      []contracts.Candidate                  `json:"screened"`
	Evaluations   map[string]*contracts.EvaluationResult `json:"evaluations"`
	Diligence     map[string]*contracts.DDResult         `json:"diligence"`
	Watchlist     []contracts.WatchlistEntry             `json:"watchlist"`
}

// JSON renders the snapshot as indented JSON
func (s *Snapshot) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// snapshot copies the session; results are immutable once cached so the
// maps share their pointers
func (s *Session) snapshot(cfg pipelineconfig.Options, now time.Time) *Snapshot {
	snap := &Snapshot{
		SessionID:     s.ID,
		CreatedAt:     s.CreatedAt,
		ExportedAt:    now,
		Config:        cfg.Clone(),
		Stats:         s.stats,
		LastDiscovery: copyTime(s.lastDiscovery),
		LastScreening: copyTime(s.lastScreening),
		Candidates:    cloneAll(s.pool),
		Screened:      cloneAll(s.screened),
		Evaluations:   make(map[string]*contracts.EvaluationResult, len(s.evaluations)),
		Diligence:     make(map[string]*contracts.DDResult, len(s.diligence)),
		Watchlist:     append([]contracts.WatchlistEntry{}, s.watchlist...),
	}
	for k, v := range s.evaluations {
		snap.Evaluations[k] = v
	}
	for k, v := range s.diligence {
		snap.Diligence[k] = v
	}
	if hash, err := pipelineconfig.Hash(cfg); err == nil {
		snap.ConfigHash = hash
	}
	return snap
}

func cloneAll(in []contracts.Candidate) []contracts.Candidate {
	out := make([]contracts.Candidate, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
