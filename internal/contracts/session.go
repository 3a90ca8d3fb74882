package contracts

import "time"

// WatchlistEntry is an operator-curated candidate reference
type WatchlistEntry struct {
	Key      string    `json:"key"`
	Symbol   string    `json:"symbol"`
	Name     string    `json:"name"`
	AddedAt  time.Time `json:"added_at"`
	Notes    string    `json:"notes,omitempty"`
	Score    float64   `json:"score"`
	DDPassed bool      `json:"dd_passed"`
}

// TradeIntent is the projection handed to the downstream execution system
type TradeIntent struct {
	Key            string           `json:"key"`
	Symbol         string           `json:"symbol"`
	Address        string           `json:"address"`
	Chain          string           `json:"chain"`
	Score          float64          `json:"score"`
	PassRate       float64          `json:"pass_rate"`
	WeightedScore  float64          `json:"weighted_score"`
	Recommendation DDRecommendation `json:"recommendation"`
	Allocation     string           `json:"allocation"`
}

// SessionStats are the run counters of one session
type SessionStats struct {
	Discoveries          int `json:"discoveries"`
	CandidatesDiscovered int `json:"candidates_discovered"`
	Screened             int `json:"screened"`
	ScreenPassed         int `json:"screen_passed"`
	Evaluations          int `json:"evaluations"`
	DDRuns               int `json:"dd_runs"`
	AlertsIngested       int `json:"alerts_ingested"`
	Failures             int `json:"failures"`
}
