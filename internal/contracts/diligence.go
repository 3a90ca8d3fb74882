package contracts

import "time"

// Check is one line of a checklist item
type Check struct {
	Item   string `json:"item"`
	Passed bool   `json:"passed"`
	Note   string `json:"note,omitempty"`
}

// ChecklistItem is one weighted due-diligence entry
type ChecklistItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Passed   bool    `json:"passed"`
	Score    int     `json:"score"`
	MaxScore int     `json:"max_score"`
	Checks   []Check `json:"checks"`
	Notes    string  `json:"notes,omitempty"`
}

// DDRecommendation is the final S4 verdict
type DDRecommendation string

const (
	DDStrongBuy      DDRecommendation = "STRONG BUY"
	DDBuy            DDRecommendation = "BUY"
	DDSpeculativeBuy DDRecommendation = "SPECULATIVE BUY"
	DDWatchlist      DDRecommendation = "WATCHLIST"
	DDAvoid          DDRecommendation = "AVOID"
)

// DDResult is the S4 output for one candidate
// ⭐ SSOT: S4 실사 결과
type DDResult struct {
	Key            string           `json:"key"`
	Symbol         string           `json:"symbol"`
	Items          []ChecklistItem  `json:"items"`
	PassRate       float64          `json:"pass_rate"`
	WeightedScore  float64          `json:"weighted_score"`
	Passed         bool             `json:"passed"`
	EvalScore      float64          `json:"eval_score"`
	Recommendation DDRecommendation `json:"recommendation"`
	Action         string           `json:"action"`
	Allocation     string           `json:"allocation"`
	Confidence     Confidence       `json:"confidence"`
	CompletedAt    time.Time        `json:"completed_at"`
}

// PassedCount returns the number of passed items
func (r *DDResult) PassedCount() int {
	n := 0
	for _, item := range r.Items {
		if item.Passed {
			n++
		}
	}
	return n
}
