package contracts

import "time"

// Severity is the red-flag tier
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// RedFlag is one detected risk condition
type RedFlag struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// UpsideBreakdown holds the five upside sub-scores and their clamped sum
type UpsideBreakdown struct {
	MarketCap float64 `json:"market_cap"`
	Momentum  float64 `json:"momentum"`
	Traction  float64 `json:"traction"`
	Timing    float64 `json:"timing"`
	Sector    float64 `json:"sector"`
	Total     float64 `json:"total"`
}

// ScreeningResult is the S2 verdict for one candidate
// ⭐ SSOT: S2 스크리닝 결과
type ScreeningResult struct {
	Upside     UpsideBreakdown `json:"upside"`
	Security   SecurityReport  `json:"security"`
	RedFlags   []RedFlag       `json:"red_flags"`
	Score      float64         `json:"score"`
	Passed     bool            `json:"passed"`
	Reason     string          `json:"reason,omitempty"`
	ScreenedAt time.Time       `json:"screened_at"`
}

// HasCritical reports whether any critical flag is present
func (r *ScreeningResult) HasCritical() bool {
	for _, f := range r.RedFlags {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// CountBySeverity counts flags of one tier
func (r *ScreeningResult) CountBySeverity(sev Severity) int {
	n := 0
	for _, f := range r.RedFlags {
		if f.Severity == sev {
			n++
		}
	}
	return n
}
