package contracts

import "time"

// Category is one of the five evaluation categories
type Category string

const (
	CategoryTeam       Category = "team"
	CategoryCommunity  Category = "community"
	CategoryTokenomics Category = "tokenomics"
	CategoryProduct    Category = "product"
	CategoryMarket     Category = "market"
)

// AllCategories returns the categories in scoring order
func AllCategories() []Category {
	return []Category{CategoryTeam, CategoryCommunity, CategoryTokenomics, CategoryProduct, CategoryMarket}
}

// EvidenceType tags an evidence statement
type EvidenceType string

const (
	EvidencePositive EvidenceType = "positive"
	EvidenceNeutral  EvidenceType = "neutral"
	EvidenceNegative EvidenceType = "negative"
)

// Evidence is one explainability statement emitted by a sub-score
type Evidence struct {
	Category Category     `json:"category"`
	Type     EvidenceType `json:"type"`
	Text     string       `json:"text"`
}

// CategoryScore is a 0-10 category result with its sub-scores
type CategoryScore struct {
	Score     float64            `json:"score"`
	Max       float64            `json:"max"`
	Breakdown map[string]float64 `json:"breakdown"`
	Evidence  []Evidence         `json:"evidence"`
}

// Recommendation is the S3 verdict
type Recommendation string

const (
	RecommendStrongBuy Recommendation = "STRONG_BUY"
	RecommendBuy       Recommendation = "BUY"
	RecommendHold      Recommendation = "HOLD"
	RecommendAvoid     Recommendation = "AVOID"
)

// Confidence is a coarse data-completeness tier
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// EvaluationResult is the S3 output for one candidate
// ⭐ SSOT: S3 평가 결과 (50점 만점)
type EvaluationResult struct {
	Key            string                     `json:"key"`
	Symbol         string                     `json:"symbol"`
	Categories     map[Category]CategoryScore `json:"categories"`
	Evidence       []Evidence                 `json:"evidence"`
	TotalScore     float64                    `json:"total_score"`
	Percentage     float64                    `json:"percentage"`
	Recommendation Recommendation             `json:"recommendation"`
	Confidence     Confidence                 `json:"confidence"`
	EvaluatedAt    time.Time                  `json:"evaluated_at"`
}

// Category returns one category score (zero value if missing)
func (r *EvaluationResult) Category(c Category) CategoryScore {
	return r.Categories[c]
}
