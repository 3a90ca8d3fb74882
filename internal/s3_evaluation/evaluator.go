package s3_evaluation

import (
	"time"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/metrics"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/pkg/logger"
)

// maxTotalScore is five categories of 10 points
const maxTotalScore = 50.0

// Recommendation thresholds on the 50-point total
const (
	strongBuyScore = 40.0
	buyScore       = 35.0
	holdScore      = 25.0
)

// Evaluator scores candidates across the five categories
// ⭐ SSOT: S3 평가는 여기서만
type Evaluator struct {
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewEvaluator creates a new evaluator
func NewEvaluator(m *metrics.Metrics, log *logger.Logger) *Evaluator {
	return &Evaluator{
		now:     time.Now,
		metrics: m,
		logger:  log.WithField("stage", contracts.StageEvaluation.ShortName()),
	}
}

// WithClock overrides the evaluation timestamp source
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// Evaluate is deterministic for a given candidate and options
func (e *Evaluator) Evaluate(c *contracts.Candidate, opts pipelineconfig.Options) *contracts.EvaluationResult {
	categories := map[contracts.Category]contracts.CategoryScore{
		contracts.CategoryTeam:       scoreTeam(c),
		contracts.CategoryCommunity:  scoreCommunity(c),
		contracts.CategoryTokenomics: scoreTokenomics(c),
		contracts.CategoryProduct:    scoreProduct(c),
		contracts.CategoryMarket:     scoreMarket(c),
	}

	result := &contracts.EvaluationResult{
		Key:         c.Key(),
		Symbol:      c.Symbol,
		Categories:  categories,
		EvaluatedAt: e.now(),
	}

	for _, cat := range contracts.AllCategories() {
		score := categories[cat]
		result.TotalScore += score.Score
		result.Evidence = append(result.Evidence, score.Evidence...)
	}
	result.Percentage = result.TotalScore / maxTotalScore * 100
	result.Recommendation = Recommend(result.TotalScore, opts.Risk)
	result.Confidence = confidence(c)

	e.metrics.ObserveEvaluation(string(result.Recommendation))
	e.logger.WithFields(map[string]interface{}{
		"symbol":         result.Symbol,
		"total":          result.TotalScore,
		"recommendation": result.Recommendation,
		"confidence":     result.Confidence,
	}).Debug("Candidate evaluated")

	return result
}

// Recommend maps a total score to a recommendation, then applies the
// risk-appetite adjustment
func Recommend(total float64, risk pipelineconfig.Risk) contracts.Recommendation {
	var rec contracts.Recommendation
	switch {
	case total >= strongBuyScore:
		rec = contracts.RecommendStrongBuy
	case total >= buyScore:
		rec = contracts.RecommendBuy
	case total >= holdScore:
		rec = contracts.RecommendHold
	default:
		rec = contracts.RecommendAvoid
	}

	pct := total / maxTotalScore * 100
	switch {
	case risk == pipelineconfig.RiskHigh && rec == contracts.RecommendHold && pct > 55:
		rec = contracts.RecommendBuy
	case risk == pipelineconfig.RiskLow && rec == contracts.RecommendBuy && pct < 75:
		rec = contracts.RecommendHold
	}
	return rec
}

// confidence counts independent data signals behind the scores
func confidence(c *contracts.Candidate) contracts.Confidence {
	signals := 0
	if report, ok := securityOf(c); ok && report.Verified {
		signals++
	}
	if c.Links.HasSocials() {
		signals++
	}
	if c.Development.CommitCount4Weeks > 0 || c.Development.TeamDoxxed || len(c.Development.Backers) > 0 {
		signals++
	}
	if c.ListedAt != nil {
		signals++
	}
	if _, ok := holdersOf(c); ok {
		signals++
	}

	switch {
	case signals >= 4:
		return contracts.ConfidenceHigh
	case signals >= 2:
		return contracts.ConfidenceMedium
	default:
		return contracts.ConfidenceLow
	}
}
