package s4_diligence

import (
	"time"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/metrics"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/pkg/logger"
)

// tier is one rung of the recommendation ladder
type tier struct {
	rec        contracts.DDRecommendation
	minPass    float64
	minEval    float64
	action     string
	allocation string
}

// ladder is checked top-down; the first satisfied rung wins
var ladder = []tier{
	{contracts.DDStrongBuy, 0.9, 40, "Enter full position", "3-5% of portfolio"},
	{contracts.DDBuy, 0.8, 35, "Enter position", "2-3% of portfolio"},
	{contracts.DDSpeculativeBuy, 0.7, 30, "Enter small speculative position", "0.5-1% of portfolio"},
	{contracts.DDWatchlist, 0.6, 25, "Monitor, no entry yet", "0% (monitor only)"},
}

var avoid = tier{rec: contracts.DDAvoid, action: "Do not enter", allocation: "0%"}

// lowRiskDowngrade moves aggressive tiers one rung down for cautious operators
var lowRiskDowngrade = map[contracts.DDRecommendation]contracts.DDRecommendation{
	contracts.DDBuy:            contracts.DDSpeculativeBuy,
	contracts.DDSpeculativeBuy: contracts.DDWatchlist,
}

// Decision is the outcome of the recommendation ladder
type Decision struct {
	Recommendation contracts.DDRecommendation
	Action         string
	Allocation     string
}

// Recommend walks the ladder, then applies the low-risk downgrade.
// Action and allocation always follow the final tier.
func Recommend(passRate, evalScore float64, risk pipelineconfig.Risk) Decision {
	chosen := avoid
	for _, t := range ladder {
		if passRate >= t.minPass && evalScore >= t.minEval {
			chosen = t
			break
		}
	}

	if risk == pipelineconfig.RiskLow {
		if down, ok := lowRiskDowngrade[chosen.rec]; ok {
			chosen = tierOf(down)
		}
	}

	return Decision{Recommendation: chosen.rec, Action: chosen.action, Allocation: chosen.allocation}
}

func tierOf(rec contracts.DDRecommendation) tier {
	for _, t := range ladder {
		if t.rec == rec {
			return t
		}
	}
	return avoid
}

// Engine runs the due-diligence checklist
// ⭐ SSOT: S4 실사는 여기서만
type Engine struct {
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewEngine creates a new DD engine
func NewEngine(m *metrics.Metrics, log *logger.Logger) *Engine {
	return &Engine{
		now:     time.Now,
		metrics: m,
		logger:  log.WithField("stage", contracts.StageDiligence.ShortName()),
	}
}

// WithClock overrides the completion timestamp source
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// RunChecklist evaluates the ten items against the candidate and its
// evaluation. Deterministic for fixed inputs.
func (e *Engine) RunChecklist(c *contracts.Candidate, eval *contracts.EvaluationResult, opts pipelineconfig.Options) *contracts.DDResult {
	in := input{c: c, eval: eval, opts: opts}
	switch {
	case c.Screening != nil:
		in.report, in.known = c.Screening.Security, true
	case c.Security != nil:
		in.report, in.known = *c.Security, true
	default:
		in.report = contracts.UnverifiedReport()
	}

	result := &contracts.DDResult{
		Key:         c.Key(),
		Symbol:      c.Symbol,
		Items:       make([]contracts.ChecklistItem, 0, len(checklist)),
		EvalScore:   eval.TotalScore,
		CompletedAt: e.now(),
	}

	passed := 0
	for _, it := range checklist {
		checks, notes := it.run(in)
		score := 0
		for _, ch := range checks {
			if ch.Passed {
				score++
			}
		}

		entry := contracts.ChecklistItem{
			ID:       it.id,
			Name:     it.name,
			Weight:   it.weight,
			Passed:   score >= it.threshold,
			Score:    score,
			MaxScore: len(checks),
			Checks:   checks,
			Notes:    notes,
		}
		if entry.Passed {
			passed++
			result.WeightedScore += it.weight
		}
		result.Items = append(result.Items, entry)
	}

	result.PassRate = float64(passed) / float64(len(checklist))
	result.Passed = result.PassRate >= opts.DDThreshold

	decision := Recommend(result.PassRate, result.EvalScore, opts.Risk)
	result.Recommendation = decision.Recommendation
	result.Action = decision.Action
	result.Allocation = decision.Allocation
	result.Confidence = ddConfidence(result.PassRate)

	e.metrics.ObserveDiligence(string(result.Recommendation))
	e.logger.WithFields(map[string]interface{}{
		"symbol":         result.Symbol,
		"pass_rate":      result.PassRate,
		"weighted_score": result.WeightedScore,
		"recommendation": result.Recommendation,
	}).Debug("Due diligence completed")

	return result
}

func ddConfidence(passRate float64) contracts.Confidence {
	switch {
	case passRate >= 0.8:
		return contracts.ConfidenceHigh
	case passRate >= 0.6:
		return contracts.ConfidenceMedium
	default:
		return contracts.ConfidenceLow
	}
}
