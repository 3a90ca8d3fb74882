package s4_diligence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/internal/s3_evaluation"
	"github.com/wonny/tokenscout/pkg/logger"
)

var ddNow = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

func newEngine() *Engine {
	return NewEngine(nil, logger.NewNop()).WithClock(func() time.Time { return ddNow })
}

func goodCandidate() contracts.Candidate {
	listed := ddNow.Add(-14 * 24 * time.Hour)
	return contracts.Candidate{
		Symbol:            "BLD",
		Name:              "Builder Protocol",
		Chain:             "base",
		Address:           "0x3333333333333333333333333333333333333333",
		MarketCap:         3_000_000,
		Volume24h:         900_000,
		PriceChange24h:    12,
		Liquidity:         400_000,
		CirculatingSupply: 600,
		TotalSupply:       1000,
		Sector:            contracts.SectorInfra,
		Description:       "Builder is a rollup toolkit. Token holders receive fees from sequencer revenue.",
		Links:             contracts.Links{Website: "https://bld.xyz", Twitter: "https://x.com/bld", GitHub: "https://github.com/bld"},
		Community:         contracts.Community{TwitterFollowers: 20_000},
		Development:       contracts.Development{CommitCount4Weeks: 80, Backers: []string{"Dragonfly"}},
		ListedAt:          &listed,
		Screening: &contracts.ScreeningResult{
			Passed: true,
			Security: contracts.SecurityReport{
				Verified:         true,
				IsHoneypot:       contracts.Bool(false),
				IsMintable:       contracts.Bool(false),
				IsProxy:          contracts.Bool(false),
				BuyTax:           contracts.Float(0),
				SellTax:          contracts.Float(0),
				HolderCount:      contracts.Int(2500),
				TopHolderPercent: contracts.Float(6),
			},
		},
	}
}

func evaluate(c *contracts.Candidate, opts pipelineconfig.Options) *contracts.EvaluationResult {
	return s3_evaluation.NewEvaluator(nil, logger.NewNop()).Evaluate(c, opts)
}

func TestWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, it := range checklist {
		sum += it.weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Len(t, checklist, 10)
}

func TestRecommend_Scenarios(t *testing.T) {
	medium := Recommend(0.85, 36, pipelineconfig.RiskMedium)
	assert.Equal(t, contracts.DDBuy, medium.Recommendation)
	assert.Equal(t, "2-3% of portfolio", medium.Allocation)

	low := Recommend(0.85, 36, pipelineconfig.RiskLow)
	assert.Equal(t, contracts.DDSpeculativeBuy, low.Recommendation)
	assert.Equal(t, "0.5-1% of portfolio", low.Allocation, "allocation follows the downgraded tier")
}

func TestRecommend_Ladder(t *testing.T) {
	tests := []struct {
		name     string
		passRate float64
		eval     float64
		risk     pipelineconfig.Risk
		want     contracts.DDRecommendation
		alloc    string
	}{
		{"strong buy", 0.9, 40, pipelineconfig.RiskMedium, contracts.DDStrongBuy, "3-5% of portfolio"},
		{"strong pass rate but buy score", 0.95, 36, pipelineconfig.RiskHigh, contracts.DDBuy, "2-3% of portfolio"},
		{"speculative", 0.7, 30, pipelineconfig.RiskMedium, contracts.DDSpeculativeBuy, "0.5-1% of portfolio"},
		{"watchlist", 0.6, 25, pipelineconfig.RiskMedium, contracts.DDWatchlist, "0% (monitor only)"},
		{"avoid", 0.5, 45, pipelineconfig.RiskMedium, contracts.DDAvoid, "0%"},
		{"low risk speculative to watchlist", 0.7, 30, pipelineconfig.RiskLow, contracts.DDWatchlist, "0% (monitor only)"},
		{"low risk keeps strong buy", 0.9, 40, pipelineconfig.RiskLow, contracts.DDStrongBuy, "3-5% of portfolio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Recommend(tt.passRate, tt.eval, tt.risk)
			assert.Equal(t, tt.want, d.Recommendation)
			assert.Equal(t, tt.alloc, d.Allocation)
			assert.NotEmpty(t, d.Action)
		})
	}
}

func TestRunChecklist_GoodCandidate(t *testing.T) {
	c := goodCandidate()
	opts := pipelineconfig.Defaults()
	eval := evaluate(&c, opts)

	r := newEngine().RunChecklist(&c, eval, opts)

	require.Len(t, r.Items, 10)
	assert.Equal(t, c.Key(), r.Key)
	assert.Equal(t, eval.TotalScore, r.EvalScore)
	assert.Equal(t, ddNow, r.CompletedAt)
	for _, it := range r.Items {
		assert.True(t, it.Passed, it.ID)
	}
	assert.Equal(t, 1.0, r.PassRate)
	assert.InDelta(t, 1.0, r.WeightedScore, 1e-9)
	assert.True(t, r.Passed)
	assert.Equal(t, contracts.ConfidenceHigh, r.Confidence)
}

func TestRunChecklist_WeightedScoreCountsPassedOnly(t *testing.T) {
	c := goodCandidate()
	c.Screening.Security.IsMintable = contracts.Bool(true)
	c.Liquidity = 20_000
	opts := pipelineconfig.Defaults()

	r := newEngine().RunChecklist(&c, evaluate(&c, opts), opts)

	var expected float64
	for _, it := range r.Items {
		if it.Passed {
			expected += it.Weight
		}
	}
	assert.InDelta(t, expected, r.WeightedScore, 1e-9)
	assert.Equal(t, r.PassedCount(), int(r.PassRate*10+0.5))

	risks := findItem(t, r, ItemRisks)
	assert.False(t, risks.Passed, "risks needs all four checks")
	assert.Equal(t, 3, risks.Score)
}

func TestRunChecklist_UnknownSecurityPassesRisksWithNote(t *testing.T) {
	c := goodCandidate()
	c.Screening = nil
	opts := pipelineconfig.Defaults()

	r := newEngine().RunChecklist(&c, evaluate(&c, opts), opts)

	risks := findItem(t, r, ItemRisks)
	assert.True(t, risks.Passed)
	assert.NotEmpty(t, risks.Notes)
}

func TestRunChecklist_ManualItems(t *testing.T) {
	c := contracts.Candidate{Symbol: "EMPTY"}
	opts := pipelineconfig.Defaults()
	eval := &contracts.EvaluationResult{Recommendation: contracts.RecommendAvoid, Confidence: contracts.ConfidenceLow}

	r := newEngine().RunChecklist(&c, eval, opts)

	legal := findItem(t, r, ItemLegal)
	assert.True(t, legal.Passed)
	for _, ch := range legal.Checks {
		assert.Equal(t, "Manual verification needed", ch.Note)
	}

	fit := findItem(t, r, ItemPortfolioFit)
	assert.False(t, fit.Passed)

	assert.Equal(t, contracts.DDAvoid, r.Recommendation)
	assert.Equal(t, contracts.ConfidenceLow, r.Confidence)
	assert.False(t, r.Passed)
}

func TestRunChecklist_DaysTimelineNeedsTurnover(t *testing.T) {
	c := goodCandidate()
	c.Volume24h = 200_000 // turnover 0.067
	opts := pipelineconfig.Defaults()
	opts.Timeline = pipelineconfig.TimelineDays

	r := newEngine().RunChecklist(&c, evaluate(&c, opts), opts)

	fit := findItem(t, r, ItemPortfolioFit)
	assert.False(t, fit.Checks[2].Passed)
	assert.True(t, fit.Passed, "two of three still pass")
}

func TestRunChecklist_Deterministic(t *testing.T) {
	c := goodCandidate()
	opts := pipelineconfig.Defaults()
	eval := evaluate(&c, opts)
	e := newEngine()

	assert.Equal(t, e.RunChecklist(&c, eval, opts), e.RunChecklist(&c, eval, opts))
}

func findItem(t *testing.T, r *contracts.DDResult, id string) contracts.ChecklistItem {
	t.Helper()
	for _, it := range r.Items {
		if it.ID == id {
			return it
		}
	}
	require.FailNow(t, "item not found", id)
	return contracts.ChecklistItem{}
}
