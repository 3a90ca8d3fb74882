package s3_evaluation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/pkg/logger"
)

var evalNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func newEvaluator() *Evaluator {
	return NewEvaluator(nil, logger.NewNop()).WithClock(func() time.Time { return evalNow })
}

func strongCandidate() contracts.Candidate {
	listed := evalNow.Add(-10 * 24 * time.Hour)
	return contracts.Candidate{
		Symbol:            "NEURO",
		Name:              "Neuro Agents",
		Chain:             "ethereum",
		Address:           "0x2222222222222222222222222222222222222222",
		MarketCap:         1_000_000,
		Volume24h:         600_000,
		PriceChange24h:    25,
		Liquidity:         200_000,
		CirculatingSupply: 900,
		MaxSupply:         1000,
		Sector:            contracts.SectorAI,
		Description:       "Neuro is a network of autonomous trading agents. " + strings.Repeat("Holders stake tokens to rent agent capacity. ", 5),
		Links: contracts.Links{
			Website:  "https://neuro.ai",
			Twitter:  "https://x.com/neuro",
			Telegram: "https://t.me/neuro",
			Discord:  "https://discord.gg/neuro",
		},
		Community:   contracts.Community{TwitterFollowers: 90_000, TelegramMembers: 15_000},
		Development: contracts.Development{CommitCount4Weeks: 120, TeamDoxxed: true, Backers: []string{"Paradigm"}},
		ListedAt:    &listed,
		AIDecision:  &contracts.AIDecision{Decision: "BUY", Confidence: 0.9},
		Screening: &contracts.ScreeningResult{
			Security: contracts.SecurityReport{
				Verified:         true,
				IsHoneypot:       contracts.Bool(false),
				IsMintable:       contracts.Bool(false),
				IsProxy:          contracts.Bool(false),
				BuyTax:           contracts.Float(0),
				SellTax:          contracts.Float(0),
				HolderCount:      contracts.Int(1500),
				TopHolderPercent: contracts.Float(3),
			},
			Passed: true,
		},
	}
}

func TestEvaluate_StrongCandidate(t *testing.T) {
	c := strongCandidate()
	r := newEvaluator().Evaluate(&c, pipelineconfig.Defaults())

	assert.Equal(t, c.Key(), r.Key)
	assert.InDelta(t, 10.0, r.Category(contracts.CategoryTeam).Score, 1e-9)
	assert.InDelta(t, 9.9, r.Category(contracts.CategoryCommunity).Score, 1e-9)
	assert.InDelta(t, 9.5, r.Category(contracts.CategoryTokenomics).Score, 1e-9)
	assert.InDelta(t, 9.0, r.Category(contracts.CategoryProduct).Score, 1e-9)
	assert.InDelta(t, 9.0, r.Category(contracts.CategoryMarket).Score, 1e-9)
	assert.InDelta(t, 47.4, r.TotalScore, 1e-9)
	assert.InDelta(t, 94.8, r.Percentage, 1e-9)
	assert.Equal(t, contracts.RecommendStrongBuy, r.Recommendation)
	assert.Equal(t, contracts.ConfidenceHigh, r.Confidence)
	assert.Equal(t, evalNow, r.EvaluatedAt)
	assert.NotEmpty(t, r.Evidence)
}

func TestEvaluate_EmptyCandidate(t *testing.T) {
	c := contracts.Candidate{Symbol: "NULL"}
	r := newEvaluator().Evaluate(&c, pipelineconfig.Defaults())

	assert.InDelta(t, 0.0, r.Category(contracts.CategoryTeam).Score, 1e-9)
	assert.InDelta(t, 1.0, r.Category(contracts.CategoryCommunity).Score, 1e-9)
	assert.InDelta(t, 3.5, r.Category(contracts.CategoryTokenomics).Score, 1e-9)
	assert.InDelta(t, 3.5, r.Category(contracts.CategoryProduct).Score, 1e-9)
	assert.InDelta(t, 2.0, r.Category(contracts.CategoryMarket).Score, 1e-9)
	assert.InDelta(t, 10.0, r.TotalScore, 1e-9)
	assert.Equal(t, contracts.RecommendAvoid, r.Recommendation)
	assert.Equal(t, contracts.ConfidenceLow, r.Confidence)
}

func TestEvaluate_CategoriesClampedOnExtremeInput(t *testing.T) {
	c := strongCandidate()
	c.MarketCap = -1
	c.Volume24h = 1e18
	c.PriceChange24h = -1e9
	c.AIDecision.Confidence = 7

	r := newEvaluator().Evaluate(&c, pipelineconfig.Defaults())
	for _, cat := range contracts.AllCategories() {
		score := r.Category(cat).Score
		assert.GreaterOrEqual(t, score, 0.0, cat)
		assert.LessOrEqual(t, score, 10.0, cat)
	}
	assert.Equal(t, 1.0, r.Category(contracts.CategoryCommunity).Breakdown["sentiment"])
}

func TestEvaluate_Deterministic(t *testing.T) {
	c := strongCandidate()
	e := newEvaluator()
	assert.Equal(t, e.Evaluate(&c, pipelineconfig.Defaults()), e.Evaluate(&c, pipelineconfig.Defaults()))
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		risk  pipelineconfig.Risk
		want  contracts.Recommendation
	}{
		{"strong buy", 40, pipelineconfig.RiskMedium, contracts.RecommendStrongBuy},
		{"buy", 36, pipelineconfig.RiskMedium, contracts.RecommendBuy},
		{"hold", 30, pipelineconfig.RiskMedium, contracts.RecommendHold},
		{"avoid", 24.9, pipelineconfig.RiskMedium, contracts.RecommendAvoid},
		{"high risk upgrades hold", 28, pipelineconfig.RiskHigh, contracts.RecommendBuy},
		{"high risk keeps weak hold", 27, pipelineconfig.RiskHigh, contracts.RecommendHold},
		{"low risk downgrades buy", 36, pipelineconfig.RiskLow, contracts.RecommendHold},
		{"low risk keeps strong buy tier", 38, pipelineconfig.RiskLow, contracts.RecommendBuy},
		{"low risk leaves strong buy", 45, pipelineconfig.RiskLow, contracts.RecommendStrongBuy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommend(tt.total, tt.risk))
		})
	}
}

func TestScoreTeam(t *testing.T) {
	c := contracts.Candidate{
		Links:       contracts.Links{Telegram: "https://t.me/x"},
		Development: contracts.Development{CommitCount4Weeks: 55, Backers: []string{"Some Angel DAO"}},
	}
	score := scoreTeam(&c)

	assert.Equal(t, 1.5, score.Breakdown["background"])
	assert.Equal(t, 2.5, score.Breakdown["development"])
	assert.Equal(t, 1.5, score.Breakdown["backing"])
	assert.Equal(t, 5.5, score.Score)
	require.Len(t, score.Evidence, 3)
	assert.Equal(t, contracts.CategoryTeam, score.Evidence[0].Category)
}

func TestTopTierBacker(t *testing.T) {
	assert.Equal(t, "Binance Labs Portfolio", topTierBacker([]string{"Unknown", "Binance Labs Portfolio"}))
	assert.Equal(t, "", topTierBacker([]string{"Local Angels"}))
}

func TestScoreTokenomics_Branches(t *testing.T) {
	c := contracts.Candidate{
		Sector:            contracts.SectorMeme,
		CirculatingSupply: 100,
		TotalSupply:       1000,
		MarketCap:         2_000_000_000,
		Security: &contracts.SecurityReport{
			Verified:         true,
			TopHolderPercent: contracts.Float(60),
			SellTax:          contracts.Float(12),
		},
	}
	score := scoreTokenomics(&c)

	assert.Equal(t, 0.5, score.Breakdown["supply"])
	assert.Equal(t, 0.0, score.Breakdown["concentration"])
	assert.Equal(t, 1.0, score.Breakdown["utility"])
	assert.Equal(t, 0.0, score.Breakdown["tax"])
	assert.Equal(t, 0.25, score.Breakdown["headroom"])
}

func TestScoreProduct_Security(t *testing.T) {
	base := contracts.Candidate{Sector: contracts.SectorDeFi, Links: contracts.Links{Website: "https://x.fi"}}

	honeypot := base
	honeypot.Security = &contracts.SecurityReport{Verified: true, IsHoneypot: contracts.Bool(true)}
	assert.Equal(t, 0.0, scoreProduct(&honeypot).Breakdown["security"])

	proxy := base
	proxy.Security = &contracts.SecurityReport{Verified: true, IsProxy: contracts.Bool(true)}
	assert.Equal(t, 1.0, scoreProduct(&proxy).Breakdown["security"])

	unverified := base
	p := scoreProduct(&unverified)
	assert.Equal(t, 1.0, p.Breakdown["security"])
	assert.Equal(t, 2.0, p.Breakdown["presence"], "website plus DeFi bonus")
	assert.Equal(t, 2.0, p.Breakdown["innovation"])
}

func TestScoreMarket_StrengthCap(t *testing.T) {
	c := contracts.Candidate{Volume24h: 5_000_000, Holders: 5000, MarketCap: 500_000_000}
	m := scoreMarket(&c)
	assert.Equal(t, 2.5, m.Breakdown["strength"])
	assert.Equal(t, 1.0, m.Breakdown["competition"])
	assert.Equal(t, 0.0, m.Breakdown["liquidity"])
}
