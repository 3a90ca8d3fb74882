package s4_diligence

import (
	"fmt"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
)

// Checklist item IDs
const (
	ItemBasics       = "basics"
	ItemTeam         = "team"
	ItemProduct      = "product"
	ItemCommunity    = "community"
	ItemTokenomics   = "tokenomics"
	ItemRisks        = "risks"
	ItemLegal        = "legal"
	ItemMarket       = "market"
	ItemEntryExit    = "entry_exit"
	ItemPortfolioFit = "portfolio_fit"
)

// minCategoryScore is the per-category bar an item re-checks from S3
const minCategoryScore = 5.0

// input bundles everything an item may look at
type input struct {
	c      *contracts.Candidate
	eval   *contracts.EvaluationResult
	opts   pipelineconfig.Options
	report contracts.SecurityReport
	known  bool // report came from a real provider
}

// item is one weighted checklist entry
type item struct {
	id        string
	name      string
	weight    float64
	threshold int
	run       func(in input) ([]contracts.Check, string)
}

// checklist is evaluated in this order; weights sum to 1.0
// ⭐ SSOT: 실사 항목과 가중치
var checklist = []item{
	{ItemBasics, "Project Basics", 0.10, 2, checkBasics},
	{ItemTeam, "Team", 0.10, 2, checkTeam},
	{ItemProduct, "Product", 0.10, 2, checkProduct},
	{ItemCommunity, "Community", 0.10, 2, checkCommunity},
	{ItemTokenomics, "Tokenomics", 0.15, 3, checkTokenomics},
	{ItemRisks, "Risks", 0.15, 4, checkRisks},
	{ItemLegal, "Legal", 0.05, 2, checkLegal},
	{ItemMarket, "Market", 0.10, 2, checkMarket},
	{ItemEntryExit, "Entry/Exit", 0.10, 2, checkEntryExit},
	{ItemPortfolioFit, "Portfolio Fit", 0.05, 2, checkPortfolioFit},
}

func check(name string, passed bool, note string) contracts.Check {
	return contracts.Check{Item: name, Passed: passed, Note: note}
}

func checkBasics(in input) ([]contracts.Check, string) {
	c := in.c
	return []contracts.Check{
		check("Name and symbol known", c.Name != "" && c.Symbol != "", ""),
		check("Contract identified", c.Address != "" && c.Chain != "", c.Chain),
		check("Project information available", c.Links.Website != "" || c.Description != "", ""),
	}, ""
}

func checkTeam(in input) ([]contracts.Check, string) {
	team := in.eval.Category(contracts.CategoryTeam)
	return []contracts.Check{
		check("Team score acceptable", team.Score >= minCategoryScore, fmt.Sprintf("%.1f/10", team.Score)),
		check("Team identifiable", team.Breakdown["background"] > 0, ""),
		check("Development or backing evident", team.Breakdown["development"] > 0 || team.Breakdown["backing"] > 0, ""),
	}, ""
}

func checkProduct(in input) ([]contracts.Check, string) {
	product := in.eval.Category(contracts.CategoryProduct)
	return []contracts.Check{
		check("Product score acceptable", product.Score >= minCategoryScore, fmt.Sprintf("%.1f/10", product.Score)),
		check("Product presence", product.Breakdown["presence"] > 0, ""),
		check("Innovative sector", product.Breakdown["innovation"] >= 1.5, string(in.c.Sector)),
	}, ""
}

func checkCommunity(in input) ([]contracts.Check, string) {
	community := in.eval.Category(contracts.CategoryCommunity)
	return []contracts.Check{
		check("Community score acceptable", community.Score >= minCategoryScore, fmt.Sprintf("%.1f/10", community.Score)),
		check("Multiple channels", in.c.Links.Channels() >= 2, fmt.Sprintf("%d channels", in.c.Links.Channels())),
		check("Audience evident", community.Breakdown["size"] > 0 || community.Breakdown["engagement"] >= 1, ""),
	}, ""
}

func checkTokenomics(in input) ([]contracts.Check, string) {
	tok := in.eval.Category(contracts.CategoryTokenomics)

	concentrationOK := in.report.TopHolderPercent == nil || *in.report.TopHolderPercent <= 20
	tax, taxKnown := in.report.MaxTax()
	taxOK := !taxKnown || tax <= 10

	var notes string
	if !in.known {
		notes = "Holder and tax data unverified"
	}

	return []contracts.Check{
		check("Tokenomics score acceptable", tok.Score >= minCategoryScore, fmt.Sprintf("%.1f/10", tok.Score)),
		check("No whale concentration", concentrationOK, ""),
		check("Tax within 10%", taxOK, ""),
		check("Circulating supply reasonable", tok.Breakdown["supply"] >= 1, ""),
	}, notes
}

// checkRisks must pass all four checks
func checkRisks(in input) ([]contracts.Check, string) {
	critical := in.c.Screening != nil && in.c.Screening.HasCritical()

	var notes string
	if !in.report.Verified {
		notes = "Security data unverified, contract checks passed by default"
	}

	return []contracts.Check{
		check("Not a honeypot", !in.report.Honeypot(), ""),
		check("No mint function", !in.report.Mintable(), ""),
		check("Not an upgradeable proxy", !in.report.Proxy(), ""),
		check("No critical red flags", !critical, ""),
	}, notes
}

func checkLegal(in input) ([]contracts.Check, string) {
	const manual = "Manual verification needed"
	return []contracts.Check{
		check("Regulatory status", true, manual),
		check("Jurisdiction exposure", true, manual),
	}, "Legal review cannot be automated"
}

func checkMarket(in input) ([]contracts.Check, string) {
	market := in.eval.Category(contracts.CategoryMarket)
	return []contracts.Check{
		check("Market score acceptable", market.Score >= minCategoryScore, fmt.Sprintf("%.1f/10", market.Score)),
		check("Liquidity at least $50K", in.c.Liquidity >= 50_000, fmt.Sprintf("$%.0f", in.c.Liquidity)),
		check("Volume at least $10K", in.c.Volume24h >= 10_000, fmt.Sprintf("$%.0f", in.c.Volume24h)),
	}, ""
}

func checkEntryExit(in input) ([]contracts.Check, string) {
	t := turnover(in.c)
	return []contracts.Check{
		check("Enough liquidity to exit", in.c.Liquidity >= 10_000, fmt.Sprintf("$%.0f", in.c.Liquidity)),
		check("Volume/market cap at least 0.05", t >= 0.05, fmt.Sprintf("%.3f", t)),
		check("Exit plan defined", true, "Manual verification needed"),
	}, ""
}

func checkPortfolioFit(in input) ([]contracts.Check, string) {
	riskOK, riskNote := riskCompatible(in)

	timelineOK := true
	timelineNote := string(in.opts.Timeline)
	if in.opts.Timeline == pipelineconfig.TimelineDays {
		timelineOK = turnover(in.c) >= 0.1
		timelineNote = "Days timeline needs volume/market cap of 0.1"
	}

	return []contracts.Check{
		check("Evaluation is not AVOID", in.eval.Recommendation != contracts.RecommendAvoid, string(in.eval.Recommendation)),
		check("Fits risk appetite", riskOK, riskNote),
		check("Fits timeline", timelineOK, timelineNote),
	}, ""
}

// riskCompatible: High accepts anything, Medium needs at least medium
// confidence, Low needs high confidence and a $1M+ market cap
func riskCompatible(in input) (bool, string) {
	switch in.opts.Risk {
	case pipelineconfig.RiskHigh:
		return true, "High risk appetite"
	case pipelineconfig.RiskLow:
		ok := in.eval.Confidence == contracts.ConfidenceHigh && in.c.MarketCap >= 1_000_000
		return ok, fmt.Sprintf("Low risk: confidence %s, market cap $%.0f", in.eval.Confidence, in.c.MarketCap)
	default:
		return in.eval.Confidence != contracts.ConfidenceLow, fmt.Sprintf("Medium risk: confidence %s", in.eval.Confidence)
	}
}

func turnover(c *contracts.Candidate) float64 {
	if c.MarketCap <= 0 {
		return 0
	}
	return c.Volume24h / c.MarketCap
}
