package s3_evaluation

import (
	"math"

	"github.com/wonny/tokenscout/internal/contracts"
)

// scoreMarket: timing 2.5 + competition 2.5 + strength 2.5 + liquidity 2.5
func scoreMarket(c *contracts.Candidate) contracts.CategoryScore {
	s := newCategoryScorer(contracts.CategoryMarket)

	switch {
	case c.Sector.IsHot():
		s.add("timing", 2.5, contracts.EvidencePositive, "%s is a hot narrative", c.Sector)
	case c.Sector.IsMedium():
		s.add("timing", 1.5, contracts.EvidenceNeutral, "%s is an established narrative", c.Sector)
	default:
		s.add("timing", 1, contracts.EvidenceNeutral, "No narrative tailwind")
	}

	mcap := c.MarketCap
	switch {
	case mcap > 0 && mcap < 10_000_000 && c.Sector.IsHot():
		s.add("competition", 2.5, contracts.EvidencePositive, "Early small cap in a hot sector")
	case mcap > 0 && mcap < 10_000_000:
		s.add("competition", 2, contracts.EvidencePositive, "Small cap with room against peers")
	case mcap > 0 && mcap < 100_000_000:
		s.add("competition", 1.5, contracts.EvidenceNeutral, "Mid cap facing established peers")
	default:
		s.add("competition", 1, contracts.EvidenceNeutral, "Crowded or unknown competitive position")
	}

	var strength float64
	switch {
	case c.Volume24h >= 1_000_000:
		strength += 1.5
	case c.Volume24h >= 100_000:
		strength += 1
	case c.Volume24h >= 10_000:
		strength += 0.5
	}
	holders, _ := holdersOf(c)
	switch {
	case holders >= 1000:
		strength += 1
	case holders >= 300:
		strength += 0.5
	}
	strength = math.Min(strength, 2.5)
	kind := contracts.EvidenceNeutral
	if strength >= 2 {
		kind = contracts.EvidencePositive
	} else if strength == 0 {
		kind = contracts.EvidenceNegative
	}
	s.add("strength", strength, kind, "24h volume $%.0f with %d holders", c.Volume24h, holders)

	liq := c.Liquidity
	switch {
	case liq >= 500_000:
		s.add("liquidity", 2.5, contracts.EvidencePositive, "Deep liquidity $%.0f", liq)
	case liq >= 100_000:
		s.add("liquidity", 2, contracts.EvidencePositive, "Good liquidity $%.0f", liq)
	case liq >= 50_000:
		s.add("liquidity", 1.5, contracts.EvidenceNeutral, "Moderate liquidity $%.0f", liq)
	case liq >= 10_000:
		s.add("liquidity", 1, contracts.EvidenceNegative, "Thin liquidity $%.0f", liq)
	case liq > 0:
		s.add("liquidity", 0.5, contracts.EvidenceNegative, "Very thin liquidity $%.0f", liq)
	default:
		s.add("liquidity", 0, contracts.EvidenceNegative, "No liquidity data")
	}

	return s.result()
}
