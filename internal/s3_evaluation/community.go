package s3_evaluation

import (
	"github.com/wonny/tokenscout/internal/contracts"
)

// scoreCommunity: size 3 + engagement 2 + growth 2 + platforms 2 + sentiment 1
func scoreCommunity(c *contracts.Candidate) contracts.CategoryScore {
	s := newCategoryScorer(contracts.CategoryCommunity)

	size := c.Community.Total()
	switch {
	case size >= 100_000:
		s.add("size", 3, contracts.EvidencePositive, "Large community of %d followers and members", size)
	case size >= 10_000:
		s.add("size", 2, contracts.EvidencePositive, "Community of %d followers and members", size)
	case size >= 1_000:
		s.add("size", 1, contracts.EvidenceNeutral, "Small community of %d followers and members", size)
	case size > 0:
		s.add("size", 0.5, contracts.EvidenceNegative, "Tiny community of %d followers and members", size)
	default:
		s.add("size", 0, contracts.EvidenceNeutral, "Community size unknown")
	}

	turnover := ratio(c.Volume24h, c.MarketCap)
	switch {
	case turnover >= 0.5:
		s.add("engagement", 2, contracts.EvidencePositive, "Very active trading: volume/mcap %.2f", turnover)
	case turnover >= 0.2:
		s.add("engagement", 1.5, contracts.EvidencePositive, "Active trading: volume/mcap %.2f", turnover)
	case turnover >= 0.05:
		s.add("engagement", 1, contracts.EvidenceNeutral, "Moderate trading: volume/mcap %.2f", turnover)
	case turnover > 0:
		s.add("engagement", 0.5, contracts.EvidenceNegative, "Thin trading: volume/mcap %.2f", turnover)
	default:
		s.add("engagement", 0, contracts.EvidenceNeutral, "No trading activity data")
	}

	change := c.PriceChange24h
	switch {
	case change > 20:
		s.add("growth", 2, contracts.EvidencePositive, "Strong 24h momentum %+.1f%%", change)
	case change > 5:
		s.add("growth", 1.5, contracts.EvidencePositive, "Positive 24h momentum %+.1f%%", change)
	case change > 0:
		s.add("growth", 1, contracts.EvidenceNeutral, "Flat to positive 24h move %+.1f%%", change)
	case change > -10:
		s.add("growth", 0.5, contracts.EvidenceNeutral, "Mild 24h decline %+.1f%%", change)
	default:
		s.add("growth", 0, contracts.EvidenceNegative, "Sharp 24h decline %+.1f%%", change)
	}

	channels := c.Links.Channels()
	platforms := clamp(0.5*float64(channels), 0, 2)
	if channels == 0 {
		s.add("platforms", 0, contracts.EvidenceNegative, "No web or social channels")
	} else {
		s.add("platforms", platforms, contracts.EvidenceNeutral, "Present on %d channels", channels)
	}

	if c.AIDecision != nil {
		conf := clamp(c.AIDecision.Confidence, 0, 1)
		s.add("sentiment", conf, contracts.EvidenceNeutral, "Scanner AI confidence %.2f (%s)", conf, c.AIDecision.Decision)
	} else {
		s.add("sentiment", 0.5, contracts.EvidenceNeutral, "No sentiment data, neutral assumed")
	}

	return s.result()
}
