package s3_evaluation

import (
	"strings"

	"github.com/wonny/tokenscout/internal/contracts"
)

// utilityKeywords indicate a token with a functional role
var utilityKeywords = []string{
	"utility", "governance", "staking", "stake", "fee", "fees", "revenue",
	"burn", "buyback", "gas", "payment", "collateral", "rewards",
}

// scoreTokenomics: supply 2 + concentration 2 + utility 2 + tax 2 + headroom 2
func scoreTokenomics(c *contracts.Candidate) contracts.CategoryScore {
	s := newCategoryScorer(contracts.CategoryTokenomics)
	report, _ := securityOf(c)

	supply := c.MaxSupply
	if supply <= 0 {
		supply = c.TotalSupply
	}
	circ := ratio(c.CirculatingSupply, supply)
	switch {
	case c.CirculatingSupply <= 0 || supply <= 0:
		s.add("supply", 1, contracts.EvidenceNeutral, "Supply schedule unknown")
	case circ >= 0.8:
		s.add("supply", 2, contracts.EvidencePositive, "%.0f%% of supply circulating, little unlock pressure", circ*100)
	case circ >= 0.5:
		s.add("supply", 1.5, contracts.EvidencePositive, "%.0f%% of supply circulating", circ*100)
	case circ >= 0.25:
		s.add("supply", 1, contracts.EvidenceNeutral, "%.0f%% of supply circulating", circ*100)
	default:
		s.add("supply", 0.5, contracts.EvidenceNegative, "Only %.0f%% of supply circulating, heavy unlocks ahead", circ*100)
	}

	if report.TopHolderPercent == nil {
		s.add("concentration", 1, contracts.EvidenceNeutral, "Holder distribution unknown")
	} else {
		top := *report.TopHolderPercent
		switch {
		case top < 5:
			s.add("concentration", 2, contracts.EvidencePositive, "Well distributed: top holder %.1f%%", top)
		case top < 10:
			s.add("concentration", 1.5, contracts.EvidencePositive, "Top holder %.1f%%", top)
		case top < 20:
			s.add("concentration", 1, contracts.EvidenceNeutral, "Top holder %.1f%%", top)
		case top < 50:
			s.add("concentration", 0.5, contracts.EvidenceNegative, "Concentrated: top holder %.1f%%", top)
		default:
			s.add("concentration", 0, contracts.EvidenceNegative, "Top holder controls %.1f%%", top)
		}
	}

	switch {
	case c.Sector == contracts.SectorMeme:
		s.add("utility", 1, contracts.EvidenceNeutral, "Meme token, utility not expected")
	case hasUtilityKeyword(c):
		s.add("utility", 2, contracts.EvidencePositive, "Token has a described functional role")
	default:
		s.add("utility", 0.5, contracts.EvidenceNegative, "No clear token utility")
	}

	if tax, ok := report.MaxTax(); !ok {
		s.add("tax", 1, contracts.EvidenceNeutral, "Transfer tax unknown")
	} else {
		switch {
		case tax == 0:
			s.add("tax", 2, contracts.EvidencePositive, "No transfer tax")
		case tax <= 5:
			s.add("tax", 1.5, contracts.EvidenceNeutral, "Low tax %.1f%%", tax)
		case tax <= 10:
			s.add("tax", 1, contracts.EvidenceNegative, "Tax %.1f%%", tax)
		default:
			s.add("tax", 0, contracts.EvidenceNegative, "High tax %.1f%%", tax)
		}
	}

	mcap := c.MarketCap
	switch {
	case mcap <= 0:
		s.add("headroom", 0, contracts.EvidenceNeutral, "Market cap unknown")
	case mcap < 1_000_000:
		s.add("headroom", 2, contracts.EvidencePositive, "Micro cap $%.0f, large headroom", mcap)
	case mcap < 10_000_000:
		s.add("headroom", 1.5, contracts.EvidencePositive, "Small cap $%.0f", mcap)
	case mcap < 100_000_000:
		s.add("headroom", 1, contracts.EvidenceNeutral, "Mid cap $%.0f", mcap)
	case mcap < 1_000_000_000:
		s.add("headroom", 0.5, contracts.EvidenceNeutral, "Large cap $%.0f", mcap)
	default:
		s.add("headroom", 0.25, contracts.EvidenceNegative, "Mega cap $%.0f, limited headroom", mcap)
	}

	return s.result()
}

func hasUtilityKeyword(c *contracts.Candidate) bool {
	text := " " + strings.ToLower(c.Description+" "+strings.Join(c.Categories, " ")) + " "
	text = strings.NewReplacer(",", " ", ".", " ", ";", " ", "(", " ", ")", " ").Replace(text)
	for _, kw := range utilityKeywords {
		if strings.Contains(text, " "+kw+" ") {
			return true
		}
	}
	return false
}
