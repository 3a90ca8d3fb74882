package s3_evaluation

import (
	"strings"

	"github.com/wonny/tokenscout/internal/contracts"
)

// topTierVCs are matched case-insensitively as substrings of backer names
var topTierVCs = []string{
	"a16z",
	"andreessen horowitz",
	"paradigm",
	"sequoia",
	"binance labs",
	"coinbase ventures",
	"polychain",
	"pantera",
	"multicoin",
	"jump",
	"dragonfly",
	"framework",
}

// scoreTeam: background 3 + development 4 + backing 3
func scoreTeam(c *contracts.Candidate) contracts.CategoryScore {
	s := newCategoryScorer(contracts.CategoryTeam)

	switch {
	case c.Development.TeamDoxxed:
		s.add("background", 3, contracts.EvidencePositive, "Team is publicly doxxed")
	case c.Links.HasSocials():
		s.add("background", 1.5, contracts.EvidenceNeutral, "Team is anonymous but active on social channels")
	default:
		s.add("background", 0, contracts.EvidenceNegative, "Anonymous team with no social presence")
	}

	commits := c.Development.CommitCount4Weeks
	switch {
	case commits >= 100:
		s.add("development", 4, contracts.EvidencePositive, "%d commits in the last 4 weeks", commits)
	case commits >= 50:
		s.add("development", 2.5, contracts.EvidencePositive, "%d commits in the last 4 weeks", commits)
	case commits >= 10:
		s.add("development", 1, contracts.EvidenceNeutral, "%d commits in the last 4 weeks", commits)
	case commits > 0:
		s.add("development", 0.5, contracts.EvidenceNeutral, "Only %d commits in the last 4 weeks", commits)
	default:
		s.add("development", 0, contracts.EvidenceNegative, "No public development activity")
	}

	if vc := topTierBacker(c.Development.Backers); vc != "" {
		s.add("backing", 3, contracts.EvidencePositive, "Backed by top-tier investor %s", vc)
	} else if len(c.Development.Backers) > 0 {
		s.add("backing", 1.5, contracts.EvidenceNeutral, "Backed by %s", strings.Join(c.Development.Backers, ", "))
	} else {
		s.add("backing", 0, contracts.EvidenceNeutral, "No known investors")
	}

	return s.result()
}

func topTierBacker(backers []string) string {
	for _, b := range backers {
		name := strings.ToLower(b)
		for _, vc := range topTierVCs {
			if strings.Contains(name, vc) {
				return b
			}
		}
	}
	return ""
}
