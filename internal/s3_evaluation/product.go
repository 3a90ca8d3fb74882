package s3_evaluation

import (
	"github.com/wonny/tokenscout/internal/contracts"
)

// minDescriptionLen separates a real project write-up from a tagline
const minDescriptionLen = 200

// scoreProduct: presence 3 + roadmap 1.5 + innovation 2.5 + security 2.5
func scoreProduct(c *contracts.Candidate) contracts.CategoryScore {
	s := newCategoryScorer(contracts.CategoryProduct)

	hasSite := c.Links.Website != ""
	hasDoc := len(c.Description) >= minDescriptionLen
	var presence float64
	switch {
	case hasSite && hasDoc:
		presence = 2.5
	case hasSite:
		presence = 1.5
	case len(c.Description) > 0:
		presence = 1
	}
	if presence > 0 && (c.Sector == contracts.SectorDeFi || c.Sector == contracts.SectorInfra) {
		presence += 0.5
	}
	switch {
	case presence >= 2.5:
		s.add("presence", presence, contracts.EvidencePositive, "Website and detailed documentation")
	case presence > 0:
		s.add("presence", presence, contracts.EvidenceNeutral, "Partial product presence")
	default:
		s.add("presence", 0, contracts.EvidenceNegative, "No website or description")
	}

	// 로드맵은 자동 검증 불가
	s.add("roadmap", 1.5, contracts.EvidenceNeutral, "Roadmap requires manual review")

	switch c.Sector {
	case contracts.SectorAI:
		s.add("innovation", 2.5, contracts.EvidencePositive, "AI sector, high innovation potential")
	case contracts.SectorInfra, contracts.SectorDeFi, contracts.SectorRWA:
		s.add("innovation", 2, contracts.EvidencePositive, "%s sector with product depth", c.Sector)
	case contracts.SectorGaming:
		s.add("innovation", 1.5, contracts.EvidenceNeutral, "Gaming sector")
	case contracts.SectorMeme:
		s.add("innovation", 0.5, contracts.EvidenceNeutral, "Meme token, little product innovation")
	default:
		s.add("innovation", 1, contracts.EvidenceNeutral, "Unclassified sector")
	}

	report, _ := securityOf(c)
	switch {
	case report.Honeypot():
		s.add("security", 0, contracts.EvidenceNegative, "Contract is a honeypot")
	case !report.Verified:
		s.add("security", 1, contracts.EvidenceNeutral, "Contract security unverified")
	case contractClean(report):
		s.add("security", 2.5, contracts.EvidencePositive, "Verified contract with no security issues")
	default:
		s.add("security", 1, contracts.EvidenceNegative, "Verified contract with security issues")
	}

	return s.result()
}

// contractClean: not mintable, not a proxy and tax within 10%
func contractClean(r contracts.SecurityReport) bool {
	if r.Mintable() || r.Proxy() {
		return false
	}
	if tax, ok := r.MaxTax(); ok && tax > 10 {
		return false
	}
	return true
}
