package s3_evaluation

import (
	"fmt"
	"math"

	"github.com/wonny/tokenscout/internal/contracts"
)

// maxCategoryScore is the cap of every category
const maxCategoryScore = 10.0

// categoryScorer accumulates sub-scores and evidence for one category
type categoryScorer struct {
	category  contracts.Category
	order     []string
	breakdown map[string]float64
	evidence  []contracts.Evidence
}

func newCategoryScorer(category contracts.Category) *categoryScorer {
	return &categoryScorer{
		category:  category,
		breakdown: make(map[string]float64),
	}
}

// add records a sub-score with the evidence that justifies it
func (s *categoryScorer) add(name string, score float64, kind contracts.EvidenceType, format string, args ...interface{}) {
	if _, seen := s.breakdown[name]; !seen {
		s.order = append(s.order, name)
	}
	s.breakdown[name] = score
	s.evidence = append(s.evidence, contracts.Evidence{
		Category: s.category,
		Type:     kind,
		Text:     fmt.Sprintf(format, args...),
	})
}

func (s *categoryScorer) result() contracts.CategoryScore {
	// summed in insertion order so results are bit-for-bit reproducible
	var sum float64
	for _, name := range s.order {
		sum += s.breakdown[name]
	}
	return contracts.CategoryScore{
		Score:     clamp(sum, 0, maxCategoryScore),
		Max:       maxCategoryScore,
		Breakdown: s.breakdown,
		Evidence:  s.evidence,
	}
}

// securityOf returns the screened report, else the pre-attached one
func securityOf(c *contracts.Candidate) (contracts.SecurityReport, bool) {
	if c.Screening != nil {
		return c.Screening.Security, true
	}
	if c.Security != nil {
		return *c.Security, true
	}
	return contracts.UnverifiedReport(), false
}

// holdersOf prefers the security report's holder count
func holdersOf(c *contracts.Candidate) (int, bool) {
	if report, ok := securityOf(c); ok && report.HolderCount != nil {
		return *report.HolderCount, true
	}
	return c.Holders, c.Holders > 0
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// ratio returns a/b, or 0 when b is not positive
func ratio(a, b float64) float64 {
	if b <= 0 || math.IsNaN(a) || math.IsNaN(b) {
		return 0
	}
	return a / b
}
