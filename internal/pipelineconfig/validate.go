package pipelineconfig

import (
	"fmt"
	"strings"

	"github.com/wonny/tokenscout/internal/contracts"
)

// ValidationError 검증 실패
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all option constraints
func Validate(o Options) error {
	if _, ok := BucketRange(o.MarketCap); !ok {
		return ValidationError{"market_cap", fmt.Sprintf("unknown bucket %q", o.MarketCap)}
	}
	if o.Sector != "" {
		if _, ok := contracts.ParseSector(string(o.Sector)); !ok {
			return ValidationError{"sector", fmt.Sprintf("unknown sector %q", o.Sector)}
		}
	}
	if _, ok := ParseRisk(string(o.Risk)); !ok {
		return ValidationError{"risk", "must be one of High, Medium, Low"}
	}
	if _, ok := ParseTimeline(string(o.Timeline)); !ok {
		return ValidationError{"timeline", "must be one of Days, Weeks, Months, Years"}
	}
	if o.MaxCandidates <= 0 {
		return ValidationError{"max_candidates", "must be > 0"}
	}
	if len(o.Sources) == 0 {
		return ValidationError{"sources", "at least one source required"}
	}
	for _, s := range o.Sources {
		if !isKnownSource(s) {
			return ValidationError{"sources", fmt.Sprintf("unknown source %q", s)}
		}
	}
	if o.ScreeningThreshold < 0 || o.ScreeningThreshold > 10 {
		return ValidationError{"screening_threshold", "must be in [0, 10]"}
	}
	if o.MaxRedFlags < 0 {
		return ValidationError{"max_red_flags", "must be >= 0"}
	}
	if o.EvaluationThreshold < 0 || o.EvaluationThreshold > 50 {
		return ValidationError{"evaluation_threshold", "must be in [0, 50]"}
	}
	if o.DDThreshold < 0 || o.DDThreshold > 1 {
		return ValidationError{"dd_threshold", "must be in [0, 1]"}
	}
	return nil
}

func isKnownSource(s string) bool {
	for _, known := range KnownSources() {
		if strings.EqualFold(known, s) {
			return true
		}
	}
	return false
}
