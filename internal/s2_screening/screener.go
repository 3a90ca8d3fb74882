package s2_screening

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/metrics"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/pkg/logger"
)

// Red-flag score penalties
const (
	majorPenalty = 2.0
	minorPenalty = 0.5
)

// Screener scores candidates and attaches the verdict
// ⭐ SSOT: S2 스크리닝은 여기서만
type Screener struct {
	resolver *SecurityResolver
	limiter  *rate.Limiter
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewScreener creates a screener that waits delay between batch items
func NewScreener(resolver *SecurityResolver, delay time.Duration, m *metrics.Metrics, log *logger.Logger) *Screener {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Screener{
		resolver: resolver,
		limiter:  rate.NewLimiter(limit, 1),
		now:      time.Now,
		metrics:  m,
		logger:   log.WithField("stage", contracts.StageScreening.ShortName()),
	}
}

// WithClock overrides the clock used for listing-age checks
func (s *Screener) WithClock(now func() time.Time) *Screener {
	s.now = now
	return s
}

// ScreenCandidate resolves security data for c and scores it
func (s *Screener) ScreenCandidate(ctx context.Context, c *contracts.Candidate, opts pipelineconfig.Options) contracts.ScreeningResult {
	report := s.resolver.Resolve(ctx, c)
	result := Screen(c, report, opts, s.now())

	flags := make(map[string]string, len(result.RedFlags))
	for _, f := range result.RedFlags {
		flags[f.ID] = string(f.Severity)
	}
	s.metrics.ObserveScreen(result.Passed, flags)

	return result
}

// ScreenBatch screens candidates one by one, pausing between calls to
// respect provider limits. Returned candidates are copies carrying their
// ScreeningResult.
func (s *Screener) ScreenBatch(ctx context.Context, candidates []contracts.Candidate, opts pipelineconfig.Options) ([]contracts.Candidate, error) {
	out := make([]contracts.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("screening interrupted: %w", err)
		}

		screened := c.Clone()
		result := s.ScreenCandidate(ctx, &screened, opts)
		screened.Screening = &result
		out = append(out, screened)

		s.logger.WithFields(map[string]interface{}{
			"symbol":    screened.Symbol,
			"score":     result.Score,
			"passed":    result.Passed,
			"red_flags": len(result.RedFlags),
		}).Debug("Candidate screened")
	}
	return out, nil
}

// Screen is the pure scoring step: same inputs, same result
func Screen(c *contracts.Candidate, report contracts.SecurityReport, opts pipelineconfig.Options, now time.Time) contracts.ScreeningResult {
	result := contracts.ScreeningResult{
		Upside:     ScoreUpside(c, report, opts.Timeline, now),
		Security:   report,
		RedFlags:   DetectRedFlags(c, report, now),
		ScreenedAt: now,
	}

	for _, f := range result.RedFlags {
		if f.Severity == contracts.SeverityCritical {
			result.Score = 0
			result.Passed = false
			result.Reason = "Critical red flag: " + f.Name
			return result
		}
	}

	penalty := majorPenalty*float64(result.CountBySeverity(contracts.SeverityMajor)) +
		minorPenalty*float64(result.CountBySeverity(contracts.SeverityMinor))
	result.Score = clamp(result.Upside.Total-penalty, 0, maxUpside)
	result.Passed = result.Score >= opts.ScreeningThreshold
	if !result.Passed {
		result.Reason = fmt.Sprintf("Score %.2f below threshold %.2f", result.Score, opts.ScreeningThreshold)
	}

	return result
}

// Survivors keeps passed candidates within the red-flag budget, best
// score first (ties keep input order)
func Survivors(screened []contracts.Candidate, opts pipelineconfig.Options) []contracts.Candidate {
	out := make([]contracts.Candidate, 0, len(screened))
	for _, c := range screened {
		if c.Screening == nil || !c.Screening.Passed || len(c.Screening.RedFlags) > opts.MaxRedFlags {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Screening.Score > out[j].Screening.Score
	})
	return out
}
