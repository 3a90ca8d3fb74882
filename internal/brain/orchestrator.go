package brain

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/metrics"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/internal/s1_discovery"
	"github.com/wonny/tokenscout/internal/s2_screening"
	"github.com/wonny/tokenscout/internal/s3_evaluation"
	"github.com/wonny/tokenscout/internal/s4_diligence"
	"github.com/wonny/tokenscout/pkg/logger"
)

// Orchestrator threads candidates through the four stages and owns the
// session state. Stage work runs outside the lock; results are
// committed in one critical section.
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	// Stage components
	discovery *s1_discovery.Coordinator
	screener  *s2_screening.Screener
	evaluator *s3_evaluation.Evaluator
	diligence *s4_diligence.Engine

	// Optional report persistence (nil = session only)
	sink contracts.ReportSink

	metrics *metrics.Metrics
	logger  *logger.Logger
	now     func() time.Time

	mu      sync.Mutex
	config  pipelineconfig.Options
	session *Session
}

// NewOrchestrator creates a new orchestrator with a fresh session
func NewOrchestrator(
	discovery *s1_discovery.Coordinator,
	screener *s2_screening.Screener,
	evaluator *s3_evaluation.Evaluator,
	diligence *s4_diligence.Engine,
	config pipelineconfig.Options,
	sink contracts.ReportSink,
	m *metrics.Metrics,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		discovery: discovery,
		screener:  screener,
		evaluator: evaluator,
		diligence: diligence,
		sink:      sink,
		metrics:   m,
		logger:    log.WithComponent("brain"),
		now:       time.Now,
		config:    config.Clone(),
		session:   newSession(time.Now()),
	}
}

// WithClock overrides the clock used for session timestamps
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// DiscoverResult is the outcome of a discovery phase
type DiscoverResult struct {
	contracts.PhaseResult
	Candidates  []contracts.Candidate `json:"candidates"`
	Count       int                   `json:"count"`
	PerSource   map[string]int        `json:"per_source"`
	Errors      map[string]string     `json:"errors,omitempty"`
	IgnoredKeys []string              `json:"ignored_keys,omitempty"`
}

// ScreenResult is the outcome of a screening phase
type ScreenResult struct {
	contracts.PhaseResult
	Total      int                   `json:"total"`
	Passed     int                   `json:"passed"`
	Candidates []contracts.Candidate `json:"candidates"`
}

// EvaluateResult is the outcome of one evaluation
type EvaluateResult struct {
	contracts.PhaseResult
	Candidate      *contracts.Candidate        `json:"candidate,omitempty"`
	Evaluation     *contracts.EvaluationResult `json:"evaluation,omitempty"`
	MeetsThreshold bool                        `json:"meets_threshold"`
	ResolvedFrom   string                      `json:"resolved_from,omitempty"` // screened, pool, fetched
}

// DiligenceResult is the outcome of one due-diligence run
type DiligenceResult struct {
	contracts.PhaseResult
	Candidate  *contracts.Candidate        `json:"candidate,omitempty"`
	Evaluation *contracts.EvaluationResult `json:"evaluation,omitempty"`
	Report     *contracts.DDResult         `json:"report,omitempty"`
}

// Discover runs S1 with override merged over the session config for this
// call only, and replaces the candidate pool.
func (o *Orchestrator) Discover(ctx context.Context, override map[string]interface{}) (res *DiscoverResult) {
	started := time.Now()
	res = &DiscoverResult{}
	defer o.settle(contracts.StageDiscovery, started, &res.PhaseResult)

	opts, ignored := pipelineconfig.Merge(o.Config(), override)
	res.IgnoredKeys = ignored
	if err := pipelineconfig.Validate(opts); err != nil {
		res.PhaseResult = contracts.Failed(contracts.StageDiscovery, started, err)
		return res
	}

	o.logger.WithFields(map[string]interface{}{
		"market_cap": opts.MarketCap,
		"sector":     opts.Sector,
		"sources":    opts.Sources,
		"ignored":    ignored,
	}).Info("Running S1: Discovery")

	found := o.discovery.Discover(ctx, opts)

	now := o.now()
	o.withLock(func(s *Session) {
		s.pool = cloneAll(found.Candidates)
		s.lastDiscovery = &now
		s.stats.Discoveries++
		s.stats.CandidatesDiscovered += found.Count
	})

	res.Candidates = found.Candidates
	res.Count = found.Count
	res.PerSource = found.PerSource
	res.Errors = found.Errors
	res.PhaseResult = contracts.Succeeded(contracts.StageDiscovery, started)

	o.logger.WithFields(map[string]interface{}{
		"candidates": res.Count,
		"per_source": res.PerSource,
		"errors":     len(res.Errors),
	}).Info("S1 completed")

	return res
}

// Screen runs S2 over candidates (the current pool when nil) and
// replaces the screened pool with the survivors.
func (o *Orchestrator) Screen(ctx context.Context, candidates []contracts.Candidate) (res *ScreenResult) {
	started := time.Now()
	res = &ScreenResult{}
	defer o.settle(contracts.StageScreening, started, &res.PhaseResult)

	o.mu.Lock()
	opts := o.config.Clone()
	if candidates == nil {
		candidates = cloneAll(o.session.pool)
	}
	o.mu.Unlock()

	if len(candidates) == 0 {
		res.PhaseResult = contracts.Failed(contracts.StageScreening, started, ErrEmptyPool)
		return res
	}

	o.logger.WithField("candidates", len(candidates)).Info("Running S2: Screening")

	screened, err := o.screener.ScreenBatch(ctx, candidates, opts)
	if err != nil {
		res.PhaseResult = contracts.Failed(contracts.StageScreening, started, err)
		return res
	}
	survivors := s2_screening.Survivors(screened, opts)

	now := o.now()
	o.withLock(func(s *Session) {
		s.screened = cloneAll(survivors)
		s.lastScreening = &now
		s.stats.Screened += len(screened)
		s.stats.ScreenPassed += len(survivors)
	})

	res.Total = len(screened)
	res.Passed = len(survivors)
	res.Candidates = survivors
	res.PhaseResult = contracts.Succeeded(contracts.StageScreening, started)

	o.logger.WithFields(map[string]interface{}{
		"screened": res.Total,
		"passed":   res.Passed,
	}).Info("S2 completed")

	return res
}

// Evaluate runs S3 for identifier (address or symbol). The token is looked
// up in the screened pool, then the candidate pool, then fetched from the
// providers. Re-evaluating overwrites the cached entry.
func (o *Orchestrator) Evaluate(ctx context.Context, identifier string) (res *EvaluateResult) {
	started := time.Now()
	res = &EvaluateResult{}
	defer o.settle(contracts.StageEvaluation, started, &res.PhaseResult)

	c, from, err := o.resolve(ctx, identifier)
	if err != nil {
		res.PhaseResult = contracts.Failed(contracts.StageEvaluation, started, err)
		return res
	}

	opts := o.Config()
	eval := o.evaluator.Evaluate(&c, opts)

	o.withLock(func(s *Session) { s.commitEvaluation(&c, eval) })
	o.persistEvaluation(ctx, &c, eval)

	res.Candidate = &c
	res.Evaluation = eval
	res.MeetsThreshold = eval.TotalScore >= opts.EvaluationThreshold
	res.ResolvedFrom = from
	res.PhaseResult = contracts.Succeeded(contracts.StageEvaluation, started)

	o.logger.WithFields(map[string]interface{}{
		"symbol":         c.Symbol,
		"total":          eval.TotalScore,
		"recommendation": eval.Recommendation,
		"resolved_from":  from,
	}).Info("S3 completed")

	return res
}

// RunDD runs S4 for identifier, evaluating first when no cached
// evaluation exists.
func (o *Orchestrator) RunDD(ctx context.Context, identifier string) (res *DiligenceResult) {
	started := time.Now()
	res = &DiligenceResult{}
	defer o.settle(contracts.StageDiligence, started, &res.PhaseResult)

	if strings.TrimSpace(identifier) == "" {
		res.PhaseResult = contracts.Failed(contracts.StageDiligence, started, ErrEmptyIdentifier)
		return res
	}

	var (
		c     contracts.Candidate
		eval  *contracts.EvaluationResult
		found bool
		fresh bool // eval computed here, committed together with the report
	)
	o.mu.Lock()
	opts := o.config.Clone()
	if key, cached := o.session.findEvaluation(identifier); cached != nil {
		c, found = o.session.analyzed[key]
		c = c.Clone()
		eval = cached
	}
	o.mu.Unlock()

	if !found {
		resolved, _, err := o.resolve(ctx, identifier)
		if err != nil {
			res.PhaseResult = contracts.Failed(contracts.StageDiligence, started, err)
			return res
		}
		c = resolved
		eval = o.evaluator.Evaluate(&c, opts)
		fresh = true
	}

	report := o.diligence.RunChecklist(&c, eval, opts)

	o.withLock(func(s *Session) {
		if fresh {
			s.commitEvaluation(&c, eval)
		}
		s.diligence[report.Key] = report
		s.stats.DDRuns++
		for i := range s.watchlist {
			if s.watchlist[i].Key == report.Key {
				s.watchlist[i].DDPassed = report.Passed
			}
		}
	})

	if fresh {
		o.persistEvaluation(ctx, &c, eval)
	}
	if o.sink != nil {
		if err := o.sink.SaveDiligence(ctx, o.SessionID(), &c, report); err != nil {
			o.logger.WithError(err).WithField("symbol", c.Symbol).Warn("Failed to persist DD report")
		}
	}

	res.Candidate = &c
	res.Evaluation = eval
	res.Report = report
	res.PhaseResult = contracts.Succeeded(contracts.StageDiligence, started)

	o.logger.WithFields(map[string]interface{}{
		"symbol":         c.Symbol,
		"pass_rate":      report.PassRate,
		"weighted_score": report.WeightedScore,
		"recommendation": report.Recommendation,
		"allocation":     report.Allocation,
	}).Info("S4 completed")

	return res
}

// TradeReady projects DD reports whose pass rate clears the threshold,
// best weighted score first
func (o *Orchestrator) TradeReady() []contracts.TradeIntent {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]contracts.TradeIntent, 0, len(o.session.diligence))
	for key, report := range o.session.diligence {
		if report.PassRate < o.config.DDThreshold {
			continue
		}
		c := o.session.analyzed[key]
		out = append(out, contracts.TradeIntent{
			Key:            key,
			Symbol:         report.Symbol,
			Address:        c.Address,
			Chain:          c.Chain,
			Score:          report.EvalScore,
			PassRate:       report.PassRate,
			WeightedScore:  report.WeightedScore,
			Recommendation: report.Recommendation,
			Allocation:     report.Allocation,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].WeightedScore != out[j].WeightedScore {
			return out[i].WeightedScore > out[j].WeightedScore
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// resolve finds a candidate for identifier in the session, falling back
// to a provider lookup
func (o *Orchestrator) resolve(ctx context.Context, identifier string) (contracts.Candidate, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return contracts.Candidate{}, "", ErrEmptyIdentifier
	}

	o.mu.Lock()
	for _, src := range []struct {
		name string
		pool []contracts.Candidate
	}{{"screened", o.session.screened}, {"pool", o.session.pool}} {
		for i := range src.pool {
			if src.pool[i].Matches(identifier) {
				c := src.pool[i].Clone()
				o.mu.Unlock()
				return c, src.name, nil
			}
		}
	}
	o.mu.Unlock()

	if fetched := o.discovery.FetchTokenData(ctx, identifier); fetched != nil {
		return *fetched, "fetched", nil
	}
	return contracts.Candidate{}, "", fmt.Errorf("%w: %s", ErrNotFound, identifier)
}

// commitEvaluation stores eval under the candidate key. Callers hold the lock.
func (s *Session) commitEvaluation(c *contracts.Candidate, eval *contracts.EvaluationResult) {
	s.evaluations[eval.Key] = eval
	s.analyzed[eval.Key] = c.Clone()
	s.stats.Evaluations++
	for i := range s.watchlist {
		if s.watchlist[i].Key == eval.Key {
			s.watchlist[i].Score = eval.TotalScore
		}
	}
}

// persistEvaluation hands a committed evaluation to the report sink
func (o *Orchestrator) persistEvaluation(ctx context.Context, c *contracts.Candidate, eval *contracts.EvaluationResult) {
	if o.sink == nil {
		return
	}
	if err := o.sink.SaveEvaluation(ctx, o.SessionID(), c, eval); err != nil {
		o.logger.WithError(err).WithField("symbol", c.Symbol).Warn("Failed to persist evaluation")
	}
}

// withLock runs fn on the session under the mutex. The unlock is deferred
// so a panic inside fn never leaves the session locked.
func (o *Orchestrator) withLock(fn func(s *Session)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(o.session)
	o.metrics.SetSessionSizes(len(o.session.pool), len(o.session.watchlist))
}

// settle is deferred by every phase: it turns a panic into a failure
// result and records the outcome
func (o *Orchestrator) settle(phase contracts.Stage, started time.Time, out *contracts.PhaseResult) {
	if r := recover(); r != nil {
		*out = contracts.Failed(phase, started, fmt.Errorf("internal error: %v", r))
		o.logger.WithFields(map[string]interface{}{
			"phase": phase,
			"panic": fmt.Sprint(r),
		}).Error("Phase aborted")
	}
	if out.Phase == "" {
		out.Phase = phase
	}

	o.metrics.ObservePhase(phase.ShortName(), out.Success, out.Duration)
	if !out.Success {
		o.withLock(func(s *Session) { s.stats.Failures++ })
		o.logger.WithFields(map[string]interface{}{
			"phase": phase,
			"error": out.Error,
		}).Warn("Phase failed")
	}
}

// SessionID returns the current session ID
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.ID
}

// Stats returns the session counters
func (o *Orchestrator) Stats() contracts.SessionStats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.stats
}

// Pool returns a copy of the candidate pool
func (o *Orchestrator) Pool() []contracts.Candidate {
	o.mu.Lock()
	defer o.mu.Unlock()
	return cloneAll(o.session.pool)
}

// Screened returns a copy of the screened pool
func (o *Orchestrator) Screened() []contracts.Candidate {
	o.mu.Lock()
	defer o.mu.Unlock()
	return cloneAll(o.session.screened)
}

// GenerateRunID generates a unique run ID
func GenerateRunID() string {
	return fmt.Sprintf("run_%s_%s", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
}
