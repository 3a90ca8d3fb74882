package brain

import (
	"context"
	"time"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/s2_screening"
)

// Alert outcomes reported to metrics
const (
	AlertAccepted = "accepted"
	AlertRejected = "rejected"
	AlertInvalid  = "invalid"
)

// AlertResult is the outcome of ingesting one external alert
type AlertResult struct {
	contracts.PhaseResult
	Candidate  *contracts.Candidate        `json:"candidate,omitempty"`
	Replaced   bool                        `json:"replaced"`
	Skipped    bool                        `json:"skipped,omitempty"` // chain not allowed
	RiskScore  int                         `json:"risk_score"`
	Screening  *contracts.ScreeningResult  `json:"screening,omitempty"`
	Evaluation *contracts.EvaluationResult `json:"evaluation,omitempty"`
}

// IngestAlert turns a scanner alert into a pool candidate, skipping
// discovery. With the auto flags set it screens the candidate and, when
// it survives, evaluates it.
func (o *Orchestrator) IngestAlert(ctx context.Context, payload *contracts.AlertPayload) (res *AlertResult) {
	started := time.Now()
	res = &AlertResult{}
	defer o.settle(contracts.StageAlert, started, &res.PhaseResult)

	if payload == nil {
		res.PhaseResult = contracts.Failed(contracts.StageAlert, started, contracts.ErrInvalidAddress)
		o.metrics.ObserveAlert(AlertInvalid)
		return res
	}
	if err := payload.Validate(); err != nil {
		res.PhaseResult = contracts.Failed(contracts.StageAlert, started, err)
		o.metrics.ObserveAlert(AlertInvalid)
		return res
	}

	opts := o.Config()
	c := payload.ToCandidate(o.now())
	if !opts.ChainAllowed(c.Chain) {
		o.metrics.ObserveAlert(AlertRejected)
		res.Candidate = &c
		res.Skipped = true
		res.PhaseResult = contracts.Succeeded(contracts.StageAlert, started)
		o.logger.WithFields(map[string]interface{}{
			"address": c.Address,
			"chain":   c.Chain,
		}).Info("Alert skipped: chain not allowed")
		return res
	}

	if payload.AIDecision != nil {
		res.RiskScore = payload.AIDecision.RiskScore
	} else {
		res.RiskScore = contracts.RiskScore(payload.Metrics)
	}

	// Stage work first; the session only changes once all of it succeeded
	var survived bool
	if opts.AutoScreenAlerts {
		result := o.screener.ScreenCandidate(ctx, &c, opts)
		c.Screening = &result
		res.Screening = &result

		survived = len(s2_screening.Survivors([]contracts.Candidate{c}, opts)) == 1
		if survived && opts.AutoEvaluateAlerts {
			res.Evaluation = o.evaluator.Evaluate(&c, opts)
		}
	}

	o.withLock(func(s *Session) {
		res.Replaced = s.upsertPool(c.Clone())
		s.stats.AlertsIngested++
		if res.Screening != nil {
			s.stats.Screened++
			if survived {
				s.stats.ScreenPassed++
				s.upsertScreened(c.Clone())
			}
		}
		if res.Evaluation != nil {
			s.commitEvaluation(&c, res.Evaluation)
		}
	})
	o.metrics.ObserveAlert(AlertAccepted)

	if res.Evaluation != nil {
		o.persistEvaluation(ctx, &c, res.Evaluation)
	}

	res.Candidate = &c
	res.PhaseResult = contracts.Succeeded(contracts.StageAlert, started)

	fields := map[string]interface{}{
		"symbol":     c.Symbol,
		"address":    c.Address,
		"chain":      c.Chain,
		"risk_score": res.RiskScore,
		"replaced":   res.Replaced,
	}
	if res.Screening != nil {
		fields["screen_score"] = res.Screening.Score
		fields["screen_passed"] = res.Screening.Passed
	}
	if res.Evaluation != nil {
		fields["eval_total"] = res.Evaluation.TotalScore
	}
	o.logger.WithFields(fields).Info("Alert ingested")

	return res
}
