package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/tokenscout/internal/contracts"
)

// RunConfig holds configuration for a full sweep
type RunConfig struct {
	RunID        string
	Override     map[string]interface{} // discovery override for this run
	EvaluateTopN int                    // screened candidates to evaluate, 0 = all
	SkipDD       bool                   // stop after S3
}

// RunResult holds the results of a complete sweep
type RunResult struct {
	RunID           string                  `json:"run_id"`
	SessionID       string                  `json:"session_id"`
	Success         bool                    `json:"success"`
	Error           error                   `json:"-"`
	CompletedStages []string                `json:"completed_stages"`
	Discovery       *DiscoverResult         `json:"discovery,omitempty"`
	Screening       *ScreenResult           `json:"screening,omitempty"`
	Evaluations     []*EvaluateResult       `json:"evaluations,omitempty"`
	Diligence       []*DiligenceResult      `json:"diligence,omitempty"`
	TradeReady      []contracts.TradeIntent `json:"trade_ready"`
	Duration        time.Duration           `json:"duration_ns"`
}

// Run executes the whole pipeline once
// S1 → S2 → S3 (top N) → S4 (evaluations above threshold)
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()
	if config.RunID == "" {
		config.RunID = GenerateRunID()
	}

	result := &RunResult{
		RunID:           config.RunID,
		SessionID:       o.SessionID(),
		CompletedStages: make([]string, 0, 4),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":         config.RunID,
		"session_id":     result.SessionID,
		"evaluate_top_n": config.EvaluateTopN,
		"skip_dd":        config.SkipDD,
	}).Info("Starting pipeline run")

	// S1: Discovery
	result.Discovery = o.Discover(ctx, config.Override)
	if !result.Discovery.Success {
		result.Error = fmt.Errorf("S1 failed: %s", result.Discovery.Error)
		return result, result.Error
	}
	result.CompletedStages = append(result.CompletedStages, "S1:Discovery")

	if result.Discovery.Count == 0 {
		o.logger.WithField("run_id", config.RunID).Warn("Discovery returned no candidates")
		return o.finishRun(result, startTime), nil
	}

	// S2: Screening
	result.Screening = o.Screen(ctx, nil)
	if !result.Screening.Success {
		result.Error = fmt.Errorf("S2 failed: %s", result.Screening.Error)
		return result, result.Error
	}
	result.CompletedStages = append(result.CompletedStages, "S2:Screening")

	// S3: Evaluation
	targets := result.Screening.Candidates
	if config.EvaluateTopN > 0 && len(targets) > config.EvaluateTopN {
		targets = targets[:config.EvaluateTopN]
	}
	for _, c := range targets {
		if err := ctx.Err(); err != nil {
			result.Error = fmt.Errorf("S3 interrupted: %w", err)
			return result, result.Error
		}
		result.Evaluations = append(result.Evaluations, o.Evaluate(ctx, c.Key()))
	}
	result.CompletedStages = append(result.CompletedStages, "S3:Evaluation")

	// S4: Due Diligence
	if config.SkipDD {
		o.logger.Info("Skipping S4:Diligence")
		return o.finishRun(result, startTime), nil
	}
	for _, eval := range result.Evaluations {
		if !eval.Success || !eval.MeetsThreshold {
			continue
		}
		if err := ctx.Err(); err != nil {
			result.Error = fmt.Errorf("S4 interrupted: %w", err)
			return result, result.Error
		}
		result.Diligence = append(result.Diligence, o.RunDD(ctx, eval.Candidate.Key()))
	}
	result.CompletedStages = append(result.CompletedStages, "S4:Diligence")

	return o.finishRun(result, startTime), nil
}

func (o *Orchestrator) finishRun(result *RunResult, startTime time.Time) *RunResult {
	result.TradeReady = o.TradeReady()
	result.Success = true
	result.Duration = time.Since(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":      result.RunID,
		"duration":    result.Duration.Seconds(),
		"stages":      len(result.CompletedStages),
		"evaluated":   len(result.Evaluations),
		"trade_ready": len(result.TradeReady),
	}).Info("Pipeline run completed successfully")

	return result
}
