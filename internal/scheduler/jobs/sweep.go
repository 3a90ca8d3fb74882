package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/tokenscout/internal/brain"
	"github.com/wonny/tokenscout/pkg/config"
	"github.com/wonny/tokenscout/pkg/logger"
)

// Sweeper runs one full pipeline pass
type Sweeper interface {
	Run(ctx context.Context, cfg brain.RunConfig) (*brain.RunResult, error)
}

// DiscoverySweepJob runs S1 → S4 on a fixed schedule
// ⭐ SSOT: 주기적 탐색 스케줄은 이 Job에서만
type DiscoverySweepJob struct {
	sweeper  Sweeper
	schedule string
	topN     int
	timeout  time.Duration
	logger   *logger.Logger
}

// NewDiscoverySweepJob creates a sweep job from the scheduler settings
func NewDiscoverySweepJob(sweeper Sweeper, cfg config.SchedulerConfig, log *logger.Logger) *DiscoverySweepJob {
	return &DiscoverySweepJob{
		sweeper:  sweeper,
		schedule: cfg.SweepSpec,
		topN:     cfg.EvaluateTopN,
		timeout:  cfg.SweepTimeout,
		logger:   log,
	}
}

// Name returns the job name
func (j *DiscoverySweepJob) Name() string {
	return "discovery_sweep"
}

// Schedule returns the configured cron spec (with seconds)
func (j *DiscoverySweepJob) Schedule() string {
	return j.schedule
}

// Timeout bounds one sweep attempt
func (j *DiscoverySweepJob) Timeout() time.Duration {
	return j.timeout
}

// Run executes one sweep
func (j *DiscoverySweepJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled discovery sweep")

	result, err := j.sweeper.Run(ctx, brain.RunConfig{
		RunID:        brain.GenerateRunID(),
		EvaluateTopN: j.topN,
	})
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fields := map[string]interface{}{
		"run_id":      result.RunID,
		"stages":      len(result.CompletedStages),
		"evaluated":   len(result.Evaluations),
		"diligence":   len(result.Diligence),
		"trade_ready": len(result.TradeReady),
	}
	if result.Discovery != nil {
		fields["discovered"] = result.Discovery.Count
		fields["source_errors"] = len(result.Discovery.Errors)
	}
	j.logger.WithFields(fields).Info("Discovery sweep completed")

	return nil
}
