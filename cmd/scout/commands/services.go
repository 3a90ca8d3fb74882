package commands

import (
	"context"
	"errors"

	"github.com/wonny/tokenscout/internal/alerts"
	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/scheduler"
	"github.com/wonny/tokenscout/internal/scheduler/jobs"
	"github.com/wonny/tokenscout/pkg/cache"
)

// newListener builds the alert bridge listener feeding the session
func (a *app) newListener() *alerts.Listener {
	log := a.log.WithComponent("listen")

	return alerts.NewListener(a.cfg.AlertBridge, func(ctx context.Context, alert *contracts.AlertPayload) {
		res := a.orchestrator.IngestAlert(ctx, alert)
		if !res.Success {
			log.WithFields(map[string]interface{}{
				"address": alert.Token.Address,
				"chain":   alert.Token.Chain,
				"error":   res.Error,
			}).Warn("Alert rejected")
			return
		}
		if res.Evaluation != nil && res.Evaluation.TotalScore >= a.orchestrator.Config().EvaluationThreshold {
			log.WithFields(map[string]interface{}{
				"symbol":         res.Evaluation.Symbol,
				"score":          res.Evaluation.TotalScore,
				"recommendation": res.Evaluation.Recommendation,
			}).Info("Alert token meets the evaluation threshold")
		}
	}, a.metrics, a.log)
}

// runListener runs the listener in the background. A listener that
// gives up is logged; the process keeps serving.
func (a *app) runListener(ctx context.Context) {
	listener := a.newListener()
	go func() {
		err := listener.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			a.log.WithError(err).Error("Alert bridge listener exited")
		}
	}()
}

// newScheduler registers the sweep, rotation and cache cleanup jobs
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	s := scheduler.New(a.log)

	sweep := jobs.NewDiscoverySweepJob(a.orchestrator, a.cfg.Scheduler, a.log)
	if err := s.AddJob(sweep); err != nil {
		return nil, err
	}

	var saver jobs.SnapshotSaver
	if a.store != nil {
		saver = a.store
	}
	if err := s.AddJob(jobs.NewSessionRotationJob(a.orchestrator, saver, a.log)); err != nil {
		return nil, err
	}

	if mem, ok := a.cache.(*cache.Memory); ok {
		if err := s.AddJob(jobs.NewCacheCleanupJob(mem, a.log)); err != nil {
			return nil, err
		}
	}

	return s, nil
}
