package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/tokenscout/internal/brain"
	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/pkg/logger"
)

// Rotator exports and resets the scouting session
type Rotator interface {
	Export() *brain.ExportResult
	Reset() contracts.PhaseResult
}

// SnapshotSaver persists an exported session
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, sessionID, configHash string, payload []byte) error
}

// SessionRotationJob archives the session and starts a fresh one, which
// keeps the evaluation and DD caches of a long-running process bounded
// to one day of sweeps.
type SessionRotationJob struct {
	session Rotator
	store   SnapshotSaver
	logger  *logger.Logger
}

// NewSessionRotationJob creates a rotation job. store may be nil, in
// which case the session is reset without being archived.
func NewSessionRotationJob(session Rotator, store SnapshotSaver, log *logger.Logger) *SessionRotationJob {
	return &SessionRotationJob{
		session: session,
		store:   store,
		logger:  log,
	}
}

// Name returns the job name
func (j *SessionRotationJob) Name() string {
	return "session_rotation"
}

// Schedule returns the cron schedule (daily at midnight, with seconds)
func (j *SessionRotationJob) Schedule() string {
	return "0 0 0 * * *"
}

// Run archives then resets the session. A failed archive keeps the
// session so the next attempt can retry it.
func (j *SessionRotationJob) Run(ctx context.Context) error {
	if j.store != nil {
		res := j.session.Export()
		if !res.Success {
			return fmt.Errorf("export session: %s", res.Error)
		}

		payload, err := res.Snapshot.JSON()
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		if err := j.store.SaveSnapshot(ctx, res.Snapshot.SessionID, res.Snapshot.ConfigHash, payload); err != nil {
			return fmt.Errorf("archive session: %w", err)
		}

		j.logger.WithFields(map[string]interface{}{
			"session_id":  res.Snapshot.SessionID,
			"candidates":  len(res.Snapshot.Candidates),
			"evaluations": len(res.Snapshot.Evaluations),
		}).Info("Session archived")
	}

	if reset := j.session.Reset(); !reset.Success {
		return fmt.Errorf("reset session: %s", reset.Error)
	}
	return nil
}
