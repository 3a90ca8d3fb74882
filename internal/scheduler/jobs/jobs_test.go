package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tokenscout/internal/brain"
	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/pkg/cache"
	"github.com/wonny/tokenscout/pkg/config"
	"github.com/wonny/tokenscout/pkg/logger"
)

type fakeSweeper struct {
	got brain.RunConfig
	err error
}

func (f *fakeSweeper) Run(_ context.Context, cfg brain.RunConfig) (*brain.RunResult, error) {
	f.got = cfg
	if f.err != nil {
		return &brain.RunResult{RunID: cfg.RunID, Error: f.err}, f.err
	}
	return &brain.RunResult{
		RunID:           cfg.RunID,
		Success:         true,
		CompletedStages: []string{"S1:Discovery", "S2:Screening"},
		Discovery:       &brain.DiscoverResult{Count: 3},
	}, nil
}

func TestDiscoverySweepJob(t *testing.T) {
	cfg := config.SchedulerConfig{SweepSpec: "0 */15 * * * *", EvaluateTopN: 4, SweepTimeout: 2 * time.Minute}

	t.Run("passes scheduler settings", func(t *testing.T) {
		sweeper := &fakeSweeper{}
		job := NewDiscoverySweepJob(sweeper, cfg, logger.NewNop())

		require.NoError(t, job.Run(context.Background()))
		assert.Equal(t, 4, sweeper.got.EvaluateTopN)
		assert.NotEmpty(t, sweeper.got.RunID)
		assert.False(t, sweeper.got.SkipDD)

		assert.Equal(t, "discovery_sweep", job.Name())
		assert.Equal(t, "0 */15 * * * *", job.Schedule())
		assert.Equal(t, 2*time.Minute, job.Timeout())
	})

	t.Run("surfaces run failure", func(t *testing.T) {
		job := NewDiscoverySweepJob(&fakeSweeper{err: errors.New("S1 failed: all sources failed")}, cfg, logger.NewNop())

		err := job.Run(context.Background())
		assert.ErrorContains(t, err, "S1 failed")
	})
}

type fakeRotator struct {
	resets  int
	exports int
}

func (f *fakeRotator) Export() *brain.ExportResult {
	f.exports++
	return &brain.ExportResult{
		PhaseResult: contracts.Succeeded(contracts.StageExport, time.Now()),
		Snapshot:    &brain.Snapshot{SessionID: "s-1", ConfigHash: "h"},
	}
}

func (f *fakeRotator) Reset() contracts.PhaseResult {
	f.resets++
	return contracts.Succeeded(contracts.StageReset, time.Now())
}

type fakeSaver struct {
	saved map[string][]byte
	err   error
}

func (f *fakeSaver) SaveSnapshot(_ context.Context, sessionID, _ string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[sessionID] = payload
	return nil
}

func TestSessionRotationJob(t *testing.T) {
	t.Run("archives then resets", func(t *testing.T) {
		session := &fakeRotator{}
		store := &fakeSaver{}

		require.NoError(t, NewSessionRotationJob(session, store, logger.NewNop()).Run(context.Background()))
		assert.Equal(t, 1, session.resets)
		assert.Contains(t, string(store.saved["s-1"]), `"session_id": "s-1"`)
	})

	t.Run("archive failure keeps the session", func(t *testing.T) {
		session := &fakeRotator{}
		store := &fakeSaver{err: errors.New("db down")}

		err := NewSessionRotationJob(session, store, logger.NewNop()).Run(context.Background())
		assert.ErrorContains(t, err, "archive session")
		assert.Equal(t, 0, session.resets)
	})

	t.Run("without store only resets", func(t *testing.T) {
		session := &fakeRotator{}

		require.NoError(t, NewSessionRotationJob(session, nil, logger.NewNop()).Run(context.Background()))
		assert.Equal(t, 0, session.exports)
		assert.Equal(t, 1, session.resets)
	})
}

func TestCacheCleanupJob(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mem := cache.NewMemory().WithClock(func() time.Time { return now })
	require.NoError(t, mem.Set(context.Background(), "k", 1, time.Second))
	now = now.Add(time.Minute)

	job := NewCacheCleanupJob(mem, logger.NewNop())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 0, mem.Len())
}
