package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/tokenscout/pkg/logger"
)

// Scheduler manages scheduled jobs
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	entries map[string]cron.EntryID
	history map[string]*JobHistory
	mu      sync.RWMutex

	// base context for every run, set by Start
	ctx context.Context

	// Retry configuration
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithRetry sets how often a failed run is retried and the pause between tries
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(s *Scheduler) {
		s.maxRetries = maxRetries
		s.retryDelay = delay
	}
}

// New creates a new scheduler. Cron specs carry a seconds field and a
// run still in progress makes the next tick of the same job a no-op.
func New(log *logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger:     log.WithComponent("scheduler"),
		jobs:       make(map[string]Job),
		entries:    make(map[string]cron.EntryID),
		history:    make(map[string]*JobHistory),
		ctx:        context.Background(),
		maxRetries: 2,
		retryDelay: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobName := job.Name()

	if _, exists := s.jobs[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", jobName, err)
	}

	s.jobs[jobName] = job
	s.entries[jobName] = id
	s.history[jobName] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// RemoveJob unschedules a job. Its history is kept.
func (s *Scheduler) RemoveJob(jobName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[jobName]; !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	s.cron.Remove(s.entries[jobName])
	delete(s.jobs, jobName)
	delete(s.entries, jobName)
	s.logger.WithField("job", jobName).Info("Job removed from scheduler")

	return nil
}

// Start starts the scheduler. Runs stop retrying once ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// RunJob runs a specific job immediately (outside of schedule)
func (s *Scheduler) RunJob(jobName string) error {
	job, err := s.lookup(jobName)
	if err != nil {
		return err
	}

	go s.runJob(job)
	return nil
}

// RunNow runs a job in the caller's goroutine and returns its result
func (s *Scheduler) RunNow(jobName string) (JobResult, error) {
	job, err := s.lookup(jobName)
	if err != nil {
		return JobResult{}, err
	}
	return s.runJob(job), nil
}

func (s *Scheduler) lookup(jobName string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobName]
	if !exists {
		return nil, fmt.Errorf("job %s not found", jobName)
	}
	return job, nil
}

// runJob executes a job with retry logic
func (s *Scheduler) runJob(job Job) JobResult {
	jobName := job.Name()
	startTime := time.Now()

	s.mu.RLock()
	base := s.ctx
	s.mu.RUnlock()

	s.logger.WithField("job", jobName).Info("Job started")

	var lastErr error
	var success bool
	attempts := 0

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		attempts++
		err := runOnce(base, job)
		if err == nil {
			success = true
			break
		}

		lastErr = err
		s.logger.WithFields(map[string]interface{}{
			"job":     jobName,
			"attempt": attempt + 1,
			"error":   err.Error(),
		}).Warn("Job execution failed, retrying")

		// Wait before retry (except on last attempt)
		if attempt < s.maxRetries {
			select {
			case <-base.Done():
				lastErr = fmt.Errorf("%w (cancelled before retry)", err)
				attempt = s.maxRetries
			case <-time.After(s.retryDelay):
			}
		}
	}

	endTime := time.Now()
	duration := endTime.Sub(startTime)

	result := JobResult{
		JobName:   jobName,
		StartTime: startTime,
		EndTime:   endTime,
		Duration:  duration,
		Success:   success,
		Attempts:  attempts,
	}

	if !success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[jobName]; exists {
		history.AddResult(result)
	}
	s.mu.Unlock()

	if success {
		s.logger.WithFields(map[string]interface{}{
			"job":      jobName,
			"duration": duration,
			"attempts": attempts,
		}).Info("Job completed successfully")
	} else {
		s.logger.WithFields(map[string]interface{}{
			"job":      jobName,
			"duration": duration,
			"error":    result.Error,
		}).Error("Job failed after all retries")
	}

	return result
}

// runOnce applies the job's own timeout, if any, to one attempt
func runOnce(base context.Context, job Job) error {
	ctx := base
	if tj, ok := job.(TimeoutJob); ok && tj.Timeout() > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(base, tj.Timeout())
		defer cancel()
	}
	return job.Run(ctx)
}

// GetJobHistory returns the history for a specific job
func (s *Scheduler) GetJobHistory(jobName string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[jobName]
	if !exists {
		return nil, fmt.Errorf("job %s not found", jobName)
	}

	return history, nil
}

// GetAllJobs returns all registered job names, sorted
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]string, 0, len(s.jobs))
	for jobName := range s.jobs {
		jobs = append(jobs, jobName)
	}
	sort.Strings(jobs)

	return jobs
}

// GetJobStats returns statistics for all scheduled jobs
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats)

	for jobName, job := range s.jobs {
		history := s.history[jobName]
		failedResults := history.GetFailedResults()

		st := JobStats{
			JobName:      jobName,
			Schedule:     job.Schedule(),
			TotalRuns:    len(history.Results),
			SuccessCount: len(history.Results) - len(failedResults),
			FailureCount: len(failedResults),
			SuccessRate:  history.GetSuccessRate(),
		}

		if last, ok := history.Last(); ok {
			st.LastRun = &last.StartTime
			if last.Success {
				st.LastSuccess = &last.StartTime
			} else {
				st.LastFailure = &last.StartTime
			}
		}
		if entry := s.cron.Entry(s.entries[jobName]); !entry.Next.IsZero() {
			next := entry.Next
			st.NextRun = &next
		}

		stats[jobName] = st
	}

	return stats
}

// JobStats represents statistics for a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
	NextRun      *time.Time `json:"next_run,omitempty"`
}
