package jobs

import (
	"context"

	"github.com/wonny/tokenscout/pkg/logger"
)

// ExpiringCache is a cache that can drop its expired entries
type ExpiringCache interface {
	CleanExpired() int
}

// CacheCleanupJob drops expired discovery and security entries from the
// in-process cache. Redis expires keys by itself.
type CacheCleanupJob struct {
	cache  ExpiringCache
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(c ExpiringCache, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache:  c,
		logger: log,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *CacheCleanupJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	count := j.cache.CleanExpired()

	if count > 0 {
		j.logger.WithField("removed", count).Info("Cache cleanup completed")
	}

	return nil
}
