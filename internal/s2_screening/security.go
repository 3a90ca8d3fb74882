package s2_screening

import (
	"context"
	"time"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/metrics"
	"github.com/wonny/tokenscout/pkg/cache"
	"github.com/wonny/tokenscout/pkg/logger"
	"github.com/wonny/tokenscout/pkg/redis"
)

// Security report origins (metrics label)
const (
	OriginAttached    = "attached"
	OriginAIDecision  = "ai_decision"
	OriginUnsupported = "unsupported_chain"
	OriginCache       = "cache"
	OriginProvider    = "provider"
)

// SecurityResolver picks the security report for a candidate
// ⭐ SSOT: 보안 리포트 확보 순서 (첨부 → AI 판단 → 캐시 → 프로바이더)
type SecurityResolver struct {
	provider contracts.SecurityProvider
	cache    cache.Store
	ttl      time.Duration
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewSecurityResolver creates a resolver. provider and store may be nil.
func NewSecurityResolver(provider contracts.SecurityProvider, store cache.Store, m *metrics.Metrics, log *logger.Logger) *SecurityResolver {
	return &SecurityResolver{
		provider: provider,
		cache:    store,
		ttl:      redis.TTLSecurity,
		metrics:  m,
		logger:   log.WithComponent("security"),
	}
}

// Resolve never fails. Pre-attached data and AI decisions skip the
// network; non-EVM chains get the unverified default.
func (r *SecurityResolver) Resolve(ctx context.Context, c *contracts.Candidate) contracts.SecurityReport {
	report, origin := r.resolve(ctx, c)
	r.metrics.ObserveSecurity(origin)
	return report
}

func (r *SecurityResolver) resolve(ctx context.Context, c *contracts.Candidate) (contracts.SecurityReport, string) {
	if c.Security != nil {
		return *c.Security, OriginAttached
	}

	if c.AIDecision != nil {
		report := contracts.UnverifiedReport()
		report.Provider = OriginAIDecision
		return report, OriginAIDecision
	}

	if _, ok := contracts.EVMChainID(c.Chain); !ok || c.Address == "" || r.provider == nil {
		return contracts.UnverifiedReport(), OriginUnsupported
	}

	key := redis.SecurityKey(contracts.CanonicalChain(c.Chain), c.Address)
	if r.cache != nil {
		var cached contracts.SecurityReport
		if hit, err := r.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, OriginCache
		}
	}

	report := r.provider.FetchReport(ctx, c.Address, c.Chain)
	if report.Verified && r.cache != nil {
		if err := r.cache.Set(ctx, key, report, r.ttl); err != nil {
			r.logger.WithError(err).WithField("key", key).Warn("Security cache write failed")
		}
	}

	return report, OriginProvider
}
