package s1_discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/metrics"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/pkg/breaker"
	"github.com/wonny/tokenscout/pkg/cache"
	"github.com/wonny/tokenscout/pkg/logger"
	"github.com/wonny/tokenscout/pkg/redis"
)

// DiscoverResult is the merged output of one discovery run
type DiscoverResult struct {
	Candidates []contracts.Candidate `json:"candidates"`
	Count      int                   `json:"count"`
	PerSource  map[string]int        `json:"perSource"`
	Errors     map[string]string     `json:"errors,omitempty"`
}

// Coordinator fans discovery out to every enabled adapter
// ⭐ SSOT: S1 후보 발굴은 여기서만
type Coordinator struct {
	adapters map[string]Adapter
	breakers map[string]*gobreaker.CircuitBreaker
	cache    cache.Store
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewCoordinator creates a coordinator over the given adapters.
// cache may be nil to disable result caching.
func NewCoordinator(adapters []Adapter, store cache.Store, m *metrics.Metrics, log *logger.Logger) *Coordinator {
	c := &Coordinator{
		adapters: make(map[string]Adapter, len(adapters)),
		breakers: make(map[string]*gobreaker.CircuitBreaker, len(adapters)),
		cache:    store,
		cacheTTL: redis.TTLDiscovery,
		metrics:  m,
		logger:   log.WithField("stage", contracts.StageDiscovery.ShortName()),
	}

	for _, a := range adapters {
		name := a.Source()
		settings := breaker.DefaultSettings()
		settings.OnStateChange = func(name string, _, to gobreaker.State) {
			m.SetBreakerState(name, int(to))
		}
		c.adapters[name] = a
		c.breakers[name] = breaker.New("discovery:"+name, settings, c.logger)
	}

	return c
}

// Sources lists the registered adapter names, sorted
func (c *Coordinator) Sources() []string {
	names := make([]string, 0, len(c.adapters))
	for name := range c.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type sourceResult struct {
	source     string
	candidates []contracts.Candidate
	err        error
}

// Discover queries every enabled source concurrently, waits for all of them
// and merges the results in source order (first occurrence wins).
func (c *Coordinator) Discover(ctx context.Context, opts pipelineconfig.Options) *DiscoverResult {
	rng := opts.Range()

	var sources []string
	for _, s := range opts.Sources {
		sources = append(sources, strings.ToLower(s))
	}

	results := make([]sourceResult, len(sources))
	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(i int, source string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = sourceResult{source: source, err: fmt.Errorf("adapter panic: %v", r)}
				}
			}()
			candidates, err := c.fetchSource(ctx, source, rng, opts)
			results[i] = sourceResult{source: source, candidates: candidates, err: err}
		}(i, source)
	}
	wg.Wait()

	result := &DiscoverResult{
		PerSource: make(map[string]int, len(sources)),
		Errors:    make(map[string]string),
	}

	seen := make(map[string]bool)
	for _, r := range results {
		result.PerSource[r.source] = len(r.candidates)
		if r.err != nil {
			result.Errors[r.source] = r.err.Error()
			c.logger.WithError(r.err).WithField("source", r.source).Warn("Discovery source failed")
		}

		for _, cand := range r.candidates {
			cand.Normalize()
			if cand.Symbol == "" {
				continue
			}
			key := cand.Key()
			if seen[key] {
				continue
			}
			seen[key] = true

			if !matchesSector(cand, opts.Sector) || !opts.ChainAllowed(cand.Chain) {
				continue
			}
			result.Candidates = append(result.Candidates, cand)
		}
	}

	if opts.MaxCandidates > 0 && len(result.Candidates) > opts.MaxCandidates {
		result.Candidates = result.Candidates[:opts.MaxCandidates]
	}
	result.Count = len(result.Candidates)

	c.logger.WithFields(map[string]interface{}{
		"bucket":     opts.MarketCap,
		"sector":     opts.Sector,
		"sources":    len(sources),
		"errors":     len(result.Errors),
		"candidates": result.Count,
	}).Info("Discovery completed")

	return result
}

// fetchSource serves one source from cache or through its breaker
func (c *Coordinator) fetchSource(ctx context.Context, source string, rng pipelineconfig.MarketCapRange, opts pipelineconfig.Options) ([]contracts.Candidate, error) {
	adapter, ok := c.adapters[source]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for %s", source)
	}

	key := redis.DiscoveryKey(source, strings.ToLower(opts.MarketCap), cacheScope(opts))
	if c.cache != nil {
		var cached []contracts.Candidate
		hit, err := c.cache.Get(ctx, key, &cached)
		if err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("Discovery cache read failed")
		} else if hit {
			c.metrics.ObserveFetch(source, metrics.ResultCacheHit, len(cached), 0)
			return cached, nil
		}
	}

	started := time.Now()
	v, err := c.breakers[source].Execute(guard(func() (interface{}, error) {
		return adapter.Fetch(ctx, rng, opts)
	}))
	if err != nil {
		result := metrics.ResultError
		if breaker.IsOpen(err) {
			result = metrics.ResultBreakerOpen
		}
		c.metrics.ObserveFetch(source, result, 0, time.Since(started))
		return nil, err
	}

	candidates, _ := v.([]contracts.Candidate)
	c.metrics.ObserveFetch(source, metrics.ResultOK, len(candidates), time.Since(started))

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, candidates, c.cacheTTL); err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("Discovery cache write failed")
		}
	}

	return candidates, nil
}

// FetchTokenData looks a single token up by symbol or address, trying
// providers in priority order. Returns nil when no provider knows it.
func (c *Coordinator) FetchTokenData(ctx context.Context, query string) *contracts.Candidate {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	for _, source := range singlePriority {
		adapter, ok := c.adapters[source]
		if !ok {
			continue
		}

		v, err := c.breakers[source].Execute(guard(func() (interface{}, error) {
			return adapter.FetchSingle(ctx, query)
		}))
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"source": source,
				"query":  query,
			}).Debug("Single lookup failed")
			continue
		}

		if cand, _ := v.(*contracts.Candidate); cand != nil {
			cand.Normalize()
			return cand
		}
	}

	return nil
}

// guard turns a panic inside an adapter call into an error, so the breaker
// counts it as a failure and the other sources keep going
func guard(fn func() (interface{}, error)) func() (interface{}, error) {
	return func() (v interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				v, err = nil, fmt.Errorf("adapter panic: %v", r)
			}
		}()
		return fn()
	}
}

// cacheScope folds the adapter-visible filters into the cache key
func cacheScope(opts pipelineconfig.Options) string {
	var parts []string
	if opts.Sector != "" {
		parts = append(parts, strings.ToLower(string(opts.Sector)))
	}
	if len(opts.Chains) > 0 {
		chains := make([]string, len(opts.Chains))
		for i, ch := range opts.Chains {
			chains[i] = strings.ToLower(ch)
		}
		sort.Strings(chains)
		parts = append(parts, strings.Join(chains, ","))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, "+")
}

// matchesSector accepts an exact sector match or the sector name appearing
// inside any provider category
func matchesSector(c contracts.Candidate, sector contracts.Sector) bool {
	if sector == "" {
		return true
	}
	if strings.EqualFold(string(c.Sector), string(sector)) {
		return true
	}
	needle := strings.ToLower(string(sector))
	for _, cat := range c.Categories {
		if strings.Contains(strings.ToLower(cat), needle) {
			return true
		}
	}
	return false
}
