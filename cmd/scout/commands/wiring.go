package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/tokenscout/internal/audit"
	"github.com/wonny/tokenscout/internal/brain"
	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/external/coingecko"
	"github.com/wonny/tokenscout/internal/external/coinmarketcap"
	"github.com/wonny/tokenscout/internal/external/dexscreener"
	"github.com/wonny/tokenscout/internal/external/goplus"
	"github.com/wonny/tokenscout/internal/metrics"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
	"github.com/wonny/tokenscout/internal/s1_discovery"
	"github.com/wonny/tokenscout/internal/s2_screening"
	"github.com/wonny/tokenscout/internal/s3_evaluation"
	"github.com/wonny/tokenscout/internal/s4_diligence"
	"github.com/wonny/tokenscout/pkg/cache"
	"github.com/wonny/tokenscout/pkg/config"
	"github.com/wonny/tokenscout/pkg/database"
	"github.com/wonny/tokenscout/pkg/httputil"
	"github.com/wonny/tokenscout/pkg/logger"
	"github.com/wonny/tokenscout/pkg/redis"
)

// app holds every long-lived dependency of one CLI process
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	metrics      *metrics.Metrics
	redis        *redis.Client
	db           *database.DB
	store        *audit.ReportStore // nil without DATABASE_URL
	cache        cache.Store
	orchestrator *brain.Orchestrator
}

// newApp loads config and builds the pipeline
// ⭐ SSOT: 의존성 조립은 여기서만
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if pipelineConfig != "" {
		cfg.PipelineConfigPath = pipelineConfig
	}

	// 2. Initialize logger and metrics
	log := logger.New(cfg)
	m := metrics.New()

	a := &app{cfg: cfg, log: log, metrics: m}

	// 3. Pipeline defaults
	opts := pipelineconfig.Defaults()
	if cfg.PipelineConfigPath != "" {
		opts, err = pipelineconfig.Load(cfg.PipelineConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load pipeline config: %w", err)
		}
	}

	// 4. Redis (optional) and cache
	a.redis, err = redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, using in-process cache")
		a.redis = nil
	}
	a.cache = cache.New(a.redis, "tokenscout")

	// 5. Database (optional)
	var sink contracts.ReportSink
	a.db, err = database.New(cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		log.Info("DATABASE_URL not set, reports are kept in memory only")
	case err != nil:
		a.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		if err := a.db.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		a.store = audit.NewReportStore(a.db.Pool)
		sink = a.store
		log.Info("Connected to database")
	}

	// 6. External adapters
	limiter := a.rateLimiter()
	gecko := coingecko.NewClient(a.providerClient(cfg.CoinGecko, "coingecko", limiter).
		WithHeader("x-cg-demo-api-key", cfg.CoinGecko.APIKey), cfg.CoinGecko.BaseURL, log)
	dex := dexscreener.NewClient(a.providerClient(cfg.DexScreener, "dexscreener", limiter), cfg.DexScreener.BaseURL, log)
	cmc := coinmarketcap.NewClient(a.providerClient(cfg.CoinMarketCap, "coinmarketcap", limiter), cfg.CoinMarketCap.BaseURL, log)
	security := goplus.NewClient(a.providerClient(cfg.GoPlus, "goplus", limiter).
		WithHeader("Authorization", cfg.GoPlus.APIKey), cfg.GoPlus.BaseURL, log)

	// 7. Stages
	coordinator := s1_discovery.NewCoordinator([]s1_discovery.Adapter{dex, gecko, cmc}, a.cache, m, log)
	resolver := s2_screening.NewSecurityResolver(security, a.cache, m, log)
	screener := s2_screening.NewScreener(resolver, cfg.Scheduler.ScreenDelay, m, log)
	evaluator := s3_evaluation.NewEvaluator(m, log)
	engine := s4_diligence.NewEngine(m, log)

	// 8. Orchestrator
	a.orchestrator = brain.NewOrchestrator(coordinator, screener, evaluator, engine, opts, sink, m, log)

	log.WithFields(map[string]interface{}{
		"session_id":  a.orchestrator.SessionID(),
		"sources":     coordinator.Sources(),
		"redis":       a.redis != nil && a.redis.Enabled(),
		"persistence": a.store != nil,
	}).Info("Pipeline initialized")

	return a, nil
}

// providerClient builds the HTTP client for one provider
func (a *app) providerClient(pc config.ProviderConfig, key string, limiter *redis.RateLimiter) *httputil.Client {
	client := httputil.NewForProvider(pc, a.log)
	if limiter != nil {
		if rl, ok := redis.RateLimitFor(key); ok {
			client = client.WithRateLimiter(limiter, rl)
		}
	}
	return client
}

// rateLimiter returns the shared limiter when Redis is up
func (a *app) rateLimiter() *redis.RateLimiter {
	if a.redis == nil || !a.redis.Enabled() {
		return nil
	}
	return redis.NewRateLimiter(a.redis, "tokenscout")
}

// serveMetrics exposes /metrics on the metrics port until ctx is done
func (a *app) serveMetrics(ctx context.Context) {
	if !a.cfg.MetricsEnabled {
		return
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.MetricsPort,
		Handler:           a.metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.WithError(err).Warn("Metrics server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	a.log.WithField("port", a.cfg.MetricsPort).Info("Metrics endpoint started")
}

// Close releases database and Redis connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
