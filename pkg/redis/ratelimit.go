package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter implements sliding window rate limiting using Redis
// ⭐ SSOT: 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key    string        // Unique identifier (e.g., "coingecko", "goplus")
	Limit  int           // Maximum requests allowed
	Window time.Duration // Time window
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
	}
}

// slidingWindow trims the window, counts it and admits one request when
// there is room. Members are unique so concurrent callers in the same
// millisecond are counted separately.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)
	if count < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1}
	end
	return {0, 0}
`)

// Allow admits one request if the provider's window has room.
// Returns (allowed, remaining, error)
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (bool, int, error) {
	if !r.client.Enabled() {
		return true, cfg.Limit, nil
	}

	key := fmt.Sprintf("%s:ratelimit:%s", r.prefix, cfg.Key)
	now := time.Now().UnixMilli()

	result, err := slidingWindow.Run(ctx, r.client.Redis(), []string{key},
		now,
		now-cfg.Window.Milliseconds(),
		cfg.Limit,
		cfg.Window.Milliseconds(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(result) != 2 {
		return false, 0, fmt.Errorf("rate limit script returned %d values", len(result))
	}

	return result[0] == 1, int(result[1]), nil
}

// Wait blocks until a request is admitted or ctx is done
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	poll := pollInterval(cfg)
	for {
		allowed, _, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}

// pollInterval is the average spacing of the window, kept in [50ms, 1s]
func pollInterval(cfg RateLimitConfig) time.Duration {
	if cfg.Limit <= 0 {
		return time.Second
	}
	d := cfg.Window / time.Duration(cfg.Limit)
	switch {
	case d < 50*time.Millisecond:
		return 50 * time.Millisecond
	case d > time.Second:
		return time.Second
	}
	return d
}

// Predefined rate limit configs for external APIs
var (
	// CoinGecko public API: 분당 30회 제한 (보수적)
	CoinGeckoRateLimit = RateLimitConfig{
		Key:    "coingecko",
		Limit:  30,
		Window: time.Minute,
	}

	// DexScreener: 분당 300회 제한
	DexScreenerRateLimit = RateLimitConfig{
		Key:    "dexscreener",
		Limit:  300,
		Window: time.Minute,
	}

	// CoinMarketCap web: 분당 10회 (스크래핑)
	CoinMarketCapRateLimit = RateLimitConfig{
		Key:    "coinmarketcap",
		Limit:  10,
		Window: time.Minute,
	}

	// GoPlus security API: 분당 30회
	GoPlusRateLimit = RateLimitConfig{
		Key:    "goplus",
		Limit:  30,
		Window: time.Minute,
	}
)

// RateLimitFor returns the preset for a provider key
func RateLimitFor(source string) (RateLimitConfig, bool) {
	switch source {
	case CoinGeckoRateLimit.Key:
		return CoinGeckoRateLimit, true
	case DexScreenerRateLimit.Key:
		return DexScreenerRateLimit, true
	case CoinMarketCapRateLimit.Key:
		return CoinMarketCapRateLimit, true
	case GoPlusRateLimit.Key:
		return GoPlusRateLimit, true
	default:
		return RateLimitConfig{}, false
	}
}
