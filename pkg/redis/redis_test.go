package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tokenscout/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	assert.False(t, client.Enabled())
	assert.Empty(t, client.Addr())
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), CoinGeckoRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, CoinGeckoRateLimit.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), GoPlusRateLimit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found, "expected cache miss when Redis disabled")

	assert.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_KeyPrefix(t *testing.T) {
	cache := NewCache(disabledClient(t), "tokenscout")

	assert.Equal(t, "tokenscout:cache:discovery:dexscreener:emerging:all", cache.key(DiscoveryKey("dexscreener", "emerging", "all")))
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"DiscoveryKey", DiscoveryKey("coingecko", "emerging", "AI"), "discovery:coingecko:emerging:AI"},
		{"SecurityKey lower-cases", SecurityKey("BSC", "0xABCdef"), "security:bsc:0xabcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestRateLimitFor(t *testing.T) {
	cfg, ok := RateLimitFor("dexscreener")
	assert.True(t, ok)
	assert.Equal(t, DexScreenerRateLimit, cfg)

	_, ok = RateLimitFor("unknown")
	assert.False(t, ok)
}

func TestPollInterval(t *testing.T) {
	tests := []struct {
		name string
		cfg  RateLimitConfig
		want time.Duration
	}{
		{"per-minute budget", CoinGeckoRateLimit, time.Second},
		{"fast budget floors at 50ms", RateLimitConfig{Limit: 100, Window: time.Second}, 50 * time.Millisecond},
		{"mid budget", RateLimitConfig{Limit: 5, Window: time.Second}, 200 * time.Millisecond},
		{"zero limit", RateLimitConfig{Window: time.Second}, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pollInterval(tt.cfg))
		})
	}
}
