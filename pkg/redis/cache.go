package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON-encoded values under "<prefix>:cache:<key>"
// ⭐ SSOT: Redis 캐시 키 형식은 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a cache over client
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) key(key string) string {
	return c.prefix + ":cache:" + key
}

// Get decodes the value at key into dest. A missing key is a miss, not an
// error; a Redis failure is returned so the caller can log it and refetch.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores value with ttl
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.key(key), data, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	return c.client.Redis().Del(ctx, c.key(key)).Err()
}

// Cache lifetimes
const (
	TTLDiscovery = 5 * time.Minute // 소스별 디스커버리 결과
	TTLSecurity  = 5 * time.Minute // 컨트랙트 보안 리포트
)

// DiscoveryKey identifies one adapter result set: source, market-cap
// bucket and the sector or chain scope it was requested with.
func DiscoveryKey(source, bucket, scope string) string {
	return fmt.Sprintf("discovery:%s:%s:%s", source, bucket, scope)
}

// SecurityKey identifies a security report for one contract
func SecurityKey(chain, address string) string {
	return fmt.Sprintf("security:%s:%s", strings.ToLower(chain), strings.ToLower(address))
}
