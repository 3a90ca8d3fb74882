package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/tokenscout/pkg/config"
)

const connectTimeout = 3 * time.Second

// Client wraps the shared Redis connection. A disabled client (REDIS_ENABLED
// unset) is valid: callers check Enabled and fall back to in-process state.
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb     *redis.Client
	addr    string
	enabled bool
}

// New connects to Redis and verifies the connection with a bounded ping
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{enabled: false}, nil
	}

	addr := net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port)
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: connectTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection to %s failed: %w", addr, err)
	}

	return &Client{
		rdb:     rdb,
		addr:    addr,
		enabled: true,
	}, nil
}

func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

func (c *Client) Enabled() bool {
	return c.enabled
}

// Addr is host:port of the server, empty when disabled
func (c *Client) Addr() string {
	return c.addr
}

// Ping checks connectivity; a disabled client is always healthy
func (c *Client) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Redis returns the underlying go-redis client
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
