package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/tokenscout/pkg/redis"
)

// Store is a TTL key/value cache holding JSON-encoded values
// ⭐ SSOT: 디스커버리/보안 리포트 캐시는 이 인터페이스로만 접근
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// New returns a Redis-backed store when the client is enabled,
// otherwise a process-local memory store.
func New(client *redis.Client, prefix string) Store {
	if client != nil && client.Enabled() {
		return redis.NewCache(client, prefix)
	}
	return NewMemory()
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-process TTL cache
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty memory store
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// WithClock overrides the time source (tests)
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// Get retrieves a live entry; expired entries are dropped lazily
func (m *Memory) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return true, nil
}

// Set stores value for ttl; a non-positive ttl is a no-op
func (m *Memory) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	m.mu.Lock()
	m.entries[key] = entry{data: data, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Delete removes a key
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// CleanExpired drops expired entries and returns how many were removed
func (m *Memory) CleanExpired() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}
