package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"jobfit-backend/internal/shared/telemetry"
)

// Cache is a JSON value cache. Implementations treat an unreachable backend
// as a miss rather than an error the caller must handle.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Redis is a Cache backed by go-redis.
type Redis struct {
	client     *redis.Client
	defaultTTL time.Duration

	warnedUnavailable atomic.Bool
}

// NewRedis connects to addr. When the server does not answer a ping the
// returned cache bypasses every call.
func NewRedis(ctx context.Context, addr, password string, defaultTTL time.Duration) *Redis {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return &Redis{defaultTTL: defaultTTL}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		telemetry.Warn("cache.unavailable", map[string]any{"addr": addr, "err": err})
		_ = client.Close()
		return &Redis{defaultTTL: defaultTTL}
	}
	telemetry.Info("cache.connected", map[string]any{"addr": addr})
	return &Redis{client: client, defaultTTL: defaultTTL}
}

// Available reports whether a Redis connection is in use.
func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

// PingContext checks the connection for health reporting.
func (r *Redis) PingContext(ctx context.Context) error {
	if !r.Available() {
		return errors.New("redis not connected")
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) warnOnce(err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		telemetry.Warn("cache.error", map[string]any{"err": err})
	}
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if !r.Available() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !r.Available() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnOnce(err)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if !r.Available() || len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.warnOnce(err)
		return err
	}
	return nil
}

func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if !r.Available() {
		return nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			telemetry.Warn("cache.delete_failed", map[string]any{"key": iter.Val(), "pattern": pattern, "err": err})
		}
	}
	return iter.Err()
}

// Memory is an in-process Cache used in tests and single-node dev runs.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	data    []byte
	expires time.Time
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryItem), now: time.Now}
}

func (m *Memory) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	m.mu.Lock()
	item, ok := m.items[key]
	if ok && !item.expires.IsZero() && m.now().After(item.expires) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(item.data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	item := memoryItem{data: b}
	if ttl > 0 {
		item.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
	return nil
}

// DeleteByPattern supports the trailing-"*" prefix patterns the services use.
func (m *Memory) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix, wildcard := strings.CutSuffix(pattern, "*")
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.items {
		if (wildcard && strings.HasPrefix(k, prefix)) || k == pattern {
			delete(m.items, k)
		}
	}
	return nil
}

// Len reports the number of stored entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

var (
	_ Cache = (*Redis)(nil)
	_ Cache = (*Memory)(nil)
)
