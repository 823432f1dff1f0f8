package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache хранит JSON представления значений с TTL.
// Реализации: MemoryCache для одного инстанса и RedisCache при заданном REDIS_URL.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidateByPrefix(ctx context.Context, prefix string) error
}

// Префиксы ключей кэша
const (
	DashboardCachePrefix = "dashboard:"
	CategoryCachePrefix  = "categories:"
)

func DashboardStatsCacheKey() string {
	return DashboardCachePrefix + "stats"
}

func CategoryListCacheKey() string {
	return CategoryCachePrefix + "list"
}

// GetOrSet читает значение из кэша или вычисляет его через fn и сохраняет.
// Ошибки кэша не ломают запрос: значение просто вычисляется заново.
func GetOrSet[T any](ctx context.Context, c Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var cached T
	if ok, err := c.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	value, err := fn()
	if err != nil {
		return value, err
	}

	_ = c.SetJSON(ctx, key, value, ttl)
	return value, nil
}

// MemoryCache provides in-memory caching with TTL and invalidation support.
type MemoryCache struct {
	mu    sync.RWMutex
	cache map[string]*cacheEntry
	stop  chan struct{}
	once  sync.Once
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates a new cache and starts background cleanup.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	mc := &MemoryCache{
		cache: make(map[string]*cacheEntry),
		stop:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go mc.cleanup(cleanupInterval)
	}
	return mc
}

// GetJSON retrieves a value from cache into dest.
func (mc *MemoryCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	mc.mu.RLock()
	entry, exists := mc.cache[key]
	mc.mu.RUnlock()

	// просроченные записи удаляет cleanup
	if !exists || time.Now().After(entry.expiresAt) {
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("cache: unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores a value in cache with TTL.
func (mc *MemoryCache) SetJSON(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cache[key] = &cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// InvalidateByPrefix removes all keys with the given prefix.
func (mc *MemoryCache) InvalidateByPrefix(_ context.Context, prefix string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for key := range mc.cache {
		if strings.HasPrefix(key, prefix) {
			delete(mc.cache, key)
		}
	}
	return nil
}

// Close останавливает фоновую очистку.
func (mc *MemoryCache) Close() {
	mc.once.Do(func() { close(mc.stop) })
}

func (mc *MemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-mc.stop:
			return
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()
			for key, entry := range mc.cache {
				if now.After(entry.expiresAt) {
					delete(mc.cache, key)
				}
			}
			mc.mu.Unlock()
		}
	}
}

// RedisCache хранит значения в Redis под общим префиксом приложения.
type RedisCache struct {
	rdb       *redis.Client
	namespace string
}

// NewRedisCache создает кэш поверх готового клиента.
func NewRedisCache(rdb *redis.Client, namespace string) *RedisCache {
	return &RedisCache{rdb: rdb, namespace: namespace}
}

func (rc *RedisCache) key(k string) string {
	return rc.namespace + k
}

func (rc *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := rc.rdb.Get(ctx, rc.key(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis cache: get %s: %w", key, err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("redis cache: unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (rc *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis cache: marshal %s: %w", key, err)
	}
	if err := rc.rdb.Set(ctx, rc.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis cache: set %s: %w", key, err)
	}
	return nil
}

// InvalidateByPrefix удаляет ключи через SCAN, чтобы не блокировать Redis командой KEYS.
func (rc *RedisCache) InvalidateByPrefix(ctx context.Context, prefix string) error {
	iter := rc.rdb.Scan(ctx, 0, rc.key(prefix)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis cache: scan %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := rc.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis cache: del %s: %w", prefix, err)
	}
	return nil
}

// NewRedisClient разбирает REDIS_URL и проверяет соединение.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: некорректный REDIS_URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: не удалось подключиться: %w", err)
	}
	return rdb, nil
}
