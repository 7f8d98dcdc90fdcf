package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	appledger "github.com/finbooks/backend/internal/application/ledger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisPeriodLockCache implements PeriodLockCache using Redis
// This is suitable for distributed deployments where multiple instances
// need to share period lock state
type RedisPeriodLockCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// defaultPeriodLockTTL bounds staleness if an invalidation is lost
const defaultPeriodLockTTL = 10 * time.Minute

// NewRedisPeriodLockCache creates a new Redis-based period lock cache
func NewRedisPeriodLockCache(cfg RedisConfig) (*RedisPeriodLockCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisPeriodLockCache{
		client:    client,
		keyPrefix: "period:lock:",
		ttl:       defaultPeriodLockTTL,
	}, nil
}

// NewRedisPeriodLockCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisPeriodLockCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisPeriodLockCache {
	if keyPrefix == "" {
		keyPrefix = "period:lock:"
	}
	if ttl <= 0 {
		ttl = defaultPeriodLockTTL
	}
	return &RedisPeriodLockCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// key builds the cache key for one company period
func (c *RedisPeriodLockCache) key(companyID uuid.UUID, year int, month time.Month) string {
	return fmt.Sprintf("%s%s:%04d-%02d", c.keyPrefix, companyID, year, int(month))
}

// GetLocked returns the cached lock state; found is false on a miss
func (c *RedisPeriodLockCache) GetLocked(ctx context.Context, companyID uuid.UUID, year int, month time.Month) (bool, bool, error) {
	value, err := c.client.Get(ctx, c.key(companyID, year, month)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to read period lock state: %w", err)
	}

	return value == "1", true, nil
}

// SetLocked stores the lock state with the configured TTL
func (c *RedisPeriodLockCache) SetLocked(ctx context.Context, companyID uuid.UUID, year int, month time.Month, locked bool) error {
	value := "0"
	if locked {
		value = "1"
	}

	if err := c.client.Set(ctx, c.key(companyID, year, month), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store period lock state: %w", err)
	}

	return nil
}

// Invalidate drops the cached state for one company period
func (c *RedisPeriodLockCache) Invalidate(ctx context.Context, companyID uuid.UUID, year int, month time.Month) error {
	if err := c.client.Del(ctx, c.key(companyID, year, month)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate period lock state: %w", err)
	}

	return nil
}

// Close closes the Redis client
func (c *RedisPeriodLockCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisPeriodLockCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisPeriodLockCache implements PeriodLockCache
var _ appledger.PeriodLockCache = (*RedisPeriodLockCache)(nil)
