package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	appledger "github.com/finbooks/backend/internal/application/ledger"
	"github.com/google/uuid"
)

// lockEntry represents a cached lock state with expiration
type lockEntry struct {
	locked    bool
	expiresAt time.Time
}

// InMemoryPeriodLockCache implements PeriodLockCache using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryPeriodLockCache struct {
	mu        sync.RWMutex
	entries   map[string]lockEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryPeriodLockCache creates a new in-memory period lock cache
// It starts a background goroutine to clean up expired entries
func NewInMemoryPeriodLockCache(ttl time.Duration) *InMemoryPeriodLockCache {
	if ttl <= 0 {
		ttl = defaultPeriodLockTTL
	}

	cache := &InMemoryPeriodLockCache{
		entries:  make(map[string]lockEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	// Start cleanup goroutine
	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// key builds the cache key for one company period
func (c *InMemoryPeriodLockCache) key(companyID uuid.UUID, year int, month time.Month) string {
	return fmt.Sprintf("%s:%04d-%02d", companyID, year, int(month))
}

// GetLocked returns the cached lock state; found is false on a miss
func (c *InMemoryPeriodLockCache) GetLocked(ctx context.Context, companyID uuid.UUID, year int, month time.Month) (bool, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[c.key(companyID, year, month)]
	if !exists {
		return false, false, nil
	}

	// Expired entries count as a miss
	if time.Now().After(e.expiresAt) {
		return false, false, nil
	}

	return e.locked, true, nil
}

// SetLocked stores the lock state with the configured TTL
func (c *InMemoryPeriodLockCache) SetLocked(ctx context.Context, companyID uuid.UUID, year int, month time.Month, locked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[c.key(companyID, year, month)] = lockEntry{
		locked:    locked,
		expiresAt: time.Now().Add(c.ttl),
	}

	return nil
}

// Invalidate drops the cached state for one company period
func (c *InMemoryPeriodLockCache) Invalidate(ctx context.Context, companyID uuid.UUID, year int, month time.Month) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, c.key(companyID, year, month))
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (c *InMemoryPeriodLockCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryPeriodLockCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryPeriodLockCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryPeriodLockCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryPeriodLockCache implements PeriodLockCache
var _ appledger.PeriodLockCache = (*InMemoryPeriodLockCache)(nil)
