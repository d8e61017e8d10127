package cache

import (
	"context"
	"sync"
	"time"

	"exdollarium-calculator/internal/domain/model"
	"exdollarium-calculator/pkg/logger"
)

// MemoryCache keeps a single catalog snapshot in process memory.
type MemoryCache struct {
	snapshot *model.CatalogSnapshot
	mutex    sync.RWMutex
	cacheTTL time.Duration
	now      func() time.Time
	log      *logger.Logger
}

// NewMemoryCache returns a cache whose entries expire after cacheTTL. A zero
// TTL keeps the snapshot until it is replaced or invalidated.
func NewMemoryCache(cacheTTL time.Duration, log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		cacheTTL: cacheTTL,
		now:      time.Now,
		log:      log,
	}
}

func (c *MemoryCache) Get(ctx context.Context) (*model.CatalogSnapshot, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.snapshot == nil {
		c.log.Debug("Cache miss", "key", "catalog")
		return nil, false
	}

	if c.cacheTTL > 0 && c.now().Sub(c.snapshot.FetchedAt) > c.cacheTTL {
		c.log.Debug("Cache entry expired", "key", "catalog", "fetched_at", c.snapshot.FetchedAt)
		return nil, false
	}

	c.log.Debug("Cache hit", "key", "catalog")
	return copySnapshot(c.snapshot), true
}

func (c *MemoryCache) Set(ctx context.Context, snapshot *model.CatalogSnapshot) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.snapshot = copySnapshot(snapshot)
	c.log.Debug("Cache set", "key", "catalog", "services", len(snapshot.Services))

	return nil
}

func (c *MemoryCache) Invalidate(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.snapshot = nil
	c.log.Debug("Cache invalidated", "key", "catalog")

	return nil
}

func copySnapshot(s *model.CatalogSnapshot) *model.CatalogSnapshot {
	return &model.CatalogSnapshot{
		Services:  model.CloneServices(s.Services),
		FetchedAt: s.FetchedAt,
	}
}
