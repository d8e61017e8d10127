package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"exdollarium-calculator/internal/domain/model"
	"exdollarium-calculator/pkg/logger"
)

const catalogKey = "catalog"

// RedisCache shares the catalog snapshot between service instances.
type RedisCache struct {
	client   *redis.Client
	prefix   string
	cacheTTL time.Duration
	log      *logger.Logger
}

func NewRedisCache(opt *redis.Options, prefix string, cacheTTL time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(opt),
		prefix:   prefix,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func (r *RedisCache) key() string {
	return r.prefix + catalogKey
}

// Get treats every redis failure as a miss.
func (r *RedisCache) Get(ctx context.Context) (*model.CatalogSnapshot, bool) {
	val, err := r.client.Get(ctx, r.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		r.log.Debug("Redis cache miss", "key", r.key())
		return nil, false
	}
	if err != nil {
		r.log.Error("Redis cache get error", "key", r.key(), "error", err)
		return nil, false
	}

	var snapshot model.CatalogSnapshot
	if err := json.Unmarshal(val, &snapshot); err != nil {
		r.log.Error("Redis cache unmarshal error", "key", r.key(), "error", err)
		return nil, false
	}

	r.log.Debug("Redis cache hit", "key", r.key(), "services", len(snapshot.Services))
	return &snapshot, true
}

func (r *RedisCache) Set(ctx context.Context, snapshot *model.CatalogSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog snapshot: %w", err)
	}

	if err := r.client.Set(ctx, r.key(), data, r.cacheTTL).Err(); err != nil {
		r.log.Error("Redis cache set error", "key", r.key(), "error", err)
		return err
	}

	r.log.Debug("Redis cache set", "key", r.key(), "ttl", r.cacheTTL)
	return nil
}

func (r *RedisCache) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key()).Err(); err != nil {
		r.log.Error("Redis cache delete error", "key", r.key(), "error", err)
		return err
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
