package service

import (
	"context"
	"errors"
	"time"

	"homecare-data/internal/repository"
	"homecare-data/internal/store"

	"go.uber.org/zap"
)

const cachePrefix = "homecare:"

// ViewCache read-through cache for derived views. Cache failures are logged
// and never fail the request. A nil *ViewCache disables caching.
type ViewCache struct {
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
}

func NewViewCache(kv store.KV, ttl time.Duration, logger *zap.Logger) *ViewCache {
	if kv == nil {
		kv = store.NopKV{}
	}
	return &ViewCache{kv: kv, ttl: ttl, logger: logger}
}

func cacheKey(table repository.Table, view string) string {
	return cachePrefix + string(table) + ":" + view
}

func cachedView[T any](ctx context.Context, c *ViewCache, key string, compute func() (T, error)) (T, error) {
	if c == nil {
		return compute()
	}
	var v T
	err := store.GetJSON(ctx, c.kv, key, &v)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, store.ErrMiss) {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err = compute()
	if err != nil {
		return v, err
	}
	if err := store.SetJSON(ctx, c.kv, key, v, c.ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// invalidate drops every cached view of the given tables.
func (c *ViewCache) invalidate(ctx context.Context, tables ...repository.Table) {
	if c == nil {
		return
	}
	for _, t := range tables {
		if err := store.Invalidate(ctx, c.kv, cachePrefix+string(t)+":*"); err != nil {
			c.logger.Warn("cache invalidation failed", zap.String("table", string(t)), zap.Error(err))
		}
	}
}
