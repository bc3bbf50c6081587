package product

import (
	"context"
	"fmt"
	"time"

	"dscommerce-be/internal/cache"
	"dscommerce-be/internal/logger"
	"dscommerce-be/internal/metrics"

	"go.uber.org/zap"
)

const cacheName = "product"

// cachedRepository is a cache-aside decorator over FindByID. Writes go to
// the wrapped repository first and evict the entry afterwards. Cache
// failures degrade to the database and are never returned.
type cachedRepository struct {
	Repository
	store cache.Store
	ttl   time.Duration
}

func NewCachedRepository(repo Repository, store cache.Store, ttl time.Duration) Repository {
	return &cachedRepository{Repository: repo, store: store, ttl: ttl}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (r *cachedRepository) FindByID(ctx context.Context, id int64) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "cache"),
		zap.String("method", "FindByID"),
		zap.Int64("product_id", id),
	)

	var cached Product
	found, err := r.store.Get(ctx, cacheKey(id), &cached)
	if err != nil {
		log.Warn("cache read failed", zap.Error(err))
	}
	if found {
		metrics.CacheHits.WithLabelValues(cacheName).Inc()
		return &cached, nil
	}
	metrics.CacheMisses.WithLabelValues(cacheName).Inc()

	p, err := r.Repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.store.Set(ctx, cacheKey(id), p, r.ttl); err != nil {
		log.Warn("cache write failed", zap.Error(err))
	}

	return p, nil
}

func (r *cachedRepository) Update(ctx context.Context, p *Product) error {
	if err := r.Repository.Update(ctx, p); err != nil {
		return err
	}
	r.evict(ctx, p.ID)
	return nil
}

func (r *cachedRepository) Delete(ctx context.Context, id int64) error {
	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

func (r *cachedRepository) evict(ctx context.Context, id int64) {
	if err := r.store.Del(ctx, cacheKey(id)); err != nil {
		logger.FromCtx(ctx).Warn("cache eviction failed",
			zap.String("layer", "cache"),
			zap.Int64("product_id", id),
			zap.Error(err),
		)
	}
}
