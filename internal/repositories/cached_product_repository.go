package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/models"
)

type cachedProductRepository struct {
	inner ProductRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedProductRepo puts a read-through cache in front of the catalog.
// Cache failures are logged and fall through to the wrapped repository.
func NewCachedProductRepo(inner ProductRepository, c cache.Cache, ttl time.Duration) ProductRepository {
	return &cachedProductRepository{inner: inner, cache: c, ttl: ttl}
}

func (r *cachedProductRepository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	logger := middleware.LoggerFromContext(ctx)
	key := cache.Key(cache.ProductKeyPrefix, id)

	var cached models.Product

	found, err := r.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("Catalog cache read failed", slog.String("key", key), slog.Any("error", err))
	} else if found {
		return &cached, nil
	}

	product, err := r.inner.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, product, r.ttl); err != nil {
		logger.Warn("Catalog cache write failed", slog.String("key", key), slog.Any("error", err))
	}

	return product, nil
}
