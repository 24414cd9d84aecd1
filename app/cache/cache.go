// Package cache stores rendered listing fragments for a short time.
//
// A cached fragment is served verbatim until its TTL runs out, even if the
// posts it shows have since changed. Writes never invalidate; only an
// explicit Invalidate does.
package cache

import (
	"context"
	"strconv"
	"time"

	"yatube/app/metrics"

	"go.uber.org/zap"
)

// HomeKey is the base key of the home page listing. Each page is cached
// under PageKey(HomeKey, n).
const HomeKey = "index_page"

// PageKey names one page of a paginated listing.
func PageKey(base string, page int) string {
	return base + ":" + strconv.Itoa(page)
}

// Store is a TTL key/value backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes key and every key of the form key:*.
	DeletePrefix(ctx context.Context, key string) error
}

// ListingCache is a read-through cache in front of a renderer. Concurrent
// misses on the same key each render; the last writer wins.
type ListingCache struct {
	store   Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New wraps store. logger and m may be nil.
func New(store Store, logger *zap.Logger, m *metrics.Metrics) *ListingCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingCache{store: store, logger: logger, metrics: m}
}

// GetOrRender returns the cached bytes for key, or calls render and caches
// its output for ttl. A render error is returned and nothing is cached.
// A failing backend degrades to rendering on every call.
func (c *ListingCache) GetOrRender(ctx context.Context, key string, ttl time.Duration, render func() ([]byte, error)) ([]byte, error) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("listing cache get failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		c.count("hit")
		return data, nil
	}
	c.count("miss")

	data, err = render()
	if err != nil {
		return nil, err
	}
	if ttl > 0 {
		if err := c.store.Set(ctx, key, data, ttl); err != nil {
			c.logger.Warn("listing cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return data, nil
}

// Invalidate drops key and all of its page variants.
func (c *ListingCache) Invalidate(ctx context.Context, key string) error {
	if c.metrics != nil {
		c.metrics.CacheInvalidations.Inc()
	}
	c.logger.Info("listing cache invalidated", zap.String("key", key))
	return c.store.DeletePrefix(ctx, key)
}

func (c *ListingCache) count(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
