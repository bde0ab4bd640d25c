package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/padelhq/matchrank/pkg/logger"
	"github.com/padelhq/matchrank/pkg/metrics"
)

// Cache defaults.
const (
	defaultCacheTTL = 24 * time.Hour
	cacheKeyPrefix  = "matchrank:embedding:"
)

// CacheOption applies a configuration option to the Cache.
type CacheOption func(*Cache)

// WithTTL sets how long cached vectors live.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets a custom logger.
func WithCacheLogger(l logger.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// Cache is a Redis read-through decorator around a Provider. The same
// request text always produces the same vector with a deterministic
// provider, which makes the text's digest a safe cache key. Cache failures
// degrade to provider calls, never to request failures.
type Cache struct {
	inner  Provider
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewCache wraps provider with a Redis cache.
func NewCache(inner Provider, client *redis.Client, opts ...CacheOption) *Cache {
	c := &Cache{
		inner:  inner,
		client: client,
		ttl:    defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the decorated provider.
func (c *Cache) Name() string { return c.inner.Name() + "+cache" }

// Dimension returns the decorated provider's dimension.
func (c *Cache) Dimension() int { return c.inner.Dimension() }

// Embed returns the cached vector for text, falling back to the provider.
func (c *Cache) Embed(ctx context.Context, text string) ([]float64, error) {
	key := c.key(text)

	if vec, ok := c.lookup(ctx, key); ok {
		metrics.RecordEmbeddingCacheHit()
		return vec, nil
	}
	metrics.RecordEmbeddingCacheMiss()

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, vec)
	return vec, nil
}

// EmbedBatch bypasses the cache; batches are used by offline seeding where
// every text is fresh.
func (c *Cache) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	return c.inner.EmbedBatch(ctx, texts)
}

func (c *Cache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *Cache) lookup(ctx context.Context, key string) ([]float64, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.log != nil {
			c.log.Warn(ctx, "embedding cache read failed", logger.Error(err))
		}
		return nil, false
	}
	var vec []float64
	if err := json.Unmarshal(raw, &vec); err != nil || len(vec) != c.inner.Dimension() {
		return nil, false
	}
	return vec, true
}

func (c *Cache) store(ctx context.Context, key string, vec []float64) {
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil && c.log != nil {
		c.log.Warn(ctx, "embedding cache write failed", logger.Error(err))
	}
}
