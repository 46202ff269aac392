package search

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	"github.com/oksasatya/delivery-marketplace/pkg/helpers"
)

const generationKey = "search:products:gen"

// Index is the product index contract shared with the application layer.
type Index interface {
	Index(ctx context.Context, p *entity.Product) error
	Remove(ctx context.Context, ids ...string) error
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// CachedIndex memoizes search results in Redis. Any write bumps a
// generation counter so stale pages are never served after it.
type CachedIndex struct {
	Next   Index
	Redis  redis.Cmdable
	TTL    time.Duration
	Logger *logrus.Logger
}

func NewCachedIndex(next Index, rdb redis.Cmdable, ttl time.Duration, logger *logrus.Logger) *CachedIndex {
	return &CachedIndex{Next: next, Redis: rdb, TTL: ttl, Logger: logger}
}

func (c *CachedIndex) Index(ctx context.Context, p *entity.Product) error {
	if err := c.Next.Index(ctx, p); err != nil {
		return err
	}
	c.bump(ctx)
	return nil
}

func (c *CachedIndex) Remove(ctx context.Context, ids ...string) error {
	if err := c.Next.Remove(ctx, ids...); err != nil {
		return err
	}
	c.bump(ctx)
	return nil
}

func (c *CachedIndex) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	gen, err := c.Redis.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.warn(err, "search cache unavailable")
		return c.Next.Search(ctx, q, size)
	}
	key := helpers.RedisKey("search", "products", strconv.FormatInt(gen, 10), strconv.Itoa(size), strings.ToLower(strings.TrimSpace(q)))

	var hits []map[string]any
	if ok, err := helpers.RedisGetJSON(ctx, c.Redis, key, &hits); err == nil && ok {
		return hits, nil
	}
	hits, err = c.Next.Search(ctx, q, size)
	if err != nil {
		return nil, err
	}
	if err := helpers.RedisSetJSON(ctx, c.Redis, key, hits, c.TTL); err != nil {
		c.warn(err, "search cache write failed")
	}
	return hits, nil
}

func (c *CachedIndex) bump(ctx context.Context) {
	if err := c.Redis.Incr(ctx, generationKey).Err(); err != nil {
		c.warn(err, "search cache invalidation failed")
	}
}

func (c *CachedIndex) warn(err error, msg string) {
	if c.Logger != nil {
		c.Logger.WithError(err).Warn(msg)
	}
}
