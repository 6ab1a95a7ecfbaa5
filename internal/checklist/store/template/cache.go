package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"duediligence/internal/checklist/metrics"
	"duediligence/internal/checklist/models"
	"duediligence/pkg/platform/circuit"
)

// Backend is the durable template store behind the cache.
type Backend interface {
	Create(ctx context.Context, t *models.Template) error
	Find(ctx context.Context, checklistType string, versionNumber int) (*models.Template, error)
	Latest(ctx context.Context, checklistType string) (*models.Template, error)
}

const (
	keyPrefix         = "checklist:template:"
	defaultRetryAfter = 5 * time.Second
)

// Cache is a Redis read-through cache for Find. Templates are immutable so
// entries never need invalidation; misses in the backend are never cached.
// Redis failures fall back to the backend and are counted by a breaker. While
// the breaker is open lookups go straight to the backend, except for one
// Redis attempt per retry interval that lets the breaker close again.
type Cache struct {
	next       Backend
	client     redis.Cmdable
	ttl        time.Duration
	breaker    *circuit.Breaker
	retryAfter time.Duration
	lastTry    atomic.Int64
	now        func() time.Time
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type CacheOption func(*Cache)

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *Cache) {
		c.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) CacheOption {
	return func(c *Cache) {
		c.breaker = b
	}
}

// WithRetryAfter sets how often an open breaker lets a lookup try Redis.
func WithRetryAfter(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.retryAfter = d
		}
	}
}

func NewCache(next Backend, client redis.Cmdable, ttl time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{
		next:       next,
		client:     client,
		ttl:        ttl,
		breaker:    circuit.New("template-cache"),
		retryAfter: defaultRetryAfter,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(checklistType string, versionNumber int) string {
	return fmt.Sprintf("%s%s:%d", keyPrefix, checklistType, versionNumber)
}

func (c *Cache) Create(ctx context.Context, t *models.Template) error {
	return c.next.Create(ctx, t)
}

func (c *Cache) Latest(ctx context.Context, checklistType string) (*models.Template, error) {
	return c.next.Latest(ctx, checklistType)
}

func (c *Cache) Find(ctx context.Context, checklistType string, versionNumber int) (*models.Template, error) {
	if c.bypass() {
		c.metrics.IncCache("bypass")
		return c.next.Find(ctx, checklistType, versionNumber)
	}

	key := cacheKey(checklistType, versionNumber)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var t models.Template
		if jsonErr := json.Unmarshal(raw, &t); jsonErr == nil {
			c.recordSuccess(ctx)
			c.metrics.IncCache("hit")
			return &t, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable cached template", "key", key)
	case errors.Is(err, redis.Nil):
		c.recordSuccess(ctx)
		c.metrics.IncCache("miss")
	default:
		c.recordFailure(ctx, err)
		c.metrics.IncCache("error")
	}

	t, err := c.next.Find(ctx, checklistType, versionNumber)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, t)
	return t, nil
}

// bypass reports whether this lookup should skip Redis. At most one caller
// per retry interval is let through while the breaker is open.
func (c *Cache) bypass() bool {
	if !c.breaker.IsOpen() {
		return false
	}
	now := c.now().UnixNano()
	last := c.lastTry.Load()
	if now-last < int64(c.retryAfter) {
		return true
	}
	return !c.lastTry.CompareAndSwap(last, now)
}

func (c *Cache) store(ctx context.Context, key string, t *models.Template) {
	if c.breaker.IsOpen() {
		return
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.recordFailure(ctx, err)
	}
}

func (c *Cache) recordFailure(ctx context.Context, err error) {
	_, change := c.breaker.RecordFailure()
	if change.Opened {
		c.lastTry.Store(c.now().UnixNano())
		c.logger.WarnContext(ctx, "template cache unavailable, reading from store",
			"breaker", c.breaker.Name(),
			"error", err,
		)
	}
}

func (c *Cache) recordSuccess(ctx context.Context) {
	_, change := c.breaker.RecordSuccess()
	if change.Closed {
		c.logger.InfoContext(ctx, "template cache recovered", "breaker", c.breaker.Name())
	}
}
