package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nguyentantai21042004/video-digest/internal/logger"
)

const cacheKeyPrefix = "video-digest:gen:"

// Cache stores generated text by request fingerprint.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type redisCache struct {
	rdb *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(ctx context.Context, addr string) (Cache, func() error, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisCache{rdb: rdb}, rdb.Close, nil
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

type cachedGenerator struct {
	next   Generator
	cache  Cache
	ttl    time.Duration
	logger logger.Logger
}

// WithCache wraps a Generator so identical requests to the same model are served from cache.
// Cache failures are logged and never fail a generation; errors are not cached.
func WithCache(next Generator, cache Cache, ttl time.Duration, log logger.Logger) Generator {
	return &cachedGenerator{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

func (c *cachedGenerator) Provider() string { return c.next.Provider() }

func (c *cachedGenerator) Model() string { return c.next.Model() }

func (c *cachedGenerator) IsAvailable(ctx context.Context) bool {
	return c.next.IsAvailable(ctx)
}

func (c *cachedGenerator) Generate(ctx context.Context, req Request) (string, error) {
	key := c.key(req)

	if text, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn(ctx, "Cache lookup failed: %v", err)
	} else if ok {
		c.logger.Debug(ctx, "Cache hit for %s", key)
		return text, nil
	}

	text, err := c.next.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, text, c.ttl); err != nil {
		c.logger.Warn(ctx, "Cache store failed: %v", err)
	}
	return text, nil
}

func (c *cachedGenerator) key(req Request) string {
	h := sha256.New()
	for _, part := range []string{
		c.next.Provider(),
		c.next.Model(),
		req.SystemPrompt,
		req.Prompt,
		strconv.FormatFloat(float64(req.Temperature), 'f', 3, 32),
		strconv.Itoa(req.MaxTokens),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
