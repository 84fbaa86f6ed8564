// Package ratelimit throttles requests per client with a fixed-window
// counter kept in Redis.
package ratelimit

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Counter is a shared counter store with expiring keys. Hit increments key
// and starts its window unless one is already running.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// NewRedisClient connects lazily: the first command dials.
func NewRedisClient(cfg config.RateLimitConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// Hit sends INCR and EXPIRE NX in one MULTI/EXEC, so every counted key
// carries a TTL. Requires Redis 7.0 or later.
func (c *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (c *RedisCounter) Close() error {
	return c.client.Close()
}

// Limiter allows up to limit hits per key in each window. The window starts
// with the first hit.
type Limiter struct {
	counter Counter
	limit   int64
	window  time.Duration
	logger  logging.Logger
}

func New(counter Counter, limit int64, window time.Duration, logger logging.Logger) *Limiter {
	return &Limiter{
		counter: counter,
		limit:   limit,
		window:  window,
		logger:  logger.With("module", "rate_limit"),
	}
}

// Allow counts a hit for key. Counter errors let the request through.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	count, err := l.counter.Hit(ctx, key, l.window)
	if err != nil {
		l.logger.Warn(ctx, "rate limit counter unavailable", "key", key, "error", err)
		return true
	}
	return count <= l.limit
}

// Middleware limits requests per client IP. mark separates the budgets of
// different routes.
func (l *Limiter) Middleware(mark string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rateLimit:" + mark + ":" + c.ClientIP()
		if !l.Allow(c.Request.Context(), key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}
