// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"perch/internal/middleware"
	"perch/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout  = 5 * time.Second
	opTimeout    = 500 * time.Millisecond
	poolSize     = 10
	minIdleConns = 2
	maxRetries   = 2
	retryBackoff = 50 * time.Millisecond
	pingTimeout  = 5 * time.Second
)

// client is nil when Redis is absent or unreachable; every cache helper
// treats a nil client as a pass-through.
var client *redis.Client

// errorCountingHook feeds command failures into the Prometheus counter so a
// flapping Redis shows up on the dashboard even though the cache degrades
// silently.
type errorCountingHook struct{}

func (errorCountingHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (errorCountingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (errorCountingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// parseAddr accepts either a full redis:// URL or a bare host:port.
func parseAddr(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr}, nil
}

func connect(addr string) (*redis.Client, error) {
	opts, err := parseAddr(addr)
	if err != nil {
		return nil, err
	}

	// Cache reads sit on the request path, so commands get short deadlines
	// and few retries; a slow Redis must not be slower than the database.
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = opTimeout
	opts.WriteTimeout = opTimeout
	opts.PoolSize = poolSize
	opts.MinIdleConns = minIdleConns
	opts.MaxRetries = maxRetries
	opts.MinRetryBackoff = retryBackoff
	opts.MaxRetryBackoff = retryBackoff * 4

	c := redis.NewClient(opts)
	c.AddHook(errorCountingHook{})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

// InitRedis initializes the Redis client for the given address. A missing
// or unreachable Redis leaves the client nil and the cache degraded to
// pass-through; callers never have to check availability themselves.
func InitRedis(addr string) {
	c, err := connect(addr)
	if err != nil {
		observability.GlobalLogger.Warn("redis unavailable, continuing without cache",
			"error", err.Error(),
		)
		client = nil
		return
	}
	client = c
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}

// SetClient replaces the client; used by tests with miniredis.
func SetClient(c *redis.Client) {
	client = c
}
