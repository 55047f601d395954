package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taskboard/internal/effort"
	"taskboard/pkg/circuitbreaker"
)

const (
	summaryKeyPrefix = "effort:summary:"
	versionKeyPrefix = "effort:summary:version:"

	// versionTTL outlives any summary; an expired version reads as 0, which only ever
	// makes a pending Set miss.
	versionTTL = 7 * 24 * time.Hour
)

// setIfVersion stores ARGV[2] under KEYS[2] for ARGV[3] ms when KEYS[1] still holds ARGV[1].
var setIfVersion = redis.NewScript(`
local current = redis.call("GET", KEYS[1]) or "0"
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// RedisSummaryCache keeps effort summaries in Redis behind a circuit breaker, so a Redis
// outage turns into fast misses instead of slow requests.
type RedisSummaryCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewRedisSummaryCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSummaryCache {
	cfg := circuitbreaker.DefaultConfig()
	cfg.OnStateChange = func(from, to circuitbreaker.State) {
		logger.Warn("Summary cache breaker changed state",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	return &RedisSummaryCache{
		rdb:     rdb,
		ttl:     ttl,
		breaker: circuitbreaker.NewCircuitBreaker(cfg),
		logger:  logger,
	}
}

func summaryKey(taskID string) string {
	return summaryKeyPrefix + taskID
}

func versionKey(taskID string) string {
	return versionKeyPrefix + taskID
}

func (c *RedisSummaryCache) Get(ctx context.Context, taskID string) (*effort.Summary, bool, error) {
	var data []byte
	err := c.breaker.Execute(func() error {
		b, err := c.rdb.Get(ctx, summaryKey(taskID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		data = b
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}

	var s effort.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		// a stale or foreign value; treat it as a miss
		c.logger.Warn("Discarding undecodable cached summary", zap.String("task_id", taskID), zap.Error(err))
		return nil, false, nil
	}
	return &s, true, nil
}

func (c *RedisSummaryCache) Version(ctx context.Context, taskID string) (int64, error) {
	var version int64
	err := c.breaker.Execute(func() error {
		v, err := c.rdb.Get(ctx, versionKey(taskID)).Int64()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		version = v
		return err
	})
	return version, err
}

// Set stores s only if the task's version is still version. It reports whether it stored.
func (c *RedisSummaryCache) Set(ctx context.Context, taskID string, version int64, s *effort.Summary) (bool, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return false, fmt.Errorf("encode summary: %w", err)
	}
	var stored bool
	err = c.breaker.Execute(func() error {
		n, err := setIfVersion.Run(ctx, c.rdb,
			[]string{versionKey(taskID), summaryKey(taskID)},
			version, data, c.ttl.Milliseconds(),
		).Int()
		stored = n == 1
		return err
	})
	return stored, err
}

// Invalidate drops the cached summary and bumps the task's version.
func (c *RedisSummaryCache) Invalidate(ctx context.Context, taskID string) error {
	return c.breaker.Execute(func() error {
		_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, summaryKey(taskID))
			pipe.Incr(ctx, versionKey(taskID))
			pipe.Expire(ctx, versionKey(taskID), versionTTL)
			return nil
		})
		return err
	})
}

// State exposes the breaker state for readiness reporting.
func (c *RedisSummaryCache) State() circuitbreaker.State {
	return c.breaker.GetState()
}
