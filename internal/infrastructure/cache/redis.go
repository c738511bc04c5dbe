package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"honeypot-lab/internal/config"
	"honeypot-lab/pkg/logger"
)

// RedisCache wraps the Redis client with typed operations
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *logger.Logger
}

// NewRedis creates a new Redis client
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	log = log.WithComponent("redis")
	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info().Msg("connected to Redis successfully")

	return NewFromClient(client, cfg.KeyPrefix, log), nil
}

// NewFromClient wraps an existing client
func NewFromClient(client *redis.Client, keyPrefix string, log *logger.Logger) *RedisCache {
	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    log,
	}
}

// Ping checks the connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	c.logger.Info().Msg("closing Redis connection")
	return c.client.Close()
}

// key prepends the namespace prefix to a key
func (c *RedisCache) key(k string) string {
	return c.keyPrefix + k
}

const (
	// Rate limiting keys
	KeyRateLimitPrefix = "rate_limit:"

	// Verdict counters shared by every replica
	KeyVerdictStats = "stats:verdicts"
)

// Verdict counter fields
const (
	FieldTurns = "turns"
	FieldScams = "scams"
)

// RecordVerdict bumps the cluster-wide turn counters
func (c *RedisCache) RecordVerdict(ctx context.Context, isScam bool) error {
	pipe := c.client.TxPipeline()
	pipe.HIncrBy(ctx, c.key(KeyVerdictStats), FieldTurns, 1)
	if isScam {
		pipe.HIncrBy(ctx, c.key(KeyVerdictStats), FieldScams, 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record verdict: %w", err)
	}
	return nil
}

// VerdictCounts returns the cluster-wide turn counters
func (c *RedisCache) VerdictCounts(ctx context.Context) (map[string]int64, error) {
	raw, err := c.client.HGetAll(ctx, c.key(KeyVerdictStats)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read verdict counters: %w", err)
	}

	counts := map[string]int64{FieldTurns: 0, FieldScams: 0}
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid counter %s=%q: %w", field, v, err)
		}
		counts[field] = n
	}
	return counts, nil
}

// CheckRateLimit checks and increments the rate limit counter
// Returns (allowed, remaining, resetTime, error)
func (c *RedisCache) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, time.Time, error) {
	now := time.Now()
	windowKey := fmt.Sprintf("%s%s:%d", KeyRateLimitPrefix, key, now.Unix()/int64(window.Seconds()))

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, c.key(windowKey))
	pipe.Expire(ctx, c.key(windowKey), window)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, 0, time.Time{}, err
	}

	count := incr.Val()
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	resetTime := now.Add(window)

	return count <= limit, remaining, resetTime, nil
}
