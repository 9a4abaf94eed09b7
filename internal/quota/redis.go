package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flexprice/dunning/internal/config"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/redis/go-redis/v9"
)

// RedisUsageCounter keeps one counter per account and period in redis so that
// several processes share the same allowance.
type RedisUsageCounter struct {
	client *redis.Client
	prefix string
	period string
}

var _ UsageCounter = (*RedisUsageCounter)(nil)

func NewRedisUsageCounter(client *redis.Client, cfg *config.Configuration) *RedisUsageCounter {
	return &RedisUsageCounter{
		client: client,
		prefix: cfg.Redis.KeyPrefix,
		period: cfg.Quota.Period,
	}
}

func (c *RedisUsageCounter) key(accountID string, at time.Time) (string, time.Duration) {
	bucket, ttl := periodKey(c.period, at)
	return fmt.Sprintf("%s:quota:%s:%s", c.prefix, accountID, bucket), ttl
}

func (c *RedisUsageCounter) Usage(ctx context.Context, accountID string, at time.Time) (int64, error) {
	key, _ := c.key(accountID, at)
	n, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to read reminder usage").
			WithReportableDetails(map[string]any{"account_id": accountID}).
			Mark(ierr.ErrSystem)
	}
	return n, nil
}

func (c *RedisUsageCounter) Increment(ctx context.Context, accountID string, at time.Time) (int64, error) {
	key, ttl := c.key(accountID, at)

	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to record reminder usage").
			WithReportableDetails(map[string]any{"account_id": accountID}).
			Mark(ierr.ErrSystem)
	}
	return incr.Val(), nil
}
