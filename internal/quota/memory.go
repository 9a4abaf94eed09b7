package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/flexprice/dunning/internal/config"
	goCache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// MemoryUsageCounter is a process-local UsageCounter for single-instance deployments and tests
type MemoryUsageCounter struct {
	counts *goCache.Cache
	period string
}

var _ UsageCounter = (*MemoryUsageCounter)(nil)

func NewMemoryUsageCounter(cfg *config.Configuration) *MemoryUsageCounter {
	return &MemoryUsageCounter{
		counts: goCache.New(goCache.NoExpiration, time.Hour),
		period: cfg.Quota.Period,
	}
}

func (c *MemoryUsageCounter) key(accountID string, at time.Time) (string, time.Duration) {
	bucket, ttl := periodKey(c.period, at)
	return fmt.Sprintf("quota:%s:%s", accountID, bucket), ttl
}

func (c *MemoryUsageCounter) Usage(_ context.Context, accountID string, at time.Time) (int64, error) {
	key, _ := c.key(accountID, at)
	if v, ok := c.counts.Get(key); ok {
		return v.(int64), nil
	}
	return 0, nil
}

func (c *MemoryUsageCounter) Increment(_ context.Context, accountID string, at time.Time) (int64, error) {
	key, ttl := c.key(accountID, at)
	// Add only succeeds for a missing key, so concurrent first writers fall through to IncrementInt64
	if err := c.counts.Add(key, int64(1), ttl); err == nil {
		return 1, nil
	}
	return c.counts.IncrementInt64(key, 1)
}

// NewUsageCounter returns the redis counter when a client is available
func NewUsageCounter(client *redis.Client, cfg *config.Configuration) UsageCounter {
	if client != nil {
		return NewRedisUsageCounter(client, cfg)
	}
	return NewMemoryUsageCounter(cfg)
}
