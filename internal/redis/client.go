package redis

import (
	"context"
	"time"

	"github.com/flexprice/dunning/internal/config"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/logger"
	goredis "github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// NewClient connects to redis and verifies the connection. It returns nil when redis is disabled.
func NewClient(cfg *config.Configuration, log *logger.Logger) (*goredis.Client, error) {
	if !cfg.Redis.Enabled {
		log.Infow("redis disabled, quota usage is tracked in memory")
		return nil, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, ierr.WithError(err).
			WithHintf("Could not connect to redis at %s", cfg.Redis.Address).
			Mark(ierr.ErrSystem)
	}

	log.Infow("redis client initialized", "address", cfg.Redis.Address, "db", cfg.Redis.DB)
	return client, nil
}
