// Package redis holds the optional Redis-backed helpers of the API: the
// idempotency cache for transaction creation and the rate limit counters.
package redis

import (
	"context"
	"fmt"
	"time"

	"money-tracker/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	dialTimeout      = 2 * time.Second
	defaultOpTimeout = 500 * time.Millisecond
)

// NewClient connects to Redis and verifies connectivity. Reads and writes
// fail after cfg.OpTimeout so a slow Redis degrades callers instead of
// blocking them.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
		MaxRetries:   1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr(), err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Dur("op_timeout", opTimeout).
		Msg("Redis connected")

	return client, nil
}
