package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"money-tracker/internal/core/domain"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultIdempotencyTTL is how long a created transaction is replayed for
// a retried Idempotency-Key.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyCache implements ports.IdempotencyCache. Entries are keyed by
// owner and client key and hold the JSON of the created transaction; the
// first stored result wins.
type IdempotencyCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewIdempotencyCache creates a cache whose entries live for ttl, or for
// DefaultIdempotencyTTL when ttl is not positive.
func NewIdempotencyCache(client *goredis.Client, ttl time.Duration) *IdempotencyCache {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyCache{client: client, ttl: ttl}
}

func idempotencyKey(ownerID uuid.UUID, key string) string {
	return fmt.Sprintf("idempotency:txn:%s:%s", ownerID, key)
}

// Lookup returns the transaction remembered for key, or nil, nil.
// An unreadable entry is deleted and reported as an error.
func (c *IdempotencyCache) Lookup(ctx context.Context, ownerID uuid.UUID, key string) (*domain.Transaction, error) {
	rkey := idempotencyKey(ownerID, key)
	data, err := c.client.Get(ctx, rkey).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis idempotency get: %w", err)
	}

	var txn domain.Transaction
	if err := json.Unmarshal(data, &txn); err != nil {
		_ = c.client.Del(ctx, rkey).Err()
		return nil, fmt.Errorf("decode idempotency entry: %w", err)
	}
	return &txn, nil
}

// Remember stores txn under key unless an entry already exists.
func (c *IdempotencyCache) Remember(ctx context.Context, ownerID uuid.UUID, key string, txn *domain.Transaction) error {
	data, err := json.Marshal(txn)
	if err != nil {
		return fmt.Errorf("encode idempotency entry: %w", err)
	}
	if err := c.client.SetNX(ctx, idempotencyKey(ownerID, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis idempotency set: %w", err)
	}
	return nil
}
