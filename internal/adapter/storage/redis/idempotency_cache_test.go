package redis

import (
	"context"
	"testing"
	"time"

	"money-tracker/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*IdempotencyCache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyCache(client, ttl), s
}

func sampleTxn(owner uuid.UUID) *domain.Transaction {
	wallet := uuid.New()
	desc := "lunch"
	return &domain.Transaction{
		ID:              uuid.New(),
		OwnerID:         owner,
		TransactionType: domain.TransactionTypeExpense,
		Amount:          decimal.RequireFromString("12.50"),
		FromWalletID:    &wallet,
		Description:     &desc,
		Date:            time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CreatedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestIdempotencyCache_RememberAndLookup(t *testing.T) {
	cache, s := newTestCache(t, 0)
	ctx := context.Background()
	owner := uuid.New()
	txn := sampleTxn(owner)

	got, err := cache.Lookup(ctx, owner, "retry-abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.Remember(ctx, owner, "retry-abc", txn))

	got, err = cache.Lookup(ctx, owner, "retry-abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, txn.ID, got.ID)
	assert.True(t, txn.Amount.Equal(got.Amount))
	assert.Equal(t, *txn.FromWalletID, *got.FromWalletID)
	assert.Equal(t, "lunch", *got.Description)

	rkey := idempotencyKey(owner, "retry-abc")
	assert.True(t, s.Exists(rkey))
	assert.Equal(t, DefaultIdempotencyTTL, s.TTL(rkey))
}

func TestIdempotencyCache_KeysAreScopedToOwner(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, cache.Remember(ctx, alice, "same-key", sampleTxn(alice)))

	got, err := cache.Lookup(ctx, bob, "same-key")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIdempotencyCache_TTLExpiry(t *testing.T) {
	cache, s := newTestCache(t, time.Second)
	ctx := context.Background()
	owner := uuid.New()

	require.NoError(t, cache.Remember(ctx, owner, "retry-def", sampleTxn(owner)))
	s.FastForward(2 * time.Second)

	got, err := cache.Lookup(ctx, owner, "retry-def")
	assert.NoError(t, err)
	assert.Nil(t, got, "expired key should be forgotten")
}

func TestIdempotencyCache_FirstResultWins(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	ctx := context.Background()
	owner := uuid.New()
	first, second := sampleTxn(owner), sampleTxn(owner)

	require.NoError(t, cache.Remember(ctx, owner, "retry-ghi", first))
	require.NoError(t, cache.Remember(ctx, owner, "retry-ghi", second))

	got, err := cache.Lookup(ctx, owner, "retry-ghi")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestIdempotencyCache_UnreadableEntryIsDropped(t *testing.T) {
	cache, s := newTestCache(t, time.Hour)
	ctx := context.Background()
	owner := uuid.New()
	rkey := idempotencyKey(owner, "garbage")
	require.NoError(t, s.Set(rkey, "not json"))

	got, err := cache.Lookup(ctx, owner, "garbage")
	assert.Error(t, err)
	assert.Nil(t, got)
	assert.False(t, s.Exists(rkey))
}

func TestIdempotencyCache_RedisDown(t *testing.T) {
	cache, s := newTestCache(t, time.Hour)
	owner := uuid.New()
	s.Close()

	_, err := cache.Lookup(context.Background(), owner, "k")
	assert.Error(t, err)
	assert.Error(t, cache.Remember(context.Background(), owner, "k", sampleTxn(owner)))
}
