package postgres

import (
	"context"
	"errors"
	"fmt"

	"money-tracker/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyRepository.
type IdempotencyRepo struct {
	pool Pool
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(pool Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

// Create inserts the key within a database transaction. A concurrent insert
// of the same key waits for the other transaction and fails with
// ports.ErrDuplicate once it commits.
func (r *IdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error {
	query := `INSERT INTO idempotency_keys (owner_id, key, transaction_id, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := tx.Exec(ctx, query, rec.OwnerID, rec.Key, rec.TransactionID, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert idempotency key: %w", mapErr(err))
	}
	return nil
}

// Get fetches the owner's record for key.
func (r *IdempotencyRepo) Get(ctx context.Context, ownerID uuid.UUID, key string) (*domain.IdempotencyRecord, error) {
	query := `SELECT owner_id, key, transaction_id, created_at
		FROM idempotency_keys WHERE owner_id = $1 AND key = $2`

	rec := &domain.IdempotencyRecord{}
	err := r.pool.QueryRow(ctx, query, ownerID, key).Scan(&rec.OwnerID, &rec.Key, &rec.TransactionID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	return rec, nil
}
