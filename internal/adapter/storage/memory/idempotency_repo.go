package memory

import (
	"context"
	"fmt"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyRepository.
type IdempotencyRepo struct {
	store *Store
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(store *Store) *IdempotencyRepo {
	return &IdempotencyRepo{store: store}
}

// Create locks the owner's key until tx ends, so a concurrent writer of the
// same key waits and then sees the committed record as ports.ErrDuplicate.
func (r *IdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if err := mtx.writable(); err != nil {
		return err
	}
	k := idemKey{rec.OwnerID, rec.Key}
	if err := mtx.lock(ctx, k.lockKey()); err != nil {
		return fmt.Errorf("lock idempotency key: %w", err)
	}
	for _, staged := range mtx.idem {
		if staged.OwnerID == rec.OwnerID && staged.Key == rec.Key {
			return ports.ErrDuplicate
		}
	}
	r.store.mu.RLock()
	_, used := r.store.idemKeys[k]
	r.store.mu.RUnlock()
	if used {
		return ports.ErrDuplicate
	}
	mtx.idem = append(mtx.idem, *rec)
	return nil
}

func (r *IdempotencyRepo) Get(_ context.Context, ownerID uuid.UUID, key string) (*domain.IdempotencyRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.idemKeys[idemKey{ownerID, key}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}
