package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.DBTransactor using pgxpool.Pool.
type Transactor struct {
	pool        Pool
	lockTimeout time.Duration
}

// NewTransactor creates a new Transactor wrapping the connection pool.
// Every read-write transaction waits at most lockTimeout for a row lock;
// zero keeps the server default.
func NewTransactor(pool Pool, lockTimeout time.Duration) *Transactor {
	return &Transactor{pool: pool, lockTimeout: lockTimeout}
}

// Begin starts a new read-write database transaction.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", mapErr(err))
	}
	if t.lockTimeout > 0 {
		setting := fmt.Sprintf("%dms", t.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", setting); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("set lock timeout: %w", mapErr(err))
		}
	}
	return &ledgerTx{Tx: tx}, nil
}

// BeginSnapshot starts a read-only REPEATABLE READ transaction, so every
// read inside it sees the same committed state.
func (t *Transactor) BeginSnapshot(ctx context.Context) (pgx.Tx, error) {
	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", mapErr(err))
	}
	return &ledgerTx{Tx: tx}, nil
}

// ledgerTx maps commit failures such as serialization errors to storage errors.
type ledgerTx struct {
	pgx.Tx
}

func (t *ledgerTx) Commit(ctx context.Context) error {
	return mapErr(t.Tx.Commit(ctx))
}
