package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// HealthCheck reports PostgreSQL as healthy when it answers and the schema
// is not left dirty by a failed migration.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	if err := h.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres unreachable: %w", err)
	}

	var (
		version int64
		dirty   bool
	)
	err := h.pool.QueryRow(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errors.New("schema not migrated")
	case err != nil:
		return fmt.Errorf("read schema version: %w", mapErr(err))
	case dirty:
		return fmt.Errorf("schema version %d is dirty", version)
	}
	return nil
}

func (h *HealthCheck) Name() string { return "postgresql" }
