package service

import (
	"context"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"

	"github.com/google/uuid"
)

// BalanceAggregator reports wallet balances grouped by type.
type BalanceAggregator struct {
	repo       ports.WalletRepository
	transactor ports.DBTransactor
}

// NewBalanceAggregator creates a new BalanceAggregator.
func NewBalanceAggregator(repo ports.WalletRepository, transactor ports.DBTransactor) *BalanceAggregator {
	return &BalanceAggregator{repo: repo, transactor: transactor}
}

// GetBalance reads all of the owner's wallets from one snapshot so CASH and
// ONLINE are never mixed from different points in time.
func (a *BalanceAggregator) GetBalance(ctx context.Context, ownerID uuid.UUID) (*domain.Balance, error) {
	dbTx, err := a.transactor.BeginSnapshot(ctx)
	if err != nil {
		return nil, storageErr("begin snapshot", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallets, err := a.repo.ListByOwnerTx(ctx, dbTx, ownerID)
	if err != nil {
		return nil, storageErr("list wallets", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, storageErr("end snapshot", err)
	}

	balance := domain.SumBalances(wallets)
	return &balance, nil
}
