package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"
	"money-tracker/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletStore owns wallet balances. Credit and Debit only run inside the
// storage transaction of the transaction processor.
type WalletStore struct {
	repo      ports.WalletRepository
	overdraft OverdraftPolicy
	log       zerolog.Logger
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(repo ports.WalletRepository, overdraft OverdraftPolicy, log zerolog.Logger) *WalletStore {
	return &WalletStore{repo: repo, overdraft: overdraft, log: log}
}

// Create opens the owner's wallet of the given type with a zero balance.
func (s *WalletStore) Create(ctx context.Context, ownerID uuid.UUID, walletType domain.WalletType) (*domain.Wallet, error) {
	if !walletType.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unsupported wallet type %q", walletType))
	}

	now := time.Now().UTC()
	w := &domain.Wallet{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Type:      walletType,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, apperror.ErrWalletExists(string(walletType))
		}
		return nil, storageErr("create wallet", err)
	}

	s.log.Info().
		Str("wallet_id", w.ID.String()).
		Str("owner_id", ownerID.String()).
		Str("type", string(walletType)).
		Msg("wallet created")
	return w, nil
}

// Get returns one of the owner's wallets.
func (s *WalletStore) Get(ctx context.Context, ownerID, walletID uuid.UUID) (*domain.Wallet, error) {
	w, err := s.repo.GetByID(ctx, walletID)
	if err != nil {
		return nil, storageErr("get wallet", err)
	}
	if w == nil || w.OwnerID != ownerID {
		return nil, apperror.ErrNotFound("Wallet")
	}
	return w, nil
}

// ListByOwner returns all wallets of the owner.
func (s *WalletStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Wallet, error) {
	wallets, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageErr("list wallets", err)
	}
	return wallets, nil
}

// Lock row-locks the given wallets in ascending id order and returns them by id.
// Every id must name a wallet of the owner.
func (s *WalletStore) Lock(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, ids ...uuid.UUID) (map[uuid.UUID]*domain.Wallet, error) {
	sorted := slices.Clone(ids)
	slices.SortFunc(sorted, domain.CompareIDs)
	sorted = slices.Compact(sorted)

	locked := make(map[uuid.UUID]*domain.Wallet, len(sorted))
	if len(sorted) == 0 {
		return locked, nil
	}

	wallets, err := s.repo.LockByIDs(ctx, tx, sorted)
	if err != nil {
		return nil, storageErr("lock wallets", err)
	}
	for i := range wallets {
		if wallets[i].OwnerID == ownerID {
			locked[wallets[i].ID] = &wallets[i]
		}
	}
	if len(locked) != len(sorted) {
		return nil, apperror.ErrNotFound("Wallet")
	}
	return locked, nil
}

// Credit increases the balance of a locked wallet.
func (s *WalletStore) Credit(ctx context.Context, tx pgx.Tx, w *domain.Wallet, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount(nil)
	}
	return s.setBalance(ctx, tx, w, w.Balance.Add(amount))
}

// Debit decreases the balance of a locked wallet, refusing to go below zero
// unless the overdraft policy allows it.
func (s *WalletStore) Debit(ctx context.Context, tx pgx.Tx, w *domain.Wallet, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount(nil)
	}
	if !s.overdraft.Allows(w.Balance, amount) {
		return apperror.ErrInsufficientFunds()
	}
	return s.setBalance(ctx, tx, w, w.Balance.Sub(amount))
}

func (s *WalletStore) setBalance(ctx context.Context, tx pgx.Tx, w *domain.Wallet, balance decimal.Decimal) error {
	if err := s.repo.UpdateBalance(ctx, tx, w.ID, balance); err != nil {
		return storageErr("update wallet balance", err)
	}
	w.Balance = balance
	return nil
}
