package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	store *Store
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(store *Store) *WalletRepo {
	return &WalletRepo{store: store}
}

// Create inserts a wallet; one wallet per (owner, type).
func (r *WalletRepo) Create(_ context.Context, w *domain.Wallet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.wallets {
		if existing.OwnerID == w.OwnerID && existing.Type == w.Type {
			return ports.ErrDuplicate
		}
	}
	r.store.wallets[w.ID] = *w
	return nil
}

func (r *WalletRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	w, ok := r.store.wallets[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *WalletRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return ownedWallets(r.store.wallets, ownerID), nil
}

// ListByOwnerTx reads from the snapshot of a read-only transaction, or from
// the transaction's own view otherwise.
func (r *WalletRepo) ListByOwnerTx(_ context.Context, tx pgx.Tx, ownerID uuid.UUID) ([]domain.Wallet, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if mtx.snapshot != nil {
		return ownedWallets(mtx.snapshot, ownerID), nil
	}

	r.store.mu.RLock()
	view := make(map[uuid.UUID]domain.Wallet, len(r.store.wallets))
	for id, w := range r.store.wallets {
		view[id] = w
	}
	r.store.mu.RUnlock()
	for id, w := range mtx.wallets {
		view[id] = w
	}
	return ownedWallets(view, ownerID), nil
}

// LockByIDs locks the wallets in ascending id order and returns those that exist.
func (r *WalletRepo) LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]domain.Wallet, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	sorted := slices.Clone(ids)
	slices.SortFunc(sorted, domain.CompareIDs)

	var wallets []domain.Wallet
	for _, id := range slices.Compact(sorted) {
		if err := mtx.lock(ctx, walletKey(id)); err != nil {
			return nil, fmt.Errorf("lock wallet %s: %w", id, err)
		}
		if w, ok := mtx.wallet(id); ok {
			wallets = append(wallets, w)
		}
	}
	return wallets, nil
}

func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if err := mtx.writable(); err != nil {
		return err
	}
	if err := mtx.lock(ctx, walletKey(walletID)); err != nil {
		return fmt.Errorf("lock wallet %s: %w", walletID, err)
	}
	w, ok := mtx.wallet(walletID)
	if !ok {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	w.Balance = balance
	w.UpdatedAt = time.Now().UTC()
	mtx.wallets[walletID] = w
	return nil
}

func ownedWallets(all map[uuid.UUID]domain.Wallet, ownerID uuid.UUID) []domain.Wallet {
	var wallets []domain.Wallet
	for _, w := range all {
		if w.OwnerID == ownerID {
			wallets = append(wallets, w)
		}
	}
	slices.SortFunc(wallets, func(a, b domain.Wallet) int {
		if a.Type < b.Type {
			return -1
		}
		if a.Type > b.Type {
			return 1
		}
		return 0
	})
	return wallets
}
