package memory

import (
	"context"
	"fmt"
	"slices"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	store *Store
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(store *Store) *TransactionRepo {
	return &TransactionRepo{store: store}
}

// Create stages the record in tx. A second reversal of the same original
// fails with ports.ErrDuplicate.
func (r *TransactionRepo) Create(_ context.Context, tx pgx.Tx, t *domain.Transaction) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if err := mtx.writable(); err != nil {
		return err
	}
	if t.ReversalOf != nil {
		if existing, _ := r.reversalOf(mtx, *t.ReversalOf); existing != nil {
			return ports.ErrDuplicate
		}
	}
	mtx.txns = append(mtx.txns, *t)
	return nil
}

func (r *TransactionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	t, ok := r.store.txns[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if err := mtx.lock(ctx, txnKey(id)); err != nil {
		return nil, fmt.Errorf("lock transaction %s: %w", id, err)
	}
	for i := range mtx.txns {
		if mtx.txns[i].ID == id {
			t := mtx.txns[i]
			return &t, nil
		}
	}
	return r.GetByID(ctx, id)
}

func (r *TransactionRepo) GetReversalOf(_ context.Context, tx pgx.Tx, originalID uuid.UUID) (*domain.Transaction, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	return r.reversalOf(mtx, originalID)
}

func (r *TransactionRepo) reversalOf(mtx *Tx, originalID uuid.UUID) (*domain.Transaction, error) {
	for i := range mtx.txns {
		if mtx.txns[i].ReversalOf != nil && *mtx.txns[i].ReversalOf == originalID {
			t := mtx.txns[i]
			return &t, nil
		}
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	id, ok := r.store.reversals[originalID]
	if !ok {
		return nil, nil
	}
	t := r.store.txns[id]
	return &t, nil
}

// List filters the owner's transactions and returns one page, newest first.
func (r *TransactionRepo) List(_ context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []domain.Transaction
	for _, t := range r.store.txns {
		if r.matches(&t, params) {
			result = append(result, t)
		}
	}
	slices.SortFunc(result, newestFirst)
	total := int64(len(result))

	start := params.Offset()
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := len(result)
	if params.PageSize > 0 && start+params.PageSize < end {
		end = start + params.PageSize
	}
	return result[start:end], total, nil
}

// matches must be called with the store read lock held.
func (r *TransactionRepo) matches(t *domain.Transaction, p ports.TransactionListParams) bool {
	if t.OwnerID != p.OwnerID {
		return false
	}
	if p.Type != nil && t.TransactionType != *p.Type {
		return false
	}
	if p.PersonID != nil && (t.PersonID == nil || *t.PersonID != *p.PersonID) {
		return false
	}
	if p.WalletID != nil && !t.Touches(*p.WalletID) {
		return false
	}
	if p.WalletType != nil && !r.touchesType(t, *p.WalletType) {
		return false
	}
	if p.From != nil && t.Date.Before(*p.From) {
		return false
	}
	if p.To != nil && !t.Date.Before(*p.To) {
		return false
	}
	return true
}

func (r *TransactionRepo) touchesType(t *domain.Transaction, wt domain.WalletType) bool {
	for _, id := range []*uuid.UUID{t.FromWalletID, t.ToWalletID} {
		if id == nil {
			continue
		}
		if w, ok := r.store.wallets[*id]; ok && w.Type == wt {
			return true
		}
	}
	return false
}

func newestFirst(a, b domain.Transaction) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return domain.CompareIDs(b.ID, a.ID)
}
