package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"money-tracker/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Storage errors shared by every repository implementation.
// Lookups that find nothing return (nil, nil) instead of an error.
var (
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrLockTimeout is returned when a row lock could not be acquired in time
	// or the storage aborted the transaction because of contention.
	ErrLockTimeout = errors.New("lock not acquired")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Wallet, error)
	// ListByOwnerTx reads an owner's wallets inside tx without locking them.
	ListByOwnerTx(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID) ([]domain.Wallet, error)
	// LockByIDs locks the given wallets in ascending id order and returns the
	// ones that exist, in that order.
	LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error
}

// PersonRepository defines persistence operations for people.
// Soft-deleted people are invisible to every read.
type PersonRepository interface {
	Create(ctx context.Context, person *domain.Person) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Person, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Person, error)
	UpdateTotals(ctx context.Context, tx pgx.Tx, id uuid.UUID, totalReceived, totalGiven decimal.Decimal) error
	SoftDelete(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) error
}

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	// Create returns ErrDuplicate when transaction.ReversalOf already has a reversal.
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error)
	// GetReversalOf returns the reversal of originalID, if any.
	GetReversalOf(ctx context.Context, tx pgx.Tx, originalID uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
// From is inclusive and To is exclusive; From == To selects nothing.
type TransactionListParams struct {
	OwnerID    uuid.UUID
	Type       *domain.TransactionType
	WalletType *domain.WalletType
	WalletID   *uuid.UUID
	PersonID   *uuid.UUID
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// Offset returns the number of rows to skip for the requested page.
func (p TransactionListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// IdempotencyRepository persists the durable Idempotency-Key log.
type IdempotencyRepository interface {
	// Create returns ErrDuplicate when the owner already used record.Key.
	// The record becomes visible when tx commits.
	Create(ctx context.Context, tx pgx.Tx, record *domain.IdempotencyRecord) error
	Get(ctx context.Context, ownerID uuid.UUID, key string) (*domain.IdempotencyRecord, error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	// Begin starts a read-write transaction whose lock waits are bounded.
	Begin(ctx context.Context) (pgx.Tx, error)
	// BeginSnapshot starts a read-only transaction that sees a single
	// consistent snapshot of the data.
	BeginSnapshot(ctx context.Context) (pgx.Tx, error)
}
