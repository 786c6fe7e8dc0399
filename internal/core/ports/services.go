package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"money-tracker/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}

// IdempotencyCache remembers the transaction created for an owner's
// Idempotency-Key. Lookup returns nil, nil for an unknown key.
type IdempotencyCache interface {
	Lookup(ctx context.Context, ownerID uuid.UUID, key string) (*domain.Transaction, error)
	Remember(ctx context.Context, ownerID uuid.UUID, key string, txn *domain.Transaction) error
}

// AuditService records audit entries without blocking the caller.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// --- Service Ports (Business Logic) ---

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error) // token, expiry, error
	Me(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// WalletService exposes the wallet store to the API layer.
type WalletService interface {
	Create(ctx context.Context, ownerID uuid.UUID, walletType domain.WalletType) (*domain.Wallet, error)
	Get(ctx context.Context, ownerID, walletID uuid.UUID) (*domain.Wallet, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Wallet, error)
}

// BalanceService reports aggregated wallet balances.
type BalanceService interface {
	GetBalance(ctx context.Context, ownerID uuid.UUID) (*domain.Balance, error)
}

// PersonService exposes the person ledger to the API layer.
type PersonService interface {
	Create(ctx context.Context, req CreatePersonRequest) (*domain.Person, error)
	Get(ctx context.Context, ownerID, personID uuid.UUID) (*domain.Person, error)
	Summarize(ctx context.Context, ownerID, personID uuid.UUID) (*domain.PersonSummary, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Person, error)
	Delete(ctx context.Context, ownerID, personID uuid.UUID) error
}

// CreatePersonRequest holds validated input for person creation.
type CreatePersonRequest struct {
	OwnerID uuid.UUID
	Name    string
	Phone   *string
	Notes   *string
}

// TransactionService applies and queries transactions.
type TransactionService interface {
	Apply(ctx context.Context, req ApplyRequest) (*domain.Transaction, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// ApplyRequest holds validated input for applying a transaction.
type ApplyRequest struct {
	OwnerID        uuid.UUID
	Amount         decimal.Decimal
	Movement       domain.Movement
	Description    *string
	Date           *time.Time
	IdempotencyKey string
}

// ReversalService cancels a prior transaction with a compensating one.
type ReversalService interface {
	Reverse(ctx context.Context, ownerID, transactionID uuid.UUID) (*domain.Transaction, error)
}
