package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, owner_id, transaction_type, amount, person_id, from_wallet_id, to_wallet_id,
		description, date, reversal_of, created_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction within a database transaction.
// The unique index on reversal_of turns a second reversal into ports.ErrDuplicate.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.OwnerID, t.TransactionType, t.Amount, t.PersonID,
		t.FromWalletID, t.ToWalletID, t.Description, t.Date, t.ReversalOf, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", mapErr(err))
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a transaction and locks its row.
// This MUST be called within a transaction.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	return scanTransaction(tx.QueryRow(ctx, query, id))
}

// GetReversalOf returns the reversal of originalID, if one exists.
func (r *TransactionRepo) GetReversalOf(ctx context.Context, tx pgx.Tx, originalID uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reversal_of = $1`
	return scanTransaction(tx.QueryRow(ctx, query, originalID))
}

// List fetches transactions with filtering and pagination, newest first.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	add := func(cond string, arg any) {
		conditions = append(conditions, fmt.Sprintf(cond, argIdx))
		args = append(args, arg)
		argIdx++
	}

	add("owner_id = $%d", params.OwnerID)
	if params.Type != nil {
		add("transaction_type = $%d", *params.Type)
	}
	if params.PersonID != nil {
		add("person_id = $%d", *params.PersonID)
	}
	if params.WalletID != nil {
		conditions = append(conditions, fmt.Sprintf("(from_wallet_id = $%d OR to_wallet_id = $%d)", argIdx, argIdx))
		args = append(args, *params.WalletID)
		argIdx++
	}
	if params.WalletType != nil {
		add(`EXISTS (SELECT 1 FROM wallets w
			WHERE w.id IN (transactions.from_wallet_id, transactions.to_wallet_id) AND w.type = $%d)`, *params.WalletType)
	}
	if params.From != nil {
		add("date >= $%d", *params.From)
	}
	if params.To != nil {
		add("date < $%d", *params.To)
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	// Fetch page
	dataQuery := fmt.Sprintf(`SELECT %s FROM transactions %s
		ORDER BY date DESC, created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(transactionFields(&t)...); err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

func transactionFields(t *domain.Transaction) []any {
	return []any{
		&t.ID, &t.OwnerID, &t.TransactionType, &t.Amount, &t.PersonID,
		&t.FromWalletID, &t.ToWalletID, &t.Description, &t.Date, &t.ReversalOf, &t.CreatedAt,
	}
}

// scanTransaction is a helper to scan a single row into a Transaction.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	if err := row.Scan(transactionFields(t)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", mapErr(err))
	}
	return t, nil
}
