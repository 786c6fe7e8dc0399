package postgres

import (
	"context"
	"testing"
	"time"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newTestTransaction(ownerID, walletID uuid.UUID) *domain.Transaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Transaction{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		TransactionType: domain.TransactionTypeExpense,
		Amount:          decimal.RequireFromString("19.99"),
		FromWalletID:    &walletID,
		Description:     strPtr("groceries"),
		Date:            now,
		CreatedAt:       now,
	}
}

func txCols() []string {
	return []string{"id", "owner_id", "transaction_type", "amount", "person_id", "from_wallet_id",
		"to_wallet_id", "description", "date", "reversal_of", "created_at"}
}

func txRows(txns ...*domain.Transaction) *pgxmock.Rows {
	rows := pgxmock.NewRows(txCols())
	for _, t := range txns {
		rows.AddRow(
			t.ID, t.OwnerID, t.TransactionType, t.Amount, t.PersonID,
			t.FromWalletID, t.ToWalletID, t.Description, t.Date, t.ReversalOf, t.CreatedAt,
		)
	}
	return rows
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New(), uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(
			txn.ID, txn.OwnerID, txn.TransactionType, txn.Amount, txn.PersonID,
			txn.FromWalletID, txn.ToWalletID, txn.Description, txn.Date, txn.ReversalOf, txn.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Create_SecondReversal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	original := uuid.New()
	txn := newTestTransaction(uuid.New(), uuid.New())
	txn.ReversalOf = &original

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "transactions_reversal_of_key"})

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, txn)
	assert.ErrorIs(t, err, ports.ErrDuplicate)
	assert.Contains(t, err.Error(), "transactions_reversal_of_key")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New(), uuid.New())

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(txn.ID).
		WillReturnRows(txRows(txn))

	result, err := repo.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.ID, result.ID)
	assert.True(t, txn.Amount.Equal(result.Amount))
	assert.Equal(t, "groceries", *result.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(txCols()))

	result, err := repo.GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New(), uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id .+ FOR UPDATE").
		WithArgs(txn.ID).
		WillReturnRows(txRows(txn))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), dbTx, txn.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetReversalOf_None(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	original := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE reversal_of").
		WithArgs(original).
		WillReturnRows(pgxmock.NewRows(txCols()))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetReversalOf(context.Background(), dbTx, original)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	owner := uuid.New()
	txn1 := newTestTransaction(owner, uuid.New())
	txn2 := newTestTransaction(owner, uuid.New())

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))

	mock.ExpectQuery("SELECT .+ FROM transactions .+ ORDER BY date DESC").
		WithArgs(owner, 20, 0).
		WillReturnRows(txRows(txn1, txn2))

	txns, total, err := repo.List(context.Background(), ports.TransactionListParams{
		OwnerID:  owner,
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, txns, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_WithFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	owner := uuid.New()
	person := uuid.New()
	wallet := uuid.New()
	txType := domain.TransactionTypeGiven
	walletType := domain.WalletTypeCash
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT.+transaction_type = .+person_id = .+from_wallet_id = .+w.type = .+date >= .+date <").
		WithArgs(owner, txType, person, wallet, walletType, from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))

	mock.ExpectQuery("SELECT .+ FROM transactions .+ LIMIT .+ OFFSET").
		WithArgs(owner, txType, person, wallet, walletType, from, to, 10, 10).
		WillReturnRows(pgxmock.NewRows(txCols()))

	txns, total, err := repo.List(context.Background(), ports.TransactionListParams{
		OwnerID:    owner,
		Type:       &txType,
		PersonID:   &person,
		WalletID:   &wallet,
		WalletType: &walletType,
		From:       &from,
		To:         &to,
		Page:       2,
		PageSize:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, txns)
	assert.NoError(t, mock.ExpectationsWereMet())
}
