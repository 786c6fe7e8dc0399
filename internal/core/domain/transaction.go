package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeReceived TransactionType = "RECEIVED"
	TransactionTypeGiven    TransactionType = "GIVEN"
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeReceived, TransactionTypeGiven, TransactionTypeExpense,
		TransactionTypeIncome, TransactionTypeTransfer:
		return true
	}
	return false
}

// Transaction is an immutable ledger entry. FromWalletID, when set, was
// debited by Amount and ToWalletID, when set, was credited by Amount.
// A reversal carries the type label of the transaction it cancels and
// points back to it through ReversalOf.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	OwnerID         uuid.UUID       `json:"owner_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	PersonID        *uuid.UUID      `json:"person_id,omitempty"`
	FromWalletID    *uuid.UUID      `json:"from_wallet_id,omitempty"`
	ToWalletID      *uuid.UUID      `json:"to_wallet_id,omitempty"`
	Description     *string         `json:"description,omitempty"`
	Date            time.Time       `json:"date"`
	ReversalOf      *uuid.UUID      `json:"reversal_of,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// IsReversal returns true if this transaction cancels another one.
func (t *Transaction) IsReversal() bool {
	return t.ReversalOf != nil
}

// Touches reports whether the transaction debited or credited walletID.
func (t *Transaction) Touches(walletID uuid.UUID) bool {
	return (t.FromWalletID != nil && *t.FromWalletID == walletID) ||
		(t.ToWalletID != nil && *t.ToWalletID == walletID)
}
