package dto

import (
	"encoding/json"
	"time"
)

// --- Auth DTOs ---

// RegisterRequest is the body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
}

// LoginRequest is the body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// UserResponse is returned by register and me.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// --- Wallet DTOs ---

// CreateWalletRequest is the body for POST /api/v1/wallets.
type CreateWalletRequest struct {
	Type string `json:"type" binding:"required,wallet_type"`
}

// WalletResponse is the public representation of a wallet.
type WalletResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// BalanceResponse is returned by GET /api/v1/wallets/balance.
type BalanceResponse struct {
	Cash   string `json:"cash"`
	Online string `json:"online"`
	Total  string `json:"total"`
}

// --- Person DTOs ---

// CreatePersonRequest is the body for POST /api/v1/people.
type CreatePersonRequest struct {
	Name  string  `json:"name" binding:"required,min=1,max=100"`
	Phone *string `json:"phone,omitempty" binding:"omitempty,max=30"`
	Notes *string `json:"notes,omitempty" binding:"omitempty,max=500"`
}

// PersonResponse is a person with its running balance.
type PersonResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Phone         *string `json:"phone,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	TotalReceived string  `json:"total_received"`
	TotalGiven    string  `json:"total_given"`
	NetBalance    string  `json:"net_balance"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

// PersonLedgerResponse is a person together with the transactions that
// touched their balance.
type PersonLedgerResponse struct {
	Person       PersonResponse          `json:"person"`
	Transactions TransactionListResponse `json:"transactions"`
}

// --- Transaction DTOs ---

// CreateTransactionRequest is the body for POST /api/v1/transactions.
// Amount accepts both a JSON number and a numeric string. The reference ids
// are parsed by the handler, where an empty string means absent.
type CreateTransactionRequest struct {
	TransactionType string      `json:"transaction_type" binding:"required,tx_type"`
	Amount          json.Number `json:"amount" binding:"required"`
	PersonID        *string     `json:"person_id,omitempty"`
	FromWalletID    *string     `json:"from_wallet_id,omitempty"`
	ToWalletID      *string     `json:"to_wallet_id,omitempty"`
	Description     *string     `json:"description,omitempty" binding:"omitempty,max=255"`
	Date            *time.Time  `json:"date,omitempty"`
}

// TransactionListQuery holds the query string of GET /api/v1/transactions.
type TransactionListQuery struct {
	Type       string `form:"type" binding:"omitempty,tx_type"`
	WalletType string `form:"wallet_type" binding:"omitempty,wallet_type"`
	WalletID   string `form:"wallet_id" binding:"omitempty,uuid"`
	PersonID   string `form:"person_id" binding:"omitempty,uuid"`
	From       string `form:"from" binding:"omitempty,ledger_date"`
	To         string `form:"to" binding:"omitempty,ledger_date"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// TransactionResponse is the public representation of a transaction.
type TransactionResponse struct {
	ID              string  `json:"id"`
	TransactionType string  `json:"transaction_type"`
	Amount          string  `json:"amount"`
	PersonID        *string `json:"person_id,omitempty"`
	FromWalletID    *string `json:"from_wallet_id,omitempty"`
	ToWalletID      *string `json:"to_wallet_id,omitempty"`
	Description     *string `json:"description,omitempty"`
	Date            string  `json:"date"`
	ReversalOf      *string `json:"reversal_of,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// TransactionListResponse is a page of transactions.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}
