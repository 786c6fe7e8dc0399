package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletType identifies the pool of money a wallet represents.
type WalletType string

const (
	WalletTypeCash   WalletType = "CASH"
	WalletTypeOnline WalletType = "ONLINE"
)

// Valid reports whether t is a known wallet type.
func (t WalletType) Valid() bool {
	return t == WalletTypeCash || t == WalletTypeOnline
}

// Wallet holds an owner's balance for one wallet type.
// There is at most one wallet per (owner, type).
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Type      WalletType      `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Balance is the aggregated view over all wallets of an owner.
type Balance struct {
	Cash   decimal.Decimal `json:"cash"`
	Online decimal.Decimal `json:"online"`
	Total  decimal.Decimal `json:"total"`
}

// SumBalances groups wallet balances by type.
func SumBalances(wallets []Wallet) Balance {
	b := Balance{Cash: decimal.Zero, Online: decimal.Zero}
	for _, w := range wallets {
		switch w.Type {
		case WalletTypeCash:
			b.Cash = b.Cash.Add(w.Balance)
		case WalletTypeOnline:
			b.Online = b.Online.Add(w.Balance)
		}
	}
	b.Total = b.Cash.Add(b.Online)
	return b
}
