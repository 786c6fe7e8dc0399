package service

import "github.com/shopspring/decimal"

// OverdraftPolicy decides whether a debit may take a wallet below zero.
type OverdraftPolicy struct {
	allow bool
}

// NewOverdraftPolicy returns a policy that permits negative balances only
// when allow is true.
func NewOverdraftPolicy(allow bool) OverdraftPolicy {
	return OverdraftPolicy{allow: allow}
}

// Allows reports whether debiting amount from balance is permitted.
func (p OverdraftPolicy) Allows(balance, amount decimal.Decimal) bool {
	return p.allow || !balance.Sub(amount).IsNegative()
}
