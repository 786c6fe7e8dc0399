package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PersonStatus is the settlement state derived from a person's net balance.
type PersonStatus string

const (
	PersonStatusTheyOweMe PersonStatus = "THEY_OWE_ME"
	PersonStatusIOweThem  PersonStatus = "I_OWE_THEM"
	PersonStatusSettled   PersonStatus = "SETTLED"
)

// StatusOf derives the settlement status from net = totalGiven - totalReceived.
func StatusOf(net decimal.Decimal) PersonStatus {
	switch net.Sign() {
	case 1:
		return PersonStatusTheyOweMe
	case -1:
		return PersonStatusIOweThem
	default:
		return PersonStatusSettled
	}
}

// Person is a counterparty money is lent to or borrowed from.
// TotalReceived and TotalGiven are running totals over the non-reversed
// RECEIVED and GIVEN transactions referencing the person.
type Person struct {
	ID            uuid.UUID       `json:"id"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	Name          string          `json:"name"`
	Phone         *string         `json:"phone,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	TotalReceived decimal.Decimal `json:"total_received"`
	TotalGiven    decimal.Decimal `json:"total_given"`
	CreatedAt     time.Time       `json:"created_at"`
	DeletedAt     *time.Time      `json:"-"`
}

// PersonSummary is the ledger view of a person.
type PersonSummary struct {
	TotalReceived decimal.Decimal `json:"total_received"`
	TotalGiven    decimal.Decimal `json:"total_given"`
	NetBalance    decimal.Decimal `json:"net_balance"`
	Status        PersonStatus    `json:"status"`
}

// NetBalance returns totalGiven - totalReceived.
func (p *Person) NetBalance() decimal.Decimal {
	return p.TotalGiven.Sub(p.TotalReceived)
}

// Summary derives the ledger view from the running totals.
func (p *Person) Summary() PersonSummary {
	net := p.NetBalance()
	return PersonSummary{
		TotalReceived: p.TotalReceived,
		TotalGiven:    p.TotalGiven,
		NetBalance:    net,
		Status:        StatusOf(net),
	}
}

// CanDelete is true only when the person carries no received or given history.
func (p *Person) CanDelete() bool {
	return p.TotalReceived.IsZero() && p.TotalGiven.IsZero()
}

// IsDeleted returns true once the person has been removed.
func (p *Person) IsDeleted() bool {
	return p.DeletedAt != nil
}
