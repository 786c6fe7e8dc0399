package domain

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// ErrInvalidShape is returned when the referenced parties of a transaction
// do not match what its type requires.
var ErrInvalidShape = errors.New("invalid transaction shape")

// Movement is the validated shape of a money movement. Each case carries
// exactly the references its transaction type needs.
type Movement interface {
	Type() TransactionType
	Plan() Plan
	validate() error
}

// Plan is the set of effects a movement has on wallets and people.
type Plan struct {
	Debit  *uuid.UUID
	Credit *uuid.UUID
	Person *PersonEffect
}

// PersonEffect adjusts one of a person's running totals.
// Total is TransactionTypeReceived or TransactionTypeGiven.
type PersonEffect struct {
	PersonID uuid.UUID
	Total    TransactionType
	Negate   bool
}

// WalletIDs returns the distinct wallets of the plan in ascending order,
// which is the order they must be locked in.
func (p Plan) WalletIDs() []uuid.UUID {
	var ids []uuid.UUID
	if p.Debit != nil {
		ids = append(ids, *p.Debit)
	}
	if p.Credit != nil && (p.Debit == nil || *p.Credit != *p.Debit) {
		ids = append(ids, *p.Credit)
	}
	slices.SortFunc(ids, CompareIDs)
	return ids
}

// CompareIDs orders ids the way PostgreSQL orders uuid values.
func CompareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

// Received records money a person handed over into a wallet.
type Received struct {
	PersonID   uuid.UUID
	ToWalletID uuid.UUID
}

func (m Received) Type() TransactionType { return TransactionTypeReceived }

func (m Received) Plan() Plan {
	return Plan{
		Credit: &m.ToWalletID,
		Person: &PersonEffect{PersonID: m.PersonID, Total: TransactionTypeReceived},
	}
}

func (m Received) validate() error {
	if m.PersonID == uuid.Nil {
		return shapeErr("personId is required for RECEIVED")
	}
	if m.ToWalletID == uuid.Nil {
		return shapeErr("toWalletId is required for RECEIVED")
	}
	return nil
}

// Given records money handed to a person out of a wallet.
type Given struct {
	PersonID     uuid.UUID
	FromWalletID uuid.UUID
}

func (m Given) Type() TransactionType { return TransactionTypeGiven }

func (m Given) Plan() Plan {
	return Plan{
		Debit:  &m.FromWalletID,
		Person: &PersonEffect{PersonID: m.PersonID, Total: TransactionTypeGiven},
	}
}

func (m Given) validate() error {
	if m.PersonID == uuid.Nil {
		return shapeErr("personId is required for GIVEN")
	}
	if m.FromWalletID == uuid.Nil {
		return shapeErr("fromWalletId is required for GIVEN")
	}
	return nil
}

// Expense takes money out of a wallet.
type Expense struct {
	FromWalletID uuid.UUID
}

func (m Expense) Type() TransactionType { return TransactionTypeExpense }

func (m Expense) Plan() Plan { return Plan{Debit: &m.FromWalletID} }

func (m Expense) validate() error {
	if m.FromWalletID == uuid.Nil {
		return shapeErr("fromWalletId is required for EXPENSE")
	}
	return nil
}

// Income puts money into a wallet.
type Income struct {
	ToWalletID uuid.UUID
}

func (m Income) Type() TransactionType { return TransactionTypeIncome }

func (m Income) Plan() Plan { return Plan{Credit: &m.ToWalletID} }

func (m Income) validate() error {
	if m.ToWalletID == uuid.Nil {
		return shapeErr("toWalletId is required for INCOME")
	}
	return nil
}

// Transfer moves money between two different wallets.
type Transfer struct {
	FromWalletID uuid.UUID
	ToWalletID   uuid.UUID
}

func (m Transfer) Type() TransactionType { return TransactionTypeTransfer }

func (m Transfer) Plan() Plan { return Plan{Debit: &m.FromWalletID, Credit: &m.ToWalletID} }

func (m Transfer) validate() error {
	if m.FromWalletID == uuid.Nil || m.ToWalletID == uuid.Nil {
		return shapeErr("fromWalletId and toWalletId are required for TRANSFER")
	}
	if m.FromWalletID == m.ToWalletID {
		return shapeErr("fromWalletId and toWalletId must be different for TRANSFER")
	}
	return nil
}

// Reversal cancels the wallet and person effects of Of. It keeps the type
// label of the original; the wallets trade places and the person total moves
// back by the same amount.
type Reversal struct {
	Of *Transaction
}

func (m Reversal) Type() TransactionType { return m.Of.TransactionType }

func (m Reversal) Plan() Plan {
	p := Plan{Debit: m.Of.ToWalletID, Credit: m.Of.FromWalletID}
	if m.Of.PersonID != nil {
		p.Person = &PersonEffect{PersonID: *m.Of.PersonID, Total: m.Of.TransactionType, Negate: true}
	}
	return p
}

func (m Reversal) validate() error {
	if m.Of == nil {
		return shapeErr("reversal requires an original transaction")
	}
	if m.Of.IsReversal() {
		return shapeErr("a reversal cannot be reversed")
	}
	if m.Of.FromWalletID == nil && m.Of.ToWalletID == nil {
		return shapeErr("original transaction moved no money")
	}
	return nil
}

// NewMovement builds the movement for t from the optional references of a
// request, rejecting any combination the type does not allow.
func NewMovement(t TransactionType, personID, fromWalletID, toWalletID *uuid.UUID) (Movement, error) {
	var m Movement
	switch t {
	case TransactionTypeReceived:
		if fromWalletID != nil {
			return nil, shapeErr("fromWalletId must be empty for RECEIVED")
		}
		m = Received{PersonID: deref(personID), ToWalletID: deref(toWalletID)}
	case TransactionTypeGiven:
		if toWalletID != nil {
			return nil, shapeErr("toWalletId must be empty for GIVEN")
		}
		m = Given{PersonID: deref(personID), FromWalletID: deref(fromWalletID)}
	case TransactionTypeExpense:
		if personID != nil {
			return nil, shapeErr("personId must be empty for EXPENSE")
		}
		if toWalletID != nil {
			return nil, shapeErr("toWalletId must be empty for EXPENSE")
		}
		m = Expense{FromWalletID: deref(fromWalletID)}
	case TransactionTypeIncome:
		if personID != nil {
			return nil, shapeErr("personId must be empty for INCOME")
		}
		if fromWalletID != nil {
			return nil, shapeErr("fromWalletId must be empty for INCOME")
		}
		m = Income{ToWalletID: deref(toWalletID)}
	case TransactionTypeTransfer:
		if personID != nil {
			return nil, shapeErr("personId must be empty for TRANSFER")
		}
		m = Transfer{FromWalletID: deref(fromWalletID), ToWalletID: deref(toWalletID)}
	default:
		return nil, shapeErr(fmt.Sprintf("unsupported transaction type %q", t))
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ValidateMovement checks a movement built outside NewMovement.
func ValidateMovement(m Movement) error {
	if m == nil {
		return shapeErr("movement is required")
	}
	return m.validate()
}

func shapeErr(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidShape, msg)
}

func deref(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
