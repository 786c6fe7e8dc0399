package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{"positive", "30.00", false},
		{"one decimal", "0.5", false},
		{"integer", "100", false},
		{"zero", "0", true},
		{"negative", "-1.00", true},
		{"three decimals", "1.005", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("12.30")
	require.NoError(t, err)
	assert.Equal(t, "12.30", FormatMoney(d))

	_, err = ParseAmount("twelve")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		net  string
		want PersonStatus
	}{
		{"20.00", PersonStatusTheyOweMe},
		{"-0.01", PersonStatusIOweThem},
		{"0", PersonStatusSettled},
	}

	for _, tt := range tests {
		t.Run(tt.net, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(decimal.RequireFromString(tt.net)))
		})
	}
}

func TestPerson_Summary(t *testing.T) {
	p := &Person{
		TotalReceived: decimal.RequireFromString("15.00"),
		TotalGiven:    decimal.RequireFromString("40.00"),
	}

	s := p.Summary()
	assert.True(t, s.NetBalance.Equal(decimal.RequireFromString("25.00")))
	assert.Equal(t, PersonStatusTheyOweMe, s.Status)
	assert.False(t, p.CanDelete())

	settled := &Person{TotalReceived: decimal.Zero, TotalGiven: decimal.Zero}
	assert.Equal(t, PersonStatusSettled, settled.Summary().Status)
	assert.True(t, settled.CanDelete())
}

func TestPerson_CanDelete_BalancedHistory(t *testing.T) {
	// Net zero is not enough; both totals must be zero.
	p := &Person{
		TotalReceived: decimal.RequireFromString("10.00"),
		TotalGiven:    decimal.RequireFromString("10.00"),
	}
	assert.Equal(t, PersonStatusSettled, p.Summary().Status)
	assert.False(t, p.CanDelete())
}

func TestSumBalances(t *testing.T) {
	b := SumBalances([]Wallet{
		{Type: WalletTypeCash, Balance: decimal.RequireFromString("70.00")},
		{Type: WalletTypeOnline, Balance: decimal.RequireFromString("12.50")},
	})
	assert.Equal(t, "70.00", FormatMoney(b.Cash))
	assert.Equal(t, "12.50", FormatMoney(b.Online))
	assert.Equal(t, "82.50", FormatMoney(b.Total))

	empty := SumBalances(nil)
	assert.True(t, empty.Total.IsZero())
}

func TestWalletType_Valid(t *testing.T) {
	assert.True(t, WalletTypeCash.Valid())
	assert.True(t, WalletTypeOnline.Valid())
	assert.False(t, WalletType("SAVINGS").Valid())
}

func TestNewMovement(t *testing.T) {
	person := uuid.New()
	a := uuid.New()
	b := uuid.New()

	tests := []struct {
		name    string
		txType  TransactionType
		person  *uuid.UUID
		from    *uuid.UUID
		to      *uuid.UUID
		wantErr bool
	}{
		{"received", TransactionTypeReceived, &person, nil, &a, false},
		{"received without person", TransactionTypeReceived, nil, nil, &a, true},
		{"received without wallet", TransactionTypeReceived, &person, nil, nil, true},
		{"received with source", TransactionTypeReceived, &person, &b, &a, true},
		{"given", TransactionTypeGiven, &person, &a, nil, false},
		{"given without source", TransactionTypeGiven, &person, nil, nil, true},
		{"given with destination", TransactionTypeGiven, &person, &a, &b, true},
		{"expense", TransactionTypeExpense, nil, &a, nil, false},
		{"expense with person", TransactionTypeExpense, &person, &a, nil, true},
		{"expense with destination", TransactionTypeExpense, nil, &a, &b, true},
		{"income", TransactionTypeIncome, nil, nil, &a, false},
		{"income with source", TransactionTypeIncome, nil, &b, &a, true},
		{"transfer", TransactionTypeTransfer, nil, &a, &b, false},
		{"transfer same wallet", TransactionTypeTransfer, nil, &a, &a, true},
		{"transfer with person", TransactionTypeTransfer, &person, &a, &b, true},
		{"transfer missing destination", TransactionTypeTransfer, nil, &a, nil, true},
		{"unknown type", TransactionType("LOAN"), nil, &a, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMovement(tt.txType, tt.person, tt.from, tt.to)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidShape))
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.txType, m.Type())
		})
	}
}

func TestMovement_Plan(t *testing.T) {
	person := uuid.New()
	a := uuid.New()
	b := uuid.New()

	given, err := NewMovement(TransactionTypeGiven, &person, &a, nil)
	require.NoError(t, err)
	p := given.Plan()
	require.NotNil(t, p.Debit)
	assert.Equal(t, a, *p.Debit)
	assert.Nil(t, p.Credit)
	require.NotNil(t, p.Person)
	assert.Equal(t, TransactionTypeGiven, p.Person.Total)
	assert.False(t, p.Person.Negate)

	transfer, err := NewMovement(TransactionTypeTransfer, nil, &a, &b)
	require.NoError(t, err)
	p = transfer.Plan()
	assert.Equal(t, a, *p.Debit)
	assert.Equal(t, b, *p.Credit)
	assert.Nil(t, p.Person)
	assert.Len(t, p.WalletIDs(), 2)
	assert.Negative(t, CompareIDs(p.WalletIDs()[0], p.WalletIDs()[1]))
}

func TestReversal_Plan(t *testing.T) {
	person := uuid.New()
	cash := uuid.New()
	original := &Transaction{
		ID:              uuid.New(),
		TransactionType: TransactionTypeGiven,
		PersonID:        &person,
		FromWalletID:    &cash,
	}

	r := Reversal{Of: original}
	require.NoError(t, ValidateMovement(r))
	assert.Equal(t, TransactionTypeGiven, r.Type())

	p := r.Plan()
	assert.Nil(t, p.Debit)
	require.NotNil(t, p.Credit)
	assert.Equal(t, cash, *p.Credit)
	require.NotNil(t, p.Person)
	assert.True(t, p.Person.Negate)
	assert.Equal(t, person, p.Person.PersonID)
}

func TestReversal_RejectsReversal(t *testing.T) {
	cash := uuid.New()
	parent := uuid.New()
	r := Reversal{Of: &Transaction{
		TransactionType: TransactionTypeExpense,
		ToWalletID:      &cash,
		ReversalOf:      &parent,
	}}
	assert.ErrorIs(t, ValidateMovement(r), ErrInvalidShape)
	assert.ErrorIs(t, ValidateMovement(nil), ErrInvalidShape)
}

func TestTransaction_Touches(t *testing.T) {
	a := uuid.New()
	tx := &Transaction{FromWalletID: &a}
	assert.True(t, tx.Touches(a))
	assert.False(t, tx.Touches(uuid.New()))
	assert.False(t, tx.IsReversal())
}
