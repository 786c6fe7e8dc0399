package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"
	"money-tracker/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const maxPersonNameLen = 100

// PersonLedger keeps the received and given totals of every person and
// derives their settlement status.
type PersonLedger struct {
	repo       ports.PersonRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewPersonLedger creates a new PersonLedger.
func NewPersonLedger(repo ports.PersonRepository, transactor ports.DBTransactor, log zerolog.Logger) *PersonLedger {
	return &PersonLedger{repo: repo, transactor: transactor, log: log}
}

// Create registers a new person with zero totals.
func (l *PersonLedger) Create(ctx context.Context, req ports.CreatePersonRequest) (*domain.Person, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}
	if utf8.RuneCountInString(name) > maxPersonNameLen {
		return nil, apperror.Validation(fmt.Sprintf("name must be at most %d characters", maxPersonNameLen))
	}

	p := &domain.Person{
		ID:            uuid.New(),
		OwnerID:       req.OwnerID,
		Name:          name,
		Phone:         trimOptional(req.Phone),
		Notes:         trimOptional(req.Notes),
		TotalReceived: decimal.Zero,
		TotalGiven:    decimal.Zero,
		CreatedAt:     time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, p); err != nil {
		return nil, storageErr("create person", err)
	}
	return p, nil
}

// Get returns one of the owner's people.
func (l *PersonLedger) Get(ctx context.Context, ownerID, personID uuid.UUID) (*domain.Person, error) {
	p, err := l.repo.GetByID(ctx, personID)
	if err != nil {
		return nil, storageErr("get person", err)
	}
	if p == nil || p.OwnerID != ownerID {
		return nil, apperror.ErrNotFound("Person")
	}
	return p, nil
}

// Summarize returns the ledger view of a person.
func (l *PersonLedger) Summarize(ctx context.Context, ownerID, personID uuid.UUID) (*domain.PersonSummary, error) {
	p, err := l.Get(ctx, ownerID, personID)
	if err != nil {
		return nil, err
	}
	summary := p.Summary()
	return &summary, nil
}

// List returns the owner's active people.
func (l *PersonLedger) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Person, error) {
	people, err := l.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageErr("list people", err)
	}
	return people, nil
}

// CanDelete reports whether p has no received or given history.
func (l *PersonLedger) CanDelete(p *domain.Person) bool {
	return p.CanDelete()
}

// Delete removes a person that has no transaction history.
func (l *PersonLedger) Delete(ctx context.Context, ownerID, personID uuid.UUID) error {
	dbTx, err := l.transactor.Begin(ctx)
	if err != nil {
		return storageErr("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	p, err := l.Lock(ctx, dbTx, ownerID, personID)
	if err != nil {
		return err
	}
	if !l.CanDelete(p) {
		return apperror.ErrPersonHasBalance()
	}
	if err := l.repo.SoftDelete(ctx, dbTx, p.ID, time.Now().UTC()); err != nil {
		return storageErr("delete person", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return storageErr("commit tx", err)
	}

	l.log.Info().
		Str("person_id", personID.String()).
		Str("owner_id", ownerID.String()).
		Msg("person deleted")
	return nil
}

// Lock row-locks one of the owner's people inside tx.
func (l *PersonLedger) Lock(ctx context.Context, tx pgx.Tx, ownerID, personID uuid.UUID) (*domain.Person, error) {
	p, err := l.repo.GetByIDForUpdate(ctx, tx, personID)
	if err != nil {
		return nil, storageErr("lock person", err)
	}
	if p == nil || p.OwnerID != ownerID {
		return nil, apperror.ErrNotFound("Person")
	}
	return p, nil
}

// RecordReceived adds delta to the person's received total. Reversals pass a
// negative delta.
func (l *PersonLedger) RecordReceived(ctx context.Context, tx pgx.Tx, p *domain.Person, delta decimal.Decimal) error {
	return l.setTotals(ctx, tx, p, p.TotalReceived.Add(delta), p.TotalGiven)
}

// RecordGiven adds delta to the person's given total. Reversals pass a
// negative delta.
func (l *PersonLedger) RecordGiven(ctx context.Context, tx pgx.Tx, p *domain.Person, delta decimal.Decimal) error {
	return l.setTotals(ctx, tx, p, p.TotalReceived, p.TotalGiven.Add(delta))
}

func (l *PersonLedger) record(ctx context.Context, tx pgx.Tx, p *domain.Person, effect domain.PersonEffect, amount decimal.Decimal) error {
	delta := amount
	if effect.Negate {
		delta = amount.Neg()
	}
	switch effect.Total {
	case domain.TransactionTypeReceived:
		return l.RecordReceived(ctx, tx, p, delta)
	case domain.TransactionTypeGiven:
		return l.RecordGiven(ctx, tx, p, delta)
	default:
		return apperror.ErrInvalidShape(fmt.Sprintf("%s does not affect a person", effect.Total))
	}
}

func (l *PersonLedger) setTotals(ctx context.Context, tx pgx.Tx, p *domain.Person, received, given decimal.Decimal) error {
	if err := l.repo.UpdateTotals(ctx, tx, p.ID, received, given); err != nil {
		return storageErr("update person totals", err)
	}
	p.TotalReceived = received
	p.TotalGiven = given
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
