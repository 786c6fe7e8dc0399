package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"
	"money-tracker/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TransactionProcessor is the single entry point for money movement.
// It applies wallet and person effects and writes the transaction record
// in one storage transaction.
type TransactionProcessor struct {
	txRepo     ports.TransactionRepository
	idempRepo  ports.IdempotencyRepository
	wallets    *WalletStore
	people     *PersonLedger
	transactor ports.DBTransactor
	idempCache ports.IdempotencyCache // nil = idempotency keys are ignored
	log        zerolog.Logger
	now        func() time.Time
}

// NewTransactionProcessor creates a new TransactionProcessor.
func NewTransactionProcessor(
	txRepo ports.TransactionRepository,
	idempRepo ports.IdempotencyRepository,
	wallets *WalletStore,
	people *PersonLedger,
	transactor ports.DBTransactor,
	idempCache ports.IdempotencyCache,
	log zerolog.Logger,
) *TransactionProcessor {
	return &TransactionProcessor{
		txRepo:     txRepo,
		idempRepo:  idempRepo,
		wallets:    wallets,
		people:     people,
		transactor: transactor,
		idempCache: idempCache,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// errKeyUsed means another transaction committed the same Idempotency-Key
// first.
var errKeyUsed = errors.New("idempotency key already used")

// entry is a movement ready to be applied inside a storage transaction.
type entry struct {
	ownerID        uuid.UUID
	amount         decimal.Decimal
	movement       domain.Movement
	description    *string
	date           *time.Time
	idempotencyKey string
}

// Apply validates and applies a transaction request.
// Either every effect and the record are committed, or nothing is.
func (p *TransactionProcessor) Apply(ctx context.Context, req ports.ApplyRequest) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, apperror.ErrInvalidAmount(err)
	}
	if err := domain.ValidateMovement(req.Movement); err != nil {
		return nil, shapeErr(err)
	}
	if _, ok := req.Movement.(domain.Reversal); ok {
		return nil, apperror.ErrInvalidShape("reversals are created by reversing a transaction")
	}

	if prior, err := p.replay(ctx, req); err != nil || prior != nil {
		return prior, err
	}

	dbTx, err := p.transactor.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := p.applyInTx(ctx, dbTx, entry{
		ownerID:        req.OwnerID,
		amount:         req.Amount,
		movement:       req.Movement,
		description:    req.Description,
		date:           req.Date,
		idempotencyKey: req.IdempotencyKey,
	})
	if errors.Is(err, errKeyUsed) {
		_ = dbTx.Rollback(ctx)
		return p.replayStored(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		if req.IdempotencyKey != "" && errors.Is(err, ports.ErrDuplicate) {
			return p.replayStored(ctx, req)
		}
		return nil, storageErr("commit tx", err)
	}

	p.remember(ctx, req.OwnerID, req.IdempotencyKey, txn)

	p.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("owner_id", req.OwnerID.String()).
		Str("type", string(txn.TransactionType)).
		Str("amount", domain.FormatMoney(txn.Amount)).
		Msg("transaction applied")

	return txn, nil
}

// applyInTx locks wallets then the person, applies debit, credit and person
// effects in that order and inserts the record and its idempotency key.
// The caller owns dbTx.
func (p *TransactionProcessor) applyInTx(ctx context.Context, dbTx pgx.Tx, e entry) (*domain.Transaction, error) {
	plan := e.movement.Plan()

	wallets, err := p.wallets.Lock(ctx, dbTx, e.ownerID, plan.WalletIDs()...)
	if err != nil {
		return nil, err
	}

	var person *domain.Person
	if plan.Person != nil {
		person, err = p.people.Lock(ctx, dbTx, e.ownerID, plan.Person.PersonID)
		if err != nil {
			return nil, err
		}
	}

	if plan.Debit != nil {
		if err := p.wallets.Debit(ctx, dbTx, wallets[*plan.Debit], e.amount); err != nil {
			return nil, err
		}
	}
	if plan.Credit != nil {
		if err := p.wallets.Credit(ctx, dbTx, wallets[*plan.Credit], e.amount); err != nil {
			return nil, err
		}
	}
	if person != nil {
		if err := p.people.record(ctx, dbTx, person, *plan.Person, e.amount); err != nil {
			return nil, err
		}
	}

	now := p.now()
	date := now
	if e.date != nil {
		date = e.date.UTC()
	}
	txn := &domain.Transaction{
		ID:              uuid.New(),
		OwnerID:         e.ownerID,
		TransactionType: e.movement.Type(),
		Amount:          e.amount,
		FromWalletID:    plan.Debit,
		ToWalletID:      plan.Credit,
		Description:     e.description,
		Date:            date,
		CreatedAt:       now,
	}
	if plan.Person != nil {
		txn.PersonID = &plan.Person.PersonID
	}
	if r, ok := e.movement.(domain.Reversal); ok {
		txn.ReversalOf = &r.Of.ID
	}

	if err := p.txRepo.Create(ctx, dbTx, txn); err != nil {
		if txn.ReversalOf != nil && errors.Is(err, ports.ErrDuplicate) {
			return nil, apperror.ErrAlreadyReversed()
		}
		return nil, storageErr("create transaction", err)
	}

	if e.idempotencyKey != "" {
		err := p.idempRepo.Create(ctx, dbTx, &domain.IdempotencyRecord{
			OwnerID:       e.ownerID,
			Key:           e.idempotencyKey,
			TransactionID: txn.ID,
			CreatedAt:     now,
		})
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, errKeyUsed
		}
		if err != nil {
			return nil, storageErr("create idempotency key", err)
		}
	}
	return txn, nil
}

// Get returns one of the owner's transactions.
func (p *TransactionProcessor) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Transaction, error) {
	txn, err := p.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get transaction", err)
	}
	if txn == nil || txn.OwnerID != ownerID {
		return nil, apperror.ErrNotFound("Transaction")
	}
	return txn, nil
}

// List returns the owner's transactions matching params, newest first,
// together with the total number of matches.
func (p *TransactionProcessor) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Type != nil && !params.Type.Valid() {
		return nil, 0, apperror.Validation(fmt.Sprintf("unsupported transaction type %q", *params.Type))
	}
	if params.WalletType != nil && !params.WalletType.Valid() {
		return nil, 0, apperror.Validation(fmt.Sprintf("unsupported wallet type %q", *params.WalletType))
	}
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, 0, apperror.Validation("to must not be before from")
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		params.PageSize = defaultPageSize
	}

	txns, total, err := p.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, storageErr("list transactions", err)
	}
	return txns, total, nil
}

// replay returns the transaction an earlier request with the same
// Idempotency-Key created, or nil when the key is new. Redis is consulted
// first and the durable log second.
func (p *TransactionProcessor) replay(ctx context.Context, req ports.ApplyRequest) (*domain.Transaction, error) {
	if req.IdempotencyKey == "" {
		return nil, nil
	}
	if txn := p.cached(ctx, req.OwnerID, req.IdempotencyKey); txn != nil {
		return checkReplay(txn, req)
	}
	return p.stored(ctx, req)
}

// replayStored is called after losing the race for a key, so the winner's
// record must exist.
func (p *TransactionProcessor) replayStored(ctx context.Context, req ports.ApplyRequest) (*domain.Transaction, error) {
	txn, err := p.stored(ctx, req)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, apperror.InternalError(fmt.Errorf("idempotency key %q was used but has no record", req.IdempotencyKey))
	}
	return txn, nil
}

func (p *TransactionProcessor) stored(ctx context.Context, req ports.ApplyRequest) (*domain.Transaction, error) {
	rec, err := p.idempRepo.Get(ctx, req.OwnerID, req.IdempotencyKey)
	if err != nil {
		return nil, storageErr("get idempotency key", err)
	}
	if rec == nil {
		return nil, nil
	}
	txn, err := p.txRepo.GetByID(ctx, rec.TransactionID)
	if err != nil {
		return nil, storageErr("get transaction", err)
	}
	if txn == nil {
		return nil, apperror.InternalError(fmt.Errorf("idempotency key %q points at missing transaction %s", req.IdempotencyKey, rec.TransactionID))
	}
	if _, err := checkReplay(txn, req); err != nil {
		return nil, err
	}
	p.log.Debug().Str("tx_id", txn.ID.String()).Str("idempotency_key", req.IdempotencyKey).Msg("replaying stored transaction")
	p.remember(ctx, req.OwnerID, req.IdempotencyKey, txn)
	return txn, nil
}

// checkReplay returns txn when req asks for the same movement it recorded.
func checkReplay(txn *domain.Transaction, req ports.ApplyRequest) (*domain.Transaction, error) {
	plan := req.Movement.Plan()
	var personID *uuid.UUID
	if plan.Person != nil {
		personID = &plan.Person.PersonID
	}
	same := txn.OwnerID == req.OwnerID &&
		txn.TransactionType == req.Movement.Type() &&
		txn.Amount.Equal(req.Amount) &&
		sameID(txn.PersonID, personID) &&
		sameID(txn.FromWalletID, plan.Debit) &&
		sameID(txn.ToWalletID, plan.Credit)
	if !same {
		return nil, apperror.ErrIdempotencyConflict()
	}
	return txn, nil
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// cached returns the transaction Redis remembers for key, if any. Cache
// failures fall through to the durable log.
func (p *TransactionProcessor) cached(ctx context.Context, ownerID uuid.UUID, key string) *domain.Transaction {
	if key == "" || p.idempCache == nil {
		return nil
	}
	txn, err := p.idempCache.Lookup(ctx, ownerID, key)
	if err != nil {
		p.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed")
		return nil
	}
	if txn != nil {
		p.log.Debug().Str("tx_id", txn.ID.String()).Str("idempotency_key", key).Msg("replaying cached transaction")
	}
	return txn
}

func (p *TransactionProcessor) remember(ctx context.Context, ownerID uuid.UUID, key string, txn *domain.Transaction) {
	if key == "" || p.idempCache == nil {
		return
	}
	if err := p.idempCache.Remember(ctx, ownerID, key, txn); err != nil {
		p.log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to remember idempotency key")
	}
}
