package service

import (
	"context"
	"fmt"
	"strings"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"
	"money-tracker/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReversalEngine cancels a transaction by appending a compensating one.
// History is never edited.
type ReversalEngine struct {
	txRepo     ports.TransactionRepository
	processor  *TransactionProcessor
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewReversalEngine creates a new ReversalEngine.
func NewReversalEngine(
	txRepo ports.TransactionRepository,
	processor *TransactionProcessor,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *ReversalEngine {
	return &ReversalEngine{
		txRepo:     txRepo,
		processor:  processor,
		transactor: transactor,
		log:        log,
	}
}

// Reverse applies the inverse of the owner's transaction transactionID.
// The original row is locked first so that two concurrent reversals of the
// same transaction cannot both succeed.
func (e *ReversalEngine) Reverse(ctx context.Context, ownerID, transactionID uuid.UUID) (*domain.Transaction, error) {
	dbTx, err := e.transactor.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	original, err := e.txRepo.GetByIDForUpdate(ctx, dbTx, transactionID)
	if err != nil {
		return nil, storageErr("lock transaction", err)
	}
	if original == nil || original.OwnerID != ownerID {
		return nil, apperror.ErrNotFound("Transaction")
	}
	if original.IsReversal() {
		return nil, apperror.ErrNotReversible()
	}

	existing, err := e.txRepo.GetReversalOf(ctx, dbTx, original.ID)
	if err != nil {
		return nil, storageErr("find reversal", err)
	}
	if existing != nil {
		return nil, apperror.ErrAlreadyReversed()
	}

	movement := domain.Reversal{Of: original}
	if err := domain.ValidateMovement(movement); err != nil {
		return nil, shapeErr(err)
	}

	description := reversalDescription(original)
	now := e.processor.now()
	txn, err := e.processor.applyInTx(ctx, dbTx, entry{
		ownerID:     ownerID,
		amount:      original.Amount,
		movement:    movement,
		description: &description,
		date:        &now,
	})
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, storageErr("commit tx", err)
	}

	e.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("reversal_of", original.ID.String()).
		Str("owner_id", ownerID.String()).
		Str("amount", domain.FormatMoney(txn.Amount)).
		Msg("transaction reversed")

	return txn, nil
}

func reversalDescription(original *domain.Transaction) string {
	desc := fmt.Sprintf("REVERSAL of #%s", original.ID)
	if original.Description != nil && strings.TrimSpace(*original.Description) != "" {
		desc += " - " + strings.TrimSpace(*original.Description)
	}
	return desc
}
