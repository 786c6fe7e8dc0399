package handler

import (
	"strings"

	"money-tracker/internal/adapter/http/dto"
	"money-tracker/internal/adapter/http/middleware"
	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"
	"money-tracker/pkg/apperror"
	"money-tracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxIdempotencyKeyLen = 128

// TransactionHandler handles transaction endpoints.
type TransactionHandler struct {
	txnSvc      ports.TransactionService
	reversalSvc ports.ReversalService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txnSvc ports.TransactionService, reversalSvc ports.ReversalService) *TransactionHandler {
	return &TransactionHandler{txnSvc: txnSvc, reversalSvc: reversalSvc}
}

// Create handles POST /api/v1/transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	idemKey := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	if len(idemKey) > maxIdempotencyKeyLen {
		response.Error(c, apperror.Validation("Idempotency-Key is too long"))
		return
	}

	amount, err := domain.ParseAmount(req.Amount.String())
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount(err))
		return
	}

	var ids [3]*uuid.UUID
	for i, ref := range []struct {
		field string
		value *string
	}{
		{"person_id", req.PersonID},
		{"from_wallet_id", req.FromWalletID},
		{"to_wallet_id", req.ToWalletID},
	} {
		if ids[i], err = optionalID(ref.field, ref.value); err != nil {
			response.Error(c, err)
			return
		}
	}

	movement, err := domain.NewMovement(domain.TransactionType(req.TransactionType), ids[0], ids[1], ids[2])
	if err != nil {
		response.Error(c, apperror.ErrInvalidShape(err.Error()))
		return
	}

	txn, err := h.txnSvc.Apply(c.Request.Context(), ports.ApplyRequest{
		OwnerID:        userID,
		Amount:         amount,
		Movement:       movement,
		Description:    req.Description,
		Date:           req.Date,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, txn.ID.String())
	response.Created(c, toTransactionResponse(txn))
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var q dto.TransactionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(dto.ValidationMessage(err)))
		return
	}

	params, err := listParams(userID, q)
	if err != nil {
		response.Error(c, err)
		return
	}

	txns, total, err := h.txnSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionList(txns, total, params.Page, params.PageSize))
}

// Get handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	txnID, ok := pathID(c, "Transaction")
	if !ok {
		return
	}

	txn, err := h.txnSvc.Get(c.Request.Context(), userID, txnID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// Reverse handles POST /api/v1/transactions/:id/reverse.
func (h *TransactionHandler) Reverse(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	txnID, ok := pathID(c, "Transaction")
	if !ok {
		return
	}

	reversal, err := h.reversalSvc.Reverse(c.Request.Context(), userID, txnID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(reversal))
}

func listParams(userID uuid.UUID, q dto.TransactionListQuery) (ports.TransactionListParams, error) {
	page, pageSize := pageOf(q.Page, q.PageSize)
	params := ports.TransactionListParams{
		OwnerID:  userID,
		Page:     page,
		PageSize: pageSize,
	}
	if q.Type != "" {
		t := domain.TransactionType(q.Type)
		params.Type = &t
	}
	if q.WalletType != "" {
		wt := domain.WalletType(q.WalletType)
		params.WalletType = &wt
	}
	var err error
	if params.WalletID, err = optionalID("wallet_id", &q.WalletID); err != nil {
		return params, err
	}
	if params.PersonID, err = optionalID("person_id", &q.PersonID); err != nil {
		return params, err
	}
	if q.From != "" {
		from, err := dto.ParseDate(q.From)
		if err != nil {
			return params, apperror.Validation(err.Error())
		}
		params.From = &from
	}
	if q.To != "" {
		to, err := dto.ParseDateEnd(q.To)
		if err != nil {
			return params, apperror.Validation(err.Error())
		}
		params.To = &to
	}
	return params, nil
}
