package handler

import (
	"money-tracker/internal/adapter/http/dto"
	"money-tracker/internal/adapter/http/middleware"
	"money-tracker/internal/core/ports"
	"money-tracker/pkg/apperror"
	"money-tracker/pkg/response"

	"github.com/gin-gonic/gin"
)

// PersonHandler handles the people endpoints.
type PersonHandler struct {
	personSvc ports.PersonService
	txnSvc    ports.TransactionService
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(personSvc ports.PersonService, txnSvc ports.TransactionService) *PersonHandler {
	return &PersonHandler{personSvc: personSvc, txnSvc: txnSvc}
}

// Create handles POST /api/v1/people.
func (h *PersonHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreatePersonRequest
	if !bindJSON(c, &req) {
		return
	}

	person, err := h.personSvc.Create(c.Request.Context(), ports.CreatePersonRequest{
		OwnerID: userID,
		Name:    req.Name,
		Phone:   req.Phone,
		Notes:   req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, person.ID.String())
	response.Created(c, toPersonResponse(person))
}

// List handles GET /api/v1/people.
func (h *PersonHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	people, err := h.personSvc.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PersonResponse, 0, len(people))
	for i := range people {
		items = append(items, toPersonResponse(&people[i]))
	}
	response.OK(c, items)
}

// Get handles GET /api/v1/people/:id.
func (h *PersonHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	personID, ok := pathID(c, "Person")
	if !ok {
		return
	}

	person, err := h.personSvc.Get(c.Request.Context(), userID, personID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toPersonResponse(person))
}

// Ledger handles GET /api/v1/people/:id/ledger: the person's balance and
// the transactions recorded against them, newest first.
func (h *PersonHandler) Ledger(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	personID, ok := pathID(c, "Person")
	if !ok {
		return
	}

	var q struct {
		Page     int `form:"page" binding:"omitempty,min=1"`
		PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(dto.ValidationMessage(err)))
		return
	}
	page, pageSize := pageOf(q.Page, q.PageSize)

	person, err := h.personSvc.Get(c.Request.Context(), userID, personID)
	if err != nil {
		response.Error(c, err)
		return
	}

	txns, total, err := h.txnSvc.List(c.Request.Context(), ports.TransactionListParams{
		OwnerID:  userID,
		PersonID: &personID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PersonLedgerResponse{
		Person:       toPersonResponse(person),
		Transactions: toTransactionList(txns, total, page, pageSize),
	})
}

// Delete handles DELETE /api/v1/people/:id.
func (h *PersonHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	personID, ok := pathID(c, "Person")
	if !ok {
		return
	}

	if err := h.personSvc.Delete(c.Request.Context(), userID, personID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
