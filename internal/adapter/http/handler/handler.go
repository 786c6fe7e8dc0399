package handler

import (
	"strings"
	"time"

	"money-tracker/internal/adapter/http/dto"
	"money-tracker/internal/adapter/http/middleware"
	"money-tracker/internal/core/domain"
	"money-tracker/pkg/apperror"
	"money-tracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20

	// HeaderIdempotencyKey makes POST /transactions safe to retry.
	HeaderIdempotencyKey = "Idempotency-Key"
)

// bindJSON decodes the request body into req and writes the error response
// when it cannot.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, apperror.ErrPayloadTooLarge())
		} else {
			response.Error(c, apperror.Validation(dto.ValidationMessage(err)))
		}
		return false
	}
	dto.SanitizeStruct(req)
	return true
}

// currentUser returns the authenticated user or writes a 401.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
	}
	return id, ok
}

// pathID parses the :id route parameter. An unparsable id cannot name an
// existing entity, so it is reported as not found.
func pathID(c *gin.Context, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound(entity))
		return uuid.Nil, false
	}
	return id, true
}

// optionalID parses an optional reference id. A missing or empty value is
// absent.
func optionalID(field string, s *string) (*uuid.UUID, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*s))
	if err != nil {
		return nil, apperror.Validation(field + " must be a UUID")
	}
	return &id, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toUserResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func toWalletResponse(w *domain.Wallet) dto.WalletResponse {
	return dto.WalletResponse{
		ID:        w.ID.String(),
		Type:      string(w.Type),
		Balance:   domain.FormatMoney(w.Balance),
		CreatedAt: formatTime(w.CreatedAt),
		UpdatedAt: formatTime(w.UpdatedAt),
	}
}

func toPersonResponse(p *domain.Person) dto.PersonResponse {
	s := p.Summary()
	return dto.PersonResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Phone:         p.Phone,
		Notes:         p.Notes,
		TotalReceived: domain.FormatMoney(s.TotalReceived),
		TotalGiven:    domain.FormatMoney(s.TotalGiven),
		NetBalance:    domain.FormatMoney(s.NetBalance),
		Status:        string(s.Status),
		CreatedAt:     formatTime(p.CreatedAt),
	}
}

func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:              t.ID.String(),
		TransactionType: string(t.TransactionType),
		Amount:          domain.FormatMoney(t.Amount),
		PersonID:        idString(t.PersonID),
		FromWalletID:    idString(t.FromWalletID),
		ToWalletID:      idString(t.ToWalletID),
		Description:     t.Description,
		Date:            formatTime(t.Date),
		ReversalOf:      idString(t.ReversalOf),
		CreatedAt:       formatTime(t.CreatedAt),
	}
}

func toTransactionList(txns []domain.Transaction, total int64, page, pageSize int) dto.TransactionListResponse {
	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}
	return dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func pageOf(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}
