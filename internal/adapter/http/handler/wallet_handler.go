package handler

import (
	"money-tracker/internal/adapter/http/dto"
	"money-tracker/internal/adapter/http/middleware"
	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"
	"money-tracker/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet-related endpoints.
type WalletHandler struct {
	walletSvc  ports.WalletService
	balanceSvc ports.BalanceService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, balanceSvc ports.BalanceService) *WalletHandler {
	return &WalletHandler{
		walletSvc:  walletSvc,
		balanceSvc: balanceSvc,
	}
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateWalletRequest
	if !bindJSON(c, &req) {
		return
	}

	wallet, err := h.walletSvc.Create(c.Request.Context(), userID, domain.WalletType(req.Type))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, wallet.ID.String())
	response.Created(c, toWalletResponse(wallet))
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	wallets, err := h.walletSvc.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.WalletResponse, 0, len(wallets))
	for i := range wallets {
		items = append(items, toWalletResponse(&wallets[i]))
	}
	response.OK(c, items)
}

// GetBalance handles GET /api/v1/wallets/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	balance, err := h.balanceSvc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		Cash:   domain.FormatMoney(balance.Cash),
		Online: domain.FormatMoney(balance.Online),
		Total:  domain.FormatMoney(balance.Total),
	})
}
