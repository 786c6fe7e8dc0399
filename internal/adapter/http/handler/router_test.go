package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"
	"money-tracker/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type routerMocks struct {
	auth     *mocks.MockAuthService
	wallets  *mocks.MockWalletService
	balance  *mocks.MockBalanceService
	people   *mocks.MockPersonService
	txns     *mocks.MockTransactionService
	reversal *mocks.MockReversalService
	tokens   *mocks.MockTokenService
	audit    *mocks.MockAuditService
}

func setupTestRouter(t *testing.T) (http.Handler, *routerMocks) {
	ctrl := gomock.NewController(t)
	m := &routerMocks{
		auth:     mocks.NewMockAuthService(ctrl),
		wallets:  mocks.NewMockWalletService(ctrl),
		balance:  mocks.NewMockBalanceService(ctrl),
		people:   mocks.NewMockPersonService(ctrl),
		txns:     mocks.NewMockTransactionService(ctrl),
		reversal: mocks.NewMockReversalService(ctrl),
		tokens:   mocks.NewMockTokenService(ctrl),
		audit:    mocks.NewMockAuditService(ctrl),
	}
	r := SetupRouter(RouterDeps{
		AuthSvc:        m.auth,
		WalletSvc:      m.wallets,
		BalanceSvc:     m.balance,
		PersonSvc:      m.people,
		TransactionSvc: m.txns,
		ReversalSvc:    m.reversal,
		TokenSvc:       m.tokens,
		AuditSvc:       m.audit,
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         zerolog.Nop(),
	})
	return r, m
}

func TestRouter_Health(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	r, _ := setupTestRouter(t)

	routes := [][2]string{
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodPost, "/api/v1/wallets"},
		{http.MethodGet, "/api/v1/wallets"},
		{http.MethodGet, "/api/v1/wallets/balance"},
		{http.MethodPost, "/api/v1/people"},
		{http.MethodGet, "/api/v1/people"},
		{http.MethodGet, "/api/v1/people/" + uuid.NewString()},
		{http.MethodGet, "/api/v1/people/" + uuid.NewString() + "/ledger"},
		{http.MethodDelete, "/api/v1/people/" + uuid.NewString()},
		{http.MethodPost, "/api/v1/transactions"},
		{http.MethodGet, "/api/v1/transactions"},
		{http.MethodGet, "/api/v1/transactions/" + uuid.NewString()},
		{http.MethodPost, "/api/v1/transactions/" + uuid.NewString() + "/reverse"},
	}
	for _, rt := range routes {
		w := doRequest(r, rt[0], rt[1], nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt[0], rt[1])
	}
}

func TestRouter_AuthenticatedWriteIsAudited(t *testing.T) {
	r, m := setupTestRouter(t)
	userID := uuid.New()
	walletID := uuid.New()

	m.tokens.EXPECT().Validate("tok").Return(&ports.TokenClaims{UserID: userID, Email: "a@b.io"}, nil)
	m.wallets.EXPECT().Create(gomock.Any(), userID, domain.WalletTypeCash).Return(&domain.Wallet{
		ID:        walletID,
		OwnerID:   userID,
		Type:      domain.WalletTypeCash,
		Balance:   decimal.Zero,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil)
	m.audit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry *domain.AuditLog) {
		assert.Equal(t, domain.AuditActionCreateWallet, entry.Action)
		assert.Equal(t, walletID.String(), entry.ResourceID)
		if assert.NotNil(t, entry.UserID) {
			assert.Equal(t, userID, *entry.UserID)
		}
	})

	w := doRequest(r, http.MethodPost, "/api/v1/wallets", map[string]string{"type": "CASH"},
		"Authorization", "Bearer tok")

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(r, http.MethodOptions, "/api/v1/transactions", nil, "Origin", "http://localhost:3000")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
