package handler

import (
	"money-tracker/internal/adapter/http/middleware"
	redisStore "money-tracker/internal/adapter/storage/redis"
	"money-tracker/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	WalletSvc      ports.WalletService
	BalanceSvc     ports.BalanceService
	PersonSvc      ports.PersonService
	TransactionSvc ports.TransactionService
	ReversalSvc    ports.ReversalService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	RateLimits     map[string]middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS(deps.AllowedOrigins))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	rl := func(group string) gin.HandlerFunc {
		rule, ok := deps.RateLimits[group]
		if !ok || deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl(middleware.GroupAuthRegister), authHandler.Register)
		auth.POST("/login", rl(middleware.GroupAuthLogin), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	api := v1.Group("", jwtAuth, rl(middleware.GroupAPI))

	api.GET("/auth/me", authHandler.Me)

	walletHandler := NewWalletHandler(deps.WalletSvc, deps.BalanceSvc)
	wallets := api.Group("/wallets")
	{
		wallets.POST("", walletHandler.Create)
		wallets.GET("", walletHandler.List)
		wallets.GET("/balance", walletHandler.GetBalance)
	}

	personHandler := NewPersonHandler(deps.PersonSvc, deps.TransactionSvc)
	people := api.Group("/people")
	{
		people.POST("", personHandler.Create)
		people.GET("", personHandler.List)
		people.GET("/:id", personHandler.Get)
		people.GET("/:id/ledger", personHandler.Ledger)
		people.DELETE("/:id", personHandler.Delete)
	}

	txnHandler := NewTransactionHandler(deps.TransactionSvc, deps.ReversalSvc)
	transactions := api.Group("/transactions")
	{
		transactions.POST("", txnHandler.Create)
		transactions.GET("", txnHandler.List)
		transactions.GET("/:id", txnHandler.Get)
		transactions.POST("/:id/reverse", txnHandler.Reverse)
	}

	return r
}
