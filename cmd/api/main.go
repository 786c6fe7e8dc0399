package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"money-tracker/config"
	httpHandler "money-tracker/internal/adapter/http/handler"
	"money-tracker/internal/adapter/http/middleware"
	memStorage "money-tracker/internal/adapter/storage/memory"
	pgStorage "money-tracker/internal/adapter/storage/postgres"
	redisStorage "money-tracker/internal/adapter/storage/redis"
	"money-tracker/internal/core/ports"
	"money-tracker/internal/service"
	"money-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// storage is the set of repositories backing the services.
type storage struct {
	users        ports.UserRepository
	wallets      ports.WalletRepository
	people       ports.PersonRepository
	transactions ports.TransactionRepository
	idempotency  ports.IdempotencyRepository
	audit        ports.AuditRepository
	transactor   ports.DBTransactor
	health       ports.HealthChecker
	close        func()
}

func main() {
	cfg, err := config.Load(os.Getenv("MT_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting Money Tracker")

	ctx := context.Background()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise storage")
	}
	defer store.close()

	healthCheckers := []ports.HealthChecker{store.health}

	// Redis is optional: without it idempotency keys are served from the
	// durable log only and rate limiting is off.
	var (
		idempotencyCache ports.IdempotencyCache
		rateLimitStore   *redisStorage.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without idempotency cache and rate limiting")
		} else {
			defer rdb.Close()
			idempotencyCache = redisStorage.NewIdempotencyCache(rdb, cfg.Redis.IdempotencyTTL)
			rateLimitStore = redisStorage.NewRateLimitStore(rdb)
			healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
		}
	}

	// Core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	authSvc := service.NewAuthService(store.users, hashSvc, tokenSvc)
	auditSvc := service.NewAuditService(store.audit, logger.WithComponent(log, "audit"))

	// Ledger engine
	ledgerLog := logger.WithComponent(log, "ledger")
	overdraft := service.NewOverdraftPolicy(cfg.Ledger.AllowOverdraft)
	walletStore := service.NewWalletStore(store.wallets, overdraft, ledgerLog)
	personLedger := service.NewPersonLedger(store.people, store.transactor, ledgerLog)
	processor := service.NewTransactionProcessor(
		store.transactions,
		store.idempotency,
		walletStore,
		personLedger,
		store.transactor,
		idempotencyCache,
		ledgerLog,
	)
	reversals := service.NewReversalEngine(store.transactions, processor, store.transactor, ledgerLog)
	balances := service.NewBalanceAggregator(store.wallets, store.transactor)

	gin.SetMode(cfg.Server.Mode)
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		WalletSvc:      walletStore,
		BalanceSvc:     balances,
		PersonSvc:      personLedger,
		TransactionSvc: processor,
		ReversalSvc:    reversals,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		RateLimits:     middleware.RateLimitRules(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.APIPerMinute),
		HealthCheckers: healthCheckers,
		AuditSvc:       auditSvc,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger.WithComponent(log, "http"),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	auditSvc.Wait()

	log.Info().Msg("Server exited")
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		mem := memStorage.NewStore(cfg.Ledger.LockTimeout)
		return &storage{
			users:        memStorage.NewUserRepo(mem),
			wallets:      memStorage.NewWalletRepo(mem),
			people:       memStorage.NewPersonRepo(mem),
			transactions: memStorage.NewTransactionRepo(mem),
			idempotency:  memStorage.NewIdempotencyRepo(mem),
			audit:        memStorage.NewAuditRepo(mem),
			transactor:   memStorage.NewTransactor(mem),
			health:       memStorage.NewHealthCheck(mem),
			close:        func() {},
		}, nil
	}

	if cfg.Database.AutoMigrate {
		if err := pgStorage.Migrate(cfg.Database.DSN(), cfg.Database.DBName, pgStorage.MigrateUp, log); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	log.Info().Msg("PostgreSQL connected")

	return &storage{
		users:        pgStorage.NewUserRepo(pool),
		wallets:      pgStorage.NewWalletRepo(pool),
		people:       pgStorage.NewPersonRepo(pool),
		transactions: pgStorage.NewTransactionRepo(pool),
		idempotency:  pgStorage.NewIdempotencyRepo(pool),
		audit:        pgStorage.NewAuditRepo(pool),
		transactor:   pgStorage.NewTransactor(pool, cfg.Ledger.LockTimeout),
		health:       pgStorage.NewHealthCheck(pool),
		close:        pool.Close,
	}, nil
}
