package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/iho/valcoin/internal/adapter/http"
	"github.com/iho/valcoin/internal/adapter/http/handler"
	postgresRepo "github.com/iho/valcoin/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/valcoin/internal/adapter/repository/redis"
	"github.com/iho/valcoin/internal/infrastructure/config"
	"github.com/iho/valcoin/internal/infrastructure/logger"
	"github.com/iho/valcoin/internal/infrastructure/metrics"
	"github.com/iho/valcoin/internal/infrastructure/postgres"
	"github.com/iho/valcoin/internal/infrastructure/redis"
	"github.com/iho/valcoin/internal/usecase"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(appLogger, cfg.DatabaseURL, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	ruleRepo := postgresRepo.NewRuleRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	legadoRepo := postgresRepo.NewLegadoRepository(pool)
	settingsRepo := postgresRepo.NewSettingsRepository(pool)
	disciplineRepo := postgresRepo.NewDisciplineRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(appLogger)

	// Initialize use cases
	checker := usecase.NewApplicabilityChecker(
		ruleRepo, userRepo, disciplineRepo, transactionRepo,
		decimal.NewFromInt(int64(cfg.LowBalanceThreshold)),
	)
	appMetrics := metrics.New()
	invalidator := usecase.NewCacheInvalidator(cache, appMetrics, appLogger)
	hooks := usecase.DefaultCategoryHooks(legadoRepo, idGen)

	ledgerUC := usecase.NewLedgerUseCase(
		txManager, retrier, userRepo, ruleRepo, transactionRepo, settingsRepo,
		checker, invalidator, hooks, idGen, appMetrics, appLogger,
	)
	ruleUC := usecase.NewRuleUseCase(
		ruleRepo, userRepo, cache, checker, invalidator, idGen, cfg.RuleCacheTTL, appMetrics, appLogger,
	)
	queryUC := usecase.NewTransactionQueryUseCase(transactionRepo, userRepo, settingsRepo, legadoRepo)
	settingsUC := usecase.NewSettingsUseCase(txManager, settingsRepo)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		RuleHandler:        handler.NewRuleHandler(ruleUC, ledgerUC, checker),
		TransactionHandler: handler.NewTransactionHandler(ledgerUC, queryUC),
		LegadoHandler:      handler.NewLegadoHandler(queryUC),
		SettingsHandler:    handler.NewSettingsHandler(settingsUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
