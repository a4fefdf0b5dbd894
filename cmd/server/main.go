package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/cardledger/internal/adapter/http"
	"github.com/iho/cardledger/internal/adapter/http/handler"
	"github.com/iho/cardledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/cardledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cardledger/internal/adapter/repository/redis"
	"github.com/iho/cardledger/internal/infrastructure/auth"
	"github.com/iho/cardledger/internal/infrastructure/config"
	"github.com/iho/cardledger/internal/infrastructure/eventpublisher"
	"github.com/iho/cardledger/internal/infrastructure/logger"
	"github.com/iho/cardledger/internal/infrastructure/metrics"
	"github.com/iho/cardledger/internal/infrastructure/postgres"
	"github.com/iho/cardledger/internal/infrastructure/redis"
	"github.com/iho/cardledger/internal/usecase"
)

const limiterCleanupInterval = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "cardledger",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 {
		if err := migrateCommand(os.Args[1:], cfg, log); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		return
	}

	if err := run(log.WithContext(ctx), cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ledgerCfg, err := cfg.LedgerConfig()
	if err != nil {
		return err
	}

	// Run migrations before the pool starts serving queries
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, redis.Options{
		URL:      cfg.RedisURL,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	tokenGen := postgresRepo.NewUUIDGenerator()

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, idGen, cache, m)
	transactionUC := usecase.NewTransactionUseCase(
		ledgerCfg, txManager, accountRepo, transactionRepo, transferRepo, outboxRepo, idGen, tokenGen, cache, m,
	)
	transferUC := usecase.NewTransferUseCase(accountRepo, transferRepo)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, transferRepo, ledgerRepo, m)

	issuer, err := accountUC.EnsureAccount(ctx, cfg.IssuerAccountID, cfg.IssuerAccountName)
	if err != nil {
		return fmt.Errorf("failed to bootstrap issuer account: %w", err)
	}
	log.Info().Str("account_id", issuer.ID).Msg("issuer account ready")

	publisher, closePublisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	outboxPublisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publisher,
		Logger:     log.With().Str("component", "outbox").Logger(),
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})

	routerCfg := httpAdapter.RouterConfig{
		Logger:             log,
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		TransferHandler:    handler.NewTransferHandler(transferUC),
		LedgerHandler:      handler.NewLedgerHandler(reconciliationUC),
		HealthHandler: handler.NewHealthHandler().
			WithCheck("postgres", pool.Ping).
			WithCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
	}

	if cfg.RateLimitRPS > 0 {
		routerCfg.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	}

	if cfg.AuthEnabled {
		jwtManager := auth.NewJWTManager(jwtSecret(cfg, log), cfg.JWTExpiration)
		credentials := auth.BasicCredentials{
			Username:     cfg.BasicAuthUsername,
			Password:     cfg.BasicAuthPassword,
			PasswordHash: cfg.BasicAuthHash,
		}
		routerCfg.AuthHandler = handler.NewAuthHandler(jwtManager, credentials)
		routerCfg.Authenticator = middleware.NewAuthenticator(jwtManager, credentials, m)
	} else {
		log.Warn().Msg("authentication disabled")
	}

	server := newHTTPServer(cfg, httpAdapter.NewRouter(routerCfg))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := outboxPublisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if routerCfg.RateLimiter != nil {
		g.Go(func() error {
			return routerCfg.RateLimiter.Run(gctx, limiterCleanupInterval)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// migrateCommand handles "migrate up" and "migrate down" without starting
// the server.
func migrateCommand(args []string, cfg *config.Config, log zerolog.Logger) error {
	if len(args) != 2 || args[0] != "migrate" {
		return fmt.Errorf("usage: server [migrate up|down]")
	}

	switch args[1] {
	case "up":
		return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log)
	case "down":
		return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, log)
	default:
		return fmt.Errorf("unknown migrate direction %q", args[1])
	}
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

// newPublisher returns the NATS publisher when NATS_URL is set and a
// log-only publisher otherwise.
func newPublisher(cfg *config.Config, log zerolog.Logger) (eventpublisher.Publisher, func(), error) {
	if cfg.NATSURL == "" {
		log.Info().Msg("NATS_URL not set, outbox events are logged only")
		return eventpublisher.NewLogPublisher(log), func() {}, nil
	}

	p, err := eventpublisher.NewNATSPublisher(eventpublisher.NATSConfig{
		URL:           cfg.NATSURL,
		Name:          "cardledger",
		SubjectPrefix: cfg.NATSSubjectPrefix,
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("url", cfg.NATSURL).Msg("connected to NATS")

	return p, func() {
		if err := p.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to drain NATS connection")
		}
	}, nil
}

// jwtSecret returns the configured secret or a random one. Tokens signed
// with a random secret do not survive a restart.
func jwtSecret(cfg *config.Config, log zerolog.Logger) string {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal().Err(err).Msg("failed to generate JWT secret")
	}
	log.Warn().Msg("JWT_SECRET not set, using a random secret")

	return hex.EncodeToString(buf)
}
