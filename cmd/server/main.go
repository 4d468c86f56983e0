package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/creditbook/internal/adapter/http"
	"github.com/iho/creditbook/internal/adapter/http/handler"
	"github.com/iho/creditbook/internal/adapter/notify"
	"github.com/iho/creditbook/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/creditbook/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/creditbook/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/creditbook/internal/adapter/repository/sqlite"
	"github.com/iho/creditbook/internal/infrastructure/config"
	"github.com/iho/creditbook/internal/infrastructure/idgen"
	"github.com/iho/creditbook/internal/infrastructure/logger"
	"github.com/iho/creditbook/internal/infrastructure/metrics"
	"github.com/iho/creditbook/internal/infrastructure/postgres"
	"github.com/iho/creditbook/internal/infrastructure/redis"
	"github.com/iho/creditbook/internal/infrastructure/refresher"
	"github.com/iho/creditbook/internal/infrastructure/retry"
	"github.com/iho/creditbook/internal/usecase"
)

// notifyMaxRetry bounds SMS delivery attempts per notice.
const notifyMaxRetry = 5

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.SetGlobal(l)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// run serves HTTP and keeps the ledger fresh until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, l zerolog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	deps, err := openDependencies(ctx, cfg, l, m)
	if err != nil {
		return err
	}
	defer deps.Close()

	app, err := newApp(cfg, deps, m, registry, l)
	if err != nil {
		return err
	}
	if err := app.store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Info().Str("port", cfg.HTTPPort).Str("backend", cfg.StorageBackend).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		l.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	// Another process may write to a shared backend.
	if cfg.StorageBackend != config.BackendMemory {
		r := refresher.New(refresher.Config{
			Source:   app.store,
			Logger:   &l,
			Interval: cfg.RefreshInterval,
			Timeout:  cfg.MutationTimeout,
		})
		g.Go(func() error { return r.Start(gctx) })
	}

	return g.Wait()
}

// dependencies are the external resources the server talks to.
type dependencies struct {
	repo        usecase.CollectionRepository
	redis       *goredis.Client
	notifier    usecase.Notifier
	idempotency usecase.IdempotencyStore
	checks      map[string]handler.PingFunc
	closers     []func()
}

// Close releases resources in reverse order of acquisition.
func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func openDependencies(ctx context.Context, cfg *config.Config, l zerolog.Logger, m *metrics.Metrics) (*dependencies, error) {
	deps := &dependencies{checks: map[string]handler.PingFunc{}}

	if cfg.NeedsRedis() {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		deps.redis = client
		deps.closers = append(deps.closers, func() { client.Close() })
		deps.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		l.Info().Msg("connected to redis")
	}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		deps.repo = memory.NewCollectionRepository()
		l.Warn().Msg("using in-memory storage; the ledger is lost on restart")

	case config.BackendPostgres:
		if cfg.DatabaseAutoMigrate {
			if err := postgres.RunMigrations(cfg.DatabaseURL, l); err != nil {
				deps.Close()
				return nil, err
			}
		}
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		deps.closers = append(deps.closers, pool.Close)
		deps.checks["postgres"] = pool.Ping
		deps.repo = postgresRepo.NewCollectionRepository(pool)
		l.Info().Msg("connected to postgres")

	case config.BackendSQLite:
		db, err := sqliteRepo.Open(cfg.SQLitePath)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		deps.closers = append(deps.closers, func() { db.Close() })
		deps.checks["sqlite"] = db.PingContext
		deps.repo = sqliteRepo.NewCollectionRepository(db)
		l.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite")

	case config.BackendRedis:
		deps.repo = redisRepo.NewCollectionRepository(deps.redis, cfg.RedisKeyPrefix)
	}

	if cfg.IdempotencyEnabled {
		deps.idempotency = redisRepo.NewIdempotencyStore(deps.redis, cfg.RedisKeyPrefix)
	}

	if cfg.NotifyEnabled {
		connOpt, err := redis.QueueConnOpt(cfg.RedisURL)
		if err != nil {
			deps.Close()
			return nil, err
		}
		client := asynq.NewClient(connOpt)
		deps.closers = append(deps.closers, func() { client.Close() })
		deps.notifier = notify.NewAsynqNotifier(client, notifyMaxRetry, m)
	}

	return deps, nil
}

type app struct {
	store  *usecase.LedgerStore
	router http.Handler
}

// newApp wires use cases and handlers over deps.
func newApp(cfg *config.Config, deps *dependencies, m *metrics.Metrics, gatherer prometheus.Gatherer, l zerolog.Logger) (*app, error) {
	thresholds, err := cfg.RiskThresholds()
	if err != nil {
		return nil, err
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxElapsedTime = cfg.MutationTimeout

	clock := func() time.Time { return time.Now().UTC() }

	ledgerStore := usecase.NewLedgerStore(usecase.LedgerStoreConfig{
		Repo:     deps.repo,
		IDGen:    idgen.NewULIDGenerator(),
		Retrier:  retry.New(retryCfg, l),
		Notifier: deps.notifier,
		Metrics:  m,
		Logger:   &l,
		Clock:    clock,
		Timeout:  cfg.MutationTimeout,
	})

	reports := usecase.NewReportUseCase(ledgerStore, thresholds, clock)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ClientHandler:      handler.NewClientHandler(ledgerStore, reports.Classify),
		TransactionHandler: handler.NewTransactionHandler(ledgerStore),
		StatementHandler:   handler.NewStatementHandler(usecase.NewStatementUseCase(ledgerStore), reports.Classify),
		PriceHandler:       handler.NewPriceHandler(ledgerStore, usecase.NewPriceUseCase(ledgerStore, clock)),
		ReportHandler:      handler.NewReportHandler(reports, usecase.NewReconciliationUseCase(deps.repo, clock)),
		HealthHandler:      handler.NewHealthHandler(deps.checks),
		Logger:             l,
		Metrics:            m,
		Gatherer:           gatherer,
		IdempotencyStore:   deps.idempotency,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SSLRedirect:        cfg.SSLRedirect,
	})

	return &app{store: ledgerStore, router: router}, nil
}
