package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/persistence"
	portusecase "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/accrual"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/loan"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/notify"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/user"

	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/events"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/memory"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/scheduler"
	timeProvider "github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

func main() {
	env := pflag.String("env", "", "environment to load, overrides LL_ENV")
	accrualOnce := pflag.Bool("accrual-once", false, "run a single accrual cycle and exit")
	seed := pflag.Bool("seed", false, "create the default lenders and borrowers on startup")
	pflag.Parse()

	if err := run(*env, *accrualOnce, *seed); err != nil {
		log.Fatalf("loan-ledger: %v", err)
	}
}

func run(env string, accrualOnce, seed bool) error {
	cfg, err := config.LoadConfigFor(env)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger, err := logger.NewZapLogger(logger.Options{
		Production: cfg.Environment == config.Production,
		Level:      cfg.Logger.Level,
		Fields:     map[string]any{"service": "loan-ledger"},
	})
	if err != nil {
		return err
	}
	defer func() { _ = appLogger.Flush() }()

	tp := timeProvider.NewRealTimeProvider()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uow, pinger, closeStore, err := openStore(ctx, cfg, appLogger, tp)
	if err != nil {
		appLogger.Error("Failed to open store", map[string]any{"error": err.Error()})
		return err
	}
	defer closeStore()

	publishTimeout := time.Duration(cfg.Events.PublishTimeoutMs) * time.Millisecond
	publisher, err := events.NewPublisher(events.Config{
		Driver:         cfg.Events.Driver,
		Brokers:        cfg.Events.Brokers,
		TopicPrefix:    cfg.Events.TopicPrefix,
		AMQPURL:        cfg.Events.AMQPURL,
		Exchange:       cfg.Events.Exchange,
		PublishTimeout: publishTimeout,
	}, appLogger, tp)
	if err != nil {
		appLogger.Error("Failed to create event publisher", map[string]any{"error": err.Error()})
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Warn("Failed to close event publisher", map[string]any{"error": err.Error()})
		}
	}()

	// Initialize use cases
	notifier := notify.New(publisher, appLogger, publishTimeout)
	ledgerService := ledger.NewService(uow, notifier, tp, appLogger)
	loanService, adjustmentService := loan.NewServices(uow, ledgerService, notifier, tp, appLogger)
	userService := user.NewUserUseCase(uow, user.WalletPolicy{
		BorrowerInitialBalance: decimal.RequireFromString(cfg.Wallet.BorrowerInitialBalance),
		LenderInitialBalance:   decimal.RequireFromString(cfg.Wallet.LenderInitialBalance),
	}, tp, appLogger)
	accrualService := accrual.NewService(uow, ledgerService, notifier, tp, appLogger, cfg.Accrual.Concurrency)

	if seed || cfg.Seed.DefaultUsers {
		if err := migration.SeedDefaultUsers(ctx, userService, appLogger); err != nil {
			appLogger.Error("Failed to create default users", map[string]any{"error": err.Error()})
		}
	}

	locker, closeLocker := newLocker(ctx, cfg.Redis, appLogger)
	defer closeLocker()
	job := scheduler.NewAccrualJob(accrualService, locker, cfg.Accrual.LockTTL, cfg.Accrual.CycleTimeout, appLogger)

	if accrualOnce {
		report, err := job.Run(ctx)
		if err != nil {
			return fmt.Errorf("accrual cycle failed: %w", err)
		}
		appLogger.Info("Accrual cycle finished", map[string]any{
			"processed":       len(report.Results),
			"full_settlement": report.Count(portusecase.AccrualFullSettlement),
			"partial_closed":  report.Count(portusecase.AccrualPartialClosed),
			"failed":          report.Count(portusecase.AccrualFailed),
		})
		return nil
	}

	var cron *scheduler.Scheduler
	if cfg.Accrual.Enabled {
		cron = scheduler.NewScheduler(job, cfg.Accrual.Schedule, appLogger)
		if err := cron.Start(); err != nil {
			return err
		}
	}

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger, tp)
	routes.SetupRoutes(router, routes.Handlers{
		Users:       handler.NewUserHandler(userService, appLogger),
		Wallets:     handler.NewWalletHandler(ledgerService, appLogger),
		Loans:       handler.NewLoanHandler(loanService, appLogger),
		Adjustments: handler.NewAdjustmentHandler(adjustmentService, appLogger),
		Health:      handler.NewHealthHandler(pinger, appLogger),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr": server.Addr,
			"env":  cfg.Environment,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			appLogger.Error("Failed to start server", map[string]any{"error": err.Error()})
			return err
		}
	}

	appLogger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{"error": err.Error()})
	}

	if cron != nil {
		appLogger.Info("Waiting for running accrual cycle...", nil)
		select {
		case <-cron.Stop().Done():
		case <-shutdownCtx.Done():
			appLogger.Warn("Accrual cycle still running at shutdown", nil)
		}
	}

	appLogger.Info("Server exited gracefully", nil)
	return nil
}

// openStore returns the unit of work for the configured driver; the pinger is nil for the memory store
func openStore(
	ctx context.Context,
	cfg *config.Config,
	appLogger coreport.Logger,
	tp coreport.TimeProvider,
) (persistence.UnitOfWork, handler.Pinger, func(), error) {
	if cfg.Database.Driver == database.DriverMemory {
		appLogger.Warn("Using the in-memory store, data is lost on exit", nil)
		return memory.NewUnitOfWork(memory.NewStore(), appLogger), nil, func() {}, nil
	}

	retry := database.DefaultRetryConfig()
	retry.MaxRetries = cfg.Database.RetryAttempts
	if cfg.Database.RetryIntervalMs > 0 {
		retry.RetryInterval = time.Duration(cfg.Database.RetryIntervalMs) * time.Millisecond
	}

	dbConfig := &database.Config{
		Driver:             database.DriverPostgres,
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		Username:           cfg.Database.Username,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Database,
		SSLMode:            cfg.Database.SSLMode,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:    cfg.Database.ConnMaxIdleTime,
		QueryTimeout:       cfg.Database.QueryTimeout,
		LogLevel:           cfg.Database.LogLevel,
		SlowQueryThreshold: time.Duration(cfg.Database.SlowQueryThresholdMs) * time.Millisecond,
		IsolationLevel:     cfg.Database.IsolationLevel,
		ConnectAttempts:    cfg.Database.ConnectAttempts,
		ConnectDelay:       cfg.Database.ConnectDelay,
		Retry:              retry,
	}
	if err := dbConfig.Validate(); err != nil {
		return nil, nil, nil, err
	}

	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(ctx); err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if err := dbManager.Close(); err != nil {
			appLogger.Warn("Failed to close database", map[string]any{"error": err.Error()})
		}
	}

	if err := dbManager.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, nil, err
	}
	return dbManager.CreateUnitOfWork(), dbManager, closeDB, nil
}

// newLocker uses Redis when configured so only one instance runs each cycle
func newLocker(ctx context.Context, cfg config.RedisConfig, appLogger coreport.Logger) (scheduler.Locker, func()) {
	if cfg.Addr == "" {
		appLogger.Info("Redis not configured, accrual lock is local to this process", nil)
		return scheduler.NewLocalLock(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		appLogger.Warn("Redis unreachable, falling back to a local accrual lock", map[string]any{
			"addr":  cfg.Addr,
			"error": err.Error(),
		})
		_ = client.Close()
		return scheduler.NewLocalLock(), func() {}
	}

	appLogger.Info("Accrual lock backed by redis", map[string]any{"addr": cfg.Addr})
	return scheduler.NewRedisLock(client, cfg.KeyPrefix), func() { _ = client.Close() }
}
