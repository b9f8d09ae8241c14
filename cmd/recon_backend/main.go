package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/finrecon/payment_recon_app/internal/adapters/alerting"
	"github.com/finrecon/payment_recon_app/internal/adapters/database/pgsql"
	"github.com/finrecon/payment_recon_app/internal/adapters/locking"
	"github.com/finrecon/payment_recon_app/internal/adapters/processor"
	"github.com/finrecon/payment_recon_app/internal/core/ports/gateways"
	portssvc "github.com/finrecon/payment_recon_app/internal/core/ports/services"
	"github.com/finrecon/payment_recon_app/internal/core/services"
	"github.com/finrecon/payment_recon_app/internal/handlers"
	"github.com/finrecon/payment_recon_app/internal/middleware"
	"github.com/finrecon/payment_recon_app/pkg/config"
	"github.com/finrecon/payment_recon_app/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Payment Reconciliation Engine API
// @version 1.0
// @description Operator-facing surface for the payment reconciliation engine.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		os.Exit(1)
	}

	processorClient, err := processor.NewClient(processor.Config{
		BaseURL:         cfg.ProcessorBaseURL,
		APIKey:          cfg.ProcessorAPIKey,
		APIKeyHeader:    cfg.ProcessorAPIKeyHeader,
		RateLimitPerMin: cfg.ProcessorRateLimitPerMin,
	})
	if err != nil {
		logger.Error("Failed to initialize processor client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	container := buildServices(cfg, dbPool, processorClient, logger)

	if cfg.ScheduleOnStart {
		if err := container.Scheduler.ScheduleEvery(cfg.ScheduleIntervalHours); err != nil {
			logger.Error("Failed to start schedule", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	defer container.Scheduler.StopSchedule()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.StructuredLoggingMiddleware(logger))
	router.Use(cors.Default())

	handlers.RegisterRoutes(router, cfg, container)

	logger.Info("Starting server", slog.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("Server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, dbPool *pgxpool.Pool, processorClient *processor.Client, logger *slog.Logger) *portssvc.ServiceContainer {
	ledgerRepo := pgsql.NewPgxLedgerRepository(dbPool)
	reportRepo := pgsql.NewPgxReportRepository(dbPool)

	var alerts gateways.AlertSink
	if cfg.AlertWebhookURL != "" {
		alerts = alerting.NewWebhookSink(cfg.AlertWebhookURL, logger)
	} else {
		alerts = alerting.NewLogSink(logger)
	}

	var locker gateways.RunLocker
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		locker = locking.NewRedisRunLocker(redisClient, cfg.RunLockKey, cfg.RunLockTTL)
		logger.Info("Using distributed run lock", slog.String("key", cfg.RunLockKey))
	} else {
		locker = locking.NewLocalRunLocker()
	}

	return services.NewServiceContainer(
		ledgerRepo, reportRepo, processorClient, alerts, locker, logger,
		services.SyncConfig{
			RetentionWindow: cfg.SyncRetentionWindow,
			PendingTimeout:  cfg.SyncPendingTimeout,
			WorkerCount:     cfg.SyncWorkerCount,
			MaxRetries:      cfg.SyncMaxRetries,
		},
		services.HealthConfig{
			StalePendingWarnAt: cfg.StalePendingWarnAt,
			DiscrepancyWarnAt:  cfg.DiscrepancyWarnAt,
			DiscrepancyCritAt:  cfg.DiscrepancyCritAt,
		},
	)
}

func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}
	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
