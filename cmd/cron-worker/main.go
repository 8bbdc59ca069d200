package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/balcao-pos/backend/internal/catalog"
	"github.com/balcao-pos/backend/internal/cron"
	"github.com/balcao-pos/backend/internal/intents"
	"github.com/balcao-pos/backend/internal/printing"
	"github.com/balcao-pos/backend/internal/sales"
	"github.com/balcao-pos/backend/internal/terminal"
	"github.com/balcao-pos/backend/pkg/config"
	"github.com/balcao-pos/backend/pkg/db"
	"github.com/balcao-pos/backend/pkg/logger"
	"github.com/balcao-pos/backend/pkg/metrics"
	"github.com/balcao-pos/backend/pkg/migrate"
	"github.com/balcao-pos/backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	printRepo := printing.NewRepository(dbClient.DB())
	intentService, err := intents.NewService(intents.ServiceParams{
		Tx:          dbClient,
		Repo:        intents.NewRepository(dbClient.DB()),
		CatalogRepo: catalog.NewRepository(dbClient.DB()),
		SalesRepo:   sales.NewRepository(dbClient.DB()),
		PrintRepo:   printRepo,
		Dispatcher:  terminal.NewLogDispatcher(logg),
		Logger:      logg,

		IntentTTL:          cfg.Intents.TTL,
		AllowNegativeStock: cfg.Stock.AllowNegative,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create intent service", err)
		os.Exit(1)
	}

	expiryJob, err := cron.NewIntentExpiryJob(cron.IntentExpiryJobParams{
		Logger:  logg,
		Intents: intentService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create intent expiry job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewPrintJobRetentionJob(cron.PrintJobRetentionJobParams{
		Logger:    logg,
		PrintRepo: printRepo,
		Retention: cfg.PrintJobs.Retention,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create print job retention job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(expiryJob, retentionJob),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
