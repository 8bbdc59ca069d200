package main

import (
	"context"
	"net/http"
	"os"

	"github.com/balcao-pos/backend/api/routes"
	"github.com/balcao-pos/backend/internal/catalog"
	"github.com/balcao-pos/backend/internal/intents"
	"github.com/balcao-pos/backend/internal/maintenance"
	"github.com/balcao-pos/backend/internal/printing"
	"github.com/balcao-pos/backend/internal/sales"
	"github.com/balcao-pos/backend/internal/terminal"
	"github.com/balcao-pos/backend/pkg/config"
	"github.com/balcao-pos/backend/pkg/db"
	"github.com/balcao-pos/backend/pkg/logger"
	"github.com/balcao-pos/backend/pkg/migrate"
	"github.com/balcao-pos/backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

const terminalDedupScope = "terminal-results"

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	intentService, err := intents.NewService(intents.ServiceParams{
		Tx:          dbClient,
		Repo:        intents.NewRepository(dbClient.DB()),
		CatalogRepo: catalog.NewRepository(dbClient.DB()),
		SalesRepo:   sales.NewRepository(dbClient.DB()),
		PrintRepo:   printing.NewRepository(dbClient.DB()),
		Dispatcher:  terminal.NewLogDispatcher(logg),
		Logger:      logg,

		IntentTTL:          cfg.Intents.TTL,
		AllowNegativeStock: cfg.Stock.AllowNegative,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create intent service", err)
		os.Exit(1)
	}

	resultGuard := terminal.NewResultGuard(redisClient, cfg.Intents.DedupTTL, terminalDedupScope)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Intents:     intentService,
			Catalog:     catalog.NewRepository(dbClient.DB()),
			Maintenance: maintenance.NewRepository(dbClient.DB()),
			ResultGuard: resultGuard,
			Metrics:     prometheus.DefaultGatherer,

			IdempotencyTTL: cfg.Intents.IdempotencyTTL,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
