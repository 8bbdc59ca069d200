package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/balcao-pos/backend/api/controllers"
	"github.com/balcao-pos/backend/api/middleware"
	"github.com/balcao-pos/backend/internal/catalog"
	intentsvc "github.com/balcao-pos/backend/internal/intents"
	"github.com/balcao-pos/backend/internal/maintenance"
	"github.com/balcao-pos/backend/internal/terminal"
	"github.com/balcao-pos/backend/pkg/config"
	"github.com/balcao-pos/backend/pkg/db"
	"github.com/balcao-pos/backend/pkg/logger"
	"github.com/balcao-pos/backend/pkg/redis"
)

// RouterParams collect everything the HTTP surface depends on.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Intents     intentsvc.Service
	Catalog     catalog.Repository
	Maintenance maintenance.Repository
	ResultGuard *terminal.ResultGuard
	Metrics     prometheus.Gatherer

	IdempotencyTTL time.Duration
}

// NewRouter wires the API routes.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/maintenance", controllers.MaintenanceStatus(params.Maintenance, logg))
		r.Get("/config", controllers.PublicConfig(cfg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.Idempotency(params.Redis, params.IdempotencyTTL, logg)).
			Post("/intents", controllers.CreateIntent(params.Intents, logg))
		r.Get("/intents/{intentId}", controllers.GetIntent(params.Intents, logg))

		r.Post("/terminal/results", controllers.TerminalResults(params.Intents, params.ResultGuard, logg))

		r.Get("/catalog/products", controllers.ListProducts(params.Catalog, logg))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Metrics, promhttp.HandlerOpts{}))
	}

	return r
}
