package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/creditbook/internal/adapter/http/handler"
	"github.com/iho/creditbook/internal/adapter/http/middleware"
	"github.com/iho/creditbook/internal/infrastructure/metrics"
	"github.com/iho/creditbook/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ClientHandler      *handler.ClientHandler
	TransactionHandler *handler.TransactionHandler
	StatementHandler   *handler.StatementHandler
	PriceHandler       *handler.PriceHandler
	ReportHandler      *handler.ReportHandler
	HealthHandler      *handler.HealthHandler

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	// Gatherer backs /metrics. Nil serves the default registry.
	Gatherer prometheus.Gatherer

	// IdempotencyStore enables Idempotency-Key handling when non-nil.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// RateLimitPerMinute caps requests per client IP on /api/v1. Zero disables it.
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	SSLRedirect        bool
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.SecureHeaders(cfg.SSLRedirect))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.IdempotencyKeyHeader},
			ExposedHeaders: []string{middleware.IdempotencyReplayHeader},
			MaxAge:         300,
		}))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", metricsHandler(cfg.Gatherer))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, cfg.Metrics))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Clients
		r.Route("/clients", func(r chi.Router) {
			r.Post("/", cfg.ClientHandler.Create)
			r.Get("/", cfg.ClientHandler.List)
			r.Get("/{id}", cfg.ClientHandler.Get)
			r.Patch("/{id}", cfg.ClientHandler.Update)
			r.Get("/{id}/events", cfg.ClientHandler.Events)
			r.Get("/{id}/statement", cfg.StatementHandler.Get)
			r.Get("/{id}/statement.csv", cfg.StatementHandler.CSV)
			r.Get("/{id}/reconciliation", cfg.ReportHandler.ReconcileClient)
		})

		// Ledger events
		r.Post("/sales", cfg.TransactionHandler.RecordSale)
		r.Post("/payments", cfg.TransactionHandler.RecordPayment)

		// Daily prices
		r.Route("/prices", func(r chi.Router) {
			r.Post("/", cfg.PriceHandler.Create)
			r.Get("/", cfg.PriceHandler.List)
			r.Get("/latest", cfg.PriceHandler.Latest)
			r.Get("/today", cfg.PriceHandler.Today)
			r.Get("/trend", cfg.PriceHandler.Trend)
			r.Get("/{date}", cfg.PriceHandler.ForDate)
		})

		// Reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", cfg.ReportHandler.Dashboard)
			r.Get("/outstanding", cfg.ReportHandler.Outstanding)
			r.Get("/reconciliation", cfg.ReportHandler.Reconciliation)
		})
	})

	return r
}

func metricsHandler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
