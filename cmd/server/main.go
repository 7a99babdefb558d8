package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atelierhq/atelier/internal"
	"github.com/atelierhq/atelier/internal/billing"
	"github.com/atelierhq/atelier/internal/events"
	"github.com/atelierhq/atelier/internal/handler/api"
	"github.com/atelierhq/atelier/internal/middleware"
	"github.com/atelierhq/atelier/internal/postgres"
	"github.com/atelierhq/atelier/internal/router"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/atelierhq/atelier/internal/shipping"
	"github.com/atelierhq/atelier/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	st := postgres.New(pool, cfg.OrderNumberBase)

	// Initialize metrics
	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	// Initialize event publisher. Without a NATS URL events are recorded
	// in-process only.
	var publisher events.Publisher
	if cfg.NatsUrl != "" {
		logger.Info("Connecting to NATS...", "url", cfg.NatsUrl)
		nc, err := events.NewNATSPublisher(cfg.NatsUrl)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Close()
		publisher = nc
		logger.Info("NATS connection established")
	} else {
		logger.Warn("NATS_URL not set, order events will not leave the process")
		publisher = events.NewRecorder()
	}

	// Initialize shipping provider (flat rate for MVP)
	shippingProvider := shipping.NewFlatRateProvider(shipping.DefaultMethods())

	// Initialize billing provider (simulated payments for MVP)
	billingProvider := billing.NewSimulator(cfg.PaymentSuccessRate)
	logger.Info("Billing simulator initialized", "success_rate", cfg.PaymentSuccessRate)

	// Initialize services
	catalogService, err := service.NewCatalogService(st, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize catalog service: %w", err)
	}

	cartService, err := service.NewCartService(st, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cart service: %w", err)
	}

	checkoutService, err := service.NewCheckoutService(
		st,
		shippingProvider,
		billingProvider,
		publisher,
		metrics,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize checkout service: %w", err)
	}

	orderService, err := service.NewOrderService(st, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize order service: %w", err)
	}

	// Build the API handler
	apiHandler, err := api.NewHandler(
		catalogService,
		cartService,
		checkoutService,
		orderService,
		shippingProvider,
		metrics,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize api handler: %w", err)
	}

	// Create router and register routes
	r := router.New(
		middleware.RequestID,
		middleware.Identity,
		middleware.Metrics(metrics),
		middleware.Logger(logger),
	)

	// Metrics endpoint (should be protected in production via firewall)
	r.Handle(http.MethodGet, "/metrics", promhttp.Handler())

	apiHandler.RegisterRoutes(r)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting storefront server", "address", addr, "env", cfg.Env)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
