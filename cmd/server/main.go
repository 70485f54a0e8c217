package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/verdandi/internal"
	"github.com/dukerupert/verdandi/internal/billing"
	"github.com/dukerupert/verdandi/internal/handler"
	"github.com/dukerupert/verdandi/internal/handler/api"
	"github.com/dukerupert/verdandi/internal/handler/webhook"
	"github.com/dukerupert/verdandi/internal/middleware"
	"github.com/dukerupert/verdandi/internal/notify"
	"github.com/dukerupert/verdandi/internal/repository"
	"github.com/dukerupert/verdandi/internal/service"
	"github.com/dukerupert/verdandi/internal/telemetry"
	"github.com/dukerupert/verdandi/internal/worker"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// database/sql connection for migrations only
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// pgx pool for the application
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := repository.NewStore(pool)

	// Billing providers
	var cardProvider billing.Provider
	if cfg.Stripe.SecretKey != "" {
		cardProvider, err = billing.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
		if err != nil {
			return fmt.Errorf("failed to initialize Stripe provider: %w", err)
		}
		logger.Info("Stripe billing provider initialized")
	} else {
		cardProvider = billing.NewMockProvider()
		logger.Warn("No Stripe key configured; card payments use the mock provider")
	}
	providers := service.PaymentProviders{
		Card:    cardProvider,
		Offline: billing.NewOfflineProvider(),
	}

	// Event publisher
	var events notify.Publisher = notify.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsPub, err := notify.NewNATSPublisher(cfg.NATS.URL, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		events = natsPub
		logger.Info("NATS publisher connected", "url", cfg.NATS.URL)
	}
	defer events.Close()

	metrics := telemetry.NewBusinessMetrics(cfg.MetricsNamespace)
	pricing := service.Pricing{
		Currency:          cfg.Currency,
		ShippingFlatCents: cfg.ShippingFlatCents,
		TaxRateBps:        cfg.TaxRateBps,
	}

	// Services
	catalogService := service.NewCatalogService(store)
	inventoryService := service.NewInventoryService(store)
	cartService := service.NewCartService(store, catalogService, inventoryService, pricing, metrics, logger)
	orderService := service.NewOrderService(store, providers, events, metrics, pricing, logger)
	statusService := service.NewOrderStatusService(store, events, metrics, logger)
	paymentService := service.NewPaymentService(store, events, metrics, logger)
	cancellationService := service.NewCancellationService(store, providers, events, metrics, logger)

	// Payment reconciler
	reconciler := worker.NewReconciler(store, cardProvider, paymentService, metrics, logger)
	reconciler.Interval = time.Duration(cfg.Reconcile.IntervalSeconds) * time.Second
	reconciler.StaleAfter = time.Duration(cfg.Reconcile.StaleAfterSeconds) * time.Second
	go reconciler.Run(ctx)

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	httpMetrics := middleware.NewMetrics(cfg.MetricsNamespace)
	e.Use(echomw.Recover())
	e.Use(httpMetrics.Middleware())
	e.Use(middleware.RequestLogger(logger))

	e.GET("/health", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiGroup := e.Group("/api")
	api.NewCartHandler(cartService, logger).Register(apiGroup)
	api.NewOrderHandler(orderService, statusService, paymentService, cancellationService, logger).Register(apiGroup)
	webhook.NewPaymentHandler(cardProvider, paymentService, logger).Register(e)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Server starting", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
