package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grocerrypoint/grocerrypoint-backend/api/routes"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/cart"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/checkout"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/coupon"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/newsletter"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/orders"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/pricing"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/config"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/db"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/logger"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/metrics"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/migrate"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
)

const shutdownTimeout = 15 * time.Second

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
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	checkoutTracker := checkout.NewTracker()
	cartService, err := cart.NewService(
		cartRegistry(cfg, logg, redisClient),
		pricing.RulesFromConfig(cfg.Pricing),
		coupon.NewEvaluator(cfg.Coupon.AcceptedCode),
		cart.WithObserver(checkoutTracker.Reopen),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersClient, err := orders.NewClient(cfg.OrderAPI.BaseURL, orders.WithTimeout(cfg.OrderAPI.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create order api client", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		cartService,
		ordersClient,
		checkoutTracker,
		checkout.NewJournal(dbClient.DB()),
		logg,
		checkout.Config{
			SubmitTimeout: cfg.Checkout.SubmitTimeout,
			Metrics:       storefrontMetrics,
		},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	subscriber, err := newsletterSubscriber(cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create newsletter subscriber", err)
		os.Exit(1)
	}
	newsletterService, err := newsletter.NewService(
		subscriber,
		newsletter.Policy{OptimisticSuccess: cfg.Newsletter.OptimisticSuccess},
		logg,
		storefrontMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create newsletter service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"addr":       addr,
		"cart_store": cfg.Cart.Store,
		"db_driver":  cfg.DB.Driver,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			storefrontMetrics,
			cartService,
			checkoutService,
			ordersClient,
			newsletterService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	closeErr := multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if closeErr != nil {
		logg.Error(ctx, "error during shutdown", closeErr)
		exitCode = 1
	}
	os.Exit(exitCode)
}

func cartRegistry(cfg *config.Config, logg *logger.Logger, redisClient *redis.Client) cart.Registry {
	if !cfg.Cart.UsesRedis() {
		return cart.NewMemoryRegistry(cfg.Cart.SessionTTL)
	}
	registry, err := cart.NewRedisRegistry(redisClient, cfg.Cart.SessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create redis cart registry", err)
		os.Exit(1)
	}
	return registry
}

// newsletterSubscriber uses SendGrid when a key is configured. Only dev may
// fall back to logging signups.
func newsletterSubscriber(cfg *config.Config, logg *logger.Logger) (newsletter.Subscriber, error) {
	if cfg.Sendgrid.APIKey != "" {
		return newsletter.NewSendgridSubscriber(cfg.Sendgrid.APIKey, cfg.Sendgrid.Host, cfg.Newsletter.ListIDs)
	}
	if !cfg.App.IsDev() {
		return nil, errors.New("GROCERRYPOINT_SENDGRID_API_KEY is required outside dev")
	}
	logg.Warn(context.Background(), "sendgrid api key missing, newsletter signups are only logged")
	return newsletter.NewLogSubscriber(logg), nil
}
