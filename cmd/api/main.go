package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/epartnic/epartnic-backend/api/routes"
	"github.com/epartnic/epartnic-backend/internal/addresses"
	"github.com/epartnic/epartnic-backend/internal/cart"
	"github.com/epartnic/epartnic-backend/internal/checkout"
	"github.com/epartnic/epartnic-backend/internal/orders"
	"github.com/epartnic/epartnic-backend/internal/payments"
	"github.com/epartnic/epartnic-backend/internal/products"
	"github.com/epartnic/epartnic-backend/pkg/config"
	"github.com/epartnic/epartnic-backend/pkg/db"
	"github.com/epartnic/epartnic-backend/pkg/logger"
	"github.com/epartnic/epartnic-backend/pkg/metrics"
	"github.com/epartnic/epartnic-backend/pkg/migrate"
	"github.com/epartnic/epartnic-backend/pkg/razorpay"
	"github.com/epartnic/epartnic-backend/pkg/redis"
)

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

	registry, err := buildPaymentRegistry(cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build payment registry", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.NewRedisPersistence(redisClient), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	addressService, err := addresses.NewService(addresses.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create addresses service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, registry, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)
	checkoutMetrics := metrics.NewCheckoutMetrics(promRegistry)

	checkoutService, err := checkout.NewService(
		checkout.NewRedisSessionStore(redisClient, cfg.Checkout.SessionTTL),
		cartService,
		addressService,
		orderService,
		registry,
		checkoutMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			httpMetrics,
			promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
			routes.Services{
				Products:  productService,
				Cart:      cartService,
				Addresses: addressService,
				Checkout:  checkoutService,
				Orders:    orderService,
			},
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildPaymentRegistry wires the mock gateway (lossy in dev so the pending
// order path gets exercised) and razorpay when credentials are present.
func buildPaymentRegistry(cfg *config.Config, logg *logger.Logger) (*payments.Registry, error) {
	outcome := payments.AlwaysSucceed()
	if cfg.App.IsDev() {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		outcome = payments.SuccessRate(cfg.Payments.MockSuccessRate, rng)
	}

	adapters := []payments.Adapter{
		payments.NewMockAdapter(payments.MockOptions{
			Delay:   cfg.Payments.MockDelay,
			Outcome: outcome,
		}),
	}

	if cfg.Razorpay.Enabled() {
		client, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
		if err != nil {
			return nil, err
		}
		adapter, err := payments.NewRazorpayAdapter(client)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	}

	return payments.NewRegistry(adapters...)
}
