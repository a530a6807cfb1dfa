package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/cart"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/health"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/pricing"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/storage"
	"github.com/aaravmahajanofficial/storefront/internal/tracing"
	"github.com/aaravmahajanofficial/storefront/pkg/sendgrid"
	"github.com/aaravmahajanofficial/storefront/pkg/stripe"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const version = "1.0.0"

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	shutdownTracing, err := tracing.Setup(context.Background(), cfg.Tracing, cfg.Env)
	if err != nil {
		slog.Error("❌ Error setting up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	policy, err := pricing.NewPolicy(cfg.Pricing)
	if err != nil {
		slog.Error("❌ Invalid pricing configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Redis backs the cart store and the catalog cache
	var redisClient *redis.Client
	if cfg.Storage.Driver == "redis" || cfg.Cache.Enabled {
		redisClient, err = storage.NewRedisClient(cfg.RedisConnect.GetDSN(), cfg.RedisConnect.DB)
		if err != nil {
			if cfg.Storage.Driver == "redis" {
				slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
				os.Exit(1)
			}
			slog.Warn("⚠️ Redis unavailable, catalog cache disabled", slog.String("error", err.Error()))
			redisClient = nil
		}
	}

	kv, err := openCartStore(cfg.Storage, redisClient)
	if err != nil {
		slog.Error("❌ Error opening the cart store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sessions := cart.NewSessions(kv, cfg.Storage.KeyPrefix, cfg.Storage.IdleTimeout, logger)

	// Add-to-cart reads go through the cache; checkout always reads the catalog
	lineProducts := repos.Product
	if redisClient != nil && cfg.Cache.Enabled {
		productCache := cache.NewRedisCache(redisClient, cfg.Cache.DefaultTTL)
		lineProducts = repository.NewCachedProductRepo(repos.Product, productCache, cfg.Cache.DefaultTTL)
	}

	coupons := pricing.NewRegistry(pricing.DefaultCoupons())

	var stripeClient stripe.Client
	checkoutOpts := []service.CheckoutOption{service.WithCheckoutLogger(logger)}

	if cfg.Stripe.APIKey != "" {
		stripeClient = stripe.NewStripeClient(cfg.Stripe.APIKey)
		checkoutOpts = append(checkoutOpts, service.WithPaymentGateway(stripe.NewGateway(stripeClient)))
	} else {
		slog.Warn("⚠️ Stripe API key not set, card payments are disabled")
	}

	if cfg.SendGrid.APIKey != "" {
		emailService := sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
		checkoutOpts = append(checkoutOpts, service.WithNotifier(emailService))
	}

	catalogService := service.NewCatalogService(lineProducts)
	checkoutService := service.NewCheckoutService(service.NewCatalogService(repos.Product), repos.Order, coupons, policy, checkoutOpts...)
	cartSyncService := service.NewCartSyncService(repos.Cart)
	orderService := service.NewOrderService(repos.Order)

	cartHandler := handlers.NewCartHandler(sessions, catalogService, cartSyncService, coupons, policy)
	checkoutHandler := handlers.NewCheckoutHandler(sessions, checkoutService)
	couponHandler := handlers.NewCouponHandler(coupons)
	orderHandler := handlers.NewOrderHandler(orderService)
	cartSession := middleware.NewCartSession([]byte(cfg.Security.SessionKey), cfg.Security.SessionTTL)

	endpoints := &health.Endpoints{
		CartStore:    kv,
		PostgresDSN:  cfg.Database.GetDSN(),
		StripeClient: stripeClient,
	}
	if redisClient != nil {
		endpoints.RedisDSN = cfg.RedisConnect.GetDSN()
	}

	healthHandler, err := health.NewHealthHandler(version, endpoints)
	if err != nil {
		slog.Error("❌ Error setting up health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("storage initialized",
		slog.String("env", cfg.Env),
		slog.String("version", version),
		slog.String("cartStore", cfg.Storage.Driver),
	)

	// Setup router
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/v1/cart", cartHandler.GetCart())
	apiMux.HandleFunc("GET /api/v1/cart/summary", cartHandler.GetSummary())
	apiMux.HandleFunc("POST /api/v1/cart/lines", cartHandler.AddLine())
	apiMux.HandleFunc("PUT /api/v1/cart/lines", cartHandler.UpdateQuantity())
	apiMux.HandleFunc("DELETE /api/v1/cart/lines", cartHandler.RemoveLine())
	apiMux.HandleFunc("DELETE /api/v1/cart", cartHandler.ClearCart())
	apiMux.HandleFunc("POST /api/v1/cart/coupon", cartHandler.ApplyCoupon())
	apiMux.HandleFunc("DELETE /api/v1/cart/coupon", cartHandler.RemoveCoupon())
	apiMux.HandleFunc("PUT /api/v1/cart/note", cartHandler.SetNote())
	apiMux.HandleFunc("POST /api/v1/cart/sync", cartHandler.SyncCart())
	apiMux.HandleFunc("POST /api/v1/coupons/validate", couponHandler.ValidateCoupon())
	apiMux.HandleFunc("POST /api/v1/checkout", checkoutHandler.PlaceOrder())
	apiMux.HandleFunc("GET /api/v1/orders/{order_number}", orderHandler.GetOrder())

	// metrics reads the route pattern, so it wraps the api mux directly
	rootMux := http.NewServeMux()
	rootMux.Handle("/api/v1/", cartSession.Handler(metrics.Middleware(apiMux)))
	rootMux.Handle("GET /metrics", metrics.Handler())
	rootMux.Handle("GET /health", healthHandler.Handler())

	// Middleware chaining
	var handler http.Handler = rootMux
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "storefront")

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {

		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	sessions.Close()

	if err := kv.Close(); err != nil {
		slog.Error("⚠️ Error closing cart store", slog.String("error", err.Error()))
	}

	// the redis cart store closes the shared client itself
	if redisClient != nil && cfg.Storage.Driver != "redis" {
		if err := redisClient.Close(); err != nil {
			slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
		}
	}

	if err := repos.Close(); err != nil {
		slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Database connection closed")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
	}
}

func openCartStore(cfg config.Storage, redisClient *redis.Client) (storage.KeyValueStore, error) {
	switch cfg.Driver {
	case "redis":
		return storage.NewRedisStore(redisClient, cfg.TTL), nil
	case "sqlite":
		return storage.OpenSQLiteStore(cfg.SQLitePath)
	case "memory", "":
		slog.Warn("⚠️ Using the in-memory cart store, carts are lost on restart")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cart storage driver %q", cfg.Driver)
	}
}
