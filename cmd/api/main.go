package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/cbc_bookstore/internal/cache"
	"github.com/GTDGit/cbc_bookstore/internal/config"
	"github.com/GTDGit/cbc_bookstore/internal/database"
	"github.com/GTDGit/cbc_bookstore/internal/handler"
	"github.com/GTDGit/cbc_bookstore/internal/metrics"
	"github.com/GTDGit/cbc_bookstore/internal/middleware"
	"github.com/GTDGit/cbc_bookstore/internal/repository"
	"github.com/GTDGit/cbc_bookstore/internal/service"
	"github.com/GTDGit/cbc_bookstore/internal/sse"
	"github.com/GTDGit/cbc_bookstore/internal/worker"
	"github.com/GTDGit/cbc_bookstore/pkg/mpesa"
)

// main is the application entrypoint for the CBC Bookstore API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger, metrics and money encoding
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting cbc bookstore api")

	metrics.Init(cfg.Metrics.Prefix, prometheus.DefaultRegisterer)
	decimal.MarshalJSONWithoutQuotes = true

	// 3. Connect database
	db, err := database.Connect(context.Background(), &cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db.DB, cfg.MigrationsPath); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis (optional lookup cache)
	var lookupCache *cache.LookupCache
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis connection failed - lookup cache disabled")
		} else {
			defer redisClient.Close()
			lookupCache = cache.NewLookupCache(redisClient, cfg.Redis.LookupTTL)
			// Migrations may have reseeded the lookup tables.
			if err := lookupCache.Invalidate(context.Background()); err != nil {
				log.Warn().Err(err).Msg("lookup cache invalidation failed")
			}
			log.Info().Msg("redis connected successfully")
		}
	}

	// 4. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	lookupRepo := repository.NewLookupRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// 5. Initialize services
	hub := sse.NewHub()
	catalogSvc := service.NewCatalogService(productRepo, lookupRepo, lookupCache)
	adminSvc := service.NewProductAdminService(productRepo, cfg.AdminPassword)
	checkoutSvc := service.NewCheckoutService(orderRepo, mpesa.NewSimulator(), sse.NewHubNotifier(hub), cfg.Checkout.DeliveryFee)
	orderSvc := service.NewOrderService(orderRepo)

	// 6. Initialize handlers
	handlers := &handler.Handlers{
		Health:       handler.NewHealthHandler(db),
		Catalog:      handler.NewCatalogHandler(catalogSvc),
		AdminProduct: handler.NewAdminProductHandler(adminSvc),
		Checkout:     handler.NewCheckoutHandler(checkoutSvc),
		Order:        handler.NewOrderHandler(orderSvc),
		SSE:          handler.NewSSEHandler(hub),
	}

	// 7. Initialize middleware
	adminMw := middleware.NewAdminMiddleware(adminSvc,
		middleware.NewInvalidAuthRateLimiter(middleware.DefaultInvalidAuthLimit, middleware.DefaultInvalidAuthWindow))

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	handler.SetupRoutes(router, handlers, adminMw)

	// 9. Create context for graceful shutdown and start workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if lookupCache != nil && cfg.Redis.RefreshInterval > 0 {
		go worker.NewLookupWarmWorker(catalogSvc, cfg.Redis.RefreshInterval).Start(ctx)
	}

	// 10. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 11. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 12. Stop workers and end admin streams so Shutdown does not wait on them
	cancel()
	hub.Close()

	// 13. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
