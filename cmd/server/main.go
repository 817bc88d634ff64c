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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gleamhq/estimator/internal/booking"
	"github.com/gleamhq/estimator/internal/config"
	"github.com/gleamhq/estimator/internal/estimate"
	"github.com/gleamhq/estimator/internal/handlers"
	"github.com/gleamhq/estimator/internal/logger"
	"github.com/gleamhq/estimator/internal/middleware"
	"github.com/gleamhq/estimator/internal/reconcile"
	"github.com/gleamhq/estimator/internal/services"
	"github.com/gleamhq/estimator/internal/session"
	"github.com/gleamhq/estimator/internal/streetview"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting estimator API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Session hand-off store: redis when configured, in-memory otherwise
	var store session.Store
	if cfg.Redis.Addr != "" {
		redisStore := session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisStore.Ping(context.Background()); err != nil {
			log.Fatal("Failed to connect to redis", err, map[string]interface{}{
				"addr": cfg.Redis.Addr,
			})
		}
		store = redisStore
		log.Info("Redis session store connected", map[string]interface{}{
			"addr": cfg.Redis.Addr,
			"db":   cfg.Redis.DB,
		})
	} else {
		store = session.NewMemoryStore()
		log.Warn("Using in-memory session store; hand-off records will not survive restarts", nil)
	}

	// Visual reconciliation is optional: without the oracle every estimate is
	// the deterministic baseline.
	var adapter *reconcile.Adapter
	if cfg.Oracle.Enabled {
		fetcher := streetview.NewFetcher(cfg.Oracle.StreetViewURL, cfg.Oracle.StreetViewKey, cfg.Oracle.Timeout)
		oracle := reconcile.NewHTTPOracle(cfg.Oracle.Endpoint, cfg.Oracle.APIKey, cfg.Oracle.Timeout)
		adapter = reconcile.NewAdapter(fetcher, oracle, log)
		log.Info("Visual reconciliation enabled", map[string]interface{}{
			"endpoint": cfg.Oracle.Endpoint,
		})
	}

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(store, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Initialize service layers
	engine := estimate.NewDefaultEngine()
	estimateService := services.NewEstimateService(engine, adapter, store, log)

	bookingClient := booking.NewClient(
		cfg.Booking.AvailabilityURL,
		cfg.Booking.BookingURL,
		cfg.Booking.AuthToken,
		cfg.Booking.Timeout,
	)
	bookingService := services.NewBookingService(estimateService, bookingClient, log)

	// Initialize handlers
	estimateHandler := handlers.NewEstimateHandler(estimateService)
	bookingHandler := handlers.NewBookingHandler(bookingService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/estimates", estimateHandler.Estimate)
		v1.GET("/handoff/:id", estimateHandler.Handoff)
		v1.GET("/addons", bookingHandler.Addons)

		bookings := v1.Group("/bookings")
		{
			bookings.POST("/quote", bookingHandler.Quote)
			bookings.POST("/availability", bookingHandler.Availability)
			bookings.POST("", bookingHandler.Book)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
