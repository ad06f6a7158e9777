package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/onurcolak/wa-inbound-service/environments"
	"github.com/onurcolak/wa-inbound-service/handlers"
	"github.com/onurcolak/wa-inbound-service/internal/app"
	"github.com/onurcolak/wa-inbound-service/internal/middlewares"
	"github.com/onurcolak/wa-inbound-service/internal/worker"
	"github.com/onurcolak/wa-inbound-service/pkg/database"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
	"github.com/onurcolak/wa-inbound-service/pkg/validator"
	"github.com/onurcolak/wa-inbound-service/routes"

	_ "github.com/onurcolak/wa-inbound-service/docs" // swagger docs
)

// @title WhatsApp Inbound Service API
// @version 1.0
// @description Idempotent WhatsApp Cloud API webhook ingestion with a claim-guarded worker pipeline

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	_ = godotenv.Load()

	logger.Init()

	// Load config
	cfg := environments.Load()

	// Without the app secret no webhook could ever be accepted.
	if cfg.WhatsApp.AppSecret == "" {
		logger.Fatalf("META_APP_SECRET is required but not set")
	}
	if cfg.Auth.InternalAPIKey == "" {
		logger.Warnf("INTERNAL_API_KEY is not set, internal endpoints will answer 500")
	}

	logger.Infof("Starting WhatsApp Inbound Service...")

	a, err := app.New(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(a.DB); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pool *worker.Pool
	var workerHandler *handlers.WorkerHandler
	if cfg.Worker.Embedded {
		pool = a.NewPool()
		workerHandler = handlers.NewWorkerHandler(pool, ctx)

		logger.Infof("Starting embedded worker pool...")
		if err := pool.Start(ctx); err != nil {
			logger.Warnf("Failed to start embedded worker pool: %v", err)
		}
	}

	var healthHandler *handlers.HealthHandler
	if a.Cache != nil {
		healthHandler = handlers.NewHealthHandler(a.DB, a.Queue, a.Cache)
	} else {
		healthHandler = handlers.NewHealthHandler(a.DB, a.Queue, nil)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			middlewares.APIKeyHeader,
		},
	}))

	// Setup routes
	routes.RegisterRoutes(e, routes.Handlers{
		Health:  healthHandler,
		Webhook: handlers.NewWebhookHandler(a.Ingest, cfg.WhatsApp.VerifyToken),
		Send:    handlers.NewSendHandler(a.Send),
		Ops:     handlers.NewOpsHandler(a.Ops),
		Worker:  workerHandler,
	}, cfg)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	// Shutdown HTTP server first so no new webhooks are accepted.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	if pool != nil && pool.IsRunning() {
		stopPool(pool, 30*time.Second)
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	a.Close()

	logger.Infof("Graceful shutdown completed")
}

// stopPool waits for in-flight jobs up to timeout.
func stopPool(pool *worker.Pool, timeout time.Duration) {
	logger.Infof("Stopping worker pool...")

	done := make(chan error, 1)
	go func() {
		done <- pool.Stop()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Errorf("Error stopping worker pool: %v", err)
		} else {
			logger.Infof("Worker pool stopped successfully")
		}
	case <-time.After(timeout):
		logger.Warnf("Worker pool stop timeout, forcing shutdown")
	}
}
