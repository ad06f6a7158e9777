package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/onurcolak/wa-inbound-service/environments"
	"github.com/onurcolak/wa-inbound-service/internal/app"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	logger.Init()

	cfg := environments.Load()

	if cfg.WhatsApp.AccessToken == "" {
		logger.Warnf("WA_ACCESS_TOKEN is not set, auto-replies will fail and be retried")
	}

	logger.Infof("Starting WhatsApp inbound worker...")

	a, err := app.New(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := a.NewPool()
	if err := pool.Start(ctx); err != nil {
		logger.Fatalf("Failed to start worker pool: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	done := make(chan error, 1)
	go func() {
		done <- pool.Stop()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Errorf("Error stopping worker pool: %v", err)
		}
	case <-time.After(30 * time.Second):
		logger.Warnf("Worker pool stop timeout, forcing shutdown")
	}

	cancel()

	status := pool.GetStatus()
	logger.Infof("Worker processed=%d skipped=%d retried=%d postponed=%d failed=%d",
		status.Processed, status.Skipped, status.Retried, status.Postponed, status.Failed)

	a.Close()

	logger.Infof("Graceful shutdown completed")
}
