package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/onurcolak/wa-inbound-service/environments"
	"github.com/onurcolak/wa-inbound-service/internal/cli"
	"github.com/onurcolak/wa-inbound-service/internal/repository"
	"github.com/onurcolak/wa-inbound-service/internal/service"
	"github.com/onurcolak/wa-inbound-service/pkg/database"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
	"github.com/onurcolak/wa-inbound-service/pkg/queue"
)

func main() {
	_ = godotenv.Load()

	// Keep connection chatter out of command output.
	if os.Getenv("LOG_LEVEL") == "" {
		_ = os.Setenv("LOG_LEVEL", "warn")
	}
	logger.Init()

	rootCmd := &cobra.Command{
		Use:           "wactl",
		Short:         "Operator tool for the WhatsApp inbound service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cli.QueueCmd(openOps))
	rootCmd.AddCommand(cli.ClaimsCmd(openOps))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openOps connects only to MySQL and the queue Redis.
func openOps(ctx context.Context) (cli.Ops, func(), error) {
	cfg := environments.Load()

	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	rdb, err := queue.NewRedisClient(cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to connect to queue redis: %w", err)
	}
	q := queue.New(rdb, cfg.Queue.Name, queue.OptionsFromConfig(cfg.Queue))

	ops := service.NewOpsService(repository.NewClaimRepository(db, cfg.Worker.ClaimLease), q)

	closeFn := func() {
		_ = q.Close()
		_ = db.Close()
	}

	return ops, closeFn, nil
}
