package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"

	"github.com/onurcolak/wa-inbound-service/environments"
	"github.com/onurcolak/wa-inbound-service/pkg/database"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	logger.Init()

	cfg := environments.Load()

	phoneNumberID := environments.GetEnv("SEED_PHONE_NUMBER_ID", "")
	if phoneNumberID == "" {
		logger.Fatalf("SEED_PHONE_NUMBER_ID is required but not set")
	}
	workspaceID := environments.GetEnv("SEED_WORKSPACE_ID", "local")

	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Warnf("Failed to close database: %v", err)
		}
	}()

	if err := database.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accountID, err := database.SeedAccount(ctx, db, workspaceID, phoneNumberID)
	if err != nil {
		logger.Fatalf("Failed to seed account: %v", err)
	}

	logger.Infof("Seed completed successfully, waAccountId=%s", accountID)
}
