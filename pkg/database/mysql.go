package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/onurcolak/wa-inbound-service/environments"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
)

func NewMySQLDB(cfg environments.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Infof("Connected to MySQL database")
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS wa_accounts (
		id CHAR(36) NOT NULL PRIMARY KEY,
		workspace_id VARCHAR(64) NOT NULL,
		phone_number_id VARCHAR(64) NOT NULL,
		waba_id VARCHAR(64) NULL,
		display_phone_number VARCHAR(32) NULL,
		graph_api_version VARCHAR(16) NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_wa_accounts_phone_number_id (phone_number_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS wa_messages (
		id CHAR(36) NOT NULL PRIMARY KEY,
		wa_account_id CHAR(36) NOT NULL,
		direction ENUM('in', 'out') NOT NULL,
		wa_message_id VARCHAR(255) NOT NULL,
		from_number VARCHAR(32) NULL,
		to_number VARCHAR(32) NULL,
		message_type VARCHAR(32) NULL,
		text_body TEXT NULL,
		media_id VARCHAR(255) NULL,
		message_timestamp DATETIME(6) NULL,
		payload JSON NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_wa_messages_dedup (wa_account_id, direction, wa_message_id),
		CONSTRAINT fk_wa_messages_account FOREIGN KEY (wa_account_id) REFERENCES wa_accounts (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS wa_status (
		id CHAR(36) NOT NULL PRIMARY KEY,
		wa_account_id CHAR(36) NOT NULL,
		wa_message_id VARCHAR(255) NOT NULL,
		recipient_id VARCHAR(32) NULL,
		status VARCHAR(32) NOT NULL,
		status_timestamp DATETIME(6) NULL,
		dedup_key CHAR(64) NOT NULL,
		payload JSON NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_wa_status_dedup (wa_account_id, dedup_key),
		INDEX idx_wa_status_message (wa_account_id, wa_message_id),
		CONSTRAINT fk_wa_status_account FOREIGN KEY (wa_account_id) REFERENCES wa_accounts (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS wa_processed_inbound (
		wa_account_id CHAR(36) NOT NULL,
		wa_message_id VARCHAR(255) NOT NULL,
		status ENUM('processing', 'done', 'failed') NOT NULL,
		attempts INT NOT NULL DEFAULT 0,
		locked_at DATETIME(6) NOT NULL,
		processed_at DATETIME(6) NULL,
		last_error VARCHAR(500) NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		PRIMARY KEY (wa_account_id, wa_message_id),
		INDEX idx_wa_processed_inbound_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

func RunMigrations(db *sqlx.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i+1, err)
		}
	}

	logger.Infof("Database migrations completed")

	return nil
}

// SeedAccount registers an active account for phoneNumberID unless one exists.
func SeedAccount(ctx context.Context, db *sqlx.DB, workspaceID, phoneNumberID string) (string, error) {
	var existing string
	err := db.GetContext(ctx, &existing, "SELECT id FROM wa_accounts WHERE phone_number_id = ?", phoneNumberID)
	if err == nil {
		logger.Infof("Account for phone_number_id %s already exists (%s), skipping seed", phoneNumberID, existing)
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to look up account: %w", err)
	}

	id := uuid.NewString()
	_, err = db.ExecContext(ctx,
		"INSERT INTO wa_accounts (id, workspace_id, phone_number_id, is_active) VALUES (?, ?, ?, 1)",
		id, workspaceID, phoneNumberID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to seed account: %w", err)
	}

	logger.Infof("Seeded account %s for phone_number_id %s", id, phoneNumberID)
	return id, nil
}
