package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
)

const claimColumns = `wa_account_id, wa_message_id, status, attempts, locked_at, processed_at,
	last_error, created_at, updated_at`

// maxBeginAttempts bounds retries when two first claims race on the insert.
const maxBeginAttempts = 3

// ClaimRepository is the processing-claim state machine over wa_processed_inbound.
//
//	absent -> processing -> done | failed
//	failed -> processing
//
// Every transition runs under an InnoDB row lock, so two slots can never both move
// the same claim to processing.
type ClaimRepository struct {
	db    *sqlx.DB
	lease time.Duration
	now   func() time.Time
}

// NewClaimRepository builds the store. A processing claim younger than lease belongs
// to another slot; a zero lease disables the check.
func NewClaimRepository(db *sqlx.DB, lease time.Duration) *ClaimRepository {
	return &ClaimRepository{
		db:    db,
		lease: lease,
		now:   time.Now,
	}
}

// BeginProcessing claims the message for the caller. It returns nil, nil when the
// message is already done, and domain.ErrClaimLocked when a live claim is held elsewhere.
func (r *ClaimRepository) BeginProcessing(ctx context.Context, waAccountID, waMessageID string) (*domain.ProcessingClaim, error) {
	var lastErr error
	for attempt := 1; attempt <= maxBeginAttempts; attempt++ {
		claim, err := r.beginOnce(ctx, waAccountID, waMessageID)
		if err == nil || !isMySQLError(err, mysqlErrDuplicateEntry, mysqlErrDeadlock) {
			return claim, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed to begin processing after %d attempts: %w", maxBeginAttempts, lastErr)
}

func (r *ClaimRepository) beginOnce(ctx context.Context, waAccountID, waMessageID string) (claim *domain.ProcessingClaim, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `SELECT ` + claimColumns + `
		FROM wa_processed_inbound
		WHERE wa_account_id = ? AND wa_message_id = ?
		FOR UPDATE`

	now := r.now().UTC()

	var current domain.ProcessingClaim
	err = tx.GetContext(ctx, &current, query, waAccountID, waMessageID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		claim, err = r.insertClaim(ctx, tx, waAccountID, waMessageID, now)
		if err != nil {
			return nil, err
		}

	case err != nil:
		return nil, fmt.Errorf("failed to lock claim: %w", err)

	case current.Status == domain.ClaimDone:
		claim = nil

	case current.Status == domain.ClaimProcessing && r.lease > 0 && now.Sub(current.LockedAt) < r.lease:
		err = &domain.ClaimLockedError{Until: current.LockedAt.Add(r.lease)}
		return nil, err

	default:
		claim, err = r.reclaim(ctx, tx, current, now)
		if err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	return claim, nil
}

func (r *ClaimRepository) insertClaim(
	ctx context.Context,
	tx *sqlx.Tx,
	waAccountID, waMessageID string,
	now time.Time,
) (*domain.ProcessingClaim, error) {
	query := `
		INSERT INTO wa_processed_inbound
			(wa_account_id, wa_message_id, status, attempts, locked_at, created_at, updated_at)
		VALUES (?, ?, 'processing', 1, ?, ?, ?)
	`

	if _, err := tx.ExecContext(ctx, query, waAccountID, waMessageID, now, now, now); err != nil {
		return nil, fmt.Errorf("failed to insert claim: %w", err)
	}

	return &domain.ProcessingClaim{
		WaAccountID: waAccountID,
		WaMessageID: waMessageID,
		Status:      domain.ClaimProcessing,
		Attempts:    1,
		LockedAt:    now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (r *ClaimRepository) reclaim(
	ctx context.Context,
	tx *sqlx.Tx,
	current domain.ProcessingClaim,
	now time.Time,
) (*domain.ProcessingClaim, error) {
	query := `
		UPDATE wa_processed_inbound
		SET status = 'processing',
		    attempts = attempts + 1,
		    locked_at = ?,
		    last_error = NULL,
		    updated_at = ?
		WHERE wa_account_id = ? AND wa_message_id = ? AND status <> 'done'
	`

	result, err := tx.ExecContext(ctx, query, now, now, current.WaAccountID, current.WaMessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to reclaim: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return nil, nil
	}

	current.Status = domain.ClaimProcessing
	current.Attempts++
	current.LockedAt = now
	current.LastError = nil
	current.UpdatedAt = now

	return &current, nil
}

// MarkDone is idempotent; the first processed_at is kept.
func (r *ClaimRepository) MarkDone(ctx context.Context, waAccountID, waMessageID string) error {
	query := `
		UPDATE wa_processed_inbound
		SET status = 'done',
		    processed_at = COALESCE(processed_at, ?),
		    last_error = NULL,
		    updated_at = ?
		WHERE wa_account_id = ? AND wa_message_id = ?
	`

	now := r.now().UTC()
	if _, err := r.db.ExecContext(ctx, query, now, now, waAccountID, waMessageID); err != nil {
		return fmt.Errorf("failed to mark claim done: %w", err)
	}

	return nil
}

// MarkFailed leaves attempts untouched and never moves a done claim.
func (r *ClaimRepository) MarkFailed(ctx context.Context, waAccountID, waMessageID, errMsg string) error {
	query := `
		UPDATE wa_processed_inbound
		SET status = 'failed',
		    last_error = ?,
		    updated_at = ?
		WHERE wa_account_id = ? AND wa_message_id = ? AND status <> 'done'
	`

	_, err := r.db.ExecContext(ctx, query,
		domain.TruncateError(errMsg),
		r.now().UTC(),
		waAccountID,
		waMessageID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark claim failed: %w", err)
	}

	return nil
}

func (r *ClaimRepository) Get(ctx context.Context, waAccountID, waMessageID string) (*domain.ProcessingClaim, error) {
	query := `SELECT ` + claimColumns + `
		FROM wa_processed_inbound
		WHERE wa_account_id = ? AND wa_message_id = ?`

	var claim domain.ProcessingClaim
	if err := r.db.GetContext(ctx, &claim, query, waAccountID, waMessageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	return &claim, nil
}

func (r *ClaimRepository) List(
	ctx context.Context,
	status *domain.ClaimStatus,
	page, pageSize int,
) ([]domain.ProcessingClaim, int64, error) {
	offset := (page - 1) * pageSize
	var totalCount int64
	claims := []domain.ProcessingClaim{}

	if status != nil {
		countQuery := "SELECT COUNT(*) FROM wa_processed_inbound WHERE status = ?"
		if err := r.db.GetContext(ctx, &totalCount, countQuery, *status); err != nil {
			return nil, 0, fmt.Errorf("failed to count claims: %w", err)
		}

		query := `SELECT ` + claimColumns + `
			FROM wa_processed_inbound
			WHERE status = ?
			ORDER BY updated_at DESC
			LIMIT ? OFFSET ?`
		if err := r.db.SelectContext(ctx, &claims, query, *status, pageSize, offset); err != nil {
			return nil, 0, fmt.Errorf("failed to list claims: %w", err)
		}
	} else {
		countQuery := "SELECT COUNT(*) FROM wa_processed_inbound"
		if err := r.db.GetContext(ctx, &totalCount, countQuery); err != nil {
			return nil, 0, fmt.Errorf("failed to count claims: %w", err)
		}

		query := `SELECT ` + claimColumns + `
			FROM wa_processed_inbound
			ORDER BY updated_at DESC
			LIMIT ? OFFSET ?`
		if err := r.db.SelectContext(ctx, &claims, query, pageSize, offset); err != nil {
			return nil, 0, fmt.Errorf("failed to list claims: %w", err)
		}
	}

	return claims, totalCount, nil
}

func (r *ClaimRepository) Stats(ctx context.Context) (domain.ClaimStats, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0) AS processing,
			COALESCE(SUM(CASE WHEN status = 'done' THEN 1 ELSE 0 END), 0)       AS done,
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)     AS failed
		FROM wa_processed_inbound
	`

	var stats domain.ClaimStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return domain.ClaimStats{}, fmt.Errorf("failed to get claim stats: %w", err)
	}

	return stats, nil
}
