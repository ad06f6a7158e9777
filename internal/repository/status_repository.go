package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
)

// StatusRepository appends delivery-status events. Status history is never updated.
type StatusRepository struct {
	db *sqlx.DB
}

func NewStatusRepository(db *sqlx.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

// Insert reports false when an identical status event was already recorded.
func (r *StatusRepository) Insert(ctx context.Context, in domain.StatusEventInput) (bool, error) {
	query := `
		INSERT INTO wa_status
			(id, wa_account_id, wa_message_id, recipient_id, status, status_timestamp, dedup_key, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = id
	`

	result, err := r.db.ExecContext(ctx, query,
		uuid.NewString(),
		in.WaAccountID,
		in.WaMessageID,
		in.RecipientID,
		in.Status,
		in.StatusTimestamp,
		in.DedupKey(),
		jsonArg(in.Payload),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert status event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}
