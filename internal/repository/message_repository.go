package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
)

const messageColumns = `id, wa_account_id, direction, wa_message_id, from_number, to_number,
	message_type, text_body, media_id, message_timestamp, payload, created_at`

// MessageRepository stores inbound and outbound messages. Inserts are dedup-safe on
// (wa_account_id, direction, wa_message_id).
type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// InsertInbound reports false when the message was already stored.
func (r *MessageRepository) InsertInbound(ctx context.Context, in domain.InboundMessageInput) (bool, error) {
	query := `
		INSERT INTO wa_messages
			(id, wa_account_id, direction, wa_message_id, from_number, message_type,
			 text_body, media_id, message_timestamp, payload)
		VALUES (?, ?, 'in', ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = id
	`

	result, err := r.db.ExecContext(ctx, query,
		uuid.NewString(),
		in.WaAccountID,
		in.WaMessageID,
		in.FromNumber,
		in.MessageType,
		in.TextBody,
		in.MediaID,
		in.MessageTimestamp,
		jsonArg(in.Payload),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert inbound message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

// InsertOutbound reports false when the provider message id was already stored.
func (r *MessageRepository) InsertOutbound(ctx context.Context, in domain.OutboundMessageInput) (bool, error) {
	query := `
		INSERT INTO wa_messages
			(id, wa_account_id, direction, wa_message_id, to_number, message_type,
			 text_body, media_id, payload)
		VALUES (?, ?, 'out', ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = id
	`

	result, err := r.db.ExecContext(ctx, query,
		uuid.NewString(),
		in.WaAccountID,
		in.WaMessageID,
		in.ToNumber,
		in.MessageType,
		in.TextBody,
		in.MediaID,
		jsonArg(in.Payload),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert outbound message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

// FindInbound returns nil, nil when the message is not stored.
func (r *MessageRepository) FindInbound(ctx context.Context, waAccountID, waMessageID string) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM wa_messages
		WHERE wa_account_id = ? AND direction = 'in' AND wa_message_id = ?
		LIMIT 1`

	var message domain.Message
	if err := r.db.GetContext(ctx, &message, query, waAccountID, waMessageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get inbound message: %w", err)
	}

	return &message, nil
}
