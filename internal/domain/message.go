package domain

import (
	"encoding/json"
	"time"
)

type MessageDirection string

const (
	DirectionIn  MessageDirection = "in"
	DirectionOut MessageDirection = "out"
)

// Message is a row of wa_messages. Inbound and outbound messages share the table
// and are told apart by Direction.
type Message struct {
	ID               string           `db:"id" json:"id"`
	WaAccountID      string           `db:"wa_account_id" json:"waAccountId"`
	Direction        MessageDirection `db:"direction" json:"direction"`
	WaMessageID      string           `db:"wa_message_id" json:"waMessageId"`
	FromNumber       *string          `db:"from_number" json:"fromNumber,omitempty"`
	ToNumber         *string          `db:"to_number" json:"toNumber,omitempty"`
	MessageType      *string          `db:"message_type" json:"messageType,omitempty"`
	TextBody         *string          `db:"text_body" json:"textBody,omitempty"`
	MediaID          *string          `db:"media_id" json:"mediaId,omitempty"`
	MessageTimestamp *time.Time       `db:"message_timestamp" json:"messageTimestamp,omitempty"`
	Payload          json.RawMessage  `db:"payload" json:"payload"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
}

type InboundMessageInput struct {
	WaAccountID      string
	WaMessageID      string
	FromNumber       *string
	MessageType      string
	TextBody         *string
	MediaID          *string
	MessageTimestamp *time.Time
	Payload          json.RawMessage
}

type OutboundMessageInput struct {
	WaAccountID string
	WaMessageID string
	ToNumber    string
	MessageType string
	TextBody    *string
	MediaID     *string
	Payload     json.RawMessage
}
