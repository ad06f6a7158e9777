package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// StatusEvent is an append-only delivery-status callback.
type StatusEvent struct {
	ID              string          `db:"id" json:"id"`
	WaAccountID     string          `db:"wa_account_id" json:"waAccountId"`
	WaMessageID     string          `db:"wa_message_id" json:"waMessageId"`
	RecipientID     *string         `db:"recipient_id" json:"recipientId,omitempty"`
	Status          string          `db:"status" json:"status"`
	StatusTimestamp *time.Time      `db:"status_timestamp" json:"statusTimestamp,omitempty"`
	DedupKey        string          `db:"dedup_key" json:"-"`
	Payload         json.RawMessage `db:"payload" json:"payload"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
}

type StatusEventInput struct {
	WaAccountID     string
	WaMessageID     string
	RecipientID     *string
	Status          string
	StatusTimestamp *time.Time
	Payload         json.RawMessage
}

// DedupKey hashes the (account, message, status, recipient, timestamp) quintuple.
// Absent recipient and timestamp hash to a marker distinct from any present value.
func (in StatusEventInput) DedupKey() string {
	recipient := "\x00"
	if in.RecipientID != nil {
		recipient = "r:" + *in.RecipientID
	}
	ts := "\x00"
	if in.StatusTimestamp != nil {
		ts = "t:" + strconv.FormatInt(in.StatusTimestamp.UTC().UnixMicro(), 10)
	}

	sum := sha256.Sum256([]byte(strings.Join([]string{
		in.WaAccountID,
		in.WaMessageID,
		in.Status,
		recipient,
		ts,
	}, "\x1f")))

	return hex.EncodeToString(sum[:])
}
