package domain

import "time"

type ClaimStatus string

const (
	ClaimProcessing ClaimStatus = "processing"
	ClaimDone       ClaimStatus = "done"
	ClaimFailed     ClaimStatus = "failed"
)

// MaxLastErrorLength bounds ProcessingClaim.LastError, in characters.
const MaxLastErrorLength = 500

// ProcessingClaim coordinates exactly-once-effective processing of one inbound message.
type ProcessingClaim struct {
	WaAccountID string      `db:"wa_account_id" json:"waAccountId"`
	WaMessageID string      `db:"wa_message_id" json:"waMessageId"`
	Status      ClaimStatus `db:"status" json:"status"`
	Attempts    int         `db:"attempts" json:"attempts"`
	LockedAt    time.Time   `db:"locked_at" json:"lockedAt"`
	ProcessedAt *time.Time  `db:"processed_at" json:"processedAt,omitempty"`
	LastError   *string     `db:"last_error" json:"lastError,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

type ClaimStats struct {
	Processing int64 `db:"processing" json:"processing"`
	Done       int64 `db:"done" json:"done"`
	Failed     int64 `db:"failed" json:"failed"`
}

// TruncateError shortens msg to MaxLastErrorLength characters.
func TruncateError(msg string) string {
	runes := []rune(msg)
	if len(runes) <= MaxLastErrorLength {
		return msg
	}
	return string(runes[:MaxLastErrorLength])
}
