package domain

import "strings"

// InboundJob is the queue payload produced for every persisted inbound message.
type InboundJob struct {
	WaAccountID string `json:"waAccountId"`
	WaMessageID string `json:"waMessageId"`
}

// JobID is the deterministic queue key for the job.
func (j InboundJob) JobID() string {
	return j.WaAccountID + ":" + j.WaMessageID
}

func (j InboundJob) Valid() bool {
	return strings.TrimSpace(j.WaAccountID) != "" && strings.TrimSpace(j.WaMessageID) != ""
}
