package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/internal/signature"
	"github.com/onurcolak/wa-inbound-service/internal/whatsapp"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
	"github.com/onurcolak/wa-inbound-service/pkg/queue"
)

type OutcomeKind string

const (
	OutcomeAccepted OutcomeKind = "accepted"
	OutcomeNoop     OutcomeKind = "accepted_noop"
	OutcomeRejected OutcomeKind = "rejected"
)

const (
	ReasonBadSignature     = "bad_signature"
	ReasonMalformedPayload = "malformed_payload"
	ReasonMissingRouting   = "missing_routing"
	ReasonUnknownAccount   = "unknown_account"
)

// Outcome is the result of one webhook delivery. Anything but Rejected is
// acknowledged to the provider.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Reason string      `json:"reason,omitempty"`

	MessagesPersisted  int `json:"messagesPersisted"`
	MessagesDuplicated int `json:"messagesDuplicated"`
	MessagesSkipped    int `json:"messagesSkipped"`
	JobsCreated        int `json:"jobsCreated"`
	JobsExisting       int `json:"jobsExisting"`
	StatusesPersisted  int `json:"statusesPersisted"`
	StatusesDuplicated int `json:"statusesDuplicated"`
	StatusesSkipped    int `json:"statusesSkipped"`
}

type accountLookup interface {
	FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (*domain.Account, error)
}

type inboundWriter interface {
	InsertInbound(ctx context.Context, in domain.InboundMessageInput) (bool, error)
}

type statusWriter interface {
	Insert(ctx context.Context, in domain.StatusEventInput) (bool, error)
}

type jobEnqueuer interface {
	Add(ctx context.Context, id string, data any) (queue.AddResult, error)
}

// maxIngestFanOut bounds concurrent entry writes per webhook.
const maxIngestFanOut = 16

type IngestService struct {
	appSecret string
	accounts  accountLookup
	messages  inboundWriter
	statuses  statusWriter
	queue     jobEnqueuer
}

func NewIngestService(
	appSecret string,
	accounts accountLookup,
	messages inboundWriter,
	statuses statusWriter,
	queue jobEnqueuer,
) *IngestService {
	return &IngestService{
		appSecret: appSecret,
		accounts:  accounts,
		messages:  messages,
		statuses:  statuses,
		queue:     queue,
	}
}

// entryResult is written by exactly one goroutine.
type entryResult struct {
	persisted, duplicated, skipped bool
	jobCreated, jobExisting        bool
	isStatus                       bool
}

// Ingest verifies, persists and enqueues one webhook delivery. A returned error is
// transient; every step before it is idempotent, so the provider may redeliver.
func (s *IngestService) Ingest(ctx context.Context, rawBody []byte, signatureHeader string) (Outcome, error) {
	if !signature.Verify(rawBody, signatureHeader, s.appSecret) {
		logger.Warnf("Rejected webhook with bad signature (header present: %t)", signatureHeader != "")
		return Outcome{Kind: OutcomeRejected, Reason: ReasonBadSignature}, nil
	}

	payload, err := whatsapp.ParsePayload(rawBody)
	if err != nil {
		logger.Warnf("Signed webhook body is not a valid payload: %v", err)
		return Outcome{Kind: OutcomeNoop, Reason: ReasonMalformedPayload}, nil
	}

	type routedChange struct {
		account *domain.Account
		value   whatsapp.ChangeValue
	}

	var routed []routedChange
	sawRoutingKey := false

	for _, value := range payload.Changes() {
		phoneNumberID, ok := value.RoutingKey()
		if !ok {
			logger.Warnf("WA change missing phone_number_id (messages: %d, statuses: %d)",
				len(value.Messages), len(value.Statuses))
			continue
		}
		sawRoutingKey = true

		account, err := s.accounts.FindByPhoneNumberID(ctx, phoneNumberID)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to resolve account: %w", err)
		}
		if account == nil {
			logger.Errorf("WA account not found for phone_number_id %s", phoneNumberID)
			continue
		}

		routed = append(routed, routedChange{account: account, value: value})
	}

	if !sawRoutingKey {
		return Outcome{Kind: OutcomeNoop, Reason: ReasonMissingRouting}, nil
	}
	if len(routed) == 0 {
		return Outcome{Kind: OutcomeNoop, Reason: ReasonUnknownAccount}, nil
	}

	total := 0
	for _, rc := range routed {
		total += len(rc.value.Statuses) + len(rc.value.Messages)
	}
	results := make([]entryResult, total)

	var g errgroup.Group
	g.SetLimit(maxIngestFanOut)

	i := 0
	for _, rc := range routed {
		accountID := rc.account.ID

		for _, raw := range rc.value.Statuses {
			res := &results[i]
			i++
			g.Go(func() error {
				res.isStatus = true
				return s.ingestStatus(ctx, accountID, raw, res)
			})
		}

		for _, raw := range rc.value.Messages {
			res := &results[i]
			i++
			g.Go(func() error {
				return s.ingestMessage(ctx, accountID, raw, res)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{Kind: OutcomeAccepted}
	for _, r := range results {
		if r.isStatus {
			switch {
			case r.skipped:
				outcome.StatusesSkipped++
			case r.persisted:
				outcome.StatusesPersisted++
			case r.duplicated:
				outcome.StatusesDuplicated++
			}
			continue
		}

		switch {
		case r.skipped:
			outcome.MessagesSkipped++
		case r.persisted:
			outcome.MessagesPersisted++
		case r.duplicated:
			outcome.MessagesDuplicated++
		}
		if r.jobCreated {
			outcome.JobsCreated++
		}
		if r.jobExisting {
			outcome.JobsExisting++
		}
	}

	logger.With(
		"messages_persisted", outcome.MessagesPersisted,
		"messages_duplicated", outcome.MessagesDuplicated,
		"jobs_created", outcome.JobsCreated,
		"jobs_existing", outcome.JobsExisting,
		"statuses_persisted", outcome.StatusesPersisted,
		"statuses_duplicated", outcome.StatusesDuplicated,
	).Info("WA event persisted/enqueued")

	return outcome, nil
}

func (s *IngestService) ingestStatus(ctx context.Context, accountID string, raw []byte, res *entryResult) error {
	entry, ok := whatsapp.ParseStatus(raw)
	if !ok {
		res.skipped = true
		return nil
	}

	inserted, err := s.statuses.Insert(ctx, domain.StatusEventInput{
		WaAccountID:     accountID,
		WaMessageID:     entry.WaMessageID,
		RecipientID:     entry.RecipientID,
		Status:          entry.Status,
		StatusTimestamp: entry.Timestamp,
		Payload:         entry.Raw,
	})
	if err != nil {
		logger.Errorf("Failed to persist status %s/%s: %v", entry.WaMessageID, entry.Status, err)
		return err
	}

	res.persisted = inserted
	res.duplicated = !inserted
	return nil
}

func (s *IngestService) ingestMessage(ctx context.Context, accountID string, raw []byte, res *entryResult) error {
	summary, ok := whatsapp.Summarize(raw)
	if !ok {
		res.skipped = true
		return nil
	}

	inserted, err := s.messages.InsertInbound(ctx, domain.InboundMessageInput{
		WaAccountID:      accountID,
		WaMessageID:      summary.WaMessageID,
		FromNumber:       summary.FromNumber,
		MessageType:      summary.MessageType,
		TextBody:         summary.TextBody,
		MediaID:          summary.MediaID,
		MessageTimestamp: summary.MessageTimestamp,
		Payload:          raw,
	})
	if err != nil {
		logger.Errorf("Failed to persist inbound message %s: %v", summary.WaMessageID, err)
		return err
	}
	res.persisted = inserted
	res.duplicated = !inserted

	// Enqueue even on the dedup path: an earlier delivery may have stored the row and
	// died before enqueueing.
	job := domain.InboundJob{WaAccountID: accountID, WaMessageID: summary.WaMessageID}

	added, err := s.queue.Add(ctx, job.JobID(), job)
	if err != nil {
		logger.Errorf("Failed to enqueue job %s: %v", job.JobID(), err)
		return fmt.Errorf("failed to enqueue inbound job: %w", err)
	}

	res.jobCreated = added == queue.Created
	res.jobExisting = added == queue.AlreadyExists
	return nil
}
