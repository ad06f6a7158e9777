package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/pkg/events"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
	"github.com/onurcolak/wa-inbound-service/pkg/queue"
)

type claimStore interface {
	BeginProcessing(ctx context.Context, waAccountID, waMessageID string) (*domain.ProcessingClaim, error)
	MarkDone(ctx context.Context, waAccountID, waMessageID string) error
	MarkFailed(ctx context.Context, waAccountID, waMessageID, errMsg string) error
}

type inboundReader interface {
	FindInbound(ctx context.Context, waAccountID, waMessageID string) (*domain.Message, error)
}

// InboundHandler is the business logic run once per inbound message. Errors wrapped
// with queue.Fatal are not retried.
type InboundHandler interface {
	HandleInbound(ctx context.Context, msg *domain.Message) error
}

// Result is the successful outcome of one job.
type Result struct {
	Skipped  bool
	Attempts int
}

// Processor runs the claim -> fetch -> handle -> mark pipeline for one job.
type Processor struct {
	claims    claimStore
	messages  inboundReader
	handler   InboundHandler
	publisher events.Publisher
}

func NewProcessor(claims claimStore, messages inboundReader, handler InboundHandler, publisher events.Publisher) *Processor {
	if publisher == nil {
		publisher = events.Nop()
	}

	return &Processor{
		claims:    claims,
		messages:  messages,
		handler:   handler,
		publisher: publisher,
	}
}

// DecodeJob validates a job payload. Any shape problem is fatal.
func DecodeJob(data []byte) (domain.InboundJob, error) {
	var job domain.InboundJob
	if err := json.Unmarshal(data, &job); err != nil {
		return domain.InboundJob{}, queue.Fatal(fmt.Errorf("%w: %v", domain.ErrInvalidJobPayload, err))
	}
	if !job.Valid() {
		return domain.InboundJob{}, queue.Fatal(domain.ErrInvalidJobPayload)
	}
	return job, nil
}

func (p *Processor) Handle(ctx context.Context, data []byte) (Result, error) {
	job, err := DecodeJob(data)
	if err != nil {
		logger.Errorf("Dropping job with invalid payload: %v", err)
		return Result{}, err
	}

	log := logger.With("wa_account_id", job.WaAccountID, "wa_message_id", job.WaMessageID, "job_id", job.JobID())

	claim, err := p.claims.BeginProcessing(ctx, job.WaAccountID, job.WaMessageID)
	if err != nil {
		if errors.Is(err, domain.ErrClaimLocked) {
			log.Warn("Inbound claim held by another slot, retrying later")
		}
		return Result{}, err
	}

	if claim == nil {
		log.Info("Inbound already processed, skipping")
		p.publish(ctx, events.KeyInboundSkipped, job, "skipped", 0)
		return Result{Skipped: true}, nil
	}

	if err := p.process(ctx, job); err != nil {
		if markErr := p.claims.MarkFailed(ctx, job.WaAccountID, job.WaMessageID, err.Error()); markErr != nil {
			log.Error("Failed to record claim failure", "error", markErr.Error())
		}

		log.Error("Inbound processing failed",
			"attempts", claim.Attempts,
			"fatal", queue.IsFatal(err),
			"error", err.Error(),
		)
		return Result{}, err
	}

	if err := p.claims.MarkDone(ctx, job.WaAccountID, job.WaMessageID); err != nil {
		return Result{}, err
	}

	log.Info("Inbound processed", "attempts", claim.Attempts)
	p.publish(ctx, events.KeyInboundProcessed, job, "processed", claim.Attempts)

	return Result{Attempts: claim.Attempts}, nil
}

func (p *Processor) process(ctx context.Context, job domain.InboundJob) error {
	msg, err := p.messages.FindInbound(ctx, job.WaAccountID, job.WaMessageID)
	if err != nil {
		return err
	}
	if msg == nil {
		// Stored before enqueue, so this is a visibility delay: retriable.
		return fmt.Errorf("%w: %s", domain.ErrInboundNotFound, job.JobID())
	}

	return p.handler.HandleInbound(ctx, msg)
}

func (p *Processor) publish(ctx context.Context, key string, job domain.InboundJob, outcome string, attempts int) {
	publishOutcome(ctx, p.publisher, key, events.InboundOutcome{
		WaAccountID: job.WaAccountID,
		WaMessageID: job.WaMessageID,
		JobID:       job.JobID(),
		Outcome:     outcome,
		Attempts:    attempts,
	})
}

func publishOutcome(ctx context.Context, publisher events.Publisher, key string, data events.InboundOutcome) {
	if err := publisher.Publish(ctx, key, events.NewEnvelope(key, data)); err != nil {
		logger.Warnf("Failed to publish %s for job %s: %v", key, data.JobID, err)
	}
}
