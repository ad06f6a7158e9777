package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const (
	KeyInboundProcessed = "wa.inbound.processed"
	KeyInboundSkipped   = "wa.inbound.skipped"
	KeyInboundFailed    = "wa.inbound.failed"
)

type Meta struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Envelope is the wire shape of every published event.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// InboundOutcome reports what the worker did with one inbound message.
type InboundOutcome struct {
	WaAccountID string `json:"waAccountId"`
	WaMessageID string `json:"waMessageId"`
	JobID       string `json:"jobId"`
	Outcome     string `json:"outcome"`
	Attempts    int    `json:"attempts"`
	Error       string `json:"error,omitempty"`
	Retrying    bool   `json:"retrying,omitempty"`
}

func NewEnvelope(key string, data any) Envelope {
	return Envelope{
		Meta: Meta{
			ID:         uuid.NewString(),
			Type:       key,
			OccurredAt: time.Now().UTC(),
		},
		Data: data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, key string, msg Envelope) error
	Close() error
}

type nopPublisher struct{}

// Nop is used when no broker is configured.
func Nop() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, string, Envelope) error { return nil }
func (nopPublisher) Close() error                                     { return nil }

// publishChannel is the part of *amqp091.Channel used to publish.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type rmqPublisher struct {
	conn        *amqp091.Connection
	openChannel func() (publishChannel, error)
	exchange    string
	log         *slog.Logger
}

// New dials RabbitMQ and declares a durable topic exchange.
func New(url, exchange string, logger *slog.Logger) (Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &rmqPublisher{
		conn: conn,
		openChannel: func() (publishChannel, error) {
			ch, err := conn.Channel()
			if err != nil {
				return nil, err
			}
			return ch, nil
		},
		exchange: exchange,
		log:      logger,
	}, nil
}

func (p *rmqPublisher) Publish(ctx context.Context, key string, msg Envelope) error {
	publishing, err := newPublishing(msg)
	if err != nil {
		return err
	}

	ch, err := p.openChannel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.PublishWithContext(ctx, p.exchange, key, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}

	p.log.Debug("published", slog.String("key", key), slog.String("exchange", p.exchange))

	return nil
}

func (p *rmqPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// newPublishing encodes msg as a persistent JSON message keyed by its event id.
func newPublishing(msg Envelope) (amqp091.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	msgID := msg.Meta.ID
	if msgID == "" {
		msgID = uuid.NewString()
	}

	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    msgID,
		Timestamp:    time.Now(),
		Body:         body,
	}, nil
}
