package service

import (
	"context"
	"fmt"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/pkg/queue"
)

type messageSender interface {
	Send(ctx context.Context, in SendInput) (*SendResult, error)
}

// AutoReplyHandler answers every inbound message with a fixed text.
type AutoReplyHandler struct {
	sender    messageSender
	replyText string
}

func NewAutoReplyHandler(sender messageSender, replyText string) *AutoReplyHandler {
	return &AutoReplyHandler{sender: sender, replyText: replyText}
}

// HandleInbound fails fatally when the message has no sender to reply to.
func (h *AutoReplyHandler) HandleInbound(ctx context.Context, msg *domain.Message) error {
	if msg.FromNumber == nil || *msg.FromNumber == "" {
		return queue.Fatal(domain.ErrMissingRecipient)
	}

	_, err := h.sender.Send(ctx, SendInput{
		WaAccountID: msg.WaAccountID,
		To:          *msg.FromNumber,
		Type:        MessageTypeText,
		Text:        h.replyText,
	})
	if err != nil {
		return fmt.Errorf("failed to send auto-reply: %w", err)
	}

	return nil
}
