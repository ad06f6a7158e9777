package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/pkg/graphapi"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
)

const (
	MessageTypeText     = "text"
	MessageTypeTemplate = "template"
)

var (
	ErrUnsupportedMessageType = errors.New("unsupported message type")
	ErrUpstreamSend           = errors.New("upstream send failed")
)

type TemplateInput struct {
	Name         string
	LanguageCode string
	Components   []json.RawMessage
}

// SendInput addresses the sending account by WaAccountID or, failing that, PhoneNumberID.
type SendInput struct {
	WaAccountID   string
	PhoneNumberID string
	To            string
	Type          string
	Text          string
	Template      *TemplateInput
}

type SendResult struct {
	WaAccountID   string `json:"waAccountId"`
	PhoneNumberID string `json:"phoneNumberId"`
	WaMessageID   string `json:"waMessageId"`
}

type sendAccountLookup interface {
	FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
}

type graphSender interface {
	Send(ctx context.Context, phoneNumberID, version string, msg graphapi.Message) (*graphapi.SendResult, error)
	ResolveVersion(accountVersion *string) string
}

type outboundWriter interface {
	InsertOutbound(ctx context.Context, in domain.OutboundMessageInput) (bool, error)
}

type SendService struct {
	accounts sendAccountLookup
	graph    graphSender
	messages outboundWriter
}

func NewSendService(accounts sendAccountLookup, graph graphSender, messages outboundWriter) *SendService {
	return &SendService{accounts: accounts, graph: graph, messages: messages}
}

func (s *SendService) Send(ctx context.Context, in SendInput) (*SendResult, error) {
	var msg graphapi.Message
	var textBody *string

	switch in.Type {
	case MessageTypeText:
		msg = graphapi.NewTextMessage(in.To, in.Text)
		text := in.Text
		textBody = &text
	case MessageTypeTemplate:
		if in.Template == nil {
			return nil, fmt.Errorf("%w: template is required", ErrUnsupportedMessageType)
		}
		msg = graphapi.NewTemplateMessage(in.To, in.Template.Name, in.Template.LanguageCode, in.Template.Components)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMessageType, in.Type)
	}

	account, err := s.resolveAccount(ctx, in)
	if err != nil {
		return nil, err
	}

	version := s.graph.ResolveVersion(account.GraphAPIVersion)

	sent, err := s.graph.Send(ctx, account.PhoneNumberID, version, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamSend, err)
	}

	payload, err := json.Marshal(map[string]any{
		"request":  msg,
		"response": sent.Response,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outbound payload: %w", err)
	}

	if _, err := s.messages.InsertOutbound(ctx, domain.OutboundMessageInput{
		WaAccountID: account.ID,
		WaMessageID: sent.MessageID,
		ToNumber:    in.To,
		MessageType: in.Type,
		TextBody:    textBody,
		Payload:     payload,
	}); err != nil {
		return nil, err
	}

	logger.Infof("Sent %s message %s from account %s", in.Type, sent.MessageID, account.ID)

	return &SendResult{
		WaAccountID:   account.ID,
		PhoneNumberID: account.PhoneNumberID,
		WaMessageID:   sent.MessageID,
	}, nil
}

func (s *SendService) resolveAccount(ctx context.Context, in SendInput) (*domain.Account, error) {
	var (
		account *domain.Account
		err     error
	)

	switch {
	case in.WaAccountID != "":
		account, err = s.accounts.FindByID(ctx, in.WaAccountID)
	case in.PhoneNumberID != "":
		account, err = s.accounts.FindByPhoneNumberID(ctx, in.PhoneNumberID)
	}
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}

	return account, nil
}
