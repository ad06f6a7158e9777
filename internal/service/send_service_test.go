package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
)

func TestSend_TextByAccountID(t *testing.T) {
	messages := newFakeMessages()
	graph := &fakeGraph{messageID: "wamid.out.7"}
	svc := NewSendService(newFakeAccounts(testAccount()), graph, messages)

	res, err := svc.Send(context.Background(), SendInput{
		WaAccountID: "acc-1",
		To:          "5511999",
		Type:        MessageTypeText,
		Text:        "hello",
	})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if res.WaAccountID != "acc-1" || res.PhoneNumberID != "pn-1" || res.WaMessageID != "wamid.out.7" {
		t.Errorf("unexpected result %+v", res)
	}
	if graph.lastPhoneID != "pn-1" || graph.lastVersion != "v20.0" {
		t.Errorf("unexpected graph call %s/%s", graph.lastVersion, graph.lastPhoneID)
	}
	if graph.lastMessage.Text == nil || graph.lastMessage.Text.Body != "hello" {
		t.Errorf("unexpected message %+v", graph.lastMessage)
	}

	row, ok := messages.outbound["acc-1|wamid.out.7"]
	if !ok {
		t.Fatalf("expected outbound row")
	}
	if row.ToNumber != "5511999" || row.TextBody == nil || *row.TextBody != "hello" {
		t.Errorf("unexpected outbound row %+v", row)
	}

	var payload struct {
		Request  map[string]any `json:"request"`
		Response map[string]any `json:"response"`
	}
	if err := json.Unmarshal(row.Payload, &payload); err != nil {
		t.Fatalf("outbound payload is not JSON: %v", err)
	}
	if payload.Request["to"] != "5511999" || payload.Response["messages"] == nil {
		t.Errorf("unexpected outbound payload %s", row.Payload)
	}
}

func TestSend_TemplateByPhoneNumberIDUsesAccountVersion(t *testing.T) {
	account := testAccount()
	version := "21.0"
	account.GraphAPIVersion = &version

	messages := newFakeMessages()
	graph := &fakeGraph{}
	svc := NewSendService(newFakeAccounts(account), graph, messages)

	_, err := svc.Send(context.Background(), SendInput{
		PhoneNumberID: "pn-1",
		To:            "5511999",
		Type:          MessageTypeTemplate,
		Template:      &TemplateInput{Name: "welcome", LanguageCode: "pt_BR"},
	})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if graph.lastVersion != "v21.0" {
		t.Errorf("expected account version v21.0, got %s", graph.lastVersion)
	}
	if graph.lastMessage.Template == nil || graph.lastMessage.Template.Language.Code != "pt_BR" {
		t.Errorf("unexpected template %+v", graph.lastMessage.Template)
	}
	for _, row := range messages.outbound {
		if row.TextBody != nil {
			t.Errorf("expected no text body for a template, got %q", *row.TextBody)
		}
	}
}

func TestSend_UnknownAccount(t *testing.T) {
	graph := &fakeGraph{}
	svc := NewSendService(newFakeAccounts(), graph, newFakeMessages())

	_, err := svc.Send(context.Background(), SendInput{WaAccountID: "missing", To: "1", Type: MessageTypeText, Text: "x"})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if graph.calls != 0 {
		t.Errorf("expected no upstream call")
	}
}

func TestSend_UnsupportedType(t *testing.T) {
	svc := NewSendService(newFakeAccounts(testAccount()), &fakeGraph{}, newFakeMessages())

	_, err := svc.Send(context.Background(), SendInput{WaAccountID: "acc-1", To: "1", Type: "image"})
	if !errors.Is(err, ErrUnsupportedMessageType) {
		t.Fatalf("expected ErrUnsupportedMessageType, got %v", err)
	}
}

func TestSend_UpstreamFailureStoresNothing(t *testing.T) {
	messages := newFakeMessages()
	svc := NewSendService(newFakeAccounts(testAccount()), &fakeGraph{err: errBoom}, messages)

	_, err := svc.Send(context.Background(), SendInput{WaAccountID: "acc-1", To: "1", Type: MessageTypeText, Text: "x"})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !errors.Is(err, ErrUpstreamSend) {
		t.Errorf("expected error to be classified as upstream, got %v", err)
	}
	if len(messages.outbound) != 0 {
		t.Errorf("expected no outbound row")
	}
}
