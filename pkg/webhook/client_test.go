package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onurcolak/wa-inbound-service/environments"
)

func TestSendAlert_PostsPayload(t *testing.T) {
	var got Alert
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewWebhookClient(environments.AlertConfig{WebhookURL: srv.URL})

	err := client.SendAlert(context.Background(), Alert{
		Alert:    AlertJobFailed,
		Queue:    "wa_inbound",
		JobID:    "acc-1:wamid.1",
		Attempts: 5,
		Error:    "boom",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.JobID != "acc-1:wamid.1" || got.Attempts != 5 || got.Alert != AlertJobFailed {
		t.Errorf("unexpected payload: %+v", got)
	}
	if got.Timestamp == "" {
		t.Errorf("expected timestamp to be filled in")
	}
}

func TestSendAlert_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewWebhookClient(environments.AlertConfig{WebhookURL: srv.URL})

	if err := client.SendAlert(context.Background(), Alert{JobID: "x"}); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestSendAlert_DisabledIsNoop(t *testing.T) {
	client := NewWebhookClient(environments.AlertConfig{})

	if client.Enabled() {
		t.Fatal("expected client without URL to be disabled")
	}
	if err := client.SendAlert(context.Background(), Alert{JobID: "x"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
