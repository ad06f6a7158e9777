package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestHealth(t *testing.T) {
	down := errors.New("down")

	tests := []struct {
		name       string
		db         fakePinger
		queue      fakePinger
		cache      pinger
		wantStatus int
		wantState  string
	}{
		{"all up", fakePinger{}, fakePinger{}, fakePinger{}, http.StatusOK, "ok"},
		{"cache disabled", fakePinger{}, fakePinger{}, nil, http.StatusOK, "ok"},
		{"cache down", fakePinger{}, fakePinger{}, fakePinger{err: down}, http.StatusOK, "degraded"},
		{"queue down", fakePinger{}, fakePinger{err: down}, fakePinger{}, http.StatusServiceUnavailable, "down"},
		{"database down", fakePinger{err: down}, fakePinger{}, fakePinger{}, http.StatusServiceUnavailable, "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(http.MethodGet, "/health", "")

			h := NewHealthHandler(tt.db, tt.queue, tt.cache)
			if err := h.Health(c); err != nil {
				t.Fatalf("Health returned error: %v", err)
			}

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to unmarshal response body: %v", err)
			}
			if data, ok := body["data"].(map[string]any); ok {
				body = data
			}
			if body["status"] != tt.wantState {
				t.Errorf("expected status %q, got %v", tt.wantState, body["status"])
			}
		})
	}
}
