package handlers

import (
	"context"
	"net/http"
	"testing"
)

func TestWorkerHandler_StartStop(t *testing.T) {
	pool := &fakePool{}
	h := NewWorkerHandler(pool, context.Background())

	c, rec := newJSONContext(http.MethodPost, "/api/v1/worker/start", "")
	if err := h.StartWorker(c); err != nil {
		t.Fatalf("StartWorker returned error: %v", err)
	}
	if rec.Code != http.StatusOK || !pool.running {
		t.Fatalf("expected pool to start, status %d", rec.Code)
	}

	// Starting again is a no-op.
	c, _ = newJSONContext(http.MethodPost, "/api/v1/worker/start", "")
	_ = h.StartWorker(c)
	if pool.starts != 1 {
		t.Errorf("expected a single start, got %d", pool.starts)
	}

	c, rec = newJSONContext(http.MethodPost, "/api/v1/worker/stop", "")
	if err := h.StopWorker(c); err != nil {
		t.Fatalf("StopWorker returned error: %v", err)
	}
	if rec.Code != http.StatusOK || pool.running {
		t.Fatalf("expected pool to stop, status %d", rec.Code)
	}

	c, _ = newJSONContext(http.MethodPost, "/api/v1/worker/stop", "")
	_ = h.StopWorker(c)
	if pool.stops != 1 {
		t.Errorf("expected a single stop, got %d", pool.stops)
	}
}
