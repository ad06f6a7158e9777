package environments

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Queue.Name != "wa_inbound" {
		t.Errorf("expected queue name wa_inbound, got %q", cfg.Queue.Name)
	}
	if cfg.Queue.Attempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.Queue.Attempts)
	}
	if cfg.Queue.Backoff != 5*time.Second {
		t.Errorf("expected 5s backoff, got %v", cfg.Queue.Backoff)
	}
	if cfg.Queue.KeepCompleted != 5000 || cfg.Queue.KeepFailed != 5000 {
		t.Errorf("expected retention 5000/5000, got %d/%d", cfg.Queue.KeepCompleted, cfg.Queue.KeepFailed)
	}
	if cfg.Worker.Concurrency != 5 {
		t.Errorf("expected worker concurrency 5, got %d", cfg.Worker.Concurrency)
	}
	if cfg.Cache.AccountTTL != time.Minute {
		t.Errorf("expected account cache ttl 1m, got %v", cfg.Cache.AccountTTL)
	}
	if cfg.WhatsApp.GraphAPIVersion != "v20.0" {
		t.Errorf("expected graph version v20.0, got %q", cfg.WhatsApp.GraphAPIVersion)
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("WA_WORKER_CONCURRENCY", "12")
	t.Setenv("QUEUE_BACKOFF", "250ms")
	t.Setenv("META_APP_SECRET", "shh")
	t.Setenv("INTERNAL_API_KEY", "internal")
	t.Setenv("WORKER_EMBEDDED", "true")

	cfg := Load()

	if cfg.Worker.Concurrency != 12 {
		t.Errorf("expected concurrency 12, got %d", cfg.Worker.Concurrency)
	}
	if cfg.Queue.Backoff != 250*time.Millisecond {
		t.Errorf("expected 250ms backoff, got %v", cfg.Queue.Backoff)
	}
	if cfg.WhatsApp.AppSecret != "shh" {
		t.Errorf("expected app secret to be read")
	}
	if cfg.Auth.InternalAPIKey != "internal" {
		t.Errorf("expected internal api key to be read")
	}
	if !cfg.Worker.Embedded {
		t.Errorf("expected embedded worker to be enabled")
	}
}

func TestGetEnvAsInt_InvalidFallsBackToDefault(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")

	if got := GetEnvAsInt("SOME_INT", 7); got != 7 {
		t.Errorf("expected default 7, got %d", got)
	}
}

func TestGetEnvAsDuration_Invalid(t *testing.T) {
	t.Setenv("SOME_DURATION", "forever")

	if got := GetEnvAsDuration("SOME_DURATION", time.Minute); got != time.Minute {
		t.Errorf("expected default 1m, got %v", got)
	}
}
