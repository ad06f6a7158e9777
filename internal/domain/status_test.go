package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func baseStatusInput() StatusEventInput {
	return StatusEventInput{
		WaAccountID:     "acc-1",
		WaMessageID:     "wamid.1",
		RecipientID:     ptr("5511999"),
		Status:          "delivered",
		StatusTimestamp: ptr(time.Unix(1700000000, 0).UTC()),
		Payload:         json.RawMessage(`{"id":"wamid.1","status":"delivered"}`),
	}
}

func TestDedupKey_EachFieldChangesKey(t *testing.T) {
	base := baseStatusInput().DedupKey()

	tests := []struct {
		name   string
		mutate func(in *StatusEventInput)
	}{
		{"account", func(in *StatusEventInput) { in.WaAccountID = "acc-2" }},
		{"message", func(in *StatusEventInput) { in.WaMessageID = "wamid.2" }},
		{"status", func(in *StatusEventInput) { in.Status = "read" }},
		{"recipient", func(in *StatusEventInput) { in.RecipientID = ptr("5511888") }},
		{"timestamp", func(in *StatusEventInput) { in.StatusTimestamp = ptr(time.Unix(1700000001, 0).UTC()) }},
		{"recipient absent", func(in *StatusEventInput) { in.RecipientID = nil }},
		{"timestamp absent", func(in *StatusEventInput) { in.StatusTimestamp = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseStatusInput()
			tt.mutate(&in)

			if got := in.DedupKey(); got == base {
				t.Errorf("expected a different key when %s changes", tt.name)
			}
		})
	}
}

func TestDedupKey_SameEventCollapses(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *StatusEventInput)
	}{
		{"identical", func(in *StatusEventInput) {}},
		{"payload ignored", func(in *StatusEventInput) { in.Payload = json.RawMessage(`{"other":true}`) }},
		{"timezone ignored", func(in *StatusEventInput) {
			in.StatusTimestamp = ptr(in.StatusTimestamp.In(time.FixedZone("BRT", -3*3600)))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := baseStatusInput()
			b := baseStatusInput()
			tt.mutate(&b)

			if a.DedupKey() != b.DedupKey() {
				t.Errorf("expected equal keys")
			}
		})
	}
}

func TestDedupKey_AbsentFields(t *testing.T) {
	absent := func() StatusEventInput {
		in := baseStatusInput()
		in.RecipientID = nil
		in.StatusTimestamp = nil
		return in
	}

	if absent().DedupKey() != absent().DedupKey() {
		t.Fatalf("events without recipient and timestamp must still deduplicate")
	}

	empty := absent()
	empty.RecipientID = ptr("")
	if empty.DedupKey() == absent().DedupKey() {
		t.Errorf("empty recipient must not collide with absent recipient")
	}

	zero := absent()
	zero.StatusTimestamp = ptr(time.Unix(0, 0).UTC())
	if zero.DedupKey() == absent().DedupKey() {
		t.Errorf("epoch timestamp must not collide with absent timestamp")
	}

	if got := len(absent().DedupKey()); got != 64 {
		t.Errorf("expected 64 hex chars, got %d", got)
	}
}
