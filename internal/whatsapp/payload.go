// Package whatsapp models the WhatsApp Cloud API webhook payload.
package whatsapp

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// WebhookPayload is the envelope posted by the provider. Messages and statuses are
// kept raw so one malformed entry cannot break decoding of its siblings.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Metadata         Metadata          `json:"metadata"`
	Messages         []json.RawMessage `json:"messages"`
	Statuses         []json.RawMessage `json:"statuses"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// ParsePayload decodes a webhook body.
func ParsePayload(raw []byte) (WebhookPayload, error) {
	var p WebhookPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return WebhookPayload{}, err
	}
	return p, nil
}

// Changes flattens every entry's changes.
func (p WebhookPayload) Changes() []ChangeValue {
	var out []ChangeValue
	for _, e := range p.Entry {
		for _, c := range e.Changes {
			out = append(out, c.Value)
		}
	}
	return out
}

// RoutingKey returns the provider number id the change was delivered to.
func (v ChangeValue) RoutingKey() (string, bool) {
	id := strings.TrimSpace(v.Metadata.PhoneNumberID)
	return id, id != ""
}

// StatusEntry is a delivery-status callback with both id and status present.
type StatusEntry struct {
	WaMessageID string
	Status      string
	RecipientID *string
	Timestamp   *time.Time
	Raw         json.RawMessage
}

// ParseStatus extracts a status entry; ok is false when id or status is missing.
func ParseStatus(raw json.RawMessage) (StatusEntry, bool) {
	f, ok := objectOf(raw)
	if !ok {
		return StatusEntry{}, false
	}

	id := f.str("id")
	status := f.str("status")
	if id == nil || *id == "" || status == nil || *status == "" {
		return StatusEntry{}, false
	}

	return StatusEntry{
		WaMessageID: *id,
		Status:      *status,
		RecipientID: f.str("recipient_id"),
		Timestamp:   f.unixSeconds("timestamp"),
		Raw:         raw,
	}, true
}

// fields is a decoded JSON object whose accessors never fail: a missing or
// differently-typed member yields an absent value.
type fields map[string]json.RawMessage

func objectOf(raw json.RawMessage) (fields, bool) {
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return nil, false
	}
	return f, true
}

func (f fields) str(key string) *string {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || string(raw) == "null" {
		return nil
	}
	return &s
}

func (f fields) obj(key string) fields {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	out, _ := objectOf(raw)
	return out
}

func (f fields) arr(key string) []json.RawMessage {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var out []json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// num accepts a JSON number or a numeric string.
func (f fields) num(key string) (float64, bool) {
	raw, ok := f[key]
	if !ok {
		return 0, false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}

	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// unixSeconds reads a provider timestamp (seconds since epoch, string or number).
func (f fields) unixSeconds(key string) *time.Time {
	if s := f.str(key); s != nil && *s == "" {
		return nil
	}
	n, ok := f.num(key)
	if !ok {
		return nil
	}
	t := time.UnixMilli(int64(math.Round(n * 1000))).UTC()
	return &t
}
