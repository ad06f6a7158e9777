package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/pkg/events"
	"github.com/onurcolak/wa-inbound-service/pkg/queue"
	"github.com/onurcolak/wa-inbound-service/pkg/webhook"
)

var errBoom = errors.New("boom")

func claimKey(acct, msg string) string { return acct + "|" + msg }

// memClaims mirrors the claim state machine of the MySQL store. locked holds the
// lease expiry of claims owned by some other worker.
type memClaims struct {
	mu     sync.Mutex
	claims map[string]*domain.ProcessingClaim
	locked map[string]time.Time
	err    error
}

func newMemClaims() *memClaims {
	return &memClaims{
		claims: make(map[string]*domain.ProcessingClaim),
		locked: make(map[string]time.Time),
	}
}

func (m *memClaims) BeginProcessing(ctx context.Context, acct, msg string) (*domain.ProcessingClaim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	key := claimKey(acct, msg)
	now := time.Now().UTC()
	if until, ok := m.locked[key]; ok && now.Before(until) {
		return nil, &domain.ClaimLockedError{Until: until}
	}

	c, ok := m.claims[key]
	if !ok {
		c = &domain.ProcessingClaim{
			WaAccountID: acct,
			WaMessageID: msg,
			Status:      domain.ClaimProcessing,
			Attempts:    1,
			LockedAt:    now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		m.claims[key] = c
		cp := *c
		return &cp, nil
	}

	if c.Status == domain.ClaimDone {
		return nil, nil
	}

	c.Status = domain.ClaimProcessing
	c.Attempts++
	c.LockedAt = now
	c.LastError = nil
	c.UpdatedAt = now
	cp := *c
	return &cp, nil
}

func (m *memClaims) MarkDone(ctx context.Context, acct, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.claims[claimKey(acct, msg)]
	if !ok {
		return nil
	}
	if c.ProcessedAt == nil {
		now := time.Now().UTC()
		c.ProcessedAt = &now
	}
	c.Status = domain.ClaimDone
	c.LastError = nil
	return nil
}

func (m *memClaims) MarkFailed(ctx context.Context, acct, msg, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.claims[claimKey(acct, msg)]
	if !ok || c.Status == domain.ClaimDone {
		return nil
	}
	truncated := domain.TruncateError(errMsg)
	c.Status = domain.ClaimFailed
	c.LastError = &truncated
	return nil
}

func (m *memClaims) get(acct, msg string) *domain.ProcessingClaim {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.claims[claimKey(acct, msg)]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// memMessages serves both the ingest writer and the worker reader.
type memMessages struct {
	mu      sync.Mutex
	inbound map[string]*domain.Message
}

func newMemMessages() *memMessages {
	return &memMessages{inbound: make(map[string]*domain.Message)}
}

func (m *memMessages) InsertInbound(ctx context.Context, in domain.InboundMessageInput) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := claimKey(in.WaAccountID, in.WaMessageID)
	if _, ok := m.inbound[key]; ok {
		return false, nil
	}
	msgType := in.MessageType
	m.inbound[key] = &domain.Message{
		ID:          "row-" + in.WaMessageID,
		WaAccountID: in.WaAccountID,
		Direction:   domain.DirectionIn,
		WaMessageID: in.WaMessageID,
		FromNumber:  in.FromNumber,
		MessageType: &msgType,
		TextBody:    in.TextBody,
		Payload:     in.Payload,
	}
	return true, nil
}

func (m *memMessages) FindInbound(ctx context.Context, acct, msg string) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.inbound[claimKey(acct, msg)], nil
}

type memStatuses struct{}

func (memStatuses) Insert(ctx context.Context, in domain.StatusEventInput) (bool, error) {
	return true, nil
}

type memAccounts struct {
	account *domain.Account
}

func (m memAccounts) FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (*domain.Account, error) {
	if m.account != nil && m.account.PhoneNumberID == phoneNumberID {
		return m.account, nil
	}
	return nil, nil
}

// recordingHandler fails the first failFirst calls with failWith.
type recordingHandler struct {
	mu        sync.Mutex
	calls     []string
	failFirst int
	failWith  error
}

func (h *recordingHandler) HandleInbound(ctx context.Context, msg *domain.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls = append(h.calls, msg.WaMessageID)
	if len(h.calls) <= h.failFirst {
		return h.failWith
	}
	return nil
}

func (h *recordingHandler) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Envelope
	keys   []string
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, msg events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.keys = append(p.keys, key)
	p.events = append(p.events, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) keysSnapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type recordingAlerts struct {
	mu     sync.Mutex
	alerts []webhook.Alert
}

func (a *recordingAlerts) SendAlert(ctx context.Context, alert webhook.Alert) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, alert)
	return nil
}

func (a *recordingAlerts) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.alerts)
}

// scriptedSource is a jobSource that hands out a fixed list of jobs.
type scriptedSource struct {
	mu        sync.Mutex
	jobs      []*queue.Job
	completed []string
	failed    []string
	postponed []time.Duration
	failRes   queue.FailResult
}

func (s *scriptedSource) Name() string { return "test" }

func (s *scriptedSource) Fetch(ctx context.Context) (*queue.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.jobs) == 0 {
		return nil, queue.ErrNoJob
	}
	job := s.jobs[0]
	s.jobs = s.jobs[1:]
	return job, nil
}

func (s *scriptedSource) Complete(ctx context.Context, job *queue.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, job.ID)
	return nil
}

func (s *scriptedSource) Fail(ctx context.Context, job *queue.Job, cause error) (queue.FailResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, job.ID)
	res := s.failRes
	res.AttemptsMade = job.AttemptsMade + 1
	return res, nil
}

func (s *scriptedSource) Postpone(ctx context.Context, job *queue.Job, delay time.Duration, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postponed = append(s.postponed, delay)
	return nil
}

func (s *scriptedSource) RequeueStalled(ctx context.Context, olderThan time.Duration) (int, error) {
	return 0, nil
}

func (s *scriptedSource) settled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completed) + len(s.failed) + len(s.postponed)
}

func strPtr(s string) *string { return &s }

// waitFor polls cond until it holds or the deadline passes.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
