package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/pkg/graphapi"
	"github.com/onurcolak/wa-inbound-service/pkg/queue"
)

//
// Test fakes shared by the service tests.
//

type fakeAccounts struct {
	byPhone map[string]*domain.Account
	byID    map[string]*domain.Account
	err     error
	calls   int
}

func newFakeAccounts(accounts ...*domain.Account) *fakeAccounts {
	f := &fakeAccounts{
		byPhone: make(map[string]*domain.Account),
		byID:    make(map[string]*domain.Account),
	}
	for _, a := range accounts {
		f.byPhone[a.PhoneNumberID] = a
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (*domain.Account, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byPhone[phoneNumberID], nil
}

func (f *fakeAccounts) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

type fakeMessages struct {
	mu       sync.Mutex
	inbound  map[string]domain.InboundMessageInput
	outbound map[string]domain.OutboundMessageInput
	err      error
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{
		inbound:  make(map[string]domain.InboundMessageInput),
		outbound: make(map[string]domain.OutboundMessageInput),
	}
}

func (f *fakeMessages) InsertInbound(ctx context.Context, in domain.InboundMessageInput) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return false, f.err
	}
	key := in.WaAccountID + "|" + in.WaMessageID
	if _, ok := f.inbound[key]; ok {
		return false, nil
	}
	f.inbound[key] = in
	return true, nil
}

func (f *fakeMessages) InsertOutbound(ctx context.Context, in domain.OutboundMessageInput) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := in.WaAccountID + "|" + in.WaMessageID
	if _, ok := f.outbound[key]; ok {
		return false, nil
	}
	f.outbound[key] = in
	return true, nil
}

type fakeStatuses struct {
	mu   sync.Mutex
	rows map[string]domain.StatusEventInput
}

func newFakeStatuses() *fakeStatuses {
	return &fakeStatuses{rows: make(map[string]domain.StatusEventInput)}
}

func (f *fakeStatuses) Insert(ctx context.Context, in domain.StatusEventInput) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := in.WaAccountID + "|" + in.DedupKey()
	if _, ok := f.rows[key]; ok {
		return false, nil
	}
	f.rows[key] = in
	return true, nil
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs map[string]any
	err  error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{jobs: make(map[string]any)}
}

func (f *fakeQueue) Add(ctx context.Context, id string, data any) (queue.AddResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.jobs[id]; ok {
		return queue.AlreadyExists, nil
	}
	f.jobs[id] = data
	return queue.Created, nil
}

type fakeGraph struct {
	err       error
	messageID string

	calls       int
	lastPhoneID string
	lastVersion string
	lastMessage graphapi.Message
}

func (g *fakeGraph) Send(ctx context.Context, phoneNumberID, version string, msg graphapi.Message) (*graphapi.SendResult, error) {
	g.calls++
	g.lastPhoneID = phoneNumberID
	g.lastVersion = version
	g.lastMessage = msg

	if g.err != nil {
		return nil, g.err
	}

	id := g.messageID
	if id == "" {
		id = "wamid.out.1"
	}
	return &graphapi.SendResult{
		MessageID: id,
		Response:  []byte(`{"messages":[{"id":"` + id + `"}]}`),
	}, nil
}

func (g *fakeGraph) ResolveVersion(accountVersion *string) string {
	if accountVersion != nil {
		return graphapi.NormalizeVersion(*accountVersion)
	}
	return "v20.0"
}

type fakeCache struct {
	accounts map[string]*domain.Account
	err      error
	sets     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{accounts: make(map[string]*domain.Account)}
}

func (c *fakeCache) GetAccountByPhoneNumberID(ctx context.Context, phoneNumberID string) (*domain.Account, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.accounts["pn:"+phoneNumberID], nil
}

func (c *fakeCache) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.accounts["id:"+id], nil
}

func (c *fakeCache) CacheAccount(ctx context.Context, account *domain.Account, ttl time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.sets++
	c.accounts["pn:"+account.PhoneNumberID] = account
	c.accounts["id:"+account.ID] = account
	return nil
}

var errBoom = errors.New("boom")

func testAccount() *domain.Account {
	return &domain.Account{
		ID:            "acc-1",
		WorkspaceID:   "ws-1",
		PhoneNumberID: "pn-1",
		IsActive:      true,
	}
}
