package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/onurcolak/wa-inbound-service/environments"
	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
)

// Client caches account lookups so the webhook path skips MySQL for hot routing keys.
type Client struct {
	client valkey.Client
}

const (
	accountByPhoneKeyPrefix = "wa_account:pn:"
	accountByIDKeyPrefix    = "wa_account:id:"
)

func NewRedisClient(cfg environments.RedisConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infof("Connected to Redis account cache (via Valkey client)")

	return &Client{client: client}, nil
}

// CacheAccount stores the account under both its id and its phone number id.
func (c *Client) CacheAccount(ctx context.Context, account *domain.Account, ttl time.Duration) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	for _, key := range []string{
		accountByPhoneKeyPrefix + account.PhoneNumberID,
		accountByIDKeyPrefix + account.ID,
	} {
		err := c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(data)).Ex(ttl).Build()).Error()
		if err != nil {
			return fmt.Errorf("failed to cache account: %w", err)
		}
	}

	logger.Debugf("Cached account %s (phone_number_id %s) for %v", account.ID, account.PhoneNumberID, ttl)

	return nil
}

// GetAccountByPhoneNumberID returns nil, nil on a cache miss.
func (c *Client) GetAccountByPhoneNumberID(ctx context.Context, phoneNumberID string) (*domain.Account, error) {
	return c.getAccount(ctx, accountByPhoneKeyPrefix+phoneNumberID)
}

// GetAccountByID returns nil, nil on a cache miss.
func (c *Client) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	return c.getAccount(ctx, accountByIDKeyPrefix+id)
}

func (c *Client) getAccount(ctx context.Context, key string) (*domain.Account, error) {
	result := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached account: %w", result.Error())
	}

	data, err := result.ToString()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached account: %w", err)
	}

	var account domain.Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached account: %w", err)
	}

	return &account, nil
}

func (c *Client) Close() error {
	c.client.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}
