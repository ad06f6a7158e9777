package service

import (
	"context"
	"fmt"
	"time"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
)

type accountRepository interface {
	FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
}

type accountCache interface {
	GetAccountByPhoneNumberID(ctx context.Context, phoneNumberID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, id string) (*domain.Account, error)
	CacheAccount(ctx context.Context, account *domain.Account, ttl time.Duration) error
}

// AccountResolver looks accounts up cache-aside. Misses are not cached, so a newly
// registered account is routable on the next webhook. Cache failures degrade to MySQL.
type AccountResolver struct {
	repo  accountRepository
	cache accountCache
	ttl   time.Duration
}

// NewAccountResolver accepts a nil cache.
func NewAccountResolver(repo accountRepository, cache accountCache, ttl time.Duration) *AccountResolver {
	return &AccountResolver{repo: repo, cache: cache, ttl: ttl}
}

// FindByPhoneNumberID returns nil, nil for unknown or inactive accounts.
func (r *AccountResolver) FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (*domain.Account, error) {
	return r.resolve(ctx, "phone_number_id", phoneNumberID,
		func(ctx context.Context) (*domain.Account, error) {
			return r.cache.GetAccountByPhoneNumberID(ctx, phoneNumberID)
		},
		func(ctx context.Context) (*domain.Account, error) {
			return r.repo.FindByPhoneNumberID(ctx, phoneNumberID)
		},
	)
}

// FindByID returns nil, nil for unknown or inactive accounts.
func (r *AccountResolver) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.resolve(ctx, "id", id,
		func(ctx context.Context) (*domain.Account, error) {
			return r.cache.GetAccountByID(ctx, id)
		},
		func(ctx context.Context) (*domain.Account, error) {
			return r.repo.FindByID(ctx, id)
		},
	)
}

func (r *AccountResolver) resolve(
	ctx context.Context,
	field, value string,
	fromCache, fromRepo func(context.Context) (*domain.Account, error),
) (*domain.Account, error) {
	if r.cache != nil {
		account, err := fromCache(ctx)
		if err != nil {
			logger.Warnf("Account cache lookup by %s %s failed: %v", field, value, err)
		} else if account != nil {
			return account, nil
		}
	}

	account, err := fromRepo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account by %s: %w", field, err)
	}
	if account == nil {
		return nil, nil
	}

	if r.cache != nil {
		if err := r.cache.CacheAccount(ctx, account, r.ttl); err != nil {
			logger.Warnf("Failed to cache account %s: %v", account.ID, err)
		}
	}

	return account, nil
}
