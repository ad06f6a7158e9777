package service

import (
	"context"
	"testing"
	"time"
)

func TestAccountResolver_CachesRepositoryHits(t *testing.T) {
	repo := newFakeAccounts(testAccount())
	cache := newFakeCache()
	r := NewAccountResolver(repo, cache, time.Minute)

	for i := 0; i < 3; i++ {
		account, err := r.FindByPhoneNumberID(context.Background(), "pn-1")
		if err != nil || account == nil || account.ID != "acc-1" {
			t.Fatalf("lookup %d: got %v, %v", i+1, account, err)
		}
	}

	if repo.calls != 1 {
		t.Errorf("expected one repository call, got %d", repo.calls)
	}

	account, err := r.FindByID(context.Background(), "acc-1")
	if err != nil || account == nil {
		t.Fatalf("FindByID() = %v, %v", account, err)
	}
	if repo.calls != 1 {
		t.Errorf("expected id lookup to be served from cache, got %d repository calls", repo.calls)
	}
}

func TestAccountResolver_DoesNotCacheMisses(t *testing.T) {
	repo := newFakeAccounts()
	cache := newFakeCache()
	r := NewAccountResolver(repo, cache, time.Minute)

	account, err := r.FindByPhoneNumberID(context.Background(), "pn-404")
	if err != nil || account != nil {
		t.Fatalf("expected nil, nil; got %v, %v", account, err)
	}
	if cache.sets != 0 {
		t.Errorf("expected miss not to be cached")
	}
}

func TestAccountResolver_CacheFailureFallsBack(t *testing.T) {
	repo := newFakeAccounts(testAccount())
	cache := newFakeCache()
	cache.err = errBoom
	r := NewAccountResolver(repo, cache, time.Minute)

	account, err := r.FindByPhoneNumberID(context.Background(), "pn-1")
	if err != nil || account == nil {
		t.Fatalf("expected repository fallback, got %v, %v", account, err)
	}
}

func TestAccountResolver_NilCache(t *testing.T) {
	r := NewAccountResolver(newFakeAccounts(testAccount()), nil, time.Minute)

	account, err := r.FindByID(context.Background(), "acc-1")
	if err != nil || account == nil {
		t.Fatalf("expected account, got %v, %v", account, err)
	}
}
