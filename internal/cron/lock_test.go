package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeLockStore struct {
	values map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: map[string]string{}}
}

func (f *fakeLockStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeLockStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeLockStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func TestLeaderLockExcludesSecondHolder(t *testing.T) {
	store := newFakeLockStore()
	first, err := NewLeaderLock(store, "hh:lock:cron", time.Hour)
	if err != nil {
		t.Fatalf("NewLeaderLock: %v", err)
	}
	second, err := NewLeaderLock(store, "hh:lock:cron", time.Hour)
	if err != nil {
		t.Fatalf("NewLeaderLock: %v", err)
	}

	ctx := context.Background()
	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if ok, err := second.Acquire(ctx); err != nil || ok {
		t.Fatalf("second acquire should lose: ok=%v err=%v", ok, err)
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, err := second.Acquire(ctx); err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}
}

func TestLeaderLockReleaseIgnoresForeignOwner(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewLeaderLock(store, "hh:lock:cron", time.Hour)
	if err != nil {
		t.Fatalf("NewLeaderLock: %v", err)
	}

	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("acquire should succeed")
	}
	// lock expired and someone else took it
	store.values["hh:lock:cron"] = "someone-else"

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["hh:lock:cron"] != "someone-else" {
		t.Fatal("release must not delete a foreign owner's lock")
	}
}
