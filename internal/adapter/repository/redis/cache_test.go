package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/cardledger/internal/usecase"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "account:1", []byte(`{"ID":"1"}`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "account:1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(val) != `{"ID":"1"}` {
		t.Fatalf("unexpected value %s", val)
	}

	if !mr.Exists("cache:account:1") {
		t.Fatal("expected key to be stored under the cache prefix")
	}
}

func TestCacheMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	if _, err := NewCache(client).Get(context.Background(), "absent"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestCacheExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, err := cache.Get(ctx, "k"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected expired key to miss, got %v", err)
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	for _, k := range []string{"a", "b"} {
		if err := cache.Set(ctx, k, []byte("x"), time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	if err := cache.Delete(ctx, "a", "b", "never-set"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	for _, k := range []string{"a", "b"} {
		if _, err := cache.Get(ctx, k); !errors.Is(err, usecase.ErrCacheMiss) {
			t.Fatalf("expected %s to be deleted, got %v", k, err)
		}
	}

	if err := cache.Delete(ctx); err != nil {
		t.Fatalf("empty delete failed: %v", err)
	}
}

func TestCacheUnavailable(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	mr.Close()

	_, err := NewCache(client).Get(context.Background(), "k")
	if err == nil || errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected a connection error, got %v", err)
	}
}
