package postgres

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewPoolWithConfigDefaults(t *testing.T) {
	ctx := context.Background()

	// using invalid URL should return error
	if _, err := NewPoolWithConfig(ctx, PoolConfig{DatabaseURL: "not-a-url"}); err == nil {
		t.Fatalf("expected error when parsing invalid URL")
	}
}

func TestNewPoolWithConfigPingFailure(t *testing.T) {
	ctx := context.Background()
	cfg := PoolConfig{
		DatabaseURL: "postgres://invalid:5432/db",
		MaxConns:    1,
		MinConns:    0,
	}

	_, err := NewPoolWithConfig(ctx, cfg)
	if err == nil {
		t.Fatalf("expected error when pool cannot connect")
	}
}

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestPingWithRetryRecovers(t *testing.T) {
	p := &flakyPinger{failures: 2}

	if err := pingWithRetry(context.Background(), p, 10*time.Second); err != nil {
		t.Fatalf("expected ping to recover, got %v", err)
	}
	if p.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", p.calls)
	}
}

func TestPingWithRetrySingleAttempt(t *testing.T) {
	p := &flakyPinger{failures: 1}

	if err := pingWithRetry(context.Background(), p, 0); err == nil {
		t.Fatal("expected error without retry budget")
	}
	if p.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", p.calls)
	}
}
