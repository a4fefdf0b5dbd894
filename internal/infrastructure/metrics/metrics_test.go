package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.TransactionsTotal == nil || m.HTTPRequests == nil || m.EventsPublished == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.IncAccountsCreated()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestObserveTransaction(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTransaction("authorization", "", time.Now())
	m.ObserveTransaction("authorization", "insufficient_funds", time.Now())
	m.ObserveTransaction("presentment", "processing_error", time.Now())

	if got := testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("authorization", "committed")); got != 1 {
		t.Errorf("committed authorizations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("authorization", "rejected")); got != 1 {
		t.Errorf("rejected authorizations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("presentment", "failed")); got != 1 {
		t.Errorf("failed presentments = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TransactionErrors.WithLabelValues("insufficient_funds")); got != 1 {
		t.Errorf("insufficient funds errors = %v, want 1", got)
	}
}

func TestObserveCommitted(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCommitted("authorization", decimal.RequireFromString("40.00"), decimal.RequireFromString("0.40"))
	m.ObserveCommitted("load", decimal.RequireFromString("10.00"), decimal.Zero)

	if got := testutil.ToFloat64(m.FeesCollected); got != 0.4 {
		t.Errorf("fees collected = %v, want 0.4", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	m.ObserveTransaction("load", "", time.Now())
	m.ObserveCommitted("load", decimal.NewFromInt(1), decimal.Zero)
	m.IncAccountsCreated()
	m.ObserveCache(true)
	m.SetReconciliation(1, 1)
	m.ObserveHTTP("GET", "/health", 200, time.Now())
	m.ObservePublish("funds.loaded", nil)
	m.IncAuthFailure("missing")
	m.IncRateLimited()
}

func TestObserveHTTPAndPublish(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveHTTP("POST", "/api/v1/transactions", 201, time.Now())
	m.ObservePublish("transaction.authorized", nil)
	m.ObservePublish("transaction.authorized", errors.New("nats down"))

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/api/v1/transactions", "201")); got != 1 {
		t.Errorf("http requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.EventsPublished.WithLabelValues("transaction.authorized")); got != 1 {
		t.Errorf("events published = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.EventPublishErrors); got != 1 {
		t.Errorf("publish errors = %v, want 1", got)
	}
}
