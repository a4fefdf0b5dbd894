package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsTotal   *prometheus.CounterVec
	TransactionErrors   *prometheus.CounterVec
	TransactionDuration *prometheus.HistogramVec
	TransactionAmount   *prometheus.HistogramVec
	FeesCollected       prometheus.Counter

	// Account metrics
	AccountsCreated prometheus.Counter
	AccountCache    *prometheus.CounterVec

	// Reconciliation metrics
	ReconciliationDiscrepancies prometheus.Gauge
	UnbalancedTransactions      prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Outbox metrics
	EventsPublished    *prometheus.CounterVec
	EventPublishErrors prometheus.Counter

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_transactions_total",
				Help: "Total transactions processed by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		TransactionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_transaction_errors_total",
				Help: "Total rejected or failed transactions by error kind",
			},
			[]string{"kind"},
		),
		TransactionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardledger_transaction_duration_seconds",
				Help:    "Duration of transaction processing",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		TransactionAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardledger_transaction_amount",
				Help:    "Committed transaction amounts",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),
		FeesCollected: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_fees_collected_total",
			Help: "Sum of fees credited to the issuer account",
		}),

		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_account_cache_total",
				Help: "Account cache lookups by result",
			},
			[]string{"result"},
		),

		ReconciliationDiscrepancies: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cardledger_reconciliation_discrepancies",
			Help: "Accounts whose stored balances differ from their entries at the last full reconciliation",
		}),
		UnbalancedTransactions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cardledger_unbalanced_transactions",
			Help: "Double-entry transactions not summing to zero at the last consistency check",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_events_published_total",
				Help: "Outbox events published by event type",
			},
			[]string{"event_type"},
		),
		EventPublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_event_publish_errors_total",
			Help: "Outbox events that failed to publish",
		}),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}

// ObserveTransaction records the outcome of one engine call. kind is empty
// on success. Safe on a nil receiver.
func (m *Metrics) ObserveTransaction(txType, kind string, started time.Time) {
	if m == nil {
		return
	}

	outcome := "committed"
	if kind != "" {
		outcome = "rejected"
		if kind == "processing_error" {
			outcome = "failed"
		}
		m.TransactionErrors.WithLabelValues(kind).Inc()
	}

	m.TransactionsTotal.WithLabelValues(txType, outcome).Inc()
	m.TransactionDuration.WithLabelValues(txType).Observe(time.Since(started).Seconds())
}

// ObserveCommitted records amount and fee of a committed transaction. Safe on
// a nil receiver.
func (m *Metrics) ObserveCommitted(txType string, amount, fee decimal.Decimal) {
	if m == nil {
		return
	}

	m.TransactionAmount.WithLabelValues(txType).Observe(amount.InexactFloat64())
	if fee.IsPositive() {
		m.FeesCollected.Add(fee.InexactFloat64())
	}
}

// IncAccountsCreated is safe on a nil receiver.
func (m *Metrics) IncAccountsCreated() {
	if m == nil {
		return
	}
	m.AccountsCreated.Inc()
}

// ObserveCache counts a cache hit or miss. Safe on a nil receiver.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.AccountCache.WithLabelValues(result).Inc()
}

// SetReconciliation publishes the outcome of the last full reconciliation
// and consistency check. Negative values leave a gauge untouched. Safe on a
// nil receiver.
func (m *Metrics) SetReconciliation(discrepancies, unbalanced int) {
	if m == nil {
		return
	}
	if discrepancies >= 0 {
		m.ReconciliationDiscrepancies.Set(float64(discrepancies))
	}
	if unbalanced >= 0 {
		m.UnbalancedTransactions.Set(float64(unbalanced))
	}
}

// ObserveHTTP records one served request. Safe on a nil receiver.
func (m *Metrics) ObserveHTTP(method, path string, status int, started time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(time.Since(started).Seconds())
}

// ObservePublish counts a published outbox event or a failed attempt. Safe
// on a nil receiver.
func (m *Metrics) ObservePublish(eventType string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.EventPublishErrors.Inc()
		return
	}
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// IncAuthFailure is safe on a nil receiver.
func (m *Metrics) IncAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailures.WithLabelValues(reason).Inc()
}

// IncRateLimited is safe on a nil receiver.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.RateLimitHits.Inc()
}
