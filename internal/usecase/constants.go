package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds every engine database transaction.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is the default lifetime of an idempotency key.
	IdempotencyKeyTTL = 24 * time.Hour

	// AccountCacheTTL bounds how stale a cached account read can be.
	AccountCacheTTL = 30 * time.Second

	accountCachePrefix = "account:"
)

func accountCacheKey(id string) string {
	return accountCachePrefix + id
}
