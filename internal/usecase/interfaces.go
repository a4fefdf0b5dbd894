package usecase

//go:generate mockgen -source=interfaces.go -destination=gomocks/mock_interfaces.go -package=gomocks

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	// CreateIfNotExists inserts account unless its ID is taken and reports
	// whether a row was inserted.
	CreateIfNotExists(ctx context.Context, account *domain.Account) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalances(ctx context.Context, tx Transaction, id string, ledger, available decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for the transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	// FindByTransactionID returns domain.ErrTransactionNotFound when no record
	// of txType exists for transactionID.
	FindByTransactionID(ctx context.Context, tx Transaction, transactionID string, txType domain.TransactionType) (*domain.Transaction, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error)
}

// TransferRepository defines data access for ledger entries.
type TransferRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, transfers []*domain.Transfer) error
	GetByID(ctx context.Context, id string) (*domain.Transfer, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Transfer, error)
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Transfer, error)
	GetByTransactionIDForUpdate(ctx context.Context, tx Transaction, transactionID string) ([]*domain.Transfer, error)
	// MarkPresented flips unpresented entries of transactionID and returns
	// how many rows changed.
	MarkPresented(ctx context.Context, tx Transaction, transactionID string) (int64, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	UnbalancedTransactions(ctx context.Context) ([]domain.LedgerImbalance, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops key after a failed request so it can be retried.
	Release(ctx context.Context, key string) error
}
