package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	cache       Cache
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. cache and m may be nil.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	m *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		cache:       cache,
		metrics:     m,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name string
}

// CreateAccount creates a new account with zero balances.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:               uc.idGen.Generate(),
		Name:             strings.TrimSpace(input.Name),
		LedgerBalance:    decimal.Zero,
		AvailableBalance: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, domain.NewProcessingError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.accountRepo.CreateTx(txCtx, tx, account); err != nil {
		return nil, domain.NewProcessingError("insert account", err)
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountCreated,
		Payload: map[string]any{
			"account_id": account.ID,
			"name":       account.Name,
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, domain.NewProcessingError("insert outbox event", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.NewProcessingError("commit", err)
	}

	uc.metrics.IncAccountsCreated()

	return account, nil
}

// EnsureAccount creates the account with a fixed ID unless it already exists
// and returns the stored account. Used to bootstrap the issuer account.
func (uc *AccountUseCase) EnsureAccount(ctx context.Context, id, name string) (*domain.Account, error) {
	if err := domain.ValidateAccountName(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	created, err := uc.accountRepo.CreateIfNotExists(ctx, &domain.Account{
		ID:               id,
		Name:             strings.TrimSpace(name),
		LedgerBalance:    decimal.Zero,
		AvailableBalance: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return nil, domain.NewProcessingError("ensure account", err)
	}

	if created {
		uc.metrics.IncAccountsCreated()
		zerolog.Ctx(ctx).Info().Str("account_id", id).Msg("account created")
	}

	return uc.accountRepo.GetByID(ctx, id)
}

// GetAccount retrieves an account by ID, reading through the cache.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	if account, ok := uc.cached(ctx, id); ok {
		return account, nil
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.store(ctx, account)

	return account, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}

func (uc *AccountUseCase) cached(ctx context.Context, id string) (*domain.Account, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, accountCacheKey(id))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("account_id", id).Msg("account cache read failed")
		}
		uc.metrics.ObserveCache(false)
		return nil, false
	}

	var account domain.Account
	if err := json.Unmarshal(data, &account); err != nil {
		uc.metrics.ObserveCache(false)
		return nil, false
	}

	uc.metrics.ObserveCache(true)
	return &account, true
}

func (uc *AccountUseCase) store(ctx context.Context, account *domain.Account) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(account)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, accountCacheKey(account.ID), data, AccountCacheTTL); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("account_id", account.ID).Msg("account cache write failed")
	}
}
