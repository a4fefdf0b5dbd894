package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/usecase"
)

// ErrUniqueViolation mirrors the store's (account_id, transaction_id)
// uniqueness on transfers.
var ErrUniqueViolation = errors.New("duplicate transfer")

// Snapshotter is implemented by fakes whose state a MockTransaction restores
// when it is rolled back without a commit.
type Snapshotter interface {
	Snapshot() (restore func())
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	CreateTxFunc          func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalancesFunc    func(ctx context.Context, tx usecase.Transaction, id string, ledger, available decimal.Decimal, updatedAt time.Time) error
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed stores accounts as they are, bypassing hooks.
func (m *MockAccountRepository) Seed(accounts ...*domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		m.accounts[a.ID] = cloneAccount(a)
	}
}

func (m *MockAccountRepository) Snapshot() func() {
	m.mu.RLock()
	saved := make(map[string]*domain.Account, len(m.accounts))
	for id, a := range m.accounts {
		saved[id] = cloneAccount(a)
	}
	m.mu.RUnlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.accounts = saved
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	return m.Create(ctx, account)
}

func (m *MockAccountRepository) CreateIfNotExists(ctx context.Context, account *domain.Account) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; ok {
		return false, nil
	}
	m.accounts[account.ID] = cloneAccount(account)
	return true, nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return cloneAccount(acc), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, cloneAccount(acc))
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, id string, ledger, available decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalancesFunc != nil {
		return m.UpdateBalancesFunc(ctx, tx, id, ledger, available, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.LedgerBalance = ledger
	acc.AvailableBalance = available
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var accounts []*domain.Account
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(accounts) >= limit {
			break
		}
		accounts = append(accounts, cloneAccount(m.accounts[id]))
	}
	return accounts, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions []*domain.Transaction

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error
	FindByTransactionIDFunc func(ctx context.Context, tx usecase.Transaction, transactionID string, txType domain.TransactionType) (*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) Snapshot() func() {
	m.mu.RLock()
	saved := append([]*domain.Transaction(nil), m.transactions...)
	m.mu.RUnlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.transactions = saved
	}
}

// All returns every stored transaction in insertion order.
func (m *MockTransactionRepository) All() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		c := *t
		out = append(out, &c)
	}
	return out
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, transaction)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	newIsPresentment := transaction.Type == domain.TransactionTypePresentment
	for _, t := range m.transactions {
		if t.TransactionID == transaction.TransactionID && (t.Type == domain.TransactionTypePresentment) == newIsPresentment {
			return domain.ErrDuplicateTransaction
		}
	}
	c := *transaction
	m.transactions = append(m.transactions, &c)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.transactions {
		if t.ID == id {
			c := *t
			return &c, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) FindByTransactionID(ctx context.Context, tx usecase.Transaction, transactionID string, txType domain.TransactionType) (*domain.Transaction, error) {
	if m.FindByTransactionIDFunc != nil {
		return m.FindByTransactionIDFunc(ctx, tx, transactionID, txType)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.transactions {
		if t.TransactionID == transactionID && t.Type == txType {
			c := *t
			return &c, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for i := len(m.transactions) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		c := *m.transactions[i]
		out = append(out, &c)
	}
	return out, nil
}

// MockTransferRepository is a mock implementation of TransferRepository.
type MockTransferRepository struct {
	mu        sync.RWMutex
	transfers []*domain.Transfer

	CreateBatchFunc   func(ctx context.Context, tx usecase.Transaction, transfers []*domain.Transfer) error
	ListByAccountFunc func(ctx context.Context, accountID string) ([]*domain.Transfer, error)
	MarkPresentedFunc func(ctx context.Context, tx usecase.Transaction, transactionID string) (int64, error)
}

func NewMockTransferRepository() *MockTransferRepository {
	return &MockTransferRepository{}
}

// Seed stores transfers as they are, bypassing hooks.
func (m *MockTransferRepository) Seed(transfers ...*domain.Transfer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range transfers {
		c := *t
		m.transfers = append(m.transfers, &c)
	}
}

func (m *MockTransferRepository) Snapshot() func() {
	m.mu.RLock()
	saved := make([]*domain.Transfer, 0, len(m.transfers))
	for _, t := range m.transfers {
		c := *t
		saved = append(saved, &c)
	}
	m.mu.RUnlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.transfers = saved
	}
}

// All returns every stored transfer in insertion order.
func (m *MockTransferRepository) All() []*domain.Transfer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneTransfers(m.transfers, func(*domain.Transfer) bool { return true })
}

func (m *MockTransferRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, transfers []*domain.Transfer) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, transfers)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	type pair struct{ account, transaction string }
	seen := make(map[pair]bool, len(m.transfers)+len(transfers))
	for _, t := range m.transfers {
		seen[pair{t.AccountID, t.TransactionID}] = true
	}
	for _, t := range transfers {
		key := pair{t.AccountID, t.TransactionID}
		if seen[key] {
			return fmt.Errorf("%w: transfer for account %s and transaction %s", ErrUniqueViolation, t.AccountID, t.TransactionID)
		}
		seen[key] = true
	}

	for _, t := range transfers {
		c := *t
		m.transfers = append(m.transfers, &c)
	}
	return nil
}

func (m *MockTransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.transfers {
		if t.ID == id {
			c := *t
			return &c, nil
		}
	}
	return nil, domain.ErrTransferNotFound
}

func (m *MockTransferRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transfer
	for i := len(m.transfers) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		c := *m.transfers[i]
		out = append(out, &c)
	}
	return out, nil
}

func (m *MockTransferRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Transfer, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneTransfers(m.transfers, func(t *domain.Transfer) bool { return t.AccountID == accountID }), nil
}

func (m *MockTransferRepository) GetByTransactionIDForUpdate(ctx context.Context, tx usecase.Transaction, transactionID string) ([]*domain.Transfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneTransfers(m.transfers, func(t *domain.Transfer) bool {
		return t.TransactionID == transactionID && t.Kind == domain.TransferKindDoubleEntry
	}), nil
}

func (m *MockTransferRepository) MarkPresented(ctx context.Context, tx usecase.Transaction, transactionID string) (int64, error) {
	if m.MarkPresentedFunc != nil {
		return m.MarkPresentedFunc(ctx, tx, transactionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.transfers {
		if t.TransactionID == transactionID && t.Kind == domain.TransferKindDoubleEntry && !t.Presented {
			t.Presented = true
			n++
		}
	}
	return n, nil
}

// MockLedgerRepository computes imbalances from a MockTransferRepository.
type MockLedgerRepository struct {
	transfers *MockTransferRepository

	UnbalancedTransactionsFunc func(ctx context.Context) ([]domain.LedgerImbalance, error)
}

func NewMockLedgerRepository(transfers *MockTransferRepository) *MockLedgerRepository {
	return &MockLedgerRepository{transfers: transfers}
}

func (m *MockLedgerRepository) UnbalancedTransactions(ctx context.Context) ([]domain.LedgerImbalance, error) {
	if m.UnbalancedTransactionsFunc != nil {
		return m.UnbalancedTransactionsFunc(ctx)
	}

	sums := make(map[string]decimal.Decimal)
	var order []string
	for _, t := range m.transfers.All() {
		if t.Kind != domain.TransferKindDoubleEntry {
			continue
		}
		if _, ok := sums[t.TransactionID]; !ok {
			order = append(order, t.TransactionID)
		}
		sums[t.TransactionID] = sums[t.TransactionID].Add(t.Amount)
	}

	var out []domain.LedgerImbalance
	for _, id := range order {
		if !sums[id].IsZero() {
			out = append(out, domain.LedgerImbalance{TransactionID: id, Sum: sums[id]})
		}
	}
	return out, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	MarkPublishedFunc func(ctx context.Context, id string, publishedAt time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Snapshot() func() {
	m.mu.RLock()
	saved := append([]*domain.OutboxEvent(nil), m.events...)
	m.mu.RUnlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.events = saved
	}
}

// Events returns every stored event in insertion order.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *event
	m.events = append(m.events, &c)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if len(out) >= limit {
			break
		}
		if !e.Published {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return fmt.Errorf("outbox event %s not found", id)
}

// MockTransactionManager is a mock implementation of TransactionManager.
// Participants are restored when a transaction rolls back uncommitted.
type MockTransactionManager struct {
	BeginFunc    func(ctx context.Context) (usecase.Transaction, error)
	CommitFunc   func(ctx context.Context) error
	Participants []Snapshotter

	mu        sync.Mutex
	commits   int
	rollbacks int
}

func NewMockTransactionManager(participants ...Snapshotter) *MockTransactionManager {
	return &MockTransactionManager{Participants: participants}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}

	restores := make([]func(), 0, len(m.Participants))
	for _, p := range m.Participants {
		restores = append(restores, p.Snapshot())
	}

	return &MockTransaction{
		CommitFunc: m.CommitFunc,
		restores:   restores,
		manager:    m,
	}, nil
}

// Commits returns how many transactions committed.
func (m *MockTransactionManager) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// Rollbacks returns how many transactions were rolled back uncommitted.
func (m *MockTransactionManager) Rollbacks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rollbacks
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	restores  []func()
	manager   *MockTransactionManager
	committed bool
	done      bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.committed = true
	m.done = true
	if m.manager != nil {
		m.manager.mu.Lock()
		m.manager.commits++
		m.manager.mu.Unlock()
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if m.done {
		return nil
	}
	m.done = true
	for i := len(m.restores) - 1; i >= 0; i-- {
		m.restores[i]()
	}
	if m.manager != nil {
		m.manager.mu.Lock()
		m.manager.rollbacks++
		m.manager.mu.Unlock()
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	Prefix       string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{Prefix: "mock-id-"}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("%s%d", m.Prefix, m.counter)
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	DeleteFunc func(ctx context.Context, keys ...string) error
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

// Has reports whether key is cached.
func (m *MockCache) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, usecase.ErrCacheMiss
	}
	return v, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, keys...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Ledger bundles fakes that share one transaction manager, so a rolled back
// transaction leaves all of them untouched.
type Ledger struct {
	Accounts     *MockAccountRepository
	Transactions *MockTransactionRepository
	Transfers    *MockTransferRepository
	Outbox       *MockOutboxRepository
	LedgerRepo   *MockLedgerRepository
	TxManager    *MockTransactionManager
	IDGen        *MockIDGenerator
	TokenGen     *MockIDGenerator
}

func NewLedger() *Ledger {
	accounts := NewMockAccountRepository()
	transactions := NewMockTransactionRepository()
	transfers := NewMockTransferRepository()
	outbox := NewMockOutboxRepository()

	tokens := NewMockIDGenerator()
	tokens.Prefix = "token-"

	return &Ledger{
		Accounts:     accounts,
		Transactions: transactions,
		Transfers:    transfers,
		Outbox:       outbox,
		LedgerRepo:   NewMockLedgerRepository(transfers),
		TxManager:    NewMockTransactionManager(accounts, transactions, transfers, outbox),
		IDGen:        NewMockIDGenerator(),
		TokenGen:     tokens,
	}
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func cloneTransfers(transfers []*domain.Transfer, keep func(*domain.Transfer) bool) []*domain.Transfer {
	var out []*domain.Transfer
	for _, t := range transfers {
		if keep(t) {
			c := *t
			out = append(out, &c)
		}
	}
	return out
}
