package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/infrastructure/metrics"
)

// TransactionUseCase is the ledger engine. It applies authorizations,
// presentments and loads atomically.
type TransactionUseCase struct {
	cfg             domain.LedgerConfig
	validator       *TransactionValidator
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	transferRepo    TransferRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	tokenGen        IDGenerator
	cache           Cache
	metrics         *metrics.Metrics
}

// NewTransactionUseCase creates a new TransactionUseCase. cache and m may be
// nil.
func NewTransactionUseCase(
	cfg domain.LedgerConfig,
	txManager TransactionManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	transferRepo TransferRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	tokenGen IDGenerator,
	cache Cache,
	m *metrics.Metrics,
) *TransactionUseCase {
	return &TransactionUseCase{
		cfg:             cfg,
		validator:       NewTransactionValidator(cfg),
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		transferRepo:    transferRepo,
		outboxRepo:      outboxRepo,
		idGen:           idGen,
		tokenGen:        tokenGen,
		cache:           cache,
		metrics:         m,
	}
}

// SubmitTransactionInput represents a card authorization or presentment.
type SubmitTransactionInput struct {
	TransactionID string
	SenderID      string
	ReceiverID    string
	Amount        decimal.Decimal
	Type          domain.TransactionType
}

// LoadFundsInput represents money entering the ledger for one account.
type LoadFundsInput struct {
	TransactionID string
	AccountID     string
	Amount        decimal.Decimal
}

// TransactionResult is a committed transaction with the entries it wrote or
// presented.
type TransactionResult struct {
	Transaction *domain.Transaction
	Transfers   []*domain.Transfer
	Fee         decimal.Decimal
}

// SubmitTransaction validates and applies an authorization or presentment.
// Nothing is written unless the whole transaction commits.
func (uc *TransactionUseCase) SubmitTransaction(ctx context.Context, input SubmitTransactionInput) (*TransactionResult, error) {
	started := time.Now()

	result, err := uc.submit(ctx, input)
	uc.observe(ctx, string(input.Type), started, result, err)

	return result, err
}

func (uc *TransactionUseCase) submit(ctx context.Context, input SubmitTransactionInput) (*TransactionResult, error) {
	if input.TransactionID == "" {
		if input.Type == domain.TransactionTypePresentment {
			return nil, domain.ErrAuthorizationNotFound
		}
		input.TransactionID = uc.tokenGen.Generate()
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, domain.NewProcessingError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Sorted locking keeps concurrent transactions over the same accounts
	// from deadlocking.
	accountIDs := uniqueSorted(input.SenderID, input.ReceiverID, uc.cfg.IssuerAccountID)

	locked, err := uc.accountRepo.GetByIDsForUpdate(txCtx, tx, accountIDs)
	if err != nil {
		return nil, domain.NewProcessingError("lock accounts", err)
	}

	accounts := buildAccountMap(locked)

	if accounts[input.SenderID] == nil || accounts[input.ReceiverID] == nil {
		return nil, domain.ErrAccountNotFound
	}

	if accounts[uc.cfg.IssuerAccountID] == nil {
		return nil, domain.NewProcessingError("lock issuer account", domain.ErrAccountNotFound)
	}

	validation := ValidationInput{
		Request:  input,
		Sender:   accounts[input.SenderID],
		Receiver: accounts[input.ReceiverID],
	}

	if input.Type == domain.TransactionTypePresentment {
		auth, err := uc.transactionRepo.FindByTransactionID(txCtx, tx, input.TransactionID, domain.TransactionTypeAuthorization)
		switch {
		case errors.Is(err, domain.ErrTransactionNotFound):
		case err != nil:
			return nil, domain.NewProcessingError("load authorization", err)
		default:
			validation.Authorization = auth

			entries, err := uc.transferRepo.GetByTransactionIDForUpdate(txCtx, tx, input.TransactionID)
			if err != nil {
				return nil, domain.NewProcessingError("lock authorization entries", err)
			}
			validation.Entries = entries
		}
	}

	if err := uc.validator.Validate(validation); err != nil {
		return nil, err
	}
	input.Amount = domain.RoundAmount(input.Amount)

	if err := uc.ensureUnused(txCtx, tx, input.TransactionID, input.Type); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		TransactionID: input.TransactionID,
		SenderID:      input.SenderID,
		ReceiverID:    input.ReceiverID,
		Amount:        input.Amount,
		Type:          input.Type,
		CreatedAt:     now,
	}

	if err := uc.createRecord(txCtx, tx, record); err != nil {
		return nil, err
	}

	result := &TransactionResult{Transaction: record, Fee: decimal.Zero}

	eventType := domain.EventTypeTransactionAuthorized
	if input.Type == domain.TransactionTypeAuthorization {
		result.Fee = domain.CalculateFee(input.Amount, uc.cfg.FeePercent)
		result.Transfers, err = uc.authorize(txCtx, tx, record, accounts, result.Fee, now)
	} else {
		eventType = domain.EventTypeTransactionPresented
		result.Transfers, err = uc.present(txCtx, tx, record, accounts, validation.Entries, now)
	}
	if err != nil {
		return nil, err
	}

	fee := ""
	if input.Type == domain.TransactionTypeAuthorization {
		fee = result.Fee.StringFixed(domain.AmountPlaces)
	}
	if err := uc.writeEvent(txCtx, tx, record, eventType, fee, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.NewProcessingError("commit", err)
	}

	uc.invalidate(ctx, accountIDs...)

	return result, nil
}

// authorize writes the unpresented legs and reserves the sender's share of
// them against its available balance. The other legs reach available
// balances on presentment.
func (uc *TransactionUseCase) authorize(
	ctx context.Context,
	tx Transaction,
	record *domain.Transaction,
	accounts map[string]*domain.Account,
	fee decimal.Decimal,
	now time.Time,
) ([]*domain.Transfer, error) {
	legs := domain.AuthorizationLegs(record.SenderID, record.ReceiverID, uc.cfg.IssuerAccountID, record.Amount, fee)

	transfers := make([]*domain.Transfer, 0, len(legs))
	for _, leg := range legs {
		transfers = append(transfers, &domain.Transfer{
			ID:            uc.idGen.Generate(),
			AccountID:     leg.AccountID,
			TransactionID: record.TransactionID,
			Amount:        leg.Amount,
			Kind:          domain.TransferKindDoubleEntry,
			Presented:     false,
			CreatedAt:     now,
		})
	}

	if err := uc.transferRepo.CreateBatch(ctx, tx, transfers); err != nil {
		return nil, domain.NewProcessingError("insert transfers", err)
	}

	sender := accounts[record.SenderID]
	available := sender.ApplyAvailable(transfers[0].Amount)

	if err := uc.accountRepo.UpdateBalances(ctx, tx, sender.ID, sender.LedgerBalance, available, now); err != nil {
		return nil, domain.NewProcessingError("update sender balance", err)
	}

	sender.AvailableBalance = available
	sender.UpdatedAt = now

	return transfers, nil
}

// present settles the authorization entries into ledger balances. Accounts
// other than the sender also gain their entry on the available balance; the
// sender's was reserved at authorization.
func (uc *TransactionUseCase) present(
	ctx context.Context,
	tx Transaction,
	record *domain.Transaction,
	accounts map[string]*domain.Account,
	entries []*domain.Transfer,
	now time.Time,
) ([]*domain.Transfer, error) {
	for _, entry := range entries {
		account := accounts[entry.AccountID]
		if account == nil {
			return nil, domain.NewProcessingError("present entry", domain.ErrAccountNotFound)
		}

		ledger := account.ApplyLedger(entry.Amount)
		available := account.AvailableBalance
		if account.ID != record.SenderID {
			available = account.ApplyAvailable(entry.Amount)
		}

		if err := uc.accountRepo.UpdateBalances(ctx, tx, account.ID, ledger, available, now); err != nil {
			return nil, domain.NewProcessingError("update balances", err)
		}

		account.LedgerBalance = ledger
		account.AvailableBalance = available
		account.UpdatedAt = now
	}

	n, err := uc.transferRepo.MarkPresented(ctx, tx, record.TransactionID)
	if err != nil {
		return nil, domain.NewProcessingError("mark presented", err)
	}
	if n != int64(len(entries)) {
		return nil, domain.ErrAlreadyPresented
	}

	for _, entry := range entries {
		entry.Presented = true
	}

	return entries, nil
}

// LoadFunds credits amount to an account from outside the ledger. The entry
// is presented immediately and counts towards both balances.
func (uc *TransactionUseCase) LoadFunds(ctx context.Context, input LoadFundsInput) (*TransactionResult, error) {
	started := time.Now()

	result, err := uc.load(ctx, input)
	uc.observe(ctx, string(domain.TransactionTypeLoad), started, result, err)

	return result, err
}

func (uc *TransactionUseCase) load(ctx context.Context, input LoadFundsInput) (*TransactionResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	amount := domain.RoundAmount(input.Amount)

	if input.TransactionID == "" {
		input.TransactionID = uc.tokenGen.Generate()
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, domain.NewProcessingError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.AccountID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, domain.NewProcessingError("lock account", err)
	}

	if err := uc.ensureUnused(txCtx, tx, input.TransactionID, domain.TransactionTypeLoad); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		TransactionID: input.TransactionID,
		SenderID:      account.ID,
		ReceiverID:    account.ID,
		Amount:        amount,
		Type:          domain.TransactionTypeLoad,
		CreatedAt:     now,
	}

	if err := uc.createRecord(txCtx, tx, record); err != nil {
		return nil, err
	}

	transfer := &domain.Transfer{
		ID:            uc.idGen.Generate(),
		AccountID:     account.ID,
		TransactionID: record.TransactionID,
		Amount:        amount,
		Kind:          domain.TransferKindExternal,
		Presented:     true,
		CreatedAt:     now,
	}

	if err := uc.transferRepo.CreateBatch(txCtx, tx, []*domain.Transfer{transfer}); err != nil {
		return nil, domain.NewProcessingError("insert transfer", err)
	}

	ledger := account.ApplyLedger(amount)
	available := account.ApplyAvailable(amount)

	if err := uc.accountRepo.UpdateBalances(txCtx, tx, account.ID, ledger, available, now); err != nil {
		return nil, domain.NewProcessingError("update balances", err)
	}

	if err := uc.writeEvent(txCtx, tx, record, domain.EventTypeFundsLoaded, "", now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.NewProcessingError("commit", err)
	}

	uc.invalidate(ctx, account.ID)

	return &TransactionResult{
		Transaction: record,
		Transfers:   []*domain.Transfer{transfer},
		Fee:         decimal.Zero,
	}, nil
}

// GetTransaction retrieves a transaction log record by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transactionRepo.GetByID(ctx, id)
}

// ListTransactions lists transaction log records, newest first.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.transactionRepo.List(ctx, limit, offset)
}

// ensureUnused rejects a transaction ID that is already taken. Authorizations
// and loads need a fresh ID; a presentment only conflicts with an earlier
// presentment of the same ID.
func (uc *TransactionUseCase) ensureUnused(ctx context.Context, tx Transaction, transactionID string, txType domain.TransactionType) error {
	taken := []domain.TransactionType{domain.TransactionTypePresentment}
	if txType != domain.TransactionTypePresentment {
		taken = []domain.TransactionType{domain.TransactionTypeAuthorization, domain.TransactionTypeLoad}
	}

	for _, t := range taken {
		_, err := uc.transactionRepo.FindByTransactionID(ctx, tx, transactionID, t)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s already used by a %s", domain.ErrDuplicateTransaction, transactionID, t)
		case errors.Is(err, domain.ErrTransactionNotFound):
		default:
			return domain.NewProcessingError("check transaction id", err)
		}
	}

	return nil
}

func (uc *TransactionUseCase) createRecord(ctx context.Context, tx Transaction, record *domain.Transaction) error {
	err := uc.transactionRepo.Create(ctx, tx, record)
	if errors.Is(err, domain.ErrDuplicateTransaction) {
		return err
	}
	if err != nil {
		return domain.NewProcessingError("insert transaction", err)
	}
	return nil
}

func (uc *TransactionUseCase) writeEvent(
	ctx context.Context,
	tx Transaction,
	record *domain.Transaction,
	eventType, fee string,
	now time.Time,
) error {
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   record.TransactionID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     eventType,
		Payload:       domain.TransactionEventPayload(record, fee),
		CreatedAt:     now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return domain.NewProcessingError("insert outbox event", err)
	}
	return nil
}

func (uc *TransactionUseCase) invalidate(ctx context.Context, accountIDs ...string) {
	if uc.cache == nil {
		return
	}

	keys := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		keys = append(keys, accountCacheKey(id))
	}

	if err := uc.cache.Delete(ctx, keys...); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Strs("accounts", accountIDs).Msg("failed to invalidate account cache")
	}
}

func (uc *TransactionUseCase) observe(ctx context.Context, txType string, started time.Time, result *TransactionResult, err error) {
	if err != nil {
		kind := domain.KindOf(err)
		uc.metrics.ObserveTransaction(txType, string(kind), started)

		level := zerolog.InfoLevel
		if kind == domain.KindProcessing {
			level = zerolog.ErrorLevel
		}
		zerolog.Ctx(ctx).WithLevel(level).Err(err).
			Str("type", txType).
			Str("kind", string(kind)).
			Msg("transaction not applied")
		return
	}

	uc.metrics.ObserveTransaction(txType, "", started)
	uc.metrics.ObserveCommitted(txType, result.Transaction.Amount, result.Fee)
}

func uniqueSorted(ids ...string) []string {
	seen := make(map[string]bool, len(ids))

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}

	sort.Strings(out)

	return out
}

func buildAccountMap(accounts []*domain.Account) map[string]*domain.Account {
	m := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}

	return m
}
