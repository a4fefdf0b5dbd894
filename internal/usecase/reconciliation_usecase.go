package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/infrastructure/metrics"
)

// ReconciliationUseCase handles balance reconciliation operations
type ReconciliationUseCase struct {
	accountRepo  AccountRepository
	transferRepo TransferRepository
	ledgerRepo   LedgerRepository
	metrics      *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	ledgerRepo LedgerRepository,
	m *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		ledgerRepo:   ledgerRepo,
		metrics:      m,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID           string
	RecordedLedger      decimal.Decimal
	RecordedAvailable   decimal.Decimal
	CalculatedLedger    decimal.Decimal
	CalculatedAvailable decimal.Decimal
	LedgerDifference    decimal.Decimal
	AvailableDifference decimal.Decimal
	IsReconciled        bool
	LastChecked         time.Time
}

// ReconcileAccount compares the stored balances of an account with the
// balances folded from its entries.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	transfers, err := uc.transferRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return reconcile(account, domain.AggregateBalances(transfers)), nil
}

func reconcile(account *domain.Account, calculated domain.Balances) *ReconciliationResult {
	return &ReconciliationResult{
		AccountID:           account.ID,
		RecordedLedger:      account.LedgerBalance,
		RecordedAvailable:   account.AvailableBalance,
		CalculatedLedger:    calculated.Ledger,
		CalculatedAvailable: calculated.Available,
		LedgerDifference:    account.LedgerBalance.Sub(calculated.Ledger),
		AvailableDifference: account.AvailableBalance.Sub(calculated.Available),
		IsReconciled:        calculated.Matches(account),
		LastChecked:         time.Now().UTC(),
	}
}

// ReconcileAllAccounts reconciles all accounts in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	const pageSize = 1000

	var results []*ReconciliationResult
	for offset := 0; ; offset += pageSize {
		accounts, err := uc.accountRepo.List(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			transfers, err := uc.transferRepo.ListByAccount(ctx, account.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
			}
			results = append(results, reconcile(account, domain.AggregateBalances(transfers)))
		}

		if len(accounts) < pageSize {
			break
		}
	}

	return results, nil
}

// ConsistencyResult lists double-entry transactions whose entries do not sum
// to zero. Loads are external and never listed.
type ConsistencyResult struct {
	Consistent bool
	Unbalanced []domain.LedgerImbalance
	CheckedAt  time.Time
}

// CheckLedgerConsistency verifies double-entry bookkeeping consistency
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) (*ConsistencyResult, error) {
	unbalanced, err := uc.ledgerRepo.UnbalancedTransactions(ctx)
	if err != nil {
		return nil, err
	}

	uc.metrics.SetReconciliation(-1, len(unbalanced))

	return &ConsistencyResult{
		Consistent: len(unbalanced) == 0,
		Unbalanced: unbalanced,
		CheckedAt:  time.Now().UTC(),
	}, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts          int
	ReconciledAccounts     int
	Discrepancies          []*ReconciliationResult
	LedgerConsistent       bool
	UnbalancedTransactions []domain.LedgerImbalance
	CheckedAt              time.Time
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	consistency, err := uc.CheckLedgerConsistency(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts:          len(results),
		Discrepancies:          make([]*ReconciliationResult, 0),
		LedgerConsistent:       consistency.Consistent,
		UnbalancedTransactions: consistency.Unbalanced,
		CheckedAt:              time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	uc.metrics.SetReconciliation(len(report.Discrepancies), -1)

	return report, nil
}
