package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/usecase"
	"github.com/iho/cardledger/internal/usecase/gomocks"
	"github.com/iho/cardledger/internal/usecase/mocks"
)

func TestReconcileAccount(t *testing.T) {
	t.Parallel()

	l := mocks.NewLedger()
	l.Accounts.Seed(&domain.Account{
		ID:               "acc-1",
		LedgerBalance:    decimal.NewFromInt(150),
		AvailableBalance: decimal.NewFromInt(110),
	})
	l.Transfers.Seed(
		&domain.Transfer{ID: "t1", AccountID: "acc-1", TransactionID: "load", Amount: decimal.NewFromInt(150), Presented: true, Kind: domain.TransferKindExternal},
		&domain.Transfer{ID: "t2", AccountID: "acc-1", TransactionID: "auth", Amount: decimal.NewFromInt(-40), Kind: domain.TransferKindDoubleEntry},
	)

	uc := usecase.NewReconciliationUseCase(l.Accounts, l.Transfers, l.LedgerRepo, nil)

	result, err := uc.ReconcileAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.IsReconciled {
		t.Fatalf("expected account to reconcile, got %+v", result)
	}
	if !result.CalculatedAvailable.Equal(decimal.NewFromInt(110)) {
		t.Errorf("expected calculated available 110, got %s", result.CalculatedAvailable)
	}
}

func TestReconcileAccount_Discrepancy(t *testing.T) {
	t.Parallel()

	l := mocks.NewLedger()
	l.Accounts.Seed(&domain.Account{
		ID:               "acc-1",
		LedgerBalance:    decimal.NewFromInt(100),
		AvailableBalance: decimal.NewFromInt(100),
	})
	l.Transfers.Seed(&domain.Transfer{ID: "t1", AccountID: "acc-1", Amount: decimal.NewFromInt(90), Presented: true, Kind: domain.TransferKindExternal})

	uc := usecase.NewReconciliationUseCase(l.Accounts, l.Transfers, l.LedgerRepo, nil)

	result, err := uc.ReconcileAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.IsReconciled {
		t.Fatal("expected discrepancy")
	}
	if !result.LedgerDifference.Equal(decimal.NewFromInt(10)) || !result.AvailableDifference.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected differences of 10, got %s/%s", result.LedgerDifference, result.AvailableDifference)
	}
}

func TestReconcileAccount_NotFound(t *testing.T) {
	t.Parallel()

	l := mocks.NewLedger()
	uc := usecase.NewReconciliationUseCase(l.Accounts, l.Transfers, l.LedgerRepo, nil)

	if _, err := uc.ReconcileAccount(context.Background(), "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestCheckLedgerConsistency(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledgerRepo := gomocks.NewMockLedgerRepository(ctrl)
	ledgerRepo.EXPECT().UnbalancedTransactions(gomock.Any()).Return(nil, nil)
	ledgerRepo.EXPECT().UnbalancedTransactions(gomock.Any()).Return([]domain.LedgerImbalance{
		{TransactionID: "tx-9", Sum: decimal.RequireFromString("0.01")},
	}, nil)
	ledgerRepo.EXPECT().UnbalancedTransactions(gomock.Any()).Return(nil, errors.New("db down"))

	uc := usecase.NewReconciliationUseCase(
		gomocks.NewMockAccountRepository(ctrl),
		gomocks.NewMockTransferRepository(ctrl),
		ledgerRepo,
		nil,
	)

	result, err := uc.CheckLedgerConsistency(context.Background())
	if err != nil || !result.Consistent {
		t.Fatalf("expected consistent ledger, got %+v (%v)", result, err)
	}

	result, err = uc.CheckLedgerConsistency(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Consistent || len(result.Unbalanced) != 1 || result.Unbalanced[0].TransactionID != "tx-9" {
		t.Fatalf("expected tx-9 to be reported, got %+v", result)
	}

	if _, err := uc.CheckLedgerConsistency(context.Background()); err == nil {
		t.Fatal("expected repository error")
	}
}

func TestGenerateReconciliationReport(t *testing.T) {
	t.Parallel()

	l := mocks.NewLedger()
	l.Accounts.Seed(
		&domain.Account{ID: "a", LedgerBalance: decimal.NewFromInt(10), AvailableBalance: decimal.NewFromInt(10)},
		&domain.Account{ID: "b", LedgerBalance: decimal.NewFromInt(5), AvailableBalance: decimal.NewFromInt(5)},
	)
	l.Transfers.Seed(
		&domain.Transfer{ID: "t1", AccountID: "a", TransactionID: "l1", Amount: decimal.NewFromInt(10), Presented: true, Kind: domain.TransferKindExternal},
		&domain.Transfer{ID: "t2", AccountID: "b", TransactionID: "x", Amount: decimal.NewFromInt(7), Presented: true, Kind: domain.TransferKindDoubleEntry},
	)

	uc := usecase.NewReconciliationUseCase(l.Accounts, l.Transfers, l.LedgerRepo, nil)

	report, err := uc.GenerateReconciliationReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalAccounts != 2 || report.ReconciledAccounts != 1 {
		t.Errorf("expected 2 accounts with 1 reconciled, got %d/%d", report.TotalAccounts, report.ReconciledAccounts)
	}
	if len(report.Discrepancies) != 1 || report.Discrepancies[0].AccountID != "b" {
		t.Errorf("expected discrepancy on b, got %+v", report.Discrepancies)
	}
	if report.LedgerConsistent {
		t.Error("expected unbalanced transaction x to make the ledger inconsistent")
	}
}
