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
)

func TestTransferUseCase_GetAccountTransfers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountRepo := gomocks.NewMockAccountRepository(ctrl)
	transferRepo := gomocks.NewMockTransferRepository(ctrl)

	accountRepo.EXPECT().GetByID(gomock.Any(), "acc-1").Return(&domain.Account{
		ID:               "acc-1",
		LedgerBalance:    decimal.RequireFromString("100.00"),
		AvailableBalance: decimal.RequireFromString("60.00"),
	}, nil)
	transferRepo.EXPECT().ListByAccount(gomock.Any(), "acc-1").Return([]*domain.Transfer{
		{ID: "t1", AccountID: "acc-1", Amount: decimal.RequireFromString("100.00"), Presented: true, Kind: domain.TransferKindExternal},
		{ID: "t2", AccountID: "acc-1", Amount: decimal.RequireFromString("-40.00"), Kind: domain.TransferKindDoubleEntry},
	}, nil)

	uc := usecase.NewTransferUseCase(accountRepo, transferRepo)

	result, err := uc.GetAccountTransfers(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Transfers) != 2 {
		t.Errorf("expected 2 transfers, got %d", len(result.Transfers))
	}
	if !result.Balances.Ledger.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected ledger 100, got %s", result.Balances.Ledger)
	}
	if !result.Balances.Available.Equal(decimal.NewFromInt(60)) {
		t.Errorf("expected available 60, got %s", result.Balances.Available)
	}
	if !result.Balances.Matches(result.Account) {
		t.Error("expected derived balances to match the account")
	}
}

func TestTransferUseCase_GetAccountTransfersUnknownAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountRepo := gomocks.NewMockAccountRepository(ctrl)
	transferRepo := gomocks.NewMockTransferRepository(ctrl)

	accountRepo.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, domain.ErrAccountNotFound)

	uc := usecase.NewTransferUseCase(accountRepo, transferRepo)

	if _, err := uc.GetAccountTransfers(context.Background(), "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestTransferUseCase_GetTransfer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transferRepo := gomocks.NewMockTransferRepository(ctrl)
	transferRepo.EXPECT().GetByID(gomock.Any(), "t1").Return(&domain.Transfer{ID: "t1"}, nil)
	transferRepo.EXPECT().GetByID(gomock.Any(), "t2").Return(nil, domain.ErrTransferNotFound)

	uc := usecase.NewTransferUseCase(gomocks.NewMockAccountRepository(ctrl), transferRepo)

	transfer, err := uc.GetTransfer(context.Background(), "t1")
	if err != nil || transfer.ID != "t1" {
		t.Fatalf("expected transfer t1, got %+v (%v)", transfer, err)
	}

	if _, err := uc.GetTransfer(context.Background(), "t2"); !errors.Is(err, domain.ErrTransferNotFound) {
		t.Fatalf("expected ErrTransferNotFound, got %v", err)
	}
}

func TestTransferUseCase_ListTransfersClampsPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transferRepo := gomocks.NewMockTransferRepository(ctrl)
	transferRepo.EXPECT().List(gomock.Any(), 1000, 0).Return([]*domain.Transfer{}, nil)
	transferRepo.EXPECT().List(gomock.Any(), 50, 20).Return([]*domain.Transfer{{ID: "t1"}}, nil)

	uc := usecase.NewTransferUseCase(gomocks.NewMockAccountRepository(ctrl), transferRepo)

	if _, err := uc.ListTransfers(context.Background(), usecase.ListTransfersInput{Limit: 5000, Offset: -3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	transfers, err := uc.ListTransfers(context.Background(), usecase.ListTransfersInput{Offset: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(transfers) != 1 {
		t.Errorf("expected 1 transfer, got %d", len(transfers))
	}
}
