package usecase

import (
	"context"

	"github.com/iho/cardledger/internal/domain"
)

// TransferUseCase exposes ledger entries and the balances derived from them.
type TransferUseCase struct {
	accountRepo  AccountRepository
	transferRepo TransferRepository
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(accountRepo AccountRepository, transferRepo TransferRepository) *TransferUseCase {
	return &TransferUseCase{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
	}
}

// AccountTransfers is an account with its entries and the balances folded
// from them.
type AccountTransfers struct {
	Account   *domain.Account
	Balances  domain.Balances
	Transfers []*domain.Transfer
}

// GetTransfer retrieves a transfer by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// ListTransfersInput represents input for listing transfers.
type ListTransfersInput struct {
	Limit  int
	Offset int
}

// ListTransfers lists transfers across all accounts, newest first.
func (uc *TransferUseCase) ListTransfers(ctx context.Context, input ListTransfersInput) ([]*domain.Transfer, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.transferRepo.List(ctx, limit, offset)
}

// GetAccountTransfers returns every entry of an account and the balances
// they add up to.
func (uc *TransferUseCase) GetAccountTransfers(ctx context.Context, accountID string) (*AccountTransfers, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	transfers, err := uc.transferRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &AccountTransfers{
		Account:   account,
		Balances:  domain.AggregateBalances(transfers),
		Transfers: transfers,
	}, nil
}
