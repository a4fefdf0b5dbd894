package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name string `json:"name"`
}

// ToUseCaseInput converts to usecase input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{Name: r.Name}
}

// SubmitTransactionRequest is an authorization or presentment.
// Amount accepts JSON numbers as well as decimal strings.
type SubmitTransactionRequest struct {
	TransactionID   string          `json:"transactionID,omitempty"`
	SenderID        string          `json:"senderID"`
	ReceiverID      string          `json:"receiverID"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transactionType"`
}

// ToUseCaseInput converts to usecase input. The transaction type is
// normalized here; an unknown type is rejected before reaching the engine.
func (r *SubmitTransactionRequest) ToUseCaseInput() (usecase.SubmitTransactionInput, error) {
	txType, err := domain.ParseTransactionType(r.TransactionType)
	if err != nil {
		return usecase.SubmitTransactionInput{}, fmt.Errorf("%w: %q", err, r.TransactionType)
	}

	return usecase.SubmitTransactionInput{
		TransactionID: r.TransactionID,
		SenderID:      r.SenderID,
		ReceiverID:    r.ReceiverID,
		Amount:        r.Amount,
		Type:          txType,
	}, nil
}

// LoadFundsRequest adds money to an account from outside the ledger.
type LoadFundsRequest struct {
	TransactionID string          `json:"transactionID,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to usecase input.
func (r *LoadFundsRequest) ToUseCaseInput(accountID string) usecase.LoadFundsInput {
	return usecase.LoadFundsInput{
		TransactionID: r.TransactionID,
		AccountID:     accountID,
		Amount:        r.Amount,
	}
}
