package usecase

import (
	"fmt"

	"github.com/iho/cardledger/internal/domain"
)

// ValidationInput is everything the validator looks at. Accounts, the prior
// authorization and its entries are loaded by the caller under lock.
type ValidationInput struct {
	Request       SubmitTransactionInput
	Sender        *domain.Account
	Receiver      *domain.Account
	Authorization *domain.Transaction
	Entries       []*domain.Transfer
}

// TransactionValidator applies the acceptance rules for card transactions.
// It is pure and never touches storage.
type TransactionValidator struct {
	cfg domain.LedgerConfig
}

// NewTransactionValidator creates a new TransactionValidator.
func NewTransactionValidator(cfg domain.LedgerConfig) *TransactionValidator {
	return &TransactionValidator{cfg: cfg}
}

// Validate checks the rules in order and returns the first failure:
// presentment needs a matching unpresented authorization, the amount is
// positive and at least the configured minimum, the type is a card
// transaction type, the sender can cover the amount, and sender and
// receiver are the requested distinct accounts.
func (v *TransactionValidator) Validate(in ValidationInput) error {
	req := in.Request

	if req.Type == domain.TransactionTypePresentment {
		if err := v.validateAuthorization(in); err != nil {
			return err
		}
	}

	if err := domain.ValidateAmount(req.Amount); err != nil {
		return err
	}

	if err := domain.ValidateMinimum(req.Amount, v.cfg.MinimumTransfer); err != nil {
		return err
	}

	if req.Type != domain.TransactionTypeAuthorization && req.Type != domain.TransactionTypePresentment {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTransactionType, req.Type)
	}

	if in.Sender == nil || in.Receiver == nil {
		return domain.ErrAccountMismatch
	}

	if !in.Sender.CanAuthorize(req.Amount) {
		return domain.ErrInsufficientFunds
	}

	if in.Sender.ID != req.SenderID || in.Receiver.ID != req.ReceiverID {
		return domain.ErrAccountMismatch
	}

	if req.SenderID == req.ReceiverID {
		return domain.ErrSameAccount
	}

	return nil
}

func (v *TransactionValidator) validateAuthorization(in ValidationInput) error {
	req := in.Request
	auth := in.Authorization

	if auth == nil || auth.Type != domain.TransactionTypeAuthorization || auth.TransactionID != req.TransactionID {
		return domain.ErrAuthorizationNotFound
	}

	if auth.SenderID != req.SenderID || auth.ReceiverID != req.ReceiverID {
		return fmt.Errorf("%w: parties differ from authorization %s", domain.ErrAccountMismatch, auth.TransactionID)
	}

	if !auth.Amount.Equal(req.Amount) {
		return fmt.Errorf("%w: amount %s differs from authorized %s",
			domain.ErrAccountMismatch,
			req.Amount.StringFixed(domain.AmountPlaces),
			auth.Amount.StringFixed(domain.AmountPlaces))
	}

	if len(in.Entries) == 0 {
		return domain.ErrAuthorizationNotFound
	}

	for _, entry := range in.Entries {
		if entry.Presented {
			return domain.ErrAlreadyPresented
		}
	}

	return nil
}
