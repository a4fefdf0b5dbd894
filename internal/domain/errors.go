package domain

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransferNotFound    = errors.New("transfer not found")

	// Validation errors
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("unrecognized transaction type")
	ErrInsufficientFunds      = errors.New("insufficient available balance")
	ErrAccountMismatch        = errors.New("sender or receiver does not match")
	ErrSameAccount            = errors.New("cannot transfer to same account")
	ErrAuthorizationNotFound  = errors.New("no prior authorization for presentment")
	ErrAlreadyPresented       = errors.New("transaction already presented")
	ErrDuplicateTransaction   = errors.New("transaction id already used")

	// ErrProcessing marks a failed atomic write. The store rolled back.
	ErrProcessing = errors.New("processing error")
)

// ErrorKind classifies errors for callers that translate them, like the
// HTTP layer and metrics.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindInvalidAmount     ErrorKind = "invalid_amount"
	KindInvalidType       ErrorKind = "invalid_type"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindMismatch          ErrorKind = "mismatch"
	KindDuplicate         ErrorKind = "duplicate"
	KindProcessing        ErrorKind = "processing_error"
)

// KindOf returns the kind of err. Unknown errors are processing errors.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrProcessing):
		return KindProcessing
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrTransactionNotFound),
		errors.Is(err, ErrTransferNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, ErrInvalidTransactionType):
		return KindInvalidType
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrAccountMismatch),
		errors.Is(err, ErrSameAccount),
		errors.Is(err, ErrAuthorizationNotFound),
		errors.Is(err, ErrAlreadyPresented):
		return KindMismatch
	case errors.Is(err, ErrDuplicateTransaction):
		return KindDuplicate
	default:
		return KindProcessing
	}
}

// IsValidationError reports whether err was raised before any mutation.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindProcessing, KindNotFound:
		return false
	default:
		return true
	}
}

// NewProcessingError wraps a storage failure during op.
func NewProcessingError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrProcessing, op, err)
}
