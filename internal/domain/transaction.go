package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of client-initiated operation.
type TransactionType string

const (
	TransactionTypeAuthorization TransactionType = "authorization"
	TransactionTypePresentment   TransactionType = "presentment"
	TransactionTypeLoad          TransactionType = "load"
)

var transactionTypes = map[TransactionType]bool{
	TransactionTypeAuthorization: true,
	TransactionTypePresentment:   true,
	TransactionTypeLoad:          true,
}

// IsValid reports whether t is one of the recognized transaction types.
func (t TransactionType) IsValid() bool {
	return transactionTypes[t]
}

// ParseTransactionType normalizes s and returns the matching type.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidTransactionType
	}
	return t, nil
}

// Transaction is an immutable record in the transaction log.
//
// TransactionID is the client token shared by an authorization and its
// presentment. ID identifies the log row itself.
type Transaction struct {
	CreatedAt     time.Time
	ID            string
	TransactionID string
	SenderID      string
	ReceiverID    string
	Amount        decimal.Decimal
	Type          TransactionType
}
