package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a ledger account with a settled and a spendable balance.
//
// LedgerBalance only reflects presented movements. AvailableBalance also
// includes authorizations that have not been presented yet.
type Account struct {
	ID               string
	Name             string
	LedgerBalance    decimal.Decimal
	AvailableBalance decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CanAuthorize reports whether the available balance covers amount.
func (a *Account) CanAuthorize(amount decimal.Decimal) bool {
	return a.AvailableBalance.GreaterThanOrEqual(amount)
}

// ApplyAvailable returns the available balance after adding delta.
func (a *Account) ApplyAvailable(delta decimal.Decimal) decimal.Decimal {
	return RoundAmount(a.AvailableBalance.Add(delta))
}

// ApplyLedger returns the ledger balance after adding delta.
func (a *Account) ApplyLedger(delta decimal.Decimal) decimal.Decimal {
	return RoundAmount(a.LedgerBalance.Add(delta))
}
