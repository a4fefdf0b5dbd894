package domain

import "github.com/shopspring/decimal"

// Balances are the two balance figures of an account plus the credits still
// waiting on a presentment.
type Balances struct {
	Ledger    decimal.Decimal
	Available decimal.Decimal
	// PendingCredits is the sum of unpresented credits. It is in neither
	// balance until presented.
	PendingCredits decimal.Decimal
}

// AggregateBalances folds ledger entries into balances. Presented entries
// count towards both balances. An unpresented entry is a hold: debits reduce
// the available balance right away, credits only become available once
// presented.
func AggregateBalances(transfers []*Transfer) Balances {
	b := Balances{Ledger: decimal.Zero, Available: decimal.Zero, PendingCredits: decimal.Zero}
	for _, t := range transfers {
		switch {
		case t.Presented:
			b.Ledger = b.Ledger.Add(t.Amount)
			b.Available = b.Available.Add(t.Amount)
		case t.Amount.IsNegative():
			b.Available = b.Available.Add(t.Amount)
		default:
			b.PendingCredits = b.PendingCredits.Add(t.Amount)
		}
	}

	b.Ledger = RoundAmount(b.Ledger)
	b.Available = RoundAmount(b.Available)
	b.PendingCredits = RoundAmount(b.PendingCredits)

	return b
}

// Matches reports whether the cached balances on a equal b.
func (b Balances) Matches(a *Account) bool {
	return b.Ledger.Equal(a.LedgerBalance) && b.Available.Equal(a.AvailableBalance)
}

// LedgerImbalance is a double-entry transaction whose entries do not sum to
// zero.
type LedgerImbalance struct {
	TransactionID string
	Sum           decimal.Decimal
}
