package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferKind separates movements between ledger accounts from money
// entering the ledger from outside.
type TransferKind string

const (
	// TransferKindDoubleEntry entries sum to zero per transaction ID.
	TransferKindDoubleEntry TransferKind = "double_entry"
	// TransferKindExternal entries have no offsetting entry (loads).
	TransferKindExternal TransferKind = "external"
)

// Transfer is a single signed ledger line for one account and one
// transaction ID. Debits are negative, credits positive.
type Transfer struct {
	CreatedAt     time.Time
	ID            string
	AccountID     string
	TransactionID string
	Amount        decimal.Decimal
	Kind          TransferKind
	Presented     bool
}

// TransferLeg is an entry before it is persisted.
type TransferLeg struct {
	AccountID string
	Amount    decimal.Decimal
}

// AuthorizationLegs splits an authorization into sender, receiver and issuer
// legs. Legs landing on the same account are merged, so the result may hold
// fewer than three legs; the sum is always zero.
func AuthorizationLegs(senderID, receiverID, issuerID string, amount, fee decimal.Decimal) []TransferLeg {
	amount = RoundAmount(amount)
	fee = RoundAmount(fee)

	raw := []TransferLeg{
		{AccountID: senderID, Amount: amount.Neg()},
		{AccountID: receiverID, Amount: amount.Sub(fee)},
		{AccountID: issuerID, Amount: fee},
	}

	legs := make([]TransferLeg, 0, len(raw))
	index := make(map[string]int, len(raw))
	for _, leg := range raw {
		if i, ok := index[leg.AccountID]; ok {
			legs[i].Amount = legs[i].Amount.Add(leg.Amount)
			continue
		}
		index[leg.AccountID] = len(legs)
		legs = append(legs, leg)
	}

	return legs
}

// SumTransfers returns the sum of all entry amounts.
func SumTransfers(transfers []*Transfer) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range transfers {
		sum = sum.Add(t.Amount)
	}
	return sum
}
