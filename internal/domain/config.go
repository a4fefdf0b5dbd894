package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LedgerConfig holds the issuer-specific rules of the ledger. It is built
// once at startup and passed by value.
type LedgerConfig struct {
	FeePercent      decimal.Decimal
	MinimumTransfer decimal.Decimal
	IssuerAccountID string
}

// Validate checks the configuration is usable.
func (c LedgerConfig) Validate() error {
	if c.FeePercent.IsNegative() || c.FeePercent.GreaterThan(hundred) {
		return fmt.Errorf("fee percent must be between 0 and 100, got %s", c.FeePercent)
	}
	if !c.MinimumTransfer.IsPositive() {
		return fmt.Errorf("minimum transfer must be positive, got %s", c.MinimumTransfer)
	}
	if c.IssuerAccountID == "" {
		return fmt.Errorf("issuer account id is required")
	}
	return nil
}
