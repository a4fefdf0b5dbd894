package domain

import "github.com/shopspring/decimal"

// AmountPlaces is the number of decimal places every persisted amount has.
const AmountPlaces = 2

var hundred = decimal.NewFromInt(100)

// RoundAmount rounds d half away from zero to AmountPlaces.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountPlaces)
}

// CalculateFee returns the issuer's cut of amount for feePercent.
func CalculateFee(amount, feePercent decimal.Decimal) decimal.Decimal {
	return RoundAmount(amount.Mul(feePercent).Div(hundred))
}
