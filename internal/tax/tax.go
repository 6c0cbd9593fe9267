// Package tax computes property tax from an assessed value and a
// municipality's rates using exact decimal arithmetic.
package tax

import (
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by rates and amounts.
const Scale = 8

// Compute returns value * (municipalRate + educationRate).
// The result is exact; no rounding is applied.
func Compute(value int64, municipalRate, educationRate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(value).Mul(municipalRate.Add(educationRate))
}

// Format renders an amount with exactly Scale fractional digits,
// e.g. "1700.00000000".
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(Scale)
}
