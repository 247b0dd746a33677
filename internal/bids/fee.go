package bids

import "github.com/shopspring/decimal"

// PlatformFee computes the marketplace cut for a carrier price, rounded to
// cents half-up so the ledger never carries sub-cent amounts.
func PlatformFee(price decimal.Decimal, percent int) decimal.Decimal {
	if percent <= 0 {
		return decimal.Zero
	}
	return price.
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Round(2)
}
