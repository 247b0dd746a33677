package bids

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPlatformFeeRoundsToCents(t *testing.T) {
	cases := []struct {
		price   string
		percent int
		want    string
	}{
		{"1000.00", 10, "100.00"},
		{"1250.50", 10, "125.05"},
		{"99.99", 10, "10.00"},
		{"0.01", 10, "0.00"},
		{"333.33", 7, "23.33"},
		{"1000.00", 0, "0.00"},
		{"1000.00", -5, "0.00"},
	}

	for _, tc := range cases {
		price := decimal.RequireFromString(tc.price)
		want := decimal.RequireFromString(tc.want)
		got := PlatformFee(price, tc.percent)
		if !got.Equal(want) {
			t.Errorf("PlatformFee(%s, %d) = %s, want %s", tc.price, tc.percent, got, want)
		}
	}
}
