package tokens

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatAmount renders a raw integer amount scaled down by 10^decimals.
// The conversion is exact; trailing zeros are trimmed.
func FormatAmount(raw string, decimals uint8) (string, error) {
	value, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return "", fmt.Errorf("invalid amount: %q", raw)
	}
	return FormatBigInt(value, decimals), nil
}

// FormatBigInt is FormatAmount for an already parsed integer.
func FormatBigInt(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).String()
}

// ScaleAmount converts a human-readable amount back to base units.
// It fails if the amount has more fractional digits than decimals allows.
func ScaleAmount(formatted string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(formatted)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", formatted, err)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("amount %q exceeds %d decimals", formatted, decimals)
	}
	return scaled.BigInt(), nil
}
