// internal/utils/amount.go
package utils

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidIdentity = errors.New("invalid identity")
)

// ParseAmount reads a base-10 integer in minor units. Zero is allowed so the
// ledger can reject it with its own error.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidAmount
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return n, nil
}

// ParseDecimalAmount converts a human value such as "1.25" into minor units.
// More fractional digits than decimals is an error, never a rounding.
func ParseDecimalAmount(s string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, decimals)
	}
	return scaled.BigInt(), nil
}

// ResolveAmount reads an amount given either in minor units or as a decimal
// value. Exactly one of the two must be set.
func ResolveAmount(minor, dec string, decimals int32) (*big.Int, error) {
	minor, dec = strings.TrimSpace(minor), strings.TrimSpace(dec)
	switch {
	case minor != "" && dec != "":
		return nil, fmt.Errorf("%w: give minor units or a decimal value, not both", ErrInvalidAmount)
	case dec != "":
		return ParseDecimalAmount(dec, decimals)
	default:
		return ParseAmount(minor)
	}
}

// FormatAmount renders minor units with the given number of decimals, trimming
// trailing zeros: 1e18 with 18 decimals is "1".
func FormatAmount(x *big.Int, decimals int32) string {
	if x == nil {
		return "0"
	}
	return decimal.NewFromBigInt(x, -decimals).String()
}

// AmountView is how amounts travel in responses.
type AmountView struct {
	Value   string `json:"value"`
	Decimal string `json:"decimal"`
}

func NewAmountView(x *big.Int, decimals int32) AmountView {
	if x == nil {
		x = new(big.Int)
	}
	return AmountView{Value: x.String(), Decimal: FormatAmount(x, decimals)}
}

func ParseIdentity(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidIdentity, s)
	}
	return common.HexToAddress(s), nil
}
