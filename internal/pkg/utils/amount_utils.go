package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// receiveDigits is the fractional precision of estimate results, matching
// the ledger's 7-decimal fixed-point amounts.
const receiveDigits = 7

// ParseDecimal parses a decimal string into an exact rational. Empty strings
// and malformed input are rejected; the orderbook walk must not silently
// treat them as zero.
func ParseDecimal(s string) (*big.Rat, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("empty decimal string")
	}
	r, ok := new(big.Rat).SetString(trimmed)
	if !ok {
		return nil, fmt.Errorf("malformed decimal string %q", s)
	}
	return r, nil
}

// FormatReceive renders an estimate to 7 fractional digits. Zero renders as
// the bare "0" the display layer expects for the no-liquidity case.
func FormatReceive(r *big.Rat) string {
	if r == nil || r.Sign() == 0 {
		return "0"
	}
	return r.FloatString(receiveDigits)
}

// IsPositiveDecimal reports whether s parses as a strictly positive decimal.
func IsPositiveDecimal(s string) bool {
	r, err := ParseDecimal(s)
	if err != nil {
		return false
	}
	return r.Sign() > 0
}
