// Package dashboard derives the figures the dashboard pages show from raw
// contract readings: the leaderboard, rank progress, referral earnings and
// stake/withdraw form checks.
package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrInsufficientStake   = errors.New("insufficient staked amount")
	ErrBelowMinimum        = errors.New("amount below contract minimum")
	ErrAboveMaximum        = errors.New("amount above contract maximum")
)

// parseAmount reads a decimal token amount. Empty strings read as zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// lenient parses s and treats garbage as zero, the way display figures do.
func lenient(s string) decimal.Decimal {
	d, err := parseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func percent(p uint64) decimal.Decimal {
	return decimal.NewFromUint64(p).Div(decimal.NewFromInt(100))
}
