package dashboard

import (
	"fmt"

	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/shopspring/decimal"
)

// ValidateStake checks a stake amount against the wallet's token balance and,
// when limits are known, the contract's investment bounds.
func ValidateStake(amount, balance string, limits *contract.Limits) error {
	a, err := positive(amount)
	if err != nil {
		return err
	}
	if bal := lenient(balance); a.GreaterThan(bal) {
		return fmt.Errorf("%w: you have %s tokens", ErrInsufficientBalance, balance)
	}
	if limits == nil {
		return nil
	}
	if lo := lenient(limits.MinInvestment); lo.IsPositive() && a.LessThan(lo) {
		return fmt.Errorf("%w: minimum is %s", ErrBelowMinimum, limits.MinInvestment)
	}
	if hi := lenient(limits.MaxInvestment); hi.IsPositive() && a.GreaterThan(hi) {
		return fmt.Errorf("%w: maximum is %s", ErrAboveMaximum, limits.MaxInvestment)
	}
	return nil
}

// NeedsApproval reports whether amount exceeds the current token allowance.
// Unparseable amounts never need approval; validation rejects them first.
func NeedsApproval(amount, allowance string) bool {
	a, err := parseAmount(amount)
	if err != nil {
		return false
	}
	return a.GreaterThan(lenient(allowance))
}

// ValidateWithdraw checks a withdrawal against the staked amount and the
// contract's minimum withdrawal.
func ValidateWithdraw(amount, staked string, limits *contract.Limits) error {
	a, err := positive(amount)
	if err != nil {
		return err
	}
	if a.GreaterThan(lenient(staked)) {
		return fmt.Errorf("%w: you have %s tokens staked", ErrInsufficientStake, staked)
	}
	if limits == nil {
		return nil
	}
	if lo := lenient(limits.MinWithdraw); lo.IsPositive() && a.LessThan(lo) {
		return fmt.Errorf("%w: minimum withdrawal is %s", ErrBelowMinimum, limits.MinWithdraw)
	}
	return nil
}

// WithdrawFee returns the fee and net payout for a withdrawal, both to 2dp.
func WithdrawFee(amount string, limits contract.Limits) (fee, net string) {
	a := lenient(amount)
	f := a.Mul(percent(limits.WithdrawFeePercent))
	return f.StringFixed(2), a.Sub(f).StringFixed(2)
}

func positive(amount string) (decimal.Decimal, error) {
	a, err := parseAmount(amount)
	if err != nil {
		return a, err
	}
	if !a.IsPositive() {
		return a, ErrInvalidAmount
	}
	return a, nil
}
