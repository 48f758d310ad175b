package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/Mohsinsiddi/heroicdash/internal/dashboard"
	"github.com/Mohsinsiddi/heroicdash/internal/ui"
	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var errCanceled = errors.New("canceled")

// confirm asks before a write unless --yes was given.
func (a *app) confirm(prompt string) error {
	if assumeYes || a.prompter.Confirm(prompt) {
		return nil
	}
	return errCanceled
}

// transact runs a write behind a spinner and reports its receipt.
func (a *app) transact(cmd *cobra.Command, action string, fn func() contract.Receipt) error {
	spin := ui.NewSpinnerTo(cmd.ErrOrStderr(), action+"…")
	if !jsonOut {
		spin.Start()
	}
	r := fn()
	if !jsonOut {
		spin.Stop()
	}
	return printReceipt(a.out, action, r)
}

// limits prefers the session's loaded limits over a fresh read.
func (a *app) limits(ctx context.Context) *contract.Limits {
	if l := a.session.State().Limits; l != nil {
		return l
	}
	l := a.binding.Limits(ctx).Value
	return &l
}

// ensureAllowance approves amount when the current allowance does not cover it.
func (a *app) ensureAllowance(ctx context.Context, cmd *cobra.Command, account, amount, sym string) error {
	allowance := a.binding.TokenAllowance(ctx, account).Value
	if !dashboard.NeedsApproval(amount, allowance) {
		return nil
	}
	if err := a.confirm(fmt.Sprintf("Allowance is %s %s. Approve %s %s for staking?", allowance, sym, amount, sym)); err != nil {
		return err
	}
	return a.transact(cmd, "Approve", func() contract.Receipt {
		return a.binding.ApproveTokens(ctx, amount)
	})
}

// preflight stops writes against a paused contract.
func (a *app) preflight() error {
	if a.session.State().Paused {
		return errors.New("contract is paused")
	}
	return nil
}

var stakeCmd = &cobra.Command{
	Use:   "stake <amount>",
	Short: "Stake tokens",
	Long: `Stake an amount of tokens. The amount is checked against your balance
and the contract limits, and an approval is sent first when the allowance
does not cover it.

Examples:
  heroicdash stake 100
  heroicdash stake 250.5 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount := args[0]
		return withWriteApp(cmd, func(ctx context.Context, a *app) error {
			account, err := a.account()
			if err != nil {
				return err
			}
			if err := a.preflight(); err != nil {
				return err
			}
			sym := a.symbol(ctx)
			balance := a.binding.TokenBalance(ctx, account).Value
			if err := dashboard.ValidateStake(amount, balance, a.limits(ctx)); err != nil {
				return err
			}
			if err := a.ensureAllowance(ctx, cmd, account, amount, sym); err != nil {
				return err
			}
			if err := a.confirm(fmt.Sprintf("Stake %s %s?", amount, sym)); err != nil {
				return err
			}
			if err := a.transact(cmd, "Stake", func() contract.Receipt {
				return a.binding.Stake(ctx, amount)
			}); err != nil {
				return err
			}
			return a.reportStake(ctx, sym)
		})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <amount>",
	Short: "Withdraw staked tokens",
	Long: `Withdraw part of your stake. The contract's withdrawal fee is shown
before you confirm.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount := args[0]
		return withWriteApp(cmd, func(ctx context.Context, a *app) error {
			account, err := a.account()
			if err != nil {
				return err
			}
			if err := a.preflight(); err != nil {
				return err
			}
			sym := a.symbol(ctx)
			limits := a.limits(ctx)
			staked := a.binding.UserData(ctx, account).Value.StakedAmount
			if err := dashboard.ValidateWithdraw(amount, staked, limits); err != nil {
				return err
			}

			fee, net := dashboard.WithdrawFee(amount, *limits)
			if !jsonOut {
				fmt.Fprintln(a.out, ui.KeyValueBlock("Withdrawal", [][2]string{
					{"Amount", ui.Amount(amount, sym)},
					{"Fee", ui.Amount(fee, sym) + ui.Meta(fmt.Sprintf(" (%d%%)", limits.WithdrawFeePercent))},
					{"You receive", ui.Amount(net, sym)},
				}))
			}
			if err := a.confirm(fmt.Sprintf("Withdraw %s %s?", amount, sym)); err != nil {
				return err
			}
			if err := a.transact(cmd, "Withdraw", func() contract.Receipt {
				return a.binding.Withdraw(ctx, amount)
			}); err != nil {
				return err
			}
			return a.reportStake(ctx, sym)
		})
	},
}

var investCmd = &cobra.Command{
	Use:   "invest <referrer> <amount>",
	Short: "Invest under a referrer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		referrer, amount := args[0], args[1]
		if !common.IsHexAddress(referrer) {
			return fmt.Errorf("invalid referrer address %q", referrer)
		}
		return withWriteApp(cmd, func(ctx context.Context, a *app) error {
			account, err := a.account()
			if err != nil {
				return err
			}
			if err := a.preflight(); err != nil {
				return err
			}
			if common.IsHexAddress(account) && common.HexToAddress(account) == common.HexToAddress(referrer) {
				return errors.New("you cannot refer yourself")
			}
			sym := a.symbol(ctx)
			balance := a.binding.TokenBalance(ctx, account).Value
			if err := dashboard.ValidateStake(amount, balance, a.limits(ctx)); err != nil {
				return err
			}
			if err := a.ensureAllowance(ctx, cmd, account, amount, sym); err != nil {
				return err
			}
			if err := a.confirm(fmt.Sprintf("Invest %s %s under %s?", amount, sym, wallet.FormatAddress(referrer))); err != nil {
				return err
			}
			if err := a.transact(cmd, "Invest", func() contract.Receipt {
				return a.binding.Invest(ctx, referrer, amount)
			}); err != nil {
				return err
			}
			return a.reportStake(ctx, sym)
		})
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <amount>",
	Short: "Approve the staking contract to spend tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount := args[0]
		return withWriteApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.account(); err != nil {
				return err
			}
			if err := dashboard.ValidateStake(amount, amount, nil); err != nil {
				return err
			}
			sym := a.symbol(ctx)
			if err := a.confirm(fmt.Sprintf("Approve %s %s for staking?", amount, sym)); err != nil {
				return err
			}
			return a.transact(cmd, "Approve", func() contract.Receipt {
				return a.binding.ApproveTokens(ctx, amount)
			})
		})
	},
}

// reportStake refreshes the session and prints the new stake.
func (a *app) reportStake(ctx context.Context, sym string) error {
	a.session.Refresh(ctx)
	if jsonOut {
		return nil
	}
	st := a.session.State()
	if st.User == nil {
		return nil
	}
	fmt.Fprintln(a.out, ui.KeyValueBlock("", [][2]string{
		{"Staked", ui.Amount(st.User.StakedAmount, sym) + " " + ui.Meta(ui.Source(st.UserSource))},
	}))
	return nil
}
