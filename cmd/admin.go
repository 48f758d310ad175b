package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/Mohsinsiddi/heroicdash/internal/dashboard"
	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var errNotOwner = errors.New("only the contract owner can run admin commands")

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Owner-only contract administration",
	Long: `Pause or unpause the contract and withdraw funds from it. These commands
require the connected account to be the contract owner; in demo mode they
run against the simulated state.`,
}

// withOwner runs fn when the connected account owns the contract, or when the
// session is in demo mode.
func withOwner(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	return withWriteApp(cmd, func(ctx context.Context, a *app) error {
		st := a.session.State()
		if !st.IsDemo && !st.IsOwner {
			return errNotOwner
		}
		return fn(ctx, a)
	})
}

// confirmDanger asks before an admin write unless --yes was given.
func (a *app) confirmDanger(prompt string) error {
	if assumeYes || a.prompter.ConfirmDanger(prompt) {
		return nil
	}
	return errCanceled
}

var adminPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause staking, investing and withdrawals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOwner(cmd, func(ctx context.Context, a *app) error {
			if a.session.State().Paused {
				return errors.New("contract is already paused")
			}
			if err := a.confirmDanger("Pause the contract for every user?"); err != nil {
				return err
			}
			return a.transact(cmd, "Pause", func() contract.Receipt {
				return a.binding.Pause(ctx)
			})
		})
	},
}

var adminUnpauseCmd = &cobra.Command{
	Use:   "unpause",
	Short: "Resume a paused contract",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOwner(cmd, func(ctx context.Context, a *app) error {
			if !a.session.State().Paused {
				return errors.New("contract is not paused")
			}
			if err := a.confirmDanger("Unpause the contract?"); err != nil {
				return err
			}
			return a.transact(cmd, "Unpause", func() contract.Receipt {
				return a.binding.Unpause(ctx)
			})
		})
	},
}

var adminWithdrawFundsCmd = &cobra.Command{
	Use:   "withdraw-funds <to> <amount>",
	Short: "Withdraw tokens held by the contract",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, amount := args[0], args[1]
		if !common.IsHexAddress(to) {
			return fmt.Errorf("invalid recipient address %q", to)
		}
		return withOwner(cmd, func(ctx context.Context, a *app) error {
			if err := dashboard.ValidateStake(amount, amount, nil); err != nil {
				return err
			}
			sym := a.symbol(ctx)
			if err := a.confirmDanger(fmt.Sprintf("Withdraw %s %s from the contract to %s?", amount, sym, wallet.FormatAddress(to))); err != nil {
				return err
			}
			return a.transact(cmd, "Withdraw funds", func() contract.Receipt {
				return a.binding.WithdrawFunds(ctx, to, amount)
			})
		})
	},
}

func init() {
	adminCmd.AddCommand(adminPauseCmd, adminUnpauseCmd, adminWithdrawFundsCmd)
}
