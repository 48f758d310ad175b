package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/Mohsinsiddi/heroicdash/internal/dashboard"
	"github.com/Mohsinsiddi/heroicdash/internal/ui"
	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// subject is the address a read command reports on: the argument when given,
// otherwise the connected account.
func subject(a *app, args []string) (string, error) {
	if len(args) > 0 {
		if !common.IsHexAddress(args[0]) {
			return "", fmt.Errorf("invalid address %q", args[0])
		}
		return args[0], nil
	}
	return a.account()
}

var userCmd = &cobra.Command{
	Use:   "user [address]",
	Short: "Show a staker's record",
	Long: `Show the staked amount, direct members, team investment, star level and
referrer of an address (default: your account).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			addr, err := subject(a, args)
			if err != nil {
				return err
			}
			u := a.binding.UserData(ctx, addr)
			sym := a.symbol(ctx)

			return emit(a.out, userOutput{Address: addr, User: u.Value, Source: u.Source}, func() string {
				return ui.KeyValueBlock("User "+ui.Source(u.Source), [][2]string{
					{"Address", ui.Addr(addr)},
					{"Staked", ui.Amount(u.Value.StakedAmount, sym)},
					{"Direct members", ui.Val(strconv.FormatUint(u.Value.DirectMembers, 10))},
					{"Team investment", ui.Amount(u.Value.TotalTeamInvestment, sym)},
					{"Star level", ui.Stars(dashboard.Stars(u.Value.StarLevel))},
					{"Referrer", ui.Addr(u.Value.Referrer)},
				})
			})
		})
	},
}

type userOutput struct {
	Address string          `json:"address"`
	User    contract.User   `json:"user"`
	Source  contract.Source `json:"source"`
}

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show the contract's investment and withdrawal limits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			l := a.binding.Limits(ctx)
			sym := a.symbol(ctx)
			return emit(a.out, l, func() string {
				return ui.KeyValueBlock("Contract limits "+ui.Source(l.Source), [][2]string{
					{"Min investment", ui.Amount(l.Value.MinInvestment, sym)},
					{"Max investment", ui.Amount(l.Value.MaxInvestment, sym)},
					{"Min withdraw", ui.Amount(l.Value.MinWithdraw, sym)},
					{"Withdraw fee", ui.Val(fmt.Sprintf("%d%%", l.Value.WithdrawFeePercent))},
				})
			})
		})
	},
}

type balanceOutput struct {
	Address   string          `json:"address"`
	Symbol    string          `json:"symbol"`
	Balance   string          `json:"balance"`
	Allowance string          `json:"allowance"`
	Source    contract.Source `json:"source"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show token balance and staking allowance",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			addr, err := subject(a, args)
			if err != nil {
				return err
			}
			bal := a.binding.TokenBalance(ctx, addr)
			allow := a.binding.TokenAllowance(ctx, addr)
			out := balanceOutput{
				Address:   addr,
				Symbol:    a.symbol(ctx),
				Balance:   bal.Value,
				Allowance: allow.Value,
				Source:    mergeSource(bal.Source, allow.Source),
			}
			return emit(a.out, out, func() string {
				return ui.KeyValueBlock("Token "+ui.Source(out.Source), [][2]string{
					{"Address", ui.Addr(addr)},
					{"Balance", ui.Amount(out.Balance, out.Symbol)},
					{"Allowance", ui.Amount(out.Allowance, out.Symbol)},
				})
			})
		})
	},
}

// mergeSource is live when every input is live, mock when every input is
// mock, and partial otherwise.
func mergeSource(sources ...contract.Source) contract.Source {
	var live, mock int
	for _, s := range sources {
		switch s {
		case contract.SourceLive:
			live++
		case contract.SourceMock:
			mock++
		}
	}
	switch {
	case live == len(sources):
		return contract.SourceLive
	case mock == len(sources):
		return contract.SourceMock
	}
	return contract.SourcePartial
}

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"top"},
	Short:   "Top stakers by staked amount",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			spin := ui.NewSpinnerTo(cmd.ErrOrStderr(), "Loading leaderboard…")
			if !jsonOut {
				spin.Start()
			}
			board, err := dashboard.Leaderboard(ctx, a.binding)
			if !jsonOut {
				spin.Stop()
			}
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(a.out, board)
			}
			if len(board.Entries) == 0 {
				fmt.Fprintln(a.out, ui.Info("No stakers yet."))
				return nil
			}

			sym := a.symbol(ctx)
			t := ui.NewTable([]ui.Column{
				{Title: "#", Width: 4, Right: true},
				{Title: "Address", Width: 14},
				{Title: "Staked", Width: 18, Right: true},
				{Title: "Stars", Width: 6},
				{Title: "", Width: 8},
			})
			me := a.session.State().Account
			for i, e := range board.Entries {
				t.AddRow(ui.Row{
					strconv.Itoa(e.Rank),
					ui.Addr(e.FormattedAddress),
					e.StakedAmount + " " + sym,
					dashboard.StarLabel(e.StarLevel),
					ui.Source(e.Source),
				})
				if common.IsHexAddress(me) && common.HexToAddress(me) == common.HexToAddress(e.Address) {
					t.SelIdx = i
				}
			}
			t.Footer = ui.Row{
				"",
				fmt.Sprintf("%d stakers", board.Stakers),
				board.TotalStaked + " " + sym,
				"",
				"avg " + board.AverageStake,
			}
			fmt.Fprint(a.out, t.Render())
			return nil
		})
	},
}

type membersOutput struct {
	TotalMembers uint64          `json:"total_members"`
	Source       contract.Source `json:"source"`
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Total number of members",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			n := a.binding.TotalMembers(ctx)
			out := membersOutput{TotalMembers: n.Value, Source: n.Source}
			return emit(a.out, out, func() string {
				return ui.KeyValueBlock("", [][2]string{
					{"Total members", ui.Val(strconv.FormatUint(n.Value, 10)) + " " + ui.Meta(ui.Source(n.Source))},
				})
			})
		})
	},
}

type referralsOutput struct {
	Address string `json:"address"`
	dashboard.Referrals
	Source contract.Source `json:"source"`
}

var referralsCmd = &cobra.Command{
	Use:   "referrals [address]",
	Short: "Referral network, earnings and your referral link",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			addr, err := subject(a, args)
			if err != nil {
				return err
			}
			u := a.binding.UserData(ctx, addr)
			details := a.binding.ReferralDetails(ctx, addr)

			r := dashboard.ReferralSummary(u.Value, details.Value)
			r.Link = dashboard.ReferralLink(cfg.ReferralBase, addr)
			out := referralsOutput{Address: addr, Referrals: r, Source: mergeSource(u.Source, details.Source)}

			sym := a.symbol(ctx)
			return emit(a.out, out, func() string {
				s := ui.KeyValueBlock("Referrals "+ui.Source(out.Source), [][2]string{
					{"Direct referrals", ui.Val(strconv.FormatUint(r.DirectReferrals, 10))},
					{"Team size", ui.Val(r.TeamSize)},
					{"Total earnings", ui.Amount(r.TotalEarnings, sym)},
					{"Pending rewards", ui.Amount(r.PendingRewards, sym)},
					{"Link", ui.Addr(r.Link)},
				})
				if len(r.LevelCounts) == 0 {
					return s
				}
				t := ui.NewTable([]ui.Column{
					{Title: "Level", Width: 6, Right: true},
					{Title: "Members", Width: 10, Right: true},
				})
				for i, c := range r.LevelCounts {
					t.AddRow(ui.Row{strconv.Itoa(i + 1), strconv.FormatUint(c, 10)})
				}
				return s + "\n" + t.Render()
			})
		})
	},
}

type ranksOutput struct {
	Address  string             `json:"address"`
	Business dashboard.Business `json:"business"`
	Ranks    []dashboard.Rank   `json:"ranks"`
}

var ranksCmd = &cobra.Command{
	Use:   "ranks [address]",
	Short: "Rank levels, rewards and progress",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			addr, err := subject(a, args)
			if err != nil {
				return err
			}
			u := a.binding.UserData(ctx, addr)
			b := dashboard.BusinessOf(u.Value)
			ranks, err := dashboard.Ranks(ctx, a.binding, b)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(a.out, ranksOutput{Address: addr, Business: b, Ranks: ranks})
			}

			sym := a.symbol(ctx)
			fmt.Fprintln(a.out, ui.KeyValueBlock("Business "+ui.Source(u.Source), [][2]string{
				{"Account", ui.Addr(wallet.FormatAddress(addr))},
				{"Self", ui.Amount(b.Self, sym)},
				{"Direct team", ui.Val(strconv.FormatUint(b.DirectTeam, 10))},
				{"Team business", ui.Amount(b.TotalTeam, sym)},
			}))

			t := ui.NewTable([]ui.Column{
				{Title: "Rank", Width: 6},
				{Title: "Self", Width: 8, Right: true},
				{Title: "Direct", Width: 7, Right: true},
				{Title: "Team", Width: 8, Right: true},
				{Title: "Reward", Width: 12, Right: true},
				{Title: "Status", Width: 10},
			})
			for _, r := range ranks {
				status := ui.Meta("locked")
				if r.Unlocked {
					status = ui.Success("unlocked")
				}
				t.AddRow(ui.Row{
					ui.Stars(dashboard.StarLabel(uint64(r.Stars))),
					check(r.Met.SelfBusiness) + " " + r.SelfBusiness,
					check(r.Met.DirectTeam) + " " + strconv.FormatUint(r.DirectTeam, 10),
					check(r.Met.TotalTeam) + " " + r.TotalTeam,
					r.Reward,
					status,
				})
			}
			fmt.Fprint(a.out, t.Render())
			return nil
		})
	},
}

func check(ok bool) string {
	if ok {
		return "✓"
	}
	return "·"
}
