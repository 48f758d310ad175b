package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/heroicdash/internal/session"
	"github.com/Mohsinsiddi/heroicdash/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type statusOutput struct {
	session.State
	Target  string `json:"target"`
	Dialect string `json:"dialect"`
}

var connectCmd = &cobra.Command{
	Use:     "connect",
	Aliases: []string{"status"},
	Short:   "Connect the wallet and show the session",
	Long: `Connect the configured wallet, check the network and load your staking
data, limits and the contract's pause state.

Examples:
  heroicdash connect
  heroicdash status --json
  heroicdash connect --demo`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			st := a.session.State()
			out := statusOutput{State: st, Target: a.target.DisplayName, Dialect: a.binding.DialectName()}
			return emit(a.out, out, func() string {
				s := ui.RenderSession(st, a.target, a.symbol(ctx))
				s += ui.Meta(fmt.Sprintf("Contract %s · token %s · %s", a.binding.ContractAddress(), a.binding.TokenAddress(), a.binding.DialectName()))
				if st.Connected && !st.IsDemo && !st.IsTargetNetwork {
					s += "\n" + ui.Hint("Switch with: heroicdash network switch")
				}
				return s
			})
		})
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live session dashboard",
	Long: `Open a live view of your session. It refreshes on an interval and
follows account and network changes from the wallet.

Keys: r refresh · s switch network · q quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.connect(ctx); err != nil {
			return err
		}
		release := a.session.Watch(ctx)
		defer release()

		d := ui.NewDashboard(ctx, a.session, a.relay, a.symbol(ctx), refreshEvery,
			tea.WithAltScreen(),
			tea.WithContext(ctx),
			tea.WithInput(cmd.InOrStdin()),
			tea.WithOutput(cmd.OutOrStdout()),
		)
		return d.Run()
	},
}

var refreshEvery time.Duration

func init() {
	dashboardCmd.Flags().DurationVar(&refreshEvery, "interval", 15*time.Second, "refresh interval")
}
