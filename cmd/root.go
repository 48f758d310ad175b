package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/heroicdash/internal/config"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/heroicdash/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir     string
	cfg        *config.Config
	testnet    bool
	demo       bool
	jsonOut    bool
	assumeYes  bool
	walletName string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "heroicdash",
	Short: "Staking and referral dashboard for the Heroic contract",
	Long: `heroicdash connects a wallet to the Heroic staking contract on Polygon
and shows your stake, referral network, rank progress and contract limits.

Without a wallet (or with --demo) every command runs in demo mode on
simulated data, and writes update the simulated state instead of the chain.

Global flag --testnet targets Polygon Mumbai for a single invocation.
Persist with: heroicdash init`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if testnet {
			cfg.NetworkMode = "testnet"
		}
		if demo {
			cfg.Provider = config.ProviderNone
		}
		if walletName != "" {
			cfg.DefaultWallet = walletName
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errLine(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $HEROICDASH_CONFIG_DIR or ~/.heroicdash)")
	rootCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "target Polygon Mumbai instead of mainnet")
	rootCmd.PersistentFlags().BoolVar(&demo, "demo", false, "run without a wallet on simulated data")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to confirmation prompts")
	rootCmd.PersistentFlags().StringVarP(&walletName, "wallet", "w", "", "keyed wallet to use (default: configured default)")

	rootCmd.AddCommand(
		initCmd,
		connectCmd,
		dashboardCmd,
		userCmd,
		limitsCmd,
		balanceCmd,
		leaderboardCmd,
		membersCmd,
		referralsCmd,
		ranksCmd,
		stakeCmd,
		withdrawCmd,
		investCmd,
		approveCmd,
		adminCmd,
		networkCmd,
		walletCmd,
		convertCmd,
	)
}
