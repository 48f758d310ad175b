package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/heroicdash/internal/config"
	"github.com/Mohsinsiddi/heroicdash/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var initFlags struct {
	mode     string
	provider string
	rpcURL   string
	contract string
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Configure network, wallet provider and contract",
	Long: `Run the setup wizard and save the answers to the config file. Passing any
flag skips the wizard.

Examples:
  heroicdash init
  heroicdash init --mode testnet --provider rpc --rpc-url http://127.0.0.1:8545`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res := &ui.WizardResult{
			NetworkMode:     initFlags.mode,
			Provider:        initFlags.provider,
			RPCURL:          initFlags.rpcURL,
			ContractAddress: initFlags.contract,
		}
		if !anyFlagChanged(cmd, "mode", "provider", "rpc-url", "contract") {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Banner())
			var err error
			res, err = ui.RunWizard(tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			if res.Canceled {
				return errCanceled
			}
		}

		if err := applyWizard(cfg, res); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, cfg)
		}
		fmt.Fprintln(out, ui.Success("Saved "+cfg.Dir()))
		fmt.Fprintln(out, ui.KeyValueBlock("", [][2]string{
			{"Network", ui.ChainName(cfg.NetworkMode)},
			{"Provider", ui.Val(cfg.Provider)},
			{"Contract", ui.Addr(cfg.ContractAddress)},
		}))
		if cfg.Provider == config.ProviderKeyed && cfg.DefaultWallet == "" {
			fmt.Fprintln(out, ui.Hint("Import a wallet with: heroicdash wallet import <name> --key <hex>"))
		}
		return nil
	},
}

// applyWizard copies the non-empty answers onto c.
func applyWizard(c *config.Config, res *ui.WizardResult) error {
	switch res.NetworkMode {
	case "", "mainnet", "testnet":
	default:
		return fmt.Errorf("unknown network mode %q (use mainnet or testnet)", res.NetworkMode)
	}
	switch res.Provider {
	case "", config.ProviderKeyed, config.ProviderRPC, config.ProviderNone:
	default:
		return fmt.Errorf("unknown provider %q (use keyed, rpc or none)", res.Provider)
	}
	if res.ContractAddress != "" && !common.IsHexAddress(res.ContractAddress) {
		return fmt.Errorf("invalid contract address %q", res.ContractAddress)
	}

	if res.NetworkMode != "" {
		c.NetworkMode = res.NetworkMode
	}
	if res.Provider != "" {
		c.Provider = res.Provider
	}
	if res.RPCURL != "" {
		c.RPCURL = res.RPCURL
	}
	if res.ContractAddress != "" {
		c.ContractAddress = res.ContractAddress
	}
	return nil
}

func anyFlagChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

func init() {
	initCmd.Flags().StringVar(&initFlags.mode, "mode", "", "network mode: mainnet or testnet")
	initCmd.Flags().StringVar(&initFlags.provider, "provider", "", "wallet provider: keyed, rpc or none")
	initCmd.Flags().StringVar(&initFlags.rpcURL, "rpc-url", "", "node endpoint override")
	initCmd.Flags().StringVar(&initFlags.contract, "contract", "", "staking contract address")
}
