package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Mohsinsiddi/heroicdash/internal/chain"
	"github.com/Mohsinsiddi/heroicdash/internal/config"
	"github.com/Mohsinsiddi/heroicdash/internal/endpoint"
	"github.com/Mohsinsiddi/heroicdash/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Inspect and switch the wallet's network",
}

var networkSwitchCmd = &cobra.Command{
	Use:   "switch",
	Short: "Ask the wallet to switch to the dashboard's network",
	Long: `Ask the wallet to switch to Polygon (or Mumbai with --testnet). A wallet
that does not know the chain is offered its descriptor first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			st := a.session.State()
			if st.IsDemo {
				fmt.Fprintln(a.out, ui.Info("Demo mode has no wallet network to switch."))
				return nil
			}
			if st.IsTargetNetwork {
				fmt.Fprintln(a.out, ui.Success("Already on "+a.target.DisplayName))
				return nil
			}
			if !a.session.SwitchNetwork(ctx) {
				return fmt.Errorf("could not switch to %s", a.target.DisplayName)
			}
			fmt.Fprintln(a.out, ui.NetworkLabel(a.session.State(), a.target))
			return nil
		})
	},
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := chain.NewRegistry()
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), registry.All())
		}
		target := registry.Target(cfg.NetworkMode)
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 10},
			{Title: "Network", Width: 24},
			{Title: "Chain ID", Width: 9, Right: true},
			{Title: "RPC", Width: 40},
		})
		for i, c := range registry.All() {
			rpcURL := c.DefaultRPC()
			if custom := cfg.GetRPCs(c.Name); len(custom) > 0 {
				rpcURL = custom[0]
			}
			t.AddRow(ui.Row{c.Name, ui.ChainName(c.DisplayName), strconv.FormatInt(c.ChainID, 10), ui.Meta(rpcURL)})
			if c.ChainID == target.ChainID {
				t.SelIdx = i
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var networkPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Probe the target network's RPC endpoints",
	Long: `Probe every custom and built-in endpoint of the target network and show
latency, head block and whether it serves the right chain.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := chain.NewRegistry().Target(cfg.NetworkMode)
		urls := endpoint.Candidates(*target, cfg.GetRPCs(target.Name))
		if cfg.RPCURL != "" {
			urls = append([]string{cfg.RPCURL}, urls...)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ProviderCallTimeout)
		defer cancel()
		results := endpoint.ProbeAll(ctx, urls, target.ChainID)
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), results)
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Endpoint", Width: 40},
			{Title: "Latency", Width: 9, Right: true},
			{Title: "Block", Width: 10, Right: true},
			{Title: "Status", Width: 24},
		})
		for _, ep := range results {
			status := ui.Success("ok")
			if !ep.Healthy {
				status = ui.Err(ep.Err.Error())
			}
			t.AddRow(ui.Row{
				ep.URL,
				ep.Latency.Round(time.Millisecond).String(),
				strconv.FormatUint(ep.BlockNumber, 10),
				status,
			})
		}
		if best, err := endpoint.Fastest(results); err == nil {
			t.Footer = ui.Row{"fastest: " + best.URL, "", "", ""}
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.ChainName(target.DisplayName))
		fmt.Fprint(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var networkRPCCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage custom RPC endpoints",
}

func rpcChain(name string) (*chain.Chain, error) {
	c, err := chain.NewRegistry().GetByName(name)
	if errors.Is(err, chain.ErrChainNotFound) {
		return nil, fmt.Errorf("unknown network %q (see: heroicdash network list)", name)
	}
	return c, err
}

var networkRPCAddCmd = &cobra.Command{
	Use:   "add <network> <url>",
	Short: "Add a custom RPC endpoint, used before the default",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := rpcChain(args[0])
		if err != nil {
			return err
		}
		if err := cfg.AddRPC(c.Name, args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Added RPC for "+c.DisplayName))
		return nil
	},
}

var networkRPCRemoveCmd = &cobra.Command{
	Use:   "remove <network> <url>",
	Short: "Remove a custom RPC endpoint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := rpcChain(args[0])
		if err != nil {
			return err
		}
		if err := cfg.RemoveRPC(c.Name, args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Removed RPC for "+c.DisplayName))
		return nil
	},
}

func init() {
	networkRPCCmd.AddCommand(networkRPCAddCmd, networkRPCRemoveCmd)
	networkCmd.AddCommand(networkSwitchCmd, networkListCmd, networkPingCmd, networkRPCCmd)
}
