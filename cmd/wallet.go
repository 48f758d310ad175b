package cmd

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/heroicdash/internal/config"
	"github.com/Mohsinsiddi/heroicdash/internal/ui"
	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var importKey string

// keyEnv is the import fallback when --key is not given.
type keyEnv struct {
	Key string `env:"HEROICDASH_KEY"`
}

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage keyed wallets",
	Long: `Keyed wallets sign with a private key held in the OS keychain. The
default wallet is the one connect and the write commands use.`,
}

var walletImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a private key into the keychain",
	Long: `Import a hex private key under a name. The key is read from --key or the
HEROICDASH_KEY environment variable. The first wallet becomes the default.

Examples:
  heroicdash wallet import main --key 0xac09...
  HEROICDASH_KEY=0xac09... heroicdash wallet import main`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := importKey
		if key == "" {
			var env keyEnv
			if err := config.ParseEnv(&env); err != nil {
				return err
			}
			key = env.Key
		}
		if key == "" {
			return errors.New("no private key given (use --key or HEROICDASH_KEY)")
		}

		w, err := newBook().Import(args[0], key)
		if err != nil {
			return err
		}
		if w.IsDefault && cfg.DefaultWallet == "" {
			cfg.DefaultWallet = w.Name
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, w)
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Imported %s (%s)", w.Name, w.Address)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List keyed wallets",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets, err := newBook().List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, wallets)
		}
		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets yet."))
			fmt.Fprintln(out, ui.Hint("Import one with: heroicdash wallet import <name> --key <hex>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 42},
			{Title: "Default", Width: 7},
		})
		for i, w := range wallets {
			mark := ""
			if isDefault(w) {
				mark = "★"
				t.SelIdx = i
			}
			t.AddRow(ui.Row{w.Name, ui.Addr(w.Address), mark})
		}
		fmt.Fprint(out, t.Render())
		return nil
	},
}

// isDefault honours the config's wallet over the book's flag.
func isDefault(w *wallet.Wallet) bool {
	if cfg.DefaultWallet != "" {
		return w.Name == cfg.DefaultWallet
	}
	return w.IsDefault
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet",
	Long:  "Set the default wallet. Without a name an interactive picker is shown.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book := newBook()
		var name string
		if len(args) > 0 {
			name = args[0]
		} else {
			wallets, err := book.List()
			if err != nil {
				return err
			}
			items := make([]ui.PickerItem, 0, len(wallets))
			for _, w := range wallets {
				items = append(items, ui.PickerItem{
					Label:    w.Name,
					SubLabel: wallet.FormatAddress(w.Address),
					Value:    w.Name,
					Current:  isDefault(w),
				})
			}
			name, err = ui.PickItem("Select the default wallet", items,
				tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.ErrOrStderr()))
			if errors.Is(err, ui.ErrNothingToPick) {
				return errors.New("no wallets to choose from")
			}
			if err != nil {
				return err
			}
			if name == "" {
				return errCanceled
			}
		}

		if err := book.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Default wallet: "+name))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a wallet and its stored key",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		book := newBook()
		if _, err := book.Get(name); err != nil {
			return err
		}
		prompter := ui.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
		if !assumeYes && !prompter.ConfirmDanger(fmt.Sprintf("Remove wallet %s and delete its key?", name)) {
			return errCanceled
		}
		if err := book.Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Removed "+name))
		return nil
	},
}

func init() {
	walletImportCmd.Flags().StringVar(&importKey, "key", "", "hex private key")
	walletCmd.AddCommand(walletImportCmd, walletListCmd, walletUseCmd, walletRemoveCmd)
}
