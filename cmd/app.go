package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/KyberNetwork/logger"
	"github.com/Mohsinsiddi/heroicdash/internal/chain"
	"github.com/Mohsinsiddi/heroicdash/internal/config"
	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/Mohsinsiddi/heroicdash/internal/endpoint"
	"github.com/Mohsinsiddi/heroicdash/internal/session"
	"github.com/Mohsinsiddi/heroicdash/internal/ui"
	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/spf13/cobra"
)

// app wires the wallet provider, contract binding and session for one
// command invocation.
type app struct {
	out      io.Writer
	registry *chain.Registry
	target   chain.Chain
	provider wallet.Injected
	wallet   *wallet.Service
	binding  *contract.Binding
	session  *session.Manager
	relay    *ui.Relay
	prompter *ui.Prompter
	closer   func()
}

// newApp builds the stack for cmd from the loaded config. A missing or
// unusable wallet is not an error: the app falls back to demo mode.
func newApp(cmd *cobra.Command) (*app, error) {
	registry := chain.NewRegistry()
	mode := "mainnet"
	if cfg.IsTestnet() {
		mode = "testnet"
	}

	a := &app{
		out:      cmd.OutOrStdout(),
		registry: registry,
		target:   *registry.Target(mode),
		prompter: ui.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
		closer:   func() {},
	}
	a.relay = ui.NewRelay(ui.NewNotifier(cmd.ErrOrStderr()))

	provider, closer, err := a.dialProvider(cmd.Context())
	if err != nil {
		return nil, err
	}
	if provider != nil {
		a.provider, a.closer = provider, closer
	}

	a.wallet = wallet.NewService(a.provider, registry)
	a.binding = contract.New(a.provider,
		contract.WithContractAddress(cfg.ContractAddress),
		contract.WithTokenAddress(cfg.TokenAddress),
		contract.WithReceiptTimeout(config.TxConfirmTimeout),
		contract.WithPollInterval(config.TxPollInterval),
	)
	a.session = session.New(a.wallet, a.binding,
		session.WithNotifier(a.relay),
		session.WithTargetChain(a.target),
		session.WithRetry(cfg.Attempts(), cfg.RetryDelay()),
	)
	return a, nil
}

// Close releases the provider connection.
func (a *app) Close() {
	a.closer()
}

// rpcURL is the node endpoint for the target chain: the configured override,
// otherwise the best of the custom and registry endpoints.
func (a *app) rpcURL(ctx context.Context) string {
	if cfg.RPCURL != "" {
		return cfg.RPCURL
	}
	urls := endpoint.Candidates(a.target, cfg.GetRPCs(a.target.Name))
	url, err := endpoint.Select(ctx, urls, a.target.ChainID, endpoint.Strategy(cfg.RPCStrategy))
	if err != nil {
		logger.WithFields(logger.Fields{
			"chain":    a.target.Name,
			"strategy": cfg.RPCStrategy,
			"error":    err,
		}).Warn("Endpoint selection failed, using the first candidate")
		if len(urls) == 0 {
			return ""
		}
		return urls[0]
	}
	return url
}

func (a *app) dialProvider(ctx context.Context) (wallet.Injected, func(), error) {
	switch cfg.Provider {
	case config.ProviderNone:
		return nil, nil, nil

	case config.ProviderRPC:
		dctx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
		defer cancel()
		p, err := wallet.DialRPC(dctx, a.rpcURL(dctx), wallet.WithPollInterval(cfg.Poll()))
		if err != nil {
			a.fallback("Could not reach the node", err)
			return nil, nil, nil
		}
		return p, p.Close, nil

	case config.ProviderKeyed, "":
		key, err := newBook().PrivateKey(cfg.DefaultWallet)
		if errors.Is(err, wallet.ErrWalletNotFound) {
			a.fallback("No wallet configured", err)
			return nil, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}
		dctx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
		defer cancel()
		node, err := rpc.DialContext(dctx, a.rpcURL(dctx))
		if err != nil {
			a.fallback("Could not reach the node", err)
			return nil, nil, nil
		}
		p := wallet.NewKeyedProvider(node, key,
			wallet.WithChainRegistry(a.registry),
			wallet.WithCustomRPCs(cfg.GetRPCs),
			wallet.WithApproval(a.approve),
		)
		return p, p.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown provider %q (use keyed, rpc or none)", cfg.Provider)
}

func (a *app) approve(_ context.Context, account string) bool {
	if assumeYes {
		return true
	}
	return a.prompter.Confirm(fmt.Sprintf("Connect %s to the dashboard?", wallet.FormatAddress(account)))
}

func (a *app) fallback(reason string, err error) {
	logger.WithFields(logger.Fields{
		"provider": cfg.Provider,
		"error":    err,
	}).Warn("Wallet provider unavailable, using demo mode")
	a.relay.Notify(session.Notice{
		Kind:    session.KindDataFallback,
		Level:   session.LevelWarning,
		Title:   reason,
		Message: "Continuing in demo mode.",
	})
}

// connect restores an authorized session or prompts for one.
func (a *app) connect(ctx context.Context) error {
	if a.session.Restore(ctx) {
		return nil
	}
	return a.session.Connect(ctx)
}

// account is the connected account; it errors when the session is not
// connected.
func (a *app) account() (string, error) {
	st := a.session.State()
	if !st.Connected || st.Account == "" {
		return "", errors.New("wallet not connected")
	}
	return st.Account, nil
}

// symbol is the token symbol for display.
func (a *app) symbol(ctx context.Context) string {
	return a.binding.TokenSymbol(ctx).Value
}

// withApp opens an app with a bounded context, connects, and runs fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), config.CommandTimeout)
	defer cancel()
	return withAppContext(ctx, cmd, fn)
}

// withWriteApp is withApp with room for a receipt wait.
func withWriteApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), config.CommandTimeout+config.TxConfirmTimeout)
	defer cancel()
	return withAppContext(ctx, cmd, fn)
}

func withAppContext(ctx context.Context, cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.connect(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

// newBook opens the wallet book. Tests swap it for an in-memory one.
var newBook = func() *wallet.Book {
	return wallet.NewBook(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore()),
	)
}

func errLine(err error) string {
	return ui.Err(err.Error())
}
