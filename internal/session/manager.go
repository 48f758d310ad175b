package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/KyberNetwork/logger"
	"github.com/Mohsinsiddi/heroicdash/internal/chain"
	"github.com/Mohsinsiddi/heroicdash/internal/config"
	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
)

// Wallet is the wallet surface the session drives. *wallet.Service
// implements it.
type Wallet interface {
	IsAvailable() bool
	IsMetaMask() bool
	ChainID(ctx context.Context) (int64, bool)
	RequestAccounts(ctx context.Context) ([]string, error)
	Accounts(ctx context.Context) []string
	SwitchNetwork(ctx context.Context, chainID int64) bool
	OnAccountsChanged(fn func(accounts []string)) (remove func())
	OnChainChanged(fn func(chainID int64)) (remove func())
	OnDisconnect(fn func(err error)) (remove func())
}

// Contract is the contract surface the session reads. *contract.Binding
// implements it.
type Contract interface {
	Setup(ctx context.Context, account string) bool
	Initialized() bool
	Reset()
	IsOwner(ctx context.Context, account string) contract.Reading[bool]
	UserData(ctx context.Context, account string) contract.Reading[contract.User]
	Limits(ctx context.Context) contract.Reading[contract.Limits]
	Paused(ctx context.Context) contract.Reading[bool]
}

// Manager owns the session state.
type Manager struct {
	wallet   Wallet
	contract Contract
	notifier Notifier
	target   chain.Chain

	attempts   int
	retryDelay time.Duration

	mu    sync.Mutex
	state State
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier sets the notice sink.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithTargetChain sets the chain the dashboard expects.
func WithTargetChain(c chain.Chain) Option {
	return func(m *Manager) { m.target = c }
}

// WithRetry sets the attempts and fixed delay for refresh reads.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(m *Manager) {
		if attempts > 0 {
			m.attempts = attempts
		}
		if delay >= 0 {
			m.retryDelay = delay
		}
	}
}

// New creates a disconnected session.
func New(w Wallet, c Contract, opts ...Option) *Manager {
	m := &Manager{
		wallet:     w,
		contract:   c,
		notifier:   nopNotifier{},
		target:     *chain.NewRegistry().Target("mainnet"),
		attempts:   config.RefreshRetryAttempts,
		retryDelay: config.RefreshRetryDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.state.MetaMask = w.IsMetaMask()
	return m
}

// State returns a copy of the session.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Target returns the expected chain.
func (m *Manager) Target() chain.Chain {
	return m.target
}

func (m *Manager) update(fn func(s *State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.state)
}

func (m *Manager) notify(kind Kind, level Level, title, message string) {
	m.notifier.Notify(Notice{Kind: kind, Level: level, Title: title, Message: message})
}

// Connect connects the wallet. Without a wallet provider the session enters
// demo mode and Connect never fails. A declined prompt returns an error
// matching wallet.ErrUserRejected.
func (m *Manager) Connect(ctx context.Context) error {
	m.update(func(s *State) { s.Connecting = true })
	defer m.update(func(s *State) { s.Connecting = false })

	if !m.wallet.IsAvailable() {
		m.connectDemo(ctx)
		return nil
	}

	accounts, err := m.wallet.RequestAccounts(ctx)
	if err != nil {
		m.reset()
		if errors.Is(err, wallet.ErrUserRejected) {
			m.notify(KindUserRejected, LevelError, "Connection Cancelled", "You rejected the connection request.")
		} else {
			m.notify(KindConnectionError, LevelError, "Connection Error", connectMessage(err))
		}
		logger.WithFields(logger.Fields{
			"error": err,
		}).Warn("Wallet connection failed")
		return fmt.Errorf("connect: %w", err)
	}

	account := accounts[0]
	m.update(func(s *State) {
		s.Account = account
		s.Connected = true
		s.IsDemo = false
	})
	m.notify(KindConnected, LevelInfo, "Wallet Connected", "Connected to "+wallet.FormatAddress(account))

	m.CheckNetwork(ctx)

	live := m.contract.Setup(ctx, account)
	if !live {
		m.notify(KindDataFallback, LevelWarning, "Warning",
			"Connected with limited functionality. Some features may use simulated data.")
	}
	m.load(ctx, account, !live)

	logger.WithFields(logger.Fields{
		"account": account,
		"live":    live,
	}).Info("Wallet connected")
	return nil
}

func (m *Manager) connectDemo(ctx context.Context) {
	m.update(func(s *State) {
		s.Account = contract.MockAddress
		s.Connected = true
		s.IsDemo = true
	})
	m.notify(KindDemo, LevelInfo, "Demo Mode Active",
		"Connected with a demo wallet. Some features will use simulated data.")
	m.load(ctx, contract.MockAddress, true)
	logger.WithFields(logger.Fields{
		"account": contract.MockAddress,
	}).Info("Session running in demo mode")
}

// load reads ownership, user data, limits and pause state once.
func (m *Manager) load(ctx context.Context, account string, demo bool) {
	var owner bool
	if !demo {
		owner = m.contract.IsOwner(ctx, account).Value
	}
	user := m.contract.UserData(ctx, account)
	limits := m.contract.Limits(ctx)
	paused := m.contract.Paused(ctx)

	m.update(func(s *State) {
		s.IsDemo = demo
		s.IsOwner = owner
		s.User, s.UserSource, s.UserAccount = &user.Value, user.Source, account
		s.Limits, s.LimitsSource = &limits.Value, limits.Source
		s.Paused = paused.Value
	})
}

// Disconnect ends the session.
func (m *Manager) Disconnect() {
	m.reset()
	m.notify(KindDisconnected, LevelInfo, "Wallet Disconnected", "Your wallet has been disconnected.")
}

func (m *Manager) reset() {
	m.update(func(s *State) {
		s.Connected = false
		s.Account = ""
		s.IsDemo = false
		s.clearUser()
	})
}

// Restore reconnects to an already-authorized account without prompting.
// It reports whether a session was restored.
func (m *Manager) Restore(ctx context.Context) bool {
	if !m.wallet.IsAvailable() {
		logger.WithFields(logger.Fields{
			"target": m.target.ChainID,
		}).Debug("No wallet provider available, nothing to restore")
		return false
	}
	accounts := m.wallet.Accounts(ctx)
	if len(accounts) == 0 {
		return false
	}
	account := accounts[0]
	m.update(func(s *State) {
		s.Account = account
		s.Connected = true
		s.IsDemo = false
	})
	m.contract.Setup(ctx, account)
	m.Refresh(ctx)
	return true
}

// CheckNetwork reads the wallet's chain and reports whether it is the
// target. A mismatch while connected raises a notice.
func (m *Manager) CheckNetwork(ctx context.Context) bool {
	id, ok := m.wallet.ChainID(ctx)
	onTarget := ok && id == m.target.ChainID

	var connected bool
	m.update(func(s *State) {
		s.Network = Network{ChainID: id, Known: ok}
		s.IsTargetNetwork = onTarget
		connected = s.Connected && s.Account != "" && !s.IsDemo
	})

	if connected && ok && !onTarget {
		m.notify(KindNetworkMismatch, LevelError, "Wrong Network Detected",
			fmt.Sprintf("Please switch to %s to use the dashboard.", m.target.DisplayName))
	}
	return onTarget
}

// SwitchNetwork asks the wallet to move to the target chain.
func (m *Manager) SwitchNetwork(ctx context.Context) bool {
	if !m.wallet.SwitchNetwork(ctx, m.target.ChainID) {
		m.notify(KindNetworkError, LevelError, "Network Error",
			fmt.Sprintf("Failed to switch to %s. Please try again.", m.target.DisplayName))
		return false
	}
	m.notify(KindNetworkSwitched, LevelInfo, "Network Switched",
		fmt.Sprintf("Successfully switched to %s.", m.target.DisplayName))

	m.CheckNetwork(ctx)
	if st := m.State(); st.Connected && st.Account != "" {
		m.contract.Reset()
		m.Refresh(ctx)
	}
	return true
}

func connectMessage(err error) string {
	switch {
	case errors.Is(err, wallet.ErrNoAccounts):
		return "No accounts found. Please make sure your wallet is unlocked."
	case err != nil && strings.TrimSpace(err.Error()) != "":
		return err.Error()
	}
	return "Failed to connect wallet. Please try again."
}
