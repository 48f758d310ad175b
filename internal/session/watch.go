package session

import (
	"context"
	"strings"
	"sync"

	"github.com/KyberNetwork/logger"
	"github.com/Mohsinsiddi/heroicdash/internal/chain"
	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
)

// Watch subscribes to wallet events and checks the network once. Event
// driven refreshes run in the background under ctx. The returned func
// unsubscribes and waits for running refreshes.
func (m *Manager) Watch(ctx context.Context) (release func()) {
	var wg sync.WaitGroup
	background := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	removeAccounts := m.wallet.OnAccountsChanged(func(accounts []string) {
		m.handleAccounts(ctx, accounts, background)
	})
	removeChain := m.wallet.OnChainChanged(func(chainID int64) {
		m.handleChain(ctx, chainID, background)
	})
	removeDisconnect := m.wallet.OnDisconnect(func(err error) {
		logger.WithFields(logger.Fields{
			"error": err,
		}).Info("Wallet provider disconnected")
		m.reset()
		m.notify(KindDisconnected, LevelInfo, "Wallet Disconnected", "Your wallet connection was terminated.")
	})

	m.CheckNetwork(ctx)

	var once sync.Once
	return func() {
		once.Do(func() {
			removeAccounts()
			removeChain()
			removeDisconnect()
			wg.Wait()
		})
	}
}

func (m *Manager) handleAccounts(ctx context.Context, accounts []string, background func(func())) {
	if len(accounts) == 0 {
		m.Disconnect()
		return
	}
	next := accounts[0]

	var changed bool
	m.update(func(s *State) {
		if s.Connected && !strings.EqualFold(s.Account, next) {
			s.Account = next
			s.clearUser()
			changed = true
		}
	})
	if !changed {
		return
	}

	m.notify(KindAccountChanged, LevelInfo, "Account Changed", "Switched to "+wallet.FormatAddress(next))
	m.contract.Reset()
	background(func() { m.Refresh(ctx) })
}

func (m *Manager) handleChain(ctx context.Context, chainID int64, background func(func())) {
	onTarget := chainID == m.target.ChainID

	var connected bool
	m.update(func(s *State) {
		s.Network = Network{ChainID: chainID, Known: true}
		s.IsTargetNetwork = onTarget
		connected = s.Connected && s.Account != ""
	})

	if onTarget {
		m.notify(KindNetworkChanged, LevelInfo, "Network Changed", "Connected to "+m.target.DisplayName+".")
	} else {
		m.notify(KindNetworkChanged, LevelError, "Network Changed",
			"Connected to "+networkName(chainID)+". Some features may not work.")
	}

	m.contract.Reset()
	if connected {
		background(func() { m.Refresh(ctx) })
	}
}

func networkName(chainID int64) string {
	if c, err := chain.NewRegistry().GetByChainID(chainID); err == nil {
		return c.DisplayName
	}
	return "a different network"
}
