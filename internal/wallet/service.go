package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/KyberNetwork/logger"
	"github.com/Mohsinsiddi/heroicdash/internal/chain"
	"github.com/goccy/go-json"
)

// Service is the dashboard's view of a wallet provider. Every method degrades
// to an empty, false or zero result when no provider is present.
type Service struct {
	provider Injected
	registry *chain.Registry
}

// NewService wraps p, which may be nil. The registry supplies the descriptors
// used to register unknown chains with the wallet.
func NewService(p Injected, registry *chain.Registry) *Service {
	if registry == nil {
		registry = chain.NewRegistry()
	}
	return &Service{provider: p, registry: registry}
}

// IsAvailable reports whether a wallet provider is present.
func (s *Service) IsAvailable() bool {
	return s.provider != nil
}

// IsMetaMask reports whether the provider advertises the MetaMask flag.
func (s *Service) IsMetaMask() bool {
	f, ok := s.provider.(Flags)
	return ok && f.IsMetaMask()
}

// Provider returns the underlying provider (nil when unavailable).
func (s *Service) Provider() Injected {
	return s.provider
}

// ChainID returns the wallet's current chain. ok is false on any failure.
func (s *Service) ChainID(ctx context.Context) (int64, bool) {
	if s.provider == nil {
		return 0, false
	}
	raw, err := s.provider.Request(ctx, "eth_chainId")
	if err != nil {
		logger.WithFields(logger.Fields{
			"method": "eth_chainId",
			"error":  err,
		}).Warn("Failed to read chain id")
		return 0, false
	}
	var hexID string
	if err := json.Unmarshal(raw, &hexID); err != nil {
		return 0, false
	}
	id, err := chain.ParseHexID(hexID)
	if err != nil {
		return 0, false
	}
	return id, true
}

// RequestAccounts prompts the wallet for account access. A user decline is
// reported as ErrUserRejected.
func (s *Service) RequestAccounts(ctx context.Context) ([]string, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}
	raw, err := s.provider.Request(ctx, "eth_requestAccounts")
	if err != nil {
		if errors.Is(err, ErrUserRejected) {
			return nil, fmt.Errorf("request accounts: %w", ErrUserRejected)
		}
		return nil, fmt.Errorf("request accounts: %w", err)
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("decoding accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	return accounts, nil
}

// Accounts returns the already-authorized accounts without prompting.
func (s *Service) Accounts(ctx context.Context) []string {
	if s.provider == nil {
		return []string{}
	}
	raw, err := s.provider.Request(ctx, "eth_accounts")
	if err != nil {
		logger.WithFields(logger.Fields{
			"method": "eth_accounts",
			"error":  err,
		}).Warn("Failed to read accounts")
		return []string{}
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return []string{}
	}
	return accounts
}

// SwitchNetwork asks the wallet to switch to chainID. An unrecognized chain
// is registered from the chain registry and the switch retried once.
func (s *Service) SwitchNetwork(ctx context.Context, chainID int64) bool {
	if s.provider == nil {
		return false
	}
	hexID := chain.HexID(chainID)
	err := s.switchTo(ctx, hexID)
	if err == nil {
		return true
	}
	if Code(err) != CodeUnrecognizedChain {
		logger.WithFields(logger.Fields{
			"chain_id": chainID,
			"error":    err,
		}).Warn("Network switch failed")
		return false
	}

	c, lookupErr := s.registry.GetByChainID(chainID)
	if lookupErr != nil {
		logger.WithFields(logger.Fields{
			"chain_id": chainID,
		}).Warn("Wallet does not know chain and no descriptor is registered")
		return false
	}
	if _, err := s.provider.Request(ctx, "wallet_addEthereumChain", c.AddParams()); err != nil {
		logger.WithFields(logger.Fields{
			"chain_id": chainID,
			"error":    err,
		}).Warn("Adding chain to wallet failed")
		return false
	}
	if err := s.switchTo(ctx, hexID); err != nil {
		logger.WithFields(logger.Fields{
			"chain_id": chainID,
			"error":    err,
		}).Warn("Network switch failed after adding chain")
		return false
	}
	return true
}

func (s *Service) switchTo(ctx context.Context, hexID string) error {
	_, err := s.provider.Request(ctx, "wallet_switchEthereumChain", map[string]string{"chainId": hexID})
	return err
}

// OnAccountsChanged subscribes to account changes.
func (s *Service) OnAccountsChanged(fn func(accounts []string)) (remove func()) {
	if s.provider == nil {
		return func() {}
	}
	return s.provider.On(EventAccountsChanged, func(payload any) {
		fn(toAccounts(payload))
	})
}

// OnChainChanged subscribes to chain changes. Unparseable ids are dropped.
func (s *Service) OnChainChanged(fn func(chainID int64)) (remove func()) {
	if s.provider == nil {
		return func() {}
	}
	return s.provider.On(EventChainChanged, func(payload any) {
		hexID, _ := payload.(string)
		id, err := chain.ParseHexID(hexID)
		if err != nil {
			logger.WithFields(logger.Fields{
				"payload": payload,
			}).Warn("Ignoring malformed chainChanged event")
			return
		}
		fn(id)
	})
}

// OnDisconnect subscribes to provider disconnection.
func (s *Service) OnDisconnect(fn func(err error)) (remove func()) {
	if s.provider == nil {
		return func() {}
	}
	return s.provider.On(EventDisconnect, func(payload any) {
		err, _ := payload.(error)
		fn(err)
	})
}

// FormatAddress shortens an address to 0x1234...abcd.
func FormatAddress(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func toAccounts(payload any) []string {
	switch v := payload.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, a := range v {
			if s, ok := a.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}
