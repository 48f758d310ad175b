package contract

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/KyberNetwork/logger"
	"github.com/Mohsinsiddi/heroicdash/internal/config"
	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
)

// Binding is the dashboard's view of the staking contract and its token.
// Reads and writes never fail outward: when the provider, the contract or an
// amount conversion fails, demo values are returned and tagged as such.
type Binding struct {
	provider      wallet.Injected
	contractAddr  common.Address
	fallbackToken common.Address
	timing        timing

	mu          sync.RWMutex
	initialized bool
	account     common.Address
	dialect     dialect
	contract    handle
	token       handle

	mock *mockState
}

// Option configures a Binding.
type Option func(*Binding)

// WithContractAddress overrides the staking contract address.
func WithContractAddress(addr string) Option {
	return func(b *Binding) {
		if common.IsHexAddress(addr) {
			b.contractAddr = common.HexToAddress(addr)
		}
	}
}

// WithTokenAddress sets the token used when the contract does not report one.
func WithTokenAddress(addr string) Option {
	return func(b *Binding) {
		if common.IsHexAddress(addr) {
			b.fallbackToken = common.HexToAddress(addr)
		}
	}
}

// WithReceiptTimeout bounds how long writes wait to be mined.
func WithReceiptTimeout(d time.Duration) Option {
	return func(b *Binding) {
		if d > 0 {
			b.timing.receiptTimeout = d
		}
	}
}

// WithPollInterval sets how often the receipt is polled.
func WithPollInterval(d time.Duration) Option {
	return func(b *Binding) {
		if d > 0 {
			b.timing.pollInterval = d
		}
	}
}

// New creates a Binding over provider, which may be nil (demo mode).
func New(provider wallet.Injected, opts ...Option) *Binding {
	b := &Binding{
		provider:      provider,
		contractAddr:  common.HexToAddress(config.DefaultContractAddress),
		fallbackToken: common.HexToAddress(config.DefaultTokenAddress),
		timing: timing{
			receiptTimeout: config.TxConfirmTimeout,
			pollInterval:   config.TxPollInterval,
		},
		mock: newMockState(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Setup probes the provider for a dialect and binds the contract and token
// for account. It reports whether a live contract handle exists; failures
// leave the binding initialized in demo mode.
func (b *Binding) Setup(ctx context.Context, account string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.initialized = true
	b.contract, b.token = nil, nil
	b.account = common.Address{}
	if common.IsHexAddress(account) {
		b.account = common.HexToAddress(account)
	}

	b.dialect = probe(b.provider, b.timing)
	if b.dialect == nil {
		logger.WithFields(logger.Fields{
			"account": account,
		}).Debug("No wallet provider, contract binding runs in demo mode")
		return false
	}

	heroic, _ := GetBuiltin("heroic")
	c, err := b.dialect.bind(b.contractAddr, b.account, heroic.ABI)
	if err != nil {
		logger.WithFields(logger.Fields{
			"address": b.contractAddr.Hex(),
			"dialect": b.dialect.Name(),
			"error":   err,
		}).Error("Failed to bind contract")
		return false
	}

	tokenAddr := b.fallbackToken
	if out, err := c.Call(ctx, "USDT"); err == nil {
		if addr, err := asAddress(out, 0); err == nil && addr != (common.Address{}) {
			tokenAddr = addr
		}
	} else {
		logger.WithFields(logger.Fields{
			"method":  "USDT",
			"address": b.contractAddr.Hex(),
			"error":   err,
		}).Warn("Token address lookup failed, using default")
	}

	token, _ := GetBuiltin("token")
	t, err := b.dialect.bind(tokenAddr, b.account, token.ABI)
	if err != nil {
		logger.WithFields(logger.Fields{
			"address": tokenAddr.Hex(),
			"error":   err,
		}).Error("Failed to bind token")
		return false
	}

	b.contract, b.token = c, t
	logger.WithFields(logger.Fields{
		"dialect":  b.dialect.Name(),
		"contract": b.contractAddr.Hex(),
		"token":    tokenAddr.Hex(),
	}).Info("Contract binding ready")
	return true
}

// signer returns the wallet's current account, or the previously bound one
// when the wallet does not report any.
func (b *Binding) signer(ctx context.Context) string {
	if b.provider != nil {
		if raw, err := b.provider.Request(ctx, "eth_accounts"); err == nil {
			var accounts []string
			if err := json.Unmarshal(raw, &accounts); err == nil && len(accounts) > 0 {
				return accounts[0]
			}
		}
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.account == (common.Address{}) {
		return ""
	}
	return b.account.Hex()
}

// Reset drops the handles so the next Setup rebinds (after a chain change).
func (b *Binding) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initialized = false
	b.dialect, b.contract, b.token = nil, nil, nil
}

// Initialized reports whether Setup has run since the last Reset.
func (b *Binding) Initialized() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initialized
}

// Live reports whether a contract handle is bound.
func (b *Binding) Live() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contract != nil
}

// DialectName returns the active dialect, or "demo".
func (b *Binding) DialectName() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.dialect == nil {
		return "demo"
	}
	return b.dialect.Name()
}

// ContractAddress returns the staking contract address.
func (b *Binding) ContractAddress() string {
	return b.contractAddr.Hex()
}

// TokenAddress returns the bound token address, or the fallback before Setup.
func (b *Binding) TokenAddress() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.token != nil {
		return b.token.Address().Hex()
	}
	return b.fallbackToken.Hex()
}

// ToDecimalString converts a fixed-point amount to a decimal string in the
// active dialect's format. It returns "0" when conversion fails.
func (b *Binding) ToDecimalString(raw *big.Int) string {
	s, err := b.units().toDecimal(raw, Decimals)
	if err != nil {
		logger.WithFields(logger.Fields{
			"error": err,
		}).Warn("Amount conversion failed")
		return "0"
	}
	return s
}

// ToFixedPoint converts a decimal string to fixed point. Errors wrap
// ErrConversion.
func (b *Binding) ToFixedPoint(s string) (*big.Int, error) {
	n, err := b.units().toFixed(s, Decimals)
	if err != nil {
		return nil, fmt.Errorf("to fixed point: %w", err)
	}
	return n, nil
}

func (b *Binding) units() units {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.dialect == nil {
		return ratUnits{}
	}
	return b.dialect
}

func (b *Binding) handles() (contract, token handle) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.contract, b.token
}
