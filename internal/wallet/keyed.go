package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/KyberNetwork/logger"
	"github.com/Mohsinsiddi/heroicdash/internal/chain"
	"github.com/Mohsinsiddi/heroicdash/internal/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goccy/go-json"
)

// ApproveFunc decides whether account may be exposed to the dashboard.
type ApproveFunc func(ctx context.Context, account string) bool

// KeyedProvider is a local signing wallet over a node connection. It answers
// account, signing and chain-management requests itself and forwards the rest.
type KeyedProvider struct {
	mu       sync.Mutex
	node     *rpc.Client
	chainID  int64 // 0 until first queried
	approved bool
	added    map[int64]chain.Chain

	key      *ecdsa.PrivateKey
	address  common.Address
	approve  ApproveFunc
	registry *chain.Registry
	custom   func(chainName string) []string
	dial     func(ctx context.Context, url string) (*rpc.Client, error)
	events   emitter
}

// KeyedOption configures a KeyedProvider.
type KeyedOption func(*KeyedProvider)

// WithApproval sets the hook consulted by eth_requestAccounts.
func WithApproval(fn ApproveFunc) KeyedOption {
	return func(p *KeyedProvider) { p.approve = fn }
}

// WithChainRegistry sets the chains wallet_switchEthereumChain may move to.
func WithChainRegistry(r *chain.Registry) KeyedOption {
	return func(p *KeyedProvider) { p.registry = r }
}

// WithCustomRPCs sets a lookup for user-configured RPCs tried before the
// registry defaults when switching chains.
func WithCustomRPCs(fn func(chainName string) []string) KeyedOption {
	return func(p *KeyedProvider) { p.custom = fn }
}

// WithDialer overrides how RPC endpoints are dialed on chain switch.
func WithDialer(fn func(ctx context.Context, url string) (*rpc.Client, error)) KeyedOption {
	return func(p *KeyedProvider) { p.dial = fn }
}

// NewKeyedProvider creates a signing wallet for key over node.
func NewKeyedProvider(node *rpc.Client, key *ecdsa.PrivateKey, opts ...KeyedOption) *KeyedProvider {
	p := &KeyedProvider{
		node:     node,
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
		approve:  func(context.Context, string) bool { return true },
		registry: chain.NewRegistry(),
		custom:   func(string) []string { return nil },
		dial:     rpc.DialContext,
		added:    make(map[int64]chain.Chain),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Address returns the wallet address.
func (p *KeyedProvider) Address() common.Address {
	return p.address
}

// Request handles an EIP-1193 request.
func (p *KeyedProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	switch method {
	case "eth_requestAccounts":
		if !p.isApproved() {
			if !p.approve(ctx, p.address.Hex()) {
				return nil, rejected()
			}
			p.mu.Lock()
			p.approved = true
			p.mu.Unlock()
		}
		return encodeResult([]string{p.address.Hex()})

	case "eth_accounts":
		if !p.isApproved() {
			return encodeResult([]string{})
		}
		return encodeResult([]string{p.address.Hex()})

	case "eth_chainId":
		id, err := p.currentChainID(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResult(chain.HexID(id))

	case "eth_sendTransaction":
		var args txArgs
		if err := decodeParam(params, 0, &args); err != nil {
			return nil, invalidParams(err)
		}
		hash, err := p.sendTransaction(ctx, args)
		if err != nil {
			return nil, err
		}
		return encodeResult(hash)

	case "personal_sign":
		var data, account string
		if err := decodeParam(params, 0, &data); err != nil {
			return nil, invalidParams(err)
		}
		if err := decodeParam(params, 1, &account); err != nil {
			return nil, invalidParams(err)
		}
		return p.personalSign(data, account)

	case "wallet_switchEthereumChain":
		var req struct {
			ChainID string `json:"chainId"`
		}
		if err := decodeParam(params, 0, &req); err != nil {
			return nil, invalidParams(err)
		}
		if err := p.switchChain(ctx, req.ChainID); err != nil {
			return nil, err
		}
		return encodeResult(nil)

	case "wallet_addEthereumChain":
		var req chain.AddChainParams
		if err := decodeParam(params, 0, &req); err != nil {
			return nil, invalidParams(err)
		}
		c, err := chain.FromAddParams(req)
		if err != nil {
			return nil, invalidParams(err)
		}
		p.mu.Lock()
		p.added[c.ChainID] = c
		p.mu.Unlock()
		return encodeResult(nil)

	case "wallet_revokePermissions":
		p.mu.Lock()
		was := p.approved
		p.approved = false
		p.mu.Unlock()
		if was {
			p.events.Emit(EventAccountsChanged, []string{})
		}
		return encodeResult(nil)
	}

	var raw json.RawMessage
	if err := p.nodeClient().CallContext(ctx, &raw, method, params...); err != nil {
		return nil, mapRPCError(ctx, err)
	}
	return raw, nil
}

// On subscribes to a provider event.
func (p *KeyedProvider) On(event string, fn Listener) func() {
	return p.events.On(event, fn)
}

// Client returns a go-ethereum client on the current node connection.
func (p *KeyedProvider) Client() *ethclient.Client {
	return ethclient.NewClient(p.nodeClient())
}

// Transactor returns signing options for go-ethereum bindings. The account
// must have been approved through eth_requestAccounts.
func (p *KeyedProvider) Transactor(ctx context.Context) (*bind.TransactOpts, error) {
	if !p.isApproved() {
		return nil, &ProviderError{Code: CodeUnauthorized, Message: "account not authorized"}
	}
	id, err := p.currentChainID(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(p.key, big.NewInt(id))
	if err != nil {
		return nil, fmt.Errorf("building transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

// Close disconnects from the node and notifies subscribers.
func (p *KeyedProvider) Close() {
	p.nodeClient().Close()
	p.events.Emit(EventDisconnect, &ProviderError{Code: CodeDisconnected, Message: "provider closed"})
}

// --- internals ---

type txArgs struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Data  string `json:"data"`
	Input string `json:"input"`
	Value string `json:"value"`
	Gas   string `json:"gas"`
}

func (p *KeyedProvider) isApproved() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.approved
}

func (p *KeyedProvider) nodeClient() *rpc.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.node
}

func (p *KeyedProvider) currentChainID(ctx context.Context) (int64, error) {
	p.mu.Lock()
	id, node := p.chainID, p.node
	p.mu.Unlock()
	if id != 0 {
		return id, nil
	}

	var hexID string
	if err := node.CallContext(ctx, &hexID, "eth_chainId"); err != nil {
		return 0, mapRPCError(ctx, err)
	}
	id, err := chain.ParseHexID(hexID)
	if err != nil {
		return 0, &ProviderError{Code: CodeInternal, Message: err.Error()}
	}

	p.mu.Lock()
	if p.node == node {
		p.chainID = id
	}
	p.mu.Unlock()
	return id, nil
}

// sendTransaction builds, London-signs and broadcasts a dynamic-fee transaction.
func (p *KeyedProvider) sendTransaction(ctx context.Context, args txArgs) (string, error) {
	if !p.isApproved() {
		return "", &ProviderError{Code: CodeUnauthorized, Message: "account not authorized"}
	}
	if args.From != "" && !strings.EqualFold(args.From, p.address.Hex()) {
		return "", &ProviderError{Code: CodeUnauthorized, Message: "unknown account " + args.From}
	}
	if !common.IsHexAddress(args.To) {
		return "", invalidParams(fmt.Errorf("invalid to address %q", args.To))
	}

	chainID, err := p.currentChainID(ctx)
	if err != nil {
		return "", err
	}
	to := common.HexToAddress(args.To)

	input := args.Data
	if input == "" {
		input = args.Input
	}
	var data []byte
	if input != "" {
		if data, err = hexutil.Decode(input); err != nil {
			return "", invalidParams(fmt.Errorf("data: %w", err))
		}
	}
	value := big.NewInt(0)
	if args.Value != "" {
		if value, err = hexutil.DecodeBig(args.Value); err != nil {
			return "", invalidParams(fmt.Errorf("value: %w", err))
		}
	}

	node := p.nodeClient()
	eth := ethclient.NewClient(node)

	var gas uint64
	if args.Gas != "" {
		if gas, err = hexutil.DecodeUint64(args.Gas); err != nil {
			return "", invalidParams(fmt.Errorf("gas: %w", err))
		}
	} else {
		gas, err = eth.EstimateGas(ctx, ethereum.CallMsg{From: p.address, To: &to, Data: data, Value: value})
		if err != nil {
			logger.WithFields(logger.Fields{
				"to":    to.Hex(),
				"error": err,
			}).Debug("Gas estimation failed, using fallback limit")
			gas = fallbackGas(data)
		}
	}

	gasPrice, err := eth.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("getting gas price: %w", mapRPCError(ctx, err))
	}
	nonce, err := eth.PendingNonceAt(ctx, p.address)
	if err != nil {
		return "", fmt.Errorf("getting nonce: %w", mapRPCError(ctx, err))
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(chainID),
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	})

	raw, err := signTx(p.key, tx, big.NewInt(chainID))
	if err != nil {
		return "", err
	}

	var hash string
	if err := node.CallContext(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(raw)); err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", mapRPCError(ctx, err))
	}
	return hash, nil
}

func (p *KeyedProvider) personalSign(data, account string) (json.RawMessage, error) {
	if !p.isApproved() || !strings.EqualFold(account, p.address.Hex()) {
		return nil, &ProviderError{Code: CodeUnauthorized, Message: "account not authorized"}
	}
	msg, err := hexutil.Decode(data)
	if err != nil {
		msg = []byte(data)
	}
	sig, err := signMessage(p.key, msg)
	if err != nil {
		return nil, &ProviderError{Code: CodeInternal, Message: err.Error()}
	}
	return encodeResult(hexutil.Encode(sig))
}

// switchChain redials to a known chain's RPC. Unknown chains report 4902 so
// the caller can register them with wallet_addEthereumChain first.
func (p *KeyedProvider) switchChain(ctx context.Context, hexID string) error {
	id, err := chain.ParseHexID(hexID)
	if err != nil {
		return invalidParams(err)
	}
	if cur, err := p.currentChainID(ctx); err == nil && cur == id {
		return nil
	}

	target, ok := p.lookupChain(id)
	if !ok {
		return &ProviderError{Code: CodeUnrecognizedChain, Message: fmt.Sprintf("Unrecognized chain ID %q", hexID)}
	}

	urls := append(append([]string{}, p.custom(target.Name)...), target.RPCs...)
	var lastErr error
	for _, url := range urls {
		node, err := p.dial(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		p.mu.Lock()
		old := p.node
		p.node = node
		p.chainID = id
		p.mu.Unlock()
		if old != nil {
			old.Close()
		}
		logger.WithFields(logger.Fields{
			"chain_id": id,
			"rpc":      url,
		}).Info("Switched wallet network")
		p.events.Emit(EventChainChanged, chain.HexID(id))
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("no RPC endpoints")
	}
	return &ProviderError{Code: CodeChainDisconnected, Message: lastErr.Error()}
}

func (p *KeyedProvider) lookupChain(id int64) (chain.Chain, bool) {
	p.mu.Lock()
	c, ok := p.added[id]
	p.mu.Unlock()
	if ok {
		return c, true
	}
	reg, err := p.registry.GetByChainID(id)
	if err != nil {
		return chain.Chain{}, false
	}
	return *reg, true
}

// fallbackGas picks a gas limit when the node cannot estimate one. ERC-20
// approve and transfer are cheap; everything else gets the contract limit.
func fallbackGas(data []byte) uint64 {
	if len(data) >= 4 {
		switch hexutil.Encode(data[:4]) {
		case "0x095ea7b3", "0xa9059cbb":
			return config.GasLimitTokenApprove
		}
	}
	return config.GasLimitContractCall
}

func invalidParams(err error) error {
	return &ProviderError{Code: CodeInvalidParams, Message: err.Error()}
}
