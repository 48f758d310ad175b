package wallet

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/KyberNetwork/logger"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goccy/go-json"
)

const (
	defaultPollInterval = 4 * time.Second
	defaultFailureLimit = 3
)

// RPCProvider is an Injected provider backed by a node connection. Accounts
// are whatever the node manages (dev nodes, Clef). Events are synthesized by
// polling the node.
type RPCProvider struct {
	client    *rpc.Client
	events    emitter
	interval  time.Duration
	failLimit int

	watchOnce sync.Once
	closeOnce sync.Once
	stop      chan struct{}
}

// RPCOption configures an RPCProvider.
type RPCOption func(*RPCProvider)

// WithPollInterval sets how often the watcher polls chain id and accounts.
func WithPollInterval(d time.Duration) RPCOption {
	return func(p *RPCProvider) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithFailureLimit sets how many consecutive failed polls emit a disconnect.
func WithFailureLimit(n int) RPCOption {
	return func(p *RPCProvider) {
		if n > 0 {
			p.failLimit = n
		}
	}
}

// DialRPC connects to url (http, ws or ipc) and returns a provider.
func DialRPC(ctx context.Context, url string, opts ...RPCOption) (*RPCProvider, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return NewRPCProvider(c, opts...), nil
}

// NewRPCProvider wraps an existing rpc client.
func NewRPCProvider(c *rpc.Client, opts ...RPCOption) *RPCProvider {
	p := &RPCProvider{
		client:    c,
		interval:  defaultPollInterval,
		failLimit: defaultFailureLimit,
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Request forwards a JSON-RPC call to the node.
func (p *RPCProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := p.client.CallContext(ctx, &raw, method, params...); err != nil {
		return nil, mapRPCError(ctx, err)
	}
	return raw, nil
}

// On subscribes to a provider event. The first subscription starts the watcher.
func (p *RPCProvider) On(event string, fn Listener) func() {
	remove := p.events.On(event, fn)
	p.watchOnce.Do(func() { go p.watch() })
	return remove
}

// Client returns a go-ethereum client sharing this provider's connection.
func (p *RPCProvider) Client() *ethclient.Client {
	return ethclient.NewClient(p.client)
}

// Close stops the watcher and closes the connection.
func (p *RPCProvider) Close() {
	p.closeOnce.Do(func() {
		close(p.stop)
		p.client.Close()
	})
}

// --- watcher ---

type nodeSnapshot struct {
	chainID  string
	accounts []string
}

func (p *RPCProvider) watch() {
	var (
		last   nodeSnapshot
		seeded bool
		fails  int
	)

	poll := func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.interval)
		defer cancel()

		snap, err := p.snapshot(ctx)
		if err != nil {
			fails++
			logger.WithFields(logger.Fields{
				"failures": fails,
				"error":    err,
			}).Debug("Provider poll failed")
			if fails == p.failLimit {
				seeded = false
				p.events.Emit(EventDisconnect, &ProviderError{Code: CodeDisconnected, Message: err.Error()})
			}
			return
		}
		fails = 0

		if !seeded {
			last, seeded = snap, true
			return
		}
		if snap.chainID != last.chainID {
			p.events.Emit(EventChainChanged, snap.chainID)
		}
		if !slices.Equal(snap.accounts, last.accounts) {
			p.events.Emit(EventAccountsChanged, snap.accounts)
		}
		last = snap
	}

	poll()
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-t.C:
			poll()
		}
	}
}

func (p *RPCProvider) snapshot(ctx context.Context) (nodeSnapshot, error) {
	var snap nodeSnapshot
	if err := p.client.CallContext(ctx, &snap.chainID, "eth_chainId"); err != nil {
		return snap, err
	}
	if err := p.client.CallContext(ctx, &snap.accounts, "eth_accounts"); err != nil {
		return snap, err
	}
	if snap.accounts == nil {
		snap.accounts = []string{}
	}
	return snap, nil
}

// mapRPCError converts node errors into provider errors. Transport failures
// are reported as ErrProviderUnavailable; context errors pass through.
func mapRPCError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return &ProviderError{Code: rpcErr.ErrorCode(), Message: rpcErr.Error()}
	}
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}
