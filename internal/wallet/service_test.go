package wallet_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/heroicdash/internal/chain"
	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// fakeProvider is a scripted Injected
// ---------------------------------------------------------------------------

type handler func(params []any) (any, error)

type fakeProvider struct {
	mu        sync.Mutex
	handlers  map[string]handler
	calls     []string
	params    map[string][]any
	listeners map[string][]wallet.Listener
	metamask  bool
}

func newFakeProvider(handlers map[string]handler) *fakeProvider {
	return &fakeProvider{
		handlers:  handlers,
		params:    make(map[string][]any),
		listeners: make(map[string][]wallet.Listener),
	}
}

func (f *fakeProvider) Request(_ context.Context, method string, params ...any) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	f.params[method] = params
	h, ok := f.handlers[method]
	f.mu.Unlock()
	if !ok {
		return nil, &wallet.ProviderError{Code: wallet.CodeUnsupportedMethod, Message: method}
	}
	v, err := h(params)
	if err != nil {
		return nil, err
	}
	data, _ := json.Marshal(v)
	return data, nil
}

func (f *fakeProvider) On(event string, fn wallet.Listener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners[event] = append(f.listeners[event], fn)
	return func() {}
}

func (f *fakeProvider) IsMetaMask() bool { return f.metamask }

func (f *fakeProvider) emit(event string, payload any) {
	f.mu.Lock()
	fns := append([]wallet.Listener(nil), f.listeners[event]...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(payload)
	}
}

func (f *fakeProvider) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func result(v any) handler {
	return func([]any) (any, error) { return v, nil }
}

func fail(code int) handler {
	return func([]any) (any, error) { return nil, &wallet.ProviderError{Code: code, Message: "scripted"} }
}

// ---------------------------------------------------------------------------
// absent provider
// ---------------------------------------------------------------------------

func TestServiceWithoutProviderDegrades(t *testing.T) {
	svc := wallet.NewService(nil, nil)
	ctx := context.Background()

	assert.False(t, svc.IsAvailable())
	assert.False(t, svc.IsMetaMask())

	_, ok := svc.ChainID(ctx)
	assert.False(t, ok)

	_, err := svc.RequestAccounts(ctx)
	assert.ErrorIs(t, err, wallet.ErrProviderUnavailable)

	assert.Empty(t, svc.Accounts(ctx))
	assert.False(t, svc.SwitchNetwork(ctx, chain.PolygonMainnet))

	for _, remove := range []func(){
		svc.OnAccountsChanged(func([]string) {}),
		svc.OnChainChanged(func(int64) {}),
		svc.OnDisconnect(func(error) {}),
	} {
		require.NotNil(t, remove)
		remove()
	}
}

// ---------------------------------------------------------------------------
// reads
// ---------------------------------------------------------------------------

func TestServiceChainID(t *testing.T) {
	p := newFakeProvider(map[string]handler{"eth_chainId": result("0x89")})
	id, ok := wallet.NewService(p, nil).ChainID(context.Background())
	require.True(t, ok)
	assert.Equal(t, int64(137), id)
}

func TestServiceChainIDFailure(t *testing.T) {
	p := newFakeProvider(map[string]handler{"eth_chainId": fail(wallet.CodeDisconnected)})
	_, ok := wallet.NewService(p, nil).ChainID(context.Background())
	assert.False(t, ok)
}

func TestServiceChainIDMalformed(t *testing.T) {
	p := newFakeProvider(map[string]handler{"eth_chainId": result("polygon")})
	_, ok := wallet.NewService(p, nil).ChainID(context.Background())
	assert.False(t, ok)
}

func TestServiceAccountsFailureIsEmpty(t *testing.T) {
	p := newFakeProvider(map[string]handler{"eth_accounts": fail(wallet.CodeInternal)})
	accounts := wallet.NewService(p, nil).Accounts(context.Background())
	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)
}

func TestServiceIsMetaMask(t *testing.T) {
	p := newFakeProvider(nil)
	p.metamask = true
	assert.True(t, wallet.NewService(p, nil).IsMetaMask())
}

// ---------------------------------------------------------------------------
// RequestAccounts
// ---------------------------------------------------------------------------

func TestRequestAccountsOrdered(t *testing.T) {
	p := newFakeProvider(map[string]handler{
		"eth_requestAccounts": result([]string{"0xaaa", "0xbbb"}),
	})
	accounts, err := wallet.NewService(p, nil).RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0xaaa", "0xbbb"}, accounts)
}

func TestRequestAccountsUserRejected(t *testing.T) {
	p := newFakeProvider(map[string]handler{"eth_requestAccounts": fail(wallet.CodeUserRejected)})
	_, err := wallet.NewService(p, nil).RequestAccounts(context.Background())
	assert.ErrorIs(t, err, wallet.ErrUserRejected)
}

func TestRequestAccountsOtherProviderError(t *testing.T) {
	p := newFakeProvider(map[string]handler{"eth_requestAccounts": fail(wallet.CodeUnauthorized)})
	_, err := wallet.NewService(p, nil).RequestAccounts(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, wallet.ErrUserRejected))
	assert.Equal(t, wallet.CodeUnauthorized, wallet.Code(err))
}

func TestRequestAccountsEmpty(t *testing.T) {
	p := newFakeProvider(map[string]handler{"eth_requestAccounts": result([]string{})})
	_, err := wallet.NewService(p, nil).RequestAccounts(context.Background())
	assert.ErrorIs(t, err, wallet.ErrNoAccounts)
}

// ---------------------------------------------------------------------------
// SwitchNetwork
// ---------------------------------------------------------------------------

func TestSwitchNetworkDirect(t *testing.T) {
	p := newFakeProvider(map[string]handler{"wallet_switchEthereumChain": result(nil)})
	ok := wallet.NewService(p, nil).SwitchNetwork(context.Background(), chain.PolygonMainnet)
	assert.True(t, ok)
	assert.Equal(t, []string{"wallet_switchEthereumChain"}, p.callLog())
}

func TestSwitchNetworkAddsUnknownChainThenRetries(t *testing.T) {
	switches := 0
	var added chain.AddChainParams
	p := newFakeProvider(map[string]handler{
		"wallet_switchEthereumChain": func([]any) (any, error) {
			switches++
			if switches == 1 {
				return nil, &wallet.ProviderError{Code: wallet.CodeUnrecognizedChain, Message: "unknown chain"}
			}
			return nil, nil
		},
		"wallet_addEthereumChain": func(params []any) (any, error) {
			added = params[0].(chain.AddChainParams)
			return nil, nil
		},
	})

	ok := wallet.NewService(p, nil).SwitchNetwork(context.Background(), chain.PolygonMainnet)
	require.True(t, ok)
	assert.Equal(t, []string{
		"wallet_switchEthereumChain",
		"wallet_addEthereumChain",
		"wallet_switchEthereumChain",
	}, p.callLog())

	assert.Equal(t, "0x89", added.ChainID)
	assert.Equal(t, "Polygon Mainnet", added.ChainName)
	assert.Equal(t, chain.Currency{Name: "MATIC", Symbol: "MATIC", Decimals: 18}, added.NativeCurrency)
	assert.Equal(t, []string{"https://polygonscan.com"}, added.BlockExplorerURLs)
}

func TestSwitchNetworkAddFails(t *testing.T) {
	p := newFakeProvider(map[string]handler{
		"wallet_switchEthereumChain": fail(wallet.CodeUnrecognizedChain),
		"wallet_addEthereumChain":    fail(wallet.CodeUserRejected),
	})
	assert.False(t, wallet.NewService(p, nil).SwitchNetwork(context.Background(), chain.PolygonMumbai))
}

func TestSwitchNetworkUnknownChainWithoutDescriptor(t *testing.T) {
	p := newFakeProvider(map[string]handler{
		"wallet_switchEthereumChain": fail(wallet.CodeUnrecognizedChain),
	})
	assert.False(t, wallet.NewService(p, nil).SwitchNetwork(context.Background(), 56))
	assert.Equal(t, []string{"wallet_switchEthereumChain"}, p.callLog())
}

func TestSwitchNetworkRejected(t *testing.T) {
	p := newFakeProvider(map[string]handler{
		"wallet_switchEthereumChain": fail(wallet.CodeUserRejected),
	})
	assert.False(t, wallet.NewService(p, nil).SwitchNetwork(context.Background(), chain.PolygonMainnet))
	assert.Equal(t, []string{"wallet_switchEthereumChain"}, p.callLog())
}

// ---------------------------------------------------------------------------
// events
// ---------------------------------------------------------------------------

func TestOnChainChangedParsesHex(t *testing.T) {
	p := newFakeProvider(nil)
	svc := wallet.NewService(p, nil)

	var got []int64
	svc.OnChainChanged(func(id int64) { got = append(got, id) })

	p.emit(wallet.EventChainChanged, "0x13881")
	p.emit(wallet.EventChainChanged, "garbage")
	p.emit(wallet.EventChainChanged, 42)

	assert.Equal(t, []int64{80001}, got)
}

func TestOnAccountsChangedAcceptsAnySlice(t *testing.T) {
	p := newFakeProvider(nil)
	svc := wallet.NewService(p, nil)

	var got [][]string
	svc.OnAccountsChanged(func(a []string) { got = append(got, a) })

	p.emit(wallet.EventAccountsChanged, []any{"0xabc"})
	p.emit(wallet.EventAccountsChanged, []string{})

	require.Len(t, got, 2)
	assert.Equal(t, []string{"0xabc"}, got[0])
	assert.Empty(t, got[1])
}

func TestOnDisconnectPassesError(t *testing.T) {
	p := newFakeProvider(nil)
	svc := wallet.NewService(p, nil)

	var got error
	svc.OnDisconnect(func(err error) { got = err })
	p.emit(wallet.EventDisconnect, &wallet.ProviderError{Code: wallet.CodeDisconnected, Message: "bye"})

	assert.Equal(t, wallet.CodeDisconnected, wallet.Code(got))
}

// ---------------------------------------------------------------------------
// FormatAddress
// ---------------------------------------------------------------------------

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "0x1234...7890", wallet.FormatAddress("0x1234567890123456789012345678901234567890"))
	assert.Equal(t, "0xabc", wallet.FormatAddress("0xabc"))
	assert.Equal(t, "", wallet.FormatAddress(""))
}
