package wallet_test

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/heroicdash/internal/chain"
	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// devNode serves the methods a keyed wallet needs to send a transaction and
// records the raw transactions it receives.
type devNode struct {
	*mockNode
	mu  sync.Mutex
	txs []*types.Transaction
}

func newDevNode(t *testing.T, chainHex string) *devNode {
	t.Helper()
	d := &devNode{}
	d.mockNode = newMockNode(t, map[string]nodeHandler{
		"eth_chainId":             fixed(chainHex),
		"eth_estimateGas":         fixed("0x5208"),
		"eth_gasPrice":            fixed("0x3b9aca00"),
		"eth_getTransactionCount": fixed("0x7"),
		"eth_blockNumber":         fixed("0x10"),
		"eth_sendRawTransaction": func(params []json.RawMessage) (any, error) {
			var rawHex string
			if err := json.Unmarshal(params[0], &rawHex); err != nil {
				return nil, err
			}
			tx := new(types.Transaction)
			if err := tx.UnmarshalBinary(common.FromHex(rawHex)); err != nil {
				return nil, err
			}
			d.mu.Lock()
			d.txs = append(d.txs, tx)
			d.mu.Unlock()
			return tx.Hash().Hex(), nil
		},
	})
	return d
}

func (d *devNode) sent() []*types.Transaction {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*types.Transaction(nil), d.txs...)
}

func newKeyed(t *testing.T, node *devNode, opts ...wallet.KeyedOption) *wallet.KeyedProvider {
	t.Helper()
	c, err := rpc.DialContext(context.Background(), node.URL)
	require.NoError(t, err)
	key, err := crypto.HexToECDSA(testKey[2:])
	require.NoError(t, err)
	return wallet.NewKeyedProvider(c, key, opts...)
}

func TestKeyedRequestAccountsDeclined(t *testing.T) {
	node := newDevNode(t, "0x7a69")
	p := newKeyed(t, node, wallet.WithApproval(func(context.Context, string) bool { return false }))
	svc := wallet.NewService(p, nil)

	_, err := svc.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, wallet.ErrUserRejected)
	assert.Empty(t, svc.Accounts(context.Background()))
}

func TestKeyedRequestAccountsApproved(t *testing.T) {
	node := newDevNode(t, "0x7a69")
	var asked string
	p := newKeyed(t, node, wallet.WithApproval(func(_ context.Context, account string) bool {
		asked = account
		return true
	}))
	svc := wallet.NewService(p, nil)

	accounts, err := svc.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{testAddress}, accounts)
	assert.Equal(t, testAddress, asked)
	assert.Equal(t, []string{testAddress}, svc.Accounts(context.Background()))
}

func TestKeyedChainIDFromNode(t *testing.T) {
	node := newDevNode(t, "0x7a69")
	id, ok := wallet.NewService(newKeyed(t, node), nil).ChainID(context.Background())
	require.True(t, ok)
	assert.Equal(t, chain.Localhost, id)
}

func TestKeyedSendTransactionRequiresApproval(t *testing.T) {
	node := newDevNode(t, "0x7a69")
	p := newKeyed(t, node)

	_, err := p.Request(context.Background(), "eth_sendTransaction", map[string]string{
		"to":   "0x29943E71680e0A4847036541EFa9656b2C0e4B5A",
		"data": "0x",
	})
	assert.Equal(t, wallet.CodeUnauthorized, wallet.Code(err))
	assert.Empty(t, node.sent())
}

func TestKeyedSendTransactionSignsLondon(t *testing.T) {
	node := newDevNode(t, "0x7a69")
	p := newKeyed(t, node)
	_, err := p.Request(context.Background(), "eth_requestAccounts")
	require.NoError(t, err)

	raw, err := p.Request(context.Background(), "eth_sendTransaction", map[string]string{
		"from": testAddress,
		"to":   "0x29943E71680e0A4847036541EFa9656b2C0e4B5A",
		"data": "0xa694fc3a",
	})
	require.NoError(t, err)

	var hash string
	require.NoError(t, json.Unmarshal(raw, &hash))

	sent := node.sent()
	require.Len(t, sent, 1)
	tx := sent[0]
	assert.Equal(t, tx.Hash().Hex(), hash)
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(21000), tx.Gas())
	assert.Equal(t, big.NewInt(2_000_000_000), tx.GasFeeCap())
	assert.Equal(t, []byte{0xa6, 0x94, 0xfc, 0x3a}, tx.Data())

	from, err := types.Sender(types.NewLondonSigner(big.NewInt(31337)), tx)
	require.NoError(t, err)
	assert.Equal(t, testAddress, from.Hex())
}

func TestKeyedSendTransactionWrongFrom(t *testing.T) {
	node := newDevNode(t, "0x7a69")
	p := newKeyed(t, node)
	_, err := p.Request(context.Background(), "eth_requestAccounts")
	require.NoError(t, err)

	_, err = p.Request(context.Background(), "eth_sendTransaction", map[string]string{
		"from": "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		"to":   "0x29943E71680e0A4847036541EFa9656b2C0e4B5A",
	})
	assert.Equal(t, wallet.CodeUnauthorized, wallet.Code(err))
}

func TestKeyedPersonalSign(t *testing.T) {
	node := newDevNode(t, "0x7a69")
	p := newKeyed(t, node)
	_, err := p.Request(context.Background(), "eth_requestAccounts")
	require.NoError(t, err)

	msg := []byte("heroic login")
	raw, err := p.Request(context.Background(), "personal_sign", hexutil.Encode(msg), testAddress)
	require.NoError(t, err)

	var sigHex string
	require.NoError(t, json.Unmarshal(raw, &sigHex))
	sig, err := hexutil.Decode(sigHex)
	require.NoError(t, err)

	signer, err := wallet.VerifyMessage(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, testAddress, signer.Hex())
}

func TestVerifyMessageBadLength(t *testing.T) {
	_, err := wallet.VerifyMessage([]byte("x"), []byte{1, 2, 3})
	assert.Error(t, err)
}

func TestKeyedForwardsOtherMethods(t *testing.T) {
	node := newDevNode(t, "0x7a69")
	raw, err := newKeyed(t, node).Request(context.Background(), "eth_blockNumber")
	require.NoError(t, err)
	assert.JSONEq(t, `"0x10"`, string(raw))
}

func TestKeyedSwitchUnknownChainThenAdd(t *testing.T) {
	local := newDevNode(t, "0x7a69")
	bsc := newDevNode(t, "0x38")

	p := newKeyed(t, local, wallet.WithDialer(func(ctx context.Context, url string) (*rpc.Client, error) {
		assert.Equal(t, "https://bsc.example", url)
		return rpc.DialContext(ctx, bsc.URL)
	}))

	var changed []string
	p.On(wallet.EventChainChanged, func(payload any) { changed = append(changed, payload.(string)) })

	_, err := p.Request(context.Background(), "wallet_switchEthereumChain", map[string]string{"chainId": "0x38"})
	require.Equal(t, wallet.CodeUnrecognizedChain, wallet.Code(err))

	_, err = p.Request(context.Background(), "wallet_addEthereumChain", chain.AddChainParams{
		ChainID:        "0x38",
		ChainName:      "BNB Chain",
		NativeCurrency: chain.Currency{Name: "BNB", Symbol: "BNB", Decimals: 18},
		RPCURLs:        []string{"https://bsc.example"},
	})
	require.NoError(t, err)

	_, err = p.Request(context.Background(), "wallet_switchEthereumChain", map[string]string{"chainId": "0x38"})
	require.NoError(t, err)
	assert.Equal(t, []string{"0x38"}, changed)

	id, ok := wallet.NewService(p, nil).ChainID(context.Background())
	require.True(t, ok)
	assert.Equal(t, int64(56), id)
}

func TestServiceSwitchNetworkOverKeyedProvider(t *testing.T) {
	local := newDevNode(t, "0x7a69")
	polygon := newDevNode(t, "0x89")

	var dialed []string
	p := newKeyed(t, local,
		wallet.WithCustomRPCs(func(name string) []string {
			if name == "polygon" {
				return []string{"https://my-polygon.example"}
			}
			return nil
		}),
		wallet.WithDialer(func(ctx context.Context, url string) (*rpc.Client, error) {
			dialed = append(dialed, url)
			return rpc.DialContext(ctx, polygon.URL)
		}),
	)
	svc := wallet.NewService(p, nil)

	require.True(t, svc.SwitchNetwork(context.Background(), chain.PolygonMainnet))
	assert.Equal(t, []string{"https://my-polygon.example"}, dialed)

	id, ok := svc.ChainID(context.Background())
	require.True(t, ok)
	assert.Equal(t, chain.PolygonMainnet, id)
}

func TestKeyedTransactor(t *testing.T) {
	node := newDevNode(t, "0x7a69")
	p := newKeyed(t, node)

	_, err := p.Transactor(context.Background())
	assert.Equal(t, wallet.CodeUnauthorized, wallet.Code(err))

	_, err = p.Request(context.Background(), "eth_requestAccounts")
	require.NoError(t, err)

	opts, err := p.Transactor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAddress, opts.From.Hex())
}

func TestKeyedRevokePermissions(t *testing.T) {
	node := newDevNode(t, "0x7a69")
	p := newKeyed(t, node)
	_, err := p.Request(context.Background(), "eth_requestAccounts")
	require.NoError(t, err)

	var got []string
	p.On(wallet.EventAccountsChanged, func(payload any) { got = payload.([]string) })

	_, err = p.Request(context.Background(), "wallet_revokePermissions")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, wallet.NewService(p, nil).Accounts(context.Background()))
}
