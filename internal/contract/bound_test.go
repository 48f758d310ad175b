package contract

import (
	"context"
	"encoding/hex"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var zeroHash = common.Hash{}.Hex()

// chainNode is a JSON-RPC server with just enough of a node for go-ethereum
// bindings: calls are answered by selector, raw transactions are decoded and
// receipts are served immediately.
type chainNode struct {
	*httptest.Server

	mu       sync.Mutex
	outputs  map[string][]byte
	selector map[string]string
	txs      []*types.Transaction
	status   string
}

func newChainNode(t *testing.T) *chainNode {
	t.Helper()
	n := &chainNode{
		outputs:  make(map[string][]byte),
		selector: make(map[string]string),
		status:   "0x1",
	}
	for _, entries := range [][]ABIEntry{heroicABI, tokenABI} {
		for i := range entries {
			if entries[i].Type == "function" {
				n.selector[hex.EncodeToString(selectorBytes(&entries[i]))] = entries[i].Name
			}
		}
	}
	n.Server = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.Close)
	return n
}

func (n *chainNode) set(t *testing.T, method string, vals ...any) {
	t.Helper()
	data := pack(t, method, vals...)
	n.mu.Lock()
	n.outputs[method] = data
	n.mu.Unlock()
}

func (n *chainNode) sent() []*types.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*types.Transaction(nil), n.txs...)
}

func (n *chainNode) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if result, err := n.handle(req.Method, req.Params); err != nil {
		resp["error"] = map[string]any{"code": -32000, "message": err.Error()}
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

func (n *chainNode) handle(method string, params []json.RawMessage) (any, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch method {
	case "eth_chainId":
		return "0x7a69", nil
	case "eth_call":
		var msg struct {
			Data  string `json:"data"`
			Input string `json:"input"`
		}
		if err := json.Unmarshal(params[0], &msg); err != nil {
			return nil, err
		}
		input := msg.Input
		if input == "" {
			input = msg.Data
		}
		data := common.FromHex(input)
		if len(data) < 4 {
			return "0x", nil
		}
		out, ok := n.outputs[n.selector[hex.EncodeToString(data[:4])]]
		if !ok {
			return "0x", nil
		}
		return "0x" + hex.EncodeToString(out), nil
	case "eth_getCode":
		return "0x6080604052", nil
	case "eth_getBlockByNumber":
		return map[string]any{
			"parentHash":       zeroHash,
			"sha3Uncles":       zeroHash,
			"miner":            common.Address{}.Hex(),
			"stateRoot":        zeroHash,
			"transactionsRoot": zeroHash,
			"receiptsRoot":     zeroHash,
			"logsBloom":        "0x" + strings.Repeat("00", 256),
			"difficulty":       "0x0",
			"number":           "0x29",
			"gasLimit":         "0x1c9c380",
			"gasUsed":          "0x0",
			"timestamp":        "0x6553f100",
			"extraData":        "0x",
			"baseFeePerGas":    "0x3b9aca00",
		}, nil
	case "eth_maxPriorityFeePerGas", "eth_gasPrice":
		return "0x3b9aca00", nil
	case "eth_estimateGas":
		return "0x30d40", nil
	case "eth_getTransactionCount":
		return "0x3", nil
	case "eth_sendRawTransaction":
		var rawHex string
		if err := json.Unmarshal(params[0], &rawHex); err != nil {
			return nil, err
		}
		tx := new(types.Transaction)
		if err := tx.UnmarshalBinary(common.FromHex(rawHex)); err != nil {
			return nil, err
		}
		n.txs = append(n.txs, tx)
		return tx.Hash().Hex(), nil
	case "eth_getTransactionReceipt":
		var hash string
		if err := json.Unmarshal(params[0], &hash); err != nil {
			return nil, err
		}
		return map[string]any{
			"type":              "0x2",
			"status":            n.status,
			"cumulativeGasUsed": "0x5208",
			"gasUsed":           "0x5208",
			"effectiveGasPrice": "0x3b9aca00",
			"logsBloom":         "0x" + strings.Repeat("00", 256),
			"logs":              []any{},
			"transactionHash":   hash,
			"transactionIndex":  "0x0",
			"blockHash":         zeroHash,
			"blockNumber":       "0x2a",
		}, nil
	}
	return nil, &rpcMethodError{method}
}

type rpcMethodError struct{ method string }

func (e *rpcMethodError) Error() string { return "method not found: " + e.method }

func newKeyedWallet(t *testing.T, node *chainNode, opts ...wallet.KeyedOption) *wallet.KeyedProvider {
	t.Helper()
	c, err := rpc.DialContext(context.Background(), node.URL)
	require.NoError(t, err)
	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)
	p := wallet.NewKeyedProvider(c, key, opts...)
	t.Cleanup(p.Close)
	return p
}

func connectKeyed(t *testing.T, p *wallet.KeyedProvider) {
	t.Helper()
	_, err := p.Request(context.Background(), "eth_requestAccounts")
	require.NoError(t, err)
}

func TestBoundDialectSelected(t *testing.T) {
	node := newChainNode(t)
	token := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	node.set(t, "USDT", token)

	b := New(newKeyedWallet(t, node))
	require.True(t, b.Setup(context.Background(), testAccount))
	assert.Equal(t, "geth-bind", b.DialectName())
	assert.Equal(t, token.Hex(), b.TokenAddress())
}

func TestBoundReads(t *testing.T) {
	ctx := context.Background()
	node := newChainNode(t)
	ref := common.HexToAddress("0x2222222222222222222222222222222222222222")
	node.set(t, "users", wei(1000), big.NewInt(8), wei(5000), big.NewInt(3), ref)
	node.set(t, "MIN_INVESTMENT", wei(5))
	node.set(t, "MAX_INVESTMENT", wei(10000))
	node.set(t, "MIN_WITHDRAW", wei(4))
	node.set(t, "WITHDRAW_FEE_PERCENT", big.NewInt(5))
	node.set(t, "paused", false)
	node.set(t, "decimals", uint8(18))

	var board [10]common.Address
	board[0] = ref
	node.set(t, "getLeaderboard", board)

	p := newKeyedWallet(t, node)
	connectKeyed(t, p)
	b := New(p)
	require.True(t, b.Setup(ctx, testAccount))

	user := b.UserData(ctx, testAccount)
	require.Equal(t, SourceLive, user.Source, "err: %v", user.Err)
	assert.Equal(t, "1000", user.Value.StakedAmount)
	assert.Equal(t, "5000", user.Value.TotalTeamInvestment)
	assert.Equal(t, uint64(8), user.Value.DirectMembers)
	assert.Equal(t, ref.Hex(), user.Value.Referrer)

	limits := b.Limits(ctx)
	assert.Equal(t, SourceLive, limits.Source)
	assert.Empty(t, limits.Value.Fallbacks)
	assert.Equal(t, "10000", limits.Value.MaxInvestment)

	paused := b.Paused(ctx)
	assert.Equal(t, SourceLive, paused.Source)
	assert.False(t, paused.Value)

	assert.Equal(t, uint8(18), b.TokenDecimals(ctx).Value)

	members := b.TotalMembers(ctx)
	assert.Equal(t, SourceDerived, members.Source)
	assert.Equal(t, uint64(1), members.Value)
}

func TestBoundStake(t *testing.T) {
	ctx := context.Background()
	node := newChainNode(t)
	p := newKeyedWallet(t, node)
	connectKeyed(t, p)
	b := New(p)
	require.True(t, b.Setup(ctx, testAccount))

	r := b.Stake(ctx, "100")
	require.NoError(t, r.Err)
	assert.False(t, r.Simulated)
	assert.Equal(t, uint64(1), r.Status)
	assert.Equal(t, uint64(42), r.BlockNumber)

	txs := node.sent()
	require.Len(t, txs, 1)
	tx := txs[0]
	assert.Equal(t, b.ContractAddress(), tx.To().Hex())
	assert.Equal(t, uint64(3), tx.Nonce())
	assert.Equal(t, int64(31337), tx.ChainId().Int64())
	assert.Equal(t, "a694fc3a", hex.EncodeToString(tx.Data()[:4]))
	assert.Equal(t, 0, wei(100).Cmp(new(big.Int).SetBytes(tx.Data()[4:])))

	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	require.NoError(t, err)
	assert.Equal(t, testAccount, from.Hex())
}

func TestBoundWriteUnauthorizedSimulates(t *testing.T) {
	ctx := context.Background()
	node := newChainNode(t)
	b := New(newKeyedWallet(t, node))
	b.Setup(ctx, testAccount)

	r := b.Invest(ctx, testAccount, "20")
	assert.True(t, r.Simulated)
	assert.Equal(t, uint64(1), r.Status)
	assert.Equal(t, wallet.CodeUnauthorized, wallet.Code(r.Err))
	assert.Empty(t, node.sent())
	assert.Equal(t, "5020", b.mock.User().TotalTeamInvestment)
}

func TestBoundRevertSimulates(t *testing.T) {
	ctx := context.Background()
	node := newChainNode(t)
	node.status = "0x0"
	p := newKeyedWallet(t, node)
	connectKeyed(t, p)
	b := New(p)
	b.Setup(ctx, testAccount)

	r := b.Pause(ctx)
	assert.True(t, r.Simulated)
	assert.ErrorIs(t, r.Err, ErrReverted)
	assert.Len(t, node.sent(), 1)
	assert.True(t, b.mock.Paused())
}
