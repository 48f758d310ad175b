package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KyberNetwork/logger"
	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goccy/go-json"
)

// requestDialect talks to any wallet provider through raw JSON-RPC requests.
// Calldata is built locally from the ABI entries.
type requestDialect struct {
	v5Units
	provider wallet.Injected
	timing
}

func (d *requestDialect) Name() string { return "eip1193" }

func (d *requestDialect) bind(addr, from common.Address, entries []ABIEntry) (handle, error) {
	return &requestHandle{d: d, addr: addr, from: from, abi: entries}, nil
}

type requestHandle struct {
	d    *requestDialect
	addr common.Address
	from common.Address
	abi  []ABIEntry
}

type callMsg struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Data string `json:"data"`
}

type rpcReceipt struct {
	TransactionHash string         `json:"transactionHash"`
	BlockNumber     hexutil.Uint64 `json:"blockNumber"`
	Status          hexutil.Uint64 `json:"status"`
}

func (h *requestHandle) Address() common.Address { return h.addr }

func (h *requestHandle) msg(data []byte) callMsg {
	m := callMsg{To: h.addr.Hex(), Data: hexutil.Encode(data)}
	if h.from != (common.Address{}) {
		m.From = h.from.Hex()
	}
	return m
}

func (h *requestHandle) encode(method string, args []any) (*ABIEntry, []byte, error) {
	fn := findFunction(h.abi, method)
	if fn == nil {
		return nil, nil, fmt.Errorf("function %q not found in ABI", method)
	}
	data, err := encodeCall(fn, args)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return fn, data, nil
}

// Call runs eth_call against the latest block.
func (h *requestHandle) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	fn, data, err := h.encode(method, args)
	if err != nil {
		return nil, err
	}
	raw, err := h.d.provider.Request(ctx, "eth_call", h.msg(data), "latest")
	if err != nil {
		return nil, fmt.Errorf("eth_call %s: %w", method, err)
	}
	var hexOut string
	if err := json.Unmarshal(raw, &hexOut); err != nil {
		return nil, fmt.Errorf("decoding eth_call result: %w", err)
	}
	var out []byte
	if hexOut != "" && hexOut != "0x" {
		if out, err = hexutil.Decode(hexOut); err != nil {
			return nil, fmt.Errorf("decoding eth_call result: %w", err)
		}
	}
	if len(out) == 0 && len(fn.Outputs) > 0 {
		return nil, fmt.Errorf("%w: %s returned no data", ErrCallFailed, method)
	}
	return decodeOutputs(fn, out)
}

// Transact sends the call through eth_sendTransaction and polls for the
// receipt until the receipt timeout expires.
func (h *requestHandle) Transact(ctx context.Context, method string, args ...any) (Receipt, error) {
	_, data, err := h.encode(method, args)
	if err != nil {
		return Receipt{}, err
	}
	raw, err := h.d.provider.Request(ctx, "eth_sendTransaction", h.msg(data))
	if err != nil {
		return Receipt{}, fmt.Errorf("eth_sendTransaction %s: %w", method, err)
	}
	var hash string
	if err := json.Unmarshal(raw, &hash); err != nil {
		return Receipt{}, fmt.Errorf("decoding transaction hash: %w", err)
	}

	logger.WithFields(logger.Fields{
		"method":  method,
		"tx_hash": hash,
	}).Debug("Transaction submitted")

	return h.waitReceipt(ctx, hash)
}

func (h *requestHandle) waitReceipt(ctx context.Context, hash string) (Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, h.d.receiptTimeout)
	defer cancel()

	ticker := time.NewTicker(h.d.pollInterval)
	defer ticker.Stop()

	for {
		raw, err := h.d.provider.Request(ctx, "eth_getTransactionReceipt", hash)
		if err != nil && !errors.Is(err, wallet.ErrProviderUnavailable) {
			return Receipt{TxHash: hash}, fmt.Errorf("fetching receipt: %w", err)
		}
		if err == nil && len(raw) > 0 && string(raw) != "null" {
			var r rpcReceipt
			if err := json.Unmarshal(raw, &r); err != nil {
				return Receipt{TxHash: hash}, fmt.Errorf("decoding receipt: %w", err)
			}
			rcpt := Receipt{Status: uint64(r.Status), TxHash: hash, BlockNumber: uint64(r.BlockNumber)}
			if rcpt.Status == 0 {
				return rcpt, fmt.Errorf("%w: %s", ErrReverted, hash)
			}
			return rcpt, nil
		}

		select {
		case <-ctx.Done():
			return Receipt{TxHash: hash}, fmt.Errorf("waiting for %s: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}
