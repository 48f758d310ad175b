package contract

import (
	"context"
	"fmt"

	"github.com/KyberNetwork/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// boundDialect uses go-ethereum's generated-binding runtime. The provider
// supplies the node client and a signing transactor.
type boundDialect struct {
	ratUnits
	backend binder
	timing
}

func (d *boundDialect) Name() string { return "geth-bind" }

func (d *boundDialect) bind(addr, from common.Address, entries []ABIEntry) (handle, error) {
	parsed, err := gethABI(entries)
	if err != nil {
		return nil, err
	}
	client := d.backend.Client()
	return &boundHandle{
		d:        d,
		addr:     addr,
		from:     from,
		client:   client,
		contract: bind.NewBoundContract(addr, parsed, client, client, client),
	}, nil
}

type boundHandle struct {
	d        *boundDialect
	addr     common.Address
	from     common.Address
	client   *ethclient.Client
	contract *bind.BoundContract
}

func (h *boundHandle) Address() common.Address { return h.addr }

func (h *boundHandle) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	var out []any
	opts := &bind.CallOpts{Context: ctx, From: h.from}
	if err := h.contract.Call(opts, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCallFailed, method, err)
	}
	return normalizeAll(out), nil
}

func (h *boundHandle) Transact(ctx context.Context, method string, args ...any) (Receipt, error) {
	opts, err := h.d.backend.Transactor(ctx)
	if err != nil {
		return Receipt{}, fmt.Errorf("transactor: %w", err)
	}
	tx, err := h.contract.Transact(opts, method, args...)
	if err != nil {
		return Receipt{}, fmt.Errorf("%s: %w", method, err)
	}

	logger.WithFields(logger.Fields{
		"method":  method,
		"tx_hash": tx.Hash().Hex(),
	}).Debug("Transaction submitted")

	waitCtx, cancel := context.WithTimeout(ctx, h.d.receiptTimeout)
	defer cancel()
	r, err := bind.WaitMined(waitCtx, h.client, tx)
	if err != nil {
		return Receipt{TxHash: tx.Hash().Hex()}, fmt.Errorf("waiting for %s: %w", tx.Hash().Hex(), err)
	}
	rcpt := Receipt{Status: r.Status, TxHash: tx.Hash().Hex(), BlockNumber: r.BlockNumber.Uint64()}
	if r.Status != types.ReceiptStatusSuccessful {
		return rcpt, fmt.Errorf("%w: %s", ErrReverted, rcpt.TxHash)
	}
	return rcpt, nil
}
