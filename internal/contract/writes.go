package contract

import (
	"context"
	"errors"

	"github.com/KyberNetwork/logger"
)

// send submits method on h and waits for the receipt. Any failure other than
// cancellation is masked: simulate updates the demo state and a simulated
// success receipt carrying the cause is returned.
func (b *Binding) send(ctx context.Context, h handle, method string, args func() ([]any, error), simulate func(m *mockState)) Receipt {
	fail := func(err error) Receipt {
		if errors.Is(err, context.Canceled) {
			return Receipt{Err: err}
		}
		fields := logger.Fields{
			"method": method,
			"error":  err,
		}
		if h != nil {
			fields["address"] = h.Address().Hex()
		}
		logger.WithFields(fields).Warn("Contract write failed, simulating")
		if simulate != nil {
			simulate(b.mock)
		}
		return Receipt{Status: 1, Simulated: true, Err: err}
	}

	if h == nil {
		return fail(ErrNoContract)
	}
	a, err := args()
	if err != nil {
		return fail(err)
	}
	r, err := h.Transact(ctx, method, a...)
	if err != nil {
		return fail(err)
	}

	logger.WithFields(logger.Fields{
		"method":  method,
		"tx_hash": r.TxHash,
		"block":   r.BlockNumber,
	}).Info("Transaction confirmed")
	return r
}

func (b *Binding) amountArgs(amount string, lead ...string) func() ([]any, error) {
	return func() ([]any, error) {
		args := make([]any, 0, len(lead)+1)
		for _, s := range lead {
			addr, err := accountArg(s)
			if err != nil {
				return nil, err
			}
			args = append(args, addr)
		}
		wei, err := b.ToFixedPoint(amount)
		if err != nil {
			return nil, err
		}
		return append(args, wei), nil
	}
}

func noArgs() ([]any, error) { return nil, nil }

// Stake stakes amount tokens.
func (b *Binding) Stake(ctx context.Context, amount string) Receipt {
	c, _ := b.handles()
	return b.send(ctx, c, "stake", b.amountArgs(amount), func(m *mockState) { m.stake(amount) })
}

// Withdraw withdraws amount from the stake.
func (b *Binding) Withdraw(ctx context.Context, amount string) Receipt {
	c, _ := b.handles()
	return b.send(ctx, c, "withdraw", b.amountArgs(amount), func(m *mockState) { m.withdraw(amount) })
}

// Invest invests amount under referrer.
func (b *Binding) Invest(ctx context.Context, referrer, amount string) Receipt {
	c, _ := b.handles()
	return b.send(ctx, c, "invest", b.amountArgs(amount, referrer), func(m *mockState) { m.invest(amount) })
}

// ApproveTokens lets the staking contract spend amount tokens.
func (b *Binding) ApproveTokens(ctx context.Context, amount string) Receipt {
	_, token := b.handles()
	return b.send(ctx, token, "approve", b.amountArgs(amount, b.contractAddr.Hex()), func(m *mockState) { m.approve(amount) })
}

// TransferTokens sends amount tokens to another address.
func (b *Binding) TransferTokens(ctx context.Context, to, amount string) Receipt {
	_, token := b.handles()
	return b.send(ctx, token, "transfer", b.amountArgs(amount, to), nil)
}

// WithdrawFunds moves contract funds to an address. Owner only.
func (b *Binding) WithdrawFunds(ctx context.Context, to, amount string) Receipt {
	c, _ := b.handles()
	return b.send(ctx, c, "withdrawFunds", b.amountArgs(amount, to), nil)
}

// Pause pauses the contract. Owner only.
func (b *Binding) Pause(ctx context.Context) Receipt {
	c, _ := b.handles()
	return b.send(ctx, c, "pause", noArgs, func(m *mockState) { m.setPaused(true) })
}

// Unpause resumes the contract. Owner only.
func (b *Binding) Unpause(ctx context.Context) Receipt {
	c, _ := b.handles()
	return b.send(ctx, c, "unpause", noArgs, func(m *mockState) { m.setPaused(false) })
}
