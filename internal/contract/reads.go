package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/KyberNetwork/logger"
	"github.com/ethereum/go-ethereum/common"
)

const leaderboardSize = 10

const referralLevels = 20

var zeroAddress = common.Address{}.Hex()

// readInto calls method on h and decodes the outputs. Any failure yields the
// fallback tagged as mock.
func readInto[T any](ctx context.Context, h handle, fallback T, decode func(out []any) (T, error), method string, args ...any) Reading[T] {
	if h == nil {
		return mocked(fallback, ErrNoContract)
	}
	out, err := h.Call(ctx, method, args...)
	if err == nil {
		var v T
		if v, err = decode(out); err == nil {
			return live(v)
		}
	}
	logger.WithFields(logger.Fields{
		"method":  method,
		"address": h.Address().Hex(),
		"error":   err,
	}).Warn("Contract read failed, using demo value")
	return mocked(fallback, err)
}

func accountArg(account string) (common.Address, error) {
	if !common.IsHexAddress(account) {
		return common.Address{}, fmt.Errorf("%w: invalid address %q", ErrConversion, account)
	}
	return common.HexToAddress(account), nil
}

// --- token ---

// TokenBalance returns the token balance of account.
func (b *Binding) TokenBalance(ctx context.Context, account string) Reading[string] {
	fallback := b.mock.Balance()
	_, token := b.handles()
	addr, err := accountArg(account)
	if err != nil {
		return mocked(fallback, err)
	}
	return readInto(ctx, token, fallback, b.decodeAmount, "balanceOf", addr)
}

// TokenAllowance returns how much the staking contract may spend for owner.
func (b *Binding) TokenAllowance(ctx context.Context, owner string) Reading[string] {
	fallback := b.mock.Allowance()
	_, token := b.handles()
	addr, err := accountArg(owner)
	if err != nil {
		return mocked(fallback, err)
	}
	return readInto(ctx, token, fallback, b.decodeAmount, "allowance", addr, b.contractAddr)
}

// TokenSymbol returns the token's symbol.
func (b *Binding) TokenSymbol(ctx context.Context) Reading[string] {
	_, token := b.handles()
	return readInto(ctx, token, "USDT", func(out []any) (string, error) {
		return asString(out, 0)
	}, "symbol")
}

// TokenDecimals returns the token's decimals.
func (b *Binding) TokenDecimals(ctx context.Context) Reading[uint8] {
	_, token := b.handles()
	return readInto(ctx, token, uint8(Decimals), func(out []any) (uint8, error) {
		n, err := asUint(out, 0)
		if err != nil {
			return 0, err
		}
		if n > 255 {
			return 0, fmt.Errorf("decimals %d out of range", n)
		}
		return uint8(n), nil
	}, "decimals")
}

// --- contract ---

// IsOwner reports whether account owns the contract.
func (b *Binding) IsOwner(ctx context.Context, account string) Reading[bool] {
	c, _ := b.handles()
	return readInto(ctx, c, false, func(out []any) (bool, error) {
		owner, err := asAddress(out, 0)
		if err != nil {
			return false, err
		}
		return strings.EqualFold(owner.Hex(), account), nil
	}, "owner")
}

// UserData returns the contract's record for account, running Setup first
// when needed. account is only the subject of the read; the binding stays
// bound to the wallet's signer.
func (b *Binding) UserData(ctx context.Context, account string) Reading[User] {
	if !b.Initialized() {
		b.Setup(ctx, b.signer(ctx))
	}
	fallback := b.mock.User()
	c, _ := b.handles()
	addr, err := accountArg(account)
	if err != nil {
		return mocked(fallback, err)
	}
	return readInto(ctx, c, fallback, b.decodeUser, "users", addr)
}

func (b *Binding) decodeUser(out []any) (User, error) {
	staked, err := asBig(out, 0)
	if err != nil {
		return User{}, err
	}
	direct, err := asUint(out, 1)
	if err != nil {
		return User{}, err
	}
	team, err := asBig(out, 2)
	if err != nil {
		return User{}, err
	}
	star, err := asUint(out, 3)
	if err != nil {
		return User{}, err
	}
	ref, err := asAddress(out, 4)
	if err != nil {
		return User{}, err
	}
	return User{
		StakedAmount:        b.ToDecimalString(staked),
		DirectMembers:       direct,
		TotalTeamInvestment: b.ToDecimalString(team),
		StarLevel:           star,
		Referrer:            ref.Hex(),
	}, nil
}

// Limits returns the investment and withdrawal limits. Each field falls back
// on its own; Source is SourcePartial when only some did.
func (b *Binding) Limits(ctx context.Context) Reading[Limits] {
	fallback := b.mock.Limits()
	c, _ := b.handles()
	if c == nil {
		return mocked(fallback, ErrNoContract)
	}

	var (
		lim  Limits
		errs []error
	)
	amount := func(field, method string, dst *string, def string) {
		r := readInto(ctx, c, def, b.decodeAmount, method)
		*dst = r.Value
		if r.IsMock() {
			lim.Fallbacks = append(lim.Fallbacks, field)
			errs = append(errs, r.Err)
		}
	}
	amount("min_investment", "MIN_INVESTMENT", &lim.MinInvestment, fallback.MinInvestment)
	amount("max_investment", "MAX_INVESTMENT", &lim.MaxInvestment, fallback.MaxInvestment)
	amount("min_withdraw", "MIN_WITHDRAW", &lim.MinWithdraw, fallback.MinWithdraw)

	fee := readInto(ctx, c, fallback.WithdrawFeePercent, func(out []any) (uint64, error) {
		return asUint(out, 0)
	}, "WITHDRAW_FEE_PERCENT")
	lim.WithdrawFeePercent = fee.Value
	if fee.IsMock() {
		lim.Fallbacks = append(lim.Fallbacks, "withdraw_fee_percent")
		errs = append(errs, fee.Err)
	}

	switch len(lim.Fallbacks) {
	case 0:
		return live(lim)
	case 4:
		return mocked(lim, errors.Join(errs...))
	}
	return Reading[Limits]{Value: lim, Source: SourcePartial, Err: errors.Join(errs...)}
}

// Paused reports whether the contract is paused.
func (b *Binding) Paused(ctx context.Context) Reading[bool] {
	c, _ := b.handles()
	return readInto(ctx, c, b.mock.Paused(), func(out []any) (bool, error) {
		return asBool(out, 0)
	}, "paused")
}

// Leaderboard returns the ten leaderboard slots; empty slots hold the zero
// address.
func (b *Binding) Leaderboard(ctx context.Context) Reading[[]string] {
	fallback := make([]string, leaderboardSize)
	for i := range fallback {
		fallback[i] = zeroAddress
	}
	c, _ := b.handles()
	return readInto(ctx, c, fallback, func(out []any) ([]string, error) {
		list, err := asList(out, 0)
		if err != nil {
			return nil, err
		}
		addrs := make([]string, len(list))
		for i := range list {
			a, err := asAddress(list, i)
			if err != nil {
				return nil, err
			}
			addrs[i] = a.Hex()
		}
		return addrs, nil
	}, "getLeaderboard")
}

// TotalMembers returns the member count. When the counter cannot be read
// the non-empty leaderboard slots are counted instead (SourceDerived); with
// neither available the count is 0.
func (b *Binding) TotalMembers(ctx context.Context) Reading[uint64] {
	c, _ := b.handles()
	r := readInto(ctx, c, uint64(0), func(out []any) (uint64, error) {
		return asUint(out, 0)
	}, "totalMembers")
	if !r.IsMock() {
		return r
	}

	board := b.Leaderboard(ctx)
	if board.IsMock() {
		return mocked[uint64](0, errors.Join(r.Err, board.Err))
	}
	var n uint64
	for _, a := range board.Value {
		if a != zeroAddress {
			n++
		}
	}
	if n == 0 {
		return mocked[uint64](0, r.Err)
	}
	return Reading[uint64]{Value: n, Source: SourceDerived, Err: r.Err}
}

// ReferralDetails returns the per-level referral counters for account.
func (b *Binding) ReferralDetails(ctx context.Context, account string) Reading[[]string] {
	fallback := make([]string, referralLevels)
	for i := range fallback {
		fallback[i] = "0"
	}
	c, _ := b.handles()
	addr, err := accountArg(account)
	if err != nil {
		return mocked(fallback, err)
	}
	return readInto(ctx, c, fallback, func(out []any) ([]string, error) {
		list, err := asList(out, 0)
		if err != nil {
			return nil, err
		}
		vals := make([]string, len(list))
		for i := range list {
			n, err := asBig(list, i)
			if err != nil {
				return nil, err
			}
			vals[i] = n.String()
		}
		return vals, nil
	}, "getReferralDetails", addr)
}

// StarLevel returns account's star level.
func (b *Binding) StarLevel(ctx context.Context, account string) Reading[uint64] {
	fallback := b.mock.User().StarLevel
	c, _ := b.handles()
	addr, err := accountArg(account)
	if err != nil {
		return mocked(fallback, err)
	}
	return readInto(ctx, c, fallback, func(out []any) (uint64, error) {
		return asUint(out, 0)
	}, "getStarLevel", addr)
}

// RankRewards returns the reward for a 1-based leaderboard rank.
func (b *Binding) RankRewards(ctx context.Context, rank uint64) Reading[string] {
	fallback := "0"
	if rank >= 1 && rank <= uint64(len(mockRankRewards)) {
		fallback = mockRankRewards[rank-1]
	}
	c, _ := b.handles()
	return readInto(ctx, c, fallback, b.decodeAmount, "getRankRewards", new(big.Int).SetUint64(rank))
}

func (b *Binding) decodeAmount(out []any) (string, error) {
	n, err := asBig(out, 0)
	if err != nil {
		return "", err
	}
	return b.ToDecimalString(n), nil
}
