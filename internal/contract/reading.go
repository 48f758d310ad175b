package contract

import "errors"

var (
	// ErrCallFailed is returned when a contract call returns no data.
	ErrCallFailed = errors.New("contract call failed")
	// ErrConversion is returned when an amount cannot be converted to or from
	// fixed-point token units.
	ErrConversion = errors.New("amount conversion failed")
	// ErrReverted is returned when a mined transaction has status 0.
	ErrReverted = errors.New("transaction reverted")
	// ErrNoContract is returned by live operations before Setup succeeds.
	ErrNoContract = errors.New("contract not initialized")
)

// Source records where a value came from.
type Source string

const (
	SourceLive    Source = "live"
	SourcePartial Source = "partial"
	SourceDerived Source = "derived"
	SourceMock    Source = "mock"
)

// Reading is a contract read tagged with its provenance. Reads never fail
// outward: on error Value holds the demo value, Source is SourceMock and Err
// holds the cause.
type Reading[T any] struct {
	Value  T
	Source Source
	Err    error
}

// IsMock reports whether the value is a demo value.
func (r Reading[T]) IsMock() bool {
	return r.Source == SourceMock
}

func live[T any](v T) Reading[T] {
	return Reading[T]{Value: v, Source: SourceLive}
}

func mocked[T any](v T, err error) Reading[T] {
	return Reading[T]{Value: v, Source: SourceMock, Err: err}
}

// Receipt is the outcome of a write. Status is 1 on success. Simulated is set
// when no transaction reached the chain and demo state was updated instead;
// Err then carries the reason, if any.
type Receipt struct {
	Status      uint64 `json:"status"`
	TxHash      string `json:"tx_hash,omitempty"`
	BlockNumber uint64 `json:"block_number,omitempty"`
	Simulated   bool   `json:"simulated"`
	Err         error  `json:"-"`
}

// User is the contract's per-address record. Amounts are decimal strings in
// token units.
type User struct {
	StakedAmount        string `json:"staked_amount"`
	DirectMembers       uint64 `json:"direct_members"`
	TotalTeamInvestment string `json:"total_team_investment"`
	StarLevel           uint64 `json:"star_level"`
	Referrer            string `json:"referrer"`
}

// Limits are the contract's investment and withdrawal bounds. Fallbacks names
// the fields that could not be read live.
type Limits struct {
	MinInvestment      string   `json:"min_investment"`
	MaxInvestment      string   `json:"max_investment"`
	MinWithdraw        string   `json:"min_withdraw"`
	WithdrawFeePercent uint64   `json:"withdraw_fee_percent"`
	Fallbacks          []string `json:"fallbacks,omitempty"`
}
