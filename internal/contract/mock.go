package contract

import (
	"math/big"
	"sync"

	"github.com/KyberNetwork/logger"
)

// MockAddress is the account reported in demo mode.
const MockAddress = "0xMockAddress123456789012345678901234567890"

var mockRankRewards = []string{"100", "250", "500", "1000", "2000"}

// mockState holds the demo values. Writes that cannot reach the chain update
// it so the dashboard reflects the simulated action.
type mockState struct {
	mu sync.Mutex

	user      User
	limits    Limits
	balance   string
	allowance string
	paused    bool
}

func newMockState() *mockState {
	return &mockState{
		user: User{
			StakedAmount:        "1000",
			DirectMembers:       5,
			TotalTeamInvestment: "5000",
			StarLevel:           2,
			Referrer:            "0x1234567890123456789012345678901234567890",
		},
		limits: Limits{
			MinInvestment:      "5",
			MaxInvestment:      "10000",
			MinWithdraw:        "4",
			WithdrawFeePercent: 5,
		},
		balance:   "500",
		allowance: "0",
	}
}

func (m *mockState) User() User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

func (m *mockState) Limits() Limits {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.limits
}

func (m *mockState) Balance() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance
}

func (m *mockState) Allowance() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowance
}

func (m *mockState) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *mockState) stake(amount string) {
	m.apply("stake", amount, func(a *big.Int) {
		m.user.StakedAmount = addDecimal(m.user.StakedAmount, a)
		m.balance = addDecimal(m.balance, new(big.Int).Neg(a))
	})
}

func (m *mockState) invest(amount string) {
	m.apply("invest", amount, func(a *big.Int) {
		m.user.TotalTeamInvestment = addDecimal(m.user.TotalTeamInvestment, a)
		m.balance = addDecimal(m.balance, new(big.Int).Neg(a))
	})
}

func (m *mockState) withdraw(amount string) {
	m.apply("withdraw", amount, func(a *big.Int) {
		m.user.StakedAmount = addDecimal(m.user.StakedAmount, new(big.Int).Neg(a))
		m.balance = addDecimal(m.balance, a)
	})
}

func (m *mockState) approve(amount string) {
	m.apply("approve", amount, func(a *big.Int) {
		m.allowance = formatMock(a)
	})
}

func (m *mockState) setPaused(p bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = p
}

// apply parses amount and runs fn under the lock. An unparseable amount
// leaves the state unchanged.
func (m *mockState) apply(op, amount string, fn func(a *big.Int)) {
	a, err := ratUnits{}.toFixed(amount, Decimals)
	if err != nil {
		logger.WithFields(logger.Fields{
			"op":     op,
			"amount": amount,
			"error":  err,
		}).Warn("Skipping demo update for invalid amount")
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(a)
}

func addDecimal(cur string, delta *big.Int) string {
	base, err := ratUnits{}.toFixed(cur, Decimals)
	if err != nil {
		base = new(big.Int)
	}
	return formatMock(base.Add(base, delta))
}

func formatMock(v *big.Int) string {
	s, _ := ratUnits{}.toDecimal(v, Decimals)
	return s
}
