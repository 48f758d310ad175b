package session_test

import (
	"context"
	"errors"
	"sync"

	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/Mohsinsiddi/heroicdash/internal/session"
)

const (
	alice = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	bob   = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
)

// ---------------------------------------------------------------------------
// fakeWallet
// ---------------------------------------------------------------------------

type fakeWallet struct {
	mu         sync.Mutex
	available  bool
	chainID    int64
	chainOK    bool
	accounts   []string
	requestErr error
	switchOK   bool
	switches   []int64

	accountFns    []func([]string)
	chainFns      []func(int64)
	disconnectFns []func(error)
}

func newFakeWallet(chainID int64) *fakeWallet {
	return &fakeWallet{available: true, chainID: chainID, chainOK: true, accounts: []string{alice}}
}

func (w *fakeWallet) IsAvailable() bool { return w.available }
func (w *fakeWallet) IsMetaMask() bool  { return true }

func (w *fakeWallet) ChainID(context.Context) (int64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chainID, w.chainOK
}

func (w *fakeWallet) RequestAccounts(context.Context) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.requestErr != nil {
		return nil, w.requestErr
	}
	return append([]string(nil), w.accounts...), nil
}

func (w *fakeWallet) Accounts(context.Context) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.accounts...)
}

func (w *fakeWallet) SwitchNetwork(_ context.Context, chainID int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.switches = append(w.switches, chainID)
	if w.switchOK {
		w.chainID = chainID
	}
	return w.switchOK
}

func (w *fakeWallet) OnAccountsChanged(fn func([]string)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accountFns = append(w.accountFns, fn)
	return func() {}
}

func (w *fakeWallet) OnChainChanged(fn func(int64)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chainFns = append(w.chainFns, fn)
	return func() {}
}

func (w *fakeWallet) OnDisconnect(fn func(error)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disconnectFns = append(w.disconnectFns, fn)
	return func() {}
}

func (w *fakeWallet) emitAccounts(accounts []string) {
	w.mu.Lock()
	fns := append([]func([]string){}, w.accountFns...)
	w.mu.Unlock()
	for _, fn := range fns {
		fn(accounts)
	}
}

func (w *fakeWallet) emitChain(id int64) {
	w.mu.Lock()
	w.chainID = id
	fns := append([]func(int64){}, w.chainFns...)
	w.mu.Unlock()
	for _, fn := range fns {
		fn(id)
	}
}

func (w *fakeWallet) emitDisconnect(err error) {
	w.mu.Lock()
	fns := append([]func(error){}, w.disconnectFns...)
	w.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

// ---------------------------------------------------------------------------
// fakeContract
// ---------------------------------------------------------------------------

var errRPC = errors.New("rpc timeout")

var mockUser = contract.User{StakedAmount: "1000", DirectMembers: 5, TotalTeamInvestment: "5000", StarLevel: 2}

type fakeContract struct {
	mu           sync.Mutex
	live         bool
	initialized  bool
	owner        string
	user         contract.User
	userFailures int
	limitsErr    error
	pausedErr    error
	paused       bool

	setups    []string
	resets    int
	userCalls int
	limitCall int
}

func newFakeContract() *fakeContract {
	return &fakeContract{
		live:  true,
		owner: alice,
		user:  contract.User{StakedAmount: "250", DirectMembers: 1, TotalTeamInvestment: "900", StarLevel: 1},
	}
}

func (c *fakeContract) Setup(_ context.Context, account string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = true
	c.setups = append(c.setups, account)
	return c.live
}

func (c *fakeContract) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

func (c *fakeContract) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = false
	c.resets++
}

func (c *fakeContract) IsOwner(_ context.Context, account string) contract.Reading[bool] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return contract.Reading[bool]{Value: account == c.owner, Source: contract.SourceLive}
}

func (c *fakeContract) UserData(context.Context, string) contract.Reading[contract.User] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userCalls++
	if c.userCalls <= c.userFailures {
		return contract.Reading[contract.User]{Value: mockUser, Source: contract.SourceMock, Err: errRPC}
	}
	return contract.Reading[contract.User]{Value: c.user, Source: contract.SourceLive}
}

func (c *fakeContract) Limits(context.Context) contract.Reading[contract.Limits] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limitCall++
	lim := contract.Limits{MinInvestment: "5", MaxInvestment: "10000", MinWithdraw: "4", WithdrawFeePercent: 5}
	if c.limitsErr != nil {
		return contract.Reading[contract.Limits]{Value: lim, Source: contract.SourceMock, Err: c.limitsErr}
	}
	lim.MaxInvestment = "20000"
	return contract.Reading[contract.Limits]{Value: lim, Source: contract.SourceLive}
}

func (c *fakeContract) Paused(context.Context) contract.Reading[bool] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pausedErr != nil {
		return contract.Reading[bool]{Source: contract.SourceMock, Err: c.pausedErr}
	}
	return contract.Reading[bool]{Value: c.paused, Source: contract.SourceLive}
}

func (c *fakeContract) counts() (setups, resets, userCalls int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.setups), c.resets, c.userCalls
}

// ---------------------------------------------------------------------------
// notice recorder
// ---------------------------------------------------------------------------

type recorder struct {
	mu      sync.Mutex
	notices []session.Notice
}

func (r *recorder) Notify(n session.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Title
	}
	return out
}

func (r *recorder) kinds() []session.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.Kind, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Kind
	}
	return out
}

func (r *recorder) has(kind session.Kind) bool {
	for _, k := range r.kinds() {
		if k == kind {
			return true
		}
	}
	return false
}
