package ui

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/heroicdash/internal/chain"
	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/Mohsinsiddi/heroicdash/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu        sync.Mutex
	state     session.State
	refreshes int
	switches  int
}

func (f *fakeSession) State() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) Target() chain.Chain {
	c, _ := chain.NewRegistry().GetByChainID(chain.PolygonMainnet)
	return *c
}

func (f *fakeSession) Refresh(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	f.state.User.StakedAmount = "1100"
}

func (f *fakeSession) SwitchNetwork(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.switches++
	f.state.IsTargetNetwork = true
	f.state.Network = session.Network{ChainID: chain.PolygonMainnet, Known: true}
	return true
}

func connectedState() session.State {
	return session.State{
		Connected:       true,
		Account:         "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		Network:         session.Network{ChainID: chain.PolygonMumbai, Known: true},
		IsTargetNetwork: false,
		User:            &contract.User{StakedAmount: "1000", DirectMembers: 5, TotalTeamInvestment: "5000", StarLevel: 2},
		UserSource:      contract.SourceMock,
		Limits:          &contract.Limits{MinInvestment: "5", MaxInvestment: "10000", MinWithdraw: "4", WithdrawFeePercent: 5},
		LimitsSource:    contract.SourceLive,
	}
}

func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	return cmd()
}

func TestDashboardRefreshKey(t *testing.T) {
	sess := &fakeSession{state: connectedState()}
	m := newDashboardModel(context.Background(), sess, "USDT", time.Minute)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(dashboardModel)
	assert.True(t, m.busy)

	msg := runCmd(t, cmd)
	next, _ = m.Update(msg)
	m = next.(dashboardModel)

	assert.False(t, m.busy)
	assert.Equal(t, 1, sess.refreshes)
	assert.Equal(t, "1100", m.state.User.StakedAmount)
	assert.False(t, m.lastUpdate.IsZero())
}

func TestDashboardIgnoresKeysWhileBusy(t *testing.T) {
	sess := &fakeSession{state: connectedState()}
	m := newDashboardModel(context.Background(), sess, "USDT", time.Minute)
	m.busy = true

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Nil(t, cmd)
}

func TestDashboardSwitchKey(t *testing.T) {
	sess := &fakeSession{state: connectedState()}
	m := newDashboardModel(context.Background(), sess, "USDT", time.Minute)
	assert.Contains(t, ansi.Strip(m.View()), "s switch network")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	next, _ = next.(dashboardModel).Update(runCmd(t, cmd))
	m = next.(dashboardModel)

	assert.Equal(t, 1, sess.switches)
	assert.True(t, m.state.IsTargetNetwork)
	assert.NotContains(t, ansi.Strip(m.View()), "s switch network")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Nil(t, cmd, "already on target")
}

func TestDashboardQuit(t *testing.T) {
	m := newDashboardModel(context.Background(), &fakeSession{state: connectedState()}, "USDT", time.Minute)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, next.(dashboardModel).View())
}

func TestDashboardKeepsRecentNotices(t *testing.T) {
	m := newDashboardModel(context.Background(), &fakeSession{state: connectedState()}, "USDT", time.Minute)
	var model tea.Model = m
	for _, title := range []string{"one", "two", "three", "four", "five"} {
		model, _ = model.Update(noticeMsg{Title: title, Level: session.LevelInfo})
	}
	m = model.(dashboardModel)
	require.Len(t, m.notices, maxNotices)
	assert.Equal(t, "two", m.notices[0].Title)
	assert.Contains(t, ansi.Strip(m.View()), "five")
}

func TestDashboardView(t *testing.T) {
	m := newDashboardModel(context.Background(), &fakeSession{state: connectedState()}, "USDT", time.Minute)
	view := ansi.Strip(m.View())

	assert.Contains(t, view, "Heroic Dashboard")
	assert.Contains(t, view, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	assert.Contains(t, view, "Polygon Mumbai Testnet (switch to Polygon Mainnet)")
	assert.Contains(t, view, "1000 USDT")
	assert.Contains(t, view, "(demo)")
	assert.Contains(t, view, "★★☆☆☆")
	assert.Contains(t, view, "5%")
}

func TestRenderSessionDisconnected(t *testing.T) {
	out := ansi.Strip(RenderSession(session.State{}, chain.Chain{DisplayName: "Polygon Mainnet"}, "USDT"))
	assert.Contains(t, out, "Wallet not connected")
}

func TestRelayFallsBackWhenDetached(t *testing.T) {
	var buf bytes.Buffer
	r := NewRelay(NewNotifier(&buf))
	r.Notify(session.Notice{Kind: session.KindDemo, Level: session.LevelInfo, Title: "Demo Mode Active"})
	assert.Contains(t, ansi.Strip(buf.String()), "ℹ Demo Mode Active")
}
