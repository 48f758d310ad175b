package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/heroicdash/internal/chain"
	"github.com/Mohsinsiddi/heroicdash/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// maxNotices is how many recent notices the dashboard keeps on screen.
const maxNotices = 4

// LiveSession is the part of a session the live dashboard drives.
type LiveSession interface {
	State() session.State
	Target() chain.Chain
	Refresh(ctx context.Context)
	SwitchNetwork(ctx context.Context) bool
}

// dashboardModel is the Bubble Tea model for the live session dashboard.
type dashboardModel struct {
	ctx        context.Context
	sess       LiveSession
	symbol     string
	state      session.State
	notices    []session.Notice
	lastUpdate time.Time
	interval   time.Duration
	busy       bool
	quitting   bool
}

type tickMsg time.Time
type refreshedMsg session.State
type noticeMsg session.Notice

// Dashboard is a live session view. r refreshes, s switches to the target
// network, q quits.
type Dashboard struct {
	program *tea.Program
	relay   *Relay
}

// NewDashboard builds the live view. Notices sent through relay while the
// view runs appear in it.
func NewDashboard(ctx context.Context, sess LiveSession, relay *Relay, symbol string, interval time.Duration, opts ...tea.ProgramOption) *Dashboard {
	m := newDashboardModel(ctx, sess, symbol, interval)
	return &Dashboard{program: tea.NewProgram(m, opts...), relay: relay}
}

func newDashboardModel(ctx context.Context, sess LiveSession, symbol string, interval time.Duration) dashboardModel {
	return dashboardModel{
		ctx:      ctx,
		sess:     sess,
		symbol:   symbol,
		state:    sess.State(),
		interval: interval,
	}
}

// Run shows the view until the user quits.
func (d *Dashboard) Run() error {
	if d.relay != nil {
		d.relay.attach(d.program)
		defer d.relay.attach(nil)
	}
	_, err := d.program.Run()
	return err
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tick(m.interval))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if !m.busy {
				m.busy = true
				return m, m.refreshCmd()
			}
		case "s":
			if !m.busy && !m.state.IsTargetNetwork {
				m.busy = true
				return m, m.switchCmd()
			}
		}

	case tickMsg:
		if m.busy {
			return m, tick(m.interval)
		}
		m.busy = true
		return m, tea.Batch(m.refreshCmd(), tick(m.interval))

	case refreshedMsg:
		m.state = session.State(msg)
		m.lastUpdate = time.Now()
		m.busy = false

	case noticeMsg:
		m.notices = append(m.notices, session.Notice(msg))
		if len(m.notices) > maxNotices {
			m.notices = m.notices[len(m.notices)-maxNotices:]
		}
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("⚡ Heroic Dashboard") + "\n")

	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format("15:04:05")
	}
	status := fmt.Sprintf("Updated: %s", updated)
	if m.busy {
		status += " · refreshing…"
	}
	sb.WriteString(StyleMeta.Render(status) + "\n\n")

	sb.WriteString(RenderSession(m.state, m.sess.Target(), m.symbol))

	for _, n := range m.notices {
		sb.WriteString(FormatNotice(n) + "\n")
	}

	keys := "r refresh · q quit"
	if m.state.Connected && !m.state.IsTargetNetwork {
		keys = "r refresh · s switch network · q quit"
	}
	sb.WriteString("\n" + StyleMeta.Render(keys) + "\n")
	return sb.String()
}

func (m dashboardModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		m.sess.Refresh(m.ctx)
		return refreshedMsg(m.sess.State())
	}
}

func (m dashboardModel) switchCmd() tea.Cmd {
	return func() tea.Msg {
		m.sess.SwitchNetwork(m.ctx)
		return refreshedMsg(m.sess.State())
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Relay forwards session notices to a running dashboard, or to a fallback
// notifier when no dashboard is attached.
type Relay struct {
	mu       sync.Mutex
	program  *tea.Program
	fallback session.Notifier
}

// NewRelay creates a relay printing through fallback while detached.
func NewRelay(fallback session.Notifier) *Relay {
	return &Relay{fallback: fallback}
}

// Notify implements session.Notifier.
func (r *Relay) Notify(n session.Notice) {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Send(noticeMsg(n))
		return
	}
	r.fallback.Notify(n)
}

func (r *Relay) attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.program = p
}
