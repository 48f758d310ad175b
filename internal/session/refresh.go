package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KyberNetwork/logger"
	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
)

// Refresh re-reads the session's contract data. User data and limits are
// retried with a fixed delay; the pause flag and ownership are read once.
// The reads run concurrently and fail independently. Failures are reported as notices,
// never returned.
func (m *Manager) Refresh(ctx context.Context) {
	st := m.State()
	if !st.Connected || st.Account == "" {
		return
	}
	account := st.Account

	m.update(func(s *State) { s.LoadingData = true })
	defer m.update(func(s *State) { s.LoadingData = false })

	m.CheckNetwork(ctx)

	if !m.contract.Initialized() {
		if !m.contract.Setup(ctx, account) && !st.IsDemo {
			m.notify(KindDataFallback, LevelWarning, "Warning",
				"Could not connect to blockchain. Some data may be simulated.")
		}
	}

	var g errgroup.Group
	g.Go(func() error { return m.refreshUser(ctx, account, st.IsDemo) })
	g.Go(func() error { return m.refreshLimits(ctx, st.IsDemo) })
	g.Go(func() error { return m.refreshPaused(ctx, st.IsDemo) })
	if !st.IsDemo {
		g.Go(func() error { return m.refreshOwner(ctx, account) })
	}

	if err := g.Wait(); err != nil {
		logger.WithFields(logger.Fields{
			"account": account,
			"error":   err,
		}).Warn("Refresh completed with fallbacks")
	}
}

func (m *Manager) refreshUser(ctx context.Context, account string, demo bool) error {
	var last contract.Reading[contract.User]
	err := m.retry(ctx, "users", func() error {
		last = m.contract.UserData(ctx, account)
		return last.Err
	})

	m.update(func(s *State) {
		if !strings.EqualFold(s.Account, account) {
			return // account changed while reading
		}
		cached := s.User != nil && s.UserSource != contract.SourceMock &&
			strings.EqualFold(s.UserAccount, account)
		if err != nil && cached {
			return
		}
		s.User, s.UserSource, s.UserAccount = &last.Value, last.Source, account
	})
	if err != nil && !demo {
		m.notify(KindDataFallback, LevelWarning, "Warning", "Failed to fetch user data. Using cached data.")
		return fmt.Errorf("user data: %w", err)
	}
	return nil
}

func (m *Manager) refreshOwner(ctx context.Context, account string) error {
	r := m.contract.IsOwner(ctx, account)
	m.update(func(s *State) {
		if strings.EqualFold(s.Account, account) {
			s.IsOwner = r.Value
		}
	})
	if r.Err != nil {
		return fmt.Errorf("owner: %w", r.Err)
	}
	return nil
}

func (m *Manager) refreshLimits(ctx context.Context, demo bool) error {
	var last contract.Reading[contract.Limits]
	err := m.retry(ctx, "limits", func() error {
		last = m.contract.Limits(ctx)
		return last.Err
	})

	m.update(func(s *State) {
		s.Limits, s.LimitsSource = &last.Value, last.Source
	})
	if err != nil && !demo {
		m.notify(KindDataFallback, LevelWarning, "Warning", "Failed to fetch contract limits. Using default values.")
		return fmt.Errorf("limits: %w", err)
	}
	return nil
}

func (m *Manager) refreshPaused(ctx context.Context, demo bool) error {
	r := m.contract.Paused(ctx)
	m.update(func(s *State) { s.Paused = r.Value })
	if r.Err != nil && !demo {
		m.notify(KindDataFallback, LevelWarning, "Warning", "Could not determine if contract is paused. Assuming not paused.")
		return fmt.Errorf("paused: %w", r.Err)
	}
	return nil
}

// retry runs op up to m.attempts times with a fixed delay. Failures that
// cannot improve on retry (no contract, bad account) stop immediately.
func (m *Manager) retry(ctx context.Context, what string, op func() error) error {
	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, contract.ErrNoContract) || errors.Is(err, contract.ErrConversion) {
			return backoff.Permanent(err)
		}
		logger.WithFields(logger.Fields{
			"read":    what,
			"attempt": attempt,
			"error":   err,
		}).Debug("Read failed, retrying")
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(m.retryDelay), uint64(m.attempts-1)),
		ctx,
	)
	return backoff.Retry(wrapped, policy)
}
