package session

import (
	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
)

// Phase is the connection state.
type Phase int

const (
	Disconnected Phase = iota
	Connecting
	Connected
)

func (p Phase) String() string {
	switch p {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// Network is the wallet's chain. Known is false when the chain id could not
// be read.
type Network struct {
	ChainID int64 `json:"chain_id"`
	Known   bool  `json:"known"`
}

// State is a snapshot of the session. User and Limits are replaced, never
// mutated, on refresh.
type State struct {
	Connected       bool    `json:"connected"`
	Connecting      bool    `json:"connecting"`
	LoadingData     bool    `json:"loading_data"`
	Account         string  `json:"account,omitempty"`
	IsOwner         bool    `json:"is_owner"`
	IsDemo          bool    `json:"is_demo"`
	Network         Network `json:"network"`
	IsTargetNetwork bool    `json:"is_target_network"`
	Paused          bool    `json:"paused"`
	MetaMask        bool    `json:"metamask"`

	User         *contract.User   `json:"user,omitempty"`
	UserSource   contract.Source  `json:"user_source,omitempty"`
	UserAccount  string           `json:"user_account,omitempty"` // account User was read for
	Limits       *contract.Limits `json:"limits,omitempty"`
	LimitsSource contract.Source  `json:"limits_source,omitempty"`
}

// clearUser drops everything read for the current account.
func (s *State) clearUser() {
	s.User, s.UserSource, s.UserAccount = nil, "", ""
	s.IsOwner = false
}

// Phase derives the connection phase.
func (s State) Phase() Phase {
	switch {
	case s.Connecting:
		return Connecting
	case s.Connected:
		return Connected
	}
	return Disconnected
}

// FormattedAddress returns the shortened account, or "".
func (s State) FormattedAddress() string {
	if s.Account == "" {
		return ""
	}
	return wallet.FormatAddress(s.Account)
}
