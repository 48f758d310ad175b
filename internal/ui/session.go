package ui

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/heroicdash/internal/chain"
	"github.com/Mohsinsiddi/heroicdash/internal/dashboard"
	"github.com/Mohsinsiddi/heroicdash/internal/session"
)

// NetworkLabel names the session's network, flagging a wrong one.
func NetworkLabel(st session.State, target chain.Chain) string {
	switch {
	case !st.Network.Known:
		return Meta("unknown")
	case st.IsTargetNetwork:
		return ChainName(target.DisplayName)
	}
	name := fmt.Sprintf("chain %d", st.Network.ChainID)
	if c, err := chain.NewRegistry().GetByChainID(st.Network.ChainID); err == nil {
		name = c.DisplayName
	}
	return StyleError.Render(name + " (switch to " + target.DisplayName + ")")
}

// RenderSession renders the account, staking and limit blocks for a session
// snapshot.
func RenderSession(st session.State, target chain.Chain, symbol string) string {
	if !st.Connected {
		return Warn("Wallet not connected") + "\n"
	}

	var sb strings.Builder

	status := Success(st.Phase().String())
	if st.IsDemo {
		status = StyleWarning.Render("demo mode")
	}
	account := [][2]string{
		{"Account", Addr(st.Account)},
		{"Status", status},
		{"Network", NetworkLabel(st, target)},
	}
	if st.IsOwner {
		account = append(account, [2]string{"Role", StyleChain.Render("owner")})
	}
	if st.Paused {
		account = append(account, [2]string{"Contract", StyleError.Render("paused")})
	}
	sb.WriteString(KeyValueBlock("Account", account) + "\n")

	if u := st.User; u != nil {
		sb.WriteString(KeyValueBlock("Staking "+Source(st.UserSource), [][2]string{
			{"Staked", Amount(u.StakedAmount, symbol)},
			{"Direct members", Val(fmt.Sprint(u.DirectMembers))},
			{"Team investment", Amount(u.TotalTeamInvestment, symbol)},
			{"Star level", Stars(dashboard.Stars(u.StarLevel)) + Meta(fmt.Sprintf(" %d", u.StarLevel))},
			{"Referrer", Addr(u.Referrer)},
		}) + "\n")
	}

	if l := st.Limits; l != nil {
		sb.WriteString(KeyValueBlock("Contract limits "+Source(st.LimitsSource), [][2]string{
			{"Min investment", Amount(l.MinInvestment, symbol)},
			{"Max investment", Amount(l.MaxInvestment, symbol)},
			{"Min withdraw", Amount(l.MinWithdraw, symbol)},
			{"Withdraw fee", Val(fmt.Sprintf("%d%%", l.WithdrawFeePercent))},
		}) + "\n")
	}
	return sb.String()
}
