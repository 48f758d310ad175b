package dashboard

import (
	"strconv"

	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/shopspring/decimal"
)

var (
	earningsRate = decimal.RequireFromString("0.05")
	pendingRate  = decimal.RequireFromString("0.1")
	teamFactor   = decimal.RequireFromString("2.5")
)

// Referrals summarizes a staker's referral network.
type Referrals struct {
	DirectReferrals uint64   `json:"direct_referrals"`
	TeamSize        string   `json:"team_size"`
	TotalEarnings   string   `json:"total_earnings"`
	PendingRewards  string   `json:"pending_rewards"`
	LevelCounts     []uint64 `json:"level_counts"`
	Link            string   `json:"link,omitempty"`
}

// ReferralSummary derives referral figures from the user record and the
// per-level referral details. Earnings are 5% of team investment and pending
// rewards 10% of earnings, both to 2dp. Team size is estimated from direct
// referrals when the details carry no counts.
func ReferralSummary(u contract.User, details []string) Referrals {
	earnings := lenient(u.TotalTeamInvestment).Mul(earningsRate).Round(2)

	counts := make([]uint64, 0, len(details))
	var team uint64
	for _, d := range details {
		n, err := strconv.ParseUint(d, 10, 64)
		if err != nil {
			n = 0
		}
		counts = append(counts, n)
		team += n
	}

	size := strconv.FormatUint(team, 10)
	if team == 0 {
		size = decimal.NewFromUint64(u.DirectMembers).Mul(teamFactor).StringFixed(0)
	}

	return Referrals{
		DirectReferrals: u.DirectMembers,
		TeamSize:        size,
		TotalEarnings:   earnings.StringFixed(2),
		PendingRewards:  earnings.Mul(pendingRate).StringFixed(2),
		LevelCounts:     counts,
	}
}

// ReferralLink builds the invite link for account under base.
func ReferralLink(base, account string) string {
	return base + "/?ref=" + account
}
