package dashboard

import (
	"context"
	"strconv"

	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"golang.org/x/sync/errgroup"
)

// Level is the business a staker needs to unlock a rank.
type Level struct {
	Level          int    `json:"level"`
	SelfBusiness   string `json:"required_self_business"`
	DirectTeam     uint64 `json:"required_direct_team"`
	DirectBusiness string `json:"required_direct_business"`
	TotalTeam      string `json:"required_total_team_business"`
}

// LevelRequirements returns the five rank levels, lowest first.
func LevelRequirements() []Level {
	return []Level{
		{Level: 1, SelfBusiness: "250", DirectTeam: 20, DirectBusiness: "500", TotalTeam: "2000"},
		{Level: 2, SelfBusiness: "500", DirectTeam: 50, DirectBusiness: "1000", TotalTeam: "4000"},
		{Level: 3, SelfBusiness: "1000", DirectTeam: 100, DirectBusiness: "2000", TotalTeam: "7000"},
		{Level: 4, SelfBusiness: "2000", DirectTeam: 200, DirectBusiness: "4000", TotalTeam: "12000"},
		{Level: 5, SelfBusiness: "5000", DirectTeam: 700, DirectBusiness: "7000", TotalTeam: "15000"},
	}
}

// Business is a staker's standing measured against a Level.
type Business struct {
	Self           string `json:"self_business"`
	DirectTeam     uint64 `json:"direct_team"`
	DirectBusiness string `json:"direct_business"`
	TotalTeam      string `json:"total_team_business"`
}

// BusinessOf builds a staker's standing from their contract record. The
// contract does not expose direct business, so it reads as zero.
func BusinessOf(u contract.User) Business {
	return Business{
		Self:           u.StakedAmount,
		DirectTeam:     u.DirectMembers,
		DirectBusiness: "0",
		TotalTeam:      u.TotalTeamInvestment,
	}
}

// Requirements records which of a level's four requirements are met.
type Requirements struct {
	SelfBusiness   bool `json:"self_business"`
	DirectTeam     bool `json:"direct_team"`
	DirectBusiness bool `json:"direct_business"`
	TotalTeam      bool `json:"total_team_business"`
}

// All reports whether every requirement is met.
func (r Requirements) All() bool {
	return r.SelfBusiness && r.DirectTeam && r.DirectBusiness && r.TotalTeam
}

// Rank is a level with its reward and the staker's progress towards it.
type Rank struct {
	Level
	Stars    int          `json:"stars"`
	Reward   string       `json:"reward"`
	Met      Requirements `json:"requirements_met"`
	Unlocked bool         `json:"unlocked"`
}

// RankProgress measures b against each level. rewards[i] is the reward for
// levels[i]; missing entries read as "0".
func RankProgress(b Business, levels []Level, rewards []string) []Rank {
	self, direct, total := lenient(b.Self), lenient(b.DirectBusiness), lenient(b.TotalTeam)

	out := make([]Rank, len(levels))
	for i, lvl := range levels {
		met := Requirements{
			SelfBusiness:   self.GreaterThanOrEqual(lenient(lvl.SelfBusiness)),
			DirectTeam:     b.DirectTeam >= lvl.DirectTeam,
			DirectBusiness: direct.GreaterThanOrEqual(lenient(lvl.DirectBusiness)),
			TotalTeam:      total.GreaterThanOrEqual(lenient(lvl.TotalTeam)),
		}
		reward := "0"
		if i < len(rewards) && rewards[i] != "" {
			reward = rewards[i]
		}
		out[i] = Rank{Level: lvl, Stars: lvl.Level, Reward: reward, Met: met, Unlocked: met.All()}
	}
	return out
}

// RewardReader reads per-rank rewards.
type RewardReader interface {
	RankRewards(ctx context.Context, rank uint64) contract.Reading[string]
}

// Ranks reads every level's reward concurrently and measures b against them.
func Ranks(ctx context.Context, src RewardReader, b Business) ([]Rank, error) {
	levels := LevelRequirements()
	rewards := make([]string, len(levels))

	g, gctx := errgroup.WithContext(ctx)
	for i, lvl := range levels {
		g.Go(func() error {
			rewards[i] = src.RankRewards(gctx, uint64(lvl.Level)).Value
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return RankProgress(b, levels, rewards), nil
}

// Stars renders a star level as filled and empty stars out of five.
func Stars(level uint64) string {
	const total = 5
	if level > total {
		level = total
	}
	out := make([]rune, 0, total)
	for i := uint64(0); i < total; i++ {
		if i < level {
			out = append(out, '★')
		} else {
			out = append(out, '☆')
		}
	}
	return string(out)
}

// StarLabel is the short label used in tables, e.g. "3★".
func StarLabel(level uint64) string {
	return strconv.FormatUint(level, 10) + "★"
}
