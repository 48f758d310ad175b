package dashboard

import (
	"context"
	"sort"

	"github.com/KyberNetwork/logger"
	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// maxLookups bounds concurrent per-address reads.
const maxLookups = 4

// Reader is the slice of the contract binding the leaderboard needs.
type Reader interface {
	Leaderboard(ctx context.Context) contract.Reading[[]string]
	UserData(ctx context.Context, account string) contract.Reading[contract.User]
}

// Entry is one leaderboard row.
type Entry struct {
	Rank             int             `json:"rank"`
	Address          string          `json:"address"`
	FormattedAddress string          `json:"formatted_address"`
	StakedAmount     string          `json:"staked_amount"`
	StarLevel        uint64          `json:"star_level"`
	Source           contract.Source `json:"source"`
}

// Board is the leaderboard with its aggregate figures.
type Board struct {
	Entries      []Entry         `json:"entries"`
	Stakers      int             `json:"stakers"`
	TotalStaked  string          `json:"total_staked"`
	AverageStake string          `json:"average_stake"`
	Source       contract.Source `json:"source"`
}

// Leaderboard reads the contract's leaderboard, drops empty slots, fetches
// each staker and sorts by staked amount, largest first. Totals are 2dp.
func Leaderboard(ctx context.Context, src Reader) (Board, error) {
	list := src.Leaderboard(ctx)

	var addrs []string
	for _, a := range list.Value {
		if !common.IsHexAddress(a) || common.HexToAddress(a) == (common.Address{}) {
			continue
		}
		addrs = append(addrs, a)
	}

	entries := make([]Entry, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLookups)
	for i, addr := range addrs {
		g.Go(func() error {
			r := src.UserData(gctx, addr)
			if r.Err != nil {
				logger.WithFields(logger.Fields{
					"address": addr,
					"error":   r.Err,
				}).Warn("Leaderboard user read failed")
			}
			entries[i] = Entry{
				Address:          addr,
				FormattedAddress: wallet.FormatAddress(addr),
				StakedAmount:     r.Value.StakedAmount,
				StarLevel:        r.Value.StarLevel,
				Source:           r.Source,
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return Board{}, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return lenient(entries[i].StakedAmount).GreaterThan(lenient(entries[j].StakedAmount))
	})

	total := decimal.Zero
	for i := range entries {
		entries[i].Rank = i + 1
		total = total.Add(lenient(entries[i].StakedAmount))
	}

	b := Board{
		Entries:      entries,
		Stakers:      len(entries),
		TotalStaked:  total.StringFixed(2),
		AverageStake: "0",
		Source:       list.Source,
	}
	if len(entries) > 0 {
		b.AverageStake = total.Div(decimal.NewFromInt(int64(len(entries)))).StringFixed(2)
	}
	return b, nil
}
