// Package endpoint picks the node URL the wallet provider dials. Candidates
// are probed for latency, head block and chain id; nodes serving another
// chain or lagging behind the best head are skipped.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KyberNetwork/logger"
	"github.com/Mohsinsiddi/heroicdash/internal/chain"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/sync/errgroup"
)

// ErrNoHealthyRPC is returned when no candidate endpoint is usable.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Strategy decides how an endpoint is chosen.
type Strategy string

const (
	StrategyFastest  Strategy = "fastest"  // probe all, lowest latency among fresh nodes
	StrategyFailover Strategy = "failover" // first healthy node in configured order

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
	maxProbes           = 4
	probeTimeout        = 5 * time.Second
)

// Endpoint is a probed node.
type Endpoint struct {
	URL         string        `json:"url"`
	Latency     time.Duration `json:"latency"`
	BlockNumber uint64        `json:"block_number"`
	ChainID     int64         `json:"chain_id"`
	Healthy     bool          `json:"healthy"`
	Err         error         `json:"-"`
}

// Probe dials url and reads its chain id and head block. The endpoint is
// unhealthy when either call fails or the node serves a chain other than
// wantChain (0 accepts any chain).
func Probe(ctx context.Context, url string, wantChain int64) Endpoint {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	ep := Endpoint{URL: url}
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		ep.Err = err
		return ep
	}
	defer c.Close()

	start := time.Now()
	var head hexutil.Uint64
	if err := c.CallContext(ctx, &head, "eth_blockNumber"); err != nil {
		ep.Err = err
		return ep
	}
	ep.Latency = time.Since(start)
	ep.BlockNumber = uint64(head)

	var hexID string
	if err := c.CallContext(ctx, &hexID, "eth_chainId"); err != nil {
		ep.Err = err
		return ep
	}
	if ep.ChainID, err = chain.ParseHexID(hexID); err != nil {
		ep.Err = err
		return ep
	}
	if wantChain != 0 && ep.ChainID != wantChain {
		ep.Err = fmt.Errorf("serves chain %d, want %d", ep.ChainID, wantChain)
		return ep
	}
	ep.Healthy = true
	return ep
}

// ProbeAll probes every url concurrently. Results keep the input order.
func ProbeAll(ctx context.Context, urls []string, wantChain int64) []Endpoint {
	out := make([]Endpoint, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxProbes)
	for i, u := range urls {
		g.Go(func() error {
			out[i] = Probe(gctx, u, wantChain)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Select picks a node from urls. A single candidate is returned unprobed.
func Select(ctx context.Context, urls []string, wantChain int64, s Strategy) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}

	if s == StrategyFailover {
		for _, u := range urls {
			ep := Probe(ctx, u, wantChain)
			if ep.Healthy {
				return u, nil
			}
			logger.WithFields(logger.Fields{
				"url":   u,
				"error": ep.Err,
			}).Debug("Endpoint unhealthy, trying next")
		}
		return "", ErrNoHealthyRPC
	}

	best, err := Fastest(ProbeAll(ctx, urls, wantChain))
	if err != nil {
		return "", err
	}
	logger.WithFields(logger.Fields{
		"url":     best.URL,
		"latency": best.Latency.String(),
		"block":   best.BlockNumber,
	}).Debug("Selected endpoint")
	return best.URL, nil
}

// Fastest returns the healthy endpoint with the best score, ignoring nodes
// more than a few blocks behind the best head.
func Fastest(endpoints []Endpoint) (*Endpoint, error) {
	var bestBlock uint64
	for _, e := range endpoints {
		if e.Healthy && e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var (
		winner    *Endpoint
		bestScore float64
	)
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Healthy || bestBlock-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if s := score(e, bestBlock); winner == nil || s > bestScore {
			winner, bestScore = e, s
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}
	return winner, nil
}

// Candidates lists the URLs to try for c: custom URLs first, then the
// registry's, without duplicates.
func Candidates(c chain.Chain, custom []string) []string {
	seen := make(map[string]bool, len(custom)+len(c.RPCs))
	var out []string
	for _, u := range append(append([]string{}, custom...), c.RPCs...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func score(e *Endpoint, bestBlock uint64) float64 {
	var s float64
	// Faster is better; sub-millisecond probes count as 1ms.
	ms := e.Latency.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	s += 1000.0 / float64(ms)
	// One point lost per block behind.
	s += float64(10 - (bestBlock - e.BlockNumber))
	return s
}
