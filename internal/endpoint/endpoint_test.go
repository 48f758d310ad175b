package endpoint

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mohsinsiddi/heroicdash/internal/chain"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nodeServer answers eth_blockNumber and eth_chainId after delay.
func nodeServer(t *testing.T, block uint64, chainID int64, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		time.Sleep(delay)

		var result string
		switch req.Method {
		case "eth_blockNumber":
			result = fmt.Sprintf("0x%x", block)
		case "eth_chainId":
			result = chain.HexID(chainID)
		default:
			http.Error(w, "method not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":"%s"}`, req.ID, result)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbeHealthy(t *testing.T) {
	srv := nodeServer(t, 1000, chain.PolygonMainnet, 0)

	ep := Probe(context.Background(), srv.URL, chain.PolygonMainnet)
	require.NoError(t, ep.Err)
	assert.True(t, ep.Healthy)
	assert.Equal(t, uint64(1000), ep.BlockNumber)
	assert.Equal(t, chain.PolygonMainnet, ep.ChainID)
	assert.Greater(t, ep.Latency, time.Duration(0))
}

func TestProbeWrongChain(t *testing.T) {
	srv := nodeServer(t, 1000, 1, 0)

	ep := Probe(context.Background(), srv.URL, chain.PolygonMainnet)
	assert.False(t, ep.Healthy)
	assert.ErrorContains(t, ep.Err, "serves chain 1")

	assert.True(t, Probe(context.Background(), srv.URL, 0).Healthy)
}

func TestProbeUnreachable(t *testing.T) {
	ep := Probe(context.Background(), "http://127.0.0.1:19994", 0)
	assert.Error(t, ep.Err)
	assert.False(t, ep.Healthy)
}

func TestProbeAllKeepsOrder(t *testing.T) {
	a := nodeServer(t, 10, chain.PolygonMainnet, 20*time.Millisecond)
	b := nodeServer(t, 11, chain.PolygonMainnet, 0)

	eps := ProbeAll(context.Background(), []string{a.URL, b.URL}, chain.PolygonMainnet)
	require.Len(t, eps, 2)
	assert.Equal(t, a.URL, eps[0].URL)
	assert.Equal(t, b.URL, eps[1].URL)
}

func TestFastest(t *testing.T) {
	tests := []struct {
		name      string
		endpoints []Endpoint
		want      string
		wantErr   bool
	}{
		{
			name: "lowest latency",
			endpoints: []Endpoint{
				{URL: "slow", Latency: 200 * time.Millisecond, BlockNumber: 100, Healthy: true},
				{URL: "fast", Latency: 30 * time.Millisecond, BlockNumber: 100, Healthy: true},
				{URL: "medium", Latency: 80 * time.Millisecond, BlockNumber: 100, Healthy: true},
			},
			want: "fast",
		},
		{
			name: "stale node discarded",
			endpoints: []Endpoint{
				{URL: "fresh", Latency: 50 * time.Millisecond, BlockNumber: 1000, Healthy: true},
				{URL: "stale", Latency: 10 * time.Millisecond, BlockNumber: 990, Healthy: true},
			},
			want: "fresh",
		},
		{
			name: "unhealthy skipped",
			endpoints: []Endpoint{
				{URL: "down", Latency: time.Millisecond, Healthy: false},
				{URL: "up", Latency: 90 * time.Millisecond, BlockNumber: 5, Healthy: true},
			},
			want: "up",
		},
		{
			name:      "none healthy",
			endpoints: []Endpoint{{URL: "down"}},
			wantErr:   true,
		},
		{
			name:    "empty",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fastest(tt.endpoints)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoHealthyRPC)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.URL)
		})
	}
}

func TestSelectSingleURLNotProbed(t *testing.T) {
	url, err := Select(context.Background(), []string{"https://only.rpc.example.com"}, chain.PolygonMainnet, StrategyFastest)
	require.NoError(t, err)
	assert.Equal(t, "https://only.rpc.example.com", url)

	_, err = Select(context.Background(), nil, chain.PolygonMainnet, StrategyFastest)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}

func TestSelectFastest(t *testing.T) {
	slow := nodeServer(t, 100, chain.PolygonMainnet, 150*time.Millisecond)
	fast := nodeServer(t, 100, chain.PolygonMainnet, 0)
	wrong := nodeServer(t, 100, 1, 0)

	url, err := Select(context.Background(), []string{slow.URL, wrong.URL, fast.URL}, chain.PolygonMainnet, StrategyFastest)
	require.NoError(t, err)
	assert.Equal(t, fast.URL, url)
}

func TestSelectFailover(t *testing.T) {
	wrong := nodeServer(t, 100, 1, 0)
	slow := nodeServer(t, 100, chain.PolygonMainnet, 50*time.Millisecond)
	fast := nodeServer(t, 100, chain.PolygonMainnet, 0)

	url, err := Select(context.Background(), []string{"http://127.0.0.1:19994", wrong.URL, slow.URL, fast.URL}, chain.PolygonMainnet, StrategyFailover)
	require.NoError(t, err)
	assert.Equal(t, slow.URL, url, "failover keeps configured order")

	_, err = Select(context.Background(), []string{"http://127.0.0.1:19994", wrong.URL}, chain.PolygonMainnet, StrategyFailover)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}

func TestCandidates(t *testing.T) {
	c := chain.Chain{RPCs: []string{"https://a", "https://b"}}
	assert.Equal(t, []string{"https://c", "https://a", "https://b"}, Candidates(c, []string{"https://c", "https://a"}))
	assert.Equal(t, []string{"https://a", "https://b"}, Candidates(c, nil))
	assert.Empty(t, Candidates(chain.Chain{}, []string{""}))
}
