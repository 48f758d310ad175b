package chain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Well-known chain IDs.
const (
	PolygonMainnet int64 = 137
	PolygonMumbai  int64 = 80001
	Localhost      int64 = 31337
)

// Currency describes a chain's native currency the way wallets expect it.
type Currency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Chain holds all metadata for a single chain.
type Chain struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	NativeCurrency Currency `json:"native_currency"`
	RPCs           []string `json:"rpcs"`
	Explorer       string   `json:"explorer"`
	Testnet        bool     `json:"testnet"`
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry creates and returns the registry of supported chains.
func NewRegistry() *Registry {
	chains := allChains()
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
	}
	return r
}

// All returns every chain in the registry.
func (r *Registry) All() []Chain {
	return r.chains
}

// GetByName finds a chain by its slug name (e.g. "polygon", "mumbai").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// Target returns the dashboard's target chain for a network mode
// ("mainnet" → Polygon, "testnet" → Mumbai).
func (r *Registry) Target(mode string) *Chain {
	if mode == "testnet" {
		return r.byID[PolygonMumbai]
	}
	return r.byID[PolygonMainnet]
}

// HexChainID renders the chain ID the way EIP-1193 providers report it.
func (c *Chain) HexChainID() string {
	return HexID(c.ChainID)
}

// DefaultRPC returns the first RPC endpoint, or "" when none is registered.
func (c *Chain) DefaultRPC() string {
	if len(c.RPCs) == 0 {
		return ""
	}
	return c.RPCs[0]
}

// AddChainParams is the wallet_addEthereumChain parameter object (EIP-3085).
type AddChainParams struct {
	ChainID           string   `json:"chainId"`
	ChainName         string   `json:"chainName"`
	NativeCurrency    Currency `json:"nativeCurrency"`
	RPCURLs           []string `json:"rpcUrls"`
	BlockExplorerURLs []string `json:"blockExplorerUrls"`
}

// AddParams builds the descriptor a wallet needs to register this chain.
func (c *Chain) AddParams() AddChainParams {
	p := AddChainParams{
		ChainID:        c.HexChainID(),
		ChainName:      c.DisplayName,
		NativeCurrency: c.NativeCurrency,
		RPCURLs:        c.RPCs,
	}
	if c.Explorer != "" {
		p.BlockExplorerURLs = []string{c.Explorer}
	}
	return p
}

// FromAddParams builds a Chain from a wallet_addEthereumChain descriptor.
func FromAddParams(p AddChainParams) (Chain, error) {
	id, err := ParseHexID(p.ChainID)
	if err != nil {
		return Chain{}, err
	}
	c := Chain{
		Name:           strings.ToLower(strings.ReplaceAll(p.ChainName, " ", "-")),
		DisplayName:    p.ChainName,
		ChainID:        id,
		NativeCurrency: p.NativeCurrency,
		RPCs:           p.RPCURLs,
	}
	if len(p.BlockExplorerURLs) > 0 {
		c.Explorer = p.BlockExplorerURLs[0]
	}
	return c, nil
}

// HexID formats a chain ID as a 0x-prefixed hex quantity.
func HexID(id int64) string {
	return fmt.Sprintf("0x%x", id)
}

// ParseHexID parses a 0x-prefixed hex chain ID (decimal is accepted too).
func ParseHexID(s string) (int64, error) {
	var id int64
	var err error
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		_, err = fmt.Sscanf(strings.ToLower(s[2:]), "%x", &id)
	} else {
		_, err = fmt.Sscanf(s, "%d", &id)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", s, err)
	}
	return id, nil
}

// --- chain data ---

var matic = Currency{Name: "MATIC", Symbol: "MATIC", Decimals: 18}

func allChains() []Chain {
	return []Chain{
		{
			Name: "polygon", DisplayName: "Polygon Mainnet", ChainID: PolygonMainnet,
			NativeCurrency: matic,
			RPCs:           []string{"https://polygon-rpc.com", "https://polygon-bor-rpc.publicnode.com"},
			Explorer:       "https://polygonscan.com",
		},
		{
			Name: "mumbai", DisplayName: "Polygon Mumbai Testnet", ChainID: PolygonMumbai,
			NativeCurrency: matic,
			RPCs:           []string{"https://rpc-mumbai.maticvigil.com"},
			Explorer:       "https://mumbai.polygonscan.com",
			Testnet:        true,
		},
		{
			Name: "localhost", DisplayName: "Localhost", ChainID: Localhost,
			NativeCurrency: Currency{Name: "Ether", Symbol: "ETH", Decimals: 18},
			RPCs:           []string{"http://127.0.0.1:8545"},
			Testnet:        true,
		},
	}
}
