package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/goccy/go-json"
)

const (
	defaultMode     = "mainnet"
	defaultProvider = ProviderKeyed
	defaultInterval = 4
	defaultStrategy = "fastest"

	configFile  = "config.json"
	walletsFile = "wallets.json"
)

// Load reads config from dir (or creates defaults), then applies HEROICDASH_*
// environment overrides. dir defaults to $HEROICDASH_CONFIG_DIR, then ~/.heroicdash.
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := resolveDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is where the wallet registry lives.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// IsTestnet reports whether the configured target is the test network.
func (c *Config) IsTestnet() bool {
	return c.NetworkMode == "testnet"
}

// Poll returns the wallet event polling interval.
func (c *Config) Poll() time.Duration {
	if c.PollInterval <= 0 {
		return defaultInterval * time.Second
	}
	return time.Duration(c.PollInterval) * time.Second
}

// RetryDelay returns the delay between refresh attempts.
func (c *Config) RetryDelay() time.Duration {
	if c.RetryDelayMs <= 0 {
		return RefreshRetryDelay
	}
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// Attempts returns the number of refresh attempts for retried reads.
func (c *Config) Attempts() int {
	if c.RetryAttempts <= 0 {
		return RefreshRetryAttempts
	}
	return c.RetryAttempts
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chain, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[chain], url) {
		return fmt.Errorf("RPC %s already exists for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = append(c.CustomRPCs[chain], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chain, url string) error {
	rpcs := c.CustomRPCs[chain]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a chain.
func (c *Config) GetRPCs(chain string) []string {
	return c.CustomRPCs[chain]
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		NetworkMode:     defaultMode,
		Provider:        defaultProvider,
		ContractAddress: DefaultContractAddress,
		TokenAddress:    DefaultTokenAddress,
		ReferralBase:    DefaultReferralBase,
		RPCStrategy:     defaultStrategy,
		PollInterval:    defaultInterval,
		RetryAttempts:   RefreshRetryAttempts,
		RetryDelayMs:    int(RefreshRetryDelay / time.Millisecond),
		CustomRPCs:      make(map[string][]string),
		configDir:       dir,
	}
}

func resolveDir() (string, error) {
	var loc location
	if err := ParseEnv(&loc); err != nil {
		return "", err
	}
	if loc.Dir != "" {
		return loc.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".heroicdash"), nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
