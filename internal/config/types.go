package config

// Provider kinds.
const (
	ProviderKeyed = "keyed" // local keychain wallet over a node connection
	ProviderRPC   = "rpc"   // node-managed accounts (e.g. a dev node)
	ProviderNone  = "none"  // no wallet; always demo mode
)

// Config holds all heroicdash configuration.
type Config struct {
	NetworkMode     string              `json:"network_mode"     env:"HEROICDASH_NETWORK_MODE"` // "mainnet" | "testnet"
	Provider        string              `json:"provider"         env:"HEROICDASH_PROVIDER"`     // "keyed" | "rpc" | "none"
	DefaultWallet   string              `json:"default_wallet"   env:"HEROICDASH_WALLET"`
	RPCURL          string              `json:"rpc_url,omitempty" env:"HEROICDASH_RPC_URL"`
	RPCStrategy     string              `json:"rpc_strategy"     env:"HEROICDASH_RPC_STRATEGY"` // "fastest" | "failover"
	ContractAddress string              `json:"contract_address" env:"HEROICDASH_CONTRACT"`
	TokenAddress    string              `json:"token_address"    env:"HEROICDASH_TOKEN"`
	ReferralBase    string              `json:"referral_base"    env:"HEROICDASH_REFERRAL_BASE"` // dashboard URL for referral links
	PollInterval    int                 `json:"poll_interval"    env:"HEROICDASH_POLL_INTERVAL"` // seconds
	RetryAttempts   int                 `json:"retry_attempts"   env:"HEROICDASH_RETRY_ATTEMPTS"`
	RetryDelayMs    int                 `json:"retry_delay_ms"   env:"HEROICDASH_RETRY_DELAY_MS"`
	CustomRPCs      map[string][]string `json:"custom_rpcs"`

	// internal: config dir path used for Save()
	configDir string
}
