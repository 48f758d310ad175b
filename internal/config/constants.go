package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
const (
	GasLimitTokenApprove = uint64(60_000)  // ERC-20 approve or transfer
	GasLimitContractCall = uint64(300_000) // stake / invest / withdraw and admin calls
)

// Timeout constants used across cmd, session and contract.
const (
	ProviderCallTimeout = 15 * time.Second // single wallet/provider request
	TxConfirmTimeout    = 3 * time.Minute  // receipt wait after a write
	TxPollInterval      = 2 * time.Second  // receipt polling cadence
	RefreshRetryDelay   = 500 * time.Millisecond
	CommandTimeout      = time.Minute // whole read command, including connect
)

// RefreshRetryAttempts is the number of attempts for user data and limits during Refresh.
const RefreshRetryAttempts = 3

// Deployed addresses on Polygon.
const (
	DefaultContractAddress = "0x29943E71680e0A4847036541EFa9656b2C0e4B5A"
	DefaultTokenAddress    = "0xc2132D05D31c914a87C6611C10748AEb04B58e8F" // USDT (PoS)
	DefaultReferralBase    = "https://heroic.finance"
)
