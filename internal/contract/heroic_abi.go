package contract

// heroic is the referral/staking contract.
//
// Function selectors:
//
//	owner()             → 0x8da5cb5b
//	paused()            → 0x5c975abb
//	users(address)      → 0xa87430ba
//	stake(u256)         → 0xa694fc3a
//	withdraw(u256)      → 0x2e1a7d4d
//	pause()             → 0x8456cb59
//	unpause()           → 0x3f4ba83a
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "heroic",
		Name:        "Heroic Staking",
		Description: "Referral/staking contract with star levels and a top-10 leaderboard.",
		ABI:         heroicABI,
	})
}

func view(name string, in []ABIParam, out ...string) ABIEntry {
	outs := make([]ABIParam, len(out))
	for i, t := range out {
		outs[i] = ABIParam{Type: t}
	}
	return ABIEntry{Name: name, Type: "function", Inputs: in, Outputs: outs, StateMutability: "view"}
}

func write(name string, in ...ABIParam) ABIEntry {
	return ABIEntry{Name: name, Type: "function", Inputs: in, StateMutability: "nonpayable"}
}

var (
	addressArg = func(name string) ABIParam { return ABIParam{Name: name, Type: "address"} }
	uintArg    = func(name string) ABIParam { return ABIParam{Name: name, Type: "uint256"} }
)

var heroicABI = []ABIEntry{
	// ── Read ─────────────────────────────────────────────────────────────────
	view("MAX_INVESTMENT", nil, "uint256"),
	view("MIN_INVESTMENT", nil, "uint256"),
	view("MIN_WITHDRAW", nil, "uint256"),
	view("WITHDRAW_FEE_PERCENT", nil, "uint256"),
	view("USDT", nil, "address"),
	view("owner", nil, "address"),
	view("paused", nil, "bool"),
	view("totalMembers", nil, "uint256"),
	view("getLeaderboard", nil, "address[10]"),
	view("getReferralDetails", []ABIParam{addressArg("userAddress")}, "uint256[20]"),
	view("getStarLevel", []ABIParam{addressArg("userAddress")}, "uint256"),
	view("getRankRewards", []ABIParam{uintArg("rank")}, "uint256"),
	view("leaderboard", []ABIParam{uintArg("")}, "address"),
	view("leaderboardIndex", []ABIParam{addressArg("")}, "uint256"),
	{
		Name: "users", Type: "function",
		Inputs: []ABIParam{addressArg("")},
		Outputs: []ABIParam{
			{Name: "stakedAmount", Type: "uint256"},
			{Name: "directMembers", Type: "uint256"},
			{Name: "totalTeamInvestment", Type: "uint256"},
			{Name: "starLevel", Type: "uint256"},
			{Name: "referrer", Type: "address"},
		},
		StateMutability: "view",
	},
	// ── Write ────────────────────────────────────────────────────────────────
	write("stake", uintArg("amount")),
	write("withdraw", uintArg("amount")),
	write("invest", addressArg("referrer"), uintArg("amount")),
	write("withdrawFunds", addressArg("to"), uintArg("amount")),
	write("pause"),
	write("unpause"),
	write("transferOwnership", addressArg("newOwner")),
	// ── Events ───────────────────────────────────────────────────────────────
	{Name: "Investment", Type: "event", Inputs: []ABIParam{addressArg("user"), uintArg("amount")}},
	{Name: "Withdrawal", Type: "event", Inputs: []ABIParam{addressArg("user"), uintArg("amount")}},
	{Name: "Commission", Type: "event", Inputs: []ABIParam{addressArg("user"), uintArg("amount"), uintArg("level")}},
	{Name: "Reward", Type: "event", Inputs: []ABIParam{addressArg("user"), uintArg("rewardType"), uintArg("rewardAmount")}},
	{Name: "LeaderboardUpdate", Type: "event", Inputs: []ABIParam{addressArg("user"), uintArg("stakedAmount")}},
}
