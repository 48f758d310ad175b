package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinsRegistered(t *testing.T) {
	all := AllBuiltins()
	require.Len(t, all, 2)
	assert.Equal(t, "heroic", all[0].ID)
	assert.Equal(t, "token", all[1].ID)

	_, ok := GetBuiltin("erc721")
	assert.False(t, ok)
}

func TestHeroicABIParses(t *testing.T) {
	parsed, err := gethABI(heroicABI)
	require.NoError(t, err)

	for _, name := range []string{"users", "getLeaderboard", "getReferralDetails", "stake", "invest", "withdrawFunds", "pause"} {
		_, ok := parsed.Methods[name]
		assert.True(t, ok, "missing method %s", name)
	}
	for _, name := range []string{"Investment", "Withdrawal", "Commission", "Reward", "LeaderboardUpdate"} {
		_, ok := parsed.Events[name]
		assert.True(t, ok, "missing event %s", name)
	}
	assert.Len(t, parsed.Methods["users"].Outputs, 5)
}

func TestReadWriteClassification(t *testing.T) {
	for _, e := range heroicABI {
		if e.Type != "function" {
			continue
		}
		assert.NotEqual(t, e.IsReadFunction(), e.IsWriteFunction(), e.Name)
	}
	assert.True(t, findFunction(heroicABI, "paused").IsReadFunction())
	assert.True(t, findFunction(heroicABI, "stake").IsWriteFunction())
	assert.Nil(t, findFunction(heroicABI, "Investment"))
}
