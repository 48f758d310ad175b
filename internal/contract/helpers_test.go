package contract

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/require"
)

var testABI abi.ABI

func init() {
	entries := append(append([]ABIEntry{}, heroicABI...), tokenABI...)
	parsed, err := gethABI(entries)
	if err != nil {
		panic(err)
	}
	testABI = parsed
}

// pack ABI-encodes the return values of method with go-ethereum's encoder.
func pack(t *testing.T, method string, vals ...any) []byte {
	t.Helper()
	m, ok := testABI.Methods[method]
	require.True(t, ok, "unknown method %s", method)
	data, err := m.Outputs.Pack(vals...)
	require.NoError(t, err)
	return data
}
