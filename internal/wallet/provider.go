package wallet

import (
	"context"

	"github.com/goccy/go-json"
)

// Provider event names (EIP-1193).
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
	EventDisconnect      = "disconnect"
)

// Listener receives an event payload: []string for accountsChanged, a hex
// chain id string for chainChanged and an error for disconnect.
type Listener func(payload any)

// Injected is an EIP-1193 style wallet provider.
type Injected interface {
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
	On(event string, fn Listener) (remove func())
}

// Flags is implemented by providers that advertise wallet identity flags.
type Flags interface {
	IsMetaMask() bool
}

// decodeParam re-encodes params[i] into out so callers can pass maps or structs.
func decodeParam(params []any, i int, out any) error {
	if i >= len(params) {
		return &ProviderError{Code: CodeInvalidParams, Message: "missing params"}
	}
	if raw, ok := params[i].(json.RawMessage); ok {
		return json.Unmarshal(raw, out)
	}
	data, err := json.Marshal(params[i])
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func encodeResult(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}
