package wallet

import (
	"errors"
	"fmt"
)

// EIP-1193 / EIP-3085 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901
	CodeUnrecognizedChain = 4902
	CodeInvalidParams     = -32602
	CodeInternal          = -32603
)

// Errors.
var (
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	ErrUserRejected        = errors.New("user rejected the request")
	ErrNoAccounts          = errors.New("wallet returned no accounts")
)

// ProviderError is an error reported by the wallet provider.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// Is lets errors.Is(err, ErrUserRejected) match code 4001.
func (e *ProviderError) Is(target error) bool {
	return target == ErrUserRejected && e.Code == CodeUserRejected
}

// Code extracts the provider error code from err, or 0.
func Code(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return 0
}

func rejected() error {
	return &ProviderError{Code: CodeUserRejected, Message: "User rejected the request."}
}
