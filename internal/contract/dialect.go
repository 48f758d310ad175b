package contract

import (
	"context"
	"fmt"
	"math/big"
	"reflect"
	"time"

	"github.com/Mohsinsiddi/heroicdash/internal/wallet"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// handle is a contract instance bound through one dialect.
type handle interface {
	Address() common.Address
	Call(ctx context.Context, method string, args ...any) ([]any, error)
	Transact(ctx context.Context, method string, args ...any) (Receipt, error)
}

// dialect is one client flavour: how contracts are bound and how amounts are
// formatted. It is chosen once per Setup.
type dialect interface {
	units
	Name() string
	bind(addr, from common.Address, entries []ABIEntry) (handle, error)
}

// binder is implemented by providers that can back go-ethereum bindings.
type binder interface {
	Client() *ethclient.Client
	Transactor(ctx context.Context) (*bind.TransactOpts, error)
}

type timing struct {
	receiptTimeout time.Duration
	pollInterval   time.Duration
}

// probe picks the dialect for p. A nil result means demo mode.
func probe(p wallet.Injected, t timing) dialect {
	if p == nil {
		return nil
	}
	if b, ok := p.(binder); ok {
		return &boundDialect{backend: b, timing: t}
	}
	return &requestDialect{provider: p, timing: t}
}

// --- result normalization ---

// normalize maps dialect-specific result values onto one shape: integers as
// *big.Int, arrays and slices (other than bytes) as []any.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, *big.Int, common.Address, bool, string, []byte:
		return v
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normalize(x[i])
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint())
	case reflect.Array, reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return b
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

func normalizeAll(vs []any) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = normalize(v)
	}
	return out
}

// --- typed accessors ---

func outputAt(out []any, i int) (any, error) {
	if i >= len(out) {
		return nil, fmt.Errorf("%w: missing output %d", ErrCallFailed, i)
	}
	return out[i], nil
}

func asBig(out []any, i int) (*big.Int, error) {
	v, err := outputAt(out, i)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*big.Int)
	if !ok || n == nil {
		return nil, fmt.Errorf("output %d: expected integer, got %T", i, v)
	}
	return n, nil
}

func asUint(out []any, i int) (uint64, error) {
	n, err := asBig(out, i)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("output %d: %s does not fit in uint64", i, n)
	}
	return n.Uint64(), nil
}

func asAddress(out []any, i int) (common.Address, error) {
	v, err := outputAt(out, i)
	if err != nil {
		return common.Address{}, err
	}
	a, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("output %d: expected address, got %T", i, v)
	}
	return a, nil
}

func asBool(out []any, i int) (bool, error) {
	v, err := outputAt(out, i)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("output %d: expected bool, got %T", i, v)
	}
	return b, nil
}

func asString(out []any, i int) (string, error) {
	v, err := outputAt(out, i)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("output %d: expected string, got %T", i, v)
	}
	return s, nil
}

func asList(out []any, i int) ([]any, error) {
	v, err := outputAt(out, i)
	if err != nil {
		return nil, err
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("output %d: expected array, got %T", i, v)
	}
	return l, nil
}
