package contract

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

var (
	tt256   = new(big.Int).Lsh(big.NewInt(1), 256)
	tt255   = new(big.Int).Lsh(big.NewInt(1), 255)
	zeroArg = make([]byte, 32)
)

// functionSelector computes the 4-byte selector for a function.
func functionSelector(fn *ABIEntry) string {
	return "0x" + hex.EncodeToString(selectorBytes(fn))
}

func selectorBytes(fn *ABIEntry) []byte {
	types := make([]string, len(fn.Inputs))
	for i, p := range fn.Inputs {
		types[i] = p.Type
	}
	sig := fn.Name + "(" + strings.Join(types, ",") + ")"

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return h.Sum(nil)[:4]
}

// --- ABI encoding (static types only) ---

// encodeCall builds calldata: 4-byte selector + one word per argument.
func encodeCall(fn *ABIEntry, args []any) ([]byte, error) {
	if len(args) != len(fn.Inputs) {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", fn.Name, len(fn.Inputs), len(args))
	}
	out := make([]byte, 0, 4+32*len(args))
	out = append(out, selectorBytes(fn)...)
	for i, param := range fn.Inputs {
		word, err := encodeParam(param.Type, args[i])
		if err != nil {
			return nil, fmt.Errorf("encoding param %d (%s): %w", i, param.Type, err)
		}
		out = append(out, word...)
	}
	return out, nil
}

// encodeParam encodes a single ABI parameter as a 32-byte word.
func encodeParam(typ string, val any) ([]byte, error) {
	switch {
	case typ == "address":
		addr, err := toAddress(val)
		if err != nil {
			return nil, err
		}
		return common.LeftPadBytes(addr.Bytes(), 32), nil

	case strings.HasPrefix(typ, "uint") || strings.HasPrefix(typ, "int"):
		n, err := toBig(val)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(typ, "uint") && n.Sign() < 0 {
			return nil, fmt.Errorf("negative value %s for %s", n, typ)
		}
		if n.Sign() < 0 {
			n = new(big.Int).Add(n, tt256)
		}
		if n.BitLen() > 256 {
			return nil, fmt.Errorf("value overflows %s", typ)
		}
		return common.LeftPadBytes(n.Bytes(), 32), nil

	case typ == "bool":
		b, ok := val.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", val)
		}
		if b {
			return common.LeftPadBytes([]byte{1}, 32), nil
		}
		return zeroArg, nil

	case strings.HasPrefix(typ, "bytes") && typ != "bytes":
		raw, ok := val.([]byte)
		if !ok {
			return nil, fmt.Errorf("expected []byte, got %T", val)
		}
		return common.RightPadBytes(raw, 32), nil
	}
	return nil, fmt.Errorf("unsupported argument type %s", typ)
}

func toAddress(val any) (common.Address, error) {
	switch v := val.(type) {
	case common.Address:
		return v, nil
	case string:
		if !common.IsHexAddress(v) {
			return common.Address{}, fmt.Errorf("invalid address %q", v)
		}
		return common.HexToAddress(v), nil
	}
	return common.Address{}, fmt.Errorf("expected address, got %T", val)
}

func toBig(val any) (*big.Int, error) {
	switch v := val.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return v, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case string:
		n, ok := new(big.Int).SetString(v, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("expected integer, got %T", val)
}

// --- ABI decoding ---

// decodeOutputs decodes return data into one value per output. Integers come
// back as *big.Int, addresses as common.Address, fixed arrays as []any.
func decodeOutputs(fn *ABIEntry, data []byte) ([]any, error) {
	results := make([]any, 0, len(fn.Outputs))
	offset := 0
	for _, out := range fn.Outputs {
		v, n, err := decodeValue(out.Type, data, offset)
		if err != nil {
			return nil, fmt.Errorf("decoding %s output %s: %w", fn.Name, out.Type, err)
		}
		results = append(results, v)
		offset += n
	}
	return results, nil
}

// decodeValue decodes the value of typ whose head starts at offset and
// reports how many head bytes it occupies.
func decodeValue(typ string, data []byte, offset int) (any, int, error) {
	if elem, size, ok := fixedArray(typ); ok {
		if isDynamic(elem) {
			return nil, 0, fmt.Errorf("unsupported array element %s", elem)
		}
		items := make([]any, 0, size)
		n := 0
		for range size {
			v, used, err := decodeValue(elem, data, offset+n)
			if err != nil {
				return nil, 0, err
			}
			items = append(items, v)
			n += used
		}
		return items, n, nil
	}

	if offset+32 > len(data) {
		return nil, 0, fmt.Errorf("short data: need %d bytes, have %d", offset+32, len(data))
	}
	word := data[offset : offset+32]

	switch {
	case typ == "address":
		return common.BytesToAddress(word[12:]), 32, nil

	case strings.HasPrefix(typ, "uint"):
		return new(big.Int).SetBytes(word), 32, nil

	case strings.HasPrefix(typ, "int"):
		n := new(big.Int).SetBytes(word)
		if n.Cmp(tt255) >= 0 {
			n.Sub(n, tt256)
		}
		return n, 32, nil

	case typ == "bool":
		return word[31] == 1, 32, nil

	case typ == "string" || typ == "bytes":
		raw, err := dynamicBytes(data, word)
		if err != nil {
			return nil, 0, err
		}
		if typ == "string" {
			return string(raw), 32, nil
		}
		return raw, 32, nil

	case strings.HasPrefix(typ, "bytes"):
		size, err := strconv.Atoi(strings.TrimPrefix(typ, "bytes"))
		if err != nil || size < 1 || size > 32 {
			return nil, 0, fmt.Errorf("invalid type %s", typ)
		}
		return append([]byte(nil), word[:size]...), 32, nil
	}
	return nil, 0, fmt.Errorf("unsupported output type %s", typ)
}

// dynamicBytes follows a head word pointing at a length-prefixed tail.
func dynamicBytes(data, head []byte) ([]byte, error) {
	off := new(big.Int).SetBytes(head)
	if !off.IsInt64() || off.Int64()+32 > int64(len(data)) {
		return nil, fmt.Errorf("offset out of range")
	}
	start := int(off.Int64())
	length := new(big.Int).SetBytes(data[start : start+32])
	if !length.IsInt64() || int64(start)+32+length.Int64() > int64(len(data)) {
		return nil, fmt.Errorf("length out of range")
	}
	return data[start+32 : start+32+int(length.Int64())], nil
}

// fixedArray splits "T[N]" into T and N.
func fixedArray(typ string) (string, int, bool) {
	if !strings.HasSuffix(typ, "]") {
		return "", 0, false
	}
	open := strings.LastIndex(typ, "[")
	if open < 0 {
		return "", 0, false
	}
	size, err := strconv.Atoi(typ[open+1 : len(typ)-1])
	if err != nil || size <= 0 {
		return "", 0, false
	}
	return typ[:open], size, true
}

func isDynamic(typ string) bool {
	return typ == "string" || typ == "bytes" || strings.HasSuffix(typ, "[]")
}
