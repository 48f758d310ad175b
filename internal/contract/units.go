package contract

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// Decimals is the fixed-point scale of every amount crossing the binding.
const Decimals = 18

type units interface {
	toDecimal(raw *big.Int, decimals int) (string, error)
	toFixed(s string, decimals int) (*big.Int, error)
}

func pow10(decimals int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// v5Units formats the way the request dialect's wallets do: a fraction is
// always present ("1000.0").
type v5Units struct{}

func (v5Units) toDecimal(raw *big.Int, decimals int) (string, error) {
	if raw == nil {
		return "", fmt.Errorf("%w: nil value", ErrConversion)
	}
	abs := new(big.Int).Abs(raw)
	whole, frac := new(big.Int).QuoRem(abs, pow10(decimals), new(big.Int))

	fs := frac.String()
	if pad := decimals - len(fs); pad > 0 {
		fs = strings.Repeat("0", pad) + fs
	}
	fs = strings.TrimRight(fs, "0")
	if fs == "" {
		fs = "0"
	}
	out := whole.String() + "." + fs
	if raw.Sign() < 0 {
		out = "-" + out
	}
	return out, nil
}

func (v5Units) toFixed(s string, decimals int) (*big.Int, error) {
	in := strings.TrimSpace(s)
	neg := strings.HasPrefix(in, "-")
	if neg {
		in = in[1:]
	}
	parts := strings.Split(in, ".")
	if len(parts) > 2 || in == "" || in == "." {
		return nil, fmt.Errorf("%w: invalid decimal %q", ErrConversion, s)
	}
	whole, frac := parts[0], ""
	if len(parts) == 2 {
		frac = strings.TrimRight(parts[1], "0")
	}
	if len(frac) > decimals {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrConversion, s, decimals)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	if strings.ContainsFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) {
		return nil, fmt.Errorf("%w: invalid decimal %q", ErrConversion, s)
	}
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid decimal %q", ErrConversion, s)
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

// ratUnits formats through big.Rat with trailing zeros trimmed ("1000").
// Demo mode uses the same rules.
type ratUnits struct{}

// plainDecimal matches what big.Rat should parse here: no sign other than a
// leading minus, no base prefix, no exponent, no fraction bar.
var plainDecimal = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)

func (ratUnits) toDecimal(raw *big.Int, decimals int) (string, error) {
	if raw == nil {
		return "", fmt.Errorf("%w: nil value", ErrConversion)
	}
	r := new(big.Rat).SetFrac(raw, pow10(decimals))
	out := r.FloatString(decimals)
	if strings.Contains(out, ".") {
		out = strings.TrimRight(out, "0")
		out = strings.TrimSuffix(out, ".")
	}
	return out, nil
}

func (ratUnits) toFixed(s string, decimals int) (*big.Int, error) {
	in := strings.TrimSpace(s)
	if !plainDecimal.MatchString(in) {
		return nil, fmt.Errorf("%w: invalid decimal %q", ErrConversion, s)
	}
	r, ok := new(big.Rat).SetString(in)
	if !ok {
		return nil, fmt.Errorf("%w: invalid decimal %q", ErrConversion, s)
	}
	r.Mul(r, new(big.Rat).SetInt(pow10(decimals)))
	if !r.IsInt() {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrConversion, s, decimals)
	}
	return new(big.Int).Set(r.Num()), nil
}
