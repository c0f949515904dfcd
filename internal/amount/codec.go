package amount

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// NearDecimals is the number of decimals of native NEAR (yoctoNEAR).
const NearDecimals = 24

// ErrInvalidAmount reports a human amount that is not a finite non-negative number.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseHuman parses a human-readable amount and rejects negatives.
func ParseHuman(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if value.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: negative %q", ErrInvalidAmount, raw)
	}
	return value, nil
}

// ToBaseUnits converts a human amount to base units, truncating toward zero.
func ToBaseUnits(raw string, decimals int) (string, error) {
	value, err := ParseHuman(raw)
	if err != nil {
		return "", err
	}
	return DecimalToBaseUnits(value, decimals), nil
}

// DecimalToBaseUnits shifts value by decimals and truncates the remainder.
func DecimalToBaseUnits(value decimal.Decimal, decimals int) string {
	return value.Shift(int32(decimals)).Truncate(0).BigInt().String()
}

// FromFloat converts an estimator amount delivered as a JSON number.
func FromFloat(v float64, decimals int) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return "", fmt.Errorf("%w: %v", ErrInvalidAmount, v)
	}
	return DecimalToBaseUnits(decimal.NewFromFloat(v), decimals), nil
}

// ParseNear converts a NEAR amount to yoctoNEAR.
func ParseNear(raw string) (string, error) {
	return ToBaseUnits(raw, NearDecimals)
}

// ToHuman renders a base-unit integer string with the given decimals.
// Trailing fractional zeros are trimmed and an empty fraction is omitted.
func ToHuman(base string, decimals int) (string, error) {
	value, ok := new(big.Int).SetString(strings.TrimSpace(base), 10)
	if !ok {
		return "", fmt.Errorf("%w: base units %q", ErrInvalidAmount, base)
	}
	if decimals <= 0 {
		return value.String(), nil
	}

	sign := ""
	if value.Sign() < 0 {
		sign = "-"
		value.Abs(value)
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(value, divisor, new(big.Int))

	fraction := frac.String()
	if len(fraction) < decimals {
		fraction = strings.Repeat("0", decimals-len(fraction)) + fraction
	}
	fraction = strings.TrimRight(fraction, "0")

	if fraction == "" {
		return sign + whole.String(), nil
	}
	return sign + whole.String() + "." + fraction, nil
}

// Compare compares two base-unit integer strings.
func Compare(a, b string) (int, error) {
	x, ok := new(big.Int).SetString(a, 10)
	if !ok {
		return 0, fmt.Errorf("%w: base units %q", ErrInvalidAmount, a)
	}
	y, ok := new(big.Int).SetString(b, 10)
	if !ok {
		return 0, fmt.Errorf("%w: base units %q", ErrInvalidAmount, b)
	}
	return x.Cmp(y), nil
}

// Sum adds human amounts exactly.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
