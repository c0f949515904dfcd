package tickmath

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FeeLevel pairs the contract fee-rate code with its percentage.
type FeeLevel struct {
	Rate    int     `json:"fee_rate"`
	Percent float64 `json:"percent"`
}

var feeLevels = [...]FeeLevel{
	{Rate: 1, Percent: 0.01},
	{Rate: 2, Percent: 0.02},
	{Rate: 4, Percent: 0.04},
	{Rate: 8, Percent: 0.08},
	{Rate: 16, Percent: 0.16},
	{Rate: 32, Percent: 0.32},
	{Rate: 64, Percent: 0.64},
	{Rate: 128, Percent: 1.28},
}

// DefaultFeeRate is used when a pool reports no liquidity distribution.
const DefaultFeeRate = 2

// FeeLevels returns a copy of the fee table in level order.
func FeeLevels() []FeeLevel {
	out := make([]FeeLevel, len(feeLevels))
	copy(out[:], feeLevels[:])
	return out
}

// FeeLevelCount is the number of fee tiers a pool carries.
func FeeLevelCount() int {
	return len(feeLevels)
}

// FeeLevelAt returns the tier at index i.
func FeeLevelAt(i int) (FeeLevel, bool) {
	if i < 0 || i >= len(feeLevels) {
		return FeeLevel{}, false
	}
	return feeLevels[i], true
}

// FeeIndexForRate returns the tier index for a fee-rate code.
func FeeIndexForRate(rate int) (int, bool) {
	for i, level := range feeLevels {
		if level.Rate == rate {
			return i, true
		}
	}
	return -1, false
}

// PercentForFeeRate maps a fee-rate code to its percentage.
func PercentForFeeRate(rate int) (float64, bool) {
	i, ok := FeeIndexForRate(rate)
	if !ok {
		return 0, false
	}
	return feeLevels[i].Percent, true
}

// FeeRateForPercent maps a percentage to its fee-rate code.
func FeeRateForPercent(percent float64) (int, bool) {
	for _, level := range feeLevels {
		if math.Abs(level.Percent-percent) < 1e-9 {
			return level.Rate, true
		}
	}
	return 0, false
}

// ParseFeeTier accepts a tier as a percentage ("0.04", "0.04%").
func ParseFeeTier(raw string) (FeeLevel, int, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	percent, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return FeeLevel{}, -1, fmt.Errorf("invalid fee tier %q", raw)
	}
	rate, ok := FeeRateForPercent(percent)
	if !ok {
		return FeeLevel{}, -1, fmt.Errorf("unsupported fee tier %q", raw)
	}
	i, _ := FeeIndexForRate(rate)
	return feeLevels[i], i, nil
}
