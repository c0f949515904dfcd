package tickmath

import (
	"math"
	"strconv"
)

const (
	// MinTick and MaxTick bound the logarithmic price grid used by the DEX contract.
	MinTick = -887273
	MaxTick = 887273

	// TickBase is the price ratio between two adjacent ticks.
	TickBase = 1.0001

	// ValueForOne and ValueForOneBelow replace a price of exactly 1 so the
	// planned range never collapses onto tick 0.
	ValueForOne      = 1.0000001
	ValueForOneBelow = 0.9999999
)

var logTickBase = math.Log(TickBase)

// NativeToUser converts a decimal-adjusted contract price into the human price.
func NativeToUser(price float64, decimalsA, decimalsB int) float64 {
	return price * math.Pow(10, float64(decimalsA-decimalsB))
}

// UserToNative converts a human price into the contract's decimal-adjusted price.
// Price must be positive; the result is undefined otherwise.
func UserToNative(price float64, decimalsA, decimalsB int) float64 {
	return price * math.Pow(10, float64(decimalsB-decimalsA))
}

func tickIndex(price float64) float64 {
	return math.Log(price) / logTickBase
}

// PriceToTick returns the nearest tick for price.
func PriceToTick(price float64) int {
	return int(math.Round(tickIndex(price)))
}

// PriceToTickFloor returns the highest tick whose price does not exceed price.
func PriceToTickFloor(price float64) int {
	return int(math.Floor(tickIndex(price)))
}

// PriceToTickCeil returns the lowest tick whose price is not below price.
func PriceToTickCeil(price float64) int {
	return int(math.Ceil(tickIndex(price)))
}

// TickToPrice returns 1.0001^tick.
func TickToPrice(tick int) float64 {
	return math.Pow(TickBase, float64(tick))
}

// FormatOnePrice nudges a price of exactly 1 just above or below it.
func FormatOnePrice(price float64, pickBelow bool) float64 {
	if price != 1 {
		return price
	}
	if pickBelow {
		return ValueForOneBelow
	}
	return ValueForOne
}

// RatioToMaxPrice returns the upper bound of a position holding amounts in the
// given ratio that is fully depleted at that bound for the given leverage.
func RatioToMaxPrice(price, ratio, leverage float64) float64 {
	concentration := 1 - 1/leverage
	denom := math.Sqrt((1-ratio)*(1-ratio)+4*ratio*concentration*concentration) + 1 - ratio
	return (4 * price) / (denom * denom)
}

// RatioToMinPrice mirrors RatioToMaxPrice for the lower bound.
func RatioToMinPrice(maxPrice, leverage float64) float64 {
	return maxPrice * math.Pow(1-1/leverage, 4)
}

// FormatPrice renders a float the way the front-end expects price strings:
// plain decimals for ordinary magnitudes, exponent notation for extreme ones.
func FormatPrice(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
